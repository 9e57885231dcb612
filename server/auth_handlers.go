package server

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/shanebasham/artstore/auth"
	apperrors "github.com/shanebasham/artstore/internal/errors"
	"github.com/shanebasham/artstore/metrics"
)

// AuthEventHandler applies one login modal event and returns to the page the
// form was posted from (POST /auth/{event}).
func (s *Server) AuthEventHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		ctx := r.Context()
		b := s.browser(w, r)
		flow, _ := s.flow(ctx, b)
		event := auth.Event(r.PathValue("event"))

		var err error
		switch event {
		case auth.EventOpenLogin:
			err = flow.OpenLogin(ctx)
		case auth.EventShowRegister:
			err = flow.ShowRegister(ctx)
		case auth.EventShowLogin:
			err = flow.ShowLogin(ctx)
		case auth.EventCancel:
			err = flow.Cancel(ctx)
		case auth.EventSubmitLogin:
			err = flow.SubmitLogin(ctx, r.FormValue("uname"), r.FormValue("psw"), r.FormValue("remember") != "")
			metrics.RecordLogin("modal", metrics.ResultOf(err, isRejectedLogin))
		case auth.EventSubmitRegister:
			err = flow.SubmitRegister(ctx, auth.Registration{
				Username:        r.FormValue("registerUsername"),
				Email:           r.FormValue("email"),
				Password:        r.FormValue("newPassword"),
				ConfirmPassword: r.FormValue("confirmPassword"),
			})
			metrics.RecordRegistration(metrics.ResultOf(err, isRejectedRegistration))
		case auth.EventLogout:
			err = flow.Logout(ctx)
		default:
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}

		switch {
		case err == nil:
		case errors.Is(err, auth.ErrUnexpectedEvent):
			log.Debug().Err(err).Msg("Ignored login event")
		case isRejectedLogin(err), isRejectedRegistration(err):
			// Shown in the modal
		default:
			log.Err(err).Str("event", string(event)).Msg("Login event failed")
		}

		redirectSuccess(w, r, returnPath(r, RouteGallery))
	}
}

func isRejectedLogin(err error) bool {
	return errors.Is(err, apperrors.ErrInvalidCredential) || errors.Is(err, apperrors.ErrMissingField)
}

func isRejectedRegistration(err error) bool {
	return errors.Is(err, apperrors.ErrValidation) || errors.Is(err, apperrors.ErrDuplicateAccount)
}
