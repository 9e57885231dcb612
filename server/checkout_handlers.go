package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/shanebasham/artstore/checkout"
	apperrors "github.com/shanebasham/artstore/internal/errors"
	"github.com/shanebasham/artstore/metrics"
)

const noArtworkSelected = "No artwork selected"

// CheckoutPageData renders the order summary and payment form.
type CheckoutPageData struct {
	PageData
	Summary  *checkout.Summary
	Empty    string
	Form     checkout.PaymentForm // card fields are never echoed back
	Error    string
	ErrField string
}

// CheckoutPageHandler shows the pending purchase priced for today (GET /checkout)
func (s *Server) CheckoutPageHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("checkout.html")

	return func(w http.ResponseWriter, r *http.Request) {
		page, b := s.pageData(w, r)
		data := s.checkoutData(r, page, b)
		render(w, tmpl, "checkout.html", data)
	}
}

// CheckoutSubmitHandler validates the payment form (POST /checkout). Nothing is
// charged; a valid form for a priced pending purchase goes to the confirmation
// page. Without a pending purchase the empty checkout is shown with 409.
func (s *Server) CheckoutSubmitHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("checkout.html")

	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		page, b := s.pageData(w, r)

		form := checkout.PaymentForm{
			FirstName:  strings.TrimSpace(r.FormValue("firstName")),
			LastName:   strings.TrimSpace(r.FormValue("lastName")),
			Zip:        strings.TrimSpace(r.FormValue("zip")),
			CardNumber: r.FormValue("cardNumber"),
			Expiration: r.FormValue("expiration"),
			Code:       r.FormValue("code"),
		}

		data := s.checkoutData(r, page, b)
		if data.Summary == nil {
			// Nothing to pay for; the card is not even checked.
			metrics.RecordCheckout(metrics.ResultRejected)
			w.Header().Set("Content-Type", contentTypeHTML)
			w.WriteHeader(http.StatusConflict)
			render(w, tmpl, "checkout.html", data)
			return
		}

		err := checkout.ValidatePayment(form, s.nowTime())
		metrics.RecordCheckout(metrics.ResultOf(err, isValidationErr))
		if err == nil {
			redirectSuccess(w, r, RouteCheckoutSuccess)
			return
		}

		data.Form = checkout.PaymentForm{FirstName: form.FirstName, LastName: form.LastName, Zip: form.Zip}
		data.Error = apperrors.UserMessage(err)
		data.ErrField = apperrors.FieldOf(err)
		w.Header().Set("Content-Type", contentTypeHTML)
		w.WriteHeader(http.StatusUnprocessableEntity)
		render(w, tmpl, "checkout.html", data)
	}
}

func (s *Server) checkoutData(r *http.Request, page PageData, b browserContext) CheckoutPageData {
	data := CheckoutPageData{PageData: page}

	purchase, err := b.purchases().Load(r.Context())
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			log.Err(err).Msg("Failed to load pending purchase")
		}
		data.Empty = noArtworkSelected
		return data
	}

	breakdown, err := purchase.Quote(checkout.IsWeekend(s.nowTime()))
	if err != nil {
		log.Err(err).Str("price", purchase.SelectedPrint.Price).Msg("Failed to price pending purchase")
		data.Empty = noArtworkSelected
		return data
	}
	summary := checkout.NewSummary(purchase, breakdown)
	data.Summary = &summary
	return data
}

// CheckoutSuccessHandler shows the order confirmation (GET /checkout/success)
func (s *Server) CheckoutSuccessHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("success.html")

	return func(w http.ResponseWriter, r *http.Request) {
		page, _ := s.pageData(w, r)
		render(w, tmpl, "success.html", page)
	}
}

func isValidationErr(err error) bool {
	return errors.Is(err, apperrors.ErrValidation)
}
