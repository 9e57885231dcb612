// Package auth drives the login and registration modal of a browsing context.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	apperrors "github.com/shanebasham/artstore/internal/errors"
	"github.com/shanebasham/artstore/kvstore"
	"github.com/shanebasham/artstore/sessions"
	"github.com/shanebasham/artstore/users"
)

// KeyAuthView is the ephemeral store key holding the modal state.
const KeyAuthView = "authView"

// State is the position of a browsing context in the login flow.
type State string

const (
	StateLoggedOut     State = "logged_out"
	StateLoginModal    State = "login_modal"
	StateRegisterModal State = "register_modal"
	StateLoggedIn      State = "logged_in"
)

// Event is a user action posted to the flow.
type Event string

const (
	EventOpenLogin      Event = "open-login"
	EventShowRegister   Event = "show-register"
	EventShowLogin      Event = "show-login"
	EventCancel         Event = "cancel"
	EventSubmitLogin    Event = "login"
	EventSubmitRegister Event = "register"
	EventLogout         Event = "logout"
)

const AccountCreatedNotice = "Account created! Please log in."

// ErrUnexpectedEvent is returned for an event the current state does not accept.
var ErrUnexpectedEvent = errors.New("event not valid in current state")

// View is what the header and modal render.
type View struct {
	State       State  `json:"state"`
	DisplayName string `json:"displayName,omitempty"`
	Error       string `json:"error,omitempty"`
	Notice      string `json:"notice,omitempty"`
	Identifier  string `json:"identifier,omitempty"` // prefilled login field
	Reload      bool   `json:"reload,omitempty"`
}

// ModalOpen reports whether the login or register modal is showing.
func (v View) ModalOpen() bool {
	return v.State == StateLoginModal || v.State == StateRegisterModal
}

// Deps holds the collaborators of a Flow.
type Deps struct {
	Sessions      *sessions.Store
	Registry      users.Registry
	Authenticator Authenticator
	Ephemeral     kvstore.Store // per-tab store holding the modal state
}

// Flow is the login state machine of one browsing context.
type Flow struct {
	deps Deps
	view View
}

func NewFlow(deps Deps) *Flow {
	return &Flow{
		deps: deps,
		view: View{State: StateLoggedOut},
	}
}

// View returns the current projection without changing anything.
func (f *Flow) View() View {
	return f.view
}

// Restore rebuilds the flow on page load: LoggedIn when the session store holds
// a session, otherwise the saved modal state. Error, Notice and Reload are shown
// once and cleared from the saved state. Nothing is written unless the saved
// state changed.
func (f *Flow) Restore(ctx context.Context) (View, error) {
	saved, err := f.loadView(ctx)
	if err != nil {
		return f.view, err
	}
	f.view = saved

	session, err := f.deps.Sessions.Load(ctx)
	switch {
	case err == nil:
		f.view.State = StateLoggedIn
		f.view.DisplayName = session.DisplayName
	case errors.Is(err, apperrors.ErrSessionNotFound):
		if f.view.State == StateLoggedIn || f.view.State == "" {
			f.view.State = StateLoggedOut
		}
		f.view.DisplayName = ""
	default:
		return f.view, err
	}

	shown := f.view
	f.view.Error, f.view.Notice, f.view.Reload = "", "", false
	if f.view == saved {
		return shown, nil
	}
	return shown, f.saveView(ctx)
}

// OpenLogin shows the login modal.
func (f *Flow) OpenLogin(ctx context.Context) error {
	if f.view.State != StateLoggedOut {
		return f.unexpected(EventOpenLogin)
	}
	return f.moveTo(ctx, StateLoginModal)
}

// ShowRegister swaps the login form for the create-account form.
func (f *Flow) ShowRegister(ctx context.Context) error {
	if f.view.State != StateLoginModal {
		return f.unexpected(EventShowRegister)
	}
	return f.moveTo(ctx, StateRegisterModal)
}

// ShowLogin swaps the create-account form back for the login form.
func (f *Flow) ShowLogin(ctx context.Context) error {
	if f.view.State != StateRegisterModal {
		return f.unexpected(EventShowLogin)
	}
	return f.moveTo(ctx, StateLoginModal)
}

// Cancel returns from the register form to the login form, or closes the
// login modal.
func (f *Flow) Cancel(ctx context.Context) error {
	switch f.view.State {
	case StateRegisterModal:
		return f.moveTo(ctx, StateLoginModal)
	case StateLoginModal:
		f.view.Identifier = ""
		return f.moveTo(ctx, StateLoggedOut)
	}
	return f.unexpected(EventCancel)
}

// SubmitLogin checks the credentials and saves the session. On failure the
// modal stays open with the error message.
func (f *Flow) SubmitLogin(ctx context.Context, identifier, password string, remember bool) error {
	if f.view.State != StateLoginModal {
		return f.unexpected(EventSubmitLogin)
	}
	identifier = strings.TrimSpace(identifier)

	result, err := f.deps.Authenticator.Authenticate(ctx, identifier, password)
	if err != nil {
		f.view.Error = apperrors.UserMessage(err)
		f.view.Notice = ""
		f.view.Identifier = identifier
		return errors.Join(err, f.saveView(ctx))
	}

	if err := f.deps.Sessions.Save(ctx, result.Token, result.DisplayName, remember); err != nil {
		f.view.Error = apperrors.UserMessage(err)
		return errors.Join(err, f.saveView(ctx))
	}

	f.view = View{State: StateLoggedIn, DisplayName: result.DisplayName}
	return f.saveView(ctx)
}

// SubmitRegister validates the form and creates the account. On success the
// login form is shown with the new email prefilled.
func (f *Flow) SubmitRegister(ctx context.Context, r Registration) error {
	if f.view.State != StateRegisterModal {
		return f.unexpected(EventSubmitRegister)
	}
	r = r.Normalize()

	err := ValidateRegistration(r)
	if err == nil {
		err = f.deps.Registry.Register(ctx, r.Username, r.Email, r.Password)
	}
	if err != nil {
		f.view.Error = apperrors.UserMessage(err)
		f.view.Notice = ""
		return errors.Join(err, f.saveView(ctx))
	}

	f.view = View{State: StateLoginModal, Identifier: r.Email, Notice: AccountCreatedNotice}
	return f.saveView(ctx)
}

// Logout clears the session from both stores and asks the page to reload.
func (f *Flow) Logout(ctx context.Context) error {
	if f.view.State != StateLoggedIn {
		return f.unexpected(EventLogout)
	}
	if err := f.deps.Sessions.Clear(ctx); err != nil {
		return err
	}
	f.view = View{State: StateLoggedOut, Reload: true}
	return f.saveView(ctx)
}

func (f *Flow) moveTo(ctx context.Context, state State) error {
	f.view.State = state
	f.view.Error = ""
	f.view.Notice = ""
	return f.saveView(ctx)
}

func (f *Flow) unexpected(event Event) error {
	return fmt.Errorf("%s in %s: %w", event, f.view.State, ErrUnexpectedEvent)
}

func (f *Flow) loadView(ctx context.Context) (View, error) {
	raw, err := f.deps.Ephemeral.Get(ctx, KeyAuthView)
	if errors.Is(err, kvstore.ErrNotFound) {
		return View{State: StateLoggedOut}, nil
	}
	if err != nil {
		return View{}, fmt.Errorf("load auth view: %w", err)
	}
	var v View
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return View{State: StateLoggedOut}, nil
	}
	return v, nil
}

func (f *Flow) saveView(ctx context.Context) error {
	data, err := json.Marshal(f.view)
	if err != nil {
		return fmt.Errorf("encode auth view: %w", err)
	}
	if err := f.deps.Ephemeral.Set(ctx, KeyAuthView, string(data)); err != nil {
		return fmt.Errorf("save auth view: %w", err)
	}
	return nil
}
