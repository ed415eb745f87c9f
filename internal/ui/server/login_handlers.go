package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/Its-donkey/loginform/internal/auth"
	"github.com/Its-donkey/loginform/internal/ui/forms"
	"github.com/Its-donkey/loginform/internal/ui/model"
)

const (
	apiSuccessMessage = "Login Successful"
	apiFailureMessage = "Login Failed"
	maxAPIBodyBytes   = 16 << 10
)

type loginPageData struct {
	basePageData
	View model.LoginView
}

type homePageData struct {
	basePageData
	Email     string
	ExpiresAt string
}

// loginAttempt is the result of driving one LoginForm through a submit.
type loginAttempt struct {
	status  forms.SubmitStatus
	outcome model.Outcome
	view    model.LoginView
	token   auth.Token
	timeout bool
}

// attemptLogin feeds the credentials through a fresh LoginForm exactly as a
// user typing into the page would, then waits for the submission to settle.
func (s *server) attemptLogin(ctx context.Context, email, password string) loginAttempt {
	var (
		mu        sync.Mutex
		issued    auth.Token
		abandoned bool
	)
	opts := s.formOptions
	opts.Handler = s.sessions.SubmitHandler(func(token auth.Token) {
		mu.Lock()
		defer mu.Unlock()
		if abandoned {
			s.sessions.Logout(token.Value)
			s.logger.Warn("server", "revoked session issued after timeout", map[string]any{"email": token.Email})
			return
		}
		issued = token
	})
	form := forms.NewLoginForm(opts)
	form.OnEmailChange(email)
	form.OnPasswordChange(password)

	submitCtx, cancel := context.WithTimeout(ctx, s.submitTimeout)
	defer cancel()
	status, pending := form.Submit(submitCtx)
	attempt := loginAttempt{status: status}
	if pending != nil {
		outcome, err := pending.Wait(submitCtx)
		if err != nil {
			mu.Lock()
			abandoned = true
			if issued.Value != "" {
				s.sessions.Logout(issued.Value)
				issued = auth.Token{}
			}
			mu.Unlock()
			// The handler may keep running; its late outcome must not touch this form.
			form.Dispose()
			attempt.timeout = true
			attempt.outcome = model.Failure(timeoutMessage)
		} else {
			attempt.outcome = outcome
			if outcome.OK {
				mu.Lock()
				attempt.token = issued
				mu.Unlock()
			}
		}
	}

	attempt.view = form.View()
	if attempt.timeout {
		attempt.view.Phase = model.PhaseIdle
		attempt.view.Submitting = false
		attempt.view.FormError = timeoutMessage
	}
	return attempt
}

func (s *server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.sessionFromRequest(r); ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	data := loginPageData{
		basePageData: s.basePage(r, s.siteName),
		View:         forms.BuildView(forms.NewLoginFormState()),
	}
	s.render(w, "login", http.StatusOK, data)
}

func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid login form", http.StatusBadRequest)
		return
	}
	attempt := s.attemptLogin(r.Context(), r.PostFormValue("email"), r.PostFormValue("password"))

	if attempt.outcome.OK && attempt.token.Value != "" {
		s.setSession(w, r, attempt.token)
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	status := http.StatusUnauthorized
	switch {
	case attempt.status == forms.SubmitInvalid:
		status = http.StatusUnprocessableEntity
	case attempt.timeout:
		status = http.StatusGatewayTimeout
	}
	data := loginPageData{
		basePageData: s.basePage(r, s.siteName),
		View:         withoutPassword(attempt.view),
	}
	s.render(w, "login", status, data)
}

func (s *server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token, ok := s.sessionFromRequest(r); ok {
		s.sessions.Logout(token.Value)
		s.logger.Info("server", "logged out", map[string]any{"email": token.Email})
	}
	s.clearSession(w)
	http.Redirect(w, r, "/login?"+url.Values{"msg": {"Signed out."}}.Encode(), http.StatusSeeOther)
}

func (s *server) handleHome(w http.ResponseWriter, r *http.Request) {
	token, ok := s.sessionFromRequest(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	base := s.basePage(r, s.siteName)
	base.LoggedIn = true
	s.render(w, "home", http.StatusOK, homePageData{
		basePageData: base,
		Email:        token.Email,
		ExpiresAt:    token.ExpiresAt.UTC().Format(time.RFC1123),
	})
}

type apiLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type apiLoginResponse struct {
	Status    string            `json:"status"`
	Message   string            `json:"message"`
	Token     string            `json:"token,omitempty"`
	ExpiresAt *time.Time        `json:"expires_at,omitempty"`
	Error     string            `json:"error,omitempty"`
	Errors    map[string]string `json:"errors,omitempty"`
}

func (s *server) handleAPILogin(w http.ResponseWriter, r *http.Request) {
	var req apiLoginRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxAPIBodyBytes))
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		status := http.StatusBadRequest
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		s.writeJSON(w, status, apiLoginResponse{Status: "error", Message: "invalid request body"})
		return
	}

	attempt := s.attemptLogin(r.Context(), req.Email, req.Password)
	switch {
	case attempt.status == forms.SubmitInvalid:
		s.writeJSON(w, http.StatusBadRequest, apiLoginResponse{
			Status:  "invalid",
			Message: attempt.view.FormError,
			Errors:  fieldErrors(attempt.view),
		})
	case attempt.timeout:
		s.writeJSON(w, http.StatusGatewayTimeout, apiLoginResponse{
			Status:  "failed",
			Message: apiFailureMessage,
			Error:   timeoutMessage,
		})
	case attempt.outcome.OK && attempt.token.Value != "":
		expires := attempt.token.ExpiresAt
		s.writeJSON(w, http.StatusOK, apiLoginResponse{
			Status:    "ok",
			Message:   apiSuccessMessage,
			Token:     attempt.token.Value,
			ExpiresAt: &expires,
		})
	default:
		s.writeJSON(w, http.StatusUnauthorized, apiLoginResponse{
			Status:  "failed",
			Message: apiFailureMessage,
			Error:   attempt.outcome.Reason,
		})
	}
}

func (s *server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("server", "failed to encode response", err, nil)
	}
}

// withoutPassword prepares a view for HTML so the password is never echoed
// back to the browser.
func withoutPassword(view model.LoginView) model.LoginView {
	view.Password = ""
	view.CanSubmit = !view.Submitting && view.Email != "" && view.Password != ""
	return view
}

func fieldErrors(view model.LoginView) map[string]string {
	out := make(map[string]string)
	if view.EmailError != "" {
		out[string(model.FieldEmail)] = view.EmailError
	}
	if view.PasswordError != "" {
		out[string(model.FieldPassword)] = view.PasswordError
	}
	return out
}
