// Package forms implements the login form state machine and its validation
// rules.
package forms

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Its-donkey/loginform/internal/ui/model"
	"github.com/Its-donkey/loginform/logging"
)

const logCategory = "login"

// SubmitHandler checks credentials on behalf of the hosting application.
// A nil error resolves the submission as a success; any other error resolves
// it as a failure whose reason is the error text.
type SubmitHandler func(ctx context.Context, creds model.Credentials) error

// Renderer receives a fresh view after every state transition.
type Renderer interface {
	Render(view model.LoginView)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(view model.LoginView)

// Render calls f(view).
func (f RendererFunc) Render(view model.LoginView) { f(view) }

// Options configures a LoginForm. The zero value is a usable local-only form.
type Options struct {
	// Handler is invoked once per accepted submit. When nil, a valid submit
	// completes immediately as a success.
	Handler           SubmitHandler
	Messages          Messages
	MinPasswordLength int
	// ValidateOnChange re-checks a field's rules on every change instead of
	// waiting for submit.
	ValidateOnChange bool
	Renderer         Renderer
	Logger           *logging.Logger
}

// SubmitStatus reports what Submit did with a request.
type SubmitStatus int

const (
	// SubmitIgnored means a submission was already in flight.
	SubmitIgnored SubmitStatus = iota
	// SubmitInvalid means validation failed and the handler was not called.
	SubmitInvalid
	// SubmitAccepted means the handler was invoked and the Pending will resolve.
	SubmitAccepted
	// SubmitCompleted means no handler is configured and the form was reset.
	SubmitCompleted
)

func (s SubmitStatus) String() string {
	switch s {
	case SubmitIgnored:
		return "ignored"
	case SubmitInvalid:
		return "invalid"
	case SubmitAccepted:
		return "accepted"
	case SubmitCompleted:
		return "completed"
	default:
		return fmt.Sprintf("SubmitStatus(%d)", int(s))
	}
}

// LoginForm owns the email and password inputs, their validation errors and
// the single in-flight submission. It is safe for concurrent use.
type LoginForm struct {
	mu       sync.Mutex
	state    model.LoginFormState
	disposed bool

	handler          SubmitHandler
	validator        *Validator
	messages         Messages
	validateOnChange bool
	renderer         Renderer
	logger           *logging.Logger
}

// NewLoginForm returns an idle form with empty fields.
func NewLoginForm(opts Options) *LoginForm {
	msgs := opts.Messages.WithDefaults()
	return &LoginForm{
		state:            NewLoginFormState(),
		handler:          opts.Handler,
		validator:        DefaultValidator(msgs, opts.MinPasswordLength),
		messages:         msgs,
		validateOnChange: opts.ValidateOnChange,
		renderer:         opts.Renderer,
		logger:           opts.Logger,
	}
}

// View returns a snapshot of what a rendering layer needs to draw the form.
func (f *LoginForm) View() model.LoginView {
	f.mu.Lock()
	defer f.mu.Unlock()
	return BuildView(f.state)
}

// OnEmailChange replaces the email value.
func (f *LoginForm) OnEmailChange(value string) {
	f.onFieldChange(model.FieldEmail, value)
}

// OnPasswordChange replaces the password value.
func (f *LoginForm) OnPasswordChange(value string) {
	f.onFieldChange(model.FieldPassword, value)
}

func (f *LoginForm) onFieldChange(field model.Field, value string) {
	f.mu.Lock()
	if f.disposed {
		f.mu.Unlock()
		return
	}
	target := &f.state.Email
	if field == model.FieldPassword {
		target = &f.state.Password
	}
	previous := *target
	*target = value

	if previous == "" && value != "" {
		if fe, ok := f.state.Errors[field]; ok && fe.Kind == model.ErrorRequired {
			delete(f.state.Errors, field)
		}
		f.state.FormError = ""
	}
	if f.validateOnChange {
		if fe, failed := f.validator.ValidateField(field, credentials(f.state)); failed {
			f.state.Errors[field] = fe
		} else {
			delete(f.state.Errors, field)
		}
	}
	view := BuildView(f.state)
	f.mu.Unlock()

	f.render(view)
}

// Submit validates the current values and, when they pass, invokes the
// handler exactly once on its own goroutine. The returned Pending is nil
// unless the status is SubmitAccepted or SubmitCompleted.
func (f *LoginForm) Submit(ctx context.Context) (SubmitStatus, *Pending) {
	f.mu.Lock()
	if f.disposed || f.state.Submitting {
		f.mu.Unlock()
		f.logger.Debug(logCategory, "submit ignored while in flight", nil)
		return SubmitIgnored, nil
	}

	creds := credentials(f.state)
	result := f.validator.Validate(creds)
	if !result.Valid {
		f.state.Errors = copyErrors(result.FieldErrors)
		f.state.FormError = f.messages.FormInvalid
		view := BuildView(f.state)
		f.mu.Unlock()

		f.logger.Info(logCategory, "submit rejected by validation", map[string]any{
			"fields": errorKinds(result.FieldErrors),
		})
		f.render(view)
		return SubmitInvalid, nil
	}

	if f.handler == nil {
		ResetFormState(&f.state)
		view := BuildView(f.state)
		f.mu.Unlock()

		f.logger.Info(logCategory, "submit completed without handler", nil)
		f.render(view)
		return SubmitCompleted, resolvedPending(model.Success())
	}

	f.state.Errors = make(map[model.Field]model.FieldError)
	f.state.FormError = ""
	f.state.Submitting = true
	view := BuildView(f.state)
	f.mu.Unlock()

	f.logger.Info(logCategory, "submit accepted", map[string]any{"email": creds.Email})
	f.render(view)

	pending := newPending()
	go f.run(ctx, creds, pending)
	return SubmitAccepted, pending
}

func (f *LoginForm) run(ctx context.Context, creds model.Credentials, pending *Pending) {
	start := time.Now()
	outcome := f.invoke(ctx, creds)
	f.apply(outcome, time.Since(start))
	pending.resolve(outcome)
}

func (f *LoginForm) invoke(ctx context.Context, creds model.Credentials) (outcome model.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			f.logger.Error(logCategory, "submit handler panicked", fmt.Errorf("%v", r), nil)
			outcome = model.Failure(f.messages.SubmitFailed)
		}
	}()
	if err := f.handler(ctx, creds); err != nil {
		reason := strings.TrimSpace(err.Error())
		if reason == "" {
			reason = f.messages.SubmitFailed
		}
		return model.Failure(reason)
	}
	return model.Success()
}

func (f *LoginForm) apply(outcome model.Outcome, elapsed time.Duration) {
	f.mu.Lock()
	if f.disposed {
		f.mu.Unlock()
		f.logger.Debug(logCategory, "discarding outcome for disposed form", map[string]any{"ok": outcome.OK})
		return
	}
	if outcome.OK {
		ResetFormState(&f.state)
	} else {
		f.state.Submitting = false
		f.state.FormError = outcome.Reason
	}
	view := BuildView(f.state)
	f.mu.Unlock()

	fields := map[string]any{"ok": outcome.OK, "elapsed_ms": elapsed.Milliseconds()}
	if outcome.OK {
		f.logger.Info(logCategory, "submit succeeded", fields)
	} else {
		fields["reason"] = outcome.Reason
		f.logger.Warn(logCategory, "submit failed", fields)
	}
	f.render(view)
}

// Dispose detaches the form. Outcomes that resolve afterwards are not applied
// and further input is ignored.
func (f *LoginForm) Dispose() {
	f.mu.Lock()
	f.disposed = true
	f.mu.Unlock()
}

func (f *LoginForm) render(view model.LoginView) {
	if f.renderer != nil {
		f.renderer.Render(view)
	}
}

func credentials(state model.LoginFormState) model.Credentials {
	return model.Credentials{Email: state.Email, Password: state.Password}
}

func errorKinds(errs map[model.Field]model.FieldError) map[string]string {
	out := make(map[string]string, len(errs))
	for field, fe := range errs {
		out[string(field)] = string(fe.Kind)
	}
	return out
}
