package forms

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/Its-donkey/loginform/internal/ui/model"
	"github.com/Its-donkey/loginform/logging"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// recordingHandler counts calls and blocks each one until released.
type recordingHandler struct {
	calls   atomic.Int32
	mu      sync.Mutex
	got     []model.Credentials
	release chan error
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{release: make(chan error, 16)}
}

func (h *recordingHandler) handle(ctx context.Context, creds model.Credentials) error {
	h.calls.Add(1)
	h.mu.Lock()
	h.got = append(h.got, creds)
	h.mu.Unlock()
	return <-h.release
}

func waitOutcome(t *testing.T, p *Pending) model.Outcome {
	t.Helper()
	if p == nil {
		t.Fatalf("expected a pending submission")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	outcome, err := p.Wait(ctx)
	if err != nil {
		t.Fatalf("wait for outcome: %v", err)
	}
	return outcome
}

func fill(f *LoginForm, email, password string) {
	f.OnEmailChange(email)
	f.OnPasswordChange(password)
}

func TestNewLoginFormStartsIdleAndEmpty(t *testing.T) {
	f := NewLoginForm(Options{})
	want := model.LoginView{Phase: model.PhaseIdle}
	if diff := cmp.Diff(want, f.View()); diff != "" {
		t.Fatalf("unexpected initial view (-want +got):\n%s", diff)
	}
}

func TestSubmitEmptyFormReportsRequiredFields(t *testing.T) {
	h := newRecordingHandler()
	f := NewLoginForm(Options{Handler: h.handle})

	status, pending := f.Submit(context.Background())
	if status != SubmitInvalid || pending != nil {
		t.Fatalf("expected invalid submit without pending, got %v %v", status, pending)
	}
	view := f.View()
	if view.EmailError != "email is required" || view.PasswordError != "password is required" {
		t.Fatalf("expected required messages, got %+v", view)
	}
	if view.FormError == "" {
		t.Fatalf("expected a form level summary")
	}
	if h.calls.Load() != 0 {
		t.Fatalf("handler must not run for invalid input, calls=%d", h.calls.Load())
	}
}

func TestSubmitOneFieldEmpty(t *testing.T) {
	cases := []struct {
		name     string
		email    string
		password string
		field    model.Field
	}{
		{name: "missing password", email: "a@b.com", field: model.FieldPassword},
		{name: "missing email", password: "secret1", field: model.FieldEmail},
	}
	for _, tc := range cases {
		h := newRecordingHandler()
		f := NewLoginForm(Options{Handler: h.handle})
		fill(f, tc.email, tc.password)
		if status, _ := f.Submit(context.Background()); status != SubmitInvalid {
			t.Fatalf("%s: expected invalid, got %v", tc.name, status)
		}
		view := f.View()
		if tc.field == model.FieldEmail && (view.EmailError == "" || view.PasswordError != "") {
			t.Fatalf("%s: unexpected errors %+v", tc.name, view)
		}
		if tc.field == model.FieldPassword && (view.PasswordError == "" || view.EmailError != "") {
			t.Fatalf("%s: unexpected errors %+v", tc.name, view)
		}
		if h.calls.Load() != 0 {
			t.Fatalf("%s: handler called", tc.name)
		}
	}
}

func TestSubmitValidInvokesHandlerOnceAndResets(t *testing.T) {
	h := newRecordingHandler()
	f := NewLoginForm(Options{Handler: h.handle})
	fill(f, "a@b.com", "secret1")

	status, pending := f.Submit(context.Background())
	if status != SubmitAccepted {
		t.Fatalf("expected accepted, got %v", status)
	}
	if view := f.View(); !view.Submitting || view.CanSubmit || view.Phase != model.PhaseSubmitting {
		t.Fatalf("expected submitting view, got %+v", view)
	}

	h.release <- nil
	if outcome := waitOutcome(t, pending); !outcome.OK {
		t.Fatalf("expected success, got %+v", outcome)
	}
	if h.calls.Load() != 1 {
		t.Fatalf("expected exactly one call, got %d", h.calls.Load())
	}
	if diff := cmp.Diff([]model.Credentials{{Email: "a@b.com", Password: "secret1"}}, h.got); diff != "" {
		t.Fatalf("unexpected credentials (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(model.LoginView{Phase: model.PhaseIdle}, f.View()); diff != "" {
		t.Fatalf("expected full reset (-want +got):\n%s", diff)
	}
}

func TestSubmitMalformedEmailSkipsHandler(t *testing.T) {
	h := newRecordingHandler()
	f := NewLoginForm(Options{Handler: h.handle})
	fill(f, "bad-email", "secret1")

	if status, _ := f.Submit(context.Background()); status != SubmitInvalid {
		t.Fatalf("expected invalid, got %v", status)
	}
	view := f.View()
	if view.EmailError != "invalid email format" || view.PasswordError != "" {
		t.Fatalf("expected only the format error, got %+v", view)
	}
	if h.calls.Load() != 0 {
		t.Fatalf("handler called for malformed email")
	}
}

func TestSubmitEmailWithSeveralAtSignsSkipsHandler(t *testing.T) {
	h := newRecordingHandler()
	f := NewLoginForm(Options{Handler: h.handle})
	fill(f, "a@b@c.com", "secret1")

	status, pending := f.Submit(context.Background())
	if status != SubmitInvalid || pending != nil {
		t.Fatalf("expected invalid with no pending, got %v %v", status, pending)
	}
	if got := f.View().EmailError; got != "invalid email format" {
		t.Fatalf("expected format error, got %q", got)
	}
	if h.calls.Load() != 0 {
		t.Fatalf("handler called for %q", "a@b@c.com")
	}
}

func TestSubmitFailureKeepsFieldsAndSurfacesReason(t *testing.T) {
	h := newRecordingHandler()
	f := NewLoginForm(Options{Handler: h.handle})
	fill(f, "a@b.com", "secret1")

	_, pending := f.Submit(context.Background())
	h.release <- errors.New("Invalid credentials")
	outcome := waitOutcome(t, pending)
	if outcome.OK || outcome.Reason != "Invalid credentials" {
		t.Fatalf("unexpected outcome %+v", outcome)
	}

	want := model.LoginView{
		Phase:     model.PhaseIdle,
		Email:     "a@b.com",
		Password:  "secret1",
		FormError: "Invalid credentials",
		CanSubmit: true,
	}
	if diff := cmp.Diff(want, f.View()); diff != "" {
		t.Fatalf("unexpected view after failure (-want +got):\n%s", diff)
	}
}

func TestSubmitBlankFailureUsesGenericReason(t *testing.T) {
	f := NewLoginForm(Options{Handler: func(context.Context, model.Credentials) error {
		return errors.New("  ")
	}})
	fill(f, "a@b.com", "secret1")
	_, pending := f.Submit(context.Background())
	if outcome := waitOutcome(t, pending); outcome.Reason != DefaultMessages().SubmitFailed {
		t.Fatalf("expected generic reason, got %+v", outcome)
	}
}

func TestRepeatedSubmitWhileInFlightIsIgnored(t *testing.T) {
	h := newRecordingHandler()
	f := NewLoginForm(Options{Handler: h.handle})
	fill(f, "a@b.com", "secret1")

	status, pending := f.Submit(context.Background())
	if status != SubmitAccepted {
		t.Fatalf("expected first submit accepted, got %v", status)
	}
	for i := 0; i < 2; i++ {
		again, p := f.Submit(context.Background())
		if again != SubmitIgnored || p != nil {
			t.Fatalf("expected re-entrant submit to be ignored, got %v", again)
		}
	}
	if h.calls.Load() > 1 {
		t.Fatalf("expected at most one call while in flight, got %d", h.calls.Load())
	}

	h.release <- nil
	waitOutcome(t, pending)
	if h.calls.Load() != 1 {
		t.Fatalf("expected exactly one call, got %d", h.calls.Load())
	}
}

func TestConcurrentSubmitsAcceptOnlyOne(t *testing.T) {
	h := newRecordingHandler()
	f := NewLoginForm(Options{Handler: h.handle})
	fill(f, "a@b.com", "secret1")

	var (
		wg       sync.WaitGroup
		accepted atomic.Int32
		mu       sync.Mutex
		pendings []*Pending
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if status, p := f.Submit(context.Background()); status == SubmitAccepted {
				accepted.Add(1)
				mu.Lock()
				pendings = append(pendings, p)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if accepted.Load() != 1 {
		t.Fatalf("expected one accepted submit, got %d", accepted.Load())
	}
	h.release <- nil
	waitOutcome(t, pendings[0])
	if h.calls.Load() != 1 {
		t.Fatalf("expected one handler call, got %d", h.calls.Load())
	}
}

func TestInvalidSubmitIsIdempotent(t *testing.T) {
	h := newRecordingHandler()
	f := NewLoginForm(Options{Handler: h.handle})
	fill(f, "bad-email", "secret1")

	f.Submit(context.Background())
	first := f.View()
	for i := 0; i < 5; i++ {
		f.Submit(context.Background())
	}
	if diff := cmp.Diff(first, f.View()); diff != "" {
		t.Fatalf("error state drifted (-first +now):\n%s", diff)
	}
	if h.calls.Load() != 0 {
		t.Fatalf("handler called %d times", h.calls.Load())
	}
}

func TestTypingClearsRequiredErrors(t *testing.T) {
	f := NewLoginForm(Options{})
	f.Submit(context.Background())

	f.OnEmailChange("test@example.com")
	view := f.View()
	if view.EmailError != "" {
		t.Fatalf("expected email error cleared, got %q", view.EmailError)
	}
	if view.FormError != "" {
		t.Fatalf("expected form error cleared on empty to non-empty change, got %q", view.FormError)
	}
	if view.PasswordError != "password is required" {
		t.Fatalf("password error should remain, got %q", view.PasswordError)
	}

	f.OnPasswordChange("password123")
	if view := f.View(); view.HasErrors() {
		t.Fatalf("expected no errors, got %+v", view)
	}
}

func TestTypingKeepsFormatErrorUntilNextSubmit(t *testing.T) {
	f := NewLoginForm(Options{})
	fill(f, "bad-email", "secret1")
	f.Submit(context.Background())

	f.OnEmailChange("still-bad")
	if view := f.View(); view.EmailError != "invalid email format" {
		t.Fatalf("format error should stay until revalidated, got %+v", view)
	}
}

func TestValidateOnChange(t *testing.T) {
	f := NewLoginForm(Options{ValidateOnChange: true})

	f.OnEmailChange("bad")
	if view := f.View(); view.EmailError != "invalid email format" {
		t.Fatalf("expected live format error, got %+v", view)
	}
	f.OnEmailChange("good@example.com")
	if view := f.View(); view.EmailError != "" {
		t.Fatalf("expected error cleared, got %+v", view)
	}
	f.OnEmailChange("")
	if view := f.View(); view.EmailError != "email is required" {
		t.Fatalf("expected required error once emptied, got %+v", view)
	}
}

func TestCanSubmitTracksFieldsAndFlight(t *testing.T) {
	h := newRecordingHandler()
	f := NewLoginForm(Options{Handler: h.handle})
	if f.View().CanSubmit {
		t.Fatalf("empty form must not allow submit")
	}
	f.OnEmailChange("test@example.com")
	if f.View().CanSubmit {
		t.Fatalf("email alone must not allow submit")
	}
	f.OnPasswordChange("password123")
	if !f.View().CanSubmit {
		t.Fatalf("both fields set should allow submit")
	}

	_, pending := f.Submit(context.Background())
	if f.View().CanSubmit {
		t.Fatalf("submit must be disabled while in flight")
	}
	h.release <- errors.New("nope")
	waitOutcome(t, pending)
	if !f.View().CanSubmit {
		t.Fatalf("submit should be enabled again after a failure")
	}
}

func TestFieldChangesWhileSubmitting(t *testing.T) {
	h := newRecordingHandler()
	f := NewLoginForm(Options{Handler: h.handle})
	fill(f, "a@b.com", "secret1")
	_, pending := f.Submit(context.Background())

	f.OnEmailChange("other@b.com")
	if view := f.View(); view.Email != "other@b.com" || !view.Submitting {
		t.Fatalf("expected edit during flight to apply, got %+v", view)
	}

	h.release <- errors.New("Invalid credentials")
	waitOutcome(t, pending)
	if view := f.View(); view.Email != "other@b.com" {
		t.Fatalf("failure must keep current values, got %+v", view)
	}
	if creds := h.got[0]; creds.Email != "a@b.com" {
		t.Fatalf("handler should see values at submit time, got %+v", creds)
	}
}

func TestSubmitWithoutHandlerCompletesImmediately(t *testing.T) {
	f := NewLoginForm(Options{})
	fill(f, "test@example.com", "password123")

	status, pending := f.Submit(context.Background())
	if status != SubmitCompleted {
		t.Fatalf("expected completed, got %v", status)
	}
	if outcome, ok := pending.Outcome(); !ok || !outcome.OK {
		t.Fatalf("expected resolved success, got %+v ok=%v", outcome, ok)
	}
	if diff := cmp.Diff(model.LoginView{Phase: model.PhaseIdle}, f.View()); diff != "" {
		t.Fatalf("expected reset (-want +got):\n%s", diff)
	}
}

func TestDisposeDropsLateOutcome(t *testing.T) {
	h := newRecordingHandler()
	var renders atomic.Int32
	f := NewLoginForm(Options{
		Handler:  h.handle,
		Renderer: RendererFunc(func(model.LoginView) { renders.Add(1) }),
	})
	fill(f, "a@b.com", "secret1")
	_, pending := f.Submit(context.Background())
	before := renders.Load()

	f.Dispose()
	h.release <- nil
	waitOutcome(t, pending)

	if view := f.View(); !view.Submitting || view.Email != "a@b.com" {
		t.Fatalf("disposed form must not apply the outcome, got %+v", view)
	}
	if renders.Load() != before {
		t.Fatalf("disposed form must not render, renders %d -> %d", before, renders.Load())
	}
	if status, _ := f.Submit(context.Background()); status != SubmitIgnored {
		t.Fatalf("disposed form should ignore submits, got %v", status)
	}
	f.OnEmailChange("x@y.z")
	if f.View().Email != "a@b.com" {
		t.Fatalf("disposed form should ignore input")
	}
}

func TestHandlerPanicBecomesFailure(t *testing.T) {
	f := NewLoginForm(Options{Handler: func(context.Context, model.Credentials) error {
		panic("boom")
	}})
	fill(f, "a@b.com", "secret1")
	_, pending := f.Submit(context.Background())
	outcome := waitOutcome(t, pending)
	if outcome.OK || outcome.Reason != DefaultMessages().SubmitFailed {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
	if f.View().Submitting {
		t.Fatalf("form should be idle after a panic")
	}
}

func TestRendererSeesEveryTransition(t *testing.T) {
	h := newRecordingHandler()
	var (
		mu    sync.Mutex
		views []model.LoginView
	)
	f := NewLoginForm(Options{
		Handler: h.handle,
		Renderer: RendererFunc(func(v model.LoginView) {
			mu.Lock()
			views = append(views, v)
			mu.Unlock()
		}),
	})
	fill(f, "a@b.com", "secret1")
	_, pending := f.Submit(context.Background())
	h.release <- nil
	waitOutcome(t, pending)

	mu.Lock()
	defer mu.Unlock()
	if len(views) != 4 {
		t.Fatalf("expected 4 renders (two edits, submit, outcome), got %d", len(views))
	}
	if !views[2].Submitting || views[3].Submitting {
		t.Fatalf("unexpected render sequence %+v", views)
	}
}

func TestLoggingNeverIncludesPassword(t *testing.T) {
	logger := logging.New("test", logging.DEBUG)
	entries := make(chan logging.Entry, 32)
	unsubscribe := logger.Subscribe(entries)

	h := newRecordingHandler()
	f := NewLoginForm(Options{Handler: h.handle, Logger: logger})
	f.OnPasswordChange("hunter22")
	if status, _ := f.Submit(context.Background()); status != SubmitInvalid {
		t.Fatalf("expected invalid submit, got %v", status)
	}
	f.OnEmailChange("a@b.com")
	_, pending := f.Submit(context.Background())
	if status, _ := f.Submit(context.Background()); status != SubmitIgnored {
		t.Fatalf("expected second submit to be ignored, got %v", status)
	}
	h.release <- errors.New("Invalid credentials")
	waitOutcome(t, pending)

	unsubscribe()
	close(entries)
	seen := 0
	for entry := range entries {
		seen++
		data, err := json.Marshal(entry)
		if err != nil {
			t.Fatalf("marshal entry: %v", err)
		}
		if strings.Contains(string(data), "hunter22") {
			t.Fatalf("password leaked into log entry: %s", data)
		}
	}
	if seen == 0 {
		t.Fatalf("expected log entries")
	}
}

func TestSubmitStatusString(t *testing.T) {
	if SubmitAccepted.String() != "accepted" || SubmitStatus(42).String() != "SubmitStatus(42)" {
		t.Fatalf("unexpected status strings")
	}
}
