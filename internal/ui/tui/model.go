// Package tui draws the login form in a terminal with bubbletea.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Its-donkey/loginform/internal/ui/forms"
	"github.com/Its-donkey/loginform/internal/ui/model"
	"github.com/Its-donkey/loginform/logging"
)

const logCategory = "tui"

type focusTarget int

const (
	focusEmail focusTarget = iota
	focusPassword
	focusSubmit
	focusCount
)

// Options configures the terminal front-end.
type Options struct {
	Title  string
	Styles *Styles
	Logger *logging.Logger
	// QuitOnSuccess ends the program after the first successful sign in.
	QuitOnSuccess bool
}

// Result summarises how the session ended.
type Result struct {
	SignedIn bool
	Email    string
	Aborted  bool
}

type outcomeMsg struct {
	outcome model.Outcome
	err     error
}

// Model is the bubbletea model wrapping a LoginForm.
type Model struct {
	ctx      context.Context
	form     *forms.LoginForm
	email    textinput.Model
	password textinput.Model
	focus    focusTarget
	view     model.LoginView
	styles   Styles
	title    string
	logger   *logging.Logger
	quitOnOK bool

	submittedEmail string
	status         string
	result         Result
	quitting       bool
}

// New builds a Model bound to form. ctx is handed to every submission.
func New(ctx context.Context, form *forms.LoginForm, opts Options) Model {
	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.CharLimit = 254
	email.Width = 32
	email.Prompt = "> "
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 128
	password.Width = 32
	password.Prompt = "> "
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	styles := DefaultStyles()
	if opts.Styles != nil {
		styles = *opts.Styles
	}
	title := strings.TrimSpace(opts.Title)
	if title == "" {
		title = "Sign in"
	}
	return Model{
		ctx:      ctx,
		form:     form,
		email:    email,
		password: password,
		focus:    focusEmail,
		view:     form.View(),
		styles:   styles,
		title:    title,
		logger:   opts.Logger,
		quitOnOK: opts.QuitOnSuccess,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m.update(msg)
}

// Result reports how the session ended.
func (m Model) Result() Result {
	return m.result
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case outcomeMsg:
		return settle(m.handleOutcome(msg))
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.form.Dispose()
		m.quitting = true
		m.result.Aborted = !m.result.SignedIn
		m.logger.Debug(logCategory, "form closed", nil)
		return m, tea.Quit
	case "tab", "down":
		return m.setFocus((m.focus + 1) % focusCount)
	case "shift+tab", "up":
		return m.setFocus((m.focus + focusCount - 1) % focusCount)
	case "enter":
		return m.submit()
	}

	var cmd tea.Cmd
	switch m.focus {
	case focusEmail:
		m.email, cmd = m.email.Update(msg)
		if m.email.Value() != m.view.Email {
			m.form.OnEmailChange(m.email.Value())
		}
	case focusPassword:
		m.password, cmd = m.password.Update(msg)
		if m.password.Value() != m.view.Password {
			m.form.OnPasswordChange(m.password.Value())
		}
	default:
		return m, nil
	}
	m.view = m.form.View()
	m.status = ""
	return m, cmd
}

func (m Model) setFocus(target focusTarget) (Model, tea.Cmd) {
	m.focus = target
	m.email.Blur()
	m.password.Blur()
	switch target {
	case focusEmail:
		return m, m.email.Focus()
	case focusPassword:
		return m, m.password.Focus()
	}
	return m, nil
}

func (m Model) submit() (Model, tea.Cmd) {
	email := m.view.Email
	status, pending := m.form.Submit(m.ctx)
	m.view = m.form.View()
	switch status {
	case forms.SubmitAccepted:
		m.submittedEmail = email
		m.status = ""
		return m, waitForOutcome(m.ctx, pending)
	case forms.SubmitCompleted:
		m.submittedEmail = email
		return settle(m.handleOutcome(outcomeMsg{outcome: model.Success()}))
	case forms.SubmitInvalid:
		if m.view.EmailError != "" {
			return m.setFocus(focusEmail)
		}
		if m.view.PasswordError != "" {
			return m.setFocus(focusPassword)
		}
	}
	return m, nil
}

func (m Model) handleOutcome(msg outcomeMsg) Model {
	m.view = m.form.View()
	if msg.err != nil {
		m.logger.Warn(logCategory, "stopped waiting for login", map[string]any{"error": msg.err.Error()})
		return m
	}
	if msg.outcome.OK {
		m.email.SetValue("")
		m.password.SetValue("")
		m.result = Result{SignedIn: true, Email: m.submittedEmail}
		m.status = "Signed in as " + m.submittedEmail
		return m
	}
	m.status = ""
	return m
}

func settle(m Model) (Model, tea.Cmd) {
	if m.result.SignedIn && m.quitOnOK {
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func waitForOutcome(ctx context.Context, pending *forms.Pending) tea.Cmd {
	return func() tea.Msg {
		outcome, err := pending.Wait(ctx)
		return outcomeMsg{outcome: outcome, err: err}
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	s := m.styles
	var b strings.Builder

	b.WriteString(s.Title.Render(m.title))
	b.WriteString("\n")

	b.WriteString(m.label("Email", focusEmail))
	b.WriteString("\n")
	b.WriteString(m.email.View())
	b.WriteString("\n")
	if m.view.EmailError != "" {
		b.WriteString(s.FieldError.Render(m.view.EmailError))
		b.WriteString("\n")
	}

	b.WriteString(m.label("Password", focusPassword))
	b.WriteString("\n")
	b.WriteString(m.password.View())
	b.WriteString("\n")
	if m.view.PasswordError != "" {
		b.WriteString(s.FieldError.Render(m.view.PasswordError))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	label := "Sign in"
	if m.view.Submitting {
		label = "Signing in…"
	}
	switch {
	case !m.view.CanSubmit:
		b.WriteString(s.DisabledButton.Render(label))
	case m.focus == focusSubmit:
		b.WriteString(s.FocusedButton.Render(label))
	default:
		b.WriteString(s.Button.Render(label))
	}
	b.WriteString("\n")

	if m.view.FormError != "" {
		b.WriteString("\n")
		b.WriteString(s.FormError.Render(m.view.FormError))
		b.WriteString("\n")
	}
	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(s.Status.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(s.Help.Render("tab: next field • enter: sign in • esc: quit"))

	return s.Frame.Render(b.String())
}

func (m Model) label(text string, target focusTarget) string {
	if m.focus == target {
		return m.styles.FocusedLabel.Render(text)
	}
	return m.styles.Label.Render(text)
}

// Run drives the form in the terminal until the user quits or ctx is done.
func Run(ctx context.Context, form *forms.LoginForm, opts Options, programOpts ...tea.ProgramOption) (Result, error) {
	programOpts = append([]tea.ProgramOption{tea.WithContext(ctx)}, programOpts...)
	final, err := tea.NewProgram(New(ctx, form, opts), programOpts...).Run()
	form.Dispose()
	if m, ok := final.(Model); ok {
		return m.Result(), err
	}
	return Result{Aborted: true}, err
}
