// Package server renders the login form over HTTP and exposes a JSON login
// endpoint backed by the same form state machine.
package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/Its-donkey/loginform/internal/auth"
	"github.com/Its-donkey/loginform/internal/ui/forms"
	"github.com/Its-donkey/loginform/logging"
)

const (
	defaultSiteName      = "Sign in"
	defaultSubmitTimeout = 10 * time.Second
	timeoutMessage       = "Login is taking too long. Please try again."
)

// Options configures the HTTP server.
type Options struct {
	Listen string
	// TemplatesDir overrides the embedded templates when set.
	TemplatesDir  string
	SiteName      string
	Logger        *logging.Logger
	Sessions      SessionManager
	Form          forms.Options
	SubmitTimeout time.Duration
}

// SessionManager is the subset of auth.Manager the server needs.
type SessionManager interface {
	SubmitHandler(issued func(auth.Token)) forms.SubmitHandler
	Validate(token string) (auth.Token, bool)
	Logout(token string)
}

type server struct {
	templates     map[string]*template.Template
	sessions      SessionManager
	formOptions   forms.Options
	submitTimeout time.Duration
	siteName      string
	currentYear   int
	logger        *logging.Logger
}

type basePageData struct {
	PageTitle   string
	SiteName    string
	CurrentYear int
	Flash       string
	LoggedIn    bool
}

// NewHandler builds the routed, logged HTTP handler.
func NewHandler(opts Options) (http.Handler, error) {
	if opts.Sessions == nil {
		return nil, errors.New("server: session manager is required")
	}
	tmpl, err := loadTemplates(opts.TemplatesDir)
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	srv := &server{
		templates:     tmpl,
		sessions:      opts.Sessions,
		formOptions:   opts.Form,
		submitTimeout: opts.SubmitTimeout,
		siteName:      strings.TrimSpace(opts.SiteName),
		currentYear:   time.Now().Year(),
		logger:        opts.Logger,
	}
	if srv.submitTimeout <= 0 {
		srv.submitTimeout = defaultSubmitTimeout
	}
	if srv.siteName == "" {
		srv.siteName = defaultSiteName
	}
	// Front-ends own their Renderer; a shared one would mix requests.
	srv.formOptions.Renderer = nil
	if srv.formOptions.Logger == nil {
		srv.formOptions.Logger = opts.Logger
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", srv.handleHome)
	mux.HandleFunc("GET /login", srv.handleLoginPage)
	mux.HandleFunc("POST /login", srv.handleLogin)
	mux.HandleFunc("POST /logout", srv.handleLogout)
	mux.HandleFunc("POST /api/login", srv.handleAPILogin)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	return logging.NewHTTPLogger(opts.Logger, 0).Middleware(mux), nil
}

// Run starts the HTTP server and blocks until ctx is cancelled or the
// listener fails.
func Run(ctx context.Context, opts Options) error {
	handler, err := NewHandler(opts)
	if err != nil {
		return err
	}
	server := &http.Server{
		Addr:              opts.Listen,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()
	opts.Logger.Info("server", "serving login form", map[string]any{"listen": opts.Listen})

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	}
}

func (s *server) basePage(r *http.Request, title string) basePageData {
	if strings.TrimSpace(title) == "" {
		title = s.siteName
	}
	return basePageData{
		PageTitle:   title,
		SiteName:    s.siteName,
		CurrentYear: s.currentYear,
		Flash:       strings.TrimSpace(r.URL.Query().Get("msg")),
	}
}

func (s *server) render(w http.ResponseWriter, name string, status int, data any) {
	tmpl, ok := s.templates[name]
	if !ok {
		http.Error(w, name+" template missing", http.StatusInternalServerError)
		return
	}
	var buf strings.Builder
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.Error("server", "template error", err, map[string]any{"template": name})
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(buf.String()))
}
