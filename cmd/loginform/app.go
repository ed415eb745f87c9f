package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/Its-donkey/loginform/internal/auth"
	"github.com/Its-donkey/loginform/internal/config"
	"github.com/Its-donkey/loginform/internal/ui/forms"
	"github.com/Its-donkey/loginform/logging"
)

const serviceName = "loginform"

// app holds everything a subcommand needs once config has been loaded.
type app struct {
	cfg     config.Config
	logger  *logging.Logger
	store   auth.Store
	manager *auth.Manager
	closers []func() error
}

// openApp loads config, opens the logger and user store, and seeds the
// configured accounts. console receives log output; nil means stderr.
func openApp(ctx context.Context, configPath string, console io.Writer) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger, logCloser, err := logging.Open(logging.Options{
		Service:   serviceName,
		Level:     cfg.Logging.Level,
		Dir:       cfg.Logging.Dir,
		MaxSizeMB: cfg.Logging.MaxSizeMB,
		MaxFiles:  cfg.Logging.MaxFiles,
		Console:   console,
	})
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: logger, closers: []func() error{logCloser.Close}}

	store, closeStore, err := auth.OpenStore(ctx, auth.StoreOptions{
		Kind:        cfg.Auth.Store,
		SQLitePath:  cfg.Auth.SQLitePath,
		PostgresDSN: cfg.Auth.PostgresDSN,
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	a.store = store
	a.closers = append(a.closers, closeStore)

	if err := seedUsers(ctx, store, cfg.Auth.Users, logger); err != nil {
		a.Close()
		return nil, err
	}
	a.manager = auth.NewManager(store, auth.ManagerOptions{
		TokenTTL:      cfg.Auth.TokenTTL(),
		RejectMessage: cfg.Auth.RejectMessage,
		Logger:        logger,
	})
	logger.Debug("app", "configuration loaded", map[string]any{
		"config": configPath,
		"store":  cfg.Auth.Store,
		"users":  len(cfg.Auth.Users),
	})
	return a, nil
}

// formOptions maps the form section of the config onto forms.Options.
func (a *app) formOptions() forms.Options {
	return forms.Options{
		Messages:          a.cfg.Form.Messages,
		MinPasswordLength: a.cfg.Form.MinPasswordLength,
		ValidateOnChange:  a.cfg.Form.ValidateOnChange,
		Logger:            a.logger,
	}
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func seedUsers(ctx context.Context, store auth.Store, users []config.UserConfig, logger *logging.Logger) error {
	for _, u := range users {
		hash := []byte(u.PasswordHash)
		if len(hash) == 0 {
			var err error
			hash, err = auth.HashPassword(u.Password)
			if err != nil {
				return fmt.Errorf("seed %s: %w", u.Email, err)
			}
		}
		err := store.Create(ctx, auth.User{Email: u.Email, PasswordHash: hash})
		switch {
		case errors.Is(err, auth.ErrUserExists):
			logger.Debug("app", "seed user already present", map[string]any{"email": auth.NormalizeEmail(u.Email)})
		case err != nil:
			return fmt.Errorf("seed %s: %w", u.Email, err)
		default:
			logger.Info("app", "seeded user", map[string]any{"email": auth.NormalizeEmail(u.Email)})
		}
	}
	return nil
}
