package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Its-donkey/loginform/internal/ui/server"
)

const sessionSweepInterval = time.Minute

func newServeCmd(root *rootFlags) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the login page and JSON login endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, root.configPath, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			if listen == "" {
				listen = a.cfg.Server.Listen()
			}
			opts := server.Options{
				Listen:        listen,
				TemplatesDir:  a.cfg.Server.Templates,
				Logger:        a.logger,
				Sessions:      a.manager,
				Form:          a.formOptions(),
				SubmitTimeout: a.cfg.Form.SubmitTimeout(),
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return server.Run(gctx, opts)
			})
			g.Go(func() error {
				return sweepSessions(gctx, a, sessionSweepInterval)
			})
			return g.Wait()
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "address to listen on (overrides server.addr/server.port)")
	return cmd
}

// sweepSessions prunes expired sessions until ctx is done.
func sweepSessions(ctx context.Context, a *app, every time.Duration) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := a.manager.PruneExpired(); n > 0 {
				a.logger.Debug("auth", "pruned expired sessions", map[string]any{"count": n})
			}
		}
	}
}
