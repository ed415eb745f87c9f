package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Its-donkey/loginform/internal/auth"
	"github.com/Its-donkey/loginform/internal/ui/forms"
	"github.com/Its-donkey/loginform/internal/ui/tui"
)

func newTUICmd(root *rootFlags) *cobra.Command {
	var offline bool
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Sign in from the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			// Console logging would draw over the terminal UI.
			a, err := openApp(ctx, root.configPath, io.Discard)
			if err != nil {
				return err
			}
			defer a.Close()

			var token auth.Token
			opts := a.formOptions()
			if !offline {
				opts.Handler = a.manager.SubmitHandler(func(t auth.Token) { token = t })
			}
			form := forms.NewLoginForm(opts)

			res, err := tui.Run(ctx, form, tui.Options{
				Title:         "Sign in",
				Logger:        a.logger,
				QuitOnSuccess: true,
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch {
			case res.SignedIn && token.Value != "":
				fmt.Fprintf(out, "signed in as %s (session %s, expires %s)\n", token.Email, token.Value, token.ExpiresAt.Format("2006-01-02 15:04:05 MST"))
			case res.SignedIn:
				fmt.Fprintf(out, "form accepted for %s (offline, no session issued)\n", res.Email)
			default:
				fmt.Fprintln(out, "sign in cancelled")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "validate locally without checking credentials")
	return cmd
}
