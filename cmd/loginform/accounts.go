package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Its-donkey/loginform/internal/auth"
	"github.com/Its-donkey/loginform/internal/ui/forms"
)

// readSecret returns flagValue when set, otherwise the first line of in.
func readSecret(flagValue string, in io.Reader) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("password is required (use --password or stdin)")
	}
	return line, nil
}

func newHashPasswordCmd() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "hash-password",
		Short: "Print a bcrypt hash suitable for auth.users[].password_hash",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			plain, err := readSecret(password, cmd.InOrStdin())
			if err != nil {
				return err
			}
			hash, err := auth.HashPassword(plain)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(hash))
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "password to hash (read from stdin when omitted)")
	return cmd
}

func newUsersCmd(root *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage accounts in the configured store",
	}
	cmd.AddCommand(newUsersAddCmd(root), newUsersListCmd(root))
	return cmd
}

func newUsersAddCmd(root *rootFlags) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "add <email>",
		Short: "Create an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email := strings.TrimSpace(args[0])
			if !forms.LooksLikeEmail(email) {
				return fmt.Errorf("invalid email %q", email)
			}
			plain, err := readSecret(password, cmd.InOrStdin())
			if err != nil {
				return err
			}
			a, err := openApp(cmd.Context(), root.configPath, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.manager.Register(cmd.Context(), email, plain); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", auth.NormalizeEmail(email))
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "initial password (read from stdin when omitted)")
	return cmd
}

func newUsersListCmd(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), root.configPath, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			users, err := a.store.List(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "EMAIL\tCREATED")
			for _, u := range users {
				fmt.Fprintf(tw, "%s\t%s\n", u.Email, u.CreatedAt.UTC().Format(time.RFC3339))
			}
			return tw.Flush()
		},
	}
}
