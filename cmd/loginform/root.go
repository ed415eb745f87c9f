package main

import (
	"github.com/spf13/cobra"
)

type rootFlags struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:   "loginform",
		Short: "Login form front-ends and account tooling",
		// Errors are printed once by main.
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "path to a JSON or YAML config file")

	cmd.AddCommand(
		newServeCmd(flags),
		newTUICmd(flags),
		newHashPasswordCmd(),
		newUsersCmd(flags),
		newLogsCmd(flags),
	)
	return cmd
}
