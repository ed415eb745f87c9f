package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/Its-donkey/loginform/internal/config"
	"github.com/Its-donkey/loginform/logging"
)

func newLogsCmd(root *rootFlags) *cobra.Command {
	var lines int
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print the most recent log entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(root.configPath)
			if err != nil {
				return err
			}
			if cfg.Logging.Dir == "" {
				return errors.New("logging.dir is not configured")
			}
			entries, err := logging.ReadRecent(filepath.Join(cfg.Logging.Dir, serviceName+".log"), lines)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, e := range entries {
				fmt.Fprintf(out, "%s %-5s [%s] %s", e.Timestamp.Local().Format(time.DateTime), e.Level, e.Category, e.Message)
				if e.Error != "" {
					fmt.Fprintf(out, " error=%q", e.Error)
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "number of entries to show")
	return cmd
}
