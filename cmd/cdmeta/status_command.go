package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"cdmeta/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check the cache directory, drive and server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg, nil)

			if ctx.JSONMode() {
				if err := writeJSON(cmd, results); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Config: %s\n", ctx.configPath)
				for _, r := range results {
					mark := "ok  "
					if !r.Passed {
						mark = "FAIL"
					}
					fmt.Fprintf(out, "  [%s] %-16s %s\n", mark, r.Name, r.Detail)
				}
			}
			if !preflight.AllPassed(results) {
				return errors.New("one or more checks failed")
			}
			return nil
		},
	}
}
