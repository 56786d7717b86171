package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cdmeta/internal/resolver"
)

func newLookupCommand(ctx *commandContext) *cobra.Command {
	var flags tocFlags
	var noCache bool

	cmd := &cobra.Command{
		Use:   "lookup",
		Short: "Fetch the xmcd record for a disc",
		Long: `Fetch the xmcd record for a disc, from the local cache when possible.

The record is written to stdout as received from the server. With --no-cache
the server is always asked and the cached copy is replaced.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			res, err := ctx.newResolver(resolver.WithRefresh(noCache))
			if err != nil {
				return err
			}

			var result resolver.Result
			if flags.hasFrames() {
				toc, err := parseFrames(flags.frames)
				if err != nil {
					return err
				}
				result, err = res.ResolveTOC(cmd.Context(), toc)
				if err != nil {
					return err
				}
			} else {
				device := flags.device
				if device == "" {
					device = cfg.Drive.Device
				}
				result, err = res.Resolve(cmd.Context(), device)
				if err != nil {
					return err
				}
			}

			if ctx.JSONMode() {
				return writeJSON(cmd, lookupView(result))
			}

			out := cmd.OutOrStdout()
			if result.State != resolver.StateDone {
				fmt.Fprintf(out, "No metadata found for disc %s\n", result.DiscID)
				return nil
			}
			_, err = out.Write(result.Record.Data)
			return err
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Skip the cache lookup and refresh the cached record")
	return cmd
}

func lookupView(result resolver.Result) map[string]any {
	view := map[string]any{
		"state":          result.State,
		"disc_id":        result.DiscID.String(),
		"from_cache":     result.FromCache,
		"correlation_id": result.CorrelationID,
	}
	if !result.FromCache {
		view["outcome"] = result.Outcome
		view["proto_level"] = result.ProtoLevel
	}
	if result.State == resolver.StateDone {
		view["category"] = result.Record.Category
		view["xmcd"] = string(result.Record.Data)
	}
	return view
}
