package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"cdmeta/internal/disc"
	"cdmeta/internal/logging"
	"cdmeta/internal/resolver"
	"cdmeta/internal/watch"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var device string
	var eject bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Look up every audio disc inserted into the drive",
		Long: `Listen for udev disc-insert events and resolve each audio disc as it
arrives. Runs until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			res, err := ctx.newResolver()
			if err != nil {
				return err
			}
			if strings.TrimSpace(device) == "" {
				device = cfg.Drive.Device
			}

			out := cmd.OutOrStdout()
			handler := func(hctx context.Context, dev string) error {
				if _, err := disc.WaitForReady(hctx, dev); err != nil {
					return err
				}
				result, err := res.Resolve(hctx, dev)
				if err != nil {
					return err
				}
				if eject && result.State == resolver.StateDone {
					defer func() {
						if err := disc.Eject(dev); err != nil {
							logger.Warn("eject failed", logging.Error(err), logging.String(logging.FieldDevice, dev))
						}
					}()
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, lookupView(result))
				}
				source := "server"
				if result.FromCache {
					source = "cache"
				}
				if result.State == resolver.StateDone {
					fmt.Fprintf(out, "%s\t%s\t%s\t%d bytes from %s\n",
						dev, result.DiscID, result.Outcome.Match.Title, result.Record.Len(), source)
				} else {
					fmt.Fprintf(out, "%s\t%s\tno match\n", dev, result.DiscID)
				}
				return nil
			}

			monitor := watch.New(device, handler, logger)
			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if !ctx.JSONMode() {
				fmt.Fprintf(out, "Watching %s (Ctrl-C to stop)\n", device)
			}
			return monitor.Run(runCtx)
		},
	}
	cmd.Flags().StringVarP(&device, "device", "d", "", "Optical drive to watch (defaults to drive.device)")
	cmd.Flags().BoolVar(&eject, "eject", false, "Eject each disc once its metadata has been found")
	return cmd
}
