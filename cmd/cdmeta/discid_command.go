package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"cdmeta/internal/disc/discid"
)

func newDiscIDCommand(ctx *commandContext) *cobra.Command {
	var flags tocFlags

	cmd := &cobra.Command{
		Use:   "discid",
		Short: "Print the freedb disc id and query parameters",
		Long: `Print the freedb disc id of a disc and the parameters a query would send.

Examples:
  cdmeta discid                       # read drive.device
  cdmeta discid --device /dev/sr1
  cdmeta discid --frames 150,3180,18750`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			toc, err := flags.read(cmd.Context(), cfg.Drive.Device)
			if err != nil {
				return err
			}
			query := discid.NewQuery(toc)

			if ctx.JSONMode() {
				return writeJSON(cmd, map[string]any{
					"disc_id": query.ID.String(),
					"query":   query,
					"toc":     toc,
				})
			}

			offsets := make([]string, 0, len(query.Offsets))
			for _, off := range query.Offsets {
				offsets = append(offsets, strconv.Itoa(off))
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Disc ID:  %s\n", query.ID)
			fmt.Fprintf(out, "Tracks:   %d\n", query.TrackCount)
			fmt.Fprintf(out, "Offsets:  %s\n", strings.Join(offsets, " "))
			fmt.Fprintf(out, "Length:   %d seconds\n", query.TotalSeconds)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}
