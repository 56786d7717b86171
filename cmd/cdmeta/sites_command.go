package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"cdmeta/internal/cddb"
	"cdmeta/internal/logging"
)

func newSitesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sites",
		Short: "List the mirror sites published by the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, cfg, err := ctx.newSession()
			if err != nil {
				return err
			}
			if cfg.CDDB.Negotiate {
				if _, err := session.NegotiateProtocolLevel(cmd.Context()); err != nil {
					if cddb.IsTransport(err) {
						return err
					}
					if logger, lerr := ctx.ensureLogger(); lerr == nil {
						logger.Debug("protocol negotiation failed", logging.Error(err))
					}
				}
			}

			sites, err := session.Sites(cmd.Context())
			if errors.Is(err, cddb.ErrNoSites) {
				if ctx.JSONMode() {
					return writeJSON(cmd, []cddb.Site{})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s publishes no mirror sites\n", session.Server())
				return nil
			}
			if err != nil {
				return err
			}

			if ctx.JSONMode() {
				return writeJSON(cmd, sites)
			}
			rows := make([][]string, 0, len(sites))
			for _, site := range sites {
				rows = append(rows, []string{
					site.Host,
					site.Protocol,
					strconv.Itoa(site.Port),
					site.Latitude + " " + site.Longitude,
					site.Description,
				})
			}
			return writeTable(cmd.OutOrStdout(),
				[]string{"Host", "Protocol", "Port", "Location", "Description"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
			)
		},
	}
}
