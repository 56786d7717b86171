package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"cdmeta/internal/disc/discid"
	"cdmeta/internal/xmcdcache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the local xmcd cache",
		Long: `Inspect and manage the local xmcd cache.

Each cached record is a file named by its disc id under cache.dir.

Commands:
  list     - List cached records, newest first
  show     - Print the record for a disc id
  remove   - Remove the record for a disc id
  clear    - Remove all cached records`,
	}

	cacheCmd.AddCommand(newCacheListCommand(ctx))
	cacheCmd.AddCommand(newCacheShowCommand(ctx))
	cacheCmd.AddCommand(newCacheRemoveCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))

	return cacheCmd
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, _, err := ctx.newCache()
			if err != nil {
				return err
			}
			entries, err := cache.List()
			if err != nil {
				return err
			}

			if ctx.JSONMode() {
				if entries == nil {
					entries = []xmcdcache.Entry{}
				}
				return writeJSON(cmd, entries)
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintf(out, "Cache %s: empty\n", cache.Dir())
				return nil
			}

			const stampLayout = "2006-01-02 15:04"
			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				rows = append(rows, []string{
					entry.DiscID.String(),
					strconv.Itoa(entry.DiscID.TrackCount()),
					strconv.FormatInt(entry.Size, 10),
					entry.ModTime.Local().Format(stampLayout),
				})
			}
			return writeTable(out,
				[]string{"Disc ID", "Tracks", "Bytes", "Cached"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft},
			)
		},
	}
}

func newCacheShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <disc-id>",
		Short: "Print a cached record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := discid.Parse(args[0])
			if err != nil {
				return err
			}
			cache, _, err := ctx.newCache()
			if err != nil {
				return err
			}
			rec, ok := cache.Lookup(id)
			if !ok {
				return fmt.Errorf("%s: %w", id, xmcdcache.ErrNotCached)
			}
			if ctx.JSONMode() {
				return writeJSON(cmd, map[string]any{
					"disc_id": id.String(),
					"path":    cache.Path(id),
					"xmcd":    string(rec.Data),
				})
			}
			_, err = cmd.OutOrStdout().Write(rec.Data)
			return err
		},
	}
}

func newCacheRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <disc-id>",
		Short: "Remove a cached record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := discid.Parse(args[0])
			if err != nil {
				return err
			}
			cache, _, err := ctx.newCache()
			if err != nil {
				return err
			}
			if err := cache.Remove(id); err != nil {
				return err
			}
			if ctx.JSONMode() {
				return writeJSON(cmd, map[string]any{"removed": true, "disc_id": id.String()})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed cached record %s\n", id)
			return nil
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, _, err := ctx.newCache()
			if err != nil {
				return err
			}
			removed, err := cache.Clear()
			if err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			if ctx.JSONMode() {
				return writeJSON(cmd, map[string]any{"removed": removed})
			}
			if removed == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Cache is already empty")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached records\n", removed)
			return nil
		},
	}
}
