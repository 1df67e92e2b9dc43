package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ZaguanLabs/medtravel/cache"
)

func newCacheCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Translation cache snapshot commands",
		Long: `Translation cache snapshot commands.

Available commands:
  inspect   - Summarize a snapshot file
  import    - Load a snapshot into the configured Redis cache`,
	}
	cmd.AddCommand(newCacheInspectCmd(), newCacheImportCmd(opts))
	return cmd
}

func newCacheInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <snapshot.json>",
		Short: "Summarize a snapshot file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening snapshot: %w", err)
			}
			defer f.Close()

			var snap cache.Snapshot
			if err := json.NewDecoder(f).Decode(&snap); err != nil {
				return fmt.Errorf("decoding snapshot: %w", err)
			}

			perLang := make(map[string]int)
			for _, e := range snap.Entries {
				perLang[e.Lang]++
			}
			langs := make([]string, 0, len(perLang))
			for l := range perLang {
				langs = append(langs, l)
			}
			sort.Strings(langs)

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Snapshot:  %s\n", args[0])
			fmt.Fprintf(w, "Version:   %s\n", snap.Version)
			fmt.Fprintf(w, "Exported:  %s\n", snap.ExportedAt)
			fmt.Fprintf(w, "Entries:   %d\n", len(snap.Entries))
			for _, l := range langs {
				fmt.Fprintf(w, "  %-6s %d\n", l, perLang[l])
			}
			return nil
		},
	}
}

func newCacheImportCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <snapshot.json>",
		Short: "Load a snapshot into the configured Redis cache",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if cfg.Translation.RedisURL == "" {
				return errors.New("cache import needs translation.redis_url; the in-memory cache is restored by serve from translation.snapshot_path")
			}

			tc, closer, err := buildCache(cfg)
			if err != nil {
				return err
			}
			defer closer.Close()

			res, err := cache.NewImporter(tc).ImportFromFile(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d entries (%d skipped, %d failed)\n", res.Imported, res.Skipped, res.Failed)
			return nil
		},
	}
}
