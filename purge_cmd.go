package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dgnsrekt/voxcache/internal/cache"
)

var purgeAll bool

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete aged cache entries now",
	Long: "\nRun an eviction sweep immediately, bypassing the sweep throttle.\n" +
		"With --all, every entry is deleted regardless of age.",
	Args: cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		store, err := cache.NewStore(cfg.CacheDir)
		if err != nil {
			return err
		}

		if purgeAll {
			entries, err := store.List()
			if err != nil {
				return err
			}
			deleted := 0
			for _, e := range entries {
				if err := store.Remove(e.Path); err != nil {
					fmt.Println("Could not delete:", e.Path)
					continue
				}
				deleted++
			}
			fmt.Printf("Deleted %d files from %s\n", deleted, store.Dir())
			return nil
		}

		if cfg.RetainDays == 0 {
			fmt.Println("Eviction is disabled (retain_days is 0); nothing to do. Use --all to empty the cache.")
			return nil
		}

		deleted := cache.NewJanitor(store, cfg.RetainDays).Sweep()
		fmt.Printf("Deleted %d files older than %d days from %s\n", deleted, cfg.RetainDays, store.Dir())
		return nil
	},
}

func init() {
	purgeCmd.Flags().BoolVar(&purgeAll, "all", false, "delete every entry, aged or not")
}
