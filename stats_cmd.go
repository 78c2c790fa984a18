package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/dgnsrekt/voxcache/internal/cache"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache folder statistics",
	Args:  cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		store, err := cache.NewStore(cfg.CacheDir)
		if err != nil {
			return err
		}

		entries, err := store.List()
		if err != nil {
			return err
		}

		var total int64
		var oldest time.Time
		audio := 0
		for _, e := range entries {
			total += e.Size
			if !strings.HasSuffix(e.Path, ".txt") {
				audio++
			}
			if oldest.IsZero() || e.ModTime.Before(oldest) {
				oldest = e.ModTime
			}
		}

		fmt.Println("Cache folder: ", store.Dir())
		fmt.Println("Entries:      ", audio)
		fmt.Println("Files:        ", len(entries))
		fmt.Println("Total size:   ", humanize.Bytes(uint64(total))) //nolint:gosec
		if !oldest.IsZero() {
			fmt.Println("Oldest access:", humanize.Time(oldest))
		}
		if cfg.RetainDays == 0 {
			fmt.Println("Eviction:      disabled")
		} else {
			fmt.Printf("Eviction:      entries unused for %d days\n", cfg.RetainDays)
		}
		return nil
	},
}
