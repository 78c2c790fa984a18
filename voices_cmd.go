package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var voicesCmd = &cobra.Command{
	Use:   "voices",
	Short: "List the voices of the configured engine",
	Args:  cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx := context.Background()
		synth, err := newEngine(ctx, cfg)
		if err != nil {
			return err
		}

		voices, err := synth.Voices(ctx)
		if err != nil {
			return err
		}

		for _, v := range voices {
			fmt.Printf("%-16s %-24s %-10s %s\n", v.ID, v.Name, v.Language, v.Gender)
		}
		return nil
	},
}
