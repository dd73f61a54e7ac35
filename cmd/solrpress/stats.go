package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show indexed document counts per content type",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		ctx := cmd.Context()

		total, err := a.client.Count(ctx, "*:*")
		if err != nil {
			return fmt.Errorf("count documents: %w", err)
		}
		cmd.Printf("Total documents: %d\n", total)

		for _, t := range a.cfg.Index.Types {
			n, err := a.client.Count(ctx, "type:"+t)
			if err != nil {
				return fmt.Errorf("count %s documents: %w", t, err)
			}
			cmd.Printf("  %-12s %d\n", t, n)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
