package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize-index",
	Short: "Ask the search backend to compact its index",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if !a.sync.Optimize(cmd.Context()) {
			return fmt.Errorf("optimize failed: %v", a.sync.LastError())
		}
		cmd.Println("Index optimized.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(optimizeCmd)
}
