package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check-server-settings",
	Short: "Verify the configured search backend answers a ping",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.client.Ping(cmd.Context()); err != nil {
			return fmt.Errorf("ping %s: %w", a.client.Endpoint(), err)
		}
		cmd.Printf("Backend at %s is reachable.\n", a.client.Endpoint())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
