package main

import (
	"github.com/spf13/cobra"

	"github.com/solrpress/solrpress/internal/version"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show backend endpoint and connectivity",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		status := "down"
		if a.gate.Available(cmd.Context()) {
			status = "up"
		}
		cmd.Printf("Version:  %s\n", version.Version)
		cmd.Printf("Endpoint: %s\n", a.client.Endpoint())
		cmd.Printf("Status:   %s\n", status)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
