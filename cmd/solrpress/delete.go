package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	deleteAll    bool
	deleteSite   int64
	deleteFilter string
)

var deleteCmd = &cobra.Command{
	Use:   "delete [id]...",
	Short: "Remove documents from the search index",
	Long: `Delete removes documents by id, by tenant site, by filter expression,
or wipes the whole index with --all.`,
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolVar(&deleteAll, "all", false, "delete every document in the index")
	deleteCmd.Flags().Int64Var(&deleteSite, "site", 0, "delete one tenant site's documents")
	deleteCmd.Flags().StringVar(&deleteFilter, "filter", "", "delete documents matching a filter expression")
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	modes := 0
	if deleteAll {
		modes++
	}
	if deleteSite != 0 {
		modes++
	}
	if deleteFilter != "" {
		modes++
	}
	if len(args) > 0 {
		modes++
	}
	if modes != 1 {
		return fmt.Errorf("specify ids, --all, --site or --filter (exactly one)")
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := cmd.Context()

	switch {
	case deleteAll:
		if !a.sync.DeleteAll(ctx) {
			return fmt.Errorf("delete all failed: %v", a.sync.LastError())
		}
		cmd.Println("Deleted all documents.")
	case deleteSite != 0:
		expr := fmt.Sprintf("siteid:%d", deleteSite)
		if !a.sync.DeleteByFilter(ctx, expr) {
			return fmt.Errorf("delete site %d failed: %v", deleteSite, a.sync.LastError())
		}
		cmd.Printf("Deleted documents for site %d.\n", deleteSite)
	case deleteFilter != "":
		if !a.sync.DeleteByFilter(ctx, deleteFilter) {
			return fmt.Errorf("delete by filter failed: %v", a.sync.LastError())
		}
		cmd.Printf("Deleted documents matching %q.\n", deleteFilter)
	default:
		for _, id := range args {
			if !a.sync.Delete(ctx, id) {
				return fmt.Errorf("delete %s failed: %v", id, a.sync.LastError())
			}
		}
		cmd.Printf("Deleted %d document(s).\n", len(args))
	}
	return nil
}
