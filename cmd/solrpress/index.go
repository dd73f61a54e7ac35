package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/solrpress/solrpress/internal/domain/record"
	"github.com/solrpress/solrpress/internal/indexer"
)

var (
	indexTypes    []string
	indexPageSize int
	indexForce    bool
	indexSiteID   int64
	indexDomain   string
	indexPath     string
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Index all content into the search backend",
	Long: `Index walks the content repository page by page and submits documents
to the search backend. An interrupted run leaves a checkpoint and resumes
where it stopped; --force starts over from the first page.

Partial per-item failures do not fail the command: it reports counts and
the last error, and exits zero as long as the job itself ran to completion.`,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().StringSliceVar(&indexTypes, "post_type", nil, "content types to index (default from config)")
	indexCmd.Flags().IntVar(&indexPageSize, "posts_per_page", 0, "records per page (default from config)")
	indexCmd.Flags().BoolVar(&indexForce, "force", false, "ignore any checkpoint and start from the first page")
	indexCmd.Flags().Int64Var(&indexSiteID, "site", 0, "tenant site id (multi-tenant mode)")
	indexCmd.Flags().StringVar(&indexDomain, "site_domain", "", "tenant site domain (multi-tenant mode)")
	indexCmd.Flags().StringVar(&indexPath, "site_path", "/", "tenant site path (multi-tenant mode)")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	types := indexTypes
	if len(types) == 0 {
		types = a.cfg.Index.Types
	}
	pageSize := indexPageSize
	if pageSize <= 0 {
		pageSize = a.cfg.Index.PageSize
	}

	params := indexer.Params{Types: types, PageSize: pageSize}
	if a.cfg.Index.MultiTenant {
		if indexSiteID == 0 || indexDomain == "" {
			return fmt.Errorf("--site and --site_domain are required in multi-tenant mode")
		}
		params.Site = &record.SiteContext{ID: indexSiteID, Domain: indexDomain, Path: indexPath}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := a.indexController().Run(ctx, params, indexForce)
	if err != nil {
		cmd.Printf("Indexing interrupted after %d of %d records; rerun to resume.\n", res.Indexed, res.Total)
		return err
	}

	cmd.Printf("Indexed %d of %d records.\n", res.Indexed, res.Total)
	if res.Failed > 0 {
		cmd.Printf("%d records failed.\n", res.Failed)
		if res.LastError != nil {
			cmd.Printf("Last error: %v\n", res.LastError)
		}
	}
	return nil
}
