package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/solrpress/solrpress/internal/format"
	"github.com/solrpress/solrpress/internal/query"
	chiTransport "github.com/solrpress/solrpress/internal/transport/chi"
	"github.com/solrpress/solrpress/internal/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the search HTTP API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	cfg := a.cfg
	a.logger.Info("starting solrpress API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("solr_endpoint", a.client.Endpoint()),
	)

	builder := query.NewBuilder(query.Settings{
		Boosts:          cfg.Search.Boosts,
		DefaultOperator: cfg.Solr.DefaultOperator,
		HighlightPre:    cfg.Search.HighlightPre,
		HighlightPost:   cfg.Search.HighlightPost,
		Facets: query.FacetSettings{
			Categories:   cfg.Facets.Categories,
			Tags:         cfg.Facets.Tags,
			Author:       cfg.Facets.Author,
			Type:         cfg.Facets.Type,
			Taxonomies:   cfg.Facets.Taxonomies,
			CustomFields: cfg.Facets.CustomFields,
			TagLimit:     cfg.Facets.TagLimit,
		},
	})
	formatter := format.NewFormatter(format.Settings{
		MaxPagerLinks: cfg.Search.MaxPagerLinks,
		TeaserWords:   cfg.Search.TeaserWords,
	})
	server := chiTransport.NewServer(
		query.NewRegistry(builder), a.client, formatter, a.gate, cfg.Search.PageSize, a.logger)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      server.Router(),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
