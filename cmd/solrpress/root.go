// Command solrpress serves the content search API and runs indexing jobs.
package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/solrpress/solrpress/internal/checkpoint"
	checkpointRedis "github.com/solrpress/solrpress/internal/checkpoint/redis"
	"github.com/solrpress/solrpress/internal/config"
	"github.com/solrpress/solrpress/internal/content"
	contentSqlite "github.com/solrpress/solrpress/internal/content/sqlite"
	"github.com/solrpress/solrpress/internal/docbuild"
	"github.com/solrpress/solrpress/internal/health"
	"github.com/solrpress/solrpress/internal/indexer"
	logpkg "github.com/solrpress/solrpress/internal/logger"
	"github.com/solrpress/solrpress/internal/metrics"
	"github.com/solrpress/solrpress/internal/solr"
	"github.com/solrpress/solrpress/internal/syncer"
	"github.com/solrpress/solrpress/internal/version"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "solrpress",
	Short:         "Content indexing and faceted search over Solr",
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default config/<ENV>.yaml)")
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

// app is the composition root shared by every command.
type app struct {
	cfg    config.Config
	logger *zap.Logger
	client *solr.Client
	gate   *health.Gate

	source  content.Source
	store   checkpoint.Store
	builder *docbuild.Builder
	sync    *syncer.Syncer

	closers []func() error
}

func newApp() (*app, error) {
	env := config.GetEnv()

	var cfg config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load(env)
	}
	if err != nil {
		return nil, err
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	metrics.Register()

	client, err := solr.New(solr.Config{
		Scheme:  cfg.Solr.Scheme,
		Host:    cfg.Solr.Host,
		Port:    cfg.Solr.Port,
		Path:    cfg.Solr.Path,
		Timeout: time.Duration(cfg.Solr.TimeoutSec) * time.Second,
	}, logger)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:    cfg,
		logger: logger,
		client: client,
		gate:   health.NewGate(client, health.DefaultTTL, logger),
	}

	a.builder = docbuild.New(docbuild.Settings{
		Exclusions:            cfg.Index.Exclusions,
		IndexComments:         cfg.Index.IndexComments,
		CategoriesAsHierarchy: cfg.Index.CategoriesAsHierarchy,
		CustomFields:          cfg.Index.CustomFields,
		MultiTenant:           cfg.Index.MultiTenant,
	})
	a.sync = syncer.New(client, a.gate, a.builder, syncer.Settings{Types: cfg.Index.Types}, logger)

	switch cfg.Checkpoint.Driver {
	case "redis":
		store, err := checkpointRedis.NewStore(checkpointRedis.Config{
			Addrs:    cfg.Checkpoint.Addrs,
			Password: cfg.Checkpoint.Password,
		})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect checkpoint store: %w", err)
		}
		a.store = store
		a.closers = append(a.closers, func() error {
			store.Close()
			return nil
		})
	default:
		a.store = checkpoint.NewMemory()
	}

	src, err := contentSqlite.Open(cfg.Content.DSN)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("open content source: %w", err)
	}
	a.source = src
	a.closers = append(a.closers, src.Close)

	return a, nil
}

func (a *app) indexController() *indexer.Controller {
	return indexer.New(a.source, a.builder, a.sync, a.store, a.logger)
}

// Close releases everything newApp opened, last first.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("close failed", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}
