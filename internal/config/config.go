// Package config loads the solrpress configuration from per-environment
// YAML files with ${VAR} expansion.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the full solrpress configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Solr       SolrConfig       `yaml:"solr"`
	Index      IndexConfig      `yaml:"index"`
	Facets     FacetConfig      `yaml:"facets"`
	Search     SearchConfig     `yaml:"search"`
	Checkpoint CheckpointConfig `yaml:"checkpoint"`
	Content    ContentConfig    `yaml:"content"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// SolrConfig holds backend connection settings.
type SolrConfig struct {
	Scheme          string `yaml:"scheme"` // http, https (default: http)
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	Path            string `yaml:"path"` // core path, e.g. /solr/content
	TimeoutSec      int    `yaml:"timeout_sec"`
	DefaultOperator string `yaml:"default_operator"` // AND, OR, or empty
}

// IndexConfig controls what the document builder indexes and how the bulk
// job pages through content.
type IndexConfig struct {
	// Types lists the content types eligible for indexing.
	Types []string `yaml:"types"`

	IndexComments bool `yaml:"index_comments"`

	// CategoriesAsHierarchy indexes category membership as delimiter-joined
	// ancestor paths instead of flat names.
	CategoriesAsHierarchy bool `yaml:"categories_as_hierarchy"`

	CustomFields []string `yaml:"custom_fields"`

	// Exclusions lists record ids that must never be indexed.
	Exclusions []int64 `yaml:"exclusions"`

	// PageSize is the bulk job's per-page record count.
	PageSize int `yaml:"page_size"`

	MultiTenant bool `yaml:"multi_tenant"`
}

// FacetConfig selects which fields the query builder facets on.
type FacetConfig struct {
	Categories   bool     `yaml:"categories"`
	Tags         bool     `yaml:"tags"`
	Author       bool     `yaml:"author"`
	Type         bool     `yaml:"type"`
	Taxonomies   []string `yaml:"taxonomies"`
	CustomFields []string `yaml:"custom_fields"`

	// TagLimit caps the number of tag facet values returned; other facet
	// fields are uncapped.
	TagLimit int `yaml:"tag_limit"`
}

// SearchConfig holds result presentation settings.
type SearchConfig struct {
	PageSize      int    `yaml:"page_size"`
	Boosts        bool   `yaml:"boosts"` // query-time field boosting
	HighlightPre  string `yaml:"highlight_pre"`
	HighlightPost string `yaml:"highlight_post"`
	MaxPagerLinks int    `yaml:"max_pager_links"`
	TeaserWords   int    `yaml:"teaser_words"`
}

// CheckpointConfig selects the durable cursor store for bulk jobs.
type CheckpointConfig struct {
	Driver   string   `yaml:"driver"` // redis, memory (default: memory)
	Addrs    []string `yaml:"addrs"`
	Password string   `yaml:"password"`
}

// ContentConfig selects the content repository.
type ContentConfig struct {
	Driver string `yaml:"driver"` // sqlite (default)
	DSN    string `yaml:"dsn"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// Load reads configuration for an environment name (local, dev, prod) from
// ./config/<env>.yaml, or from the file named by SOLRPRESS_CONFIG.
func Load(env string) (Config, error) {
	path := os.Getenv("SOLRPRESS_CONFIG")
	if path == "" {
		path = filepath.Join("config", env+".yaml")
	}
	return LoadFile(path)
}

// LoadFile reads configuration from one YAML file.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// GetEnv returns the current environment from ENV, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Solr.Scheme == "" {
		c.Solr.Scheme = "http"
	}
	if c.Solr.TimeoutSec <= 0 {
		c.Solr.TimeoutSec = 15
	}
	if len(c.Index.Types) == 0 {
		c.Index.Types = []string{"post", "page"}
	}
	if c.Index.PageSize <= 0 {
		c.Index.PageSize = 300
	}
	if c.Facets.TagLimit <= 0 {
		c.Facets.TagLimit = 25
	}
	if c.Search.PageSize <= 0 {
		c.Search.PageSize = 10
	}
	if c.Search.HighlightPre == "" {
		c.Search.HighlightPre = "<b>"
	}
	if c.Search.HighlightPost == "" {
		c.Search.HighlightPost = "</b>"
	}
	if c.Search.MaxPagerLinks <= 0 {
		c.Search.MaxPagerLinks = 10
	}
	if c.Search.TeaserWords <= 0 {
		c.Search.TeaserWords = 30
	}
	if c.Checkpoint.Driver == "" {
		c.Checkpoint.Driver = "memory"
	}
	if c.Content.Driver == "" {
		c.Content.Driver = "sqlite"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.Solr.Host == "" {
		return fmt.Errorf("solr.host is required")
	}
	if c.Solr.Port <= 0 || c.Solr.Port > 65535 {
		return fmt.Errorf("solr.port must be between 1 and 65535, got %d", c.Solr.Port)
	}
	if c.Solr.Path == "" {
		return fmt.Errorf("solr.path is required")
	}
	switch c.Solr.DefaultOperator {
	case "", "AND", "OR":
		// ok
	default:
		return fmt.Errorf("solr.default_operator must be AND or OR, got %q", c.Solr.DefaultOperator)
	}
	switch c.Checkpoint.Driver {
	case "memory":
	case "redis":
		if len(c.Checkpoint.Addrs) == 0 {
			return fmt.Errorf("checkpoint.addrs is required for the redis driver")
		}
	default:
		return fmt.Errorf("unknown checkpoint.driver %q", c.Checkpoint.Driver)
	}
	if c.Content.Driver != "sqlite" {
		return fmt.Errorf("unknown content.driver %q", c.Content.Driver)
	}
	return nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment
// variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
