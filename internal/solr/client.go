// Package solr is a minimal HTTP client for the Solr JSON API: document
// submission, deletes, select queries with facets and highlighting, and a
// liveness ping. It is the only package that talks to the backend.
package solr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/solrpress/solrpress/internal/domain/document"
)

// Config holds backend connection parameters.
type Config struct {
	Scheme  string // http or https
	Host    string
	Port    int
	Path    string // core path, e.g. "/solr/content"
	Timeout time.Duration
}

// BaseURL renders the endpoint root, without a trailing slash.
func (c Config) BaseURL() string {
	scheme := c.Scheme
	if scheme == "" {
		scheme = "http"
	}
	return fmt.Sprintf("%s://%s:%d%s", scheme, c.Host, c.Port, strings.TrimRight(c.Path, "/"))
}

// Client talks to one Solr endpoint. It is safe for concurrent use.
type Client struct {
	baseURL string
	hc      *http.Client
	logger  *zap.Logger
}

// UpdateRequest is one update-handler call. Deletes, commit and optimize may
// be combined in a single call; a document batch must travel alone, with
// commit requested through the URL.
type UpdateRequest struct {
	Documents   []*document.Document
	DeleteIDs   []string
	DeleteQuery string
	Commit      bool
	Optimize    bool
}

// New validates connection parameters and creates a client. Missing host,
// port, or path is a configuration error: no backend call is attempted.
func New(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.Host == "" || cfg.Port == 0 || cfg.Path == "" {
		return nil, fmt.Errorf("%w: host, port and path are required", ErrNotConfigured)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: cfg.BaseURL(),
		hc:      &http.Client{Timeout: timeout},
		logger:  logger,
	}, nil
}

// Ping checks backend liveness via the admin ping handler.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/admin/ping?wt=json", nil)
	if err != nil {
		return &Error{Op: OpPing, Err: err}
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return &Error{Op: OpPing, Err: fmt.Errorf("%w: %v", ErrUnavailable, err)}
	}
	defer drain(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return &Error{Op: OpPing, Err: fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)}
	}
	return nil
}

// Update posts documents and/or deletes to the update handler. Commit is a
// request parameter; optimize is issued as a trailing command the way the
// update format defines it.
func (c *Client) Update(ctx context.Context, u UpdateRequest) error {
	body, err := encodeUpdate(u)
	if err != nil {
		return &Error{Op: OpUpdate, Err: err}
	}

	endpoint := c.baseURL + "/update?wt=json"
	if u.Commit {
		endpoint += "&commit=true"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return &Error{Op: OpUpdate, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return &Error{Op: OpUpdate, Err: fmt.Errorf("%w: %v", ErrUnavailable, err)}
	}
	defer drain(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return &Error{Op: OpUpdate, Err: fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)}
	}
	return nil
}

// Select runs a select query and decodes the response. A transport failure
// or non-200 status yields ErrUnavailable: there is no partial data.
func (c *Client) Select(ctx context.Context, q *SelectQuery) (*Response, error) {
	endpoint := c.baseURL + "/select?" + q.Values().Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &Error{Op: OpSelect, Err: err}
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, &Error{Op: OpSelect, Err: fmt.Errorf("%w: %v", ErrUnavailable, err)}
	}
	defer drain(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, &Error{Op: OpSelect, Err: fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)}
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &Error{Op: OpSelect, Err: fmt.Errorf("decode response: %w", err)}
	}
	return &out, nil
}

// Count returns the number of indexed documents matching the query
// expression, fetching no rows.
func (c *Client) Count(ctx context.Context, query string) (int, error) {
	resp, err := c.Select(ctx, &SelectQuery{Query: query, Rows: 0})
	if err != nil {
		return 0, err
	}
	return resp.Body.NumFound, nil
}

// Endpoint reports the connection target for diagnostics.
func (c *Client) Endpoint() string {
	return c.baseURL
}

// encodeUpdate renders the update command body. Document adds use the bare
// array form; deletes and optimize use named commands.
func encodeUpdate(u UpdateRequest) ([]byte, error) {
	if len(u.Documents) > 0 && len(u.DeleteIDs) == 0 && u.DeleteQuery == "" && !u.Optimize {
		return json.Marshal(u.Documents)
	}

	cmd := make(map[string]any)
	if len(u.Documents) > 0 {
		// Mixed command form cannot carry multiple adds in one object, so
		// batched adds always take the bare-array branch above.
		return nil, fmt.Errorf("documents cannot be combined with other commands")
	}
	if len(u.DeleteIDs) > 0 {
		cmd["delete"] = u.DeleteIDs
	}
	if u.DeleteQuery != "" {
		cmd["delete"] = map[string]string{"query": u.DeleteQuery}
	}
	if u.Optimize {
		cmd["optimize"] = map[string]any{}
	}
	return json.Marshal(cmd)
}

func drain(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}
