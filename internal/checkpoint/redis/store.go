// Package redis provides a Redis-backed checkpoint store so bulk jobs can
// resume across hosts and restarts.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/rueidis"

	"github.com/solrpress/solrpress/internal/checkpoint"
)

// Compile-time check: Store implements checkpoint.Store.
var _ checkpoint.Store = (*Store)(nil)

const keyPrefix = "solrpress:job:"

// cursorTTL bounds how long an abandoned cursor lingers. A month covers any
// plausible gap between an interruption and the retry.
const cursorTTL = 30 * 24 * time.Hour

// Config holds connection parameters for the checkpoint store.
type Config struct {
	Addrs    []string
	Username string
	Password string
}

// Store persists job cursors in Redis via rueidis.
type Store struct {
	client rueidis.Client
}

// NewStore connects to Redis.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create redis client: %w", err)
	}
	return &Store{client: client}, nil
}

// Close shuts down the client.
func (s *Store) Close() {
	s.client.Close()
}

// Get returns the cursor for a job key, reporting whether one exists.
func (s *Store) Get(ctx context.Context, jobKey string) (checkpoint.Cursor, bool, error) {
	cmd := s.client.B().Get().Key(keyPrefix + jobKey).Build()
	data, err := s.client.Do(ctx, cmd).AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return checkpoint.Cursor{}, false, nil
		}
		return checkpoint.Cursor{}, false, fmt.Errorf("get cursor %s: %w", jobKey, err)
	}
	var c checkpoint.Cursor
	if err := json.Unmarshal(data, &c); err != nil {
		return checkpoint.Cursor{}, false, fmt.Errorf("parse cursor %s: %w", jobKey, err)
	}
	return c, true, nil
}

// Set writes the cursor for a job key.
func (s *Store) Set(ctx context.Context, jobKey string, c checkpoint.Cursor) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal cursor %s: %w", jobKey, err)
	}
	cmd := s.client.B().Set().Key(keyPrefix + jobKey).Value(string(data)).Ex(cursorTTL).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("set cursor %s: %w", jobKey, err)
	}
	return nil
}

// Clear removes the cursor.
func (s *Store) Clear(ctx context.Context, jobKey string) error {
	cmd := s.client.B().Del().Key(keyPrefix + jobKey).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("clear cursor %s: %w", jobKey, err)
	}
	return nil
}
