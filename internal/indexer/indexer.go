// Package indexer drives resumable full-reindex jobs. A job walks the content
// repository page by page, builds documents, submits each page as one batch
// and checkpoints progress so an interrupted run can resume where it stopped.
package indexer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/solrpress/solrpress/internal/checkpoint"
	"github.com/solrpress/solrpress/internal/content"
	"github.com/solrpress/solrpress/internal/docbuild"
	"github.com/solrpress/solrpress/internal/domain/document"
	"github.com/solrpress/solrpress/internal/domain/record"
	"github.com/solrpress/solrpress/internal/metrics"
)

const defaultPageSize = 300

// Submitter is the slice of the sync layer a job needs.
type Submitter interface {
	Upsert(ctx context.Context, docs []*document.Document, optimize bool) bool
	LastError() error
}

// Params identify one indexing job. Two runs with equal Params share a
// checkpoint and therefore resume each other.
type Params struct {
	// Types scopes the job to these content types; empty means all.
	Types []string
	// PageSize is how many records one page fetches.
	PageSize int
	// Site scopes the job to one tenant and prefixes document ids.
	Site *record.SiteContext
	// Status scopes which record status is indexed, normally "publish".
	Status string
}

// Key returns the checkpoint key for these params. The serialization is
// canonical: type order and zero values do not change the key.
func (p Params) Key() string {
	types := append([]string(nil), p.Types...)
	sort.Strings(types)

	size := p.PageSize
	if size <= 0 {
		size = defaultPageSize
	}
	var site int64
	if p.Site != nil {
		site = p.Site.ID
	}
	status := p.Status
	if status == "" {
		status = "publish"
	}

	raw := fmt.Sprintf("types=%s;size=%d;site=%d;status=%s",
		strings.Join(types, ","), size, site, status)
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func (p Params) filter(page int) content.ListFilter {
	size := p.PageSize
	if size <= 0 {
		size = defaultPageSize
	}
	status := p.Status
	if status == "" {
		status = "publish"
	}
	return content.ListFilter{
		Types:    p.Types,
		PageSize: size,
		Page:     page,
		Status:   status,
	}
}

// Result is the outcome of one run.
type Result struct {
	Indexed   int
	Failed    int
	Total     int
	Completed bool
	LastError error
}

// Controller runs indexing jobs.
type Controller struct {
	source      content.Source
	builder     *docbuild.Builder
	submitter   Submitter
	store       checkpoint.Store
	logger      *zap.Logger
	concurrency int

	// onComplete, when set, is called after a job finishes and its cursor
	// is cleared.
	onComplete func(ctx context.Context, params Params, res Result)
}

// Option configures a Controller.
type Option func(*Controller)

// WithConcurrency bounds how many documents of one page build in parallel.
func WithConcurrency(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithCompletionHook registers a callback fired when a job completes.
func WithCompletionHook(fn func(ctx context.Context, params Params, res Result)) Option {
	return func(c *Controller) { c.onComplete = fn }
}

// New returns a Controller.
func New(source content.Source, builder *docbuild.Builder, submitter Submitter, store checkpoint.Store, logger *zap.Logger, opts ...Option) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Controller{
		source:      source,
		builder:     builder,
		submitter:   submitter,
		store:       store,
		logger:      logger,
		concurrency: 4,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run executes one indexing job. Unless force is set, a run resumes from the
// checkpoint left by a previous run with the same params. Pages already
// submitted before an interruption may be submitted again; document ids are
// stable, so resubmission overwrites rather than duplicates.
//
// Per-item failures are counted and logged but never stop the job. The only
// early exit is context cancellation, which pauses the job and leaves the
// cursor in place.
func (c *Controller) Run(ctx context.Context, params Params, force bool) (Result, error) {
	runID := uuid.NewString()
	key := params.Key()
	log := c.logger.With(zap.String("run_id", runID), zap.String("job_key", key))

	cursor := checkpoint.Cursor{Page: 1, Status: checkpoint.StatusRunning}
	if !force {
		prev, found, err := c.store.Get(ctx, key)
		if err != nil {
			return Result{}, fmt.Errorf("load checkpoint: %w", err)
		}
		if found && prev.Status != checkpoint.StatusCompleted {
			cursor = prev
			cursor.Status = checkpoint.StatusRunning
			log.Info("resuming indexing job",
				zap.Int("page", cursor.Page),
				zap.Int("succeeded", cursor.Succeeded),
				zap.Int("failed", cursor.Failed))
		}
	}

	total, err := c.source.Count(ctx, params.filter(1))
	if err != nil {
		return Result{}, fmt.Errorf("count records: %w", err)
	}
	cursor.Total = total
	log.Info("indexing job started", zap.Int("total", total), zap.Bool("force", force))

	for {
		if err := ctx.Err(); err != nil {
			return c.pause(ctx, key, cursor, log, err)
		}

		ids, err := c.source.ListIDs(ctx, params.filter(cursor.Page))
		if err != nil {
			if ctx.Err() != nil {
				return c.pause(ctx, key, cursor, log, ctx.Err())
			}
			return Result{}, fmt.Errorf("list page %d: %w", cursor.Page, err)
		}
		if len(ids) == 0 {
			break
		}

		start := time.Now()
		docs, failed := c.buildPage(ctx, params, ids, log)
		if len(docs) > 0 && !c.submitter.Upsert(ctx, docs, false) {
			// Whole batch missed the backend. Count it and move on;
			// the run reports the failure at the end.
			failed += len(docs)
			docs = nil
		}
		metrics.IndexPageDuration.Observe(time.Since(start).Seconds())
		metrics.IndexedDocumentsTotal.WithLabelValues("indexed").Add(float64(len(docs)))
		metrics.IndexedDocumentsTotal.WithLabelValues("failed").Add(float64(failed))

		cursor.Succeeded += len(docs)
		cursor.Failed += failed
		cursor.Page++
		cursor.UpdatedAt = time.Now().UTC()
		if err := c.store.Set(ctx, key, cursor); err != nil {
			return Result{}, fmt.Errorf("save checkpoint: %w", err)
		}
		log.Debug("page indexed",
			zap.Int("page", cursor.Page-1),
			zap.Int("indexed", len(docs)),
			zap.Int("failed", failed))
	}

	res := Result{
		Indexed:   cursor.Succeeded,
		Failed:    cursor.Failed,
		Total:     total,
		Completed: true,
		LastError: c.submitter.LastError(),
	}
	if err := c.store.Clear(ctx, key); err != nil {
		return res, fmt.Errorf("clear checkpoint: %w", err)
	}
	metrics.IndexRunsTotal.WithLabelValues("completed").Inc()
	log.Info("indexing job completed",
		zap.Int("indexed", res.Indexed),
		zap.Int("failed", res.Failed))

	if c.onComplete != nil {
		c.onComplete(ctx, params, res)
	}
	return res, nil
}

// Status returns the stored cursor for a job, if any.
func (c *Controller) Status(ctx context.Context, params Params) (checkpoint.Cursor, bool, error) {
	return c.store.Get(ctx, params.Key())
}

// buildPage hydrates and builds one page of records. Document order follows
// id order regardless of which build finishes first.
func (c *Controller) buildPage(ctx context.Context, params Params, ids []int64, log *zap.Logger) ([]*document.Document, int) {
	built := make([]*document.Document, len(ids))
	var failed int

	sem := make(chan struct{}, c.concurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for i, id := range ids {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, id int64) {
			defer wg.Done()
			defer func() { <-sem }()

			rec, err := c.source.Record(ctx, id)
			if err != nil {
				mu.Lock()
				failed++
				mu.Unlock()
				log.Warn("skipping record, fetch failed",
					zap.Int64("record", id), zap.Error(err))
				return
			}
			doc, err := c.builder.Build(rec, params.Site)
			if err == docbuild.ErrExcluded {
				return
			}
			if err != nil {
				mu.Lock()
				failed++
				mu.Unlock()
				log.Warn("skipping record, build failed",
					zap.String("record", docbuild.Describe(rec)), zap.Error(err))
				return
			}
			built[i] = doc
		}(i, id)
	}
	wg.Wait()

	docs := make([]*document.Document, 0, len(ids))
	for _, d := range built {
		if d != nil {
			docs = append(docs, d)
		}
	}
	return docs, failed
}

func (c *Controller) pause(ctx context.Context, key string, cursor checkpoint.Cursor, log *zap.Logger, cause error) (Result, error) {
	cursor.Status = checkpoint.StatusPaused
	cursor.UpdatedAt = time.Now().UTC()

	// The run context is already canceled; give the checkpoint write its
	// own short deadline so the pause state is not lost.
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := c.store.Set(saveCtx, key, cursor); err != nil {
		log.Error("saving pause checkpoint failed", zap.Error(err))
	}
	metrics.IndexRunsTotal.WithLabelValues("paused").Inc()
	log.Info("indexing job paused",
		zap.Int("page", cursor.Page),
		zap.Int("succeeded", cursor.Succeeded))

	return Result{
		Indexed:   cursor.Succeeded,
		Failed:    cursor.Failed,
		Total:     cursor.Total,
		LastError: c.submitter.LastError(),
	}, cause
}

// PageCount returns how many pages a job of the given size needs for total
// records.
func PageCount(total, pageSize int) int {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if total <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}
