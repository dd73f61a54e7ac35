// Package syncer pushes index changes to the search backend. Every operation
// degrades to a logged no-op when the backend is unreachable so callers on
// content-write paths never block or fail on search trouble.
package syncer

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/solrpress/solrpress/internal/docbuild"
	"github.com/solrpress/solrpress/internal/domain/document"
	"github.com/solrpress/solrpress/internal/domain/record"
	"github.com/solrpress/solrpress/internal/solr"
)

// Backend is the slice of the search client the syncer needs.
type Backend interface {
	Update(ctx context.Context, req solr.UpdateRequest) error
}

// Gate reports cached backend availability.
type Gate interface {
	Available(ctx context.Context) bool
}

// Settings control the live change handlers.
type Settings struct {
	// Types lists content types eligible for indexing. Saves of other
	// types are ignored.
	Types []string
	// PublishedStatus is the record status that makes a record visible in
	// the index. Leaving it removes the record.
	PublishedStatus string
}

// Syncer applies document-level changes to the backend.
type Syncer struct {
	backend  Backend
	gate     Gate
	builder  *docbuild.Builder
	settings Settings
	logger   *zap.Logger

	mu      sync.Mutex
	lastErr error
}

// New returns a Syncer. An empty PublishedStatus defaults to "publish".
func New(backend Backend, gate Gate, builder *docbuild.Builder, settings Settings, logger *zap.Logger) *Syncer {
	if settings.PublishedStatus == "" {
		settings.PublishedStatus = "publish"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Syncer{
		backend:  backend,
		gate:     gate,
		builder:  builder,
		settings: settings,
		logger:   logger,
	}
}

// LastError returns the most recent backend failure, or nil.
func (s *Syncer) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Upsert submits documents with a commit. When optimize is set a second
// update call issues the optimize command; documents and commands cannot
// share one update request. Reports whether the submission reached the
// backend.
func (s *Syncer) Upsert(ctx context.Context, docs []*document.Document, optimize bool) bool {
	if len(docs) == 0 && !optimize {
		return true
	}
	if !s.available(ctx, "upsert") {
		return false
	}

	if len(docs) > 0 {
		err := s.backend.Update(ctx, solr.UpdateRequest{Documents: docs, Commit: true})
		if !s.record("upsert", err, zap.Int("documents", len(docs))) {
			return false
		}
	}
	if optimize {
		err := s.backend.Update(ctx, solr.UpdateRequest{Optimize: true})
		if !s.record("optimize", err) {
			return false
		}
	}
	return true
}

// Delete removes one document by id, with a commit.
func (s *Syncer) Delete(ctx context.Context, id string) bool {
	if !s.available(ctx, "delete") {
		return false
	}
	err := s.backend.Update(ctx, solr.UpdateRequest{DeleteIDs: []string{id}, Commit: true})
	return s.record("delete", err, zap.String("id", id))
}

// DeleteAll removes every document in the index, with a commit.
func (s *Syncer) DeleteAll(ctx context.Context) bool {
	if !s.available(ctx, "delete all") {
		return false
	}
	err := s.backend.Update(ctx, solr.UpdateRequest{DeleteQuery: "*:*", Commit: true})
	return s.record("delete all", err)
}

// DeleteByFilter removes every document matching a filter expression, with a
// commit. Used for tenant removal ("siteid:7") and similar scoped wipes.
func (s *Syncer) DeleteByFilter(ctx context.Context, expr string) bool {
	if expr == "" {
		s.setErr(errors.New("syncer: empty delete filter"))
		return false
	}
	if !s.available(ctx, "delete by filter") {
		return false
	}
	err := s.backend.Update(ctx, solr.UpdateRequest{DeleteQuery: expr, Commit: true})
	return s.record("delete by filter", err, zap.String("filter", expr))
}

// Optimize asks the backend to compact its index.
func (s *Syncer) Optimize(ctx context.Context) bool {
	if !s.available(ctx, "optimize") {
		return false
	}
	err := s.backend.Update(ctx, solr.UpdateRequest{Optimize: true, Commit: true})
	return s.record("optimize", err)
}

// HandleSave reacts to a record being created or updated. Published records
// of an indexed type are upserted; anything else is removed so stale copies
// never linger after an unpublish-by-edit.
func (s *Syncer) HandleSave(ctx context.Context, rec *record.ContentRecord, site *record.SiteContext) bool {
	if rec.Status != s.settings.PublishedStatus || !s.typeIndexed(rec.Type) {
		return s.Delete(ctx, record.DocumentID(rec.ID, site))
	}

	doc, err := s.builder.Build(rec, site)
	if errors.Is(err, docbuild.ErrExcluded) {
		return s.Delete(ctx, record.DocumentID(rec.ID, site))
	}
	if err != nil {
		s.setErr(err)
		s.logger.Error("build document on save", zap.Int64("record", rec.ID), zap.Error(err))
		return false
	}
	return s.Upsert(ctx, []*document.Document{doc}, false)
}

// HandleStatusChange reacts to a status transition. Entering the published
// status indexes the record; leaving it removes the document.
func (s *Syncer) HandleStatusChange(ctx context.Context, rec *record.ContentRecord, site *record.SiteContext) bool {
	if rec.Status == s.settings.PublishedStatus {
		return s.HandleSave(ctx, rec, site)
	}
	return s.Delete(ctx, record.DocumentID(rec.ID, site))
}

// HandleDelete reacts to a record being removed from the content repository.
func (s *Syncer) HandleDelete(ctx context.Context, recordID int64, site *record.SiteContext) bool {
	return s.Delete(ctx, record.DocumentID(recordID, site))
}

func (s *Syncer) typeIndexed(t string) bool {
	for _, it := range s.settings.Types {
		if it == t {
			return true
		}
	}
	return len(s.settings.Types) == 0
}

func (s *Syncer) available(ctx context.Context, op string) bool {
	if s.gate != nil && !s.gate.Available(ctx) {
		s.setErr(solr.ErrUnavailable)
		s.logger.Warn("skipping sync operation, backend unavailable", zap.String("op", op))
		return false
	}
	return true
}

func (s *Syncer) record(op string, err error, fields ...zap.Field) bool {
	if err != nil {
		s.setErr(err)
		s.logger.Error("sync operation failed", append(fields, zap.String("op", op), zap.Error(err))...)
		return false
	}
	s.logger.Debug("sync operation applied", append(fields, zap.String("op", op))...)
	return true
}

func (s *Syncer) setErr(err error) {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
}
