// Package sqlite is a SQLite-backed content repository. It serves CLI-driven
// indexing runs and tests; production deployments plug their own Source in.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/solrpress/solrpress/internal/content"
	"github.com/solrpress/solrpress/internal/domain/record"
)

// Compile-time check: Store implements content.Source.
var _ content.Source = (*Store)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS records (
	id INTEGER PRIMARY KEY,
	type TEXT NOT NULL,
	status TEXT NOT NULL,
	title TEXT NOT NULL DEFAULT '',
	body TEXT NOT NULL DEFAULT '',
	author TEXT NOT NULL DEFAULT '',
	author_link TEXT NOT NULL DEFAULT '',
	permalink TEXT NOT NULL DEFAULT '',
	published_at TEXT NOT NULL DEFAULT '',
	modified_at TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS comments (
	record_id INTEGER NOT NULL REFERENCES records(id),
	body TEXT NOT NULL,
	approved INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS terms (
	record_id INTEGER NOT NULL REFERENCES records(id),
	taxonomy TEXT NOT NULL,
	name TEXT NOT NULL,
	path TEXT NOT NULL DEFAULT '',
	position INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS custom_fields (
	record_id INTEGER NOT NULL REFERENCES records(id),
	name TEXT NOT NULL,
	value TEXT NOT NULL,
	position INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_records_type ON records(type, status, id);
CREATE INDEX IF NOT EXISTS idx_terms_record ON terms(record_id, taxonomy, position);
`

// Store reads content records from a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (and initializes) the content database at the given DSN.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open content db: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init content schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the handle for fixtures and diagnostics.
func (s *Store) DB() *sql.DB { return s.db }

// ListIDs returns one page of record ids matching the filter, ordered id
// ascending.
func (s *Store) ListIDs(ctx context.Context, f content.ListFilter) ([]int64, error) {
	where, args := scopeClause(f)
	page := f.Page
	if page < 1 {
		page = 1
	}
	query := "SELECT id FROM records " + where + " ORDER BY id ASC LIMIT ? OFFSET ?"
	args = append(args, f.PageSize, (page-1)*f.PageSize)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Count returns the number of records in the filter's scope.
func (s *Store) Count(ctx context.Context, f content.ListFilter) (int, error) {
	where, args := scopeClause(f)
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM records "+where, args...).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

// Record returns one hydrated record.
func (s *Store) Record(ctx context.Context, id int64) (*record.ContentRecord, error) {
	rec := &record.ContentRecord{ID: id}
	err := s.db.QueryRowContext(ctx, `
		SELECT type, status, title, body, author, author_link, permalink, published_at, modified_at
		FROM records WHERE id = ?`, id).Scan(
		&rec.Type, &rec.Status, &rec.Title, &rec.Body,
		&rec.Author, &rec.AuthorLink, &rec.Permalink,
		&rec.PublishedAt, &rec.ModifiedAt,
	)
	if err == sql.ErrNoRows {
		return nil, content.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch record %d: %w", id, err)
	}

	if err := s.attachComments(ctx, rec); err != nil {
		return nil, err
	}
	if err := s.attachTerms(ctx, rec); err != nil {
		return nil, err
	}
	if err := s.attachCustomFields(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Types returns the distinct content types present.
func (s *Store) Types(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT type FROM records ORDER BY type")
	if err != nil {
		return nil, fmt.Errorf("list types: %w", err)
	}
	defer rows.Close()

	var types []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan type: %w", err)
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

func (s *Store) attachComments(ctx context.Context, rec *record.ContentRecord) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT body, approved FROM comments WHERE record_id = ? ORDER BY rowid", rec.ID)
	if err != nil {
		return fmt.Errorf("fetch comments %d: %w", rec.ID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var body string
		var approved bool
		if err := rows.Scan(&body, &approved); err != nil {
			return fmt.Errorf("scan comment: %w", err)
		}
		rec.CommentCount++
		if approved {
			rec.Comments = append(rec.Comments, body)
		}
	}
	return rows.Err()
}

func (s *Store) attachTerms(ctx context.Context, rec *record.ContentRecord) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT taxonomy, name, path FROM terms
		WHERE record_id = ? ORDER BY taxonomy, position`, rec.ID)
	if err != nil {
		return fmt.Errorf("fetch terms %d: %w", rec.ID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var taxonomy, name, path string
		if err := rows.Scan(&taxonomy, &name, &path); err != nil {
			return fmt.Errorf("scan term: %w", err)
		}
		switch taxonomy {
		case "category":
			segments := []string{name}
			if path != "" {
				segments = strings.Split(path, "/")
			}
			rec.Categories = append(rec.Categories, segments)
		case "tag":
			rec.Tags = append(rec.Tags, name)
		default:
			if rec.Taxonomies == nil {
				rec.Taxonomies = make(map[string][]string)
			}
			rec.Taxonomies[taxonomy] = append(rec.Taxonomies[taxonomy], name)
		}
	}
	return rows.Err()
}

func (s *Store) attachCustomFields(ctx context.Context, rec *record.ContentRecord) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, value FROM custom_fields
		WHERE record_id = ? ORDER BY name, position`, rec.ID)
	if err != nil {
		return fmt.Errorf("fetch custom fields %d: %w", rec.ID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return fmt.Errorf("scan custom field: %w", err)
		}
		if rec.Custom == nil {
			rec.Custom = make(map[string][]string)
		}
		rec.Custom[name] = append(rec.Custom[name], value)
	}
	return rows.Err()
}

func scopeClause(f content.ListFilter) (string, []any) {
	var clauses []string
	var args []any
	if len(f.Types) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(f.Types)), ",")
		clauses = append(clauses, "type IN ("+placeholders+")")
		for _, t := range f.Types {
			args = append(args, t)
		}
	}
	if f.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, f.Status)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}
