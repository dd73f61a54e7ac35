package solr

import "errors"

// Sentinel errors for backend operations.
var (
	// ErrNotConfigured means required connection parameters are missing.
	// Operations abort before any backend call.
	ErrNotConfigured = errors.New("solr: connection not configured")

	// ErrUnavailable means the backend could not produce a usable response
	// (connection refused, timeout, non-200). Callers treat this as "no
	// response", never as partial data.
	ErrUnavailable = errors.New("solr: backend unavailable")
)

// Op constants name the backend handlers for error context.
const (
	OpPing   = "ping"
	OpUpdate = "update"
	OpSelect = "select"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return "solr " + e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
