package testutil

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/pkordes/crimsoncollab/backend/internal/store"
)

// NewStore returns a Store over a fresh in-memory backend, plus the backend
// itself so tests can plant raw (including malformed) documents.
func NewStore(t *testing.T) (*store.Store, *store.MemoryBackend) {
	t.Helper()
	b := store.NewMemoryBackend()
	return store.New(b, DiscardLogger()), b
}

// DiscardLogger returns a logger that drops everything, keeping test output clean.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}
