// Package store is the persistent key-value layer of the shared data service.
// Every collection (profiles, trips, groups, ...) is one JSON document stored
// under a single key, and every save overwrites the whole document.
//
// Store serializes writes made by this process through one mutex so that
// read-modify-write cycles (Update) never lose each other's changes.
// Between processes the model is last-write-wins.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/pkordes/crimsoncollab/backend/internal/domain"
)

// ErrKeyNotFound is returned by a Backend when no document exists under a key.
var ErrKeyNotFound = errors.New("store: key not found")

// Backend is raw durable storage for collection documents.
// Implementations must be safe for concurrent use.
type Backend interface {
	// Get returns the document stored under key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put replaces the document stored under key.
	Put(ctx context.Context, key string, data []byte) error

	// Keys lists every key that currently holds a document.
	Keys(ctx context.Context) ([]string, error)

	// Close releases connections held by the backend.
	Close() error
}

// Store wraps a Backend with JSON encoding, defaulting and change notification.
// A nil *Store is valid and behaves as an unavailable store.
type Store struct {
	backend Backend
	log     *slog.Logger

	mu sync.Mutex // serializes Save and Update

	obsMu     sync.RWMutex
	observers []func(domain.Key)
}

// New constructs a Store over b. If log is nil, slog.Default() is used.
func New(b Backend, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{backend: b, log: log}
}

// Available reports whether s can read and write documents.
func (s *Store) Available() bool {
	return s != nil && s.backend != nil
}

// OnChange registers fn to be called with the key of every document that is
// successfully saved. Observers run synchronously after the write lock is released.
func (s *Store) OnChange(fn func(domain.Key)) {
	if s == nil {
		return
	}
	s.obsMu.Lock()
	s.observers = append(s.observers, fn)
	s.obsMu.Unlock()
}

// Close closes the underlying backend.
func (s *Store) Close() error {
	if !s.Available() {
		return nil
	}
	return s.backend.Close()
}

// Load returns the document stored under key decoded as T, or def when the
// store is unavailable, the key is absent, the backend fails, or the stored
// JSON is malformed. Failures are logged, never returned.
func Load[T any](ctx context.Context, s *Store, key domain.Key, def T) T {
	if !s.Available() {
		return def
	}
	v, err := readAs(ctx, s, key, def)
	if err != nil {
		s.log.WarnContext(ctx, "store read failed; using default", "key", string(key), "error", err)
		return def
	}
	return v
}

// Save overwrites the document under key with v.
// It reports false, after logging, when the write did not happen.
func Save[T any](ctx context.Context, s *Store, key domain.Key, v T) bool {
	if !s.Available() {
		return false
	}
	data, err := json.Marshal(v)
	if err != nil {
		s.log.ErrorContext(ctx, "store encode failed", "key", string(key), "error", err)
		return false
	}

	s.mu.Lock()
	err = s.backend.Put(ctx, string(key), data)
	s.mu.Unlock()

	if err != nil {
		s.log.ErrorContext(ctx, "store write failed", "key", string(key), "error", err)
		return false
	}
	s.notify(key)
	return true
}

// Update loads the document under key (def if absent or malformed), passes it
// to fn, and writes back fn's result. The whole cycle holds the store's write
// lock. If fn returns an error nothing is written and the error is returned
// unchanged. A backend read failure aborts the update instead of overwriting
// the collection with def.
func Update[T any](ctx context.Context, s *Store, key domain.Key, def T, fn func(T) (T, error)) (T, error) {
	var zero T
	if !s.Available() {
		return zero, domain.ErrUnavailable
	}

	s.mu.Lock()
	current, err := readTolerant(ctx, s, key, def)
	if err != nil {
		s.mu.Unlock()
		return zero, fmt.Errorf("store.Update %s: %w: %v", key, domain.ErrUnavailable, err)
	}

	next, err := fn(current)
	if err != nil {
		s.mu.Unlock()
		return zero, err
	}

	data, err := json.Marshal(next)
	if err != nil {
		s.mu.Unlock()
		return zero, fmt.Errorf("store.Update %s: encode: %w", key, err)
	}
	if err := s.backend.Put(ctx, string(key), data); err != nil {
		s.mu.Unlock()
		return zero, fmt.Errorf("store.Update %s: %w: %v", key, domain.ErrUnavailable, err)
	}
	s.mu.Unlock()

	s.notify(key)
	return next, nil
}

// Dump returns every stored document as raw JSON keyed by collection key.
// Documents that are not valid JSON are skipped.
func (s *Store) Dump(ctx context.Context) (map[string]json.RawMessage, error) {
	if !s.Available() {
		return map[string]json.RawMessage{}, domain.ErrUnavailable
	}
	keys, err := s.backend.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("store.Dump: keys: %w", err)
	}
	sort.Strings(keys)

	out := make(map[string]json.RawMessage, len(keys))
	for _, k := range keys {
		data, err := s.backend.Get(ctx, k)
		if err != nil {
			continue
		}
		if !json.Valid(data) {
			s.log.WarnContext(ctx, "skipping malformed document", "key", k)
			continue
		}
		out[k] = json.RawMessage(data)
	}
	return out, nil
}

// readAs decodes the document under key. Absence yields def with no error;
// malformed JSON yields a *decodeError.
func readAs[T any](ctx context.Context, s *Store, key domain.Key, def T) (T, error) {
	data, err := s.backend.Get(ctx, string(key))
	if errors.Is(err, ErrKeyNotFound) {
		return def, nil
	}
	if err != nil {
		return def, err
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return def, &decodeError{key: key, err: err}
	}
	return v, nil
}

// readTolerant is readAs with malformed JSON treated as absent.
// Backend errors are still returned.
func readTolerant[T any](ctx context.Context, s *Store, key domain.Key, def T) (T, error) {
	v, err := readAs(ctx, s, key, def)
	var decErr *decodeError
	if errors.As(err, &decErr) {
		s.log.WarnContext(ctx, "malformed document replaced by default", "key", string(key), "error", err)
		return def, nil
	}
	return v, err
}

// decodeError marks a document that exists but is not valid JSON for its type.
type decodeError struct {
	key domain.Key
	err error
}

func (e *decodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.key, e.err)
}

func (e *decodeError) Unwrap() error { return e.err }

func (s *Store) notify(key domain.Key) {
	s.obsMu.RLock()
	obs := make([]func(domain.Key), len(s.observers))
	copy(obs, s.observers)
	s.obsMu.RUnlock()

	for _, fn := range obs {
		fn(key)
	}
}
