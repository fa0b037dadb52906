// Package repo contains all data access logic for the shared data service.
// Each resource has its own file with an interface and a store-backed
// implementation. No business logic lives here, only collection document
// reads, read-modify-writes and id/timestamp assignment.
package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/crimsoncollab/backend/internal/domain"
	"github.com/pkordes/crimsoncollab/backend/internal/store"
)

// collection is a list-shaped document whose records carry a string id.
// Every write goes through store.Update so concurrent appends are not lost.
type collection[T any] struct {
	store *store.Store
	key   domain.Key
	id    func(*T) *string
	stamp func(*T, time.Time) // sets CreatedAt when zero; may be nil
	now   func() time.Time
}

func newCollection[T any](s *store.Store, key domain.Key, id func(*T) *string, stamp func(*T, time.Time)) collection[T] {
	return collection[T]{store: s, key: key, id: id, stamp: stamp, now: func() time.Time { return time.Now().UTC() }}
}

// all returns every record in insertion order. Never nil.
func (c collection[T]) all(ctx context.Context) ([]T, error) {
	if !c.store.Available() {
		return []T{}, domain.ErrUnavailable
	}
	recs := store.Load(ctx, c.store, c.key, []T{})
	if recs == nil {
		recs = []T{}
	}
	return recs, nil
}

// filter returns the records for which keep reports true, in insertion order.
func (c collection[T]) filter(ctx context.Context, keep func(T) bool) ([]T, error) {
	recs, err := c.all(ctx)
	out := []T{}
	for _, r := range recs {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out, err
}

// find returns the record with the given id or domain.ErrNotFound.
func (c collection[T]) find(ctx context.Context, id string) (T, error) {
	var zero T
	recs, err := c.all(ctx)
	if err != nil {
		return zero, err
	}
	if i := c.indexOf(recs, id); i >= 0 {
		return recs[i], nil
	}
	return zero, domain.ErrNotFound
}

// insert appends rec, assigning a UUID when its id is empty and stamping
// CreatedAt. A record whose id already exists is rejected with domain.ErrConflict.
func (c collection[T]) insert(ctx context.Context, rec T) (T, error) {
	if id := c.id(&rec); *id == "" {
		*id = uuid.NewString()
	}
	if c.stamp != nil {
		c.stamp(&rec, c.now())
	}

	_, err := store.Update(ctx, c.store, c.key, []T{}, func(recs []T) ([]T, error) {
		if c.indexOf(recs, *c.id(&rec)) >= 0 {
			return nil, fmt.Errorf("%w: id %q already exists", domain.ErrConflict, *c.id(&rec))
		}
		return append(recs, rec), nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return rec, nil
}

// modify applies fn to the record with the given id and saves the result in
// place. The record's id cannot be changed by fn.
func (c collection[T]) modify(ctx context.Context, id string, fn func(T) (T, error)) (T, error) {
	var out T
	_, err := store.Update(ctx, c.store, c.key, []T{}, func(recs []T) ([]T, error) {
		i := c.indexOf(recs, id)
		if i < 0 {
			return nil, domain.ErrNotFound
		}
		next, err := fn(recs[i])
		if err != nil {
			return nil, err
		}
		*c.id(&next) = id
		recs[i] = next
		out = next
		return recs, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// upsert replaces the record with rec's id, or appends rec when absent.
// rec must carry an id.
func (c collection[T]) upsert(ctx context.Context, rec T) (T, error) {
	if *c.id(&rec) == "" {
		var zero T
		return zero, fmt.Errorf("%w: id is required", domain.ErrValidation)
	}
	if c.stamp != nil {
		c.stamp(&rec, c.now())
	}
	_, err := store.Update(ctx, c.store, c.key, []T{}, func(recs []T) ([]T, error) {
		if i := c.indexOf(recs, *c.id(&rec)); i >= 0 {
			recs[i] = rec
			return recs, nil
		}
		return append(recs, rec), nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return rec, nil
}

// merge replaces or appends the record with the given id using fn, which
// sees the stored record (and whether one exists) under the same lock as
// the write.
func (c collection[T]) merge(ctx context.Context, id string, fn func(prev T, exists bool) (T, error)) (T, error) {
	var out T
	if id == "" {
		return out, fmt.Errorf("%w: id is required", domain.ErrValidation)
	}
	_, err := store.Update(ctx, c.store, c.key, []T{}, func(recs []T) ([]T, error) {
		var prev T
		i := c.indexOf(recs, id)
		if i >= 0 {
			prev = recs[i]
		}
		next, err := fn(prev, i >= 0)
		if err != nil {
			return nil, err
		}
		*c.id(&next) = id
		out = next
		if i >= 0 {
			recs[i] = next
			return recs, nil
		}
		return append(recs, next), nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

func (c collection[T]) indexOf(recs []T, id string) int {
	for i := range recs {
		if *c.id(&recs[i]) == id {
			return i
		}
	}
	return -1
}
