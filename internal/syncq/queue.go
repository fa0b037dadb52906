// Package syncq records local writes as sync operations and reconciles them
// with a remote peer. Queue is the sending side; Ledger is the receiving side.
//
// Delivery contract:
//   - operations of one entity type are pushed in the order they were enqueued;
//   - the first failure of an entity type stops that type for the rest of the
//     drain, so later operations never overtake it;
//   - failed operations stay pending and are retried on the next drain;
//   - an operation the remote rejects as invalid (domain.ErrValidation) will
//     never succeed, so it is marked processed with OutcomeRejected and does
//     not block its type;
//   - processed operations are never pushed again.
package syncq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/crimsoncollab/backend/internal/domain"
	"github.com/pkordes/crimsoncollab/backend/internal/store"
)

// Remote delivers one operation to the peer and reports its verdict.
type Remote interface {
	Push(ctx context.Context, op domain.SyncOperation) (domain.SyncOutcome, error)
}

// DrainResult summarizes one call to Process.
type DrainResult struct {
	Processed int `json:"processed"`
	Rejected  int `json:"rejected"`
	Failed    int `json:"failed"`
	Deferred  int `json:"deferred"`
}

// Queue is the persistent list of sync operations.
type Queue struct {
	store  *store.Store
	remote Remote
	log    *slog.Logger
	now    func() time.Time

	drainMu sync.Mutex
}

// NewQueue returns a Queue over s. remote may be nil; Process then reports
// domain.ErrUnavailable and operations stay pending.
func NewQueue(s *store.Store, remote Remote, log *slog.Logger) *Queue {
	return &Queue{store: s, remote: remote, log: log, now: time.Now}
}

// HasRemote reports whether a remote is configured.
func (q *Queue) HasRemote() bool { return q.remote != nil }

// Enqueue persists a pending operation. payload is encoded as JSON.
// Timestamps strictly increase across the queue so that last-write-wins on
// the receiving side orders operations from this process correctly.
func (q *Queue) Enqueue(ctx context.Context, entityType, action, entityID string, payload any) (domain.SyncOperation, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return domain.SyncOperation{}, fmt.Errorf("syncq.Queue.Enqueue: encode payload: %w", err)
	}

	op := domain.SyncOperation{
		ID:         uuid.NewString(),
		EntityType: entityType,
		Action:     action,
		EntityID:   entityID,
		Payload:    raw,
		Status:     domain.SyncPending,
	}
	_, err = store.Update(ctx, q.store, domain.KeySyncQueue, []domain.SyncOperation{},
		func(ops []domain.SyncOperation) ([]domain.SyncOperation, error) {
			ts := q.now().UTC()
			if n := len(ops); n > 0 && !ts.After(ops[n-1].Timestamp) {
				ts = ops[n-1].Timestamp.Add(time.Microsecond)
			}
			op.Timestamp = ts
			return append(ops, op), nil
		})
	if err != nil {
		return domain.SyncOperation{}, fmt.Errorf("syncq.Queue.Enqueue: %w", err)
	}
	return op, nil
}

// All returns every operation in enqueue order.
func (q *Queue) All(ctx context.Context) ([]domain.SyncOperation, error) {
	if !q.store.Available() {
		return []domain.SyncOperation{}, fmt.Errorf("syncq.Queue.All: %w", domain.ErrUnavailable)
	}
	return store.Load(ctx, q.store, domain.KeySyncQueue, []domain.SyncOperation{}), nil
}

// Pending returns the operations not yet processed, in enqueue order.
func (q *Queue) Pending(ctx context.Context) ([]domain.SyncOperation, error) {
	ops, err := q.All(ctx)
	if err != nil {
		return ops, fmt.Errorf("syncq.Queue.Pending: %w", err)
	}
	pending := []domain.SyncOperation{}
	for _, op := range ops {
		if op.Status != domain.SyncProcessed {
			pending = append(pending, op)
		}
	}
	return pending, nil
}

// Prune drops processed operations that finished before cutoff and returns
// how many were removed. Pending operations are never pruned.
func (q *Queue) Prune(ctx context.Context, cutoff time.Time) (int, error) {
	removed := 0
	_, err := store.Update(ctx, q.store, domain.KeySyncQueue, []domain.SyncOperation{},
		func(ops []domain.SyncOperation) ([]domain.SyncOperation, error) {
			kept := ops[:0]
			for _, op := range ops {
				if op.Status == domain.SyncProcessed && op.ProcessedAt != nil && op.ProcessedAt.Before(cutoff) {
					removed++
					continue
				}
				kept = append(kept, op)
			}
			return kept, nil
		})
	if err != nil {
		return 0, fmt.Errorf("syncq.Queue.Prune: %w", err)
	}
	return removed, nil
}

// Process drains the queue once. Concurrent calls are serialized. Remote
// calls happen outside the store lock; results are merged back afterwards,
// so operations enqueued during a drain are kept and wait for the next one.
func (q *Queue) Process(ctx context.Context) (DrainResult, error) {
	if q.remote == nil {
		return DrainResult{}, fmt.Errorf("syncq.Queue.Process: no remote configured: %w", domain.ErrUnavailable)
	}

	q.drainMu.Lock()
	defer q.drainMu.Unlock()

	pending, err := q.Pending(ctx)
	if err != nil {
		return DrainResult{}, fmt.Errorf("syncq.Queue.Process: %w", err)
	}

	var res DrainResult
	results := make(map[string]pushResult, len(pending))
	blocked := make(map[string]bool)
	for _, op := range pending {
		if blocked[op.EntityType] || ctx.Err() != nil {
			res.Deferred++
			continue
		}
		outcome, err := q.remote.Push(ctx, op)
		switch {
		case errors.Is(err, domain.ErrValidation):
			res.Rejected++
			q.log.WarnContext(ctx, "sync push rejected",
				"op_id", op.ID, "entity_type", op.EntityType, "entity_id", op.EntityID, "error", err)
		case err != nil:
			blocked[op.EntityType] = true
			res.Failed++
			q.log.WarnContext(ctx, "sync push failed",
				"op_id", op.ID, "entity_type", op.EntityType, "attempt", op.Attempts+1, "error", err)
		default:
			res.Processed++
		}
		results[op.ID] = pushResult{outcome: outcome, err: err, at: q.now().UTC()}
	}

	if len(results) == 0 {
		return res, nil
	}

	_, err = store.Update(ctx, q.store, domain.KeySyncQueue, []domain.SyncOperation{},
		func(ops []domain.SyncOperation) ([]domain.SyncOperation, error) {
			for i := range ops {
				r, ok := results[ops[i].ID]
				if !ok {
					continue
				}
				ops[i].Attempts++
				rejected := errors.Is(r.err, domain.ErrValidation)
				if r.err != nil && !rejected {
					ops[i].LastError = r.err.Error()
					continue
				}
				at := r.at
				ops[i].Status = domain.SyncProcessed
				ops[i].ProcessedAt = &at
				ops[i].Outcome = r.outcome
				ops[i].LastError = ""
				if rejected {
					ops[i].Outcome = domain.OutcomeRejected
					ops[i].LastError = r.err.Error()
				}
			}
			return ops, nil
		})
	if err != nil {
		return res, fmt.Errorf("syncq.Queue.Process: record results: %w", err)
	}

	q.log.InfoContext(ctx, "sync drain finished",
		"processed", res.Processed, "rejected", res.Rejected, "failed", res.Failed, "deferred", res.Deferred)
	return res, nil
}

type pushResult struct {
	outcome domain.SyncOutcome
	err     error
	at      time.Time
}
