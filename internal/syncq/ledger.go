package syncq

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pkordes/crimsoncollab/backend/internal/domain"
	"github.com/pkordes/crimsoncollab/backend/internal/store"
)

// Applier writes an accepted operation into local collections.
// *service.SharedData satisfies it.
type Applier interface {
	ApplyRemote(ctx context.Context, op domain.SyncOperation) error
}

// ledgerDoc is the persisted receiving-side state.
type ledgerDoc struct {
	// Seen maps each op id received within Retention to the time it was
	// received. Older ids are dropped; a late redelivery of one of them is
	// still stopped by Latest.
	Seen map[string]time.Time `json:"seen"`
	// Latest maps "entityType/entityID" to the newest op applied to it.
	Latest map[string]ledgerEntry `json:"latest"`
}

type ledgerEntry struct {
	OpID      string    `json:"op_id"`
	Timestamp time.Time `json:"timestamp"`
}

// newer reports whether op should win over e: later timestamp, ties broken
// by the larger op id.
func (e ledgerEntry) newer(op domain.SyncOperation) bool {
	if !op.Timestamp.Equal(e.Timestamp) {
		return op.Timestamp.After(e.Timestamp)
	}
	return op.ID > e.OpID
}

// Ledger is the receiving side of sync. It makes delivery idempotent and
// resolves conflicting writes to the same entity by last-write-wins on the
// operation timestamp.
type Ledger struct {
	store   *store.Store
	applier Applier
	now     func() time.Time

	mu sync.Mutex
}

// NewLedger returns a Ledger that records into s and applies through a.
func NewLedger(s *store.Store, a Applier) *Ledger {
	return &Ledger{store: s, applier: a, now: time.Now}
}

// Receive handles one incoming operation:
//   - an op id already seen returns OutcomeDuplicate with no effect;
//   - an op older than the last one applied to the same entity returns
//     OutcomeSuperseded with no effect;
//   - otherwise the op is applied and recorded, returning OutcomeApplied.
//
// If applying fails the op is not recorded, so a redelivery is retried.
func (l *Ledger) Receive(ctx context.Context, op domain.SyncOperation) (domain.SyncOutcome, error) {
	if op.ID == "" || op.EntityType == "" {
		return "", fmt.Errorf("%w: id and entity_type are required", domain.ErrValidation)
	}
	if !l.store.Available() {
		return "", fmt.Errorf("syncq.Ledger.Receive: %w", domain.ErrUnavailable)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	doc := store.Load(ctx, l.store, domain.KeySyncLedger, ledgerDoc{})
	if _, ok := doc.Seen[op.ID]; ok {
		return domain.OutcomeDuplicate, nil
	}

	entity := op.EntityType + "/" + op.EntityID
	outcome := domain.OutcomeApplied
	if last, ok := doc.Latest[entity]; ok && op.EntityID != "" && !last.newer(op) {
		outcome = domain.OutcomeSuperseded
	} else if err := l.applier.ApplyRemote(ctx, op); err != nil {
		return "", fmt.Errorf("syncq.Ledger.Receive: %w", err)
	}

	_, err := store.Update(ctx, l.store, domain.KeySyncLedger, ledgerDoc{}, func(d ledgerDoc) (ledgerDoc, error) {
		if d.Seen == nil {
			d.Seen = map[string]time.Time{}
		}
		if d.Latest == nil {
			d.Latest = map[string]ledgerEntry{}
		}
		now := l.now().UTC()
		cutoff := now.Add(-Retention)
		for id, at := range d.Seen {
			if at.Before(cutoff) {
				delete(d.Seen, id)
			}
		}
		d.Seen[op.ID] = now
		if outcome == domain.OutcomeApplied && op.EntityID != "" {
			d.Latest[entity] = ledgerEntry{OpID: op.ID, Timestamp: op.Timestamp}
		}
		return d, nil
	})
	if err != nil {
		return "", fmt.Errorf("syncq.Ledger.Receive: record: %w", err)
	}
	return outcome, nil
}
