package syncq_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/crimsoncollab/backend/internal/domain"
	"github.com/pkordes/crimsoncollab/backend/internal/syncq"
	"github.com/pkordes/crimsoncollab/backend/testutil"
)

// mockRemote is a hand-written test double for syncq.Remote. push decides the
// result; every call is recorded in order.
type mockRemote struct {
	mu    sync.Mutex
	push  func(op domain.SyncOperation) (domain.SyncOutcome, error)
	calls []domain.SyncOperation
}

func (m *mockRemote) Push(_ context.Context, op domain.SyncOperation) (domain.SyncOutcome, error) {
	m.mu.Lock()
	m.calls = append(m.calls, op)
	m.mu.Unlock()
	if m.push == nil {
		return domain.OutcomeApplied, nil
	}
	return m.push(op)
}

func (m *mockRemote) pushed() []domain.SyncOperation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.SyncOperation(nil), m.calls...)
}

var _ syncq.Remote = (*mockRemote)(nil)

// ---- helpers ---------------------------------------------------------------

func newQueue(t *testing.T, remote syncq.Remote) *syncq.Queue {
	t.Helper()
	s, _ := testutil.NewStore(t)
	return syncq.NewQueue(s, remote, testutil.DiscardLogger())
}

func enqueue(t *testing.T, q *syncq.Queue, entityType, entityID string) domain.SyncOperation {
	t.Helper()
	op, err := q.Enqueue(context.Background(), entityType, domain.ActionCreate, entityID, map[string]string{"id": entityID})
	require.NoError(t, err)
	return op
}

func ids(ops []domain.SyncOperation) []string {
	out := make([]string, len(ops))
	for i, op := range ops {
		out[i] = op.EntityID
	}
	return out
}

// ---- Enqueue tests ---------------------------------------------------------

func TestQueue_Enqueue(t *testing.T) {
	q := newQueue(t, nil)

	a := enqueue(t, q, domain.EntityTrip, "t1")
	b := enqueue(t, q, domain.EntityTrip, "t2")

	assert.NotEmpty(t, a.ID)
	assert.Equal(t, domain.SyncPending, a.Status)
	assert.JSONEq(t, `{"id":"t1"}`, string(a.Payload))
	assert.True(t, b.Timestamp.After(a.Timestamp), "timestamps strictly increase")

	pending, err := q.Pending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "t2"}, ids(pending))
}

func TestQueue_Enqueue_BadPayload(t *testing.T) {
	q := newQueue(t, nil)

	_, err := q.Enqueue(context.Background(), domain.EntityTrip, domain.ActionCreate, "t1", make(chan int))

	require.Error(t, err)
}

func TestQueue_NilStore(t *testing.T) {
	q := syncq.NewQueue(nil, &mockRemote{}, testutil.DiscardLogger())

	_, err := q.Enqueue(context.Background(), domain.EntityTrip, domain.ActionCreate, "t1", nil)
	require.ErrorIs(t, err, domain.ErrUnavailable)

	_, err = q.Process(context.Background())
	require.ErrorIs(t, err, domain.ErrUnavailable)
}

// ---- Process tests ---------------------------------------------------------

func TestQueue_Process_NoRemote(t *testing.T) {
	q := newQueue(t, nil)
	enqueue(t, q, domain.EntityTrip, "t1")

	_, err := q.Process(context.Background())

	require.ErrorIs(t, err, domain.ErrUnavailable)
	assert.False(t, q.HasRemote())
	pending, err := q.Pending(context.Background())
	require.NoError(t, err)
	assert.Len(t, pending, 1, "ops stay pending without a remote")
}

func TestQueue_Process_FIFO(t *testing.T) {
	remote := &mockRemote{}
	q := newQueue(t, remote)
	enqueue(t, q, domain.EntityTrip, "t1")
	enqueue(t, q, domain.EntityGroup, "g1")
	enqueue(t, q, domain.EntityTrip, "t2")

	res, err := q.Process(context.Background())

	require.NoError(t, err)
	assert.Equal(t, syncq.DrainResult{Processed: 3}, res)
	assert.Equal(t, []string{"t1", "g1", "t2"}, ids(remote.pushed()))

	all, err := q.All(context.Background())
	require.NoError(t, err)
	for _, op := range all {
		assert.Equal(t, domain.SyncProcessed, op.Status)
		assert.Equal(t, domain.OutcomeApplied, op.Outcome)
		assert.Equal(t, 1, op.Attempts)
		assert.NotNil(t, op.ProcessedAt)
	}
}

func TestQueue_Process_Idempotent(t *testing.T) {
	remote := &mockRemote{}
	q := newQueue(t, remote)
	enqueue(t, q, domain.EntityTrip, "t1")

	_, err := q.Process(context.Background())
	require.NoError(t, err)
	res, err := q.Process(context.Background())
	require.NoError(t, err)

	assert.Equal(t, syncq.DrainResult{}, res)
	assert.Len(t, remote.pushed(), 1, "a second drain pushes nothing")
}

func TestQueue_Process_FailureBlocksOnlyItsType(t *testing.T) {
	failing := true
	remote := &mockRemote{push: func(op domain.SyncOperation) (domain.SyncOutcome, error) {
		if failing && op.EntityID == "t1" {
			return "", errors.New("remote down")
		}
		return domain.OutcomeApplied, nil
	}}
	q := newQueue(t, remote)
	enqueue(t, q, domain.EntityTrip, "t1")
	enqueue(t, q, domain.EntityTrip, "t2")
	enqueue(t, q, domain.EntityGroup, "g1")

	res, err := q.Process(context.Background())
	require.NoError(t, err)
	assert.Equal(t, syncq.DrainResult{Processed: 1, Failed: 1, Deferred: 1}, res)
	assert.Equal(t, []string{"t1", "g1"}, ids(remote.pushed()), "t2 must not overtake t1")

	pending, err := q.Pending(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"t1", "t2"}, ids(pending))
	assert.Equal(t, 1, pending[0].Attempts)
	assert.Equal(t, "remote down", pending[0].LastError)
	assert.Equal(t, 0, pending[1].Attempts)

	// the remote recovers; the retry keeps order
	failing = false
	res, err = q.Process(context.Background())
	require.NoError(t, err)
	assert.Equal(t, syncq.DrainResult{Processed: 2}, res)
	assert.Equal(t, []string{"t1", "g1", "t1", "t2"}, ids(remote.pushed()))

	all, err := q.All(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, all[0].Attempts)
	assert.Empty(t, all[0].LastError)
}

func TestQueue_Process_RejectedIsFinalAndDoesNotBlock(t *testing.T) {
	remote := &mockRemote{push: func(op domain.SyncOperation) (domain.SyncOutcome, error) {
		if op.EntityID == "t1" {
			return "", fmt.Errorf("remote: %w: id is required", domain.ErrValidation)
		}
		return domain.OutcomeApplied, nil
	}}
	q := newQueue(t, remote)
	enqueue(t, q, domain.EntityTrip, "t1")
	enqueue(t, q, domain.EntityTrip, "t2")

	res, err := q.Process(context.Background())
	require.NoError(t, err)
	assert.Equal(t, syncq.DrainResult{Processed: 1, Rejected: 1}, res)
	assert.Equal(t, []string{"t1", "t2"}, ids(remote.pushed()))

	all, err := q.All(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.SyncProcessed, all[0].Status)
	assert.Equal(t, domain.OutcomeRejected, all[0].Outcome)
	assert.Contains(t, all[0].LastError, "id is required")
	assert.NotNil(t, all[0].ProcessedAt)

	res, err = q.Process(context.Background())
	require.NoError(t, err)
	assert.Equal(t, syncq.DrainResult{}, res, "a rejected op is never pushed again")
}

func TestQueue_Process_ConcurrentDrainsPushOnce(t *testing.T) {
	remote := &mockRemote{push: func(domain.SyncOperation) (domain.SyncOutcome, error) {
		time.Sleep(time.Millisecond)
		return domain.OutcomeApplied, nil
	}}
	q := newQueue(t, remote)
	for _, id := range []string{"a", "b", "c", "d"} {
		enqueue(t, q, domain.EntityMessage, id)
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := q.Process(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Len(t, remote.pushed(), 4)
}

func TestQueue_Process_KeepsOpsEnqueuedMidDrain(t *testing.T) {
	var q *syncq.Queue
	remote := &mockRemote{}
	remote.push = func(op domain.SyncOperation) (domain.SyncOutcome, error) {
		if op.EntityID == "t1" {
			_, err := q.Enqueue(context.Background(), domain.EntityTrip, domain.ActionUpdate, "t1", nil)
			require.NoError(t, err)
		}
		return domain.OutcomeApplied, nil
	}
	q = newQueue(t, remote)
	enqueue(t, q, domain.EntityTrip, "t1")

	_, err := q.Process(context.Background())
	require.NoError(t, err)

	pending, err := q.Pending(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, domain.ActionUpdate, pending[0].Action)
}

// ---- Prune tests -----------------------------------------------------------

func TestQueue_Prune(t *testing.T) {
	remote := &mockRemote{push: func(op domain.SyncOperation) (domain.SyncOutcome, error) {
		if op.EntityType == domain.EntityGroup {
			return "", errors.New("nope")
		}
		return domain.OutcomeApplied, nil
	}}
	q := newQueue(t, remote)
	enqueue(t, q, domain.EntityTrip, "t1")
	enqueue(t, q, domain.EntityGroup, "g1")
	_, err := q.Process(context.Background())
	require.NoError(t, err)

	n, err := q.Prune(context.Background(), time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, n, "recent ops are kept")

	n, err = q.Prune(context.Background(), time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	all, err := q.All(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"g1"}, ids(all), "pending ops are never pruned")
}
