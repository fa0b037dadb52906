package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/crimsoncollab/backend/internal/domain"
	"github.com/pkordes/crimsoncollab/backend/internal/handler"
	"github.com/pkordes/crimsoncollab/backend/internal/syncq"
)

func TestGetShared(t *testing.T) {
	svc := &mockSharedServicer{
		snapshot: func(_ context.Context) (domain.SharedSnapshot, error) {
			return domain.SharedSnapshot{
				Trips:     []domain.Trip{{ID: "t1", Destination: "Paris"}},
				SyncQueue: []domain.SyncOperation{},
			}, nil
		},
	}

	rec := do(newHTTPHandler(handler.Deps{Shared: svc}), http.MethodGet, "/api/shared", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	snap := decode[domain.SharedSnapshot](t, rec)
	require.Len(t, snap.Trips, 1)
	assert.Equal(t, "Paris", snap.Trips[0].Destination)
}

func TestReceiveSyncOperation_IdempotencyKey(t *testing.T) {
	var got domain.SyncOperation
	ledger := &mockSyncReceiver{
		receive: func(_ context.Context, op domain.SyncOperation) (domain.SyncOutcome, error) {
			got = op
			return domain.OutcomeApplied, nil
		},
	}
	h := newHTTPHandler(handler.Deps{Ledger: ledger})

	req := httptest.NewRequest(http.MethodPost, "/api/sync", jsonBody(t, map[string]any{
		"entity_type": domain.EntityTrip,
		"action":      domain.ActionCreate,
		"entity_id":   "t1",
		"payload":     map[string]string{"id": "t1", "destination": "Paris"},
	}))
	req.Header.Set("Idempotency-Key", "op-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	receipt := decode[handler.SyncReceipt](t, rec)
	assert.Equal(t, "op-42", receipt.OperationID)
	assert.Equal(t, domain.OutcomeApplied, receipt.Outcome)
	assert.Equal(t, "op-42", got.ID)
	assert.JSONEq(t, `{"id":"t1","destination":"Paris"}`, string(got.Payload))
}

func TestReceiveSyncOperation_422(t *testing.T) {
	ledger := &mockSyncReceiver{
		receive: func(_ context.Context, _ domain.SyncOperation) (domain.SyncOutcome, error) {
			return "", fmt.Errorf("syncq.Ledger.Receive: %w: operation id is required", domain.ErrValidation)
		},
	}

	rec := do(newHTTPHandler(handler.Deps{Ledger: ledger}), http.MethodPost, "/api/sync", jsonBody(t, map[string]any{}))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "operation id is required", decodeError(t, rec).Error.Message)
}

func TestSyncQueue_ListAndDrain(t *testing.T) {
	q := &mockSyncQueuer{
		all: func(_ context.Context) ([]domain.SyncOperation, error) {
			return []domain.SyncOperation{{ID: "op1", Status: domain.SyncPending}}, nil
		},
		process: func(_ context.Context) (syncq.DrainResult, error) {
			return syncq.DrainResult{Processed: 1}, nil
		},
	}
	h := newHTTPHandler(handler.Deps{Queue: q})

	rec := do(h, http.MethodGet, "/api/sync/queue", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[listBody[domain.SyncOperation]](t, rec).Data, 1)

	rec = do(h, http.MethodPost, "/api/sync/drain", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[syncq.DrainResult](t, rec).Processed)
}

func TestDrainSyncQueue_503_NoRemote(t *testing.T) {
	q := &mockSyncQueuer{
		process: func(_ context.Context) (syncq.DrainResult, error) {
			return syncq.DrainResult{}, fmt.Errorf("syncq.Queue.Process: %w", domain.ErrUnavailable)
		},
	}

	rec := do(newHTTPHandler(handler.Deps{Queue: q}), http.MethodPost, "/api/sync/drain", nil)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
