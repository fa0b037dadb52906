package handler

import (
	"net/http"

	"github.com/pkordes/crimsoncollab/backend/internal/domain"
)

// SyncReceipt is the body of POST /api/sync.
type SyncReceipt struct {
	OperationID string             `json:"operation_id"`
	Outcome     domain.SyncOutcome `json:"outcome"`
}

// GetShared handles GET /api/shared: every collection in one document.
func (s *Server) GetShared(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Shared.Snapshot(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// ReceiveSyncOperation handles POST /api/sync, the receiving end of another
// instance's drain. The Idempotency-Key header names the operation when the
// body carries no id.
func (s *Server) ReceiveSyncOperation(w http.ResponseWriter, r *http.Request) {
	var op domain.SyncOperation
	if !readJSON(w, r, &op) {
		return
	}
	if op.ID == "" {
		op.ID = r.Header.Get("Idempotency-Key")
	}
	outcome, err := s.Ledger.Receive(r.Context(), op)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SyncReceipt{OperationID: op.ID, Outcome: outcome})
}

// ListSyncQueue handles GET /api/sync/queue.
func (s *Server) ListSyncQueue(w http.ResponseWriter, r *http.Request) {
	ops, err := s.Queue.All(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list(ops))
}

// DrainSyncQueue handles POST /api/sync/drain: one synchronous drain pass.
// Without a configured remote this is a 503.
func (s *Server) DrainSyncQueue(w http.ResponseWriter, r *http.Request) {
	res, err := s.Queue.Process(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
