package domain

import (
	"encoding/json"
	"time"
)

// SyncStatus constants
const (
	SyncPending   = "pending"
	SyncProcessed = "processed"
)

// Sync actions recorded on a SyncOperation.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Entity types carried by sync operations.
const (
	EntityProfile = "profile"
	// EntityCurrentProfile is the signed-in user's own profile document,
	// distinct from their entry in the shared profile list.
	EntityCurrentProfile = "current_profile"
	EntityTrip           = "trip"
	EntityGroup          = "group"
	EntityMessage        = "message"
	EntityGroupMessage   = "group_message"
	EntityInvite         = "invite"
)

// SyncOutcome is the remote's verdict on a pushed operation.
type SyncOutcome string

const (
	OutcomeApplied    SyncOutcome = "applied"
	OutcomeDuplicate  SyncOutcome = "duplicate"
	OutcomeSuperseded SyncOutcome = "superseded"
	// OutcomeRejected marks an operation the remote refused as invalid.
	// It is final: the operation is never pushed again.
	OutcomeRejected SyncOutcome = "rejected"
)

// SyncOperation is a local write waiting to be reconciled with a remote.
type SyncOperation struct {
	ID          string          `json:"id"`
	EntityType  string          `json:"entity_type"`
	Action      string          `json:"action"`
	EntityID    string          `json:"entity_id"`
	Payload     json.RawMessage `json:"payload,omitempty"`
	Timestamp   time.Time       `json:"timestamp"`
	Status      string          `json:"status"`
	Attempts    int             `json:"attempts"`
	LastError   string          `json:"last_error,omitempty"`
	ProcessedAt *time.Time      `json:"processed_at,omitempty"`
	Outcome     SyncOutcome     `json:"outcome,omitempty"`
}
