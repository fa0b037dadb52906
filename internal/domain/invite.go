package domain

import "time"

// InviteStatus is the lifecycle state of an Invite.
type InviteStatus string

const (
	InvitePending  InviteStatus = "pending"
	InviteAccepted InviteStatus = "accepted"
	InviteDeclined InviteStatus = "declined"
)

// Valid reports whether s is one of the known statuses.
func (s InviteStatus) Valid() bool {
	switch s {
	case InvitePending, InviteAccepted, InviteDeclined:
		return true
	}
	return false
}

// Invite asks InviteeEmail to join GroupID. Only pending invites can change status.
type Invite struct {
	ID           string       `json:"id"`
	GroupID      string       `json:"group_id"`
	InviterID    string       `json:"inviter_id,omitempty"`
	InviteeEmail string       `json:"invitee_email"`
	Status       InviteStatus `json:"status"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}
