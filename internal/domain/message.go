package domain

import "time"

// MessageTypeUser and MessageTypeSystem are the message tags the pages use.
const (
	MessageTypeUser   = "user"
	MessageTypeSystem = "system"
)

// Message is a chat line attached to a trip or a group. ParentID is not
// checked against the parent collection.
type Message struct {
	ID        string    `json:"id"`
	ParentID  string    `json:"parent_id"`
	Text      string    `json:"text"`
	Type      string    `json:"type"`
	AuthorID  string    `json:"author_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
