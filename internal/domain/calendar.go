package domain

import "time"

// CalendarSource names the kind of entity a CalendarEvent was derived from.
type CalendarSource string

const (
	SourceTrip          CalendarSource = "trip"
	SourceGroup         CalendarSource = "group"
	SourceCollaboration CalendarSource = "collaboration"
)

// CalendarEvent is a dashboard schedule item. It is a copy of the source
// entity's fields at sync time, not a live link.
type CalendarEvent struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Date         string         `json:"date"`
	Time         string         `json:"time"`
	Description  string         `json:"description,omitempty"`
	Duration     string         `json:"duration"`
	Location     string         `json:"location"`
	Participants []string       `json:"participants,omitempty"`
	Source       CalendarSource `json:"source"`
	SourceID     string         `json:"source_id,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}
