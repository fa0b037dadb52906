// Package domain contains the core data types for the CrimsonCollab shared
// data service. This package has zero external dependencies and is imported
// by every other internal package (store, repo, service, handler).
package domain

import "time"

// Trip is a ride-share trip offered by a student.
// AvailableSeats counts the seats still open; it never exceeds TotalSeats.
type Trip struct {
	ID             string    `json:"id"`
	Destination    string    `json:"destination"`
	Date           string    `json:"date,omitempty"` // "2006-01-02"
	Time           string    `json:"time,omitempty"` // "15:04"
	TotalSeats     int       `json:"total_seats"`
	AvailableSeats int       `json:"available_seats"`
	CostPerPerson  float64   `json:"cost_per_person"`
	TripType       string    `json:"trip_type,omitempty"`
	Description    string    `json:"description,omitempty"`
	CreatorID      string    `json:"creator_id,omitempty"`
	Participants   []string  `json:"participants,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// HasParticipant reports whether userID already holds a seat on the trip.
func (t Trip) HasParticipant(userID string) bool {
	for _, p := range t.Participants {
		if p == userID {
			return true
		}
	}
	return false
}
