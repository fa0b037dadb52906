package domain

import "time"

// Group is a student collaboration group.
type Group struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	FocusArea      string    `json:"focus_area,omitempty"`
	SizePreference string    `json:"size_preference,omitempty"`
	RequiredSkills []string  `json:"required_skills,omitempty"`
	CreatorID      string    `json:"creator_id,omitempty"`
	Members        []string  `json:"members,omitempty"`
	Date           string    `json:"date,omitempty"` // next meeting, "2006-01-02"
	Time           string    `json:"time,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// HasMember reports whether memberID belongs to the group.
func (g Group) HasMember(memberID string) bool {
	for _, m := range g.Members {
		if m == memberID {
			return true
		}
	}
	return false
}

// Collaboration is a one-off working session that can be placed on the
// calendar. It is not stored as a collection of its own.
type Collaboration struct {
	ID           string   `json:"id,omitempty"`
	Title        string   `json:"title"`
	Description  string   `json:"description,omitempty"`
	Date         string   `json:"date,omitempty"`
	Time         string   `json:"time,omitempty"`
	Duration     string   `json:"duration,omitempty"`
	Location     string   `json:"location,omitempty"`
	Participants []string `json:"participants,omitempty"`
}
