package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/crimsoncollab/backend/internal/domain"
)

// CreateGroupRequest is the body of POST /api/groups.
type CreateGroupRequest struct {
	Name           string              `json:"name"`
	Description    string              `json:"description,omitempty"`
	FocusArea      string              `json:"focus_area,omitempty"`
	SizePreference string              `json:"size_preference,omitempty"`
	RequiredSkills []string            `json:"required_skills,omitempty"`
	CreatorID      string              `json:"creator_id,omitempty"`
	Members        []string            `json:"members,omitempty"`
	Date           *openapi_types.Date `json:"date,omitempty"`
	Time           string              `json:"time,omitempty"`
}

// CreateInviteRequest is the body of POST /api/groups/{id}/invites.
// The email is format-checked while decoding.
type CreateInviteRequest struct {
	InviteeEmail openapi_types.Email `json:"invitee_email"`
	InviterID    string              `json:"inviter_id,omitempty"`
}

// RespondToInviteRequest is the body of PUT /api/invites/{id}.
type RespondToInviteRequest struct {
	Status domain.InviteStatus `json:"status"`
}

// CreateGroup handles POST /api/groups.
func (s *Server) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var body CreateGroupRequest
	if !readJSON(w, r, &body) {
		return
	}
	created, err := s.Groups.Create(r.Context(), domain.Group{
		Name:           body.Name,
		Description:    body.Description,
		FocusArea:      body.FocusArea,
		SizePreference: body.SizePreference,
		RequiredSkills: body.RequiredSkills,
		CreatorID:      body.CreatorID,
		Members:        body.Members,
		Date:           formatDate(body.Date),
		Time:           body.Time,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// ListGroups handles GET /api/groups.
func (s *Server) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.Groups.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list(groups))
}

// GetGroup handles GET /api/groups/{id}.
func (s *Server) GetGroup(w http.ResponseWriter, r *http.Request) {
	g, err := s.Groups.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// JoinGroup handles POST /api/groups/{id}/join.
func (s *Server) JoinGroup(w http.ResponseWriter, r *http.Request) {
	var body MembershipRequest
	if !readJSON(w, r, &body) {
		return
	}
	g, err := s.Groups.Join(r.Context(), chi.URLParam(r, "id"), body.UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// LeaveGroup handles DELETE /api/groups/{id}/leave?user_id=.
func (s *Server) LeaveGroup(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		badRequest(w, "user_id query parameter is required")
		return
	}
	g, err := s.Groups.Leave(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// SendGroupMessage handles POST /api/groups/{id}/messages.
func (s *Server) SendGroupMessage(w http.ResponseWriter, r *http.Request) {
	var msg domain.Message
	if !readJSON(w, r, &msg) {
		return
	}
	sent, err := s.Messages.SendGroupMessage(r.Context(), chi.URLParam(r, "id"), msg)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sent)
}

// ListGroupMessages handles GET /api/groups/{id}/messages.
// Supports ?limit= and ?offset= (defaults: limit=50, offset=0, max limit=100).
func (s *Server) ListGroupMessages(w http.ResponseWriter, r *http.Request) {
	p, ok := pageParams(w, r)
	if !ok {
		return
	}
	msgs, err := s.Messages.ListGroupMessages(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list(msgs))
}

// CreateInvite handles POST /api/groups/{id}/invites.
func (s *Server) CreateInvite(w http.ResponseWriter, r *http.Request) {
	var body CreateInviteRequest
	if !readJSON(w, r, &body) {
		return
	}
	inv, err := s.Invites.Create(r.Context(), domain.Invite{
		GroupID:      chi.URLParam(r, "id"),
		InviterID:    body.InviterID,
		InviteeEmail: string(body.InviteeEmail),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, inv)
}

// ListGroupInvites handles GET /api/groups/{id}/invites.
func (s *Server) ListGroupInvites(w http.ResponseWriter, r *http.Request) {
	invites, err := s.Invites.ListByGroup(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list(invites))
}

// RespondToInvite handles PUT /api/invites/{id}.
func (s *Server) RespondToInvite(w http.ResponseWriter, r *http.Request) {
	var body RespondToInviteRequest
	if !readJSON(w, r, &body) {
		return
	}
	inv, err := s.Invites.Respond(r.Context(), chi.URLParam(r, "id"), body.Status)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}
