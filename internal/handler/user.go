package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/crimsoncollab/backend/internal/domain"
)

// ListUsers handles GET /api/users.
func (s *Server) ListUsers(w http.ResponseWriter, r *http.Request) {
	profiles, err := s.Profiles.ListProfiles(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list(profiles))
}

// CreateUser handles POST /api/users.
func (s *Server) CreateUser(w http.ResponseWriter, r *http.Request) {
	var p domain.UserProfile
	if !readJSON(w, r, &p) {
		return
	}
	created, err := s.Profiles.SaveProfile(r.Context(), p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// GetUser handles GET /api/users/{id}.
func (s *Server) GetUser(w http.ResponseWriter, r *http.Request) {
	p, err := s.Profiles.GetProfile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// UpdateUser handles PUT /api/users/{id}. The path id wins over any id in the body.
func (s *Server) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var p domain.UserProfile
	if !readJSON(w, r, &p) {
		return
	}
	p.ID = chi.URLParam(r, "id")
	updated, err := s.Profiles.SaveProfile(r.Context(), p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// ListUserGroups handles GET /api/users/{id}/groups.
func (s *Server) ListUserGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.Groups.ListByUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list(groups))
}

// ListUserInvites handles GET /api/users/{email}/invites.
func (s *Server) ListUserInvites(w http.ResponseWriter, r *http.Request) {
	invites, err := s.Invites.ListByEmail(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list(invites))
}

// GetProfile handles GET /api/profile. With nothing stored it returns the
// default profile rather than 404.
func (s *Server) GetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.Profiles.Current(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// UpdateProfile handles PATCH /api/profile. Only the fields present in the
// body change.
func (s *Server) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var u domain.ProfileUpdate
	if !readJSON(w, r, &u) {
		return
	}
	p, err := s.Profiles.Update(r.Context(), u)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
