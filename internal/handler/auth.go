package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/crimsoncollab/backend/internal/domain"
)

// SessionCookie carries the session token after a completed login.
const SessionCookie = "crimsoncollab_session"

// ListAuthProviders handles GET /api/auth/providers.
func (s *Server) ListAuthProviders(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, list(s.Auth.Providers()))
}

// BeginLogin handles GET /api/auth/{provider}/login by redirecting the
// browser to the provider's consent page.
func (s *Server) BeginLogin(w http.ResponseWriter, r *http.Request) {
	target, err := s.Auth.Begin(chi.URLParam(r, "provider"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// CompleteLogin handles GET /api/auth/{provider}/callback. On success the
// session cookie is set and the browser lands on the dashboard.
func (s *Server) CompleteLogin(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	q := r.URL.Query()
	if e := q.Get("error"); e != "" {
		s.log.WarnContext(r.Context(), "oauth provider returned error", "provider", provider, "error", e)
		writeErrorBody(w, http.StatusUnauthorized, "login_denied", "login was not completed: "+e)
		return
	}

	sess, err := s.Auth.Complete(r.Context(), provider, q.Get("code"), q.Get("state"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrValidation) {
			s.writeError(w, r, err)
			return
		}
		s.log.ErrorContext(r.Context(), "oauth login failed", "provider", provider, "error", err)
		writeErrorBody(w, http.StatusBadGateway, "login_failed", "login with "+provider+" failed")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   s.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, s.DashboardURL, http.StatusFound)
}

// GetSessionUser handles GET /api/auth/me. The token comes from the session
// cookie or an "Authorization: Bearer" header.
func (s *Server) GetSessionUser(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeErrorBody(w, http.StatusUnauthorized, "unauthorized", "no session")
		return
	}
	claims, err := s.Sessions.Verify(token)
	if err != nil {
		writeErrorBody(w, http.StatusUnauthorized, "unauthorized", "invalid session")
		return
	}
	writeJSON(w, http.StatusOK, claims.User())
}

// SessionSubject returns a function reporting the user id of the request's
// session, or "" when the request carries no valid session. It tags request
// log lines.
func SessionSubject(v SessionVerifier) func(*http.Request) string {
	return func(r *http.Request) string {
		token := bearerToken(r)
		if token == "" {
			return ""
		}
		claims, err := v.Verify(token)
		if err != nil {
			return ""
		}
		return claims.Subject
	}
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if rest, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(rest)
		}
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}
