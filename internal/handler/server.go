// Package handler implements the HTTP handlers for the CrimsonCollab shared
// data API. All handlers are methods on Server, and Routes mounts them on a
// chi router. Methods are split into resource files (trip.go, group.go, etc.)
// but share the same Server struct so they can access its dependencies.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/crimsoncollab/backend/internal/auth"
	"github.com/pkordes/crimsoncollab/backend/internal/domain"
	"github.com/pkordes/crimsoncollab/backend/internal/syncq"
)

// The interfaces below are defined here, in the consumer package, so handler
// tests can inject a mock without touching the store or service layer.

// ProfileServicer covers the current user's profile and the shared profile list.
type ProfileServicer interface {
	Current(ctx context.Context) (domain.UserProfile, error)
	Update(ctx context.Context, u domain.ProfileUpdate) (domain.UserProfile, error)
	SaveProfile(ctx context.Context, p domain.UserProfile) (domain.UserProfile, error)
	GetProfile(ctx context.Context, id string) (domain.UserProfile, error)
	ListProfiles(ctx context.Context) ([]domain.UserProfile, error)
}

// TripServicer defines the trip operations the handlers depend on.
type TripServicer interface {
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	GetByID(ctx context.Context, id string) (domain.Trip, error)
	List(ctx context.Context) ([]domain.Trip, error)
	Join(ctx context.Context, tripID, userID string) (domain.Trip, error)
}

// GroupServicer defines the group operations the handlers depend on.
type GroupServicer interface {
	Create(ctx context.Context, g domain.Group) (domain.Group, error)
	GetByID(ctx context.Context, id string) (domain.Group, error)
	List(ctx context.Context) ([]domain.Group, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Group, error)
	Join(ctx context.Context, groupID, memberID string) (domain.Group, error)
	Leave(ctx context.Context, groupID, memberID string) (domain.Group, error)
}

// MessageServicer covers trip and group chat.
type MessageServicer interface {
	SendTripMessage(ctx context.Context, tripID string, msg domain.Message) (domain.Message, error)
	SendGroupMessage(ctx context.Context, groupID string, msg domain.Message) (domain.Message, error)
	ListTripMessages(ctx context.Context, tripID string, p domain.PaginationParams) ([]domain.Message, error)
	ListGroupMessages(ctx context.Context, groupID string, p domain.PaginationParams) ([]domain.Message, error)
}

// InviteServicer defines the invite operations the handlers depend on.
type InviteServicer interface {
	Create(ctx context.Context, inv domain.Invite) (domain.Invite, error)
	ListByGroup(ctx context.Context, groupID string) ([]domain.Invite, error)
	ListByEmail(ctx context.Context, email string) ([]domain.Invite, error)
	Respond(ctx context.Context, id string, status domain.InviteStatus) (domain.Invite, error)
}

// CalendarServicer is the calendar bridge as seen by the handlers.
type CalendarServicer interface {
	Events(ctx context.Context) ([]domain.CalendarEvent, error)
	SyncEvent(ctx context.Context, source domain.CalendarSource, data map[string]any) bool
	SyncTripCard(ctx context.Context, markup string) (domain.CalendarEvent, bool)
}

// SharedServicer exposes every collection at once.
type SharedServicer interface {
	Snapshot(ctx context.Context) (domain.SharedSnapshot, error)
}

// SyncQueuer is the local outbound queue.
type SyncQueuer interface {
	All(ctx context.Context) ([]domain.SyncOperation, error)
	Process(ctx context.Context) (syncq.DrainResult, error)
}

// SyncReceiver applies operations pushed by another instance.
type SyncReceiver interface {
	Receive(ctx context.Context, op domain.SyncOperation) (domain.SyncOutcome, error)
}

// Authenticator runs the OAuth login flow.
type Authenticator interface {
	Providers() []string
	Begin(provider string) (string, error)
	Complete(ctx context.Context, provider, code, state string) (auth.Session, error)
}

// SessionVerifier checks session tokens issued at the end of a login.
type SessionVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// StoreChecker reports whether shared storage is configured.
type StoreChecker interface {
	Available() bool
}

// Deps holds every collaborator of Server. Nil optional fields disable the
// routes that need them: Auth and Sessions for /auth, Realtime for /ws.
type Deps struct {
	Profiles ProfileServicer
	Trips    TripServicer
	Groups   GroupServicer
	Messages MessageServicer
	Invites  InviteServicer
	Calendar CalendarServicer
	Shared   SharedServicer
	Queue    SyncQueuer
	Ledger   SyncReceiver
	Store    StoreChecker

	Auth     Authenticator
	Sessions SessionVerifier
	Realtime http.Handler

	// DashboardURL is where a completed login redirects. Defaults to "/dashboard".
	DashboardURL string
	// SecureCookies marks the session cookie Secure. Enable behind TLS.
	SecureCookies bool

	Log *slog.Logger
}

// Server serves the /api routes. Methods are in resource files but all
// operate on this struct.
type Server struct {
	Deps
	log *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
func NewServer(d Deps) *Server {
	if d.DashboardURL == "" {
		d.DashboardURL = "/dashboard"
	}
	log := d.Log
	if log == nil {
		log = slog.Default()
	}
	return &Server{Deps: d, log: log}
}

// Routes mounts every /api route on r. authLimit, when non-nil, wraps the
// /auth subtree (rate limiting in production).
func (s *Server) Routes(r chi.Router, authLimit func(http.Handler) http.Handler) {
	r.Get("/health", s.GetHealth)

	r.Route("/users", func(r chi.Router) {
		r.Get("/", s.ListUsers)
		r.Post("/", s.CreateUser)
		r.Get("/{id}", s.GetUser)
		r.Put("/{id}", s.UpdateUser)
		r.Get("/{id}/groups", s.ListUserGroups)
		// {id} is the invitee's email on this route.
		r.Get("/{id}/invites", s.ListUserInvites)
	})

	r.Get("/profile", s.GetProfile)
	r.Patch("/profile", s.UpdateProfile)

	r.Route("/trips", func(r chi.Router) {
		r.Get("/", s.ListTrips)
		r.Post("/", s.CreateTrip)
		r.Get("/{id}", s.GetTrip)
		r.Post("/{id}/join", s.JoinTrip)
		r.Get("/{id}/messages", s.ListTripMessages)
		r.Post("/{id}/messages", s.SendTripMessage)
	})

	r.Route("/groups", func(r chi.Router) {
		r.Get("/", s.ListGroups)
		r.Post("/", s.CreateGroup)
		r.Get("/{id}", s.GetGroup)
		r.Post("/{id}/join", s.JoinGroup)
		r.Delete("/{id}/leave", s.LeaveGroup)
		r.Get("/{id}/messages", s.ListGroupMessages)
		r.Post("/{id}/messages", s.SendGroupMessage)
		r.Get("/{id}/invites", s.ListGroupInvites)
		r.Post("/{id}/invites", s.CreateInvite)
	})
	r.Put("/invites/{id}", s.RespondToInvite)

	r.Get("/calendar", s.ListCalendarEvents)
	r.Post("/calendar/cards/trip", s.SyncTripCard)
	r.Post("/calendar/{source}", s.SyncCalendarEvent)

	r.Get("/shared", s.GetShared)
	r.Get("/export", s.GetExport)

	r.Post("/sync", s.ReceiveSyncOperation)
	r.Get("/sync/queue", s.ListSyncQueue)
	r.Post("/sync/drain", s.DrainSyncQueue)

	if s.Auth != nil && s.Sessions != nil {
		r.Route("/auth", func(r chi.Router) {
			if authLimit != nil {
				r.Use(authLimit)
			}
			r.Get("/providers", s.ListAuthProviders)
			r.Get("/me", s.GetSessionUser)
			r.Get("/{provider}/login", s.BeginLogin)
			r.Get("/{provider}/callback", s.CompleteLogin)
		})
	}

	if s.Realtime != nil {
		r.Handle("/ws", s.Realtime)
	}
}
