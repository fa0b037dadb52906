package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/crimsoncollab/backend/internal/auth"
	"github.com/pkordes/crimsoncollab/backend/internal/domain"
	"github.com/pkordes/crimsoncollab/backend/internal/handler"
	"github.com/pkordes/crimsoncollab/backend/internal/syncq"
)

// Test doubles for the handler consumer interfaces.
// Set only the method fields your test needs.

type mockProfileServicer struct {
	current      func(ctx context.Context) (domain.UserProfile, error)
	update       func(ctx context.Context, u domain.ProfileUpdate) (domain.UserProfile, error)
	saveProfile  func(ctx context.Context, p domain.UserProfile) (domain.UserProfile, error)
	getProfile   func(ctx context.Context, id string) (domain.UserProfile, error)
	listProfiles func(ctx context.Context) ([]domain.UserProfile, error)
}

func (m *mockProfileServicer) Current(ctx context.Context) (domain.UserProfile, error) {
	return m.current(ctx)
}
func (m *mockProfileServicer) Update(ctx context.Context, u domain.ProfileUpdate) (domain.UserProfile, error) {
	return m.update(ctx, u)
}
func (m *mockProfileServicer) SaveProfile(ctx context.Context, p domain.UserProfile) (domain.UserProfile, error) {
	return m.saveProfile(ctx, p)
}
func (m *mockProfileServicer) GetProfile(ctx context.Context, id string) (domain.UserProfile, error) {
	return m.getProfile(ctx, id)
}
func (m *mockProfileServicer) ListProfiles(ctx context.Context) ([]domain.UserProfile, error) {
	return m.listProfiles(ctx)
}

type mockTripServicer struct {
	create  func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	getByID func(ctx context.Context, id string) (domain.Trip, error)
	list    func(ctx context.Context) ([]domain.Trip, error)
	join    func(ctx context.Context, tripID, userID string) (domain.Trip, error)
}

func (m *mockTripServicer) Create(ctx context.Context, t domain.Trip) (domain.Trip, error) {
	return m.create(ctx, t)
}
func (m *mockTripServicer) GetByID(ctx context.Context, id string) (domain.Trip, error) {
	return m.getByID(ctx, id)
}
func (m *mockTripServicer) List(ctx context.Context) ([]domain.Trip, error) {
	return m.list(ctx)
}
func (m *mockTripServicer) Join(ctx context.Context, tripID, userID string) (domain.Trip, error) {
	return m.join(ctx, tripID, userID)
}

type mockGroupServicer struct {
	create     func(ctx context.Context, g domain.Group) (domain.Group, error)
	getByID    func(ctx context.Context, id string) (domain.Group, error)
	list       func(ctx context.Context) ([]domain.Group, error)
	listByUser func(ctx context.Context, userID string) ([]domain.Group, error)
	join       func(ctx context.Context, groupID, memberID string) (domain.Group, error)
	leave      func(ctx context.Context, groupID, memberID string) (domain.Group, error)
}

func (m *mockGroupServicer) Create(ctx context.Context, g domain.Group) (domain.Group, error) {
	return m.create(ctx, g)
}
func (m *mockGroupServicer) GetByID(ctx context.Context, id string) (domain.Group, error) {
	return m.getByID(ctx, id)
}
func (m *mockGroupServicer) List(ctx context.Context) ([]domain.Group, error) {
	return m.list(ctx)
}
func (m *mockGroupServicer) ListByUser(ctx context.Context, userID string) ([]domain.Group, error) {
	return m.listByUser(ctx, userID)
}
func (m *mockGroupServicer) Join(ctx context.Context, groupID, memberID string) (domain.Group, error) {
	return m.join(ctx, groupID, memberID)
}
func (m *mockGroupServicer) Leave(ctx context.Context, groupID, memberID string) (domain.Group, error) {
	return m.leave(ctx, groupID, memberID)
}

type mockMessageServicer struct {
	sendTrip  func(ctx context.Context, tripID string, msg domain.Message) (domain.Message, error)
	sendGroup func(ctx context.Context, groupID string, msg domain.Message) (domain.Message, error)
	listTrip  func(ctx context.Context, tripID string, p domain.PaginationParams) ([]domain.Message, error)
	listGroup func(ctx context.Context, groupID string, p domain.PaginationParams) ([]domain.Message, error)
}

func (m *mockMessageServicer) SendTripMessage(ctx context.Context, id string, msg domain.Message) (domain.Message, error) {
	return m.sendTrip(ctx, id, msg)
}
func (m *mockMessageServicer) SendGroupMessage(ctx context.Context, id string, msg domain.Message) (domain.Message, error) {
	return m.sendGroup(ctx, id, msg)
}
func (m *mockMessageServicer) ListTripMessages(ctx context.Context, id string, p domain.PaginationParams) ([]domain.Message, error) {
	return m.listTrip(ctx, id, p)
}
func (m *mockMessageServicer) ListGroupMessages(ctx context.Context, id string, p domain.PaginationParams) ([]domain.Message, error) {
	return m.listGroup(ctx, id, p)
}

type mockInviteServicer struct {
	create      func(ctx context.Context, inv domain.Invite) (domain.Invite, error)
	listByGroup func(ctx context.Context, groupID string) ([]domain.Invite, error)
	listByEmail func(ctx context.Context, email string) ([]domain.Invite, error)
	respond     func(ctx context.Context, id string, status domain.InviteStatus) (domain.Invite, error)
}

func (m *mockInviteServicer) Create(ctx context.Context, inv domain.Invite) (domain.Invite, error) {
	return m.create(ctx, inv)
}
func (m *mockInviteServicer) ListByGroup(ctx context.Context, groupID string) ([]domain.Invite, error) {
	return m.listByGroup(ctx, groupID)
}
func (m *mockInviteServicer) ListByEmail(ctx context.Context, email string) ([]domain.Invite, error) {
	return m.listByEmail(ctx, email)
}
func (m *mockInviteServicer) Respond(ctx context.Context, id string, status domain.InviteStatus) (domain.Invite, error) {
	return m.respond(ctx, id, status)
}

type mockCalendarServicer struct {
	events       func(ctx context.Context) ([]domain.CalendarEvent, error)
	syncEvent    func(ctx context.Context, source domain.CalendarSource, data map[string]any) bool
	syncTripCard func(ctx context.Context, markup string) (domain.CalendarEvent, bool)
}

func (m *mockCalendarServicer) Events(ctx context.Context) ([]domain.CalendarEvent, error) {
	return m.events(ctx)
}
func (m *mockCalendarServicer) SyncEvent(ctx context.Context, source domain.CalendarSource, data map[string]any) bool {
	return m.syncEvent(ctx, source, data)
}
func (m *mockCalendarServicer) SyncTripCard(ctx context.Context, markup string) (domain.CalendarEvent, bool) {
	return m.syncTripCard(ctx, markup)
}

type mockSharedServicer struct {
	snapshot func(ctx context.Context) (domain.SharedSnapshot, error)
}

func (m *mockSharedServicer) Snapshot(ctx context.Context) (domain.SharedSnapshot, error) {
	return m.snapshot(ctx)
}

type mockSyncQueuer struct {
	all     func(ctx context.Context) ([]domain.SyncOperation, error)
	process func(ctx context.Context) (syncq.DrainResult, error)
}

func (m *mockSyncQueuer) All(ctx context.Context) ([]domain.SyncOperation, error) {
	return m.all(ctx)
}
func (m *mockSyncQueuer) Process(ctx context.Context) (syncq.DrainResult, error) {
	return m.process(ctx)
}

type mockSyncReceiver struct {
	receive func(ctx context.Context, op domain.SyncOperation) (domain.SyncOutcome, error)
}

func (m *mockSyncReceiver) Receive(ctx context.Context, op domain.SyncOperation) (domain.SyncOutcome, error) {
	return m.receive(ctx, op)
}

type mockAuthenticator struct {
	providers func() []string
	begin     func(provider string) (string, error)
	complete  func(ctx context.Context, provider, code, state string) (auth.Session, error)
}

func (m *mockAuthenticator) Providers() []string { return m.providers() }
func (m *mockAuthenticator) Begin(provider string) (string, error) {
	return m.begin(provider)
}
func (m *mockAuthenticator) Complete(ctx context.Context, provider, code, state string) (auth.Session, error) {
	return m.complete(ctx, provider, code, state)
}

type stubStore bool

func (s stubStore) Available() bool { return bool(s) }

// compile-time checks: every mock must satisfy its handler interface.
var (
	_ handler.ProfileServicer  = (*mockProfileServicer)(nil)
	_ handler.TripServicer     = (*mockTripServicer)(nil)
	_ handler.GroupServicer    = (*mockGroupServicer)(nil)
	_ handler.MessageServicer  = (*mockMessageServicer)(nil)
	_ handler.InviteServicer   = (*mockInviteServicer)(nil)
	_ handler.CalendarServicer = (*mockCalendarServicer)(nil)
	_ handler.SharedServicer   = (*mockSharedServicer)(nil)
	_ handler.SyncQueuer       = (*mockSyncQueuer)(nil)
	_ handler.SyncReceiver     = (*mockSyncReceiver)(nil)
	_ handler.Authenticator    = (*mockAuthenticator)(nil)
	_ handler.StoreChecker      = stubStore(true)
)

// ---- helpers ---------------------------------------------------------------

// newHTTPHandler mounts a Server on a chi router the same way main.go does.
func newHTTPHandler(d handler.Deps) http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", handler.Liveness)
	r.Route("/api", func(r chi.Router) {
		handler.NewServer(d).Routes(r, nil)
	})
	return r
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

// do sends one request through h and returns the recorder.
func do(h http.Handler, method, target string, body *bytes.Buffer) *httptest.ResponseRecorder {
	var req *http.Request
	if body == nil {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, body)
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) handler.ErrorResponse {
	t.Helper()
	var resp handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

type listBody[T any] struct {
	Data []T `json:"data"`
}
