package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/crimsoncollab/backend/internal/domain"
	"github.com/pkordes/crimsoncollab/backend/internal/handler"
)

func TestCreateGroup_201(t *testing.T) {
	var got domain.Group
	svc := &mockGroupServicer{
		create: func(_ context.Context, g domain.Group) (domain.Group, error) {
			got = g
			g.ID = "g1"
			return g, nil
		},
	}
	h := newHTTPHandler(handler.Deps{Groups: svc})

	rec := do(h, http.MethodPost, "/api/groups", jsonBody(t, map[string]any{
		"name":            "Algorithms study",
		"creator_id":      "u1",
		"required_skills": []string{"go"},
		"date":            "2025-11-03",
		"time":            "19:00",
	}))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "g1", decode[domain.Group](t, rec).ID)
	assert.Equal(t, "2025-11-03", got.Date)
	assert.Equal(t, []string{"go"}, got.RequiredSkills)
}

func TestListGroups_200(t *testing.T) {
	svc := &mockGroupServicer{
		list: func(_ context.Context) ([]domain.Group, error) {
			return []domain.Group{{ID: "g1"}, {ID: "g2"}}, nil
		},
	}

	rec := do(newHTTPHandler(handler.Deps{Groups: svc}), http.MethodGet, "/api/groups", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[listBody[domain.Group]](t, rec).Data, 2)
}

func TestGetGroup_404(t *testing.T) {
	svc := &mockGroupServicer{
		getByID: func(_ context.Context, _ string) (domain.Group, error) {
			return domain.Group{}, fmt.Errorf("repo.GroupRepo.GetByID: %w", domain.ErrNotFound)
		},
	}

	rec := do(newHTTPHandler(handler.Deps{Groups: svc}), http.MethodGet, "/api/groups/nope", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestJoinAndLeaveGroup(t *testing.T) {
	svc := &mockGroupServicer{
		join: func(_ context.Context, groupID, memberID string) (domain.Group, error) {
			return domain.Group{ID: groupID, Members: []string{"u1", memberID}}, nil
		},
		leave: func(_ context.Context, groupID, memberID string) (domain.Group, error) {
			assert.Equal(t, "u2", memberID)
			return domain.Group{ID: groupID, Members: []string{"u1"}}, nil
		},
	}
	h := newHTTPHandler(handler.Deps{Groups: svc})

	rec := do(h, http.MethodPost, "/api/groups/g1/join", jsonBody(t, map[string]string{"user_id": "u2"}))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"u1", "u2"}, decode[domain.Group](t, rec).Members)

	rec = do(h, http.MethodDelete, "/api/groups/g1/leave?user_id=u2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"u1"}, decode[domain.Group](t, rec).Members)
}

func TestLeaveGroup_400_MissingUser(t *testing.T) {
	rec := do(newHTTPHandler(handler.Deps{Groups: &mockGroupServicer{}}), http.MethodDelete, "/api/groups/g1/leave", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGroupMessages_List(t *testing.T) {
	svc := &mockMessageServicer{
		listGroup: func(_ context.Context, groupID string, p domain.PaginationParams) ([]domain.Message, error) {
			assert.Equal(t, domain.PaginationParams{Limit: 50}, p)
			return []domain.Message{{ID: "m1", ParentID: groupID, Text: "hi"}}, nil
		},
	}

	rec := do(newHTTPHandler(handler.Deps{Messages: svc}), http.MethodGet, "/api/groups/g1/messages", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	msgs := decode[listBody[domain.Message]](t, rec).Data
	require.Len(t, msgs, 1)
	assert.Equal(t, "g1", msgs[0].ParentID)
}

// ---- invites ---------------------------------------------------------------

func TestCreateInvite_201(t *testing.T) {
	svc := &mockInviteServicer{
		create: func(_ context.Context, inv domain.Invite) (domain.Invite, error) {
			assert.Equal(t, "g1", inv.GroupID)
			assert.Equal(t, "friend@example.com", inv.InviteeEmail)
			inv.ID = "i1"
			inv.Status = domain.InvitePending
			return inv, nil
		},
	}

	rec := do(newHTTPHandler(handler.Deps{Invites: svc}), http.MethodPost, "/api/groups/g1/invites",
		jsonBody(t, map[string]string{"invitee_email": "friend@example.com", "inviter_id": "u1"}))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, domain.InvitePending, decode[domain.Invite](t, rec).Status)
}

func TestCreateInvite_400_BadEmail(t *testing.T) {
	rec := do(newHTTPHandler(handler.Deps{Invites: &mockInviteServicer{}}), http.MethodPost, "/api/groups/g1/invites",
		jsonBody(t, map[string]string{"invitee_email": "not-an-email"}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRespondToInvite(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{name: "accepted", wantCode: http.StatusOK},
		{name: "already answered", err: fmt.Errorf("%w: invite is not pending", domain.ErrConflict), wantCode: http.StatusConflict},
		{name: "bad status", err: fmt.Errorf("%w: status must be accepted or declined", domain.ErrValidation), wantCode: http.StatusUnprocessableEntity},
		{name: "unknown invite", err: domain.ErrNotFound, wantCode: http.StatusNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockInviteServicer{
				respond: func(_ context.Context, id string, status domain.InviteStatus) (domain.Invite, error) {
					assert.Equal(t, "i1", id)
					assert.Equal(t, domain.InviteAccepted, status)
					return domain.Invite{ID: id, Status: status}, tc.err
				},
			}

			rec := do(newHTTPHandler(handler.Deps{Invites: svc}), http.MethodPut, "/api/invites/i1",
				jsonBody(t, map[string]string{"status": "accepted"}))

			assert.Equal(t, tc.wantCode, rec.Code)
		})
	}
}

func TestListInvites_ByGroupAndEmail(t *testing.T) {
	svc := &mockInviteServicer{
		listByGroup: func(_ context.Context, groupID string) ([]domain.Invite, error) {
			return []domain.Invite{{ID: "i1", GroupID: groupID}}, nil
		},
		listByEmail: func(_ context.Context, email string) ([]domain.Invite, error) {
			assert.Equal(t, "friend@example.com", email)
			return nil, nil
		},
	}
	h := newHTTPHandler(handler.Deps{Invites: svc})

	rec := do(h, http.MethodGet, "/api/groups/g1/invites", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[listBody[domain.Invite]](t, rec).Data, 1)

	rec = do(h, http.MethodGet, "/api/users/friend@example.com/invites", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":[]}`, rec.Body.String())
}
