package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pkordes/crimsoncollab/backend/internal/domain"
)

// List is the envelope every collection endpoint responds with.
type List[T any] struct {
	Data []T `json:"data"`
}

// Health is the body of GET /api/health.
type Health struct {
	Status string `json:"status"`
	Store  string `json:"store"`
}

// SyncReceipt is the body of POST /api/sync.
type SyncReceipt struct {
	OperationID string             `json:"operation_id"`
	Outcome     domain.SyncOutcome `json:"outcome"`
}

func esc(s string) string { return url.PathEscape(s) }

// ---- users -----------------------------------------------------------------

func (c *Client) CreateUser(ctx context.Context, p domain.UserProfile) (domain.UserProfile, error) {
	var out domain.UserProfile
	err := c.Request(ctx, http.MethodPost, "/api/users", p, &out)
	return out, err
}

func (c *Client) GetUser(ctx context.Context, id string) (domain.UserProfile, error) {
	var out domain.UserProfile
	err := c.Request(ctx, http.MethodGet, "/api/users/"+esc(id), nil, &out)
	return out, err
}

// UpdateUser replaces the stored profile for id.
func (c *Client) UpdateUser(ctx context.Context, id string, p domain.UserProfile) (domain.UserProfile, error) {
	var out domain.UserProfile
	err := c.Request(ctx, http.MethodPut, "/api/users/"+esc(id), p, &out)
	return out, err
}

// ListUserGroups returns the groups userID created or joined.
func (c *Client) ListUserGroups(ctx context.Context, userID string) ([]domain.Group, error) {
	var out List[domain.Group]
	err := c.Request(ctx, http.MethodGet, "/api/users/"+esc(userID)+"/groups", nil, &out)
	return out.Data, err
}

// ListInvitesForEmail returns every invite addressed to email.
func (c *Client) ListInvitesForEmail(ctx context.Context, email string) ([]domain.Invite, error) {
	var out List[domain.Invite]
	err := c.Request(ctx, http.MethodGet, "/api/users/"+esc(email)+"/invites", nil, &out)
	return out.Data, err
}

// ---- groups ----------------------------------------------------------------

func (c *Client) CreateGroup(ctx context.Context, g domain.Group) (domain.Group, error) {
	var out domain.Group
	err := c.Request(ctx, http.MethodPost, "/api/groups", g, &out)
	return out, err
}

func (c *Client) ListGroups(ctx context.Context) ([]domain.Group, error) {
	var out List[domain.Group]
	err := c.Request(ctx, http.MethodGet, "/api/groups", nil, &out)
	return out.Data, err
}

func (c *Client) GetGroup(ctx context.Context, id string) (domain.Group, error) {
	var out domain.Group
	err := c.Request(ctx, http.MethodGet, "/api/groups/"+esc(id), nil, &out)
	return out, err
}

func (c *Client) JoinGroup(ctx context.Context, groupID, userID string) (domain.Group, error) {
	var out domain.Group
	body := map[string]string{"user_id": userID}
	err := c.Request(ctx, http.MethodPost, "/api/groups/"+esc(groupID)+"/join", body, &out)
	return out, err
}

func (c *Client) LeaveGroup(ctx context.Context, groupID, userID string) (domain.Group, error) {
	var out domain.Group
	path := "/api/groups/" + esc(groupID) + "/leave?user_id=" + url.QueryEscape(userID)
	err := c.Request(ctx, http.MethodDelete, path, nil, &out)
	return out, err
}

func (c *Client) SendGroupMessage(ctx context.Context, groupID string, msg domain.Message) (domain.Message, error) {
	var out domain.Message
	err := c.Request(ctx, http.MethodPost, "/api/groups/"+esc(groupID)+"/messages", msg, &out)
	return out, err
}

// ListGroupMessages returns one page of a group's chat.
func (c *Client) ListGroupMessages(ctx context.Context, groupID string, limit, offset int) ([]domain.Message, error) {
	var out List[domain.Message]
	path := fmt.Sprintf("/api/groups/%s/messages?limit=%d&offset=%d", esc(groupID), limit, offset)
	err := c.Request(ctx, http.MethodGet, path, nil, &out)
	return out.Data, err
}

// ---- invites ---------------------------------------------------------------

func (c *Client) CreateInvite(ctx context.Context, inv domain.Invite) (domain.Invite, error) {
	var out domain.Invite
	err := c.Request(ctx, http.MethodPost, "/api/groups/"+esc(inv.GroupID)+"/invites", inv, &out)
	return out, err
}

func (c *Client) ListGroupInvites(ctx context.Context, groupID string) ([]domain.Invite, error) {
	var out List[domain.Invite]
	err := c.Request(ctx, http.MethodGet, "/api/groups/"+esc(groupID)+"/invites", nil, &out)
	return out.Data, err
}

func (c *Client) RespondToInvite(ctx context.Context, inviteID string, status domain.InviteStatus) (domain.Invite, error) {
	var out domain.Invite
	body := map[string]domain.InviteStatus{"status": status}
	err := c.Request(ctx, http.MethodPut, "/api/invites/"+esc(inviteID), body, &out)
	return out, err
}

// ---- system ----------------------------------------------------------------

func (c *Client) Health(ctx context.Context) (Health, error) {
	var out Health
	err := c.Request(ctx, http.MethodGet, "/api/health", nil, &out)
	return out, err
}

// PushSyncOperation delivers op to the remote's sync endpoint. The op id is
// sent as the Idempotency-Key so a redelivered op is recognized.
func (c *Client) PushSyncOperation(ctx context.Context, op domain.SyncOperation) (SyncReceipt, error) {
	var out SyncReceipt
	err := c.Request(ctx, http.MethodPost, "/api/sync", op, &out, WithRequestHeader("Idempotency-Key", op.ID))
	return out, err
}
