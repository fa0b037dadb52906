package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkordes/crimsoncollab/backend/internal/domain"
	"github.com/pkordes/crimsoncollab/backend/internal/repo"
)

// MessageService implements business logic for trip and group chat messages.
type MessageService struct {
	deps
	trips  repo.MessageRepo
	groups repo.MessageRepo
}

// NewMessageService constructs a MessageService over the trip and group message repos.
func NewMessageService(tripMessages, groupMessages repo.MessageRepo, opts ...Option) *MessageService {
	return &MessageService{deps: newDeps(opts), trips: tripMessages, groups: groupMessages}
}

// SendTripMessage appends msg to the trip's chat.
func (s *MessageService) SendTripMessage(ctx context.Context, tripID string, msg domain.Message) (domain.Message, error) {
	return s.send(ctx, s.trips, domain.EntityMessage, "SendTripMessage", tripID, msg)
}

// SendGroupMessage appends msg to the group's chat.
func (s *MessageService) SendGroupMessage(ctx context.Context, groupID string, msg domain.Message) (domain.Message, error) {
	return s.send(ctx, s.groups, domain.EntityGroupMessage, "SendGroupMessage", groupID, msg)
}

// ListTripMessages returns one page of a trip's messages in insertion order.
// An unknown trip yields an empty slice.
func (s *MessageService) ListTripMessages(ctx context.Context, tripID string, p domain.PaginationParams) ([]domain.Message, error) {
	msgs, err := s.trips.ListByParent(ctx, tripID, p)
	if err != nil {
		return emptyIfNil(msgs), fmt.Errorf("service.MessageService.ListTripMessages: %w", err)
	}
	return emptyIfNil(msgs), nil
}

// ListGroupMessages returns one page of a group's messages in insertion order.
// An unknown group yields an empty slice.
func (s *MessageService) ListGroupMessages(ctx context.Context, groupID string, p domain.PaginationParams) ([]domain.Message, error) {
	msgs, err := s.groups.ListByParent(ctx, groupID, p)
	if err != nil {
		return emptyIfNil(msgs), fmt.Errorf("service.MessageService.ListGroupMessages: %w", err)
	}
	return emptyIfNil(msgs), nil
}

func (s *MessageService) send(ctx context.Context, r repo.MessageRepo, entity, op, parentID string, msg domain.Message) (domain.Message, error) {
	parentID = strings.TrimSpace(parentID)
	msg.Text = strings.TrimSpace(msg.Text)
	msg.Type = strings.TrimSpace(msg.Type)
	if msg.Type == "" {
		msg.Type = domain.MessageTypeUser
	}
	if parentID == "" {
		return domain.Message{}, fmt.Errorf("%w: parent id is required", domain.ErrValidation)
	}
	if msg.Text == "" {
		return domain.Message{}, fmt.Errorf("%w: text is required", domain.ErrValidation)
	}

	result, err := r.Create(ctx, parentID, msg)
	if err != nil {
		return domain.Message{}, fmt.Errorf("service.MessageService.%s: %w", op, err)
	}
	s.record(ctx, entity, domain.ActionCreate, result.ID, result)
	return result, nil
}

func emptyIfNil(msgs []domain.Message) []domain.Message {
	if msgs == nil {
		return []domain.Message{}
	}
	return msgs
}
