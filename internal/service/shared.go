package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pkordes/crimsoncollab/backend/internal/domain"
	"github.com/pkordes/crimsoncollab/backend/internal/repo"
)

// QueueLister lists every recorded sync operation. *syncq.Queue satisfies it.
type QueueLister interface {
	All(ctx context.Context) ([]domain.SyncOperation, error)
}

// SharedRepos groups the repositories SharedData reads from and applies to.
type SharedRepos struct {
	Profiles      repo.ProfileRepo
	Trips         repo.TripRepo
	Groups        repo.GroupRepo
	TripMessages  repo.MessageRepo
	GroupMessages repo.MessageRepo
	Invites       repo.InviteRepo
	Calendar      repo.CalendarRepo
}

// SharedData is the whole-dataset view: a snapshot of every collection, and
// the entry point for writes arriving from a remote peer.
type SharedData struct {
	repos SharedRepos
	queue QueueLister
}

// NewSharedData constructs a SharedData. queue may be nil, in which case the
// snapshot carries an empty sync queue.
func NewSharedData(repos SharedRepos, queue QueueLister) *SharedData {
	return &SharedData{repos: repos, queue: queue}
}

// Snapshot returns every collection at once. Collections that cannot be read
// come back empty; the first read error is returned alongside the snapshot.
func (s *SharedData) Snapshot(ctx context.Context) (domain.SharedSnapshot, error) {
	var errs []error
	keep := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	var snap domain.SharedSnapshot
	var err error
	snap.UserData, err = s.repos.Profiles.Current(ctx)
	keep(err)
	snap.Profiles, err = s.repos.Profiles.List(ctx)
	keep(err)
	snap.Trips, err = s.repos.Trips.List(ctx)
	keep(err)
	snap.Groups, err = s.repos.Groups.List(ctx)
	keep(err)
	snap.Messages, err = s.repos.TripMessages.List(ctx)
	keep(err)
	snap.GroupMessages, err = s.repos.GroupMessages.List(ctx)
	keep(err)
	snap.Invites, err = s.repos.Invites.List(ctx)
	keep(err)
	snap.CalendarEvents, err = s.repos.Calendar.List(ctx)
	keep(err)
	snap.SyncQueue = []domain.SyncOperation{}
	if s.queue != nil {
		ops, err := s.queue.All(ctx)
		keep(err)
		if ops != nil {
			snap.SyncQueue = ops
		}
	}

	if len(errs) > 0 {
		return snap, fmt.Errorf("service.SharedData.Snapshot: %w", errs[0])
	}
	return snap, nil
}

// ApplyRemote writes the payload of an incoming sync operation into the
// matching collection, replacing any record with the same id.
// Deletes are not supported and return domain.ErrValidation.
func (s *SharedData) ApplyRemote(ctx context.Context, op domain.SyncOperation) error {
	if op.Action == domain.ActionDelete {
		return fmt.Errorf("%w: delete operations are not supported", domain.ErrValidation)
	}
	if len(op.Payload) == 0 {
		return fmt.Errorf("%w: payload is required", domain.ErrValidation)
	}

	var err error
	switch op.EntityType {
	case domain.EntityProfile:
		err = applyAs(ctx, op, s.repos.Profiles.Upsert)
	case domain.EntityCurrentProfile:
		err = applyAs(ctx, op, s.replaceCurrentProfile)
	case domain.EntityTrip:
		err = applyAs(ctx, op, s.repos.Trips.Upsert)
	case domain.EntityGroup:
		err = applyAs(ctx, op, s.repos.Groups.Upsert)
	case domain.EntityMessage:
		err = applyAs(ctx, op, s.repos.TripMessages.Upsert)
	case domain.EntityGroupMessage:
		err = applyAs(ctx, op, s.repos.GroupMessages.Upsert)
	case domain.EntityInvite:
		err = applyAs(ctx, op, s.repos.Invites.Upsert)
	default:
		return fmt.Errorf("%w: unknown entity type %q", domain.ErrValidation, op.EntityType)
	}
	if err != nil {
		return fmt.Errorf("service.SharedData.ApplyRemote: %w", err)
	}
	return nil
}

// replaceCurrentProfile overwrites the current profile document with p.
func (s *SharedData) replaceCurrentProfile(ctx context.Context, p domain.UserProfile) (domain.UserProfile, error) {
	if p.ID == "" {
		return domain.UserProfile{}, fmt.Errorf("%w: id is required", domain.ErrValidation)
	}
	return s.repos.Profiles.UpdateCurrent(ctx, func(domain.UserProfile) (domain.UserProfile, error) {
		return p, nil
	})
}

// applyAs decodes op.Payload into T and hands it to upsert.
func applyAs[T any](ctx context.Context, op domain.SyncOperation, upsert func(context.Context, T) (T, error)) error {
	var rec T
	if err := json.Unmarshal(op.Payload, &rec); err != nil {
		return errors.Join(domain.ErrValidation, fmt.Errorf("decode %s payload: %w", op.EntityType, err))
	}
	_, err := upsert(ctx, rec)
	return err
}
