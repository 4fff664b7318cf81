package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/swisscoin/ledger/internal/models"
	"github.com/swisscoin/ledger/internal/storage"
)

// GroupService manages named circles of participants. Groups only tag
// transactions and settlements for scoped balance queries; membership
// never affects how amounts are computed.
type GroupService struct {
	store  storage.Store
	notify Notifier
}

// NewGroupService creates a GroupService with the given storage
// backend. notify may be nil.
func NewGroupService(store storage.Store, notify Notifier) *GroupService {
	return &GroupService{store: store, notify: notify}
}

// CreateGroupInput names a group and its members in display order.
type CreateGroupInput struct {
	Name      string
	MemberIDs []string
}

// Create registers a new group. Every member must already exist.
func (s *GroupService) Create(ctx context.Context, in CreateGroupInput) (*models.Group, error) {
	slog.Info("creating group", "name", in.Name, "members", len(in.MemberIDs))

	if in.Name == "" {
		return nil, fmt.Errorf("%w: group name is required", ErrInvalidInput)
	}
	if len(in.MemberIDs) == 0 {
		return nil, fmt.Errorf("%w: a group needs at least one member", ErrInvalidInput)
	}
	if err := checkParticipants(ctx, s.store, in.MemberIDs...); err != nil {
		return nil, err
	}

	group := &models.Group{
		Name:      in.Name,
		MemberIDs: in.MemberIDs,
	}
	if err := s.store.CreateGroup(ctx, group); err != nil {
		slog.Error("failed to create group", "error", err)
		return nil, err
	}

	slog.Info("group created", "group_id", group.ID)
	return group, nil
}

// Get retrieves a group by id.
func (s *GroupService) Get(ctx context.Context, id string) (*models.Group, error) {
	return s.store.GetGroup(ctx, id)
}

// List returns all groups ordered by name.
func (s *GroupService) List(ctx context.Context) ([]*models.Group, error) {
	return s.store.ListGroups(ctx)
}

// Delete removes a group. Transactions and settlements tagged with it
// survive untagged, so totals outside the group are unaffected.
func (s *GroupService) Delete(ctx context.Context, id string) error {
	slog.Info("deleting group", "group_id", id)

	if err := s.store.DeleteGroup(ctx, id); err != nil {
		slog.Error("failed to delete group", "group_id", id, "error", err)
		return err
	}
	notify(s.notify)
	return nil
}
