package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/swisscoin/ledger/internal/models"
	"github.com/swisscoin/ledger/internal/storage"
)

// ParticipantService manages the people balances are computed for.
type ParticipantService struct {
	store  storage.Store
	notify Notifier
}

// NewParticipantService creates a ParticipantService with the given
// storage backend. notify may be nil.
func NewParticipantService(store storage.Store, notify Notifier) *ParticipantService {
	return &ParticipantService{store: store, notify: notify}
}

// Create registers a new participant.
func (s *ParticipantService) Create(ctx context.Context, displayName string) (*models.Participant, error) {
	slog.Info("creating participant", "display_name", displayName)

	if displayName == "" {
		return nil, fmt.Errorf("%w: display name is required", ErrInvalidInput)
	}

	p := &models.Participant{DisplayName: displayName}
	if err := s.store.CreateParticipant(ctx, p); err != nil {
		slog.Error("failed to create participant", "error", err)
		return nil, err
	}

	slog.Info("participant created", "participant_id", p.ID)
	return p, nil
}

// Get retrieves a participant by id.
func (s *ParticipantService) Get(ctx context.Context, id string) (*models.Participant, error) {
	return s.store.GetParticipant(ctx, id)
}

// List returns all participants ordered by display name.
func (s *ParticipantService) List(ctx context.Context) ([]*models.Participant, error) {
	return s.store.ListParticipants(ctx)
}

// Delete removes a participant. Participants still referenced by
// transactions, settlements or subscription payments are kept and the
// call fails with storage.ErrInUse.
func (s *ParticipantService) Delete(ctx context.Context, id string) error {
	slog.Info("deleting participant", "participant_id", id)

	if err := s.store.DeleteParticipant(ctx, id); err != nil {
		slog.Error("failed to delete participant", "participant_id", id, "error", err)
		return err
	}
	notify(s.notify)
	return nil
}
