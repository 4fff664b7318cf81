package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/swisscoin/ledger/internal/ledger"
	"github.com/swisscoin/ledger/internal/models"
	"github.com/swisscoin/ledger/internal/money"
	"github.com/swisscoin/ledger/internal/storage"
)

// SettlementService records payments between participants. Outstanding
// balances are always re-derived from the store at commit time, never
// taken from a caller's snapshot, and the read-plan-commit sequence runs
// under a mutex so two concurrent settlements cannot both cap against
// the same stale balance.
type SettlementService struct {
	store    storage.Store
	balances *BalanceService
	notify   Notifier

	mu sync.Mutex
}

// NewSettlementService creates a SettlementService reading balances
// through the given BalanceService. notify may be nil.
func NewSettlementService(store storage.Store, balances *BalanceService, notify Notifier) *SettlementService {
	return &SettlementService{store: store, balances: balances, notify: notify}
}

// CreateSettlementInput describes one payment between the viewer and a
// counterpart. A nil Amount settles the full outstanding balance in the
// currency.
type CreateSettlementInput struct {
	ViewerID       string
	OtherID        string
	CurrencyCode   string
	Amount         *decimal.Decimal
	Date           time.Time
	Note           string
	GroupID        string
	SubscriptionID string
}

// Create plans and persists a single settlement. The amount is capped at
// the freshly computed outstanding balance; a capped payment clears the
// pair and is marked as a full settlement.
func (s *SettlementService) Create(ctx context.Context, in CreateSettlementInput) (*models.Settlement, error) {
	slog.Info("creating settlement",
		"viewer_id", in.ViewerID,
		"other_id", in.OtherID,
		"currency", in.CurrencyCode,
	)

	if in.ViewerID == in.OtherID {
		return nil, fmt.Errorf("%w: cannot settle with yourself", ErrInvalidInput)
	}
	if in.CurrencyCode == "" {
		return nil, fmt.Errorf("%w: currency code is required", ErrInvalidInput)
	}
	if err := checkParticipants(ctx, s.store, in.ViewerID, in.OtherID); err != nil {
		return nil, err
	}
	if in.GroupID != "" {
		if _, err := s.store.GetGroup(ctx, in.GroupID); err != nil {
			return nil, err
		}
	}
	if in.SubscriptionID != "" {
		if _, err := s.store.GetSubscription(ctx, in.SubscriptionID); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	outstanding, err := s.balances.PersonBalance(ctx, in.ViewerID, in.OtherID)
	if err != nil {
		return nil, err
	}

	var requested decimal.Decimal
	if in.Amount != nil {
		requested = *in.Amount
	} else {
		// Omitted amount means "settle everything outstanding".
		requested = money.Round(outstanding.Get(in.CurrencyCode), in.CurrencyCode).Abs()
	}

	st, err := ledger.PlanSettlement(in.ViewerID, in.OtherID, requested, outstanding, in.CurrencyCode)
	if err != nil {
		return nil, err
	}
	st.Date = in.Date
	if st.Date.IsZero() {
		st.Date = time.Now().UTC()
	}
	st.Note = in.Note
	st.GroupID = in.GroupID
	st.SubscriptionID = in.SubscriptionID

	if err := s.store.CreateSettlements(ctx, []*models.Settlement{&st}); err != nil {
		slog.Error("failed to create settlement", "error", err)
		return nil, err
	}
	notify(s.notify)
	slog.Info("settlement created",
		"settlement_id", st.ID,
		"from", st.FromParticipantID,
		"to", st.ToParticipantID,
		"amount", st.Amount.String(),
		"full", st.IsFullSettlement,
	)
	return &st, nil
}

// SettleAllInput asks for every outstanding balance of the viewer to be
// cleared in one batch.
type SettleAllInput struct {
	ViewerID string
	Date     time.Time
	Note     string
}

// SettleAll plans one full settlement per counterpart per currency and
// commits the whole batch atomically. With nothing outstanding it
// returns ErrNoOutstandingBalance.
func (s *SettlementService) SettleAll(ctx context.Context, in SettleAllInput) ([]*models.Settlement, error) {
	slog.Info("settling all balances", "viewer_id", in.ViewerID)

	if err := checkParticipants(ctx, s.store, in.ViewerID); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	counterparts, err := s.balances.CounterpartBalances(ctx, in.ViewerID)
	if err != nil {
		return nil, err
	}
	plans := ledger.PlanSettleAll(in.ViewerID, counterparts)
	if len(plans) == 0 {
		return nil, fmt.Errorf("%w: nothing outstanding for %s", ledger.ErrNoOutstandingBalance, in.ViewerID)
	}

	date := in.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}
	batch := make([]*models.Settlement, len(plans))
	for i := range plans {
		plans[i].Date = date
		plans[i].Note = in.Note
		batch[i] = &plans[i]
	}

	if err := s.store.CreateSettlements(ctx, batch); err != nil {
		slog.Error("failed to commit settle-all batch", "viewer_id", in.ViewerID, "error", err)
		return nil, err
	}
	notify(s.notify)
	slog.Info("settled all balances", "viewer_id", in.ViewerID, "settlements", len(batch))
	return batch, nil
}

// Get retrieves a settlement by id.
func (s *SettlementService) Get(ctx context.Context, id string) (*models.Settlement, error) {
	return s.store.GetSettlement(ctx, id)
}

// List returns settlement history, newest first. A viewer id restricts
// to settlements involving them; viewer and other together restrict to
// the pair.
func (s *SettlementService) List(ctx context.Context, viewerID, otherID string) ([]*models.Settlement, error) {
	switch {
	case viewerID == "" && otherID == "":
		return s.store.ListSettlements(ctx)
	case otherID == "":
		return s.store.ListSettlementsInvolving(ctx, viewerID)
	case viewerID == "":
		return s.store.ListSettlementsInvolving(ctx, otherID)
	default:
		return s.store.ListSettlementsBetween(ctx, viewerID, otherID)
	}
}

// Delete removes a settlement record, resurrecting the debt it cleared.
func (s *SettlementService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteSettlement(ctx, id); err != nil {
		return err
	}
	notify(s.notify)
	slog.Info("settlement deleted", "settlement_id", id)
	return nil
}
