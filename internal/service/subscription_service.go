package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/swisscoin/ledger/internal/models"
	"github.com/swisscoin/ledger/internal/storage"
)

// SubscriptionService manages recurring shared expenses and their
// per-cycle payments.
type SubscriptionService struct {
	store  storage.Store
	notify Notifier
}

// NewSubscriptionService creates a SubscriptionService with the given
// storage backend. notify may be nil.
func NewSubscriptionService(store storage.Store, notify Notifier) *SubscriptionService {
	return &SubscriptionService{store: store, notify: notify}
}

// CreateSubscriptionInput describes a recurring charge shared equally
// among its members.
type CreateSubscriptionInput struct {
	Name         string
	Amount       decimal.Decimal
	CurrencyCode string
	MemberIDs    []string
}

// Create registers a new subscription. Every member must already exist
// and the recurring amount must be positive.
func (s *SubscriptionService) Create(ctx context.Context, in CreateSubscriptionInput) (*models.Subscription, error) {
	slog.Info("creating subscription",
		"name", in.Name,
		"amount", in.Amount.String(),
		"currency", in.CurrencyCode,
		"members", len(in.MemberIDs),
	)

	if in.Name == "" {
		return nil, fmt.Errorf("%w: subscription name is required", ErrInvalidInput)
	}
	if in.CurrencyCode == "" {
		return nil, fmt.Errorf("%w: currency code is required", ErrInvalidInput)
	}
	if !in.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: recurring amount must be positive", ErrInvalidInput)
	}
	if len(in.MemberIDs) == 0 {
		return nil, fmt.Errorf("%w: a subscription needs at least one member", ErrInvalidInput)
	}
	if err := checkParticipants(ctx, s.store, in.MemberIDs...); err != nil {
		return nil, err
	}

	sub := &models.Subscription{
		Name:         in.Name,
		Amount:       in.Amount,
		CurrencyCode: in.CurrencyCode,
		MemberIDs:    in.MemberIDs,
	}
	if err := s.store.CreateSubscription(ctx, sub); err != nil {
		slog.Error("failed to create subscription", "error", err)
		return nil, err
	}

	slog.Info("subscription created", "subscription_id", sub.ID)
	return sub, nil
}

// Get retrieves a subscription by id.
func (s *SubscriptionService) Get(ctx context.Context, id string) (*models.Subscription, error) {
	return s.store.GetSubscription(ctx, id)
}

// List returns all subscriptions ordered by name.
func (s *SubscriptionService) List(ctx context.Context) ([]*models.Subscription, error) {
	return s.store.ListSubscriptions(ctx)
}

// Delete removes a subscription along with its payment history.
// Settlements tagged with it survive untagged.
func (s *SubscriptionService) Delete(ctx context.Context, id string) error {
	slog.Info("deleting subscription", "subscription_id", id)

	if err := s.store.DeleteSubscription(ctx, id); err != nil {
		slog.Error("failed to delete subscription", "subscription_id", id, "error", err)
		return err
	}
	notify(s.notify)
	return nil
}

// RecordPaymentInput describes one billing-cycle payment. A nil Amount
// defaults to the subscription's recurring amount.
type RecordPaymentInput struct {
	SubscriptionID string
	PayerID        string
	Amount         *decimal.Decimal
	Date           time.Time
}

// RecordPayment stores a payment made by a member for one billing
// cycle. The payer must share the subscription.
func (s *SubscriptionService) RecordPayment(ctx context.Context, in RecordPaymentInput) (*models.SubscriptionPayment, error) {
	slog.Info("recording subscription payment",
		"subscription_id", in.SubscriptionID,
		"payer_id", in.PayerID,
	)

	sub, err := s.store.GetSubscription(ctx, in.SubscriptionID)
	if err != nil {
		return nil, err
	}
	if !sub.HasMember(in.PayerID) {
		return nil, fmt.Errorf("%w: payer %s does not share subscription %s", ErrInvalidInput, in.PayerID, sub.ID)
	}

	amount := sub.Amount
	if in.Amount != nil {
		amount = *in.Amount
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: payment amount must be positive", ErrInvalidInput)
	}

	payment := &models.SubscriptionPayment{
		SubscriptionID: sub.ID,
		PayerID:        in.PayerID,
		Amount:         amount,
		CurrencyCode:   sub.CurrencyCode,
		Date:           in.Date,
	}
	if payment.Date.IsZero() {
		payment.Date = time.Now().UTC()
	}
	if err := s.store.CreateSubscriptionPayment(ctx, payment); err != nil {
		slog.Error("failed to record subscription payment", "error", err)
		return nil, err
	}
	notify(s.notify)

	slog.Info("subscription payment recorded",
		"payment_id", payment.ID,
		"subscription_id", sub.ID,
		"amount", payment.Amount.String(),
	)
	return payment, nil
}

// ListPayments returns a subscription's payment history, newest first.
func (s *SubscriptionService) ListPayments(ctx context.Context, subscriptionID string) ([]*models.SubscriptionPayment, error) {
	if _, err := s.store.GetSubscription(ctx, subscriptionID); err != nil {
		return nil, err
	}
	return s.store.ListSubscriptionPayments(ctx, subscriptionID)
}
