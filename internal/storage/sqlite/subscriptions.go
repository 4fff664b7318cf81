package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/swisscoin/ledger/internal/models"
	"github.com/swisscoin/ledger/internal/storage"
)

// CreateSubscription persists a subscription and its member list in one
// database transaction.
func (s *SQLiteStore) CreateSubscription(ctx context.Context, sub *models.Subscription) error {
	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}
	if sub.CreatedAt == 0 {
		sub.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO subscriptions (id, name, amount, currency_code, created_at) VALUES (?, ?, ?, ?, ?)",
		sub.ID, sub.Name, sub.Amount, sub.CurrencyCode, sub.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert subscription: %w", err)
	}

	for i, memberID := range sub.MemberIDs {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO subscription_members (subscription_id, participant_id, position) VALUES (?, ?, ?)",
			sub.ID, memberID, i,
		); err != nil {
			return fmt.Errorf("failed to insert subscription member: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetSubscription retrieves a subscription by ID, members included.
func (s *SQLiteStore) GetSubscription(ctx context.Context, id string) (*models.Subscription, error) {
	sub := &models.Subscription{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, amount, currency_code, created_at FROM subscriptions WHERE id = ?", id,
	).Scan(&sub.ID, &sub.Name, &sub.Amount, &sub.CurrencyCode, &sub.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("subscription %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	sub.MemberIDs, err = s.queryMemberIDs(ctx,
		"SELECT participant_id FROM subscription_members WHERE subscription_id = ? ORDER BY position", id)
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// ListSubscriptions returns every subscription ordered by name, members
// included.
func (s *SQLiteStore) ListSubscriptions(ctx context.Context) ([]*models.Subscription, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, amount, currency_code, created_at FROM subscriptions ORDER BY name, id")
	if err != nil {
		return nil, fmt.Errorf("failed to query subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []*models.Subscription
	byID := make(map[string]*models.Subscription)
	for rows.Next() {
		sub := &models.Subscription{}
		if err := rows.Scan(&sub.ID, &sub.Name, &sub.Amount, &sub.CurrencyCode, &sub.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		subs = append(subs, sub)
		byID[sub.ID] = sub
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate subscriptions: %w", err)
	}
	if len(byID) == 0 {
		return subs, nil
	}

	ids := make([]any, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	memberRows, err := s.db.QueryContext(ctx,
		"SELECT subscription_id, participant_id FROM subscription_members WHERE subscription_id IN ("+placeholders(len(ids))+") ORDER BY position",
		ids...)
	if err != nil {
		return nil, fmt.Errorf("failed to query subscription members: %w", err)
	}
	defer memberRows.Close()
	for memberRows.Next() {
		var subID, memberID string
		if err := memberRows.Scan(&subID, &memberID); err != nil {
			return nil, fmt.Errorf("failed to scan subscription member: %w", err)
		}
		byID[subID].MemberIDs = append(byID[subID].MemberIDs, memberID)
	}
	if err := memberRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate subscription members: %w", err)
	}
	return subs, nil
}

// DeleteSubscription removes a subscription along with its payment history;
// settlements recorded against it survive with the subscription tag cleared.
// Membership rows and payments cascade, settlements set subscription_id NULL.
func (s *SQLiteStore) DeleteSubscription(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM subscriptions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	} else if n == 0 {
		return fmt.Errorf("subscription %s: %w", id, storage.ErrNotFound)
	}
	return nil
}

// CreateSubscriptionPayment records one billing-cycle payment.
func (s *SQLiteStore) CreateSubscriptionPayment(ctx context.Context, p *models.SubscriptionPayment) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt == 0 {
		p.CreatedAt = time.Now().Unix()
	}

	// A payment against a missing subscription should read as not-found,
	// not as a bare foreign key violation.
	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM subscriptions WHERE id = ?", p.SubscriptionID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("subscription %s: %w", p.SubscriptionID, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to check subscription: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO subscription_payments (id, subscription_id, payer_id, amount, currency_code, date, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		p.ID, p.SubscriptionID, p.PayerID, p.Amount, p.CurrencyCode, p.Date.Unix(), p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert subscription payment: %w", err)
	}
	return nil
}

// ListSubscriptionPayments returns a subscription's payments, newest first.
func (s *SQLiteStore) ListSubscriptionPayments(ctx context.Context, subscriptionID string) ([]*models.SubscriptionPayment, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, subscription_id, payer_id, amount, currency_code, date, created_at FROM subscription_payments WHERE subscription_id = ? ORDER BY date DESC, id",
		subscriptionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query subscription payments: %w", err)
	}
	defer rows.Close()

	var payments []*models.SubscriptionPayment
	for rows.Next() {
		p := &models.SubscriptionPayment{}
		var date int64
		if err := rows.Scan(&p.ID, &p.SubscriptionID, &p.PayerID, &p.Amount, &p.CurrencyCode, &date, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan subscription payment: %w", err)
		}
		p.Date = time.Unix(date, 0).UTC()
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate subscription payments: %w", err)
	}
	return payments, nil
}
