package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/swisscoin/ledger/internal/models"
	"github.com/swisscoin/ledger/internal/storage"
)

const settlementColumns = "id, from_participant_id, to_participant_id, amount, currency_code, date, note, is_full_settlement, group_id, subscription_id, created_at"

// CreateSettlements persists a batch of settlements in one database
// transaction. Either every settlement lands or none does, so a multi-step
// settle-all can never leave a half-settled history behind.
func (s *SQLiteStore) CreateSettlements(ctx context.Context, settlements []*models.Settlement) error {
	if len(settlements) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, st := range settlements {
		if st.ID == "" {
			st.ID = uuid.New().String()
		}
		if st.CreatedAt == 0 {
			st.CreatedAt = time.Now().Unix()
		}

		_, err := tx.ExecContext(ctx,
			`INSERT INTO settlements (id, from_participant_id, to_participant_id, amount, currency_code, date, note, is_full_settlement, group_id, subscription_id, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			st.ID, st.FromParticipantID, st.ToParticipantID, st.Amount, st.CurrencyCode,
			st.Date.Unix(), nullable(st.Note), st.IsFullSettlement,
			nullable(st.GroupID), nullable(st.SubscriptionID), st.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert settlement: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetSettlement retrieves a settlement by ID.
func (s *SQLiteStore) GetSettlement(ctx context.Context, id string) (*models.Settlement, error) {
	settlements, err := s.querySettlements(ctx,
		"SELECT "+settlementColumns+" FROM settlements WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(settlements) == 0 {
		return nil, fmt.Errorf("settlement %s: %w", id, storage.ErrNotFound)
	}
	return settlements[0], nil
}

// DeleteSettlement removes a settlement by ID.
func (s *SQLiteStore) DeleteSettlement(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM settlements WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete settlement: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	} else if n == 0 {
		return fmt.Errorf("settlement %s: %w", id, storage.ErrNotFound)
	}
	return nil
}

// ListSettlements returns every settlement, newest first.
func (s *SQLiteStore) ListSettlements(ctx context.Context) ([]*models.Settlement, error) {
	return s.querySettlements(ctx,
		"SELECT "+settlementColumns+" FROM settlements ORDER BY date DESC, id")
}

// ListSettlementsInvolving returns settlements the participant paid or
// received.
func (s *SQLiteStore) ListSettlementsInvolving(ctx context.Context, participantID string) ([]*models.Settlement, error) {
	return s.querySettlements(ctx,
		"SELECT "+settlementColumns+" FROM settlements WHERE from_participant_id = ? OR to_participant_id = ? ORDER BY date DESC, id",
		participantID, participantID)
}

// ListSettlementsBetween returns settlements between the two participants,
// in either direction.
func (s *SQLiteStore) ListSettlementsBetween(ctx context.Context, a, b string) ([]*models.Settlement, error) {
	return s.querySettlements(ctx,
		`SELECT `+settlementColumns+` FROM settlements
		 WHERE (from_participant_id = ? AND to_participant_id = ?)
		    OR (from_participant_id = ? AND to_participant_id = ?)
		 ORDER BY date DESC, id`,
		a, b, b, a)
}

// ListSettlementsByGroup returns the settlements tagged with a group.
func (s *SQLiteStore) ListSettlementsByGroup(ctx context.Context, groupID string) ([]*models.Settlement, error) {
	return s.querySettlements(ctx,
		"SELECT "+settlementColumns+" FROM settlements WHERE group_id = ? ORDER BY date DESC, id",
		groupID)
}

// ListSettlementsBySubscription returns the settlements tagged with a
// subscription.
func (s *SQLiteStore) ListSettlementsBySubscription(ctx context.Context, subscriptionID string) ([]*models.Settlement, error) {
	return s.querySettlements(ctx,
		"SELECT "+settlementColumns+" FROM settlements WHERE subscription_id = ? ORDER BY date DESC, id",
		subscriptionID)
}

func (s *SQLiteStore) querySettlements(ctx context.Context, query string, args ...any) ([]*models.Settlement, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query settlements: %w", err)
	}
	defer rows.Close()

	var settlements []*models.Settlement
	for rows.Next() {
		st := &models.Settlement{}
		var date int64
		var note, groupID, subscriptionID sql.NullString
		if err := rows.Scan(&st.ID, &st.FromParticipantID, &st.ToParticipantID,
			&st.Amount, &st.CurrencyCode, &date, &note, &st.IsFullSettlement,
			&groupID, &subscriptionID, &st.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		st.Date = time.Unix(date, 0).UTC()
		st.Note = note.String
		st.GroupID = groupID.String
		st.SubscriptionID = subscriptionID.String
		settlements = append(settlements, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}
	return settlements, nil
}
