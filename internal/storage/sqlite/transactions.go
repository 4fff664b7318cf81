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

const transactionColumns = "id, title, total_amount, currency_code, date, split_method, group_id, note, created_at"

// CreateTransaction persists a transaction with its payers and splits in
// one database transaction.
func (s *SQLiteStore) CreateTransaction(ctx context.Context, txn *models.Transaction) error {
	if txn.ID == "" {
		txn.ID = uuid.New().String()
	}
	if txn.CreatedAt == 0 {
		txn.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO transactions (id, title, total_amount, currency_code, date, split_method, group_id, note, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		txn.ID, txn.Title, txn.TotalAmount, txn.CurrencyCode, txn.Date.Unix(),
		string(txn.SplitMethod), nullable(txn.GroupID), nullable(txn.Note), txn.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	if err := insertTransactionChildren(ctx, tx, txn); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetTransaction retrieves a transaction by ID, payers and splits included.
func (s *SQLiteStore) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	txns, err := s.queryTransactions(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(txns) == 0 {
		return nil, fmt.Errorf("transaction %s: %w", id, storage.ErrNotFound)
	}
	return txns[0], nil
}

// UpdateTransaction replaces the transaction row and rewrites its payers
// and splits wholesale.
func (s *SQLiteStore) UpdateTransaction(ctx context.Context, txn *models.Transaction) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE transactions
		 SET title = ?, total_amount = ?, currency_code = ?, date = ?, split_method = ?, group_id = ?, note = ?
		 WHERE id = ?`,
		txn.Title, txn.TotalAmount, txn.CurrencyCode, txn.Date.Unix(),
		string(txn.SplitMethod), nullable(txn.GroupID), nullable(txn.Note), txn.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	} else if n == 0 {
		return fmt.Errorf("transaction %s: %w", txn.ID, storage.ErrNotFound)
	}

	for _, table := range []string{"transaction_payers", "transaction_splits"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE transaction_id = ?", txn.ID); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	if err := insertTransactionChildren(ctx, tx, txn); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteTransaction removes a transaction; payers and splits cascade.
func (s *SQLiteStore) DeleteTransaction(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	} else if n == 0 {
		return fmt.Errorf("transaction %s: %w", id, storage.ErrNotFound)
	}
	return nil
}

// ListTransactions returns every transaction, newest first.
func (s *SQLiteStore) ListTransactions(ctx context.Context) ([]*models.Transaction, error) {
	return s.queryTransactions(ctx,
		"SELECT "+transactionColumns+" FROM transactions ORDER BY date DESC, id")
}

// ListTransactionsInvolving returns transactions where the participant
// appears as a payer or split owner.
func (s *SQLiteStore) ListTransactionsInvolving(ctx context.Context, participantID string) ([]*models.Transaction, error) {
	return s.queryTransactions(ctx,
		`SELECT `+transactionColumns+` FROM transactions t
		 WHERE EXISTS (SELECT 1 FROM transaction_payers p WHERE p.transaction_id = t.id AND p.participant_id = ?)
		    OR EXISTS (SELECT 1 FROM transaction_splits sp WHERE sp.transaction_id = t.id AND sp.participant_id = ?)
		 ORDER BY t.date DESC, t.id`,
		participantID, participantID)
}

// ListTransactionsByGroup returns the transactions tagged with a group.
func (s *SQLiteStore) ListTransactionsByGroup(ctx context.Context, groupID string) ([]*models.Transaction, error) {
	return s.queryTransactions(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE group_id = ? ORDER BY date DESC, id",
		groupID)
}

func insertTransactionChildren(ctx context.Context, tx *sql.Tx, txn *models.Transaction) error {
	for _, p := range txn.Payers {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO transaction_payers (transaction_id, participant_id, amount) VALUES (?, ?, ?)",
			txn.ID, p.ParticipantID, p.Amount,
		); err != nil {
			return fmt.Errorf("failed to insert payer: %w", err)
		}
	}
	for _, sp := range txn.Splits {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO transaction_splits (transaction_id, participant_id, amount, raw_input) VALUES (?, ?, ?, ?)",
			txn.ID, sp.ParticipantID, sp.Amount, sp.RawInput,
		); err != nil {
			return fmt.Errorf("failed to insert split: %w", err)
		}
	}
	return nil
}

// queryTransactions scans base rows, then loads payers and splits for the
// whole result set in two queries instead of two per transaction.
func (s *SQLiteStore) queryTransactions(ctx context.Context, query string, args ...any) ([]*models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var txns []*models.Transaction
	byID := make(map[string]*models.Transaction)
	for rows.Next() {
		txn := &models.Transaction{}
		var date int64
		var method string
		var groupID, note sql.NullString
		if err := rows.Scan(&txn.ID, &txn.Title, &txn.TotalAmount, &txn.CurrencyCode,
			&date, &method, &groupID, &note, &txn.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txn.Date = time.Unix(date, 0).UTC()
		txn.SplitMethod = models.SplitMethod(method)
		txn.GroupID = groupID.String
		txn.Note = note.String
		txns = append(txns, txn)
		byID[txn.ID] = txn
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	if err := s.loadTransactionChildren(ctx, byID); err != nil {
		return nil, err
	}
	return txns, nil
}

func (s *SQLiteStore) loadTransactionChildren(ctx context.Context, byID map[string]*models.Transaction) error {
	if len(byID) == 0 {
		return nil
	}
	ids := make([]any, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	in := placeholders(len(ids))

	payerRows, err := s.db.QueryContext(ctx,
		"SELECT transaction_id, participant_id, amount FROM transaction_payers WHERE transaction_id IN ("+in+") ORDER BY participant_id",
		ids...)
	if err != nil {
		return fmt.Errorf("failed to query payers: %w", err)
	}
	defer payerRows.Close()
	for payerRows.Next() {
		var tid string
		var p models.PayerContribution
		if err := payerRows.Scan(&tid, &p.ParticipantID, &p.Amount); err != nil {
			return fmt.Errorf("failed to scan payer: %w", err)
		}
		byID[tid].Payers = append(byID[tid].Payers, p)
	}
	if err := payerRows.Err(); err != nil {
		return fmt.Errorf("failed to iterate payers: %w", err)
	}

	splitRows, err := s.db.QueryContext(ctx,
		"SELECT transaction_id, participant_id, amount, raw_input FROM transaction_splits WHERE transaction_id IN ("+in+") ORDER BY participant_id",
		ids...)
	if err != nil {
		return fmt.Errorf("failed to query splits: %w", err)
	}
	defer splitRows.Close()
	for splitRows.Next() {
		var tid string
		var sp models.SplitShare
		if err := splitRows.Scan(&tid, &sp.ParticipantID, &sp.Amount, &sp.RawInput); err != nil {
			return fmt.Errorf("failed to scan split: %w", err)
		}
		byID[tid].Splits = append(byID[tid].Splits, sp)
	}
	if err := splitRows.Err(); err != nil {
		return fmt.Errorf("failed to iterate splits: %w", err)
	}
	return nil
}
