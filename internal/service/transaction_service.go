package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/swisscoin/ledger/internal/ledger"
	"github.com/swisscoin/ledger/internal/models"
	"github.com/swisscoin/ledger/internal/storage"
)

// TransactionService records, edits and deletes shared expenses. Split
// amounts are computed once at creation; edits rescale the stored shares
// proportionally and never re-run the original split method.
type TransactionService struct {
	store  storage.Store
	notify Notifier
}

// NewTransactionService creates a TransactionService with the given
// storage backend. notify may be nil.
func NewTransactionService(store storage.Store, notify Notifier) *TransactionService {
	return &TransactionService{store: store, notify: notify}
}

// CreateTransactionInput carries everything needed to record an expense.
// SplitInputs is keyed by participant id and interpreted per SplitMethod;
// it is ignored for equal splits.
type CreateTransactionInput struct {
	Title        string
	TotalAmount  decimal.Decimal
	CurrencyCode string
	Date         time.Time
	SplitMethod  models.SplitMethod
	Participants []string
	SplitInputs  map[string]decimal.Decimal
	Payers       []models.PayerContribution
	GroupID      string
	Note         string
}

// PreviewSplits runs the split calculation without persisting anything,
// for the entry screen's live preview.
func (s *TransactionService) PreviewSplits(total decimal.Decimal, currencyCode string, method models.SplitMethod, participants []string, inputs map[string]decimal.Decimal) (ledger.SplitResult, error) {
	return ledger.ComputeSplits(total, currencyCode, method, participants, inputs)
}

// Create computes the splits, normalizes the payers and persists the
// transaction. The returned string slice lists participants whose
// adjusted share was clamped to zero, surfaced to the caller as a
// warning.
func (s *TransactionService) Create(ctx context.Context, in CreateTransactionInput) (*models.Transaction, []string, error) {
	slog.Info("creating transaction",
		"title", in.Title,
		"method", in.SplitMethod,
		"participants", len(in.Participants),
	)

	if in.Title == "" {
		return nil, nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if in.CurrencyCode == "" {
		return nil, nil, fmt.Errorf("%w: currency code is required", ErrInvalidInput)
	}
	ids := append(append([]string(nil), in.Participants...), payerIDs(in.Payers)...)
	if err := checkParticipants(ctx, s.store, ids...); err != nil {
		return nil, nil, err
	}
	if in.GroupID != "" {
		if _, err := s.store.GetGroup(ctx, in.GroupID); err != nil {
			return nil, nil, err
		}
	}

	payers, err := ledger.NormalizePayers(in.TotalAmount, in.CurrencyCode, in.Payers)
	if err != nil {
		return nil, nil, err
	}
	res, err := ledger.ComputeSplits(in.TotalAmount, in.CurrencyCode, in.SplitMethod, in.Participants, in.SplitInputs)
	if err != nil {
		return nil, nil, err
	}

	txn := &models.Transaction{
		Title:        in.Title,
		TotalAmount:  in.TotalAmount,
		CurrencyCode: in.CurrencyCode,
		Date:         in.Date,
		SplitMethod:  in.SplitMethod,
		Payers:       payers,
		Splits:       res.Shares,
		GroupID:      in.GroupID,
		Note:         in.Note,
	}
	if txn.Date.IsZero() {
		txn.Date = time.Now().UTC()
	}
	if err := s.store.CreateTransaction(ctx, txn); err != nil {
		slog.Error("failed to create transaction", "error", err)
		return nil, nil, err
	}

	if len(res.Clamped) > 0 {
		slog.Warn("adjustment clamped shares to zero",
			"transaction_id", txn.ID,
			"participants", res.Clamped,
		)
	}
	notify(s.notify)
	slog.Info("transaction created", "transaction_id", txn.ID, "total", in.TotalAmount.String(), "currency", in.CurrencyCode)
	return txn, res.Clamped, nil
}

// Get retrieves a transaction by id.
func (s *TransactionService) Get(ctx context.Context, id string) (*models.Transaction, error) {
	return s.store.GetTransaction(ctx, id)
}

// List returns all transactions, newest first.
func (s *TransactionService) List(ctx context.Context) ([]*models.Transaction, error) {
	return s.store.ListTransactions(ctx)
}

// ListByGroup returns the transactions tagged with a group, newest first.
func (s *TransactionService) ListByGroup(ctx context.Context, groupID string) ([]*models.Transaction, error) {
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	return s.store.ListTransactionsByGroup(ctx, groupID)
}

// UpdateTransactionInput carries a partial edit; nil fields keep their
// stored value.
type UpdateTransactionInput struct {
	Title       *string
	TotalAmount *decimal.Decimal
	Date        *time.Time
	Payers      []models.PayerContribution
	GroupID     *string
	Note        *string
}

// Update applies a partial edit. A changed total rescales the stored
// splits proportionally (the original split method is never re-run from
// raw inputs); payers follow the same rescale unless the edit replaces
// them outright.
func (s *TransactionService) Update(ctx context.Context, id string, in UpdateTransactionInput) (*models.Transaction, error) {
	txn, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		if *in.Title == "" {
			return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
		}
		txn.Title = *in.Title
	}
	if in.Date != nil {
		txn.Date = *in.Date
	}
	if in.Note != nil {
		txn.Note = *in.Note
	}
	if in.GroupID != nil {
		if *in.GroupID != "" {
			if _, err := s.store.GetGroup(ctx, *in.GroupID); err != nil {
				return nil, err
			}
		}
		txn.GroupID = *in.GroupID
	}

	newPayers := in.Payers
	if in.TotalAmount != nil && !in.TotalAmount.Equal(txn.TotalAmount) {
		scaled, err := ledger.ScaleSplits(txn.Splits, *in.TotalAmount, txn.CurrencyCode)
		if err != nil {
			return nil, err
		}
		txn.Splits = scaled
		if newPayers == nil {
			newPayers, err = scalePayers(txn.Payers, *in.TotalAmount, txn.CurrencyCode)
			if err != nil {
				return nil, err
			}
		}
		txn.TotalAmount = *in.TotalAmount
	}
	if newPayers != nil {
		if err := checkParticipants(ctx, s.store, payerIDs(newPayers)...); err != nil {
			return nil, err
		}
		normalized, err := ledger.NormalizePayers(txn.TotalAmount, txn.CurrencyCode, newPayers)
		if err != nil {
			return nil, err
		}
		txn.Payers = normalized
	}

	if err := s.store.UpdateTransaction(ctx, txn); err != nil {
		slog.Error("failed to update transaction", "transaction_id", id, "error", err)
		return nil, err
	}
	notify(s.notify)
	slog.Info("transaction updated", "transaction_id", id)
	return txn, nil
}

// Delete removes a transaction and its payers and splits.
func (s *TransactionService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return err
	}
	notify(s.notify)
	slog.Info("transaction deleted", "transaction_id", id)
	return nil
}

func payerIDs(payers []models.PayerContribution) []string {
	ids := make([]string, len(payers))
	for i, p := range payers {
		ids[i] = p.ParticipantID
	}
	return ids
}

// scalePayers rescales payer contributions to a new total through the
// same proportional reconcile splits use, so the payer-sum invariant
// holds exactly after an amount edit.
func scalePayers(payers []models.PayerContribution, newTotal decimal.Decimal, currencyCode string) ([]models.PayerContribution, error) {
	shares := make([]models.SplitShare, len(payers))
	for i, p := range payers {
		shares[i] = models.SplitShare{ParticipantID: p.ParticipantID, Amount: p.Amount}
	}
	scaled, err := ledger.ScaleSplits(shares, newTotal, currencyCode)
	if err != nil {
		return nil, err
	}
	out := make([]models.PayerContribution, len(scaled))
	for i, sh := range scaled {
		out[i] = models.PayerContribution{ParticipantID: sh.ParticipantID, Amount: sh.Amount}
	}
	return out, nil
}
