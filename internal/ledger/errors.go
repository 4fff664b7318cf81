package ledger

import "errors"

// Sentinel errors surfaced by the engine. Callers match with errors.Is;
// wrapped messages carry the actionable detail ("percentages must total
// 100"). Zero-divisor states (zero shares excepted, zero subscriber count,
// zero total credit) are not errors: they resolve to zero results.
var (
	// ErrInvalidSplitInput means the split method's inputs do not reconcile
	// to the transaction total: wrong percentage sum, wrong exact-amount
	// sum, zero total shares, or malformed per-participant input. Nothing
	// is persisted; the caller re-prompts the user.
	ErrInvalidSplitInput = errors.New("invalid split input")

	// ErrNoOutstandingBalance means a settlement was requested against a
	// pair whose balance is already within the settled threshold.
	ErrNoOutstandingBalance = errors.New("no outstanding balance")

	// ErrInvalidAmount means the settlement amount is not positive after
	// capping against the outstanding balance.
	ErrInvalidAmount = errors.New("invalid settlement amount")
)
