// Package ledger implements the balance computation engine: split
// calculation, pairwise netting, settlement planning and balance
// aggregation. All functions are pure; they read nothing but their
// arguments and never touch storage, clocks or loggers. Amounts are
// decimal and every returned share is quantized to the currency's minor
// unit, so sums reconcile exactly rather than approximately.
package ledger

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/swisscoin/ledger/internal/models"
	"github.com/swisscoin/ledger/internal/money"
)

// Tolerances for user-entered inputs. Exact amounts may miss the total by
// one minor unit and percentages may miss 100 by a tenth of a point; both
// gaps come from users typing rounded values. Anything wider is a real
// mistake and is rejected.
var (
	amountTolerance  = decimal.New(1, -2) // 0.01
	percentTolerance = decimal.New(1, -1) // 0.1

	hundred = decimal.NewFromInt(100)
)

// SplitResult is the outcome of a split computation. Shares are sorted by
// participant id and sum exactly to the transaction total. Clamped lists
// participants whose adjusted share would have gone negative and was
// raised to zero; callers surface it as a warning, not an error.
type SplitResult struct {
	Shares  []models.SplitShare
	Clamped []string
}

// ComputeSplits derives per-participant shares for a transaction total.
//
// The method selects how inputs are interpreted:
//
//	equal       inputs ignored; total divided evenly
//	amount      inputs are exact currency amounts per participant
//	percentage  inputs are percentages summing to 100
//	shares      inputs are non-negative integer share counts
//	adjustment  inputs are signed deltas applied on top of an equal split;
//	            participants absent from inputs absorb the difference
//
// Whatever the method, the returned shares are quantized to the currency's
// minor unit and sum exactly to total. Remainder minor units left over by
// division are assigned one at a time in ascending participant-id order,
// so the same inputs always yield the same shares.
func ComputeSplits(total decimal.Decimal, currencyCode string, method models.SplitMethod, participants []string, inputs map[string]decimal.Decimal) (SplitResult, error) {
	units := money.MinorUnits(currencyCode)

	ordered, err := orderedParticipants(participants)
	if err != nil {
		return SplitResult{}, err
	}
	if total.IsNegative() {
		return SplitResult{}, fmt.Errorf("%w: total %s is negative", ErrInvalidSplitInput, total)
	}
	if total.Exponent() < -units && !total.Equal(total.Round(units)) {
		return SplitResult{}, fmt.Errorf("%w: total %s has sub-unit precision for %s", ErrInvalidSplitInput, total, currencyCode)
	}

	if method != models.SplitEqual {
		if err := checkInputKeys(ordered, inputs); err != nil {
			return SplitResult{}, err
		}
	}

	switch method {
	case models.SplitEqual:
		return SplitResult{Shares: equalShares(total, units, ordered)}, nil
	case models.SplitAmount:
		return amountShares(total, units, ordered, inputs)
	case models.SplitPercentage:
		return percentageShares(total, units, ordered, inputs)
	case models.SplitShares:
		return countShares(total, units, ordered, inputs)
	case models.SplitAdjustment:
		return adjustmentShares(total, units, ordered, inputs)
	default:
		return SplitResult{}, fmt.Errorf("%w: unknown split method %q", ErrInvalidSplitInput, method)
	}
}

// ScaleSplits rescales existing shares proportionally to a new total,
// preserving each participant's fraction of the old total. Used when a
// transaction's amount is edited without re-entering the split. Raw
// inputs are carried over unchanged so the original entry survives a
// later re-edit. If the old shares sum to zero the new total is divided
// equally instead.
func ScaleSplits(splits []models.SplitShare, newTotal decimal.Decimal, currencyCode string) ([]models.SplitShare, error) {
	if newTotal.IsNegative() {
		return nil, fmt.Errorf("%w: total %s is negative", ErrInvalidSplitInput, newTotal)
	}
	units := money.MinorUnits(currencyCode)
	exp := -units
	if newTotal.Exponent() < exp && !newTotal.Equal(newTotal.Round(units)) {
		return nil, fmt.Errorf("%w: total %s has sub-unit precision for %s", ErrInvalidSplitInput, newTotal, currencyCode)
	}

	ids := make([]string, 0, len(splits))
	raw := make(map[string]decimal.Decimal, len(splits))
	old := make(map[string]decimal.Decimal, len(splits))
	for _, s := range splits {
		ids = append(ids, s.ParticipantID)
		raw[s.ParticipantID] = s.RawInput
		old[s.ParticipantID] = s.Amount
	}
	ordered, err := orderedParticipants(ids)
	if err != nil {
		return nil, err
	}

	oldTotal := decimal.Zero
	for _, amt := range old {
		oldTotal = oldTotal.Add(amt)
	}

	var scaled []models.SplitShare
	if oldTotal.IsZero() {
		scaled = equalShares(newTotal, units, ordered)
	} else {
		scaled = make([]models.SplitShare, len(ordered))
		for i, id := range ordered {
			scaled[i] = models.SplitShare{
				ParticipantID: id,
				Amount:        old[id].Mul(newTotal).Div(oldTotal).Round(units),
			}
		}
		reconcile(scaled, newTotal, units)
	}
	for i := range scaled {
		scaled[i].RawInput = raw[scaled[i].ParticipantID]
	}
	return scaled, nil
}

// NormalizePayers validates payer contributions against the transaction
// total and returns them sorted by participant id. A single payer with a
// zero amount is shorthand for "paid the whole total" and is filled in.
// Contributions may miss the total by up to one minor unit; the gap is
// folded into the largest contribution so the stored payers always sum
// exactly.
func NormalizePayers(total decimal.Decimal, currencyCode string, payers []models.PayerContribution) ([]models.PayerContribution, error) {
	if len(payers) == 0 {
		return nil, fmt.Errorf("%w: at least one payer is required", ErrInvalidSplitInput)
	}

	ids := make([]string, 0, len(payers))
	for _, p := range payers {
		ids = append(ids, p.ParticipantID)
	}
	ordered, err := orderedParticipants(ids)
	if err != nil {
		return nil, err
	}

	if len(payers) == 1 && payers[0].Amount.IsZero() {
		return []models.PayerContribution{{ParticipantID: payers[0].ParticipantID, Amount: total}}, nil
	}

	units := money.MinorUnits(currencyCode)
	byID := make(map[string]decimal.Decimal, len(payers))
	sum := decimal.Zero
	for _, p := range payers {
		if p.Amount.IsNegative() {
			return nil, fmt.Errorf("%w: payer %s has negative contribution %s", ErrInvalidSplitInput, p.ParticipantID, p.Amount)
		}
		if p.Amount.Exponent() < -units && !p.Amount.Equal(p.Amount.Round(units)) {
			return nil, fmt.Errorf("%w: contribution %s for payer %s has sub-unit precision", ErrInvalidSplitInput, p.Amount, p.ParticipantID)
		}
		byID[p.ParticipantID] = p.Amount
		sum = sum.Add(p.Amount)
	}

	diff := total.Sub(sum)
	if diff.Abs().GreaterThan(amountTolerance) {
		return nil, fmt.Errorf("%w: payer contributions total %s, expected %s", ErrInvalidSplitInput, sum, total)
	}
	if !diff.IsZero() {
		largest := ordered[0]
		for _, id := range ordered[1:] {
			if byID[id].GreaterThan(byID[largest]) {
				largest = id
			}
		}
		byID[largest] = byID[largest].Add(diff)
	}

	out := make([]models.PayerContribution, len(ordered))
	for i, id := range ordered {
		out[i] = models.PayerContribution{ParticipantID: id, Amount: byID[id]}
	}
	return out, nil
}

// equalShares divides total evenly, handing each leftover minor unit to
// the earliest participants in id order. 100.00 across three people gives
// 33.34, 33.33, 33.33.
func equalShares(total decimal.Decimal, units int32, ordered []string) []models.SplitShare {
	n := decimal.NewFromInt(int64(len(ordered)))
	base := total.Div(n).RoundDown(units)
	unit := decimal.New(1, -units)
	extra := total.Sub(base.Mul(n)).Div(unit).IntPart()

	shares := make([]models.SplitShare, len(ordered))
	for i, id := range ordered {
		amt := base
		if int64(i) < extra {
			amt = amt.Add(unit)
		}
		shares[i] = models.SplitShare{ParticipantID: id, Amount: amt}
	}
	return shares
}

// amountShares takes exact per-participant amounts. The sum may miss the
// total by at most one minor unit (a typing artifact); the gap is folded
// into the largest share. A wider gap is the user's error and is rejected
// rather than silently redistributed.
func amountShares(total decimal.Decimal, units int32, ordered []string, inputs map[string]decimal.Decimal) (SplitResult, error) {
	shares := make([]models.SplitShare, len(ordered))
	sum := decimal.Zero
	for i, id := range ordered {
		amt, ok := inputs[id]
		if !ok {
			return SplitResult{}, fmt.Errorf("%w: missing amount for participant %s", ErrInvalidSplitInput, id)
		}
		if amt.IsNegative() {
			return SplitResult{}, fmt.Errorf("%w: amount %s for participant %s is negative", ErrInvalidSplitInput, amt, id)
		}
		if amt.Exponent() < -units && !amt.Equal(amt.Round(units)) {
			return SplitResult{}, fmt.Errorf("%w: amount %s for participant %s has sub-unit precision", ErrInvalidSplitInput, amt, id)
		}
		shares[i] = models.SplitShare{ParticipantID: id, Amount: amt, RawInput: amt}
		sum = sum.Add(amt)
	}

	diff := total.Sub(sum)
	if diff.Abs().GreaterThan(amountTolerance) {
		return SplitResult{}, fmt.Errorf("%w: amounts total %s, expected %s", ErrInvalidSplitInput, sum, total)
	}
	if !diff.IsZero() {
		largest := 0
		for i := range shares {
			if shares[i].Amount.GreaterThan(shares[largest].Amount) {
				largest = i
			}
		}
		shares[largest].Amount = shares[largest].Amount.Add(diff)
	}
	return SplitResult{Shares: shares}, nil
}

// percentageShares converts percentages to amounts. Percentages must sum
// to 100 within a tenth of a point; each share is total*pct/100 rounded to
// the minor unit, then the rounding residue is reconciled one unit at a
// time so the shares sum exactly to the total.
func percentageShares(total decimal.Decimal, units int32, ordered []string, inputs map[string]decimal.Decimal) (SplitResult, error) {
	sum := decimal.Zero
	for _, id := range ordered {
		pct, ok := inputs[id]
		if !ok {
			return SplitResult{}, fmt.Errorf("%w: missing percentage for participant %s", ErrInvalidSplitInput, id)
		}
		if pct.IsNegative() {
			return SplitResult{}, fmt.Errorf("%w: percentage %s for participant %s is negative", ErrInvalidSplitInput, pct, id)
		}
		sum = sum.Add(pct)
	}
	if sum.Sub(hundred).Abs().GreaterThan(percentTolerance) {
		return SplitResult{}, fmt.Errorf("%w: percentages total %s, expected 100", ErrInvalidSplitInput, sum)
	}

	shares := make([]models.SplitShare, len(ordered))
	for i, id := range ordered {
		pct := inputs[id]
		shares[i] = models.SplitShare{
			ParticipantID: id,
			Amount:        total.Mul(pct).Div(hundred).Round(units),
			RawInput:      pct,
		}
	}
	reconcile(shares, total, units)
	return SplitResult{Shares: shares}, nil
}

// countShares splits proportionally to integer share counts: with counts
// 2/1/1 of 100.00, the holder of 2 shares owes 50.00 and the others 25.00
// each. The counts must be non-negative integers summing above zero.
func countShares(total decimal.Decimal, units int32, ordered []string, inputs map[string]decimal.Decimal) (SplitResult, error) {
	counts := make([]decimal.Decimal, len(ordered))
	totalShares := decimal.Zero
	for i, id := range ordered {
		c, ok := inputs[id]
		if !ok {
			return SplitResult{}, fmt.Errorf("%w: missing share count for participant %s", ErrInvalidSplitInput, id)
		}
		if c.IsNegative() || !c.IsInteger() {
			return SplitResult{}, fmt.Errorf("%w: share count %s for participant %s must be a non-negative integer", ErrInvalidSplitInput, c, id)
		}
		counts[i] = c
		totalShares = totalShares.Add(c)
	}
	if totalShares.IsZero() {
		return SplitResult{}, fmt.Errorf("%w: total share count is zero", ErrInvalidSplitInput)
	}

	shares := make([]models.SplitShare, len(ordered))
	for i, id := range ordered {
		shares[i] = models.SplitShare{
			ParticipantID: id,
			Amount:        total.Mul(counts[i]).Div(totalShares).Round(units),
			RawInput:      counts[i],
		}
	}
	reconcile(shares, total, units)
	return SplitResult{Shares: shares}, nil
}

// adjustmentShares starts from an equal split and applies signed deltas.
// Participants absent from inputs are unadjusted and absorb the deltas'
// net effect so the total is preserved. An adjusted share that would go
// negative is clamped to zero and reported; if the deltas cannot be
// absorbed without driving an unadjusted share negative, or every
// participant is adjusted and the deltas do not cancel, the input is
// rejected.
func adjustmentShares(total decimal.Decimal, units int32, ordered []string, inputs map[string]decimal.Decimal) (SplitResult, error) {
	for id, adj := range inputs {
		if adj.Exponent() < -units && !adj.Equal(adj.Round(units)) {
			return SplitResult{}, fmt.Errorf("%w: adjustment %s for participant %s has sub-unit precision", ErrInvalidSplitInput, adj, id)
		}
	}

	shares := equalShares(total, units, ordered)

	var clamped []string
	var unadjusted []int
	for i := range shares {
		adj, ok := inputs[shares[i].ParticipantID]
		if !ok {
			unadjusted = append(unadjusted, i)
			continue
		}
		shares[i].RawInput = adj
		shares[i].Amount = shares[i].Amount.Add(adj)
		if shares[i].Amount.IsNegative() {
			shares[i].Amount = decimal.Zero
			clamped = append(clamped, shares[i].ParticipantID)
		}
	}

	remainder := total
	for i := range shares {
		remainder = remainder.Sub(shares[i].Amount)
	}

	if len(unadjusted) == 0 {
		if !remainder.IsZero() {
			return SplitResult{}, fmt.Errorf("%w: adjustments change the total by %s", ErrInvalidSplitInput, remainder.Neg())
		}
		return SplitResult{Shares: shares, Clamped: clamped}, nil
	}

	// Spread the remainder over the unadjusted shares, then settle the
	// sub-unit residue one minor unit at a time in id order.
	per := remainder.Div(decimal.NewFromInt(int64(len(unadjusted)))).Truncate(units)
	residue := remainder
	for _, i := range unadjusted {
		shares[i].Amount = shares[i].Amount.Add(per)
		residue = residue.Sub(per)
	}
	unit := decimal.New(1, -units)
	for k := 0; !residue.IsZero(); k = (k + 1) % len(unadjusted) {
		i := unadjusted[k]
		if residue.IsPositive() {
			shares[i].Amount = shares[i].Amount.Add(unit)
			residue = residue.Sub(unit)
		} else {
			shares[i].Amount = shares[i].Amount.Sub(unit)
			residue = residue.Add(unit)
		}
	}
	for _, i := range unadjusted {
		if shares[i].Amount.IsNegative() {
			return SplitResult{}, fmt.Errorf("%w: adjustments drive participant %s below zero", ErrInvalidSplitInput, shares[i].ParticipantID)
		}
	}
	return SplitResult{Shares: shares, Clamped: clamped}, nil
}

// reconcile nudges rounded shares until they sum exactly to total, one
// minor unit at a time in ascending participant-id order. Shares must be
// non-negative; a unit is never taken from a zero share.
func reconcile(shares []models.SplitShare, total decimal.Decimal, units int32) {
	unit := decimal.New(1, -units)
	diff := total
	for i := range shares {
		diff = diff.Sub(shares[i].Amount)
	}
	for i := 0; !diff.IsZero(); i = (i + 1) % len(shares) {
		if diff.IsPositive() {
			shares[i].Amount = shares[i].Amount.Add(unit)
			diff = diff.Sub(unit)
		} else if shares[i].Amount.IsPositive() {
			shares[i].Amount = shares[i].Amount.Sub(unit)
			diff = diff.Add(unit)
		}
	}
}

// orderedParticipants sorts ids ascending and rejects empty or duplicate
// entries. Every split computation works in this order, which is what
// makes remainder assignment deterministic.
func orderedParticipants(ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: at least one participant is required", ErrInvalidSplitInput)
	}
	seen := make(map[string]struct{}, len(ids))
	ordered := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			return nil, fmt.Errorf("%w: empty participant id", ErrInvalidSplitInput)
		}
		if _, ok := seen[id]; ok {
			return nil, fmt.Errorf("%w: duplicate participant %s", ErrInvalidSplitInput, id)
		}
		seen[id] = struct{}{}
		ordered = append(ordered, id)
	}
	sort.Strings(ordered)
	return ordered, nil
}

func checkInputKeys(ordered []string, inputs map[string]decimal.Decimal) error {
	known := make(map[string]struct{}, len(ordered))
	for _, id := range ordered {
		known[id] = struct{}{}
	}
	for id := range inputs {
		if _, ok := known[id]; !ok {
			return fmt.Errorf("%w: input for unknown participant %s", ErrInvalidSplitInput, id)
		}
	}
	return nil
}
