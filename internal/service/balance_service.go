package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/swisscoin/ledger/internal/ledger"
	"github.com/swisscoin/ledger/internal/money"
	"github.com/swisscoin/ledger/internal/storage"
)

// BalanceService answers every balance question by loading the relevant
// history and handing it to the pure engine. It also owns the debounced
// recompute worker: mutations mark the service dirty, and after a quiet
// interval the worker rebuilds every viewer's home summary and publishes
// the batch to an atomically swapped snapshot, so a burst of writes costs
// one recompute and reads never block on one.
type BalanceService struct {
	store    storage.Store
	debounce time.Duration

	dirty    chan struct{}
	snapshot atomic.Pointer[homeSnapshot]

	recomputeDuration prometheus.Histogram
}

type homeSnapshot struct {
	byViewer map[string]ledger.Summary
}

// NewBalanceService creates a BalanceService. reg may be nil to skip
// metric registration; Run must be started for the debounced snapshot to
// be maintained, otherwise every read computes fresh.
func NewBalanceService(store storage.Store, reg prometheus.Registerer, debounce time.Duration) *BalanceService {
	s := &BalanceService{
		store:    store,
		debounce: debounce,
		dirty:    make(chan struct{}, 1),
		recomputeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "swisscoin",
			Subsystem: "balances",
			Name:      "recompute_duration_seconds",
			Help:      "Time spent recomputing home summaries after mutations.",
		}),
	}
	if reg != nil {
		reg.MustRegister(s.recomputeDuration)
	}
	return s
}

// MarkDirty schedules a debounced recompute. Non-blocking; any number of
// marks inside one quiet interval collapse into a single recompute.
func (s *BalanceService) MarkDirty() {
	select {
	case s.dirty <- struct{}{}:
	default:
	}
}

// Run drives the recompute loop until ctx is cancelled. Every mark
// restarts the quiet interval.
func (s *BalanceService) Run(ctx context.Context) {
	timer := time.NewTimer(s.debounce)
	timer.Stop()
	defer timer.Stop()

	slog.Info("balance recompute worker started", "debounce", s.debounce)
	for {
		select {
		case <-ctx.Done():
			slog.Info("balance recompute worker stopped")
			return
		case <-s.dirty:
			timer.Reset(s.debounce)
		case <-timer.C:
			s.recomputeAll(ctx)
		}
	}
}

func (s *BalanceService) recomputeAll(ctx context.Context) {
	start := time.Now()
	participants, err := s.store.ListParticipants(ctx)
	if err != nil {
		slog.Error("recompute failed to list participants", "error", err)
		return
	}

	byViewer := make(map[string]ledger.Summary, len(participants))
	for _, p := range participants {
		summary, err := s.computeHomeSummary(ctx, p.ID)
		if err != nil {
			slog.Error("recompute failed", "viewer_id", p.ID, "error", err)
			return
		}
		byViewer[p.ID] = summary
	}
	s.snapshot.Store(&homeSnapshot{byViewer: byViewer})

	elapsed := time.Since(start)
	s.recomputeDuration.Observe(elapsed.Seconds())
	slog.Debug("home summaries recomputed", "viewers", len(byViewer), "duration_ms", elapsed.Milliseconds())
}

// PersonBalance is the viewer's standing against one person across their
// whole shared history, positive entries meaning the person owes the
// viewer.
func (s *BalanceService) PersonBalance(ctx context.Context, viewerID, personID string) (money.Balance, error) {
	if viewerID == personID {
		return nil, fmt.Errorf("%w: viewer and counterpart are the same participant", ErrInvalidInput)
	}
	if err := checkParticipants(ctx, s.store, viewerID, personID); err != nil {
		return nil, err
	}

	txns, err := s.store.ListTransactionsInvolving(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	settlements, err := s.store.ListSettlementsBetween(ctx, viewerID, personID)
	if err != nil {
		return nil, err
	}
	return ledger.AggregateBalance(derefTransactions(txns), derefSettlements(settlements), viewerID, personID), nil
}

// GroupBalances computes every member's standing within one group,
// restricted to the group's tagged history.
func (s *BalanceService) GroupBalances(ctx context.Context, groupID string) ([]ledger.MemberBalance, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	txns, err := s.store.ListTransactionsByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	settlements, err := s.store.ListSettlementsByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return ledger.GroupMemberBalances(group.MemberIDs, derefTransactions(txns), derefSettlements(settlements)), nil
}

// SubscriptionBalances computes every member's standing for a shared
// subscription under the simplified equal-share model.
func (s *BalanceService) SubscriptionBalances(ctx context.Context, subscriptionID string) ([]ledger.MemberBalance, error) {
	sub, err := s.store.GetSubscription(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	payments, err := s.store.ListSubscriptionPayments(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	settlements, err := s.store.ListSettlementsBySubscription(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	return ledger.SubscriptionMemberBalances(*sub, derefPayments(payments), derefSettlements(settlements)), nil
}

// HomeSummary returns the viewer's owed/owing rollup. A worker-published
// snapshot is served when it covers the viewer; otherwise the summary is
// computed on the spot.
func (s *BalanceService) HomeSummary(ctx context.Context, viewerID string) (ledger.Summary, error) {
	if err := checkParticipants(ctx, s.store, viewerID); err != nil {
		return ledger.Summary{}, err
	}
	if snap := s.snapshot.Load(); snap != nil {
		if summary, ok := snap.byViewer[viewerID]; ok {
			return summary, nil
		}
	}
	return s.computeHomeSummary(ctx, viewerID)
}

// CounterpartBalances returns the viewer's per-person balances, used by
// the settlement service to plan settle-all batches.
func (s *BalanceService) CounterpartBalances(ctx context.Context, viewerID string) ([]ledger.CounterpartBalance, error) {
	txns, err := s.store.ListTransactionsInvolving(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	settlements, err := s.store.ListSettlementsInvolving(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	byID := ledger.CounterpartBalances(viewerID, derefTransactions(txns), derefSettlements(settlements))

	out := make([]ledger.CounterpartBalance, 0, len(byID))
	for id, bal := range byID {
		out = append(out, ledger.CounterpartBalance{ParticipantID: id, Balance: bal})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ParticipantID < out[j].ParticipantID
	})
	return out, nil
}

func (s *BalanceService) computeHomeSummary(ctx context.Context, viewerID string) (ledger.Summary, error) {
	participants, err := s.store.ListParticipants(ctx)
	if err != nil {
		return ledger.Summary{}, err
	}
	others := make([]string, len(participants))
	for i, p := range participants {
		others[i] = p.ID
	}
	txns, err := s.store.ListTransactionsInvolving(ctx, viewerID)
	if err != nil {
		return ledger.Summary{}, err
	}
	settlements, err := s.store.ListSettlementsInvolving(ctx, viewerID)
	if err != nil {
		return ledger.Summary{}, err
	}
	return ledger.HomeSummary(viewerID, others, derefTransactions(txns), derefSettlements(settlements)), nil
}

var _ Notifier = (*BalanceService)(nil)
