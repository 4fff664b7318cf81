// Package memory provides an in-memory implementation of storage.Store,
// used by tests and as a zero-dependency backend for ephemeral runs. All
// records live in id-keyed maps behind a single RWMutex; every read and
// write copies, so callers can never mutate the store through a returned
// record.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/swisscoin/ledger/internal/models"
	"github.com/swisscoin/ledger/internal/storage"
)

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

// Store keeps every record in memory. The zero value is not usable; call
// New.
type Store struct {
	mu            sync.RWMutex
	participants  map[string]models.Participant
	transactions  map[string]models.Transaction
	settlements   map[string]models.Settlement
	groups        map[string]models.Group
	subscriptions map[string]models.Subscription
	payments      map[string]models.SubscriptionPayment
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{
		participants:  make(map[string]models.Participant),
		transactions:  make(map[string]models.Transaction),
		settlements:   make(map[string]models.Settlement),
		groups:        make(map[string]models.Group),
		subscriptions: make(map[string]models.Subscription),
		payments:      make(map[string]models.SubscriptionPayment),
	}
}

// Ping always succeeds for the in-memory store.
func (s *Store) Ping(context.Context) error {
	return nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}

func (s *Store) CreateParticipant(_ context.Context, p *models.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt == 0 {
		p.CreatedAt = time.Now().Unix()
	}
	s.participants[p.ID] = *p
	return nil
}

func (s *Store) GetParticipant(_ context.Context, id string) (*models.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.participants[id]
	if !ok {
		return nil, fmt.Errorf("participant %s: %w", id, storage.ErrNotFound)
	}
	return &p, nil
}

func (s *Store) ListParticipants(_ context.Context) ([]*models.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Participant, 0, len(s.participants))
	for _, p := range s.participants {
		p := p
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DisplayName != out[j].DisplayName {
			return out[i].DisplayName < out[j].DisplayName
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) DeleteParticipant(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.participants[id]; !ok {
		return fmt.Errorf("participant %s: %w", id, storage.ErrNotFound)
	}
	for _, txn := range s.transactions {
		if txn.Involves(id) {
			return fmt.Errorf("participant %s has transactions: %w", id, storage.ErrInUse)
		}
	}
	for _, st := range s.settlements {
		if st.FromParticipantID == id || st.ToParticipantID == id {
			return fmt.Errorf("participant %s has settlements: %w", id, storage.ErrInUse)
		}
	}
	for _, pm := range s.payments {
		if pm.PayerID == id {
			return fmt.Errorf("participant %s has subscription payments: %w", id, storage.ErrInUse)
		}
	}
	delete(s.participants, id)
	// Memberships go with the participant.
	for gid, g := range s.groups {
		g.MemberIDs = removeID(g.MemberIDs, id)
		s.groups[gid] = g
	}
	for sid, sub := range s.subscriptions {
		sub.MemberIDs = removeID(sub.MemberIDs, id)
		s.subscriptions[sid] = sub
	}
	return nil
}

func (s *Store) CreateTransaction(_ context.Context, txn *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if txn.ID == "" {
		txn.ID = uuid.New().String()
	}
	if txn.CreatedAt == 0 {
		txn.CreatedAt = time.Now().Unix()
	}
	s.transactions[txn.ID] = cloneTransaction(*txn)
	return nil
}

func (s *Store) GetTransaction(_ context.Context, id string) (*models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	txn, ok := s.transactions[id]
	if !ok {
		return nil, fmt.Errorf("transaction %s: %w", id, storage.ErrNotFound)
	}
	out := cloneTransaction(txn)
	return &out, nil
}

func (s *Store) UpdateTransaction(_ context.Context, txn *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.transactions[txn.ID]; !ok {
		return fmt.Errorf("transaction %s: %w", txn.ID, storage.ErrNotFound)
	}
	s.transactions[txn.ID] = cloneTransaction(*txn)
	return nil
}

func (s *Store) DeleteTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.transactions[id]; !ok {
		return fmt.Errorf("transaction %s: %w", id, storage.ErrNotFound)
	}
	delete(s.transactions, id)
	return nil
}

func (s *Store) ListTransactions(_ context.Context) ([]*models.Transaction, error) {
	return s.listTransactions(func(models.Transaction) bool { return true })
}

func (s *Store) ListTransactionsInvolving(_ context.Context, participantID string) ([]*models.Transaction, error) {
	return s.listTransactions(func(txn models.Transaction) bool {
		return txn.Involves(participantID)
	})
}

func (s *Store) ListTransactionsByGroup(_ context.Context, groupID string) ([]*models.Transaction, error) {
	return s.listTransactions(func(txn models.Transaction) bool {
		return txn.GroupID == groupID
	})
}

func (s *Store) listTransactions(match func(models.Transaction) bool) ([]*models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Transaction
	for _, txn := range s.transactions {
		if !match(txn) {
			continue
		}
		c := cloneTransaction(txn)
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) CreateSettlements(_ context.Context, settlements []*models.Settlement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Single lock makes the batch all-or-nothing; assign ids first so a
	// duplicate in the input surfaces before anything is written.
	seen := make(map[string]struct{}, len(settlements))
	for _, st := range settlements {
		if st.ID == "" {
			st.ID = uuid.New().String()
		}
		if st.CreatedAt == 0 {
			st.CreatedAt = time.Now().Unix()
		}
		if _, dup := seen[st.ID]; dup {
			return fmt.Errorf("duplicate settlement id %s", st.ID)
		}
		if _, exists := s.settlements[st.ID]; exists {
			return fmt.Errorf("settlement id %s already exists", st.ID)
		}
		seen[st.ID] = struct{}{}
	}
	for _, st := range settlements {
		s.settlements[st.ID] = *st
	}
	return nil
}

func (s *Store) GetSettlement(_ context.Context, id string) (*models.Settlement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.settlements[id]
	if !ok {
		return nil, fmt.Errorf("settlement %s: %w", id, storage.ErrNotFound)
	}
	return &st, nil
}

func (s *Store) DeleteSettlement(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.settlements[id]; !ok {
		return fmt.Errorf("settlement %s: %w", id, storage.ErrNotFound)
	}
	delete(s.settlements, id)
	return nil
}

func (s *Store) ListSettlements(_ context.Context) ([]*models.Settlement, error) {
	return s.listSettlements(func(models.Settlement) bool { return true })
}

func (s *Store) ListSettlementsInvolving(_ context.Context, participantID string) ([]*models.Settlement, error) {
	return s.listSettlements(func(st models.Settlement) bool {
		return st.FromParticipantID == participantID || st.ToParticipantID == participantID
	})
}

func (s *Store) ListSettlementsBetween(_ context.Context, a, b string) ([]*models.Settlement, error) {
	return s.listSettlements(func(st models.Settlement) bool {
		return st.Involves(a, b)
	})
}

func (s *Store) ListSettlementsByGroup(_ context.Context, groupID string) ([]*models.Settlement, error) {
	return s.listSettlements(func(st models.Settlement) bool {
		return st.GroupID == groupID
	})
}

func (s *Store) ListSettlementsBySubscription(_ context.Context, subscriptionID string) ([]*models.Settlement, error) {
	return s.listSettlements(func(st models.Settlement) bool {
		return st.SubscriptionID == subscriptionID
	})
}

func (s *Store) listSettlements(match func(models.Settlement) bool) ([]*models.Settlement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Settlement
	for _, st := range s.settlements {
		if !match(st) {
			continue
		}
		st := st
		out = append(out, &st)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) CreateGroup(_ context.Context, g *models.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	if g.CreatedAt == 0 {
		g.CreatedAt = time.Now().Unix()
	}
	s.groups[g.ID] = cloneGroup(*g)
	return nil
}

func (s *Store) GetGroup(_ context.Context, id string) (*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.groups[id]
	if !ok {
		return nil, fmt.Errorf("group %s: %w", id, storage.ErrNotFound)
	}
	out := cloneGroup(g)
	return &out, nil
}

func (s *Store) ListGroups(_ context.Context) ([]*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Group, 0, len(s.groups))
	for _, g := range s.groups {
		c := cloneGroup(g)
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) DeleteGroup(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.groups[id]; !ok {
		return fmt.Errorf("group %s: %w", id, storage.ErrNotFound)
	}
	delete(s.groups, id)
	// Tagged records survive the group, untagged.
	for tid, txn := range s.transactions {
		if txn.GroupID == id {
			txn.GroupID = ""
			s.transactions[tid] = txn
		}
	}
	for sid, st := range s.settlements {
		if st.GroupID == id {
			st.GroupID = ""
			s.settlements[sid] = st
		}
	}
	return nil
}

func (s *Store) CreateSubscription(_ context.Context, sub *models.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}
	if sub.CreatedAt == 0 {
		sub.CreatedAt = time.Now().Unix()
	}
	s.subscriptions[sub.ID] = cloneSubscription(*sub)
	return nil
}

func (s *Store) GetSubscription(_ context.Context, id string) (*models.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.subscriptions[id]
	if !ok {
		return nil, fmt.Errorf("subscription %s: %w", id, storage.ErrNotFound)
	}
	out := cloneSubscription(sub)
	return &out, nil
}

func (s *Store) ListSubscriptions(_ context.Context) ([]*models.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Subscription, 0, len(s.subscriptions))
	for _, sub := range s.subscriptions {
		c := cloneSubscription(sub)
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) DeleteSubscription(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subscriptions[id]; !ok {
		return fmt.Errorf("subscription %s: %w", id, storage.ErrNotFound)
	}
	delete(s.subscriptions, id)
	for pid, pm := range s.payments {
		if pm.SubscriptionID == id {
			delete(s.payments, pid)
		}
	}
	for sid, st := range s.settlements {
		if st.SubscriptionID == id {
			st.SubscriptionID = ""
			s.settlements[sid] = st
		}
	}
	return nil
}

func (s *Store) CreateSubscriptionPayment(_ context.Context, payment *models.SubscriptionPayment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subscriptions[payment.SubscriptionID]; !ok {
		return fmt.Errorf("subscription %s: %w", payment.SubscriptionID, storage.ErrNotFound)
	}
	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}
	if payment.CreatedAt == 0 {
		payment.CreatedAt = time.Now().Unix()
	}
	s.payments[payment.ID] = *payment
	return nil
}

func (s *Store) ListSubscriptionPayments(_ context.Context, subscriptionID string) ([]*models.SubscriptionPayment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.SubscriptionPayment
	for _, pm := range s.payments {
		if pm.SubscriptionID != subscriptionID {
			continue
		}
		pm := pm
		out = append(out, &pm)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func cloneTransaction(txn models.Transaction) models.Transaction {
	txn.Payers = append([]models.PayerContribution(nil), txn.Payers...)
	txn.Splits = append([]models.SplitShare(nil), txn.Splits...)
	return txn
}

func cloneGroup(g models.Group) models.Group {
	g.MemberIDs = append([]string(nil), g.MemberIDs...)
	return g
}

func cloneSubscription(sub models.Subscription) models.Subscription {
	sub.MemberIDs = append([]string(nil), sub.MemberIDs...)
	return sub
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
