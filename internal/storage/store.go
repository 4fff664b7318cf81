// Package storage defines the persistence boundary of the ledger. The
// engine consumes plain record snapshots; implementations only store and
// retrieve them, never compute balances.
package storage

import (
	"context"
	"errors"

	"github.com/swisscoin/ledger/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
// Implementations wrap it with the record's kind and id.
var ErrNotFound = errors.New("not found")

// ErrInUse is returned when a delete would orphan records that still
// reference the target, such as removing a participant with history.
var ErrInUse = errors.New("still referenced")

// Store is the persistence interface shared by the SQLite and in-memory
// backends. All amounts are decimals; implementations must round-trip
// them exactly. Listing methods return records in descending date order
// unless stated otherwise.
type Store interface {
	// CreateParticipant persists a new participant, assigning ID and
	// CreatedAt when unset.
	CreateParticipant(ctx context.Context, p *models.Participant) error

	// GetParticipant retrieves a participant by id.
	GetParticipant(ctx context.Context, id string) (*models.Participant, error)

	// ListParticipants returns all participants ordered by display name.
	ListParticipants(ctx context.Context) ([]*models.Participant, error)

	// DeleteParticipant removes a participant. Fails with ErrInUse while
	// transactions or settlements still reference them.
	DeleteParticipant(ctx context.Context, id string) error

	// CreateTransaction persists a transaction with its payers and splits
	// as one atomic write, assigning ID and CreatedAt when unset.
	CreateTransaction(ctx context.Context, txn *models.Transaction) error

	// GetTransaction retrieves a transaction by id, payers and splits
	// included.
	GetTransaction(ctx context.Context, id string) (*models.Transaction, error)

	// UpdateTransaction replaces a transaction and its payers and splits
	// wholesale, atomically.
	UpdateTransaction(ctx context.Context, txn *models.Transaction) error

	// DeleteTransaction removes a transaction and its payers and splits.
	DeleteTransaction(ctx context.Context, id string) error

	// ListTransactions returns every transaction.
	ListTransactions(ctx context.Context) ([]*models.Transaction, error)

	// ListTransactionsInvolving returns transactions where the participant
	// appears as a payer or split owner.
	ListTransactionsInvolving(ctx context.Context, participantID string) ([]*models.Transaction, error)

	// ListTransactionsByGroup returns the transactions tagged with a group.
	ListTransactionsByGroup(ctx context.Context, groupID string) ([]*models.Transaction, error)

	// CreateSettlements persists a batch of settlements atomically: either
	// every record commits or none do. IDs and CreatedAt are assigned when
	// unset.
	CreateSettlements(ctx context.Context, settlements []*models.Settlement) error

	// GetSettlement retrieves a settlement by id.
	GetSettlement(ctx context.Context, id string) (*models.Settlement, error)

	// DeleteSettlement removes a settlement by id.
	DeleteSettlement(ctx context.Context, id string) error

	// ListSettlements returns every settlement.
	ListSettlements(ctx context.Context) ([]*models.Settlement, error)

	// ListSettlementsInvolving returns settlements where the participant is
	// on either end.
	ListSettlementsInvolving(ctx context.Context, participantID string) ([]*models.Settlement, error)

	// ListSettlementsBetween returns settlements between two participants
	// in either direction.
	ListSettlementsBetween(ctx context.Context, a, b string) ([]*models.Settlement, error)

	// ListSettlementsByGroup returns the settlements tagged with a group.
	ListSettlementsByGroup(ctx context.Context, groupID string) ([]*models.Settlement, error)

	// ListSettlementsBySubscription returns the settlements tagged with a
	// subscription.
	ListSettlementsBySubscription(ctx context.Context, subscriptionID string) ([]*models.Settlement, error)

	// CreateGroup persists a group and its member list.
	CreateGroup(ctx context.Context, g *models.Group) error

	// GetGroup retrieves a group by id, members included.
	GetGroup(ctx context.Context, id string) (*models.Group, error)

	// ListGroups returns all groups ordered by name.
	ListGroups(ctx context.Context) ([]*models.Group, error)

	// DeleteGroup removes a group; transactions and settlements tagged
	// with it are untagged, not deleted.
	DeleteGroup(ctx context.Context, id string) error

	// CreateSubscription persists a subscription and its member list.
	CreateSubscription(ctx context.Context, sub *models.Subscription) error

	// GetSubscription retrieves a subscription by id, members included.
	GetSubscription(ctx context.Context, id string) (*models.Subscription, error)

	// ListSubscriptions returns all subscriptions ordered by name.
	ListSubscriptions(ctx context.Context) ([]*models.Subscription, error)

	// DeleteSubscription removes a subscription and its payments;
	// settlements tagged with it are untagged.
	DeleteSubscription(ctx context.Context, id string) error

	// CreateSubscriptionPayment records a payment against a subscription.
	CreateSubscriptionPayment(ctx context.Context, payment *models.SubscriptionPayment) error

	// ListSubscriptionPayments returns a subscription's payments.
	ListSubscriptionPayments(ctx context.Context, subscriptionID string) ([]*models.SubscriptionPayment, error)

	// Ping verifies the backing store is reachable, for health checks.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
