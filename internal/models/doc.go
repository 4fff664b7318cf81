// Package models defines the plain record shapes of the Swiss Coin ledger.
//
// # Models
//
//   - Participant: a person referenced by opaque id everywhere else
//   - Transaction: a shared expense with payer contributions and split shares
//   - PayerContribution: the amount one participant actually paid
//   - SplitShare: the amount one participant owes, plus the raw input it
//     was derived from
//   - Settlement: a recorded payment between two participants
//   - Group: a named set of participants that transactions can be tagged with
//   - Subscription: a recurring shared expense with equal-share membership
//   - SubscriptionPayment: one billing-cycle payment toward a subscription
//
// # Design Principles
//
//  1. **Records, not objects**: models carry data and trivial accessors only;
//     all computation lives in the ledger package.
//  2. **Ids, not pointers**: relationships are id strings resolved through
//     the storage layer, never live references between records.
//  3. **Decimal amounts**: every monetary field is a decimal.Decimal; binary
//     floats are never stored.
//  4. **No ambient state**: records never embed a "current user" or default
//     currency; callers pass the viewer id and concrete currency codes.
package models
