// Package models defines the core domain models for squadledger.
//
// # Ledger Models
//
// A squad's money history is a list of immutable Transactions:
//   - Transaction: one monetary event, tagged by Kind (EXPENSE, ITEMIZED_EXPENSE, SETTLEMENT)
//   - Share: what one non-payer member owes the payer for a transaction
//   - ItemLine / Assignment: the per-unit breakdown of an itemized bill
//
// NetBalance is derived from the transaction list and is never edited by hand.
// Ledger bundles the transaction list, its balances and the version token used
// for conditional commits.
//
// # Membership Models
//
//   - Squad: a named group of members
//   - Member: an identity (email) with display attributes and a Role
//
// # Design Principles
//
// 1. **Integer money**: all amounts are minor units (cents) held in int64
// 2. **Full replacement**: transactions are replaced or removed, never patched
// 3. **IDs, not pointers**: relationships use identity strings
package models
