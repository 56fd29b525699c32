// Package models defines the core domain models for settleup.
//
// # Stored Models
//
// These are created by callers and persisted by a storage.Store:
//   - Group and GroupMember: who shares expenses, and under which display name
//   - Expense and Split: one recorded cost and each participant's share of it
//   - Payment: a recorded settle-up transfer between two members
//
// # Derived Models
//
// These are recomputed on demand by the calculator package and never persisted:
//   - NetBalance: a viewer's signed balance against each counterparty in one group
//   - FriendBalance: a viewer's balance with one person across every shared group
//   - Settlement: a proposed payment instruction that helps zero a group's balances
//
// # Design Principles
//
//  1. **Fixed-point money**: every amount is a money.Amount (integer cents)
//  2. **Avoid circular references**: use ID strings instead of pointers for relationships
//  3. **Sparse balances**: a zero balance is represented by omission
package models
