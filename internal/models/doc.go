// Package models defines the core domain models for the chama service.
//
// # Entities
//
//   - Chama / ChamaMember: the savings group and its membership records
//   - Cycle / CycleMember: one rotating round and each member's turn in it
//   - Contribution: one member's obligation for one period of a cycle
//   - Payout: the disbursement to the turn-order recipient of a period
//   - SavingsAccount / SavingsTransaction: the per-user savings ledger
//   - WalletTransaction: append-only audit trail of every money movement
//   - Loan / LoanGuarantor / LoanPayment: guaranteed member loans
//   - Notification: in-app notification feed entries
//
// # Conventions
//
//  1. Amounts and rates are decimal.Decimal; never float64.
//  2. Relationships use ID strings instead of pointers.
//  3. Nullable columns are pointer fields (a nil CustomSavingsAmount means
//     "use the cycle default", not zero).
package models
