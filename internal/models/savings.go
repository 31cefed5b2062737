package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SavingsAccount holds one user's savings balance. The balance is only
// ever changed by the ledger, which bumps Version on every write.
type SavingsAccount struct {
	ID        string
	UserID    string
	Balance   decimal.Decimal
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

type SavingsDirection string

const (
	SavingsCredit SavingsDirection = "credit"
	SavingsDebit  SavingsDirection = "debit"
)

type SavingsReason string

const (
	ReasonContribution SavingsReason = "contribution"
	ReasonLoan         SavingsReason = "loan"
	ReasonManual       SavingsReason = "manual"
)

// SavingsTransaction is an append-only ledger entry.
type SavingsTransaction struct {
	ID           string
	AccountID    string
	UserID       string
	ChamaID      string
	CycleID      string
	Direction    SavingsDirection
	Amount       decimal.Decimal
	BalanceAfter decimal.Decimal
	Reason       SavingsReason
	CreatedAt    time.Time
}

// Signed returns the amount with its ledger sign applied.
func (t *SavingsTransaction) Signed() decimal.Decimal {
	if t.Direction == SavingsDebit {
		return t.Amount.Neg()
	}
	return t.Amount
}
