package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type WalletType string

const (
	WalletContribution     WalletType = "contribution"
	WalletPayout           WalletType = "payout"
	WalletSavingsCredit    WalletType = "savings_credit"
	WalletSavingsDebit     WalletType = "savings_debit"
	WalletFee              WalletType = "fee"
	WalletRefund           WalletType = "refund"
	WalletLoanDisbursement WalletType = "loan_disbursement"
	WalletLoanRepayment    WalletType = "loan_repayment"
)

type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// WalletTransaction records a money movement for statements and audit.
// Rows are never updated after insert.
type WalletTransaction struct {
	ID          string
	UserID      string
	ChamaID     string
	Type        WalletType
	Direction   Direction
	Amount      decimal.Decimal
	ReferenceID string // contribution, payout, loan or loan payment ID
	Description string
	CreatedAt   time.Time
}
