package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type LoanStatus string

const (
	LoanPending   LoanStatus = "pending"
	LoanApproved  LoanStatus = "approved"
	LoanActive    LoanStatus = "active"
	LoanPaid      LoanStatus = "paid"
	LoanCancelled LoanStatus = "cancelled"
)

// Open reports whether the loan still blocks new requests and keeps its
// guarantees active.
func (s LoanStatus) Open() bool {
	return s == LoanPending || s == LoanApproved || s == LoanActive
}

// Loan is a member loan against a chama.
type Loan struct {
	ID         string
	ChamaID    string
	BorrowerID string
	Principal  decimal.Decimal

	// InterestRate is the resolved percentage (loan rate, else the chama
	// default at request time, else zero). It does not follow later
	// changes to the chama default.
	InterestRate decimal.Decimal

	Status     LoanStatus
	AmountPaid decimal.Decimal
	DueDate    *time.Time
	Purpose    string
	ApprovedAt *time.Time
	CreatedAt  time.Time
}

type GuarantorStatus string

const (
	GuarantorPending  GuarantorStatus = "pending"
	GuarantorApproved GuarantorStatus = "approved"
	GuarantorRejected GuarantorStatus = "rejected"
)

type LoanGuarantor struct {
	ID          string
	LoanID      string
	GuarantorID string
	Status      GuarantorStatus
	RespondedAt *time.Time
	CreatedAt   time.Time
}

type LoanPaymentStatus string

const (
	LoanPaymentPending  LoanPaymentStatus = "pending"
	LoanPaymentApproved LoanPaymentStatus = "approved"
	LoanPaymentRejected LoanPaymentStatus = "rejected"
)

// LoanPayment is a repayment proposal. It only affects Loan.AmountPaid
// once an admin approves it.
type LoanPayment struct {
	ID         string
	LoanID     string
	PayerID    string
	Amount     decimal.Decimal
	Status     LoanPaymentStatus
	ReviewedBy string
	ReviewedAt *time.Time
	CreatedAt  time.Time
}
