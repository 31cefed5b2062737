package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PayoutStatus string

const (
	PayoutScheduled PayoutStatus = "scheduled"
	PayoutPending   PayoutStatus = "pending"
	PayoutPaid      PayoutStatus = "paid"
	PayoutConfirmed PayoutStatus = "confirmed"
	PayoutSkipped   PayoutStatus = "skipped"
)

// Payout is the disbursement to the turn-order recipient of a period.
// Settlement is two-phase: an admin marks it sent (paid), then the
// recipient confirms receipt.
type Payout struct {
	ID                string
	CycleID           string
	RecipientID       string
	PeriodNumber      int
	Amount            decimal.Decimal
	Status            PayoutStatus
	ScheduledDate     time.Time
	PaidAt            *time.Time
	PaidBy            string
	ConfirmedByMember bool
	ConfirmedAt       *time.Time
	Notes             string
	CreatedAt         time.Time
}
