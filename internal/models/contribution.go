package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ContributionStatus string

const (
	ContributionPending   ContributionStatus = "pending"
	ContributionPartial   ContributionStatus = "partial"
	ContributionPaid      ContributionStatus = "paid"
	ContributionConfirmed ContributionStatus = "confirmed"
	ContributionLate      ContributionStatus = "late"
	ContributionMissed    ContributionStatus = "missed"
)

// Contribution is one member's obligation for one period.
type Contribution struct {
	ID           string
	CycleID      string
	UserID       string
	PeriodNumber int
	AmountDue    decimal.Decimal
	AmountPaid   decimal.Decimal
	DueDate      time.Time
	Status       ContributionStatus
	PaidAt       *time.Time
	ConfirmedBy  string
	ConfirmedAt  *time.Time
	CreatedAt    time.Time
}
