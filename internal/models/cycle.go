package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type CycleStatus string

const (
	CycleStatusPending   CycleStatus = "pending"
	CycleStatusActive    CycleStatus = "active"
	CycleStatusPaused    CycleStatus = "paused"
	CycleStatusCompleted CycleStatus = "completed"
	CycleStatusCancelled CycleStatus = "cancelled"
)

// Open reports whether the status still counts against the one open cycle
// per chama rule.
func (s CycleStatus) Open() bool {
	return s == CycleStatusPending || s == CycleStatusActive || s == CycleStatusPaused
}

type Frequency string

const (
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
	FrequencyMonthly  Frequency = "monthly"
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly:
		return true
	}
	return false
}

// Cycle is one rotating-savings round within a chama.
type Cycle struct {
	ID        string
	ChamaID   string
	ChamaType ChamaType // denormalized from the chama at read time
	Status    CycleStatus
	Frequency Frequency

	ContributionAmount decimal.Decimal
	PayoutAmount       decimal.Decimal
	// SavingsAmount is the default per-period savings portion.
	SavingsAmount decimal.Decimal
	ServiceFee    decimal.Decimal

	TotalPeriods int
	// CurrentPeriod is 0 until the cycle starts.
	CurrentPeriod int

	StartDate time.Time
	CreatedBy string
	CreatedAt time.Time
}

// CycleMember is a chama member's participation in a specific cycle.
type CycleMember struct {
	ID             string
	CycleID        string
	UserID         string
	TurnOrder      int
	AssignedNumber int

	// CustomSavingsAmount overrides Cycle.SavingsAmount when non-nil.
	CustomSavingsAmount *decimal.Decimal
	HideSavings         bool
}
