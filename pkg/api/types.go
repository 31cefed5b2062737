// Package api defines the JSON messages exchanged with the chama Connect
// services. Amounts are decimal strings; times are RFC 3339.
package api

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Phone       string    `json:"phone,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type Chama struct {
	ID                  string          `json:"id"`
	Name                string          `json:"name"`
	Type                string          `json:"type"`
	Status              string          `json:"status"`
	MaxMembers          int             `json:"max_members"`
	InviteCode          string          `json:"invite_code,omitempty"`
	DefaultInterestRate decimal.Decimal `json:"default_interest_rate"`
	CreatedBy           string          `json:"created_by"`
	CreatedAt           time.Time       `json:"created_at"`
}

type Member struct {
	ID          string    `json:"id"`
	ChamaID     string    `json:"chama_id"`
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name,omitempty"`
	Role        string    `json:"role"`
	Status      string    `json:"status"`
	JoinedAt    time.Time `json:"joined_at"`
}

type Cycle struct {
	ID                 string          `json:"id"`
	ChamaID            string          `json:"chama_id"`
	Status             string          `json:"status"`
	Frequency          string          `json:"frequency"`
	ContributionAmount decimal.Decimal `json:"contribution_amount"`
	PayoutAmount       decimal.Decimal `json:"payout_amount"`
	SavingsAmount      decimal.Decimal `json:"savings_amount"`
	ServiceFee         decimal.Decimal `json:"service_fee"`
	TotalPeriods       int             `json:"total_periods"`
	CurrentPeriod      int             `json:"current_period"`
	StartDate          time.Time       `json:"start_date"`
	CreatedAt          time.Time       `json:"created_at"`
}

type CycleMember struct {
	ID             string `json:"id"`
	UserID         string `json:"user_id"`
	TurnOrder      int    `json:"turn_order"`
	AssignedNumber int    `json:"assigned_number"`
	// CustomSavingsAmount is omitted when unset or hidden from the caller.
	CustomSavingsAmount *decimal.Decimal `json:"custom_savings_amount,omitempty"`
	HideSavings         bool             `json:"hide_savings"`
}

type Contribution struct {
	ID           string          `json:"id"`
	CycleID      string          `json:"cycle_id"`
	UserID       string          `json:"user_id"`
	PeriodNumber int             `json:"period_number"`
	AmountDue    decimal.Decimal `json:"amount_due"`
	AmountPaid   decimal.Decimal `json:"amount_paid"`
	DueDate      time.Time       `json:"due_date"`
	Status       string          `json:"status"`
	PaidAt       *time.Time      `json:"paid_at,omitempty"`
	ConfirmedBy  string          `json:"confirmed_by,omitempty"`
	ConfirmedAt  *time.Time      `json:"confirmed_at,omitempty"`
}

type Allocation struct {
	Contribution decimal.Decimal `json:"contribution"`
	Savings      decimal.Decimal `json:"savings"`
	PayoutPool   decimal.Decimal `json:"payout_pool"`
	Fee          decimal.Decimal `json:"fee"`
}

type Payout struct {
	ID                string          `json:"id"`
	CycleID           string          `json:"cycle_id"`
	RecipientID       string          `json:"recipient_id"`
	PeriodNumber      int             `json:"period_number"`
	Amount            decimal.Decimal `json:"amount"`
	Status            string          `json:"status"`
	ScheduledDate     time.Time       `json:"scheduled_date"`
	PaidAt            *time.Time      `json:"paid_at,omitempty"`
	PaidBy            string          `json:"paid_by,omitempty"`
	ConfirmedByMember bool            `json:"confirmed_by_member"`
	ConfirmedAt       *time.Time      `json:"confirmed_at,omitempty"`
	Notes             string          `json:"notes,omitempty"`
}

type SavingsTransaction struct {
	ID           string          `json:"id"`
	ChamaID      string          `json:"chama_id,omitempty"`
	CycleID      string          `json:"cycle_id,omitempty"`
	Direction    string          `json:"direction"`
	Amount       decimal.Decimal `json:"amount"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	Reason       string          `json:"reason"`
	CreatedAt    time.Time       `json:"created_at"`
}

type WalletTransaction struct {
	ID          string          `json:"id"`
	ChamaID     string          `json:"chama_id,omitempty"`
	Type        string          `json:"type"`
	Direction   string          `json:"direction"`
	Amount      decimal.Decimal `json:"amount"`
	ReferenceID string          `json:"reference_id,omitempty"`
	Description string          `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

type Loan struct {
	ID           string          `json:"id"`
	ChamaID      string          `json:"chama_id"`
	BorrowerID   string          `json:"borrower_id"`
	Principal    decimal.Decimal `json:"principal"`
	InterestRate decimal.Decimal `json:"interest_rate"`
	Status       string          `json:"status"`
	AmountPaid   decimal.Decimal `json:"amount_paid"`
	DueDate      *time.Time      `json:"due_date,omitempty"`
	Purpose      string          `json:"purpose,omitempty"`
	ApprovedAt   *time.Time      `json:"approved_at,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

type Guarantor struct {
	ID          string     `json:"id"`
	GuarantorID string     `json:"guarantor_id"`
	Status      string     `json:"status"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`
}

type LoanPayment struct {
	ID         string          `json:"id"`
	LoanID     string          `json:"loan_id"`
	PayerID    string          `json:"payer_id"`
	Amount     decimal.Decimal `json:"amount"`
	Status     string          `json:"status"`
	ReviewedBy string          `json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time      `json:"reviewed_at,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

type LoanBreakdown struct {
	Principal            decimal.Decimal `json:"principal"`
	OriginalInterest     decimal.Decimal `json:"original_interest"`
	OriginalTotal        decimal.Decimal `json:"original_total"`
	OutstandingPrincipal decimal.Decimal `json:"outstanding_principal"`
	PenaltyInterest      decimal.Decimal `json:"penalty_interest"`
	PenaltyRate          decimal.Decimal `json:"penalty_rate"`
	TotalOutstanding     decimal.Decimal `json:"total_outstanding"`
	IsOverdue            bool            `json:"is_overdue"`
	DaysOverdue          int             `json:"days_overdue"`
}

type Notification struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Data      map[string]string `json:"data,omitempty"`
	Read      bool              `json:"read"`
	CreatedAt time.Time         `json:"created_at"`
}
