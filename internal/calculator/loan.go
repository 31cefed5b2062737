package calculator

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)

	// PenaltyRatePerDay is the penalty percentage accrued per overdue day.
	PenaltyRatePerDay = decimal.RequireFromString("0.5")

	// LoanLimitThreshold is the savings balance a member must exceed before
	// they can borrow at all.
	LoanLimitThreshold = decimal.NewFromInt(2000)

	// LoanLimitMultiplier scales savings into a borrowing limit.
	LoanLimitMultiplier = decimal.RequireFromString("1.1")
)

// PenaltyMaxDays caps penalty accrual: after this many overdue days the
// penalty rate stays at PenaltyMaxDays × PenaltyRatePerDay (50%).
const PenaltyMaxDays = 100

var (
	ErrNoLoanLimit      = errors.New("savings balance too low to qualify for a loan")
	ErrTooFewGuarantors = errors.New("not enough guarantors for the requested amount")
	ErrLimitExceeded    = errors.New("requested amount exceeds combined loan limit")
)

// DueDateStatus describes how far past due a date is.
type DueDateStatus struct {
	IsOverdue   bool
	DaysOverdue int
}

// CalculateDueDateStatus compares calendar dates, ignoring time of day, in
// now's location. A due date of today is not overdue.
func CalculateDueDateStatus(dueDate, now time.Time) DueDateStatus {
	due := StartOfDay(dueDate.In(now.Location()))
	today := StartOfDay(now)
	if !due.Before(today) {
		return DueDateStatus{}
	}
	days := int(math.Ceil(today.Sub(due).Hours() / 24))
	return DueDateStatus{IsOverdue: true, DaysOverdue: days}
}

// StartOfDay strips the time of day from t.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// LoanBreakdown is the repayment position of a loan at a point in time.
type LoanBreakdown struct {
	Principal        decimal.Decimal
	OriginalInterest decimal.Decimal
	OriginalTotal    decimal.Decimal
	// OutstandingPrincipal is what remains of OriginalTotal after payments.
	OutstandingPrincipal decimal.Decimal
	PenaltyInterest      decimal.Decimal
	// PenaltyRate is a percentage, capped at 50.
	PenaltyRate      decimal.Decimal
	TotalOutstanding decimal.Decimal
	IsOverdue        bool
	DaysOverdue      int
}

// CalculateLoanBreakdown computes interest, penalty and the outstanding
// balance of a loan.
//
// interestRatePct must already be resolved by the caller (loan rate, else
// chama default). A nil dueDate is never overdue. Penalty accrues at
// 0.5% of the outstanding principal per overdue day, capped at 100 days.
func CalculateLoanBreakdown(principal, interestRatePct, amountPaid decimal.Decimal, dueDate *time.Time, now time.Time) LoanBreakdown {
	interest := principal.Mul(interestRatePct).Div(hundred).Round(2)
	total := principal.Add(interest)

	outstanding := total.Sub(amountPaid)
	if outstanding.IsNegative() {
		outstanding = decimal.Zero
	}

	b := LoanBreakdown{
		Principal:            principal,
		OriginalInterest:     interest,
		OriginalTotal:        total,
		OutstandingPrincipal: outstanding,
		PenaltyInterest:      decimal.Zero,
		PenaltyRate:          decimal.Zero,
		TotalOutstanding:     outstanding,
	}

	if dueDate != nil {
		status := CalculateDueDateStatus(*dueDate, now)
		b.IsOverdue = status.IsOverdue
		b.DaysOverdue = status.DaysOverdue
	}

	if b.IsOverdue && outstanding.IsPositive() {
		days := b.DaysOverdue
		if days > PenaltyMaxDays {
			days = PenaltyMaxDays
		}
		b.PenaltyRate = PenaltyRatePerDay.Mul(decimal.NewFromInt(int64(days)))
		b.PenaltyInterest = outstanding.Mul(b.PenaltyRate).Div(hundred).Round(2)
		b.TotalOutstanding = outstanding.Add(b.PenaltyInterest)
	}

	return b
}

// CalculateLoanLimit returns floor(savings × 1.1) when savings exceed 2000,
// otherwise zero.
func CalculateLoanLimit(savings decimal.Decimal) decimal.Decimal {
	if !savings.GreaterThan(LoanLimitThreshold) {
		return decimal.Zero
	}
	return savings.Mul(LoanLimitMultiplier).Floor()
}

// MinimumGuarantors returns how many guarantors a request needs: none when
// the amount fits the borrower's own limit, otherwise
// max(1, floor(amount / ownLimit)).
func MinimumGuarantors(amount, ownLimit decimal.Decimal) int {
	if !amount.GreaterThan(ownLimit) || !ownLimit.IsPositive() {
		return 0
	}
	n := int(amount.Div(ownLimit).Floor().IntPart())
	if n < 1 {
		n = 1
	}
	return n
}

// LoanCapacity summarizes the limits backing a loan request.
type LoanCapacity struct {
	OwnLimit       decimal.Decimal
	GuarantorLimit decimal.Decimal
	TotalLimit     decimal.Decimal
	MinGuarantors  int
}

// CheckLoanCapacity verifies that the borrower's own limit plus the
// guarantors' limits cover amount and that enough guarantors were named.
func CheckLoanCapacity(amount, ownLimit decimal.Decimal, guarantorLimits []decimal.Decimal) (LoanCapacity, error) {
	c := LoanCapacity{
		OwnLimit:       ownLimit,
		GuarantorLimit: decimal.Zero,
		MinGuarantors:  MinimumGuarantors(amount, ownLimit),
	}
	for _, l := range guarantorLimits {
		c.GuarantorLimit = c.GuarantorLimit.Add(l)
	}
	c.TotalLimit = ownLimit.Add(c.GuarantorLimit)

	if !ownLimit.IsPositive() {
		return c, ErrNoLoanLimit
	}
	if len(guarantorLimits) < c.MinGuarantors {
		return c, fmt.Errorf("%w: need at least %d, got %d", ErrTooFewGuarantors, c.MinGuarantors, len(guarantorLimits))
	}
	if c.TotalLimit.LessThan(amount) {
		return c, fmt.Errorf("%w: limit %s, requested %s", ErrLimitExceeded, c.TotalLimit, amount)
	}
	return c, nil
}
