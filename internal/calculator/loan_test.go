package calculator

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var refNow = time.Date(2026, time.March, 15, 14, 30, 0, 0, time.UTC)

func daysAgo(n int) *time.Time {
	t := refNow.AddDate(0, 0, -n)
	return &t
}

func TestCalculateDueDateStatus(t *testing.T) {
	tests := []struct {
		name        string
		due         time.Time
		wantOverdue bool
		wantDays    int
	}{
		{"due later today", refNow.Add(2 * time.Hour), false, 0},
		{"due earlier today", refNow.Add(-10 * time.Hour), false, 0},
		{"due tomorrow", refNow.AddDate(0, 0, 1), false, 0},
		{"due yesterday late evening", time.Date(2026, time.March, 14, 23, 59, 0, 0, time.UTC), true, 1},
		{"forty days ago", *daysAgo(40), true, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateDueDateStatus(tt.due, refNow)
			if got.IsOverdue != tt.wantOverdue {
				t.Errorf("IsOverdue = %v, want %v", got.IsOverdue, tt.wantOverdue)
			}
			if got.DaysOverdue != tt.wantDays {
				t.Errorf("DaysOverdue = %d, want %d", got.DaysOverdue, tt.wantDays)
			}
		})
	}
}

func TestCalculateLoanBreakdown(t *testing.T) {
	tests := []struct {
		name         string
		principal    string
		rate         string
		paid         string
		due          *time.Time
		validateFunc func(t *testing.T, b LoanBreakdown)
	}{
		{
			name:      "forty days overdue",
			principal: "10000",
			rate:      "10",
			paid:      "0",
			due:       daysAgo(40),
			validateFunc: func(t *testing.T, b LoanBreakdown) {
				// interest 1000, total 11000, penalty 20% of 11000
				if !b.OriginalInterest.Equal(d("1000")) {
					t.Errorf("OriginalInterest = %s, want 1000", b.OriginalInterest)
				}
				if !b.OriginalTotal.Equal(d("11000")) {
					t.Errorf("OriginalTotal = %s, want 11000", b.OriginalTotal)
				}
				if !b.OutstandingPrincipal.Equal(d("11000")) {
					t.Errorf("OutstandingPrincipal = %s, want 11000", b.OutstandingPrincipal)
				}
				if b.DaysOverdue != 40 || !b.IsOverdue {
					t.Errorf("overdue = %v/%d, want true/40", b.IsOverdue, b.DaysOverdue)
				}
				if !b.PenaltyRate.Equal(d("20")) {
					t.Errorf("PenaltyRate = %s, want 20", b.PenaltyRate)
				}
				if !b.PenaltyInterest.Equal(d("2200")) {
					t.Errorf("PenaltyInterest = %s, want 2200", b.PenaltyInterest)
				}
				if !b.TotalOutstanding.Equal(d("13200")) {
					t.Errorf("TotalOutstanding = %s, want 13200", b.TotalOutstanding)
				}
			},
		},
		{
			name:      "not yet due",
			principal: "5000",
			rate:      "12",
			paid:      "1000",
			due:       func() *time.Time { t := refNow.AddDate(0, 0, 10); return &t }(),
			validateFunc: func(t *testing.T, b LoanBreakdown) {
				// total 5600, paid 1000
				if !b.TotalOutstanding.Equal(d("4600")) {
					t.Errorf("TotalOutstanding = %s, want 4600", b.TotalOutstanding)
				}
				if !b.PenaltyInterest.IsZero() || b.IsOverdue {
					t.Errorf("expected no penalty, got %s (overdue=%v)", b.PenaltyInterest, b.IsOverdue)
				}
			},
		},
		{
			name:      "overpaid loan clamps to zero and has no penalty",
			principal: "1000",
			rate:      "10",
			paid:      "1500",
			due:       daysAgo(5),
			validateFunc: func(t *testing.T, b LoanBreakdown) {
				if !b.OutstandingPrincipal.IsZero() {
					t.Errorf("OutstandingPrincipal = %s, want 0", b.OutstandingPrincipal)
				}
				if !b.PenaltyInterest.IsZero() || !b.TotalOutstanding.IsZero() {
					t.Errorf("penalty/total = %s/%s, want 0/0", b.PenaltyInterest, b.TotalOutstanding)
				}
			},
		},
		{
			name:      "nil due date is never overdue",
			principal: "1000",
			rate:      "0",
			paid:      "0",
			due:       nil,
			validateFunc: func(t *testing.T, b LoanBreakdown) {
				if b.IsOverdue || !b.TotalOutstanding.Equal(d("1000")) {
					t.Errorf("got overdue=%v total=%s", b.IsOverdue, b.TotalOutstanding)
				}
			},
		},
		{
			name:      "penalty rate saturates after 100 days",
			principal: "1000",
			rate:      "0",
			paid:      "0",
			due:       daysAgo(250),
			validateFunc: func(t *testing.T, b LoanBreakdown) {
				if !b.PenaltyRate.Equal(d("50")) {
					t.Errorf("PenaltyRate = %s, want 50", b.PenaltyRate)
				}
				if !b.TotalOutstanding.Equal(d("1500")) {
					t.Errorf("TotalOutstanding = %s, want 1500", b.TotalOutstanding)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := CalculateLoanBreakdown(d(tt.principal), d(tt.rate), d(tt.paid), tt.due, refNow)
			tt.validateFunc(t, b)
		})
	}
}

func TestCalculateLoanBreakdown_PenaltyMonotonic(t *testing.T) {
	prev := decimal.Zero
	for days := 0; days <= 150; days++ {
		var due *time.Time
		if days > 0 {
			due = daysAgo(days)
		}
		b := CalculateLoanBreakdown(d("7300"), d("7.5"), d("1200"), due, refNow)

		if days == 0 {
			if !b.PenaltyInterest.IsZero() || !b.TotalOutstanding.Equal(b.OutstandingPrincipal) {
				t.Fatalf("day 0: penalty %s, total %s, outstanding %s", b.PenaltyInterest, b.TotalOutstanding, b.OutstandingPrincipal)
			}
		}
		if b.PenaltyInterest.LessThan(prev) {
			t.Fatalf("penalty decreased at day %d: %s < %s", days, b.PenaltyInterest, prev)
		}
		if days >= PenaltyMaxDays && !b.PenaltyRate.Equal(d("50")) {
			t.Fatalf("day %d: penalty rate %s, want 50", days, b.PenaltyRate)
		}
		prev = b.PenaltyInterest
	}
}

func TestCalculateLoanLimit(t *testing.T) {
	tests := []struct {
		savings string
		want    string
	}{
		{"0", "0"},
		{"1800", "0"},
		{"2000", "0"},
		{"2001", "2201"},
		{"3000", "3300"},
		{"3333.33", "3666"},
	}
	for _, tt := range tests {
		t.Run(tt.savings, func(t *testing.T) {
			if got := CalculateLoanLimit(d(tt.savings)); !got.Equal(d(tt.want)) {
				t.Errorf("CalculateLoanLimit(%s) = %s, want %s", tt.savings, got, tt.want)
			}
		})
	}
}

func TestCheckLoanCapacity(t *testing.T) {
	tests := []struct {
		name       string
		amount     string
		ownLimit   string
		guarantors []decimal.Decimal
		wantErr    error
		wantMin    int
	}{
		{
			name:     "no own limit rejects even with guarantors",
			amount:   "500",
			ownLimit: "0",
			guarantors: []decimal.Decimal{
				d("10000"),
			},
			wantErr: ErrNoLoanLimit,
		},
		{
			name:       "fits own limit without guarantors",
			amount:     "3000",
			ownLimit:   "3300",
			guarantors: nil,
			wantMin:    0,
		},
		{
			name:       "one guarantor covers the gap",
			amount:     "5000",
			ownLimit:   "3300",
			guarantors: []decimal.Decimal{d("2000")},
			wantMin:    1,
		},
		{
			name:       "zero guarantors above own limit",
			amount:     "5000",
			ownLimit:   "3300",
			guarantors: nil,
			wantErr:    ErrTooFewGuarantors,
			wantMin:    1,
		},
		{
			name:       "guarantors present but limit too small",
			amount:     "8000",
			ownLimit:   "3300",
			guarantors: []decimal.Decimal{d("2200"), d("2300")},
			wantErr:    ErrLimitExceeded,
			wantMin:    2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := CheckLoanCapacity(d(tt.amount), d(tt.ownLimit), tt.guarantors)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != ErrNoLoanLimit && c.MinGuarantors != tt.wantMin {
				t.Errorf("MinGuarantors = %d, want %d", c.MinGuarantors, tt.wantMin)
			}
		})
	}
}
