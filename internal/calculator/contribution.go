package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/chama/internal/models"
)

// EffectiveSavings resolves the per-period savings amount for a member:
// the member's override if set, else the cycle default. Merry-go-round
// chamas never carry savings.
func EffectiveSavings(chamaType models.ChamaType, cycleDefault decimal.Decimal, custom *decimal.Decimal) decimal.Decimal {
	if !chamaType.HasSavings() {
		return decimal.Zero
	}
	if custom != nil {
		return *custom
	}
	return cycleDefault
}

// AmountDue is the base contribution plus the effective savings amount.
func AmountDue(contributionAmount, effectiveSavings decimal.Decimal) decimal.Decimal {
	return contributionAmount.Add(effectiveSavings)
}

// PaymentStatus derives a contribution status from what has been paid.
func PaymentStatus(amountPaid, amountDue decimal.Decimal) models.ContributionStatus {
	switch {
	case amountPaid.GreaterThanOrEqual(amountDue) && amountPaid.IsPositive():
		return models.ContributionPaid
	case amountPaid.IsPositive():
		return models.ContributionPartial
	default:
		return models.ContributionPending
	}
}

// Allocation is how a confirmed payment is split.
type Allocation struct {
	// Contribution is the full amount paid; it is always recorded as one
	// outgoing wallet contribution.
	Contribution decimal.Decimal
	// Savings is credited to the member's savings ledger.
	Savings decimal.Decimal
	// PayoutPool is the part that funds the rotating payout.
	PayoutPool decimal.Decimal
	// Fee is reported as a separate outgoing transaction. It is layered on
	// top and not subtracted from Savings or PayoutPool, but never exceeds
	// what is left of the payment after savings.
	Fee decimal.Decimal
}

// Allocate splits amountPaid according to the chama type:
//
//	savings:        savings = min(effectiveSavings, paid)
//	hybrid:         savings = min(effectiveSavings, max(0, paid - contributionAmount))
//	merry_go_round: savings = 0
//
// fee = min(serviceFee, paid - savings) in every case. The fee is drawn from
// what remains after savings, not from the whole payment, so a payment that
// only covers savings carries no fee and savings plus fee never exceed it.
func Allocate(chamaType models.ChamaType, contributionAmount, effectiveSavings, serviceFee, amountPaid decimal.Decimal) Allocation {
	savings := decimal.Zero
	switch chamaType {
	case models.ChamaTypeSavings:
		savings = decimal.Min(effectiveSavings, amountPaid)
	case models.ChamaTypeHybrid:
		savings = decimal.Min(effectiveSavings, decimal.Max(decimal.Zero, amountPaid.Sub(contributionAmount)))
	}
	if savings.IsNegative() {
		savings = decimal.Zero
	}

	fee := decimal.Min(serviceFee, amountPaid.Sub(savings))
	if fee.IsNegative() {
		fee = decimal.Zero
	}

	return Allocation{
		Contribution: amountPaid,
		Savings:      savings,
		PayoutPool:   amountPaid.Sub(savings),
		Fee:          fee,
	}
}
