package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/chama/internal/apperr"
	"github.com/mmynk/chama/internal/calculator"
	"github.com/mmynk/chama/internal/ledger"
	"github.com/mmynk/chama/internal/metrics"
	"github.com/mmynk/chama/internal/models"
	"github.com/mmynk/chama/internal/storage"
)

type RecordPaymentInput struct {
	CycleID string
	// UserID defaults to the caller.
	UserID string
	// Period defaults to the cycle's current period.
	Period int
	Amount decimal.Decimal
}

// RecordPayment adds a payment to a member's contribution for a period,
// creating the contribution on the first payment. Members record their own
// payments; admins may record anyone's.
func (e *Engine) RecordPayment(ctx context.Context, a Actor, in RecordPaymentInput) (*models.Contribution, error) {
	if !in.Amount.IsPositive() {
		return nil, apperr.Validation("payment amount must be positive")
	}
	userID := in.UserID
	if userID == "" {
		userID = a.UserID
	}

	var c *models.Contribution
	err := e.run(ctx, "record payment", func(q storage.Queries, fx *effects) error {
		cycle, err := q.GetCycle(ctx, in.CycleID)
		if err != nil {
			return lookup(err, "cycle")
		}
		if userID != a.UserID && !a.IsAdmin(cycle.ChamaID) {
			return apperr.Unauthorized("only admins can record payments for other members")
		}
		if userID == a.UserID && !a.IsMember(cycle.ChamaID) {
			return apperr.Unauthorized("not a member of this chama")
		}
		if cycle.Status != models.CycleStatusActive {
			return apperr.InvalidState("payments can only be recorded on active cycles (cycle is %s)", cycle.Status)
		}

		period := in.Period
		if period == 0 {
			period = cycle.CurrentPeriod
		}
		if period < 1 || period > cycle.CurrentPeriod {
			return apperr.Validation("period must be between 1 and %d", cycle.CurrentPeriod)
		}

		member, err := q.GetCycleMemberByUser(ctx, cycle.ID, userID)
		if err != nil {
			return lookup(err, "cycle member")
		}

		c, err = q.GetContributionForPeriod(ctx, cycle.ID, userID, period)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			c = newContribution(cycle, member, period, fx.now)
			if err := q.CreateContribution(ctx, c); err != nil {
				return err
			}
		case err != nil:
			return lookup(err, "contribution")
		}

		if c.Status == models.ContributionConfirmed {
			return apperr.InvalidState("contribution already confirmed")
		}
		outstanding := c.AmountDue.Sub(c.AmountPaid)
		if in.Amount.GreaterThan(outstanding) {
			return apperr.Validation("payment of %s exceeds the outstanding %s", in.Amount, outstanding)
		}

		prev := c.AmountPaid
		c.AmountPaid = prev.Add(in.Amount)
		status := calculator.PaymentStatus(c.AmountPaid, c.AmountDue)
		// Late and missed contributions keep their flag until paid in full.
		if (c.Status == models.ContributionLate || c.Status == models.ContributionMissed) && status != models.ContributionPaid {
			status = c.Status
		}
		c.Status = status
		paidAt := fx.now
		c.PaidAt = &paidAt

		if err := q.UpdateContributionPayment(ctx, c, prev); err != nil {
			if errors.Is(err, storage.ErrConflict) {
				return apperr.InvalidState("contribution changed concurrently")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Confirmation is the result of confirming a contribution.
type Confirmation struct {
	Contribution *models.Contribution
	Allocation   calculator.Allocation
}

// ConfirmContribution is the admin's acknowledgement of a recorded
// payment. It splits the payment, credits savings and writes the wallet
// entries exactly once.
func (e *Engine) ConfirmContribution(ctx context.Context, a Actor, contributionID string) (*Confirmation, error) {
	var out *Confirmation
	err := e.run(ctx, "confirm contribution", func(q storage.Queries, fx *effects) error {
		c, err := q.GetContribution(ctx, contributionID)
		if err != nil {
			return lookup(err, "contribution")
		}
		cycle, err := loadAdminCycle(ctx, q, a, c.CycleID)
		if err != nil {
			return err
		}
		if c.Status == models.ContributionConfirmed {
			return apperr.InvalidState("contribution already confirmed")
		}
		if !c.AmountPaid.IsPositive() {
			return apperr.InvalidState("nothing has been paid towards this contribution")
		}

		if err := q.ConfirmContribution(ctx, c.ID, a.UserID, fx.now); err != nil {
			if errors.Is(err, storage.ErrConflict) {
				return apperr.InvalidState("contribution already confirmed")
			}
			return err
		}

		member, err := q.GetCycleMemberByUser(ctx, cycle.ID, c.UserID)
		if err != nil {
			return lookup(err, "cycle member")
		}
		eff := calculator.EffectiveSavings(cycle.ChamaType, cycle.SavingsAmount, member.CustomSavingsAmount)
		alloc := calculator.Allocate(cycle.ChamaType, cycle.ContributionAmount, eff, cycle.ServiceFee, c.AmountPaid)

		l := fx.ledger(q)
		if err := l.Wallet(ctx, &models.WalletTransaction{
			UserID:      c.UserID,
			ChamaID:     cycle.ChamaID,
			Type:        models.WalletContribution,
			Direction:   models.DirectionOut,
			Amount:      alloc.Contribution,
			ReferenceID: c.ID,
			Description: fmt.Sprintf("Contribution for period %d", c.PeriodNumber),
		}); err != nil {
			return err
		}
		if alloc.Savings.IsPositive() {
			if _, err := l.Credit(ctx, ledger.Entry{
				UserID:      c.UserID,
				ChamaID:     cycle.ChamaID,
				CycleID:     cycle.ID,
				Amount:      alloc.Savings,
				Reason:      models.ReasonContribution,
				ReferenceID: c.ID,
				Description: fmt.Sprintf("Savings from period %d contribution", c.PeriodNumber),
			}); err != nil {
				return err
			}
		}
		if alloc.Fee.IsPositive() {
			if err := l.Wallet(ctx, &models.WalletTransaction{
				UserID:      c.UserID,
				ChamaID:     cycle.ChamaID,
				Type:        models.WalletFee,
				Direction:   models.DirectionOut,
				Amount:      alloc.Fee,
				ReferenceID: c.ID,
				Description: fmt.Sprintf("Service fee for period %d", c.PeriodNumber),
			}); err != nil {
				return err
			}
		}

		confirmedAt := fx.now
		c.Status = models.ContributionConfirmed
		c.ConfirmedBy = a.UserID
		c.ConfirmedAt = &confirmedAt
		out = &Confirmation{Contribution: c, Allocation: alloc}

		msg := fmt.Sprintf("Your contribution of %s for period %d was confirmed.", c.AmountPaid, c.PeriodNumber)
		if alloc.Savings.IsPositive() {
			msg += fmt.Sprintf(" %s went to your savings.", alloc.Savings)
		}
		fx.notify(c.UserID, models.NotifyContributionConfirmed, "Contribution confirmed", msg,
			map[string]string{"contribution_id": c.ID, "cycle_id": cycle.ID})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListContributions lists a cycle's contributions, optionally for one period.
func (e *Engine) ListContributions(ctx context.Context, a Actor, cycleID string, period int) ([]*models.Contribution, error) {
	cycle, err := e.store.GetCycle(ctx, cycleID)
	if err != nil {
		return nil, lookup(err, "cycle")
	}
	if err := requireMember(a, cycle.ChamaID); err != nil {
		return nil, err
	}
	list, err := e.store.ListContributions(ctx, cycleID, period)
	if err != nil {
		return nil, apperr.Internal(err, "failed to list contributions")
	}
	return list, nil
}

// SweepLate flags pending and partial contributions of active cycles whose
// due date has passed. It returns how many were flagged.
func (e *Engine) SweepLate(ctx context.Context) (int64, error) {
	var n int64
	err := e.run(ctx, "late sweep", func(q storage.Queries, fx *effects) error {
		var err error
		n, err = q.MarkLateContributions(ctx, calculator.StartOfDay(fx.now))
		return err
	})
	if err != nil {
		return 0, err
	}
	metrics.MarkedLate(n)
	return n, nil
}
