package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/mmynk/chama/internal/apperr"
	"github.com/mmynk/chama/internal/models"
	"github.com/mmynk/chama/internal/storage"
)

// SendPayout is the admin half of the payout handshake: the money has been
// sent to the recipient.
func (e *Engine) SendPayout(ctx context.Context, a Actor, payoutID, notes string) (*models.Payout, error) {
	var p *models.Payout
	err := e.run(ctx, "send payout", func(q storage.Queries, fx *effects) error {
		var err error
		p, err = q.GetPayout(ctx, payoutID)
		if err != nil {
			return lookup(err, "payout")
		}
		cycle, err := loadAdminCycle(ctx, q, a, p.CycleID)
		if err != nil {
			return err
		}
		switch p.Status {
		case models.PayoutScheduled, models.PayoutPending:
		case models.PayoutSkipped:
			return apperr.InvalidState("payout was skipped")
		default:
			return apperr.InvalidState("payout already processed")
		}

		if err := q.MarkPayoutPaid(ctx, p.ID, a.UserID, fx.now); err != nil {
			if errors.Is(err, storage.ErrConflict) {
				return apperr.InvalidState("payout already processed")
			}
			return err
		}
		paidAt := fx.now
		p.Status = models.PayoutPaid
		p.PaidAt = &paidAt
		p.PaidBy = a.UserID
		p.Notes = notes

		if err := fx.ledger(q).Wallet(ctx, &models.WalletTransaction{
			UserID:      p.RecipientID,
			ChamaID:     cycle.ChamaID,
			Type:        models.WalletPayout,
			Direction:   models.DirectionIn,
			Amount:      p.Amount,
			ReferenceID: p.ID,
			Description: fmt.Sprintf("Payout for period %d", p.PeriodNumber),
		}); err != nil {
			return err
		}

		fx.notify(p.RecipientID, models.NotifyPayoutSent, "Payout sent",
			fmt.Sprintf("Your payout of %s for period %d has been sent. Please confirm once received.", p.Amount, p.PeriodNumber),
			map[string]string{"payout_id": p.ID, "cycle_id": cycle.ID})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ConfirmPayout is the recipient half of the handshake.
func (e *Engine) ConfirmPayout(ctx context.Context, a Actor, payoutID string) (*models.Payout, error) {
	var p *models.Payout
	err := e.run(ctx, "confirm payout", func(q storage.Queries, fx *effects) error {
		var err error
		p, err = q.GetPayout(ctx, payoutID)
		if err != nil {
			return lookup(err, "payout")
		}
		if p.RecipientID != a.UserID {
			return apperr.Unauthorized("only the recipient can confirm a payout")
		}
		switch {
		case p.Status == models.PayoutConfirmed || p.ConfirmedByMember:
			return apperr.InvalidState("payout already confirmed")
		case p.Status != models.PayoutPaid:
			return apperr.InvalidState("payout must be paid before confirmation")
		}

		if err := q.MarkPayoutConfirmed(ctx, p.ID, fx.now); err != nil {
			if errors.Is(err, storage.ErrConflict) {
				return apperr.InvalidState("payout already confirmed")
			}
			return err
		}
		confirmedAt := fx.now
		p.Status = models.PayoutConfirmed
		p.ConfirmedByMember = true
		p.ConfirmedAt = &confirmedAt

		cycle, err := q.GetCycle(ctx, p.CycleID)
		if err != nil {
			return lookup(err, "cycle")
		}
		members, err := q.ListMembers(ctx, cycle.ChamaID)
		if err != nil {
			return err
		}
		for _, m := range members {
			if !m.IsActiveAdmin() {
				continue
			}
			fx.notify(m.UserID, models.NotifyPayoutReceived, "Payout received",
				fmt.Sprintf("The period %d payout of %s was confirmed as received.", p.PeriodNumber, p.Amount),
				map[string]string{"payout_id": p.ID, "cycle_id": cycle.ID, "recipient_id": p.RecipientID})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListPayouts returns a cycle's payouts in period order.
func (e *Engine) ListPayouts(ctx context.Context, a Actor, cycleID string) ([]*models.Payout, error) {
	cycle, err := e.store.GetCycle(ctx, cycleID)
	if err != nil {
		return nil, lookup(err, "cycle")
	}
	if err := requireMember(a, cycle.ChamaID); err != nil {
		return nil, err
	}
	payouts, err := e.store.ListPayouts(ctx, cycleID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to list payouts")
	}
	return payouts, nil
}
