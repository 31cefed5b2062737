package engine

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/chama/internal/apperr"
	"github.com/mmynk/chama/internal/ledger"
	"github.com/mmynk/chama/internal/models"
	"github.com/mmynk/chama/internal/storage"
)

// SavingsSummary is a user's savings position.
type SavingsSummary struct {
	Balance decimal.Decimal
	// ByChama holds the balance attributable to each of the user's chamas.
	ByChama map[string]decimal.Decimal
}

// GetSavings returns the caller's savings balance, total and per chama.
func (e *Engine) GetSavings(ctx context.Context, a Actor) (*SavingsSummary, error) {
	bal, err := ledger.New(e.store, e.now()).Balance(ctx, a.UserID)
	if err != nil {
		return nil, err
	}
	s := &SavingsSummary{Balance: bal, ByChama: make(map[string]decimal.Decimal, len(a.Roles))}
	for chamaID := range a.Roles {
		v, err := e.store.ChamaSavingsBalance(ctx, a.UserID, chamaID)
		if err != nil {
			return nil, apperr.Internal(err, "failed to sum chama savings")
		}
		s.ByChama[chamaID] = v
	}
	return s, nil
}

// ListSavingsTransactions returns the caller's savings ledger.
func (e *Engine) ListSavingsTransactions(ctx context.Context, a Actor) ([]*models.SavingsTransaction, error) {
	txs, err := e.store.ListSavingsTransactions(ctx, a.UserID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to list savings transactions")
	}
	return txs, nil
}

// ListWalletTransactions returns the caller's wallet statement, optionally
// limited to one chama.
func (e *Engine) ListWalletTransactions(ctx context.Context, a Actor, chamaID string) ([]*models.WalletTransaction, error) {
	txs, err := e.store.ListWalletTransactions(ctx, a.UserID, chamaID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to list wallet transactions")
	}
	return txs, nil
}

// WithdrawSavings pays out part of a member's savings held in a chama.
func (e *Engine) WithdrawSavings(ctx context.Context, a Actor, chamaID, userID string, amount decimal.Decimal) (*models.SavingsTransaction, error) {
	if err := requireAdmin(a, chamaID); err != nil {
		return nil, err
	}
	if !amount.IsPositive() {
		return nil, apperr.Validation("withdrawal amount must be positive")
	}

	var tx *models.SavingsTransaction
	err := e.run(ctx, "withdraw savings", func(q storage.Queries, fx *effects) error {
		if _, err := q.GetMember(ctx, chamaID, userID); err != nil {
			return lookup(err, "member")
		}
		held, err := q.ChamaSavingsBalance(ctx, userID, chamaID)
		if err != nil {
			return err
		}
		if held.LessThan(amount) {
			return apperr.InsufficientBalance("insufficient savings in this chama: balance %s, requested %s", held, amount)
		}
		tx, err = fx.ledger(q).Debit(ctx, ledger.Entry{
			UserID:      userID,
			ChamaID:     chamaID,
			Amount:      amount,
			Reason:      models.ReasonManual,
			Description: fmt.Sprintf("Savings withdrawal approved by %s", a.UserID),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// ListNotifications returns the caller's notifications.
func (e *Engine) ListNotifications(ctx context.Context, a Actor, unreadOnly bool) ([]*models.Notification, error) {
	list, err := e.store.ListNotifications(ctx, a.UserID, unreadOnly)
	if err != nil {
		return nil, apperr.Internal(err, "failed to list notifications")
	}
	return list, nil
}

// MarkNotificationRead marks one of the caller's notifications read.
func (e *Engine) MarkNotificationRead(ctx context.Context, a Actor, id string) error {
	if err := e.store.MarkNotificationRead(ctx, id, a.UserID); err != nil {
		return lookup(err, "notification")
	}
	return nil
}
