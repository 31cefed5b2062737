// Package ledger is the only writer of savings balances.
//
// Every balance change appends a signed savings transaction carrying the
// balance after the move and mirrors it into the wallet statement. A Ledger
// is bound to one storage transaction and remembers the wallet movements it
// wrote so callers can report them once the transaction commits.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/chama/internal/apperr"
	"github.com/mmynk/chama/internal/models"
	"github.com/mmynk/chama/internal/storage"
)

// Entry describes one savings movement.
type Entry struct {
	UserID  string
	ChamaID string
	CycleID string
	Amount  decimal.Decimal
	Reason  models.SavingsReason
	// ReferenceID links the wallet mirror to the originating row.
	ReferenceID string
	Description string
}

// Ledger writes savings and wallet rows through q.
type Ledger struct {
	q         storage.Queries
	now       time.Time
	movements []*models.WalletTransaction
}

// New returns a Ledger writing through q, stamping rows with now.
func New(q storage.Queries, now time.Time) *Ledger {
	return &Ledger{q: q, now: now}
}

// Movements returns the wallet transactions written so far.
func (l *Ledger) Movements() []*models.WalletTransaction {
	return l.movements
}

// Balance returns the user's total savings balance, zero if the user has
// never saved.
func (l *Ledger) Balance(ctx context.Context, userID string) (decimal.Decimal, error) {
	acct, err := l.q.GetSavingsAccount(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, apperr.Internal(err, "failed to load savings account")
	}
	return acct.Balance, nil
}

// Credit adds e.Amount to the user's savings, creating the account on
// first use, and mirrors a savings_credit wallet entry.
func (l *Ledger) Credit(ctx context.Context, e Entry) (*models.SavingsTransaction, error) {
	if !e.Amount.IsPositive() {
		return nil, apperr.Validation("credit amount must be positive")
	}

	acct, err := l.account(ctx, e.UserID, true)
	if err != nil {
		return nil, err
	}

	return l.apply(ctx, acct, e, models.SavingsCredit, acct.Balance.Add(e.Amount))
}

// Debit removes e.Amount from the user's savings and mirrors a
// savings_debit wallet entry. The balance is left untouched when it does
// not cover the amount.
func (l *Ledger) Debit(ctx context.Context, e Entry) (*models.SavingsTransaction, error) {
	if !e.Amount.IsPositive() {
		return nil, apperr.Validation("debit amount must be positive")
	}

	acct, err := l.account(ctx, e.UserID, false)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.InsufficientBalance("insufficient savings: balance 0, requested %s", e.Amount)
	}
	if err != nil {
		return nil, err
	}
	if acct.Balance.LessThan(e.Amount) {
		return nil, apperr.InsufficientBalance("insufficient savings: balance %s, requested %s", acct.Balance, e.Amount)
	}

	return l.apply(ctx, acct, e, models.SavingsDebit, acct.Balance.Sub(e.Amount))
}

// Wallet appends a wallet statement entry.
func (l *Ledger) Wallet(ctx context.Context, w *models.WalletTransaction) error {
	if w.ID == "" {
		w.ID = uuid.New().String()
	}
	if w.CreatedAt.IsZero() {
		w.CreatedAt = l.now
	}
	if err := l.q.CreateWalletTransaction(ctx, w); err != nil {
		return apperr.Internal(err, "failed to record %s transaction", w.Type)
	}
	l.movements = append(l.movements, w)
	return nil
}

func (l *Ledger) account(ctx context.Context, userID string, create bool) (*models.SavingsAccount, error) {
	acct, err := l.q.GetSavingsAccount(ctx, userID)
	if err == nil {
		return acct, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.Internal(err, "failed to load savings account")
	}
	if !create {
		return nil, err
	}

	acct = &models.SavingsAccount{
		ID:        uuid.New().String(),
		UserID:    userID,
		Balance:   decimal.Zero,
		CreatedAt: l.now,
		UpdatedAt: l.now,
	}
	if err := l.q.CreateSavingsAccount(ctx, acct); err != nil {
		return nil, apperr.Internal(err, "failed to open savings account")
	}
	return acct, nil
}

func (l *Ledger) apply(ctx context.Context, acct *models.SavingsAccount, e Entry, dir models.SavingsDirection, balance decimal.Decimal) (*models.SavingsTransaction, error) {
	if err := l.q.UpdateSavingsBalance(ctx, acct.ID, acct.Version, balance); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, apperr.InvalidState("savings balance changed concurrently, retry the request")
		}
		return nil, apperr.Internal(err, "failed to update savings balance")
	}

	tx := &models.SavingsTransaction{
		ID:           uuid.New().String(),
		AccountID:    acct.ID,
		UserID:       e.UserID,
		ChamaID:      e.ChamaID,
		CycleID:      e.CycleID,
		Direction:    dir,
		Amount:       e.Amount,
		BalanceAfter: balance,
		Reason:       e.Reason,
		CreatedAt:    l.now,
	}
	if err := l.q.CreateSavingsTransaction(ctx, tx); err != nil {
		return nil, apperr.Internal(err, "failed to append savings transaction")
	}

	wt := models.WalletSavingsCredit
	wd := models.DirectionIn
	if dir == models.SavingsDebit {
		wt = models.WalletSavingsDebit
		wd = models.DirectionOut
	}
	desc := e.Description
	if desc == "" {
		desc = fmt.Sprintf("Savings %s (%s)", dir, e.Reason)
	}
	ref := e.ReferenceID
	if ref == "" {
		ref = tx.ID
	}
	if err := l.Wallet(ctx, &models.WalletTransaction{
		UserID:      e.UserID,
		ChamaID:     e.ChamaID,
		Type:        wt,
		Direction:   wd,
		Amount:      e.Amount,
		ReferenceID: ref,
		Description: desc,
	}); err != nil {
		return nil, err
	}

	acct.Balance = balance
	acct.Version++
	return tx, nil
}
