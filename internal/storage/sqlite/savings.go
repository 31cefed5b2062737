package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/chama/internal/models"
)

// GetSavingsAccount retrieves a user's savings account.
func (q *queries) GetSavingsAccount(ctx context.Context, userID string) (*models.SavingsAccount, error) {
	a := &models.SavingsAccount{}
	var createdAt, updatedAt int64
	err := q.db.QueryRowContext(ctx,
		`SELECT id, user_id, balance, version, created_at, updated_at
		 FROM savings_accounts WHERE user_id = ?`, userID,
	).Scan(&a.ID, &a.UserID, &a.Balance, &a.Version, &createdAt, &updatedAt)
	if err != nil {
		return nil, notFound(err, "savings account", userID)
	}
	a.CreatedAt = fromUnix(createdAt)
	a.UpdatedAt = fromUnix(updatedAt)
	return a, nil
}

// CreateSavingsAccount inserts a savings account.
func (q *queries) CreateSavingsAccount(ctx context.Context, acct *models.SavingsAccount) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO savings_accounts (id, user_id, balance, version, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		acct.ID, acct.UserID, acct.Balance, acct.Version, toUnix(acct.CreatedAt), toUnix(acct.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert savings account: %w", err)
	}
	return nil
}

// UpdateSavingsBalance writes a balance guarded by the account version.
func (q *queries) UpdateSavingsBalance(ctx context.Context, accountID string, version int64, balance decimal.Decimal) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE savings_accounts SET balance = ?, version = version + 1, updated_at = ?
		 WHERE id = ? AND version = ?`,
		balance, time.Now().Unix(), accountID, version,
	)
	if err != nil {
		return fmt.Errorf("failed to update savings balance: %w", err)
	}
	return expectOne(res, "update savings balance")
}

const savingsTxColumns = `id, account_id, user_id, chama_id, cycle_id, direction, amount, balance_after, reason, created_at`

// CreateSavingsTransaction appends a savings ledger entry.
func (q *queries) CreateSavingsTransaction(ctx context.Context, tx *models.SavingsTransaction) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO savings_transactions (`+savingsTxColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.AccountID, tx.UserID, tx.ChamaID, tx.CycleID, tx.Direction, tx.Amount, tx.BalanceAfter,
		tx.Reason, toUnix(tx.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert savings transaction: %w", err)
	}
	return nil
}

// ListSavingsTransactions returns a user's savings ledger, oldest first.
func (q *queries) ListSavingsTransactions(ctx context.Context, userID string) ([]*models.SavingsTransaction, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+savingsTxColumns+` FROM savings_transactions WHERE user_id = ? ORDER BY created_at, rowid`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list savings transactions: %w", err)
	}
	defer rows.Close()

	var txs []*models.SavingsTransaction
	for rows.Next() {
		t := &models.SavingsTransaction{}
		var createdAt int64
		if err := rows.Scan(&t.ID, &t.AccountID, &t.UserID, &t.ChamaID, &t.CycleID, &t.Direction, &t.Amount,
			&t.BalanceAfter, &t.Reason, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan savings transaction: %w", err)
		}
		t.CreatedAt = fromUnix(createdAt)
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate savings transactions: %w", err)
	}
	return txs, nil
}

// ChamaSavingsBalance sums a user's signed savings movements in one chama.
// Amounts are TEXT so the sum is taken in Go to stay exact.
func (q *queries) ChamaSavingsBalance(ctx context.Context, userID, chamaID string) (decimal.Decimal, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT direction, amount FROM savings_transactions WHERE user_id = ? AND chama_id = ?`,
		userID, chamaID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to query chama savings: %w", err)
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		t := models.SavingsTransaction{}
		if err := rows.Scan(&t.Direction, &t.Amount); err != nil {
			return decimal.Zero, fmt.Errorf("failed to scan savings amount: %w", err)
		}
		total = total.Add(t.Signed())
	}
	if err := rows.Err(); err != nil {
		return decimal.Zero, fmt.Errorf("failed to iterate savings amounts: %w", err)
	}
	return total, nil
}
