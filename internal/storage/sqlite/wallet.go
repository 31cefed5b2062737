package sqlite

import (
	"context"
	"fmt"

	"github.com/mmynk/chama/internal/models"
)

const walletColumns = `id, user_id, chama_id, type, direction, amount, reference_id, description, created_at`

// CreateWalletTransaction appends a wallet ledger entry.
func (q *queries) CreateWalletTransaction(ctx context.Context, tx *models.WalletTransaction) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO wallet_transactions (`+walletColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.UserID, tx.ChamaID, tx.Type, tx.Direction, tx.Amount, tx.ReferenceID, tx.Description,
		toUnix(tx.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert wallet transaction: %w", err)
	}
	return nil
}

// ListWalletTransactions returns a user's statement, newest first.
func (q *queries) ListWalletTransactions(ctx context.Context, userID, chamaID string) ([]*models.WalletTransaction, error) {
	query := `SELECT ` + walletColumns + ` FROM wallet_transactions WHERE user_id = ?`
	args := []any{userID}
	if chamaID != "" {
		query += ` AND chama_id = ?`
		args = append(args, chamaID)
	}
	query += ` ORDER BY created_at DESC, rowid DESC`

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallet transactions: %w", err)
	}
	defer rows.Close()

	var txs []*models.WalletTransaction
	for rows.Next() {
		t := &models.WalletTransaction{}
		var createdAt int64
		if err := rows.Scan(&t.ID, &t.UserID, &t.ChamaID, &t.Type, &t.Direction, &t.Amount, &t.ReferenceID,
			&t.Description, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan wallet transaction: %w", err)
		}
		t.CreatedAt = fromUnix(createdAt)
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate wallet transactions: %w", err)
	}
	return txs, nil
}
