package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mmynk/chama/internal/models"
)

const payoutColumns = `id, cycle_id, recipient_id, period_number, amount, status, scheduled_date,
	paid_at, paid_by, confirmed_by_member, confirmed_at, notes, created_at`

func scanPayout(row scanner) (*models.Payout, error) {
	p := &models.Payout{}
	var scheduled, createdAt int64
	var paidAt, confirmedAt sql.NullInt64
	if err := row.Scan(&p.ID, &p.CycleID, &p.RecipientID, &p.PeriodNumber, &p.Amount, &p.Status, &scheduled,
		&paidAt, &p.PaidBy, &p.ConfirmedByMember, &confirmedAt, &p.Notes, &createdAt); err != nil {
		return nil, err
	}
	p.ScheduledDate = fromUnix(scheduled)
	p.CreatedAt = fromUnix(createdAt)
	p.PaidAt = timePtr(paidAt)
	p.ConfirmedAt = timePtr(confirmedAt)
	return p, nil
}

// CreatePayout inserts a payout.
func (q *queries) CreatePayout(ctx context.Context, p *models.Payout) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO payouts (`+payoutColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.CycleID, p.RecipientID, p.PeriodNumber, p.Amount, p.Status, toUnix(p.ScheduledDate),
		nullUnix(p.PaidAt), p.PaidBy, boolInt(p.ConfirmedByMember), nullUnix(p.ConfirmedAt), p.Notes, toUnix(p.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert payout: %w", err)
	}
	return nil
}

// GetPayout retrieves a payout by ID.
func (q *queries) GetPayout(ctx context.Context, id string) (*models.Payout, error) {
	p, err := scanPayout(q.db.QueryRowContext(ctx,
		`SELECT `+payoutColumns+` FROM payouts WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err, "payout", id)
	}
	return p, nil
}

// ListPayouts returns a cycle's payouts in period order.
func (q *queries) ListPayouts(ctx context.Context, cycleID string) ([]*models.Payout, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+payoutColumns+` FROM payouts WHERE cycle_id = ? ORDER BY period_number`, cycleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payouts: %w", err)
	}
	defer rows.Close()

	var payouts []*models.Payout
	for rows.Next() {
		p, err := scanPayout(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payout: %w", err)
		}
		payouts = append(payouts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payouts: %w", err)
	}
	return payouts, nil
}

// MarkPayoutPaid records that an admin sent the payout.
func (q *queries) MarkPayoutPaid(ctx context.Context, id, paidBy string, at time.Time) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE payouts SET status = ?, paid_at = ?, paid_by = ?
		 WHERE id = ? AND status IN (?, ?)`,
		models.PayoutPaid, toUnix(at), paidBy,
		id, models.PayoutScheduled, models.PayoutPending,
	)
	if err != nil {
		return fmt.Errorf("failed to mark payout paid: %w", err)
	}
	return expectOne(res, "mark payout paid")
}

// MarkPayoutConfirmed records the recipient's confirmation of receipt.
func (q *queries) MarkPayoutConfirmed(ctx context.Context, id string, at time.Time) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE payouts SET status = ?, confirmed_by_member = 1, confirmed_at = ?
		 WHERE id = ? AND status = ? AND confirmed_by_member = 0`,
		models.PayoutConfirmed, toUnix(at),
		id, models.PayoutPaid,
	)
	if err != nil {
		return fmt.Errorf("failed to confirm payout: %w", err)
	}
	return expectOne(res, "confirm payout")
}

// SkipOpenPayouts marks the unsent payouts of a cycle skipped.
func (q *queries) SkipOpenPayouts(ctx context.Context, cycleID string) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE payouts SET status = ? WHERE cycle_id = ? AND status IN (?, ?)`,
		models.PayoutSkipped, cycleID, models.PayoutScheduled, models.PayoutPending,
	)
	if err != nil {
		return fmt.Errorf("failed to skip payouts: %w", err)
	}
	return nil
}
