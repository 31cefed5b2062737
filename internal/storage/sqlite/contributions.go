package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/chama/internal/models"
)

const contributionColumns = `id, cycle_id, user_id, period_number, amount_due, amount_paid, due_date,
	status, paid_at, confirmed_by, confirmed_at, created_at`

func scanContribution(row scanner) (*models.Contribution, error) {
	c := &models.Contribution{}
	var dueDate, createdAt int64
	var paidAt, confirmedAt sql.NullInt64
	if err := row.Scan(&c.ID, &c.CycleID, &c.UserID, &c.PeriodNumber, &c.AmountDue, &c.AmountPaid, &dueDate,
		&c.Status, &paidAt, &c.ConfirmedBy, &confirmedAt, &createdAt); err != nil {
		return nil, err
	}
	c.DueDate = fromUnix(dueDate)
	c.CreatedAt = fromUnix(createdAt)
	c.PaidAt = timePtr(paidAt)
	c.ConfirmedAt = timePtr(confirmedAt)
	return c, nil
}

// CreateContribution inserts a contribution.
func (q *queries) CreateContribution(ctx context.Context, c *models.Contribution) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO contributions (`+contributionColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.CycleID, c.UserID, c.PeriodNumber, c.AmountDue, c.AmountPaid, toUnix(c.DueDate),
		c.Status, nullUnix(c.PaidAt), c.ConfirmedBy, nullUnix(c.ConfirmedAt), toUnix(c.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert contribution: %w", err)
	}
	return nil
}

// GetContribution retrieves a contribution by ID.
func (q *queries) GetContribution(ctx context.Context, id string) (*models.Contribution, error) {
	c, err := scanContribution(q.db.QueryRowContext(ctx,
		`SELECT `+contributionColumns+` FROM contributions WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err, "contribution", id)
	}
	return c, nil
}

// GetContributionForPeriod retrieves a member's contribution for one period.
func (q *queries) GetContributionForPeriod(ctx context.Context, cycleID, userID string, period int) (*models.Contribution, error) {
	c, err := scanContribution(q.db.QueryRowContext(ctx,
		`SELECT `+contributionColumns+` FROM contributions
		 WHERE cycle_id = ? AND user_id = ? AND period_number = ?`,
		cycleID, userID, period))
	if err != nil {
		return nil, notFound(err, "contribution", fmt.Sprintf("%s/%s/%d", cycleID, userID, period))
	}
	return c, nil
}

// ListContributions lists a cycle's contributions, optionally for one period.
func (q *queries) ListContributions(ctx context.Context, cycleID string, period int) ([]*models.Contribution, error) {
	query := `SELECT ` + contributionColumns + ` FROM contributions WHERE cycle_id = ?`
	args := []any{cycleID}
	if period > 0 {
		query += ` AND period_number = ?`
		args = append(args, period)
	}
	query += ` ORDER BY period_number, created_at, rowid`

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list contributions: %w", err)
	}
	defer rows.Close()

	var contributions []*models.Contribution
	for rows.Next() {
		c, err := scanContribution(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contribution: %w", err)
		}
		contributions = append(contributions, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate contributions: %w", err)
	}
	return contributions, nil
}

// UpdateContributionPayment writes a recorded payment.
func (q *queries) UpdateContributionPayment(ctx context.Context, c *models.Contribution, prevPaid decimal.Decimal) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE contributions SET amount_paid = ?, status = ?, paid_at = ?
		 WHERE id = ? AND amount_paid = ? AND status != ?`,
		c.AmountPaid, c.Status, nullUnix(c.PaidAt),
		c.ID, prevPaid, models.ContributionConfirmed,
	)
	if err != nil {
		return fmt.Errorf("failed to update contribution payment: %w", err)
	}
	return expectOne(res, "record contribution payment")
}

// ConfirmContribution marks a contribution confirmed.
func (q *queries) ConfirmContribution(ctx context.Context, id, confirmedBy string, at time.Time) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE contributions SET status = ?, confirmed_by = ?, confirmed_at = ?
		 WHERE id = ? AND status != ?`,
		models.ContributionConfirmed, confirmedBy, toUnix(at),
		id, models.ContributionConfirmed,
	)
	if err != nil {
		return fmt.Errorf("failed to confirm contribution: %w", err)
	}
	return expectOne(res, "confirm contribution")
}

// MarkLateContributions flags overdue unpaid contributions of active cycles.
func (q *queries) MarkLateContributions(ctx context.Context, dueBefore time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`UPDATE contributions SET status = ?
		 WHERE status IN (?, ?) AND due_date < ?
		   AND cycle_id IN (SELECT id FROM cycles WHERE status = ?)`,
		models.ContributionLate,
		models.ContributionPending, models.ContributionPartial, toUnix(dueBefore),
		models.CycleStatusActive,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark late contributions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n, nil
}
