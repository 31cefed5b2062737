package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/chama/internal/models"
)

// cycleSelect joins the chama so every cycle carries its chama type.
const cycleSelect = `
	SELECT cy.id, cy.chama_id, ch.type, cy.status, cy.frequency,
	       cy.contribution_amount, cy.payout_amount, cy.savings_amount, cy.service_fee,
	       cy.total_periods, cy.current_period, cy.start_date, cy.created_by, cy.created_at
	FROM cycles cy
	JOIN chamas ch ON ch.id = cy.chama_id`

func scanCycle(row scanner) (*models.Cycle, error) {
	c := &models.Cycle{}
	var startDate, createdAt int64
	if err := row.Scan(&c.ID, &c.ChamaID, &c.ChamaType, &c.Status, &c.Frequency,
		&c.ContributionAmount, &c.PayoutAmount, &c.SavingsAmount, &c.ServiceFee,
		&c.TotalPeriods, &c.CurrentPeriod, &startDate, &c.CreatedBy, &createdAt); err != nil {
		return nil, err
	}
	c.StartDate = fromUnix(startDate)
	c.CreatedAt = fromUnix(createdAt)
	return c, nil
}

func collectCycles(rows *sql.Rows) ([]*models.Cycle, error) {
	defer rows.Close()

	var cycles []*models.Cycle
	for rows.Next() {
		c, err := scanCycle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cycle: %w", err)
		}
		cycles = append(cycles, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cycles: %w", err)
	}
	return cycles, nil
}

// CreateCycle inserts a cycle and its members.
func (q *queries) CreateCycle(ctx context.Context, cycle *models.Cycle, members []*models.CycleMember) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO cycles (id, chama_id, status, frequency, contribution_amount, payout_amount,
		     savings_amount, service_fee, total_periods, current_period, start_date, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		cycle.ID, cycle.ChamaID, cycle.Status, cycle.Frequency, cycle.ContributionAmount, cycle.PayoutAmount,
		cycle.SavingsAmount, cycle.ServiceFee, cycle.TotalPeriods, cycle.CurrentPeriod,
		toUnix(cycle.StartDate), cycle.CreatedBy, toUnix(cycle.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert cycle: %w", err)
	}

	for _, m := range members {
		_, err = q.db.ExecContext(ctx,
			`INSERT INTO cycle_members (id, cycle_id, user_id, turn_order, assigned_number, custom_savings_amount, hide_savings)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			m.ID, cycle.ID, m.UserID, m.TurnOrder, m.AssignedNumber, nullDecimal(m.CustomSavingsAmount), boolInt(m.HideSavings),
		)
		if err != nil {
			return fmt.Errorf("failed to insert cycle member: %w", err)
		}
	}

	return nil
}

// GetCycle retrieves a cycle by ID.
func (q *queries) GetCycle(ctx context.Context, id string) (*models.Cycle, error) {
	c, err := scanCycle(q.db.QueryRowContext(ctx, cycleSelect+` WHERE cy.id = ?`, id))
	if err != nil {
		return nil, notFound(err, "cycle", id)
	}
	return c, nil
}

// ListCycles returns a chama's cycles, newest first.
func (q *queries) ListCycles(ctx context.Context, chamaID string) ([]*models.Cycle, error) {
	rows, err := q.db.QueryContext(ctx,
		cycleSelect+` WHERE cy.chama_id = ? ORDER BY cy.created_at DESC, cy.rowid DESC`, chamaID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cycles: %w", err)
	}
	return collectCycles(rows)
}

// CountOpenCycles counts pending, active and paused cycles of a chama.
func (q *queries) CountOpenCycles(ctx context.Context, chamaID string) (int, error) {
	var n int
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM cycles WHERE chama_id = ? AND status IN (?, ?, ?)`,
		chamaID, models.CycleStatusPending, models.CycleStatusActive, models.CycleStatusPaused,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count open cycles: %w", err)
	}
	return n, nil
}

// TransitionCycle conditionally updates status and current period.
func (q *queries) TransitionCycle(ctx context.Context, id string, from models.CycleStatus, fromPeriod int, to models.CycleStatus, toPeriod int) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE cycles SET status = ?, current_period = ?
		 WHERE id = ? AND status = ? AND current_period = ?`,
		to, toPeriod, id, from, fromPeriod,
	)
	if err != nil {
		return fmt.Errorf("failed to update cycle: %w", err)
	}
	return expectOne(res, "transition cycle")
}

const cycleMemberColumns = `id, cycle_id, user_id, turn_order, assigned_number, custom_savings_amount, hide_savings`

func scanCycleMember(row scanner) (*models.CycleMember, error) {
	m := &models.CycleMember{}
	var custom decimal.NullDecimal
	if err := row.Scan(&m.ID, &m.CycleID, &m.UserID, &m.TurnOrder, &m.AssignedNumber, &custom, &m.HideSavings); err != nil {
		return nil, err
	}
	if custom.Valid {
		m.CustomSavingsAmount = &custom.Decimal
	}
	return m, nil
}

// ListCycleMembers returns a cycle's members in turn order.
func (q *queries) ListCycleMembers(ctx context.Context, cycleID string) ([]*models.CycleMember, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+cycleMemberColumns+` FROM cycle_members WHERE cycle_id = ? ORDER BY turn_order`, cycleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cycle members: %w", err)
	}
	defer rows.Close()

	var members []*models.CycleMember
	for rows.Next() {
		m, err := scanCycleMember(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cycle member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cycle members: %w", err)
	}
	return members, nil
}

// GetCycleMember retrieves a cycle member by ID.
func (q *queries) GetCycleMember(ctx context.Context, id string) (*models.CycleMember, error) {
	m, err := scanCycleMember(q.db.QueryRowContext(ctx,
		`SELECT `+cycleMemberColumns+` FROM cycle_members WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err, "cycle member", id)
	}
	return m, nil
}

// GetCycleMemberByUser retrieves a user's participation in a cycle.
func (q *queries) GetCycleMemberByUser(ctx context.Context, cycleID, userID string) (*models.CycleMember, error) {
	m, err := scanCycleMember(q.db.QueryRowContext(ctx,
		`SELECT `+cycleMemberColumns+` FROM cycle_members WHERE cycle_id = ? AND user_id = ?`, cycleID, userID))
	if err != nil {
		return nil, notFound(err, "cycle member", userID)
	}
	return m, nil
}

// UpdateCycleMemberSavings sets or clears the member's savings override.
func (q *queries) UpdateCycleMemberSavings(ctx context.Context, id string, amount *decimal.Decimal) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE cycle_members SET custom_savings_amount = ? WHERE id = ?`, nullDecimal(amount), id)
	if err != nil {
		return fmt.Errorf("failed to update cycle member savings: %w", err)
	}
	return expectOne(res, "update cycle member savings")
}

// UpdateCycleMemberHideSavings sets the savings visibility flag.
func (q *queries) UpdateCycleMemberHideSavings(ctx context.Context, id string, hide bool) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE cycle_members SET hide_savings = ? WHERE id = ?`, boolInt(hide), id)
	if err != nil {
		return fmt.Errorf("failed to update cycle member visibility: %w", err)
	}
	return expectOne(res, "update cycle member visibility")
}

func nullDecimal(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return *d
}
