package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mmynk/chama/internal/models"
)

const chamaColumns = `id, name, type, status, max_members, invite_code, default_interest_rate, created_by, created_at`

func scanChama(row scanner) (*models.Chama, error) {
	c := &models.Chama{}
	var createdAt int64
	if err := row.Scan(&c.ID, &c.Name, &c.Type, &c.Status, &c.MaxMembers, &c.InviteCode,
		&c.DefaultInterestRate, &c.CreatedBy, &createdAt); err != nil {
		return nil, err
	}
	c.CreatedAt = fromUnix(createdAt)
	return c, nil
}

// CreateChama inserts the chama and its creator's admin membership.
func (q *queries) CreateChama(ctx context.Context, chama *models.Chama, creator *models.ChamaMember) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO chamas (`+chamaColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		chama.ID, chama.Name, chama.Type, chama.Status, chama.MaxMembers, chama.InviteCode,
		chama.DefaultInterestRate, chama.CreatedBy, toUnix(chama.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert chama: %w", err)
	}

	if creator != nil {
		if err := q.AddMember(ctx, creator); err != nil {
			return err
		}
	}
	return nil
}

// GetChama retrieves a chama by ID.
func (q *queries) GetChama(ctx context.Context, id string) (*models.Chama, error) {
	c, err := scanChama(q.db.QueryRowContext(ctx,
		`SELECT `+chamaColumns+` FROM chamas WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err, "chama", id)
	}
	return c, nil
}

// GetChamaByInviteCode retrieves a chama by its invite code.
func (q *queries) GetChamaByInviteCode(ctx context.Context, code string) (*models.Chama, error) {
	c, err := scanChama(q.db.QueryRowContext(ctx,
		`SELECT `+chamaColumns+` FROM chamas WHERE invite_code = ?`, code))
	if err != nil {
		return nil, notFound(err, "chama", code)
	}
	return c, nil
}

// ListChamasForUser returns the chamas where the user is an active member.
func (q *queries) ListChamasForUser(ctx context.Context, userID string) ([]*models.Chama, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT c.id, c.name, c.type, c.status, c.max_members, c.invite_code, c.default_interest_rate, c.created_by, c.created_at
		 FROM chamas c
		 JOIN chama_members m ON m.chama_id = c.id
		 WHERE m.user_id = ? AND m.status = ?
		 ORDER BY c.created_at DESC`,
		userID, models.MemberStatusActive,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list chamas for user: %w", err)
	}
	defer rows.Close()

	var chamas []*models.Chama
	for rows.Next() {
		c, err := scanChama(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan chama: %w", err)
		}
		chamas = append(chamas, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chamas: %w", err)
	}
	return chamas, nil
}

// UpdateChamaStatus changes the chama status if it is still from.
func (q *queries) UpdateChamaStatus(ctx context.Context, id string, from, to models.ChamaStatus) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE chamas SET status = ? WHERE id = ? AND status = ?`, to, id, from)
	if err != nil {
		return fmt.Errorf("failed to update chama status: %w", err)
	}
	return expectOne(res, "update chama status")
}

// DeleteChamaDependents removes members and cycles of a chama. Cycle
// members, contributions and payouts go with their cycle.
func (q *queries) DeleteChamaDependents(ctx context.Context, chamaID string) error {
	if _, err := q.db.ExecContext(ctx, `DELETE FROM cycles WHERE chama_id = ?`, chamaID); err != nil {
		return fmt.Errorf("failed to delete cycles: %w", err)
	}
	if _, err := q.db.ExecContext(ctx, `DELETE FROM chama_members WHERE chama_id = ?`, chamaID); err != nil {
		return fmt.Errorf("failed to delete chama members: %w", err)
	}
	return nil
}

const memberColumns = `id, chama_id, user_id, role, status, joined_at`

func scanMember(row scanner) (*models.ChamaMember, error) {
	m := &models.ChamaMember{}
	var joinedAt int64
	if err := row.Scan(&m.ID, &m.ChamaID, &m.UserID, &m.Role, &m.Status, &joinedAt); err != nil {
		return nil, err
	}
	m.JoinedAt = fromUnix(joinedAt)
	return m, nil
}

// AddMember inserts a chama membership.
func (q *queries) AddMember(ctx context.Context, member *models.ChamaMember) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO chama_members (`+memberColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		member.ID, member.ChamaID, member.UserID, member.Role, member.Status, toUnix(member.JoinedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert chama member: %w", err)
	}
	return nil
}

// GetMember retrieves a user's membership in a chama.
func (q *queries) GetMember(ctx context.Context, chamaID, userID string) (*models.ChamaMember, error) {
	m, err := scanMember(q.db.QueryRowContext(ctx,
		`SELECT `+memberColumns+` FROM chama_members WHERE chama_id = ? AND user_id = ?`,
		chamaID, userID))
	if err != nil {
		return nil, notFound(err, "chama member", userID)
	}
	return m, nil
}

// ListMembers returns every membership of a chama in join order.
func (q *queries) ListMembers(ctx context.Context, chamaID string) ([]*models.ChamaMember, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+memberColumns+` FROM chama_members WHERE chama_id = ? ORDER BY joined_at, rowid`,
		chamaID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chama members: %w", err)
	}
	return collectMembers(rows)
}

// ListMemberships returns a user's active memberships.
func (q *queries) ListMemberships(ctx context.Context, userID string) ([]*models.ChamaMember, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+memberColumns+` FROM chama_members WHERE user_id = ? AND status = ? ORDER BY joined_at, rowid`,
		userID, models.MemberStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	return collectMembers(rows)
}

func collectMembers(rows *sql.Rows) ([]*models.ChamaMember, error) {
	defer rows.Close()

	var members []*models.ChamaMember
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan chama member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chama members: %w", err)
	}
	return members, nil
}

// UpdateMemberStatus changes a membership status if it is still from.
func (q *queries) UpdateMemberStatus(ctx context.Context, chamaID, userID string, from, to models.MemberStatus) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE chama_members SET status = ? WHERE chama_id = ? AND user_id = ? AND status = ?`,
		to, chamaID, userID, from)
	if err != nil {
		return fmt.Errorf("failed to update member status: %w", err)
	}
	return expectOne(res, "update member status")
}

// CountActiveMembers counts active memberships of a chama.
func (q *queries) CountActiveMembers(ctx context.Context, chamaID string) (int, error) {
	var n int
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM chama_members WHERE chama_id = ? AND status = ?`,
		chamaID, models.MemberStatusActive,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count chama members: %w", err)
	}
	return n, nil
}
