package engine

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/chama/internal/apperr"
	"github.com/mmynk/chama/internal/models"
	"github.com/mmynk/chama/internal/storage"
)

// ResolveActor loads the user's active memberships.
func (e *Engine) ResolveActor(ctx context.Context, userID string) (Actor, error) {
	memberships, err := e.store.ListMemberships(ctx, userID)
	if err != nil {
		return Actor{}, apperr.Internal(err, "failed to load memberships")
	}
	a := Actor{UserID: userID, Roles: make(map[string]models.MemberRole, len(memberships))}
	for _, m := range memberships {
		a.Roles[m.ChamaID] = m.Role
	}
	return a, nil
}

type CreateChamaInput struct {
	Name                string
	Type                models.ChamaType
	MaxMembers          int
	DefaultInterestRate decimal.Decimal
}

// CreateChama creates a chama with the caller as its first admin.
func (e *Engine) CreateChama(ctx context.Context, userID string, in CreateChamaInput) (*models.Chama, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation("chama name is required")
	}
	if !in.Type.Valid() {
		return nil, apperr.Validation("unknown chama type %q", in.Type)
	}
	if in.MaxMembers < 2 {
		return nil, apperr.Validation("a chama needs room for at least 2 members")
	}
	if in.DefaultInterestRate.IsNegative() {
		return nil, apperr.Validation("interest rate cannot be negative")
	}

	var chama *models.Chama
	err := e.run(ctx, "create chama", func(q storage.Queries, fx *effects) error {
		chama = &models.Chama{
			ID:                  uuid.New().String(),
			Name:                name,
			Type:                in.Type,
			Status:              models.ChamaStatusActive,
			MaxMembers:          in.MaxMembers,
			InviteCode:          newInviteCode(),
			CreatedBy:           userID,
			CreatedAt:           fx.now,
			DefaultInterestRate: in.DefaultInterestRate,
		}
		admin := &models.ChamaMember{
			ID:       uuid.New().String(),
			ChamaID:  chama.ID,
			UserID:   userID,
			Role:     models.RoleAdmin,
			Status:   models.MemberStatusActive,
			JoinedAt: fx.now,
		}
		return q.CreateChama(ctx, chama, admin)
	})
	if err != nil {
		return nil, err
	}
	return chama, nil
}

// newInviteCode returns 8 upper-case hex characters.
func newInviteCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
}

// JoinChama adds the caller to the chama behind an invite code.
func (e *Engine) JoinChama(ctx context.Context, userID, inviteCode string) (*models.Chama, *models.ChamaMember, error) {
	var chama *models.Chama
	var member *models.ChamaMember
	err := e.run(ctx, "join chama", func(q storage.Queries, fx *effects) error {
		var err error
		chama, err = q.GetChamaByInviteCode(ctx, strings.ToUpper(strings.TrimSpace(inviteCode)))
		if err != nil {
			return lookup(err, "chama")
		}
		if chama.Status != models.ChamaStatusActive {
			return apperr.InvalidState("chama is %s and not accepting members", chama.Status)
		}

		existing, err := q.GetMember(ctx, chama.ID, userID)
		if err == nil {
			if existing.Status == models.MemberStatusActive {
				return apperr.InvalidState("already a member of this chama")
			}
			return apperr.InvalidState("membership was removed; ask an admin to restore it")
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return lookup(err, "membership")
		}

		n, err := q.CountActiveMembers(ctx, chama.ID)
		if err != nil {
			return err
		}
		if n >= chama.MaxMembers {
			return apperr.InvalidState("chama is full (%d members)", chama.MaxMembers)
		}

		member = &models.ChamaMember{
			ID:       uuid.New().String(),
			ChamaID:  chama.ID,
			UserID:   userID,
			Role:     models.RoleMember,
			Status:   models.MemberStatusActive,
			JoinedAt: fx.now,
		}
		return q.AddMember(ctx, member)
	})
	if err != nil {
		return nil, nil, err
	}
	return chama, member, nil
}

// GetChama returns a chama the actor belongs to.
func (e *Engine) GetChama(ctx context.Context, a Actor, chamaID string) (*models.Chama, error) {
	if err := requireMember(a, chamaID); err != nil {
		return nil, err
	}
	chama, err := e.store.GetChama(ctx, chamaID)
	if err != nil {
		return nil, lookup(err, "chama")
	}
	return chama, nil
}

// ListChamas returns the chamas the user is an active member of.
func (e *Engine) ListChamas(ctx context.Context, userID string) ([]*models.Chama, error) {
	chamas, err := e.store.ListChamasForUser(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to list chamas")
	}
	return chamas, nil
}

// ListMembers returns the memberships of a chama.
func (e *Engine) ListMembers(ctx context.Context, a Actor, chamaID string) ([]*models.ChamaMember, error) {
	if err := requireMember(a, chamaID); err != nil {
		return nil, err
	}
	members, err := e.store.ListMembers(ctx, chamaID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to list members")
	}

	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = m.UserID
	}
	users, err := e.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load member names")
	}
	for _, m := range members {
		if u, ok := users[m.UserID]; ok {
			m.DisplayName = u.DisplayName
		}
	}
	return members, nil
}

// RemoveMember removes a regular member. Admins cannot remove themselves
// or other admins, which keeps at least one admin per chama.
func (e *Engine) RemoveMember(ctx context.Context, a Actor, chamaID, userID string) error {
	if err := requireAdmin(a, chamaID); err != nil {
		return err
	}
	if userID == a.UserID {
		return apperr.Validation("admins cannot remove themselves")
	}
	return e.run(ctx, "remove member", func(q storage.Queries, fx *effects) error {
		m, err := q.GetMember(ctx, chamaID, userID)
		if err != nil {
			return lookup(err, "member")
		}
		if m.Role == models.RoleAdmin {
			return apperr.Unauthorized("admins cannot be removed")
		}
		if m.Status != models.MemberStatusActive {
			return apperr.InvalidState("member already removed")
		}
		return q.UpdateMemberStatus(ctx, chamaID, userID, models.MemberStatusActive, models.MemberStatusRemoved)
	})
}

// CloseChama closes a chama and deletes its members and cycles. Loans and
// the savings and wallet ledgers are kept.
func (e *Engine) CloseChama(ctx context.Context, a Actor, chamaID string) error {
	if err := requireAdmin(a, chamaID); err != nil {
		return err
	}
	return e.run(ctx, "close chama", func(q storage.Queries, fx *effects) error {
		chama, err := q.GetChama(ctx, chamaID)
		if err != nil {
			return lookup(err, "chama")
		}
		if chama.Status == models.ChamaStatusClosed {
			return apperr.InvalidState("chama already closed")
		}
		if err := q.UpdateChamaStatus(ctx, chamaID, chama.Status, models.ChamaStatusClosed); err != nil {
			return err
		}
		return q.DeleteChamaDependents(ctx, chamaID)
	})
}
