package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/chama/internal/apperr"
	"github.com/mmynk/chama/internal/calculator"
	"github.com/mmynk/chama/internal/models"
	"github.com/mmynk/chama/internal/storage"
)

type CreateCycleInput struct {
	ChamaID            string
	Frequency          models.Frequency
	ContributionAmount decimal.Decimal
	// PayoutAmount defaults to ContributionAmount × members when zero.
	PayoutAmount  decimal.Decimal
	SavingsAmount decimal.Decimal
	ServiceFee    decimal.Decimal
	// TotalPeriods defaults to the number of members when zero.
	TotalPeriods int
	// StartDate defaults to today.
	StartDate time.Time
	// MemberIDs lists user IDs in payout turn order. Empty means every
	// active chama member in join order.
	MemberIDs []string
}

// CycleView is a cycle with its members.
type CycleView struct {
	Cycle   *models.Cycle
	Members []*models.CycleMember
}

// CreateCycle creates a pending cycle. A chama has at most one pending,
// active or paused cycle at a time.
func (e *Engine) CreateCycle(ctx context.Context, a Actor, in CreateCycleInput) (*CycleView, error) {
	if err := requireAdmin(a, in.ChamaID); err != nil {
		return nil, err
	}
	if !in.Frequency.Valid() {
		return nil, apperr.Validation("unknown frequency %q", in.Frequency)
	}
	if !in.ContributionAmount.IsPositive() {
		return nil, apperr.Validation("contribution amount must be positive")
	}
	for name, v := range map[string]decimal.Decimal{
		"payout amount":  in.PayoutAmount,
		"savings amount": in.SavingsAmount,
		"service fee":    in.ServiceFee,
	} {
		if v.IsNegative() {
			return nil, apperr.Validation("%s cannot be negative", name)
		}
	}
	if in.TotalPeriods < 0 {
		return nil, apperr.Validation("total periods cannot be negative")
	}

	var view *CycleView
	err := e.run(ctx, "create cycle", func(q storage.Queries, fx *effects) error {
		chama, err := q.GetChama(ctx, in.ChamaID)
		if err != nil {
			return lookup(err, "chama")
		}
		if chama.Status != models.ChamaStatusActive {
			return apperr.InvalidState("chama is %s", chama.Status)
		}
		if chama.Type == models.ChamaTypeMerryGoRound && !in.SavingsAmount.IsZero() {
			return apperr.Validation("merry-go-round chamas do not carry savings")
		}

		open, err := q.CountOpenCycles(ctx, chama.ID)
		if err != nil {
			return err
		}
		if open > 0 {
			return apperr.InvalidState("chama already has an open cycle")
		}

		userIDs, err := cycleParticipants(ctx, q, chama.ID, in.MemberIDs)
		if err != nil {
			return err
		}
		n := len(userIDs)

		total := in.TotalPeriods
		if total == 0 {
			total = n
		}
		payout := in.PayoutAmount
		if payout.IsZero() {
			payout = in.ContributionAmount.Mul(decimal.NewFromInt(int64(n)))
		}
		start := in.StartDate
		if start.IsZero() {
			start = calculator.StartOfDay(fx.now)
		}

		cycle := &models.Cycle{
			ID:                 uuid.New().String(),
			ChamaID:            chama.ID,
			ChamaType:          chama.Type,
			Status:             models.CycleStatusPending,
			Frequency:          in.Frequency,
			ContributionAmount: in.ContributionAmount,
			PayoutAmount:       payout,
			SavingsAmount:      in.SavingsAmount,
			ServiceFee:         in.ServiceFee,
			TotalPeriods:       total,
			StartDate:          start.UTC(),
			CreatedBy:          a.UserID,
			CreatedAt:          fx.now,
		}
		members := make([]*models.CycleMember, n)
		for i, id := range userIDs {
			members[i] = &models.CycleMember{
				ID:             uuid.New().String(),
				CycleID:        cycle.ID,
				UserID:         id,
				TurnOrder:      i + 1,
				AssignedNumber: i + 1,
			}
		}
		if err := q.CreateCycle(ctx, cycle, members); err != nil {
			return err
		}
		view = &CycleView{Cycle: cycle, Members: members}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func cycleParticipants(ctx context.Context, q storage.Queries, chamaID string, requested []string) ([]string, error) {
	members, err := q.ListMembers(ctx, chamaID)
	if err != nil {
		return nil, err
	}
	active := make(map[string]bool, len(members))
	var all []string
	for _, m := range members {
		if m.Status == models.MemberStatusActive {
			active[m.UserID] = true
			all = append(all, m.UserID)
		}
	}

	if len(requested) == 0 {
		requested = all
	}
	if len(requested) == 0 {
		return nil, apperr.Validation("a cycle needs at least one member")
	}

	seen := make(map[string]bool, len(requested))
	for _, id := range requested {
		if seen[id] {
			return nil, apperr.Validation("member %s listed twice", id)
		}
		if !active[id] {
			return nil, apperr.Validation("user %s is not an active member of this chama", id)
		}
		seen[id] = true
	}
	return requested, nil
}

// GetCycle returns a cycle with its members. Custom savings of members who
// hide them are masked for everyone but themselves and admins.
func (e *Engine) GetCycle(ctx context.Context, a Actor, cycleID string) (*CycleView, error) {
	cycle, err := e.store.GetCycle(ctx, cycleID)
	if err != nil {
		return nil, lookup(err, "cycle")
	}
	if err := requireMember(a, cycle.ChamaID); err != nil {
		return nil, err
	}
	members, err := e.store.ListCycleMembers(ctx, cycleID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to list cycle members")
	}
	if !a.IsAdmin(cycle.ChamaID) {
		for _, m := range members {
			if m.HideSavings && m.UserID != a.UserID {
				m.CustomSavingsAmount = nil
			}
		}
	}
	return &CycleView{Cycle: cycle, Members: members}, nil
}

// ListCycles returns a chama's cycles, newest first.
func (e *Engine) ListCycles(ctx context.Context, a Actor, chamaID string) ([]*models.Cycle, error) {
	if err := requireMember(a, chamaID); err != nil {
		return nil, err
	}
	cycles, err := e.store.ListCycles(ctx, chamaID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to list cycles")
	}
	return cycles, nil
}

// SetMemberSavings sets or clears (nil) a member's savings override. Only
// possible before the cycle starts, by an admin or the member themselves.
func (e *Engine) SetMemberSavings(ctx context.Context, a Actor, cycleMemberID string, amount *decimal.Decimal) (*models.CycleMember, error) {
	if amount != nil && amount.IsNegative() {
		return nil, apperr.Validation("savings amount cannot be negative")
	}

	var member *models.CycleMember
	err := e.run(ctx, "set member savings", func(q storage.Queries, fx *effects) error {
		var err error
		member, err = q.GetCycleMember(ctx, cycleMemberID)
		if err != nil {
			return lookup(err, "cycle member")
		}
		cycle, err := q.GetCycle(ctx, member.CycleID)
		if err != nil {
			return lookup(err, "cycle")
		}
		if member.UserID != a.UserID && !a.IsAdmin(cycle.ChamaID) {
			return apperr.Unauthorized("only the member or an admin can change savings")
		}
		if !cycle.ChamaType.HasSavings() {
			return apperr.Validation("merry-go-round chamas do not carry savings")
		}
		if cycle.Status != models.CycleStatusPending {
			return apperr.InvalidState("savings can only change before the cycle starts")
		}
		if err := q.UpdateCycleMemberSavings(ctx, member.ID, amount); err != nil {
			return err
		}
		member.CustomSavingsAmount = amount
		return nil
	})
	if err != nil {
		return nil, err
	}
	return member, nil
}

// SetHideSavings toggles whether other members see the caller's savings.
func (e *Engine) SetHideSavings(ctx context.Context, a Actor, cycleMemberID string, hide bool) (*models.CycleMember, error) {
	var member *models.CycleMember
	err := e.run(ctx, "set hide savings", func(q storage.Queries, fx *effects) error {
		var err error
		member, err = q.GetCycleMember(ctx, cycleMemberID)
		if err != nil {
			return lookup(err, "cycle member")
		}
		if member.UserID != a.UserID {
			return apperr.Unauthorized("only the member can change savings visibility")
		}
		if err := q.UpdateCycleMemberHideSavings(ctx, member.ID, hide); err != nil {
			return err
		}
		member.HideSavings = hide
		return nil
	})
	if err != nil {
		return nil, err
	}
	return member, nil
}

// loadAdminCycle loads a cycle inside q and checks the actor administers it.
func loadAdminCycle(ctx context.Context, q storage.Queries, a Actor, cycleID string) (*models.Cycle, error) {
	cycle, err := q.GetCycle(ctx, cycleID)
	if err != nil {
		return nil, lookup(err, "cycle")
	}
	if err := requireAdmin(a, cycle.ChamaID); err != nil {
		return nil, err
	}
	return cycle, nil
}

// transition applies a conditional status/period change, reporting a
// concurrent move as InvalidState.
func transition(ctx context.Context, q storage.Queries, c *models.Cycle, to models.CycleStatus, toPeriod int) error {
	err := q.TransitionCycle(ctx, c.ID, c.Status, c.CurrentPeriod, to, toPeriod)
	if errors.Is(err, storage.ErrConflict) {
		return apperr.InvalidState("cycle changed concurrently")
	}
	if err != nil {
		return err
	}
	c.Status = to
	c.CurrentPeriod = toPeriod
	return nil
}

// StartCycle activates a pending cycle at period 1 and schedules the first
// payout.
func (e *Engine) StartCycle(ctx context.Context, a Actor, cycleID string) (*models.Cycle, error) {
	var cycle *models.Cycle
	err := e.run(ctx, "start cycle", func(q storage.Queries, fx *effects) error {
		var err error
		if cycle, err = loadAdminCycle(ctx, q, a, cycleID); err != nil {
			return err
		}
		if cycle.Status != models.CycleStatusPending {
			return apperr.InvalidState("only pending cycles can start (cycle is %s)", cycle.Status)
		}
		members, err := q.ListCycleMembers(ctx, cycle.ID)
		if err != nil {
			return err
		}
		if err := transition(ctx, q, cycle, models.CycleStatusActive, 1); err != nil {
			return err
		}
		if _, err := schedulePayout(ctx, q, fx, cycle, members, 1); err != nil {
			return err
		}
		for _, m := range members {
			fx.notify(m.UserID, models.NotifyCycleStarted, "Cycle started",
				fmt.Sprintf("A new %s cycle of %d periods has started. Your turn is #%d.", cycle.Frequency, cycle.TotalPeriods, m.TurnOrder),
				map[string]string{"cycle_id": cycle.ID})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cycle, nil
}

// PauseCycle moves an active cycle to paused.
func (e *Engine) PauseCycle(ctx context.Context, a Actor, cycleID string) (*models.Cycle, error) {
	return e.flip(ctx, a, cycleID, "pause cycle", models.CycleStatusActive, models.CycleStatusPaused)
}

// ResumeCycle moves a paused cycle back to active.
func (e *Engine) ResumeCycle(ctx context.Context, a Actor, cycleID string) (*models.Cycle, error) {
	return e.flip(ctx, a, cycleID, "resume cycle", models.CycleStatusPaused, models.CycleStatusActive)
}

func (e *Engine) flip(ctx context.Context, a Actor, cycleID, op string, from, to models.CycleStatus) (*models.Cycle, error) {
	var cycle *models.Cycle
	err := e.run(ctx, op, func(q storage.Queries, fx *effects) error {
		var err error
		if cycle, err = loadAdminCycle(ctx, q, a, cycleID); err != nil {
			return err
		}
		if cycle.Status != from {
			return apperr.InvalidState("cycle must be %s (is %s)", from, cycle.Status)
		}
		return transition(ctx, q, cycle, to, cycle.CurrentPeriod)
	})
	if err != nil {
		return nil, err
	}
	return cycle, nil
}

// AdvanceCycle closes the current period and opens the next one. The last
// period is closed with CompleteCycle instead.
func (e *Engine) AdvanceCycle(ctx context.Context, a Actor, cycleID string) (*models.Cycle, error) {
	var cycle *models.Cycle
	err := e.run(ctx, "advance cycle", func(q storage.Queries, fx *effects) error {
		var err error
		if cycle, err = loadAdminCycle(ctx, q, a, cycleID); err != nil {
			return err
		}
		if cycle.Status != models.CycleStatusActive {
			return apperr.InvalidState("only active cycles can advance (cycle is %s)", cycle.Status)
		}
		if cycle.CurrentPeriod >= cycle.TotalPeriods {
			return apperr.InvalidState("cycle is at its final period; complete it instead")
		}
		members, err := q.ListCycleMembers(ctx, cycle.ID)
		if err != nil {
			return err
		}
		if err := markMissed(ctx, q, fx, cycle, members, cycle.CurrentPeriod); err != nil {
			return err
		}
		next := cycle.CurrentPeriod + 1
		if err := transition(ctx, q, cycle, models.CycleStatusActive, next); err != nil {
			return err
		}
		payout, err := schedulePayout(ctx, q, fx, cycle, members, next)
		if err != nil {
			return err
		}
		for _, m := range members {
			fx.notify(m.UserID, models.NotifyCyclePeriodAdvanced, "New period",
				fmt.Sprintf("Period %d of %d has begun. Contributions are due %s.", next, cycle.TotalPeriods, payout.ScheduledDate.Format("Jan 2, 2006")),
				map[string]string{"cycle_id": cycle.ID, "period": fmt.Sprint(next)})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cycle, nil
}

// CompleteCycle closes the final period of an active cycle.
func (e *Engine) CompleteCycle(ctx context.Context, a Actor, cycleID string) (*models.Cycle, error) {
	var cycle *models.Cycle
	err := e.run(ctx, "complete cycle", func(q storage.Queries, fx *effects) error {
		var err error
		if cycle, err = loadAdminCycle(ctx, q, a, cycleID); err != nil {
			return err
		}
		if cycle.Status != models.CycleStatusActive {
			return apperr.InvalidState("only active cycles can complete (cycle is %s)", cycle.Status)
		}
		if cycle.CurrentPeriod != cycle.TotalPeriods {
			return apperr.InvalidState("cycle is at period %d of %d", cycle.CurrentPeriod, cycle.TotalPeriods)
		}
		members, err := q.ListCycleMembers(ctx, cycle.ID)
		if err != nil {
			return err
		}
		if err := markMissed(ctx, q, fx, cycle, members, cycle.CurrentPeriod); err != nil {
			return err
		}
		if err := transition(ctx, q, cycle, models.CycleStatusCompleted, cycle.CurrentPeriod); err != nil {
			return err
		}
		for _, m := range members {
			fx.notify(m.UserID, models.NotifyCycleCompleted, "Cycle completed",
				"The cycle has completed. Thank you for contributing.",
				map[string]string{"cycle_id": cycle.ID})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cycle, nil
}

// CancelCycle ends any cycle that has not completed. Unsent payouts are
// skipped.
func (e *Engine) CancelCycle(ctx context.Context, a Actor, cycleID string) (*models.Cycle, error) {
	var cycle *models.Cycle
	err := e.run(ctx, "cancel cycle", func(q storage.Queries, fx *effects) error {
		var err error
		if cycle, err = loadAdminCycle(ctx, q, a, cycleID); err != nil {
			return err
		}
		if !cycle.Status.Open() {
			return apperr.InvalidState("cycle is already %s", cycle.Status)
		}
		if err := transition(ctx, q, cycle, models.CycleStatusCancelled, cycle.CurrentPeriod); err != nil {
			return err
		}
		if err := q.SkipOpenPayouts(ctx, cycle.ID); err != nil {
			return err
		}
		members, err := q.ListCycleMembers(ctx, cycle.ID)
		if err != nil {
			return err
		}
		for _, m := range members {
			fx.notify(m.UserID, models.NotifyCycleCancelled, "Cycle cancelled",
				"The cycle was cancelled by an admin.",
				map[string]string{"cycle_id": cycle.ID})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cycle, nil
}

// schedulePayout creates the payout of a period for its turn-order
// recipient.
func schedulePayout(ctx context.Context, q storage.Queries, fx *effects, cycle *models.Cycle, members []*models.CycleMember, period int) (*models.Payout, error) {
	turn := calculator.TurnForPeriod(period, len(members))
	var recipient *models.CycleMember
	for _, m := range members {
		if m.TurnOrder == turn {
			recipient = m
			break
		}
	}
	if recipient == nil {
		return nil, apperr.InvalidState("no member holds turn %d", turn)
	}

	p := &models.Payout{
		ID:            uuid.New().String(),
		CycleID:       cycle.ID,
		RecipientID:   recipient.UserID,
		PeriodNumber:  period,
		Amount:        cycle.PayoutAmount,
		Status:        models.PayoutScheduled,
		ScheduledDate: calculator.PeriodDueDate(cycle.StartDate, cycle.Frequency, period),
		CreatedAt:     fx.now,
	}
	if err := q.CreatePayout(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// markMissed records a missed contribution for every member who never
// paid anything towards the period.
func markMissed(ctx context.Context, q storage.Queries, fx *effects, cycle *models.Cycle, members []*models.CycleMember, period int) error {
	existing, err := q.ListContributions(ctx, cycle.ID, period)
	if err != nil {
		return err
	}
	has := make(map[string]bool, len(existing))
	for _, c := range existing {
		has[c.UserID] = true
	}
	for _, m := range members {
		if has[m.UserID] {
			continue
		}
		c := newContribution(cycle, m, period, fx.now)
		c.Status = models.ContributionMissed
		if err := q.CreateContribution(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func newContribution(cycle *models.Cycle, m *models.CycleMember, period int, now time.Time) *models.Contribution {
	eff := calculator.EffectiveSavings(cycle.ChamaType, cycle.SavingsAmount, m.CustomSavingsAmount)
	return &models.Contribution{
		ID:           uuid.New().String(),
		CycleID:      cycle.ID,
		UserID:       m.UserID,
		PeriodNumber: period,
		AmountDue:    calculator.AmountDue(cycle.ContributionAmount, eff),
		AmountPaid:   decimal.Zero,
		DueDate:      calculator.PeriodDueDate(cycle.StartDate, cycle.Frequency, period),
		Status:       models.ContributionPending,
		CreatedAt:    now,
	}
}
