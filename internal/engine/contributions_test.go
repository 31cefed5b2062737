package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/chama/internal/apperr"
	"github.com/mmynk/chama/internal/models"
)

func TestHybridContributionFlow(t *testing.T) {
	h := newHarness(t)
	admin, bob := h.user("admin"), h.user("bob")
	c := h.chama(models.ChamaTypeHybrid, admin, bob)
	view := h.activeCycle(admin, CreateCycleInput{
		ChamaID: c.ID, ContributionAmount: d("1000"), SavingsAmount: d("100"),
	})
	a, b := h.actor(admin), h.actor(bob)

	ct, err := h.engine.RecordPayment(h.ctx, b, RecordPaymentInput{CycleID: view.Cycle.ID, Amount: d("1000")})
	require.NoError(t, err)
	assert.True(t, ct.AmountDue.Equal(d("1100")))
	assert.Equal(t, models.ContributionPartial, ct.Status)

	_, err = h.engine.RecordPayment(h.ctx, b, RecordPaymentInput{CycleID: view.Cycle.ID, Amount: d("200")})
	assertKind(t, err, apperr.KindValidation)

	ct, err = h.engine.RecordPayment(h.ctx, b, RecordPaymentInput{CycleID: view.Cycle.ID, Amount: d("100")})
	require.NoError(t, err)
	assert.True(t, ct.AmountPaid.Equal(d("1100")))
	assert.Equal(t, models.ContributionPaid, ct.Status)

	_, err = h.engine.ConfirmContribution(h.ctx, b, ct.ID)
	assertKind(t, err, apperr.KindUnauthorized)

	conf, err := h.engine.ConfirmContribution(h.ctx, a, ct.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ContributionConfirmed, conf.Contribution.Status)
	assert.True(t, conf.Allocation.Savings.Equal(d("100")))
	assert.True(t, conf.Allocation.PayoutPool.Equal(d("1000")))

	savings, err := h.engine.GetSavings(h.ctx, b)
	require.NoError(t, err)
	assert.True(t, savings.Balance.Equal(d("100")))
	assert.True(t, savings.ByChama[c.ID].Equal(d("100")))

	contrib := h.wallet(bob, models.WalletContribution)
	require.Len(t, contrib, 1)
	assert.True(t, contrib[0].Amount.Equal(d("1100")))
	assert.Equal(t, models.DirectionOut, contrib[0].Direction)
	require.Len(t, h.wallet(bob, models.WalletSavingsCredit), 1)
	assert.Empty(t, h.wallet(bob, models.WalletFee))

	// A second confirmation changes nothing.
	_, err = h.engine.ConfirmContribution(h.ctx, a, ct.ID)
	assertKind(t, err, apperr.KindInvalidState)
	_, err = h.engine.RecordPayment(h.ctx, b, RecordPaymentInput{CycleID: view.Cycle.ID, Amount: d("1")})
	assertKind(t, err, apperr.KindInvalidState)
	assert.Len(t, h.wallet(bob, models.WalletContribution), 1)
	assert.Len(t, h.wallet(bob, models.WalletSavingsCredit), 1)

	notes := h.notes.ofType(models.NotifyContributionConfirmed)
	require.Len(t, notes, 1)
	assert.Equal(t, bob.ID, notes[0].UserID)
}

func TestConfirmPartialHybridCreditsNoSavings(t *testing.T) {
	h := newHarness(t)
	admin, bob := h.user("admin"), h.user("bob")
	c := h.chama(models.ChamaTypeHybrid, admin, bob)
	view := h.activeCycle(admin, CreateCycleInput{
		ChamaID: c.ID, ContributionAmount: d("1000"), SavingsAmount: d("100"), ServiceFee: d("20"),
	})

	ct, err := h.engine.RecordPayment(h.ctx, h.actor(bob), RecordPaymentInput{CycleID: view.Cycle.ID, Amount: d("1000")})
	require.NoError(t, err)

	conf, err := h.engine.ConfirmContribution(h.ctx, h.actor(admin), ct.ID)
	require.NoError(t, err)
	assert.True(t, conf.Allocation.Savings.IsZero())
	assert.True(t, conf.Allocation.Fee.Equal(d("20")))

	assert.Empty(t, h.wallet(bob, models.WalletSavingsCredit))
	fees := h.wallet(bob, models.WalletFee)
	require.Len(t, fees, 1)
	assert.True(t, fees[0].Amount.Equal(d("20")))

	savings, err := h.engine.GetSavings(h.ctx, h.actor(bob))
	require.NoError(t, err)
	assert.True(t, savings.Balance.IsZero())
}

func TestSavingsAllocationNeverExceedsPayment(t *testing.T) {
	h := newHarness(t)
	admin, bob := h.user("admin"), h.user("bob")
	c := h.chama(models.ChamaTypeSavings, admin, bob)
	view := h.activeCycle(admin, CreateCycleInput{
		ChamaID: c.ID, ContributionAmount: d("500"), SavingsAmount: d("300"), ServiceFee: d("50"),
	})

	ct, err := h.engine.RecordPayment(h.ctx, h.actor(bob), RecordPaymentInput{CycleID: view.Cycle.ID, Amount: d("320")})
	require.NoError(t, err)
	conf, err := h.engine.ConfirmContribution(h.ctx, h.actor(admin), ct.ID)
	require.NoError(t, err)

	alloc := conf.Allocation
	assert.True(t, alloc.Savings.Equal(d("300")))
	assert.True(t, alloc.Fee.Equal(d("20")))
	assert.True(t, alloc.Savings.Add(alloc.Fee).LessThanOrEqual(ct.AmountPaid))
}

func TestRecordPaymentAuthorization(t *testing.T) {
	h := newHarness(t)
	admin, bob, carol, stranger := h.user("admin"), h.user("bob"), h.user("carol"), h.user("stranger")
	c := h.chama(models.ChamaTypeMerryGoRound, admin, bob, carol)
	view := h.activeCycle(admin, CreateCycleInput{ChamaID: c.ID, ContributionAmount: d("100")})
	id := view.Cycle.ID

	_, err := h.engine.RecordPayment(h.ctx, h.actor(bob), RecordPaymentInput{CycleID: id, UserID: carol.ID, Amount: d("100")})
	assertKind(t, err, apperr.KindUnauthorized)

	_, err = h.engine.RecordPayment(h.ctx, h.actor(stranger), RecordPaymentInput{CycleID: id, Amount: d("100")})
	assertKind(t, err, apperr.KindUnauthorized)

	_, err = h.engine.RecordPayment(h.ctx, h.actor(bob), RecordPaymentInput{CycleID: id, Amount: d("0")})
	assertKind(t, err, apperr.KindValidation)

	_, err = h.engine.RecordPayment(h.ctx, h.actor(bob), RecordPaymentInput{CycleID: id, Period: 2, Amount: d("100")})
	assertKind(t, err, apperr.KindValidation)

	ct, err := h.engine.RecordPayment(h.ctx, h.actor(admin), RecordPaymentInput{CycleID: id, UserID: carol.ID, Amount: d("100")})
	require.NoError(t, err)
	assert.Equal(t, carol.ID, ct.UserID)
	assert.Equal(t, models.ContributionPaid, ct.Status)

	_, err = h.engine.ConfirmContribution(h.ctx, h.actor(admin), "missing")
	assertKind(t, err, apperr.KindNotFound)
}

func TestConfirmRequiresPayment(t *testing.T) {
	h := newHarness(t)
	admin, bob := h.user("admin"), h.user("bob")
	c := h.chama(models.ChamaTypeMerryGoRound, admin, bob)
	view := h.activeCycle(admin, CreateCycleInput{ChamaID: c.ID, ContributionAmount: d("100"), TotalPeriods: 3})
	a := h.actor(admin)

	_, err := h.engine.AdvanceCycle(h.ctx, a, view.Cycle.ID)
	require.NoError(t, err)

	missed, err := h.engine.ListContributions(h.ctx, a, view.Cycle.ID, 1)
	require.NoError(t, err)
	require.Len(t, missed, 2)

	_, err = h.engine.ConfirmContribution(h.ctx, a, missed[0].ID)
	assertKind(t, err, apperr.KindInvalidState)

	// A missed contribution can still be settled late; it stays missed
	// until paid in full.
	owner := h.actor(admin)
	if missed[0].UserID == bob.ID {
		owner = h.actor(bob)
	}
	ct, err := h.engine.RecordPayment(h.ctx, owner, RecordPaymentInput{CycleID: view.Cycle.ID, Period: 1, Amount: d("40")})
	require.NoError(t, err)
	assert.Equal(t, models.ContributionMissed, ct.Status)
	ct, err = h.engine.RecordPayment(h.ctx, owner, RecordPaymentInput{CycleID: view.Cycle.ID, Period: 1, Amount: d("60")})
	require.NoError(t, err)
	assert.Equal(t, models.ContributionPaid, ct.Status)
}

func TestConcurrentConfirmationAppliesOnce(t *testing.T) {
	h := newHarness(t)
	admin, bob := h.user("admin"), h.user("bob")
	c := h.chama(models.ChamaTypeSavings, admin, bob)
	view := h.activeCycle(admin, CreateCycleInput{ChamaID: c.ID, ContributionAmount: d("500"), SavingsAmount: d("200")})

	ct, err := h.engine.RecordPayment(h.ctx, h.actor(bob), RecordPaymentInput{CycleID: view.Cycle.ID, Amount: d("700")})
	require.NoError(t, err)

	a := h.actor(admin)
	const workers = 8
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = h.engine.ConfirmContribution(h.ctx, a, ct.ID)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, succeeded)

	assert.Len(t, h.wallet(bob, models.WalletContribution), 1)
	savings, err := h.engine.GetSavings(h.ctx, h.actor(bob))
	require.NoError(t, err)
	assert.True(t, savings.Balance.Equal(d("200")))
}

func TestSweepLate(t *testing.T) {
	h := newHarness(t)
	admin, bob := h.user("admin"), h.user("bob")
	c := h.chama(models.ChamaTypeMerryGoRound, admin, bob)
	view := h.activeCycle(admin, CreateCycleInput{ChamaID: c.ID, ContributionAmount: d("100")})
	b := h.actor(bob)

	_, err := h.engine.RecordPayment(h.ctx, b, RecordPaymentInput{CycleID: view.Cycle.ID, Amount: d("30")})
	require.NoError(t, err)

	// Due today is not late yet.
	n, err := h.engine.SweepLate(h.ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	h.clock.Add(48 * time.Hour)
	n, err = h.engine.SweepLate(h.ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = h.engine.SweepLate(h.ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	ct, err := h.engine.RecordPayment(h.ctx, b, RecordPaymentInput{CycleID: view.Cycle.ID, Amount: d("20")})
	require.NoError(t, err)
	assert.Equal(t, models.ContributionLate, ct.Status)

	ct, err = h.engine.RecordPayment(h.ctx, b, RecordPaymentInput{CycleID: view.Cycle.ID, Amount: d("50")})
	require.NoError(t, err)
	assert.Equal(t, models.ContributionPaid, ct.Status)
}
