package engine

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/chama/internal/apperr"
	"github.com/mmynk/chama/internal/ledger"
	"github.com/mmynk/chama/internal/models"
	"github.com/mmynk/chama/internal/storage"
	"github.com/mmynk/chama/internal/storage/sqlite"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// recorder keeps every notification the engine emits.
type recorder struct {
	mu    sync.Mutex
	notes []*models.Notification
	err   error
}

func (r *recorder) Notify(_ context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, n)
	return r.err
}

func (r *recorder) ofType(typ models.NotificationType) []*models.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Notification
	for _, n := range r.notes {
		if n.Type == typ {
			out = append(out, n)
		}
	}
	return out
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Add(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type harness struct {
	t      *testing.T
	ctx    context.Context
	store  *sqlite.SQLiteStore
	engine *Engine
	notes  *recorder
	clock  *clock
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "engine.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	h := &harness{
		t:     t,
		ctx:   context.Background(),
		store: store,
		notes: &recorder{},
		clock: &clock{now: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)},
	}
	h.engine = New(store, h.notes, WithClock(h.clock.Now))
	return h
}

func (h *harness) user(name string) *models.User {
	h.t.Helper()
	u := models.NewUser(name+"@example.com", name, "", "hash")
	require.NoError(h.t, h.store.CreateUser(h.ctx, u))
	return u
}

func (h *harness) actor(u *models.User) Actor {
	h.t.Helper()
	a, err := h.engine.ResolveActor(h.ctx, u.ID)
	require.NoError(h.t, err)
	return a
}

// chama creates a chama administered by admin and joins every member.
func (h *harness) chama(typ models.ChamaType, admin *models.User, members ...*models.User) *models.Chama {
	h.t.Helper()
	c, err := h.engine.CreateChama(h.ctx, admin.ID, CreateChamaInput{
		Name:                "Umoja",
		Type:                typ,
		MaxMembers:          10,
		DefaultInterestRate: d("10"),
	})
	require.NoError(h.t, err)
	for _, m := range members {
		_, _, err := h.engine.JoinChama(h.ctx, m.ID, c.InviteCode)
		require.NoError(h.t, err)
	}
	return c
}

// activeCycle creates and starts a monthly cycle over every chama member.
func (h *harness) activeCycle(admin *models.User, in CreateCycleInput) *CycleView {
	h.t.Helper()
	a := h.actor(admin)
	if in.Frequency == "" {
		in.Frequency = models.FrequencyMonthly
	}
	view, err := h.engine.CreateCycle(h.ctx, a, in)
	require.NoError(h.t, err)
	_, err = h.engine.StartCycle(h.ctx, a, view.Cycle.ID)
	require.NoError(h.t, err)
	view.Cycle.Status = models.CycleStatusActive
	view.Cycle.CurrentPeriod = 1
	return view
}

// credit seeds savings held in a chama.
func (h *harness) credit(u *models.User, chamaID string, amount decimal.Decimal) {
	h.t.Helper()
	err := h.store.InTx(h.ctx, func(q storage.Queries) error {
		_, err := ledger.New(q, h.clock.Now()).Credit(h.ctx, ledger.Entry{
			UserID: u.ID, ChamaID: chamaID, Amount: amount, Reason: models.ReasonManual,
		})
		return err
	})
	require.NoError(h.t, err)
}

func (h *harness) wallet(u *models.User, typ models.WalletType) []*models.WalletTransaction {
	h.t.Helper()
	txs, err := h.store.ListWalletTransactions(h.ctx, u.ID, "")
	require.NoError(h.t, err)
	var out []*models.WalletTransaction
	for _, tx := range txs {
		if tx.Type == typ {
			out = append(out, tx)
		}
	}
	return out
}

func assertKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, apperr.KindOf(err), "unexpected error: %v", err)
}

func TestRunReportsInternalErrors(t *testing.T) {
	err := classify(errors.New("disk on fire"), "test op")
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))

	err = classify(storage.ErrConflict, "test op")
	assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))

	err = classify(apperr.Validation("bad"), "test op")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestFailedNotificationDoesNotUndoOperation(t *testing.T) {
	h := newHarness(t)
	h.notes.err = errors.New("push gateway down")

	admin, bob := h.user("admin"), h.user("bob")
	h.chama(models.ChamaTypeMerryGoRound, admin, bob)
	chamas, err := h.engine.ListChamas(h.ctx, admin.ID)
	require.NoError(t, err)
	require.Len(t, chamas, 1)

	view := h.activeCycle(admin, CreateCycleInput{ChamaID: chamas[0].ID, ContributionAmount: d("500")})

	got, err := h.engine.GetCycle(h.ctx, h.actor(bob), view.Cycle.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CycleStatusActive, got.Cycle.Status)
	assert.Len(t, h.notes.ofType(models.NotifyCycleStarted), 2)
}

func TestResolveActor(t *testing.T) {
	h := newHarness(t)
	admin, bob, stranger := h.user("admin"), h.user("bob"), h.user("stranger")
	c := h.chama(models.ChamaTypeSavings, admin, bob)

	a := h.actor(admin)
	assert.True(t, a.IsAdmin(c.ID))
	assert.True(t, a.IsMember(c.ID))

	b := h.actor(bob)
	assert.False(t, b.IsAdmin(c.ID))
	assert.True(t, b.IsMember(c.ID))

	s := h.actor(stranger)
	assert.False(t, s.IsMember(c.ID))
	_, err := h.engine.GetChama(h.ctx, s, c.ID)
	assertKind(t, err, apperr.KindUnauthorized)
}
