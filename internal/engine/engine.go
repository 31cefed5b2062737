// Package engine implements the chama financial core: the cycle state
// machine, contribution confirmation, payout settlement, the loan
// guarantee workflow and the late-contribution sweep.
//
// Every operation runs in one storage transaction. Notifications and
// metrics are emitted only after that transaction commits; a failed
// notification is logged and never undoes the financial change.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mmynk/chama/internal/apperr"
	"github.com/mmynk/chama/internal/ledger"
	"github.com/mmynk/chama/internal/metrics"
	"github.com/mmynk/chama/internal/models"
	"github.com/mmynk/chama/internal/notify"
	"github.com/mmynk/chama/internal/storage"
)

// DefaultLoanTermDays is how long a loan runs from its first approval.
const DefaultLoanTermDays = 30

// Actor is the authenticated caller with the chama roles resolved at the
// service boundary.
type Actor struct {
	UserID string
	// Roles maps chama ID to the caller's role for active memberships.
	Roles map[string]models.MemberRole
}

// IsMember reports whether the actor is an active member of the chama.
func (a Actor) IsMember(chamaID string) bool {
	_, ok := a.Roles[chamaID]
	return ok
}

// IsAdmin reports whether the actor administers the chama.
func (a Actor) IsAdmin(chamaID string) bool {
	return a.Roles[chamaID] == models.RoleAdmin
}

// Engine runs core operations against a Store.
type Engine struct {
	store        storage.Store
	notifier     notify.Notifier
	now          func() time.Time
	loanTermDays int
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLoanTermDays sets the loan term applied at approval.
func WithLoanTermDays(days int) Option {
	return func(e *Engine) {
		if days > 0 {
			e.loanTermDays = days
		}
	}
}

// New creates an Engine. A nil notifier discards notifications.
func New(store storage.Store, notifier notify.Notifier, opts ...Option) *Engine {
	if notifier == nil {
		notifier = notify.Discard{}
	}
	e := &Engine{
		store:        store,
		notifier:     notifier,
		now:          func() time.Time { return time.Now().UTC() },
		loanTermDays: DefaultLoanTermDays,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// effects collects what an operation emits once it has committed.
type effects struct {
	now     time.Time
	notes   []*models.Notification
	ledgers []*ledger.Ledger
}

func (fx *effects) notify(userID string, typ models.NotificationType, title, message string, data map[string]string) {
	fx.notes = append(fx.notes, notify.New(userID, typ, title, message, data))
}

func (fx *effects) ledger(q storage.Queries) *ledger.Ledger {
	l := ledger.New(q, fx.now)
	fx.ledgers = append(fx.ledgers, l)
	return l
}

// run executes fn in a transaction and flushes its effects on success.
func (e *Engine) run(ctx context.Context, op string, fn func(q storage.Queries, fx *effects) error) error {
	fx := &effects{now: e.now().Truncate(time.Second)}
	if err := e.store.InTx(ctx, func(q storage.Queries) error { return fn(q, fx) }); err != nil {
		return classify(err, op)
	}

	for _, l := range fx.ledgers {
		metrics.WalletMovements(l.Movements())
	}
	for _, n := range fx.notes {
		if err := e.notifier.Notify(ctx, n); err != nil {
			slog.Warn("Failed to deliver notification",
				"op", op, "user_id", n.UserID, "type", n.Type, "error", err)
		}
	}
	return nil
}

// classify turns storage failures that escaped an operation into apperr
// values.
func classify(err error, op string) error {
	var ae *apperr.Error
	switch {
	case errors.As(err, &ae):
		return err
	case errors.Is(err, storage.ErrNotFound):
		return &apperr.Error{Kind: apperr.KindNotFound, Message: op + ": record not found", Err: err}
	case errors.Is(err, storage.ErrConflict):
		return &apperr.Error{Kind: apperr.KindInvalidState, Message: op + ": record changed concurrently", Err: err}
	default:
		return apperr.Internal(err, "%s failed", op)
	}
}

// lookup maps a storage read error, reporting what was missing.
func lookup(err error, what string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.NotFound("%s not found", what)
	}
	return apperr.Internal(err, "failed to load %s", what)
}

func requireMember(a Actor, chamaID string) error {
	if !a.IsMember(chamaID) {
		return apperr.Unauthorized("not a member of this chama")
	}
	return nil
}

func requireAdmin(a Actor, chamaID string) error {
	if !a.IsAdmin(chamaID) {
		return apperr.Unauthorized("chama admin role required")
	}
	return nil
}
