// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/chama/internal/models"
)

var (
	// ErrNotFound is returned when a row looked up by key does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a conditional update matched no rows
	// because the row moved on since it was read.
	ErrConflict = errors.New("conflicting update")
)

// Queries defines the row-level operations the core needs.
// The same set is available on the Store directly and inside a
// transaction opened with Store.InTx.
type Queries interface {
	UserQueries
	ChamaQueries
	CycleQueries
	ContributionQueries
	PayoutQueries
	SavingsQueries
	WalletQueries
	LoanQueries
	NotificationQueries
}

// Store defines the interface for chama storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the engine or service layers.
type Store interface {
	Queries

	// InTx runs fn inside a single transaction. Any error returned by fn
	// rolls back every write made through q.
	InTx(ctx context.Context, fn func(q Queries) error) error

	// Close releases any resources held by the store.
	Close() error
}

type UserQueries interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// GetUsersByIDs omits IDs that do not exist.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)
}

type ChamaQueries interface {
	// CreateChama persists a chama and its creator as the first admin.
	CreateChama(ctx context.Context, chama *models.Chama, creator *models.ChamaMember) error
	GetChama(ctx context.Context, id string) (*models.Chama, error)
	GetChamaByInviteCode(ctx context.Context, code string) (*models.Chama, error)
	ListChamasForUser(ctx context.Context, userID string) ([]*models.Chama, error)
	// UpdateChamaStatus only applies when the chama is still in status from.
	UpdateChamaStatus(ctx context.Context, id string, from, to models.ChamaStatus) error
	// DeleteChamaDependents removes members and cycles (with their
	// contributions and payouts) of a chama.
	DeleteChamaDependents(ctx context.Context, chamaID string) error

	AddMember(ctx context.Context, member *models.ChamaMember) error
	GetMember(ctx context.Context, chamaID, userID string) (*models.ChamaMember, error)
	ListMembers(ctx context.Context, chamaID string) ([]*models.ChamaMember, error)
	// ListMemberships returns the user's active memberships across chamas.
	ListMemberships(ctx context.Context, userID string) ([]*models.ChamaMember, error)
	UpdateMemberStatus(ctx context.Context, chamaID, userID string, from, to models.MemberStatus) error
	CountActiveMembers(ctx context.Context, chamaID string) (int, error)
}

type CycleQueries interface {
	// CreateCycle persists a cycle together with its members.
	CreateCycle(ctx context.Context, cycle *models.Cycle, members []*models.CycleMember) error
	// GetCycle fills Cycle.ChamaType from the owning chama.
	GetCycle(ctx context.Context, id string) (*models.Cycle, error)
	ListCycles(ctx context.Context, chamaID string) ([]*models.Cycle, error)
	CountOpenCycles(ctx context.Context, chamaID string) (int, error)
	// TransitionCycle moves a cycle from (from, fromPeriod) to (to, toPeriod).
	// It returns ErrConflict if the cycle is no longer at (from, fromPeriod).
	TransitionCycle(ctx context.Context, id string, from models.CycleStatus, fromPeriod int, to models.CycleStatus, toPeriod int) error

	// ListCycleMembers returns members ordered by turn order.
	ListCycleMembers(ctx context.Context, cycleID string) ([]*models.CycleMember, error)
	GetCycleMember(ctx context.Context, id string) (*models.CycleMember, error)
	GetCycleMemberByUser(ctx context.Context, cycleID, userID string) (*models.CycleMember, error)
	UpdateCycleMemberSavings(ctx context.Context, id string, amount *decimal.Decimal) error
	UpdateCycleMemberHideSavings(ctx context.Context, id string, hide bool) error
}

type ContributionQueries interface {
	CreateContribution(ctx context.Context, c *models.Contribution) error
	GetContribution(ctx context.Context, id string) (*models.Contribution, error)
	GetContributionForPeriod(ctx context.Context, cycleID, userID string, period int) (*models.Contribution, error)
	// ListContributions lists every period when period is 0.
	ListContributions(ctx context.Context, cycleID string, period int) ([]*models.Contribution, error)
	// UpdateContributionPayment writes AmountPaid, Status and PaidAt of c.
	// It returns ErrConflict if amount_paid is no longer prevPaid or the
	// contribution has been confirmed meanwhile.
	UpdateContributionPayment(ctx context.Context, c *models.Contribution, prevPaid decimal.Decimal) error
	// ConfirmContribution returns ErrConflict if the contribution is
	// already confirmed.
	ConfirmContribution(ctx context.Context, id, confirmedBy string, at time.Time) error
	// MarkLateContributions flips pending and partial contributions of
	// active cycles due before the given day to late.
	MarkLateContributions(ctx context.Context, dueBefore time.Time) (int64, error)
}

type PayoutQueries interface {
	CreatePayout(ctx context.Context, p *models.Payout) error
	GetPayout(ctx context.Context, id string) (*models.Payout, error)
	ListPayouts(ctx context.Context, cycleID string) ([]*models.Payout, error)
	// MarkPayoutPaid returns ErrConflict unless the payout is scheduled or pending.
	MarkPayoutPaid(ctx context.Context, id, paidBy string, at time.Time) error
	// MarkPayoutConfirmed returns ErrConflict unless the payout is paid and
	// not yet confirmed by the recipient.
	MarkPayoutConfirmed(ctx context.Context, id string, at time.Time) error
	// SkipOpenPayouts marks scheduled and pending payouts of a cycle skipped.
	SkipOpenPayouts(ctx context.Context, cycleID string) error
}

type SavingsQueries interface {
	GetSavingsAccount(ctx context.Context, userID string) (*models.SavingsAccount, error)
	CreateSavingsAccount(ctx context.Context, acct *models.SavingsAccount) error
	// UpdateSavingsBalance writes a new balance and bumps the version.
	// It returns ErrConflict if the stored version is not version.
	UpdateSavingsBalance(ctx context.Context, accountID string, version int64, balance decimal.Decimal) error
	CreateSavingsTransaction(ctx context.Context, tx *models.SavingsTransaction) error
	ListSavingsTransactions(ctx context.Context, userID string) ([]*models.SavingsTransaction, error)
	// ChamaSavingsBalance sums the signed savings transactions of a user
	// carrying the given chama.
	ChamaSavingsBalance(ctx context.Context, userID, chamaID string) (decimal.Decimal, error)
}

type WalletQueries interface {
	CreateWalletTransaction(ctx context.Context, tx *models.WalletTransaction) error
	// ListWalletTransactions lists every chama when chamaID is empty.
	ListWalletTransactions(ctx context.Context, userID, chamaID string) ([]*models.WalletTransaction, error)
}

type LoanQueries interface {
	CreateLoan(ctx context.Context, loan *models.Loan, guarantors []*models.LoanGuarantor) error
	GetLoan(ctx context.Context, id string) (*models.Loan, error)
	ListLoans(ctx context.Context, chamaID string) ([]*models.Loan, error)
	CountOpenLoans(ctx context.Context, chamaID, borrowerID string) (int, error)
	// CountActiveGuarantees counts pending or approved guarantees the user
	// holds on loans that are still open.
	CountActiveGuarantees(ctx context.Context, guarantorID string) (int, error)
	UpdateLoanStatus(ctx context.Context, id string, from, to models.LoanStatus) error
	// ApproveLoan moves a pending loan to approved. dueDate is only written
	// when the loan has none.
	ApproveLoan(ctx context.Context, id string, approvedAt, dueDate time.Time) error
	// ApplyLoanPayment returns ErrConflict if the loan is not active or
	// amount_paid is no longer prevPaid.
	ApplyLoanPayment(ctx context.Context, id string, prevPaid, newPaid decimal.Decimal, status models.LoanStatus) error

	ListGuarantors(ctx context.Context, loanID string) ([]*models.LoanGuarantor, error)
	GetGuarantor(ctx context.Context, loanID, guarantorID string) (*models.LoanGuarantor, error)
	// RespondGuarantee returns ErrConflict unless the guarantee is pending.
	RespondGuarantee(ctx context.Context, id string, status models.GuarantorStatus, at time.Time) error

	CreateLoanPayment(ctx context.Context, p *models.LoanPayment) error
	GetLoanPayment(ctx context.Context, id string) (*models.LoanPayment, error)
	ListLoanPayments(ctx context.Context, loanID string) ([]*models.LoanPayment, error)
	// ReviewLoanPayment returns ErrConflict unless the payment is pending.
	ReviewLoanPayment(ctx context.Context, id string, status models.LoanPaymentStatus, reviewer string, at time.Time) error
}

type NotificationQueries interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	GetNotification(ctx context.Context, id string) (*models.Notification, error)
	ListNotifications(ctx context.Context, userID string, unreadOnly bool) ([]*models.Notification, error)
	MarkNotificationRead(ctx context.Context, id, userID string) error
}
