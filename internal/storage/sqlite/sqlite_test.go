package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/chama/internal/models"
	"github.com/mmynk/chama/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func seedUser(t *testing.T, q storage.Queries, email string) *models.User {
	t.Helper()
	u := models.NewUser(email, email, "", "hash")
	require.NoError(t, q.CreateUser(context.Background(), u))
	return u
}

func seedChama(t *testing.T, q storage.Queries, admin *models.User, typ models.ChamaType) *models.Chama {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Second)
	c := &models.Chama{
		ID:                  uuid.New().String(),
		Name:                "Umoja",
		Type:                typ,
		Status:              models.ChamaStatusActive,
		MaxMembers:          10,
		InviteCode:          uuid.New().String()[:8],
		CreatedBy:           admin.ID,
		CreatedAt:           now,
		DefaultInterestRate: decimal.NewFromInt(10),
	}
	m := &models.ChamaMember{
		ID: uuid.New().String(), ChamaID: c.ID, UserID: admin.ID,
		Role: models.RoleAdmin, Status: models.MemberStatusActive, JoinedAt: now,
	}
	require.NoError(t, q.CreateChama(context.Background(), c, m))
	return c
}

func seedCycle(t *testing.T, q storage.Queries, chama *models.Chama, users ...*models.User) (*models.Cycle, []*models.CycleMember) {
	t.Helper()
	cy := &models.Cycle{
		ID:                 uuid.New().String(),
		ChamaID:            chama.ID,
		Status:             models.CycleStatusPending,
		Frequency:          models.FrequencyMonthly,
		ContributionAmount: decimal.NewFromInt(1000),
		PayoutAmount:       decimal.NewFromInt(1000 * int64(len(users))),
		SavingsAmount:      decimal.NewFromInt(100),
		ServiceFee:         decimal.Zero,
		TotalPeriods:       len(users),
		StartDate:          time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		CreatedBy:          chama.CreatedBy,
		CreatedAt:          time.Now().UTC().Truncate(time.Second),
	}
	var members []*models.CycleMember
	for i, u := range users {
		members = append(members, &models.CycleMember{
			ID: uuid.New().String(), UserID: u.ID, TurnOrder: i + 1, AssignedNumber: i + 1,
		})
	}
	require.NoError(t, q.CreateCycle(context.Background(), cy, members))
	return cy, members
}

func TestSQLiteStore_Users(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, store, "alice@example.com")

	got, err := store.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)
	assert.True(t, alice.CreatedAt.Equal(got.CreatedAt))

	_, err = store.GetUserByID(ctx, "nonexistent-id")
	assert.True(t, errors.Is(err, storage.ErrNotFound))

	bob := seedUser(t, store, "bob@example.com")
	users, err := store.GetUsersByIDs(ctx, []string{alice.ID, bob.ID, "missing"})
	require.NoError(t, err)
	assert.Len(t, users, 2)

	err = store.CreateUser(ctx, models.NewUser("alice@example.com", "Dup", "", "x"))
	assert.Error(t, err, "duplicate email must be rejected")
}

func TestSQLiteStore_ChamaAndCycles(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, store, "alice@example.com")
	bob := seedUser(t, store, "bob@example.com")
	chama := seedChama(t, store, alice, models.ChamaTypeHybrid)

	t.Run("creator is admin", func(t *testing.T) {
		m, err := store.GetMember(ctx, chama.ID, alice.ID)
		require.NoError(t, err)
		assert.True(t, m.IsActiveAdmin())

		byCode, err := store.GetChamaByInviteCode(ctx, chama.InviteCode)
		require.NoError(t, err)
		assert.Equal(t, chama.ID, byCode.ID)
		assert.True(t, byCode.DefaultInterestRate.Equal(decimal.NewFromInt(10)))
	})

	require.NoError(t, store.AddMember(ctx, &models.ChamaMember{
		ID: uuid.New().String(), ChamaID: chama.ID, UserID: bob.ID,
		Role: models.RoleMember, Status: models.MemberStatusActive, JoinedAt: time.Now(),
	}))

	cycle, members := seedCycle(t, store, chama, alice, bob)

	t.Run("cycle carries chama type", func(t *testing.T) {
		got, err := store.GetCycle(ctx, cycle.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ChamaTypeHybrid, got.ChamaType)
		assert.Equal(t, 0, got.CurrentPeriod)
		assert.True(t, got.SavingsAmount.Equal(decimal.NewFromInt(100)))

		n, err := store.CountOpenCycles(ctx, chama.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("transition is conditional", func(t *testing.T) {
		require.NoError(t, store.TransitionCycle(ctx, cycle.ID, models.CycleStatusPending, 0, models.CycleStatusActive, 1))
		err := store.TransitionCycle(ctx, cycle.ID, models.CycleStatusPending, 0, models.CycleStatusActive, 1)
		assert.True(t, errors.Is(err, storage.ErrConflict))
	})

	t.Run("custom savings round trip", func(t *testing.T) {
		amt := decimal.RequireFromString("250.50")
		require.NoError(t, store.UpdateCycleMemberSavings(ctx, members[1].ID, &amt))
		got, err := store.GetCycleMemberByUser(ctx, cycle.ID, bob.ID)
		require.NoError(t, err)
		require.NotNil(t, got.CustomSavingsAmount)
		assert.True(t, got.CustomSavingsAmount.Equal(amt))

		require.NoError(t, store.UpdateCycleMemberSavings(ctx, members[1].ID, nil))
		got, err = store.GetCycleMember(ctx, members[1].ID)
		require.NoError(t, err)
		assert.Nil(t, got.CustomSavingsAmount)
	})

	t.Run("close removes members and cycles", func(t *testing.T) {
		require.NoError(t, store.UpdateChamaStatus(ctx, chama.ID, models.ChamaStatusActive, models.ChamaStatusClosed))
		require.NoError(t, store.DeleteChamaDependents(ctx, chama.ID))

		members, err := store.ListMembers(ctx, chama.ID)
		require.NoError(t, err)
		assert.Empty(t, members)

		_, err = store.GetCycle(ctx, cycle.ID)
		assert.True(t, errors.Is(err, storage.ErrNotFound))
	})
}

func TestSQLiteStore_ContributionsAndPayouts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, store, "alice@example.com")
	chama := seedChama(t, store, alice, models.ChamaTypeHybrid)
	cycle, _ := seedCycle(t, store, chama, alice)
	require.NoError(t, store.TransitionCycle(ctx, cycle.ID, models.CycleStatusPending, 0, models.CycleStatusActive, 1))

	c := &models.Contribution{
		ID: uuid.New().String(), CycleID: cycle.ID, UserID: alice.ID, PeriodNumber: 1,
		AmountDue: decimal.NewFromInt(1100), AmountPaid: decimal.Zero,
		DueDate: cycle.StartDate, Status: models.ContributionPending, CreatedAt: time.Now(),
	}
	require.NoError(t, store.CreateContribution(ctx, c))

	t.Run("payment update guards on previous amount", func(t *testing.T) {
		now := time.Now()
		c.AmountPaid = decimal.NewFromInt(1000)
		c.Status = models.ContributionPartial
		c.PaidAt = &now
		require.NoError(t, store.UpdateContributionPayment(ctx, c, decimal.Zero))

		err := store.UpdateContributionPayment(ctx, c, decimal.Zero)
		assert.True(t, errors.Is(err, storage.ErrConflict))
	})

	t.Run("late sweep only touches overdue unpaid rows", func(t *testing.T) {
		n, err := store.MarkLateContributions(ctx, cycle.StartDate.AddDate(0, 0, 1))
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		got, err := store.GetContributionForPeriod(ctx, cycle.ID, alice.ID, 1)
		require.NoError(t, err)
		assert.Equal(t, models.ContributionLate, got.Status)
	})

	t.Run("confirm twice conflicts", func(t *testing.T) {
		require.NoError(t, store.ConfirmContribution(ctx, c.ID, alice.ID, time.Now()))
		err := store.ConfirmContribution(ctx, c.ID, alice.ID, time.Now())
		assert.True(t, errors.Is(err, storage.ErrConflict))

		list, err := store.ListContributions(ctx, cycle.ID, 1)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, models.ContributionConfirmed, list[0].Status)
		assert.Equal(t, alice.ID, list[0].ConfirmedBy)
	})

	p := &models.Payout{
		ID: uuid.New().String(), CycleID: cycle.ID, RecipientID: alice.ID, PeriodNumber: 1,
		Amount: cycle.PayoutAmount, Status: models.PayoutScheduled, ScheduledDate: cycle.StartDate,
		CreatedAt: time.Now(),
	}
	require.NoError(t, store.CreatePayout(ctx, p))

	t.Run("payout handshake order", func(t *testing.T) {
		err := store.MarkPayoutConfirmed(ctx, p.ID, time.Now())
		assert.True(t, errors.Is(err, storage.ErrConflict), "confirm before send")

		require.NoError(t, store.MarkPayoutPaid(ctx, p.ID, alice.ID, time.Now()))
		err = store.MarkPayoutPaid(ctx, p.ID, alice.ID, time.Now())
		assert.True(t, errors.Is(err, storage.ErrConflict), "send twice")

		require.NoError(t, store.MarkPayoutConfirmed(ctx, p.ID, time.Now()))
		got, err := store.GetPayout(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, models.PayoutConfirmed, got.Status)
		assert.True(t, got.ConfirmedByMember)
		assert.NotNil(t, got.PaidAt)
	})
}

func TestSQLiteStore_SavingsAndLoans(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, store, "alice@example.com")
	bob := seedUser(t, store, "bob@example.com")
	chama := seedChama(t, store, alice, models.ChamaTypeSavings)

	t.Run("balance update is versioned", func(t *testing.T) {
		acct := &models.SavingsAccount{
			ID: uuid.New().String(), UserID: alice.ID, Balance: decimal.Zero,
			CreatedAt: time.Now(), UpdatedAt: time.Now(),
		}
		require.NoError(t, store.CreateSavingsAccount(ctx, acct))
		require.NoError(t, store.UpdateSavingsBalance(ctx, acct.ID, 0, decimal.NewFromInt(500)))

		err := store.UpdateSavingsBalance(ctx, acct.ID, 0, decimal.NewFromInt(900))
		assert.True(t, errors.Is(err, storage.ErrConflict))

		got, err := store.GetSavingsAccount(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), got.Version)
		assert.True(t, got.Balance.Equal(decimal.NewFromInt(500)))

		for _, tx := range []*models.SavingsTransaction{
			{Direction: models.SavingsCredit, Amount: decimal.NewFromInt(500), ChamaID: chama.ID},
			{Direction: models.SavingsDebit, Amount: decimal.NewFromInt(120), ChamaID: chama.ID},
			{Direction: models.SavingsCredit, Amount: decimal.NewFromInt(999), ChamaID: "other"},
		} {
			tx.ID = uuid.New().String()
			tx.AccountID = acct.ID
			tx.UserID = alice.ID
			tx.Reason = models.ReasonManual
			tx.CreatedAt = time.Now()
			require.NoError(t, store.CreateSavingsTransaction(ctx, tx))
		}

		sum, err := store.ChamaSavingsBalance(ctx, alice.ID, chama.ID)
		require.NoError(t, err)
		assert.True(t, sum.Equal(decimal.NewFromInt(380)), "got %s", sum)
	})

	loan := &models.Loan{
		ID: uuid.New().String(), ChamaID: chama.ID, BorrowerID: alice.ID,
		Principal: decimal.NewFromInt(5000), InterestRate: decimal.NewFromInt(10),
		Status: models.LoanPending, AmountPaid: decimal.Zero, CreatedAt: time.Now(),
	}
	guarantor := &models.LoanGuarantor{
		ID: uuid.New().String(), GuarantorID: bob.ID, Status: models.GuarantorPending, CreatedAt: time.Now(),
	}
	require.NoError(t, store.CreateLoan(ctx, loan, []*models.LoanGuarantor{guarantor}))

	t.Run("open loans and guarantees are counted", func(t *testing.T) {
		n, err := store.CountOpenLoans(ctx, chama.ID, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		n, err = store.CountActiveGuarantees(ctx, bob.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("guarantee response is one-shot", func(t *testing.T) {
		require.NoError(t, store.RespondGuarantee(ctx, guarantor.ID, models.GuarantorApproved, time.Now()))
		err := store.RespondGuarantee(ctx, guarantor.ID, models.GuarantorRejected, time.Now())
		assert.True(t, errors.Is(err, storage.ErrConflict))
	})

	t.Run("approval keeps an existing due date", func(t *testing.T) {
		due := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
		require.NoError(t, store.ApproveLoan(ctx, loan.ID, time.Now(), due))
		got, err := store.GetLoan(ctx, loan.ID)
		require.NoError(t, err)
		assert.Equal(t, models.LoanApproved, got.Status)
		require.NotNil(t, got.DueDate)
		assert.True(t, got.DueDate.Equal(due))

		require.NoError(t, store.UpdateLoanStatus(ctx, loan.ID, models.LoanApproved, models.LoanActive))
		require.NoError(t, store.ApplyLoanPayment(ctx, loan.ID, decimal.Zero, decimal.NewFromInt(2000), models.LoanActive))
		err = store.ApplyLoanPayment(ctx, loan.ID, decimal.Zero, decimal.NewFromInt(4000), models.LoanActive)
		assert.True(t, errors.Is(err, storage.ErrConflict))
	})

	t.Run("cancelled loans release guarantees", func(t *testing.T) {
		require.NoError(t, store.UpdateLoanStatus(ctx, loan.ID, models.LoanActive, models.LoanCancelled))
		n, err := store.CountActiveGuarantees(ctx, bob.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, n)
	})
}

func TestSQLiteStore_InTxRollsBack(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.InTx(ctx, func(q storage.Queries) error {
		seedUser(t, q, "carol@example.com")
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = store.GetUserByEmail(ctx, "carol@example.com")
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestSQLiteStore_Notifications(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	n := &models.Notification{
		ID: uuid.New().String(), UserID: "u1", Type: models.NotifyPayoutSent,
		Title: "Payout sent", Message: "KES 4000 is on its way",
		Data: map[string]string{"payout_id": "p1"}, CreatedAt: time.Now(),
	}
	require.NoError(t, store.CreateNotification(ctx, n))

	unread, err := store.ListNotifications(ctx, "u1", true)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, "p1", unread[0].Data["payout_id"])

	require.NoError(t, store.MarkNotificationRead(ctx, n.ID, "u1"))
	unread, err = store.ListNotifications(ctx, "u1", true)
	require.NoError(t, err)
	assert.Empty(t, unread)

	err = store.MarkNotificationRead(ctx, n.ID, "someone-else")
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestPlaceholders(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, ""},
		{1, "?"},
		{3, "?, ?, ?"},
	}
	for _, tt := range tests {
		if got := placeholders(tt.n); got != tt.want {
			t.Errorf("placeholders(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
