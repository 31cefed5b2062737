package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/chama/internal/apperr"
	"github.com/mmynk/chama/internal/models"
)

func TestRequestLoanLimits(t *testing.T) {
	h := newHarness(t)
	admin, bob, carol := h.user("admin"), h.user("bob"), h.user("carol")
	c := h.chama(models.ChamaTypeSavings, admin, bob, carol)

	t.Run("savings below threshold", func(t *testing.T) {
		h.credit(admin, c.ID, d("1800"))
		_, err := h.engine.RequestLoan(h.ctx, h.actor(admin), RequestLoanInput{ChamaID: c.ID, Amount: d("100")})
		assertKind(t, err, apperr.KindValidation)
	})

	h.credit(bob, c.ID, d("3000"))
	h.credit(carol, c.ID, d("1819"))

	limit, err := h.engine.GetLoanLimit(h.ctx, h.actor(bob), c.ID)
	require.NoError(t, err)
	assert.True(t, limit.Limit.Equal(d("3300")))

	t.Run("amount above own limit without guarantors", func(t *testing.T) {
		_, err := h.engine.RequestLoan(h.ctx, h.actor(bob), RequestLoanInput{ChamaID: c.ID, Amount: d("5000")})
		assertKind(t, err, apperr.KindValidation)
	})

	t.Run("guarantor savings too low to cover", func(t *testing.T) {
		_, err := h.engine.RequestLoan(h.ctx, h.actor(bob), RequestLoanInput{
			ChamaID: c.ID, Amount: d("5000"), GuarantorIDs: []string{admin.ID},
		})
		assertKind(t, err, apperr.KindValidation)
	})

	t.Run("self guarantee", func(t *testing.T) {
		_, err := h.engine.RequestLoan(h.ctx, h.actor(bob), RequestLoanInput{
			ChamaID: c.ID, Amount: d("5000"), GuarantorIDs: []string{bob.ID},
		})
		assertKind(t, err, apperr.KindValidation)
	})

	// 3300 own + floor(1819 × 1.1) = 2000 covers 5000.
	detail, err := h.engine.RequestLoan(h.ctx, h.actor(bob), RequestLoanInput{
		ChamaID: c.ID, Amount: d("5000"), Purpose: "school fees", GuarantorIDs: []string{carol.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, models.LoanPending, detail.Loan.Status)
	assert.True(t, detail.Loan.InterestRate.Equal(d("10")))
	assert.True(t, detail.Breakdown.OriginalTotal.Equal(d("5500")))
	require.Len(t, detail.Guarantors, 1)

	requested := h.notes.ofType(models.NotifyGuaranteeRequested)
	require.Len(t, requested, 1)
	assert.Equal(t, carol.ID, requested[0].UserID)

	_, err = h.engine.RequestLoan(h.ctx, h.actor(bob), RequestLoanInput{ChamaID: c.ID, Amount: d("100")})
	assertKind(t, err, apperr.KindInvalidState)

	// carol is guaranteeing bob and cannot borrow herself.
	_, err = h.engine.RequestLoan(h.ctx, h.actor(carol), RequestLoanInput{ChamaID: c.ID, Amount: d("100")})
	assertKind(t, err, apperr.KindInvalidState)
}

func TestRequestLoanInterestRate(t *testing.T) {
	h := newHarness(t)
	admin, bob, carol := h.user("admin"), h.user("bob"), h.user("carol")
	c := h.chama(models.ChamaTypeSavings, admin, bob, carol)
	h.credit(bob, c.ID, d("3000"))
	h.credit(carol, c.ID, d("3000"))

	_, err := h.engine.RequestLoan(h.ctx, h.actor(bob), RequestLoanInput{ChamaID: c.ID, Amount: d("100"), InterestRate: d("-1")})
	assertKind(t, err, apperr.KindValidation)

	_, err = h.engine.RequestLoan(h.ctx, h.actor(bob), RequestLoanInput{ChamaID: c.ID, Amount: d("100"), InterestRate: d("100.5")})
	assertKind(t, err, apperr.KindValidation)

	explicit, err := h.engine.RequestLoan(h.ctx, h.actor(bob), RequestLoanInput{ChamaID: c.ID, Amount: d("100"), InterestRate: d("5")})
	require.NoError(t, err)
	assert.True(t, explicit.Loan.InterestRate.Equal(d("5")))

	fallback, err := h.engine.RequestLoan(h.ctx, h.actor(carol), RequestLoanInput{ChamaID: c.ID, Amount: d("100")})
	require.NoError(t, err)
	assert.True(t, fallback.Loan.InterestRate.Equal(d("10")))
}

func TestLoanGuaranteeConsensus(t *testing.T) {
	h := newHarness(t)
	admin, bob, carol, dave := h.user("admin"), h.user("bob"), h.user("carol"), h.user("dave")
	c := h.chama(models.ChamaTypeSavings, admin, bob, carol, dave)
	for _, u := range []*models.User{bob, carol, dave} {
		h.credit(u, c.ID, d("3000"))
	}

	detail, err := h.engine.RequestLoan(h.ctx, h.actor(bob), RequestLoanInput{
		ChamaID: c.ID, Amount: d("9000"), GuarantorIDs: []string{carol.ID, dave.ID},
	})
	require.NoError(t, err)
	id := detail.Loan.ID

	_, err = h.engine.RespondToGuarantee(h.ctx, h.actor(admin), id, true)
	assertKind(t, err, apperr.KindUnauthorized)

	loan, err := h.engine.RespondToGuarantee(h.ctx, h.actor(carol), id, true)
	require.NoError(t, err)
	assert.Equal(t, models.LoanPending, loan.Status)

	_, err = h.engine.RespondToGuarantee(h.ctx, h.actor(carol), id, false)
	assertKind(t, err, apperr.KindInvalidState)

	_, err = h.engine.ApproveLoan(h.ctx, h.actor(admin), id)
	assertKind(t, err, apperr.KindInvalidState)

	loan, err = h.engine.RespondToGuarantee(h.ctx, h.actor(dave), id, true)
	require.NoError(t, err)
	assert.Equal(t, models.LoanApproved, loan.Status)
	require.NotNil(t, loan.DueDate)
	assert.Equal(t, "2026-04-09", loan.DueDate.Format("2006-01-02"))

	approved := h.notes.ofType(models.NotifyLoanApproved)
	require.Len(t, approved, 1)
	assert.Equal(t, bob.ID, approved[0].UserID)

	got, err := h.engine.GetLoan(h.ctx, h.actor(carol), id)
	require.NoError(t, err)
	assert.Equal(t, models.LoanApproved, got.Loan.Status)
	for _, g := range got.Guarantors {
		assert.Equal(t, models.GuarantorApproved, g.Status)
		assert.NotNil(t, g.RespondedAt)
	}
}

func TestRejectedGuaranteeCanBeCancelledAndResubmitted(t *testing.T) {
	h := newHarness(t)
	admin, bob, carol, dave := h.user("admin"), h.user("bob"), h.user("carol"), h.user("dave")
	c := h.chama(models.ChamaTypeSavings, admin, bob, carol, dave)
	for _, u := range []*models.User{bob, carol, dave} {
		h.credit(u, c.ID, d("3000"))
	}

	detail, err := h.engine.RequestLoan(h.ctx, h.actor(bob), RequestLoanInput{
		ChamaID: c.ID, Amount: d("5000"), GuarantorIDs: []string{carol.ID},
	})
	require.NoError(t, err)

	loan, err := h.engine.RespondToGuarantee(h.ctx, h.actor(carol), detail.Loan.ID, false)
	require.NoError(t, err)
	assert.Equal(t, models.LoanPending, loan.Status)
	require.Len(t, h.notes.ofType(models.NotifyGuaranteeRejected), 1)

	_, err = h.engine.ApproveLoan(h.ctx, h.actor(admin), detail.Loan.ID)
	assertKind(t, err, apperr.KindInvalidState)

	_, err = h.engine.CancelLoan(h.ctx, h.actor(dave), detail.Loan.ID)
	assertKind(t, err, apperr.KindUnauthorized)

	loan, err = h.engine.CancelLoan(h.ctx, h.actor(bob), detail.Loan.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LoanCancelled, loan.Status)
	assert.Len(t, h.notes.ofType(models.NotifyLoanCancelled), 1)

	_, err = h.engine.CancelLoan(h.ctx, h.actor(bob), detail.Loan.ID)
	assertKind(t, err, apperr.KindInvalidState)

	_, err = h.engine.RequestLoan(h.ctx, h.actor(bob), RequestLoanInput{
		ChamaID: c.ID, Amount: d("5000"), GuarantorIDs: []string{dave.ID},
	})
	require.NoError(t, err)
}

func TestLoanRepayment(t *testing.T) {
	h := newHarness(t)
	admin, bob := h.user("admin"), h.user("bob")
	c := h.chama(models.ChamaTypeSavings, admin, bob)
	h.credit(bob, c.ID, d("3000"))
	a, b := h.actor(admin), h.actor(bob)

	detail, err := h.engine.RequestLoan(h.ctx, b, RequestLoanInput{ChamaID: c.ID, Amount: d("2000")})
	require.NoError(t, err)
	id := detail.Loan.ID

	_, err = h.engine.DisburseLoan(h.ctx, a, id)
	assertKind(t, err, apperr.KindInvalidState)

	_, err = h.engine.ApproveLoan(h.ctx, b, id)
	assertKind(t, err, apperr.KindUnauthorized)

	// No guarantors: the admin gate approves directly.
	loan, err := h.engine.ApproveLoan(h.ctx, a, id)
	require.NoError(t, err)
	assert.Equal(t, models.LoanApproved, loan.Status)

	_, err = h.engine.SubmitLoanPayment(h.ctx, b, id, d("100"))
	assertKind(t, err, apperr.KindInvalidState)

	loan, err = h.engine.DisburseLoan(h.ctx, a, id)
	require.NoError(t, err)
	assert.Equal(t, models.LoanActive, loan.Status)
	disbursed := h.wallet(bob, models.WalletLoanDisbursement)
	require.Len(t, disbursed, 1)
	assert.True(t, disbursed[0].Amount.Equal(d("2000")))

	_, err = h.engine.CancelLoan(h.ctx, b, id)
	assertKind(t, err, apperr.KindInvalidState)

	// Outstanding is 2200 before the due date.
	_, err = h.engine.SubmitLoanPayment(h.ctx, b, id, d("2200.01"))
	assertKind(t, err, apperr.KindValidation)
	_, err = h.engine.SubmitLoanPayment(h.ctx, a, id, d("100"))
	assertKind(t, err, apperr.KindUnauthorized)

	first, err := h.engine.SubmitLoanPayment(h.ctx, b, id, d("1200"))
	require.NoError(t, err)
	assert.Equal(t, models.LoanPaymentPending, first.Status)

	rejected, err := h.engine.SubmitLoanPayment(h.ctx, b, id, d("500"))
	require.NoError(t, err)
	_, err = h.engine.ReviewLoanPayment(h.ctx, a, rejected.ID, false)
	require.NoError(t, err)
	require.Len(t, h.notes.ofType(models.NotifyLoanPaymentRejected), 1)

	_, err = h.engine.ReviewLoanPayment(h.ctx, b, first.ID, true)
	assertKind(t, err, apperr.KindUnauthorized)

	reviewed, err := h.engine.ReviewLoanPayment(h.ctx, a, first.ID, true)
	require.NoError(t, err)
	assert.Equal(t, models.LoanPaymentApproved, reviewed.Status)

	_, err = h.engine.ReviewLoanPayment(h.ctx, a, first.ID, true)
	assertKind(t, err, apperr.KindInvalidState)

	bd, err := h.engine.GetLoanBreakdown(h.ctx, b, id)
	require.NoError(t, err)
	assert.True(t, bd.TotalOutstanding.Equal(d("1000")))

	last, err := h.engine.SubmitLoanPayment(h.ctx, b, id, d("1000"))
	require.NoError(t, err)
	_, err = h.engine.ReviewLoanPayment(h.ctx, a, last.ID, true)
	require.NoError(t, err)

	got, err := h.engine.GetLoan(h.ctx, b, id)
	require.NoError(t, err)
	assert.Equal(t, models.LoanPaid, got.Loan.Status)
	assert.True(t, got.Loan.AmountPaid.Equal(d("2200")))
	assert.Len(t, got.Payments, 3)
	assert.Len(t, h.wallet(bob, models.WalletLoanRepayment), 2)

	paidNotes := h.notes.ofType(models.NotifyLoanPaymentApproved)
	require.Len(t, paidNotes, 2)
	assert.Equal(t, string(models.LoanPaid), paidNotes[1].Data["loan_status"])

	// A repaid loan frees the borrower to borrow again.
	_, err = h.engine.RequestLoan(h.ctx, b, RequestLoanInput{ChamaID: c.ID, Amount: d("1000")})
	require.NoError(t, err)
}

func TestOverdueLoanAccruesPenalty(t *testing.T) {
	h := newHarness(t)
	admin, bob := h.user("admin"), h.user("bob")
	c := h.chama(models.ChamaTypeSavings, admin, bob)
	h.credit(bob, c.ID, d("10000"))
	a, b := h.actor(admin), h.actor(bob)

	detail, err := h.engine.RequestLoan(h.ctx, b, RequestLoanInput{ChamaID: c.ID, Amount: d("10000")})
	require.NoError(t, err)
	_, err = h.engine.ApproveLoan(h.ctx, a, detail.Loan.ID)
	require.NoError(t, err)
	_, err = h.engine.DisburseLoan(h.ctx, a, detail.Loan.ID)
	require.NoError(t, err)

	// 30-day term plus 40 days overdue.
	h.clock.Add(70 * 24 * time.Hour)

	bd, err := h.engine.GetLoanBreakdown(h.ctx, b, detail.Loan.ID)
	require.NoError(t, err)
	assert.True(t, bd.IsOverdue)
	assert.Equal(t, 40, bd.DaysOverdue)
	assert.True(t, bd.PenaltyInterest.Equal(d("2200")))
	assert.True(t, bd.TotalOutstanding.Equal(d("13200")))

	_, err = h.engine.SubmitLoanPayment(h.ctx, b, detail.Loan.ID, d("13200"))
	require.NoError(t, err)
}

func TestListLoans(t *testing.T) {
	h := newHarness(t)
	admin, bob, stranger := h.user("admin"), h.user("bob"), h.user("stranger")
	c := h.chama(models.ChamaTypeSavings, admin, bob)
	h.credit(bob, c.ID, d("3000"))

	_, err := h.engine.RequestLoan(h.ctx, h.actor(bob), RequestLoanInput{ChamaID: c.ID, Amount: d("1000")})
	require.NoError(t, err)

	loans, err := h.engine.ListLoans(h.ctx, h.actor(admin), c.ID)
	require.NoError(t, err)
	require.Len(t, loans, 1)
	assert.Equal(t, bob.ID, loans[0].BorrowerID)

	_, err = h.engine.ListLoans(h.ctx, h.actor(stranger), c.ID)
	assertKind(t, err, apperr.KindUnauthorized)
	_, err = h.engine.GetLoan(h.ctx, h.actor(stranger), loans[0].ID)
	assertKind(t, err, apperr.KindUnauthorized)
}
