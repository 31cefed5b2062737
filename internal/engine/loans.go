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

type RequestLoanInput struct {
	ChamaID string
	Amount  decimal.Decimal
	// InterestRate is a percentage. Zero falls back to the chama default.
	InterestRate decimal.Decimal
	Purpose      string
	GuarantorIDs []string
}

// LoanDetail is a loan with its guarantees, repayments and current position.
type LoanDetail struct {
	Loan       *models.Loan
	Guarantors []*models.LoanGuarantor
	Payments   []*models.LoanPayment
	Breakdown  calculator.LoanBreakdown
}

// LoanLimit is what a member may borrow on their own in a chama.
type LoanLimit struct {
	Savings decimal.Decimal
	Limit   decimal.Decimal
}

// resolveRate picks the loan's own rate, falling back to the chama default.
func resolveRate(loanRate, chamaDefault decimal.Decimal) decimal.Decimal {
	if loanRate.IsPositive() {
		return loanRate
	}
	if chamaDefault.IsPositive() {
		return chamaDefault
	}
	return decimal.Zero
}

// RequestLoan files a loan request. Guarantors are asked to back it when
// the amount exceeds the borrower's own limit.
func (e *Engine) RequestLoan(ctx context.Context, a Actor, in RequestLoanInput) (*LoanDetail, error) {
	if err := requireMember(a, in.ChamaID); err != nil {
		return nil, err
	}
	if !in.Amount.IsPositive() {
		return nil, apperr.Validation("loan amount must be positive")
	}
	if in.InterestRate.IsNegative() || in.InterestRate.GreaterThan(decimal.NewFromInt(100)) {
		return nil, apperr.Validation("interest rate must be between 0 and 100")
	}
	seen := make(map[string]bool, len(in.GuarantorIDs))
	for _, id := range in.GuarantorIDs {
		switch {
		case id == a.UserID:
			return nil, apperr.Validation("a borrower cannot guarantee their own loan")
		case seen[id]:
			return nil, apperr.Validation("guarantor %s listed more than once", id)
		}
		seen[id] = true
	}

	var detail *LoanDetail
	err := e.run(ctx, "request loan", func(q storage.Queries, fx *effects) error {
		chama, err := q.GetChama(ctx, in.ChamaID)
		if err != nil {
			return lookup(err, "chama")
		}
		if chama.Status != models.ChamaStatusActive {
			return apperr.InvalidState("chama is %s", chama.Status)
		}

		open, err := q.CountOpenLoans(ctx, chama.ID, a.UserID)
		if err != nil {
			return err
		}
		if open > 0 {
			return apperr.InvalidState("you already have an open loan in this chama")
		}
		held, err := q.CountActiveGuarantees(ctx, a.UserID)
		if err != nil {
			return err
		}
		if held > 0 {
			return apperr.InvalidState("you cannot borrow while guaranteeing another loan")
		}

		savings, err := q.ChamaSavingsBalance(ctx, a.UserID, chama.ID)
		if err != nil {
			return err
		}
		ownLimit := calculator.CalculateLoanLimit(savings)

		limits := make([]decimal.Decimal, 0, len(in.GuarantorIDs))
		for _, id := range in.GuarantorIDs {
			m, err := q.GetMember(ctx, chama.ID, id)
			if errors.Is(err, storage.ErrNotFound) || (err == nil && m.Status != models.MemberStatusActive) {
				return apperr.Validation("guarantor %s is not a member of this chama", id)
			}
			if err != nil {
				return err
			}
			n, err := q.CountActiveGuarantees(ctx, id)
			if err != nil {
				return err
			}
			if n > 0 {
				return apperr.Validation("guarantor %s is already guaranteeing another loan", id)
			}
			gs, err := q.ChamaSavingsBalance(ctx, id, chama.ID)
			if err != nil {
				return err
			}
			limits = append(limits, calculator.CalculateLoanLimit(gs))
		}

		if _, err := calculator.CheckLoanCapacity(in.Amount, ownLimit, limits); err != nil {
			return apperr.Validation("%v", err)
		}

		loan := &models.Loan{
			ID:           uuid.New().String(),
			ChamaID:      chama.ID,
			BorrowerID:   a.UserID,
			Principal:    in.Amount,
			InterestRate: resolveRate(in.InterestRate, chama.DefaultInterestRate),
			Status:       models.LoanPending,
			AmountPaid:   decimal.Zero,
			Purpose:      in.Purpose,
			CreatedAt:    fx.now,
		}
		guarantors := make([]*models.LoanGuarantor, 0, len(in.GuarantorIDs))
		for _, id := range in.GuarantorIDs {
			guarantors = append(guarantors, &models.LoanGuarantor{
				ID:          uuid.New().String(),
				LoanID:      loan.ID,
				GuarantorID: id,
				Status:      models.GuarantorPending,
				CreatedAt:   fx.now,
			})
		}
		if err := q.CreateLoan(ctx, loan, guarantors); err != nil {
			return err
		}

		for _, g := range guarantors {
			fx.notify(g.GuarantorID, models.NotifyGuaranteeRequested, "Guarantee requested",
				fmt.Sprintf("You have been asked to guarantee a loan of %s.", loan.Principal),
				map[string]string{"loan_id": loan.ID, "chama_id": chama.ID, "borrower_id": a.UserID})
		}
		detail = &LoanDetail{
			Loan:       loan,
			Guarantors: guarantors,
			Breakdown:  breakdown(loan, fx.now),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

func breakdown(l *models.Loan, now time.Time) calculator.LoanBreakdown {
	return calculator.CalculateLoanBreakdown(l.Principal, l.InterestRate, l.AmountPaid, l.DueDate, now)
}

// RespondToGuarantee records a guarantor's answer. The loan is approved as
// soon as the last guarantor approves.
func (e *Engine) RespondToGuarantee(ctx context.Context, a Actor, loanID string, approve bool) (*models.Loan, error) {
	var loan *models.Loan
	err := e.run(ctx, "respond to guarantee", func(q storage.Queries, fx *effects) error {
		var err error
		loan, err = q.GetLoan(ctx, loanID)
		if err != nil {
			return lookup(err, "loan")
		}
		g, err := q.GetGuarantor(ctx, loan.ID, a.UserID)
		if errors.Is(err, storage.ErrNotFound) {
			return apperr.Unauthorized("you are not a guarantor of this loan")
		}
		if err != nil {
			return err
		}
		if loan.Status != models.LoanPending {
			return apperr.InvalidState("loan is %s", loan.Status)
		}

		status := models.GuarantorRejected
		if approve {
			status = models.GuarantorApproved
		}
		if err := q.RespondGuarantee(ctx, g.ID, status, fx.now); err != nil {
			if errors.Is(err, storage.ErrConflict) {
				return apperr.InvalidState("guarantee already answered")
			}
			return err
		}

		if !approve {
			fx.notify(loan.BorrowerID, models.NotifyGuaranteeRejected, "Guarantee declined",
				"A guarantor declined your loan request. You can cancel it and request again.",
				map[string]string{"loan_id": loan.ID, "guarantor_id": a.UserID})
			return nil
		}
		return e.approveIfUnanimous(ctx, q, fx, loan, false)
	})
	if err != nil {
		return nil, err
	}
	return loan, nil
}

// approveIfUnanimous approves loan when every guarantor has approved. With
// strict set, an unapproved guarantor is an error instead of a no-op.
func (e *Engine) approveIfUnanimous(ctx context.Context, q storage.Queries, fx *effects, loan *models.Loan, strict bool) error {
	guarantors, err := q.ListGuarantors(ctx, loan.ID)
	if err != nil {
		return err
	}
	for _, g := range guarantors {
		if g.Status != models.GuarantorApproved {
			if strict {
				return apperr.InvalidState("all guarantors must approve before the loan can be approved")
			}
			return nil
		}
	}

	due := calculator.StartOfDay(fx.now).AddDate(0, 0, e.loanTermDays)
	if err := q.ApproveLoan(ctx, loan.ID, fx.now, due); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return apperr.InvalidState("loan is no longer pending")
		}
		return err
	}
	approvedAt := fx.now
	loan.Status = models.LoanApproved
	loan.ApprovedAt = &approvedAt
	if loan.DueDate == nil {
		loan.DueDate = &due
	}

	fx.notify(loan.BorrowerID, models.NotifyLoanApproved, "Loan approved",
		fmt.Sprintf("Your loan of %s has been approved.", loan.Principal),
		map[string]string{"loan_id": loan.ID, "chama_id": loan.ChamaID})
	return nil
}

// ApproveLoan is the admin gate; it still requires every guarantor to have
// approved.
func (e *Engine) ApproveLoan(ctx context.Context, a Actor, loanID string) (*models.Loan, error) {
	var loan *models.Loan
	err := e.run(ctx, "approve loan", func(q storage.Queries, fx *effects) error {
		var err error
		loan, err = q.GetLoan(ctx, loanID)
		if err != nil {
			return lookup(err, "loan")
		}
		if err := requireAdmin(a, loan.ChamaID); err != nil {
			return err
		}
		if loan.Status != models.LoanPending {
			return apperr.InvalidState("loan is %s", loan.Status)
		}
		return e.approveIfUnanimous(ctx, q, fx, loan, true)
	})
	if err != nil {
		return nil, err
	}
	return loan, nil
}

// DisburseLoan records that an approved loan's principal was sent to the
// borrower.
func (e *Engine) DisburseLoan(ctx context.Context, a Actor, loanID string) (*models.Loan, error) {
	var loan *models.Loan
	err := e.run(ctx, "disburse loan", func(q storage.Queries, fx *effects) error {
		var err error
		loan, err = q.GetLoan(ctx, loanID)
		if err != nil {
			return lookup(err, "loan")
		}
		if err := requireAdmin(a, loan.ChamaID); err != nil {
			return err
		}
		if loan.Status != models.LoanApproved {
			return apperr.InvalidState("only approved loans can be disbursed (loan is %s)", loan.Status)
		}
		if err := q.UpdateLoanStatus(ctx, loan.ID, models.LoanApproved, models.LoanActive); err != nil {
			if errors.Is(err, storage.ErrConflict) {
				return apperr.InvalidState("loan changed concurrently")
			}
			return err
		}
		loan.Status = models.LoanActive

		return fx.ledger(q).Wallet(ctx, &models.WalletTransaction{
			UserID:      loan.BorrowerID,
			ChamaID:     loan.ChamaID,
			Type:        models.WalletLoanDisbursement,
			Direction:   models.DirectionIn,
			Amount:      loan.Principal,
			ReferenceID: loan.ID,
			Description: "Loan disbursement",
		})
	})
	if err != nil {
		return nil, err
	}
	return loan, nil
}

// CancelLoan withdraws a loan that has not been disbursed, releasing its
// guarantors.
func (e *Engine) CancelLoan(ctx context.Context, a Actor, loanID string) (*models.Loan, error) {
	var loan *models.Loan
	err := e.run(ctx, "cancel loan", func(q storage.Queries, fx *effects) error {
		var err error
		loan, err = q.GetLoan(ctx, loanID)
		if err != nil {
			return lookup(err, "loan")
		}
		if loan.BorrowerID != a.UserID && !a.IsAdmin(loan.ChamaID) {
			return apperr.Unauthorized("only the borrower or an admin can cancel a loan")
		}
		if loan.Status != models.LoanPending && loan.Status != models.LoanApproved {
			return apperr.InvalidState("a %s loan cannot be cancelled", loan.Status)
		}
		if err := q.UpdateLoanStatus(ctx, loan.ID, loan.Status, models.LoanCancelled); err != nil {
			if errors.Is(err, storage.ErrConflict) {
				return apperr.InvalidState("loan changed concurrently")
			}
			return err
		}
		loan.Status = models.LoanCancelled

		guarantors, err := q.ListGuarantors(ctx, loan.ID)
		if err != nil {
			return err
		}
		for _, g := range guarantors {
			fx.notify(g.GuarantorID, models.NotifyLoanCancelled, "Loan cancelled",
				"A loan you were asked to guarantee has been cancelled.",
				map[string]string{"loan_id": loan.ID})
		}
		if loan.BorrowerID != a.UserID {
			fx.notify(loan.BorrowerID, models.NotifyLoanCancelled, "Loan cancelled",
				"Your loan request was cancelled by an admin.",
				map[string]string{"loan_id": loan.ID})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return loan, nil
}

// SubmitLoanPayment proposes a repayment for admin review.
func (e *Engine) SubmitLoanPayment(ctx context.Context, a Actor, loanID string, amount decimal.Decimal) (*models.LoanPayment, error) {
	if !amount.IsPositive() {
		return nil, apperr.Validation("payment amount must be positive")
	}
	var p *models.LoanPayment
	err := e.run(ctx, "submit loan payment", func(q storage.Queries, fx *effects) error {
		loan, err := q.GetLoan(ctx, loanID)
		if err != nil {
			return lookup(err, "loan")
		}
		if loan.BorrowerID != a.UserID {
			return apperr.Unauthorized("only the borrower can repay a loan")
		}
		if loan.Status != models.LoanActive {
			return apperr.InvalidState("only active loans can be repaid (loan is %s)", loan.Status)
		}
		if err := checkRepayment(loan, amount, fx.now); err != nil {
			return err
		}
		p = &models.LoanPayment{
			ID:        uuid.New().String(),
			LoanID:    loan.ID,
			PayerID:   a.UserID,
			Amount:    amount,
			Status:    models.LoanPaymentPending,
			CreatedAt: fx.now,
		}
		return q.CreateLoanPayment(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func checkRepayment(loan *models.Loan, amount decimal.Decimal, now time.Time) error {
	b := breakdown(loan, now)
	if amount.GreaterThan(b.TotalOutstanding) {
		return apperr.Validation("payment of %s exceeds the outstanding balance of %s", amount, b.TotalOutstanding)
	}
	return nil
}

// ReviewLoanPayment approves or rejects a proposed repayment. Approval
// credits the loan and marks it paid once the original total is covered.
func (e *Engine) ReviewLoanPayment(ctx context.Context, a Actor, paymentID string, approve bool) (*models.LoanPayment, error) {
	var p *models.LoanPayment
	err := e.run(ctx, "review loan payment", func(q storage.Queries, fx *effects) error {
		var err error
		p, err = q.GetLoanPayment(ctx, paymentID)
		if err != nil {
			return lookup(err, "loan payment")
		}
		loan, err := q.GetLoan(ctx, p.LoanID)
		if err != nil {
			return lookup(err, "loan")
		}
		if err := requireAdmin(a, loan.ChamaID); err != nil {
			return err
		}
		if p.Status != models.LoanPaymentPending {
			return apperr.InvalidState("loan payment already reviewed")
		}

		status := models.LoanPaymentRejected
		if approve {
			status = models.LoanPaymentApproved
		}
		if err := q.ReviewLoanPayment(ctx, p.ID, status, a.UserID, fx.now); err != nil {
			if errors.Is(err, storage.ErrConflict) {
				return apperr.InvalidState("loan payment already reviewed")
			}
			return err
		}
		reviewedAt := fx.now
		p.Status = status
		p.ReviewedBy = a.UserID
		p.ReviewedAt = &reviewedAt

		if !approve {
			fx.notify(loan.BorrowerID, models.NotifyLoanPaymentRejected, "Loan payment rejected",
				fmt.Sprintf("Your loan payment of %s was rejected.", p.Amount),
				map[string]string{"loan_id": loan.ID, "payment_id": p.ID})
			return nil
		}

		if loan.Status != models.LoanActive {
			return apperr.InvalidState("loan is %s", loan.Status)
		}
		if err := checkRepayment(loan, p.Amount, fx.now); err != nil {
			return err
		}
		paid := loan.AmountPaid.Add(p.Amount)
		next := models.LoanActive
		if !paid.LessThan(breakdown(loan, fx.now).OriginalTotal) {
			next = models.LoanPaid
		}
		if err := q.ApplyLoanPayment(ctx, loan.ID, loan.AmountPaid, paid, next); err != nil {
			if errors.Is(err, storage.ErrConflict) {
				return apperr.InvalidState("loan changed concurrently")
			}
			return err
		}

		if err := fx.ledger(q).Wallet(ctx, &models.WalletTransaction{
			UserID:      loan.BorrowerID,
			ChamaID:     loan.ChamaID,
			Type:        models.WalletLoanRepayment,
			Direction:   models.DirectionOut,
			Amount:      p.Amount,
			ReferenceID: p.ID,
			Description: "Loan repayment",
		}); err != nil {
			return err
		}

		msg := fmt.Sprintf("Your loan payment of %s was approved.", p.Amount)
		if next == models.LoanPaid {
			msg += " The loan is now fully repaid."
		}
		fx.notify(loan.BorrowerID, models.NotifyLoanPaymentApproved, "Loan payment approved", msg,
			map[string]string{"loan_id": loan.ID, "payment_id": p.ID, "loan_status": string(next)})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetLoan returns a loan with its guarantors, payments and breakdown.
// Members of the loan's chama can read it.
func (e *Engine) GetLoan(ctx context.Context, a Actor, loanID string) (*LoanDetail, error) {
	loan, err := e.store.GetLoan(ctx, loanID)
	if err != nil {
		return nil, lookup(err, "loan")
	}
	if loan.BorrowerID != a.UserID {
		if err := requireMember(a, loan.ChamaID); err != nil {
			return nil, err
		}
	}
	guarantors, err := e.store.ListGuarantors(ctx, loan.ID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to list guarantors")
	}
	payments, err := e.store.ListLoanPayments(ctx, loan.ID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to list loan payments")
	}
	return &LoanDetail{
		Loan:       loan,
		Guarantors: guarantors,
		Payments:   payments,
		Breakdown:  breakdown(loan, e.now()),
	}, nil
}

// ListLoans returns the loans of a chama.
func (e *Engine) ListLoans(ctx context.Context, a Actor, chamaID string) ([]*models.Loan, error) {
	if err := requireMember(a, chamaID); err != nil {
		return nil, err
	}
	loans, err := e.store.ListLoans(ctx, chamaID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to list loans")
	}
	return loans, nil
}

// GetLoanBreakdown computes a loan's repayment position as of now.
func (e *Engine) GetLoanBreakdown(ctx context.Context, a Actor, loanID string) (calculator.LoanBreakdown, error) {
	d, err := e.GetLoan(ctx, a, loanID)
	if err != nil {
		return calculator.LoanBreakdown{}, err
	}
	return d.Breakdown, nil
}

// GetLoanLimit reports the caller's own borrowing limit in a chama.
func (e *Engine) GetLoanLimit(ctx context.Context, a Actor, chamaID string) (*LoanLimit, error) {
	if err := requireMember(a, chamaID); err != nil {
		return nil, err
	}
	savings, err := e.store.ChamaSavingsBalance(ctx, a.UserID, chamaID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to sum chama savings")
	}
	return &LoanLimit{Savings: savings, Limit: calculator.CalculateLoanLimit(savings)}, nil
}
