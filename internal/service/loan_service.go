package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/chama/internal/engine"
	"github.com/mmynk/chama/internal/models"
	"github.com/mmynk/chama/pkg/api"
)

// LoanService implements the Connect LoanService.
type LoanService struct {
	base
}

// NewLoanService creates a LoanService backed by the given engine.
func NewLoanService(e *engine.Engine) *LoanService {
	return &LoanService{base{engine: e}}
}

// RequestLoan opens a loan request, optionally backed by guarantors.
func (s *LoanService) RequestLoan(ctx context.Context, req *connect.Request[api.RequestLoanRequest]) (*connect.Response[api.RequestLoanResponse], error) {
	slog.Info("RequestLoan request received",
		"chama_id", req.Msg.ChamaID,
		"amount", req.Msg.Amount,
		"guarantors", len(req.Msg.GuarantorIDs))

	a, err := s.begin(ctx, req.Msg)
	if err != nil {
		return nil, err
	}
	detail, err := s.engine.RequestLoan(ctx, a, engine.RequestLoanInput{
		ChamaID:      req.Msg.ChamaID,
		Amount:       req.Msg.Amount,
		InterestRate: req.Msg.InterestRate,
		Purpose:      req.Msg.Purpose,
		GuarantorIDs: req.Msg.GuarantorIDs,
	})
	if err != nil {
		return nil, toConnectError("request loan", err)
	}

	slog.Info("Loan requested", "loan_id", detail.Loan.ID, "status", detail.Loan.Status)
	return connect.NewResponse(&api.RequestLoanResponse{Loan: toAPILoanDetail(detail)}), nil
}

// RespondToGuarantee records a guarantor's answer.
func (s *LoanService) RespondToGuarantee(ctx context.Context, req *connect.Request[api.RespondToGuaranteeRequest]) (*connect.Response[api.LoanActionResponse], error) {
	slog.Info("RespondToGuarantee request received", "loan_id", req.Msg.LoanID, "approve", req.Msg.Approve)

	a, err := s.begin(ctx, req.Msg)
	if err != nil {
		return nil, err
	}
	loan, err := s.engine.RespondToGuarantee(ctx, a, req.Msg.LoanID, req.Msg.Approve)
	if err != nil {
		return nil, toConnectError("respond to guarantee", err)
	}
	return connect.NewResponse(&api.LoanActionResponse{Loan: toAPILoan(loan)}), nil
}

type loanAction func(context.Context, engine.Actor, string) (*models.Loan, error)

func (s *LoanService) act(ctx context.Context, op string, req *connect.Request[api.LoanActionRequest], fn loanAction) (*connect.Response[api.LoanActionResponse], error) {
	slog.Info(op+" request received", "loan_id", req.Msg.LoanID)

	a, err := s.begin(ctx, req.Msg)
	if err != nil {
		return nil, err
	}
	loan, err := fn(ctx, a, req.Msg.LoanID)
	if err != nil {
		return nil, toConnectError(op, err)
	}

	slog.Info("Loan updated", "loan_id", loan.ID, "status", loan.Status)
	return connect.NewResponse(&api.LoanActionResponse{Loan: toAPILoan(loan)}), nil
}

func (s *LoanService) ApproveLoan(ctx context.Context, req *connect.Request[api.LoanActionRequest]) (*connect.Response[api.LoanActionResponse], error) {
	return s.act(ctx, "ApproveLoan", req, s.engine.ApproveLoan)
}

func (s *LoanService) DisburseLoan(ctx context.Context, req *connect.Request[api.LoanActionRequest]) (*connect.Response[api.LoanActionResponse], error) {
	return s.act(ctx, "DisburseLoan", req, s.engine.DisburseLoan)
}

func (s *LoanService) CancelLoan(ctx context.Context, req *connect.Request[api.LoanActionRequest]) (*connect.Response[api.LoanActionResponse], error) {
	return s.act(ctx, "CancelLoan", req, s.engine.CancelLoan)
}

// SubmitLoanPayment records a repayment awaiting admin review.
func (s *LoanService) SubmitLoanPayment(ctx context.Context, req *connect.Request[api.SubmitLoanPaymentRequest]) (*connect.Response[api.LoanPaymentResponse], error) {
	slog.Info("SubmitLoanPayment request received", "loan_id", req.Msg.LoanID, "amount", req.Msg.Amount)

	a, err := s.begin(ctx, req.Msg)
	if err != nil {
		return nil, err
	}
	p, err := s.engine.SubmitLoanPayment(ctx, a, req.Msg.LoanID, req.Msg.Amount)
	if err != nil {
		return nil, toConnectError("submit loan payment", err)
	}
	return connect.NewResponse(&api.LoanPaymentResponse{Payment: toAPILoanPayment(p)}), nil
}

// ReviewLoanPayment approves or rejects a submitted repayment.
func (s *LoanService) ReviewLoanPayment(ctx context.Context, req *connect.Request[api.ReviewLoanPaymentRequest]) (*connect.Response[api.LoanPaymentResponse], error) {
	slog.Info("ReviewLoanPayment request received", "payment_id", req.Msg.PaymentID, "approve", req.Msg.Approve)

	a, err := s.begin(ctx, req.Msg)
	if err != nil {
		return nil, err
	}
	p, err := s.engine.ReviewLoanPayment(ctx, a, req.Msg.PaymentID, req.Msg.Approve)
	if err != nil {
		return nil, toConnectError("review loan payment", err)
	}
	return connect.NewResponse(&api.LoanPaymentResponse{Payment: toAPILoanPayment(p)}), nil
}

func (s *LoanService) GetLoan(ctx context.Context, req *connect.Request[api.GetLoanRequest]) (*connect.Response[api.GetLoanResponse], error) {
	slog.Info("GetLoan request received", "loan_id", req.Msg.LoanID)

	a, err := s.begin(ctx, req.Msg)
	if err != nil {
		return nil, err
	}
	detail, err := s.engine.GetLoan(ctx, a, req.Msg.LoanID)
	if err != nil {
		return nil, toConnectError("get loan", err)
	}
	return connect.NewResponse(&api.GetLoanResponse{Loan: toAPILoanDetail(detail)}), nil
}

func (s *LoanService) ListLoans(ctx context.Context, req *connect.Request[api.ListLoansRequest]) (*connect.Response[api.ListLoansResponse], error) {
	slog.Info("ListLoans request received", "chama_id", req.Msg.ChamaID)

	a, err := s.begin(ctx, req.Msg)
	if err != nil {
		return nil, err
	}
	loans, err := s.engine.ListLoans(ctx, a, req.Msg.ChamaID)
	if err != nil {
		return nil, toConnectError("list loans", err)
	}
	return connect.NewResponse(&api.ListLoansResponse{Loans: convertSlice(loans, toAPILoan)}), nil
}

// GetLoanLimit returns what the caller may borrow without guarantors.
func (s *LoanService) GetLoanLimit(ctx context.Context, req *connect.Request[api.GetLoanLimitRequest]) (*connect.Response[api.GetLoanLimitResponse], error) {
	slog.Info("GetLoanLimit request received", "chama_id", req.Msg.ChamaID)

	a, err := s.begin(ctx, req.Msg)
	if err != nil {
		return nil, err
	}
	limit, err := s.engine.GetLoanLimit(ctx, a, req.Msg.ChamaID)
	if err != nil {
		return nil, toConnectError("get loan limit", err)
	}
	return connect.NewResponse(&api.GetLoanLimitResponse{Savings: limit.Savings, Limit: limit.Limit}), nil
}

// GetLoanBreakdown returns the loan's repayment position as of now.
func (s *LoanService) GetLoanBreakdown(ctx context.Context, req *connect.Request[api.GetLoanBreakdownRequest]) (*connect.Response[api.GetLoanBreakdownResponse], error) {
	slog.Info("GetLoanBreakdown request received", "loan_id", req.Msg.LoanID)

	a, err := s.begin(ctx, req.Msg)
	if err != nil {
		return nil, err
	}
	bd, err := s.engine.GetLoanBreakdown(ctx, a, req.Msg.LoanID)
	if err != nil {
		return nil, toConnectError("get loan breakdown", err)
	}
	return connect.NewResponse(&api.GetLoanBreakdownResponse{Breakdown: toAPIBreakdown(bd)}), nil
}
