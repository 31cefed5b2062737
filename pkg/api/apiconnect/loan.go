package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/chama/pkg/api"
)

// LoanServiceName is the fully-qualified name of the LoanService.
const LoanServiceName = "chama.v1.LoanService"

const (
	LoanServiceRequestLoanProcedure        = "/" + LoanServiceName + "/RequestLoan"
	LoanServiceRespondToGuaranteeProcedure = "/" + LoanServiceName + "/RespondToGuarantee"
	LoanServiceApproveLoanProcedure        = "/" + LoanServiceName + "/ApproveLoan"
	LoanServiceDisburseLoanProcedure       = "/" + LoanServiceName + "/DisburseLoan"
	LoanServiceCancelLoanProcedure         = "/" + LoanServiceName + "/CancelLoan"
	LoanServiceSubmitLoanPaymentProcedure  = "/" + LoanServiceName + "/SubmitLoanPayment"
	LoanServiceReviewLoanPaymentProcedure  = "/" + LoanServiceName + "/ReviewLoanPayment"
	LoanServiceGetLoanProcedure            = "/" + LoanServiceName + "/GetLoan"
	LoanServiceListLoansProcedure          = "/" + LoanServiceName + "/ListLoans"
	LoanServiceGetLoanLimitProcedure       = "/" + LoanServiceName + "/GetLoanLimit"
	LoanServiceGetLoanBreakdownProcedure   = "/" + LoanServiceName + "/GetLoanBreakdown"
)

// LoanServiceHandler runs the loan guarantee and repayment workflow.
type LoanServiceHandler interface {
	RequestLoan(context.Context, *connect.Request[api.RequestLoanRequest]) (*connect.Response[api.RequestLoanResponse], error)
	RespondToGuarantee(context.Context, *connect.Request[api.RespondToGuaranteeRequest]) (*connect.Response[api.LoanActionResponse], error)
	ApproveLoan(context.Context, *connect.Request[api.LoanActionRequest]) (*connect.Response[api.LoanActionResponse], error)
	DisburseLoan(context.Context, *connect.Request[api.LoanActionRequest]) (*connect.Response[api.LoanActionResponse], error)
	CancelLoan(context.Context, *connect.Request[api.LoanActionRequest]) (*connect.Response[api.LoanActionResponse], error)
	SubmitLoanPayment(context.Context, *connect.Request[api.SubmitLoanPaymentRequest]) (*connect.Response[api.LoanPaymentResponse], error)
	ReviewLoanPayment(context.Context, *connect.Request[api.ReviewLoanPaymentRequest]) (*connect.Response[api.LoanPaymentResponse], error)
	GetLoan(context.Context, *connect.Request[api.GetLoanRequest]) (*connect.Response[api.GetLoanResponse], error)
	ListLoans(context.Context, *connect.Request[api.ListLoansRequest]) (*connect.Response[api.ListLoansResponse], error)
	GetLoanLimit(context.Context, *connect.Request[api.GetLoanLimitRequest]) (*connect.Response[api.GetLoanLimitResponse], error)
	GetLoanBreakdown(context.Context, *connect.Request[api.GetLoanBreakdownRequest]) (*connect.Response[api.GetLoanBreakdownResponse], error)
}

// NewLoanServiceHandler builds an HTTP handler for svc. It returns the path
// prefix to mount it on.
func NewLoanServiceHandler(svc LoanServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(LoanServiceRequestLoanProcedure, connect.NewUnaryHandler(LoanServiceRequestLoanProcedure, svc.RequestLoan, opts...))
	mux.Handle(LoanServiceRespondToGuaranteeProcedure, connect.NewUnaryHandler(LoanServiceRespondToGuaranteeProcedure, svc.RespondToGuarantee, opts...))
	mux.Handle(LoanServiceApproveLoanProcedure, connect.NewUnaryHandler(LoanServiceApproveLoanProcedure, svc.ApproveLoan, opts...))
	mux.Handle(LoanServiceDisburseLoanProcedure, connect.NewUnaryHandler(LoanServiceDisburseLoanProcedure, svc.DisburseLoan, opts...))
	mux.Handle(LoanServiceCancelLoanProcedure, connect.NewUnaryHandler(LoanServiceCancelLoanProcedure, svc.CancelLoan, opts...))
	mux.Handle(LoanServiceSubmitLoanPaymentProcedure, connect.NewUnaryHandler(LoanServiceSubmitLoanPaymentProcedure, svc.SubmitLoanPayment, opts...))
	mux.Handle(LoanServiceReviewLoanPaymentProcedure, connect.NewUnaryHandler(LoanServiceReviewLoanPaymentProcedure, svc.ReviewLoanPayment, opts...))
	mux.Handle(LoanServiceGetLoanProcedure, connect.NewUnaryHandler(LoanServiceGetLoanProcedure, svc.GetLoan, opts...))
	mux.Handle(LoanServiceListLoansProcedure, connect.NewUnaryHandler(LoanServiceListLoansProcedure, svc.ListLoans, opts...))
	mux.Handle(LoanServiceGetLoanLimitProcedure, connect.NewUnaryHandler(LoanServiceGetLoanLimitProcedure, svc.GetLoanLimit, opts...))
	mux.Handle(LoanServiceGetLoanBreakdownProcedure, connect.NewUnaryHandler(LoanServiceGetLoanBreakdownProcedure, svc.GetLoanBreakdown, opts...))
	return "/" + LoanServiceName + "/", mux
}

// LoanServiceClient calls a remote LoanService.
type LoanServiceClient struct {
	loanRequestLoan        *connect.Client[api.RequestLoanRequest, api.RequestLoanResponse]
	loanRespondToGuarantee *connect.Client[api.RespondToGuaranteeRequest, api.LoanActionResponse]
	loanApproveLoan        *connect.Client[api.LoanActionRequest, api.LoanActionResponse]
	loanDisburseLoan       *connect.Client[api.LoanActionRequest, api.LoanActionResponse]
	loanCancelLoan         *connect.Client[api.LoanActionRequest, api.LoanActionResponse]
	loanSubmitLoanPayment  *connect.Client[api.SubmitLoanPaymentRequest, api.LoanPaymentResponse]
	loanReviewLoanPayment  *connect.Client[api.ReviewLoanPaymentRequest, api.LoanPaymentResponse]
	loanGetLoan            *connect.Client[api.GetLoanRequest, api.GetLoanResponse]
	loanListLoans          *connect.Client[api.ListLoansRequest, api.ListLoansResponse]
	loanGetLoanLimit       *connect.Client[api.GetLoanLimitRequest, api.GetLoanLimitResponse]
	loanGetLoanBreakdown   *connect.Client[api.GetLoanBreakdownRequest, api.GetLoanBreakdownResponse]
}

func NewLoanServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *LoanServiceClient {
	opts = clientOptions(opts)
	return &LoanServiceClient{
		loanRequestLoan:        connect.NewClient[api.RequestLoanRequest, api.RequestLoanResponse](httpClient, baseURL+LoanServiceRequestLoanProcedure, opts...),
		loanRespondToGuarantee: connect.NewClient[api.RespondToGuaranteeRequest, api.LoanActionResponse](httpClient, baseURL+LoanServiceRespondToGuaranteeProcedure, opts...),
		loanApproveLoan:        connect.NewClient[api.LoanActionRequest, api.LoanActionResponse](httpClient, baseURL+LoanServiceApproveLoanProcedure, opts...),
		loanDisburseLoan:       connect.NewClient[api.LoanActionRequest, api.LoanActionResponse](httpClient, baseURL+LoanServiceDisburseLoanProcedure, opts...),
		loanCancelLoan:         connect.NewClient[api.LoanActionRequest, api.LoanActionResponse](httpClient, baseURL+LoanServiceCancelLoanProcedure, opts...),
		loanSubmitLoanPayment:  connect.NewClient[api.SubmitLoanPaymentRequest, api.LoanPaymentResponse](httpClient, baseURL+LoanServiceSubmitLoanPaymentProcedure, opts...),
		loanReviewLoanPayment:  connect.NewClient[api.ReviewLoanPaymentRequest, api.LoanPaymentResponse](httpClient, baseURL+LoanServiceReviewLoanPaymentProcedure, opts...),
		loanGetLoan:            connect.NewClient[api.GetLoanRequest, api.GetLoanResponse](httpClient, baseURL+LoanServiceGetLoanProcedure, opts...),
		loanListLoans:          connect.NewClient[api.ListLoansRequest, api.ListLoansResponse](httpClient, baseURL+LoanServiceListLoansProcedure, opts...),
		loanGetLoanLimit:       connect.NewClient[api.GetLoanLimitRequest, api.GetLoanLimitResponse](httpClient, baseURL+LoanServiceGetLoanLimitProcedure, opts...),
		loanGetLoanBreakdown:   connect.NewClient[api.GetLoanBreakdownRequest, api.GetLoanBreakdownResponse](httpClient, baseURL+LoanServiceGetLoanBreakdownProcedure, opts...),
	}
}

func (c *LoanServiceClient) RequestLoan(ctx context.Context, req *connect.Request[api.RequestLoanRequest]) (*connect.Response[api.RequestLoanResponse], error) {
	return c.loanRequestLoan.CallUnary(ctx, req)
}

func (c *LoanServiceClient) RespondToGuarantee(ctx context.Context, req *connect.Request[api.RespondToGuaranteeRequest]) (*connect.Response[api.LoanActionResponse], error) {
	return c.loanRespondToGuarantee.CallUnary(ctx, req)
}

func (c *LoanServiceClient) ApproveLoan(ctx context.Context, req *connect.Request[api.LoanActionRequest]) (*connect.Response[api.LoanActionResponse], error) {
	return c.loanApproveLoan.CallUnary(ctx, req)
}

func (c *LoanServiceClient) DisburseLoan(ctx context.Context, req *connect.Request[api.LoanActionRequest]) (*connect.Response[api.LoanActionResponse], error) {
	return c.loanDisburseLoan.CallUnary(ctx, req)
}

func (c *LoanServiceClient) CancelLoan(ctx context.Context, req *connect.Request[api.LoanActionRequest]) (*connect.Response[api.LoanActionResponse], error) {
	return c.loanCancelLoan.CallUnary(ctx, req)
}

func (c *LoanServiceClient) SubmitLoanPayment(ctx context.Context, req *connect.Request[api.SubmitLoanPaymentRequest]) (*connect.Response[api.LoanPaymentResponse], error) {
	return c.loanSubmitLoanPayment.CallUnary(ctx, req)
}

func (c *LoanServiceClient) ReviewLoanPayment(ctx context.Context, req *connect.Request[api.ReviewLoanPaymentRequest]) (*connect.Response[api.LoanPaymentResponse], error) {
	return c.loanReviewLoanPayment.CallUnary(ctx, req)
}

func (c *LoanServiceClient) GetLoan(ctx context.Context, req *connect.Request[api.GetLoanRequest]) (*connect.Response[api.GetLoanResponse], error) {
	return c.loanGetLoan.CallUnary(ctx, req)
}

func (c *LoanServiceClient) ListLoans(ctx context.Context, req *connect.Request[api.ListLoansRequest]) (*connect.Response[api.ListLoansResponse], error) {
	return c.loanListLoans.CallUnary(ctx, req)
}

func (c *LoanServiceClient) GetLoanLimit(ctx context.Context, req *connect.Request[api.GetLoanLimitRequest]) (*connect.Response[api.GetLoanLimitResponse], error) {
	return c.loanGetLoanLimit.CallUnary(ctx, req)
}

func (c *LoanServiceClient) GetLoanBreakdown(ctx context.Context, req *connect.Request[api.GetLoanBreakdownRequest]) (*connect.Response[api.GetLoanBreakdownResponse], error) {
	return c.loanGetLoanBreakdown.CallUnary(ctx, req)
}
