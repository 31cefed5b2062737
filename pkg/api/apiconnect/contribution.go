package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/chama/pkg/api"
)

// ContributionServiceName is the fully-qualified name of the ContributionService.
const ContributionServiceName = "chama.v1.ContributionService"

const (
	ContributionServiceRecordPaymentProcedure       = "/" + ContributionServiceName + "/RecordPayment"
	ContributionServiceConfirmContributionProcedure = "/" + ContributionServiceName + "/ConfirmContribution"
	ContributionServiceListContributionsProcedure   = "/" + ContributionServiceName + "/ListContributions"
)

// ContributionServiceHandler records and confirms contribution payments.
type ContributionServiceHandler interface {
	RecordPayment(context.Context, *connect.Request[api.RecordPaymentRequest]) (*connect.Response[api.RecordPaymentResponse], error)
	ConfirmContribution(context.Context, *connect.Request[api.ConfirmContributionRequest]) (*connect.Response[api.ConfirmContributionResponse], error)
	ListContributions(context.Context, *connect.Request[api.ListContributionsRequest]) (*connect.Response[api.ListContributionsResponse], error)
}

// NewContributionServiceHandler builds an HTTP handler for svc. It returns the path
// prefix to mount it on.
func NewContributionServiceHandler(svc ContributionServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(ContributionServiceRecordPaymentProcedure, connect.NewUnaryHandler(ContributionServiceRecordPaymentProcedure, svc.RecordPayment, opts...))
	mux.Handle(ContributionServiceConfirmContributionProcedure, connect.NewUnaryHandler(ContributionServiceConfirmContributionProcedure, svc.ConfirmContribution, opts...))
	mux.Handle(ContributionServiceListContributionsProcedure, connect.NewUnaryHandler(ContributionServiceListContributionsProcedure, svc.ListContributions, opts...))
	return "/" + ContributionServiceName + "/", mux
}

// ContributionServiceClient calls a remote ContributionService.
type ContributionServiceClient struct {
	contributionRecordPayment       *connect.Client[api.RecordPaymentRequest, api.RecordPaymentResponse]
	contributionConfirmContribution *connect.Client[api.ConfirmContributionRequest, api.ConfirmContributionResponse]
	contributionListContributions   *connect.Client[api.ListContributionsRequest, api.ListContributionsResponse]
}

func NewContributionServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *ContributionServiceClient {
	opts = clientOptions(opts)
	return &ContributionServiceClient{
		contributionRecordPayment:       connect.NewClient[api.RecordPaymentRequest, api.RecordPaymentResponse](httpClient, baseURL+ContributionServiceRecordPaymentProcedure, opts...),
		contributionConfirmContribution: connect.NewClient[api.ConfirmContributionRequest, api.ConfirmContributionResponse](httpClient, baseURL+ContributionServiceConfirmContributionProcedure, opts...),
		contributionListContributions:   connect.NewClient[api.ListContributionsRequest, api.ListContributionsResponse](httpClient, baseURL+ContributionServiceListContributionsProcedure, opts...),
	}
}

func (c *ContributionServiceClient) RecordPayment(ctx context.Context, req *connect.Request[api.RecordPaymentRequest]) (*connect.Response[api.RecordPaymentResponse], error) {
	return c.contributionRecordPayment.CallUnary(ctx, req)
}

func (c *ContributionServiceClient) ConfirmContribution(ctx context.Context, req *connect.Request[api.ConfirmContributionRequest]) (*connect.Response[api.ConfirmContributionResponse], error) {
	return c.contributionConfirmContribution.CallUnary(ctx, req)
}

func (c *ContributionServiceClient) ListContributions(ctx context.Context, req *connect.Request[api.ListContributionsRequest]) (*connect.Response[api.ListContributionsResponse], error) {
	return c.contributionListContributions.CallUnary(ctx, req)
}
