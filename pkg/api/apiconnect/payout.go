package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/chama/pkg/api"
)

// PayoutServiceName is the fully-qualified name of the PayoutService.
const PayoutServiceName = "chama.v1.PayoutService"

const (
	PayoutServiceSendPayoutProcedure    = "/" + PayoutServiceName + "/SendPayout"
	PayoutServiceConfirmPayoutProcedure = "/" + PayoutServiceName + "/ConfirmPayout"
	PayoutServiceListPayoutsProcedure   = "/" + PayoutServiceName + "/ListPayouts"
)

// PayoutServiceHandler settles period payouts.
type PayoutServiceHandler interface {
	SendPayout(context.Context, *connect.Request[api.SendPayoutRequest]) (*connect.Response[api.SendPayoutResponse], error)
	ConfirmPayout(context.Context, *connect.Request[api.ConfirmPayoutRequest]) (*connect.Response[api.ConfirmPayoutResponse], error)
	ListPayouts(context.Context, *connect.Request[api.ListPayoutsRequest]) (*connect.Response[api.ListPayoutsResponse], error)
}

// NewPayoutServiceHandler builds an HTTP handler for svc. It returns the path
// prefix to mount it on.
func NewPayoutServiceHandler(svc PayoutServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(PayoutServiceSendPayoutProcedure, connect.NewUnaryHandler(PayoutServiceSendPayoutProcedure, svc.SendPayout, opts...))
	mux.Handle(PayoutServiceConfirmPayoutProcedure, connect.NewUnaryHandler(PayoutServiceConfirmPayoutProcedure, svc.ConfirmPayout, opts...))
	mux.Handle(PayoutServiceListPayoutsProcedure, connect.NewUnaryHandler(PayoutServiceListPayoutsProcedure, svc.ListPayouts, opts...))
	return "/" + PayoutServiceName + "/", mux
}

// PayoutServiceClient calls a remote PayoutService.
type PayoutServiceClient struct {
	payoutSendPayout    *connect.Client[api.SendPayoutRequest, api.SendPayoutResponse]
	payoutConfirmPayout *connect.Client[api.ConfirmPayoutRequest, api.ConfirmPayoutResponse]
	payoutListPayouts   *connect.Client[api.ListPayoutsRequest, api.ListPayoutsResponse]
}

func NewPayoutServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *PayoutServiceClient {
	opts = clientOptions(opts)
	return &PayoutServiceClient{
		payoutSendPayout:    connect.NewClient[api.SendPayoutRequest, api.SendPayoutResponse](httpClient, baseURL+PayoutServiceSendPayoutProcedure, opts...),
		payoutConfirmPayout: connect.NewClient[api.ConfirmPayoutRequest, api.ConfirmPayoutResponse](httpClient, baseURL+PayoutServiceConfirmPayoutProcedure, opts...),
		payoutListPayouts:   connect.NewClient[api.ListPayoutsRequest, api.ListPayoutsResponse](httpClient, baseURL+PayoutServiceListPayoutsProcedure, opts...),
	}
}

func (c *PayoutServiceClient) SendPayout(ctx context.Context, req *connect.Request[api.SendPayoutRequest]) (*connect.Response[api.SendPayoutResponse], error) {
	return c.payoutSendPayout.CallUnary(ctx, req)
}

func (c *PayoutServiceClient) ConfirmPayout(ctx context.Context, req *connect.Request[api.ConfirmPayoutRequest]) (*connect.Response[api.ConfirmPayoutResponse], error) {
	return c.payoutConfirmPayout.CallUnary(ctx, req)
}

func (c *PayoutServiceClient) ListPayouts(ctx context.Context, req *connect.Request[api.ListPayoutsRequest]) (*connect.Response[api.ListPayoutsResponse], error) {
	return c.payoutListPayouts.CallUnary(ctx, req)
}
