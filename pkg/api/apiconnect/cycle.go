package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/chama/pkg/api"
)

// CycleServiceName is the fully-qualified name of the CycleService.
const CycleServiceName = "chama.v1.CycleService"

const (
	CycleServiceCreateCycleProcedure      = "/" + CycleServiceName + "/CreateCycle"
	CycleServiceGetCycleProcedure         = "/" + CycleServiceName + "/GetCycle"
	CycleServiceListCyclesProcedure       = "/" + CycleServiceName + "/ListCycles"
	CycleServiceStartCycleProcedure       = "/" + CycleServiceName + "/StartCycle"
	CycleServicePauseCycleProcedure       = "/" + CycleServiceName + "/PauseCycle"
	CycleServiceResumeCycleProcedure      = "/" + CycleServiceName + "/ResumeCycle"
	CycleServiceAdvanceCycleProcedure     = "/" + CycleServiceName + "/AdvanceCycle"
	CycleServiceCompleteCycleProcedure    = "/" + CycleServiceName + "/CompleteCycle"
	CycleServiceCancelCycleProcedure      = "/" + CycleServiceName + "/CancelCycle"
	CycleServiceSetMemberSavingsProcedure = "/" + CycleServiceName + "/SetMemberSavings"
	CycleServiceSetHideSavingsProcedure   = "/" + CycleServiceName + "/SetHideSavings"
)

// CycleServiceHandler drives the cycle state machine.
type CycleServiceHandler interface {
	CreateCycle(context.Context, *connect.Request[api.CreateCycleRequest]) (*connect.Response[api.CreateCycleResponse], error)
	GetCycle(context.Context, *connect.Request[api.GetCycleRequest]) (*connect.Response[api.GetCycleResponse], error)
	ListCycles(context.Context, *connect.Request[api.ListCyclesRequest]) (*connect.Response[api.ListCyclesResponse], error)
	StartCycle(context.Context, *connect.Request[api.CycleActionRequest]) (*connect.Response[api.CycleActionResponse], error)
	PauseCycle(context.Context, *connect.Request[api.CycleActionRequest]) (*connect.Response[api.CycleActionResponse], error)
	ResumeCycle(context.Context, *connect.Request[api.CycleActionRequest]) (*connect.Response[api.CycleActionResponse], error)
	AdvanceCycle(context.Context, *connect.Request[api.CycleActionRequest]) (*connect.Response[api.CycleActionResponse], error)
	CompleteCycle(context.Context, *connect.Request[api.CycleActionRequest]) (*connect.Response[api.CycleActionResponse], error)
	CancelCycle(context.Context, *connect.Request[api.CycleActionRequest]) (*connect.Response[api.CycleActionResponse], error)
	SetMemberSavings(context.Context, *connect.Request[api.SetMemberSavingsRequest]) (*connect.Response[api.SetMemberSavingsResponse], error)
	SetHideSavings(context.Context, *connect.Request[api.SetHideSavingsRequest]) (*connect.Response[api.SetHideSavingsResponse], error)
}

// NewCycleServiceHandler builds an HTTP handler for svc. It returns the path
// prefix to mount it on.
func NewCycleServiceHandler(svc CycleServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(CycleServiceCreateCycleProcedure, connect.NewUnaryHandler(CycleServiceCreateCycleProcedure, svc.CreateCycle, opts...))
	mux.Handle(CycleServiceGetCycleProcedure, connect.NewUnaryHandler(CycleServiceGetCycleProcedure, svc.GetCycle, opts...))
	mux.Handle(CycleServiceListCyclesProcedure, connect.NewUnaryHandler(CycleServiceListCyclesProcedure, svc.ListCycles, opts...))
	mux.Handle(CycleServiceStartCycleProcedure, connect.NewUnaryHandler(CycleServiceStartCycleProcedure, svc.StartCycle, opts...))
	mux.Handle(CycleServicePauseCycleProcedure, connect.NewUnaryHandler(CycleServicePauseCycleProcedure, svc.PauseCycle, opts...))
	mux.Handle(CycleServiceResumeCycleProcedure, connect.NewUnaryHandler(CycleServiceResumeCycleProcedure, svc.ResumeCycle, opts...))
	mux.Handle(CycleServiceAdvanceCycleProcedure, connect.NewUnaryHandler(CycleServiceAdvanceCycleProcedure, svc.AdvanceCycle, opts...))
	mux.Handle(CycleServiceCompleteCycleProcedure, connect.NewUnaryHandler(CycleServiceCompleteCycleProcedure, svc.CompleteCycle, opts...))
	mux.Handle(CycleServiceCancelCycleProcedure, connect.NewUnaryHandler(CycleServiceCancelCycleProcedure, svc.CancelCycle, opts...))
	mux.Handle(CycleServiceSetMemberSavingsProcedure, connect.NewUnaryHandler(CycleServiceSetMemberSavingsProcedure, svc.SetMemberSavings, opts...))
	mux.Handle(CycleServiceSetHideSavingsProcedure, connect.NewUnaryHandler(CycleServiceSetHideSavingsProcedure, svc.SetHideSavings, opts...))
	return "/" + CycleServiceName + "/", mux
}

// CycleServiceClient calls a remote CycleService.
type CycleServiceClient struct {
	cycleCreateCycle      *connect.Client[api.CreateCycleRequest, api.CreateCycleResponse]
	cycleGetCycle         *connect.Client[api.GetCycleRequest, api.GetCycleResponse]
	cycleListCycles       *connect.Client[api.ListCyclesRequest, api.ListCyclesResponse]
	cycleStartCycle       *connect.Client[api.CycleActionRequest, api.CycleActionResponse]
	cyclePauseCycle       *connect.Client[api.CycleActionRequest, api.CycleActionResponse]
	cycleResumeCycle      *connect.Client[api.CycleActionRequest, api.CycleActionResponse]
	cycleAdvanceCycle     *connect.Client[api.CycleActionRequest, api.CycleActionResponse]
	cycleCompleteCycle    *connect.Client[api.CycleActionRequest, api.CycleActionResponse]
	cycleCancelCycle      *connect.Client[api.CycleActionRequest, api.CycleActionResponse]
	cycleSetMemberSavings *connect.Client[api.SetMemberSavingsRequest, api.SetMemberSavingsResponse]
	cycleSetHideSavings   *connect.Client[api.SetHideSavingsRequest, api.SetHideSavingsResponse]
}

func NewCycleServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *CycleServiceClient {
	opts = clientOptions(opts)
	return &CycleServiceClient{
		cycleCreateCycle:      connect.NewClient[api.CreateCycleRequest, api.CreateCycleResponse](httpClient, baseURL+CycleServiceCreateCycleProcedure, opts...),
		cycleGetCycle:         connect.NewClient[api.GetCycleRequest, api.GetCycleResponse](httpClient, baseURL+CycleServiceGetCycleProcedure, opts...),
		cycleListCycles:       connect.NewClient[api.ListCyclesRequest, api.ListCyclesResponse](httpClient, baseURL+CycleServiceListCyclesProcedure, opts...),
		cycleStartCycle:       connect.NewClient[api.CycleActionRequest, api.CycleActionResponse](httpClient, baseURL+CycleServiceStartCycleProcedure, opts...),
		cyclePauseCycle:       connect.NewClient[api.CycleActionRequest, api.CycleActionResponse](httpClient, baseURL+CycleServicePauseCycleProcedure, opts...),
		cycleResumeCycle:      connect.NewClient[api.CycleActionRequest, api.CycleActionResponse](httpClient, baseURL+CycleServiceResumeCycleProcedure, opts...),
		cycleAdvanceCycle:     connect.NewClient[api.CycleActionRequest, api.CycleActionResponse](httpClient, baseURL+CycleServiceAdvanceCycleProcedure, opts...),
		cycleCompleteCycle:    connect.NewClient[api.CycleActionRequest, api.CycleActionResponse](httpClient, baseURL+CycleServiceCompleteCycleProcedure, opts...),
		cycleCancelCycle:      connect.NewClient[api.CycleActionRequest, api.CycleActionResponse](httpClient, baseURL+CycleServiceCancelCycleProcedure, opts...),
		cycleSetMemberSavings: connect.NewClient[api.SetMemberSavingsRequest, api.SetMemberSavingsResponse](httpClient, baseURL+CycleServiceSetMemberSavingsProcedure, opts...),
		cycleSetHideSavings:   connect.NewClient[api.SetHideSavingsRequest, api.SetHideSavingsResponse](httpClient, baseURL+CycleServiceSetHideSavingsProcedure, opts...),
	}
}

func (c *CycleServiceClient) CreateCycle(ctx context.Context, req *connect.Request[api.CreateCycleRequest]) (*connect.Response[api.CreateCycleResponse], error) {
	return c.cycleCreateCycle.CallUnary(ctx, req)
}

func (c *CycleServiceClient) GetCycle(ctx context.Context, req *connect.Request[api.GetCycleRequest]) (*connect.Response[api.GetCycleResponse], error) {
	return c.cycleGetCycle.CallUnary(ctx, req)
}

func (c *CycleServiceClient) ListCycles(ctx context.Context, req *connect.Request[api.ListCyclesRequest]) (*connect.Response[api.ListCyclesResponse], error) {
	return c.cycleListCycles.CallUnary(ctx, req)
}

func (c *CycleServiceClient) StartCycle(ctx context.Context, req *connect.Request[api.CycleActionRequest]) (*connect.Response[api.CycleActionResponse], error) {
	return c.cycleStartCycle.CallUnary(ctx, req)
}

func (c *CycleServiceClient) PauseCycle(ctx context.Context, req *connect.Request[api.CycleActionRequest]) (*connect.Response[api.CycleActionResponse], error) {
	return c.cyclePauseCycle.CallUnary(ctx, req)
}

func (c *CycleServiceClient) ResumeCycle(ctx context.Context, req *connect.Request[api.CycleActionRequest]) (*connect.Response[api.CycleActionResponse], error) {
	return c.cycleResumeCycle.CallUnary(ctx, req)
}

func (c *CycleServiceClient) AdvanceCycle(ctx context.Context, req *connect.Request[api.CycleActionRequest]) (*connect.Response[api.CycleActionResponse], error) {
	return c.cycleAdvanceCycle.CallUnary(ctx, req)
}

func (c *CycleServiceClient) CompleteCycle(ctx context.Context, req *connect.Request[api.CycleActionRequest]) (*connect.Response[api.CycleActionResponse], error) {
	return c.cycleCompleteCycle.CallUnary(ctx, req)
}

func (c *CycleServiceClient) CancelCycle(ctx context.Context, req *connect.Request[api.CycleActionRequest]) (*connect.Response[api.CycleActionResponse], error) {
	return c.cycleCancelCycle.CallUnary(ctx, req)
}

func (c *CycleServiceClient) SetMemberSavings(ctx context.Context, req *connect.Request[api.SetMemberSavingsRequest]) (*connect.Response[api.SetMemberSavingsResponse], error) {
	return c.cycleSetMemberSavings.CallUnary(ctx, req)
}

func (c *CycleServiceClient) SetHideSavings(ctx context.Context, req *connect.Request[api.SetHideSavingsRequest]) (*connect.Response[api.SetHideSavingsResponse], error) {
	return c.cycleSetHideSavings.CallUnary(ctx, req)
}
