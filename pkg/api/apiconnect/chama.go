package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/chama/pkg/api"
)

// ChamaServiceName is the fully-qualified name of the ChamaService.
const ChamaServiceName = "chama.v1.ChamaService"

const (
	ChamaServiceCreateChamaProcedure  = "/" + ChamaServiceName + "/CreateChama"
	ChamaServiceJoinChamaProcedure    = "/" + ChamaServiceName + "/JoinChama"
	ChamaServiceGetChamaProcedure     = "/" + ChamaServiceName + "/GetChama"
	ChamaServiceListChamasProcedure   = "/" + ChamaServiceName + "/ListChamas"
	ChamaServiceRemoveMemberProcedure = "/" + ChamaServiceName + "/RemoveMember"
	ChamaServiceCloseChamaProcedure   = "/" + ChamaServiceName + "/CloseChama"
)

// ChamaServiceHandler manages chamas and their membership.
type ChamaServiceHandler interface {
	CreateChama(context.Context, *connect.Request[api.CreateChamaRequest]) (*connect.Response[api.CreateChamaResponse], error)
	JoinChama(context.Context, *connect.Request[api.JoinChamaRequest]) (*connect.Response[api.JoinChamaResponse], error)
	GetChama(context.Context, *connect.Request[api.GetChamaRequest]) (*connect.Response[api.GetChamaResponse], error)
	ListChamas(context.Context, *connect.Request[api.ListChamasRequest]) (*connect.Response[api.ListChamasResponse], error)
	RemoveMember(context.Context, *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error)
	CloseChama(context.Context, *connect.Request[api.CloseChamaRequest]) (*connect.Response[api.CloseChamaResponse], error)
}

// NewChamaServiceHandler builds an HTTP handler for svc. It returns the path
// prefix to mount it on.
func NewChamaServiceHandler(svc ChamaServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(ChamaServiceCreateChamaProcedure, connect.NewUnaryHandler(ChamaServiceCreateChamaProcedure, svc.CreateChama, opts...))
	mux.Handle(ChamaServiceJoinChamaProcedure, connect.NewUnaryHandler(ChamaServiceJoinChamaProcedure, svc.JoinChama, opts...))
	mux.Handle(ChamaServiceGetChamaProcedure, connect.NewUnaryHandler(ChamaServiceGetChamaProcedure, svc.GetChama, opts...))
	mux.Handle(ChamaServiceListChamasProcedure, connect.NewUnaryHandler(ChamaServiceListChamasProcedure, svc.ListChamas, opts...))
	mux.Handle(ChamaServiceRemoveMemberProcedure, connect.NewUnaryHandler(ChamaServiceRemoveMemberProcedure, svc.RemoveMember, opts...))
	mux.Handle(ChamaServiceCloseChamaProcedure, connect.NewUnaryHandler(ChamaServiceCloseChamaProcedure, svc.CloseChama, opts...))
	return "/" + ChamaServiceName + "/", mux
}

// ChamaServiceClient calls a remote ChamaService.
type ChamaServiceClient struct {
	chamaCreateChama  *connect.Client[api.CreateChamaRequest, api.CreateChamaResponse]
	chamaJoinChama    *connect.Client[api.JoinChamaRequest, api.JoinChamaResponse]
	chamaGetChama     *connect.Client[api.GetChamaRequest, api.GetChamaResponse]
	chamaListChamas   *connect.Client[api.ListChamasRequest, api.ListChamasResponse]
	chamaRemoveMember *connect.Client[api.RemoveMemberRequest, api.RemoveMemberResponse]
	chamaCloseChama   *connect.Client[api.CloseChamaRequest, api.CloseChamaResponse]
}

func NewChamaServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *ChamaServiceClient {
	opts = clientOptions(opts)
	return &ChamaServiceClient{
		chamaCreateChama:  connect.NewClient[api.CreateChamaRequest, api.CreateChamaResponse](httpClient, baseURL+ChamaServiceCreateChamaProcedure, opts...),
		chamaJoinChama:    connect.NewClient[api.JoinChamaRequest, api.JoinChamaResponse](httpClient, baseURL+ChamaServiceJoinChamaProcedure, opts...),
		chamaGetChama:     connect.NewClient[api.GetChamaRequest, api.GetChamaResponse](httpClient, baseURL+ChamaServiceGetChamaProcedure, opts...),
		chamaListChamas:   connect.NewClient[api.ListChamasRequest, api.ListChamasResponse](httpClient, baseURL+ChamaServiceListChamasProcedure, opts...),
		chamaRemoveMember: connect.NewClient[api.RemoveMemberRequest, api.RemoveMemberResponse](httpClient, baseURL+ChamaServiceRemoveMemberProcedure, opts...),
		chamaCloseChama:   connect.NewClient[api.CloseChamaRequest, api.CloseChamaResponse](httpClient, baseURL+ChamaServiceCloseChamaProcedure, opts...),
	}
}

func (c *ChamaServiceClient) CreateChama(ctx context.Context, req *connect.Request[api.CreateChamaRequest]) (*connect.Response[api.CreateChamaResponse], error) {
	return c.chamaCreateChama.CallUnary(ctx, req)
}

func (c *ChamaServiceClient) JoinChama(ctx context.Context, req *connect.Request[api.JoinChamaRequest]) (*connect.Response[api.JoinChamaResponse], error) {
	return c.chamaJoinChama.CallUnary(ctx, req)
}

func (c *ChamaServiceClient) GetChama(ctx context.Context, req *connect.Request[api.GetChamaRequest]) (*connect.Response[api.GetChamaResponse], error) {
	return c.chamaGetChama.CallUnary(ctx, req)
}

func (c *ChamaServiceClient) ListChamas(ctx context.Context, req *connect.Request[api.ListChamasRequest]) (*connect.Response[api.ListChamasResponse], error) {
	return c.chamaListChamas.CallUnary(ctx, req)
}

func (c *ChamaServiceClient) RemoveMember(ctx context.Context, req *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error) {
	return c.chamaRemoveMember.CallUnary(ctx, req)
}

func (c *ChamaServiceClient) CloseChama(ctx context.Context, req *connect.Request[api.CloseChamaRequest]) (*connect.Response[api.CloseChamaResponse], error) {
	return c.chamaCloseChama.CallUnary(ctx, req)
}
