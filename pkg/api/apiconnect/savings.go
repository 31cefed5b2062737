package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/chama/pkg/api"
)

// SavingsServiceName is the fully-qualified name of the SavingsService.
const SavingsServiceName = "chama.v1.SavingsService"

const (
	SavingsServiceGetSavingsProcedure              = "/" + SavingsServiceName + "/GetSavings"
	SavingsServiceListSavingsTransactionsProcedure = "/" + SavingsServiceName + "/ListSavingsTransactions"
	SavingsServiceWithdrawSavingsProcedure         = "/" + SavingsServiceName + "/WithdrawSavings"
	SavingsServiceListWalletTransactionsProcedure  = "/" + SavingsServiceName + "/ListWalletTransactions"
	SavingsServiceListNotificationsProcedure       = "/" + SavingsServiceName + "/ListNotifications"
	SavingsServiceMarkNotificationReadProcedure    = "/" + SavingsServiceName + "/MarkNotificationRead"
)

// SavingsServiceHandler exposes savings, wallet statements and notifications.
type SavingsServiceHandler interface {
	GetSavings(context.Context, *connect.Request[api.GetSavingsRequest]) (*connect.Response[api.GetSavingsResponse], error)
	ListSavingsTransactions(context.Context, *connect.Request[api.ListSavingsTransactionsRequest]) (*connect.Response[api.ListSavingsTransactionsResponse], error)
	WithdrawSavings(context.Context, *connect.Request[api.WithdrawSavingsRequest]) (*connect.Response[api.WithdrawSavingsResponse], error)
	ListWalletTransactions(context.Context, *connect.Request[api.ListWalletTransactionsRequest]) (*connect.Response[api.ListWalletTransactionsResponse], error)
	ListNotifications(context.Context, *connect.Request[api.ListNotificationsRequest]) (*connect.Response[api.ListNotificationsResponse], error)
	MarkNotificationRead(context.Context, *connect.Request[api.MarkNotificationReadRequest]) (*connect.Response[api.MarkNotificationReadResponse], error)
}

// NewSavingsServiceHandler builds an HTTP handler for svc. It returns the path
// prefix to mount it on.
func NewSavingsServiceHandler(svc SavingsServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(SavingsServiceGetSavingsProcedure, connect.NewUnaryHandler(SavingsServiceGetSavingsProcedure, svc.GetSavings, opts...))
	mux.Handle(SavingsServiceListSavingsTransactionsProcedure, connect.NewUnaryHandler(SavingsServiceListSavingsTransactionsProcedure, svc.ListSavingsTransactions, opts...))
	mux.Handle(SavingsServiceWithdrawSavingsProcedure, connect.NewUnaryHandler(SavingsServiceWithdrawSavingsProcedure, svc.WithdrawSavings, opts...))
	mux.Handle(SavingsServiceListWalletTransactionsProcedure, connect.NewUnaryHandler(SavingsServiceListWalletTransactionsProcedure, svc.ListWalletTransactions, opts...))
	mux.Handle(SavingsServiceListNotificationsProcedure, connect.NewUnaryHandler(SavingsServiceListNotificationsProcedure, svc.ListNotifications, opts...))
	mux.Handle(SavingsServiceMarkNotificationReadProcedure, connect.NewUnaryHandler(SavingsServiceMarkNotificationReadProcedure, svc.MarkNotificationRead, opts...))
	return "/" + SavingsServiceName + "/", mux
}

// SavingsServiceClient calls a remote SavingsService.
type SavingsServiceClient struct {
	savingsGetSavings              *connect.Client[api.GetSavingsRequest, api.GetSavingsResponse]
	savingsListSavingsTransactions *connect.Client[api.ListSavingsTransactionsRequest, api.ListSavingsTransactionsResponse]
	savingsWithdrawSavings         *connect.Client[api.WithdrawSavingsRequest, api.WithdrawSavingsResponse]
	savingsListWalletTransactions  *connect.Client[api.ListWalletTransactionsRequest, api.ListWalletTransactionsResponse]
	savingsListNotifications       *connect.Client[api.ListNotificationsRequest, api.ListNotificationsResponse]
	savingsMarkNotificationRead    *connect.Client[api.MarkNotificationReadRequest, api.MarkNotificationReadResponse]
}

func NewSavingsServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *SavingsServiceClient {
	opts = clientOptions(opts)
	return &SavingsServiceClient{
		savingsGetSavings:              connect.NewClient[api.GetSavingsRequest, api.GetSavingsResponse](httpClient, baseURL+SavingsServiceGetSavingsProcedure, opts...),
		savingsListSavingsTransactions: connect.NewClient[api.ListSavingsTransactionsRequest, api.ListSavingsTransactionsResponse](httpClient, baseURL+SavingsServiceListSavingsTransactionsProcedure, opts...),
		savingsWithdrawSavings:         connect.NewClient[api.WithdrawSavingsRequest, api.WithdrawSavingsResponse](httpClient, baseURL+SavingsServiceWithdrawSavingsProcedure, opts...),
		savingsListWalletTransactions:  connect.NewClient[api.ListWalletTransactionsRequest, api.ListWalletTransactionsResponse](httpClient, baseURL+SavingsServiceListWalletTransactionsProcedure, opts...),
		savingsListNotifications:       connect.NewClient[api.ListNotificationsRequest, api.ListNotificationsResponse](httpClient, baseURL+SavingsServiceListNotificationsProcedure, opts...),
		savingsMarkNotificationRead:    connect.NewClient[api.MarkNotificationReadRequest, api.MarkNotificationReadResponse](httpClient, baseURL+SavingsServiceMarkNotificationReadProcedure, opts...),
	}
}

func (c *SavingsServiceClient) GetSavings(ctx context.Context, req *connect.Request[api.GetSavingsRequest]) (*connect.Response[api.GetSavingsResponse], error) {
	return c.savingsGetSavings.CallUnary(ctx, req)
}

func (c *SavingsServiceClient) ListSavingsTransactions(ctx context.Context, req *connect.Request[api.ListSavingsTransactionsRequest]) (*connect.Response[api.ListSavingsTransactionsResponse], error) {
	return c.savingsListSavingsTransactions.CallUnary(ctx, req)
}

func (c *SavingsServiceClient) WithdrawSavings(ctx context.Context, req *connect.Request[api.WithdrawSavingsRequest]) (*connect.Response[api.WithdrawSavingsResponse], error) {
	return c.savingsWithdrawSavings.CallUnary(ctx, req)
}

func (c *SavingsServiceClient) ListWalletTransactions(ctx context.Context, req *connect.Request[api.ListWalletTransactionsRequest]) (*connect.Response[api.ListWalletTransactionsResponse], error) {
	return c.savingsListWalletTransactions.CallUnary(ctx, req)
}

func (c *SavingsServiceClient) ListNotifications(ctx context.Context, req *connect.Request[api.ListNotificationsRequest]) (*connect.Response[api.ListNotificationsResponse], error) {
	return c.savingsListNotifications.CallUnary(ctx, req)
}

func (c *SavingsServiceClient) MarkNotificationRead(ctx context.Context, req *connect.Request[api.MarkNotificationReadRequest]) (*connect.Response[api.MarkNotificationReadResponse], error) {
	return c.savingsMarkNotificationRead.CallUnary(ctx, req)
}
