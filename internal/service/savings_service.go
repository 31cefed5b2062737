package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/chama/internal/engine"
	"github.com/mmynk/chama/pkg/api"
)

// SavingsService implements the Connect SavingsService. It also serves
// the wallet history and the notification feed.
type SavingsService struct {
	base
}

// NewSavingsService creates a SavingsService backed by the given engine.
func NewSavingsService(e *engine.Engine) *SavingsService {
	return &SavingsService{base{engine: e}}
}

func (s *SavingsService) GetSavings(ctx context.Context, req *connect.Request[api.GetSavingsRequest]) (*connect.Response[api.GetSavingsResponse], error) {
	a, err := s.begin(ctx, req.Msg)
	if err != nil {
		return nil, err
	}
	slog.Info("GetSavings request received", "user_id", a.UserID)

	sum, err := s.engine.GetSavings(ctx, a)
	if err != nil {
		return nil, toConnectError("get savings", err)
	}
	return connect.NewResponse(&api.GetSavingsResponse{Balance: sum.Balance, ByChama: sum.ByChama}), nil
}

func (s *SavingsService) ListSavingsTransactions(ctx context.Context, req *connect.Request[api.ListSavingsTransactionsRequest]) (*connect.Response[api.ListSavingsTransactionsResponse], error) {
	a, err := s.begin(ctx, req.Msg)
	if err != nil {
		return nil, err
	}
	txs, err := s.engine.ListSavingsTransactions(ctx, a)
	if err != nil {
		return nil, toConnectError("list savings transactions", err)
	}
	return connect.NewResponse(&api.ListSavingsTransactionsResponse{
		Transactions: convertSlice(txs, toAPISavingsTransaction),
	}), nil
}

// WithdrawSavings debits a member's savings in a chama. Admin only.
func (s *SavingsService) WithdrawSavings(ctx context.Context, req *connect.Request[api.WithdrawSavingsRequest]) (*connect.Response[api.WithdrawSavingsResponse], error) {
	slog.Info("WithdrawSavings request received",
		"chama_id", req.Msg.ChamaID,
		"user_id", req.Msg.UserID,
		"amount", req.Msg.Amount)

	a, err := s.begin(ctx, req.Msg)
	if err != nil {
		return nil, err
	}
	tx, err := s.engine.WithdrawSavings(ctx, a, req.Msg.ChamaID, req.Msg.UserID, req.Msg.Amount)
	if err != nil {
		return nil, toConnectError("withdraw savings", err)
	}
	return connect.NewResponse(&api.WithdrawSavingsResponse{Transaction: toAPISavingsTransaction(tx)}), nil
}

func (s *SavingsService) ListWalletTransactions(ctx context.Context, req *connect.Request[api.ListWalletTransactionsRequest]) (*connect.Response[api.ListWalletTransactionsResponse], error) {
	a, err := s.begin(ctx, req.Msg)
	if err != nil {
		return nil, err
	}
	txs, err := s.engine.ListWalletTransactions(ctx, a, req.Msg.ChamaID)
	if err != nil {
		return nil, toConnectError("list wallet transactions", err)
	}
	return connect.NewResponse(&api.ListWalletTransactionsResponse{
		Transactions: convertSlice(txs, toAPIWalletTransaction),
	}), nil
}

func (s *SavingsService) ListNotifications(ctx context.Context, req *connect.Request[api.ListNotificationsRequest]) (*connect.Response[api.ListNotificationsResponse], error) {
	a, err := s.begin(ctx, req.Msg)
	if err != nil {
		return nil, err
	}
	ns, err := s.engine.ListNotifications(ctx, a, req.Msg.UnreadOnly)
	if err != nil {
		return nil, toConnectError("list notifications", err)
	}
	return connect.NewResponse(&api.ListNotificationsResponse{Notifications: convertSlice(ns, toAPINotification)}), nil
}

func (s *SavingsService) MarkNotificationRead(ctx context.Context, req *connect.Request[api.MarkNotificationReadRequest]) (*connect.Response[api.MarkNotificationReadResponse], error) {
	a, err := s.begin(ctx, req.Msg)
	if err != nil {
		return nil, err
	}
	if err := s.engine.MarkNotificationRead(ctx, a, req.Msg.NotificationID); err != nil {
		return nil, toConnectError("mark notification read", err)
	}
	return connect.NewResponse(&api.MarkNotificationReadResponse{}), nil
}
