package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/chama/internal/engine"
	"github.com/mmynk/chama/pkg/api"
)

// PayoutService implements the Connect PayoutService.
type PayoutService struct {
	base
}

// NewPayoutService creates a PayoutService backed by the given engine.
func NewPayoutService(e *engine.Engine) *PayoutService {
	return &PayoutService{base{engine: e}}
}

// SendPayout marks a payout as paid out by an admin.
func (s *PayoutService) SendPayout(ctx context.Context, req *connect.Request[api.SendPayoutRequest]) (*connect.Response[api.SendPayoutResponse], error) {
	slog.Info("SendPayout request received", "payout_id", req.Msg.PayoutID)

	a, err := s.begin(ctx, req.Msg)
	if err != nil {
		return nil, err
	}
	p, err := s.engine.SendPayout(ctx, a, req.Msg.PayoutID, req.Msg.Notes)
	if err != nil {
		return nil, toConnectError("send payout", err)
	}

	slog.Info("Payout sent", "payout_id", p.ID, "recipient_id", p.RecipientID, "amount", p.Amount)
	return connect.NewResponse(&api.SendPayoutResponse{Payout: toAPIPayout(p)}), nil
}

// ConfirmPayout is the recipient acknowledging receipt.
func (s *PayoutService) ConfirmPayout(ctx context.Context, req *connect.Request[api.ConfirmPayoutRequest]) (*connect.Response[api.ConfirmPayoutResponse], error) {
	slog.Info("ConfirmPayout request received", "payout_id", req.Msg.PayoutID)

	a, err := s.begin(ctx, req.Msg)
	if err != nil {
		return nil, err
	}
	p, err := s.engine.ConfirmPayout(ctx, a, req.Msg.PayoutID)
	if err != nil {
		return nil, toConnectError("confirm payout", err)
	}
	return connect.NewResponse(&api.ConfirmPayoutResponse{Payout: toAPIPayout(p)}), nil
}

func (s *PayoutService) ListPayouts(ctx context.Context, req *connect.Request[api.ListPayoutsRequest]) (*connect.Response[api.ListPayoutsResponse], error) {
	slog.Info("ListPayouts request received", "cycle_id", req.Msg.CycleID)

	a, err := s.begin(ctx, req.Msg)
	if err != nil {
		return nil, err
	}
	ps, err := s.engine.ListPayouts(ctx, a, req.Msg.CycleID)
	if err != nil {
		return nil, toConnectError("list payouts", err)
	}
	return connect.NewResponse(&api.ListPayoutsResponse{Payouts: convertSlice(ps, toAPIPayout)}), nil
}
