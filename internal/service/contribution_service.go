package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/chama/internal/engine"
	"github.com/mmynk/chama/pkg/api"
)

// ContributionService implements the Connect ContributionService.
type ContributionService struct {
	base
}

// NewContributionService creates a ContributionService backed by the given engine.
func NewContributionService(e *engine.Engine) *ContributionService {
	return &ContributionService{base{engine: e}}
}

// RecordPayment records a payment towards a period's contribution.
func (s *ContributionService) RecordPayment(ctx context.Context, req *connect.Request[api.RecordPaymentRequest]) (*connect.Response[api.RecordPaymentResponse], error) {
	slog.Info("RecordPayment request received",
		"cycle_id", req.Msg.CycleID,
		"user_id", req.Msg.UserID,
		"period", req.Msg.Period,
		"amount", req.Msg.Amount)

	a, err := s.begin(ctx, req.Msg)
	if err != nil {
		return nil, err
	}
	c, err := s.engine.RecordPayment(ctx, a, engine.RecordPaymentInput{
		CycleID: req.Msg.CycleID,
		UserID:  req.Msg.UserID,
		Period:  req.Msg.Period,
		Amount:  req.Msg.Amount,
	})
	if err != nil {
		return nil, toConnectError("record payment", err)
	}
	return connect.NewResponse(&api.RecordPaymentResponse{Contribution: toAPIContribution(c)}), nil
}

// ConfirmContribution confirms a paid contribution and returns its split.
func (s *ContributionService) ConfirmContribution(ctx context.Context, req *connect.Request[api.ConfirmContributionRequest]) (*connect.Response[api.ConfirmContributionResponse], error) {
	slog.Info("ConfirmContribution request received", "contribution_id", req.Msg.ContributionID)

	a, err := s.begin(ctx, req.Msg)
	if err != nil {
		return nil, err
	}
	conf, err := s.engine.ConfirmContribution(ctx, a, req.Msg.ContributionID)
	if err != nil {
		return nil, toConnectError("confirm contribution", err)
	}

	slog.Info("Contribution confirmed",
		"contribution_id", conf.Contribution.ID,
		"savings", conf.Allocation.Savings,
		"fee", conf.Allocation.Fee)
	return connect.NewResponse(&api.ConfirmContributionResponse{
		Contribution: toAPIContribution(conf.Contribution),
		Allocation:   toAPIAllocation(conf.Allocation),
	}), nil
}

// ListContributions lists a cycle's contributions, optionally for one period.
func (s *ContributionService) ListContributions(ctx context.Context, req *connect.Request[api.ListContributionsRequest]) (*connect.Response[api.ListContributionsResponse], error) {
	slog.Info("ListContributions request received", "cycle_id", req.Msg.CycleID, "period", req.Msg.Period)

	a, err := s.begin(ctx, req.Msg)
	if err != nil {
		return nil, err
	}
	cs, err := s.engine.ListContributions(ctx, a, req.Msg.CycleID, req.Msg.Period)
	if err != nil {
		return nil, toConnectError("list contributions", err)
	}
	return connect.NewResponse(&api.ListContributionsResponse{Contributions: convertSlice(cs, toAPIContribution)}), nil
}
