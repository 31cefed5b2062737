package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/chama/internal/engine"
	"github.com/mmynk/chama/internal/models"
	"github.com/mmynk/chama/pkg/api"
)

// CycleService implements the Connect CycleService.
type CycleService struct {
	base
}

// NewCycleService creates a CycleService backed by the given engine.
func NewCycleService(e *engine.Engine) *CycleService {
	return &CycleService{base{engine: e}}
}

// CreateCycle creates a pending cycle for a chama.
func (s *CycleService) CreateCycle(ctx context.Context, req *connect.Request[api.CreateCycleRequest]) (*connect.Response[api.CreateCycleResponse], error) {
	slog.Info("CreateCycle request received", "chama_id", req.Msg.ChamaID, "frequency", req.Msg.Frequency)

	a, err := s.begin(ctx, req.Msg)
	if err != nil {
		return nil, err
	}

	in := engine.CreateCycleInput{
		ChamaID:            req.Msg.ChamaID,
		Frequency:          models.Frequency(req.Msg.Frequency),
		ContributionAmount: req.Msg.ContributionAmount,
		PayoutAmount:       req.Msg.PayoutAmount,
		SavingsAmount:      req.Msg.SavingsAmount,
		ServiceFee:         req.Msg.ServiceFee,
		TotalPeriods:       req.Msg.TotalPeriods,
		MemberIDs:          req.Msg.MemberIDs,
	}
	if req.Msg.StartDate != nil {
		in.StartDate = *req.Msg.StartDate
	}

	view, err := s.engine.CreateCycle(ctx, a, in)
	if err != nil {
		return nil, toConnectError("create cycle", err)
	}

	slog.Info("Cycle created", "cycle_id", view.Cycle.ID, "periods", view.Cycle.TotalPeriods)
	cycle, members := toAPICycleView(view)
	return connect.NewResponse(&api.CreateCycleResponse{Cycle: cycle, Members: members}), nil
}

// GetCycle returns a cycle with its members.
func (s *CycleService) GetCycle(ctx context.Context, req *connect.Request[api.GetCycleRequest]) (*connect.Response[api.GetCycleResponse], error) {
	slog.Info("GetCycle request received", "cycle_id", req.Msg.CycleID)

	a, err := s.begin(ctx, req.Msg)
	if err != nil {
		return nil, err
	}
	view, err := s.engine.GetCycle(ctx, a, req.Msg.CycleID)
	if err != nil {
		return nil, toConnectError("get cycle", err)
	}
	cycle, members := toAPICycleView(view)
	return connect.NewResponse(&api.GetCycleResponse{Cycle: cycle, Members: members}), nil
}

// ListCycles returns a chama's cycles, newest first.
func (s *CycleService) ListCycles(ctx context.Context, req *connect.Request[api.ListCyclesRequest]) (*connect.Response[api.ListCyclesResponse], error) {
	slog.Info("ListCycles request received", "chama_id", req.Msg.ChamaID)

	a, err := s.begin(ctx, req.Msg)
	if err != nil {
		return nil, err
	}
	cycles, err := s.engine.ListCycles(ctx, a, req.Msg.ChamaID)
	if err != nil {
		return nil, toConnectError("list cycles", err)
	}
	return connect.NewResponse(&api.ListCyclesResponse{Cycles: convertSlice(cycles, toAPICycle)}), nil
}

type cycleTransition func(context.Context, engine.Actor, string) (*models.Cycle, error)

// transition runs one of the cycle state transitions.
func (s *CycleService) transition(ctx context.Context, op string, req *connect.Request[api.CycleActionRequest], fn cycleTransition) (*connect.Response[api.CycleActionResponse], error) {
	slog.Info(op+" request received", "cycle_id", req.Msg.CycleID)

	a, err := s.begin(ctx, req.Msg)
	if err != nil {
		return nil, err
	}
	cycle, err := fn(ctx, a, req.Msg.CycleID)
	if err != nil {
		return nil, toConnectError(op, err)
	}

	slog.Info("Cycle transitioned", "cycle_id", cycle.ID, "status", cycle.Status, "period", cycle.CurrentPeriod)
	return connect.NewResponse(&api.CycleActionResponse{Cycle: toAPICycle(cycle)}), nil
}

func (s *CycleService) StartCycle(ctx context.Context, req *connect.Request[api.CycleActionRequest]) (*connect.Response[api.CycleActionResponse], error) {
	return s.transition(ctx, "StartCycle", req, s.engine.StartCycle)
}

func (s *CycleService) PauseCycle(ctx context.Context, req *connect.Request[api.CycleActionRequest]) (*connect.Response[api.CycleActionResponse], error) {
	return s.transition(ctx, "PauseCycle", req, s.engine.PauseCycle)
}

func (s *CycleService) ResumeCycle(ctx context.Context, req *connect.Request[api.CycleActionRequest]) (*connect.Response[api.CycleActionResponse], error) {
	return s.transition(ctx, "ResumeCycle", req, s.engine.ResumeCycle)
}

func (s *CycleService) AdvanceCycle(ctx context.Context, req *connect.Request[api.CycleActionRequest]) (*connect.Response[api.CycleActionResponse], error) {
	return s.transition(ctx, "AdvanceCycle", req, s.engine.AdvanceCycle)
}

func (s *CycleService) CompleteCycle(ctx context.Context, req *connect.Request[api.CycleActionRequest]) (*connect.Response[api.CycleActionResponse], error) {
	return s.transition(ctx, "CompleteCycle", req, s.engine.CompleteCycle)
}

func (s *CycleService) CancelCycle(ctx context.Context, req *connect.Request[api.CycleActionRequest]) (*connect.Response[api.CycleActionResponse], error) {
	return s.transition(ctx, "CancelCycle", req, s.engine.CancelCycle)
}

// SetMemberSavings sets or clears a member's savings override.
func (s *CycleService) SetMemberSavings(ctx context.Context, req *connect.Request[api.SetMemberSavingsRequest]) (*connect.Response[api.SetMemberSavingsResponse], error) {
	slog.Info("SetMemberSavings request received", "cycle_member_id", req.Msg.CycleMemberID)

	a, err := s.begin(ctx, req.Msg)
	if err != nil {
		return nil, err
	}
	m, err := s.engine.SetMemberSavings(ctx, a, req.Msg.CycleMemberID, req.Msg.Amount)
	if err != nil {
		return nil, toConnectError("set member savings", err)
	}
	return connect.NewResponse(&api.SetMemberSavingsResponse{Member: toAPICycleMember(m)}), nil
}

// SetHideSavings toggles whether other members see the override.
func (s *CycleService) SetHideSavings(ctx context.Context, req *connect.Request[api.SetHideSavingsRequest]) (*connect.Response[api.SetHideSavingsResponse], error) {
	slog.Info("SetHideSavings request received", "cycle_member_id", req.Msg.CycleMemberID, "hide", req.Msg.Hide)

	a, err := s.begin(ctx, req.Msg)
	if err != nil {
		return nil, err
	}
	m, err := s.engine.SetHideSavings(ctx, a, req.Msg.CycleMemberID, req.Msg.Hide)
	if err != nil {
		return nil, toConnectError("set hide savings", err)
	}
	return connect.NewResponse(&api.SetHideSavingsResponse{Member: toAPICycleMember(m)}), nil
}
