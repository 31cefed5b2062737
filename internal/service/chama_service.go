package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/chama/internal/engine"
	"github.com/mmynk/chama/internal/models"
	"github.com/mmynk/chama/pkg/api"
)

// ChamaService implements the Connect ChamaService.
type ChamaService struct {
	base
}

// NewChamaService creates a ChamaService backed by the given engine.
func NewChamaService(e *engine.Engine) *ChamaService {
	return &ChamaService{base{engine: e}}
}

// CreateChama creates a chama with the caller as admin.
func (s *ChamaService) CreateChama(ctx context.Context, req *connect.Request[api.CreateChamaRequest]) (*connect.Response[api.CreateChamaResponse], error) {
	slog.Info("CreateChama request received", "name", req.Msg.Name, "type", req.Msg.Type)

	if err := validateMsg(req.Msg); err != nil {
		return nil, err
	}
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	chama, err := s.engine.CreateChama(ctx, userID, engine.CreateChamaInput{
		Name:                req.Msg.Name,
		Type:                models.ChamaType(req.Msg.Type),
		MaxMembers:          req.Msg.MaxMembers,
		DefaultInterestRate: req.Msg.DefaultInterestRate,
	})
	if err != nil {
		return nil, toConnectError("create chama", err)
	}

	slog.Info("Chama created", "chama_id", chama.ID)
	return connect.NewResponse(&api.CreateChamaResponse{Chama: toAPIChama(chama)}), nil
}

// JoinChama adds the caller to the chama behind an invite code.
func (s *ChamaService) JoinChama(ctx context.Context, req *connect.Request[api.JoinChamaRequest]) (*connect.Response[api.JoinChamaResponse], error) {
	slog.Info("JoinChama request received")

	if err := validateMsg(req.Msg); err != nil {
		return nil, err
	}
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	chama, member, err := s.engine.JoinChama(ctx, userID, req.Msg.InviteCode)
	if err != nil {
		return nil, toConnectError("join chama", err)
	}
	return connect.NewResponse(&api.JoinChamaResponse{
		Chama:  toAPIChama(chama),
		Member: toAPIMember(member),
	}), nil
}

// GetChama returns a chama and its members.
func (s *ChamaService) GetChama(ctx context.Context, req *connect.Request[api.GetChamaRequest]) (*connect.Response[api.GetChamaResponse], error) {
	slog.Info("GetChama request received", "chama_id", req.Msg.ChamaID)

	a, err := s.begin(ctx, req.Msg)
	if err != nil {
		return nil, err
	}

	chama, err := s.engine.GetChama(ctx, a, req.Msg.ChamaID)
	if err != nil {
		return nil, toConnectError("get chama", err)
	}
	members, err := s.engine.ListMembers(ctx, a, req.Msg.ChamaID)
	if err != nil {
		return nil, toConnectError("list members", err)
	}
	return connect.NewResponse(&api.GetChamaResponse{
		Chama:   toAPIChama(chama),
		Members: convertSlice(members, toAPIMember),
	}), nil
}

// ListChamas returns the chamas the caller belongs to.
func (s *ChamaService) ListChamas(ctx context.Context, req *connect.Request[api.ListChamasRequest]) (*connect.Response[api.ListChamasResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("ListChamas request received", "user_id", userID)

	chamas, err := s.engine.ListChamas(ctx, userID)
	if err != nil {
		return nil, toConnectError("list chamas", err)
	}
	return connect.NewResponse(&api.ListChamasResponse{Chamas: convertSlice(chamas, toAPIChama)}), nil
}

// RemoveMember removes a member from a chama.
func (s *ChamaService) RemoveMember(ctx context.Context, req *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error) {
	slog.Info("RemoveMember request received", "chama_id", req.Msg.ChamaID, "user_id", req.Msg.UserID)

	a, err := s.begin(ctx, req.Msg)
	if err != nil {
		return nil, err
	}
	if err := s.engine.RemoveMember(ctx, a, req.Msg.ChamaID, req.Msg.UserID); err != nil {
		return nil, toConnectError("remove member", err)
	}
	return connect.NewResponse(&api.RemoveMemberResponse{}), nil
}

// CloseChama closes a chama for good.
func (s *ChamaService) CloseChama(ctx context.Context, req *connect.Request[api.CloseChamaRequest]) (*connect.Response[api.CloseChamaResponse], error) {
	slog.Info("CloseChama request received", "chama_id", req.Msg.ChamaID)

	a, err := s.begin(ctx, req.Msg)
	if err != nil {
		return nil, err
	}
	if err := s.engine.CloseChama(ctx, a, req.Msg.ChamaID); err != nil {
		return nil, toConnectError("close chama", err)
	}
	return connect.NewResponse(&api.CloseChamaResponse{}), nil
}
