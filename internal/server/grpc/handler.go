package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/bankauth/internal/api"
	"github.com/dmitrijs2005/bankauth/internal/common"
	"github.com/dmitrijs2005/bankauth/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (s *GRPCServer) Login(ctx context.Context, req *api.LoginRequest) (*api.LoginResponse, error) {

	result, err := s.auth.Login(ctx, req.Username, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, "login", err)
	}

	user := result.User
	token, expiresAt, err := s.tokens.Issue(user.Username, user.Role, user.ID)
	if err != nil {
		s.logger.Error(ctx, "token signing failed", "error", err)
		return nil, status.Error(codes.Internal, "internal error")
	}

	s.logger.Info(ctx, "Logged in", "user_id", user.ID, "migrated", result.Migrated)

	return &api.LoginResponse{
		Token:       token,
		Username:    user.Username,
		DisplayName: user.DisplayName(),
		Role:        user.Role,
		ExpiresAt:   expiresAt.Unix(),
		Migrated:    result.Migrated,
	}, nil
}

func (s *GRPCServer) Register(ctx context.Context, req *api.RegisterRequest) (*api.RegisterResponse, error) {

	s.logger.Info(ctx, "Registration request")

	user, err := s.auth.Register(ctx, services.RegisterRequest{
		Username: req.Username,
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return nil, s.toStatus(ctx, "register", err)
	}

	s.logger.Info(ctx, "Registered", "user_id", user.ID)

	return &api.RegisterResponse{ID: user.ID, Username: user.Username, Email: user.Email, Role: user.Role}, nil
}

func (s *GRPCServer) CheckUsername(ctx context.Context, req *api.CheckUsernameRequest) (*api.CheckUsernameResponse, error) {

	available, err := s.auth.IsUsernameAvailable(ctx, req.Username)
	if err != nil {
		return nil, s.toStatus(ctx, "check username", err)
	}

	return &api.CheckUsernameResponse{Available: available}, nil
}

func (s *GRPCServer) WhoAmI(ctx context.Context, _ *api.WhoAmIRequest) (*api.WhoAmIResponse, error) {

	claims, ok := claimsFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	resp := &api.WhoAmIResponse{UserID: claims.UserID, Username: claims.Subject, Role: claims.Role}
	if claims.ExpiresAt != nil {
		resp.ExpiresAt = claims.ExpiresAt.Unix()
	}
	return resp, nil
}

func (s *GRPCServer) Ping(ctx context.Context, _ *api.PingRequest) (*api.PingResponse, error) {

	return &api.PingResponse{Status: "OK"}, nil

}

// toStatus maps service errors onto gRPC status codes. Credential failures
// always carry the same message.
func (s *GRPCServer) toStatus(ctx context.Context, op string, err error) error {
	var invalid *common.InvalidInputError
	var conflict *common.ConflictError

	switch {
	case errors.As(err, &invalid):
		return status.Error(codes.InvalidArgument, invalid.Error())
	case errors.Is(err, common.ErrorInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrorUnauthorized):
		return status.Error(codes.Unauthenticated, common.ErrorUnauthorized.Error())
	case errors.As(err, &conflict):
		return status.Error(codes.AlreadyExists, conflict.Error())
	case errors.Is(err, common.ErrorStoreUnavailable),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		s.logger.Warn(ctx, op+" failed", "error", err)
		return status.Error(codes.Unavailable, common.ErrorStoreUnavailable.Error())
	}

	s.logger.Error(ctx, op+" failed", "error", err)
	return status.Error(codes.Internal, "internal error")
}
