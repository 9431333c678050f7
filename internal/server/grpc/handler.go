package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/ebet/internal/common"
	"github.com/dmitrijs2005/ebet/internal/server/auth"
	"github.com/dmitrijs2005/ebet/internal/server/models"
	"github.com/dmitrijs2005/ebet/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

func (s *GRPCServer) SignUp(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	session, err := s.auth.SignUp(ctx, services.SignUpInput{
		Nickname: stringField(req, "nickname"),
		Email:    stringField(req, "email"),
		Password: stringField(req, "password"),
	})
	if err != nil {
		return nil, toStatus(err)
	}

	s.logger.Info(ctx, "Registered", "account_id", session.Account.ID)
	return sessionStruct(session)
}

func (s *GRPCServer) SignIn(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	session, err := s.auth.SignIn(ctx, stringField(req, "nickname"), stringField(req, "password"))
	if err != nil {
		return nil, toStatus(err)
	}
	return sessionStruct(session)
}

func (s *GRPCServer) WhoAmI(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	p, ok := auth.PrincipalFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "unauthenticated")
	}

	account, err := s.auth.Account(ctx, p.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	return structpb.NewStruct(map[string]any{"user": userMap(account)})
}

func stringField(s *structpb.Struct, name string) string {
	if s == nil {
		return ""
	}
	if v, ok := s.GetFields()[name]; ok {
		return v.GetStringValue()
	}
	return ""
}

func userMap(a *models.Account) map[string]any {
	return map[string]any{
		"id":       a.ID,
		"nickname": a.Nickname,
		"email":    a.Email,
	}
}

func sessionStruct(s *services.Session) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(map[string]any{
		"user":  userMap(s.Account),
		"token": s.Token,
	})
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}
	return out, nil
}

// toStatus mirrors the HTTP error mapping. Both signin rejection reasons
// become the same Unauthenticated status.
func toStatus(err error) error {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		return status.Error(codes.InvalidArgument, ve.Error())
	case errors.Is(err, common.ErrAlreadyExists):
		return status.Error(codes.AlreadyExists, "nickname or email already taken")
	case errors.Is(err, common.ErrInvalidCredentials):
		return status.Error(codes.Unauthenticated, "invalid_credentials")
	case errors.Is(err, common.ErrTokenExpired):
		return status.Error(codes.Unauthenticated, "token_expired")
	case auth.IsUnauthenticated(err):
		return status.Error(codes.Unauthenticated, "unauthenticated")
	case errors.Is(err, common.ErrAccountNotFoundAfterTokenValid):
		return status.Error(codes.Internal, "account_not_found_after_token_valid")
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "not found")
	default:
		return status.Error(codes.Internal, "internal error")
	}
}
