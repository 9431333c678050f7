package grpc

import (
	"context"

	"github.com/dmitrijs2005/ebet/internal/common"
	"github.com/dmitrijs2005/ebet/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

func (s *GRPCServer) isProtected(fullMethod string) bool {
	for _, g := range s.protected {
		if g.Match(fullMethod) {
			return true
		}
	}
	return false
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if !s.isProtected(info.FullMethod) {
		return handler(ctx, req)
	}

	var header string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(common.AuthorizationMetadataKey); len(values) > 0 {
			header = values[0]
		}
	}

	ctx, p, err := s.gate.Attach(ctx, header)
	if err != nil {
		code := auth.ErrorCode(err)
		s.metrics.Gate("grpc", code)
		if auth.IsUnauthenticated(err) {
			s.logger.Info(ctx, "call not authorized", "method", info.FullMethod, "code", code)
		} else {
			s.logger.Error(ctx, "authorization failed", "method", info.FullMethod, "code", code, "error", err)
		}
		return nil, toStatus(err)
	}

	s.metrics.Gate("grpc", "")
	s.logger.Debug(ctx, "call authorized", "method", info.FullMethod, "account_id", p.ID)
	return handler(ctx, req)
}
