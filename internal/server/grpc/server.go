// Package grpc exposes the auth service over gRPC. Methods matching the
// configured protected patterns pass through the authorization gate first.
package grpc

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/dmitrijs2005/ebet/internal/logging"
	pb "github.com/dmitrijs2005/ebet/internal/proto"
	"github.com/dmitrijs2005/ebet/internal/server/auth"
	"github.com/dmitrijs2005/ebet/internal/server/metrics"
	"github.com/dmitrijs2005/ebet/internal/server/services"
	"github.com/gobwas/glob"
	"google.golang.org/grpc"
)

// DefaultProtectedMethods lists the methods that require a bearer token.
var DefaultProtectedMethods = []string{pb.AuthService_WhoAmI_FullMethodName}

type GRPCServer struct {
	pb.UnimplementedAuthServiceServer
	address   string
	auth      *services.AuthService
	gate      *auth.Gate
	protected []glob.Glob
	metrics   *metrics.Metrics
	logger    logging.Logger
}

// NewGRPCServer compiles protectedMethods as glob patterns over full method
// names, e.g. "/ebet.auth.v1.AuthService/Who*".
func NewGRPCServer(a string, l logging.Logger, as *services.AuthService, g *auth.Gate, m *metrics.Metrics, protectedMethods []string) (*GRPCServer, error) {
	protected := make([]glob.Glob, 0, len(protectedMethods))
	for _, p := range protectedMethods {
		compiled, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid protected method pattern %q: %w", p, err)
		}
		protected = append(protected, compiled)
	}

	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		auth:      as,
		gate:      g,
		protected: protected,
		metrics:   m,
	}, nil
}

// NewServer returns a grpc.Server with the service and the gate interceptor
// registered.
func (s *GRPCServer) NewServer(opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(s.accessTokenInterceptor))
	srv := grpc.NewServer(opts...)
	pb.RegisterAuthServiceServer(srv, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

func (s *GRPCServer) Serve(ctx context.Context, listen net.Listener) error {
	srv := s.NewServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}
