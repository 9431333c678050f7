package client

import (
	"context"
	"net"
	"testing"

	"github.com/dmitrijs2005/ebet/internal/common"
	pb "github.com/dmitrijs2005/ebet/internal/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

type stubServer struct {
	pb.UnimplementedAuthServiceServer
	signInErr error
	gotAuth   string
}

func user() map[string]any {
	return map[string]any{"id": "u-1", "nickname": "Bob", "email": "bob@gmail.com"}
}

func (s *stubServer) SignUp(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req.GetFields()["nickname"].GetStringValue() == "taken" {
		return nil, status.Error(codes.AlreadyExists, "nickname or email already taken")
	}
	return structpb.NewStruct(map[string]any{"user": user(), "token": "tok-up"})
}

func (s *stubServer) SignIn(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	if s.signInErr != nil {
		return nil, s.signInErr
	}
	return structpb.NewStruct(map[string]any{"user": user(), "token": "tok-in"})
}

func (s *stubServer) WhoAmI(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	md, _ := metadata.FromIncomingContext(ctx)
	if v := md.Get(common.AuthorizationMetadataKey); len(v) > 0 {
		s.gotAuth = v[0]
	}
	if s.gotAuth != "Bearer good" {
		return nil, status.Error(codes.Unauthenticated, "token_expired")
	}
	return structpb.NewStruct(map[string]any{"user": user()})
}

func newTestClient(t *testing.T, stub *stubServer) *GRPCClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	pb.RegisterAuthServiceServer(srv, stub)
	go func() { _ = srv.Serve(lis) }()

	c, err := NewGRPCClient("passthrough:///bufnet", grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	}))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = c.Close()
		srv.Stop()
	})
	return c
}

func TestGRPCClient_SignUpAndSignIn(t *testing.T) {
	c := newTestClient(t, &stubServer{})

	s, err := c.SignUp(context.Background(), "Bob", "bob@gmail.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tok-up", s.Token)
	assert.Equal(t, User{ID: "u-1", Nickname: "Bob", Email: "bob@gmail.com"}, s.User)

	s, err = c.SignIn(context.Background(), "Bob", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tok-in", s.Token)

	_, err = c.SignUp(context.Background(), "taken", "x@gmail.com", "secret")
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestGRPCClient_SignInErrors(t *testing.T) {
	stub := &stubServer{signInErr: status.Error(codes.Unauthenticated, "invalid_credentials")}
	c := newTestClient(t, stub)

	_, err := c.SignIn(context.Background(), "Bob", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	stub.signInErr = status.Error(codes.InvalidArgument, "validation error: password: too short")
	_, err = c.SignIn(context.Background(), "Bob", "x")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGRPCClient_WhoAmISendsBearer(t *testing.T) {
	stub := &stubServer{}
	c := newTestClient(t, stub)

	u, err := c.WhoAmI(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, "Bob", u.Nickname)
	assert.Equal(t, "Bearer good", stub.gotAuth)

	_, err = c.WhoAmI(context.Background(), "stale")
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestMapError(t *testing.T) {
	assert.ErrorIs(t, mapError(status.Error(codes.Unavailable, "down")), ErrUnavailable)
	assert.ErrorIs(t, mapError(status.Error(codes.Unauthenticated, "unauthenticated")), ErrUnauthorized)

	internal := status.Error(codes.Internal, "internal error")
	assert.Equal(t, internal, mapError(internal))
}
