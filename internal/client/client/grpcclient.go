// Package client is the gRPC client for ebet.auth.v1.AuthService. Server
// status codes are mapped to the sentinel errors in errors.go.
package client

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/ebet/internal/common"
	pb "github.com/dmitrijs2005/ebet/internal/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const callTimeout = 12 * time.Second

type User struct {
	ID       string
	Nickname string
	Email    string
}

type Session struct {
	User  User
	Token string
}

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      pb.AuthServiceClient
}

func NewGRPCClient(endpointURL string, opts ...grpc.DialOption) (*GRPCClient, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(endpointURL, opts...)
	if err != nil {
		return nil, err
	}
	return &GRPCClient{endpointURL: endpointURL, conn: conn, client: pb.NewAuthServiceClient(conn)}, nil
}

func (c *GRPCClient) Close() error {
	return c.conn.Close()
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	md.Set(common.AuthorizationMetadataKey, common.BearerScheme+" "+token)
	return metadata.NewOutgoingContext(ctx, md)
}

func (c *GRPCClient) SignUp(ctx context.Context, nickname, email, password string) (*Session, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	req, err := structpb.NewStruct(map[string]any{"nickname": nickname, "email": email, "password": password})
	if err != nil {
		return nil, err
	}
	resp, err := c.client.SignUp(ctx, req)
	if err != nil {
		return nil, mapError(err)
	}
	return sessionFrom(resp), nil
}

func (c *GRPCClient) SignIn(ctx context.Context, nickname, password string) (*Session, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	req, err := structpb.NewStruct(map[string]any{"nickname": nickname, "password": password})
	if err != nil {
		return nil, err
	}
	resp, err := c.client.SignIn(ctx, req)
	if err != nil {
		return nil, mapError(err)
	}
	return sessionFrom(resp), nil
}

func (c *GRPCClient) WhoAmI(ctx context.Context, token string) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	resp, err := c.client.WhoAmI(withAccessToken(ctx, token), &structpb.Struct{})
	if err != nil {
		return nil, mapError(err)
	}
	u := userFrom(resp.GetFields()["user"].GetStructValue())
	return &u, nil
}

func sessionFrom(s *structpb.Struct) *Session {
	return &Session{
		User:  userFrom(s.GetFields()["user"].GetStructValue()),
		Token: s.GetFields()["token"].GetStringValue(),
	}
}

func userFrom(s *structpb.Struct) User {
	f := s.GetFields()
	return User{
		ID:       f["id"].GetStringValue(),
		Nickname: f["nickname"].GetStringValue(),
		Email:    f["email"].GetStringValue(),
	}
}

func mapError(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.AlreadyExists:
		return ErrAlreadyExists
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", ErrInvalidInput, st.Message())
	case codes.Unauthenticated:
		switch st.Message() {
		case "invalid_credentials":
			return ErrInvalidCredentials
		case "token_expired":
			return ErrTokenExpired
		default:
			return ErrUnauthorized
		}
	default:
		return err
	}
}
