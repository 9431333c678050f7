// Package proto defines the ebet.auth.v1.AuthService gRPC contract. Requests
// and responses are google.protobuf.Struct values:
//
//	SignUp  {nickname, email, password} -> {user, token}
//	SignIn  {nickname, password}        -> {user, token}
//	WhoAmI  {}                          -> {user}
//
// where user is {id, nickname, email}. The service definition lives in
// ebet/auth/v1/auth.proto.
package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const AuthServiceName = "ebet.auth.v1.AuthService"

const (
	AuthService_SignUp_FullMethodName = "/ebet.auth.v1.AuthService/SignUp"
	AuthService_SignIn_FullMethodName = "/ebet.auth.v1.AuthService/SignIn"
	AuthService_WhoAmI_FullMethodName = "/ebet.auth.v1.AuthService/WhoAmI"
)

type AuthServiceClient interface {
	SignUp(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	SignIn(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	WhoAmI(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type authServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewAuthServiceClient(cc grpc.ClientConnInterface) AuthServiceClient {
	return &authServiceClient{cc}
}

func (c *authServiceClient) SignUp(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, AuthService_SignUp_FullMethodName, in, opts...)
}

func (c *authServiceClient) SignIn(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, AuthService_SignIn_FullMethodName, in, opts...)
}

func (c *authServiceClient) WhoAmI(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, AuthService_WhoAmI_FullMethodName, in, opts...)
}

func (c *authServiceClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// AuthServiceServer is the server API for AuthService. Implementations
// should embed UnimplementedAuthServiceServer.
type AuthServiceServer interface {
	SignUp(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SignIn(context.Context, *structpb.Struct) (*structpb.Struct, error)
	WhoAmI(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type UnimplementedAuthServiceServer struct{}

func (UnimplementedAuthServiceServer) SignUp(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method SignUp not implemented")
}
func (UnimplementedAuthServiceServer) SignIn(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method SignIn not implemented")
}
func (UnimplementedAuthServiceServer) WhoAmI(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method WhoAmI not implemented")
}

func RegisterAuthServiceServer(s grpc.ServiceRegistrar, srv AuthServiceServer) {
	s.RegisterService(&AuthService_ServiceDesc, srv)
}

func unaryHandler(method string, call func(AuthServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(AuthServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(AuthServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var AuthService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: AuthServiceName,
	HandlerType: (*AuthServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "SignUp",
			Handler:    unaryHandler(AuthService_SignUp_FullMethodName, AuthServiceServer.SignUp),
		},
		{
			MethodName: "SignIn",
			Handler:    unaryHandler(AuthService_SignIn_FullMethodName, AuthServiceServer.SignIn),
		},
		{
			MethodName: "WhoAmI",
			Handler:    unaryHandler(AuthService_WhoAmI_FullMethodName, AuthServiceServer.WhoAmI),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "ebet/auth/v1/auth.proto",
}
