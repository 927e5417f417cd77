// Package userpb is the gRPC contract of the user directory. Messages are
// protobuf well-known wrappers, so no generated message types are needed.
package userpb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	ServiceName                = "gemstone.user.v1.UserDirectory"
	ValidateUserFullMethodName = "/" + ServiceName + "/ValidateUser"
	GetUserRoleFullMethodName  = "/" + ServiceName + "/GetUserRole"
)

// UserDirectoryClient is the client API for UserDirectory.
type UserDirectoryClient interface {
	// ValidateUser reports whether a user id exists.
	ValidateUser(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BoolValue, error)
	// GetUserRole returns the role of a user, or codes.NotFound.
	GetUserRole(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
}

type userDirectoryClient struct {
	cc grpc.ClientConnInterface
}

func NewUserDirectoryClient(cc grpc.ClientConnInterface) UserDirectoryClient {
	return &userDirectoryClient{cc}
}

func (c *userDirectoryClient) ValidateUser(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BoolValue, error) {
	out := new(wrapperspb.BoolValue)
	if err := c.cc.Invoke(ctx, ValidateUserFullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *userDirectoryClient) GetUserRole(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, GetUserRoleFullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// UserDirectoryServer is the server API for UserDirectory. Implementations
// must embed UnimplementedUserDirectoryServer.
type UserDirectoryServer interface {
	ValidateUser(context.Context, *wrapperspb.StringValue) (*wrapperspb.BoolValue, error)
	GetUserRole(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error)
	mustEmbedUnimplementedUserDirectoryServer()
}

type UnimplementedUserDirectoryServer struct{}

func (UnimplementedUserDirectoryServer) ValidateUser(context.Context, *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	return nil, status.Error(codes.Unimplemented, "method ValidateUser not implemented")
}

func (UnimplementedUserDirectoryServer) GetUserRole(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	return nil, status.Error(codes.Unimplemented, "method GetUserRole not implemented")
}

func (UnimplementedUserDirectoryServer) mustEmbedUnimplementedUserDirectoryServer() {}

func RegisterUserDirectoryServer(s grpc.ServiceRegistrar, srv UserDirectoryServer) {
	s.RegisterService(&UserDirectory_ServiceDesc, srv)
}

func _UserDirectory_ValidateUser_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(UserDirectoryServer).ValidateUser(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ValidateUserFullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(UserDirectoryServer).ValidateUser(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _UserDirectory_GetUserRole_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(UserDirectoryServer).GetUserRole(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: GetUserRoleFullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(UserDirectoryServer).GetUserRole(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

var UserDirectory_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*UserDirectoryServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ValidateUser", Handler: _UserDirectory_ValidateUser_Handler},
		{MethodName: "GetUserRole", Handler: _UserDirectory_GetUserRole_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "user/v1/user_directory.proto",
}
