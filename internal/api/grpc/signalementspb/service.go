// Package signalementspb declares the Auth and Admin gRPC services. Requests
// and responses are google.protobuf.Struct messages.
package signalementspb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	AuthServiceName  = "signalements.Auth"
	AdminServiceName = "signalements.Admin"
)

// Full method names.
const (
	Auth_Login_FullMethodName             = "/signalements.Auth/Login"
	Auth_Register_FullMethodName          = "/signalements.Auth/Register"
	Auth_UpdateUser_FullMethodName        = "/signalements.Auth/UpdateUser"
	Admin_ForceSync_FullMethodName        = "/signalements.Admin/ForceSync"
	Admin_UnlockUser_FullMethodName       = "/signalements.Admin/UnlockUser"
	Admin_BlockedUsers_FullMethodName     = "/signalements.Admin/BlockedUsers"
	Admin_ConnectionStatus_FullMethodName = "/signalements.Admin/ConnectionStatus"
	Admin_LastSyncReport_FullMethodName   = "/signalements.Admin/LastSyncReport"
)

type AuthServer interface {
	Login(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Register(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateUser(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type AdminServer interface {
	ForceSync(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UnlockUser(context.Context, *structpb.Struct) (*structpb.Struct, error)
	BlockedUsers(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ConnectionStatus(context.Context, *structpb.Struct) (*structpb.Struct, error)
	LastSyncReport(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type structCall func(srv any, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)

func unary(service, method string, call structCall) grpc.MethodDesc {
	fullMethod := "/" + service + "/" + method
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv, ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: fullMethod,
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv, ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var Auth_ServiceDesc = grpc.ServiceDesc{
	ServiceName: AuthServiceName,
	HandlerType: (*AuthServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(AuthServiceName, "Login", func(srv any, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
			return srv.(AuthServer).Login(ctx, in)
		}),
		unary(AuthServiceName, "Register", func(srv any, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
			return srv.(AuthServer).Register(ctx, in)
		}),
		unary(AuthServiceName, "UpdateUser", func(srv any, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
			return srv.(AuthServer).UpdateUser(ctx, in)
		}),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "signalements.proto",
}

var Admin_ServiceDesc = grpc.ServiceDesc{
	ServiceName: AdminServiceName,
	HandlerType: (*AdminServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(AdminServiceName, "ForceSync", func(srv any, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
			return srv.(AdminServer).ForceSync(ctx, in)
		}),
		unary(AdminServiceName, "UnlockUser", func(srv any, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
			return srv.(AdminServer).UnlockUser(ctx, in)
		}),
		unary(AdminServiceName, "BlockedUsers", func(srv any, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
			return srv.(AdminServer).BlockedUsers(ctx, in)
		}),
		unary(AdminServiceName, "ConnectionStatus", func(srv any, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
			return srv.(AdminServer).ConnectionStatus(ctx, in)
		}),
		unary(AdminServiceName, "LastSyncReport", func(srv any, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
			return srv.(AdminServer).LastSyncReport(ctx, in)
		}),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "signalements.proto",
}

func RegisterAuthServer(s grpc.ServiceRegistrar, srv AuthServer) {
	s.RegisterService(&Auth_ServiceDesc, srv)
}

func RegisterAdminServer(s grpc.ServiceRegistrar, srv AdminServer) {
	s.RegisterService(&Admin_ServiceDesc, srv)
}

// Client invokes either service over a client connection.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Call invokes fullMethod with in.
func (c *Client) Call(ctx context.Context, fullMethod string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
