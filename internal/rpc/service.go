// Package rpc exposes a game session over gRPC. Messages are
// google.protobuf.Struct values carrying the same JSON shapes as the HTTP
// API, so no generated code is needed.
//
// Struct numbers are doubles: scores and costs above 2^53 arrive rounded.
// Quantities must be whole numbers.
package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "clicker.v1.Clicker"

const (
	methodGetState    = "GetState"
	methodClick       = "Click"
	methodPurchase    = "Purchase"
	methodTick        = "Tick"
	methodReset       = "Reset"
	methodSetCapacity = "SetCapacityLimit"
)

// ClickerServer is the server API for the clicker service.
type ClickerServer interface {
	GetState(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Click(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Purchase(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Tick(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Reset(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SetCapacityLimit(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryFunc func(ClickerServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unary(name string, fn unaryFunc) grpc.MethodDesc {
	full := "/" + ServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return fn(srv.(ClickerServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: full}
			handler := func(ctx context.Context, req any) (any, error) {
				return fn(srv.(ClickerServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc describes the clicker service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ClickerServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(methodGetState, ClickerServer.GetState),
		unary(methodClick, ClickerServer.Click),
		unary(methodPurchase, ClickerServer.Purchase),
		unary(methodTick, ClickerServer.Tick),
		unary(methodReset, ClickerServer.Reset),
		unary(methodSetCapacity, ClickerServer.SetCapacityLimit),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "clicker/v1/clicker.proto",
}

// Register attaches srv to s.
func Register(s grpc.ServiceRegistrar, srv ClickerServer) {
	s.RegisterService(&ServiceDesc, srv)
}
