// Package cmdgatev1 holds the wire contract of the cmdgate.v1.GateService
// gRPC service. Messages travel as google.protobuf.Struct so the service
// needs no generated message code.
package cmdgatev1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName     = "cmdgate.v1.GateService"
	CheckFullMethod = "/cmdgate.v1.GateService/Check"
)

// GateServiceServer is the server API for GateService.
type GateServiceServer interface {
	Check(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// UnimplementedGateServiceServer can be embedded for forward compatibility.
type UnimplementedGateServiceServer struct{}

func (UnimplementedGateServiceServer) Check(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Check not implemented")
}

// RegisterGateServiceServer registers srv on s.
func RegisterGateServiceServer(s grpc.ServiceRegistrar, srv GateServiceServer) {
	s.RegisterService(&GateServiceDesc, srv)
}

func checkHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(GateServiceServer).Check(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: CheckFullMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(GateServiceServer).Check(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// GateServiceDesc is the grpc.ServiceDesc for GateService.
var GateServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*GateServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Check",
			Handler:    checkHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "cmdgate/v1/gate.proto",
}

// GateServiceClient is the client API for GateService.
type GateServiceClient interface {
	Check(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type gateServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewGateServiceClient returns a client bound to cc.
func NewGateServiceClient(cc grpc.ClientConnInterface) GateServiceClient {
	return &gateServiceClient{cc: cc}
}

func (c *gateServiceClient) Check(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, CheckFullMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
