package service

import (
	"context"

	"github.com/bytedance/sonic"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// Сервисы описаны вручную: запросы и ответы — google.protobuf.Struct
// с теми же полями, что и JSON в REST.
const (
	CapacityServiceName = "scheduler.capacity.v1.CapacityService"
	LineServiceName     = "scheduler.capacity.v1.LineService"
)

type method func(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)

// unary собирает grpc.MethodDesc так же, как это делает protoc-gen-go-grpc.
func unary(serviceName, name string, pick func(srv any) method) grpc.MethodDesc {
	fullMethod := "/" + serviceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			h := pick(srv)
			if interceptor == nil {
				return h(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return h(ctx, req.(*structpb.Struct))
			})
		},
	}
}

// reply кодирует ответ в JSON и переносит его в structpb.Struct.
func reply(v any) (*structpb.Struct, error) {
	b, err := sonic.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(b, out); err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}

// Invoke вызывает метод сервиса по готовому соединению.
func Invoke(ctx context.Context, cc grpc.ClientConnInterface, serviceName, name string, req *structpb.Struct) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := cc.Invoke(ctx, "/"+serviceName+"/"+name, req, out); err != nil {
		return nil, err
	}
	return out, nil
}
