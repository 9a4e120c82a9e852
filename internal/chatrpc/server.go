// Package chatrpc exposes the chat action as a unary gRPC service.
//
// The service uses protobuf well-known wrapper types on the wire, so no
// generated code is needed:
//
//	service ChatService {
//	  rpc Respond(google.protobuf.StringValue) returns (google.protobuf.StringValue);
//	}
package chatrpc

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	"github.com/ashureev/taskpilot/internal/chat"
	"github.com/ashureev/taskpilot/internal/domain"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "taskpilot.chat.v1.ChatService"

const respondMethod = "/" + ServiceName + "/Respond"

// ChatServer is the server API for ChatService.
type ChatServer interface {
	Respond(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.StringValue, error)
}

// ServiceDesc describes ChatService for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ChatServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Respond", Handler: respondHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "taskpilot/chat/v1/chat.proto",
}

func respondHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ChatServer).Respond(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: respondMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ChatServer).Respond(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

// Server serves ChatService and the standard health service.
type Server struct {
	svc    *chat.Service
	server *grpc.Server
	health *health.Server
}

var _ ChatServer = (*Server)(nil)

// NewServer builds a gRPC server around svc.
func NewServer(svc *chat.Service, opts ...grpc.ServerOption) *Server {
	opts = append([]grpc.ServerOption{grpc.ChainUnaryInterceptor(logUnary)}, opts...)
	s := &Server{
		svc:    svc,
		server: grpc.NewServer(opts...),
		health: health.NewServer(),
	}
	s.server.RegisterService(&ServiceDesc, s)
	s.health.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)
	grpc_health_v1.RegisterHealthServer(s.server, s.health)
	return s
}

// Respond implements ChatServer.
func (s *Server) Respond(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	reply, err := s.svc.Reply(ctx, in.GetValue())
	if err != nil {
		if errors.Is(err, domain.ErrInvalidMessage) {
			return nil, status.Error(codes.InvalidArgument, chat.InvalidMessageReply)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, status.FromContextError(ctxErr).Err()
		}
		slog.Error("chat rpc failed", "error", err)
		return nil, status.Error(codes.Internal, chat.ServerErrorReply)
	}
	return wrapperspb.String(reply), nil
}

// Serve accepts connections on lis until Stop is called.
func (s *Server) Serve(lis net.Listener) error {
	slog.Info("gRPC server listening", "addr", lis.Addr().String())
	return s.server.Serve(lis)
}

// Stop marks the service as not serving and drains in-flight calls.
func (s *Server) Stop() {
	s.health.Shutdown()
	s.server.GracefulStop()
}

func logUnary(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	slog.Debug("gRPC call", "method", info.FullMethod, "code", status.Code(err).String(), "duration", time.Since(start))
	return resp, err
}
