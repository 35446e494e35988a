// Package server exposes a Gate over gRPC as cmdgate.v1.GateService,
// alongside the standard gRPC health service.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	pb "github.com/ppiankov/cmdgate/api/proto/cmdgate/v1"
	"github.com/ppiankov/cmdgate/internal/gate"
)

// Config holds gRPC server configuration.
type Config struct {
	Port   int
	Gate   *gate.Gate
	Logger *slog.Logger
}

// Server implements the GateService gRPC server.
type Server struct {
	pb.UnimplementedGateServiceServer

	mu     sync.RWMutex
	gate   *gate.Gate
	cfg    Config
	logger *slog.Logger

	grpcServer *grpc.Server
	health     *health.Server
}

// New creates a gRPC server around cfg.Gate.
func New(cfg Config) (*Server, error) {
	if cfg.Gate == nil {
		return nil, errors.New("server requires a gate")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		gate:   cfg.Gate,
		cfg:    cfg,
		logger: logger,
		health: health.NewServer(),
	}
	s.grpcServer = grpc.NewServer(grpc.ChainUnaryInterceptor(s.logUnary))

	pb.RegisterGateServiceServer(s.grpcServer, s)
	healthpb.RegisterHealthServer(s.grpcServer, s.health)
	s.health.SetServingStatus(pb.ServiceName, healthpb.HealthCheckResponse_SERVING)
	return s, nil
}

// Serve starts the gRPC server on the configured port. Blocks until stopped.
func (s *Server) Serve() error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.Port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", s.cfg.Port, err)
	}
	return s.ServeOn(lis)
}

// ServeOn starts the gRPC server on the given listener.
func (s *Server) ServeOn(lis net.Listener) error {
	s.logger.Info("gate server listening", "addr", lis.Addr().String())
	return s.grpcServer.Serve(lis)
}

// GracefulStop marks the service not serving and drains in-flight calls.
func (s *Server) GracefulStop() {
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}

// SetGate swaps the gate used for subsequent calls. Called after a config
// reload.
func (s *Server) SetGate(g *gate.Gate) {
	if g == nil {
		return
	}
	s.mu.Lock()
	s.gate = g
	s.mu.Unlock()
}

// Check implements the Check RPC.
func (s *Server) Check(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req := pb.CheckRequestFromStruct(in)

	s.mu.RLock()
	g := s.gate
	s.mu.RUnlock()

	d := g.CheckRequest(ctx, req.RequestID, req.Command)
	resp := &pb.CheckResponse{
		Allowed:   d.Allowed,
		Reason:    d.Reason,
		Stage:     string(d.Stage),
		Mode:      d.Mode.String(),
		Name:      d.Name,
		Validator: d.Validator,
		RequestID: d.RequestID,
	}
	return resp.Struct(), nil
}

func (s *Server) logUnary(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	s.logger.Debug("rpc",
		"method", info.FullMethod,
		"code", status.Code(err).String(),
		"duration", time.Since(start),
	)
	return resp, err
}
