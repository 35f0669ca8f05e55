package server

import (
	"context"
	"fmt"
	"net"
	"sync"

	grpc_middleware "github.com/grpc-ecosystem/go-grpc-middleware"
	"github.com/kumarabd/gokit/logger"
	"github.com/kumarabd/validation-plane/tuner/internal/metrics"
	"github.com/kumarabd/validation-plane/tuner/pkg/service"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// GRPCConfig contains configuration for the gRPC server
type GRPCConfig struct {
	Host                 string `json:"host" yaml:"host" default:"0.0.0.0"`
	Port                 string `json:"port" yaml:"port" default:"9090"`
	MaxConcurrentStreams uint32 `json:"max_concurrent_streams" yaml:"max_concurrent_streams" default:"100"`
}

// GRPC implements the Server interface for gRPC. No custom protos are served
// yet; the options wire format is the JSON layout over HTTP. Health and
// reflection let workers probe the plane over gRPC.
type GRPC struct {
	handler   *grpc.Server
	health    *health.Server
	service   *service.Handler
	log       *logger.Handler
	metric    *metrics.Handler
	config    *GRPCConfig
	listener  net.Listener
	isRunning bool
	mu        sync.RWMutex
}

// NewGRPC creates a new gRPC server instance
func NewGRPC(config *GRPCConfig, svc *service.Handler, log *logger.Handler, metric *metrics.Handler) *GRPC {
	opts := []grpc.ServerOption{
		grpc.MaxConcurrentStreams(config.MaxConcurrentStreams),
		grpc.UnaryInterceptor(grpc_middleware.ChainUnaryServer(
			grpcLoggingInterceptor(log),
			grpcMetricsInterceptor(metric),
		)),
	}

	server := &GRPC{
		handler: grpc.NewServer(opts...),
		health:  health.NewServer(),
		service: svc,
		log:     log,
		metric:  metric,
		config:  config,
	}

	// Register the health service
	grpc_health_v1.RegisterHealthServer(server.handler, server.health)
	server.health.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	server.health.SetServingStatus("tuner", grpc_health_v1.HealthCheckResponse_SERVING)

	// Register reflection service for gRPC debugging
	reflection.Register(server.handler)

	return server
}

// Start starts the gRPC server
func (s *GRPC) Start() error {
	s.mu.Lock()

	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("gRPC server is already running")
	}

	addr := fmt.Sprintf("%s:%s", s.config.Host, s.config.Port)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.listener = listener
	s.isRunning = true
	s.mu.Unlock()

	s.log.Info().Msgf("Starting gRPC server on %s", addr)

	return s.handler.Serve(listener)
}

// Stop gracefully shuts down the gRPC server
func (s *GRPC) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning || s.handler == nil {
		return nil
	}

	s.log.Info().Msg("Shutting down gRPC server...")

	s.health.Shutdown()
	s.handler.GracefulStop()

	if s.listener != nil {
		s.listener.Close()
	}

	s.isRunning = false
	s.log.Info().Msg("gRPC server stopped")
	return nil
}

// IsRunning returns true if the gRPC server is currently running
func (s *GRPC) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetName returns the name of the server implementation
func (s *GRPC) GetName() string {
	return "gRPC"
}

// GetServer returns the underlying gRPC server for service registration
func (s *GRPC) GetServer() *grpc.Server {
	return s.handler
}

// RegisterService registers a gRPC service with the server
func (s *GRPC) RegisterService(desc *grpc.ServiceDesc, impl interface{}) {
	s.handler.RegisterService(desc, impl)
	s.log.Info().Msgf("Registered gRPC service: %s", desc.ServiceName)
}
