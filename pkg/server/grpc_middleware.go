package server

import (
	"context"
	"time"

	"github.com/kumarabd/gokit/logger"
	"github.com/kumarabd/validation-plane/tuner/internal/metrics"
	"google.golang.org/grpc"
)

func grpcLoggingInterceptor(log *logger.Handler) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		log.Info().
			Str("method", info.FullMethod).
			Msg("gRPC Request")

		resp, err := handler(ctx, req)

		if err != nil {
			log.Error().
				Err(err).
				Str("method", info.FullMethod).
				Msg("gRPC Request failed")
		} else {
			log.Info().
				Str("method", info.FullMethod).
				Msg("gRPC Request completed")
		}

		return resp, err
	}
}

func grpcMetricsInterceptor(metric *metrics.Handler) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()

		resp, err := handler(ctx, req)

		status := "success"
		if err != nil {
			status = "error"
		}

		if metric != nil {
			metric.IncGRPCRequestsTotal(info.FullMethod, status)
			metric.ObserveGRPCRequestLatency(info.FullMethod, time.Since(start))
		}

		return resp, err
	}
}
