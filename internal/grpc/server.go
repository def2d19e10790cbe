// Package server exposes the gRPC health service for the outage monitor.
package server

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health/grpc_health_v1"
)

type contextKey string

const requestIDKey contextKey = "requestID"

// SetupServer creates a gRPC server with the health service registered
// behind the request ID and logging interceptors.
func SetupServer(health *HealthChecker, logger *logrus.Logger) *grpc.Server {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			contextInterceptor,
			newLoggingInterceptor(logger),
		),
	)

	grpc_health_v1.RegisterHealthServer(srv, health)
	return srv
}

func contextInterceptor(
	ctx context.Context,
	req interface{},
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (interface{}, error) {
	ctx = context.WithValue(ctx, requestIDKey, uuid.NewString())
	return handler(ctx, req)
}

func newLoggingInterceptor(logger *logrus.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		requestID, _ := ctx.Value(requestIDKey).(string)

		resp, err := handler(ctx, req)

		entry := logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     info.FullMethod,
			"duration":   time.Since(start).String(),
		})
		if err != nil {
			entry.WithError(err).Warn("gRPC request failed")
		} else {
			entry.Debug("gRPC request served")
		}
		return resp, err
	}
}
