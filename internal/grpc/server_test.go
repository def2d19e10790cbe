package server_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	server "github.com/tejusbharadwaj/outagewatch/internal/grpc"
)

const bufSize = 1024 * 1024

func dialHealth(t *testing.T, health *server.HealthChecker) grpc_health_v1.HealthClient {
	t.Helper()
	client, _ := dialHealthWithHook(t, health)
	return client
}

func dialHealthWithHook(t *testing.T, health *server.HealthChecker) (grpc_health_v1.HealthClient, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	lis := bufconn.Listen(bufSize)
	srv := server.SetupServer(health, logger)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return grpc_health_v1.NewHealthClient(conn), hook
}

func TestHealthCheck(t *testing.T) {
	health := server.NewHealthChecker()
	client := dialHealth(t, health)
	ctx := context.Background()

	resp, err := client.Check(ctx, &grpc_health_v1.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, resp.Status)

	resp, err = client.Check(ctx, &grpc_health_v1.HealthCheckRequest{Service: server.FeedService})
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_UNKNOWN, resp.Status)

	health.SetFeedHealthy(false)
	resp, err = client.Check(ctx, &grpc_health_v1.HealthCheckRequest{Service: server.FeedService})
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, resp.Status)

	health.SetFeedHealthy(true)
	resp, err = client.Check(ctx, &grpc_health_v1.HealthCheckRequest{Service: server.FeedService})
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, resp.Status)
}

func TestHealthCheckUnknownService(t *testing.T) {
	client := dialHealth(t, server.NewHealthChecker())

	_, err := client.Check(context.Background(), &grpc_health_v1.HealthCheckRequest{Service: "nope"})
	require.Error(t, err)
	st, ok := status.FromError(err)
	require.True(t, ok)
	assert.Equal(t, codes.NotFound, st.Code())
}

func TestHealthShutdown(t *testing.T) {
	health := server.NewHealthChecker()
	health.SetFeedHealthy(true)
	health.Shutdown()

	for _, svc := range []string{"", server.FeedService} {
		resp, err := health.Check(context.Background(), &grpc_health_v1.HealthCheckRequest{Service: svc})
		require.NoError(t, err)
		assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, resp.Status)
	}
}

func TestHealthWatch(t *testing.T) {
	health := server.NewHealthChecker()
	client := dialHealth(t, health)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stream, err := client.Watch(ctx, &grpc_health_v1.HealthCheckRequest{Service: server.FeedService})
	require.NoError(t, err)

	resp, err := stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_UNKNOWN, resp.Status)

	health.SetFeedHealthy(true)
	resp, err = stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, resp.Status)

	health.Shutdown()
	resp, err = stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, resp.Status)
}

func TestHealthWatchUnknownService(t *testing.T) {
	health := server.NewHealthChecker()
	client := dialHealth(t, health)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stream, err := client.Watch(ctx, &grpc_health_v1.HealthCheckRequest{Service: "later"})
	require.NoError(t, err)

	resp, err := stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVICE_UNKNOWN, resp.Status)

	health.SetServingStatus("later", grpc_health_v1.HealthCheckResponse_SERVING)
	resp, err = stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, resp.Status)
}

func TestSetServingStatusIgnoredAfterShutdown(t *testing.T) {
	health := server.NewHealthChecker()
	health.Shutdown()
	health.SetFeedHealthy(true)

	resp, err := health.Check(context.Background(), &grpc_health_v1.HealthCheckRequest{Service: server.FeedService})
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, resp.Status)
}

func TestInterceptorsLogRequestID(t *testing.T) {
	client, hook := dialHealthWithHook(t, server.NewHealthChecker())

	_, err := client.Check(context.Background(), &grpc_health_v1.HealthCheckRequest{})
	require.NoError(t, err)
	_, err = client.Check(context.Background(), &grpc_health_v1.HealthCheckRequest{Service: "nope"})
	require.Error(t, err)

	entries := hook.AllEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, logrus.DebugLevel, entries[0].Level)
	assert.Equal(t, "/grpc.health.v1.Health/Check", entries[0].Data["method"])
	assert.NotEmpty(t, entries[0].Data["request_id"])
	assert.Equal(t, logrus.WarnLevel, entries[1].Level)
	assert.NotEqual(t, entries[0].Data["request_id"], entries[1].Data["request_id"])
}
