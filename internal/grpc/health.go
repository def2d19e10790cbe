package server

import (
	"context"
	"sync"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// FeedService is the health check name that tracks outage feed reachability.
const FeedService = "outagewatch.Feed"

type servingStatus = grpc_health_v1.HealthCheckResponse_ServingStatus

// HealthChecker implements the gRPC health checking protocol, including
// Watch streams that are pushed every status change.
type HealthChecker struct {
	grpc_health_v1.UnimplementedHealthServer
	mu       sync.RWMutex
	status   map[string]servingStatus
	watchers map[string]map[chan servingStatus]struct{}
	shutdown bool
}

// NewHealthChecker reports the process as serving and the feed as unknown
// until the first poll cycle completes.
func NewHealthChecker() *HealthChecker {
	return &HealthChecker{
		status: map[string]servingStatus{
			"":          grpc_health_v1.HealthCheckResponse_SERVING,
			FeedService: grpc_health_v1.HealthCheckResponse_UNKNOWN,
		},
		watchers: make(map[string]map[chan servingStatus]struct{}),
	}
}

func (h *HealthChecker) Check(ctx context.Context, req *grpc_health_v1.HealthCheckRequest) (*grpc_health_v1.HealthCheckResponse, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if status, ok := h.status[req.Service]; ok {
		return &grpc_health_v1.HealthCheckResponse{
			Status: status,
		}, nil
	}

	return nil, status.Error(codes.NotFound, "unknown service")
}

// Watch streams the status of one service, starting with the current value.
// Unknown services report SERVICE_UNKNOWN until they are registered.
// Intermediate values may be collapsed when the client reads slowly.
func (h *HealthChecker) Watch(req *grpc_health_v1.HealthCheckRequest, stream grpc_health_v1.Health_WatchServer) error {
	updates := make(chan servingStatus, 1)

	h.mu.Lock()
	current, ok := h.status[req.Service]
	if !ok {
		current = grpc_health_v1.HealthCheckResponse_SERVICE_UNKNOWN
	}
	if h.watchers[req.Service] == nil {
		h.watchers[req.Service] = make(map[chan servingStatus]struct{})
	}
	h.watchers[req.Service][updates] = struct{}{}
	updates <- current
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.watchers[req.Service], updates)
		h.mu.Unlock()
	}()

	var last servingStatus = -1
	for {
		select {
		case next := <-updates:
			if next == last {
				continue
			}
			if err := stream.Send(&grpc_health_v1.HealthCheckResponse{Status: next}); err != nil {
				return status.Error(codes.Canceled, "stream has ended")
			}
			last = next
		case <-stream.Context().Done():
			return status.Error(codes.Canceled, "stream has ended")
		}
	}
}

// SetServingStatus sets the serving status of a service. It is ignored after
// Shutdown.
func (h *HealthChecker) SetServingStatus(service string, status servingStatus) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.shutdown {
		return
	}
	h.setLocked(service, status)
}

// SetFeedHealthy records whether the last poll cycle reached the feed.
func (h *HealthChecker) SetFeedHealthy(healthy bool) {
	if healthy {
		h.SetServingStatus(FeedService, grpc_health_v1.HealthCheckResponse_SERVING)
		return
	}
	h.SetServingStatus(FeedService, grpc_health_v1.HealthCheckResponse_NOT_SERVING)
}

// Shutdown marks every service as not serving and freezes the statuses so
// a cycle finishing during shutdown cannot flip them back.
func (h *HealthChecker) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.shutdown = true
	for name := range h.status {
		h.setLocked(name, grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	}
}

func (h *HealthChecker) setLocked(service string, status servingStatus) {
	h.status[service] = status
	for ch := range h.watchers[service] {
		// keep only the newest value
		select {
		case <-ch:
		default:
		}
		ch <- status
	}
}
