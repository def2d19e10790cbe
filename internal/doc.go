// Package outagewatch watches a utility's public outage map and notifies a
// single Telegram chat when power at one location goes out or comes back.
//
// # Architecture
//
// The service is structured into several key packages:
//   - api: HTTP client for the outage feed
//   - config: YAML, dotenv and environment configuration
//   - geo: Square to outline intersection tests
//   - grpc: gRPC health service reporting feed reachability
//   - models: Feed records and the monitored area
//   - monitor: The poll cycle
//   - notifier: Telegram and log-only notification sinks
//   - scheduler: Periodic cycle execution
//   - state: Update marker, outage cache and power status machine
//   - status: HTTP status, liveness and metrics endpoints
//
// Key Features
//
//   - Change Detection:
//     The outage list is only downloaded when the feed's last update
//     timestamp is strictly newer than the one already seen.
//
//   - Edge Triggering:
//     A message is sent only when the ONLINE or OFFLINE verdict changes,
//     never on repeated observations of the same status.
//
//   - Fault Isolation:
//     A failed fetch or notification is logged and counted; the next cycle
//     runs on schedule with whatever data is cached.
//
// Example Usage
//
//	area, _ := models.NewMonitoredArea(-122.3507297, 47.6205405, 0.000125)
//	m := monitor.NewMonitor(area, api.NewFeedClient(cfg.Feed), sink,
//	    state.NewApplicationState(), collector, logger)
//	report := m.RunCycle(ctx)
//
// For more information about specific packages, see their respective
// documentation.
package outagewatch
