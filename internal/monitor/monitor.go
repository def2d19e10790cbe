//go:generate go run github.com/golang/mock/mockgen -destination=./mocks/monitor.go -package=mocks . OutageSource,Notifier

// Package monitor runs the poll cycle that turns outage feed samples into
// edge-triggered power status notifications.
//
// A cycle runs these stages in order, each isolated from the others:
//  1. Fetch the feed's last update timestamp.
//  2. If the timestamp is newer than the stored marker, fetch the outage
//     list and replace the cached copy.
//  3. Check the monitored area against a snapshot of the cached outages.
//  4. Feed the verdict to the status machine and, on a status change,
//     dispatch the notification.
//
// No failure aborts a cycle. A failed timestamp or outage fetch leaves the
// cached outages untouched and the verdict is computed from them anyway. A
// failed dispatch is logged but the status change stays committed.
package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tejusbharadwaj/outagewatch/internal/geo"
	"github.com/tejusbharadwaj/outagewatch/internal/metrics"
	"github.com/tejusbharadwaj/outagewatch/internal/models"
	"github.com/tejusbharadwaj/outagewatch/internal/state"
)

// OutageSource is the outage feed.
type OutageSource interface {
	FetchLastUpdate(ctx context.Context) (int64, error)
	FetchOutages(ctx context.Context) ([]models.OutageRecord, error)
}

// Notifier delivers a status change message to the single configured
// recipient.
type Notifier interface {
	Send(ctx context.Context, message string) error
}

// HealthReporter is told after every cycle whether the feed could be reached.
type HealthReporter interface {
	SetFeedHealthy(healthy bool)
}

// CycleReport describes what one poll cycle did.
type CycleReport struct {
	ID           string
	TimestampErr error
	Refreshed    bool
	RefreshErr   error
	OutageCount  int
	Online       bool
	Notification *state.NotificationIntent
	NotifyErr    error
	Duration     time.Duration
}

// Monitor owns the poll cycle for one monitored area.
type Monitor struct {
	area     models.MonitoredArea
	source   OutageSource
	notifier Notifier
	state    *state.ApplicationState
	metrics  *metrics.Collector
	health   HealthReporter
	logger   *logrus.Logger
}

// Option customizes a Monitor.
type Option func(*Monitor)

// WithHealthReporter registers a reporter for feed reachability.
func WithHealthReporter(h HealthReporter) Option {
	return func(m *Monitor) { m.health = h }
}

// NewMonitor wires a monitor. All arguments are required.
func NewMonitor(
	area models.MonitoredArea,
	source OutageSource,
	notifier Notifier,
	appState *state.ApplicationState,
	collector *metrics.Collector,
	logger *logrus.Logger,
	opts ...Option,
) *Monitor {
	m := &Monitor{
		area:     area,
		source:   source,
		notifier: notifier,
		state:    appState,
		metrics:  collector,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns the state the monitor mutates.
func (m *Monitor) State() *state.ApplicationState {
	return m.state
}

// Area returns the monitored area.
func (m *Monitor) Area() models.MonitoredArea {
	return m.area
}

// RunCycle executes one poll cycle. It never panics on a stage failure and
// never returns an error; failures are logged and reported in the result.
func (m *Monitor) RunCycle(ctx context.Context) CycleReport {
	start := time.Now()
	report := CycleReport{ID: uuid.NewString()}
	log := m.logger.WithField("cycle_id", report.ID)

	log.Debug("Checking for updates...")
	newData := false
	ts, err := m.source.FetchLastUpdate(ctx)
	if err != nil {
		report.TimestampErr = err
		m.metrics.Failures.WithLabelValues(metrics.StageTimestamp).Inc()
		log.WithError(err).WithField("stage", metrics.StageTimestamp).Error("Timestamp update has failed")
	} else {
		newData = m.state.Tracker.ObserveTimestamp(ts)
		m.metrics.LastUpdate.Set(float64(m.state.Tracker.Last()))
		log.WithFields(logrus.Fields{
			"timestamp": ts,
			"new_data":  newData,
		}).Debug("Feed timestamp checked")
	}

	if newData {
		log.Debug("Fetching new outage data...")
		outages, err := m.source.FetchOutages(ctx)
		if err != nil {
			report.RefreshErr = err
			m.metrics.Failures.WithLabelValues(metrics.StageOutages).Inc()
			log.WithError(err).WithField("stage", metrics.StageOutages).Error("Outage data request failed")
		} else {
			m.state.Outages.ReplaceAll(outages)
			report.Refreshed = true
			m.metrics.Refreshes.Inc()
		}
	}

	if m.health != nil {
		m.health.SetFeedHealthy(report.TimestampErr == nil && report.RefreshErr == nil)
	}

	snapshot := m.state.Outages.Snapshot()
	report.OutageCount = len(snapshot)
	m.metrics.Outages.Set(float64(len(snapshot)))
	log.WithField("outages", len(snapshot)).Debug(outageCountMessage(len(snapshot)))

	report.Online = !geo.IsLocationInAnyOutage(m.area, snapshot)
	report.Notification = m.state.Status.Transition(report.Online)
	m.metrics.SetOnline(report.Online)

	if intent := report.Notification; intent != nil {
		report.NotifyErr = m.dispatch(ctx, log, intent)
	} else if report.Online {
		log.Debug("No outages present at the location")
	} else {
		log.Debug("Power remains DOWN at the location")
	}

	report.Duration = time.Since(start)
	m.metrics.ObserveCycle(report.Duration)
	return report
}

// dispatch sends the intent's message. The status machine has already
// committed the change; a delivery failure is only logged.
func (m *Monitor) dispatch(ctx context.Context, log *logrus.Entry, intent *state.NotificationIntent) error {
	log = log.WithFields(logrus.Fields{
		"status": intent.Status.String(),
		"kind":   string(intent.Kind),
	})

	if err := m.notifier.Send(ctx, intent.Message); err != nil {
		m.metrics.Failures.WithLabelValues(metrics.StageNotify).Inc()
		m.metrics.Notifications.WithLabelValues(string(intent.Kind), "failed").Inc()
		log.WithError(err).Error("Failed to deliver status notification")
		return err
	}

	m.metrics.Notifications.WithLabelValues(string(intent.Kind), "sent").Inc()
	log.Warn(intent.Message)
	return nil
}

func outageCountMessage(n int) string {
	if n == 1 {
		return "1 reported outage"
	}
	return fmt.Sprintf("%d reported outages", n)
}
