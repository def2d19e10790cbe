// Package metrics defines the Prometheus collectors recorded by the poll cycle.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Stage labels for fetch failures.
const (
	StageTimestamp = "timestamp"
	StageOutages   = "outages"
	StageNotify    = "notify"
)

// Collector bundles the monitor's metrics.
type Collector struct {
	Cycles        prometheus.Counter
	CycleDuration prometheus.Histogram
	Failures      *prometheus.CounterVec
	Refreshes     prometheus.Counter
	Notifications *prometheus.CounterVec
	PowerOnline   prometheus.Gauge
	Outages       prometheus.Gauge
	LastUpdate    prometheus.Gauge
}

// NewCollector registers the monitor metrics against reg, defaulting to the
// global registry when nil. Collectors that are already registered are
// reused.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &Collector{
		Cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "outagewatch_poll_cycles_total",
			Help: "Number of completed poll cycles.",
		}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "outagewatch_poll_cycle_duration_seconds",
			Help:    "Wall time of a poll cycle, including feed and notification calls.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		Failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "outagewatch_stage_failures_total",
			Help: "Failures per poll cycle stage.",
		}, []string{"stage"}),
		Refreshes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "outagewatch_outage_refreshes_total",
			Help: "Number of times the cached outage list was replaced.",
		}),
		Notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "outagewatch_notifications_total",
			Help: "Status change notifications, labeled by kind and delivery result.",
		}, []string{"kind", "result"}),
		PowerOnline: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "outagewatch_power_online",
			Help: "1 when the committed status is ONLINE, 0 when OFFLINE.",
		}),
		Outages: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "outagewatch_reported_outages",
			Help: "Number of outages in the cached feed data.",
		}),
		LastUpdate: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "outagewatch_feed_last_update_timestamp",
			Help: "Newest lastUpdatedTime observed from the feed.",
		}),
	}

	var err error
	if c.Cycles, err = register(reg, c.Cycles); err != nil {
		return nil, err
	}
	if c.CycleDuration, err = register(reg, c.CycleDuration); err != nil {
		return nil, err
	}
	if c.Failures, err = register(reg, c.Failures); err != nil {
		return nil, err
	}
	if c.Refreshes, err = register(reg, c.Refreshes); err != nil {
		return nil, err
	}
	if c.Notifications, err = register(reg, c.Notifications); err != nil {
		return nil, err
	}
	if c.PowerOnline, err = register(reg, c.PowerOnline); err != nil {
		return nil, err
	}
	if c.Outages, err = register(reg, c.Outages); err != nil {
		return nil, err
	}
	if c.LastUpdate, err = register(reg, c.LastUpdate); err != nil {
		return nil, err
	}

	c.PowerOnline.Set(1)
	return c, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, collector T) (T, error) {
	if err := reg.Register(collector); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return collector, err
	}
	return collector, nil
}

// ObserveCycle records a finished cycle.
func (c *Collector) ObserveCycle(d time.Duration) {
	c.Cycles.Inc()
	c.CycleDuration.Observe(d.Seconds())
}

// SetOnline mirrors the committed power status.
func (c *Collector) SetOnline(online bool) {
	if online {
		c.PowerOnline.Set(1)
		return
	}
	c.PowerOnline.Set(0)
}
