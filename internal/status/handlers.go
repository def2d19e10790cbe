// Package status serves the monitor's current state over HTTP.
package status

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tejusbharadwaj/outagewatch/internal/models"
	"github.com/tejusbharadwaj/outagewatch/internal/state"
)

// Response is the body of GET /status
type Response struct {
	Status         string               `json:"status"`
	Since          time.Time            `json:"since"`
	LastUpdate     int64                `json:"last_update"`
	Outages        int                  `json:"outages"`
	OutagesFetched *time.Time           `json:"outages_fetched,omitempty"`
	Area           models.MonitoredArea `json:"area"`
}

type Handler struct {
	state *state.ApplicationState
	area  models.MonitoredArea
}

func NewHandler(appState *state.ApplicationState, area models.MonitoredArea) *Handler {
	return &Handler{state: appState, area: area}
}

// GetStatus reports the committed power status. Each field is read through
// its own accessor, so the response never waits on an outage refresh.
func (h *Handler) GetStatus(c *gin.Context) {
	resp := Response{
		Status:     h.state.Status.Current().String(),
		Since:      h.state.Status.Since().UTC(),
		LastUpdate: h.state.Tracker.Last(),
		Outages:    h.state.Outages.Len(),
		Area:       h.area,
	}
	if fetched := h.state.Outages.UpdatedAt(); !fetched.IsZero() {
		fetched = fetched.UTC()
		resp.OutagesFetched = &fetched
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// NewRouter registers the status, health and metrics routes.
func NewRouter(h *Handler, gatherer prometheus.Gatherer) *gin.Engine {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.GET("/status", h.GetStatus)
	router.GET("/healthz", h.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	return router
}
