// Package api is the client for the utility's public outage feed.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/tejusbharadwaj/outagewatch/internal/config"
	"github.com/tejusbharadwaj/outagewatch/internal/models"
)

var (
	ErrFeedRequest    = errors.New("error making feed request")
	ErrFeedStatus     = errors.New("error status from outage feed")
	ErrFeedDecode     = errors.New("error decoding feed response")
	ErrTimestampParse = errors.New("invalid lastUpdatedTime in feed stats")
)

// FeedClient fetches the last update timestamp and the outage list from the
// feed. Requests are paced by a token bucket so a misconfigured interval
// cannot hammer the public endpoint.
type FeedClient struct {
	outagesURL    string
	lastUpdateURL string
	client        *http.Client
	limiter       *rate.Limiter
}

// NewFeedClient builds a client from the feed section of the configuration.
func NewFeedClient(cfg config.FeedConfig) *FeedClient {
	return &FeedClient{
		outagesURL:    cfg.OutagesURL,
		lastUpdateURL: cfg.LastUpdateURL,
		client:        &http.Client{Timeout: cfg.Timeout},
		limiter:       rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
	}
}

// FetchLastUpdate returns the feed's last update time as a UNIX timestamp.
// Malformed or negative values are rejected with ErrTimestampParse.
func (f *FeedClient) FetchLastUpdate(ctx context.Context) (int64, error) {
	var stats models.StatsResponse
	if err := f.get(ctx, f.lastUpdateURL, &stats); err != nil {
		return 0, err
	}

	ts, err := stats.LastUpdatedTime.Int64()
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrTimestampParse, string(stats.LastUpdatedTime), err)
	}
	return ts, nil
}

// FetchOutages returns every outage currently reported by the feed.
func (f *FeedClient) FetchOutages(ctx context.Context) ([]models.OutageRecord, error) {
	var outages []models.OutageRecord
	if err := f.get(ctx, f.outagesURL, &outages); err != nil {
		return nil, err
	}
	if outages == nil {
		outages = []models.OutageRecord{}
	}
	return outages, nil
}

func (f *FeedClient) get(ctx context.Context, url string, out any) error {
	if err := f.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrFeedRequest, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFeedRequest, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFeedRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: got %d from %s", ErrFeedStatus, resp.StatusCode, url)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrFeedDecode, err)
	}

	return nil
}
