package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidArea is returned when a monitored area cannot be constructed
var ErrInvalidArea = errors.New("invalid monitored area")

// Coordinate is a WGS84 position in degrees
type Coordinate struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// MonitoredArea is the location being watched: a center point and the
// half-width of the square drawn around it.
type MonitoredArea struct {
	Center Coordinate `json:"center"`
	Radius float64    `json:"radius"`
}

// NewMonitoredArea validates and builds a MonitoredArea.
func NewMonitoredArea(longitude, latitude, radius float64) (MonitoredArea, error) {
	for _, v := range []float64{longitude, latitude, radius} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return MonitoredArea{}, fmt.Errorf("%w: non-finite value", ErrInvalidArea)
		}
	}
	if radius <= 0 {
		return MonitoredArea{}, fmt.Errorf("%w: radius must be positive, got %v", ErrInvalidArea, radius)
	}
	if longitude < -180 || longitude > 180 {
		return MonitoredArea{}, fmt.Errorf("%w: longitude %v out of range", ErrInvalidArea, longitude)
	}
	if latitude < -90 || latitude > 90 {
		return MonitoredArea{}, fmt.Errorf("%w: latitude %v out of range", ErrInvalidArea, latitude)
	}

	return MonitoredArea{
		Center: Coordinate{Longitude: longitude, Latitude: latitude},
		Radius: radius,
	}, nil
}

// OutageRecord represents one outage reported by the feed
type OutageRecord struct {
	ID             int           `json:"id"`
	Type           *string       `json:"type"`
	PeopleAffected *int          `json:"numPeople,omitempty"`
	Status         string        `json:"status"`
	Cause          *string       `json:"cause,omitempty"`
	Polygons       OutagePolygon `json:"polygons"`
}

// OutagePolygon is the boundary of an outage in the feed's ring format.
// Only the first ring is used as the outage outline.
type OutagePolygon struct {
	SpatialReference *SpatialReference `json:"spatialReference,omitempty"`
	Rings            [][][]float64     `json:"rings"`
}

// SpatialReference identifies the coordinate system of the rings
type SpatialReference struct {
	LatestWKID int `json:"latestWkid"`
	WKID       int `json:"wkid"`
}

// Clone returns a deep copy of the record.
func (o OutageRecord) Clone() OutageRecord {
	c := o
	if o.Type != nil {
		v := *o.Type
		c.Type = &v
	}
	if o.PeopleAffected != nil {
		v := *o.PeopleAffected
		c.PeopleAffected = &v
	}
	if o.Cause != nil {
		v := *o.Cause
		c.Cause = &v
	}
	if o.Polygons.SpatialReference != nil {
		v := *o.Polygons.SpatialReference
		c.Polygons.SpatialReference = &v
	}
	if o.Polygons.Rings != nil {
		c.Polygons.Rings = make([][][]float64, len(o.Polygons.Rings))
		for i, ring := range o.Polygons.Rings {
			if ring == nil {
				continue
			}
			c.Polygons.Rings[i] = make([][]float64, len(ring))
			for j, pair := range ring {
				c.Polygons.Rings[i][j] = append([]float64(nil), pair...)
			}
		}
	}
	return c
}

// StatsResponse represents the feed's statistics endpoint
type StatsResponse struct {
	LastUpdatedTime FeedTimestamp `json:"lastUpdatedTime"`
}

// FeedTimestamp holds the raw lastUpdatedTime value. The feed sends it as a
// string, but a bare JSON number is accepted too.
type FeedTimestamp string

func (t *FeedTimestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = FeedTimestamp(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("lastUpdatedTime: %w", err)
	}
	*t = FeedTimestamp(n.String())
	return nil
}

// Int64 parses the timestamp as a non-negative UNIX time.
func (t FeedTimestamp) Int64() (int64, error) {
	raw := strings.TrimSpace(string(t))
	if raw == "" {
		return 0, errors.New("empty timestamp")
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, fmt.Errorf("negative timestamp %d", v)
	}
	return v, nil
}
