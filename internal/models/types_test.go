package models

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMonitoredArea(t *testing.T) {
	tests := []struct {
		name      string
		lon, lat  float64
		radius    float64
		wantError bool
	}{
		{"space needle", -122.3507297, 47.6205405, 0.000125, false},
		{"origin", 0, 0, 1, false},
		{"zero radius", 0, 0, 0, true},
		{"negative radius", 0, 0, -0.5, true},
		{"nan longitude", math.NaN(), 0, 1, true},
		{"infinite radius", 0, 0, math.Inf(1), true},
		{"longitude out of range", 181, 0, 1, true},
		{"latitude out of range", 0, -91, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			area, err := NewMonitoredArea(tt.lon, tt.lat, tt.radius)
			if tt.wantError {
				assert.ErrorIs(t, err, ErrInvalidArea)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.lon, area.Center.Longitude)
			assert.Equal(t, tt.lat, area.Center.Latitude)
			assert.Equal(t, tt.radius, area.Radius)
		})
	}
}

func TestFeedTimestamp(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		want      int64
		wantError bool
	}{
		{"string", `{"lastUpdatedTime":"1700000000"}`, 1700000000, false},
		{"number", `{"lastUpdatedTime":1700000123}`, 1700000123, false},
		{"padded string", `{"lastUpdatedTime":" 42 "}`, 42, false},
		{"null", `{"lastUpdatedTime":null}`, 0, true},
		{"missing", `{}`, 0, true},
		{"not a number", `{"lastUpdatedTime":"yesterday"}`, 0, true},
		{"negative", `{"lastUpdatedTime":"-5"}`, 0, true},
		{"fraction", `{"lastUpdatedTime":"12.5"}`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stats StatsResponse
			require.NoError(t, json.Unmarshal([]byte(tt.body), &stats))

			got, err := stats.LastUpdatedTime.Int64()
			if tt.wantError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFeedTimestampRejectsObject(t *testing.T) {
	var stats StatsResponse
	err := json.Unmarshal([]byte(`{"lastUpdatedTime":{"at":1}}`), &stats)
	assert.Error(t, err)
}

func TestOutageRecordDecode(t *testing.T) {
	body := `{
		"id": 3017,
		"type": "Unplanned",
		"numPeople": 12,
		"status": "Crew Dispatched",
		"cause": null,
		"polygons": {
			"spatialReference": {"latestWkid": 4326, "wkid": 4326},
			"rings": [[[-122.35, 47.62], [-122.34, 47.62], [-122.34, 47.63], [-122.35, 47.62]]]
		}
	}`

	var rec OutageRecord
	require.NoError(t, json.Unmarshal([]byte(body), &rec))

	assert.Equal(t, 3017, rec.ID)
	require.NotNil(t, rec.Type)
	assert.Equal(t, "Unplanned", *rec.Type)
	require.NotNil(t, rec.PeopleAffected)
	assert.Equal(t, 12, *rec.PeopleAffected)
	assert.Nil(t, rec.Cause)
	require.NotNil(t, rec.Polygons.SpatialReference)
	assert.Equal(t, 4326, rec.Polygons.SpatialReference.WKID)
	require.Len(t, rec.Polygons.Rings, 1)
	assert.Len(t, rec.Polygons.Rings[0], 4)
}

func TestOutageRecordClone(t *testing.T) {
	kind := "Planned"
	people := 7
	orig := OutageRecord{
		ID:             1,
		Type:           &kind,
		PeopleAffected: &people,
		Polygons: OutagePolygon{
			SpatialReference: &SpatialReference{WKID: 4326},
			Rings:            [][][]float64{{{1, 2}, {3, 4}}, nil},
		},
	}

	c := orig.Clone()
	*c.Type = "Unplanned"
	*c.PeopleAffected = 99
	c.Polygons.SpatialReference.WKID = 3857
	c.Polygons.Rings[0][0][0] = 100

	assert.Equal(t, "Planned", *orig.Type)
	assert.Equal(t, 7, *orig.PeopleAffected)
	assert.Equal(t, 4326, orig.Polygons.SpatialReference.WKID)
	assert.Equal(t, 1.0, orig.Polygons.Rings[0][0][0])
	assert.Nil(t, c.Polygons.Rings[1])
	assert.Nil(t, c.Cause)
}
