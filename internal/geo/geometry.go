// Package geo decides whether a monitored location falls inside any of the
// outage areas reported by the feed.
//
// The monitored location is approximated by an axis-aligned square of
// half-width Radius around its center. At the sub-100 meter scale the
// monitor targets this is adequate and avoids any projection math.
// Intersection is boundary-inclusive: an outline that only touches the
// square still counts as covering the location.
package geo

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/tejusbharadwaj/outagewatch/internal/models"
)

// BoundOf returns the square around the monitored area's center.
func BoundOf(area models.MonitoredArea) orb.Bound {
	c := area.Center
	return orb.Bound{
		Min: orb.Point{c.Longitude - area.Radius, c.Latitude - area.Radius},
		Max: orb.Point{c.Longitude + area.Radius, c.Latitude + area.Radius},
	}
}

// OutlineOf converts the first ring of an outage into an orb.Ring. Any
// further rings are ignored. Coordinate pairs with fewer than two values
// are skipped.
func OutlineOf(record models.OutageRecord) orb.Ring {
	if len(record.Polygons.Rings) == 0 {
		return orb.Ring{}
	}

	exterior := record.Polygons.Rings[0]
	ring := make(orb.Ring, 0, len(exterior))
	for _, pair := range exterior {
		if len(pair) < 2 {
			continue
		}
		ring = append(ring, orb.Point{pair[0], pair[1]})
	}
	return ring
}

// IsLocationInAnyOutage reports whether the monitored area intersects the
// outline of any outage. It stops at the first match.
func IsLocationInAnyOutage(area models.MonitoredArea, outages []models.OutageRecord) bool {
	bound := BoundOf(area)
	for _, outage := range outages {
		if OutlineIntersects(OutlineOf(outage), bound) {
			return true
		}
	}
	return false
}

// OutlineIntersects reports whether the filled ring shares at least one
// point with the bound. Rings with no area (fewer than three distinct
// vertices, or all vertices on one line) never intersect.
func OutlineIntersects(ring orb.Ring, bound orb.Bound) bool {
	if distinctVertices(ring) < 3 || signedArea(ring) == 0 {
		return false
	}
	if !ring.Bound().Intersects(bound) {
		return false
	}

	// outline partly or wholly inside the square
	for _, p := range ring {
		if bound.Contains(p) {
			return true
		}
	}

	// square wholly inside the outline
	corners := [4]orb.Point{
		bound.Min,
		{bound.Max[0], bound.Min[1]},
		bound.Max,
		{bound.Min[0], bound.Max[1]},
	}
	if planar.RingContains(ring, corners[0]) {
		return true
	}

	// edges crossing without any vertex on the other side
	for i := range ring {
		a, b := ring[i], ring[(i+1)%len(ring)]
		for j := range corners {
			if segmentsIntersect(a, b, corners[j], corners[(j+1)%len(corners)]) {
				return true
			}
		}
	}
	return false
}

func distinctVertices(ring orb.Ring) int {
	seen := make(map[orb.Point]struct{}, len(ring))
	for _, p := range ring {
		seen[p] = struct{}{}
		if len(seen) >= 3 {
			break
		}
	}
	return len(seen)
}

// signedArea is the shoelace area of the ring, closing it implicitly. It is
// zero for collinear vertices.
func signedArea(ring orb.Ring) float64 {
	var sum float64
	for i := range ring {
		a, b := ring[i], ring[(i+1)%len(ring)]
		sum += a[0]*b[1] - b[0]*a[1]
	}
	return sum / 2
}

// segmentsIntersect reports whether segments pq and rs share any point,
// including collinear overlap and touching endpoints.
func segmentsIntersect(p, q, r, s orb.Point) bool {
	o1 := orientation(p, q, r)
	o2 := orientation(p, q, s)
	o3 := orientation(r, s, p)
	o4 := orientation(r, s, q)

	if o1 != o2 && o3 != o4 {
		return true
	}

	switch {
	case o1 == 0 && onSegment(p, r, q):
		return true
	case o2 == 0 && onSegment(p, s, q):
		return true
	case o3 == 0 && onSegment(r, p, s):
		return true
	case o4 == 0 && onSegment(r, q, s):
		return true
	}
	return false
}

// orientation returns 0 for collinear points, 1 for clockwise and 2 for
// counter-clockwise.
func orientation(a, b, c orb.Point) int {
	v := (b[1]-a[1])*(c[0]-b[0]) - (b[0]-a[0])*(c[1]-b[1])
	switch {
	case v == 0:
		return 0
	case v > 0:
		return 1
	default:
		return 2
	}
}

// onSegment reports whether q lies within the bounding box of segment pr.
// Callers only use it for collinear points.
func onSegment(p, q, r orb.Point) bool {
	return q[0] <= max(p[0], r[0]) && q[0] >= min(p[0], r[0]) &&
		q[1] <= max(p[1], r[1]) && q[1] >= min(p[1], r[1])
}
