package domain

import "encoding/json"

// Depot-to-depot visiting order produced by the optimizer.
// The first and last element are always the depot.
type OrderedRoute []Stop

// Coordinates returns the [lon, lat] pairs of all stops that carry both components.
func (r OrderedRoute) Coordinates() []Coordinates {
	out := make([]Coordinates, 0, len(r))
	for _, s := range r {
		if c, ok := s.Coordinates(); ok {
			out = append(out, c)
		}
	}
	return out
}

// Distance and duration of one leg between two consecutive route stops.
type Segment struct {
	DistanceKm  float64 `json:"distance_km"`
	DurationMin float64 `json:"duration_min"`
}

// Aggregate driving metrics of an OrderedRoute.
// Segments are aligned by position: Segments[i] is the leg from stop i to stop i+1.
type RouteStats struct {
	TotalDistanceKm  float64   `json:"total_km"`
	TotalDurationMin float64   `json:"total_min"`
	Segments         []Segment `json:"segments"`
}

// Raw directions response reduced to what the stats step needs.
// Geometry is the full GeoJSON document, passed through untouched.
type Directions struct {
	Geometry        json.RawMessage
	DistanceMeters  float64
	DurationSeconds float64
	Segments        []DirectionsSegment
}

type DirectionsSegment struct {
	DistanceMeters  float64
	DurationSeconds float64
}

// Persisted snapshot of one successful route generation, keyed by zone id.
// Optimized and RouteGeoJSON are opaque upstream documents.
type SavedRoute struct {
	Profile      string          `json:"profile"`
	Optimized    json.RawMessage `json:"optimized"`
	OrderedRoute OrderedRoute    `json:"ordered_route"`
	RouteGeoJSON json.RawMessage `json:"route_geojson"`
	Stats        RouteStats      `json:"stats"`
}

// Human readable labor metric (label and formatted value).
type Metric struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Map marker handed to the renderer.
type Marker struct {
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Label string  `json:"label"`
}

// Everything a map renderer needs: opaque route geometry and point markers.
type MapView struct {
	Geometry json.RawMessage `json:"geometry"`
	Markers  []Marker        `json:"markers"`
}
