package dto

import "encoding/json"

type GenerateRouteRequest struct {
	Profile string `json:"profile"`
}

type StopResponse struct {
	Position         int      `json:"position,omitempty"`
	Name             string   `json:"name"`
	SubscriptionType string   `json:"abo_type"`
	PostalCode       string   `json:"plz"`
	Locality         string   `json:"ort"`
	Street           string   `json:"strasse"`
	HouseNumber      string   `json:"hausnummer"`
	Lat              *float64 `json:"lat"`
	Lon              *float64 `json:"lon"`
}

type SegmentResponse struct {
	DistanceKm  float64 `json:"distance_km"`
	DurationMin float64 `json:"duration_min"`
}

type StatsResponse struct {
	TotalDistanceKm  float64           `json:"total_km"`
	TotalDurationMin float64           `json:"total_min"`
	Segments         []SegmentResponse `json:"segments"`
}

type MetricResponse struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type MarkerResponse struct {
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Label string  `json:"label"`
}

type MapResponse struct {
	Geometry json.RawMessage  `json:"geometry"`
	Markers  []MarkerResponse `json:"markers"`
}

type RouteResponse struct {
	ZoneID       string           `json:"zone"`
	Profile      string           `json:"profile"`
	OrderedRoute []StopResponse   `json:"ordered_route"`
	Stats        StatsResponse    `json:"stats"`
	Labor        []MetricResponse `json:"labor"`
	Map          MapResponse      `json:"map"`
}

type DeliveriesResponse struct {
	ZoneID   string         `json:"zone"`
	Geocoded int            `json:"geocoded"`
	Stops    []StopResponse `json:"stops"`
}

type ProfilesResponse struct {
	Default  string   `json:"default"`
	Profiles []string `json:"profiles"`
}
