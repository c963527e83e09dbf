package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"
	"zust-route-service/internal/api/dto"
	"zust-route-service/internal/domain"
	"zust-route-service/internal/export"
	"zust-route-service/internal/services"

	"github.com/go-chi/chi/v5"
)

// RouteService is the slice of services.RouteService the handlers use.
type RouteService interface {
	Generate(ctx context.Context, zoneID, profile string) (*services.RouteResult, error)
	ViewSaved(ctx context.Context, zoneID string) (*services.RouteResult, error)
	Deliveries(ctx context.Context, zoneID string) ([]domain.Stop, error)
}

// RawRouteLoader returns the persisted route document of a zone unchanged.
type RawRouteLoader interface {
	LoadRaw(ctx context.Context, zoneID string) ([]byte, error)
}

// RouteHandler exposes zone deliveries, route generation, saved routes and exports.
type RouteHandler struct {
	Routes RouteService
	Raw    RawRouteLoader
	Now    func() time.Time
}

func (h *RouteHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// Deliveries lists the zone's stops, depot first.
func (h *RouteHandler) Deliveries(w http.ResponseWriter, r *http.Request) {
	zone := chi.URLParam(r, "zone")

	stops, err := h.Routes.Deliveries(r.Context(), zone)
	if err != nil {
		writeServiceError(w, r, "deliveries", err)
		return
	}

	res := dto.DeliveriesResponse{ZoneID: zone, Stops: make([]dto.StopResponse, 0, len(stops))}
	for _, s := range stops {
		if _, ok := s.Coordinates(); ok {
			res.Geocoded++
		}
		res.Stops = append(res.Stops, stopResponse(0, s))
	}

	writeJSON(w, r, http.StatusOK, res)
}

// Generate runs the optimization pipeline for the zone and persists the result.
// The body is optional; {"profile": "..."} selects the travel mode.
func (h *RouteHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req dto.GenerateRouteRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	res, err := h.Routes.Generate(r.Context(), chi.URLParam(r, "zone"), req.Profile)
	if err != nil {
		writeServiceError(w, r, "generate route", err)
		return
	}

	writeJSON(w, r, http.StatusOK, routeResponse(res))
}

// Saved returns the last generated route of the zone without calling the routing service.
func (h *RouteHandler) Saved(w http.ResponseWriter, r *http.Request) {
	res, err := h.Routes.ViewSaved(r.Context(), chi.URLParam(r, "zone"))
	if err != nil {
		writeServiceError(w, r, "view saved route", err)
		return
	}

	writeJSON(w, r, http.StatusOK, routeResponse(res))
}

// Map returns geometry and markers of the saved route for a map renderer.
func (h *RouteHandler) Map(w http.ResponseWriter, r *http.Request) {
	res, err := h.Routes.ViewSaved(r.Context(), chi.URLParam(r, "zone"))
	if err != nil {
		writeServiceError(w, r, "route map", err)
		return
	}

	writeJSON(w, r, http.StatusOK, mapResponse(res.Map))
}

// ExportJSON serves the persisted record byte for byte.
func (h *RouteHandler) ExportJSON(w http.ResponseWriter, r *http.Request) {
	zone := chi.URLParam(r, "zone")

	id, err := domain.ParseZoneID(zone)
	if err != nil {
		writeServiceError(w, r, "export json", err)
		return
	}

	b, err := h.Raw.LoadRaw(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, "export json", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+id+`.json"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

// StatsCSV exports the labor table of the saved route.
func (h *RouteHandler) StatsCSV(w http.ResponseWriter, r *http.Request) {
	res, err := h.Routes.ViewSaved(r.Context(), chi.URLParam(r, "zone"))
	if err != nil {
		writeServiceError(w, r, "export stats", err)
		return
	}

	writeCSV(w, export.ExportFilename(res.ZoneID, "stats", h.now()), export.FormatStatsCSV(res.Labor))
}

// OrderCSV exports the visiting order of the saved route.
func (h *RouteHandler) OrderCSV(w http.ResponseWriter, r *http.Request) {
	res, err := h.Routes.ViewSaved(r.Context(), chi.URLParam(r, "zone"))
	if err != nil {
		writeServiceError(w, r, "export order", err)
		return
	}

	writeCSV(w, export.ExportFilename(res.ZoneID, "order", h.now()), export.FormatOrderCSV(res.Saved.OrderedRoute))
}

func writeCSV(w http.ResponseWriter, filename, body string) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, body)
}

func stopResponse(pos int, s domain.Stop) dto.StopResponse {
	return dto.StopResponse{
		Position:         pos,
		Name:             s.Name,
		SubscriptionType: s.SubscriptionType,
		PostalCode:       s.PostalCode,
		Locality:         s.Locality,
		Street:           s.Street,
		HouseNumber:      s.HouseNumber,
		Lat:              s.Lat,
		Lon:              s.Lon,
	}
}

func mapResponse(m domain.MapView) dto.MapResponse {
	res := dto.MapResponse{Geometry: m.Geometry, Markers: make([]dto.MarkerResponse, 0, len(m.Markers))}
	for _, mk := range m.Markers {
		res.Markers = append(res.Markers, dto.MarkerResponse{Lat: mk.Lat, Lon: mk.Lon, Label: mk.Label})
	}
	return res
}

func routeResponse(res *services.RouteResult) dto.RouteResponse {
	saved := res.Saved

	out := dto.RouteResponse{
		ZoneID:       res.ZoneID,
		Profile:      saved.Profile,
		OrderedRoute: make([]dto.StopResponse, 0, len(saved.OrderedRoute)),
		Stats: dto.StatsResponse{
			TotalDistanceKm:  saved.Stats.TotalDistanceKm,
			TotalDurationMin: saved.Stats.TotalDurationMin,
			Segments:         make([]dto.SegmentResponse, 0, len(saved.Stats.Segments)),
		},
		Labor: make([]dto.MetricResponse, 0, len(res.Labor)),
		Map:   mapResponse(res.Map),
	}

	for i, s := range saved.OrderedRoute {
		out.OrderedRoute = append(out.OrderedRoute, stopResponse(i+1, s))
	}
	for _, s := range saved.Stats.Segments {
		out.Stats.Segments = append(out.Stats.Segments, dto.SegmentResponse{DistanceKm: s.DistanceKm, DurationMin: s.DurationMin})
	}
	for _, m := range res.Labor {
		out.Labor = append(out.Labor, dto.MetricResponse{Label: m.Label, Value: m.Value})
	}

	return out
}
