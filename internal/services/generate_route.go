package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"zust-route-service/internal/domain"
	"zust-route-service/internal/platform/obs"
	"zust-route-service/internal/ports"

	log "github.com/sirupsen/logrus"
)

// RouteResult is everything the presentation layer needs for one zone:
// the persisted snapshot, the labor table and the map view.
type RouteResult struct {
	ZoneID string
	Saved  domain.SavedRoute
	Labor  []domain.Metric
	Map    domain.MapView
	// Raw zone stops with coordinates, used for markers on freshly generated routes.
	Deliveries []domain.Stop
}

// RouteService runs the route generation pipeline against injected collaborators.
// Offsets is optional; without it saved routes are projected with zero walking.
type RouteService struct {
	Zones           ports.ZoneRepository
	Optimizer       ports.Optimizer
	Directions      ports.DirectionsProvider
	Snapper         ports.RoadSnapper
	Store           ports.RouteStore
	Offsets         ports.WalkingOffsetStore
	Locker          ports.ZoneLocker
	SnapConcurrency int
}

// Deliveries returns the raw stop list of a zone, depot first.
func (s *RouteService) Deliveries(ctx context.Context, zoneID string) (_ []domain.Stop, err error) {
	defer obs.Time(ctx, "zones.StopsForZone")(&err)

	id, err := domain.ParseZoneID(zoneID)
	if err != nil {
		return nil, err
	}

	stops, err := s.Zones.StopsForZone(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("deliveries for zone %q: %w", id, err)
	}
	return stops, nil
}

// Generate computes and persists the optimized route for a zone.
//
// Steps run strictly in order and the record is written only after every
// step succeeded, so a failure leaves any previous record untouched.
func (s *RouteService) Generate(ctx context.Context, zoneID, profile string) (res *RouteResult, err error) {
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = outcomeLabel(err)
		}
		obs.RouteGenerations.WithLabelValues(outcome).Inc()
	}()

	id, err := domain.ParseZoneID(zoneID)
	if err != nil {
		return nil, err
	}
	profile, err = domain.ParseProfile(strings.TrimSpace(profile))
	if err != nil {
		return nil, err
	}

	if s.Locker != nil {
		release, err := s.Locker.Acquire(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("generate route %q: %w", id, err)
		}
		defer release()
	}

	logger := log.WithFields(log.Fields{"req_id": obs.RequestID(ctx), "zone": id, "profile": profile})

	stops, err := s.Deliveries(ctx, id)
	if err != nil {
		return nil, err
	}

	// The stop set builder tags stops in place; keep the caller's copy clean.
	working := make([]domain.Stop, len(stops))
	copy(working, stops)

	if len(working) == 0 {
		return nil, fmt.Errorf("generate route %q: %w: zone has no stops", id, domain.ErrInsufficientStops)
	}

	set, err := BuildStopSet(working)
	if err != nil {
		return nil, fmt.Errorf("generate route %q: %w", id, err)
	}
	logger.WithFields(log.Fields{"stops": len(working), "jobs": len(set.Jobs)}).Info("submitting jobs to optimizer")

	optimized, err := s.Optimizer.Optimize(ctx, set, profile)
	if err != nil {
		return nil, fmt.Errorf("generate route %q: %w", id, err)
	}

	ordered, err := ReconstructOrder(optimized, working)
	if err != nil {
		return nil, fmt.Errorf("generate route %q: %w", id, err)
	}

	stats, geometry, err := ComputeStats(ctx, s.Directions, ordered, profile)
	if err != nil {
		return nil, fmt.Errorf("generate route %q: %w", id, err)
	}

	offset, err := WalkingOffset(ctx, s.Snapper, working, s.SnapConcurrency)
	if err != nil {
		return nil, fmt.Errorf("generate route %q: %w", id, err)
	}

	saved := domain.SavedRoute{
		Profile:      profile,
		Optimized:    optimized,
		OrderedRoute: ordered,
		RouteGeoJSON: geometry,
		Stats:        stats,
	}

	if err := s.Store.Save(ctx, id, saved); err != nil {
		return nil, fmt.Errorf("generate route %q: %w", id, err)
	}

	// The route record is already committed; a missing offset only
	// degrades the labor table of later views.
	if s.Offsets != nil {
		if err := s.Offsets.SaveWalkingOffset(ctx, id, saved, offset); err != nil {
			logger.WithError(err).Warn("walking offset not saved")
		}
	}

	logger.WithFields(log.Fields{
		"total_km":  stats.TotalDistanceKm,
		"total_min": stats.TotalDurationMin,
		"walk_m":    offset,
	}).Info("route generated")

	return &RouteResult{
		ZoneID:     id,
		Saved:      saved,
		Labor:      ProjectLabor(stats.TotalDistanceKm, stats.TotalDurationMin, offset),
		Map:        MapViewFor(geometry, stops),
		Deliveries: stops,
	}, nil
}

// ViewSaved restores the last generated route of a zone without any external call.
// Labor uses the walking offset saved with the route, or zero walking when
// none matches the record.
func (s *RouteService) ViewSaved(ctx context.Context, zoneID string) (_ *RouteResult, err error) {
	defer obs.Time(ctx, "routes.Load")(&err)

	id, err := domain.ParseZoneID(zoneID)
	if err != nil {
		return nil, err
	}

	saved, err := s.Store.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("view saved route %q: %w", id, err)
	}

	var offset float64
	if s.Offsets != nil {
		m, found, err := s.Offsets.WalkingOffset(ctx, id, saved)
		switch {
		case err != nil:
			log.WithFields(log.Fields{"req_id": obs.RequestID(ctx), "zone": id}).
				WithError(err).Warn("walking offset unavailable")
		case found:
			offset = m
		}
	}

	return &RouteResult{
		ZoneID: id,
		Saved:  saved,
		Labor:  ProjectLabor(saved.Stats.TotalDistanceKm, saved.Stats.TotalDurationMin, offset),
		Map:    MapViewFor(saved.RouteGeoJSON, saved.OrderedRoute),
	}, nil
}

// MapViewFor builds renderer markers for every geocoded stop. Repeated
// coordinates (the depot at both route ends) get a single marker.
func MapViewFor(geometry json.RawMessage, stops []domain.Stop) domain.MapView {
	markers := make([]domain.Marker, 0, len(stops))
	seen := make(map[domain.Coordinates]struct{}, len(stops))

	for _, st := range stops {
		c, ok := st.Coordinates()
		if !ok {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}

		markers = append(markers, domain.Marker{Lat: c.Lat, Lon: c.Lon, Label: markerLabel(st)})
	}

	return domain.MapView{Geometry: geometry, Markers: markers}
}

func markerLabel(s domain.Stop) string {
	var b strings.Builder
	b.WriteString(s.Name)
	if s.SubscriptionType != "" {
		b.WriteString(" (" + s.SubscriptionType + ")")
	}
	addr := strings.TrimSpace(s.Street + " " + s.HouseNumber)
	if addr != "" {
		b.WriteString(", " + addr)
	}
	place := strings.TrimSpace(s.PostalCode + " " + s.Locality)
	if place != "" {
		b.WriteString(", " + place)
	}
	return b.String()
}

func outcomeLabel(err error) string {
	var (
		oe *domain.OptimizationError
		de *domain.DirectionsError
		ie *domain.RouteIntegrityError
	)
	switch {
	case errors.Is(err, domain.ErrInsufficientStops):
		return "insufficient_stops"
	case errors.Is(err, domain.ErrNoRoute):
		return "no_route"
	case errors.Is(err, domain.ErrZoneBusy):
		return "busy"
	case errors.As(err, &oe):
		return "optimization_error"
	case errors.As(err, &de):
		return "directions_error"
	case errors.As(err, &ie):
		return "integrity_error"
	default:
		return "error"
	}
}
