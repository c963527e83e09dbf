package services

import (
	"context"
	"encoding/json"
	"fmt"
	"zust-route-service/internal/domain"
	"zust-route-service/internal/ports"
)

// ComputeStats fetches directions for the ordered route and converts the totals
// and per-leg metrics to kilometers and minutes. The returned geometry is the
// untouched directions document for map rendering.
//
// Fewer than two geocoded stops is not an error: the result is zero stats
// with an empty segment list and no geometry.
func ComputeStats(
	ctx context.Context,
	provider ports.DirectionsProvider,
	route domain.OrderedRoute,
	profile string,
) (domain.RouteStats, json.RawMessage, error) {
	coords := route.Coordinates()
	if len(coords) < 2 {
		return domain.RouteStats{Segments: []domain.Segment{}}, nil, nil
	}

	d, err := provider.Directions(ctx, coords, profile)
	if err != nil {
		return domain.RouteStats{}, nil, fmt.Errorf("compute stats: %w", err)
	}

	if len(d.Segments) != len(coords)-1 {
		return domain.RouteStats{}, nil, &domain.DirectionsError{
			Err: fmt.Errorf("got %d segments for %d coordinates", len(d.Segments), len(coords)),
		}
	}

	stats := domain.RouteStats{
		TotalDistanceKm:  d.DistanceMeters / 1000.0,
		TotalDurationMin: d.DurationSeconds / 60.0,
		Segments:         make([]domain.Segment, 0, len(d.Segments)),
	}
	for _, s := range d.Segments {
		stats.Segments = append(stats.Segments, domain.Segment{
			DistanceKm:  s.DistanceMeters / 1000.0,
			DurationMin: s.DurationSeconds / 60.0,
		})
	}

	return stats, d.Geometry, nil
}
