package ports

import (
	"context"
	"zust-route-service/internal/domain"
)

// Contract for fetching route geometry and per-leg metrics for an ordered coordinate list.
type DirectionsProvider interface {
	Directions(ctx context.Context, coords []domain.Coordinates, profile string) (domain.Directions, error)
}
