package ports

import (
	"context"
	"zust-route-service/internal/domain"
)

// Port: a boundary for resolving a Zustellbereich into its raw stop list.
type ZoneRepository interface {
	// Return all stops for the zone, depot first. An unknown zone yields an empty list.
	StopsForZone(ctx context.Context, zoneID string) ([]domain.Stop, error)
}
