package ports

import (
	"context"
	"zust-route-service/internal/domain"
)

// Port: durable storage of the last generated route per zone.
type RouteStore interface {
	// Replace the record for the zone as a whole.
	Save(ctx context.Context, zoneID string, route domain.SavedRoute) error
	// Return domain.ErrNotFound when nothing was saved, *domain.CorruptRecordError when unreadable.
	Load(ctx context.Context, zoneID string) (domain.SavedRoute, error)
	// Return the record exactly as stored.
	LoadRaw(ctx context.Context, zoneID string) ([]byte, error)
}
