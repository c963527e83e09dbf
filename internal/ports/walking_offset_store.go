package ports

import (
	"context"
	"zust-route-service/internal/domain"
)

// Port: walking offset of the last generated route, kept beside the route record.
type WalkingOffsetStore interface {
	// Store meters for the record r that was just saved for the zone.
	SaveWalkingOffset(ctx context.Context, zoneID string, r domain.SavedRoute, meters float64) error
	// Return the offset saved for r; found is false when none was saved or it
	// belongs to another record.
	WalkingOffset(ctx context.Context, zoneID string, r domain.SavedRoute) (meters float64, found bool, err error)
}
