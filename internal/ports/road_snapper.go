package ports

import (
	"context"
	"zust-route-service/internal/domain"
)

// Contract for mapping a coordinate onto the nearest walkable road.
type RoadSnapper interface {
	// Return the snapped coordinate; ok is false when the service found no match.
	Snap(ctx context.Context, c domain.Coordinates) (snapped domain.Coordinates, ok bool, err error)
}

// Persistent cache for snap results keyed by the input coordinate.
type SnapCache interface {
	Get(ctx context.Context, c domain.Coordinates) (snapped domain.Coordinates, found bool, err error)
	Put(ctx context.Context, c domain.Coordinates, snapped domain.Coordinates) error
}
