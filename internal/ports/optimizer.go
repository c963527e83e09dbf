package ports

import (
	"context"
	"encoding/json"
	"zust-route-service/internal/domain"
)

// Contract for the external single-vehicle route optimizer.
type Optimizer interface {
	// Submit the job list with the depot as start and end; returns the raw response document.
	Optimize(ctx context.Context, set domain.StopSet, profile string) (json.RawMessage, error)
}
