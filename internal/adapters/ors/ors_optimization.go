package ors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"zust-route-service/internal/domain"
	"zust-route-service/internal/platform/obs"
)

type optimizationJob struct {
	ID       int       `json:"id"`
	Location []float64 `json:"location"`
	Service  int       `json:"service"`
}

type optimizationVehicle struct {
	ID          int       `json:"id"`
	Start       []float64 `json:"start"`
	End         []float64 `json:"end"`
	MaxDuration int       `json:"max_duration"`
	Profile     string    `json:"profile"`
}

type optimizationRequest struct {
	Jobs     []optimizationJob     `json:"jobs"`
	Vehicles []optimizationVehicle `json:"vehicles"`
	Options  map[string]any        `json:"options"`
}

// Optimize submits the job list for a single vehicle that starts and ends at the
// depot and returns the optimizer response document unchanged (compacted).
func (c *Client) Optimize(
	ctx context.Context,
	set domain.StopSet,
	profile string,
) (_ json.RawMessage, err error) {
	defer obs.Time(ctx, "ors.Optimize")(&err)

	if len(set.Jobs) == 0 {
		return nil, fmt.Errorf("optimize: %w", domain.ErrInsufficientStops)
	}

	jobs := make([]optimizationJob, 0, len(set.Jobs))
	for _, j := range set.Jobs {
		jobs = append(jobs, optimizationJob{
			ID:       j.ID,
			Location: j.Location.CoordsToList(),
			Service:  0,
		})
	}

	depot := set.Depot.CoordsToList()
	payload := optimizationRequest{
		Jobs: jobs,
		Vehicles: []optimizationVehicle{{
			ID:          1,
			Start:       depot,
			End:         depot,
			MaxDuration: c.maxDurationSeconds,
			Profile:     profile,
		}},
		// g: include encoded route geometry in the response.
		Options: map[string]any{"g": true},
	}

	body, err := c.postJSON(ctx, c.session, c.baseURL+"/optimization", payload)
	if err != nil {
		var he *httpStatusError
		if errors.As(err, &he) {
			return nil, &domain.OptimizationError{StatusCode: he.Code, Body: he.Body}
		}
		return nil, &domain.OptimizationError{Err: err}
	}

	raw, err := compact(body)
	if err != nil {
		return nil, &domain.OptimizationError{Err: fmt.Errorf("decode optimization response: %w", err)}
	}

	return raw, nil
}
