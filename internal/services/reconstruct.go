package services

import (
	"encoding/json"
	"fmt"
	"slices"
	"zust-route-service/internal/domain"
)

type optimizationResult struct {
	Routes []struct {
		Vehicle int `json:"vehicle"`
		Steps   []struct {
			Type string `json:"type"`
			ID   *int   `json:"id"`
		} `json:"steps"`
	} `json:"routes"`
}

// ReconstructOrder maps the optimizer's visiting order back onto the stops that
// BuildStopSet tagged with job ids, and wraps it with the depot at both ends.
//
// Every submitted job must be visited exactly once; anything else is reported
// as *domain.RouteIntegrityError.
func ReconstructOrder(raw json.RawMessage, stops []domain.Stop) (domain.OrderedRoute, error) {
	if len(stops) == 0 {
		return nil, fmt.Errorf("reconstruct order: %w: empty stop list", domain.ErrInsufficientStops)
	}

	var res optimizationResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, &domain.OptimizationError{Err: fmt.Errorf("decode optimization result: %w", err)}
	}

	if len(res.Routes) == 0 {
		return nil, fmt.Errorf("reconstruct order: %w", domain.ErrNoRoute)
	}

	byJob := make(map[int]domain.Stop, len(stops))
	for _, s := range stops {
		if s.JobID > 0 {
			byJob[s.JobID] = s
		}
	}

	visited := make(map[int]struct{}, len(byJob))
	var integrity domain.RouteIntegrityError

	jobs := make([]domain.Stop, 0, len(byJob))
	for _, step := range res.Routes[0].Steps {
		if step.Type != "job" || step.ID == nil {
			continue
		}
		id := *step.ID

		s, ok := byJob[id]
		if !ok {
			integrity.Unknown = append(integrity.Unknown, id)
			continue
		}
		if _, dup := visited[id]; dup {
			integrity.Duplicate = append(integrity.Duplicate, id)
			continue
		}
		visited[id] = struct{}{}
		jobs = append(jobs, s)
	}

	for id := range byJob {
		if _, ok := visited[id]; !ok {
			integrity.Missing = append(integrity.Missing, id)
		}
	}
	slices.Sort(integrity.Missing)

	if len(integrity.Missing) > 0 || len(integrity.Unknown) > 0 || len(integrity.Duplicate) > 0 {
		return nil, &integrity
	}

	depot := stops[0]
	ordered := make(domain.OrderedRoute, 0, len(jobs)+2)
	ordered = append(ordered, depot)
	ordered = append(ordered, jobs...)
	ordered = append(ordered, depot)

	return ordered, nil
}
