package services

import (
	"fmt"
	"zust-route-service/internal/domain"
)

// BuildStopSet turns the raw zone stop list (depot first) into the depot coordinate
// and the deduplicated job list for the optimizer.
//
// Stops without both coordinates are skipped, as is any stop on the depot
// coordinate and any stop whose exact (lon, lat) pair was already accepted.
// Accepted stops receive dense job ids 1..N in encounter order; the id is written
// back into stops[i].JobID so the optimizer result can be mapped to stops later.
func BuildStopSet(stops []domain.Stop) (domain.StopSet, error) {
	geocoded := 0
	for _, s := range stops {
		if _, ok := s.Coordinates(); ok {
			geocoded++
		}
	}
	if geocoded < 2 {
		return domain.StopSet{}, fmt.Errorf(
			"build stop set: %w: %d of %d stops geocoded",
			domain.ErrInsufficientStops, geocoded, len(stops),
		)
	}

	depot, ok := stops[0].Coordinates()
	if !ok {
		return domain.StopSet{}, fmt.Errorf("build stop set: %w: depot has no coordinates", domain.ErrInsufficientStops)
	}

	for i := range stops {
		stops[i].JobID = 0
	}

	seen := make(map[domain.Coordinates]struct{}, len(stops))
	jobs := make([]domain.Job, 0, len(stops)-1)
	nextID := 1

	for i := range stops {
		c, ok := stops[i].Coordinates()
		if !ok {
			continue
		}

		// Anything on the depot coordinate is the depot, whatever its index.
		if c == depot {
			continue
		}

		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}

		jobs = append(jobs, domain.Job{ID: nextID, Location: c})
		stops[i].JobID = nextID
		nextID++
	}

	if len(jobs) == 0 {
		return domain.StopSet{}, fmt.Errorf("build stop set: %w: every stop is on the depot coordinate", domain.ErrInsufficientStops)
	}

	return domain.StopSet{Depot: depot, Jobs: jobs}, nil
}
