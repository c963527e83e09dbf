package services

import (
	"context"
	"fmt"
	"strconv"
	"zust-route-service/internal/domain"
	"zust-route-service/internal/ports"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	// Average walking speed of a carrier between vehicle and door.
	WalkingSpeedMetersPerSecond = 1.194
	// Average working days per month.
	WorkingDaysPerMonth = 26.09
)

// WalkingOffset sums, over every stop with coordinates (depot and duplicates
// included), the great-circle distance to its road-snapped position, doubled
// for the walk there and back. Points that cannot be snapped are skipped.
//
// Snap calls run concurrently, at most concurrency at a time. The only error is
// cancellation of ctx.
func WalkingOffset(
	ctx context.Context,
	snapper ports.RoadSnapper,
	stops []domain.Stop,
	concurrency int,
) (float64, error) {
	if len(stops) == 0 {
		return 0, nil
	}
	if concurrency < 1 {
		concurrency = 1
	}

	dists := make([]float64, len(stops))

	var g errgroup.Group
	g.SetLimit(concurrency)

	for i, s := range stops {
		c, ok := s.Coordinates()
		if !ok || !c.Valid() {
			continue
		}

		g.Go(func() error {
			snapped, found, err := snapper.Snap(ctx, c)
			if err != nil {
				log.WithFields(log.Fields{"lat": c.Lat, "lon": c.Lon}).WithError(err).Warn("snap to road failed")
				return nil
			}
			if !found {
				log.WithFields(log.Fields{"lat": c.Lat, "lon": c.Lon}).Debug("no road within snap radius")
				return nil
			}
			dists[i] = domain.HaversineMeters(c, snapped)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("walking offset: %w", err)
	}

	total := 0.0
	for _, d := range dists {
		total += d
	}

	return total * 2, nil
}

// ProjectLabor renders the fixed set of ten labor metrics from the driving totals
// and the walking offset (meters, already doubled).
func ProjectLabor(drivingKm, drivingMin, walkingOffsetMeters float64) []domain.Metric {
	drivingHours := roundTo(drivingMin/60, 2)
	walkingKm := walkingOffsetMeters / 1000
	walkingHours := walkingOffsetMeters / WalkingSpeedMetersPerSecond / 3600
	walkingMinutes := walkingOffsetMeters / WalkingSpeedMetersPerSecond / 60

	totalKm := drivingKm + walkingKm
	totalHours := drivingHours + walkingHours

	return []domain.Metric{
		{Label: "Driving Distance", Value: fmt.Sprintf("%.1f km", drivingKm)},
		{Label: "Driving Time", Value: fmt.Sprintf("%.1f Stunden", drivingHours)},
		{Label: "Walking Distance", Value: fmt.Sprintf("%.2f km", walkingKm)},
		{Label: "Walking time (hours)", Value: fmt.Sprintf("%.2f Stunden", walkingHours)},
		{Label: "Walking time (minutes)", Value: fmt.Sprintf("%.2f Minuten", walkingMinutes)},
		{Label: "Total Distance", Value: fmt.Sprintf("%.1f km", totalKm)},
		{Label: "Total Time", Value: fmt.Sprintf("%.1f Stunden", totalHours)},
		{Label: "Weekly (6 days)", Value: fmt.Sprintf("%.1f Stunden", totalHours*6)},
		{Label: "Weekly (5 days)", Value: fmt.Sprintf("%.1f Stunden", totalHours*5)},
		{Label: "Monthly", Value: fmt.Sprintf("%.1f Stunden", totalHours*WorkingDaysPerMonth)},
	}
}

// roundTo rounds to n decimals using the exact decimal value of v.
func roundTo(v float64, n int) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', n, 64), 64)
	if err != nil {
		return v
	}
	return r
}
