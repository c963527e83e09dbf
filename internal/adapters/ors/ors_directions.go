package ors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"zust-route-service/internal/domain"
	"zust-route-service/internal/platform/obs"
)

type directionsRequest struct {
	Coordinates [][]float64 `json:"coordinates"`
}

type directionsResponse struct {
	Features []struct {
		Properties struct {
			Summary struct {
				Distance float64 `json:"distance"`
				Duration float64 `json:"duration"`
			} `json:"summary"`
			Segments []struct {
				Distance float64 `json:"distance"`
				Duration float64 `json:"duration"`
			} `json:"segments"`
		} `json:"properties"`
	} `json:"features"`
}

// Directions fetches the GeoJSON route through coords in the given order.
func (c *Client) Directions(
	ctx context.Context,
	coords []domain.Coordinates,
	profile string,
) (_ domain.Directions, err error) {
	defer obs.Time(ctx, "ors.Directions")(&err)

	if len(coords) < 2 {
		return domain.Directions{}, &domain.DirectionsError{
			Err: fmt.Errorf("need at least 2 coordinates, got %d", len(coords)),
		}
	}

	list := make([][]float64, 0, len(coords))
	for _, co := range coords {
		list = append(list, co.CoordsToList())
	}

	endpoint := fmt.Sprintf("%s/v2/directions/%s/geojson", c.baseURL, profile)
	body, err := c.postJSON(ctx, c.session, endpoint, directionsRequest{Coordinates: list})
	if err != nil {
		var he *httpStatusError
		if errors.As(err, &he) {
			return domain.Directions{}, &domain.DirectionsError{StatusCode: he.Code, Body: he.Body}
		}
		return domain.Directions{}, &domain.DirectionsError{Err: err}
	}

	var dr directionsResponse
	if err := json.Unmarshal(body, &dr); err != nil {
		return domain.Directions{}, &domain.DirectionsError{Err: fmt.Errorf("decode directions response: %w", err)}
	}

	if len(dr.Features) == 0 {
		return domain.Directions{}, &domain.DirectionsError{Err: errors.New("directions response has no features")}
	}

	geometry, err := compact(body)
	if err != nil {
		return domain.Directions{}, &domain.DirectionsError{Err: fmt.Errorf("compact directions response: %w", err)}
	}

	props := dr.Features[0].Properties
	out := domain.Directions{
		Geometry:        geometry,
		DistanceMeters:  props.Summary.Distance,
		DurationSeconds: props.Summary.Duration,
		Segments:        make([]domain.DirectionsSegment, 0, len(props.Segments)),
	}
	for _, s := range props.Segments {
		out.Segments = append(out.Segments, domain.DirectionsSegment{
			DistanceMeters:  s.Distance,
			DurationSeconds: s.Duration,
		})
	}

	return out, nil
}
