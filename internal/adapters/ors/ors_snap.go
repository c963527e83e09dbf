package ors

import (
	"context"
	"encoding/json"
	"fmt"
	"zust-route-service/internal/domain"
	"zust-route-service/internal/platform/obs"

	log "github.com/sirupsen/logrus"
)

type snapRequest struct {
	Locations [][]float64 `json:"locations"`
	Radius    int         `json:"radius"`
}

type snapResponse struct {
	Locations []*struct {
		Location        []float64 `json:"location"`
		SnappedDistance float64   `json:"snapped_distance"`
	} `json:"locations"`
}

// Snap maps c onto the foot-walking network. ok is false when ORS reports no
// road within the snap radius. Results are cached when a SnapCache is configured.
func (c *Client) Snap(ctx context.Context, co domain.Coordinates) (_ domain.Coordinates, _ bool, err error) {
	defer obs.Time(ctx, "ors.Snap")(&err)

	if !co.Valid() {
		return domain.Coordinates{}, false, fmt.Errorf("snap: out-of-range coordinate lat=%v lon=%v", co.Lat, co.Lon)
	}

	if c.snapCache != nil {
		snapped, found, err := c.snapCache.Get(ctx, co)
		if err != nil {
			log.WithError(err).Warn("snap cache read failed")
		} else if found {
			return snapped, true, nil
		}
	}

	payload := snapRequest{
		Locations: [][]float64{co.CoordsToList()},
		Radius:    c.snapRadiusMeters,
	}

	body, err := c.postJSON(ctx, c.snapSession, c.baseURL+"/v2/snap/foot-walking", payload)
	if err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("snap request: %w", err)
	}

	var sr snapResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("decode snap response: %w", err)
	}

	if len(sr.Locations) == 0 || sr.Locations[0] == nil {
		return domain.Coordinates{}, false, nil
	}

	loc := sr.Locations[0].Location
	if len(loc) != 2 {
		return domain.Coordinates{}, false, fmt.Errorf("invalid snapped coordinate format: %v", loc)
	}

	snapped := domain.Coordinates{Lon: loc[0], Lat: loc[1]}

	if c.snapCache != nil {
		if err := c.snapCache.Put(ctx, co, snapped); err != nil {
			log.WithError(err).Warn("snap cache write failed")
		}
	}

	return snapped, true, nil
}
