package ors

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
	"zust-route-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts Options) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	opts.BaseURL = server.URL
	if opts.Timeout == 0 {
		opts.Timeout = 5 * time.Second
	}
	c, err := NewClient("test-key", opts)
	require.NoError(t, err)
	return c
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient("  ", Options{})
	assert.Error(t, err)
}

func TestOptimizeBuildsSingleVehicleRequest(t *testing.T) {
	var got optimizationRequest

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/optimization", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "test-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{ "code": 0, "routes": [ {"vehicle": 1, "steps": []} ] }`)
	}, Options{MaxDurationSeconds: 7200})

	set := domain.StopSet{
		Depot: domain.Coordinates{Lon: 0, Lat: 0},
		Jobs: []domain.Job{
			{ID: 1, Location: domain.Coordinates{Lon: 1, Lat: 1}},
			{ID: 2, Location: domain.Coordinates{Lon: 2, Lat: 2}},
		},
	}

	raw, err := c.Optimize(context.Background(), set, "driving-car")
	require.NoError(t, err)

	assert.JSONEq(t, `{"code":0,"routes":[{"vehicle":1,"steps":[]}]}`, string(raw))
	assert.Equal(t, `{"code":0,"routes":[{"vehicle":1,"steps":[]}]}`, string(raw), "response is compacted")

	require.Len(t, got.Jobs, 2)
	assert.Equal(t, 1, got.Jobs[0].ID)
	assert.Equal(t, []float64{2, 2}, got.Jobs[1].Location)
	require.Len(t, got.Vehicles, 1)
	v := got.Vehicles[0]
	assert.Equal(t, []float64{0, 0}, v.Start)
	assert.Equal(t, v.Start, v.End)
	assert.Equal(t, 7200, v.MaxDuration)
	assert.Equal(t, "driving-car", v.Profile)
	assert.Equal(t, true, got.Options["g"])
}

func TestOptimizeSurfacesUpstreamStatus(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"error":"internal"}`)
	}, Options{})

	set := domain.StopSet{Jobs: []domain.Job{{ID: 1, Location: domain.Coordinates{Lon: 1, Lat: 1}}}}
	_, err := c.Optimize(context.Background(), set, "driving-car")

	var oe *domain.OptimizationError
	require.ErrorAs(t, err, &oe)
	assert.Equal(t, 500, oe.StatusCode)
	assert.Equal(t, `{"error":"internal"}`, oe.Body)
	assert.Equal(t, 1, calls, "no automatic retry")
}

func TestOptimizeTransportFailure(t *testing.T) {
	c, err := NewClient("key", Options{BaseURL: "http://127.0.0.1:1", Timeout: time.Second})
	require.NoError(t, err)

	set := domain.StopSet{Jobs: []domain.Job{{ID: 1}}}
	_, err = c.Optimize(context.Background(), set, "driving-car")

	var oe *domain.OptimizationError
	require.ErrorAs(t, err, &oe)
	assert.Equal(t, 0, oe.StatusCode)
	assert.Error(t, oe.Err)
}

const directionsBody = `{
  "type": "FeatureCollection",
  "features": [{
    "type": "Feature",
    "properties": {
      "summary": {"distance": 12500.0, "duration": 1800.0},
      "segments": [
        {"distance": 5000.0, "duration": 600.0, "steps": []},
        {"distance": 7500.0, "duration": 1200.0, "steps": []}
      ]
    },
    "geometry": {"type": "LineString", "coordinates": [[0,0],[1,1],[0,0]]}
  }]
}`

func TestDirectionsParsesSummaryAndSegments(t *testing.T) {
	var got directionsRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/directions/cycling-road/geojson", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		io.WriteString(w, directionsBody)
	}, Options{})

	coords := []domain.Coordinates{{Lon: 0, Lat: 0}, {Lon: 1, Lat: 1}, {Lon: 0, Lat: 0}}
	d, err := c.Directions(context.Background(), coords, "cycling-road")
	require.NoError(t, err)

	assert.Equal(t, [][]float64{{0, 0}, {1, 1}, {0, 0}}, got.Coordinates)
	assert.Equal(t, 12500.0, d.DistanceMeters)
	assert.Equal(t, 1800.0, d.DurationSeconds)
	require.Len(t, d.Segments, 2)
	assert.Equal(t, 7500.0, d.Segments[1].DistanceMeters)
	assert.JSONEq(t, directionsBody, string(d.Geometry))
}

func TestDirectionsErrors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, "bad coordinates")
	}, Options{})

	coords := []domain.Coordinates{{Lon: 0, Lat: 0}, {Lon: 1, Lat: 1}}
	_, err := c.Directions(context.Background(), coords, "driving-car")

	var de *domain.DirectionsError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, 400, de.StatusCode)
	assert.Equal(t, "bad coordinates", de.Body)

	_, err = c.Directions(context.Background(), coords[:1], "driving-car")
	require.ErrorAs(t, err, &de)

	empty := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"type":"FeatureCollection","features":[]}`)
	}, Options{})
	_, err = empty.Directions(context.Background(), coords, "driving-car")
	require.ErrorAs(t, err, &de)
}

type memorySnapCache struct {
	mu   sync.Mutex
	m    map[domain.Coordinates]domain.Coordinates
	puts int
}

func (m *memorySnapCache) Get(_ context.Context, c domain.Coordinates) (domain.Coordinates, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.m[c]
	return s, ok, nil
}

func (m *memorySnapCache) Put(_ context.Context, c, s domain.Coordinates) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.m[c] = s
	m.puts++
	return nil
}

func TestSnapUsesCache(t *testing.T) {
	calls := 0
	var got snapRequest
	cache := &memorySnapCache{m: map[domain.Coordinates]domain.Coordinates{}}

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/v2/snap/foot-walking", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		io.WriteString(w, `{"locations":[{"location":[13.0157,54.3017],"snapped_distance":12.3}]}`)
	}, Options{SnapCache: cache})

	in := domain.Coordinates{Lon: 13.0156, Lat: 54.3016}
	s, ok, err := c.Snap(context.Background(), in)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.Coordinates{Lon: 13.0157, Lat: 54.3017}, s)
	assert.Equal(t, 100, got.Radius)
	assert.Equal(t, [][]float64{{13.0156, 54.3016}}, got.Locations)

	s2, ok, err := c.Snap(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, s, s2)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, cache.puts)
}

func TestSnapNoMatch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"locations":[null]}`)
	}, Options{})

	_, ok, err := c.Snap(context.Background(), domain.Coordinates{Lon: 1, Lat: 1})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSnapRejectsOutOfRange(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}, Options{})

	_, _, err := c.Snap(context.Background(), domain.Coordinates{Lon: 10, Lat: 95})
	assert.Error(t, err)
}

func TestSnapTimeout(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		io.WriteString(w, `{"locations":[]}`)
	}, Options{SnapTimeout: 20 * time.Millisecond})

	_, _, err := c.Snap(context.Background(), domain.Coordinates{Lon: 1, Lat: 1})
	assert.Error(t, err)
}
