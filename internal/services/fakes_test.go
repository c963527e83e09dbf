package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"zust-route-service/internal/domain"
)

func ptr(v float64) *float64 { return &v }

func stopAt(name string, lon, lat float64) domain.Stop {
	return domain.Stop{Name: name, Street: name + "weg", HouseNumber: "1", Lat: ptr(lat), Lon: ptr(lon)}
}

type fakeZones struct {
	stops []domain.Stop
	err   error
}

func (f *fakeZones) StopsForZone(_ context.Context, _ string) ([]domain.Stop, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.Stop, len(f.stops))
	copy(out, f.stops)
	return out, nil
}

type fakeOptimizer struct {
	raw   string
	err   error
	calls int
	got   domain.StopSet
}

func (f *fakeOptimizer) Optimize(_ context.Context, set domain.StopSet, _ string) (json.RawMessage, error) {
	f.calls++
	f.got = set
	if f.err != nil {
		return nil, f.err
	}
	return json.RawMessage(f.raw), nil
}

type fakeDirections struct {
	dirs  domain.Directions
	err   error
	calls int
	got   []domain.Coordinates
}

func (f *fakeDirections) Directions(_ context.Context, coords []domain.Coordinates, _ string) (domain.Directions, error) {
	f.calls++
	f.got = coords
	if f.err != nil {
		return domain.Directions{}, f.err
	}
	return f.dirs, nil
}

// legsDirections returns a directions result with n equal legs of 1 km / 2 min.
func legsDirections(n int) domain.Directions {
	d := domain.Directions{
		Geometry:        json.RawMessage(`{"type":"FeatureCollection","features":[]}`),
		DistanceMeters:  float64(n) * 1000,
		DurationSeconds: float64(n) * 120,
	}
	for i := 0; i < n; i++ {
		d.Segments = append(d.Segments, domain.DirectionsSegment{DistanceMeters: 1000, DurationSeconds: 120})
	}
	return d
}

type fakeSnapper struct {
	mu      sync.Mutex
	shift   float64
	fail    map[domain.Coordinates]bool
	noMatch map[domain.Coordinates]bool
	calls   int
}

func (f *fakeSnapper) Snap(_ context.Context, c domain.Coordinates) (domain.Coordinates, bool, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.fail[c] {
		return domain.Coordinates{}, false, errors.New("snap service unavailable")
	}
	if f.noMatch[c] {
		return domain.Coordinates{}, false, nil
	}
	return domain.Coordinates{Lon: c.Lon, Lat: c.Lat + f.shift}, true, nil
}

type memoryStore struct {
	records   map[string]domain.SavedRoute
	offsets   map[string]float64
	saves     int
	err       error
	offsetErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{records: map[string]domain.SavedRoute{}, offsets: map[string]float64{}}
}

func (m *memoryStore) Save(_ context.Context, zoneID string, r domain.SavedRoute) error {
	if m.err != nil {
		return m.err
	}
	m.saves++
	m.records[zoneID] = r
	return nil
}

func (m *memoryStore) Load(_ context.Context, zoneID string) (domain.SavedRoute, error) {
	r, ok := m.records[zoneID]
	if !ok {
		return domain.SavedRoute{}, domain.ErrNotFound
	}
	return r, nil
}

func (m *memoryStore) LoadRaw(ctx context.Context, zoneID string) ([]byte, error) {
	r, err := m.Load(ctx, zoneID)
	if err != nil {
		return nil, err
	}
	return json.Marshal(r)
}

func (m *memoryStore) SaveWalkingOffset(_ context.Context, zoneID string, _ domain.SavedRoute, meters float64) error {
	if m.offsetErr != nil {
		return m.offsetErr
	}
	m.offsets[zoneID] = meters
	return nil
}

func (m *memoryStore) WalkingOffset(_ context.Context, zoneID string, _ domain.SavedRoute) (float64, bool, error) {
	if m.offsetErr != nil {
		return 0, false, m.offsetErr
	}
	v, ok := m.offsets[zoneID]
	return v, ok, nil
}

type fakeLocker struct {
	held     map[string]bool
	released int
}

func (f *fakeLocker) Acquire(_ context.Context, zoneID string) (func(), error) {
	if f.held[zoneID] {
		return nil, domain.ErrZoneBusy
	}
	f.held[zoneID] = true
	return func() {
		delete(f.held, zoneID)
		f.released++
	}, nil
}
