package routestore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"zust-route-service/internal/domain"
	"zust-route-service/internal/platform/obs"
)

// FileRouteStore keeps the last generated route of every zone as one JSON
// document per zone under Dir.
type FileRouteStore struct {
	Dir string
}

func NewFileRouteStore(dir string) *FileRouteStore {
	return &FileRouteStore{Dir: dir}
}

// On-disk shape. Pointers and raw values tell a missing key apart from null.
type record struct {
	Profile      *string         `json:"profile"`
	Optimized    json.RawMessage `json:"optimized"`
	OrderedRoute json.RawMessage `json:"ordered_route"`
	RouteGeoJSON json.RawMessage `json:"route_geojson"`
	Stats        *recordStats    `json:"stats"`
}

type recordStats struct {
	TotalDistanceKm  *float64        `json:"total_km"`
	TotalDurationMin *float64        `json:"total_min"`
	Segments         json.RawMessage `json:"segments"`
}

func (s *FileRouteStore) path(zoneID string) (string, error) {
	id, err := domain.ParseZoneID(zoneID)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.Dir, id+".json"), nil
}

// Save replaces the record of zoneID. The new document is written to a
// temporary file in the same directory and renamed into place, so readers
// see either the old or the new record.
//
// Opaque documents are stored compacted; nil slices are stored as null and
// load back as nil.
func (s *FileRouteStore) Save(ctx context.Context, zoneID string, r domain.SavedRoute) (err error) {
	defer obs.Time(ctx, "routes.Save")(&err)

	p, err := s.path(zoneID)
	if err != nil {
		return err
	}

	b, err := encodeRecord(r)
	if err != nil {
		return fmt.Errorf("save route %q: %w", zoneID, err)
	}

	if err := writeFileAtomic(s.Dir, p, b); err != nil {
		return fmt.Errorf("save route %q: %w", zoneID, err)
	}

	return nil
}

// LoadRaw returns the stored document of zoneID byte for byte.
func (s *FileRouteStore) LoadRaw(ctx context.Context, zoneID string) ([]byte, error) {
	p, err := s.path(zoneID)
	if err != nil {
		return nil, err
	}

	b, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load route %q: %w", zoneID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load route %q: read: %w", zoneID, err)
	}

	return b, nil
}

// Load decodes the stored record of zoneID.
func (s *FileRouteStore) Load(ctx context.Context, zoneID string) (_ domain.SavedRoute, err error) {
	defer obs.Time(ctx, "routes.LoadFile")(&err)

	b, err := s.LoadRaw(ctx, zoneID)
	if err != nil {
		return domain.SavedRoute{}, err
	}

	p, _ := s.path(zoneID)
	r, err := decodeRecord(b)
	if err != nil {
		return domain.SavedRoute{}, &domain.CorruptRecordError{Path: p, Err: err}
	}

	return r, nil
}

// encodeRecord renders r in its canonical on-disk form.
func encodeRecord(r domain.SavedRoute) ([]byte, error) {
	if len(r.Optimized) == 0 {
		return nil, errors.New("optimized result is empty")
	}

	var err error
	if r.Optimized, err = compact(r.Optimized); err != nil {
		return nil, fmt.Errorf("optimized: %w", err)
	}
	if len(r.RouteGeoJSON) > 0 {
		if r.RouteGeoJSON, err = compact(r.RouteGeoJSON); err != nil {
			return nil, fmt.Errorf("route_geojson: %w", err)
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}

	return buf.Bytes(), nil
}

func decodeRecord(b []byte) (domain.SavedRoute, error) {
	var rec record
	if err := decodeStrict(b, &rec); err != nil {
		return domain.SavedRoute{}, err
	}

	switch {
	case rec.Profile == nil:
		return domain.SavedRoute{}, errors.New("missing field profile")
	case isNull(rec.Optimized):
		return domain.SavedRoute{}, errors.New("missing field optimized")
	case len(rec.OrderedRoute) == 0:
		return domain.SavedRoute{}, errors.New("missing field ordered_route")
	case rec.Stats == nil:
		return domain.SavedRoute{}, errors.New("missing field stats")
	case rec.Stats.TotalDistanceKm == nil || rec.Stats.TotalDurationMin == nil:
		return domain.SavedRoute{}, errors.New("missing stats totals")
	case len(rec.Stats.Segments) == 0:
		return domain.SavedRoute{}, errors.New("missing field stats.segments")
	}

	var ordered domain.OrderedRoute
	if !isNull(rec.OrderedRoute) {
		if err := decodeStrict(rec.OrderedRoute, &ordered); err != nil {
			return domain.SavedRoute{}, fmt.Errorf("ordered_route: %w", err)
		}
	}

	var segments []domain.Segment
	if !isNull(rec.Stats.Segments) {
		if err := decodeStrict(rec.Stats.Segments, &segments); err != nil {
			return domain.SavedRoute{}, fmt.Errorf("stats.segments: %w", err)
		}
	}

	optimized, err := compact(rec.Optimized)
	if err != nil {
		return domain.SavedRoute{}, fmt.Errorf("optimized: %w", err)
	}

	var geometry json.RawMessage
	if !isNull(rec.RouteGeoJSON) {
		if geometry, err = compact(rec.RouteGeoJSON); err != nil {
			return domain.SavedRoute{}, fmt.Errorf("route_geojson: %w", err)
		}
	}

	return domain.SavedRoute{
		Profile:      *rec.Profile,
		Optimized:    optimized,
		OrderedRoute: ordered,
		RouteGeoJSON: geometry,
		Stats: domain.RouteStats{
			TotalDistanceKm:  *rec.Stats.TotalDistanceKm,
			TotalDurationMin: *rec.Stats.TotalDurationMin,
			Segments:         segments,
		},
	}, nil
}

// decodeStrict decodes exactly one JSON value into v, rejecting unknown
// fields and trailing data.
func decodeStrict(b []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("trailing data after value")
	}
	return nil
}

func writeFileAtomic(dir, p string, b []byte) (err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(p)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}

	if err := os.Rename(tmp.Name(), p); err != nil {
		return fmt.Errorf("rename: %w", err)
	}

	return nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

func compact(raw json.RawMessage) (json.RawMessage, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
