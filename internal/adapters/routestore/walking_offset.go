package routestore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"zust-route-service/internal/domain"
	"zust-route-service/internal/platform/obs"
)

// Walking offsets live in a separate directory so the route record keeps its
// fixed field set. Zone ids never start with a dot, so the directory cannot
// clash with a record.
const walkingDir = ".walking"

type walkingRecord struct {
	RecordSHA256   string  `json:"record_sha256"`
	WalkingOffsetM float64 `json:"walking_offset_m"`
}

func (s *FileRouteStore) walkingPath(zoneID string) (string, error) {
	id, err := domain.ParseZoneID(zoneID)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.Dir, walkingDir, id+".json"), nil
}

func recordDigest(r domain.SavedRoute) (string, error) {
	b, err := encodeRecord(r)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

// SaveWalkingOffset stores meters for record r. The entry is bound to the
// content of r, so it is ignored once a different record replaces r.
func (s *FileRouteStore) SaveWalkingOffset(ctx context.Context, zoneID string, r domain.SavedRoute, meters float64) (err error) {
	defer obs.Time(ctx, "routes.SaveWalkingOffset")(&err)

	p, err := s.walkingPath(zoneID)
	if err != nil {
		return err
	}

	digest, err := recordDigest(r)
	if err != nil {
		return fmt.Errorf("save walking offset %q: %w", zoneID, err)
	}

	b, err := json.Marshal(walkingRecord{RecordSHA256: digest, WalkingOffsetM: meters})
	if err != nil {
		return fmt.Errorf("save walking offset %q: encode: %w", zoneID, err)
	}

	if err := writeFileAtomic(filepath.Dir(p), p, b); err != nil {
		return fmt.Errorf("save walking offset %q: %w", zoneID, err)
	}

	return nil
}

// WalkingOffset returns the offset saved for record r.
func (s *FileRouteStore) WalkingOffset(ctx context.Context, zoneID string, r domain.SavedRoute) (_ float64, _ bool, err error) {
	defer obs.Time(ctx, "routes.WalkingOffset")(&err)

	p, err := s.walkingPath(zoneID)
	if err != nil {
		return 0, false, err
	}

	b, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("load walking offset %q: read: %w", zoneID, err)
	}

	var w walkingRecord
	if err := decodeStrict(b, &w); err != nil {
		return 0, false, &domain.CorruptRecordError{Path: p, Err: err}
	}

	digest, err := recordDigest(r)
	if err != nil {
		return 0, false, fmt.Errorf("load walking offset %q: %w", zoneID, err)
	}
	if digest != w.RecordSHA256 {
		return 0, false, nil
	}

	return w.WalkingOffsetM, true, nil
}
