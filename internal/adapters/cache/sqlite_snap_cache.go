package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"zust-route-service/internal/domain"
	"zust-route-service/internal/platform/obs"
)

// SQLite backed cache mapping a delivery coordinate to its nearest
// walkable road position. Keys are the exact (lon, lat) pair as geocoded.
type SqliteSnapCache struct {
	DB *sql.DB
}

func NewSqliteSnapCache(db *sql.DB) *SqliteSnapCache {
	return &SqliteSnapCache{DB: db}
}

// Create the snap_cache table if it does not exist yet.
func (s *SqliteSnapCache) InitSchema(ctx context.Context) error {
	if s.DB == nil {
		return errors.New("snap cache: db is nil")
	}

	q := `
	CREATE TABLE IF NOT EXISTS snap_cache (
        lon REAL NOT NULL,
        lat REAL NOT NULL,
        snapped_lon REAL NOT NULL,
        snapped_lat REAL NOT NULL,
        PRIMARY KEY (lon, lat)
    );
	`
	if _, err := s.DB.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("snap cache: create snap_cache table: %w", err)
	}

	return nil
}

// Fetch the cached road position for c.
func (s *SqliteSnapCache) Get(ctx context.Context, c domain.Coordinates) (_ domain.Coordinates, _ bool, err error) {
	defer obs.Time(ctx, "snap.cache.Get")(&err)

	if s.DB == nil {
		return domain.Coordinates{}, false, errors.New("snap cache: db is nil")
	}

	q := `
	SELECT
        snapped_lon,
        snapped_lat
    FROM snap_cache
    WHERE lon = ? AND lat = ?;
	`

	var out domain.Coordinates
	err = s.DB.QueryRowContext(ctx, q, c.Lon, c.Lat).Scan(&out.Lon, &out.Lat)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Coordinates{}, false, nil
	}
	if err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("get snap cache: query snap_cache table: %w", err)
	}

	return out, true, nil
}

// Store the road position for c, replacing any previous entry.
func (s *SqliteSnapCache) Put(ctx context.Context, c domain.Coordinates, snapped domain.Coordinates) error {
	if s.DB == nil {
		return errors.New("snap cache: db is nil")
	}

	if !c.Valid() || !snapped.Valid() {
		return fmt.Errorf("insert snap cache: coordinate out of range: %v -> %v", c, snapped)
	}

	q := `
	INSERT OR REPLACE INTO snap_cache (
        lon,
        lat,
        snapped_lon,
        snapped_lat
    )
    VALUES (?, ?, ?, ?);
	`
	if _, err := s.DB.ExecContext(ctx, q, c.Lon, c.Lat, snapped.Lon, snapped.Lat); err != nil {
		return fmt.Errorf("insert snap cache coord=%v: %w", c, err)
	}

	return nil
}
