package ports

import "context"

// Guards a zone so that at most one generation writes its record at a time.
type ZoneLocker interface {
	// Acquire returns a release func, or domain.ErrZoneBusy when the zone is held.
	Acquire(ctx context.Context, zoneID string) (release func(), err error)
}
