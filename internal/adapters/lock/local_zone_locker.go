package lock

import (
	"context"
	"sync"
	"zust-route-service/internal/domain"
)

// LocalZoneLocker serializes route generation per zone within one process.
type LocalZoneLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewLocalZoneLocker() *LocalZoneLocker {
	return &LocalZoneLocker{held: map[string]struct{}{}}
}

func (l *LocalZoneLocker) Acquire(_ context.Context, zoneID string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, busy := l.held[zoneID]; busy {
		return nil, domain.ErrZoneBusy
	}
	l.held[zoneID] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, zoneID)
			l.mu.Unlock()
		})
	}, nil
}
