package domain

import (
	"fmt"
	"regexp"
	"strings"
)

var zonePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ParseZoneID trims and validates a Zustellbereich identifier.
// Accepted ids are safe to use as a file name.
func ParseZoneID(raw string) (string, error) {
	id := strings.TrimSpace(raw)
	if id == "" || len(id) > 64 || !zonePattern.MatchString(id) || strings.Contains(id, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidZone, raw)
	}
	return id, nil
}
