package domain

import "fmt"

const DefaultProfile = "driving-car"

// Travel modes accepted by the routing service.
var profiles = []string{
	"driving-car",
	"driving-hgv",
	"cycling-regular",
	"cycling-road",
	"cycling-mountain",
	"cycling-electric",
	"foot-walking",
}

// Profiles returns the supported profile names in display order.
func Profiles() []string {
	out := make([]string, len(profiles))
	copy(out, profiles)
	return out
}

// ParseProfile validates a profile name; an empty name selects DefaultProfile.
func ParseProfile(name string) (string, error) {
	if name == "" {
		return DefaultProfile, nil
	}
	for _, p := range profiles {
		if p == name {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidProfile, name)
}
