package domain

// Represents a single delivery (or depot) address as resolved for a zone.
// Coordinates are optional: addresses that could not be matched against the
// address table keep nil Lat/Lon and never reach an external routing call.
// JobID is zero until the stop has been accepted as an optimizer job.
type Stop struct {
	Name             string   `json:"name"`
	SubscriptionType string   `json:"abo_type"`
	PostalCode       string   `json:"plz"`
	Locality         string   `json:"ort"`
	Street           string   `json:"strasse"`
	HouseNumber      string   `json:"hausnummer"`
	Lat              *float64 `json:"lat"`
	Lon              *float64 `json:"lon"`
	JobID            int      `json:"job_id,omitempty"`
}

// Coordinates returns the stop location and whether both components are present.
func (s Stop) Coordinates() (Coordinates, bool) {
	if s.Lat == nil || s.Lon == nil {
		return Coordinates{}, false
	}
	return Coordinates{Lon: *s.Lon, Lat: *s.Lat}, true
}

// Optimizer-facing representation of an accepted, non-depot stop.
type Job struct {
	ID       int
	Location Coordinates
}

// The depot coordinate plus the deduplicated job list submitted to the optimizer.
type StopSet struct {
	Depot Coordinates
	Jobs  []Job
}

// JobIDs returns the ids of all jobs in submission order.
func (s StopSet) JobIDs() []int {
	ids := make([]int, 0, len(s.Jobs))
	for _, j := range s.Jobs {
		ids = append(ids, j.ID)
	}
	return ids
}
