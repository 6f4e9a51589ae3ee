package types

import "fmt"

const (
	MinTripDays = 1
	MaxTripDays = 30
)

// TravelRequirements is the structured form of a user's travel request,
// either submitted directly or extracted from free text by the planner.
type TravelRequirements struct {
	Destination  string   `json:"destination"`
	Days         int      `json:"days"`
	Budget       *float64 `json:"budget,omitempty"`
	Travelers    int      `json:"travelers,omitempty"`
	Preferences  []string `json:"preferences,omitempty"`
	Restrictions []string `json:"restrictions,omitempty"`
	StartDate    string   `json:"start_date,omitempty"`
}

// Validate checks the fields the pipeline depends on. Destination/region
// support is checked by the caller before the pipeline runs.
func (r *TravelRequirements) Validate() error {
	if r.Destination == "" {
		return fmt.Errorf("%w: destination is required", ErrInvalidRequirements)
	}
	if r.Days < MinTripDays || r.Days > MaxTripDays {
		return fmt.Errorf("%w: days must be between %d and %d, got %d",
			ErrInvalidRequirements, MinTripDays, MaxTripDays, r.Days)
	}
	return nil
}
