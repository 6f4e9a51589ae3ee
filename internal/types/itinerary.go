package types

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventCategory is the closed set of event types the planner may emit.
type EventCategory string

const (
	CategoryAttraction     EventCategory = "attraction"
	CategoryRestaurant     EventCategory = "restaurant"
	CategoryHotel          EventCategory = "hotel"
	CategoryTransportation EventCategory = "transportation"
	CategoryEntertainment  EventCategory = "entertainment"
	CategoryShopping       EventCategory = "shopping"
)

// ParseEventCategory validates a raw category tag against the closed set.
func ParseEventCategory(s string) (EventCategory, error) {
	switch EventCategory(s) {
	case CategoryAttraction, CategoryRestaurant, CategoryHotel,
		CategoryTransportation, CategoryEntertainment, CategoryShopping:
		return EventCategory(s), nil
	}
	return "", fmt.Errorf("unknown event category %q", s)
}

type ItineraryStatus string

const (
	StatusDraft     ItineraryStatus = "draft"
	StatusConfirmed ItineraryStatus = "confirmed"
	StatusCompleted ItineraryStatus = "completed"
)

// TravelAdvisory is a transportation or accommodation advisory block,
// carried through from the raw draft unchanged.
type TravelAdvisory struct {
	Type          string  `json:"type"`
	Details       string  `json:"details"`
	EstimatedCost float64 `json:"estimated_cost,omitempty"`
}

// RawEvent is a single unverified activity proposed by the model.
type RawEvent struct {
	Time            string        `json:"time,omitempty"`
	Category        EventCategory `json:"type"`
	Name            string        `json:"name"`
	Description     string        `json:"description,omitempty"`
	DurationMinutes int           `json:"estimated_duration,omitempty"`
	EstimatedCost   float64       `json:"estimated_cost,omitempty"`
}

// RawDay is one day of the model's first draft.
type RawDay struct {
	Date   string     `json:"date,omitempty"`
	Events []RawEvent `json:"events"`
}

// RawItinerary is the model's first-draft output before any place has been
// verified to exist. It is created once per generation run and discarded
// after validation; it is never persisted.
type RawItinerary struct {
	Days           []RawDay        `json:"days"`
	Transportation *TravelAdvisory `json:"transportation,omitempty"`
	Accommodation  *TravelAdvisory `json:"accommodation,omitempty"`
}

// Event is a verified activity anchored to a real place. A primary event
// carries the resolved place identity in PlaceName/Address/coordinates; a
// satellite event is attached to its primary via SubEvents and never nests
// further.
type Event struct {
	EventOrder      int           `json:"event_order"`
	Category        EventCategory `json:"type"`
	Name            string        `json:"name"`
	Description     string        `json:"description,omitempty"`
	StartTime       string        `json:"start_time,omitempty"`
	DurationMinutes int           `json:"estimated_duration,omitempty"`
	EstimatedCost   float64       `json:"estimated_cost,omitempty"`
	PlaceName       string        `json:"place_name,omitempty"`
	Address         string        `json:"address,omitempty"`
	Latitude        float64       `json:"latitude,omitempty"`
	Longitude       float64       `json:"longitude,omitempty"`
	PlaceID         string        `json:"place_id,omitempty"`
	IsPrimary       bool          `json:"is_primary"`
	SubEvents       []Event       `json:"sub_events,omitempty"`
}

// HasCoordinates reports whether the event is anchored to a resolved place.
// Presence is keyed to the place identity: validation only records an event
// when both the place ID and a parseable location came back, so a zero
// latitude or longitude on an anchored event is a real coordinate.
func (e *Event) HasCoordinates() bool {
	return e.PlaceID != ""
}

// ItineraryDay holds the verified events of one day. Day numbers are
// reassigned 1..N over surviving days after validation.
type ItineraryDay struct {
	DayNumber int     `json:"day_number"`
	Date      string  `json:"date,omitempty"`
	Events    []Event `json:"events"`
}

// Itinerary is the final assembled result handed to the caller. The
// pipeline only ever produces StatusDraft.
type Itinerary struct {
	ID             uuid.UUID       `json:"id,omitempty"`
	UserID         *uuid.UUID      `json:"user_id,omitempty"`
	Title          string          `json:"title"`
	Destination    string          `json:"destination"`
	StartDate      string          `json:"start_date,omitempty"`
	Days           []ItineraryDay  `json:"days"`
	Travelers      int             `json:"travelers,omitempty"`
	Budget         *float64        `json:"budget,omitempty"`
	Preferences    []string        `json:"preferences,omitempty"`
	Status         ItineraryStatus `json:"status"`
	Transportation *TravelAdvisory `json:"transportation,omitempty"`
	Accommodation  *TravelAdvisory `json:"accommodation,omitempty"`
	CreatedAt      time.Time       `json:"created_at,omitempty"`
	UpdatedAt      time.Time       `json:"updated_at,omitempty"`
}
