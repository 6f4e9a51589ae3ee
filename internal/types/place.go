package types

import (
	"strconv"
	"strings"
)

// CandidatePlace is one ranked result from the places lookup service.
// Location is the provider's serialized "lng,lat" pair; Distance is only set
// on nearby searches and is measured in meters from the search origin.
type CandidatePlace struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"type"`
	TypeCode string `json:"typecode"`
	Address  string `json:"address"`
	Location string `json:"location"`
	Distance string `json:"distance,omitempty"`
	Tel      string `json:"tel,omitempty"`
}

// Coordinate is a WGS-ish longitude/latitude pair.
type Coordinate struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

func (c Coordinate) String() string {
	return strconv.FormatFloat(c.Longitude, 'f', 6, 64) + "," +
		strconv.FormatFloat(c.Latitude, 'f', 6, 64)
}

// ParseLocation converts a serialized "lng,lat" pair into a Coordinate.
// Returns false when the string is not a valid pair.
func ParseLocation(location string) (Coordinate, bool) {
	parts := strings.Split(location, ",")
	if len(parts) != 2 {
		return Coordinate{}, false
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Coordinate{}, false
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Coordinate{}, false
	}
	return Coordinate{Longitude: lng, Latitude: lat}, true
}

// Coordinates resolves the place's serialized location.
func (p *CandidatePlace) Coordinates() (Coordinate, bool) {
	return ParseLocation(p.Location)
}
