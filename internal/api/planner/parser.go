package planner

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

// extractJSONObject locates the first balanced {...} span in an LLM response.
// Responses regularly carry surrounding prose or markdown fences, so we scan
// for balance instead of requiring the whole text to be pure JSON.
func extractJSONObject(response string) (string, error) {
	return extractBalanced(response, '{', '}')
}

// extractJSONArray locates the first balanced [...] span.
func extractJSONArray(response string) (string, error) {
	return extractBalanced(response, '[', ']')
}

func extractBalanced(response string, open, close byte) (string, error) {
	start := strings.IndexByte(response, open)
	if start == -1 {
		return "", fmt.Errorf("%w: no %q found in response", types.ErrMalformedResponse, string(open))
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(response); i++ {
		c := response[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == open:
			depth++
		case c == close:
			depth--
			if depth == 0 {
				return response[start : i+1], nil
			}
		}
	}
	return "", fmt.Errorf("%w: unbalanced %q span in response", types.ErrMalformedResponse, string(open))
}

// parseRawItinerary decodes and validates the drafter's payload. The schema
// is checked strictly right after parse: a missing days array, an event
// without a name, or a category outside the closed set all reject the
// response instead of being trusted downstream.
func parseRawItinerary(jsonStr string) (*types.RawItinerary, error) {
	var raw types.RawItinerary
	if err := json.Unmarshal([]byte(jsonStr), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrMalformedResponse, err)
	}

	if len(raw.Days) == 0 {
		return nil, fmt.Errorf("%w: days array is missing or empty", types.ErrMalformedResponse)
	}
	for i, day := range raw.Days {
		if len(day.Events) == 0 {
			return nil, fmt.Errorf("%w: day %d has no events", types.ErrMalformedResponse, i+1)
		}
		for j, event := range day.Events {
			if strings.TrimSpace(event.Name) == "" {
				return nil, fmt.Errorf("%w: day %d event %d has no name", types.ErrMalformedResponse, i+1, j+1)
			}
			if _, err := types.ParseEventCategory(string(event.Category)); err != nil {
				return nil, fmt.Errorf("%w: day %d event %d: %v", types.ErrMalformedResponse, i+1, j+1, err)
			}
		}
	}
	return &raw, nil
}

// parseSelectedNames decodes the satellite selector's JSON array of names.
func parseSelectedNames(jsonStr string) ([]string, error) {
	var names []string
	if err := json.Unmarshal([]byte(jsonStr), &names); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrMalformedResponse, err)
	}
	return names, nil
}

// parseRequirements decodes the requirement parser's payload.
func parseRequirements(jsonStr string) (*types.TravelRequirements, error) {
	var req types.TravelRequirements
	if err := json.Unmarshal([]byte(jsonStr), &req); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrMalformedResponse, err)
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrMalformedResponse, err)
	}
	return &req, nil
}
