package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

func TestExtractJSONObject(t *testing.T) {
	t.Run("plain object", func(t *testing.T) {
		out, err := extractJSONObject(`{"days": []}`)
		require.NoError(t, err)
		assert.Equal(t, `{"days": []}`, out)
	})

	t.Run("object wrapped in prose and fences", func(t *testing.T) {
		response := "Sure! Here is your itinerary:\n```json\n{\"days\": [{\"events\": []}]}\n```\nEnjoy your trip!"
		out, err := extractJSONObject(response)
		require.NoError(t, err)
		assert.Equal(t, `{"days": [{"events": []}]}`, out)
	})

	t.Run("braces inside strings do not break balance", func(t *testing.T) {
		response := `{"name": "Joe's {Famous} Diner", "note": "a \"quoted\" brace }"}`
		out, err := extractJSONObject(response)
		require.NoError(t, err)
		assert.Equal(t, response, out)
	})

	t.Run("no object at all", func(t *testing.T) {
		_, err := extractJSONObject("I could not generate an itinerary, sorry.")
		assert.ErrorIs(t, err, types.ErrMalformedResponse)
	})

	t.Run("unbalanced object", func(t *testing.T) {
		_, err := extractJSONObject(`{"days": [{"events": []}`)
		assert.ErrorIs(t, err, types.ErrMalformedResponse)
	})
}

func TestExtractJSONArray(t *testing.T) {
	out, err := extractJSONArray("Chosen stops:\n[\"Noodle House\", \"Tea Garden\"]")
	require.NoError(t, err)
	assert.Equal(t, `["Noodle House", "Tea Garden"]`, out)

	_, err = extractJSONArray("none of those candidates fit")
	assert.ErrorIs(t, err, types.ErrMalformedResponse)
}

func TestParseRawItinerary(t *testing.T) {
	valid := `{
		"days": [
			{"date": "2026-09-01", "events": [
				{"time": "09:00", "type": "attraction", "name": "Forbidden City", "estimated_duration": 180, "estimated_cost": 60}
			]}
		],
		"transportation": {"type": "metro", "details": "Line 1 covers most sights"},
		"accommodation": {"type": "hotel", "details": "Stay near Wangfujing", "estimated_cost": 400}
	}`

	t.Run("valid payload", func(t *testing.T) {
		raw, err := parseRawItinerary(valid)
		require.NoError(t, err)
		require.Len(t, raw.Days, 1)
		assert.Equal(t, "Forbidden City", raw.Days[0].Events[0].Name)
		assert.Equal(t, types.CategoryAttraction, raw.Days[0].Events[0].Category)
		require.NotNil(t, raw.Transportation)
		assert.Equal(t, "metro", raw.Transportation.Type)
	})

	t.Run("missing days", func(t *testing.T) {
		_, err := parseRawItinerary(`{"days": []}`)
		assert.ErrorIs(t, err, types.ErrMalformedResponse)
	})

	t.Run("day without events", func(t *testing.T) {
		_, err := parseRawItinerary(`{"days": [{"events": []}]}`)
		assert.ErrorIs(t, err, types.ErrMalformedResponse)
	})

	t.Run("event without name", func(t *testing.T) {
		_, err := parseRawItinerary(`{"days": [{"events": [{"type": "attraction", "name": "  "}]}]}`)
		assert.ErrorIs(t, err, types.ErrMalformedResponse)
	})

	t.Run("category outside the closed set", func(t *testing.T) {
		_, err := parseRawItinerary(`{"days": [{"events": [{"type": "spaceport", "name": "Launch Pad"}]}]}`)
		assert.ErrorIs(t, err, types.ErrMalformedResponse)
	})

	t.Run("not JSON", func(t *testing.T) {
		_, err := parseRawItinerary(`{"days": oops}`)
		assert.ErrorIs(t, err, types.ErrMalformedResponse)
	})
}

func TestParseRequirements(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		req, err := parseRequirements(`{"destination": "Beihai", "days": 3, "preferences": ["seafood"], "restrictions": ["do not visit Weizhou Island"]}`)
		require.NoError(t, err)
		assert.Equal(t, "Beihai", req.Destination)
		assert.Equal(t, 3, req.Days)
		assert.Equal(t, []string{"do not visit Weizhou Island"}, req.Restrictions)
	})

	t.Run("days out of range rejected", func(t *testing.T) {
		_, err := parseRequirements(`{"destination": "Beihai", "days": 99}`)
		assert.ErrorIs(t, err, types.ErrMalformedResponse)
	})

	t.Run("missing destination rejected", func(t *testing.T) {
		_, err := parseRequirements(`{"days": 3}`)
		assert.ErrorIs(t, err, types.ErrMalformedResponse)
	})
}
