package planner

import (
	"fmt"
	"strings"

	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

const plannerSystemPrompt = "You are a professional travel planning assistant with deep knowledge of destinations worldwide."

// draftPrompt builds the itinerary generation prompt. Restriction tags are a
// hard constraint section that takes precedence over every other instruction.
// Place names are required in minimal form because a later stage performs
// exact and fuzzy lookups on exactly these strings.
func draftPrompt(req types.TravelRequirements) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Create a detailed %d-day travel itinerary based on the following request:\n\n", req.Days)
	fmt.Fprintf(&b, "- Destination: %s\n", req.Destination)
	if req.Budget != nil {
		fmt.Fprintf(&b, "- Budget: %.0f\n", *req.Budget)
	}
	if req.Travelers > 0 {
		fmt.Fprintf(&b, "- Travelers: %d\n", req.Travelers)
	}
	if len(req.Preferences) > 0 {
		fmt.Fprintf(&b, "- Preferences: %s\n", strings.Join(req.Preferences, ", "))
	}
	if len(req.Restrictions) > 0 {
		b.WriteString("\nHARD CONSTRAINTS (must be strictly respected, these override everything else):\n")
		for _, need := range req.Restrictions {
			fmt.Fprintf(&b, "  - %s\n", need)
		}
	}

	b.WriteString("\nRequirements:\n")
	rule := 1
	if len(req.Restrictions) > 0 {
		fmt.Fprintf(&b, "%d. Top priority: never schedule a place or activity the hard constraints rule out. Violating a constraint is not allowed under any circumstance.\n", rule)
		rule++
	}
	fmt.Fprintf(&b, "%d. Schedule 2-4 main events per day (attractions, restaurants, activities).\n", rule)
	rule++
	fmt.Fprintf(&b, "%d. Use only real, existing place names, written in their most minimal form.\n", rule)
	b.WriteString("   - Correct: \"Forbidden City\", \"Tiananmen Square\", \"Qinhuai River\"\n")
	b.WriteString("   - Wrong: \"Forbidden City Scenic Area\", \"Qinhuai River Night Tour\", \"Nanjing Food Street Tour\"\n")
	b.WriteString("   - Do not append words like \"Scenic Area\", \"Night Tour\" or \"Food Street\"; write the core place name only.\n")
	rule++
	fmt.Fprintf(&b, "%d. Use sensible 24-hour start times (e.g. 09:00).\n", rule)
	rule++
	fmt.Fprintf(&b, "%d. Estimate each event's duration (minutes) and cost.\n", rule)
	rule++
	fmt.Fprintf(&b, "%d. Include transportation and accommodation advice.\n", rule)
	rule++
	fmt.Fprintf(&b, "%d. Favor the traveler's stated preferences.\n", rule)

	b.WriteString(`
Return strictly the following JSON structure and nothing else:
{
  "days": [
    {
      "date": "Day 1",
      "events": [
        {
          "time": "09:00",
          "type": "attraction",
          "name": "exact place name",
          "description": "short description",
          "estimated_duration": 120,
          "estimated_cost": 100
        }
      ]
    }
  ],
  "transportation": {
    "type": "flight/train/car",
    "details": "how to get there and around",
    "estimated_cost": 3000
  },
  "accommodation": {
    "type": "hotel/guesthouse",
    "details": "where to stay",
    "estimated_cost": 2000
  }
}

The "type" field must be one of: attraction, restaurant, hotel, transportation, entertainment, shopping.
`)
	return b.String()
}

// selectSatellitesPrompt asks the model to pick 1-3 complementary stops from
// the nearby candidates around one verified primary event.
func selectSatellitesPrompt(primary types.Event, candidates []types.CandidatePlace) string {
	var b strings.Builder

	startTime := primary.StartTime
	if startTime == "" {
		startTime = "unspecified"
	}
	duration := primary.DurationMinutes
	if duration == 0 {
		duration = 60
	}

	fmt.Fprintf(&b, "Main event: %s (type: %s)\n", primary.Name, primary.Category)
	fmt.Fprintf(&b, "Start time: %s\n", startTime)
	fmt.Fprintf(&b, "Estimated duration: %d minutes\n\n", duration)

	b.WriteString("Nearby places (sorted by distance):\n")
	for i, poi := range candidates {
		fmt.Fprintf(&b, "%d. %s (type: %s, distance: %sm, address: %s)\n",
			i+1, poi.Name, poi.Category, poi.Distance, poi.Address)
	}

	b.WriteString(`
Pick 1-3 places worth a quick side visit, considering:
1. Distance (prefer places within 500 meters)
2. Complementary type (e.g. a restaurant or cafe next to an attraction)
3. The remaining time budget around the main event

Return only a JSON array of the chosen place names, nothing else:
["place name 1", "place name 2"]

If nothing fits, return an empty array: []
`)
	return b.String()
}

// parseRequirementsPrompt extracts structured travel requirements from free
// text, paying particular attention to things the traveler rules out.
func parseRequirementsPrompt(input string) string {
	return fmt.Sprintf(`Parse the following travel request and extract the key information. Pay special attention to restrictions and places the traveler does NOT want.

Request: %s

Return strictly the following JSON and nothing else:
{
  "destination": "destination city",
  "days": 3,
  "budget": null,
  "travelers": 1,
  "preferences": ["preference"],
  "restrictions": ["restriction"]
}

Notes:
- "preferences" are things the traveler enjoys: food, history, shopping, nature, and so on.
- "restrictions" are hard limits. Watch for phrasing like "don't want", "avoid", "skip", "can't", "not allowed", as well as dietary, mobility or time limits.

Example:
Input: "3 days in Beihai, but I don't want to visit Weizhou Island, love seafood"
Output: {"destination":"Beihai","days":3,"budget":null,"travelers":1,"preferences":["seafood"],"restrictions":["do not visit Weizhou Island"]}
`, input)
}
