package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-trip-planner/app/observability/metrics"
	"github.com/FACorreiaa/go-trip-planner/config"
	"github.com/FACorreiaa/go-trip-planner/internal/api/places"
	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

// enrichDays augments every primary event that carries coordinates with up to
// three nearby satellite stops. A failure around one event degrades to "no
// satellites for that event"; the stage as a whole only fails on a missing
// credential or cancellation. Events without coordinates pass through
// unchanged.
//
// Satellites land in two places: appended to the day's flat event list with
// the next running ordering index, and attached to their primary's SubEvents
// for structural grouping. A satellite never nests further satellites.
func (s *ServiceImpl) enrichDays(ctx context.Context, days []types.ItineraryDay, creds *config.Credentials) ([]types.ItineraryDay, error) {
	stageCtx, cancel := context.WithTimeout(ctx, s.stageTimeout)
	defer cancel()

	stageCtx, span := otel.Tracer("PipelineService").Start(stageCtx, "enrichDays", trace.WithAttributes(
		attribute.Int("days.count", len(days)),
	))
	defer span.End()

	m := metrics.Get()
	start := time.Now()
	defer func() {
		m.StageDurationSeconds.Record(ctx, time.Since(start).Seconds(),
			metric.WithAttributes(attribute.String("stage", StageEnriching)))
	}()

	enriched := make([]types.ItineraryDay, 0, len(days))
	for _, day := range days {
		events := make([]types.Event, 0, len(day.Events))

		for _, primary := range day.Events {
			primary.EventOrder = len(events)
			primaryIdx := len(events)
			events = append(events, primary)

			if !primary.HasCoordinates() {
				continue
			}

			satellites, err := s.collectSatellites(stageCtx, primary, len(events), creds)
			if err != nil {
				if isFatalLookupError(err) {
					return nil, err
				}
				s.logger.WarnContext(stageCtx, "Enrichment failed for event, continuing without satellites",
					slog.String("event", primary.Name), slog.Any("error", err))
				continue
			}
			if len(satellites) == 0 {
				continue
			}

			events = append(events, satellites...)
			events[primaryIdx].SubEvents = satellites
			m.SatellitesAttachedTotal.Add(stageCtx, int64(len(satellites)))
		}

		day.Events = events
		enriched = append(enriched, day)
	}

	return enriched, nil
}

// collectSatellites looks up nearby candidates for one primary event, lets
// the model choose, and matches the chosen names back to real candidates.
// Names the model invents are silently discarded. nextOrder is the ordering
// index the first satellite will take in the day's flat list.
func (s *ServiceImpl) collectSatellites(ctx context.Context, primary types.Event, nextOrder int, creds *config.Credentials) ([]types.Event, error) {
	location := types.Coordinate{Longitude: primary.Longitude, Latitude: primary.Latitude}
	candidates, err := s.places.SearchNearby(ctx, location,
		places.NearbyTypeCodes(primary.Category), places.NearbyRadiusMeters, creds)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	names, err := s.planner.SelectSatellites(ctx, primary, candidates, creds)
	if err != nil {
		return nil, err
	}

	satellites := make([]types.Event, 0, len(names))
	for _, name := range names {
		poi := findCandidate(candidates, name)
		if poi == nil {
			s.logger.DebugContext(ctx, "Selector chose a name outside the candidate list, discarding",
				slog.String("event", primary.Name), slog.String("selected", name))
			continue
		}
		coord, _ := poi.Coordinates()
		satellites = append(satellites, types.Event{
			EventOrder:  nextOrder + len(satellites),
			Category:    types.CategoryRestaurant,
			Name:        poi.Name,
			Description: fmt.Sprintf("~%sm from %s", poi.Distance, primary.Name),
			PlaceName:   poi.Name,
			Address:     poi.Address,
			Latitude:    coord.Latitude,
			Longitude:   coord.Longitude,
			PlaceID:     poi.ID,
			IsPrimary:   false,
		})
	}
	return satellites, nil
}

// findCandidate matches a chosen name by exact string equality.
func findCandidate(candidates []types.CandidatePlace, name string) *types.CandidatePlace {
	for i := range candidates {
		if candidates[i].Name == name {
			return &candidates[i]
		}
	}
	return nil
}
