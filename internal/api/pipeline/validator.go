package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-trip-planner/app/observability/metrics"
	"github.com/FACorreiaa/go-trip-planner/config"
	"github.com/FACorreiaa/go-trip-planner/internal/api/resolver"
	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

// validateDays resolves every proposed event name against the places index,
// in original order. Events that cannot be verified are dropped; a day left
// with zero verified events is dropped entirely, because a day with no
// ground-truth activity is unusable rather than worth presenting empty.
// Surviving days are renumbered 1..N in their original relative order.
//
// The only hard failures are a missing credential and cancellation; a
// resolution miss is a normal outcome that degrades by omission.
func (s *ServiceImpl) validateDays(ctx context.Context, rawDays []types.RawDay, region string, creds *config.Credentials) ([]types.ItineraryDay, error) {
	stageCtx, cancel := context.WithTimeout(ctx, s.stageTimeout)
	defer cancel()

	stageCtx, span := otel.Tracer("PipelineService").Start(stageCtx, "validateDays", trace.WithAttributes(
		attribute.Int("days.count", len(rawDays)),
		attribute.String("region", region),
	))
	defer span.End()

	m := metrics.Get()
	start := time.Now()
	defer func() {
		m.StageDurationSeconds.Record(ctx, time.Since(start).Seconds(),
			metric.WithAttributes(attribute.String("stage", StageValidating)))
	}()

	validated := make([]types.ItineraryDay, 0, len(rawDays))
	firstLookup := true

	for dayIdx, day := range rawDays {
		validEvents := make([]types.Event, 0, len(day.Events))

		for _, rawEvent := range day.Events {
			// Pace consecutive lookups; the very first needs no gap.
			if !firstLookup {
				if err := s.wait(stageCtx); err != nil {
					return nil, err
				}
			}
			firstLookup = false

			place, err := s.resolver.Resolve(stageCtx, rawEvent.Name, region, creds)
			if err != nil {
				if resolver.IsNoMatch(err) {
					s.logger.InfoContext(stageCtx, "Dropping unverifiable event",
						slog.Int("day", dayIdx+1),
						slog.String("name", rawEvent.Name),
						slog.String("reason", err.Error()))
					m.EventsDroppedTotal.Add(stageCtx, 1)
					continue
				}
				// Configuration errors and cancellation abort the run.
				return nil, err
			}

			coord, ok := place.Coordinates()
			if !ok {
				s.logger.WarnContext(stageCtx, "Dropping event with unparseable place location",
					slog.Int("day", dayIdx+1),
					slog.String("name", rawEvent.Name),
					slog.String("location", place.Location))
				m.EventsDroppedTotal.Add(stageCtx, 1)
				continue
			}
			validEvents = append(validEvents, types.Event{
				EventOrder:      len(validEvents),
				Category:        rawEvent.Category,
				Name:            place.Name,
				Description:     rawEvent.Description,
				StartTime:       rawEvent.Time,
				DurationMinutes: rawEvent.DurationMinutes,
				EstimatedCost:   rawEvent.EstimatedCost,
				PlaceName:       place.Name,
				Address:         place.Address,
				Latitude:        coord.Latitude,
				Longitude:       coord.Longitude,
				PlaceID:         place.ID,
				IsPrimary:       true,
			})
			m.EventsResolvedTotal.Add(stageCtx, 1)
		}

		if len(validEvents) == 0 {
			s.logger.WarnContext(stageCtx, "Dropping day with no verifiable events",
				slog.Int("day", dayIdx+1),
				slog.Int("original_events", len(day.Events)))
			m.DaysDroppedTotal.Add(stageCtx, 1)
			continue
		}

		validated = append(validated, types.ItineraryDay{
			DayNumber: len(validated) + 1,
			Date:      day.Date,
			Events:    validEvents,
		})
	}

	s.logger.InfoContext(stageCtx, "Location validation finished",
		slog.Int("original_days", len(rawDays)),
		slog.Int("surviving_days", len(validated)))
	return validated, nil
}

// isFatalLookupError reports whether a resolver/places error must abort the
// run instead of degrading it.
func isFatalLookupError(err error) bool {
	return errors.Is(err, types.ErrMissingAPIKey) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
