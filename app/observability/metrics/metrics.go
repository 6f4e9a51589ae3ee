package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	PipelineRunsTotal       metric.Int64Counter
	PipelineErrorsTotal     metric.Int64Counter
	StageDurationSeconds    metric.Float64Histogram
	EventsResolvedTotal     metric.Int64Counter
	EventsDroppedTotal      metric.Int64Counter
	DaysDroppedTotal        metric.Int64Counter
	SatellitesAttachedTotal metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// Get initializes the global metric instruments once and returns them.
// Must run after the global MeterProvider is configured.
func Get() *AppMetrics {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("go-trip-planner")
		var err error
		m := &AppMetrics{}

		m.PipelineRunsTotal, err = meter.Int64Counter(
			"pipeline_runs_total",
			metric.WithDescription("Total number of itinerary generation runs started"),
			metric.WithUnit("{run}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create pipeline_runs_total: %v", err)
		}

		m.PipelineErrorsTotal, err = meter.Int64Counter(
			"pipeline_errors_total",
			metric.WithDescription("Total number of generation runs aborted with an error"),
			metric.WithUnit("{run}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create pipeline_errors_total: %v", err)
		}

		m.StageDurationSeconds, err = meter.Float64Histogram(
			"pipeline_stage_duration_seconds",
			metric.WithDescription("Duration of each pipeline stage in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create pipeline_stage_duration_seconds: %v", err)
		}

		m.EventsResolvedTotal, err = meter.Int64Counter(
			"events_resolved_total",
			metric.WithDescription("Events whose place name resolved to a real place"),
			metric.WithUnit("{event}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create events_resolved_total: %v", err)
		}

		m.EventsDroppedTotal, err = meter.Int64Counter(
			"events_dropped_total",
			metric.WithDescription("Events dropped because no lookup strategy found a match"),
			metric.WithUnit("{event}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create events_dropped_total: %v", err)
		}

		m.DaysDroppedTotal, err = meter.Int64Counter(
			"days_dropped_total",
			metric.WithDescription("Days dropped because no event survived validation"),
			metric.WithUnit("{day}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create days_dropped_total: %v", err)
		}

		m.SatellitesAttachedTotal, err = meter.Int64Counter(
			"satellites_attached_total",
			metric.WithDescription("Satellite events attached during enrichment"),
			metric.WithUnit("{event}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create satellites_attached_total: %v", err)
		}

		appMetrics = m
	})
	return appMetrics
}
