package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-trip-planner/app/observability/metrics"
	"github.com/FACorreiaa/go-trip-planner/config"
	"github.com/FACorreiaa/go-trip-planner/internal/api/places"
	"github.com/FACorreiaa/go-trip-planner/internal/api/planner"
	"github.com/FACorreiaa/go-trip-planner/internal/api/resolver"
	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// Service drives a full generation run: draft, validate every place against
// the lookup service, enrich surviving events with nearby satellites, and
// assemble the final itinerary, streaming progress along the way.
type Service interface {
	Generate(ctx context.Context, req types.TravelRequirements, ownerID *uuid.UUID, creds *config.Credentials) (*StreamingResponse, error)
}

// ServiceImpl runs each request on a single logical thread of control: days
// and events are processed strictly in sequence, with deliberate delays
// between remote lookups, because the downstream places service rate-limits
// aggressively. No state is shared between concurrent runs.
type ServiceImpl struct {
	planner      planner.Service
	resolver     resolver.Service
	places       places.Searcher
	logger       *slog.Logger
	stageTimeout time.Duration
	lookupDelay  time.Duration
}

func NewServiceImpl(plannerSvc planner.Service, resolverSvc resolver.Service, placesClient places.Searcher, cfg *config.Config, logger *slog.Logger) *ServiceImpl {
	stageTimeout := cfg.Pipeline.StageTimeout
	if stageTimeout == 0 {
		stageTimeout = 3 * time.Minute
	}
	lookupDelay := cfg.Pipeline.LookupDelay
	if lookupDelay == 0 {
		lookupDelay = 300 * time.Millisecond
	}
	return &ServiceImpl{
		planner:      plannerSvc,
		resolver:     resolverSvc,
		places:       placesClient,
		logger:       logger,
		stageTimeout: stageTimeout,
		lookupDelay:  lookupDelay,
	}
}

// Generate validates the requirements and starts the run. The returned
// stream emits generating(10), validating(40), enriching(70), finalizing(90)
// and complete(100, data) in order; an unrecoverable failure is emitted as
// one terminal error event rather than a silently truncated stream.
func (s *ServiceImpl) Generate(ctx context.Context, req types.TravelRequirements, ownerID *uuid.UUID, creds *config.Credentials) (*StreamingResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	ch := make(chan StreamEvent, 10)
	runID := uuid.New()

	go s.run(runCtx, ch, runID, req, ownerID, creds)

	return &StreamingResponse{
		RunID:  runID,
		Stream: ch,
		Cancel: cancel,
	}, nil
}

func (s *ServiceImpl) run(ctx context.Context, ch chan<- StreamEvent, runID uuid.UUID, req types.TravelRequirements, ownerID *uuid.UUID, creds *config.Credentials) {
	defer close(ch)

	ctx, span := otel.Tracer("PipelineService").Start(ctx, "GenerateItinerary", trace.WithAttributes(
		attribute.String("run.id", runID.String()),
		attribute.String("trip.destination", req.Destination),
		attribute.Int("trip.days", req.Days),
	))
	defer span.End()

	m := metrics.Get()
	m.PipelineRunsTotal.Add(ctx, 1)
	s.logger.InfoContext(ctx, "Starting itinerary generation",
		slog.String("run_id", runID.String()),
		slog.String("destination", req.Destination),
		slog.Int("days", req.Days))

	// Stage 1: draft.
	if !s.sendEvent(ctx, ch, StreamEvent{Stage: StageGenerating, Progress: ProgressGenerating}) {
		return
	}
	raw, err := s.runDraft(ctx, req, creds)
	if err != nil {
		s.abort(ctx, ch, span, m, "drafting failed", err)
		return
	}

	// Stage 2: validate every place against the lookup service.
	if !s.sendEvent(ctx, ch, StreamEvent{Stage: StageValidating, Progress: ProgressValidating}) {
		return
	}
	days, err := s.validateDays(ctx, raw.Days, req.Destination, creds)
	if err != nil {
		s.abort(ctx, ch, span, m, "validation failed", err)
		return
	}

	// Stage 3: enrich surviving primaries with nearby satellites.
	if !s.sendEvent(ctx, ch, StreamEvent{Stage: StageEnriching, Progress: ProgressEnriching}) {
		return
	}
	days, err = s.enrichDays(ctx, days, creds)
	if err != nil {
		s.abort(ctx, ch, span, m, "enrichment failed", err)
		return
	}

	// Stage 4: assemble.
	if !s.sendEvent(ctx, ch, StreamEvent{Stage: StageFinalizing, Progress: ProgressFinalizing}) {
		return
	}
	itinerary := s.assemble(req, ownerID, raw, days)

	span.SetStatus(codes.Ok, "Itinerary generated")
	s.logger.InfoContext(ctx, "Itinerary generation complete",
		slog.String("run_id", runID.String()),
		slog.Int("final_days", len(itinerary.Days)))

	s.sendEvent(ctx, ch, StreamEvent{Stage: StageComplete, Progress: ProgressComplete, Data: itinerary})
}

// runDraft invokes the drafter under the per-stage deadline.
func (s *ServiceImpl) runDraft(ctx context.Context, req types.TravelRequirements, creds *config.Credentials) (*types.RawItinerary, error) {
	stageCtx, cancel := context.WithTimeout(ctx, s.stageTimeout)
	defer cancel()

	start := time.Now()
	raw, err := s.planner.Draft(stageCtx, req, creds)
	metrics.Get().StageDurationSeconds.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(attribute.String("stage", StageGenerating)))
	return raw, err
}

// abort emits the terminal error event. The failure is never swallowed: the
// consumer always sees either complete(100) or exactly one error event.
func (s *ServiceImpl) abort(ctx context.Context, ch chan<- StreamEvent, span trace.Span, m *metrics.AppMetrics, msg string, err error) {
	s.logger.ErrorContext(ctx, "Itinerary generation aborted",
		slog.String("reason", msg), slog.Any("error", err))
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)
	m.PipelineErrorsTotal.Add(ctx, 1)

	s.sendEvent(ctx, ch, StreamEvent{
		Stage:    StageError,
		Progress: 0,
		Error:    fmt.Sprintf("%s: %v", msg, err),
	})
}

// assemble builds the final draft itinerary. The title is synthesized from
// the destination and requested day count.
func (s *ServiceImpl) assemble(req types.TravelRequirements, ownerID *uuid.UUID, raw *types.RawItinerary, days []types.ItineraryDay) *types.Itinerary {
	travelers := req.Travelers
	if travelers == 0 {
		travelers = 1
	}
	now := time.Now()
	return &types.Itinerary{
		ID:             uuid.New(),
		UserID:         ownerID,
		Title:          fmt.Sprintf("%s %d-Day Trip", req.Destination, req.Days),
		Destination:    req.Destination,
		StartDate:      req.StartDate,
		Days:           days,
		Travelers:      travelers,
		Budget:         req.Budget,
		Preferences:    req.Preferences,
		Status:         types.StatusDraft,
		Transportation: raw.Transportation,
		Accommodation:  raw.Accommodation,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// wait pauses between consecutive remote lookups, honoring cancellation.
func (s *ServiceImpl) wait(ctx context.Context) error {
	if s.lookupDelay <= 0 {
		return nil
	}
	select {
	case <-time.After(s.lookupDelay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
