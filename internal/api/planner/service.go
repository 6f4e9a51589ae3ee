package planner

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-trip-planner/config"
	generativeAI "github.com/FACorreiaa/go-trip-planner/internal/api/generative_ai"
	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// maxSatellites caps how many side stops may be attached to one primary
// event, regardless of how many names the model returns.
const maxSatellites = 3

// Service holds the creative LLM steps of the pipeline: drafting a raw
// itinerary, picking satellite stops around a verified event, and extracting
// structured requirements from free text.
type Service interface {
	Draft(ctx context.Context, req types.TravelRequirements, creds *config.Credentials) (*types.RawItinerary, error)
	SelectSatellites(ctx context.Context, primary types.Event, candidates []types.CandidatePlace, creds *config.Credentials) ([]string, error)
	ParseRequirements(ctx context.Context, input string, creds *config.Credentials) (*types.TravelRequirements, error)
}

type ServiceImpl struct {
	aiClient generativeAI.Client
	logger   *slog.Logger
}

func NewServiceImpl(aiClient generativeAI.Client, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		aiClient: aiClient,
		logger:   logger,
	}
}

// Draft asks the model for a first-draft itinerary and strictly validates the
// structured payload. Gateway failures and malformed payloads surface as
// distinct errors (types.ErrGenerationFailed vs types.ErrMalformedResponse).
func (s *ServiceImpl) Draft(ctx context.Context, req types.TravelRequirements, creds *config.Credentials) (*types.RawItinerary, error) {
	ctx, span := otel.Tracer("PlannerService").Start(ctx, "Draft", trace.WithAttributes(
		attribute.String("trip.destination", req.Destination),
		attribute.Int("trip.days", req.Days),
	))
	defer span.End()

	response, err := s.aiClient.Complete(ctx, plannerSystemPrompt, draftPrompt(req), creds)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	jsonStr, err := extractJSONObject(response)
	if err != nil {
		s.logger.ErrorContext(ctx, "Draft response carried no JSON payload", slog.Any("error", err))
		span.RecordError(err)
		return nil, err
	}

	raw, err := parseRawItinerary(jsonStr)
	if err != nil {
		s.logger.ErrorContext(ctx, "Draft payload failed schema validation", slog.Any("error", err))
		span.RecordError(err)
		return nil, err
	}

	s.logger.DebugContext(ctx, "Draft itinerary generated",
		slog.String("destination", req.Destination),
		slog.Int("days", len(raw.Days)))
	span.SetStatus(codes.Ok, "Draft generated")
	return raw, nil
}

// SelectSatellites asks the model to choose up to three side stops from the
// nearby candidates. A response the model garbles degrades to an empty
// selection rather than an error; only a gateway failure is returned.
func (s *ServiceImpl) SelectSatellites(ctx context.Context, primary types.Event, candidates []types.CandidatePlace, creds *config.Credentials) ([]string, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	ctx, span := otel.Tracer("PlannerService").Start(ctx, "SelectSatellites", trace.WithAttributes(
		attribute.String("event.name", primary.Name),
		attribute.Int("candidates.count", len(candidates)),
	))
	defer span.End()

	response, err := s.aiClient.Complete(ctx, plannerSystemPrompt, selectSatellitesPrompt(primary, candidates), creds)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	jsonStr, err := extractJSONArray(response)
	if err != nil {
		s.logger.WarnContext(ctx, "Satellite selection carried no JSON array, skipping",
			slog.String("event", primary.Name), slog.Any("error", err))
		return nil, nil
	}
	names, err := parseSelectedNames(jsonStr)
	if err != nil {
		s.logger.WarnContext(ctx, "Satellite selection failed to parse, skipping",
			slog.String("event", primary.Name), slog.Any("error", err))
		return nil, nil
	}

	if len(names) > maxSatellites {
		names = names[:maxSatellites]
	}
	return names, nil
}

// ParseRequirements extracts structured requirements from a free-text
// request via a single model call.
func (s *ServiceImpl) ParseRequirements(ctx context.Context, input string, creds *config.Credentials) (*types.TravelRequirements, error) {
	ctx, span := otel.Tracer("PlannerService").Start(ctx, "ParseRequirements")
	defer span.End()

	response, err := s.aiClient.Complete(ctx, plannerSystemPrompt, parseRequirementsPrompt(input), creds)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	jsonStr, err := extractJSONObject(response)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	req, err := parseRequirements(jsonStr)
	if err != nil {
		s.logger.ErrorContext(ctx, "Requirements payload failed validation", slog.Any("error", err))
		span.RecordError(err)
		return nil, err
	}
	span.SetStatus(codes.Ok, "Requirements parsed")
	return req, nil
}
