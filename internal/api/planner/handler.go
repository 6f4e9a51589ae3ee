package planner

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"

	"github.com/FACorreiaa/go-trip-planner/config"
	"github.com/FACorreiaa/go-trip-planner/internal/api"
	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

// ParseRequirementsRequest carries a free-text trip description plus optional
// per-request credentials.
type ParseRequirementsRequest struct {
	Input       string              `json:"input"`
	Credentials *config.Credentials `json:"credentials,omitempty"`
}

type Handler interface {
	ParseRequirements(w http.ResponseWriter, r *http.Request)
}

var _ Handler = (*HandlerImpl)(nil)

type HandlerImpl struct {
	plannerService Service
	logger         *slog.Logger
}

func NewHandlerImpl(plannerService Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{plannerService: plannerService, logger: logger}
}

// ParseRequirements handles POST /requirements/parse, turning free text like
// "5 days in Lisbon with two kids, no seafood" into structured requirements.
func (h *HandlerImpl) ParseRequirements(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PlannerHandler").Start(r.Context(), "ParseRequirements")
	defer span.End()

	l := h.logger.With(slog.String("handler", "ParseRequirements"))

	var req ParseRequirementsRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Input) == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "input must not be empty")
		return
	}

	requirements, err := h.plannerService.ParseRequirements(ctx, req.Input, req.Credentials)
	if err != nil {
		l.ErrorContext(ctx, "Failed to parse requirements", slog.Any("error", err))
		switch {
		case errors.Is(err, types.ErrMissingAPIKey):
			api.ErrorResponse(w, r, http.StatusUnauthorized, "LLM API key is not configured")
		case errors.Is(err, types.ErrMalformedResponse), errors.Is(err, types.ErrInvalidRequirements):
			api.ErrorResponse(w, r, http.StatusUnprocessableEntity, "Could not extract valid trip requirements from the input")
		default:
			api.ErrorResponse(w, r, http.StatusBadGateway, "Requirement parsing failed")
		}
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, requirements)
}
