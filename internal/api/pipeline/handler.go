package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	appMiddleware "github.com/FACorreiaa/go-trip-planner/app/middleware"
	"github.com/FACorreiaa/go-trip-planner/config"
	"github.com/FACorreiaa/go-trip-planner/internal/api"
	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

// GenerateRequest is the body of a streaming generation call. Credentials is
// the optional per-call override bundle; it beats runtime-configured keys and
// environment defaults for every remote call of this run.
type GenerateRequest struct {
	Requirements types.TravelRequirements `json:"requirements"`
	Credentials  *config.Credentials      `json:"credentials,omitempty"`
}

// ItinerarySaver persists a finished itinerary on behalf of an
// authenticated caller. Satisfied by the itinerary service.
type ItinerarySaver interface {
	SaveItinerary(ctx context.Context, itinerary *types.Itinerary) (uuid.UUID, error)
}

type StreamingHandler struct {
	pipelineService Service
	itinerarySaver  ItinerarySaver
	logger          *slog.Logger
}

func NewStreamingHandler(pipelineService Service, itinerarySaver ItinerarySaver, logger *slog.Logger) *StreamingHandler {
	return &StreamingHandler{
		pipelineService: pipelineService,
		itinerarySaver:  itinerarySaver,
		logger:          logger,
	}
}

// GenerateStream runs the generation pipeline and forwards its progress
// events verbatim as server-sent events. Authentication is optional: when a
// user is present in the context, the itinerary is owned by them.
func (h *StreamingHandler) GenerateStream(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	ctx := r.Context()

	var ownerID *uuid.UUID
	if userIDStr, ok := appMiddleware.GetUserIDFromContext(ctx); ok && userIDStr != "" {
		if parsed, err := uuid.Parse(userIDStr); err == nil {
			ownerID = &parsed
		}
	}

	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeSSEError(w, "Invalid request body")
		return
	}

	streamResp, err := h.pipelineService.Generate(ctx, req.Requirements, ownerID, req.Credentials)
	if err != nil {
		h.writeSSEError(w, fmt.Sprintf("Failed to start generation: %v", err))
		return
	}
	defer streamResp.Cancel()

	h.logger.InfoContext(ctx, "Started itinerary generation stream",
		slog.String("run_id", streamResp.RunID.String()),
		slog.String("destination", req.Requirements.Destination))

	for {
		select {
		case event, ok := <-streamResp.Stream:
			if !ok {
				h.logger.InfoContext(ctx, "Generation stream closed",
					slog.String("run_id", streamResp.RunID.String()))
				return
			}

			if event.Stage == StageComplete && event.Data != nil && ownerID != nil && h.itinerarySaver != nil {
				if savedID, err := h.itinerarySaver.SaveItinerary(ctx, event.Data); err != nil {
					h.logger.WarnContext(ctx, "Failed to persist generated itinerary",
						slog.String("run_id", streamResp.RunID.String()),
						slog.Any("error", err))
				} else {
					event.Data.ID = savedID
				}
			}

			data, err := json.Marshal(event)
			if err != nil {
				h.logger.ErrorContext(ctx, "Failed to marshal stream event", slog.Any("error", err))
				continue
			}

			fmt.Fprintf(w, "id: %s\n", event.EventID)
			fmt.Fprintf(w, "event: %s\n", event.Stage)
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()

		case <-ctx.Done():
			h.logger.InfoContext(ctx, "Client disconnected mid-generation",
				slog.String("run_id", streamResp.RunID.String()))
			return
		}
	}
}

func (h *StreamingHandler) writeSSEError(w http.ResponseWriter, errorMsg string) {
	event := StreamEvent{
		Stage:     StageError,
		Progress:  0,
		Error:     errorMsg,
		Timestamp: time.Now(),
		EventID:   uuid.New().String(),
	}
	data, _ := json.Marshal(event)
	fmt.Fprintf(w, "id: %s\n", event.EventID)
	fmt.Fprintf(w, "event: %s\n", event.Stage)
	fmt.Fprintf(w, "data: %s\n\n", data)
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
}
