package itinerary

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	appMiddleware "github.com/FACorreiaa/go-trip-planner/app/middleware"
	"github.com/FACorreiaa/go-trip-planner/internal/api"
	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	GetItinerary(w http.ResponseWriter, r *http.Request)
	GetItineraries(w http.ResponseWriter, r *http.Request)
	UpdateItineraryStatus(w http.ResponseWriter, r *http.Request)
	DeleteItinerary(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	itineraryService Service
	logger           *slog.Logger
}

func NewHandlerImpl(itineraryService Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		itineraryService: itineraryService,
		logger:           logger,
	}
}

func (h *HandlerImpl) GetItinerary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "GetItinerary"))

	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	itineraryID, err := uuid.Parse(chi.URLParam(r, "itineraryID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid itinerary ID format")
		return
	}

	itinerary, err := h.itineraryService.GetItinerary(ctx, itineraryID, userID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to get itinerary", slog.Any("error", err))
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Itinerary not found")
		} else {
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to retrieve itinerary")
		}
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, itinerary)
}

func (h *HandlerImpl) GetItineraries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "GetItineraries"))

	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))

	response, err := h.itineraryService.GetItineraries(ctx, userID, page, pageSize)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list itineraries", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to retrieve itineraries")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, response)
}

func (h *HandlerImpl) UpdateItineraryStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "UpdateItineraryStatus"))

	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	itineraryID, err := uuid.Parse(chi.URLParam(r, "itineraryID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid itinerary ID format")
		return
	}

	var body struct {
		Status types.ItineraryStatus `json:"status"`
	}
	if err := api.DecodeJSONBody(w, r, &body); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.itineraryService.UpdateItineraryStatus(ctx, itineraryID, userID, body.Status); err != nil {
		l.ErrorContext(ctx, "Failed to update itinerary status", slog.Any("error", err))
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Itinerary not found")
		} else {
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to update itinerary")
		}
		return
	}
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}

func (h *HandlerImpl) DeleteItinerary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "DeleteItinerary"))

	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	itineraryID, err := uuid.Parse(chi.URLParam(r, "itineraryID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid itinerary ID format")
		return
	}

	if err := h.itineraryService.DeleteItinerary(ctx, itineraryID, userID); err != nil {
		l.ErrorContext(ctx, "Failed to delete itinerary", slog.Any("error", err))
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Itinerary not found")
		} else {
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to delete itinerary")
		}
		return
	}
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}

// authenticatedUser pulls the user set by the Authenticate middleware.
func authenticatedUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userIDStr, ok := appMiddleware.GetUserIDFromContext(r.Context())
	if !ok || userIDStr == "" {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid user ID format")
		return uuid.Nil, false
	}
	return userID, true
}
