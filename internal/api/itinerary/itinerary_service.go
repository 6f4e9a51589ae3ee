package itinerary

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// Service defines the business logic contract for saved itineraries.
type Service interface {
	SaveItinerary(ctx context.Context, itinerary *types.Itinerary) (uuid.UUID, error)
	GetItinerary(ctx context.Context, itineraryID, userID uuid.UUID) (*types.Itinerary, error)
	GetItineraries(ctx context.Context, userID uuid.UUID, page, pageSize int) (*PaginatedItinerariesResponse, error)
	UpdateItineraryStatus(ctx context.Context, itineraryID, userID uuid.UUID, status types.ItineraryStatus) error
	DeleteItinerary(ctx context.Context, itineraryID, userID uuid.UUID) error
}

type PaginatedItinerariesResponse struct {
	Itineraries  []types.Itinerary `json:"itineraries"`
	TotalRecords int               `json:"total_records"`
	Page         int               `json:"page"`
	PageSize     int               `json:"page_size"`
}

type ServiceImpl struct {
	logger              *slog.Logger
	itineraryRepository Repository
}

func NewServiceImpl(itineraryRepository Repository, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:              logger,
		itineraryRepository: itineraryRepository,
	}
}

func (s *ServiceImpl) SaveItinerary(ctx context.Context, itinerary *types.Itinerary) (uuid.UUID, error) {
	id, err := s.itineraryRepository.SaveItinerary(ctx, itinerary)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository failed to save itinerary", slog.Any("error", err))
		return uuid.Nil, fmt.Errorf("failed to save itinerary: %w", err)
	}
	return id, nil
}

func (s *ServiceImpl) GetItinerary(ctx context.Context, itineraryID, userID uuid.UUID) (*types.Itinerary, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "GetItinerary", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
	))
	defer span.End()

	itinerary, err := s.itineraryRepository.GetItinerary(ctx, itineraryID, userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository failed to get itinerary", slog.Any("error", err))
		span.RecordError(err)
		return nil, err
	}
	span.SetStatus(codes.Ok, "Itinerary retrieved")
	return itinerary, nil
}

func (s *ServiceImpl) GetItineraries(ctx context.Context, userID uuid.UUID, page, pageSize int) (*PaginatedItinerariesResponse, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "GetItineraries", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
		attribute.Int("page", page),
		attribute.Int("page_size", pageSize),
	))
	defer span.End()

	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}

	itineraries, totalRecords, err := s.itineraryRepository.GetItinerariesByUser(ctx, userID, page, pageSize)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository failed to list itineraries", slog.Any("error", err))
		span.RecordError(err)
		return nil, fmt.Errorf("failed to retrieve itineraries: %w", err)
	}

	span.SetAttributes(attribute.Int("itineraries.count", len(itineraries)))
	span.SetStatus(codes.Ok, "Itineraries retrieved")
	return &PaginatedItinerariesResponse{
		Itineraries:  itineraries,
		TotalRecords: totalRecords,
		Page:         page,
		PageSize:     pageSize,
	}, nil
}

func (s *ServiceImpl) UpdateItineraryStatus(ctx context.Context, itineraryID, userID uuid.UUID, status types.ItineraryStatus) error {
	switch status {
	case types.StatusDraft, types.StatusConfirmed, types.StatusCompleted:
	default:
		return fmt.Errorf("invalid itinerary status %q", status)
	}
	if err := s.itineraryRepository.UpdateItineraryStatus(ctx, itineraryID, userID, status); err != nil {
		s.logger.ErrorContext(ctx, "Repository failed to update itinerary status", slog.Any("error", err))
		return err
	}
	return nil
}

func (s *ServiceImpl) DeleteItinerary(ctx context.Context, itineraryID, userID uuid.UUID) error {
	if err := s.itineraryRepository.DeleteItinerary(ctx, itineraryID, userID); err != nil {
		s.logger.ErrorContext(ctx, "Repository failed to delete itinerary", slog.Any("error", err))
		return err
	}
	return nil
}
