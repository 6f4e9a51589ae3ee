package pipeline

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/FACorreiaa/go-trip-planner/config"
	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

type MockPlannerService struct {
	mock.Mock
}

func (m *MockPlannerService) Draft(ctx context.Context, req types.TravelRequirements, creds *config.Credentials) (*types.RawItinerary, error) {
	args := m.Called(ctx, req, creds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RawItinerary), args.Error(1)
}

func (m *MockPlannerService) SelectSatellites(ctx context.Context, primary types.Event, candidates []types.CandidatePlace, creds *config.Credentials) ([]string, error) {
	args := m.Called(ctx, primary, candidates, creds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockPlannerService) ParseRequirements(ctx context.Context, input string, creds *config.Credentials) (*types.TravelRequirements, error) {
	args := m.Called(ctx, input, creds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.TravelRequirements), args.Error(1)
}

type MockResolverService struct {
	mock.Mock
}

func (m *MockResolverService) Resolve(ctx context.Context, name, region string, creds *config.Credentials) (*types.CandidatePlace, error) {
	args := m.Called(ctx, name, region, creds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.CandidatePlace), args.Error(1)
}

type MockSearcher struct {
	mock.Mock
}

func (m *MockSearcher) SearchText(ctx context.Context, keywords, region string, creds *config.Credentials) ([]types.CandidatePlace, error) {
	args := m.Called(ctx, keywords, region, creds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.CandidatePlace), args.Error(1)
}

func (m *MockSearcher) SearchNearby(ctx context.Context, location types.Coordinate, typeCodes string, radius int, creds *config.Credentials) ([]types.CandidatePlace, error) {
	args := m.Called(ctx, location, typeCodes, radius, creds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.CandidatePlace), args.Error(1)
}

// newTestService wires a pipeline with no lookup pacing so tests run fast.
func newTestService(plannerSvc *MockPlannerService, resolverSvc *MockResolverService, searcher *MockSearcher) *ServiceImpl {
	return &ServiceImpl{
		planner:      plannerSvc,
		resolver:     resolverSvc,
		places:       searcher,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		stageTimeout: time.Minute,
		lookupDelay:  0,
	}
}
