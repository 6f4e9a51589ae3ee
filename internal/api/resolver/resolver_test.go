package resolver

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-trip-planner/config"
	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

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

// newTestService builds a resolver with no pacing delay so retry paths run
// instantly under test.
func newTestService(searcher *MockSearcher) *ServiceImpl {
	return &ServiceImpl{
		places:     searcher,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		retryDelay: 0,
	}
}

func TestResolve_ExactMatchShortCircuits(t *testing.T) {
	ctx := context.Background()
	searcher := new(MockSearcher)
	svc := newTestService(searcher)

	want := types.CandidatePlace{ID: "B001", Name: "Forbidden City", Location: "116.397128,39.916527"}
	searcher.On("SearchText", mock.Anything, "Forbidden City", "Beijing", (*config.Credentials)(nil)).
		Return([]types.CandidatePlace{want, {ID: "B002", Name: "Palace Museum Shop"}}, nil).Once()

	got, err := svc.Resolve(ctx, "Forbidden City", "Beijing", nil)
	require.NoError(t, err)
	assert.Equal(t, "B001", got.ID)

	// The first candidate wins and no fuzzy retry happens.
	searcher.AssertNumberOfCalls(t, "SearchText", 1)
}

func TestResolve_StripsOneTrailingSuffix(t *testing.T) {
	ctx := context.Background()
	searcher := new(MockSearcher)
	svc := newTestService(searcher)

	searcher.On("SearchText", mock.Anything, "Qinhuai River Night Tour", "Nanjing", (*config.Credentials)(nil)).
		Return([]types.CandidatePlace{}, nil).Once()
	searcher.On("SearchText", mock.Anything, "Qinhuai River", "Nanjing", (*config.Credentials)(nil)).
		Return([]types.CandidatePlace{{ID: "N001", Name: "Qinhuai River"}}, nil).Once()

	got, err := svc.Resolve(ctx, "Qinhuai River Night Tour", "Nanjing", nil)
	require.NoError(t, err)
	assert.Equal(t, "N001", got.ID)
	searcher.AssertNumberOfCalls(t, "SearchText", 2)
}

func TestResolve_KeywordPrefixFallback(t *testing.T) {
	ctx := context.Background()
	searcher := new(MockSearcher)
	svc := newTestService(searcher)

	// Exact and suffix-stripped lookups both miss; the first four runes of
	// the original name find the place.
	searcher.On("SearchText", mock.Anything, "夫子庙步行街", "南京", (*config.Credentials)(nil)).
		Return([]types.CandidatePlace{}, nil).Once()
	searcher.On("SearchText", mock.Anything, "夫子庙", "南京", (*config.Credentials)(nil)).
		Return([]types.CandidatePlace{}, nil).Once()
	searcher.On("SearchText", mock.Anything, "夫子庙步", "南京", (*config.Credentials)(nil)).
		Return([]types.CandidatePlace{{ID: "N002", Name: "夫子庙"}}, nil).Once()

	got, err := svc.Resolve(ctx, "夫子庙步行街", "南京", nil)
	require.NoError(t, err)
	assert.Equal(t, "N002", got.ID)
	searcher.AssertExpectations(t)
}

func TestResolve_OnlyFirstMatchingSuffixTried(t *testing.T) {
	ctx := context.Background()
	searcher := new(MockSearcher)
	svc := newTestService(searcher)

	// " Scenic Area" is stripped; the remaining " Park" suffix is not
	// stripped in a second round. The keyword fallback still runs.
	searcher.On("SearchText", mock.Anything, "Riverside Park Scenic Area", "Chengdu", (*config.Credentials)(nil)).
		Return([]types.CandidatePlace{}, nil).Once()
	searcher.On("SearchText", mock.Anything, "Riverside Park", "Chengdu", (*config.Credentials)(nil)).
		Return([]types.CandidatePlace{}, nil).Once()
	searcher.On("SearchText", mock.Anything, "Rive", "Chengdu", (*config.Credentials)(nil)).
		Return([]types.CandidatePlace{}, nil).Once()

	_, err := svc.Resolve(ctx, "Riverside Park Scenic Area", "Chengdu", nil)
	assert.ErrorIs(t, err, types.ErrNoMatch)
	assert.True(t, IsNoMatch(err))
	searcher.AssertNumberOfCalls(t, "SearchText", 3)
}

func TestResolve_ShortNameSkipsKeywordFallback(t *testing.T) {
	ctx := context.Background()
	searcher := new(MockSearcher)
	svc := newTestService(searcher)

	searcher.On("SearchText", mock.Anything, "Home", "Oslo", (*config.Credentials)(nil)).
		Return([]types.CandidatePlace{}, nil).Once()

	_, err := svc.Resolve(ctx, "Home", "Oslo", nil)
	assert.ErrorIs(t, err, types.ErrNoMatch)
	searcher.AssertNumberOfCalls(t, "SearchText", 1)
}

func TestResolve_NoMatchNamesPlaceAndRegion(t *testing.T) {
	ctx := context.Background()
	searcher := new(MockSearcher)
	svc := newTestService(searcher)

	searcher.On("SearchText", mock.Anything, mock.Anything, mock.Anything, (*config.Credentials)(nil)).
		Return([]types.CandidatePlace{}, nil)

	_, err := svc.Resolve(ctx, "Atlantis Resort", "Porto", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Atlantis Resort")
	assert.Contains(t, err.Error(), "Porto")
}

func TestResolve_CredentialErrorPropagates(t *testing.T) {
	ctx := context.Background()
	searcher := new(MockSearcher)
	svc := newTestService(searcher)

	searcher.On("SearchText", mock.Anything, mock.Anything, mock.Anything, (*config.Credentials)(nil)).
		Return(nil, fmt.Errorf("%w: AMAP_WEB_API_KEY", types.ErrMissingAPIKey)).Once()

	_, err := svc.Resolve(ctx, "Forbidden City", "Beijing", nil)
	assert.ErrorIs(t, err, types.ErrMissingAPIKey)
	assert.False(t, IsNoMatch(err))
	searcher.AssertNumberOfCalls(t, "SearchText", 1)
}
