package pipeline

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-trip-planner/config"
	"github.com/google/uuid"

	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

// collectEvents drains a run's stream until the channel closes.
func collectEvents(t *testing.T, resp *StreamingResponse) []StreamEvent {
	t.Helper()
	var events []StreamEvent
	timeout := time.After(5 * time.Second)
	for {
		select {
		case event, ok := <-resp.Stream:
			if !ok {
				return events
			}
			events = append(events, event)
		case <-timeout:
			t.Fatal("stream did not close in time")
		}
	}
}

func TestGenerate_RejectsInvalidRequirements(t *testing.T) {
	svc := newTestService(new(MockPlannerService), new(MockResolverService), new(MockSearcher))

	_, err := svc.Generate(context.Background(), types.TravelRequirements{Destination: "", Days: 3}, nil, nil)
	assert.ErrorIs(t, err, types.ErrInvalidRequirements)

	_, err = svc.Generate(context.Background(), types.TravelRequirements{Destination: "Beijing", Days: 0}, nil, nil)
	assert.ErrorIs(t, err, types.ErrInvalidRequirements)
}

func TestGenerate_SuccessfulRunEmitsStagesInOrder(t *testing.T) {
	plannerSvc := new(MockPlannerService)
	resolverSvc := new(MockResolverService)
	searcher := new(MockSearcher)
	svc := newTestService(plannerSvc, resolverSvc, searcher)

	req := types.TravelRequirements{Destination: "Beijing", Days: 1, Travelers: 2}
	raw := &types.RawItinerary{
		Days: []types.RawDay{
			{Events: []types.RawEvent{{Category: types.CategoryAttraction, Name: "Forbidden City"}}},
		},
		Transportation: &types.TravelAdvisory{Type: "metro", Details: "Line 1"},
	}

	plannerSvc.On("Draft", mock.Anything, req, (*config.Credentials)(nil)).Return(raw, nil).Once()
	resolverSvc.On("Resolve", mock.Anything, "Forbidden City", "Beijing", (*config.Credentials)(nil)).
		Return(&types.CandidatePlace{ID: "B001", Name: "Forbidden City", Location: "116.397128,39.916527"}, nil).Once()
	searcher.On("SearchNearby", mock.Anything, mock.Anything, mock.Anything, mock.Anything, (*config.Credentials)(nil)).
		Return([]types.CandidatePlace{}, nil).Once()

	ownerID := uuid.New()
	resp, err := svc.Generate(context.Background(), req, &ownerID, nil)
	require.NoError(t, err)
	defer resp.Cancel()

	events := collectEvents(t, resp)
	require.Len(t, events, 5)

	wantStages := []string{StageGenerating, StageValidating, StageEnriching, StageFinalizing, StageComplete}
	wantProgress := []int{ProgressGenerating, ProgressValidating, ProgressEnriching, ProgressFinalizing, ProgressComplete}
	for i, event := range events {
		assert.Equal(t, wantStages[i], event.Stage)
		assert.Equal(t, wantProgress[i], event.Progress)
		assert.NotEmpty(t, event.EventID)
		assert.False(t, event.Timestamp.IsZero())
		if event.Stage != StageComplete {
			assert.Nil(t, event.Data, "only the complete event carries data")
		}
	}

	final := events[len(events)-1]
	require.NotNil(t, final.Data)
	assert.Equal(t, "Beijing 1-Day Trip", final.Data.Title)
	assert.Equal(t, types.StatusDraft, final.Data.Status)
	assert.Equal(t, 2, final.Data.Travelers)
	require.NotNil(t, final.Data.UserID)
	assert.Equal(t, ownerID, *final.Data.UserID)
	require.NotNil(t, final.Data.Transportation)
	assert.Equal(t, "metro", final.Data.Transportation.Type)
	require.Len(t, final.Data.Days, 1)
	assert.Equal(t, "Forbidden City", final.Data.Days[0].Events[0].Name)
}

func TestGenerate_DrafterFailureEmitsTerminalErrorEvent(t *testing.T) {
	plannerSvc := new(MockPlannerService)
	resolverSvc := new(MockResolverService)
	searcher := new(MockSearcher)
	svc := newTestService(plannerSvc, resolverSvc, searcher)

	req := types.TravelRequirements{Destination: "Beijing", Days: 1}
	plannerSvc.On("Draft", mock.Anything, req, (*config.Credentials)(nil)).
		Return(nil, fmt.Errorf("%w: upstream 503", types.ErrGenerationFailed)).Once()

	resp, err := svc.Generate(context.Background(), req, nil, nil)
	require.NoError(t, err)
	defer resp.Cancel()

	events := collectEvents(t, resp)
	require.Len(t, events, 2)
	assert.Equal(t, StageGenerating, events[0].Stage)

	terminal := events[1]
	assert.Equal(t, StageError, terminal.Stage)
	assert.Equal(t, 0, terminal.Progress)
	assert.Contains(t, terminal.Error, "drafting failed")
	assert.Nil(t, terminal.Data)

	resolverSvc.AssertNotCalled(t, "Resolve")
	searcher.AssertNotCalled(t, "SearchNearby")
}

func TestGenerate_ValidationFailureEmitsTerminalErrorEvent(t *testing.T) {
	plannerSvc := new(MockPlannerService)
	resolverSvc := new(MockResolverService)
	searcher := new(MockSearcher)
	svc := newTestService(plannerSvc, resolverSvc, searcher)

	req := types.TravelRequirements{Destination: "Beijing", Days: 1}
	raw := &types.RawItinerary{
		Days: []types.RawDay{
			{Events: []types.RawEvent{{Category: types.CategoryAttraction, Name: "Forbidden City"}}},
		},
	}
	plannerSvc.On("Draft", mock.Anything, req, (*config.Credentials)(nil)).Return(raw, nil).Once()
	resolverSvc.On("Resolve", mock.Anything, mock.Anything, mock.Anything, (*config.Credentials)(nil)).
		Return(nil, types.ErrMissingAPIKey).Once()

	resp, err := svc.Generate(context.Background(), req, nil, nil)
	require.NoError(t, err)
	defer resp.Cancel()

	events := collectEvents(t, resp)
	require.Len(t, events, 3)
	assert.Equal(t, StageGenerating, events[0].Stage)
	assert.Equal(t, StageValidating, events[1].Stage)
	assert.Equal(t, StageError, events[2].Stage)
	assert.Contains(t, events[2].Error, "validation failed")
}

func TestGenerate_CancelStopsTheRun(t *testing.T) {
	plannerSvc := new(MockPlannerService)
	resolverSvc := new(MockResolverService)
	searcher := new(MockSearcher)
	svc := newTestService(plannerSvc, resolverSvc, searcher)

	req := types.TravelRequirements{Destination: "Beijing", Days: 1}
	block := make(chan struct{})
	plannerSvc.On("Draft", mock.Anything, req, (*config.Credentials)(nil)).
		Run(func(args mock.Arguments) { <-block }).
		Return(nil, context.Canceled)

	resp, err := svc.Generate(context.Background(), req, nil, nil)
	require.NoError(t, err)

	// First event arrives, then the consumer walks away.
	first := <-resp.Stream
	assert.Equal(t, StageGenerating, first.Stage)
	resp.Cancel()
	close(block)

	// The channel still closes; whatever trailing event may arrive is
	// terminal.
	timeout := time.After(5 * time.Second)
	for {
		select {
		case _, ok := <-resp.Stream:
			if !ok {
				return
			}
		case <-timeout:
			t.Fatal("stream did not close after cancel")
		}
	}
}
