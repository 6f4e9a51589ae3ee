package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

// Stage names emitted over the progress stream, in order.
const (
	StageGenerating = "generating"
	StageValidating = "validating"
	StageEnriching  = "enriching"
	StageFinalizing = "finalizing"
	StageComplete   = "complete"
	StageError      = "error"
)

// Progress values per stage. They strictly increase over a successful run.
const (
	ProgressGenerating = 10
	ProgressValidating = 40
	ProgressEnriching  = 70
	ProgressFinalizing = 90
	ProgressComplete   = 100
)

// StreamEvent is one progress update of a generation run. Only the final
// complete event carries Data; only the terminal error event carries Error.
type StreamEvent struct {
	Stage     string           `json:"stage"`
	Progress  int              `json:"progress"`
	Data      *types.Itinerary `json:"data,omitempty"`
	Error     string           `json:"error,omitempty"`
	EventID   string           `json:"event_id"`
	Timestamp time.Time        `json:"timestamp"`
}

// StreamingResponse wraps the progress channel of one run. The channel is
// forward-only, finite, and consumed exactly once; it is closed after the
// terminal complete or error event.
type StreamingResponse struct {
	RunID  uuid.UUID
	Stream <-chan StreamEvent
	Cancel context.CancelFunc
}

// sendEvent delivers one event unless the consumer went away. A slow consumer
// gets a bounded grace period before the event is dropped.
func (s *ServiceImpl) sendEvent(ctx context.Context, ch chan<- StreamEvent, event StreamEvent) (sent bool) {
	if event.EventID == "" {
		event.EventID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case <-ctx.Done():
		s.logger.WarnContext(ctx, "Context cancelled, not sending stream event", slog.String("stage", event.Stage))
		return false
	default:
		select {
		case ch <- event:
			return true
		case <-ctx.Done():
			s.logger.WarnContext(ctx, "Context cancelled while sending stream event", slog.String("stage", event.Stage))
			return false
		case <-time.After(2 * time.Second):
			s.logger.WarnContext(ctx, "Dropped stream event due to slow consumer", slog.String("stage", event.Stage))
			return false
		}
	}
}
