package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-trip-planner/config"
	"github.com/FACorreiaa/go-trip-planner/internal/api/places"
	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// Service turns a free-text place name into a verified place. The outcome is
// always committed: either the first candidate of a successful lookup, or an
// error wrapping types.ErrNoMatch whose message names the attempted region.
type Service interface {
	Resolve(ctx context.Context, name, region string, creds *config.Credentials) (*types.CandidatePlace, error)
}

// Generic trailing suffix words the model tends to append to real place
// names. At most one is stripped before retrying. The provider serves both
// English and Chinese place names, so both sets are carried.
var fuzzySuffixes = []string{
	" Scenic Area", " Scenic Spot", " Tourist Area", " Park",
	" Night Tour", " Boat Tour", " Sightseeing Tour",
	" Food Street", " Pedestrian Street", " Shopping District", " Plaza", " Square",
	" Memorial Hall", " Museum", " Exhibition Hall",
	" Shop", " Hall",
	"景区", "风景区", "旅游区", "公园",
	"夜游", "游船", "游览",
	"美食街", "步行街", "商圈", "广场",
	"纪念馆", "博物馆", "展览馆",
	"店", "馆",
}

// keywordRunes is the prefix length used by the last-resort keyword search.
const keywordRunes = 4

// ServiceImpl implements the fuzzy-match-with-retry policy. Each retry lookup
// is separated by a deliberate delay: the downstream lookup service enforces
// request-rate limits, so pacing the calls is a hard availability
// requirement, not an optimization.
type ServiceImpl struct {
	places     places.Searcher
	logger     *slog.Logger
	retryDelay time.Duration
}

func NewServiceImpl(placesClient places.Searcher, cfg *config.Config, logger *slog.Logger) *ServiceImpl {
	delay := cfg.Pipeline.RetryDelay
	if delay == 0 {
		delay = 200 * time.Millisecond
	}
	return &ServiceImpl{
		places:     placesClient,
		logger:     logger,
		retryDelay: delay,
	}
}

func (s *ServiceImpl) Resolve(ctx context.Context, name, region string, creds *config.Credentials) (*types.CandidatePlace, error) {
	ctx, span := otel.Tracer("LocationResolver").Start(ctx, "Resolve", trace.WithAttributes(
		attribute.String("place.name", name),
		attribute.String("place.region", region),
	))
	defer span.End()

	// Strategy 1: exact lookup of the raw name.
	pois, err := s.places.SearchText(ctx, name, region, creds)
	if err != nil {
		return nil, err
	}
	if len(pois) > 0 {
		return &pois[0], nil
	}

	// Strategy 2: strip exactly one trailing generic suffix and retry. Only
	// the first matching suffix is tried, even if the shortened name still
	// ends in another known suffix.
	for _, suffix := range fuzzySuffixes {
		if !strings.HasSuffix(name, suffix) {
			continue
		}
		stripped := strings.TrimSpace(strings.TrimSuffix(name, suffix))
		if stripped == "" {
			break
		}
		s.logger.DebugContext(ctx, "Retrying with stripped suffix",
			slog.String("name", name), slog.String("stripped", stripped))

		if err := s.wait(ctx); err != nil {
			return nil, err
		}
		pois, err = s.places.SearchText(ctx, stripped, region, creds)
		if err != nil {
			return nil, err
		}
		if len(pois) > 0 {
			return &pois[0], nil
		}
		break
	}

	// Strategy 3: last-resort keyword search on the first few runes.
	if runes := []rune(name); len(runes) > keywordRunes {
		keyword := string(runes[:keywordRunes])
		s.logger.DebugContext(ctx, "Retrying with keyword prefix",
			slog.String("name", name), slog.String("keyword", keyword))

		if err := s.wait(ctx); err != nil {
			return nil, err
		}
		pois, err = s.places.SearchText(ctx, keyword, region, creds)
		if err != nil {
			return nil, err
		}
		if len(pois) > 0 {
			return &pois[0], nil
		}
	}

	return nil, fmt.Errorf("%w: no place matching %q in region %q after exact and fuzzy lookups",
		types.ErrNoMatch, name, region)
}

// wait pauses between consecutive remote lookups, honoring cancellation.
func (s *ServiceImpl) wait(ctx context.Context) error {
	if s.retryDelay <= 0 {
		return nil
	}
	select {
	case <-time.After(s.retryDelay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsNoMatch reports whether err is the resolver's "exhausted all strategies"
// outcome, as opposed to a configuration failure.
func IsNoMatch(err error) bool {
	return errors.Is(err, types.ErrNoMatch)
}
