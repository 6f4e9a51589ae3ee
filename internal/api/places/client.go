package places

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/FACorreiaa/go-trip-planner/config"
	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

var _ Searcher = (*Client)(nil)

// Searcher is the places lookup contract. Both searches return an empty list
// (not an error) when the remote service reports zero results or the
// transport fails, so that resolution degrades to "not found" instead of
// aborting a run. A missing credential is the one hard error.
type Searcher interface {
	SearchText(ctx context.Context, keywords, region string, creds *config.Credentials) ([]types.CandidatePlace, error)
	SearchNearby(ctx context.Context, location types.Coordinate, typeCodes string, radius int, creds *config.Credentials) ([]types.CandidatePlace, error)
}

const (
	textSearchLimit   = 10
	nearbySearchLimit = 20

	// NearbyRadiusMeters is the fixed radius for satellite candidate lookups.
	NearbyRadiusMeters = 1000
)

// nearbyTypeCodes maps a primary event's category to the provider's POI
// category codes used when searching for satellite candidates around it.
var nearbyTypeCodes = map[types.EventCategory]string{
	types.CategoryAttraction:    "110000|120000", // tourist attractions | travel services
	types.CategoryRestaurant:    "050000",        // dining
	types.CategoryEntertainment: "080000|090000", // leisure | life services
	types.CategoryShopping:      "060000",        // retail
}

// NearbyTypeCodes returns the category codes to search around a primary event
// of the given category. Unmapped categories fall back to dining+attractions.
func NearbyTypeCodes(category types.EventCategory) string {
	if codes, ok := nearbyTypeCodes[category]; ok {
		return codes
	}
	return "050000|110000"
}

type searchResponse struct {
	Status string                 `json:"status"`
	Info   string                 `json:"info"`
	Count  string                 `json:"count"`
	POIs   []types.CandidatePlace `json:"pois"`
}

// Client talks to an Amap-style place search REST API. Text searches are
// cached briefly because the resolver may retry identical queries across
// events of the same run.
type Client struct {
	baseURL    string
	httpClient *http.Client
	keys       *config.KeyResolver
	cache      *cache.Cache
	logger     *slog.Logger
}

func NewClient(cfg *config.Config, keys *config.KeyResolver, logger *slog.Logger) *Client {
	baseURL := cfg.Places.BaseURL
	if baseURL == "" {
		baseURL = "https://restapi.amap.com/v3"
	}
	timeout := cfg.Places.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	ttl := cfg.Places.CacheTTL
	if ttl == 0 {
		ttl = 5 * time.Minute
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		keys:       keys,
		cache:      cache.New(ttl, 2*ttl),
		logger:     logger,
	}
}

// SearchText performs a keyword search restricted to the given region.
func (c *Client) SearchText(ctx context.Context, keywords, region string, creds *config.Credentials) ([]types.CandidatePlace, error) {
	apiKey := c.keys.PlacesAPIKey(creds)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: %s", types.ErrMissingAPIKey, config.EnvPlacesAPIKey)
	}

	cacheKey := fmt.Sprintf("text:%s:%s", region, keywords)
	if cached, found := c.cache.Get(cacheKey); found {
		return cached.([]types.CandidatePlace), nil
	}

	params := url.Values{}
	params.Set("key", apiKey)
	params.Set("keywords", keywords)
	params.Set("city", region)
	params.Set("citylimit", "true")
	params.Set("offset", fmt.Sprintf("%d", textSearchLimit))

	pois := c.doSearch(ctx, "/place/text", params)
	c.cache.Set(cacheKey, pois, cache.DefaultExpiration)
	return pois, nil
}

// SearchNearby returns up to 20 places around the location, sorted by
// distance, filtered to the given provider category codes.
func (c *Client) SearchNearby(ctx context.Context, location types.Coordinate, typeCodes string, radius int, creds *config.Credentials) ([]types.CandidatePlace, error) {
	apiKey := c.keys.PlacesAPIKey(creds)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: %s", types.ErrMissingAPIKey, config.EnvPlacesAPIKey)
	}

	params := url.Values{}
	params.Set("key", apiKey)
	params.Set("location", location.String())
	params.Set("types", typeCodes)
	params.Set("radius", fmt.Sprintf("%d", radius))
	params.Set("offset", fmt.Sprintf("%d", nearbySearchLimit))
	params.Set("sortrule", "distance")

	return c.doSearch(ctx, "/place/around", params), nil
}

// doSearch executes one lookup. Transport failures and non-success provider
// statuses both collapse to an empty result, logged for diagnostics.
func (c *Client) doSearch(ctx context.Context, path string, params url.Values) []types.CandidatePlace {
	reqURL := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		c.logger.ErrorContext(ctx, "Failed to build place search request", slog.Any("error", err))
		return nil
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "Place search transport failure", slog.String("path", path), slog.Any("error", err))
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.WarnContext(ctx, "Place search returned non-OK status",
			slog.String("path", path), slog.Int("status", resp.StatusCode))
		return nil
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.logger.WarnContext(ctx, "Failed to decode place search response", slog.Any("error", err))
		return nil
	}

	if payload.Status != "1" {
		c.logger.DebugContext(ctx, "Place search reported no results",
			slog.String("path", path), slog.String("info", payload.Info))
		return nil
	}
	return payload.POIs
}
