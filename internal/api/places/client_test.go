package places

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-trip-planner/config"
	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	t.Setenv(config.EnvPlacesAPIKey, "test-key")

	cfg := &config.Config{}
	cfg.Places.BaseURL = baseURL
	return NewClient(cfg, config.NewKeyResolver(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSearchText_Success(t *testing.T) {
	var gotQuery map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/place/text", r.URL.Path)
		q := r.URL.Query()
		gotQuery = map[string]string{
			"key":       q.Get("key"),
			"keywords":  q.Get("keywords"),
			"city":      q.Get("city"),
			"citylimit": q.Get("citylimit"),
			"offset":    q.Get("offset"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "1", "info": "OK", "count": "2",
			"pois": [
				{"id": "B001", "name": "Forbidden City", "type": "attraction", "typecode": "110000", "address": "4 Jingshan Front St", "location": "116.397128,39.916527"},
				{"id": "B002", "name": "Palace Museum", "location": "116.396000,39.917000"}
			]
		}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	pois, err := client.SearchText(context.Background(), "Forbidden City", "Beijing", nil)
	require.NoError(t, err)
	require.Len(t, pois, 2)
	assert.Equal(t, "B001", pois[0].ID)

	coord, ok := pois[0].Coordinates()
	require.True(t, ok)
	assert.InDelta(t, 116.397128, coord.Longitude, 1e-6)
	assert.InDelta(t, 39.916527, coord.Latitude, 1e-6)

	assert.Equal(t, "test-key", gotQuery["key"])
	assert.Equal(t, "Forbidden City", gotQuery["keywords"])
	assert.Equal(t, "Beijing", gotQuery["city"])
	assert.Equal(t, "true", gotQuery["citylimit"])
	assert.Equal(t, "10", gotQuery["offset"])
}

func TestSearchText_ProviderErrorYieldsEmptyList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "0", "info": "INVALID_USER_KEY"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	pois, err := client.SearchText(context.Background(), "Anywhere", "Beijing", nil)
	require.NoError(t, err)
	assert.Empty(t, pois)
}

func TestSearchText_TransportFailureYieldsEmptyList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := newTestClient(t, server.URL)
	server.Close() // Connection refused from here on.

	pois, err := client.SearchText(context.Background(), "Anywhere", "Beijing", nil)
	require.NoError(t, err)
	assert.Empty(t, pois)
}

func TestSearchText_MissingKeyIsAnError(t *testing.T) {
	t.Setenv(config.EnvPlacesAPIKey, "")

	cfg := &config.Config{}
	cfg.Places.BaseURL = "http://127.0.0.1:1"
	client := NewClient(cfg, config.NewKeyResolver(), slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := client.SearchText(context.Background(), "Anywhere", "Beijing", nil)
	assert.ErrorIs(t, err, types.ErrMissingAPIKey)
}

func TestSearchText_CachesByRegionAndKeywords(t *testing.T) {
	var requests atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		_, _ = w.Write([]byte(`{"status": "1", "pois": [{"id": "B001", "name": "Forbidden City"}]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	ctx := context.Background()

	_, err := client.SearchText(ctx, "Forbidden City", "Beijing", nil)
	require.NoError(t, err)
	_, err = client.SearchText(ctx, "Forbidden City", "Beijing", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), requests.Load(), "identical query should be served from cache")

	// A different region is a different cache entry.
	_, err = client.SearchText(ctx, "Forbidden City", "Shenyang", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), requests.Load())
}

func TestSearchNearby_Params(t *testing.T) {
	var gotQuery map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/place/around", r.URL.Path)
		q := r.URL.Query()
		gotQuery = map[string]string{
			"location": q.Get("location"),
			"types":    q.Get("types"),
			"radius":   q.Get("radius"),
			"offset":   q.Get("offset"),
			"sortrule": q.Get("sortrule"),
		}
		_, _ = w.Write([]byte(`{"status": "1", "pois": [{"id": "B003", "name": "Noodle House", "distance": "120"}]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	location := types.Coordinate{Longitude: 116.397128, Latitude: 39.916527}
	pois, err := client.SearchNearby(context.Background(), location, NearbyTypeCodes(types.CategoryAttraction), NearbyRadiusMeters, nil)
	require.NoError(t, err)
	require.Len(t, pois, 1)
	assert.Equal(t, "120", pois[0].Distance)

	assert.Equal(t, "116.397128,39.916527", gotQuery["location"])
	assert.Equal(t, "110000|120000", gotQuery["types"])
	assert.Equal(t, "1000", gotQuery["radius"])
	assert.Equal(t, "20", gotQuery["offset"])
	assert.Equal(t, "distance", gotQuery["sortrule"])
}

func TestNearbyTypeCodes(t *testing.T) {
	assert.Equal(t, "110000|120000", NearbyTypeCodes(types.CategoryAttraction))
	assert.Equal(t, "050000", NearbyTypeCodes(types.CategoryRestaurant))
	assert.Equal(t, "080000|090000", NearbyTypeCodes(types.CategoryEntertainment))
	assert.Equal(t, "060000", NearbyTypeCodes(types.CategoryShopping))

	// Unmapped categories fall back to dining plus attractions.
	assert.Equal(t, "050000|110000", NearbyTypeCodes(types.CategoryHotel))
	assert.Equal(t, "050000|110000", NearbyTypeCodes(types.EventCategory("other")))
}
