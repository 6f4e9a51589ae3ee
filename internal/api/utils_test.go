package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorResponse(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/test", nil)

	ErrorResponse(w, r, http.StatusNotFound, "Itinerary not found")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Itinerary not found", body["error"])
}

func TestWriteJSONResponse_NoContentHasNoBody(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodDelete, "/test", nil)

	WriteJSONResponse(w, r, http.StatusNoContent, nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.Bytes())
}

func TestDecodeJSONBody(t *testing.T) {
	type payload struct {
		Destination string `json:"destination"`
		Days        int    `json:"days"`
	}

	decode := func(body string) (payload, error) {
		var dst payload
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
		return dst, DecodeJSONBody(w, r, &dst)
	}

	t.Run("valid", func(t *testing.T) {
		dst, err := decode(`{"destination":"Beijing","days":3}`)
		require.NoError(t, err)
		assert.Equal(t, "Beijing", dst.Destination)
		assert.Equal(t, 3, dst.Days)
	})

	t.Run("empty body", func(t *testing.T) {
		_, err := decode("")
		assert.EqualError(t, err, "body must not be empty")
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := decode(`{"destination":`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "badly-formed JSON")
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := decode(`{"destinatoin":"Beijing"}`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown key "destinatoin"`)
	})

	t.Run("wrong type", func(t *testing.T) {
		_, err := decode(`{"days":"three"}`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `incorrect JSON type for field "days"`)
	})

	t.Run("trailing data", func(t *testing.T) {
		_, err := decode(`{"days":1}{"days":2}`)
		assert.EqualError(t, err, "body must only contain a single JSON value")
	})
}
