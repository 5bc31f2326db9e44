package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseError_CarriesCode(t *testing.T) {
	rec := httptest.NewRecorder()

	ResponseError(rec, http.StatusConflict, "SeatUnavailable", "seats taken", map[string]any{"seatIds": []string{"A2"}})

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["status"])
	assert.Equal(t, "SeatUnavailable", body["code"])
	assert.Equal(t, "seats taken", body["message"])
	assert.NotContains(t, body, "data")
}

func TestResponseSuccess_OmitsCode(t *testing.T) {
	rec := httptest.NewRecorder()

	ResponseSuccess(rec, "success", map[string]int{"n": 1})

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["status"])
	assert.NotContains(t, body, "code")
	assert.Equal(t, map[string]any{"n": float64(1)}, body["data"])
}
