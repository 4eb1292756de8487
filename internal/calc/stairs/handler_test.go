package stairs

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"Stairs/internal/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler() *Handler {
	return &Handler{Calc: newTestCalculator(catalog.FallbackEntries())}
}

func TestHandler_Calculate(t *testing.T) {
	h := newTestHandler()
	body := `{"stair_type":"wood","config":"straight","height_mm":2800,"step_width_mm":1000}`
	req := httptest.NewRequest(http.MethodPost, "/api/tools/stairs/calc", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.Calculate(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var res Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 13, res.Layout.StepsCount)
	assert.Len(t, res.ID, 36)
	assert.Equal(t, "69972", res.TotalCost.String())
	assert.Len(t, res.Materials, 9)
}

func TestHandler_CalculateRejectsOutOfRange(t *testing.T) {
	h := newTestHandler()
	body := `{"stair_type":"wood","config":"straight","height_mm":600,"step_width_mm":1000}`
	rec := httptest.NewRecorder()

	h.Calculate(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "height_mm")
}

func TestHandler_CalculateRejectsBadJSON(t *testing.T) {
	h := newTestHandler()
	rec := httptest.NewRecorder()

	h.Calculate(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_Batch(t *testing.T) {
	h := newTestHandler()
	body := `{"items":[
		{"stair_type":"wood","config":"straight","height_mm":2800,"step_width_mm":1000},
		{"stair_type":"modular","config":"l_shape","height_mm":3000,"step_width_mm":900}
	]}`
	rec := httptest.NewRecorder()

	h.Batch(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	var out BatchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out.Results, 2)
	assert.NotNil(t, out.Results[0].CutPlan)
	assert.NotEmpty(t, out.Results[0].ID)
	assert.NotEqual(t, out.Results[0].ID, out.Results[1].ID)
	assert.Nil(t, out.Results[1].CutPlan)
}

func TestHandler_BatchErrors(t *testing.T) {
	h := newTestHandler()

	rec := httptest.NewRecorder()
	h.Batch(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"items":[]}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	body := `{"items":[{"stair_type":"wood","config":"zigzag","height_mm":2800,"step_width_mm":1000}]}`
	h.Batch(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "item 0")
}
