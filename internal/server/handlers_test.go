package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synthpref/gpref/pkg/models"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	config := DefaultConfig()
	config.EnableMetrics = false

	srv, err := NewServer(config, logrus.New())
	require.NoError(t, err)
	return srv
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestGenerateEndpoint(t *testing.T) {
	srv := newTestServer(t)

	seed := int64(42)
	payload, err := json.Marshal(GenerateRequest{
		Prompts:  []string{"P1"},
		Epsilons: []string{"unbounded"},
		Seed:     &seed,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/generate", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp GenerateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Records, 2)
	require.NotNil(t, resp.Metrics)

	assert.NotEqual(t, resp.Records[0].Winner, resp.Records[0].Loser)
	assert.Equal(t, models.MethodDPO, resp.Records[1].Method)
}

func TestGenerateEndpointRejectsEmptyPrompts(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/generate", bytes.NewReader([]byte(`{"prompts": []}`)))
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateEndpointRejectsBadEpsilon(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/generate",
		bytes.NewReader([]byte(`{"prompts": ["P1"], "epsilons": ["plenty"]}`)))
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec1 := models.PreferenceRecord{
		ID:              "rec-1",
		PromptID:        "gpref-0000",
		Prompt:          "P1",
		Responses:       []string{"A", "B"},
		Preferred:       "A",
		Rejected:        "B",
		Method:          models.MethodPPO,
		Identity:        "clinician",
		Epsilon:         models.EpsilonUnbounded(),
		TransformedFrom: models.TransformedFromOriginal,
		Meta:            models.RecordMeta{Scores: []float64{5, 0}, Generator: "test"},
	}

	payload, err := json.Marshal(MetricsRequest{Records: []models.GKPOEnvelope{rec1.ToGKPO()}})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/metrics", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var report map[string]float64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Zero(t, report["flip_rate"])
	assert.GreaterOrEqual(t, report["avg_kl"], 0.0)
}

func TestMetricsEndpointEmptyDataset(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/metrics", bytes.NewReader([]byte(`{"records": []}`)))
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
