package server

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/synthpref/gpref/internal/generator"
	"github.com/synthpref/gpref/internal/metrics"
	"github.com/synthpref/gpref/pkg/constants"
	"github.com/synthpref/gpref/pkg/models"
)

// Handlers implements the HTTP API.
type Handlers struct {
	logger    *logrus.Logger
	estimator *metrics.Estimator
	metrics   *serverMetrics
}

// NewHandlers creates the API handlers.
func NewHandlers(logger *logrus.Logger, m *serverMetrics) *Handlers {
	if logger == nil {
		logger = logrus.New()
	}

	return &Handlers{
		logger:    logger,
		estimator: metrics.NewEstimator(logger),
		metrics:   m,
	}
}

// GenerateRequest is the payload of POST /api/v1/generate.
type GenerateRequest struct {
	Prompts   []string `json:"prompts"`
	Responses []string `json:"responses,omitempty"`
	Epsilons  []string `json:"epsilons,omitempty"`
	Seed      *int64   `json:"seed,omitempty"`
}

// GenerateResponse carries the generated dataset and its quality metrics.
type GenerateResponse struct {
	Records []models.GKPOEnvelope `json:"records"`
	Metrics *metrics.Report       `json:"metrics"`
}

// MetricsRequest is the payload of POST /api/v1/metrics.
type MetricsRequest struct {
	Records []models.GKPOEnvelope `json:"records"`
}

// Health reports liveness.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": constants.AppVersion,
	})
}

// Generate builds a dataset for the posted prompts and returns it together
// with its flip-rate and average-KL metrics.
func (h *Handlers) Generate(w http.ResponseWriter, r *http.Request) {
	if h.metrics != nil {
		h.metrics.recordsRequested.Inc()
	}

	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if len(req.Prompts) == 0 {
		h.writeError(w, http.StatusBadRequest, "prompts must not be empty")
		return
	}

	config := generator.DefaultConfig()
	if len(req.Responses) > 0 {
		config.Responses = req.Responses
	}
	if len(req.Epsilons) > 0 {
		sweep := make([]models.Epsilon, 0, len(req.Epsilons))
		for _, raw := range req.Epsilons {
			eps, err := models.ParseEpsilon(raw)
			if err != nil {
				h.writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			sweep = append(sweep, eps)
		}
		config.Epsilons = sweep
	}

	seed := time.Now().UnixNano()
	if req.Seed != nil {
		seed = *req.Seed
	}
	rng := rand.New(rand.NewSource(seed))

	gen := generator.New(config, rng, h.logger)
	dataset, err := gen.Generate(req.Prompts)
	if err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	report, err := h.estimator.Estimate(dataset)
	if err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if h.metrics != nil {
		h.metrics.recordsGenerated.Add(float64(len(dataset)))
	}

	envelopes := make([]models.GKPOEnvelope, len(dataset))
	for i, record := range dataset {
		envelopes[i] = record.ToGKPO()
	}

	h.writeJSON(w, http.StatusOK, GenerateResponse{
		Records: envelopes,
		Metrics: report,
	})
}

// EstimateMetrics computes the quality metrics of a posted dataset.
func (h *Handlers) EstimateMetrics(w http.ResponseWriter, r *http.Request) {
	var req MetricsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	dataset := make([]*models.PreferenceRecord, len(req.Records))
	for i, envelope := range req.Records {
		dataset[i] = envelope.ToRecord()
	}

	report, err := h.estimator.Estimate(dataset)
	if err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, report)
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.WithError(err).Error("Failed to encode response")
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, message string) {
	if h.metrics != nil {
		h.metrics.requestErrors.Inc()
	}
	h.writeJSON(w, status, map[string]string{"error": message})
}
