package builder

import (
	"sort"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/synthpref/gpref/pkg/constants"
	"github.com/synthpref/gpref/pkg/errors"
	"github.com/synthpref/gpref/pkg/interfaces"
	"github.com/synthpref/gpref/pkg/models"
)

// Builder assembles preference records: it scores each candidate response
// with the reward simulator, noises each score independently under the
// request's privacy budget, and selects the preferred/rejected pair from the
// noised ranking.
type Builder struct {
	scorer interfaces.Scorer
	noise  interfaces.NoiseMechanism
	logger *logrus.Logger
}

// NewBuilder creates a new record builder.
func NewBuilder(scorer interfaces.Scorer, noise interfaces.NoiseMechanism, logger *logrus.Logger) *Builder {
	if logger == nil {
		logger = logrus.New()
	}

	return &Builder{
		scorer: scorer,
		noise:  noise,
		logger: logger,
	}
}

// Build constructs a fresh PreferenceRecord for the request.
//
// The ranking sort is stable: ties keep original input order. Preferred is
// the response with the highest noised score, rejected the lowest.
// meta.scores holds the noised scores in original response order, not sorted
// order. A single-response request produces a record whose preferred and
// rejected collide; the validator rejects it downstream.
func (b *Builder) Build(req *interfaces.BuildRequest) (*models.PreferenceRecord, error) {
	if req == nil {
		return nil, errors.NewGenerationError(errors.CodeGenerationFailed, "build request is nil")
	}

	if len(req.Responses) == 0 {
		return nil, errors.WrapError(errors.ErrEmptyResponses, errors.ErrorTypeGeneration,
			errors.CodeEmptyResponses, "cannot build a record without candidate responses").
			WithContext("prompt_id", req.PromptID)
	}

	noised := make([]float64, len(req.Responses))
	for i, response := range req.Responses {
		raw := b.scorer.Score(req.Prompt, response)
		noised[i] = b.noise.Perturb(raw, req.Epsilon)
	}

	order := make([]int, len(req.Responses))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return noised[order[i]] > noised[order[j]]
	})

	record := &models.PreferenceRecord{
		ID:              uuid.NewString(),
		PromptID:        req.PromptID,
		Prompt:          req.Prompt,
		Responses:       req.Responses,
		Preferred:       req.Responses[order[0]],
		Rejected:        req.Responses[order[len(order)-1]],
		Method:          req.Method,
		Identity:        req.Identity,
		Epsilon:         req.Epsilon,
		TransformedFrom: req.TransformedFrom,
		Meta: models.RecordMeta{
			Scores:    noised,
			Generator: constants.GeneratorVersion,
		},
	}

	b.logger.WithFields(logrus.Fields{
		"record_id": record.ID,
		"prompt_id": record.PromptID,
		"method":    record.Method,
		"epsilon":   record.Epsilon.String(),
	}).Debug("Built preference record")

	return record, nil
}
