package builder

import (
	"math/rand"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synthpref/gpref/internal/privacy"
	"github.com/synthpref/gpref/internal/reward"
	"github.com/synthpref/gpref/internal/validation"
	"github.com/synthpref/gpref/pkg/constants"
	"github.com/synthpref/gpref/pkg/interfaces"
	"github.com/synthpref/gpref/pkg/models"
)

func newTestBuilder(seed int64) *Builder {
	rng := rand.New(rand.NewSource(seed))
	return NewBuilder(reward.NewLengthRatioScorer(), privacy.NewLaplaceMechanism(rng), logrus.New())
}

func baseRequest() *interfaces.BuildRequest {
	return &interfaces.BuildRequest{
		PromptID:        "gpref-0000",
		Prompt:          "P1",
		Responses:       []string{"short", "a medium reply", "the longest reply of them all"},
		Method:          models.MethodPPO,
		Identity:        "clinician",
		Epsilon:         models.EpsilonUnbounded(),
		TransformedFrom: models.TransformedFromOriginal,
	}
}

func TestBuildDeterministicAtUnboundedEpsilon(t *testing.T) {
	b := newTestBuilder(1)
	req := baseRequest()

	// Without noise the length-ratio scorer always prefers the longest
	// response and rejects the shortest.
	for i := 0; i < 5; i++ {
		record, err := b.Build(req)
		require.NoError(t, err)
		assert.Equal(t, "the longest reply of them all", record.Preferred)
		assert.Equal(t, "short", record.Rejected)
	}
}

func TestBuildScoresInOriginalOrder(t *testing.T) {
	b := newTestBuilder(1)
	req := baseRequest()

	record, err := b.Build(req)
	require.NoError(t, err)

	require.Len(t, record.Meta.Scores, len(req.Responses))
	promptLen := float64(len(req.Prompt) + 1)
	for i, response := range req.Responses {
		assert.InDelta(t, float64(len(response))/promptLen, record.Meta.Scores[i], 1e-12,
			"scores must follow response order, not sorted order")
	}

	assert.Equal(t, constants.GeneratorVersion, record.Meta.Generator)
}

func TestBuildAssignsFreshIDs(t *testing.T) {
	b := newTestBuilder(1)
	req := baseRequest()

	first, err := b.Build(req)
	require.NoError(t, err)
	second, err := b.Build(req)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.NotEmpty(t, first.ID)
}

func TestBuildCopiesRequestFields(t *testing.T) {
	b := newTestBuilder(1)
	req := baseRequest()
	req.Epsilon = models.Epsilon(0.5)

	record, err := b.Build(req)
	require.NoError(t, err)

	assert.Equal(t, req.PromptID, record.PromptID)
	assert.Equal(t, req.Prompt, record.Prompt)
	assert.Equal(t, req.Responses, record.Responses)
	assert.Equal(t, req.Method, record.Method)
	assert.Equal(t, req.Identity, record.Identity)
	assert.Equal(t, req.Epsilon, record.Epsilon)
	assert.Equal(t, models.TransformedFromOriginal, record.TransformedFrom)
}

func TestBuildEmptyResponsesFails(t *testing.T) {
	b := newTestBuilder(1)
	req := baseRequest()
	req.Responses = nil

	_, err := b.Build(req)
	assert.Error(t, err)
}

func TestBuildNilRequestFails(t *testing.T) {
	b := newTestBuilder(1)

	_, err := b.Build(nil)
	assert.Error(t, err)
}

// A one-element candidate set collides preferred and rejected. The builder
// does not guard this; the validator rejects the record downstream.
func TestBuildSingleResponseCollidesAndValidatorRejects(t *testing.T) {
	b := newTestBuilder(1)
	req := baseRequest()
	req.Responses = []string{"only"}

	record, err := b.Build(req)
	require.NoError(t, err)
	assert.Equal(t, record.Preferred, record.Rejected)

	v := validation.NewRecordValidator(logrus.New())
	assert.Error(t, v.Validate(record))
}

func TestBuildStableTieBreak(t *testing.T) {
	b := newTestBuilder(1)
	req := baseRequest()
	// Equal lengths score identically at unbounded epsilon; the stable sort
	// keeps input order, so the first wins and the last loses.
	req.Responses = []string{"aaa", "bbb", "ccc"}

	record, err := b.Build(req)
	require.NoError(t, err)
	assert.Equal(t, "aaa", record.Preferred)
	assert.Equal(t, "ccc", record.Rejected)
}
