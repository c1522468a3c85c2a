package interfaces

import (
	"github.com/synthpref/gpref/pkg/models"
)

// Scorer produces a raw quality score for a (prompt, response) pair. It must
// be pure and deterministic: no randomness, no side effects.
type Scorer interface {
	// Score returns a nonnegative quality score for the response.
	Score(prompt, response string) float64

	// Name returns a short identifier for the scoring function.
	Name() string
}

// NoiseMechanism perturbs a scalar under a privacy budget. Implementations
// must draw fresh randomness on every call; an unbounded budget must return
// the value unchanged.
type NoiseMechanism interface {
	// Perturb returns the value with budget-calibrated noise added.
	Perturb(value float64, epsilon models.Epsilon) float64

	// Name returns the mechanism name.
	Name() string
}

// RecordValidator gates candidate records before dataset admission.
type RecordValidator interface {
	// Validate returns nil when the record is well formed and a
	// validation-class error otherwise.
	Validate(record *models.PreferenceRecord) error
}

// RecordBuilder assembles a preference record from a build request.
type RecordBuilder interface {
	Build(req *BuildRequest) (*models.PreferenceRecord, error)
}

// BuildRequest carries everything the builder needs for one record.
type BuildRequest struct {
	PromptID        string
	Prompt          string
	Responses       []string
	Method          models.Method
	Identity        string
	Epsilon         models.Epsilon
	TransformedFrom string
}
