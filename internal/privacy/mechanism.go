package privacy

import (
	"math"
	"math/rand"
	"time"

	"github.com/synthpref/gpref/pkg/models"
)

// LaplaceMechanism implements the Laplace mechanism for differential privacy
// over scalar reward scores. Noise is zero-centered with scale 1/epsilon, so
// a smaller budget yields a larger expected perturbation. The unbounded
// budget is the identity: no noise, no privacy cost.
type LaplaceMechanism struct {
	randSource *rand.Rand
}

// NewLaplaceMechanism creates a new Laplace mechanism. A nil randSource
// falls back to a time-seeded generator; tests inject a fixed seed.
func NewLaplaceMechanism(randSource *rand.Rand) *LaplaceMechanism {
	if randSource == nil {
		randSource = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &LaplaceMechanism{
		randSource: randSource,
	}
}

// Name returns the mechanism name
func (lm *LaplaceMechanism) Name() string {
	return "laplace"
}

// Perturb adds one fresh Laplace draw with scale 1/epsilon to the value.
// Every call consumes new randomness; noise is never shared across calls.
func (lm *LaplaceMechanism) Perturb(value float64, epsilon models.Epsilon) float64 {
	if epsilon.IsUnbounded() {
		return value
	}

	scale := 1.0 / epsilon.Value()
	return value + lm.sampleLaplace(scale)
}

// PerturbAll applies Perturb independently to each value, returning a new
// slice in the same order.
func (lm *LaplaceMechanism) PerturbAll(values []float64, epsilon models.Epsilon) []float64 {
	result := make([]float64, len(values))
	for i, v := range values {
		result[i] = lm.Perturb(v, epsilon)
	}
	return result
}

func (lm *LaplaceMechanism) sampleLaplace(scale float64) float64 {
	// Inverse transform sampling:
	// Laplace CDF^(-1)(p) = -b*sign(p-0.5)*ln(1-2*|p-0.5|)
	u := lm.randSource.Float64()

	if u < 0.5 {
		return scale * math.Log(2*u)
	}
	return -scale * math.Log(2*(1-u))
}
