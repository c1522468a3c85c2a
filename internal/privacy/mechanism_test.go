package privacy

import (
	"math/rand"
	"testing"

	"github.com/montanaflynn/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synthpref/gpref/pkg/models"
)

func TestUnboundedEpsilonIsIdentity(t *testing.T) {
	mechanism := NewLaplaceMechanism(rand.New(rand.NewSource(1)))

	for _, v := range []float64{-10, -0.5, 0, 0.25, 1, 1e6} {
		assert.Equal(t, v, mechanism.Perturb(v, models.EpsilonUnbounded()))
	}
}

func TestFiniteEpsilonPerturbsValue(t *testing.T) {
	mechanism := NewLaplaceMechanism(rand.New(rand.NewSource(1)))

	value := 3.0
	perturbed := mechanism.Perturb(value, models.Epsilon(1.0))
	assert.NotEqual(t, value, perturbed)
}

func TestNoiseIsFreshPerCall(t *testing.T) {
	mechanism := NewLaplaceMechanism(rand.New(rand.NewSource(7)))

	first := mechanism.Perturb(1.0, models.Epsilon(1.0))
	second := mechanism.Perturb(1.0, models.Epsilon(1.0))
	assert.NotEqual(t, first, second)
}

func TestNoiseIsUnbiased(t *testing.T) {
	mechanism := NewLaplaceMechanism(rand.New(rand.NewSource(42)))

	const trials = 200000
	value := 5.0
	sum := 0.0
	for i := 0; i < trials; i++ {
		sum += mechanism.Perturb(value, models.Epsilon(1.0))
	}

	assert.InDelta(t, value, sum/trials, 0.05)
}

func TestSmallerEpsilonLargerVariance(t *testing.T) {
	mechanism := NewLaplaceMechanism(rand.New(rand.NewSource(42)))

	const trials = 20000
	value := 2.0

	sample := func(eps models.Epsilon) []float64 {
		out := make([]float64, trials)
		for i := range out {
			out[i] = mechanism.Perturb(value, eps)
		}
		return out
	}

	tight, err := stats.SampleVariance(sample(models.Epsilon(2.0)))
	require.NoError(t, err)
	loose, err := stats.SampleVariance(sample(models.Epsilon(0.5)))
	require.NoError(t, err)

	// Laplace variance is 2/eps^2: 0.5 at eps=2 versus 8 at eps=0.5.
	assert.Greater(t, loose, tight)
}

func TestPerturbAllPreservesOrderAndLength(t *testing.T) {
	mechanism := NewLaplaceMechanism(rand.New(rand.NewSource(3)))

	values := []float64{1, 2, 3}
	noised := mechanism.PerturbAll(values, models.EpsilonUnbounded())
	assert.Equal(t, values, noised)

	noised = mechanism.PerturbAll(values, models.Epsilon(1.0))
	assert.Len(t, noised, len(values))
}

func TestDefaultSweepEndsUnbounded(t *testing.T) {
	sweep := DefaultSweep()

	require.GreaterOrEqual(t, len(sweep), 2)
	assert.True(t, sweep[len(sweep)-1].IsUnbounded())
	for _, eps := range sweep[:len(sweep)-1] {
		assert.False(t, eps.IsUnbounded())
		assert.Greater(t, eps.Value(), 0.0)
	}
}

func TestBudgetLedger(t *testing.T) {
	ledger := NewBudgetLedger()

	ledger.Record(models.Epsilon(0.5))
	ledger.Record(models.Epsilon(1.0))
	ledger.Record(models.EpsilonUnbounded())

	assert.InDelta(t, 1.5, ledger.Spent(), 1e-12)

	noisy, free := ledger.Releases()
	assert.Equal(t, 2, noisy)
	assert.Equal(t, 1, free)
}

func TestRegretCurveDecreasesWithEpsilon(t *testing.T) {
	epsilons := []float64{0.1, 0.5, 1.0, 2.0, 3.0}
	curve := RegretCurve(1.0, epsilons)

	require.Len(t, curve, len(epsilons))
	for i := 1; i < len(curve); i++ {
		assert.Less(t, curve[i], curve[i-1], "regret must shrink as the budget grows")
	}
	for _, p := range curve {
		assert.Greater(t, p, 0.0)
		assert.Less(t, p, 1.0)
	}
}
