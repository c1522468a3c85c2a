package privacy

import (
	"math"
	"sync"

	"github.com/synthpref/gpref/pkg/constants"
	"github.com/synthpref/gpref/pkg/models"
)

// DefaultSweep returns the default privacy-budget sweep: the configured
// finite budgets followed by the unbounded (noise-free) budget.
func DefaultSweep() []models.Epsilon {
	sweep := make([]models.Epsilon, 0, len(constants.DefaultFiniteEpsilons)+1)
	for _, e := range constants.DefaultFiniteEpsilons {
		sweep = append(sweep, models.Epsilon(e))
	}
	sweep = append(sweep, models.EpsilonUnbounded())
	return sweep
}

// BudgetLedger tracks the total finite privacy budget consumed during a
// generation run under sequential composition. Unbounded releases cost
// nothing and are counted separately.
type BudgetLedger struct {
	mu           sync.Mutex
	spent        float64
	releases     int
	freeReleases int
}

// NewBudgetLedger creates an empty ledger.
func NewBudgetLedger() *BudgetLedger {
	return &BudgetLedger{}
}

// Record charges one noisy release against the ledger.
func (l *BudgetLedger) Record(epsilon models.Epsilon) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if epsilon.IsUnbounded() {
		l.freeReleases++
		return
	}

	l.spent += epsilon.Value()
	l.releases++
}

// Spent returns the summed finite epsilon across all noisy releases.
func (l *BudgetLedger) Spent() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.spent
}

// Releases returns the count of noisy and noise-free releases.
func (l *BudgetLedger) Releases() (noisy, free int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.releases, l.freeReleases
}

// RegretCurve returns the theoretical probability that Laplace noise with
// scale delta/epsilon flips a preference comparison whose true score gap is
// delta, for each epsilon in the sweep. Larger budgets give smaller regret.
func RegretCurve(delta float64, epsilons []float64) []float64 {
	curve := make([]float64, len(epsilons))
	for i, eps := range epsilons {
		b := delta / eps
		curve[i] = math.Exp(-delta / (2 * b))
	}
	return curve
}
