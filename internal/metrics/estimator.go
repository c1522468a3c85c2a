package metrics

import (
	"math"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"

	"github.com/synthpref/gpref/pkg/constants"
	"github.com/synthpref/gpref/pkg/errors"
	"github.com/synthpref/gpref/pkg/models"
)

// Report holds the aggregate quality metrics of a generated dataset.
type Report struct {
	// FlipRate is the fraction of records where the winner implied by the
	// noised scores disagrees with the recorded preferred label.
	FlipRate float64 `json:"flip_rate"`

	// AvgKL is the mean KL divergence from the label-implied reference
	// distribution to the softmax of the noised scores.
	AvgKL float64 `json:"avg_kl"`
}

// Estimator reconstructs a probability distribution from each record's
// stored noised scores and compares it against the recorded label.
type Estimator struct {
	logger *logrus.Logger
}

// NewEstimator creates a new metric estimator.
func NewEstimator(logger *logrus.Logger) *Estimator {
	if logger == nil {
		logger = logrus.New()
	}

	return &Estimator{logger: logger}
}

// Estimate computes the flip rate and average KL divergence over the
// dataset. The dataset must be nonempty and every record must carry scores.
func (e *Estimator) Estimate(dataset []*models.PreferenceRecord) (*Report, error) {
	if len(dataset) == 0 {
		return nil, errors.WrapError(errors.ErrEmptyDataset, errors.ErrorTypeMetrics,
			errors.CodeEmptyDataset, "metric estimation requires a nonempty dataset")
	}

	flips := 0
	totalKL := 0.0

	for _, record := range dataset {
		predicted, err := softmax(record.Meta.Scores)
		if err != nil {
			return nil, err
		}

		reference, err := referenceDistribution(record)
		if err != nil {
			return nil, err
		}

		if len(predicted) != len(reference) {
			return nil, errors.NewMetricsError(errors.CodeNoScores,
				"score vector length does not match response count").
				WithContext("record_id", record.ID)
		}

		// MaxIdx breaks argmax ties on the first index.
		if floats.MaxIdx(predicted) != floats.MaxIdx(reference) {
			flips++
		}

		totalKL += smoothedKL(reference, predicted)
	}

	report := &Report{
		FlipRate: float64(flips) / float64(len(dataset)),
		AvgKL:    totalKL / float64(len(dataset)),
	}

	e.logger.WithFields(logrus.Fields{
		"records":   len(dataset),
		"flip_rate": report.FlipRate,
		"avg_kl":    report.AvgKL,
	}).Info("Metric estimation completed")

	return report, nil
}

// softmax converts the noised score vector into a probability distribution.
func softmax(scores []float64) ([]float64, error) {
	if len(scores) == 0 {
		return nil, errors.WrapError(errors.ErrNoScores, errors.ErrorTypeMetrics,
			errors.CodeNoScores, "record carries no noised scores")
	}

	dist := make([]float64, len(scores))
	for i, s := range scores {
		dist[i] = math.Exp(s)
	}
	floats.Scale(1/floats.Sum(dist), dist)
	return dist, nil
}

// referenceDistribution places mass uniformly over every response position
// whose text equals the preferred label. With a unique preferred text the
// result is one-hot; duplicate texts split the mass evenly across all
// matching positions.
func referenceDistribution(record *models.PreferenceRecord) ([]float64, error) {
	dist := make([]float64, len(record.Responses))
	matches := 0
	for i, response := range record.Responses {
		if response == record.Preferred {
			dist[i] = 1
			matches++
		}
	}

	if matches == 0 {
		return nil, errors.WrapError(errors.ErrPreferredNotFound, errors.ErrorTypeMetrics,
			errors.CodePreferredNotFound, "preferred label does not match any response").
			WithContext("record_id", record.ID)
	}

	floats.Scale(1/float64(matches), dist)
	return dist, nil
}

// smoothedKL computes KL(reference -> predicted) with both terms of the log
// ratio smoothed by a small constant so zero entries never divide or log out.
func smoothedKL(reference, predicted []float64) float64 {
	kl := 0.0
	for i := range reference {
		kl += reference[i] * math.Log((reference[i]+constants.SmoothingEpsilon)/(predicted[i]+constants.SmoothingEpsilon))
	}
	return kl
}
