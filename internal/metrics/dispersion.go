package metrics

import (
	"sort"

	"github.com/montanaflynn/stats"

	"github.com/synthpref/gpref/pkg/errors"
	"github.com/synthpref/gpref/pkg/models"
)

// DispersionSummary describes the spread of noised scores observed at one
// privacy budget. Smaller budgets should show larger variance.
type DispersionSummary struct {
	Epsilon  string  `json:"epsilon"`
	Count    int     `json:"count"`
	Mean     float64 `json:"mean"`
	Variance float64 `json:"variance"`
	StdDev   float64 `json:"std_dev"`
}

// ScoreDispersion groups the dataset's noised scores by privacy budget and
// summarizes each group. Results are ordered by budget string for stable
// output.
func ScoreDispersion(dataset []*models.PreferenceRecord) ([]DispersionSummary, error) {
	if len(dataset) == 0 {
		return nil, errors.WrapError(errors.ErrEmptyDataset, errors.ErrorTypeMetrics,
			errors.CodeEmptyDataset, "score dispersion requires a nonempty dataset")
	}

	grouped := make(map[string][]float64)
	for _, record := range dataset {
		key := record.Epsilon.String()
		grouped[key] = append(grouped[key], record.Meta.Scores...)
	}

	keys := make([]string, 0, len(grouped))
	for key := range grouped {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	summaries := make([]DispersionSummary, 0, len(keys))
	for _, key := range keys {
		data := stats.Float64Data(grouped[key])

		mean, err := stats.Mean(data)
		if err != nil {
			return nil, errors.WrapError(err, errors.ErrorTypeMetrics, errors.CodeNoScores,
				"failed to summarize scores").WithContext("epsilon", key)
		}

		variance, err := stats.SampleVariance(data)
		if err != nil {
			// A single observation has no sample variance.
			variance = 0
		}

		stdDev, err := stats.StandardDeviationSample(data)
		if err != nil {
			stdDev = 0
		}

		summaries = append(summaries, DispersionSummary{
			Epsilon:  key,
			Count:    len(data),
			Mean:     mean,
			Variance: variance,
			StdDev:   stdDev,
		})
	}

	return summaries, nil
}
