package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/synthpref/gpref/internal/metrics"
	"github.com/synthpref/gpref/internal/privacy"
	"github.com/synthpref/gpref/internal/storage/file"
	"github.com/synthpref/gpref/pkg/models"
)

type AnalyzeOptions struct {
	InputFile   string
	Format      string
	RegretDelta float64
	LogLevel    string
}

type analyzeOutput struct {
	Metrics     *metrics.Report             `json:"metrics"`
	Dispersion  []metrics.DispersionSummary `json:"dispersion"`
	RegretCurve map[string]float64          `json:"regret_curve,omitempty"`
}

func NewAnalyzeCmd() *cobra.Command {
	opts := &AnalyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Compute quality metrics over a generated dataset",
		Long: `Analyze a GKPO dataset: reconstruct the softmax distribution from each
record's noised scores, compare it against the recorded preferred label, and
report the flip rate, average KL divergence and per-budget score dispersion.`,
		Example: `  # Analyze a dataset, text output
  gpref analyze --input gpref.jsonl

  # JSON report with the theoretical regret curve for score gap 1.0
  gpref analyze --input gpref.jsonl --format json --regret-delta 1.0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.InputFile, "input", "i", "", "dataset file (newline-delimited GKPO envelopes)")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "text", "output format (text, json)")
	cmd.Flags().Float64Var(&opts.RegretDelta, "regret-delta", 0, "score gap for the theoretical regret curve (0 disables)")
	cmd.Flags().StringVar(&opts.LogLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	cmd.MarkFlagRequired("input")

	return cmd
}

func runAnalyze(opts *AnalyzeOptions) error {
	logger, err := newLogger(opts.LogLevel)
	if err != nil {
		return err
	}

	dataset, err := file.NewDatasetStore(logger).Read(opts.InputFile)
	if err != nil {
		return fmt.Errorf("failed to read dataset: %w", err)
	}

	report, err := metrics.NewEstimator(logger).Estimate(dataset)
	if err != nil {
		return fmt.Errorf("metric estimation failed: %w", err)
	}

	dispersion, err := metrics.ScoreDispersion(dataset)
	if err != nil {
		return fmt.Errorf("dispersion summary failed: %w", err)
	}

	output := analyzeOutput{
		Metrics:    report,
		Dispersion: dispersion,
	}

	if opts.RegretDelta > 0 {
		output.RegretCurve = regretByEpsilon(opts.RegretDelta, dispersion)
	}

	switch opts.Format {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(output)
	case "text":
		printAnalysis(len(dataset), output)
		return nil
	default:
		return fmt.Errorf("unsupported format: %s", opts.Format)
	}
}

// regretByEpsilon evaluates the theoretical flip probability at each finite
// budget present in the dataset.
func regretByEpsilon(delta float64, dispersion []metrics.DispersionSummary) map[string]float64 {
	curve := make(map[string]float64)
	for _, summary := range dispersion {
		eps, err := models.ParseEpsilon(summary.Epsilon)
		if err != nil || eps.IsUnbounded() || eps.Value() <= 0 {
			continue
		}
		curve[summary.Epsilon] = privacy.RegretCurve(delta, []float64{eps.Value()})[0]
	}
	return curve
}

func printAnalysis(records int, output analyzeOutput) {
	fmt.Printf("Dataset Analysis\n")
	fmt.Printf("================\n")
	fmt.Printf("Records:    %d\n", records)
	fmt.Printf("Flip Rate:  %.4f\n", output.Metrics.FlipRate)
	fmt.Printf("Average KL: %.6f\n", output.Metrics.AvgKL)

	fmt.Printf("\nScore dispersion by privacy budget:\n")
	for _, summary := range output.Dispersion {
		fmt.Printf("  epsilon=%-10s n=%-5d mean=%.4f variance=%.4f\n",
			summary.Epsilon, summary.Count, summary.Mean, summary.Variance)
	}

	if len(output.RegretCurve) > 0 {
		fmt.Printf("\nTheoretical flip probability (Laplace):\n")
		for eps, p := range output.RegretCurve {
			fmt.Printf("  epsilon=%-10s p=%.4f\n", eps, p)
		}
	}
}
