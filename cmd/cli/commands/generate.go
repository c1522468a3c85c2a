package commands

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/synthpref/gpref/internal/generator"
	"github.com/synthpref/gpref/internal/metrics"
	"github.com/synthpref/gpref/internal/storage/file"
	"github.com/synthpref/gpref/pkg/models"
)

type GenerateOptions struct {
	PromptsFile string
	OutputFile  string
	Epsilons    string
	Responses   []string
	Seed        int64
	LogLevel    string
}

func NewGenerateCmd() *cobra.Command {
	opts := &GenerateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a labeled preference dataset",
		Long: `Generate a G-Pref dataset: score candidate responses per prompt with the
reward simulator, noise the scores under each privacy budget of the sweep,
select preferred/rejected pairs, and write the records as newline-delimited
GKPO envelopes.`,
		Example: `  # Generate from a prompt file with the default budget sweep
  gpref generate --prompts prompts.json --output gpref.jsonl

  # Reproducible run with an explicit sweep
  gpref generate --prompts prompts.json --seed 42 --epsilons "0.5,1.0,unbounded"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.PromptsFile, "prompts", "p", "", "prompt input file (JSON array of {\"prompt\": ...})")
	cmd.Flags().StringVarP(&opts.OutputFile, "output", "o", "-", "output file (- for stdout)")
	cmd.Flags().StringVar(&opts.Epsilons, "epsilons", "", "comma-separated privacy budget sweep; \"unbounded\" allowed")
	cmd.Flags().StringSliceVar(&opts.Responses, "responses", nil, "override the fixed candidate response set")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "random seed (0 uses the current time)")
	cmd.Flags().StringVar(&opts.LogLevel, "log-level", "info", "log level (debug, info, warn, error)")

	cmd.MarkFlagRequired("prompts")

	return cmd
}

func runGenerate(opts *GenerateOptions) error {
	logger, err := newLogger(opts.LogLevel)
	if err != nil {
		return err
	}

	prompts, err := file.NewPromptLoader(logger).Load(opts.PromptsFile)
	if err != nil {
		return fmt.Errorf("failed to load prompts: %w", err)
	}

	config := generator.DefaultConfig()
	if len(opts.Responses) > 0 {
		config.Responses = opts.Responses
	}
	if opts.Epsilons != "" {
		sweep, err := parseEpsilonSweep(opts.Epsilons)
		if err != nil {
			return err
		}
		config.Epsilons = sweep
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	gen := generator.New(config, rng, logger)
	dataset, err := gen.Generate(prompts)
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	if err := file.NewDatasetStore(logger).Write(opts.OutputFile, dataset); err != nil {
		return fmt.Errorf("failed to write dataset: %w", err)
	}

	report, err := metrics.NewEstimator(logger).Estimate(dataset)
	if err != nil {
		return fmt.Errorf("metric estimation failed: %w", err)
	}

	noisy, free := gen.Ledger().Releases()
	logger.WithFields(logrus.Fields{
		"records":        len(dataset),
		"flip_rate":      report.FlipRate,
		"avg_kl":         report.AvgKL,
		"epsilon_spent":  gen.Ledger().Spent(),
		"noisy_releases": noisy,
		"exact_releases": free,
	}).Info("Generation run completed")

	return nil
}

func parseEpsilonSweep(raw string) ([]models.Epsilon, error) {
	parts := strings.Split(raw, ",")
	sweep := make([]models.Epsilon, 0, len(parts))
	for _, part := range parts {
		eps, err := models.ParseEpsilon(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		sweep = append(sweep, eps)
	}
	return sweep, nil
}

func newLogger(level string) (*logrus.Logger, error) {
	logger := logrus.New()
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logger.SetLevel(parsed)
	return logger, nil
}
