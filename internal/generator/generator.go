package generator

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/synthpref/gpref/internal/builder"
	"github.com/synthpref/gpref/internal/privacy"
	"github.com/synthpref/gpref/internal/reward"
	"github.com/synthpref/gpref/internal/validation"
	"github.com/synthpref/gpref/pkg/constants"
	"github.com/synthpref/gpref/pkg/errors"
	"github.com/synthpref/gpref/pkg/interfaces"
	"github.com/synthpref/gpref/pkg/models"
)

// Config controls a generation run.
type Config struct {
	// Responses is the fixed candidate set attached to every prompt.
	Responses []string

	// Epsilons is the privacy-budget sweep applied per prompt.
	Epsilons []models.Epsilon

	// Methods is the pool the per-prompt method is drawn from.
	Methods []models.Method

	// Identities is the pool the per-prompt rater context is drawn from.
	Identities []string
}

// DefaultConfig returns the default run configuration: the fixed response
// set, the finite-plus-unbounded budget sweep, and the source method and
// identity pools.
func DefaultConfig() *Config {
	return &Config{
		Responses:  constants.DefaultResponses,
		Epsilons:   privacy.DefaultSweep(),
		Methods:    []models.Method{models.MethodPPO, models.MethodDPO, models.MethodDPSFT},
		Identities: constants.DefaultIdentities,
	}
}

// Generator drives record construction across prompts, privacy budgets and
// methods, producing original and dpo-transformed record variants and
// filtering originals through the validator.
type Generator struct {
	builder   interfaces.RecordBuilder
	validator interfaces.RecordValidator
	ledger    *privacy.BudgetLedger
	rng       *rand.Rand
	config    *Config
	logger    *logrus.Logger
}

// New creates a Generator wired with the default reward simulator, Laplace
// mechanism and validator, all sharing the given random source.
func New(config *Config, rng *rand.Rand, logger *logrus.Logger) *Generator {
	if config == nil {
		config = DefaultConfig()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if logger == nil {
		logger = logrus.New()
	}

	scorer := reward.NewLengthRatioScorer()
	mechanism := privacy.NewLaplaceMechanism(rng)

	return &Generator{
		builder:   builder.NewBuilder(scorer, mechanism, logger),
		validator: validation.NewRecordValidator(logger),
		ledger:    privacy.NewBudgetLedger(),
		rng:       rng,
		config:    config,
		logger:    logger,
	}
}

// NewWithComponents creates a Generator from explicit collaborators. Tests
// use this to observe validator calls and to drop in fixed scorers.
func NewWithComponents(config *Config, b interfaces.RecordBuilder, v interfaces.RecordValidator, rng *rand.Rand, logger *logrus.Logger) *Generator {
	if config == nil {
		config = DefaultConfig()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if logger == nil {
		logger = logrus.New()
	}

	return &Generator{
		builder:   b,
		validator: v,
		ledger:    privacy.NewBudgetLedger(),
		rng:       rng,
		config:    config,
		logger:    logger,
	}
}

// Ledger exposes the run's privacy-budget accounting.
func (g *Generator) Ledger() *privacy.BudgetLedger {
	return g.ledger
}

// Generate builds the dataset for the given prompts.
//
// Per prompt: a stable zero-padded prompt id is assigned and one method and
// one identity are drawn; those choices hold across the whole epsilon sweep
// for that prompt. Per epsilon: an original record is built and, if it
// passes validation, appended, followed by its dpo-transformed clone. The
// clone shares the original's responses and noised scores, takes a fresh id,
// and is appended without a second validator pass.
//
// Records failing validation are dropped silently; builder errors (an empty
// candidate set) abort the run.
func (g *Generator) Generate(prompts []string) ([]*models.PreferenceRecord, error) {
	if len(prompts) == 0 {
		return nil, errors.WrapError(errors.ErrEmptyPrompts, errors.ErrorTypeGeneration,
			errors.CodeEmptyPrompts, "generation requires at least one prompt")
	}

	dataset := make([]*models.PreferenceRecord, 0, len(prompts)*len(g.config.Epsilons)*2)
	dropped := 0

	for i, prompt := range prompts {
		promptID := fmt.Sprintf(constants.PromptIDFormat, i)
		method := g.config.Methods[g.rng.Intn(len(g.config.Methods))]
		identity := g.config.Identities[g.rng.Intn(len(g.config.Identities))]

		for _, epsilon := range g.config.Epsilons {
			record, err := g.builder.Build(&interfaces.BuildRequest{
				PromptID:        promptID,
				Prompt:          prompt,
				Responses:       g.config.Responses,
				Method:          method,
				Identity:        identity,
				Epsilon:         epsilon,
				TransformedFrom: models.TransformedFromOriginal,
			})
			if err != nil {
				return nil, err
			}

			g.ledger.Record(epsilon)

			if err := g.validator.Validate(record); err != nil {
				if !errors.IsSchemaError(err) {
					return nil, err
				}
				dropped++
				continue
			}

			dataset = append(dataset, record)
			dataset = append(dataset, g.transform(record))
		}
	}

	g.logger.WithFields(logrus.Fields{
		"prompts":       len(prompts),
		"records":       len(dataset),
		"dropped":       dropped,
		"epsilon_spent": g.ledger.Spent(),
	}).Info("Dataset generation completed")

	return dataset, nil
}

// transform clones an admitted original into its dpo-retagged variant: fresh
// id, method forced to dpo, transformed_from set to the origin's method.
// Responses and meta (including scores) are shared with the origin.
func (g *Generator) transform(origin *models.PreferenceRecord) *models.PreferenceRecord {
	clone := *origin
	clone.ID = uuid.NewString()
	clone.Method = models.MethodDPO
	clone.TransformedFrom = origin.Method.String()
	return &clone
}
