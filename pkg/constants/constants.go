package constants

// Application constants
const (
	AppName    = "gpref"
	AppVersion = "0.1.0"

	// GeneratorVersion tags every record's meta so downstream consumers can
	// trace which generator build produced it.
	GeneratorVersion = "gpref-gen/0.1.0"
)

// Record constants
const (
	// PromptIDFormat produces stable, zero-padded prompt identifiers shared
	// by every record derived from the same prompt.
	PromptIDFormat = "gpref-%04d"

	// SmoothingEpsilon is added to both sides of the KL log ratio so the
	// estimator never divides by or takes the log of zero.
	SmoothingEpsilon = 1e-8
)

// Default generation inputs. These are the fixed candidate set and rater
// contexts attached to every prompt when the caller supplies none.
var (
	DefaultResponses = []string{
		"Take the medication twice daily with food.",
		"Consult your clinician before changing the dose.",
		"It depends.",
	}

	DefaultIdentities = []string{
		"clinician",
		"lawyer",
		"educator",
		"generalist",
	}

	// DefaultFiniteEpsilons are the finite budgets of the default sweep;
	// the generator appends the unbounded budget itself.
	DefaultFiniteEpsilons = []float64{0.5, 1.0}
)

// Server constants
const (
	DefaultServerHost  = "0.0.0.0"
	DefaultServerPort  = 8080
	DefaultMetricsPort = 9090
)

// Environment variable prefix for viper
const EnvPrefix = "GPREF"
