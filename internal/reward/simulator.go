package reward

// LengthRatioScorer is the placeholder ground-truth reward signal: the
// character length of the response relative to the prompt. It stands in for
// a learned reward model and is swappable behind interfaces.Scorer.
type LengthRatioScorer struct{}

// NewLengthRatioScorer creates a new length-ratio scorer.
func NewLengthRatioScorer() *LengthRatioScorer {
	return &LengthRatioScorer{}
}

// Name returns the scorer name.
func (s *LengthRatioScorer) Name() string {
	return "length-ratio"
}

// Score returns len(response) / (len(prompt) + 1) using character counts.
// The +1 keeps the denominator nonzero for empty prompts.
func (s *LengthRatioScorer) Score(prompt, response string) float64 {
	return float64(len(response)) / float64(len(prompt)+1)
}
