package pruning

// DefaultConfidence is the C4.5 certainty factor, expressed as a percentage
const DefaultConfidence = 25.0

// Option tunes a single estimator or pruning call
type Option func(*settings)

type settings struct {
	confidence float64
}

// WithConfidence sets the confidence level in [0, 50]. Lower values give a
// more pessimistic upper bound and therefore more pruning.
func WithConfidence(confidence float64) Option {
	return func(s *settings) {
		s.confidence = confidence
	}
}

func resolve(opts []Option) settings {
	s := settings{confidence: DefaultConfidence}
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}
	return s
}
