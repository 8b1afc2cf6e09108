package pruning

import (
	"gonum.org/v1/gonum/stat/distuv"

	"shears/internal/errors"
)

// Estimate is the breakdown of a Clopper-Pearson upper error estimate
type Estimate struct {
	Errors     int     `json:"errors"`
	Records    int     `json:"records"`
	Confidence float64 `json:"confidence"`
	// UpperBound is the upper confidence limit on the error proportion, in [0, 1]
	UpperBound float64 `json:"upper_bound"`
	// EstimatedErrors is UpperBound scaled back to the node's record count
	EstimatedErrors float64 `json:"estimated_errors"`
}

// EstimatedErrors returns the pessimistic number of errors for a node that
// misclassifies numErrors of numRecords records, using the Clopper-Pearson
// upper bound at the configured confidence (default 25).
func EstimatedErrors(numErrors, numRecords int, opts ...Option) (float64, error) {
	est, err := Evaluate(numErrors, numRecords, opts...)
	if err != nil {
		return 0, err
	}
	return est.EstimatedErrors, nil
}

// Evaluate computes the upper bound and the estimated error count.
//
// Inputs are checked in a fixed order: more errors than records, negative
// errors, negative records, then confidence. The first failing check is reported.
//
// The beta quantile is undefined when no record is classified correctly, so:
// zero records estimate zero errors, and a node where every record is an error
// (or a confidence of 0) takes the limiting bound of 1.
func Evaluate(numErrors, numRecords int, opts ...Option) (Estimate, error) {
	s := resolve(opts)

	if numErrors > numRecords {
		return Estimate{}, errors.RangeViolation("there cannot be more errors than records")
	}
	if numErrors < 0 {
		return Estimate{}, errors.RangeViolation("there cannot be a negative number of errors")
	}
	if numRecords < 0 {
		return Estimate{}, errors.RangeViolation("there cannot be a negative number of records")
	}
	// Negated form also rejects NaN
	if !(s.confidence >= 0 && s.confidence <= 50) {
		return Estimate{}, errors.ConfidenceOutOfRange(s.confidence)
	}

	est := Estimate{
		Errors:     numErrors,
		Records:    numRecords,
		Confidence: s.confidence,
	}
	if numRecords == 0 {
		return est, nil
	}

	numCorrect := numRecords - numErrors
	significance := 1 - s.confidence/100

	if numCorrect == 0 || significance >= 1 {
		est.UpperBound = 1
	} else {
		dist := distuv.Beta{Alpha: float64(numErrors + 1), Beta: float64(numCorrect)}
		est.UpperBound = dist.Quantile(significance)
	}
	est.EstimatedErrors = est.UpperBound * float64(numRecords)

	return est, nil
}
