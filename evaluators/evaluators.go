// Package evaluators accumulates quality statistics for model predictions.
package evaluators

// BinaryErrorAggregator accumulates a weighted confusion matrix for binary
// classification. A prediction or label is taken as positive when > 0.
//
// The zero value is ready to use.
type BinaryErrorAggregator struct {
	truePositives  float64
	trueNegatives  float64
	falsePositives float64
	falseNegatives float64
}

// NewBinaryErrorAggregator creates an empty aggregator.
func NewBinaryErrorAggregator() *BinaryErrorAggregator {
	return &BinaryErrorAggregator{}
}

// Update accumulates one example with the given weight.
func (a *BinaryErrorAggregator) Update(prediction, label, weight float64) {
	predicted, actual := prediction > 0, label > 0
	switch {
	case predicted && actual:
		a.truePositives += weight
	case !predicted && !actual:
		a.trueNegatives += weight
	case predicted && !actual:
		a.falsePositives += weight
	default:
		a.falseNegatives += weight
	}
}

// TruePositives returns the accumulated weight of correct positive predictions.
func (a *BinaryErrorAggregator) TruePositives() float64 { return a.truePositives }

// TrueNegatives returns the accumulated weight of correct negative predictions.
func (a *BinaryErrorAggregator) TrueNegatives() float64 { return a.trueNegatives }

// FalsePositives returns the accumulated weight of spurious positive predictions.
func (a *BinaryErrorAggregator) FalsePositives() float64 { return a.falsePositives }

// FalseNegatives returns the accumulated weight of missed positives.
func (a *BinaryErrorAggregator) FalseNegatives() float64 { return a.falseNegatives }

// TotalWeight returns the weight accumulated over all examples.
func (a *BinaryErrorAggregator) TotalWeight() float64 {
	return a.truePositives + a.trueNegatives + a.falsePositives + a.falseNegatives
}

// ErrorRate returns the weighted fraction of wrong predictions, zero when
// nothing was accumulated.
func (a *BinaryErrorAggregator) ErrorRate() float64 {
	total := a.TotalWeight()
	if total == 0 {
		return 0
	}
	return (a.falsePositives + a.falseNegatives) / total
}

// Precision returns tp/(tp+fp), zero when no positives were predicted.
func (a *BinaryErrorAggregator) Precision() float64 {
	predicted := a.truePositives + a.falsePositives
	if predicted == 0 {
		return 0
	}
	return a.truePositives / predicted
}

// Recall returns tp/(tp+fn), zero when no positives were seen.
func (a *BinaryErrorAggregator) Recall() float64 {
	actual := a.truePositives + a.falseNegatives
	if actual == 0 {
		return 0
	}
	return a.truePositives / actual
}

// Reset discards everything accumulated so far.
func (a *BinaryErrorAggregator) Reset() {
	*a = BinaryErrorAggregator{}
}
