package evaluators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinaryErrorAggregator(t *testing.T) {
	var a BinaryErrorAggregator
	require.Zero(t, a.ErrorRate())
	require.Zero(t, a.Precision())
	require.Zero(t, a.Recall())

	a.Update(1, 1, 1)   // tp
	a.Update(1, 1, 1)   // tp
	a.Update(-1, -1, 1) // tn
	a.Update(1, -1, 1)  // fp
	a.Update(-1, 1, 1)  // fn

	assert.Equal(t, 2.0, a.TruePositives())
	assert.Equal(t, 1.0, a.TrueNegatives())
	assert.Equal(t, 1.0, a.FalsePositives())
	assert.Equal(t, 1.0, a.FalseNegatives())
	assert.Equal(t, 5.0, a.TotalWeight())

	assert.InDelta(t, 0.4, a.ErrorRate(), 1e-12)
	assert.InDelta(t, 2.0/3.0, a.Precision(), 1e-12)
	assert.InDelta(t, 2.0/3.0, a.Recall(), 1e-12)
}

func TestBinaryErrorAggregatorWeights(t *testing.T) {
	a := NewBinaryErrorAggregator()
	a.Update(1, 1, 3)
	a.Update(1, -1, 1)
	assert.Equal(t, 4.0, a.TotalWeight())
	assert.InDelta(t, 0.25, a.ErrorRate(), 1e-12)
	assert.InDelta(t, 0.75, a.Precision(), 1e-12)
	assert.Equal(t, 1.0, a.Recall())

	a.Reset()
	assert.Zero(t, a.TotalWeight())
	assert.Zero(t, a.ErrorRate())
}

func TestBinaryErrorAggregatorZeroBoundary(t *testing.T) {
	// Zero predictions and labels count as negative.
	var a BinaryErrorAggregator
	a.Update(0, 0, 1)
	assert.Equal(t, 1.0, a.TrueNegatives())
	a.Update(0, 1, 1)
	assert.Equal(t, 1.0, a.FalseNegatives())
}
