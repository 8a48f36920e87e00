package data_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SuFu123/ELL/data"
)

func collect(it data.Iterator) []data.IndexValue {
	var out []data.IndexValue
	for iv := range data.Each(it) {
		out = append(out, iv)
	}
	return out
}

func TestDenseIteration(t *testing.T) {
	d := data.NewDense[float32](0, 1.5, 0, -2, 0)
	require.Equal(t, 5, d.Len())

	assert.Equal(t, []data.IndexValue{
		{Index: 1, Value: 1.5},
		{Index: 3, Value: -2},
	}, collect(d.Iterate(data.SkipZeros, -1)))

	all := collect(d.Iterate(data.All, 6))
	require.Len(t, all, 6)
	assert.Equal(t, data.IndexValue{Index: 0, Value: 0}, all[0])
	assert.Equal(t, data.IndexValue{Index: 1, Value: 1.5}, all[1])
	assert.Equal(t, data.IndexValue{Index: 5, Value: 0}, all[5], "past-the-end positions read as zero")
}

func TestDenseToSlice(t *testing.T) {
	d := data.NewDense[int](3, 0, 7)
	assert.Equal(t, []float64{3, 0, 7}, d.ToSlice(-1))
	assert.Equal(t, []float64{3, 0}, d.ToSlice(2))
	assert.Equal(t, []float64{3, 0, 7, 0, 0}, d.ToSlice(5))
	assert.Equal(t, 7, d.At(2))
	assert.Equal(t, 0, d.At(99))
}

func TestSparseAppend(t *testing.T) {
	s := data.NewSparse[float64]()
	require.Equal(t, 0, s.PrefixLength())

	s.AppendElement(2, 0.5)
	s.AppendElement(3, 0) // Zeros are accepted but not stored.
	s.AppendElement(7, -1)
	require.Equal(t, 2, s.NumStored())
	require.Equal(t, 8, s.PrefixLength())

	require.Panics(t, func() { s.AppendElement(7, 9) })
	require.Panics(t, func() { s.AppendElement(4, 9) })
	require.Panics(t, func() {
		data.NewSparse[float64]().AppendElement(-1, 1)
	})

	// A zero append still claims its index.
	z := data.NewSparse[float64]()
	z.AppendElement(3, 0)
	require.Panics(t, func() { z.AppendElement(3, 5) })
	require.Panics(t, func() { z.AppendElement(2, 5) })
	z.AppendElement(4, 1)
	require.Equal(t, 1, z.NumStored())
	require.Equal(t, 5, z.PrefixLength())
}

func TestSparseIteration(t *testing.T) {
	s := data.NewSparse[float64]()
	s.AppendElement(1, 4)
	s.AppendElement(4, -2)

	assert.Equal(t, []data.IndexValue{
		{Index: 1, Value: 4},
		{Index: 4, Value: -2},
	}, collect(s.Iterate(data.SkipZeros, -1)))

	// A smaller window truncates.
	assert.Equal(t, []data.IndexValue{
		{Index: 1, Value: 4},
	}, collect(s.Iterate(data.SkipZeros, 3)))

	all := collect(s.Iterate(data.All, -1))
	require.Len(t, all, 5)
	assert.Equal(t, []data.IndexValue{
		{Index: 0, Value: 0},
		{Index: 1, Value: 4},
		{Index: 2, Value: 0},
		{Index: 3, Value: 0},
		{Index: 4, Value: -2},
	}, all)
}

func TestSparseConversions(t *testing.T) {
	s := data.FromSlice([]float64{0, 3, 0, 0, 5})
	require.Equal(t, 2, s.NumStored())
	assert.Equal(t, []float64{0, 3, 0, 0, 5}, s.ToSlice(-1))
	assert.Equal(t, []float64{0, 3}, s.ToSlice(2))
	assert.Equal(t, []float64{0, 3, 0, 0, 5, 0}, s.ToSlice(6))
	assert.Equal(t, 5.0, s.At(4))
	assert.Equal(t, 0.0, s.At(3))
}
