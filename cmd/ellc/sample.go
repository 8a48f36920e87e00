package main

import (
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/janpfeifer/must"
	"github.com/spf13/cobra"

	"github.com/SuFu123/ELL/backends"
	"github.com/SuFu123/ELL/model"
	"github.com/SuFu123/ELL/nodes"
)

// sampleSize is the input width of the built-in scoring model.
const sampleSize = 4

// sampleWeights and sampleBias define the built-in linear scorer:
// y = |x| . w + b.
var (
	sampleWeights = []float64{0.5, -0.25, 1, 0.125}
	sampleBias    = []float64{-0.5}
)

// buildSampleMap builds the built-in scoring model and its map: one input
// vector "x", one scalar output "y".
func buildSampleMap() *model.Map {
	x := nodes.NewInput("x", dtypes.Float32, sampleSize)
	mag := nodes.NewUnaryOp("mag", backends.UnaryAbs, x.Output())
	w := nodes.NewConstant("weights", dtypes.Float32, sampleWeights)
	score := nodes.NewDotProduct("score", mag.Output(), w.Output())
	b := nodes.NewConstant("bias", dtypes.Float32, sampleBias)
	biased := nodes.NewBinaryOp("biased", backends.BinaryAdd, score.Output(), b.Output())
	y := nodes.NewOutput("y", biased.Output())

	m := model.NewModel()
	m.AddNode(x)
	m.AddNode(mag)
	m.AddNode(w)
	m.AddNode(score)
	m.AddNode(b)
	m.AddNode(biased)
	m.AddNode(y)
	return model.NewMap(m,
		[]model.PortBinding{{Name: "x", Port: x.Output()}},
		[]model.PortBinding{{Name: "y", Port: y.Output()}})
}

// selectBackend builds the backend named by --backend, falling back to the
// registry's environment/default resolution.
func selectBackend(cmd *cobra.Command) backends.Backend {
	spec := must.M1(cmd.Flags().GetString("backend"))
	if spec == "" {
		return backends.New()
	}
	return backends.NewWithConfig(spec)
}
