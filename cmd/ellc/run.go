package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/SuFu123/ELL/data"
	"github.com/SuFu123/ELL/evaluators"
)

var runCmd = &cobra.Command{
	Use:   "run x0,x1,x2,x3",
	Short: "Compile the sample model and run it on one input vector.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		input := parseVector(args[0])
		backend := compileSample(cmd, "predict")
		outputs := backend.Emitted().Execute("predict", map[string][]float64{"x": input})
		fmt.Printf("y = %g\n", outputs["y"][0])
	},
}

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Score the sample model over a synthetic dataset.",
	Long: `eval compiles the sample model, runs it over a small synthetic
dataset, and reports the weighted error rate of "score > 0" as a binary
classifier of "the input's element sum exceeds one".`,
	Run: func(cmd *cobra.Command, args []string) {
		backend := compileSample(cmd, "predict")
		module := backend.Emitted()

		var agg evaluators.BinaryErrorAggregator
		for _, example := range syntheticDataset() {
			input := example.ToSlice(sampleSize)
			prediction := module.Execute("predict", map[string][]float64{"x": input})["y"][0]
			var sum float64
			for iv := range data.Each(example.Iterate(data.SkipZeros, sampleSize)) {
				sum += iv.Value
			}
			label := -1.0
			if sum > 1 {
				label = 1.0
			}
			agg.Update(prediction, label, 1)
		}
		fmt.Printf("examples:   %g\n", agg.TotalWeight())
		fmt.Printf("error rate: %.3f\n", agg.ErrorRate())
		fmt.Printf("precision:  %.3f\n", agg.Precision())
		fmt.Printf("recall:     %.3f\n", agg.Recall())
	},
}

func init() {
	runCmd.Flags().Bool("no-fuse", false, "Disable region fusion.")
	evalCmd.Flags().Bool("no-fuse", false, "Disable region fusion.")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(evalCmd)
}

// parseVector parses a comma-separated list of floats sized to the sample
// model's input.
func parseVector(s string) []float64 {
	parts := strings.Split(s, ",")
	if len(parts) != sampleSize {
		klog.Exitf("want %d comma-separated values, got %d", sampleSize, len(parts))
	}
	values := make([]float64, len(parts))
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			klog.Exitf("bad value %q: %v", part, err)
		}
		values[i] = v
	}
	return values
}

// syntheticDataset returns a handful of sparse examples for eval.
func syntheticDataset() []*data.Sparse[float64] {
	rows := [][]float64{
		{2, 0, 0, 0},
		{0, 0.5, 0, 0},
		{0, 0, 3, 1},
		{0.25, 0.25, 0, 0},
		{0, 0, 0, 4},
		{1, 1, 1, 1},
		{0, -2, 0, 0},
		{0.5, 0, 2, 0},
	}
	examples := make([]*data.Sparse[float64], len(rows))
	for i, row := range rows {
		examples[i] = data.FromSlice(row)
	}
	return examples
}
