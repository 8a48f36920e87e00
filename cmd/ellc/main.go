// ellc is a small driver around the map compiler: it builds a built-in sample
// model, compiles it against a chosen backend, and can run the result on data
// supplied on the command line.
package main

import (
	"flag"
	"os"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "ellc",
	Short: "Compile and run the sample map model.",
	Long: `ellc compiles a small built-in scoring model into a function on the
selected backend. Use "compile" to inspect the emitted module, "run" to
execute it on an input vector, and "eval" to score it over a synthetic
dataset.`,
}

func init() {
	klog.InitFlags(nil)
	rootCmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)
	rootCmd.PersistentFlags().StringP("backend", "b", "",
		"Backend to compile with, as \"name\" or \"name:config\". Defaults to $ELL_BACKEND, then the first registered backend.")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		klog.Errorf("%+v", err)
		os.Exit(1)
	}
}
