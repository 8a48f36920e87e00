package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/janpfeifer/must"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/SuFu123/ELL/backends/irtext"
	"github.com/SuFu123/ELL/compiler"
	"github.com/SuFu123/ELL/model"
)

var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Compile the sample model and print the emitted module.",
	Run: func(cmd *cobra.Command, args []string) {
		backend := compileSample(cmd, "predict")
		module := backend.Emitted()
		fmt.Print(module.String())
		fmt.Printf("variable storage: %s\n", humanize.Bytes(module.AllocatedBytes()))
	},
}

func init() {
	compileCmd.Flags().Bool("no-fuse", false, "Disable region fusion.")
	rootCmd.AddCommand(compileCmd)
}

// compileSample compiles the built-in model on the selected backend, with a
// progress bar over the nodes. Exits on any compilation error.
func compileSample(cmd *cobra.Command, functionName string) *irtext.Backend {
	backend, ok := selectBackend(cmd).(*irtext.Backend)
	if !ok {
		klog.Exitf("the selected backend cannot render or execute modules; use %q", irtext.BackendName)
	}
	noFuse := must.M1(cmd.Flags().GetBool("no-fuse"))
	c := compiler.NewMapCompiler(backend, compiler.Options{
		FuseRegions: !noFuse,
		Hooks:       &progressHooks{},
	})
	if err := c.CompileMap(buildSampleMap(), functionName); err != nil {
		klog.Exitf("%+v", err)
	}
	klog.V(1).Infof("compiled %q: %d variables", functionName, c.NumAllocatedVariables())
	return backend
}

// progressHooks drives a progress bar over the per-node compilation.
type progressHooks struct {
	compiler.NopHooks
	bar *progressbar.ProgressBar
}

func (h *progressHooks) OnBeginCompileModel(m *model.Model) {
	h.bar = progressbar.NewOptions(m.NumNodes(),
		progressbar.OptionSetDescription("compiling"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish())
}

func (h *progressHooks) OnEndCompileNode(node model.Node) {
	_ = h.bar.Add(1)
}

func (h *progressHooks) OnEndCompileModel(m *model.Model) {
	_ = h.bar.Finish()
}
