// mapelites runs MAP-Elites on the sphere benchmark and renders grid
// archives stored as NumPy arrays.
//
// Usage:
//
//	mapelites run [--config=<file>] [--seed=42] [--itrs=1000] ...
//	mapelites plot
//	mapelites sphere [--dim=10]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "mapelites",
	Short: "Quality-diversity search with MAP-Elites grid archives",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage: true,
}

func init() {
	fs := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(fs)
	rootCmd.PersistentFlags().AddGoFlagSet(fs)

	rootCmd.AddCommand(plotCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(sphereCmd)
	rootCmd.Version = version
}

func main() {
	os.Exit(run())
}

func run() int {
	defer klog.Flush()

	logger := klog.Background()
	ctx := klog.NewContext(context.Background(), logger)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
