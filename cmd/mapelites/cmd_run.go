package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mihai-snyk/map-elites/apis/config/v1alpha1"
	"github.com/mihai-snyk/map-elites/pkg/mapelites"
)

var runFlags struct {
	config      string
	seed        uint64
	itrs        int
	batchSize   int
	dim         int
	cells       int
	gridMin     float64
	gridMax     float64
	epsilon     float64
	sigma       float64
	logEvery    int
	outputDir   string
	metricsFile string
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run MAP-Elites on the sphere function and save the archive arrays",
	Args:  cobra.NoArgs,
	RunE:  runMapElites,
}

func init() {
	f := runCmd.Flags()
	f.StringVar(&runFlags.config, "config", "", "YAML file with MapElitesArgs; flags override its values")
	f.Uint64Var(&runFlags.seed, "seed", v1alpha1.DefaultSeed, "Random seed")
	f.IntVar(&runFlags.itrs, "itrs", v1alpha1.DefaultIterations, "Iterations to run MAP-Elites")
	f.IntVar(&runFlags.batchSize, "batch-size", v1alpha1.DefaultBatchSize, "Number of solutions to evaluate per iteration")
	f.IntVar(&runFlags.dim, "dim", v1alpha1.DefaultSolutionDim, "Dimensionality of the solutions")
	f.IntVar(&runFlags.cells, "cells", v1alpha1.DefaultCells, "Number of cells along each side of the archive grid")
	f.Float64Var(&runFlags.gridMin, "grid-min", v1alpha1.DefaultGridMin, "Lower bound of measure space")
	f.Float64Var(&runFlags.gridMax, "grid-max", v1alpha1.DefaultGridMax, "Upper bound of measure space")
	f.Float64Var(&runFlags.epsilon, "epsilon", v1alpha1.DefaultEpsilon, "Epsilon for grid cell calculations")
	f.Float64Var(&runFlags.sigma, "sigma", v1alpha1.DefaultSigma, "Standard deviation of Gaussian noise")
	f.IntVar(&runFlags.logEvery, "log-every", v1alpha1.DefaultLogEvery, "Log progress every this many iterations")
	f.StringVarP(&runFlags.outputDir, "output-dir", "o", v1alpha1.DefaultOutputDir, "Directory receiving the archive arrays")
	f.StringVar(&runFlags.metricsFile, "metrics-file", "", "Write Prometheus metrics to this file")
}

func runMapElites(cmd *cobra.Command, _ []string) error {
	args := &v1alpha1.MapElitesArgs{}
	if runFlags.config != "" {
		if err := v1alpha1.LoadMapElitesArgs(runFlags.config, args); err != nil {
			return err
		}
	}
	applyRunFlags(cmd.Flags(), args)

	res, err := mapelites.RunMapElites(cmd.Context(), args)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d iterations, %d evaluations, %d elites (coverage %.2f%%), best objective %.6g\n",
		res.Iterations, res.Evaluations, res.Stats.NumElites, 100*res.Stats.Coverage, res.Stats.ObjMax)
	return nil
}

// applyRunFlags copies explicitly set flags into args. Without a config
// file every flag is applied so that flag defaults take effect.
func applyRunFlags(fs *pflag.FlagSet, args *v1alpha1.MapElitesArgs) {
	set := func(name string) bool {
		return runFlags.config == "" || fs.Changed(name)
	}
	if set("seed") {
		args.Seed = &runFlags.seed
	}
	if set("itrs") {
		args.Iterations = &runFlags.itrs
	}
	if set("batch-size") {
		args.BatchSize = &runFlags.batchSize
	}
	if set("dim") {
		args.SolutionDim = &runFlags.dim
	}
	if set("cells") {
		args.Cells = &runFlags.cells
	}
	if set("grid-min") {
		args.GridMin = &runFlags.gridMin
	}
	if set("grid-max") {
		args.GridMax = &runFlags.gridMax
	}
	if set("epsilon") {
		args.Epsilon = &runFlags.epsilon
	}
	if set("sigma") {
		args.Sigma = &runFlags.sigma
	}
	if set("log-every") {
		args.LogEvery = &runFlags.logEvery
	}
	if set("output-dir") {
		args.OutputDir = runFlags.outputDir
	}
	if set("metrics-file") {
		args.MetricsFile = runFlags.metricsFile
	}
}
