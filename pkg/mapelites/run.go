package mapelites

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"k8s.io/apimachinery/pkg/util/validation/field"
	"k8s.io/klog/v2"

	"github.com/mihai-snyk/map-elites/apis/config/v1alpha1"
	"github.com/mihai-snyk/map-elites/pkg/mapelites/algorithms"
	"github.com/mihai-snyk/map-elites/pkg/mapelites/archive"
	"github.com/mihai-snyk/map-elites/pkg/mapelites/benchmarks"
	"github.com/mihai-snyk/map-elites/pkg/mapelites/dataset"
	"github.com/mihai-snyk/map-elites/pkg/mapelites/framework"
	"github.com/mihai-snyk/map-elites/pkg/mapelites/metrics"
)

// RunMapElites runs MAP-Elites on the sphere benchmark with the given
// arguments and saves the final archive to args.OutputDir in the layout
// PlotArchive reads.
func RunMapElites(ctx context.Context, args *v1alpha1.MapElitesArgs) (*algorithms.Result, error) {
	logger := klog.FromContext(ctx)

	v1alpha1.SetDefaults_MapElitesArgs(args)
	if err := v1alpha1.ValidateMapElitesArgs(field.NewPath("mapElitesArgs"), args); err != nil {
		return nil, err
	}
	logger.V(5).Info("Running "+algorithms.Name, "seed", *args.Seed, "iterations", *args.Iterations,
		"batchSize", *args.BatchSize, "solutionDim", *args.SolutionDim, "cells", *args.Cells,
		"gridMin", *args.GridMin, "gridMax", *args.GridMax, "sigma", *args.Sigma)

	problem := benchmarks.NewSphereProblem(*args.SolutionDim)
	bounds := framework.Bounds{L: *args.GridMin, H: *args.GridMax}
	a, err := archive.NewGridArchive(
		problem.SolutionDim(),
		[]int{*args.Cells, *args.Cells},
		[]framework.Bounds{bounds, bounds},
		archive.WithEpsilon(*args.Epsilon),
	)
	if err != nil {
		return nil, err
	}

	recorder := metrics.NewRecorder()
	me := algorithms.NewMapElites(problem, a, *args.Seed, *args.Iterations, *args.BatchSize, *args.Sigma)
	me.LogEvery = *args.LogEvery
	me.OnIteration = func(_ int, status []archive.AddStatus) {
		recorder.ObserveBatch(status)
	}

	res, err := me.Run(ctx)
	if err != nil {
		return res, err
	}
	recorder.ObserveArchive(res.Stats)

	if err := dataset.Save(args.OutputDir, a); err != nil {
		return res, fmt.Errorf("saving archive: %w", err)
	}
	logger.Info("Saved archive", "dir", args.OutputDir, "cells", a.Cells(), "elites", a.Len(),
		"evaluations", humanize.Comma(int64(res.Evaluations)))

	if args.MetricsFile != "" {
		if err := recorder.WriteTextfile(args.MetricsFile); err != nil {
			return res, fmt.Errorf("writing metrics: %w", err)
		}
		logger.V(4).Info("Wrote metrics", "path", args.MetricsFile)
	}
	return res, nil
}
