package mapelites

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"k8s.io/apimachinery/pkg/util/validation/field"
	"k8s.io/klog/v2"

	"github.com/mihai-snyk/map-elites/apis/config/v1alpha1"
	"github.com/mihai-snyk/map-elites/pkg/mapelites/archive"
	"github.com/mihai-snyk/map-elites/pkg/mapelites/dataset"
	"github.com/mihai-snyk/map-elites/pkg/mapelites/util"
)

// PlotResult describes a rendered archive.
type PlotResult struct {
	// Inserted is the number of occupied entries passed to the archive.
	Inserted int
	// Elites is the number of occupied cells after insertion.
	Elites int
	Output string
	Bytes  int64
	Stats  archive.Stats
}

// PlotArchive loads the objectives, measures, solutions and occupied arrays
// from args.Dir, inserts the occupied entries into a fresh grid archive and
// writes a heatmap of it next to the inputs.
func PlotArchive(ctx context.Context, args *v1alpha1.PlotArgs) (*PlotResult, error) {
	logger := klog.FromContext(ctx)

	v1alpha1.SetDefaults_PlotArgs(args)
	if err := v1alpha1.ValidatePlotArgs(field.NewPath("plotArgs"), args); err != nil {
		return nil, err
	}

	d, err := dataset.Load(args.Dir)
	if err != nil {
		return nil, err
	}
	logger.V(4).Info("Loaded arrays", "dir", args.Dir, "entries", d.Len(), "solutionDim", d.SolutionDim())

	a, err := d.NewArchive(*args.Cells, *args.RangeMin, *args.RangeMax)
	if err != nil {
		return nil, err
	}
	solutions, objectives, measures := d.Select()
	if _, err := a.Add(solutions, objectives, measures); err != nil {
		return nil, fmt.Errorf("inserting into archive: %w", err)
	}

	res := &PlotResult{
		Inserted: len(objectives),
		Elites:   a.Len(),
		Output:   filepath.Join(args.Dir, args.Output),
		Stats:    a.Stats(),
	}
	if res.Bytes, err = renderFile(res.Output, func(f *os.File) error {
		return util.HeatmapPNG(f, a, util.DefaultHeatmapOptions())
	}); err != nil {
		return nil, err
	}
	logger.Info("Saved archive heatmap", "path", res.Output, "size", humanize.Bytes(uint64(res.Bytes)),
		"inserted", res.Inserted, "elites", res.Elites)

	if args.HTML {
		htmlPath := strings.TrimSuffix(res.Output, filepath.Ext(res.Output)) + ".html"
		n, err := renderFile(htmlPath, func(f *os.File) error {
			return util.HeatmapHTML(f, a, fmt.Sprintf("Archive (%d elites)", a.Len()))
		})
		if err != nil {
			return nil, err
		}
		logger.Info("Saved interactive heatmap", "path", htmlPath, "size", humanize.Bytes(uint64(n)))
	}
	return res, nil
}

// DefaultPlotArgs returns plot arguments for the fixed file names in the
// working directory.
func DefaultPlotArgs() *v1alpha1.PlotArgs {
	args := &v1alpha1.PlotArgs{}
	v1alpha1.SetDefaults_PlotArgs(args)
	return args
}

// renderFile creates path, lets render write into it and returns the size of
// the written file. A failed render removes the partial file.
func renderFile(path string, render func(*os.File) error) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	if err := render(f); err != nil {
		f.Close()
		os.Remove(path)
		return 0, fmt.Errorf("rendering %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return 0, err
	}
	if err := f.Close(); err != nil {
		return 0, err
	}
	return info.Size(), nil
}
