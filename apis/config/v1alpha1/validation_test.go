package v1alpha1

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/util/validation/field"
	"k8s.io/utils/ptr"
)

func TestSetDefaultsMapElitesArgs(t *testing.T) {
	args := &MapElitesArgs{Iterations: ptr.To(5)}
	SetDefaults_MapElitesArgs(args)

	assert.Equal(t, uint64(42), *args.Seed)
	assert.Equal(t, 5, *args.Iterations)
	assert.Equal(t, 100, *args.BatchSize)
	assert.Equal(t, 10, *args.SolutionDim)
	assert.Equal(t, 20, *args.Cells)
	assert.Equal(t, -1.0, *args.GridMin)
	assert.Equal(t, 1.0, *args.GridMax)
	assert.Equal(t, 1e-6, *args.Epsilon)
	assert.Equal(t, 0.1, *args.Sigma)
	assert.Equal(t, ".", args.OutputDir)
	assert.Empty(t, args.MetricsFile)

	require.NoError(t, ValidateMapElitesArgs(field.NewPath("mapElitesArgs"), args))
}

func TestValidateMapElitesArgs(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*MapElitesArgs)
		field  string
	}{
		{"zero iterations", func(a *MapElitesArgs) { a.Iterations = ptr.To(0) }, "iterations"},
		{"negative batch", func(a *MapElitesArgs) { a.BatchSize = ptr.To(-1) }, "batchSize"},
		{"one dimensional solutions", func(a *MapElitesArgs) { a.SolutionDim = ptr.To(1) }, "solutionDim"},
		{"inverted grid", func(a *MapElitesArgs) { a.GridMin = ptr.To(2.0) }, "gridMax"},
		{"negative epsilon", func(a *MapElitesArgs) { a.Epsilon = ptr.To(-1e-3) }, "epsilon"},
		{"zero sigma", func(a *MapElitesArgs) { a.Sigma = ptr.To(0.0) }, "sigma"},
		{"no cells", func(a *MapElitesArgs) { a.Cells = ptr.To(0) }, "cells"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := &MapElitesArgs{}
			SetDefaults_MapElitesArgs(args)
			tt.modify(args)
			err := ValidateMapElitesArgs(field.NewPath("args"), args)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "args."+tt.field)
		})
	}
}

func TestValidateMapElitesArgsAggregates(t *testing.T) {
	args := &MapElitesArgs{}
	SetDefaults_MapElitesArgs(args)
	args.Iterations = ptr.To(0)
	args.Sigma = ptr.To(-1.0)
	err := ValidateMapElitesArgs(field.NewPath("args"), args)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "args.iterations")
	assert.Contains(t, err.Error(), "args.sigma")
}

func TestPlotArgs(t *testing.T) {
	args := &PlotArgs{}
	SetDefaults_PlotArgs(args)
	assert.Equal(t, ".", args.Dir)
	assert.Equal(t, 20, *args.Cells)
	assert.Equal(t, -1.0, *args.RangeMin)
	assert.Equal(t, 1.0, *args.RangeMax)
	assert.Equal(t, "archive.png", args.Output)
	require.NoError(t, ValidatePlotArgs(field.NewPath("plotArgs"), args))

	args.Output = filepath.Join("sub", "archive.png")
	assert.Error(t, ValidatePlotArgs(field.NewPath("plotArgs"), args))
}

func TestLoadMapElitesArgs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("seed: 7\niterations: 12\nsigma: 0.25\noutputDir: out\n"), 0o644))

	args := &MapElitesArgs{}
	require.NoError(t, LoadMapElitesArgs(path, args))
	SetDefaults_MapElitesArgs(args)
	assert.Equal(t, uint64(7), *args.Seed)
	assert.Equal(t, 12, *args.Iterations)
	assert.Equal(t, 0.25, *args.Sigma)
	assert.Equal(t, "out", args.OutputDir)
	assert.Equal(t, 100, *args.BatchSize)

	require.NoError(t, os.WriteFile(path, []byte("seeed: 7\n"), 0o644))
	assert.Error(t, LoadMapElitesArgs(path, &MapElitesArgs{}))

	assert.Error(t, LoadMapElitesArgs(filepath.Join(dir, "missing.yaml"), &MapElitesArgs{}))
}
