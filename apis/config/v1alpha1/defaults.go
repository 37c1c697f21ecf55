/*
Copyright 2024 The Kubernetes Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package v1alpha1

import (
	"k8s.io/utils/ptr"
)

// DefaultSeed matches the seed used by the reference runs.
var DefaultSeed uint64 = 42

var (
	DefaultIterations  = 1000
	DefaultBatchSize   = 100
	DefaultSolutionDim = 10
	DefaultCells       = 20
	DefaultGridMin     = -1.0
	DefaultGridMax     = 1.0
	DefaultEpsilon     = 1e-6
	DefaultSigma       = 0.1
	DefaultLogEvery    = 100
	DefaultOutputDir   = "."
	DefaultPlotOutput  = "archive.png"
)

// SetDefaults_MapElitesArgs sets the default parameters for a MAP-Elites run.
func SetDefaults_MapElitesArgs(obj *MapElitesArgs) {
	if obj.Seed == nil {
		obj.Seed = ptr.To(DefaultSeed)
	}
	if obj.Iterations == nil {
		obj.Iterations = ptr.To(DefaultIterations)
	}
	if obj.BatchSize == nil {
		obj.BatchSize = ptr.To(DefaultBatchSize)
	}
	if obj.SolutionDim == nil {
		obj.SolutionDim = ptr.To(DefaultSolutionDim)
	}
	if obj.Cells == nil {
		obj.Cells = ptr.To(DefaultCells)
	}
	if obj.GridMin == nil {
		obj.GridMin = ptr.To(DefaultGridMin)
	}
	if obj.GridMax == nil {
		obj.GridMax = ptr.To(DefaultGridMax)
	}
	if obj.Epsilon == nil {
		obj.Epsilon = ptr.To(DefaultEpsilon)
	}
	if obj.Sigma == nil {
		obj.Sigma = ptr.To(DefaultSigma)
	}
	if obj.LogEvery == nil {
		obj.LogEvery = ptr.To(DefaultLogEvery)
	}
	if obj.OutputDir == "" {
		obj.OutputDir = DefaultOutputDir
	}
}

// SetDefaults_PlotArgs sets the default parameters for rendering a heatmap.
func SetDefaults_PlotArgs(obj *PlotArgs) {
	if obj.Dir == "" {
		obj.Dir = DefaultOutputDir
	}
	if obj.Cells == nil {
		obj.Cells = ptr.To(DefaultCells)
	}
	if obj.RangeMin == nil {
		obj.RangeMin = ptr.To(DefaultGridMin)
	}
	if obj.RangeMax == nil {
		obj.RangeMax = ptr.To(DefaultGridMax)
	}
	if obj.Output == "" {
		obj.Output = DefaultPlotOutput
	}
}
