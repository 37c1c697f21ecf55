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

// MapElitesArgs holds the arguments used to run MAP-Elites on the sphere
// benchmark and persist the resulting archive.
type MapElitesArgs struct {
	// Seed of the random number generator.
	Seed *uint64 `json:"seed,omitempty"`

	// Iterations to run MAP-Elites.
	Iterations *int `json:"iterations,omitempty"`

	// BatchSize is the number of solutions evaluated per iteration.
	BatchSize *int `json:"batchSize,omitempty"`

	// SolutionDim is the dimensionality of the solutions.
	SolutionDim *int `json:"solutionDim,omitempty"`

	// Cells is the number of cells along each side of the 2D archive grid.
	Cells *int `json:"cells,omitempty"`

	// GridMin is the lower bound of the measure space on both axes.
	GridMin *float64 `json:"gridMin,omitempty"`

	// GridMax is the upper bound of the measure space on both axes.
	GridMax *float64 `json:"gridMax,omitempty"`

	// Epsilon used for grid cell calculations.
	Epsilon *float64 `json:"epsilon,omitempty"`

	// Sigma is the standard deviation of the Gaussian mutation noise.
	Sigma *float64 `json:"sigma,omitempty"`

	// LogEvery controls how often, in iterations, progress is logged.
	LogEvery *int `json:"logEvery,omitempty"`

	// OutputDir receives the objectives, measures, solutions and occupied
	// arrays of the final archive.
	OutputDir string `json:"outputDir,omitempty"`

	// MetricsFile, when set, receives the archive metrics in the Prometheus
	// text exposition format.
	MetricsFile string `json:"metricsFile,omitempty"`
}

// PlotArgs holds the arguments used to render an archive heatmap from the
// arrays on disk.
type PlotArgs struct {
	// Dir holds the input arrays and receives the rendered heatmap.
	Dir string `json:"dir,omitempty"`

	// Cells is the number of cells along each side of the 2D archive grid.
	Cells *int `json:"cells,omitempty"`

	// RangeMin is the lower bound of the measure space on both axes.
	RangeMin *float64 `json:"rangeMin,omitempty"`

	// RangeMax is the upper bound of the measure space on both axes.
	RangeMax *float64 `json:"rangeMax,omitempty"`

	// Output is the file name of the rendered image, relative to Dir.
	Output string `json:"output,omitempty"`

	// HTML additionally renders an interactive heatmap next to Output.
	HTML bool `json:"html,omitempty"`
}
