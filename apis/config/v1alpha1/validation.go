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
	"fmt"
	"os"
	"path/filepath"

	"k8s.io/apimachinery/pkg/util/validation/field"
	"k8s.io/utils/ptr"
	"sigs.k8s.io/yaml"
)

// ValidateMapElitesArgs validates defaulted MAP-Elites arguments.
func ValidateMapElitesArgs(path *field.Path, args *MapElitesArgs) error {
	var allErrs field.ErrorList

	allErrs = append(allErrs, validatePositive(path.Child("iterations"), args.Iterations)...)
	allErrs = append(allErrs, validatePositive(path.Child("batchSize"), args.BatchSize)...)
	allErrs = append(allErrs, validatePositive(path.Child("cells"), args.Cells)...)
	allErrs = append(allErrs, validatePositive(path.Child("logEvery"), args.LogEvery)...)

	// The first two variables of a solution are its measures.
	if dim := ptr.Deref(args.SolutionDim, 0); dim < 2 {
		allErrs = append(allErrs, field.Invalid(path.Child("solutionDim"), dim, "must be at least 2"))
	}
	if lo, hi := ptr.Deref(args.GridMin, 0), ptr.Deref(args.GridMax, 0); !(lo < hi) {
		allErrs = append(allErrs, field.Invalid(path.Child("gridMax"), hi, fmt.Sprintf("must be greater than gridMin (%v)", lo)))
	}
	if eps := ptr.Deref(args.Epsilon, -1); eps < 0 {
		allErrs = append(allErrs, field.Invalid(path.Child("epsilon"), eps, "must be non-negative"))
	}
	if sigma := ptr.Deref(args.Sigma, 0); sigma <= 0 {
		allErrs = append(allErrs, field.Invalid(path.Child("sigma"), sigma, "must be positive"))
	}

	return allErrs.ToAggregate()
}

// ValidatePlotArgs validates defaulted plot arguments.
func ValidatePlotArgs(path *field.Path, args *PlotArgs) error {
	var allErrs field.ErrorList

	allErrs = append(allErrs, validatePositive(path.Child("cells"), args.Cells)...)
	if lo, hi := ptr.Deref(args.RangeMin, 0), ptr.Deref(args.RangeMax, 0); !(lo < hi) {
		allErrs = append(allErrs, field.Invalid(path.Child("rangeMax"), hi, fmt.Sprintf("must be greater than rangeMin (%v)", lo)))
	}
	if args.Output != filepath.Base(args.Output) {
		allErrs = append(allErrs, field.Invalid(path.Child("output"), args.Output, "must be a file name"))
	}

	return allErrs.ToAggregate()
}

func validatePositive(path *field.Path, v *int) field.ErrorList {
	if v == nil {
		return field.ErrorList{field.Required(path, "")}
	}
	if *v < 1 {
		return field.ErrorList{field.Invalid(path, *v, "must be positive")}
	}
	return nil
}

// LoadMapElitesArgs decodes a YAML or JSON file into args. Unknown fields
// are rejected.
func LoadMapElitesArgs(path string, args *MapElitesArgs) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.UnmarshalStrict(data, args); err != nil {
		return fmt.Errorf("decoding config %s: %w", path, err)
	}
	return nil
}
