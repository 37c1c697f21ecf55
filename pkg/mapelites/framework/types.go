package framework

import (
	"gonum.org/v1/gonum/mat"
)

// Bounds is a closed interval [L, H] on a single axis of the measure space.
type Bounds struct {
	L float64
	H float64
}

// Width returns H - L.
func (b Bounds) Width() float64 {
	return b.H - b.L
}

// Problem describes the contract a quality-diversity problem needs to implement.
type Problem interface {
	Name() string

	// SolutionDim is the number of decision variables of a solution.
	SolutionDim() int
	// MeasureDim is the number of behavior descriptors computed per solution.
	MeasureDim() int

	// Evaluate scores a batch of solutions, one per row, and returns the
	// objective of each row together with its measures (one row each).
	Evaluate(solutions mat.Matrix) ([]float64, *mat.Dense)
}

// Algorithm describes the contract that a QD algorithm needs to implement.
type Algorithm interface {
	Name() string
}
