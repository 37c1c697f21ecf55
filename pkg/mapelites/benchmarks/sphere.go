package benchmarks

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	Name = "Sphere"
)

// Sphere computes the sphere function sum(x_i^2) for a single solution.
func Sphere(x []float64) float64 {
	return floats.Dot(x, x)
}

// SphereBatch computes the sphere function for every row of x.
func SphereBatch(x mat.Matrix) []float64 {
	r, _ := x.Dims()
	out := make([]float64, r)
	for i := range r {
		row := mat.Row(nil, i, x)
		out[i] = Sphere(row)
	}
	return out
}

// NegativeSphere computes the negated sphere function for every row of x, so
// that maximizing it drives solutions towards the origin.
func NegativeSphere(x mat.Matrix) []float64 {
	out := SphereBatch(x)
	floats.Scale(-1, out)
	return out
}

// FirstTwoVals uses the first two variables of each row as its measures.
// It panics if x has fewer than two columns.
func FirstTwoVals(x mat.Matrix) *mat.Dense {
	r, c := x.Dims()
	if c < 2 {
		panic(fmt.Sprintf("benchmarks: FirstTwoVals needs at least 2 columns, got %d", c))
	}
	out := mat.NewDense(r, 2, nil)
	out.Copy(x)
	return out
}

// SphereProblem maximizes the negative sphere function with the first two
// variables of a solution as its measures.
type SphereProblem struct {
	numVars int
}

func NewSphereProblem(numVars int) *SphereProblem {
	return &SphereProblem{
		numVars,
	}
}

func (p *SphereProblem) Name() string {
	return Name
}

func (p *SphereProblem) SolutionDim() int {
	return p.numVars
}

func (p *SphereProblem) MeasureDim() int {
	return 2
}

func (p *SphereProblem) Evaluate(solutions mat.Matrix) ([]float64, *mat.Dense) {
	return NegativeSphere(solutions), FirstTwoVals(solutions)
}
