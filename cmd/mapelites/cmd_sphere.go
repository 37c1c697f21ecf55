package main

import (
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/mihai-snyk/map-elites/pkg/mapelites/benchmarks"
)

var sphereFlags struct {
	dim int
}

var sphereCmd = &cobra.Command{
	Use:   "sphere",
	Short: "Demonstration of the sphere function",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if sphereFlags.dim < 1 {
			return fmt.Errorf("--dim must be positive, got %d", sphereFlags.dim)
		}
		sphereDemo(cmd.OutOrStdout(), sphereFlags.dim)
		return nil
	},
}

func init() {
	sphereCmd.Flags().IntVarP(&sphereFlags.dim, "dim", "d", 10, "Dimensionality of the 1D solutions")
}

func sphereDemo(w io.Writer, dim int) {
	input := mat.NewDense(2, 5, []float64{
		1, 1, 1, 1, 1,
		1, 2, 3, 4, 5,
	})
	fmt.Fprintf(w, "input:\n%v\n", mat.Formatted(input))
	fmt.Fprintf(w, "input[0]: %v\n", mat.Row(nil, 0, input))
	fmt.Fprintf(w, "Sphere of input[0]: %v\n", benchmarks.Sphere(mat.Row(nil, 0, input)))

	r, _ := input.Dims()
	for i := range r {
		fmt.Fprintf(w, "-> Sphere of row %d: %v\n", i, benchmarks.Sphere(mat.Row(nil, i, input)))
	}
	fmt.Fprintf(w, "In batch: %v\n", benchmarks.SphereBatch(input))

	normal := distuv.UnitNormal
	normal.Src = rand.NewPCG(42, 42)
	random := mat.NewDense(2, dim, nil)
	random.Apply(func(_, _ int, _ float64) float64 {
		return normal.Rand()
	}, random)
	fmt.Fprintf(w, "Random inputs:\n%v\n", mat.Formatted(random))
	fmt.Fprintf(w, "With random inputs: %v\n", benchmarks.SphereBatch(random))
}
