package algorithms

import (
	"context"
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
	"k8s.io/klog/v2"

	"github.com/mihai-snyk/map-elites/pkg/mapelites/archive"
	"github.com/mihai-snyk/map-elites/pkg/mapelites/framework"
)

const (
	Name = "MAP-Elites"
)

// MapElites runs the MAP-Elites algorithm with isotropic Gaussian mutation.
type MapElites struct {
	Problem    framework.Problem
	Archive    *archive.GridArchive
	Iterations int
	BatchSize  int
	Sigma      float64
	LogEvery   int

	// OnIteration, when set, is called after every iteration with the
	// statuses of the inserted batch.
	OnIteration func(itr int, status []archive.AddStatus)

	rng   *rand.Rand
	noise distuv.Normal
}

var _ framework.Algorithm = &MapElites{}

// NewMapElites creates a new instance of MAP-Elites with given parameters.
// The archive must be sized for the problem's solutions and measures.
func NewMapElites(problem framework.Problem, a *archive.GridArchive, seed uint64, itrs, batchSize int, sigma float64) *MapElites {
	// Both generators share one PCG stream so that a seed fixes the whole run.
	src := rand.NewPCG(seed, seed)
	return &MapElites{
		Problem:    problem,
		Archive:    a,
		Iterations: itrs,
		BatchSize:  batchSize,
		Sigma:      sigma,
		LogEvery:   100,
		rng:        rand.New(src),
		noise: distuv.Normal{
			Mu:    0,
			Sigma: sigma,
			Src:   src,
		},
	}
}

func (m *MapElites) Name() string {
	return Name
}

// Result summarizes a finished run.
type Result struct {
	Iterations  int
	Evaluations int
	Stats       archive.Stats
}

// Ask produces the next batch of candidate solutions. The first batch is
// all zeros; later batches are elites sampled from the archive.
func (m *MapElites) Ask(itr int) (*mat.Dense, error) {
	if itr == 1 || m.Archive.Empty() {
		return mat.NewDense(m.BatchSize, m.Problem.SolutionDim(), nil), nil
	}
	return m.Archive.Sample(m.rng, m.BatchSize)
}

// Mutate adds Gaussian noise with standard deviation Sigma to every
// variable of every solution.
func (m *MapElites) Mutate(solutions *mat.Dense) {
	solutions.Apply(func(_, _ int, v float64) float64 {
		return v + m.noise.Rand()
	}, solutions)
}

// Tell evaluates solutions and inserts them into the archive.
func (m *MapElites) Tell(solutions *mat.Dense) ([]archive.AddStatus, error) {
	objectives, measures := m.Problem.Evaluate(solutions)
	return m.Archive.Add(solutions, objectives, measures)
}

// Run executes MAP-Elites for the configured number of iterations. The
// context is checked between iterations.
func (m *MapElites) Run(ctx context.Context) (*Result, error) {
	logger := klog.FromContext(ctx)
	if m.Problem.SolutionDim() != m.Archive.SolutionDim() || m.Problem.MeasureDim() != m.Archive.MeasureDim() {
		return nil, fmt.Errorf("archive with solution dim %d and %d measures cannot hold %s solutions (dim %d, %d measures)",
			m.Archive.SolutionDim(), m.Archive.MeasureDim(), m.Problem.Name(), m.Problem.SolutionDim(), m.Problem.MeasureDim())
	}
	logger.V(4).Info("Starting run", "algorithm", m.Name(), "problem", m.Problem.Name(),
		"iterations", m.Iterations, "batchSize", m.BatchSize, "sigma", m.Sigma)

	res := &Result{}
	for itr := 1; itr <= m.Iterations; itr++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		solutions, err := m.Ask(itr)
		if err != nil {
			return res, fmt.Errorf("iteration %d: %w", itr, err)
		}
		m.Mutate(solutions)
		status, err := m.Tell(solutions)
		if err != nil {
			return res, fmt.Errorf("iteration %d: %w", itr, err)
		}

		res.Iterations = itr
		res.Evaluations += len(status)
		if m.OnIteration != nil {
			m.OnIteration(itr, status)
		}

		if m.LogEvery > 0 && (itr%m.LogEvery == 0 || itr == m.Iterations) {
			stats := m.Archive.Stats()
			logger.Info("Iteration complete", "itr", itr, "elites", stats.NumElites,
				"coverage", stats.Coverage, "objMax", stats.ObjMax, "qdScore", stats.QDScore)
		}
	}

	res.Stats = m.Archive.Stats()
	return res, nil
}
