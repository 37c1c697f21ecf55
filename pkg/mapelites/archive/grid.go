package archive

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/mihai-snyk/map-elites/pkg/mapelites/framework"
)

const (
	// DefaultEpsilon is added to scaled measures before flooring so that values
	// sitting on a cell boundary are not pushed into the lower cell by
	// floating point error.
	DefaultEpsilon = 1e-6
)

// ErrEmptyArchive is returned by operations that need at least one elite.
var ErrEmptyArchive = errors.New("archive is empty")

// AddStatus describes what happened to a solution passed to Add.
type AddStatus int

const (
	NotAdded AddStatus = iota
	ImproveExisting
	New
)

func (s AddStatus) String() string {
	switch s {
	case NotAdded:
		return "NotAdded"
	case ImproveExisting:
		return "ImproveExisting"
	case New:
		return "New"
	}
	return fmt.Sprintf("AddStatus(%d)", int(s))
}

// Elite is the solution stored in a single cell.
type Elite struct {
	Index     int
	Solution  []float64
	Objective float64
	Measures  []float64
}

// Option configures a GridArchive.
type Option func(*GridArchive)

// WithEpsilon overrides DefaultEpsilon.
func WithEpsilon(eps float64) Option {
	return func(a *GridArchive) {
		a.epsilon = eps
	}
}

// WithThreshold sets the minimum objective a solution needs to enter the archive.
func WithThreshold(threshold float64) Option {
	return func(a *GridArchive) {
		a.threshold = threshold
	}
}

// WithQDScoreOffset sets the value subtracted from every objective when
// computing the QD score.
func WithQDScoreOffset(offset float64) Option {
	return func(a *GridArchive) {
		a.qdOffset = offset
	}
}

// GridArchive partitions a bounded measure space into a uniform grid and
// keeps the best solution found for every cell. Cells are addressed by a
// flat row-major index over dims.
//
// A GridArchive is not safe for concurrent use.
type GridArchive struct {
	solutionDim int
	dims        []int
	ranges      []framework.Bounds
	epsilon     float64
	threshold   float64
	qdOffset    float64

	solutions  *mat.Dense
	measures   *mat.Dense
	objectives []float64
	occupied   []bool

	// occupiedList holds the indices of occupied cells in insertion order so
	// that sampling does not have to scan the grid.
	occupiedList []int
}

// NewGridArchive creates an empty archive with dims cells along each measure
// axis, covering ranges.
func NewGridArchive(solutionDim int, dims []int, ranges []framework.Bounds, opts ...Option) (*GridArchive, error) {
	if solutionDim < 1 {
		return nil, fmt.Errorf("solution dim must be positive, got %d", solutionDim)
	}
	if len(dims) == 0 {
		return nil, errors.New("dims must not be empty")
	}
	if len(dims) != len(ranges) {
		return nil, fmt.Errorf("dims has %d entries but ranges has %d", len(dims), len(ranges))
	}
	for i, d := range dims {
		if d < 1 {
			return nil, fmt.Errorf("dims[%d] must be positive, got %d", i, d)
		}
		if !(ranges[i].L < ranges[i].H) {
			return nil, fmt.Errorf("ranges[%d] lower bound %v must be less than upper bound %v", i, ranges[i].L, ranges[i].H)
		}
	}

	a := &GridArchive{
		solutionDim: solutionDim,
		dims:        append([]int(nil), dims...),
		ranges:      append([]framework.Bounds(nil), ranges...),
		epsilon:     DefaultEpsilon,
		threshold:   math.Inf(-1),
	}
	for _, opt := range opts {
		opt(a)
	}

	cells := framework.Product(a.dims)
	a.solutions = mat.NewDense(cells, solutionDim, nil)
	a.measures = mat.NewDense(cells, len(dims), nil)
	a.objectives = make([]float64, cells)
	a.occupied = make([]bool, cells)
	return a, nil
}

func (a *GridArchive) SolutionDim() int { return a.solutionDim }

// MeasureDim is the number of measure axes.
func (a *GridArchive) MeasureDim() int { return len(a.dims) }

func (a *GridArchive) Dims() []int { return append([]int(nil), a.dims...) }

func (a *GridArchive) Ranges() []framework.Bounds { return append([]framework.Bounds(nil), a.ranges...) }

// Cells is the total number of cells in the grid.
func (a *GridArchive) Cells() int { return len(a.objectives) }

// Len is the number of occupied cells.
func (a *GridArchive) Len() int { return len(a.occupiedList) }

func (a *GridArchive) Empty() bool { return len(a.occupiedList) == 0 }

// Index maps measures to the flat index of the cell containing them.
// Measures outside the archive ranges are clipped into the boundary cells.
func (a *GridArchive) Index(measures []float64) (int, error) {
	if len(measures) != len(a.dims) {
		return 0, fmt.Errorf("expected %d measures, got %d", len(a.dims), len(measures))
	}
	idx := 0
	for i, m := range measures {
		if math.IsNaN(m) || math.IsInf(m, 0) {
			return 0, fmt.Errorf("measure %d is not finite: %v", i, m)
		}
		r := a.ranges[i]
		// epsilon is added in cell units. pyribs adds it before dividing by
		// the interval width, so here the slack is width times larger.
		col := int(math.Floor((m-r.L)*float64(a.dims[i])/r.Width() + a.epsilon))
		col = framework.Clip(col, 0, a.dims[i]-1)
		idx = idx*a.dims[i] + col
	}
	return idx, nil
}

// GridIndex converts a flat index into per-axis cell coordinates.
func (a *GridArchive) GridIndex(index int) []int {
	coords := make([]int, len(a.dims))
	for i := len(a.dims) - 1; i >= 0; i-- {
		coords[i] = index % a.dims[i]
		index /= a.dims[i]
	}
	return coords
}

// CellBounds returns the measure interval covered by cell idx along axis.
func (a *GridArchive) CellBounds(axis, idx int) framework.Bounds {
	r := a.ranges[axis]
	w := r.Width() / float64(a.dims[axis])
	return framework.Bounds{
		L: r.L + float64(idx)*w,
		H: r.L + float64(idx+1)*w,
	}
}

// AddSingle inserts one solution. The returned value is the objective for a
// new cell, or the difference to the current elite otherwise.
func (a *GridArchive) AddSingle(solution []float64, objective float64, measures []float64) (AddStatus, float64, error) {
	if len(solution) != a.solutionDim {
		return NotAdded, 0, fmt.Errorf("expected solution of length %d, got %d", a.solutionDim, len(solution))
	}
	if math.IsNaN(objective) || math.IsInf(objective, 0) {
		return NotAdded, 0, fmt.Errorf("objective is not finite: %v", objective)
	}
	idx, err := a.Index(measures)
	if err != nil {
		return NotAdded, 0, err
	}

	if objective < a.threshold {
		return NotAdded, objective - a.threshold, nil
	}

	if !a.occupied[idx] {
		a.store(idx, solution, objective, measures)
		a.occupied[idx] = true
		a.occupiedList = append(a.occupiedList, idx)
		return New, objective, nil
	}

	current := a.objectives[idx]
	if objective > current {
		a.store(idx, solution, objective, measures)
		return ImproveExisting, objective - current, nil
	}
	return NotAdded, objective - current, nil
}

func (a *GridArchive) store(idx int, solution []float64, objective float64, measures []float64) {
	a.solutions.SetRow(idx, solution)
	a.measures.SetRow(idx, measures)
	a.objectives[idx] = objective
}

// Add inserts a batch of solutions, one per row. Shapes and values are
// checked before any row is inserted, so a failed Add leaves the archive
// unchanged.
func (a *GridArchive) Add(solutions mat.Matrix, objectives []float64, measures mat.Matrix) ([]AddStatus, error) {
	n := len(objectives)
	if n == 0 {
		return []AddStatus{}, nil
	}
	if solutions == nil || measures == nil {
		return nil, fmt.Errorf("got %d objectives but no solutions or measures", n)
	}
	sr, sc := solutions.Dims()
	mr, mc := measures.Dims()
	if sr != n || mr != n {
		return nil, fmt.Errorf("batch has %d solutions, %d objectives and %d measures; all must match", sr, n, mr)
	}
	if sc != a.solutionDim {
		return nil, fmt.Errorf("expected solutions with %d columns, got %d", a.solutionDim, sc)
	}
	if mc != len(a.dims) {
		return nil, fmt.Errorf("expected measures with %d columns, got %d", len(a.dims), mc)
	}
	for i, obj := range objectives {
		if math.IsNaN(obj) || math.IsInf(obj, 0) {
			return nil, fmt.Errorf("row %d: objective is not finite: %v", i, obj)
		}
		for j := 0; j < mc; j++ {
			if m := measures.At(i, j); math.IsNaN(m) || math.IsInf(m, 0) {
				return nil, fmt.Errorf("row %d: measure %d is not finite: %v", i, j, m)
			}
		}
	}

	status := make([]AddStatus, n)
	sol := make([]float64, sc)
	meas := make([]float64, mc)
	for i := 0; i < n; i++ {
		mat.Row(sol, i, solutions)
		mat.Row(meas, i, measures)
		s, _, err := a.AddSingle(sol, objectives[i], meas)
		if err != nil {
			return status[:i], fmt.Errorf("row %d: %w", i, err)
		}
		status[i] = s
	}
	return status, nil
}

// Elite returns the elite stored at index. ok is false for empty cells.
func (a *GridArchive) Elite(index int) (Elite, bool) {
	if index < 0 || index >= len(a.occupied) || !a.occupied[index] {
		return Elite{}, false
	}
	return Elite{
		Index:     index,
		Solution:  mat.Row(nil, index, a.solutions),
		Objective: a.objectives[index],
		Measures:  mat.Row(nil, index, a.measures),
	}, true
}

// Elites returns all elites ordered by cell index.
func (a *GridArchive) Elites() []Elite {
	elites := make([]Elite, 0, a.Len())
	for i, occ := range a.occupied {
		if !occ {
			continue
		}
		e, _ := a.Elite(i)
		elites = append(elites, e)
	}
	return elites
}

// Occupied returns a copy of the per-cell occupancy mask.
func (a *GridArchive) Occupied() []bool {
	return append([]bool(nil), a.occupied...)
}

// Objective returns the objective stored at index, or NaN for an empty cell
// or an index outside the grid.
func (a *GridArchive) Objective(index int) float64 {
	if index < 0 || index >= len(a.occupied) || !a.occupied[index] {
		return math.NaN()
	}
	return a.objectives[index]
}

// Sample draws n elite solutions uniformly at random from the occupied
// cells, with replacement. The result has one solution per row.
func (a *GridArchive) Sample(rng *rand.Rand, n int) (*mat.Dense, error) {
	if a.Empty() {
		return nil, ErrEmptyArchive
	}
	if n < 1 {
		return nil, fmt.Errorf("sample size must be positive, got %d", n)
	}
	out := mat.NewDense(n, a.solutionDim, nil)
	for i := 0; i < n; i++ {
		idx := a.occupiedList[rng.IntN(len(a.occupiedList))]
		out.SetRow(i, a.solutions.RawRowView(idx))
	}
	return out, nil
}

// Dense returns per-cell copies of the archive contents, one row per cell.
// Rows of empty cells are zero.
func (a *GridArchive) Dense() (solutions *mat.Dense, objectives []float64, measures *mat.Dense, occupied []bool) {
	return mat.DenseCopyOf(a.solutions), append([]float64(nil), a.objectives...), mat.DenseCopyOf(a.measures), a.Occupied()
}

// Clear removes every elite.
func (a *GridArchive) Clear() {
	a.solutions.Zero()
	a.measures.Zero()
	for i := range a.objectives {
		a.objectives[i] = 0
		a.occupied[i] = false
	}
	a.occupiedList = a.occupiedList[:0]
}

// Stats summarizes the archive contents.
type Stats struct {
	NumElites int
	Coverage  float64
	QDScore   float64
	ObjMax    float64
	ObjMin    float64
	ObjMean   float64
}

// Stats computes summary statistics. Objective statistics are NaN for an
// empty archive.
func (a *GridArchive) Stats() Stats {
	s := Stats{
		NumElites: a.Len(),
		Coverage:  float64(a.Len()) / float64(a.Cells()),
		ObjMax:    math.NaN(),
		ObjMin:    math.NaN(),
		ObjMean:   math.NaN(),
	}
	if a.Empty() {
		return s
	}

	objs := make([]float64, 0, a.Len())
	for _, idx := range a.occupiedList {
		objs = append(objs, a.objectives[idx])
	}
	sum := floats.Sum(objs)
	s.ObjMax = floats.Max(objs)
	s.ObjMin = floats.Min(objs)
	s.ObjMean = stat.Mean(objs, nil)
	s.QDScore = sum - a.qdOffset*float64(len(objs))
	return s
}
