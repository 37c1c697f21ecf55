package dataset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sbinet/npyio/npy"
	"golang.org/x/exp/constraints"
	"gonum.org/v1/gonum/mat"

	"github.com/mihai-snyk/map-elites/pkg/mapelites/archive"
	"github.com/mihai-snyk/map-elites/pkg/mapelites/framework"
)

// File names of the four parallel arrays describing an archive.
const (
	ObjectivesFile = "objectives.npy"
	MeasuresFile   = "measures.npy"
	SolutionsFile  = "solutions.npy"
	OccupiedFile   = "occupied.npy"
)

// ErrShapeMismatch is returned when the arrays do not share the same number of entries.
var ErrShapeMismatch = errors.New("arrays have mismatched entry counts")

// Dataset holds one entry per candidate solution. Row i of Measures and
// Solutions belongs to Objectives[i] and Occupied[i].
type Dataset struct {
	Objectives []float64
	Measures   *mat.Dense
	Solutions  *mat.Dense
	Occupied   []bool

	// solutionDim remembers the row width of solutions when there are no
	// entries to hold it.
	solutionDim int
}

// Len is the number of entries.
func (d *Dataset) Len() int {
	return len(d.Occupied)
}

// NumOccupied counts the entries flagged as occupied.
func (d *Dataset) NumOccupied() int {
	n := 0
	for _, occ := range d.Occupied {
		if occ {
			n++
		}
	}
	return n
}

// SolutionDim is the row width of Solutions.
func (d *Dataset) SolutionDim() int {
	if d.Solutions == nil || d.Solutions.IsEmpty() {
		return d.solutionDim
	}
	_, c := d.Solutions.Dims()
	return c
}

// Select returns the solutions, objectives and measures of the occupied
// entries. The matrices are nil when no entry is occupied.
func (d *Dataset) Select() (*mat.Dense, []float64, *mat.Dense) {
	n := d.NumOccupied()
	objectives := make([]float64, 0, n)
	if n == 0 {
		return nil, objectives, nil
	}

	_, sc := d.Solutions.Dims()
	_, mc := d.Measures.Dims()
	solutions := mat.NewDense(n, sc, nil)
	measures := mat.NewDense(n, mc, nil)
	row := 0
	for i, occ := range d.Occupied {
		if !occ {
			continue
		}
		solutions.SetRow(row, d.Solutions.RawRowView(i))
		measures.SetRow(row, d.Measures.RawRowView(i))
		objectives = append(objectives, d.Objectives[i])
		row++
	}
	return solutions, objectives, measures
}

// Load reads the four arrays from dir. Every file is read before any
// validation of their shapes takes place.
//
// Arrays may carry any number of leading axes. Objectives and occupied are
// flattened; measures and solutions keep their last axis as the row width.
func Load(dir string) (*Dataset, error) {
	objectives, _, err := readFloats(filepath.Join(dir, ObjectivesFile))
	if err != nil {
		return nil, err
	}
	measures, measuresShape, err := readFloats(filepath.Join(dir, MeasuresFile))
	if err != nil {
		return nil, err
	}
	solutions, solutionsShape, err := readFloats(filepath.Join(dir, SolutionsFile))
	if err != nil {
		return nil, err
	}
	occupied, err := readBools(filepath.Join(dir, OccupiedFile))
	if err != nil {
		return nil, err
	}

	n := len(occupied)
	if len(objectives) != n {
		return nil, fmt.Errorf("%w: %s has %d entries, %s has %d", ErrShapeMismatch, ObjectivesFile, len(objectives), OccupiedFile, n)
	}
	d := &Dataset{
		Objectives: objectives,
		Occupied:   occupied,
	}
	if d.Measures, err = rows(MeasuresFile, measures, measuresShape, n); err != nil {
		return nil, err
	}
	if d.Solutions, err = rows(SolutionsFile, solutions, solutionsShape, n); err != nil {
		return nil, err
	}
	d.solutionDim = 1
	if len(solutionsShape) > 1 {
		d.solutionDim = solutionsShape[len(solutionsShape)-1]
	}
	return d, nil
}

// rows reshapes data into a matrix with n rows whose width is the last axis
// of shape. A 1-D shape is read as a single column.
func rows(name string, data []float64, shape []int, n int) (*mat.Dense, error) {
	width := 1
	if len(shape) > 1 {
		width = shape[len(shape)-1]
	}
	if width < 1 {
		return nil, fmt.Errorf("%s has an empty trailing axis", name)
	}
	if len(data) != n*width {
		return nil, fmt.Errorf("%w: %s has shape %v, want %d entries", ErrShapeMismatch, name, shape, n)
	}
	if n == 0 {
		return &mat.Dense{}, nil
	}
	return mat.NewDense(n, width, data), nil
}

func openArray(path string) (*os.File, *npy.Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	r, err := npy.NewReader(f)
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("reading header of %s: %w", path, err)
	}
	if r.Header.Descr.Fortran {
		f.Close()
		return nil, nil, fmt.Errorf("%s: fortran ordered arrays are not supported", path)
	}
	return f, r, nil
}

func readAs[T constraints.Integer | constraints.Float](r *npy.Reader) ([]float64, error) {
	var data []T
	if err := r.Read(&data); err != nil {
		return nil, err
	}
	out := make([]float64, len(data))
	for i, v := range data {
		out[i] = float64(v)
	}
	return out, nil
}

// readNumbers reads any boolean, integer or floating point array as float64.
func readNumbers(r *npy.Reader) ([]float64, error) {
	switch typ := strings.TrimLeft(r.Header.Descr.Type, "<>|="); typ {
	case "f8", "float64":
		var data []float64
		if err := r.Read(&data); err != nil {
			return nil, err
		}
		return data, nil
	case "f4", "float32":
		return readAs[float32](r)
	case "i1", "int8":
		return readAs[int8](r)
	case "i2", "int16":
		return readAs[int16](r)
	case "i4", "int32":
		return readAs[int32](r)
	case "i8", "int64":
		return readAs[int64](r)
	case "u1", "uint8":
		return readAs[uint8](r)
	case "u2", "uint16":
		return readAs[uint16](r)
	case "u4", "uint32":
		return readAs[uint32](r)
	case "u8", "uint64":
		return readAs[uint64](r)
	case "b1", "bool":
		var data []bool
		if err := r.Read(&data); err != nil {
			return nil, err
		}
		out := make([]float64, len(data))
		for i, v := range data {
			if v {
				out[i] = 1
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: dtype %q", npy.ErrInvalidType, typ)
	}
}

func readFloats(path string) ([]float64, []int, error) {
	f, r, err := openArray(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	data, err := readNumbers(r)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, r.Header.Descr.Shape, nil
}

// readBools reads a boolean mask. Numeric arrays are accepted, with any
// non-zero value counting as true.
func readBools(path string) ([]bool, error) {
	f, r, err := openArray(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var data []bool
	switch strings.TrimLeft(r.Header.Descr.Type, "<>|=") {
	case "b1", "bool":
		err = r.Read(&data)
	default:
		var nums []float64
		nums, err = readNumbers(r)
		data = make([]bool, len(nums))
		for i, v := range nums {
			data[i] = v != 0
		}
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

// Save writes the contents of a, one entry per cell in flat index order, so
// that Load followed by inserting the occupied rows rebuilds the archive.
func Save(dir string, a *archive.GridArchive) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	solutions, objectives, measures, occupied := a.Dense()

	if err := writeArray(filepath.Join(dir, ObjectivesFile), objectives); err != nil {
		return err
	}
	if err := writeArray(filepath.Join(dir, MeasuresFile), measures); err != nil {
		return err
	}
	if err := writeArray(filepath.Join(dir, SolutionsFile), solutions); err != nil {
		return err
	}
	return writeArray(filepath.Join(dir, OccupiedFile), occupied)
}

// Write stores the given arrays as-is. It is used to hand data produced
// elsewhere to Load.
func Write(dir string, d *Dataset) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := writeArray(filepath.Join(dir, ObjectivesFile), d.Objectives); err != nil {
		return err
	}
	if err := writeArray(filepath.Join(dir, MeasuresFile), d.Measures); err != nil {
		return err
	}
	if err := writeArray(filepath.Join(dir, SolutionsFile), d.Solutions); err != nil {
		return err
	}
	return writeArray(filepath.Join(dir, OccupiedFile), d.Occupied)
}

func writeArray(path string, val any) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if err := npy.Write(f, val); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// NewArchive builds a 2D grid archive with cells per side over
// [lo, hi] x [lo, hi], sized for the solutions of d.
func (d *Dataset) NewArchive(cells int, lo, hi float64, opts ...archive.Option) (*archive.GridArchive, error) {
	return archive.NewGridArchive(
		d.SolutionDim(),
		[]int{cells, cells},
		[]framework.Bounds{{L: lo, H: hi}, {L: lo, H: hi}},
		opts...,
	)
}
