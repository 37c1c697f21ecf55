package dataset

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/mihai-snyk/map-elites/pkg/mapelites/archive"
	"github.com/mihai-snyk/map-elites/pkg/mapelites/framework"
)

func testDataset() *Dataset {
	return &Dataset{
		Objectives: []float64{-1, -2, -3, -4},
		Measures: mat.NewDense(4, 2, []float64{
			-0.5, -0.5,
			0.5, 0.5,
			0.1, -0.1,
			0.9, 0.9,
		}),
		Solutions: mat.NewDense(4, 3, []float64{
			1, 1, 1,
			2, 2, 2,
			3, 3, 3,
			4, 4, 4,
		}),
		Occupied: []bool{true, false, true, true},
	}
}

func TestWriteLoad(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Write(dir, testDataset()))

	d, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 4, d.Len())
	assert.Equal(t, 3, d.NumOccupied())
	assert.Equal(t, 3, d.SolutionDim())
	assert.Equal(t, []float64{-1, -2, -3, -4}, d.Objectives)
	assert.Equal(t, []bool{true, false, true, true}, d.Occupied)
	assert.Equal(t, []float64{0.1, -0.1}, mat.Row(nil, 2, d.Measures))
	assert.Equal(t, []float64{4, 4, 4}, mat.Row(nil, 3, d.Solutions))
}

func TestSelect(t *testing.T) {
	sols, objs, meas := testDataset().Select()
	assert.Equal(t, []float64{-1, -3, -4}, objs)
	r, c := sols.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 3, c)
	assert.Equal(t, []float64{3, 3, 3}, mat.Row(nil, 1, sols))
	assert.Equal(t, []float64{0.9, 0.9}, mat.Row(nil, 2, meas))
}

func TestSelectNoneOccupied(t *testing.T) {
	d := testDataset()
	d.Occupied = make([]bool, 4)
	sols, objs, meas := d.Select()
	assert.Nil(t, sols)
	assert.Nil(t, meas)
	assert.Empty(t, objs)
}

func TestLoadMissingFile(t *testing.T) {
	for _, name := range []string{ObjectivesFile, MeasuresFile, SolutionsFile, OccupiedFile} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, Write(dir, testDataset()))
			require.NoError(t, os.Remove(filepath.Join(dir, name)))

			_, err := Load(dir)
			require.Error(t, err)
			assert.ErrorIs(t, err, os.ErrNotExist)
		})
	}
}

func TestLoadShapeMismatch(t *testing.T) {
	dir := t.TempDir()
	d := testDataset()
	d.Objectives = d.Objectives[:3]
	require.NoError(t, Write(dir, d))

	_, err := Load(dir)
	assert.ErrorIs(t, err, ErrShapeMismatch)

	d = testDataset()
	d.Solutions = mat.NewDense(5, 3, nil)
	require.NoError(t, Write(dir, d))
	_, err = Load(dir)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestLoadLeadingAxes(t *testing.T) {
	dir := t.TempDir()
	// A 2x2 grid of cells, as produced by a per-cell archive layout.
	writeRaw(t, filepath.Join(dir, ObjectivesFile), "<f8", []int{2, 2}, []float64{1, 2, 3, 4})
	writeRaw(t, filepath.Join(dir, MeasuresFile), "<f8", []int{2, 2, 2}, []float64{
		0, 0, 0, 1,
		1, 0, 1, 1,
	})
	writeRaw(t, filepath.Join(dir, SolutionsFile), "<f8", []int{2, 2, 3}, []float64{
		1, 1, 1, 2, 2, 2,
		3, 3, 3, 4, 4, 4,
	})
	writeRaw(t, filepath.Join(dir, OccupiedFile), "|b1", []int{2, 2}, []bool{true, false, false, true})

	d, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 4, d.Len())
	assert.Equal(t, 3, d.SolutionDim())
	assert.Equal(t, []float64{1, 1}, mat.Row(nil, 3, d.Measures))
	assert.Equal(t, []float64{2, 2, 2}, mat.Row(nil, 1, d.Solutions))

	sols, objs, _ := d.Select()
	assert.Equal(t, []float64{1, 4}, objs)
	assert.Equal(t, []float64{4, 4, 4}, mat.Row(nil, 1, sols))
}

func TestLoadDtypes(t *testing.T) {
	dir := t.TempDir()
	writeRaw(t, filepath.Join(dir, ObjectivesFile), "<f4", []int{3}, []float32{1.5, -2, 3})
	writeRaw(t, filepath.Join(dir, MeasuresFile), "<i4", []int{3, 2}, []int32{-1, 0, 0, 1, 1, -1})
	writeRaw(t, filepath.Join(dir, SolutionsFile), "<i8", []int{3, 2}, []int64{1, 2, 3, 4, 5, 6})
	writeRaw(t, filepath.Join(dir, OccupiedFile), "|u1", []int{3}, []uint8{1, 0, 2})

	d, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, -2, 3}, d.Objectives)
	assert.Equal(t, []bool{true, false, true}, d.Occupied)
	assert.Equal(t, []float64{0, 1}, mat.Row(nil, 1, d.Measures))
	assert.Equal(t, []float64{5, 6}, mat.Row(nil, 2, d.Solutions))

	sols, objs, meas := d.Select()
	assert.Equal(t, []float64{1.5, 3}, objs)
	assert.Equal(t, []float64{1, 2}, mat.Row(nil, 0, sols))
	assert.Equal(t, []float64{1, -1}, mat.Row(nil, 1, meas))
}

func TestLoadUnsupportedDtype(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Write(dir, testDataset()))
	writeRaw(t, filepath.Join(dir, ObjectivesFile), "<c8", []int{4}, []complex64{1, 2, 3, 4})

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ObjectivesFile)
}

func TestSaveRebuildsArchive(t *testing.T) {
	a, err := archive.NewGridArchive(3, []int{4, 4}, []framework.Bounds{{L: -1, H: 1}, {L: -1, H: 1}})
	require.NoError(t, err)
	_, _, err = a.AddSingle([]float64{1, 2, 3}, -1, []float64{-0.9, 0.9})
	require.NoError(t, err)
	_, _, err = a.AddSingle([]float64{4, 5, 6}, -2, []float64{0.2, 0.2})
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, Save(dir, a))

	d, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, a.Cells(), d.Len())
	assert.Equal(t, a.Len(), d.NumOccupied())

	rebuilt, err := d.NewArchive(4, -1, 1)
	require.NoError(t, err)
	sols, objs, meas := d.Select()
	_, err = rebuilt.Add(sols, objs, meas)
	require.NoError(t, err)
	assert.Equal(t, a.Elites(), rebuilt.Elites())
}

// writeRaw writes a little-endian, C-ordered version 1.0 .npy file.
func writeRaw(t *testing.T, path, descr string, shape []int, data any) {
	t.Helper()

	dims := make([]string, len(shape))
	for i, s := range shape {
		dims[i] = fmt.Sprint(s)
	}
	header := fmt.Sprintf("{'descr': '%s', 'fortran_order': False, 'shape': (%s), }", descr, strings.Join(dims, ", "))
	// Magic, version and header length take 10 bytes; the header ends with a
	// newline and is padded to a multiple of 64.
	pad := 64 - (10+len(header)+1)%64
	header += strings.Repeat(" ", pad%64) + "\n"

	var buf bytes.Buffer
	buf.WriteString("\x93NUMPY")
	buf.Write([]byte{1, 0})
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint16(len(header))))
	buf.WriteString(header)
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, data))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}
