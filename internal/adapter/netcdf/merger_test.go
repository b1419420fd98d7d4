package netcdf

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	gonetcdf "github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMerger() *Merger {
	return NewMerger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func writeProfileFile(t *testing.T, path string, lats []float64) {
	t.Helper()
	numbers := make([]int32, len(lats))
	temps := make([][]float32, len(lats))
	for i := range lats {
		numbers[i] = int32(i)
		temps[i] = []float32{float32(lats[i]), float32(lats[i]) - 1, float32(lats[i]) - 2}
	}
	ds := profileDataset(numbers, temps)
	ds.Variables = append(ds.Variables, Variable{Name: "lat", Values: lats, Dimensions: []string{dim}})
	require.NoError(t, ds.Write(path))
}

func TestMerger_MergesInInputOrder(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "out_batch_001.nc")
	second := filepath.Join(dir, "out_batch_003.nc")
	output := filepath.Join(dir, "out.nc")
	writeProfileFile(t, first, []float64{25, 26})
	writeProfileFile(t, second, []float64{27, 28, 29})

	err := testMerger().Merge(context.Background(), []string{first, second}, output, map[string]string{"project": "loop-current"})
	require.NoError(t, err)

	g, err := gonetcdf.Open(output)
	require.NoError(t, err)
	defer g.Close()

	numbers, err := g.GetVariable(dim)
	require.NoError(t, err)
	assert.Equal(t, []int32{0, 1, 2, 3, 4}, numbers.Values)

	lat, err := g.GetVariable("lat")
	require.NoError(t, err)
	assert.Equal(t, []float64{25, 26, 27, 28, 29}, lat.Values)

	attrs := g.Attributes()
	institution, ok := attrs.Get("institution")
	require.True(t, ok)
	assert.Equal(t, "COAPS, FSU", institution)
	project, ok := attrs.Get("project")
	require.True(t, ok)
	assert.Equal(t, "loop-current", project)
	title, ok := attrs.Get("title")
	require.True(t, ok)
	assert.Equal(t, "NeSPReSO profiles", title)
}

func TestMerger_MissingInput(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "out_batch_001.nc")
	writeProfileFile(t, first, []float64{25})
	output := filepath.Join(dir, "out.nc")

	err := testMerger().Merge(context.Background(), []string{first, filepath.Join(dir, "missing.nc")}, output, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.nc")

	_, statErr := os.Stat(output)
	assert.True(t, os.IsNotExist(statErr))
}

func TestMerger_NoFiles(t *testing.T) {
	err := testMerger().Merge(context.Background(), nil, filepath.Join(t.TempDir(), "out.nc"), nil)
	require.Error(t, err)
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "one.nc")
	writeProfileFile(t, path, []float64{25, 26, 27})

	ds, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Records(dim))

	lat, ok := ds.Variable("lat")
	require.True(t, ok)
	assert.Equal(t, []float64{25, 26, 27}, lat.Values)
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.nc"))
	require.Error(t, err)
}

func TestMerger_RejectsMismatchedVariables(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "out_batch_001.nc")
	second := filepath.Join(dir, "out_batch_002.nc")
	output := filepath.Join(dir, "out.nc")
	writeProfileFile(t, first, []float64{25})

	ds := profileDataset([]int32{0}, [][]float32{{20, 19, 18}})
	ds.Variables = append(ds.Variables,
		Variable{Name: "lat", Values: []float64{26}, Dimensions: []string{dim}},
		Variable{Name: "salinity", Values: [][]float32{{36, 35, 35}}, Dimensions: []string{dim, "depth"}},
	)
	require.NoError(t, ds.Write(second))

	err := testMerger().Merge(context.Background(), []string{first, second}, output, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "salinity")

	_, statErr := os.Stat(output)
	assert.True(t, os.IsNotExist(statErr))
}
