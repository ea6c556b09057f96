package market

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
)

const sampleCSV = `time,open,high,low,close,volume
2024-03-01,100,102,99,101,5000
2024-03-04,101,103,100,102.5,6200
2024-03-05,102.5,104,101,103,4100
`

func TestLoadCSV(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "2330.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	s, err := LoadCSV(path)
	require.NoError(t, err)

	assert.Equal(t, "2330", s.Symbol())
	require.Equal(t, 3, s.Len())
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), s.At(1).Time)
	assert.InDelta(t, 102.5, s.At(1).Close, 1e-9)
	assert.EqualValues(t, 4100, s.At(2).Volume)
}

func TestLoadCSVRejectsBadRow(t *testing.T) {
	t.Parallel()

	bad := "2024-03-01,100,98,99,101,5000\n" // high < low
	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte(bad), 0o644))

	_, err := LoadCSV(path)
	var die *DataIntegrityError
	assert.ErrorAs(t, err, &die)
}

func TestLoadXZ(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "2330.csv.xz")
	f, err := os.Create(path)
	require.NoError(t, err)
	w, err := xz.NewWriter(f)
	require.NoError(t, err)
	_, err = w.Write([]byte(sampleCSV))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())

	s, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "2330", s.Symbol())
	assert.Equal(t, 3, s.Len())
}

func TestLoadZip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bars.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for _, name := range []string{"2330.csv", "2317.csv"} {
		entry, err := zw.Create(name)
		require.NoError(t, err)
		_, err = entry.Write([]byte(sampleCSV))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	bySymbol, err := LoadZip(path)
	require.NoError(t, err)
	require.Len(t, bySymbol, 2)
	assert.Contains(t, bySymbol, "2330")
	assert.Contains(t, bySymbol, "2317")
	assert.Equal(t, 3, bySymbol["2317"].Len())
}
