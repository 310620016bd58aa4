package timestamps

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ewmrs/weather-render-api/internal/pathsafe"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("png"), 0o644))
}

func TestIndexFileMissingMeansNoDataYet(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "CompRefQC"), 0o755))

	ix := New(root, StrategyIndexFile)

	ts, err := ix.List("CompRefQC")
	require.NoError(t, err)
	assert.Empty(t, ts)
}

func TestIndexFileMissingDirectoryMeansNoDataYet(t *testing.T) {
	ix := New(t.TempDir(), StrategyIndexFile)

	ts, err := ix.List("CompRefQC")
	require.NoError(t, err)
	assert.Empty(t, ts)
}

func TestIndexFileReturnedVerbatim(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "CompRefQC")
	require.NoError(t, os.Mkdir(dir, 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "index.json"),
		[]byte(`["20251226-123000","20251226-120000","20251226-113000"]`),
		0o644,
	))

	ix := New(root, StrategyIndexFile)

	ts, err := ix.List("CompRefQC")
	require.NoError(t, err)
	assert.Equal(t, []string{"20251226-123000", "20251226-120000", "20251226-113000"}, ts)
}

func TestCorruptIndexFileIsAnError(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "CompRefQC")
	require.NoError(t, os.Mkdir(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.json"), []byte("{not json"), 0o644))

	ix := New(root, StrategyIndexFile)

	_, err := ix.List("CompRefQC")
	require.Error(t, err)

	// Corruption is an internal failure, never an input problem.
	assert.NotErrorIs(t, err, pathsafe.ErrUnsafeSegment)
}

func TestDirScanSortsNewestFirstAndDeduplicates(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "RALA")
	require.NoError(t, os.Mkdir(dir, 0o755))

	writeFile(t, filepath.Join(dir, "MRMS_ReflectivityAtLowestAltitude_20251226-113000.png"))
	writeFile(t, filepath.Join(dir, "MRMS_ReflectivityAtLowestAltitude_20251226-123000.png"))
	writeFile(t, filepath.Join(dir, "MRMS_ReflectivityAtLowestAltitude_20251226-120000.png"))
	// Second file sharing a timestamp must not produce a duplicate entry.
	writeFile(t, filepath.Join(dir, "copy_of_20251226-120000.png"))
	// Non-matching names are ignored, index.json included.
	writeFile(t, filepath.Join(dir, "index.json"))
	writeFile(t, filepath.Join(dir, "README"))

	ix := New(root, StrategyDirScan)

	ts, err := ix.List("RALA")
	require.NoError(t, err)
	assert.Equal(t, []string{"20251226-123000", "20251226-120000", "20251226-113000"}, ts)
}

func TestDirScanMissingDirectoryMeansNoDataYet(t *testing.T) {
	ix := New(t.TempDir(), StrategyDirScan)

	ts, err := ix.List("RALA")
	require.NoError(t, err)
	assert.Empty(t, ts)
}

func TestListRejectsUnsafeProduct(t *testing.T) {
	ix := New(t.TempDir(), StrategyDirScan)

	_, err := ix.List("../outside")
	assert.ErrorIs(t, err, pathsafe.ErrUnsafeSegment)

	_, err = ix.List("")
	assert.ErrorIs(t, err, pathsafe.ErrEmptySegment)
}

func TestListIsIdempotent(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "RALA")
	require.NoError(t, os.Mkdir(dir, 0o755))
	writeFile(t, filepath.Join(dir, "MRMS_ReflectivityAtLowestAltitude_20251226-120000.png"))

	ix := New(root, StrategyDirScan)

	first, err := ix.List("RALA")
	require.NoError(t, err)
	second, err := ix.List("RALA")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
