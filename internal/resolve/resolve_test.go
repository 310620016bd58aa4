package resolve

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ewmrs/weather-render-api/internal/catalog"
	"github.com/ewmrs/weather-render-api/internal/pathsafe"
)

var testProducts = []catalog.Product{
	{Name: "CompRefQC", Prefix: "MRMS_MergedReflectivityQC"},
	{Name: "RALA", Prefix: "MRMS_ReflectivityAtLowestAltitude"},
}

func newResolver(t *testing.T) (*Resolver, string) {
	t.Helper()
	root := t.TempDir()
	return New(root, catalog.New(root, testProducts)), root
}

func TestRenderResolvesExistingFile(t *testing.T) {
	r, root := newResolver(t)

	dir := filepath.Join(root, "CompRefQC")
	require.NoError(t, os.Mkdir(dir, 0o755))
	want := filepath.Join(dir, "MRMS_MergedReflectivityQC_20251226-120000.png")
	require.NoError(t, os.WriteFile(want, []byte("png"), 0o644))

	got, err := r.Render("CompRefQC", "20251226-120000")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRenderUnknownProductIsNotFound(t *testing.T) {
	r, _ := newResolver(t)

	_, err := r.Render("UnknownProduct", "20251226-120000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRenderMissingFileIsNotFound(t *testing.T) {
	r, root := newResolver(t)
	require.NoError(t, os.Mkdir(filepath.Join(root, "CompRefQC"), 0o755))

	_, err := r.Render("CompRefQC", "20251226-120000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRenderRejectsTraversalBeforeTouchingDisk(t *testing.T) {
	// Root deliberately does not exist: if validation passed the input
	// through, verify would return ErrNotFound instead of the unsafe error.
	root := filepath.Join(t.TempDir(), "gone")
	r := New(root, catalog.New(root, testProducts))

	_, err := r.Render("CompRefQC", "../../etc/passwd")
	assert.ErrorIs(t, err, pathsafe.ErrUnsafeSegment)

	_, err = r.Render("../CompRefQC", "20251226-120000")
	assert.ErrorIs(t, err, pathsafe.ErrUnsafeSegment)
}

func TestRenderRejectsMalformedTimestamp(t *testing.T) {
	r, _ := newResolver(t)

	for _, ts := range []string{
		"20251226",
		"20251226-12000",
		"20251226-1200000",
		"2025122a-120000",
		"20251226_120000",
		"latest",
	} {
		_, err := r.Render("CompRefQC", ts)
		assert.ErrorIs(t, err, ErrBadTimestamp, "timestamp %q", ts)
	}
}

func TestRenderDirectoryIsNotFound(t *testing.T) {
	r, root := newResolver(t)

	dir := filepath.Join(root, "CompRefQC")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "MRMS_MergedReflectivityQC_20251226-120000.png"), 0o755))

	_, err := r.Render("CompRefQC", "20251226-120000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSurfaceAcceptsBothTimestampForms(t *testing.T) {
	r, root := newResolver(t)

	dir := filepath.Join(root, SurfaceDir)
	require.NoError(t, os.Mkdir(dir, 0o755))
	canonical := filepath.Join(dir, "wpc_sfc_20251226-120000.geojson")
	legacy := filepath.Join(dir, "wpc_sfc_20251226-12z.geojson")
	require.NoError(t, os.WriteFile(canonical, []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(legacy, []byte("{}"), 0o644))

	got, err := r.Surface("20251226-120000")
	require.NoError(t, err)
	assert.Equal(t, canonical, got)

	got, err = r.Surface("20251226-12z")
	require.NoError(t, err)
	assert.Equal(t, legacy, got)

	_, err = r.Surface("20251226-12Z")
	assert.ErrorIs(t, err, ErrBadTimestamp)
}

func TestSurfaceLatest(t *testing.T) {
	r, root := newResolver(t)

	_, err := r.SurfaceLatest()
	assert.ErrorIs(t, err, ErrNotFound)

	dir := filepath.Join(root, SurfaceDir)
	require.NoError(t, os.Mkdir(dir, 0o755))
	want := filepath.Join(dir, "latest.geojson")
	require.NoError(t, os.WriteFile(want, []byte("{}"), 0o644))

	got, err := r.SurfaceLatest()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRenderIsIdempotent(t *testing.T) {
	r, root := newResolver(t)

	dir := filepath.Join(root, "RALA")
	require.NoError(t, os.Mkdir(dir, 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "MRMS_ReflectivityAtLowestAltitude_20251226-120000.png"),
		[]byte("png"), 0o644,
	))

	first, err := r.Render("RALA", "20251226-120000")
	require.NoError(t, err)
	second, err := r.Render("RALA", "20251226-120000")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
