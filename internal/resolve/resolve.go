// Package resolve turns a product/timestamp pair into a verified absolute
// file path. Its contract ends at the path; streaming is the HTTP layer's
// concern.
package resolve

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"github.com/ewmrs/weather-render-api/internal/catalog"
	"github.com/ewmrs/weather-render-api/internal/pathsafe"
)

var (
	// ErrNotFound means a well-formed request references a file that does not
	// currently exist. Routine: the render has not been produced yet or fell
	// out of the retention window.
	ErrNotFound = errors.New("file not found")

	// ErrBadTimestamp means the timestamp does not match any accepted format.
	ErrBadTimestamp = errors.New("malformed timestamp")
)

// SurfaceDir is the subdirectory holding WPC surface-analysis documents.
const SurfaceDir = "surface_analysis"

const surfaceLatestName = "latest.geojson"

// Accepted timestamp formats. The -HH0000 form is what the ingester writes
// today; the -HHz form is still accepted from older deployments.
var (
	renderTimestamp        = regexp.MustCompile(`^\d{8}-\d{6}$`)
	surfaceLegacyTimestamp = regexp.MustCompile(`^\d{8}-\d{2}z$`)
)

// Resolver builds and verifies file paths under a data root.
type Resolver struct {
	root    string
	catalog *catalog.Catalog
}

// New creates a Resolver over root using the given product catalog.
func New(root string, c *catalog.Catalog) *Resolver {
	return &Resolver{root: root, catalog: c}
}

// Render returns the absolute path of the PNG for product at timestamp. Both
// inputs are validated before any filesystem access; products outside the
// closed mapping yield ErrNotFound regardless of timestamp.
func (r *Resolver) Render(product, timestamp string) (string, error) {
	if err := pathsafe.ValidateSegment(r.root, product); err != nil {
		return "", err
	}
	if err := pathsafe.ValidateSegment(r.root, timestamp); err != nil {
		return "", err
	}
	if !renderTimestamp.MatchString(timestamp) {
		return "", fmt.Errorf("%w: %q", ErrBadTimestamp, timestamp)
	}

	prefix, ok := r.catalog.PrefixFor(product)
	if !ok {
		// Never guess a prefix for unmapped products.
		return "", ErrNotFound
	}

	return r.verify(filepath.Join(r.root, product, prefix+"_"+timestamp+".png"))
}

// Surface returns the absolute path of the surface-analysis GeoJSON document
// for timestamp.
func (r *Resolver) Surface(timestamp string) (string, error) {
	if err := pathsafe.ValidateSegment(r.root, timestamp); err != nil {
		return "", err
	}
	if !renderTimestamp.MatchString(timestamp) && !surfaceLegacyTimestamp.MatchString(timestamp) {
		return "", fmt.Errorf("%w: %q", ErrBadTimestamp, timestamp)
	}

	return r.verify(filepath.Join(r.root, SurfaceDir, "wpc_sfc_"+timestamp+".geojson"))
}

// SurfaceLatest returns the absolute path of the ingester-maintained
// latest.geojson convenience copy.
func (r *Resolver) SurfaceLatest() (string, error) {
	return r.verify(filepath.Join(r.root, SurfaceDir, surfaceLatestName))
}

// verify confirms path exists as a regular file. A single stat, not an open;
// the external writer may still remove the file before it is streamed.
func (r *Resolver) verify(path string) (string, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", filepath.Base(path), err)
	}
	if info.IsDir() {
		return "", ErrNotFound
	}
	return path, nil
}
