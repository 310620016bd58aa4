// Package timestamps discovers which render timestamps exist for a product,
// either from the per-product index.json maintained by the render pipeline or
// by scanning filenames in the product directory.
package timestamps

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/ewmrs/weather-render-api/internal/pathsafe"
)

// Strategy selects how timestamps are discovered. Deployments populated by
// the render pipeline carry an index.json per product; older trees only have
// the files themselves.
type Strategy string

const (
	// StrategyIndexFile reads index.json and trusts its newest-first order.
	StrategyIndexFile Strategy = "index"

	// StrategyDirScan extracts timestamps from filenames, deduplicates and
	// sorts newest first.
	StrategyDirScan Strategy = "scan"
)

const indexFileName = "index.json"

// Render filenames embed a fixed-width timestamp, so lexicographic order is
// chronological order.
var timestampPattern = regexp.MustCompile(`\d{8}-\d{6}`)

// Index lists known timestamps per product directory under a data root.
type Index struct {
	root     string
	strategy Strategy
}

// New creates an Index using the given discovery strategy.
func New(root string, strategy Strategy) *Index {
	return &Index{root: root, strategy: strategy}
}

// List returns the known timestamps for product, newest first. A missing
// product directory or index file means "no data yet" and yields an empty
// result, not an error. The caller is responsible for catalog membership;
// only path safety of the raw name is checked here.
func (ix *Index) List(product string) ([]string, error) {
	if err := pathsafe.ValidateSegment(ix.root, product); err != nil {
		return nil, err
	}

	switch ix.strategy {
	case StrategyDirScan:
		return ix.listFromScan(product)
	default:
		return ix.listFromIndexFile(product)
	}
}

func (ix *Index) listFromIndexFile(product string) ([]string, error) {
	path := filepath.Join(ix.root, product, indexFileName)

	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s for %s: %w", indexFileName, product, err)
	}

	// The producer maintains newest-first order; returned verbatim.
	var ts []string
	if err := json.Unmarshal(raw, &ts); err != nil {
		return nil, fmt.Errorf("parse %s for %s: %w", indexFileName, product, err)
	}
	return ts, nil
}

func (ix *Index) listFromScan(product string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(ix.root, product))
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan directory for %s: %w", product, err)
	}

	seen := make(map[string]struct{})
	ts := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		match := timestampPattern.FindString(entry.Name())
		if match == "" {
			continue
		}
		if _, dup := seen[match]; dup {
			continue
		}
		seen[match] = struct{}{}
		ts = append(ts, match)
	}

	sort.Sort(sort.Reverse(sort.StringSlice(ts)))
	return ts, nil
}
