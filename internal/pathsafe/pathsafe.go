// Package pathsafe validates user-supplied path segments before they are
// joined under the data root. Only emptiness and traversal are rejected;
// anything else is passed through untouched and simply fails to match a file.
package pathsafe

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	// ErrEmptySegment is returned for an empty or missing segment.
	ErrEmptySegment = errors.New("empty path segment")

	// ErrUnsafeSegment is returned for a segment that contains traversal
	// sequences or separators, or that would resolve outside the data root.
	ErrUnsafeSegment = errors.New("unsafe path segment")
)

// ValidateSegment checks that segment is safe to join directly under root.
// It rejects empty input and anything containing "..", "/" or "\" (both
// separator styles, regardless of host platform), then verifies that the
// joined path still resolves inside root. Pure validation; no filesystem I/O.
func ValidateSegment(root, segment string) error {
	if segment == "" {
		return ErrEmptySegment
	}

	if hasAny(segment, "..", "/", "\\") {
		return fmt.Errorf("%w: %q", ErrUnsafeSegment, segment)
	}

	// Substring checks alone miss platform-specific tricks, so confirm the
	// joined path is still rooted under root after cleaning.
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolve data root: %w", err)
	}

	joined := filepath.Join(absRoot, segment)
	rel, err := filepath.Rel(absRoot, joined)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrUnsafeSegment, segment)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return fmt.Errorf("%w: %q", ErrUnsafeSegment, segment)
	}

	return nil
}

// hasAny returns true if s contains any of the substrings.
func hasAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
