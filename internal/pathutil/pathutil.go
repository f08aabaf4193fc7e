// Package pathutil canonicalizes user-supplied directory strings without
// touching the filesystem. Plans store canonical paths and directory searches
// canonicalize the query the same way, so a plan created at "./foo" is
// findable via "foo", an absolute form, or any equivalent dotted form.
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/beaconhq/beacon/internal/beaconerr"
)

// Canonicalize converts an optional directory string to an absolute,
// lexically normalized path. Empty input means the current working directory.
// The path need not exist; no filesystem calls are made beyond Getwd.
func Canonicalize(input string) (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", beaconerr.InvalidInput("directory", fmt.Sprintf("cannot determine working directory: %v", err))
	}
	return CanonicalizeFrom(input, cwd), nil
}

// CanonicalizeFrom is Canonicalize with an explicit working directory,
// for callers (and tests) that already know the base.
func CanonicalizeFrom(input, cwd string) string {
	if input == "" {
		return filepath.Clean(cwd)
	}
	if !filepath.IsAbs(input) {
		input = filepath.Join(cwd, input)
	}
	// Clean drops "." components and resolves ".." lexically without
	// underflowing the root.
	return filepath.Clean(input)
}
