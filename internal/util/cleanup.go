package util

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// sidecarSuffixes are replaced onto the source stem after a successful encode.
var sidecarSuffixes = []string{".mpg", ".mpeg", ".d2v", ".log"}

// SidecarPaths lists the index, cache and leftover files vspipe and its
// source filters may have written next to input.
func SidecarPaths(input string) []string {
	ext := filepath.Ext(input)
	base := strings.TrimSuffix(input, ext)

	paths := make([]string, 0, len(sidecarSuffixes)+3)
	for _, s := range sidecarSuffixes {
		paths = append(paths, base+s)
	}
	return append(paths,
		base+".pfpsreset"+ext+".lwi",
		base+".pfpsreset"+ext,
		input+".lwi",
	)
}

// RemoveSidecars deletes the files from SidecarPaths. Missing files are
// ignored; any other failures are returned.
func RemoveSidecars(input string) []error {
	var errs []error
	for _, p := range SidecarPaths(input) {
		// Never delete the source itself, e.g. when encoding an .mpg.
		if p == input {
			continue
		}
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errs
}
