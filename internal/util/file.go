package util

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// OutputExtension is the container extension of every encoded file.
const OutputExtension = ".mkv"

var placeholderRegex = regexp.MustCompile(`\{(\w*)\}`)

// ExpandTemplate replaces {key} placeholders with vars[key].
// Unknown placeholders expand to the empty string.
func ExpandTemplate(tmpl string, vars map[string]string) string {
	return placeholderRegex.ReplaceAllStringFunc(tmpl, func(m string) string {
		return vars[m[1:len(m)-1]]
	})
}

// GetFilename returns the filename from a path.
func GetFilename(path string) string {
	return filepath.Base(path)
}

// GetFileStem returns the filename without extension.
func GetFileStem(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext)
}

// GetFileSize returns the size of a file in bytes.
func GetFileSize(path string) (uint64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return uint64(info.Size()), nil
}

// pathExists reports whether anything exists at path.
func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// AllocateOutputPath expands template with {name} and {ext} and returns a
// path in dir that does not exist yet. Collisions get " (n)" appended
// before the extension, counting up from 1.
func AllocateOutputPath(template, stem, ext, dir string) string {
	name := ExpandTemplate(template, map[string]string{
		"name": stem,
		"ext":  strings.TrimPrefix(ext, "."),
	})

	candidate := filepath.Join(dir, name+OutputExtension)
	for n := 1; pathExists(candidate); n++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s (%d)%s", name, n, OutputExtension))
	}
	return candidate
}

// OutputDirFor returns the input's own directory when neighbour is set,
// otherwise workDir.
func OutputDirFor(input string, neighbour bool, workDir string) string {
	if neighbour {
		return filepath.Dir(input)
	}
	return workDir
}
