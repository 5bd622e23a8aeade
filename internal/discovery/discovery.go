// Package discovery resolves the input path into the list of files to encode.
package discovery

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	perrors "github.com/five82/pencode/internal/errors"
)

// DiscoveryLogger defines the interface for discovery logging.
type DiscoveryLogger interface {
	Debug(msg string, args ...any)
}

// FindFiles returns root itself when it is a file. For a directory it
// returns every regular file below it named *.<ext>, sorted by file name.
func FindFiles(root, ext string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, perrors.NewInputError(fmt.Sprintf("the provided path does not exist: %s", root))
	}
	if !info.IsDir() {
		return []string{root}, nil
	}

	suffix := "." + strings.TrimPrefix(ext, ".")
	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() && strings.HasSuffix(d.Name(), suffix) && d.Name() != suffix {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, perrors.NewIOError("cannot read "+root, err)
	}

	if len(files) == 0 {
		return nil, perrors.NewInputError(fmt.Sprintf("the provided path has no %s files", suffix))
	}

	// WalkDir yields lexical path order, so ties keep directory order.
	sort.SliceStable(files, func(i, j int) bool {
		return filepath.Base(files[i]) < filepath.Base(files[j])
	})

	return files, nil
}

// FindFilesWithLogging finds files and logs the first few matches.
func FindFilesWithLogging(root, ext string, logger DiscoveryLogger) ([]string, error) {
	files, err := FindFiles(root, ext)
	if err != nil {
		return nil, err
	}
	if logger != nil {
		logDiscoveredFiles(files, logger)
	}
	return files, nil
}

// logDiscoveredFiles logs the first 5 discovered files plus a count.
func logDiscoveredFiles(files []string, logger DiscoveryLogger) {
	maxToLog := min(5, len(files))

	for i := 0; i < maxToLog; i++ {
		logger.Debug("found", "file", files[i])
	}

	if len(files) > 5 {
		logger.Debug("more files found", "count", len(files)-5)
	}
}
