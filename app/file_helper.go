package app

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ludo-technologies/credaudit/internal/constants"
	"github.com/ludo-technologies/credaudit/internal/snapshot"
	ignore "github.com/sabhiram/go-gitignore"
)

// FileHelper provides file operation utilities
type FileHelper struct{}

// NewFileHelper creates a new FileHelper
func NewFileHelper() *FileHelper {
	return &FileHelper{}
}

// CollectSnapshotFiles collects snapshot files from paths. Directories are
// filtered through their .credauditignore file and excludePatterns, both
// in gitignore syntax relative to the directory. Explicit file arguments
// are always kept.
func (h *FileHelper) CollectSnapshotFiles(paths []string, recursive bool, excludePatterns []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)

	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			if !h.IsSnapshotFile(path) {
				return nil, fmt.Errorf("unsupported snapshot file %s (expected one of %s)",
					path, strings.Join(snapshot.SupportedExtensions, ", "))
			}
			add(path)
			continue
		}

		matcher, err := h.loadIgnore(path, excludePatterns)
		if err != nil {
			return nil, err
		}

		var dirFiles []string
		if recursive {
			err = filepath.WalkDir(path, func(filePath string, d os.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if d.IsDir() {
					if filePath != path && strings.HasPrefix(d.Name(), ".") {
						return filepath.SkipDir
					}
					return nil
				}
				if h.IsSnapshotFile(filePath) && !h.isIgnored(matcher, path, filePath) {
					dirFiles = append(dirFiles, filePath)
				}
				return nil
			})
		} else {
			var entries []os.DirEntry
			entries, err = os.ReadDir(path)
			for _, entry := range entries {
				filePath := filepath.Join(path, entry.Name())
				if !entry.IsDir() && h.IsSnapshotFile(filePath) && !h.isIgnored(matcher, path, filePath) {
					dirFiles = append(dirFiles, filePath)
				}
			}
		}
		if err != nil {
			return nil, err
		}

		sort.Strings(dirFiles)
		for _, f := range dirFiles {
			add(f)
		}
	}

	return files, nil
}

// IsSnapshotFile checks if a file has a snapshot extension
func (h *FileHelper) IsSnapshotFile(path string) bool {
	return snapshot.IsSnapshotFile(path)
}

// FileExists checks if a file exists
func (h *FileHelper) FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return !info.IsDir(), nil
}

// loadIgnore compiles the directory's ignore file together with the
// configured exclude patterns
func (h *FileHelper) loadIgnore(dir string, excludePatterns []string) (*ignore.GitIgnore, error) {
	ignoreFile := filepath.Join(dir, constants.IgnoreFileName)
	if _, err := os.Stat(ignoreFile); err == nil {
		matcher, err := ignore.CompileIgnoreFileAndLines(ignoreFile, excludePatterns...)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", ignoreFile, err)
		}
		return matcher, nil
	}
	if len(excludePatterns) == 0 {
		return nil, nil
	}
	return ignore.CompileIgnoreLines(excludePatterns...), nil
}

func (h *FileHelper) isIgnored(matcher *ignore.GitIgnore, root, path string) bool {
	if matcher == nil {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return matcher.MatchesPath(filepath.ToSlash(rel))
}

// ResolveFilePaths returns paths unchanged when they are all existing files,
// otherwise collects snapshot files from them
func ResolveFilePaths(
	fileHelper *FileHelper,
	paths []string,
	recursive bool,
	excludePatterns []string,
) ([]string, error) {
	allFiles := true
	for _, path := range paths {
		exists, err := fileHelper.FileExists(path)
		if err != nil || !exists {
			allFiles = false
			break
		}
	}

	if allFiles {
		return paths, nil
	}

	return fileHelper.CollectSnapshotFiles(paths, recursive, excludePatterns)
}
