package config

import (
	"os"
	"path/filepath"

	"github.com/mvp-joe/project-atlas/internal/errs"
)

// rootMarkers identify a project root, checked in order at each level.
var rootMarkers = []string{DirName, "package.json", "tsconfig.json", ".git"}

// FindProjectRoot walks upward from start until a directory containing one
// of the root markers is found. An existing .atlas directory wins over the
// other markers at any level below it.
func FindProjectRoot(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", errs.ProjectRootNotFound(start)
	}

	var fallback string
	dir := abs
	for {
		if exists(filepath.Join(dir, DirName)) {
			return dir, nil
		}
		if fallback == "" {
			for _, m := range rootMarkers[1:] {
				if exists(filepath.Join(dir, m)) {
					fallback = dir
					break
				}
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	if fallback != "" {
		return fallback, nil
	}
	return "", errs.ProjectRootNotFound(abs)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
