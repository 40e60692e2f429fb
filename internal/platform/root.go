package platform

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/aretw0/slate/internal/config"
)

// ErrRootNotFound is returned by FindRoot when no workspace marker exists
// between the start directory and the filesystem root.
var ErrRootNotFound = errors.New("root not found")

// FindRoot looks upwards from startDir for a slate workspace: a directory
// holding slate.toml or a .slate directory. It returns the absolute path.
func FindRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if hasFile(dir, config.FileName) || hasFile(dir, ".slate") {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", ErrRootNotFound
}

func hasFile(dir, name string) bool {
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}
