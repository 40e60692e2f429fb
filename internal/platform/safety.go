package platform

import (
	"os"
	"path/filepath"
	"strings"
)

// IsDevRun reports whether the process was built by `go run` or `go test`,
// both of which place the binary under the system temp directory.
func IsDevRun() bool {
	exe, err := os.Executable()
	if err != nil {
		return false
	}
	if strings.HasPrefix(strings.ToLower(exe), strings.ToLower(os.TempDir())) {
		return true
	}
	return strings.HasSuffix(exe, ".test") || strings.HasSuffix(exe, ".test.exe")
}

// ResolvePath returns the storage path to use. With forceTemp, paths
// outside the system temp directory are re-rooted under <tmp>/slate-dev
// by their base name; paths already inside it are trusted as is.
func ResolvePath(userPath string, forceTemp bool) string {
	if !forceTemp {
		if userPath == "" {
			return "."
		}
		return userPath
	}

	clean := filepath.Clean(userPath)
	tempRoot := os.TempDir()
	if rel, err := filepath.Rel(tempRoot, clean); err == nil && !strings.HasPrefix(rel, "..") && filepath.IsAbs(clean) {
		return clean
	}

	sub := filepath.Base(clean)
	if userPath == "" || sub == "." || sub == string(os.PathSeparator) {
		sub = "default"
	}
	return filepath.Join(tempRoot, "slate-dev", sub)
}
