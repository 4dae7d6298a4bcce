package model

import (
	"os"
	"path/filepath"
)

// defaultCacheDir places the disk cache under the user cache directory,
// falling back to the system temp dir when HOME is unusable.
func defaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "clausula")
	}
	return filepath.Join(os.TempDir(), "clausula-cache")
}
