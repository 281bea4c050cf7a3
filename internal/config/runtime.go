package config

import (
	"os"
	"path/filepath"
)

// GetRuntimePath is available before the environment is fully loaded, so
// the .env file inside the runtime directory can be found.
func GetRuntimePath() string {
	return resolveRuntimePath(os.Getenv("CERAMICS_RUNTIME_PATH"))
}

func resolveRuntimePath(path string) string {
	if path == "" {
		path = ".ceramics"
	}

	if !filepath.IsAbs(path) {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path)
	}
	return path
}
