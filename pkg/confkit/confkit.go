// Package confkit holds the small filesystem/env helpers
// internal/config leans on to locate nof0.yaml and any path it names
// relative to the repo, independent of the working directory a binary
// happens to be launched from (cmd/server, cmd/worker, or `go test`
// from a nested package).
package confkit

import (
	"os"
	"path/filepath"
)

// ResolvePath expands env vars in file and, if it isn't already
// absolute, joins it onto base. Used for config-relative settings like
// Config.JournalDir, which may be given as a bare directory name
// meant to sit next to nof0.yaml rather than the process cwd.
func ResolvePath(base, file string) string {
	file = os.ExpandEnv(file)
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(base, file)
}

// BaseDir returns the directory containing mainPath, the resolved
// nof0.yaml location.
func BaseDir(mainPath string) string {
	return filepath.Dir(mainPath)
}
