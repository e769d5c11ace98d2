package confkit

import "os"

// fileExists reports whether anything (file or directory) exists at p; used
// by the .env search (dotenv.go) and the repo-root walk (path.go),
// both of which stop at the first directory where a marker shows up.
func fileExists(p string) bool {
	if p == "" {
		return false
	}
	if _, err := os.Stat(p); err == nil {
		return true
	}
	return false
}
