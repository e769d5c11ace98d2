package confkit

import (
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/joho/godotenv"
)

var dotenvOnce sync.Once

// LoadDotenvOnce loads provider API keys and the Postgres/Redis DSNs
// nof0.yaml expects as env-substituted values (DataSource, Lock.Host,
// ...) from a .env file before config.Load runs. The first call wins;
// internal/config calls this from both init() and Load(), so repeated
// calls (every cmd/server/cmd/worker startup path, plus every test
// that calls Load directly) are no-ops after the first.
func LoadDotenvOnce() {
	dotenvOnce.Do(func() {
		loadDotenv()
	})
}

// loadDotenv searches for a .env file to seed the process environment.
// Priority: ENV_FILE if set, else walking up from this source file's
// own directory toward the module root, stopping once go.mod or .git
// is found. Skips entirely when NO_DOTENV=1; existing variables win
// over the file's unless DOTENV_OVERLOAD=1.
func loadDotenv() {
	if os.Getenv("NO_DOTENV") == "1" {
		return
	}

	overload := os.Getenv("DOTENV_OVERLOAD") == "1"
	load := func(paths ...string) {
		if overload {
			_ = godotenv.Overload(paths...)
		} else {
			_ = godotenv.Load(paths...)
		}
	}

	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		load(envFile)
		return
	}

	if _, file, _, ok := runtime.Caller(0); ok {
		dir := filepath.Dir(file)
		for i := 0; i < 8; i++ {
			load(filepath.Join(dir, ".env"))
			if fileExists(filepath.Join(dir, "go.mod")) || fileExists(filepath.Join(dir, ".git")) {
				return
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
		return
	}

	load(".env")
}
