// Package config loads the orchestrator's top-level configuration:
// the HTTP surface (cmd/server), the scheduler daemon (cmd/worker),
// and every shared collaborator (database, cache, lock, LLM) both
// entrypoints depend on. Adapted from the teacher's
// internal/config/config.go: one go-zero conf.Load call into a single
// struct, validated, with environment-variable overrides.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/core/stores/cache"
	"github.com/zeromicro/go-zero/core/stores/redis"
	"github.com/zeromicro/go-zero/rest"

	"nof0-trading-agents/pkg/confkit"
)

// PostgresConf mirrors goctl-style database settings while allowing
// pool tuning, same shape as the teacher's internal/config.PostgresConf.
type PostgresConf struct {
	DataSource  string        `json:",optional"`
	MaxOpen     int           `json:",default=10"`
	MaxIdle     int           `json:",default=5"`
	MaxLifetime time.Duration `json:",default=5m"`
}

// LockConf is the Redis connection backing internal/lock's decision
// locks, independent of the cache-aside Redis used by internal/model.
type LockConf struct {
	Host string `json:",optional"`
	Type string `json:",default=node,options=node|cluster"`
	Pass string `json:",optional"`
}

// ScheduleConf overrides internal/task's default cadence per task
// type; zero-value entries fall back to task.DefaultSchedule.
type ScheduleConf struct {
	AgentDecisionInterval time.Duration `json:",default=30m"`
	QuoteSyncInterval     time.Duration `json:",default=5m"`
	MarketRefreshInterval time.Duration `json:",default=1h"`
}

// Config is the orchestrator's full configuration tree: the HTTP
// server settings (used by cmd/server) plus every collaborator shared
// with cmd/worker's scheduler daemon.
type Config struct {
	rest.RestConf
	// Env indicates the running environment: test | dev | prod.
	Env string `json:",default=test"`

	Postgres PostgresConf    `json:",optional"`
	Cache    cache.CacheConf `json:",optional"`
	Lock     LockConf        `json:",optional"`
	Schedule ScheduleConf    `json:",optional"`

	// JournalDir is the local decision-cycle mirror's directory; empty
	// disables internal/journal entirely.
	JournalDir string `json:",optional"`

	// WatchedStocks seeds the quote_sync universe before any agent has
	// opened a position; the scheduler daemon folds in agents' held
	// symbols as they trade.
	WatchedStocks []string `json:",optional"`

	// AdminToken gates every write endpoint (spec §6.1 "require_admin
	// guards all write endpoints") via the X-Admin-Token header. Empty
	// disables the check, for local/dev use.
	AdminToken string `json:",optional"`

	mainPath string
	baseDir  string
}

const defaultConfigRelativePath = "etc/nof0.yaml"

var configFileFlag = flag.String("f", defaultConfigRelativePath, "the config file")

func init() {
	confkit.LoadDotenvOnce()
}

// ConfigFile resolves the -f flag (or its default) against the current
// working directory and the executable's directory, matching the
// teacher's upward-search behavior so `go run ./cmd/server` works from
// any subdirectory of the repo.
func ConfigFile() string {
	candidate := defaultConfigRelativePath
	if configFileFlag != nil {
		if trimmed := strings.TrimSpace(*configFileFlag); trimmed != "" {
			candidate = trimmed
		}
	}
	if resolved, ok := resolveConfigPath(candidate); ok {
		return resolved
	}
	return candidate
}

func resolveConfigPath(path string) (string, bool) {
	if path == "" {
		return "", false
	}
	if filepath.IsAbs(path) {
		if fileExists(path) {
			return path, true
		}
		return "", false
	}

	startDirs := make([]string, 0, 3)
	if cwd, err := os.Getwd(); err == nil {
		startDirs = append(startDirs, cwd)
	}
	if exePath, err := os.Executable(); err == nil {
		startDirs = append(startDirs, filepath.Dir(exePath))
	}
	if root, err := confkit.ProjectRoot(); err == nil {
		startDirs = append(startDirs, root)
	}

	seen := make(map[string]struct{}, len(startDirs))
	for _, dir := range startDirs {
		dir = filepath.Clean(dir)
		if _, ok := seen[dir]; ok || dir == "" {
			continue
		}
		seen[dir] = struct{}{}
		if resolved, ok := searchUpwards(dir, path); ok {
			return resolved, true
		}
	}
	return "", false
}

func searchUpwards(start, rel string) (string, bool) {
	dir := filepath.Clean(start)
	for {
		candidate := filepath.Join(dir, rel)
		if fileExists(candidate) {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// MustLoad loads the config resolved by ConfigFile, panicking on error.
func MustLoad() *Config {
	cfg, err := Load(ConfigFile())
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads and validates the config file at path.
func Load(path string) (*Config, error) {
	confkit.LoadDotenvOnce()

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path %s: %w", path, err)
	}

	var cfg Config
	if err := conf.Load(absPath, &cfg, conf.UseEnv()); err != nil {
		return nil, fmt.Errorf("load config %s: %w", absPath, err)
	}

	cfg.mainPath = absPath
	cfg.baseDir = filepath.Dir(absPath)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that Env is one of test|dev|prod (an empty Env
// becomes "test") and that postgres.dataSource is set.
func (c *Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Env)) {
	case "", "test", "dev", "prod":
		if strings.TrimSpace(c.Env) == "" {
			c.Env = "test"
		}
	default:
		return errors.New("config: env must be one of test|dev|prod")
	}
	if strings.TrimSpace(c.Postgres.DataSource) == "" {
		return errors.New("config: postgres.dataSource is required")
	}
	return nil
}

// IsTestEnv reports whether the config was loaded in the test
// environment (the default when Env is unset).
func (c *Config) IsTestEnv() bool { return c.Env == "test" || c.Env == "" }

// MainPath returns the resolved main config file's absolute path.
func (c *Config) MainPath() string { return c.mainPath }

// BaseDir returns the directory the main config file lives in, for
// resolving any relative sub-config paths.
func (c *Config) BaseDir() string { return c.baseDir }

// LockRedisConf adapts LockConf into the go-zero redis.RedisConf
// internal/lock's Locker needs.
func (c *Config) LockRedisConf() redis.RedisConf {
	return redis.RedisConf{
		Host: c.Lock.Host,
		Type: c.Lock.Type,
		Pass: c.Lock.Pass,
	}
}
