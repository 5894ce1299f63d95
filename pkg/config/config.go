package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/calvin/pkg/errors"
	"github.com/arthur-debert/calvin/pkg/types"
)

// FileName is the project configuration file, read from the project root.
const FileName = ".calvin.toml"

// FileNames lists the accepted project files in lookup order. Only the
// first one present is read.
var FileNames = []string{FileName, ".calvin.yaml", ".calvin.yml"}

// EnvPrefix prefixes environment overrides: CALVIN_SYNC_CONFLICTS sets
// sync.conflicts.
const EnvPrefix = "CALVIN_"

// ConflictsAuto selects interactive resolution on a terminal and
// fail-fast otherwise.
const ConflictsAuto = "auto"

// Config is the resolved configuration.
type Config struct {
	Source   SourceConfig   `koanf:"source"`
	Lockfile LockfileConfig `koanf:"lockfile"`
	Sync     SyncConfig     `koanf:"sync"`
	Watch    WatchConfig    `koanf:"watch"`
	Targets  TargetsConfig  `koanf:"targets"`
}

type SourceConfig struct {
	Dir string `koanf:"dir"`
}

type LockfileConfig struct {
	Path string `koanf:"path"`
}

type SyncConfig struct {
	Conflicts       string `koanf:"conflicts"`
	ReadConcurrency int    `koanf:"read_concurrency"`
}

type WatchConfig struct {
	Debounce time.Duration `koanf:"debounce"`
	Ignore   []string      `koanf:"ignore"`
}

type TargetsConfig struct {
	Enabled  []string `koanf:"enabled"`
	UserHome string   `koanf:"user_home"`
}

var conflictValues = []string{ConflictsAuto, "fail-fast", "skip-all", "force-overwrite", "interactive"}

// Validate checks values the type system cannot.
func (c *Config) Validate() error {
	valid := false
	for _, v := range conflictValues {
		if c.Sync.Conflicts == v {
			valid = true
			break
		}
	}
	if !valid {
		return errors.Newf(errors.ErrConfigValid, "sync.conflicts: unknown value %q", c.Sync.Conflicts).
			WithDetail("allowed", conflictValues)
	}
	if c.Sync.ReadConcurrency < 0 {
		return errors.Newf(errors.ErrConfigValid, "sync.read_concurrency must not be negative, got %d", c.Sync.ReadConcurrency)
	}
	if c.Watch.Debounce <= 0 {
		return errors.Newf(errors.ErrConfigValid, "watch.debounce must be positive, got %s", c.Watch.Debounce)
	}
	if c.Source.Dir == "" {
		return errors.New(errors.ErrConfigValid, "source.dir must not be empty")
	}
	if c.Lockfile.Path == "" {
		return errors.New(errors.ErrConfigValid, "lockfile.path must not be empty")
	}
	if len(c.Targets.Enabled) == 0 {
		return errors.New(errors.ErrConfigValid, "targets.enabled must name at least one target")
	}
	return nil
}

// ProjectFile returns the project configuration file under root, if any.
func ProjectFile(root string) (string, bool) {
	for _, name := range FileNames {
		path := filepath.Join(root, name)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}

// Roots returns the scope roots for a project.
func (c *Config) Roots(projectRoot string) types.Roots {
	home := c.Targets.UserHome
	if home == "" {
		home = xdg.Home
	}
	return types.Roots{Project: projectRoot, User: home}
}

// SourceDir returns the absolute source directory.
func (c *Config) SourceDir(projectRoot string) string {
	return resolve(projectRoot, c.Source.Dir)
}

// LedgerPath returns the absolute lockfile path.
func (c *Config) LedgerPath(projectRoot string) string {
	return resolve(projectRoot, c.Lockfile.Path)
}

func resolve(root, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(root, p)
}
