package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/calvin/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ".promptpack", cfg.Source.Dir)
	assert.Equal(t, "calvin.lock", cfg.Lockfile.Path)
	assert.Equal(t, ConflictsAuto, cfg.Sync.Conflicts)
	assert.Equal(t, 8, cfg.Sync.ReadConcurrency)
	assert.Equal(t, 250*time.Millisecond, cfg.Watch.Debounce)
	assert.Contains(t, cfg.Watch.Ignore, ".git/**")
	assert.Equal(t, []string{"claude", "cursor"}, cfg.Targets.Enabled)
}

func TestLoadProjectFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, FileName), []byte(`
[source]
dir = "prompts"

[sync]
conflicts = "skip-all"

[watch]
debounce = "1s"
ignore = ["**/*.tmp"]

[targets]
enabled = ["claude"]
`), 0644))

	cfg, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, "prompts", cfg.Source.Dir)
	assert.Equal(t, "skip-all", cfg.Sync.Conflicts)
	assert.Equal(t, time.Second, cfg.Watch.Debounce)
	assert.Equal(t, []string{"**/*.tmp"}, cfg.Watch.Ignore)
	assert.Equal(t, []string{"claude"}, cfg.Targets.Enabled)
	assert.Equal(t, filepath.Join(root, "prompts"), cfg.SourceDir(root))
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CALVIN_SYNC_CONFLICTS", "force-overwrite")
	t.Setenv("CALVIN_SYNC_READ_CONCURRENCY", "2")
	t.Setenv("CALVIN_TARGETS_ENABLED", "cursor,claude")
	t.Setenv("CALVIN_LOCKFILE_PATH", "/tmp/elsewhere.lock")

	root := t.TempDir()
	cfg, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, "force-overwrite", cfg.Sync.Conflicts)
	assert.Equal(t, 2, cfg.Sync.ReadConcurrency)
	assert.Equal(t, []string{"cursor", "claude"}, cfg.Targets.Enabled)
	assert.Equal(t, "/tmp/elsewhere.lock", cfg.LedgerPath(root))
}

func TestLoadYAMLProjectFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".calvin.yaml"), []byte(`
source:
  dir: agents
targets:
  enabled: [cursor]
`), 0644))

	cfg, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, "agents", cfg.Source.Dir)
	assert.Equal(t, []string{"cursor"}, cfg.Targets.Enabled)
}

func TestTOMLWinsOverYAML(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, FileName), []byte("[source]\ndir = \"from-toml\"\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".calvin.yml"), []byte("source:\n  dir: from-yaml\n"), 0644))

	path, ok := ProjectFile(root)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, FileName), path)

	cfg, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, "from-toml", cfg.Source.Dir)
}

func TestOverridesBeatEnvironment(t *testing.T) {
	t.Setenv("CALVIN_TARGETS_ENABLED", "cursor")

	cfg, err := LoadWithOverrides(t.TempDir(), map[string]any{
		"targets.enabled": []string{"claude"},
		"sync.conflicts":  "skip-all",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"claude"}, cfg.Targets.Enabled)
	assert.Equal(t, "skip-all", cfg.Sync.Conflicts)
}

func TestOverridesAreValidated(t *testing.T) {
	_, err := LoadWithOverrides(t.TempDir(), map[string]any{"watch.debounce": "0s"})
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigValid))
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv("CALVIN_SYNC_CONFLICTS", "merge")

	_, err := Load(t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigValid))
}

func TestLoadMalformedFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, FileName), []byte("[source\n"), 0644))

	_, err := Load(root)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigLoad))
}

func TestRoots(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, xdg.Home, cfg.Roots("/p").User)

	cfg.Targets.UserHome = "/custom"
	roots := cfg.Roots("/p")
	assert.Equal(t, "/p", roots.Project)
	assert.Equal(t, "/custom", roots.User)
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "sync.read_concurrency", envKey("CALVIN_SYNC_READ_CONCURRENCY"))
	assert.Equal(t, "watch.debounce", envKey("CALVIN_WATCH_DEBOUNCE"))
}
