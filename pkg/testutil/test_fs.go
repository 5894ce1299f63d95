package testutil

import (
	"path/filepath"
	"testing"

	"github.com/arthur-debert/calvin/pkg/filesystem"
	"github.com/arthur-debert/calvin/pkg/types"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// NewTestFS creates a new in-memory filesystem for testing.
func NewTestFS() types.FS {
	return filesystem.NewAferoFS(afero.NewMemMapFs())
}

// TestRoots are the scope roots used by in-memory tests.
var TestRoots = types.Roots{Project: "/project", User: "/home/user"}

// WriteFile writes content at path, creating parents.
func WriteFile(t *testing.T, fsys types.FS, path, content string) {
	t.Helper()
	require.NoError(t, fsys.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, fsys.WriteFile(path, []byte(content), 0644))
}

// ReadFile returns the content at path, failing the test when absent.
func ReadFile(t *testing.T, fsys types.FS, path string) string {
	t.Helper()
	data, err := fsys.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// Exists reports whether anything is at path.
func Exists(fsys types.FS, path string) bool {
	_, err := fsys.Stat(path)
	return err == nil
}

// Output builds a project-scope desired output.
func Output(path, content string) types.DesiredOutput {
	return types.NewDesiredOutput(types.NewKey(types.ScopeProject, path), []byte(content), path)
}
