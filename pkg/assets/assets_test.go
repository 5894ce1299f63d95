package assets

import (
	"testing"

	"github.com/arthur-debert/calvin/pkg/errors"
	"github.com/arthur-debert/calvin/pkg/internal/hashutil"
	"github.com/arthur-debert/calvin/pkg/testutil"
	"github.com/arthur-debert/calvin/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrontmatter(t *testing.T) {
	src := "---\ndescription: Review the diff\nkind: rule\nscope: user\ntargets: [claude]\n---\nBe thorough.\n"

	a, err := Parse("review/pr.md", []byte(src))
	require.NoError(t, err)
	assert.Equal(t, "review/pr", a.ID)
	assert.Equal(t, "review/pr.md", a.Source)
	assert.Equal(t, "Review the diff", a.Description)
	assert.Equal(t, KindRule, a.Kind)
	assert.Equal(t, types.ScopeUser, a.Scope)
	assert.Equal(t, []string{"claude"}, a.Targets)
	assert.Equal(t, "Be thorough.\n", string(a.Body))
	assert.Equal(t, hashutil.Digest([]byte(src)), a.Digest)

	assert.True(t, a.TargetsAdapter("claude"))
	assert.False(t, a.TargetsAdapter("cursor"))
}

func TestParseDefaults(t *testing.T) {
	a, err := Parse("plain.md", []byte("just a body\n"))
	require.NoError(t, err)
	assert.Equal(t, KindPrompt, a.Kind)
	assert.Equal(t, types.ScopeProject, a.Scope)
	assert.Equal(t, "just a body\n", string(a.Body))
	assert.True(t, a.TargetsAdapter("anything"))
}

func TestParseErrors(t *testing.T) {
	tests := map[string]string{
		"bad_yaml":  "---\ndescription: [unclosed\n---\nbody",
		"bad_kind":  "---\nkind: agent\n---\nbody",
		"bad_scope": "---\nscope: global\n---\nbody",
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse("x.md", []byte(src))
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrAssetParse))
			assert.Equal(t, []string{"x.md"}, errors.Paths(err))
		})
	}
}

func TestIsAssetPath(t *testing.T) {
	assert.True(t, IsAssetPath("a.md"))
	assert.True(t, IsAssetPath("nested/dir/a.md"))
	assert.False(t, IsAssetPath("a.txt"))
	assert.False(t, IsAssetPath(".hidden.md"))
	assert.False(t, IsAssetPath(".git/a.md"))
}

func TestLoad(t *testing.T) {
	fsys := testutil.NewTestFS()
	testutil.WriteFile(t, fsys, "/project/.promptpack/b.md", "b")
	testutil.WriteFile(t, fsys, "/project/.promptpack/a/nested.md", "---\nkind: skill\n---\nskill")
	testutil.WriteFile(t, fsys, "/project/.promptpack/notes.txt", "ignored")
	testutil.WriteFile(t, fsys, "/project/.promptpack/drafts/.calvinignore", "")
	testutil.WriteFile(t, fsys, "/project/.promptpack/drafts/wip.md", "wip")

	loaded, err := Load(fsys, "/project/.promptpack")
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "a/nested", loaded[0].ID)
	assert.Equal(t, KindSkill, loaded[0].Kind)
	assert.Equal(t, "b", loaded[1].ID)
}

func TestLoadMissingDir(t *testing.T) {
	_, err := Load(testutil.NewTestFS(), "/project/.promptpack")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
	assert.NotEmpty(t, errors.Remediation(err))
}
