package topics

import (
	"bytes"
	"testing"
	"testing/fstest"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func helpFS() fstest.MapFS {
	return fstest.MapFS{
		"conflicts.md":          {Data: []byte("# Conflicts\n\nHow calvin decides.")},
		"option-dry-run.txt":    {Data: []byte("Dry run help")},
		"lockfile.txt":          {Data: []byte("Lockfile help")},
		"advanced/scopes.txt":   {Data: []byte("Scope help")},
		"ignore.json":           {Data: []byte("not a topic")},
		"drafts/unfinished.txt": {Data: []byte("draft"), Mode: 0644},
	}
}

func TestScanTopics(t *testing.T) {
	t.Run("default extensions", func(t *testing.T) {
		tm := New(helpFS())
		require.NoError(t, tm.scanTopics())

		topic, ok := tm.GetTopic("conflicts")
		require.True(t, ok)
		assert.Equal(t, "# Conflicts\n\nHow calvin decides.", topic.Content)

		_, ok = tm.GetTopic("ignore")
		assert.False(t, ok)
	})

	t.Run("custom extensions", func(t *testing.T) {
		tm := NewWithOptions(helpFS(), Options{Extensions: []string{".json"}})
		require.NoError(t, tm.scanTopics())
		assert.Equal(t, []string{"ignore"}, tm.ListTopics())
	})

	t.Run("subdirectories flatten to the base name", func(t *testing.T) {
		tm := New(helpFS())
		require.NoError(t, tm.scanTopics())
		topic, ok := tm.GetTopic("scopes")
		require.True(t, ok)
		assert.Equal(t, "advanced/scopes.txt", topic.FilePath)
	})

	t.Run("empty file system", func(t *testing.T) {
		tm := New(fstest.MapFS{})
		require.NoError(t, tm.scanTopics())
		assert.Empty(t, tm.ListTopics())
	})
}

func TestGetTopic(t *testing.T) {
	tm := New(helpFS())
	require.NoError(t, tm.scanTopics())

	tests := []struct {
		input    string
		expected string
		exists   bool
	}{
		{"lockfile", "lockfile", true},
		{"option-dry-run", "option-dry-run", true},
		{"dry-run", "option-dry-run", true},
		{"--dry-run", "option-dry-run", true},
		{"-dry-run", "option-dry-run", true},
		{"-v", "", false},
		{"nonexistent", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			topic, exists := tm.GetTopic(tt.input)
			assert.Equal(t, tt.exists, exists)
			if exists {
				assert.Equal(t, tt.expected, topic.Name)
			}
		})
	}
}

func TestListTopicsSorted(t *testing.T) {
	tm := New(helpFS())
	require.NoError(t, tm.scanTopics())
	assert.Equal(t, []string{"conflicts", "lockfile", "option-dry-run", "scopes", "unfinished"}, tm.ListTopics())
}

func newApp(t *testing.T) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	rootCmd := &cobra.Command{Use: "testapp", Short: "Test application"}
	rootCmd.AddCommand(&cobra.Command{
		Use:   "deploy",
		Short: "Deploy something",
		Run:   func(cmd *cobra.Command, args []string) {},
	})
	require.NoError(t, Initialize(rootCmd, helpFS()))

	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	return rootCmd, buf
}

func TestHelpCommand(t *testing.T) {
	t.Run("topic", func(t *testing.T) {
		rootCmd, buf := newApp(t)
		rootCmd.SetArgs([]string{"help", "lockfile"})
		require.NoError(t, rootCmd.Execute())
		assert.Equal(t, "Lockfile help\n", buf.String())
	})

	t.Run("topic list", func(t *testing.T) {
		rootCmd, buf := newApp(t)
		rootCmd.SetArgs([]string{"help", "topics"})
		require.NoError(t, rootCmd.Execute())
		assert.Contains(t, buf.String(), "General topics:\n  conflicts\n")
		assert.Contains(t, buf.String(), "Option topics:\n  --dry-run\n")
		assert.Contains(t, buf.String(), "testapp help <topic>")
	})

	t.Run("command", func(t *testing.T) {
		rootCmd, buf := newApp(t)
		rootCmd.SetArgs([]string{"help", "deploy"})
		require.NoError(t, rootCmd.Execute())
		assert.Contains(t, buf.String(), "Deploy something")
	})
}

func TestPlainRendererEndsWithNewline(t *testing.T) {
	assert.Equal(t, "# x\n", (&PlainRenderer{}).Render("# x", ".md"))
	assert.Equal(t, "# x\n", (&PlainRenderer{}).Render("# x\n\n", ".md"))
	assert.Equal(t, "plain", NewGlamourRenderer().Render("plain", ".txt"))
}
