package provenance

import (
	"strings"
	"testing"

	"github.com/arthur-debert/calvin/pkg/types"
	"github.com/stretchr/testify/assert"
)

func TestStyleFor(t *testing.T) {
	tests := map[string]Style{
		".claude/commands/a.md": StyleHTML,
		".cursor/rules/a.mdc":   StyleHTML,
		"config.toml":           StyleHash,
		"hooks/pre.sh":          StyleHash,
		".vscode/settings.json": StyleNone,
		"AGENTS":                StyleHash,
		"image.PNG":             StyleNone,
	}
	for path, want := range tests {
		assert.Equal(t, want, StyleFor(path), path)
	}
}

func TestEmbedPrependsMarker(t *testing.T) {
	out := Embed("a.md", []byte("# Title\n"), "prompts/a")
	assert.Equal(t, "<!-- calvin:managed source=prompts/a; edits will be overwritten -->\n# Title\n", string(out))
	assert.True(t, Detect(out))
}

func TestEmbedKeepsFrontmatterFirst(t *testing.T) {
	in := "---\ndescription: x\n---\nbody\n"
	out := string(Embed("a.mdc", []byte(in), "r"))

	assert.True(t, strings.HasPrefix(out, "---\ndescription: x\n---\n<!-- calvin:managed"), out)
	assert.True(t, strings.HasSuffix(out, "-->\nbody\n"), out)
}

func TestEmbedFrontmatterAtEOF(t *testing.T) {
	out := string(Embed("a.md", []byte("---\ndescription: x\n---"), "a"))
	assert.Equal(t, "---\ndescription: x\n---\n<!-- calvin:managed source=a; edits will be overwritten -->\n", out)
}

func TestEmbedCRLFFrontmatter(t *testing.T) {
	in := "---\r\ndescription: x\r\n---\r\nbody\r\n"
	out := string(Embed("a.md", []byte(in), "a"))
	assert.Equal(t, "---\r\ndescription: x\r\n---\r\n<!-- calvin:managed source=a; edits will be overwritten -->\r\nbody\r\n", out)

	atEOF := string(Embed("a.md", []byte("---\r\ndescription: x\r\n---"), "a"))
	assert.Equal(t, "---\r\ndescription: x\r\n---\r\n<!-- calvin:managed source=a; edits will be overwritten -->\r\n", atEOF)
}

func TestEmbedEmptyFrontmatter(t *testing.T) {
	out := string(Embed("a.md", []byte("---\n---\nbody\n"), ""))
	assert.Equal(t, "---\n---\n<!-- calvin:managed; edits will be overwritten -->\nbody\n", out)
}

func TestEmbedUnclosedFrontmatterIsPrepended(t *testing.T) {
	out := string(Embed("a.md", []byte("---\nno end\n"), ""))
	assert.True(t, strings.HasPrefix(out, "<!-- calvin:managed"), out)
}

func TestEmbedAfterShebang(t *testing.T) {
	out := string(Embed("hook.sh", []byte("#!/bin/sh\necho hi\n"), ""))
	assert.Equal(t, "#!/bin/sh\n# calvin:managed; edits will be overwritten\necho hi\n", out)
}

func TestEmbedIsIdempotent(t *testing.T) {
	once := Embed("a.md", []byte("body"), "a")
	twice := Embed("a.md", once, "a")
	assert.Equal(t, once, twice)
}

func TestEmbedSkipsFormatsWithoutComments(t *testing.T) {
	in := []byte(`{"a": 1}`)
	assert.Equal(t, in, Embed("settings.json", in, "a"))
}

func TestDetectOnlyScansHead(t *testing.T) {
	tail := strings.Repeat("x", ScanLimit) + Signature
	assert.False(t, Detect([]byte(tail)))
	assert.True(t, Detect([]byte("prefix "+Signature)))
	assert.False(t, Detect(nil))
}

func TestEnsureRecomputesDigest(t *testing.T) {
	raw := types.NewDesiredOutput(types.NewKey(types.ScopeProject, "a.md"), []byte("body\n"), "a")

	ensured := Ensure(raw)
	assert.True(t, Detect(ensured.Content))
	assert.NotEqual(t, raw.Digest, ensured.Digest)
	assert.Equal(t, types.NewDesiredOutput(raw.Key, ensured.Content, "a").Digest, ensured.Digest)

	assert.Equal(t, ensured, Ensure(ensured))
}
