// Package provenance embeds and recognises the signature calvin writes
// into managed files.
//
// The marker lets calvin spot files it wrote even when the lockfile is
// lost. Recognition is a plain substring scan of the head of a file, so a
// user-authored file can match by accident; callers must treat a marker
// hit as a hint and never as permission to delete.
package provenance

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/calvin/pkg/types"
)

// Signature is the string every marker contains.
const Signature = "calvin:managed"

// ScanLimit bounds how much of a file Detect looks at.
const ScanLimit = 4096

// Style is the comment syntax used for a destination format.
type Style int

const (
	// StyleNone: the format has no comments (JSON); no marker is embedded.
	StyleNone Style = iota
	StyleHTML
	StyleHash
)

// StyleFor picks the comment style from the destination's extension.
func StyleFor(path string) Style {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".mdc", ".markdown":
		return StyleHTML
	case ".toml", ".yaml", ".yml", ".sh", ".txt", ".conf", "":
		return StyleHash
	default:
		return StyleNone
	}
}

// Line renders the marker line for style. StyleNone yields "".
func Line(style Style, source string) string {
	body := Signature
	if source != "" {
		body += " source=" + source
	}
	switch style {
	case StyleHTML:
		return fmt.Sprintf("<!-- %s; edits will be overwritten -->", body)
	case StyleHash:
		return fmt.Sprintf("# %s; edits will be overwritten", body)
	}
	return ""
}

// Detect reports whether content carries the signature in its head.
func Detect(content []byte) bool {
	head := content
	if len(head) > ScanLimit {
		head = head[:ScanLimit]
	}
	return bytes.Contains(head, []byte(Signature))
}

// Embed returns content with a marker for the destination path. Content
// that already carries the signature, or whose format takes no comments,
// is returned unchanged. Markdown frontmatter stays first in the file.
func Embed(path string, content []byte, source string) []byte {
	if Detect(content) {
		return content
	}
	style := StyleFor(path)
	line := Line(style, source)
	if line == "" {
		return content
	}

	if style == StyleHTML {
		if end, eol := frontmatterEnd(content); end > 0 {
			out := make([]byte, 0, len(content)+len(line)+2*len(eol))
			out = append(out, content[:end]...)
			if !bytes.HasSuffix(out, []byte("\n")) {
				out = append(out, eol...)
			}
			out = append(out, line...)
			out = append(out, eol...)
			return append(out, content[end:]...)
		}
	}

	if style == StyleHash && bytes.HasPrefix(content, []byte("#!")) {
		nl := bytes.IndexByte(content, '\n')
		if nl < 0 {
			return append(append(append([]byte{}, content...), '\n'), line+"\n"...)
		}
		out := make([]byte, 0, len(content)+len(line)+1)
		out = append(out, content[:nl+1]...)
		out = append(out, line...)
		out = append(out, '\n')
		return append(out, content[nl+1:]...)
	}

	out := make([]byte, 0, len(content)+len(line)+1)
	out = append(out, line...)
	out = append(out, '\n')
	return append(out, content...)
}

// Ensure returns out with the marker embedded, recomputing the digest
// when the content changed.
func Ensure(out types.DesiredOutput) types.DesiredOutput {
	content := Embed(out.Key.Path, out.Content, out.Source)
	if bytes.Equal(content, out.Content) {
		return out
	}
	return types.NewDesiredOutput(out.Key, content, out.Source)
}

// frontmatterEnd returns the offset just past a leading "---" block, or 0,
// along with the block's line ending. A closing delimiter at EOF without a
// newline ends at len(content).
func frontmatterEnd(content []byte) (int, string) {
	var eol string
	switch {
	case bytes.HasPrefix(content, []byte("---\n")):
		eol = "\n"
	case bytes.HasPrefix(content, []byte("---\r\n")):
		eol = "\r\n"
	default:
		return 0, ""
	}
	start := len("---") + len(eol)
	rest := content[start:]
	delim := []byte("---")

	// Empty block: the closing delimiter is the very next line.
	if bytes.HasPrefix(rest, append(delim, eol...)) {
		return start + len(delim) + len(eol), eol
	}
	if bytes.Equal(rest, delim) {
		return len(content), eol
	}

	closing := []byte(eol + "---" + eol)
	if idx := bytes.Index(rest, closing); idx >= 0 {
		return start + idx + len(closing), eol
	}
	if bytes.HasSuffix(rest, []byte(eol+"---")) {
		return len(content), eol
	}
	return 0, ""
}
