package topics

import "strings"

// Renderer turns raw topic content into what the help command prints.
// format is the topic file's extension, dot included.
type Renderer interface {
	Render(content string, format string) string
}

// PlainRenderer prints topics as written, ending them with a newline.
type PlainRenderer struct{}

// Render returns content with exactly one trailing newline.
func (r *PlainRenderer) Render(content string, format string) string {
	return strings.TrimRight(content, "\n") + "\n"
}
