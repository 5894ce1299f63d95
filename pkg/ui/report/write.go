package report

import (
	"fmt"
	"io"
)

// labelWidth fits the longest label ("unchanged") plus a space.
const labelWidth = 10

// Styler decorates the pieces of a report. Text is already padded.
type Styler interface {
	Title(s string) string
	Label(r Row, s string) string
	Path(s string) string
	Detail(s string) string
	Summary(s string, failed bool) string
}

// Plain leaves every piece untouched.
type Plain struct{}

func (Plain) Title(s string) string           { return s }
func (Plain) Label(_ Row, s string) string    { return s }
func (Plain) Path(s string) string            { return s }
func (Plain) Detail(s string) string          { return s }
func (Plain) Summary(s string, _ bool) string { return s }

// Write prints r line by line through st.
func Write(w io.Writer, r Report, st Styler) error {
	title := r.Title
	if r.DryRun {
		title += " (dry run)"
	}
	if _, err := fmt.Fprintln(w, st.Title(title)); err != nil {
		return err
	}
	for _, row := range r.Rows {
		line := "  " + st.Label(row, fmt.Sprintf("%-*s", labelWidth, row.Label)) + st.Path(row.Key)
		if row.Detail != "" {
			line += "  " + st.Detail(row.Detail)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if len(r.Rows) > 0 {
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, st.Summary(r.Summary, r.Failed > 0 || r.Counts.Conflict > 0))
	return err
}
