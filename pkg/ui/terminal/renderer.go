// Package terminal provides rich terminal output with colors and styling
package terminal

import (
	"fmt"
	"io"
	"strings"

	"github.com/arthur-debert/calvin/pkg/errors"
	"github.com/arthur-debert/calvin/pkg/style"
	"github.com/arthur-debert/calvin/pkg/types"
	"github.com/arthur-debert/calvin/pkg/ui/report"
)

// Renderer provides rich terminal output using lipgloss styles
type Renderer struct {
	output io.Writer
}

// New creates a new terminal renderer
func New(w io.Writer) (*Renderer, error) {
	return &Renderer{output: w}, nil
}

type styler struct{}

func (styler) Title(s string) string { return style.TitleStyle.Render(s) }

func (styler) Label(r report.Row, s string) string {
	if r.Failed {
		return style.ErrorStyle.Render(s)
	}
	return style.ActionStyle(r.Action).Render(s)
}

func (styler) Path(s string) string   { return style.NormalStyle.Render(s) }
func (styler) Detail(s string) string { return style.MutedStyle.Render(s) }

func (styler) Summary(s string, failed bool) string {
	if failed {
		return style.WarningIndicator + " " + style.WarningStyle.Render(s)
	}
	return style.SuccessIndicator + " " + style.SuccessStyle.Render(s)
}

func (r *Renderer) RenderPlan(title string, plan *types.Plan) error {
	return report.Write(r.output, report.FromPlan(title, plan), styler{})
}

func (r *Renderer) RenderResult(title string, res *types.DeployResult) error {
	return report.Write(r.output, report.FromResult(title, res), styler{})
}

// RenderError renders an error in a bordered box with its paths and
// remediation
func (r *Renderer) RenderError(err error) error {
	lines := []string{style.ErrorIndicator + " " + style.ErrorStyle.Render(err.Error())}
	for _, p := range errors.Paths(err) {
		lines = append(lines, "  "+style.PathStyle.Render(p))
	}
	if hint := errors.Remediation(err); hint != "" {
		lines = append(lines, style.InfoStyle.Render("Try: "+hint))
	}
	_, werr := fmt.Fprintln(r.output, style.BoxStyle.Render(strings.Join(lines, "\n")))
	return werr
}

// RenderMessage renders a simple message
func (r *Renderer) RenderMessage(msg string) error {
	_, err := fmt.Fprintln(r.output, style.NormalStyle.Render(msg))
	return err
}
