// Package text provides plain text output without any styling
package text

import (
	"fmt"
	"io"

	"github.com/arthur-debert/calvin/pkg/errors"
	"github.com/arthur-debert/calvin/pkg/types"
	"github.com/arthur-debert/calvin/pkg/ui/report"
)

// Renderer provides plain text output without colors or styling
type Renderer struct {
	output io.Writer
}

// New creates a new text renderer
func New(output io.Writer) (*Renderer, error) {
	return &Renderer{output: output}, nil
}

func (r *Renderer) RenderPlan(title string, plan *types.Plan) error {
	return report.Write(r.output, report.FromPlan(title, plan), report.Plain{})
}

func (r *Renderer) RenderResult(title string, res *types.DeployResult) error {
	return report.Write(r.output, report.FromResult(title, res), report.Plain{})
}

// RenderError renders an error as plain text, followed by the offending
// paths and the remediation when the error carries them.
func (r *Renderer) RenderError(err error) error {
	if _, werr := fmt.Fprintf(r.output, "Error: %v\n", err); werr != nil {
		return werr
	}
	for _, p := range errors.Paths(err) {
		if _, werr := fmt.Fprintf(r.output, "  %s\n", p); werr != nil {
			return werr
		}
	}
	if hint := errors.Remediation(err); hint != "" {
		if _, werr := fmt.Fprintf(r.output, "Try: %s\n", hint); werr != nil {
			return werr
		}
	}
	return nil
}

// RenderMessage renders a simple message
func (r *Renderer) RenderMessage(msg string) error {
	_, err := fmt.Fprintln(r.output, msg)
	return err
}
