// Package json provides machine-readable JSON output
package json

import (
	"encoding/json"
	"io"

	"github.com/arthur-debert/calvin/pkg/errors"
	"github.com/arthur-debert/calvin/pkg/resolver"
	"github.com/arthur-debert/calvin/pkg/types"
)

// Renderer provides JSON output for machine consumption
type Renderer struct {
	output  io.Writer
	encoder *json.Encoder
}

// New creates a new JSON renderer
func New(output io.Writer) (*Renderer, error) {
	encoder := json.NewEncoder(output)
	encoder.SetIndent("", "  ")
	return &Renderer{
		output:  output,
		encoder: encoder,
	}, nil
}

type plannedFile struct {
	Path        string               `json:"path"`
	Action      types.Action         `json:"action"`
	Reason      types.ConflictReason `json:"reason,omitempty"`
	Description string               `json:"description,omitempty"`
}

type planDoc struct {
	Command string           `json:"command"`
	Files   []plannedFile    `json:"files"`
	Counts  types.PlanCounts `json:"counts"`
}

type resultDoc struct {
	Command string `json:"command"`
	*types.DeployResult
}

type errorDoc struct {
	Error       string           `json:"error"`
	Code        errors.ErrorCode `json:"code"`
	Paths       []string         `json:"paths,omitempty"`
	Remediation string           `json:"remediation,omitempty"`
}

// RenderPlan encodes every entry of plan, skips included.
func (r *Renderer) RenderPlan(title string, plan *types.Plan) error {
	doc := planDoc{Command: title, Files: make([]plannedFile, 0, len(plan.Files)), Counts: plan.Counts()}
	for _, f := range plan.Files {
		pf := plannedFile{Path: f.Key.String(), Action: f.Action, Reason: f.Reason}
		if f.IsConflict() {
			pf.Description = resolver.Describe(f)
		}
		doc.Files = append(doc.Files, pf)
	}
	return r.encoder.Encode(doc)
}

func (r *Renderer) RenderResult(title string, res *types.DeployResult) error {
	return r.encoder.Encode(resultDoc{Command: title, DeployResult: res})
}

// RenderError renders an error as JSON
func (r *Renderer) RenderError(err error) error {
	return r.encoder.Encode(errorDoc{
		Error:       err.Error(),
		Code:        errors.GetErrorCode(err),
		Paths:       errors.Paths(err),
		Remediation: errors.Remediation(err),
	})
}

// RenderMessage renders a simple message as JSON
func (r *Renderer) RenderMessage(msg string) error {
	messageObj := map[string]string{
		"message": msg,
	}
	return r.encoder.Encode(messageObj)
}
