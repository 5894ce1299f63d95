// Package resolver turns a plan with conflicts into a plan without them,
// or refuses.
package resolver

import (
	"context"
	"fmt"
	"strings"

	"github.com/arthur-debert/calvin/pkg/errors"
	"github.com/arthur-debert/calvin/pkg/logging"
	"github.com/arthur-debert/calvin/pkg/types"
)

// Resolver decides every conflict in a plan. The returned plan has no
// conflict entries; an error means nothing may be executed.
type Resolver interface {
	Resolve(ctx context.Context, plan *types.Plan) (*types.Plan, error)
}

// Disposition is a non-interactive answer applied to every conflict.
type Disposition string

const (
	ForceOverwrite Disposition = "force-overwrite"
	SkipAll        Disposition = "skip-all"
	FailFast       Disposition = "fail-fast"
	// Interactive is not a policy; it selects the prompting resolver.
	Interactive Disposition = "interactive"
)

// Dispositions lists the accepted values, for help text and validation.
var Dispositions = []Disposition{FailFast, SkipAll, ForceOverwrite, Interactive}

// ParseDisposition validates a configured or flag value.
func ParseDisposition(s string) (Disposition, error) {
	for _, d := range Dispositions {
		if string(d) == s {
			return d, nil
		}
	}
	names := make([]string, len(Dispositions))
	for i, d := range Dispositions {
		names[i] = string(d)
	}
	return "", errors.Newf(errors.ErrInvalidInput, "unknown conflict policy %q (want one of %s)", s, strings.Join(names, ", "))
}

// overridable reports whether a conflict may be resolved by overwriting.
func overridable(f types.PlannedFile) bool {
	return f.Reason != types.ConflictTypeMismatch && f.Override != ""
}

func unresolved(conflicts []types.PlannedFile) error {
	paths := make([]string, len(conflicts))
	for i, c := range conflicts {
		paths[i] = c.Key.String()
	}
	return errors.Newf(errors.ErrConflictUnresolved, "%d conflicting path(s) left unresolved", len(conflicts)).
		WithDetail(errors.DetailPaths, paths).
		WithRemediation("rerun with --conflicts=interactive, or --conflicts=force-overwrite to replace local edits")
}

// Policy resolves every conflict the same way.
type Policy struct {
	disposition Disposition
}

// NewPolicy builds a policy resolver. Interactive is rejected here.
func NewPolicy(d Disposition) (*Policy, error) {
	switch d {
	case ForceOverwrite, SkipAll, FailFast:
		return &Policy{disposition: d}, nil
	}
	return nil, errors.Newf(errors.ErrInvalidInput, "%q is not a non-interactive policy", d)
}

// Disposition returns the configured answer.
func (p *Policy) Disposition() Disposition {
	return p.disposition
}

// Resolve applies the disposition. Type mismatches are never resolved by a
// policy, so any of them fails the run whatever the disposition.
func (p *Policy) Resolve(ctx context.Context, plan *types.Plan) (*types.Plan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger := logging.GetLogger("resolver")

	var blocked []types.PlannedFile
	files := make([]types.PlannedFile, 0, len(plan.Files))
	for _, f := range plan.Files {
		if !f.IsConflict() {
			files = append(files, f)
			continue
		}
		if p.disposition == FailFast || !overridable(f) {
			blocked = append(blocked, f)
			continue
		}
		switch p.disposition {
		case ForceOverwrite:
			logger.Debug().Str("path", f.Key.String()).Str("reason", string(f.Reason)).Msg("overwriting")
			files = append(files, f.Overwrite())
		case SkipAll:
			logger.Debug().Str("path", f.Key.String()).Str("reason", string(f.Reason)).Msg("skipping")
			files = append(files, f.Keep())
		}
	}

	if len(blocked) > 0 {
		return nil, unresolved(blocked)
	}
	return types.NewPlan(files), nil
}

// Choice is one answer to a per-path prompt.
type Choice string

const (
	ChoiceOverwrite Choice = "overwrite"
	ChoiceSkip      Choice = "skip"
	ChoiceAbort     Choice = "abort"
)

// Prompter asks the user about one conflict. choices is never empty and
// always ends with ChoiceAbort.
type Prompter interface {
	Choose(ctx context.Context, conflict types.PlannedFile, choices []Choice) (Choice, error)
}

// Prompting asks a Prompter about each conflict in plan order.
type Prompting struct {
	prompter Prompter
}

// NewInteractive builds a resolver that asks before every conflict.
func NewInteractive(p Prompter) *Prompting {
	return &Prompting{prompter: p}
}

// ChoicesFor lists what the user may answer for a conflict.
func ChoicesFor(f types.PlannedFile) []Choice {
	if overridable(f) {
		return []Choice{ChoiceOverwrite, ChoiceSkip, ChoiceAbort}
	}
	return []Choice{ChoiceSkip, ChoiceAbort}
}

func (r *Prompting) Resolve(ctx context.Context, plan *types.Plan) (*types.Plan, error) {
	files := make([]types.PlannedFile, 0, len(plan.Files))
	for _, f := range plan.Files {
		if !f.IsConflict() {
			files = append(files, f)
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		choices := ChoicesFor(f)
		choice, err := r.prompter.Choose(ctx, f, choices)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrAborted, "prompt for %s failed", f.Key)
		}
		if !allowed(choice, choices) {
			return nil, errors.Newf(errors.ErrInvalidInput, "choice %q not offered for %s", choice, f.Key)
		}

		switch choice {
		case ChoiceOverwrite:
			files = append(files, f.Overwrite())
		case ChoiceSkip:
			files = append(files, f.Keep())
		default:
			return nil, errors.Newf(errors.ErrAborted, "aborted at %s", f.Key).
				WithDetail(errors.DetailPath, f.Key.String())
		}
	}
	return types.NewPlan(files), nil
}

func allowed(c Choice, choices []Choice) bool {
	for _, o := range choices {
		if o == c {
			return true
		}
	}
	return false
}

// Describe renders a one-line explanation of a conflict for prompts and
// reports.
func Describe(f types.PlannedFile) string {
	switch f.Reason {
	case types.ConflictExternallyModified:
		if f.Orphan != nil {
			return fmt.Sprintf("%s is no longer generated but was edited since calvin wrote it", f.Key)
		}
		if f.LedgerDigest == "" {
			return fmt.Sprintf("%s already exists with content calvin did not write", f.Key)
		}
		return fmt.Sprintf("%s was edited since calvin wrote it", f.Key)
	case types.ConflictDeletedExternally:
		return fmt.Sprintf("%s was deleted since calvin wrote it", f.Key)
	case types.ConflictTypeMismatch:
		return fmt.Sprintf("%s is a %s, expected a file", f.Key, f.Live.Kind)
	case types.ConflictUntrackedManaged:
		return fmt.Sprintf("%s carries the calvin marker but is not in the lockfile", f.Key)
	}
	return f.Key.String()
}
