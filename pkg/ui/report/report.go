// Package report flattens plans and deploy results into the rows every
// renderer prints.
package report

import (
	"fmt"
	"strings"

	"github.com/arthur-debert/calvin/pkg/resolver"
	"github.com/arthur-debert/calvin/pkg/style"
	"github.com/arthur-debert/calvin/pkg/types"
)

// LabelFailed marks a row whose action returned an error.
const LabelFailed = "failed"

// Row is one printed destination.
type Row struct {
	Key    string
	Action types.Action
	Label  string
	Detail string
	Failed bool
}

// Report is a renderer-neutral view of one pass.
type Report struct {
	Title  string
	DryRun bool
	// Done is set once the actions ran, switching labels to past tense.
	Done    bool
	Rows    []Row
	Counts  types.PlanCounts
	Failed  int
	Summary string
}

// FromPlan describes a plan that has not been executed. Skips are folded
// into the summary.
func FromPlan(title string, plan *types.Plan) Report {
	r := Report{Title: title, Counts: plan.Counts()}
	for _, f := range plan.Files {
		if f.Action == types.ActionSkip {
			continue
		}
		r.Rows = append(r.Rows, row(f, false))
	}
	r.Summary = summary(r.Counts, 0, false)
	return r
}

// FromResult describes a finished pass. A dry-run result reads like a plan.
func FromResult(title string, res *types.DeployResult) Report {
	done := !res.DryRun
	r := Report{Title: title, DryRun: res.DryRun, Done: done, Counts: res.Counts, Failed: len(res.Errors)}

	failures := make(map[string]string, len(res.Errors))
	for _, fe := range res.Errors {
		failures[fe.Key.String()] = fe.Message
	}

	if res.Plan != nil {
		for _, f := range res.Plan.Files {
			if msg, ok := failures[f.Key.String()]; ok {
				r.Rows = append(r.Rows, Row{Key: f.Key.String(), Action: f.Action, Label: LabelFailed, Detail: msg, Failed: true})
				continue
			}
			if f.Action == types.ActionSkip {
				continue
			}
			r.Rows = append(r.Rows, row(f, done))
		}
	} else {
		for _, k := range res.Written {
			r.Rows = append(r.Rows, Row{Key: k, Action: types.ActionUpdate, Label: "written"})
		}
		for _, k := range res.Deleted {
			r.Rows = append(r.Rows, Row{Key: k, Action: types.ActionDelete, Label: style.Verb(types.ActionDelete, done)})
		}
		for _, fe := range res.Errors {
			r.Rows = append(r.Rows, Row{Key: fe.Key.String(), Action: fe.Action, Label: LabelFailed, Detail: fe.Message, Failed: true})
		}
	}

	counts := res.Counts
	if done {
		counts = executed(res)
	}
	r.Summary = summary(counts, r.Failed, done)
	return r
}

func row(f types.PlannedFile, done bool) Row {
	r := Row{Key: f.Key.String(), Action: f.Action, Label: style.Verb(f.Action, done)}
	if f.IsConflict() {
		r.Detail = strings.TrimPrefix(resolver.Describe(f), f.Key.String()+" ")
	}
	return r
}

// executed recounts a finished pass so failures are not reported as done.
func executed(res *types.DeployResult) types.PlanCounts {
	if res.Plan == nil {
		return types.PlanCounts{
			Update: len(res.Written),
			Delete: len(res.Deleted),
			Skip:   len(res.Skipped),
		}
	}
	failed := make(map[types.Key]bool, len(res.Errors))
	for _, fe := range res.Errors {
		failed[fe.Key] = true
	}
	var c types.PlanCounts
	for _, f := range res.Plan.Files {
		if failed[f.Key] {
			continue
		}
		switch f.Action {
		case types.ActionCreate:
			c.Create++
		case types.ActionUpdate:
			c.Update++
		case types.ActionDelete:
			c.Delete++
		case types.ActionSkip:
			c.Skip++
		case types.ActionConflict:
			c.Conflict++
		}
	}
	return c
}

func summary(c types.PlanCounts, failed int, done bool) string {
	var parts []string
	add := func(n int, a types.Action) {
		if n == 0 {
			return
		}
		label := style.Verb(a, done)
		if !done && a != types.ActionSkip && a != types.ActionConflict {
			label = "to " + label
		}
		if a == types.ActionConflict && n > 1 {
			label += "s"
		}
		parts = append(parts, fmt.Sprintf("%d %s", n, label))
	}
	add(c.Create, types.ActionCreate)
	add(c.Update, types.ActionUpdate)
	add(c.Delete, types.ActionDelete)
	add(c.Skip, types.ActionSkip)
	add(c.Conflict, types.ActionConflict)
	if failed > 0 {
		parts = append(parts, fmt.Sprintf("%d %s", failed, LabelFailed))
	}
	if len(parts) == 0 {
		return "nothing to sync"
	}
	return strings.Join(parts, ", ")
}
