package types

import (
	"sort"
)

// Action is what the executor will do with one destination.
type Action string

const (
	ActionCreate   Action = "create"
	ActionUpdate   Action = "update"
	ActionSkip     Action = "skip"
	ActionDelete   Action = "delete"
	ActionConflict Action = "conflict"
)

// ConflictReason explains why a path needs a decision before it is touched.
type ConflictReason string

const (
	// ConflictExternallyModified: the live bytes are not the ones calvin
	// last wrote (or the path holds unrelated content calvin never wrote).
	ConflictExternallyModified ConflictReason = "externally_modified"
	// ConflictDeletedExternally: the ledger tracks the path but it is gone.
	ConflictDeletedExternally ConflictReason = "deleted_externally"
	// ConflictTypeMismatch: a directory or other object sits where a file
	// belongs. Never auto-resolved.
	ConflictTypeMismatch ConflictReason = "type_mismatch"
	// ConflictUntrackedManaged: a file carries the provenance marker but
	// the ledger has no record of it. Only a heuristic, so never deleted
	// without confirmation.
	ConflictUntrackedManaged ConflictReason = "untracked_managed"
)

// PlannedFile is one entry of a sync plan.
type PlannedFile struct {
	Key    Key
	Action Action
	// Reason is set only when Action is ActionConflict.
	Reason ConflictReason
	// Override is the action taken if the conflict is resolved by
	// overwriting: create, update or delete. Empty for non-conflicts.
	Override Action
	// Output is the desired content for create/update, and for conflicts
	// whose Override writes.
	Output *DesiredOutput
	// Orphan is set for entries contributed by the orphan detector.
	Orphan *OrphanFile
	// Live is the state the planner saw.
	Live TargetFileState
	// LedgerDigest is the digest on record before this pass, if any.
	LedgerDigest string
}

// Path is the destination, in lockfile form.
func (p PlannedFile) Path() string {
	return p.Key.Path
}

// IsConflict reports whether the entry still needs a decision.
func (p PlannedFile) IsConflict() bool {
	return p.Action == ActionConflict
}

// Overwrite returns a copy of a conflict entry turned into its override
// action.
func (p PlannedFile) Overwrite() PlannedFile {
	out := p
	out.Action = p.Override
	out.Reason = ""
	return out
}

// Keep returns a copy of a conflict entry turned into a skip.
func (p PlannedFile) Keep() PlannedFile {
	out := p
	out.Action = ActionSkip
	out.Reason = ""
	return out
}

// PlanCounts aggregates a plan by action.
type PlanCounts struct {
	Create   int `json:"create"`
	Update   int `json:"update"`
	Skip     int `json:"skip"`
	Delete   int `json:"delete"`
	Conflict int `json:"conflict"`
}

// Changes is the number of entries that touch the filesystem.
func (c PlanCounts) Changes() int {
	return c.Create + c.Update + c.Delete
}

// Plan is the ordered set of per-file actions for one pass.
type Plan struct {
	Files []PlannedFile
}

// NewPlan sorts entries into the stable plan order.
func NewPlan(files []PlannedFile) *Plan {
	sorted := make([]PlannedFile, len(files))
	copy(sorted, files)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Key.Less(sorted[j].Key)
	})
	return &Plan{Files: sorted}
}

// Counts tallies the plan.
func (p *Plan) Counts() PlanCounts {
	var c PlanCounts
	for _, f := range p.Files {
		switch f.Action {
		case ActionCreate:
			c.Create++
		case ActionUpdate:
			c.Update++
		case ActionSkip:
			c.Skip++
		case ActionDelete:
			c.Delete++
		case ActionConflict:
			c.Conflict++
		}
	}
	return c
}

// Conflicts returns the entries still awaiting a decision.
func (p *Plan) Conflicts() []PlannedFile {
	var out []PlannedFile
	for _, f := range p.Files {
		if f.IsConflict() {
			out = append(out, f)
		}
	}
	return out
}

// Resolved reports whether every entry is create, update, skip or delete.
func (p *Plan) Resolved() bool {
	return p.Counts().Conflict == 0
}

// IsNoop reports whether executing the plan would touch nothing.
func (p *Plan) IsNoop() bool {
	c := p.Counts()
	return c.Changes() == 0 && c.Conflict == 0
}
