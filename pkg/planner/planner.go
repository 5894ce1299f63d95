// Package planner diffs desired outputs against the ledger and the live
// filesystem. It never touches the disk: every input is a value, so the
// same inputs always produce the same plan.
package planner

import (
	"sort"

	"github.com/arthur-debert/calvin/pkg/errors"
	"github.com/arthur-debert/calvin/pkg/lockfile"
	"github.com/arthur-debert/calvin/pkg/orphans"
	"github.com/arthur-debert/calvin/pkg/types"
)

// Input is everything one planning pass looks at.
type Input struct {
	Desired []types.DesiredOutput
	Ledger  *lockfile.Lockfile
	// Live holds the state of every desired and ledger-tracked path.
	Live types.StateSet
	// Marked holds marker-bearing files found under adapter scan roots.
	Marked types.StateSet
}

// Keys lists the paths whose live state the planner needs, in plan order.
func Keys(desired []types.DesiredOutput, ledger *lockfile.Lockfile) []types.Key {
	seen := make(map[types.Key]struct{}, len(desired)+ledger.Len())
	var out []types.Key
	add := func(k types.Key) {
		if _, ok := seen[k]; ok {
			return
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	for _, d := range desired {
		add(d.Key)
	}
	for _, k := range ledger.Keys() {
		add(k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// Plan builds the sync plan. Two outputs for the same destination is a
// planning error and no plan is returned.
func Plan(in Input) (*types.Plan, error) {
	ledger := in.Ledger
	if ledger == nil {
		ledger = lockfile.New()
	}

	if err := checkContained(in.Desired); err != nil {
		return nil, err
	}

	desired := make(map[types.Key]struct{}, len(in.Desired))
	sources := make(map[types.Key][]string)
	var dups []string
	for _, d := range in.Desired {
		if _, ok := desired[d.Key]; ok {
			if len(sources[d.Key]) == 1 {
				dups = append(dups, d.Key.String())
			}
		}
		desired[d.Key] = struct{}{}
		sources[d.Key] = append(sources[d.Key], d.Source)
	}
	if len(dups) > 0 {
		sort.Strings(dups)
		return nil, errors.Newf(errors.ErrDuplicateDestination,
			"%d destination(s) produced by more than one asset", len(dups)).
			WithDetail(errors.DetailPaths, dups).
			WithDetail("sources", sources)
	}

	live := make(types.StateSet, len(in.Live)+len(in.Marked))
	for k, st := range in.Marked {
		live[k] = st
	}
	for k, st := range in.Live {
		live[k] = st
	}

	files := make([]types.PlannedFile, 0, len(in.Desired)+ledger.Len())
	for i := range in.Desired {
		files = append(files, classify(&in.Desired[i], ledger, live))
	}

	found := orphans.Find(ledger, desired, in.Marked)
	files = append(files, orphans.Classify(found, ledger, live)...)

	return types.NewPlan(files), nil
}

// checkContained rejects outputs whose destination leaves its scope root.
func checkContained(desired []types.DesiredOutput) error {
	var bad []string
	for _, d := range desired {
		if d.Key.Contained() != nil {
			bad = append(bad, d.Key.String())
		}
	}
	if len(bad) == 0 {
		return nil
	}
	sort.Strings(bad)
	return errors.Newf(errors.ErrAssetRender,
		"%d destination(s) outside their scope root", len(bad)).
		WithDetail(errors.DetailPaths, bad)
}

func classify(out *types.DesiredOutput, ledger *lockfile.Lockfile, live types.StateSet) types.PlannedFile {
	st := live.Get(out.Key)
	recorded, tracked := ledger.Get(out.Key)

	entry := types.PlannedFile{
		Key:          out.Key,
		Output:       out,
		Live:         st,
		LedgerDigest: recorded,
	}

	switch {
	case st.Exists() && !st.IsFile():
		entry.Action = types.ActionConflict
		entry.Reason = types.ConflictTypeMismatch
	case !st.Exists() && tracked:
		entry.Action = types.ActionConflict
		entry.Reason = types.ConflictDeletedExternally
		entry.Override = types.ActionCreate
	case !st.Exists():
		entry.Action = types.ActionCreate
	case st.Digest == out.Digest:
		// Identical bytes are never a change, whatever the ledger says.
		entry.Action = types.ActionSkip
	case tracked && st.Digest == recorded:
		entry.Action = types.ActionUpdate
	default:
		entry.Action = types.ActionConflict
		entry.Reason = types.ConflictExternallyModified
		entry.Override = types.ActionUpdate
	}
	return entry
}
