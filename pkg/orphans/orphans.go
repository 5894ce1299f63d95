// Package orphans finds previously deployed files that are no longer
// desired and decides how each may be retired.
//
// Two signals feed it. Ledger entries without a desired output are
// authoritative: calvin wrote them and knows what it wrote. Files that
// carry the provenance marker but are unknown to the ledger are only a
// heuristic and always come back as conflicts.
package orphans

import (
	"sort"

	"github.com/arthur-debert/calvin/pkg/lockfile"
	"github.com/arthur-debert/calvin/pkg/types"
)

// Find lists orphans in plan order. desired holds every key produced this
// run; marked holds the marker-bearing files found on disk.
func Find(ledger *lockfile.Lockfile, desired map[types.Key]struct{}, marked types.StateSet) []types.OrphanFile {
	var out []types.OrphanFile

	for _, k := range ledger.Keys() {
		if _, ok := desired[k]; ok {
			continue
		}
		out = append(out, types.OrphanFile{Key: k, Reason: types.OrphanTrackedUndesired})
	}

	for k := range marked {
		if _, ok := desired[k]; ok {
			continue
		}
		if _, tracked := ledger.Get(k); tracked {
			continue
		}
		out = append(out, types.OrphanFile{Key: k, Reason: types.OrphanSignatureUntracked})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Key.Less(out[j].Key) })
	return out
}

// Classify turns orphans into plan entries using the live state.
func Classify(orphans []types.OrphanFile, ledger *lockfile.Lockfile, live types.StateSet) []types.PlannedFile {
	out := make([]types.PlannedFile, 0, len(orphans))
	for i := range orphans {
		orphan := orphans[i]
		st := live.Get(orphan.Key)
		recorded, _ := ledger.Get(orphan.Key)

		entry := types.PlannedFile{
			Key:          orphan.Key,
			Orphan:       &orphan,
			Live:         st,
			LedgerDigest: recorded,
		}

		switch {
		case orphan.Reason == types.OrphanSignatureUntracked:
			entry.Action = types.ActionConflict
			entry.Reason = types.ConflictUntrackedManaged
			entry.Override = types.ActionDelete
		case !st.Exists():
			// Already gone; only the ledger entry needs retiring.
			entry.Action = types.ActionDelete
		case !st.IsFile():
			entry.Action = types.ActionConflict
			entry.Reason = types.ConflictTypeMismatch
		case st.Digest == recorded:
			entry.Action = types.ActionDelete
		default:
			entry.Action = types.ActionConflict
			entry.Reason = types.ConflictExternallyModified
			entry.Override = types.ActionDelete
		}
		out = append(out, entry)
	}
	return out
}
