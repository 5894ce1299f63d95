package types

// OrphanReason tells which signal flagged an orphan.
type OrphanReason string

const (
	// OrphanTrackedUndesired is a ledger entry with no desired output.
	OrphanTrackedUndesired OrphanReason = "tracked_but_undesired"
	// OrphanSignatureUntracked is a file carrying the provenance marker
	// that neither the ledger nor the desired set knows about.
	OrphanSignatureUntracked OrphanReason = "signature_but_untracked"
)

// OrphanFile is a previously deployed path no longer desired.
type OrphanFile struct {
	Key    Key
	Reason OrphanReason
}
