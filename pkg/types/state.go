package types

// FileKind describes what occupies a destination path.
type FileKind int

const (
	KindMissing FileKind = iota
	KindRegular
	KindDirectory
	// KindOther covers symlinks, sockets and devices.
	KindOther
)

func (k FileKind) String() string {
	switch k {
	case KindMissing:
		return "missing"
	case KindRegular:
		return "file"
	case KindDirectory:
		return "directory"
	default:
		return "other"
	}
}

// TargetFileState is a snapshot of one destination read during a pass.
// Digest and CarriesMarker are only meaningful for KindRegular.
type TargetFileState struct {
	Kind          FileKind
	Digest        string
	CarriesMarker bool
}

// Exists reports whether anything occupies the path.
func (s TargetFileState) Exists() bool {
	return s.Kind != KindMissing
}

// IsFile reports whether the path holds a regular file.
func (s TargetFileState) IsFile() bool {
	return s.Kind == KindRegular
}

// StateSet holds the snapshots for every path a plan looks at.
type StateSet map[Key]TargetFileState

// Get returns the snapshot for k, or a missing state when k was not read.
func (s StateSet) Get(k Key) TargetFileState {
	if st, ok := s[k]; ok {
		return st
	}
	return TargetFileState{Kind: KindMissing}
}
