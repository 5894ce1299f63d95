package types

import (
	"github.com/arthur-debert/calvin/pkg/internal/hashutil"
)

// DesiredOutput is a rendered artifact the engine must make exist on disk.
// It is immutable once built: Content already includes any provenance
// marker and Digest is computed over exactly those bytes.
type DesiredOutput struct {
	Key     Key
	Content []byte
	Digest  string
	// Source names the asset that produced this output, for reporting.
	Source string
}

// NewDesiredOutput computes the digest of content.
func NewDesiredOutput(key Key, content []byte, source string) DesiredOutput {
	buf := make([]byte, len(content))
	copy(buf, content)
	return DesiredOutput{
		Key:     key,
		Content: buf,
		Digest:  hashutil.Digest(buf),
		Source:  source,
	}
}
