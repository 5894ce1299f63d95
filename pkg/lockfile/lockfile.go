package lockfile

import (
	"fmt"
	"os"
	"sort"

	"github.com/arthur-debert/calvin/pkg/errors"
	"github.com/arthur-debert/calvin/pkg/filesystem"
	"github.com/arthur-debert/calvin/pkg/internal/hashutil"
	"github.com/arthur-debert/calvin/pkg/logging"
	"github.com/arthur-debert/calvin/pkg/types"
	"github.com/pelletier/go-toml/v2"
)

// FormatVersion is the only on-disk version this build reads or writes.
const FormatVersion = 1

// DefaultName is the lockfile's file name inside the project root.
const DefaultName = "calvin.lock"

const (
	remediationMigrate = "calvin migrate"
	remediationRepair  = "fix or remove %s, then run calvin deploy"
)

type fileFormat struct {
	Version int                    `toml:"version"`
	Files   map[string]entryFormat `toml:"files"`
}

type entryFormat struct {
	Hash string `toml:"hash"`
}

type versionHeader struct {
	Version int `toml:"version"`
}

// Lockfile maps deployment keys to the digest calvin last wrote there.
type Lockfile struct {
	entries map[types.Key]string
}

// New returns an empty ledger.
func New() *Lockfile {
	return &Lockfile{entries: make(map[types.Key]string)}
}

// Load reads the ledger at path. A missing file yields an empty ledger.
// Unparseable content fails with ErrLedgerCorrupted and a version other
// than FormatVersion with ErrLedgerVersionMismatch.
func Load(fsys types.FS, path string) (*Lockfile, error) {
	logger := logging.GetLogger("lockfile")

	data, err := fsys.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug().Str("path", path).Msg("no lockfile, starting with an empty ledger")
			return New(), nil
		}
		return nil, errors.Wrapf(err, errors.ErrLedgerCorrupted, "cannot read lockfile %s", path).
			WithDetail(errors.DetailPath, path)
	}

	return Parse(data, path)
}

// Parse decodes lockfile bytes. name is used in error messages only.
func Parse(data []byte, name string) (*Lockfile, error) {
	var header versionHeader
	if err := toml.Unmarshal(data, &header); err != nil {
		return nil, corrupted(err, name, "lockfile is not valid TOML")
	}
	if header.Version != FormatVersion {
		return nil, errors.Newf(errors.ErrLedgerVersionMismatch,
			"lockfile %s has format version %d, expected %d", name, header.Version, FormatVersion).
			WithDetail(errors.DetailPath, name).
			WithDetail("found", header.Version).
			WithDetail("expected", FormatVersion).
			WithRemediation(remediationMigrate)
	}

	var raw fileFormat
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, corrupted(err, name, "lockfile entries are malformed")
	}

	lf := New()
	for keyStr, entry := range raw.Files {
		key, err := types.ParseKey(keyStr)
		if err != nil {
			return nil, corrupted(err, name, "lockfile has an invalid key")
		}
		if !hashutil.Valid(entry.Hash) {
			return nil, corrupted(fmt.Errorf("entry %q has hash %q", keyStr, entry.Hash), name, "lockfile has an invalid hash")
		}
		lf.entries[key] = entry.Hash
	}
	return lf, nil
}

func corrupted(err error, name, msg string) error {
	return errors.Wrapf(err, errors.ErrLedgerCorrupted, "%s (%s)", msg, name).
		WithDetail(errors.DetailPath, name).
		WithRemediation(fmt.Sprintf(remediationRepair, name))
}

// Get returns the digest recorded for key.
func (l *Lockfile) Get(key types.Key) (string, bool) {
	d, ok := l.entries[key]
	return d, ok
}

// Set records digest for key.
func (l *Lockfile) Set(key types.Key, digest string) {
	l.entries[key] = digest
}

// Remove forgets key. Removing an unknown key is a no-op.
func (l *Lockfile) Remove(key types.Key) {
	delete(l.entries, key)
}

// Len is the number of tracked paths.
func (l *Lockfile) Len() int {
	return len(l.entries)
}

// Keys returns every tracked key in plan order.
func (l *Lockfile) Keys() []types.Key {
	keys := make([]types.Key, 0, len(l.entries))
	for k := range l.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}

// Clone returns an independent copy.
func (l *Lockfile) Clone() *Lockfile {
	out := New()
	for k, v := range l.entries {
		out.entries[k] = v
	}
	return out
}

// Equal reports whether both ledgers hold the same entries.
func (l *Lockfile) Equal(other *Lockfile) bool {
	if len(l.entries) != len(other.entries) {
		return false
	}
	for k, v := range l.entries {
		if ov, ok := other.entries[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// Marshal renders the ledger in its on-disk form.
func (l *Lockfile) Marshal() ([]byte, error) {
	raw := fileFormat{
		Version: FormatVersion,
		Files:   make(map[string]entryFormat, len(l.entries)),
	}
	for k, v := range l.entries {
		raw.Files[k.String()] = entryFormat{Hash: v}
	}
	return toml.Marshal(raw)
}

// Save writes the ledger to path atomically.
func (l *Lockfile) Save(fsys types.FS, path string) error {
	data, err := l.Marshal()
	if err != nil {
		return errors.Wrap(err, errors.ErrLedgerWrite, "cannot encode lockfile")
	}
	if err := filesystem.WriteAtomic(fsys, path, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrLedgerWrite, "cannot write lockfile %s", path).
			WithDetail(errors.DetailPath, path)
	}

	logger := logging.GetLogger("lockfile")
	logger.Debug().Str("path", path).Int("entries", len(l.entries)).Msg("lockfile saved")
	return nil
}
