// Package targetstate reads what currently sits at destination paths.
//
// Reads are pure queries, so Read fans them out over a bounded errgroup;
// nothing here writes.
package targetstate

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/arthur-debert/calvin/pkg/errors"
	"github.com/arthur-debert/calvin/pkg/filesystem"
	"github.com/arthur-debert/calvin/pkg/internal/hashutil"
	"github.com/arthur-debert/calvin/pkg/logging"
	"github.com/arthur-debert/calvin/pkg/provenance"
	"github.com/arthur-debert/calvin/pkg/types"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds parallel reads when none is configured.
const DefaultConcurrency = 8

// ScanRoot is a directory, relative to a scope root, that calvin may have
// written managed files into.
type ScanRoot struct {
	Scope types.Scope
	Dir   string
}

// Reader snapshots destination paths.
type Reader struct {
	fs          types.FS
	roots       types.Roots
	concurrency int
	logger      zerolog.Logger
}

// NewReader creates a Reader. concurrency <= 0 selects DefaultConcurrency.
func NewReader(fsys types.FS, roots types.Roots, concurrency int) *Reader {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Reader{
		fs:          fsys,
		roots:       roots,
		concurrency: concurrency,
		logger:      logging.GetLogger("targetstate"),
	}
}

// Read snapshots every key. Any error other than "does not exist" aborts
// the whole read: a path whose state is unknown cannot be planned safely.
func (r *Reader) Read(ctx context.Context, keys []types.Key) (types.StateSet, error) {
	states := make(types.StateSet, len(keys))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for _, key := range keys {
		key := key
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			st, err := r.readOne(key)
			if err != nil {
				return err
			}
			mu.Lock()
			states[key] = st
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	r.logger.Debug().Int("paths", len(states)).Msg("target state read")
	return states, nil
}

// ReadOne snapshots a single key.
func (r *Reader) ReadOne(key types.Key) (types.TargetFileState, error) {
	return r.readOne(key)
}

func (r *Reader) readOne(key types.Key) (types.TargetFileState, error) {
	abs := r.roots.Abs(key)

	info, err := r.fs.Stat(abs)
	if err != nil {
		if !os.IsNotExist(err) {
			return types.TargetFileState{}, stateError(err, key)
		}
		// Stat follows links; a dangling link still occupies the path.
		if _, lerr := r.fs.Lstat(abs); lerr == nil {
			return types.TargetFileState{Kind: types.KindOther}, nil
		}
		return types.TargetFileState{Kind: types.KindMissing}, nil
	}

	switch {
	case info.IsDir():
		return types.TargetFileState{Kind: types.KindDirectory}, nil
	case !info.Mode().IsRegular():
		return types.TargetFileState{Kind: types.KindOther}, nil
	}

	data, err := r.fs.ReadFile(abs)
	if err != nil {
		return types.TargetFileState{}, stateError(err, key)
	}
	return types.TargetFileState{
		Kind:          types.KindRegular,
		Digest:        hashutil.Digest(data),
		CarriesMarker: provenance.Detect(data),
	}, nil
}

func stateError(err error, key types.Key) error {
	return errors.Wrapf(err, errors.ErrTargetState, "cannot read %s", key).
		WithDetail(errors.DetailPath, key.String())
}

// ScanMarked walks each scan root and returns the regular files carrying
// the provenance marker, together with their snapshots. Missing roots are
// fine; unreadable entries are logged and skipped since this signal is
// best effort.
func (r *Reader) ScanMarked(ctx context.Context, scanRoots []ScanRoot) (types.StateSet, error) {
	found := make(types.StateSet)

	for _, sr := range scanRoots {
		dir := filepath.Join(r.roots.Dir(sr.Scope), filepath.FromSlash(sr.Dir))
		if err := r.walk(ctx, sr.Scope, dir, found); err != nil {
			return nil, err
		}
	}

	r.logger.Debug().Int("marked", len(found)).Msg("marker scan complete")
	return found, nil
}

func (r *Reader) walk(ctx context.Context, scope types.Scope, dir string, found types.StateSet) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entries, err := r.fs.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			r.logger.Warn().Err(err).Str("dir", dir).Msg("cannot scan directory for managed files")
		}
		return nil
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		abs := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			if err := r.walk(ctx, scope, abs, found); err != nil {
				return err
			}
			continue
		}
		if !entry.Type().IsRegular() || isStagingFile(entry) {
			continue
		}

		key, err := r.roots.Rel(scope, abs)
		if err != nil {
			continue
		}
		st, err := r.readOne(key)
		if err != nil {
			r.logger.Warn().Err(err).Str("path", abs).Msg("cannot read candidate orphan")
			continue
		}
		if st.CarriesMarker {
			found[key] = st
		}
	}
	return nil
}

func isStagingFile(entry fs.DirEntry) bool {
	return strings.HasSuffix(entry.Name(), filesystem.TempSuffix)
}
