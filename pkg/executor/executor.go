package executor

import (
	"context"
	"io/fs"
	"os"

	"github.com/arthur-debert/calvin/pkg/errors"
	"github.com/arthur-debert/calvin/pkg/events"
	"github.com/arthur-debert/calvin/pkg/filesystem"
	"github.com/arthur-debert/calvin/pkg/internal/hashutil"
	"github.com/arthur-debert/calvin/pkg/lockfile"
	"github.com/arthur-debert/calvin/pkg/logging"
	"github.com/arthur-debert/calvin/pkg/provenance"
	"github.com/arthur-debert/calvin/pkg/types"
	"github.com/rs/zerolog"
)

// FileMode is the permission for every file calvin writes.
const FileMode fs.FileMode = 0644

// Options contains configuration for the executor
type Options struct {
	FS    types.FS
	Roots types.Roots
	// LedgerPath is where the updated ledger is saved.
	LedgerPath string
	Events     events.Sink
	Logger     zerolog.Logger
}

// Executor applies plans.
type Executor struct {
	fs         types.FS
	roots      types.Roots
	ledgerPath string
	events     events.Sink
	logger     zerolog.Logger
}

// New creates a new executor instance
func New(opts Options) *Executor {
	logger := opts.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = logging.GetLogger("executor")
	}

	fsys := opts.FS
	if fsys == nil {
		fsys = filesystem.NewOS()
	}

	sink := opts.Events
	if sink == nil {
		sink = events.Discard
	}

	return &Executor{
		fs:         fsys,
		roots:      opts.Roots,
		ledgerPath: opts.LedgerPath,
		events:     sink,
		logger:     logger,
	}
}

// Execute applies plan starting from ledger, which is not modified. The
// returned ledger reflects every successful operation. A non-nil error is
// either a plan that was never resolved (nothing is touched) or a failed
// ledger save (files were touched but not recorded).
//
// Cancellation is checked between files only; a write in progress always
// completes.
func (e *Executor) Execute(ctx context.Context, plan *types.Plan, ledger *lockfile.Lockfile) (*types.DeployResult, *lockfile.Lockfile, error) {
	if conflicts := plan.Conflicts(); len(conflicts) > 0 {
		paths := make([]string, len(conflicts))
		for i, c := range conflicts {
			paths[i] = c.Key.String()
		}
		return nil, ledger, errors.New(errors.ErrInternal, "refusing to execute a plan with unresolved conflicts").
			WithDetail(errors.DetailPaths, paths)
	}

	working := ledger.Clone()
	result := &types.DeployResult{
		Counts: plan.Counts(),
		Plan:   plan,
	}

	for _, f := range plan.Files {
		if err := ctx.Err(); err != nil {
			e.logger.Warn().Err(err).Msg("execution interrupted between files")
			break
		}

		var err error
		switch f.Action {
		case types.ActionCreate, types.ActionUpdate:
			err = e.write(f, working)
			if err == nil {
				result.Written = append(result.Written, f.Key.String())
			}
		case types.ActionDelete:
			err = e.delete(f, working)
			if err == nil {
				result.Deleted = append(result.Deleted, f.Key.String())
			}
		case types.ActionSkip:
			e.skip(f, working)
			result.Skipped = append(result.Skipped, f.Key.String())
		}

		ev := events.Event{Kind: events.KindAction, Path: f.Key.String(), Action: f.Action}
		if err != nil {
			result.Errors = append(result.Errors, types.FileError{
				Key:     f.Key,
				Path:    f.Key.String(),
				Action:  f.Action,
				Err:     err,
				Message: err.Error(),
			})
			ev.Error = err.Error()
			e.logger.Error().Err(err).Str("path", f.Key.String()).Str("action", string(f.Action)).Msg("file operation failed")
		}
		if f.Action != types.ActionSkip || err != nil {
			e.events.Emit(ev)
		}
	}

	if working.Equal(ledger) {
		return result, working, nil
	}
	if err := working.Save(e.fs, e.ledgerPath); err != nil {
		return result, ledger, err
	}
	return result, working, nil
}

func (e *Executor) write(f types.PlannedFile, ledger *lockfile.Lockfile) error {
	if f.Output == nil {
		return errors.Newf(errors.ErrInternal, "%s has no content to write", f.Key)
	}

	out := provenance.Ensure(*f.Output)

	abs := e.roots.Abs(f.Key)
	if err := filesystem.WriteAtomic(e.fs, abs, out.Content, FileMode); err != nil {
		return errors.Wrapf(err, errors.ErrExecutionIO, "cannot write %s", abs).
			WithDetail(errors.DetailPath, f.Key.String())
	}
	ledger.Set(f.Key, out.Digest)

	e.logger.Debug().Str("path", f.Key.String()).Str("action", string(f.Action)).Msg("written")
	return nil
}

func (e *Executor) delete(f types.PlannedFile, ledger *lockfile.Lockfile) error {
	abs := e.roots.Abs(f.Key)

	if f.Live.Exists() {
		// The file must still be exactly what the plan saw.
		data, err := e.fs.ReadFile(abs)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return errors.Wrapf(err, errors.ErrExecutionIO, "cannot verify %s before removal", abs).
				WithDetail(errors.DetailPath, f.Key.String())
		case hashutil.Digest(data) != f.Live.Digest:
			return errors.Newf(errors.ErrExecutionIO, "%s changed after planning; not removed", abs).
				WithDetail(errors.DetailPath, f.Key.String())
		default:
			if err := e.fs.Remove(abs); err != nil && !os.IsNotExist(err) {
				return errors.Wrapf(err, errors.ErrExecutionIO, "cannot remove %s", abs).
					WithDetail(errors.DetailPath, f.Key.String())
			}
		}
	}
	ledger.Remove(f.Key)

	e.logger.Debug().Str("path", f.Key.String()).Msg("deleted")
	return nil
}

// skip does no I/O. When the live file already holds the desired bytes
// the ledger is brought up to date with it.
func (e *Executor) skip(f types.PlannedFile, ledger *lockfile.Lockfile) {
	if f.Output == nil || !f.Live.IsFile() || f.Live.Digest != f.Output.Digest {
		return
	}
	if recorded, ok := ledger.Get(f.Key); !ok || recorded != f.Output.Digest {
		ledger.Set(f.Key, f.Output.Digest)
		e.logger.Debug().Str("path", f.Key.String()).Msg("ledger caught up with identical file")
	}
}
