package filesystem

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/arthur-debert/calvin/pkg/types"
)

// TempSuffix is appended to the hidden sibling a write is staged in.
const TempSuffix = ".calvin-tmp"

// TempPath returns where WriteAtomic stages the bytes for path.
func TempPath(path string) string {
	return filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+TempSuffix)
}

// dirSyncer is implemented by backends that can flush a directory entry.
type dirSyncer interface {
	SyncDir(dir string) error
}

// WriteAtomic writes data to a temporary sibling of path, syncs it and
// renames it into place. Readers see either the old bytes or the new ones.
func WriteAtomic(fsys types.FS, path string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(path)
	if err := fsys.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create parent directory: %w", err)
	}

	tmp := TempPath(path)
	if err := writeSynced(fsys, tmp, data, perm); err != nil {
		_ = fsys.Remove(tmp)
		return fmt.Errorf("write temporary file: %w", err)
	}

	if err := fsys.Rename(tmp, path); err != nil {
		_ = fsys.Remove(tmp)
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}

	// Best effort: the rename already succeeded.
	if ds, ok := fsys.(dirSyncer); ok {
		_ = ds.SyncDir(dir)
	}
	return nil
}

func writeSynced(fsys types.FS, name string, data []byte, perm fs.FileMode) error {
	f, err := fsys.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
