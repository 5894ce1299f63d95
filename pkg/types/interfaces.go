package types

import (
	"io"
	"io/fs"
)

// FS is the filesystem calvin reads targets from and writes them to.
// Paths are absolute OS paths; keys are resolved through Roots first.
type FS interface {
	Stat(name string) (fs.FileInfo, error)
	// Lstat does not follow symlinks. Backends without links may Stat.
	Lstat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	ReadDir(name string) ([]fs.DirEntry, error)

	WriteFile(name string, data []byte, perm fs.FileMode) error
	// OpenFile is used for staged writes that must reach the disk before
	// they are renamed into place.
	OpenFile(name string, flag int, perm fs.FileMode) (File, error)
	Rename(oldpath, newpath string) error
	MkdirAll(path string, perm fs.FileMode) error
	Remove(name string) error
}

// File is the writable handle OpenFile returns.
type File interface {
	io.Writer
	io.Closer
	Sync() error
}
