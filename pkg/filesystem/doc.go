// Package filesystem provides filesystem implementations for calvin.
//
// This package contains implementations of the types.FS interface,
// including the standard OS filesystem and test filesystems, and the
// write-to-temp-then-rename helper every managed write goes through.
package filesystem
