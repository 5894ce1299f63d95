// Package executor applies a resolved sync plan to the filesystem.
//
// It is the only package that writes or removes destination files. Work
// happens in plan order on a private copy of the ledger; per-file failures
// are collected while the rest of the plan proceeds, and the ledger is
// persisted once at the end reflecting only what actually succeeded.
package executor
