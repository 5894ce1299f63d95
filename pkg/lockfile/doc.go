// Package lockfile is calvin's provenance ledger: for every destination
// calvin has written, the digest of the bytes it wrote there.
//
// The ledger is loaded once per run, mutated in memory by the executor and
// saved once at the end. Saving stages the new content in a temporary
// sibling and renames it over the old file, so an interrupted save leaves
// the previous ledger intact.
//
// On disk the ledger is TOML:
//
//	version = 1
//
//	[files.'project:.claude/commands/review.md']
//	hash = 'sha256:...'
//
// A version other than FormatVersion is a hard error; the ledger is never
// migrated implicitly.
package lockfile
