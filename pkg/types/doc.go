// Package types holds the values shared by the sync engine's components:
// desired outputs, ledger keys, live file snapshots, plans and results.
//
// Nothing in here performs I/O except through the FS interface, which is
// implemented by pkg/filesystem.
package types
