// Package testutil provides shared helpers for calvin's tests: an
// in-memory filesystem and shortcuts for seeding and inspecting it.
package testutil
