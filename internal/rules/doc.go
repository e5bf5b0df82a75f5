// Package rules holds the icecream detectors.
//
// Each rule is a read-only pass over a cst.Tree that reports diag.Violations
// through a diag.Reporter. The set of rules is closed and registered in a
// static table keyed by code; Select resolves --select/--ignore against it.
//
// Matching is purely syntactic: a bare call named ic, and imports of the
// unqualified module icecream. Shadowed or aliased names are not tracked.
package rules
