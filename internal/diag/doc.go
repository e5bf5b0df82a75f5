// Package diag defines the violation model shared by rules, the driver and
// the output layer.
//
// # Data model
//
// Violation is the central record:
//
//   - Line, Column – 1-based position of the matched construct; the column
//     counts code points, not bytes.
//   - Code – closed enum (IC001, IC002, IC003) with a stable string form.
//   - Message – short actionable text, the code's Title by default.
//   - Primary – byte span of the matched node, used for source excerpts.
//
// Codes can only be obtained from the constants or ParseCode, so an unknown
// code never reaches a report.
//
// # Emitting violations
//
// Rules emit through a Reporter and never touch storage directly.
// BagReporter aggregates into a Bag, which supports sorting by
// (line, column, code), deduplication and code filtering. FilterReporter
// drops codes outside the active selection before they reach the bag.
//
// # Scope
//
// Package diag performs no formatting beyond Violation.Format and no IO.
// Rendering lives in internal/diagfmt, orchestration in internal/driver.
package diag
