// Package batch runs an operation over a list of items with best-effort
// semantics: a failing item is recorded and the remaining items still run.
//
// This package includes helpers for:
//   - Processing items sequentially and collecting one Result per item
//   - Marking an item as skipped rather than failed
//   - Summarizing results and formatting them as JSON
package batch
