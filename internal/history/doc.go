// Package history records conversion runs and per-archive outcomes in a
// SQLite ledger (modernc.org/sqlite, no cgo).
//
// The ledger is write-only from the walker's point of view: it is never
// consulted to skip, retry, or resume archives. The `history` command reads
// it back for display.
package history
