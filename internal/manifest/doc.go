// Package manifest keeps a SQLite ledger of batch runs and per-scene stage
// outcomes, giving operators a structured record beyond the console summary.
package manifest
