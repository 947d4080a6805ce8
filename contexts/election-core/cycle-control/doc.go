// Package cyclecontrol implements the election-cycle lifecycle manager
// inside the election-core context.
//
// The module owns the current-cycle pointer, per-cycle control flags
// (pause/resume/deadline), and the rollover operation that snapshots the
// external ledger's raw tallies into a per-cycle offset vector before
// advancing the pointer. It only ever uses the external ledger's read path.
package cyclecontrol
