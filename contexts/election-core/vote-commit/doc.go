// Package votecommit implements the vote commit coordinator inside the
// election-core context.
//
// The module owns the full vote path: eligibility checks, the atomic local
// reservation, the two-phase external-ledger submission through a freshly
// funded single-use identity, and the confirm-or-rollback resolution. It also
// owns the candidate registry reads, displayed-tally arithmetic, and the
// reconciliation sweep that reports reservations stranded by a crash. It
// keeps business rules in application/domain layers and isolates
// infrastructure concerns behind ports and adapters.
package votecommit
