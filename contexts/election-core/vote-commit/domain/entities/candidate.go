package entities

import "time"

// Candidate is a ballot entry. The id is stable across cycles and doubles as
// the external-ledger candidate id, so rows are soft-deleted via Active and
// never removed.
type Candidate struct {
	ID           int64
	Name         string
	Position     string
	ImageRef     string
	ManifestoRef string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
