package errors

import "errors"

var (
	ErrInvalidDeadline  = errors.New("deadline must be a future timestamp")
	ErrRolloverConflict = errors.New("cycle pointer changed during rollover")
	ErrSnapshotExists   = errors.New("offset snapshot already recorded for cycle")
)
