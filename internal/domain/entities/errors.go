package entities

import "errors"

// Domain errors
var (
	// Focus data errors
	ErrDegenerateInput = errors.New("degenerate focus batch: total duration is zero")
	ErrNoFocusData     = errors.New("no focus data available")

	// Lookup errors
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrEnrollmentNotFound = errors.New("enrollment not found")
	ErrStudentNotFound    = errors.New("student not found")

	// Job errors
	ErrPairClaimed = errors.New("pair is already being processed")
)
