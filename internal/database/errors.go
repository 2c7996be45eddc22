package database

import "errors"

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrSlotTaken is returned when a blocking booking already occupies the
	// requested space/date/hour window. Checked inside the insert transaction.
	ErrSlotTaken = errors.New("slot already taken")
	// ErrConcurrentModification is returned when a versioned update matched
	// no row, meaning someone changed the booking first.
	ErrConcurrentModification = errors.New("booking was modified concurrently")
)
