// Package repository defines the persistence interfaces consumed by the
// workflow engine and their MongoDB implementations.
package repository

import "errors"

// ErrNotFound is returned when an id does not resolve to a stored document.
var ErrNotFound = errors.New("not found")

// ErrRevisionConflict is returned when an optimistic write loses a race: the
// stored revision no longer matches the one the caller read.
var ErrRevisionConflict = errors.New("revision conflict")
