package database

import "errors"

var (
	// ErrStorageUnavailable is returned when the record space cannot be opened or read.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrStorageWrite is returned when an insert cannot be committed.
	ErrStorageWrite = errors.New("storage write failed")
)
