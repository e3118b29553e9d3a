package keymanager

import "errors"

var (
	// ErrSeedNotFound is returned when an operation needs the seed phrase but
	// none has been generated or imported yet.
	ErrSeedNotFound = errors.New("seed phrase not found")
)
