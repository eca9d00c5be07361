package storage

import (
	"errors"
	"fmt"
)

// ErrUnavailable tags failures of a storage backend: the server could not be
// reached or an operation failed. Callers match it with errors.Is.
var ErrUnavailable = errors.New("store unavailable")

// ErrSongNotFound is returned by GetSong for an id with no record.
var ErrSongNotFound = errors.New("song not found")

// storeErr wraps a backend failure so the chain matches both ErrUnavailable
// and the driver's own error.
func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(ErrUnavailable, err))
}
