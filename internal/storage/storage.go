package storage

import "errors"

// ErrNotFound is returned when a trip or expense does not exist.
var ErrNotFound = errors.New("not found")
