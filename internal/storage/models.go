package storage

import "errors"

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// UpdateFunc receives the current body of a document and returns the body to
// write back. Returning an error aborts the update and nothing is written.
type UpdateFunc func(body []byte) ([]byte, error)
