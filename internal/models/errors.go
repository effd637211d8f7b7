package models

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by stores when a record does not exist
	ErrNotFound = errors.New("record not found")
	// ErrSourceUnavailable marks a timeout, connection failure or non-success response from an external feed
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrMalformedRecord marks a single external item that is missing a required field or fails conversion
	ErrMalformedRecord = errors.New("malformed record")
	// ErrInvalidTemplate marks a recurring template with an unrecognized kind, frequency or category
	ErrInvalidTemplate = errors.New("invalid template state")
	// ErrConflict is returned when a guarded update lost a race with another writer
	ErrConflict = errors.New("concurrent update")
	// ErrPrecondition marks a computation rejected because of caller-supplied input
	ErrPrecondition = errors.New("precondition violation")
)

func malformedEntry(err error) error {
	return fmt.Errorf("%w: %v", ErrMalformedRecord, err)
}
