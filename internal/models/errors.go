package models

import "errors"

// ValidationError reports rejected input: out-of-range rating, blank
// required field.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// NotFoundError reports a missing referenced entity.
type NotFoundError struct {
	Reason string
}

func (e *NotFoundError) Error() string { return e.Reason }

var (
	ErrRatingOutOfRange = &ValidationError{Reason: "rating out of range"}
	ErrContentRequired  = &ValidationError{Reason: "content required"}
	ErrAuthorRequired   = &ValidationError{Reason: "author required"}
	ErrEventNotFound    = &NotFoundError{Reason: "event not found"}
)

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsNotFound(err error) bool {
	var nfe *NotFoundError
	return errors.As(err, &nfe)
}
