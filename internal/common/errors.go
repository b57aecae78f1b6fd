package common

import "errors"

var (
	// repository specific errors
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")

	// service specific errors
	ErrValidation         = errors.New("validation error")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")
)

// ValidationError carries a message that is safe to show the user.
// errors.Is(err, ErrValidation) is true for any ValidationError.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NewValidationError returns a ValidationError with msg.
func NewValidationError(msg string) error {
	return &ValidationError{Message: msg}
}
