package execution

import (
	"errors"
	"fmt"
)

// CreateError reports that an execution context could not be built because
// its configuration failed to load. Nothing is cached for the class.
type CreateError struct {
	Class string
	Err   error
}

func (e *CreateError) Error() string {
	return fmt.Sprintf("create execution context for %s: %v", e.Class, e.Err)
}

func (e *CreateError) Unwrap() error {
	return e.Err
}

// IsCreateError reports whether err wraps a CreateError.
func IsCreateError(err error) bool {
	var ce *CreateError
	return errors.As(err, &ce)
}
