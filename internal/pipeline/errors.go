package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyExists indicates a persist target is occupied and overwrite
	// was not requested. Match with errors.Is.
	ErrAlreadyExists = errors.New("already exists")

	// ErrMissingName indicates a loaded document has no
	// pipeline_setup.pipeline_name string.
	ErrMissingName = errors.New("document has no pipeline_setup.pipeline_name")
)

// ExistsError reports a persist collision with the location involved.
type ExistsError struct {
	Location string
}

func (e *ExistsError) Error() string {
	return fmt.Sprintf("file %s %s", e.Location, ErrAlreadyExists)
}

// Is makes errors.Is(err, ErrAlreadyExists) hold for ExistsError.
func (e *ExistsError) Is(target error) bool {
	return target == ErrAlreadyExists
}

// IsAlreadyExists returns true if err is a persist collision.
// Uses errors.Is to handle wrapped errors.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}
