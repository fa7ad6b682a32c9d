package moderation

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file type")
	ErrImageNotFound     = errors.New("image not found")
	ErrEmptyBatch        = errors.New("batch contains no images")
)

// StepError is an unmodeled failure raised while a detector step ran. It
// aborts the run and is reported as pipeline_error.
type StepError struct {
	Agent string
	Err   error
}

func NewStepError(agent string, err error) error {
	return &StepError{Agent: agent, Err: err}
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Agent, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

func IsStepError(err error) bool {
	var stepErr *StepError
	return errors.As(err, &stepErr)
}

type notFoundError struct {
	ID uuid.UUID
}

func (e *notFoundError) Error() string {
	return fmt.Sprintf("report '%s' not found", e.ID)
}

func NewNotFoundError(id uuid.UUID) error {
	return &notFoundError{ID: id}
}

func IsNotFoundError(err error) bool {
	var nf *notFoundError
	return errors.As(err, &nf)
}
