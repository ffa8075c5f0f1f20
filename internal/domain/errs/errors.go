package errs

import (
	"errors"
	"fmt"
)

// Kind classifies stage failures.
type Kind string

const (
	KindInputSchema Kind = "input_schema"
	KindEmptyInput  Kind = "empty_input"
	KindNoVariance  Kind = "no_variance"
	KindComputation Kind = "computation"
)

// StageError is the failure type every pipeline stage returns. Stages never
// panic across their boundary; unexpected failures are wrapped as
// KindComputation.
type StageError struct {
	Kind  Kind
	Stage string
	Msg   string
	Err   error
}

func (e *StageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Stage, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Stage, e.Msg)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// New builds a StageError with a formatted message.
func New(kind Kind, stage, format string, args ...interface{}) *StageError {
	return &StageError{Kind: kind, Stage: stage, Msg: fmt.Sprintf(format, args...)}
}

// Wrap builds a StageError around an underlying error.
func Wrap(kind Kind, stage string, err error, msg string) *StageError {
	return &StageError{Kind: kind, Stage: stage, Msg: msg, Err: err}
}

// IsKind reports whether err is a StageError of the given kind.
func IsKind(err error, kind Kind) bool {
	var se *StageError
	return errors.As(err, &se) && se.Kind == kind
}
