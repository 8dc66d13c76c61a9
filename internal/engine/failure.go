package engine

import (
	"context"
	"errors"
	"fmt"

	"media-convert/internal/ffmpeg"
	"media-convert/internal/primary"
)

// FailureClass is the tagged failure reason the fallback dispatcher decides
// on. One decision table lives in fallbackAllowed instead of backend-specific
// type checks scattered through the orchestrator.
type FailureClass int

const (
	// FailureSourceUnreadable means no backend can parse the input.
	FailureSourceUnreadable FailureClass = iota
	// FailureFormatUnsupported means the backend understood the input but
	// cannot produce the requested output.
	FailureFormatUnsupported
	// FailureValidation means a user-supplied parameter is invalid; caught
	// before any backend is invoked.
	FailureValidation
	// FailureCancelled is a clean abort, not an error.
	FailureCancelled
	// FailureToolUnavailable means the external binary was needed but not
	// found.
	FailureToolUnavailable
	// FailureExecution means a backend ran and failed, or reported success
	// without producing an output file.
	FailureExecution
)

func (c FailureClass) String() string {
	switch c {
	case FailureSourceUnreadable:
		return "source-unreadable"
	case FailureFormatUnsupported:
		return "format-unsupported"
	case FailureValidation:
		return "validation"
	case FailureCancelled:
		return "cancelled"
	case FailureToolUnavailable:
		return "tool-unavailable"
	case FailureExecution:
		return "execution-failure"
	default:
		return fmt.Sprintf("failure(%d)", int(c))
	}
}

// Failure is the single error surface a finished job exposes: one class, one
// wrapped error, and an optional debug string (captured tool output) not
// meant for end users.
type Failure struct {
	Class FailureClass
	Err   error
	Debug string
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %v", f.Class, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// errSourceUnreadable tags analyzer hard errors for classification.
var errSourceUnreadable = errors.New("source unreadable")

// errValidation tags pre-spawn parameter errors for classification.
var errValidation = errors.New("invalid conversion settings")

// classify maps an error from any phase to its failure class.
func classify(err error) FailureClass {
	switch {
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		return FailureCancelled
	case errors.Is(err, errValidation):
		return FailureValidation
	case errors.Is(err, errSourceUnreadable):
		return FailureSourceUnreadable
	case errors.Is(err, primary.ErrUnsupported):
		return FailureFormatUnsupported
	case errors.Is(err, ffmpeg.ErrToolNotFound):
		return FailureToolUnavailable
	default:
		return FailureExecution
	}
}

// fallbackAllowed is the decision table for the primary-to-external
// transition. Only a format-unsupported verdict from the primary backend
// permits trying the external tool.
func fallbackAllowed(c FailureClass) bool {
	return c == FailureFormatUnsupported
}

// newFailure builds the job's terminal failure, extracting captured tool
// output into the debug string.
func newFailure(err error) *Failure {
	f := &Failure{Class: classify(err), Err: err}
	var execErr *ffmpeg.ExecError
	if errors.As(err, &execErr) {
		f.Debug = execErr.Output
	}
	return f
}
