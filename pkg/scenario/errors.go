package scenario

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidScenario indicates a structurally invalid scenario file.
	ErrInvalidScenario = errors.New("scenario: invalid scenario")

	// ErrUnknownOp indicates a step with an unsupported operation.
	ErrUnknownOp = errors.New("scenario: unknown operation")

	// ErrUnknownAllocator indicates an unsupported allocator kind.
	ErrUnknownAllocator = errors.New("scenario: unknown allocator kind")

	// ErrUnknownEncoding indicates an unsupported text encoding.
	ErrUnknownEncoding = errors.New("scenario: unknown encoding")

	// ErrUnknownID indicates a step referring to a block or string that does not exist.
	ErrUnknownID = errors.New("scenario: unknown id")

	// ErrDuplicateID indicates an alloc step reusing the id of a live block or string.
	ErrDuplicateID = errors.New("scenario: id already in use")

	// ErrInvalidResize indicates a grow that does not enlarge its block or a
	// shrink that does not reduce it.
	ErrInvalidResize = errors.New("scenario: invalid resize")

	// ErrOutOfRange indicates an expect step reading past the end of a block.
	ErrOutOfRange = errors.New("scenario: offset out of range")

	// ErrMismatch indicates a step whose outcome or checked content differs
	// from what the scenario expects.
	ErrMismatch = errors.New("scenario: expectation mismatch")

	// ErrPanic indicates a step that panicked without expecting to.
	ErrPanic = errors.New("scenario: step panicked")
)

// StepError reports a failed step.
type StepError struct {
	Index int
	Op    string
	ID    string
	Err   error
}

// Error implements the error interface.
func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s %s): %v", e.Index, e.Op, e.ID, e.Err)
}

// Unwrap returns the underlying error.
func (e *StepError) Unwrap() error { return e.Err }
