package mem

import "errors"

var (
	// ErrInvalidAlignment indicates an alignment that is not a power of two.
	ErrInvalidAlignment = errors.New("mem: invalid alignment")

	// ErrAlignedSizeTooBig indicates the size overflows once rounded up to its alignment.
	ErrAlignedSizeTooBig = errors.New("mem: aligned size too big")

	// ErrUnsupportedAlignment indicates the allocator cannot honour the requested alignment.
	ErrUnsupportedAlignment = errors.New("mem: unsupported alignment")

	// ErrUnsupportedSize indicates the allocator does not support the requested size.
	ErrUnsupportedSize = errors.New("mem: unsupported size")

	// ErrNotEnoughMemory indicates the allocator ran out of memory.
	ErrNotEnoughMemory = errors.New("mem: not enough memory")

	// ErrOperationFailed indicates the operation could not be performed in the
	// allocator's current state (for example a single-shot allocator already in use).
	ErrOperationFailed = errors.New("mem: operation failed")

	// ErrUnsupportedOperation indicates the allocator does not implement the operation.
	ErrUnsupportedOperation = errors.New("mem: unsupported operation")

	// ErrNotImplemented indicates a code path that exists but has no implementation yet.
	ErrNotImplemented = errors.New("mem: not implemented")
)

// errorNames maps every allocation error to its short name, as used in scenario files
// and reports.
var errorNames = map[error]string{
	ErrInvalidAlignment:     "InvalidAlignment",
	ErrAlignedSizeTooBig:    "AlignedSizeTooBig",
	ErrUnsupportedAlignment: "UnsupportedAlignment",
	ErrUnsupportedSize:      "UnsupportedSize",
	ErrNotEnoughMemory:      "NotEnoughMemory",
	ErrOperationFailed:      "OperationFailed",
	ErrUnsupportedOperation: "UnsupportedOperation",
	ErrNotImplemented:       "NotImplemented",
}

// ErrorName returns the short name of the allocation error wrapped by err,
// "ok" for nil and "" when err is not part of the taxonomy.
func ErrorName(err error) string {
	if err == nil {
		return "ok"
	}
	for e, name := range errorNames {
		if errors.Is(err, e) {
			return name
		}
	}
	return ""
}

// ErrorByName is the inverse of ErrorName. "ok" and "" map to a nil error.
func ErrorByName(name string) (error, bool) {
	if name == "" || name == "ok" {
		return nil, true
	}
	for e, n := range errorNames {
		if n == name {
			return e, true
		}
	}
	return nil, false
}
