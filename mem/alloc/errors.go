package alloc

import "errors"

var (
	// ErrOverlap indicates the wrapped allocator returned a block overlapping a live one.
	ErrOverlap = errors.New("alloc: block overlaps a live block")

	// ErrUnknownBlock indicates a block was released or resized that the tracker never saw.
	ErrUnknownBlock = errors.New("alloc: unknown block")

	// ErrBlockMismatch indicates a block was released or resized with a size or
	// alignment different from the one it was allocated with.
	ErrBlockMismatch = errors.New("alloc: block size or alignment mismatch")

	// ErrLeak indicates a block was still live when the tracker was verified.
	ErrLeak = errors.New("alloc: block leaked")
)
