//go:build !unix

package alloc

import (
	"unsafe"

	"github.com/joshuapare/halfbit/mem"
)

// Mmap is unavailable on this platform; every allocation fails with
// mem.ErrUnsupportedOperation.
type Mmap struct {
	mem.Base
}

// NewMmap creates an Mmap allocator.
func NewMmap() *Mmap { return &Mmap{} }

// Alloc fails with mem.ErrUnsupportedOperation.
func (*Mmap) Alloc(uintptr, mem.Align) (unsafe.Pointer, error) {
	return nil, mem.ErrUnsupportedOperation
}

// Name returns "mmap-allocator".
func (*Mmap) Name() string { return "mmap-allocator" }

// Mappings returns 0.
func (*Mmap) Mappings() int { return 0 }

// PageSize returns 0.
func (*Mmap) PageSize() uintptr { return 0 }

// Close does nothing.
func (*Mmap) Close() error { return nil }

var _ mem.Allocator = (*Mmap)(nil)
