//go:build unix

package alloc

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sys/unix"

	"github.com/joshuapare/halfbit/internal/num"
	"github.com/joshuapare/halfbit/mem"
)

// Mmap allocates every block from its own anonymous private mapping. Blocks
// are page aligned, so any alignment up to the page size is honoured.
//
// munmap only releases whole mappings, so Mmap remembers the mapping behind
// each block: Free unmaps it, Shrink keeps it, and Grow reuses it while the
// new size still fits its pages.
type Mmap struct {
	pageSize uintptr
	maps     map[uintptr][]byte
}

// NewMmap creates an Mmap allocator.
func NewMmap() *Mmap {
	return &Mmap{
		pageSize: uintptr(unix.Getpagesize()),
		maps:     make(map[uintptr][]byte),
	}
}

func (m *Mmap) mapping(ptr unsafe.Pointer) []byte {
	data, ok := m.maps[uintptr(ptr)]
	if !ok {
		panic("alloc: mapping not allocated here")
	}
	return data
}

// Alloc maps enough pages to hold size bytes.
func (m *Mmap) Alloc(size uintptr, align mem.Align) (unsafe.Pointer, error) {
	if size == 0 {
		return nil, mem.ErrUnsupportedSize
	}
	if align.Get() > m.pageSize {
		return nil, mem.ErrUnsupportedAlignment
	}
	length, ok := num.AddChecked(size, m.pageSize-1)
	if !ok {
		return nil, mem.ErrNotEnoughMemory
	}
	length &^= m.pageSize - 1
	if length > num.MaxCount(1) {
		return nil, mem.ErrNotEnoughMemory
	}
	data, err := unix.Mmap(-1, 0, int(length), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		if errors.Is(err, unix.ENOMEM) {
			return nil, mem.ErrNotEnoughMemory
		}
		return nil, mem.ErrOperationFailed
	}
	p := unsafe.Pointer(unsafe.SliceData(data))
	m.maps[uintptr(p)] = data
	return p, nil
}

// Free unmaps the block's mapping.
func (m *Mmap) Free(ptr unsafe.Pointer, _ uintptr, _ mem.Align) {
	data := m.mapping(ptr)
	delete(m.maps, uintptr(ptr))
	if err := unix.Munmap(data); err != nil {
		panic(fmt.Sprintf("alloc: munmap: %v", err))
	}
}

// Grow keeps the mapping when newSize still fits its pages and otherwise
// moves the content to a fresh mapping.
func (m *Mmap) Grow(ptr unsafe.Pointer, size, newSize uintptr, align mem.Align) (unsafe.Pointer, error) {
	mustGrow(size, newSize)
	data := m.mapping(ptr)
	if newSize <= uintptr(len(data)) {
		return ptr, nil
	}
	p, err := m.Alloc(newSize, align)
	if err != nil {
		return nil, err
	}
	copy(unsafe.Slice((*byte)(p), size), data[:size])
	m.Free(ptr, size, align)
	return p, nil
}

// Shrink keeps the mapping.
func (m *Mmap) Shrink(ptr unsafe.Pointer, size, newSize uintptr, _ mem.Align) (unsafe.Pointer, error) {
	mustShrink(size, newSize)
	m.mapping(ptr)
	return ptr, nil
}

// SupportsContains reports false.
func (*Mmap) SupportsContains() bool { return false }

// Contains panics; Mmap cannot answer ownership queries.
func (*Mmap) Contains(unsafe.Pointer) bool {
	panic("alloc: mmap does not support contains")
}

// Name returns "mmap-allocator".
func (*Mmap) Name() string { return "mmap-allocator" }

// Mappings returns the number of live mappings.
func (m *Mmap) Mappings() int { return len(m.maps) }

// PageSize returns the mapping granularity.
func (m *Mmap) PageSize() uintptr { return m.pageSize }

// Close unmaps every live mapping. Blocks still referenced become invalid.
func (m *Mmap) Close() error {
	var result *multierror.Error
	for addr, data := range m.maps {
		if err := unix.Munmap(data); err != nil {
			result = multierror.Append(result, fmt.Errorf("munmap %#x: %w", addr, err))
		}
		delete(m.maps, addr)
	}
	return result.ErrorOrNil()
}

var _ mem.Allocator = (*Mmap)(nil)
