package mem

import (
	"fmt"
	"reflect"
	"unsafe"
)

// LayoutErrorKind identifies why a layout could not be built.
type LayoutErrorKind uint8

const (
	// LayoutInvalidAlignment means the alignment is not a power of two.
	LayoutInvalidAlignment LayoutErrorKind = iota + 1
	// LayoutSizeTooBig means rounding the size up to the alignment overflows.
	LayoutSizeTooBig
)

// LayoutError is returned by NewLayout. It unwraps to the matching allocation
// error so callers that only know the allocation taxonomy can still match it.
type LayoutError struct {
	Kind  LayoutErrorKind
	Size  uintptr
	Align uintptr
}

// Error implements the error interface.
func (e *LayoutError) Error() string {
	switch e.Kind {
	case LayoutInvalidAlignment:
		return fmt.Sprintf("mem: layout size=%d align=%d: alignment is not a power of two", e.Size, e.Align)
	case LayoutSizeTooBig:
		return fmt.Sprintf("mem: layout size=%d align=%d: aligned size overflows", e.Size, e.Align)
	default:
		return fmt.Sprintf("mem: layout size=%d align=%d: invalid", e.Size, e.Align)
	}
}

// Unwrap converts the layout error into the allocation error taxonomy.
func (e *LayoutError) Unwrap() error {
	if e.Kind == LayoutSizeTooBig {
		return ErrAlignedSizeTooBig
	}
	return ErrInvalidAlignment
}

// Layout describes one block request: a size and an alignment whose rounded-up
// size is known to fit in a uintptr.
type Layout struct {
	size  uintptr
	align Align
}

// NewLayout validates size and align and returns the layout.
func NewLayout(size, align uintptr) (Layout, error) {
	a, ok := NewAlign(align)
	if !ok {
		return Layout{}, &LayoutError{Kind: LayoutInvalidAlignment, Size: size, Align: align}
	}
	return LayoutFor(size, a)
}

// LayoutFor builds a layout from an already valid alignment.
func LayoutFor(size uintptr, align Align) (Layout, error) {
	if _, ok := AlignUp(size, align); !ok {
		return Layout{}, &LayoutError{Kind: LayoutSizeTooBig, Size: size, Align: align.Get()}
	}
	return Layout{size: size, align: align}, nil
}

// Size returns the requested size in bytes.
func (l Layout) Size() uintptr { return l.size }

// Align returns the requested alignment.
func (l Layout) Align() Align { return l.align }

// NonZero reports whether the layout may be passed to Alloc. Allocators reject
// zero-sized requests with ErrUnsupportedSize.
func (l Layout) NonZero() bool { return l.size != 0 }

// PaddedSize returns the size rounded up to the alignment.
func (l Layout) PaddedSize() uintptr {
	padded, _ := AlignUp(l.size, l.align)
	return padded
}

func (l Layout) String() string {
	return fmt.Sprintf("%d/%s", l.size, l.align)
}

// LayoutOf returns the layout of a value of type T.
func LayoutOf[T any]() Layout {
	var zero T
	return Layout{size: unsafe.Sizeof(zero), align: MustAlign(unsafe.Alignof(zero))}
}

// HoldsPointers reports whether values of type T contain Go pointers
// (pointers, strings, slices, maps, channels, functions or interfaces).
// Such values cannot live in allocator memory because the garbage collector
// does not scan it.
func HoldsPointers[T any]() bool {
	return typeHoldsPointers(reflect.TypeFor[T]())
}

func typeHoldsPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.UnsafePointer, reflect.String, reflect.Slice,
		reflect.Map, reflect.Chan, reflect.Func, reflect.Interface:
		return true
	case reflect.Array:
		return t.Len() > 0 && typeHoldsPointers(t.Elem())
	case reflect.Struct:
		for i := range t.NumField() {
			if typeHoldsPointers(t.Field(i).Type) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
