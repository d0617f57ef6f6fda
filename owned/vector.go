package owned

import (
	"unsafe"

	"github.com/joshuapare/halfbit/internal/num"
	"github.com/joshuapare/halfbit/mem"
)

// Vector is a growable array whose storage comes from a mem.Ref.
//
// Capacity grows to the next power of two that fits the requested length,
// falling back to the exact length when the allocator cannot serve the
// larger block.
type Vector[T any] struct {
	ref mem.Ref
	ptr *T
	len int
	cap int

	// borrowed marks a view over memory the vector does not own.
	borrowed bool
}

// NewVector returns an empty vector that allocates from ref. It panics for
// zero-sized element types and for types holding Go pointers.
func NewVector[T any](ref mem.Ref) *Vector[T] {
	if !mem.LayoutOf[T]().NonZero() {
		panic("owned: zero sized vector element")
	}
	mustBePointerFree[T]("Vector")
	return &Vector[T]{ref: ref}
}

// MapSlice returns a read-only vector view over s. The view reports a
// capacity of 0, every growing mutation fails with mem.ErrUnsupportedOperation,
// and Drop neither frees s nor runs Drop hooks on its elements.
func MapSlice[T any](s []T) *Vector[T] {
	return &Vector[T]{
		ref:      mem.RefTo(mem.Nop),
		ptr:      unsafe.SliceData(s),
		len:      len(s),
		borrowed: true,
	}
}

func elemLayout[T any]() (uintptr, mem.Align) {
	l := mem.LayoutOf[T]()
	return l.Size(), l.Align()
}

// Len returns the number of elements.
func (v *Vector[T]) Len() int { return v.len }

// Cap returns the number of elements the current block can hold.
func (v *Vector[T]) Cap() int { return v.cap }

// IsEmpty reports whether the vector has no elements.
func (v *Vector[T]) IsEmpty() bool { return v.len == 0 }

// Allocator returns the handle the vector allocates from.
func (v *Vector[T]) Allocator() mem.Ref { return v.ref }

// Reserve makes room for at least additional more elements.
//
// A negative count, or one whose total would exceed the largest representable
// element count, fails with mem.ErrUnsupportedSize.
func (v *Vector[T]) Reserve(additional int) error {
	size, align := elemLayout[T]()
	maxCap := int(num.MaxCount(size))
	if additional < 0 || additional > maxCap-v.len {
		return mem.ErrUnsupportedSize
	}
	needed := v.len + additional
	if needed <= v.cap {
		return nil
	}

	try := needed
	if p2, ok := mem.AlignFor(uintptr(needed)); ok {
		try = int(min(p2.Get(), uintptr(maxCap)))
	}
	for {
		p, err := v.ref.AllocOrGrow(unsafe.Pointer(v.ptr), uintptr(v.cap)*size, uintptr(try)*size, align)
		if err == nil {
			v.ptr = (*T)(p)
			v.cap = try
			return nil
		}
		if try == needed {
			return err
		}
		try = needed
	}
}

// Push appends x. On failure x is not stored and the vector is unchanged.
func (v *Vector[T]) Push(x T) error {
	if err := v.Reserve(1); err != nil {
		return err
	}
	*v.at(v.len) = x
	v.len++
	return nil
}

// Pop removes and returns the last element. The caller takes over the value,
// so its Drop hook is not run.
func (v *Vector[T]) Pop() (T, bool) {
	var zero T
	if v.len == 0 {
		return zero, false
	}
	v.len--
	return *v.at(v.len), true
}

// AppendSlice copies src to the end of the vector. On failure nothing is appended.
func (v *Vector[T]) AppendSlice(src []T) error {
	if len(src) == 0 {
		return nil
	}
	if err := v.Reserve(len(src)); err != nil {
		return err
	}
	copy(unsafe.Slice(v.at(v.len), len(src)), src)
	v.len += len(src)
	return nil
}

func (v *Vector[T]) at(i int) *T {
	return (*T)(unsafe.Add(unsafe.Pointer(v.ptr), uintptr(i)*unsafe.Sizeof(*v.ptr)))
}

// At returns a pointer to element i. It panics when i is out of range.
func (v *Vector[T]) At(i int) *T {
	if i < 0 || i >= v.len {
		panic("owned: vector index out of range")
	}
	return v.at(i)
}

// Slice returns the elements as a Go slice aliasing the vector's storage. It
// is valid until the next growing mutation or Drop.
func (v *Vector[T]) Slice() []T {
	if v.len == 0 {
		return nil
	}
	return unsafe.Slice(v.ptr, v.len)
}

// Truncate shortens the vector to n elements, running Drop hooks on the
// removed ones. It does nothing when n >= Len.
func (v *Vector[T]) Truncate(n int) {
	if n < 0 {
		panic("owned: negative vector length")
	}
	if n >= v.len {
		return
	}
	if !v.borrowed {
		for i := n; i < v.len; i++ {
			dropValue(v.at(i))
		}
	}
	v.len = n
}

// ShrinkToFit releases spare capacity. An empty vector gives back its whole block.
func (v *Vector[T]) ShrinkToFit() error {
	if v.borrowed || v.cap == v.len {
		return nil
	}
	size, align := elemLayout[T]()
	if v.len == 0 {
		v.ref.Free(unsafe.Pointer(v.ptr), uintptr(v.cap)*size, align)
		v.ptr, v.cap = nil, 0
		return nil
	}
	p, err := v.ref.Shrink(unsafe.Pointer(v.ptr), uintptr(v.cap)*size, uintptr(v.len)*size, align)
	if err != nil {
		return err
	}
	v.ptr = (*T)(p)
	v.cap = v.len
	return nil
}

// Drop runs Drop hooks on every element and frees the storage. The vector is
// left empty and may be reused.
func (v *Vector[T]) Drop() {
	v.Truncate(0)
	if v.cap != 0 {
		size, align := elemLayout[T]()
		v.ref.Free(unsafe.Pointer(v.ptr), uintptr(v.cap)*size, align)
	}
	v.ptr, v.cap = nil, 0
}
