package mem

import (
	"errors"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// partialAllocator implements only the mandatory half of Allocator.
type partialAllocator struct {
	Base
	allocs int
}

func (p *partialAllocator) Alloc(size uintptr, _ Align) (unsafe.Pointer, error) {
	p.allocs++
	return nil, ErrNotImplemented
}

func (p *partialAllocator) Name() string { return "partial-allocator" }

func TestBase_Defaults(t *testing.T) {
	a := &partialAllocator{}

	_, err := a.Grow(nil, 1, 2, AlignOne)
	assert.ErrorIs(t, err, ErrUnsupportedOperation)

	_, err = a.Shrink(nil, 2, 1, AlignOne)
	assert.ErrorIs(t, err, ErrUnsupportedOperation)

	assert.False(t, a.SupportsContains())

	require.PanicsWithValue(t, "mem: free not implemented", func() {
		a.Free(nil, 1, AlignOne)
	})
	require.PanicsWithValue(t, "mem: contains not implemented", func() {
		a.Contains(nil)
	})
}

// shrinkTestAllocator returns a fixed marker from Shrink so forwarding is observable.
type shrinkTestAllocator struct {
	partialAllocator
	marker byte
}

func (s *shrinkTestAllocator) Shrink(unsafe.Pointer, uintptr, uintptr, Align) (unsafe.Pointer, error) {
	return unsafe.Pointer(&s.marker), nil
}

func TestRef_ForwardsShrink(t *testing.T) {
	a := &shrinkTestAllocator{}
	r := RefTo(a)
	p, err := r.Shrink(nil, 2, 1, AlignOne)
	require.NoError(t, err)
	assert.Equal(t, unsafe.Pointer(&a.marker), p)
}

// oddContains claims every odd address.
type oddContains struct {
	partialAllocator
}

func (*oddContains) SupportsContains() bool { return true }

func (*oddContains) Contains(p unsafe.Pointer) bool { return uintptr(p)&1 == 1 }

func TestRef_ForwardsContains(t *testing.T) {
	buf := make([]uint16, 2)
	base := unsafe.Pointer(&buf[0])
	r := RefTo(&oddContains{})
	require.True(t, r.SupportsContains())
	assert.True(t, r.Contains(unsafe.Add(base, 1)))
	assert.False(t, r.Contains(base))
}

func TestRefTo_DoesNotNest(t *testing.T) {
	a := &partialAllocator{}
	r := RefTo(a)
	rr := RefTo(r)
	assert.Equal(t, r, rr)
	assert.True(t, r.Same(rr))
	assert.Same(t, a, rr.Target())

	_, err := rr.Alloc(1, AlignOne)
	assert.ErrorIs(t, err, ErrNotImplemented)
	assert.Equal(t, 1, a.allocs)
}

func TestRef_ZeroValueIsNoHeap(t *testing.T) {
	var r Ref
	assert.Equal(t, "no-heap", r.Name())
	_, err := r.Alloc(8, AlignOne)
	assert.ErrorIs(t, err, ErrNotEnoughMemory)
	assert.True(t, r.Same(RefTo(nil)))
	assert.True(t, r.SupportsContains())
	assert.False(t, r.Contains(nil))
}

// sliceAllocator is a value type that cannot be compared with ==.
type sliceAllocator struct {
	Base
	arena []byte
}

func (sliceAllocator) Alloc(uintptr, Align) (unsafe.Pointer, error) { return nil, ErrNotImplemented }
func (sliceAllocator) Name() string                                 { return "slice-allocator" }

func TestRef_SameWithValueAllocators(t *testing.T) {
	v := sliceAllocator{arena: make([]byte, 8)}
	r := RefTo(v)

	require.NotPanics(t, func() { r.Same(r) })
	assert.False(t, r.Same(RefTo(v)), "values with slices have no identity")
	assert.False(t, r.Same(Ref{}))

	p := &sliceAllocator{arena: make([]byte, 8)}
	assert.True(t, RefTo(p).Same(RefTo(p)))
	assert.False(t, RefTo(p).Same(RefTo(&sliceAllocator{})))
}

func TestRef_String(t *testing.T) {
	r := RefTo(&partialAllocator{})
	assert.Contains(t, r.String(), "partial-allocator@")
	assert.NotContains(t, r.String(), "@0")
}

// sequenceAllocator encodes the requested sizes into the returned addresses.
type sequenceAllocator struct {
	Base
	arena [2048]byte
}

func (s *sequenceAllocator) Alloc(size uintptr, _ Align) (unsafe.Pointer, error) {
	return unsafe.Pointer(&s.arena[size]), nil
}

func (s *sequenceAllocator) Grow(ptr unsafe.Pointer, size, newSize uintptr, _ Align) (unsafe.Pointer, error) {
	return unsafe.Add(ptr, newSize-size), nil
}

func (s *sequenceAllocator) Name() string { return "sequence" }

func TestRef_AllocOrGrow(t *testing.T) {
	a := &sequenceAllocator{}
	r := RefTo(a)
	base := unsafe.Pointer(&a.arena[0])

	p, err := r.AllocOrGrow(nil, 0, 123, AlignOne)
	require.NoError(t, err)
	assert.Equal(t, uintptr(123), uintptr(p)-uintptr(base))

	p, err = r.AllocOrGrow(p, 123, 456, AlignOne)
	require.NoError(t, err)
	assert.Equal(t, uintptr(456), uintptr(p)-uintptr(base))

	p, err = r.AllocOrGrow(p, 456, 789, AlignOne)
	require.NoError(t, err)
	assert.Equal(t, uintptr(789), uintptr(p)-uintptr(base))
}

func TestNoHeap(t *testing.T) {
	_, err := NoHeap.Alloc(1, AlignOne)
	assert.ErrorIs(t, err, ErrNotEnoughMemory)
	require.PanicsWithValue(t, "mem: cannot free what hasn't been allocated", func() {
		NoHeap.Free(nil, 1, AlignOne)
	})
	require.PanicsWithValue(t, "mem: cannot grow what hasn't been allocated", func() {
		_, _ = NoHeap.Grow(nil, 1, 2, AlignOne)
	})
	require.PanicsWithValue(t, "mem: cannot shrink what hasn't been allocated", func() {
		_, _ = NoHeap.Shrink(nil, 2, 1, AlignOne)
	})
}

func TestNop(t *testing.T) {
	_, err := Nop.Alloc(1, AlignOne)
	assert.ErrorIs(t, err, ErrUnsupportedOperation)
	_, err = Nop.Grow(nil, 1, 2, AlignOne)
	assert.ErrorIs(t, err, ErrUnsupportedOperation)
	assert.NotPanics(t, func() { Nop.Free(nil, 1, AlignOne) })
	assert.False(t, Nop.SupportsContains())
	assert.False(t, RefTo(Nop).Same(RefTo(NoHeap)))
}

func TestErrorName(t *testing.T) {
	assert.Equal(t, "ok", ErrorName(nil))
	assert.Equal(t, "NotEnoughMemory", ErrorName(ErrNotEnoughMemory))
	assert.Equal(t, "OperationFailed", ErrorName(errors.Join(errors.New("ctx"), ErrOperationFailed)))
	assert.Equal(t, "", ErrorName(errors.New("other")))

	for _, name := range []string{"InvalidAlignment", "UnsupportedSize", "NotImplemented"} {
		err, ok := ErrorByName(name)
		require.True(t, ok, name)
		assert.Equal(t, name, ErrorName(err))
	}
	err, ok := ErrorByName("ok")
	assert.True(t, ok)
	assert.NoError(t, err)
	_, ok = ErrorByName("Bogus")
	assert.False(t, ok)
}
