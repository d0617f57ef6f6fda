package mem

import (
	"math/bits"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlign_ZeroValueIsOne(t *testing.T) {
	var a Align
	assert.Equal(t, uintptr(1), a.Get())
	assert.Equal(t, AlignOne, a)
}

func TestNewAlign(t *testing.T) {
	for _, n := range []uintptr{1, 2, 4, 8, 4096} {
		a, ok := NewAlign(n)
		require.True(t, ok, "NewAlign(%d)", n)
		assert.Equal(t, n, a.Get())
	}
	for _, n := range []uintptr{0, 3, 5, 6, 12, ^uintptr(0)} {
		_, ok := NewAlign(n)
		assert.False(t, ok, "NewAlign(%d) should fail", n)
	}
}

func TestMustAlign_PanicsOnInvalid(t *testing.T) {
	assert.Equal(t, uintptr(8), MustAlign(8).Get())
	require.PanicsWithValue(t, "mem: alignment 3 is not a power of two", func() {
		MustAlign(3)
	})
}

func TestMaxAlign(t *testing.T) {
	assert.Equal(t, uintptr(1)<<(bits.UintSize-1), MaxAlign.Get())
	_, ok := MaxAlign.Next()
	assert.False(t, ok, "MaxAlign has no successor")
}

func TestAlign_NextPrev(t *testing.T) {
	a := MustAlign(4)
	n, ok := a.Next()
	require.True(t, ok)
	assert.Equal(t, uintptr(8), n.Get())

	p, ok := a.Prev()
	require.True(t, ok)
	assert.Equal(t, uintptr(2), p.Get())

	_, ok = AlignOne.Prev()
	assert.False(t, ok, "AlignOne has no predecessor")
}

func TestAlign_ShlShr(t *testing.T) {
	a, ok := AlignOne.Shl(10)
	require.True(t, ok)
	assert.Equal(t, uintptr(1024), a.Get())

	_, ok = AlignOne.Shl(bits.UintSize)
	assert.False(t, ok)
	_, ok = a.Shl(bits.UintSize - 10)
	assert.False(t, ok)

	b, ok := a.Shr(10)
	require.True(t, ok)
	assert.Equal(t, AlignOne, b)

	_, ok = a.Shr(11)
	assert.False(t, ok)
}

func TestAlignFor(t *testing.T) {
	tests := []struct {
		n    uintptr
		want uintptr
	}{
		{0, 1}, {1, 1}, {2, 2}, {3, 4}, {5, 8}, {8, 8}, {9, 16}, {1000, 1024},
	}
	for _, tt := range tests {
		a, ok := AlignFor(tt.n)
		require.True(t, ok, "AlignFor(%d)", tt.n)
		assert.Equal(t, tt.want, a.Get(), "AlignFor(%d)", tt.n)
	}

	a, ok := AlignFor(MaxAlign.Get())
	require.True(t, ok)
	assert.Equal(t, MaxAlign, a)

	_, ok = AlignFor(MaxAlign.Get() + 1)
	assert.False(t, ok)
}

func TestAlignUp(t *testing.T) {
	a8 := MustAlign(8)
	tests := []struct {
		n    uintptr
		want uintptr
	}{
		{0, 0}, {1, 8}, {8, 8}, {9, 16}, {16, 16},
	}
	for _, tt := range tests {
		got, ok := a8.Up(tt.n)
		require.True(t, ok)
		assert.Equal(t, tt.want, got, "Up(%d)", tt.n)
	}

	_, ok := AlignUp(^uintptr(0), MustAlign(2))
	assert.False(t, ok, "rounding MaxSize up must overflow")

	v, ok := AlignUp(^uintptr(0), AlignOne)
	require.True(t, ok)
	assert.Equal(t, ^uintptr(0), v)
}

func TestAlign_IsAligned(t *testing.T) {
	a := MustAlign(4)
	assert.True(t, a.IsAligned(0))
	assert.True(t, a.IsAligned(12))
	assert.False(t, a.IsAligned(13))
	assert.Equal(t, uintptr(3), a.Mask())
	assert.Equal(t, uint(2), a.Log2())

	var x uint64
	assert.True(t, MustAlign(unsafe.Alignof(x)).IsPtrAligned(unsafe.Pointer(&x)))
	assert.Equal(t, "4", a.String())
}
