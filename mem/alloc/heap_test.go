package alloc

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/halfbit/mem"
)

func TestHeap_AllocFree(t *testing.T) {
	h := NewHeap()
	assert.Equal(t, "go-heap", h.Name())

	for _, n := range []uintptr{1, 2, 4, 8, 16} {
		if n > HeapMaxAlign.Get() {
			continue
		}
		a := mem.MustAlign(n)
		p, err := h.Alloc(3, a)
		require.NoError(t, err)
		assert.True(t, a.IsPtrAligned(p), "align %d", n)
		assert.Equal(t, make([]byte, 3), bytesAt(p, 3), "heap memory starts zeroed")
		h.Free(p, 3, a)
	}

	st := h.Stats()
	assert.Zero(t, st.LiveBlocks)
	assert.Zero(t, st.LiveBytes)
}

func TestHeap_RejectsLargeAlignment(t *testing.T) {
	h := NewHeap()
	big, ok := HeapMaxAlign.Next()
	require.True(t, ok)

	_, err := h.Alloc(1, big)
	require.ErrorIs(t, err, mem.ErrUnsupportedAlignment)

	_, err = h.Alloc(0, mem.AlignOne)
	require.ErrorIs(t, err, mem.ErrUnsupportedSize)

	_, err = h.Alloc(^uintptr(0), mem.AlignOne)
	require.ErrorIs(t, err, mem.ErrNotEnoughMemory)
}

func TestHeap_GrowCopies(t *testing.T) {
	h := NewHeap()
	p, err := h.Alloc(4, mem.AlignOne)
	require.NoError(t, err)
	copy(bytesAt(p, 4), "abcd")

	q, err := h.Grow(p, 4, 8, mem.AlignOne)
	require.NoError(t, err)
	assert.Equal(t, []byte("abcd\x00\x00\x00\x00"), bytesAt(q, 8))

	st := h.Stats()
	assert.Equal(t, 1, st.LiveBlocks)
	assert.Equal(t, uintptr(8), st.LiveBytes)
	assert.Equal(t, 2, st.TotalAlloc)

	q, err = h.Shrink(q, 8, 2, mem.AlignOne)
	require.NoError(t, err)
	assert.Equal(t, uintptr(2), h.Stats().LiveBytes)

	h.Free(q, 2, mem.AlignOne)
	assert.Zero(t, h.Stats().LiveBlocks)
}

func TestHeap_ResizeDirectionIsEnforced(t *testing.T) {
	h := NewHeap()
	p, err := h.Alloc(4, mem.AlignOne)
	require.NoError(t, err)

	require.PanicsWithValue(t, "alloc: grow must enlarge the block", func() {
		_, _ = h.Grow(p, 4, 2, mem.AlignOne)
	})
	require.PanicsWithValue(t, "alloc: shrink must reduce the block", func() {
		_, _ = h.Shrink(p, 4, 8, mem.AlignOne)
	})

	st := h.Stats()
	assert.Equal(t, uintptr(4), st.LiveBytes)
	assert.Equal(t, 1, st.TotalAlloc)
	h.Free(p, 4, mem.AlignOne)
}

func TestHeap_ForeignFreePanics(t *testing.T) {
	h := NewHeap()
	var x byte
	require.PanicsWithValue(t, "alloc: heap block not allocated here", func() {
		h.Free(unsafe.Pointer(&x), 1, mem.AlignOne)
	})
	assert.False(t, h.SupportsContains())
}
