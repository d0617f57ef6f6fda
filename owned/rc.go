package owned

import (
	"fmt"
	"unsafe"

	"github.com/joshuapare/halfbit/mem"
)

// rcHeader precedes the value in every Rc block.
type rcHeader struct {
	strong uintptr
	weak   uintptr
}

// rcLayout returns the offset of the value inside an Rc block, the block
// size and its alignment. The header is padded to the larger of the two
// alignments so the value that follows is aligned too.
func rcLayout[T any]() (valueOff, size uintptr, align mem.Align) {
	hdr := mem.LayoutOf[rcHeader]()
	val := mem.LayoutOf[T]()
	align = hdr.Align()
	if val.Align().Get() > align.Get() {
		align = val.Align()
	}
	valueOff, _ = mem.AlignUp(hdr.Size(), align)
	return valueOff, valueOff + val.Size(), align
}

// Rc is a strong handle to a reference-counted value in allocator memory.
// Handles are created by NewRc, Clone and Weak.Upgrade; each must be dropped
// exactly once. The value is dropped with the last strong handle and the
// block is freed once no weak handle remains either.
type Rc[T any] struct {
	ref mem.Ref
	hdr *rcHeader
	val *T
}

// Weak is a non-owning handle that can be upgraded to an Rc while the value
// is alive.
type Weak[T any] struct {
	ref mem.Ref
	hdr *rcHeader
	val *T
}

// NewRc moves v into a fresh block from ref with a strong count of 1. On
// failure nothing is stored and v remains the caller's.
func NewRc[T any](ref mem.Ref, v T) (*Rc[T], error) {
	mustBePointerFree[T]("Rc")
	valueOff, size, align := rcLayout[T]()
	p, err := ref.Alloc(size, align)
	if err != nil {
		return nil, err
	}
	hdr := (*rcHeader)(p)
	*hdr = rcHeader{strong: 1}
	val := (*T)(unsafe.Pointer(&zeroSized))
	if size > valueOff {
		val = (*T)(unsafe.Add(p, valueOff))
	}
	*val = v
	return &Rc[T]{ref: ref, hdr: hdr, val: val}, nil
}

func freeRcBlock[T any](ref mem.Ref, hdr *rcHeader) {
	_, size, align := rcLayout[T]()
	ref.Free(unsafe.Pointer(hdr), size, align)
}

func (r *Rc[T]) live() *rcHeader {
	if r.hdr == nil {
		panic("owned: use of dropped Rc")
	}
	return r.hdr
}

// Get returns a pointer to the shared value. All strong handles see the same value.
func (r *Rc[T]) Get() *T {
	r.live()
	return r.val
}

// GetMut returns the value only when this is the sole handle, strong or weak.
func (r *Rc[T]) GetMut() (*T, bool) {
	hdr := r.live()
	if hdr.strong == 1 && hdr.weak == 0 {
		return r.val, true
	}
	return nil, false
}

// Clone returns a new strong handle to the same value.
func (r *Rc[T]) Clone() *Rc[T] {
	r.live().strong++
	return &Rc[T]{ref: r.ref, hdr: r.hdr, val: r.val}
}

// Downgrade returns a weak handle to the same value.
func (r *Rc[T]) Downgrade() *Weak[T] {
	r.live().weak++
	return &Weak[T]{ref: r.ref, hdr: r.hdr, val: r.val}
}

// StrongCount returns the number of strong handles.
func (r *Rc[T]) StrongCount() int { return int(r.live().strong) }

// WeakCount returns the number of weak handles.
func (r *Rc[T]) WeakCount() int { return int(r.live().weak) }

// Same reports whether both handles share one value.
func (r *Rc[T]) Same(other *Rc[T]) bool {
	return r.live() == other.live()
}

// Allocator returns the handle the block was allocated from.
func (r *Rc[T]) Allocator() mem.Ref { return r.ref }

// Drop releases this strong handle. Subsequent calls do nothing.
func (r *Rc[T]) Drop() {
	hdr, val := r.hdr, r.val
	if hdr == nil {
		return
	}
	r.hdr, r.val = nil, nil
	hdr.strong--
	if hdr.strong > 0 {
		return
	}
	dropValue(val)
	if hdr.weak == 0 {
		freeRcBlock[T](r.ref, hdr)
	}
}

func (r *Rc[T]) String() string {
	if r.hdr == nil {
		return "Rc[dropped]"
	}
	return fmt.Sprintf("Rc[%d+%d]{%v}", r.hdr.strong, r.hdr.weak, *r.val)
}

func (w *Weak[T]) live() *rcHeader {
	if w.hdr == nil {
		panic("owned: use of dropped Weak")
	}
	return w.hdr
}

// Upgrade returns a new strong handle, or false when the value is gone.
func (w *Weak[T]) Upgrade() (*Rc[T], bool) {
	hdr := w.live()
	if hdr.strong == 0 {
		return nil, false
	}
	hdr.strong++
	return &Rc[T]{ref: w.ref, hdr: w.hdr, val: w.val}, true
}

// StrongCount returns the number of strong handles.
func (w *Weak[T]) StrongCount() int { return int(w.live().strong) }

// WeakCount returns the number of weak handles.
func (w *Weak[T]) WeakCount() int { return int(w.live().weak) }

// Drop releases this weak handle, freeing the block when it was the last
// handle of any kind. Subsequent calls do nothing.
func (w *Weak[T]) Drop() {
	hdr := w.hdr
	if hdr == nil {
		return
	}
	w.hdr, w.val = nil, nil
	hdr.weak--
	if hdr.weak == 0 && hdr.strong == 0 {
		freeRcBlock[T](w.ref, hdr)
	}
}
