package owned

import (
	"testing"
	"unsafe"

	"github.com/joshuapare/halfbit/mem"
	"github.com/joshuapare/halfbit/mem/alloc"
)

// dropLog records the ids of dropped tracked values, in order.
var dropLog []uint32

// tracked is a pointer-free value with a Drop hook.
type tracked struct {
	id uint32
}

func (t *tracked) Drop() { dropLog = append(dropLog, t.id) }

func resetDropLog(t *testing.T) {
	t.Helper()
	dropLog = nil
	t.Cleanup(func() { dropLog = nil })
}

// newBumpRef returns a bump allocator over n bytes and its handle.
func newBumpRef(n int) (*alloc.Bump, mem.Ref) {
	b := alloc.NewBump(make([]byte, n))
	return b, mem.RefTo(b)
}

// pretendAllocator claims every request succeeds and hands back the same
// small buffer. It lets capacity arithmetic be tested for sizes no real
// allocator could serve, as long as nothing touches the memory.
type pretendAllocator struct {
	mem.Base
	buf [16]byte
}

func (p *pretendAllocator) Alloc(uintptr, mem.Align) (unsafe.Pointer, error) {
	return unsafe.Pointer(&p.buf[0]), nil
}

func (*pretendAllocator) Free(unsafe.Pointer, uintptr, mem.Align) {}

func (*pretendAllocator) Grow(ptr unsafe.Pointer, _, _ uintptr, _ mem.Align) (unsafe.Pointer, error) {
	return ptr, nil
}

func (*pretendAllocator) Name() string { return "pretend" }
