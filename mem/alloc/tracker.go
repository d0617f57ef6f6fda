package alloc

import (
	"fmt"
	"log/slog"
	"sort"
	"unsafe"

	"github.com/hashicorp/go-multierror"

	"github.com/joshuapare/halfbit/mem"
)

const (
	// defaultBlockCapacity is the pre-allocated capacity for live block bookkeeping.
	defaultBlockCapacity = 64
)

// TrackerOptions configures a Tracker.
type TrackerOptions struct {
	// Logger receives one debug record per forwarded call. Nil discards.
	Logger *slog.Logger
}

// Block is a live allocation as seen by a Tracker.
type Block struct {
	Addr  uintptr
	Size  uintptr
	Align mem.Align
	Seq   int // order of allocation, starting at 1
}

// Range is a contiguous span of live memory (absolute addresses).
type Range struct {
	Off uintptr
	Len uintptr
}

// TrackerStats counts the calls a Tracker forwarded.
type TrackerStats struct {
	Allocs    int
	Frees     int
	Grows     int
	Shrinks   int
	Failures  int     // forwarded calls that returned an error
	LiveBytes uintptr // bytes held by live blocks
	PeakBytes uintptr // highest LiveBytes observed
}

// Tracker wraps an allocator and audits every block that passes through it:
// it records live blocks, flags overlapping or unknown blocks, and reports
// leaks on Verify.
//
// NOT thread-safe. Only one goroutine should use it at a time.
type Tracker struct {
	a          mem.Ref
	log        *slog.Logger
	live       map[uintptr]Block
	seq        int
	stats      TrackerStats
	violations []error
}

// NewTracker creates a tracker around a.
func NewTracker(a mem.Allocator, opts TrackerOptions) *Tracker {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Tracker{
		a:    mem.RefTo(a),
		log:  log,
		live: make(map[uintptr]Block, defaultBlockCapacity),
	}
}

// Inner returns the wrapped allocator.
func (t *Tracker) Inner() mem.Ref { return t.a }

func (t *Tracker) violate(err error) {
	t.log.Warn("allocation violation", "allocator", t.a.Name(), "error", err)
	t.violations = append(t.violations, err)
}

func (t *Tracker) failed(op string, err error) {
	t.stats.Failures++
	t.log.Debug(op+" failed", "allocator", t.a.Name(), "error", mem.ErrorName(err))
}

// add records a new live block after checking it against every other live block.
func (t *Tracker) add(p unsafe.Pointer, size uintptr, align mem.Align) {
	addr := uintptr(p)
	for _, b := range t.live {
		if addr < b.Addr+b.Size && b.Addr < addr+size {
			t.violate(fmt.Errorf("%w: [%#x,+%d) overlaps block #%d [%#x,+%d)",
				ErrOverlap, addr, size, b.Seq, b.Addr, b.Size))
		}
	}
	t.seq++
	t.live[addr] = Block{Addr: addr, Size: size, Align: align, Seq: t.seq}
	t.stats.LiveBytes += size
	if t.stats.LiveBytes > t.stats.PeakBytes {
		t.stats.PeakBytes = t.stats.LiveBytes
	}
}

// remove drops a live block, reporting whether it was known.
func (t *Tracker) remove(p unsafe.Pointer, size uintptr, align mem.Align) bool {
	addr := uintptr(p)
	b, ok := t.live[addr]
	if !ok {
		t.violate(fmt.Errorf("%w: %#x", ErrUnknownBlock, addr))
		return false
	}
	if b.Size != size || b.Align != align {
		t.violate(fmt.Errorf("%w: block #%d is %d/%s, caller passed %d/%s",
			ErrBlockMismatch, b.Seq, b.Size, b.Align, size, align))
	}
	delete(t.live, addr)
	t.stats.LiveBytes -= b.Size
	return true
}

// Alloc forwards to the wrapped allocator and records the block.
func (t *Tracker) Alloc(size uintptr, align mem.Align) (unsafe.Pointer, error) {
	p, err := t.a.Alloc(size, align)
	if err != nil {
		t.failed("alloc", err)
		return nil, err
	}
	t.stats.Allocs++
	t.add(p, size, align)
	t.log.Debug("alloc", "allocator", t.a.Name(), "size", size, "align", align.Get(), "addr", uintptr(p))
	return p, nil
}

// Free forgets the block and forwards the call.
func (t *Tracker) Free(ptr unsafe.Pointer, size uintptr, align mem.Align) {
	t.remove(ptr, size, align)
	t.stats.Frees++
	t.log.Debug("free", "allocator", t.a.Name(), "size", size, "addr", uintptr(ptr))
	t.a.Free(ptr, size, align)
}

// Grow forwards the call and moves the block record on success.
func (t *Tracker) Grow(ptr unsafe.Pointer, size, newSize uintptr, align mem.Align) (unsafe.Pointer, error) {
	p, err := t.a.Grow(ptr, size, newSize, align)
	if err != nil {
		t.failed("grow", err)
		return nil, err
	}
	t.stats.Grows++
	t.remove(ptr, size, align)
	t.add(p, newSize, align)
	t.log.Debug("grow", "allocator", t.a.Name(), "size", size, "new_size", newSize,
		"moved", p != ptr)
	return p, nil
}

// Shrink forwards the call and resizes the block record on success.
func (t *Tracker) Shrink(ptr unsafe.Pointer, size, newSize uintptr, align mem.Align) (unsafe.Pointer, error) {
	p, err := t.a.Shrink(ptr, size, newSize, align)
	if err != nil {
		t.failed("shrink", err)
		return nil, err
	}
	t.stats.Shrinks++
	t.remove(ptr, size, align)
	t.add(p, newSize, align)
	t.log.Debug("shrink", "allocator", t.a.Name(), "size", size, "new_size", newSize)
	return p, nil
}

// SupportsContains forwards to the wrapped allocator.
func (t *Tracker) SupportsContains() bool { return t.a.SupportsContains() }

// Contains forwards to the wrapped allocator.
func (t *Tracker) Contains(ptr unsafe.Pointer) bool { return t.a.Contains(ptr) }

// Name returns the wrapped allocator's name.
func (t *Tracker) Name() string { return t.a.Name() }

// Stats returns a snapshot of the counters.
func (t *Tracker) Stats() TrackerStats { return t.stats }

// Live returns the live blocks in allocation order.
func (t *Tracker) Live() []Block {
	blocks := make([]Block, 0, len(t.live))
	for _, b := range t.live {
		blocks = append(blocks, b)
	}
	sort.Slice(blocks, func(i, j int) bool {
		return blocks[i].Seq < blocks[j].Seq
	})
	return blocks
}

// Ranges returns the live memory as sorted, merged spans. Adjacent blocks
// merge into one span.
func (t *Tracker) Ranges() []Range {
	if len(t.live) == 0 {
		return nil
	}

	spans := make([]Range, 0, len(t.live))
	for _, b := range t.live {
		spans = append(spans, Range{Off: b.Addr, Len: b.Size})
	}
	sort.Slice(spans, func(i, j int) bool {
		return spans[i].Off < spans[j].Off
	})

	merged := make([]Range, 0, len(spans))
	current := spans[0]
	for _, next := range spans[1:] {
		if next.Off <= current.Off+current.Len {
			end := max(current.Off+current.Len, next.Off+next.Len)
			current.Len = end - current.Off
			continue
		}
		merged = append(merged, current)
		current = next
	}
	return append(merged, current)
}

// Violations returns the contract violations recorded so far.
func (t *Tracker) Violations() []error {
	return append([]error(nil), t.violations...)
}

// Verify reports every recorded violation plus one ErrLeak per live block.
// It returns nil when the allocator was used cleanly and everything was released.
func (t *Tracker) Verify() error {
	var result *multierror.Error
	for _, err := range t.violations {
		result = multierror.Append(result, err)
	}
	for _, b := range t.Live() {
		result = multierror.Append(result, fmt.Errorf("%w: block #%d (%d bytes at %#x)",
			ErrLeak, b.Seq, b.Size, b.Addr))
	}
	return result.ErrorOrNil()
}

var _ mem.Allocator = (*Tracker)(nil)
