package scenario

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unsafe"

	"github.com/hashicorp/go-multierror"

	"github.com/joshuapare/halfbit/mem"
	"github.com/joshuapare/halfbit/mem/alloc"
	"github.com/joshuapare/halfbit/owned"
)

const (
	// DefaultArenaSize is the buffer size for bump and single allocators
	// whose scenario does not set one.
	DefaultArenaSize = 4096
)

// Options configures a Runner.
type Options struct {
	// Logger receives one record per step. Nil discards.
	Logger *slog.Logger

	// ArenaSize is the buffer size used when a scenario's allocator has none.
	// Default: DefaultArenaSize
	ArenaSize int

	// FailFast stops the run at the first failed step.
	// Default: false (every step runs)
	FailFast bool

	// IgnoreLeaks drops leak reports from the returned error. Leaked blocks
	// are still listed in Report.Live.
	IgnoreLeaks bool
}

// Runner replays scenarios.
type Runner struct {
	opts Options
	log  *slog.Logger
}

// NewRunner creates a runner.
func NewRunner(opts Options) *Runner {
	if opts.ArenaSize <= 0 {
		opts.ArenaSize = DefaultArenaSize
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Runner{opts: opts, log: log}
}

// block is a live allocation made by a scenario.
type block struct {
	ptr    unsafe.Pointer
	layout mem.Layout
}

func (b block) bytes() []byte {
	return unsafe.Slice((*byte)(b.ptr), b.layout.Size())
}

// run is the state of one scenario replay.
type run struct {
	tr      *alloc.Tracker
	blocks  map[string]block
	strings map[string]*owned.String
}

// Run replays sc. The report is returned even when the error is non-nil; the
// error aggregates every failed step, every tracker violation and, unless
// Options.IgnoreLeaks is set, every leaked block. A cancelled context stops
// the replay between steps.
func (r *Runner) Run(ctx context.Context, sc *Scenario) (*Report, error) {
	a, closeFn, err := NewAllocator(sc.Allocator, r.opts.ArenaSize)
	if err != nil {
		return nil, err
	}

	st := &run{
		tr:      alloc.NewTracker(a, alloc.TrackerOptions{Logger: r.log}),
		blocks:  make(map[string]block),
		strings: make(map[string]*owned.String),
	}
	report := &Report{
		Name:      sc.Name,
		Allocator: st.tr.Name(),
		Steps:     make([]StepResult, 0, len(sc.Steps)),
	}

	var result *multierror.Error
	for i, step := range sc.Steps {
		if ctxErr := ctx.Err(); ctxErr != nil {
			result = multierror.Append(result, ctxErr)
			break
		}

		res, stepErr := st.step(i, step)
		report.Steps = append(report.Steps, res)
		r.log.Debug("step",
			"index", i, "op", step.Op, "id", step.ID, "result", res.Result)
		if stepErr == nil {
			continue
		}

		r.log.Warn("step failed", "index", i, "op", step.Op, "id", step.ID, "error", stepErr)
		result = multierror.Append(result, stepErr)
		if r.opts.FailFast {
			break
		}
	}

	report.fill(st.tr)

	if verifyErr := st.tr.Verify(); verifyErr != nil {
		var merr *multierror.Error
		if errors.As(verifyErr, &merr) {
			for _, e := range merr.Errors {
				if r.opts.IgnoreLeaks && errors.Is(e, alloc.ErrLeak) {
					continue
				}
				result = multierror.Append(result, e)
			}
		}
	}

	if closeErr := closeFn(); closeErr != nil {
		result = multierror.Append(result, fmt.Errorf("close allocator: %w", closeErr))
	}

	return report, result.ErrorOrNil()
}

// step executes one step, recovering panics. A failed step yields a *StepError.
func (st *run) step(i int, step Step) (res StepResult, err error) {
	res = StepResult{Index: i, Op: step.Op, ID: step.ID}
	want := step.ExpectedOutcome()

	fail := func(cause error) error {
		return &StepError{Index: i, Op: step.Op, ID: step.ID, Err: cause}
	}

	defer func() {
		if p := recover(); p != nil {
			res.Result = OutcomePanic
			res.Detail = fmt.Sprint(p)
			if want != OutcomePanic {
				err = fail(fmt.Errorf("%w: %v", ErrPanic, p))
			}
		}
	}()

	opErr, err := st.exec(step)
	if err != nil {
		res.Result = "error"
		res.Detail = err.Error()
		return res, fail(err)
	}

	res.Result = outcomeOf(opErr)
	if opErr != nil {
		res.Detail = opErr.Error()
	}
	if res.Result != want {
		return res, fail(fmt.Errorf("%w: want %s, got %s", ErrMismatch, want, res.Result))
	}
	return res, nil
}

// exec performs step. opErr is the operation's own outcome, compared against
// the step's expectation; err is a scenario error (unknown id, failed check).
func (st *run) exec(step Step) (opErr, err error) {
	switch step.Op {
	case OpAlloc:
		return st.alloc(step)
	case OpFill:
		b, err := st.block(step.ID)
		if err != nil {
			return nil, err
		}
		data := b.bytes()
		for i := range data {
			data[i] = *step.Byte
		}
		return nil, nil
	case OpGrow, OpShrink:
		return st.resize(step)
	case OpFree:
		return st.free(step)
	case OpExpect:
		return nil, st.expect(step)
	case OpText:
		return st.text(step)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownOp, step.Op)
	}
}

func (st *run) alloc(step Step) (opErr, err error) {
	if st.inUse(step.ID) {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateID, step.ID)
	}
	layout, err := mem.NewLayout(uintptr(step.Size), alignOf(step))
	if err != nil {
		return err, nil
	}
	ptr, err := st.tr.Alloc(layout.Size(), layout.Align())
	if err != nil {
		return err, nil
	}
	st.blocks[step.ID] = block{ptr: ptr, layout: layout}
	return nil, nil
}

func (st *run) resize(step Step) (opErr, err error) {
	b, err := st.block(step.ID)
	if err != nil {
		return nil, err
	}
	newSize, size := uintptr(step.Size), b.layout.Size()
	if (step.Op == OpGrow && newSize <= size) || (step.Op == OpShrink && newSize >= size) {
		return nil, fmt.Errorf("%w: %s %d byte block to %d", ErrInvalidResize, step.Op, size, newSize)
	}
	layout, err := mem.LayoutFor(uintptr(step.Size), b.layout.Align())
	if err != nil {
		return err, nil
	}

	var ptr unsafe.Pointer
	if step.Op == OpGrow {
		ptr, err = st.tr.Grow(b.ptr, b.layout.Size(), layout.Size(), layout.Align())
	} else {
		ptr, err = st.tr.Shrink(b.ptr, b.layout.Size(), layout.Size(), layout.Align())
	}
	if err != nil {
		return err, nil
	}
	st.blocks[step.ID] = block{ptr: ptr, layout: layout}
	return nil, nil
}

// free releases a block or drops a string. A non-zero step size is passed to
// the allocator instead of the block's own size.
func (st *run) free(step Step) (opErr, err error) {
	if s, ok := st.strings[step.ID]; ok {
		s.Drop()
		delete(st.strings, step.ID)
		return nil, nil
	}
	b, err := st.block(step.ID)
	if err != nil {
		return nil, err
	}
	size := b.layout.Size()
	if step.Size != 0 {
		size = uintptr(step.Size)
	}
	st.tr.Free(b.ptr, size, b.layout.Align())
	delete(st.blocks, step.ID)
	return nil, nil
}

func (st *run) expect(step Step) error {
	if step.Value != nil {
		s, ok := st.strings[step.ID]
		if !ok {
			return fmt.Errorf("%w: string %q", ErrUnknownID, step.ID)
		}
		if got := s.AsStr(); got != *step.Value {
			return fmt.Errorf("%w: string %q is %q, want %q", ErrMismatch, step.ID, got, *step.Value)
		}
		return nil
	}

	b, err := st.block(step.ID)
	if err != nil {
		return err
	}
	if step.Offset >= uint64(b.layout.Size()) {
		return fmt.Errorf("%w: offset %d in %d byte block", ErrOutOfRange, step.Offset, b.layout.Size())
	}
	if got := b.bytes()[step.Offset]; got != *step.Byte {
		return fmt.Errorf("%w: byte %d is %#04x, want %#04x", ErrMismatch, step.Offset, got, *step.Byte)
	}
	return nil
}

// text appends a value to a string, creating it on first use. The value is
// encoded to the step's encoding and decoded back by the string.
func (st *run) text(step Step) (opErr, err error) {
	enc, err := lookupEncoding(step.Encoding)
	if err != nil {
		return nil, err
	}

	s, ok := st.strings[step.ID]
	if !ok {
		if st.inUse(step.ID) {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateID, step.ID)
		}
		s = owned.NewString(mem.RefTo(st.tr))
		st.strings[step.ID] = s
	}

	if enc == nil {
		return s.AppendString(*step.Value), nil
	}
	encoded, err := enc.NewEncoder().String(*step.Value)
	if err != nil {
		return nil, fmt.Errorf("encode %q as %s: %w", *step.Value, step.Encoding, err)
	}
	if strings.EqualFold(step.Encoding, EncodingRaw) {
		return s.AppendBytes([]byte(encoded)), nil
	}
	return s.AppendEncoded(enc, []byte(encoded)), nil
}

// inUse reports whether id names a live block or string.
func (st *run) inUse(id string) bool {
	_, isBlock := st.blocks[id]
	_, isString := st.strings[id]
	return isBlock || isString
}

func (st *run) block(id string) (block, error) {
	b, ok := st.blocks[id]
	if !ok {
		return block{}, fmt.Errorf("%w: block %q", ErrUnknownID, id)
	}
	return b, nil
}

func alignOf(step Step) uintptr {
	if step.Align == 0 {
		return 1
	}
	return uintptr(step.Align)
}
