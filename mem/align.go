package mem

import (
	"math/bits"
	"strconv"
	"unsafe"

	"github.com/joshuapare/halfbit/internal/num"
)

// Align is a power-of-two alignment. It stores the exponent, so every value of
// the type is valid and the zero value is an alignment of 1.
type Align struct {
	shift uint8
}

// AlignOne is the trivial alignment.
var AlignOne = Align{}

// MaxAlign is the largest alignment representable in a uintptr.
var MaxAlign = Align{shift: bits.UintSize - 1}

// NewAlign returns the alignment n, or ok = false when n is not a power of two.
func NewAlign(n uintptr) (Align, bool) {
	if !num.IsPowerOfTwo(n) {
		return Align{}, false
	}
	return Align{shift: uint8(bits.TrailingZeros64(uint64(n)))}, true
}

// MustAlign is NewAlign for values known to be powers of two, such as unsafe.Alignof results.
func MustAlign(n uintptr) Align {
	a, ok := NewAlign(n)
	if !ok {
		panic("mem: alignment " + strconv.FormatUint(uint64(n), 10) + " is not a power of two")
	}
	return a
}

// AlignFor returns the smallest alignment greater than or equal to n.
// AlignFor(0) is AlignOne. ok is false when no such power of two fits in a uintptr.
func AlignFor(n uintptr) (Align, bool) {
	if n <= 1 {
		return AlignOne, true
	}
	shift := bits.Len64(uint64(n - 1))
	if shift >= bits.UintSize {
		return Align{}, false
	}
	return Align{shift: uint8(shift)}, true
}

// Get returns the alignment in bytes.
func (a Align) Get() uintptr {
	return uintptr(1) << a.shift
}

// Log2 returns the exponent of the alignment.
func (a Align) Log2() uint {
	return uint(a.shift)
}

// Next returns twice the alignment.
func (a Align) Next() (Align, bool) {
	return a.Shl(1)
}

// Prev returns half the alignment; AlignOne has no predecessor.
func (a Align) Prev() (Align, bool) {
	return a.Shr(1)
}

// Shl multiplies the alignment by 2^n.
func (a Align) Shl(n uint) (Align, bool) {
	if n >= bits.UintSize || uint(a.shift)+n >= bits.UintSize {
		return Align{}, false
	}
	return Align{shift: a.shift + uint8(n)}, true
}

// Shr divides the alignment by 2^n.
func (a Align) Shr(n uint) (Align, bool) {
	if n > uint(a.shift) {
		return Align{}, false
	}
	return Align{shift: a.shift - uint8(n)}, true
}

// Mask returns the low bits that must be clear in an aligned value.
func (a Align) Mask() uintptr {
	return a.Get() - 1
}

// IsAligned reports whether v is a multiple of the alignment.
func (a Align) IsAligned(v uintptr) bool {
	return v&a.Mask() == 0
}

// IsPtrAligned reports whether p satisfies the alignment.
func (a Align) IsPtrAligned(p unsafe.Pointer) bool {
	return a.IsAligned(uintptr(p))
}

// Up rounds v up to the alignment. ok is false when the result would overflow.
//
// Example:
//
//	a, _ := NewAlign(8)
//	a.Up(1)  = 8
//	a.Up(8)  = 8
//	a.Up(9)  = 16
func (a Align) Up(v uintptr) (uintptr, bool) {
	return AlignUp(v, a)
}

func (a Align) String() string {
	return strconv.FormatUint(uint64(a.Get()), 10)
}

// AlignUp rounds n up to align, reporting ok = false on overflow.
func AlignUp(n uintptr, align Align) (uintptr, bool) {
	mask := align.Mask()
	aligned := (n + mask) &^ mask
	if aligned < n {
		return 0, false
	}
	return aligned, true
}
