// Package num contains overflow-checked size arithmetic shared by the allocators.
package num

import "math"

// MaxSize is the largest value representable by the address-space size type.
const MaxSize = ^uintptr(0)

// AddChecked adds a and b, returning ok = false when the result would overflow uintptr.
func AddChecked(a, b uintptr) (uintptr, bool) {
	if a > MaxSize-b {
		return 0, false
	}
	return a + b, true
}

// MulChecked multiplies a and b, returning ok = false when the result would overflow uintptr.
// This is what count * elementSize computations in the containers go through.
func MulChecked(a, b uintptr) (uintptr, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if a > MaxSize/b {
		return 0, false
	}
	return a * b, true
}

// IsPowerOfTwo reports whether n is a nonzero power of two.
func IsPowerOfTwo(n uintptr) bool {
	return n != 0 && n&(n-1) == 0
}

// MaxCount returns the largest element count whose byte size fits both uintptr and int.
// Counts above this cannot back a Go slice, so containers never ask for them.
func MaxCount(elemSize uintptr) uintptr {
	if elemSize == 0 {
		return 0
	}
	return uintptr(math.MaxInt) / elemSize
}
