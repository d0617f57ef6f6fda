// Package owned provides containers whose payload lives in memory obtained
// from a mem.Allocator instead of the Go heap.
//
// # Containers
//
//   - Box: a single value
//   - Vector: a growable array
//   - String: a growable UTF-8 string (a byte Vector that only accepts valid UTF-8)
//   - Rc and Weak: a shared, reference-counted value with weak handles
//
// Each container remembers the mem.Ref it was built from and returns its
// memory there on Drop. Drop is explicit and idempotent; a container that is
// never dropped leaks its block in the allocator.
//
// # Element Types
//
// Allocator memory is not scanned by the garbage collector, so element types
// must not contain Go pointers (pointers, strings, slices, maps, channels,
// functions or interfaces). Constructors panic when given such a type.
// Vector additionally rejects zero-sized element types.
//
// If *T implements Dropper, Drop is called on each stored value before its
// memory is released.
//
// # Failure Handling
//
// A failed Push or NewBox stores nothing: the caller still holds its value
// and the container is unchanged. String mutators reject invalid UTF-8 with
// ErrInvalidUTF8 and leave the content untouched.
//
// # Thread Safety
//
// Containers are not thread-safe, and neither are the reference counts of Rc.
package owned
