package scenario

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/joshuapare/halfbit/mem"
	"github.com/joshuapare/halfbit/mem/alloc"
)

// Allocator kinds.
const (
	KindBump   = "bump"
	KindSingle = "single"
	KindNull   = "null"
	KindNoHeap = "noheap"
	KindHeap   = "heap"
	KindMmap   = "mmap"
)

// Kinds returns every supported allocator kind.
func Kinds() []string {
	return []string{KindBump, KindSingle, KindNull, KindNoHeap, KindHeap, KindMmap}
}

// NewAllocator builds the allocator described by spec. arenaSize is used for
// buffer-backed kinds when spec.Size is 0. The returned close function
// releases OS resources and is never nil.
func NewAllocator(spec AllocatorSpec, arenaSize int) (mem.Allocator, func() error, error) {
	size := spec.Size
	if size == 0 {
		size = arenaSize
	}
	nop := func() error { return nil }

	switch spec.Kind {
	case KindBump:
		return alloc.NewBump(make([]byte, size)), nop, nil
	case KindSingle:
		return alloc.NewSingle(make([]byte, size)), nop, nil
	case KindNull:
		return alloc.NewNull(), nop, nil
	case KindNoHeap:
		return mem.NoHeap, nop, nil
	case KindHeap:
		return alloc.NewHeap(), nop, nil
	case KindMmap:
		m := alloc.NewMmap()
		return m, m.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownAllocator, spec.Kind)
	}
}

// EncodingRaw appends the Latin-1 bytes of a text value without decoding
// them, so values outside ASCII produce invalid UTF-8.
const EncodingRaw = "raw"

// lookupEncoding maps an encoding name to its x/text encoding. UTF-8 maps to nil.
func lookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(name) {
	case "", "utf8", "utf-8":
		return nil, nil
	case "latin1", "iso-8859-1", EncodingRaw:
		return charmap.ISO8859_1, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	case "utf16le", "utf-16le":
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM), nil
	case "utf16be", "utf-16be":
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}
}
