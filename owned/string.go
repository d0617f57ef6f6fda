package owned

import (
	"errors"
	"fmt"
	"unicode/utf8"
	"unsafe"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"

	"github.com/joshuapare/halfbit/mem"
)

// decodeChunk is the size of the fixed buffer AppendEncoded decodes through.
const decodeChunk = 256

// String is a growable UTF-8 string stored in allocator memory. Every
// mutation keeps the content valid UTF-8.
//
// String implements io.Writer and io.StringWriter, so fmt.Fprintf can format
// straight into it.
type String struct {
	data Vector[byte]
}

// NewString returns an empty string that allocates from ref.
func NewString(ref mem.Ref) *String {
	return &String{data: Vector[byte]{ref: ref}}
}

// MapString returns a read-only view over s. Growing mutations fail with
// mem.ErrUnsupportedOperation.
func MapString(s string) *String {
	return &String{data: Vector[byte]{
		ref:      mem.RefTo(mem.Nop),
		ptr:      unsafe.StringData(s),
		len:      len(s),
		borrowed: true,
	}}
}

// Len returns the length in bytes.
func (s *String) Len() int { return s.data.Len() }

// Allocator returns the handle the string allocates from.
func (s *String) Allocator() mem.Ref { return s.data.Allocator() }

// Push appends the UTF-8 encoding of r. Invalid runes are encoded as U+FFFD.
func (s *String) Push(r rune) error {
	_, err := s.WriteRune(r)
	return err
}

// AppendString appends str, which must be valid UTF-8.
func (s *String) AppendString(str string) error {
	if !utf8.ValidString(str) {
		return ErrInvalidUTF8
	}
	return s.data.AppendSlice(unsafe.Slice(unsafe.StringData(str), len(str)))
}

// AppendBytes appends b, which must be valid UTF-8.
func (s *String) AppendBytes(b []byte) error {
	if !utf8.Valid(b) {
		return ErrInvalidUTF8
	}
	return s.data.AppendSlice(b)
}

// Write implements io.Writer. Nothing is written unless all of p is.
func (s *String) Write(p []byte) (int, error) {
	if err := s.AppendBytes(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// WriteString implements io.StringWriter.
func (s *String) WriteString(str string) (int, error) {
	if err := s.AppendString(str); err != nil {
		return 0, err
	}
	return len(str), nil
}

// WriteRune appends r and returns the number of bytes written.
func (s *String) WriteRune(r rune) (int, error) {
	var buf [utf8.UTFMax]byte
	n := utf8.EncodeRune(buf[:], r)
	if err := s.data.AppendSlice(buf[:n]); err != nil {
		return 0, err
	}
	return n, nil
}

// Printf appends formatted text.
func (s *String) Printf(format string, args ...any) error {
	_, err := fmt.Fprintf(s, format, args...)
	return err
}

// AppendEncoded decodes src from enc (for example charmap.ISO8859_1 or
// unicode.UTF16) and appends the UTF-8 result. Decoding goes through a fixed
// stack buffer, so no Go heap memory is used for the output. Decoders that
// pass bytes through unchecked (encoding.Nop) are validated afterwards and
// fail with ErrInvalidUTF8. On failure the string is left as it was.
func (s *String) AppendEncoded(enc encoding.Encoding, src []byte) error {
	start := s.data.Len()
	dec := enc.NewDecoder()
	var buf [decodeChunk]byte
	for {
		nDst, nSrc, err := dec.Transform(buf[:], src, true)
		if appendErr := s.data.AppendSlice(buf[:nDst]); appendErr != nil {
			s.data.len = start
			return appendErr
		}
		src = src[nSrc:]
		switch {
		case err == nil:
			if !utf8.Valid(s.data.Slice()[start:]) {
				s.data.len = start
				return ErrInvalidUTF8
			}
			return nil
		case errors.Is(err, transform.ErrShortDst) && (nDst > 0 || nSrc > 0):
			continue
		default:
			s.data.len = start
			return fmt.Errorf("decode %d bytes: %w", len(src), err)
		}
	}
}

// AsStr returns the content as a string aliasing the storage. It is valid
// until the next mutation or Drop; use String for a stable copy.
func (s *String) AsStr() string {
	if s.data.len == 0 {
		return ""
	}
	return unsafe.String(s.data.ptr, s.data.len)
}

// String returns a copy of the content on the Go heap.
func (s *String) String() string {
	return string(s.Bytes())
}

// Bytes returns the content aliasing the storage.
func (s *String) Bytes() []byte { return s.data.Slice() }

// Dup copies the string into a new one allocating from ref. On failure the
// receiver is untouched and nothing is leaked.
func (s *String) Dup(ref mem.Ref) (*String, error) {
	d := NewString(ref)
	if err := d.data.AppendSlice(s.data.Slice()); err != nil {
		d.Drop()
		return nil, err
	}
	return d, nil
}

// Drop frees the storage. The string is left empty and may be reused.
func (s *String) Drop() { s.data.Drop() }
