package binary

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"golang.org/x/text/encoding/charmap"
)

// ErrMissingTerminator is returned when a string field is not followed by NUL.
var ErrMissingTerminator = errors.New("string field not NUL terminated")

// Reader walks a byte slice with position tracking and fixed-width
// little-endian read methods for ADS upload records.
type Reader struct {
	data []byte
	pos  int
}

// NewReader creates a new Reader over data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Position returns the current byte position.
func (r *Reader) Position() int {
	return r.pos
}

// Len returns the number of unread bytes.
func (r *Reader) Len() int {
	return len(r.data) - r.pos
}

// Seek moves to an absolute position within the data.
func (r *Reader) Seek(pos int) error {
	if pos < 0 || pos > len(r.data) {
		return r.WrapError("seek", fmt.Errorf("position %d outside [0,%d]", pos, len(r.data)))
	}
	r.pos = pos
	return nil
}

// Skip advances the position by n bytes.
func (r *Reader) Skip(n int) error {
	if n < 0 || n > r.Len() {
		return r.WrapError("skip", io.ErrUnexpectedEOF)
	}
	r.pos += n
	return nil
}

// ReadByte reads a single byte and advances the position.
func (r *Reader) ReadByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

// ReadBytes reads exactly n bytes. The returned slice aliases the input.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 || n > r.Len() {
		return nil, r.WrapError("", io.ErrUnexpectedEOF)
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// ReadU16LE reads a little-endian uint16.
func (r *Reader) ReadU16LE() (uint16, error) {
	buf, err := r.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf), nil
}

// ReadU32LE reads a little-endian uint32.
func (r *Reader) ReadU32LE() (uint32, error) {
	buf, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf), nil
}

// ReadS32LE reads a little-endian int32.
func (r *Reader) ReadS32LE() (int32, error) {
	v, err := r.ReadU32LE()
	return int32(v), err
}

// ReadString reads a Latin-1 string of n bytes followed by a NUL terminator.
func (r *Reader) ReadString(n int) (string, error) {
	raw, err := r.ReadBytes(n)
	if err != nil {
		return "", err
	}
	term, err := r.ReadByte()
	if err != nil {
		return "", r.WrapError("", io.ErrUnexpectedEOF)
	}
	if term != 0 {
		return "", r.WrapError("", ErrMissingTerminator)
	}
	return DecodeLatin1(raw)
}

// DecodeLatin1 converts ISO 8859-1 bytes to a Go string.
func DecodeLatin1(b []byte) (string, error) {
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// EncodeLatin1 converts a Go string to ISO 8859-1 bytes. Runes outside
// Latin-1 are an error.
func EncodeLatin1(s string) ([]byte, error) {
	return charmap.ISO8859_1.NewEncoder().Bytes([]byte(s))
}

// ParseError represents an error during binary parsing with position information.
type ParseError struct {
	Err      error
	Section  string
	Position int
}

func (e *ParseError) Error() string {
	if e.Section != "" {
		return fmt.Sprintf("ads: %s at position %d: %v", e.Section, e.Position, e.Err)
	}
	return fmt.Sprintf("ads: at position %d: %v", e.Position, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// WrapError creates a ParseError with the current position.
func (r *Reader) WrapError(section string, err error) error {
	return &ParseError{
		Position: r.pos,
		Section:  section,
		Err:      err,
	}
}
