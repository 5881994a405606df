package binary

import (
	"bytes"
	"encoding/binary"
)

// Writer provides buffered writing utilities for ADS record encoding.
type Writer struct {
	buf *bytes.Buffer
}

// NewWriter creates a new Writer.
func NewWriter() *Writer {
	return &Writer{buf: &bytes.Buffer{}}
}

// Bytes returns the written bytes.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// Len returns the number of bytes written.
func (w *Writer) Len() int {
	return w.buf.Len()
}

// WriteBytes writes a byte slice.
func (w *Writer) WriteBytes(data []byte) {
	w.buf.Write(data)
}

// WriteU16LE writes a little-endian uint16.
func (w *Writer) WriteU16LE(v uint16) {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	w.buf.Write(buf[:])
}

// WriteU32LE writes a little-endian uint32.
func (w *Writer) WriteU32LE(v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	w.buf.Write(buf[:])
}

// WriteS32LE writes a little-endian int32.
func (w *Writer) WriteS32LE(v int32) {
	w.WriteU32LE(uint32(v))
}

// WriteCString writes raw string bytes followed by a NUL terminator.
func (w *Writer) WriteCString(b []byte) {
	w.buf.Write(b)
	w.buf.WriteByte(0)
}

// PatchU32LE overwrites four bytes at offset with a little-endian uint32.
func (w *Writer) PatchU32LE(offset int, v uint32) {
	binary.LittleEndian.PutUint32(w.buf.Bytes()[offset:offset+4], v)
}
