// Package binio provides fixed-width little-endian scalar and
// NUL-padded ASCII field helpers shared by every wire codec in this
// module (WAD directory, TEXTURE1/2, PNAMES, ANIMATED, SWITCHES).
package binio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// ReadUint16 reads a little-endian uint16.
func ReadUint16(r io.Reader) (uint16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf[:]), nil
}

// ReadInt16 reads a little-endian int16.
func ReadInt16(r io.Reader) (int16, error) {
	v, err := ReadUint16(r)
	return int16(v), err
}

// ReadUint32 reads a little-endian uint32.
func ReadUint32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

// ReadInt32 reads a little-endian int32.
func ReadInt32(r io.Reader) (int32, error) {
	v, err := ReadUint32(r)
	return int32(v), err
}

// WriteUint16 appends a little-endian uint16 to buf.
func WriteUint16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

// WriteInt16 appends a little-endian int16 to buf.
func WriteInt16(buf *bytes.Buffer, v int16) {
	WriteUint16(buf, uint16(v))
}

// WriteUint32 appends a little-endian uint32 to buf.
func WriteUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

// WriteInt32 appends a little-endian int32 to buf.
func WriteInt32(buf *bytes.Buffer, v int32) {
	WriteUint32(buf, uint32(v))
}

// ReadName reads width bytes and trims the trailing NUL padding,
// returning the ASCII name held inside.
func ReadName(r io.Reader, width int) (string, error) {
	raw := make([]byte, width)
	if _, err := io.ReadFull(r, raw); err != nil {
		return "", err
	}
	return TrimName(raw), nil
}

// TrimName trims a fixed-width NUL-padded ASCII field down to its
// content; a name is terminated by the first NUL byte, or runs the
// full field width if none is present.
func TrimName(raw []byte) string {
	if i := bytes.IndexByte(raw, 0); i >= 0 {
		return string(raw[:i])
	}
	return string(raw)
}

// PutName writes name into a fixed-width NUL-padded ASCII field,
// truncating names longer than width and padding shorter ones.
func PutName(buf *bytes.Buffer, name string, width int) {
	field := make([]byte, width)
	copy(field, name)
	buf.Write(field)
}

// FormatName renders name into a width-byte NUL-padded field without
// a bytes.Buffer, for callers building fixed records directly.
func FormatName(name string, width int) []byte {
	field := make([]byte, width)
	copy(field, name)
	return field
}

// ErrUnexpectedEOF labels a read error with what was being read. A
// bare io.EOF is reported as io.ErrUnexpectedEOF, since callers use
// it only where more bytes were required; any other error is wrapped
// unchanged.
func ErrUnexpectedEOF(what string, err error) error {
	if err == io.EOF {
		return fmt.Errorf("%s: truncated: %w", what, io.ErrUnexpectedEOF)
	}
	return fmt.Errorf("%s: %w", what, err)
}
