package ecs

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// WriteValue writes fixed-size data (numbers, bools, arrays and structs of
// them) in the stream's byte order. Component Serialize methods use it to keep
// their payload symmetric with ReadValue.
func WriteValue(w io.Writer, data any) error {
	return binary.Write(w, byteOrder, data)
}

// ReadValue reads fixed-size data written by WriteValue into data, which must
// be a pointer.
func ReadValue(r io.Reader, data any) error {
	return binary.Read(r, byteOrder, data)
}

// WriteString writes s with a u16 length prefix.
func WriteString(w io.Writer, s string) error {
	if len(s) > math.MaxUint16 {
		return fmt.Errorf("string of %d bytes exceeds payload limit", len(s))
	}
	if err := binary.Write(w, byteOrder, uint16(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

// ReadString reads a string written by WriteString.
func ReadString(r io.Reader) (string, error) {
	var n uint16
	if err := binary.Read(r, byteOrder, &n); err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}
