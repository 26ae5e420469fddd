package protocol

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// writeUvarint appends x as an unsigned LEB128 varint, the length prefix
// spec §6 uses for every variable-length field.
func writeUvarint(buf *bytes.Buffer, x uint64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], x)
	buf.Write(tmp[:n])
}

// writeBytes writes a LEB128 length prefix followed by the raw bytes.
func writeBytes(buf *bytes.Buffer, b []byte) {
	writeUvarint(buf, uint64(len(b)))
	buf.Write(b)
}

// writeString writes a LEB128-length-prefixed UTF-8 string.
func writeString(buf *bytes.Buffer, s string) {
	writeBytes(buf, []byte(s))
}

// byteReader is the minimal surface binary.ReadUvarint needs, wrapping a
// byte slice cursor.
type byteReader struct {
	data []byte
	pos  int
}

func (r *byteReader) ReadByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, fmt.Errorf("protocol: unexpected end of buffer")
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

func readUvarint(r *byteReader) (uint64, error) {
	return binary.ReadUvarint(r)
}

func readBytes(r *byteReader) ([]byte, error) {
	n, err := readUvarint(r)
	if err != nil {
		return nil, err
	}
	if uint64(r.pos)+n > uint64(len(r.data)) {
		return nil, fmt.Errorf("protocol: length-prefixed field overruns buffer")
	}
	out := make([]byte, n)
	copy(out, r.data[r.pos:r.pos+int(n)])
	r.pos += int(n)
	return out, nil
}

func readString(r *byteReader) (string, error) {
	b, err := readBytes(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
