package store

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"reflect"
)

// writeUvarint/writeBytes/writeString/byteReader mirror the LEB128 helpers
// protocol/leb128.go defines for the operation wire codec; snapshot
// persistence (spec §6) needs the identical length-prefixed varint encoding
// for the same reason: rows hold the same primitives.Amount/ObjectID/
// Authority value types an operation's fields do.
func writeUvarint(buf *bytes.Buffer, x uint64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], x)
	buf.Write(tmp[:n])
}

func writeBytes(buf *bytes.Buffer, b []byte) {
	writeUvarint(buf, uint64(len(b)))
	buf.Write(b)
}

func writeString(buf *bytes.Buffer, s string) {
	writeBytes(buf, []byte(s))
}

type byteReader struct {
	data []byte
	pos  int
}

func (r *byteReader) ReadByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, fmt.Errorf("store: unexpected end of snapshot buffer")
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
		return nil, fmt.Errorf("store: length-prefixed field overruns snapshot buffer")
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

func zigzagEncode(n int64) uint64 { return uint64((n << 1) ^ (n >> 63)) }

func zigzagDecode(u uint64) int64 { return int64(u>>1) ^ -int64(u&1) }

// encodeRowValue and decodeRowValue walk a row struct's exported fields in
// declaration order, the same reflection technique protocol/reflect_codec.go
// applies to operations, trimmed to the value kinds a row can actually hold
// (no Operation interface field ever appears in a table row).
func encodeRowValue(buf *bytes.Buffer, v reflect.Value) error {
	switch v.Kind() {
	case reflect.String:
		writeString(buf, v.String())
		return nil
	case reflect.Bool:
		if v.Bool() {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
		return nil
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uint:
		writeUvarint(buf, v.Uint())
		return nil
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Int:
		writeUvarint(buf, zigzagEncode(v.Int()))
		return nil
	case reflect.Ptr:
		if v.IsNil() {
			buf.WriteByte(0)
			return nil
		}
		buf.WriteByte(1)
		return encodeRowValue(buf, v.Elem())
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			writeBytes(buf, v.Bytes())
			return nil
		}
		writeUvarint(buf, uint64(v.Len()))
		for i := 0; i < v.Len(); i++ {
			if err := encodeRowValue(buf, v.Index(i)); err != nil {
				return err
			}
		}
		return nil
	case reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if err := encodeRowValue(buf, v.Index(i)); err != nil {
				return err
			}
		}
		return nil
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			field := v.Type().Field(i)
			if field.PkgPath != "" {
				continue
			}
			if err := encodeRowValue(buf, v.Field(i)); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("store: encodeRowValue: unsupported kind %s", v.Kind())
	}
}

func decodeRowValue(r *byteReader, v reflect.Value) error {
	switch v.Kind() {
	case reflect.String:
		s, err := readString(r)
		if err != nil {
			return err
		}
		v.SetString(s)
		return nil
	case reflect.Bool:
		b, err := r.ReadByte()
		if err != nil {
			return err
		}
		v.SetBool(b != 0)
		return nil
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uint:
		n, err := readUvarint(r)
		if err != nil {
			return err
		}
		v.SetUint(n)
		return nil
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Int:
		n, err := readUvarint(r)
		if err != nil {
			return err
		}
		v.SetInt(zigzagDecode(n))
		return nil
	case reflect.Ptr:
		present, err := r.ReadByte()
		if err != nil {
			return err
		}
		if present == 0 {
			v.Set(reflect.Zero(v.Type()))
			return nil
		}
		elem := reflect.New(v.Type().Elem())
		if err := decodeRowValue(r, elem.Elem()); err != nil {
			return err
		}
		v.Set(elem)
		return nil
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			b, err := readBytes(r)
			if err != nil {
				return err
			}
			v.SetBytes(b)
			return nil
		}
		n, err := readUvarint(r)
		if err != nil {
			return err
		}
		out := reflect.MakeSlice(v.Type(), int(n), int(n))
		for i := 0; i < int(n); i++ {
			if err := decodeRowValue(r, out.Index(i)); err != nil {
				return err
			}
		}
		v.Set(out)
		return nil
	case reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if err := decodeRowValue(r, v.Index(i)); err != nil {
				return err
			}
		}
		return nil
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			field := v.Type().Field(i)
			if field.PkgPath != "" {
				continue
			}
			if err := decodeRowValue(r, v.Field(i)); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("store: decodeRowValue: unsupported kind %s", v.Kind())
	}
}
