package protocol

import (
	"bytes"
	"fmt"
	"reflect"
)

// encodeValue and decodeValue implement the "Glue" reflection-based wire
// encoder spec §2 calls for ("Reflection for wire encoding"). Every
// operation struct's exported fields are walked in declaration order and
// written LEB128-length-prefixed/little-endian per spec §6, so adding a new
// operation kind never requires hand-written marshal code — only a struct
// definition, a Validate(), and a RequiredAuth().
func encodeValue(buf *bytes.Buffer, v reflect.Value) error {
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
		return encodeValue(buf, v.Elem())
	case reflect.Interface:
		op, ok := v.Interface().(Operation)
		if !ok {
			return fmt.Errorf("protocol: encodeValue: unsupported interface %s", v.Type())
		}
		return EncodeOperation(buf, op)
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			writeBytes(buf, v.Bytes())
			return nil
		}
		writeUvarint(buf, uint64(v.Len()))
		for i := 0; i < v.Len(); i++ {
			if err := encodeValue(buf, v.Index(i)); err != nil {
				return err
			}
		}
		return nil
	case reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if err := encodeValue(buf, v.Index(i)); err != nil {
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
			if err := encodeValue(buf, v.Field(i)); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("protocol: encodeValue: unsupported kind %s", v.Kind())
	}
}

func decodeValue(r *byteReader, v reflect.Value) error {
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
		if err := decodeValue(r, elem.Elem()); err != nil {
			return err
		}
		v.Set(elem)
		return nil
	case reflect.Interface:
		if v.Type() != operationInterfaceType {
			return fmt.Errorf("protocol: decodeValue: unsupported interface %s", v.Type())
		}
		op, err := DecodeOperation(r)
		if err != nil {
			return err
		}
		v.Set(reflect.ValueOf(op))
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
			if err := decodeValue(r, out.Index(i)); err != nil {
				return err
			}
		}
		v.Set(out)
		return nil
	case reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if err := decodeValue(r, v.Index(i)); err != nil {
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
			if err := decodeValue(r, v.Field(i)); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("protocol: decodeValue: unsupported kind %s", v.Kind())
	}
}

func zigzagEncode(n int64) uint64 {
	return uint64((n << 1) ^ (n >> 63))
}

func zigzagDecode(u uint64) int64 {
	return int64(u>>1) ^ -int64(u&1)
}

// EncodeOperation writes an operation's tag byte followed by its
// reflection-encoded body.
func EncodeOperation(buf *bytes.Buffer, op Operation) error {
	buf.WriteByte(byte(op.Tag()))
	v := reflect.ValueOf(op)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	return encodeValue(buf, v)
}

// DecodeOperation reads a tag byte and reflection-decodes the matching
// operation body using the registered constructor for that tag.
func DecodeOperation(r *byteReader) (Operation, error) {
	tagByte, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	tag := OperationType(tagByte)
	ctor, ok := operationRegistry[tag]
	if !ok {
		return nil, fmt.Errorf("protocol: unknown operation tag %d", tag)
	}
	op := ctor()
	v := reflect.ValueOf(op)
	if v.Kind() != reflect.Ptr {
		return nil, fmt.Errorf("protocol: operation constructor for %s must return a pointer", tag)
	}
	if err := decodeValue(r, v.Elem()); err != nil {
		return nil, err
	}
	return op, nil
}

// DecodeOperationBytes decodes a single tag-prefixed operation previously
// produced by EncodeOperation, used by proposal execution to replay a
// stored inner operation (spec §3's Proposal entity).
func DecodeOperationBytes(data []byte) (Operation, error) {
	r := &byteReader{data: data}
	return DecodeOperation(r)
}

// operationRegistry maps each tag to a zero-value constructor; every op_*.go
// file registers its kind in an init().
var operationRegistry = make(map[OperationType]func() Operation)

// operationInterfaceType lets decodeValue tell an Operation-typed interface
// field (e.g. a proposal's inner operations) apart from any other interface
// kind, which the reflection codec otherwise refuses to handle.
var operationInterfaceType = reflect.TypeOf((*Operation)(nil)).Elem()

func register(tag OperationType, ctor func() Operation) {
	operationRegistry[tag] = ctor
}
