package polar

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// writer appends big endian values to a byte buffer. Writes to a bytes.Buffer cannot fail, so no
// method returns an error.
type writer struct {
	buf *bytes.Buffer
}

func newWriter() *writer {
	return &writer{buf: new(bytes.Buffer)}
}

func (w *writer) Bytes() []byte { return w.buf.Bytes() }

func (w *writer) Bool(v bool) {
	if v {
		w.buf.WriteByte(1)
	} else {
		w.buf.WriteByte(0)
	}
}

func (w *writer) Byte(v byte) { w.buf.WriteByte(v) }

func (w *writer) Int16(v int16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], uint16(v))
	w.buf.Write(b[:])
}

func (w *writer) Int32(v int32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(v))
	w.buf.Write(b[:])
}

func (w *writer) Int64(v int64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(v))
	w.buf.Write(b[:])
}

// VarInt writes v in the 7 bits per byte form used by the Minecraft protocol. Negative values
// always take five bytes.
func (w *writer) VarInt(v int32) {
	u := uint32(v)
	for u >= 0x80 {
		w.buf.WriteByte(byte(u) | 0x80)
		u >>= 7
	}
	w.buf.WriteByte(byte(u))
}

func (w *writer) Raw(b []byte) { w.buf.Write(b) }

// ByteArray writes b prefixed with its length.
func (w *writer) ByteArray(b []byte) {
	w.VarInt(int32(len(b)))
	w.buf.Write(b)
}

func (w *writer) String(s string) {
	w.VarInt(int32(len(s)))
	w.buf.WriteString(s)
}

func (w *writer) Strings(l []string) {
	w.VarInt(int32(len(l)))
	for _, s := range l {
		w.String(s)
	}
}

func (w *writer) LongArray(l []int64) {
	w.VarInt(int32(len(l)))
	for _, v := range l {
		w.Int64(v)
	}
}

// errVarIntTooBig is returned when a VarInt is longer than five bytes.
var errVarIntTooBig = errors.New("varint too big")

// reader reads the values written by writer.
type reader struct {
	r *bytes.Reader
}

func newReader(b []byte) *reader {
	return &reader{r: bytes.NewReader(b)}
}

func (r *reader) Len() int { return r.r.Len() }

func (r *reader) Bool() (bool, error) {
	b, err := r.Byte()
	return b != 0, err
}

func (r *reader) Byte() (byte, error) {
	b, err := r.r.ReadByte()
	if err != nil {
		return 0, io.ErrUnexpectedEOF
	}
	return b, nil
}

func (r *reader) Int16() (int16, error) {
	var b [2]byte
	if _, err := io.ReadFull(r.r, b[:]); err != nil {
		return 0, io.ErrUnexpectedEOF
	}
	return int16(binary.BigEndian.Uint16(b[:])), nil
}

func (r *reader) Int32() (int32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r.r, b[:]); err != nil {
		return 0, io.ErrUnexpectedEOF
	}
	return int32(binary.BigEndian.Uint32(b[:])), nil
}

func (r *reader) Int64() (int64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r.r, b[:]); err != nil {
		return 0, io.ErrUnexpectedEOF
	}
	return int64(binary.BigEndian.Uint64(b[:])), nil
}

func (r *reader) VarInt() (int32, error) {
	var v uint32
	for i := 0; i < 5; i++ {
		b, err := r.Byte()
		if err != nil {
			return 0, err
		}
		v |= uint32(b&0x7f) << (7 * i)
		if b&0x80 == 0 {
			return int32(v), nil
		}
	}
	return 0, errVarIntTooBig
}

// length reads a VarInt length prefix and checks it against the bytes left, each element taking
// at least size bytes.
func (r *reader) length(size int) (int, error) {
	n, err := r.VarInt()
	if err != nil {
		return 0, err
	}
	if n < 0 || int64(n)*int64(size) > int64(r.r.Len()) {
		return 0, fmt.Errorf("invalid length %d with %d bytes left", n, r.r.Len())
	}
	return int(n), nil
}

func (r *reader) Raw(n int) ([]byte, error) {
	if n < 0 || n > r.r.Len() {
		return nil, io.ErrUnexpectedEOF
	}
	b := make([]byte, n)
	_, _ = io.ReadFull(r.r, b)
	return b, nil
}

func (r *reader) ByteArray() ([]byte, error) {
	n, err := r.length(1)
	if err != nil {
		return nil, err
	}
	return r.Raw(n)
}

func (r *reader) String() (string, error) {
	b, err := r.ByteArray()
	return string(b), err
}

func (r *reader) Strings() ([]string, error) {
	n, err := r.length(1)
	if err != nil {
		return nil, err
	}
	l := make([]string, n)
	for i := range l {
		if l[i], err = r.String(); err != nil {
			return nil, err
		}
	}
	return l, nil
}

func (r *reader) LongArray() ([]int64, error) {
	n, err := r.length(8)
	if err != nil {
		return nil, err
	}
	l := make([]int64, n)
	for i := range l {
		if l[i], err = r.Int64(); err != nil {
			return nil, err
		}
	}
	return l, nil
}
