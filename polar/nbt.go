package polar

import (
	"bytes"
	"fmt"
	"io"

	"github.com/sandertv/gophertunnel/minecraft/nbt"
)

const tagCompound = 10

// marshalNetworkNBT encodes m as a nameless big endian compound: the tag type directly followed by
// the payload. The gophertunnel encoder always writes a root name, so the two byte length of the
// empty name is cut out.
func marshalNetworkNBT(m map[string]any) ([]byte, error) {
	b, err := nbt.MarshalEncoding(m, nbt.BigEndian)
	if err != nil {
		return nil, err
	}
	if len(b) < 3 || b[0] != tagCompound || b[1] != 0 || b[2] != 0 {
		return nil, fmt.Errorf("unexpected root of encoded compound")
	}
	return append(b[:1], b[3:]...), nil
}

// unnamedReader feeds the decoder an empty root name before the rest of a nameless compound.
type unnamedReader struct {
	prefix []byte
	r      *bytes.Reader
}

func (u *unnamedReader) Read(p []byte) (int, error) {
	if len(u.prefix) != 0 {
		n := copy(p, u.prefix)
		u.prefix = u.prefix[n:]
		return n, nil
	}
	return u.r.Read(p)
}

func (u *unnamedReader) ReadByte() (byte, error) {
	if len(u.prefix) != 0 {
		b := u.prefix[0]
		u.prefix = u.prefix[1:]
		return b, nil
	}
	return u.r.ReadByte()
}

// NetworkNBT decodes a nameless compound from the reader, leaving it positioned right after
// the compound.
func (r *reader) NetworkNBT() (map[string]any, error) {
	t, err := r.Byte()
	if err != nil {
		return nil, err
	}
	if t != tagCompound {
		return nil, fmt.Errorf("expected compound tag, got %d", t)
	}
	var m map[string]any
	dec := nbt.NewDecoderWithEncoding(&unnamedReader{prefix: []byte{tagCompound, 0, 0}, r: r.r}, nbt.BigEndian)
	if err := dec.Decode(&m); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("decode nbt: %w", err)
	}
	return m, nil
}
