package vector

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

const (
	// CountSize is the size of a vector count or element count field.
	CountSize = 4
	// ValueSize is the size of one encoded element or sum.
	ValueSize = 8
)

// ByteOrder is the byte order of every numeric field on the wire.
var ByteOrder = binary.LittleEndian

// ErrShortBuffer is returned when a field would extend past the end of the
// available bytes.
var ErrShortBuffer = errors.New("vector: short buffer")

// Decoder reads frame fields from a byte slice.
type Decoder struct {
	buf []byte
	off int
}

// NewDecoder returns a Decoder over buf.
func NewDecoder(buf []byte) *Decoder {
	return &Decoder{buf: buf}
}

// Remaining returns the number of unread bytes.
func (d *Decoder) Remaining() int {
	return len(d.buf) - d.off
}

// Offset returns the number of bytes consumed so far.
func (d *Decoder) Offset() int {
	return d.off
}

func (d *Decoder) need(n int) error {
	if n < 0 || d.Remaining() < n {
		return fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrShortBuffer, n, d.off, d.Remaining())
	}
	return nil
}

// Uint32 decodes a count field.
func (d *Decoder) Uint32() (uint32, error) {
	if err := d.need(CountSize); err != nil {
		return 0, err
	}
	v := ByteOrder.Uint32(d.buf[d.off:])
	d.off += CountSize
	return v, nil
}

// Float64 decodes one element.
func (d *Decoder) Float64() (float64, error) {
	if err := d.need(ValueSize); err != nil {
		return 0, err
	}
	v := math.Float64frombits(ByteOrder.Uint64(d.buf[d.off:]))
	d.off += ValueSize
	return v, nil
}

// Float64s decodes n elements, appending them to dst.
// The whole payload is bounds checked before anything is decoded.
func (d *Decoder) Float64s(dst []float64, n uint32) ([]float64, error) {
	size := uint64(n) * ValueSize
	if size > uint64(d.Remaining()) {
		return dst, fmt.Errorf("%w: vector of %d elements needs %d bytes, have %d", ErrShortBuffer, n, size, d.Remaining())
	}
	for i := uint32(0); i < n; i++ {
		dst = append(dst, math.Float64frombits(ByteOrder.Uint64(d.buf[d.off:])))
		d.off += ValueSize
	}
	return dst, nil
}

// Vector decodes one length-prefixed vector.
func (d *Decoder) Vector() ([]float64, error) {
	n, err := d.Uint32()
	if err != nil {
		return nil, fmt.Errorf("decode vector length: %w", err)
	}
	values, err := d.Float64s(make([]float64, 0, min(int(n), d.Remaining()/ValueSize)), n)
	if err != nil {
		return nil, fmt.Errorf("decode vector payload: %w", err)
	}
	return values, nil
}

// AppendUint32 appends a count field to buf.
func AppendUint32(buf []byte, v uint32) []byte {
	return ByteOrder.AppendUint32(buf, v)
}

// AppendFloat64 appends one element or sum to buf.
func AppendFloat64(buf []byte, v float64) []byte {
	return ByteOrder.AppendUint64(buf, math.Float64bits(v))
}

// AppendVector appends a length-prefixed vector to buf.
func AppendVector(buf []byte, values []float64) []byte {
	buf = AppendUint32(buf, uint32(len(values)))
	for _, v := range values {
		buf = AppendFloat64(buf, v)
	}
	return buf
}

// EncodedLen returns the encoded size of a vector with n elements.
func EncodedLen(n int) int {
	return CountSize + n*ValueSize
}

// EncodeBatch encodes the vector count followed by every vector.
func EncodeBatch(vectors [][]float64) []byte {
	size := CountSize
	for _, v := range vectors {
		size += EncodedLen(len(v))
	}
	buf := make([]byte, 0, size)
	buf = AppendUint32(buf, uint32(len(vectors)))
	for _, v := range vectors {
		buf = AppendVector(buf, v)
	}
	return buf
}

// DecodeBatch decodes a complete batch. Trailing bytes after the last vector
// are reported as an error.
func DecodeBatch(buf []byte) ([][]float64, error) {
	d := NewDecoder(buf)
	count, err := d.Uint32()
	if err != nil {
		return nil, fmt.Errorf("decode vector count: %w", err)
	}
	vectors := make([][]float64, 0, min(int(count), d.Remaining()/CountSize))
	for i := uint32(0); i < count; i++ {
		v, err := d.Vector()
		if err != nil {
			return nil, fmt.Errorf("vector %d: %w", i, err)
		}
		vectors = append(vectors, v)
	}
	if d.Remaining() != 0 {
		return nil, fmt.Errorf("decode batch: %d trailing bytes", d.Remaining())
	}
	return vectors, nil
}
