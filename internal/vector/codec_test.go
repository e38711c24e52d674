package vector

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecoder_Fields(t *testing.T) {
	buf := AppendUint32(nil, 3)
	buf = AppendFloat64(buf, 1.5)

	d := NewDecoder(buf)
	n, err := d.Uint32()
	require.NoError(t, err)
	assert.Equal(t, uint32(3), n)

	v, err := d.Float64()
	require.NoError(t, err)
	assert.Equal(t, 1.5, v)
	assert.Equal(t, 0, d.Remaining())
	assert.Equal(t, CountSize+ValueSize, d.Offset())
}

func TestDecoder_LittleEndian(t *testing.T) {
	buf := AppendUint32(nil, 1)
	assert.Equal(t, []byte{1, 0, 0, 0}, buf)

	buf = AppendFloat64(nil, 1.0)
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0xf0, 0x3f}, buf)
}

func TestDecoder_BoundsChecks(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
		read func(*Decoder) error
	}{
		{"uint32 from empty", nil, func(d *Decoder) error { _, err := d.Uint32(); return err }},
		{"uint32 from 3 bytes", []byte{1, 2, 3}, func(d *Decoder) error { _, err := d.Uint32(); return err }},
		{"float64 from 7 bytes", make([]byte, 7), func(d *Decoder) error { _, err := d.Float64(); return err }},
		{"payload larger than buffer", make([]byte, 16), func(d *Decoder) error { _, err := d.Float64s(nil, 3); return err }},
		{"declared length past end", AppendUint32(nil, math.MaxUint32), func(d *Decoder) error { _, err := d.Vector(); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDecoder(tt.buf)
			err := tt.read(d)
			require.ErrorIs(t, err, ErrShortBuffer)
		})
	}
}

func TestDecoder_FailedReadDoesNotAdvance(t *testing.T) {
	d := NewDecoder(make([]byte, 12))
	_, err := d.Float64s(nil, 2)
	require.ErrorIs(t, err, ErrShortBuffer)
	assert.Equal(t, 0, d.Offset())
}

func TestVector_ZeroLength(t *testing.T) {
	buf := AppendVector(nil, nil)
	assert.Len(t, buf, CountSize)

	d := NewDecoder(buf)
	v, err := d.Vector()
	require.NoError(t, err)
	assert.Empty(t, v)
	assert.Equal(t, CountSize, d.Offset())
	assert.Equal(t, 0.0, Sum(v))
}

func TestBatch_RoundTripIsBitExact(t *testing.T) {
	in := [][]float64{
		{1, 2, 3},
		{},
		{math.Inf(1), math.Inf(-1), math.Copysign(0, -1), math.SmallestNonzeroFloat64, math.MaxFloat64},
		{math.Float64frombits(0x7ff8000000000123)},
	}

	buf := EncodeBatch(in)
	assert.Len(t, buf, CountSize+EncodedLen(3)+EncodedLen(0)+EncodedLen(5)+EncodedLen(1))

	out, err := DecodeBatch(buf)
	require.NoError(t, err)
	require.Len(t, out, len(in))
	for i := range in {
		require.Len(t, out[i], len(in[i]))
		for j := range in[i] {
			assert.Equal(t, math.Float64bits(in[i][j]), math.Float64bits(out[i][j]), "vector %d element %d", i, j)
		}
	}
}

func TestDecodeBatch_Errors(t *testing.T) {
	full := EncodeBatch([][]float64{{1, 2}})

	t.Run("truncated payload", func(t *testing.T) {
		_, err := DecodeBatch(full[:len(full)-1])
		require.ErrorIs(t, err, ErrShortBuffer)
	})

	t.Run("missing vector", func(t *testing.T) {
		buf := AppendUint32(nil, 2)
		buf = AppendVector(buf, []float64{1})
		_, err := DecodeBatch(buf)
		require.ErrorIs(t, err, ErrShortBuffer)
	})

	t.Run("trailing bytes", func(t *testing.T) {
		_, err := DecodeBatch(append(full, 0))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "trailing")
	})

	t.Run("empty batch", func(t *testing.T) {
		out, err := DecodeBatch(AppendUint32(nil, 0))
		require.NoError(t, err)
		assert.Empty(t, out)
	})
}
