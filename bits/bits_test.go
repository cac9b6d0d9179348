package bits_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/outofforest/noun/bits"
	"github.com/outofforest/noun/types"
)

func TestWriteBitsLayout(t *testing.T) {
	requireT := require.New(t)

	w := bits.NewWriter()
	w.WriteBits(0b01, 2)
	w.WriteBits(0b1, 1)

	// Bit 0 lands in the least significant bit of the first byte.
	requireT.Equal([]byte{0b101}, w.Bytes())
	requireT.Equal(types.BitCount(3), w.Len())
}

func TestWriteBitsAcrossBytes(t *testing.T) {
	requireT := require.New(t)

	w := bits.NewWriter()
	w.WriteBits(0x3f, 6)
	w.WriteBits(0x0, 4)
	w.WriteBits(0xff, 6)

	requireT.Equal(types.BitCount(16), w.Len())
	requireT.Equal([]byte{0x3f, 0xfc}, w.Bytes())
}

func TestWriteBitsMasksValue(t *testing.T) {
	requireT := require.New(t)

	w := bits.NewWriter()
	w.WriteBits(0xff, 3)

	requireT.Equal([]byte{0x07}, w.Bytes())
}

func TestWriteBytesBits(t *testing.T) {
	requireT := require.New(t)

	w := bits.NewWriter()
	w.WriteBits(1, 1)
	w.WriteBytesBits([]byte{0xab, 0xcd, 0x01}, 17)

	r := bits.NewReader(w.Bytes())
	v, err := r.ReadBits(1)
	requireT.NoError(err)
	requireT.Equal(uint64(1), v)

	b, err := r.ReadBytesBits(17)
	requireT.NoError(err)
	requireT.Equal([]byte{0xab, 0xcd, 0x01}, b)
}

func TestCopyWithin(t *testing.T) {
	requireT := require.New(t)

	w := bits.NewWriter()
	w.WriteBits(0b1011, 4)
	w.WriteBits(0b0, 3)
	w.CopyWithin(0, 4)

	r := bits.NewReader(w.Bytes())
	v, err := r.ReadBits(11)
	requireT.NoError(err)
	requireT.Equal(uint64(0b1011_000_1011), v)
}

func TestCopyWithinLongRange(t *testing.T) {
	requireT := require.New(t)

	w := bits.NewWriter()
	for i := range uint64(10) {
		w.WriteBits(i*0x9e3779b97f4a7c15, 64)
	}
	w.CopyWithin(3, 200)
	w.WriteBits(1, 1)

	r := bits.NewReader(w.Bytes())
	for range 10 {
		_, err := r.ReadBits(64)
		requireT.NoError(err)
	}

	copied, err := r.ReadBytesBits(200)
	requireT.NoError(err)

	r2 := bits.NewReader(w.Bytes())
	_, err = r2.ReadBits(3)
	requireT.NoError(err)
	expected, err := r2.ReadBytesBits(200)
	requireT.NoError(err)

	requireT.Equal(expected, copied)
}

func TestRealSize(t *testing.T) {
	requireT := require.New(t)

	requireT.Equal(types.BitCount(0), bits.RealSize(nil))
	requireT.Equal(types.BitCount(0), bits.RealSize([]byte{0x00, 0x00}))
	requireT.Equal(types.BitCount(1), bits.RealSize([]byte{0x01}))
	requireT.Equal(types.BitCount(2), bits.RealSize([]byte{0x02}))
	requireT.Equal(types.BitCount(8), bits.RealSize([]byte{0x80}))
	requireT.Equal(types.BitCount(9), bits.RealSize([]byte{0xff, 0x01}))
	requireT.Equal(types.BitCount(16), bits.RealSize([]byte{0x00, 0x80}))
	requireT.Equal(types.BitCount(9), bits.RealSize([]byte{0xff, 0x01, 0x00, 0x00}))
}

func TestRealSizeOfWriterOutput(t *testing.T) {
	requireT := require.New(t)

	// A stream ending with a set bit keeps its length through the envelope.
	w := bits.NewWriter()
	w.WriteBits(0b10_0000_0001, 10)
	requireT.Equal(w.Len(), bits.RealSize(w.Bytes()))
}

func TestReverseBytes(t *testing.T) {
	requireT := require.New(t)

	requireT.Equal([]byte{}, bits.ReverseBytes(nil))
	requireT.Equal([]byte{0x01, 0x02, 0x03}, bits.ReverseBytes([]byte{0x03, 0x02, 0x01}))

	b := []byte{0xde, 0xad, 0xbe, 0xef}
	requireT.Equal(b, bits.ReverseBytes(bits.ReverseBytes(b)))

	requireT.Equal(types.BitCount(24), bits.RealSize(bits.ReverseBytes([]byte{0x80, 0x00, 0x01})))
}

func TestReaderBounds(t *testing.T) {
	requireT := require.New(t)

	r := bits.NewReader([]byte{0x05})
	requireT.Equal(types.BitCount(3), r.Size())

	_, err := r.ReadBits(4)
	requireT.ErrorIs(err, bits.ErrOutOfBits)

	v, err := r.ReadBits(3)
	requireT.NoError(err)
	requireT.Equal(uint64(0b101), v)
	requireT.Equal(types.BitCount(0), r.Remaining())

	_, err = r.ReadBits(1)
	requireT.ErrorIs(err, bits.ErrOutOfBits)
}

func TestCountTrailingZeros(t *testing.T) {
	requireT := require.New(t)

	r := bits.NewReader([]byte{0x10})
	n, err := r.CountTrailingZeros()
	requireT.NoError(err)
	requireT.Equal(types.BitCount(4), n)
	requireT.Equal(types.BitOffset(5), r.Offset())
}

func TestCountTrailingZerosNoTerminator(t *testing.T) {
	requireT := require.New(t)

	r := bits.NewReader([]byte{0x10})
	_, err := r.ReadBits(5)
	requireT.NoError(err)

	_, err = r.CountTrailingZeros()
	requireT.True(errors.Is(err, bits.ErrOutOfBits))
}
