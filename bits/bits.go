package bits

import (
	mathbits "math/bits"

	"github.com/pkg/errors"

	"github.com/outofforest/noun/types"
)

// ErrOutOfBits is returned when a read requires more bits than remain in the
// stream.
var ErrOutOfBits = errors.New("out of bits")

// RealSize returns the number of significant bits in a byte string, i.e. the
// position of its highest set bit plus one. Bit 0 is the least significant
// bit of the first byte. All-zero input has real size 0.
func RealSize(b []byte) types.BitCount {
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] != 0 {
			return types.BitCount(i)*types.BitsPerByte +
				types.BitCount(mathbits.Len8(b[i]))
		}
	}
	return 0
}

// ReverseBytes returns a copy of b with the octet order reversed. It converts
// between the little-end-first envelope and big-endian renderings of the same
// bit string.
func ReverseBytes(b []byte) []byte {
	r := make([]byte, len(b))
	for i, v := range b {
		r[len(b)-1-i] = v
	}
	return r
}

func extract(buf []byte, off types.BitOffset, n types.BitCount) uint64 {
	var v uint64
	var got types.BitCount
	for got < n {
		pos := off + types.BitOffset(got)
		take := types.BitCount(types.BitsPerByte - pos%types.BitsPerByte)
		if take > n-got {
			take = n - got
		}
		chunk := uint64(buf[pos/types.BitsPerByte]>>(pos%types.BitsPerByte)) & (1<<take - 1)
		v |= chunk << got
		got += take
	}
	return v
}

// NewWriter creates new bit writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Writer accumulates a bit sequence low-to-high. Bit 0 of the sequence lands
// in the least significant bit of the first byte, so the accumulated buffer
// is already in envelope order; the unwritten high end of the last byte stays
// zero, which is the envelope padding.
type Writer struct {
	buf []byte
	len types.BitCount
}

// WriteBits appends the low n bits of v, lowest bit first. n must not exceed 64.
func (w *Writer) WriteBits(v uint64, n types.BitCount) {
	for n > 0 {
		pos := w.len % types.BitsPerByte
		if pos == 0 {
			w.buf = append(w.buf, 0)
		}
		take := types.BitCount(types.BitsPerByte) - pos
		if take > n {
			take = n
		}
		w.buf[len(w.buf)-1] |= byte(v&(1<<take-1)) << pos
		v >>= take
		w.len += take
		n -= take
	}
}

// WriteBytesBits appends the low n bits of the little-endian byte string b,
// lowest bit first.
func (w *Writer) WriteBytesBits(b []byte, n types.BitCount) {
	for i := 0; n > 0; i++ {
		take := types.BitCount(types.BitsPerByte)
		if take > n {
			take = n
		}
		w.WriteBits(uint64(b[i]), take)
		n -= take
	}
}

// CopyWithin appends a copy of the n bits previously written at offset off.
func (w *Writer) CopyWithin(off types.BitOffset, n types.BitCount) {
	for n > 0 {
		take := types.BitCount(64)
		if take > n {
			take = n
		}
		w.WriteBits(extract(w.buf, off, take), take)
		off += types.BitOffset(take)
		n -= take
	}
}

// Len returns the number of bits written so far.
func (w *Writer) Len() types.BitCount {
	return w.len
}

// Bytes returns the accumulated envelope: the bit sequence padded with zero
// bits up to a whole number of bytes.
func (w *Writer) Bytes() []byte {
	b := make([]byte, len(w.buf))
	copy(b, w.buf)
	return b
}

// NewReader creates new bit reader over the significant bits of the envelope b.
func NewReader(b []byte) *Reader {
	return &Reader{
		buf:  b,
		size: RealSize(b),
	}
}

// Reader consumes a bit sequence low-to-high. Every read is bounded by the
// real size of the underlying envelope.
type Reader struct {
	buf  []byte
	size types.BitCount
	off  types.BitOffset
}

// ReadBits consumes the next n bits and returns them lowest bit first.
// n must not exceed 64.
func (r *Reader) ReadBits(n types.BitCount) (uint64, error) {
	if n > r.Remaining() {
		return 0, errors.Wrapf(ErrOutOfBits, "reading %d bits at offset %d of %d", n, r.off, r.size)
	}
	v := extract(r.buf, r.off, n)
	r.off += types.BitOffset(n)
	return v, nil
}

// ReadBytesBits consumes the next n bits and returns them as a little-endian
// byte string of ceil(n/8) bytes, high end zero-padded.
func (r *Reader) ReadBytesBits(n types.BitCount) ([]byte, error) {
	if n > r.Remaining() {
		return nil, errors.Wrapf(ErrOutOfBits, "reading %d bits at offset %d of %d", n, r.off, r.size)
	}
	b := make([]byte, (n+types.BitsPerByte-1)/types.BitsPerByte)
	for i := range b {
		take := types.BitCount(types.BitsPerByte)
		if rest := n - types.BitCount(i)*types.BitsPerByte; take > rest {
			take = rest
		}
		b[i] = byte(extract(r.buf, r.off, take))
		r.off += types.BitOffset(take)
	}
	return b, nil
}

// CountTrailingZeros consumes zero bits up to and including the first set bit
// and returns the number of zeros skipped. It fails when the stream ends
// before a set bit is found.
func (r *Reader) CountTrailingZeros() (types.BitCount, error) {
	var n types.BitCount
	for {
		if r.Remaining() == 0 {
			return 0, errors.Wrapf(ErrOutOfBits, "no terminator after %d zero bits at offset %d", n, r.off)
		}
		bit := extract(r.buf, r.off, 1)
		r.off++
		if bit == 1 {
			return n, nil
		}
		n++
	}
}

// Offset returns the number of bits consumed so far.
func (r *Reader) Offset() types.BitOffset {
	return r.off
}

// Remaining returns the number of significant bits left to read.
func (r *Reader) Remaining() types.BitCount {
	return r.size - types.BitCount(r.off)
}

// Size returns the real size of the underlying envelope.
func (r *Reader) Size() types.BitCount {
	return r.size
}
