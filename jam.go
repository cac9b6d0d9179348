package noun

import (
	mathbits "math/bits"

	"github.com/outofforest/noun/bits"
	"github.com/outofforest/noun/types"
)

// Jam encodes the noun as its canonical bit sequence, sharing repeated
// subterms via back-references, and returns the envelope octets. The first
// emitted bit lands in the least significant bit of the first byte; the high
// end of the last byte is zero padding.
func Jam(n *Noun) []byte {
	w := bits.NewWriter()
	cache := map[uint64][]writeEntry{}

	type task struct {
		n        *Noun
		start    types.BitOffset
		finalize bool
	}
	stack := []task{{n: n}}

	for len(stack) > 0 {
		t := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if t.finalize {
			h := t.n.Hash()
			cache[h] = append(cache[h], writeEntry{
				n:      t.n,
				offset: t.start,
				length: w.Len() - types.BitCount(t.start),
			})
			continue
		}

		// The atom 0 is never cached: its 2-bit encoding cannot be beaten
		// by a back-reference.
		if t.n.IsZero() {
			w.WriteBits(types.TagZero, types.TagPairBits)
			continue
		}

		start := types.BitOffset(w.Len())

		if e, ok := lookupWrite(cache, t.n); ok {
			back := types.TagPairBits + matLen(types.BitCount(mathbits.Len64(uint64(e.offset))))
			if back < e.length {
				w.WriteBits(types.TagBackref, types.TagPairBits)
				writeMatUint64(w, uint64(e.offset))
			} else {
				w.CopyWithin(e.offset, e.length)
			}
			continue
		}

		if t.n.IsAtom() {
			writeAtom(w, t.n)
			h := t.n.Hash()
			cache[h] = append(cache[h], writeEntry{
				n:      t.n,
				offset: start,
				length: w.Len() - types.BitCount(start),
			})
			continue
		}

		w.WriteBits(types.TagCell, types.TagPairBits)
		stack = append(stack,
			task{n: t.n, start: start, finalize: true},
			task{n: t.n.Tail()},
			task{n: t.n.Head()},
		)
	}

	return w.Bytes()
}

type writeEntry struct {
	n      *Noun
	offset types.BitOffset
	length types.BitCount
}

func lookupWrite(cache map[uint64][]writeEntry, n *Noun) (writeEntry, bool) {
	for _, e := range cache[n.Hash()] {
		if e.n.Equal(n) {
			return e, true
		}
	}
	return writeEntry{}, false
}

// matLen returns the number of bits taken by the payload encoding of an atom
// of bit length l, tag bits excluded.
func matLen(l types.BitCount) types.BitCount {
	if l == 0 {
		return 1
	}
	return 2*types.BitCount(mathbits.Len64(uint64(l))) + l
}

func writeAtom(w *bits.Writer, n *Noun) {
	w.WriteBits(types.TagAtom, types.TagAtomBits)
	if n.large == nil {
		writeMat(w, n.small, nil, types.BitCount(mathbits.Len64(n.small)))
	} else {
		writeMat(w, 0, n.large, bits.RealSize(n.large))
	}
}

func writeMatUint64(w *bits.Writer, v uint64) {
	writeMat(w, v, nil, types.BitCount(mathbits.Len64(v)))
}

// writeMat emits the atom payload: a unary length-of-length prefix (s zero
// bits and a set terminator, s being the bit length of l), the low s-1 bits
// of l (the high bit of l is implicit), then the l value bits. The value is
// taken from small, or from the little-endian bytes of large when non-nil.
func writeMat(w *bits.Writer, small uint64, large []byte, l types.BitCount) {
	if l == 0 {
		w.WriteBits(1, 1)
		return
	}
	s := types.BitCount(mathbits.Len64(uint64(l)))
	w.WriteBits(1<<s, s+1)
	w.WriteBits(uint64(l), s-1)
	if large == nil {
		w.WriteBits(small, l)
	} else {
		w.WriteBytesBits(large, l)
	}
}
