package noun

import (
	mathbits "math/bits"
	"strconv"
	"strings"

	"github.com/cespare/xxhash"

	"github.com/outofforest/noun/bits"
	"github.com/outofforest/noun/types"
)

const (
	hashSeedAtom = 0x61
	hashSeedCell = 0x63
)

// Noun is an immutable value of the noun algebra: an atom (non-negative
// integer of arbitrary size) or a cell (ordered pair of nouns).
type Noun struct {
	head, tail *Noun

	// small holds the atom value whenever it fits 64 bits; large holds the
	// minimal little-endian bytes of wider atoms and is nil otherwise.
	small uint64
	large []byte

	hash uint64
}

// Zero returns the atom 0.
func Zero() *Noun {
	return atom(&Noun{}, 0, nil)
}

// Uint64 returns the atom of value v.
func Uint64(v uint64) *Noun {
	return atom(&Noun{}, v, nil)
}

// AtomBytes returns the atom whose little-endian representation is b. Leading
// zero bytes at the high end are ignored; b is copied.
func AtomBytes(b []byte) *Noun {
	return atomBytes(&Noun{}, b)
}

// Cell returns the cell [head tail].
func Cell(head, tail *Noun) *Noun {
	return cell(&Noun{}, head, tail)
}

func atom(n *Noun, small uint64, large []byte) *Noun {
	n.small = small
	n.large = large

	var buf [8]byte
	if large == nil {
		for i := range buf {
			buf[i] = byte(small >> (types.BitsPerByte * i))
		}
		n.hash = xxhash.Sum64(append(buf[:], hashSeedAtom))
	} else {
		n.hash = xxhash.Sum64(append(large[:len(large):len(large)], hashSeedAtom))
	}
	return n
}

func atomBytes(n *Noun, b []byte) *Noun {
	end := len(b)
	for end > 0 && b[end-1] == 0 {
		end--
	}
	if end*types.BitsPerByte <= 64 {
		var v uint64
		for i := end - 1; i >= 0; i-- {
			v = v<<types.BitsPerByte | uint64(b[i])
		}
		return atom(n, v, nil)
	}
	large := make([]byte, end)
	copy(large, b)
	return atom(n, 0, large)
}

func cell(n, head, tail *Noun) *Noun {
	n.head = head
	n.tail = tail

	var buf [17]byte
	for i := range 8 {
		buf[i] = byte(head.hash >> (types.BitsPerByte * i))
		buf[i+8] = byte(tail.hash >> (types.BitsPerByte * i))
	}
	buf[16] = hashSeedCell
	n.hash = xxhash.Sum64(buf[:])
	return n
}

// IsAtom tells whether the noun is an atom.
func (n *Noun) IsAtom() bool {
	return n.head == nil
}

// IsCell tells whether the noun is a cell.
func (n *Noun) IsCell() bool {
	return n.head != nil
}

// IsZero tells whether the noun is the atom 0.
func (n *Noun) IsZero() bool {
	return n.head == nil && n.small == 0 && n.large == nil
}

// Head returns the head of a cell, nil for atoms.
func (n *Noun) Head() *Noun {
	return n.head
}

// Tail returns the tail of a cell, nil for atoms.
func (n *Noun) Tail() *Noun {
	return n.tail
}

// Uint64 returns the atom value if the noun is an atom fitting 64 bits.
func (n *Noun) Uint64() (uint64, bool) {
	if n.head != nil || n.large != nil {
		return 0, false
	}
	return n.small, true
}

// Bytes returns the minimal little-endian representation of an atom: no
// trailing zero bytes, empty for the atom 0. It returns nil for cells.
func (n *Noun) Bytes() []byte {
	switch {
	case n.head != nil:
		return nil
	case n.large != nil:
		b := make([]byte, len(n.large))
		copy(b, n.large)
		return b
	default:
		b := make([]byte, (mathbits.Len64(n.small)+types.BitsPerByte-1)/types.BitsPerByte)
		for i := range b {
			b[i] = byte(n.small >> (types.BitsPerByte * i))
		}
		return b
	}
}

// BitLen returns the canonical bit length of an atom: the position of its
// highest set bit plus one, 0 for the atom 0. It returns 0 for cells.
func (n *Noun) BitLen() types.BitCount {
	switch {
	case n.head != nil:
		return 0
	case n.large != nil:
		return bits.RealSize(n.large)
	default:
		return types.BitCount(mathbits.Len64(n.small))
	}
}

// Hash returns the structural hash of the noun. Equal nouns hash equally;
// unequal nouns may collide.
func (n *Noun) Hash() uint64 {
	return n.hash
}

// equalSeenThreshold is the number of cell pairs compared before Equal starts
// memoizing. Plain trees never reach it; comparisons between nouns with
// heavily shared subterms would revisit the same pairs exponentially without
// the memo.
const equalSeenThreshold = 1024

// Equal tells whether two nouns are structurally equal.
func (n *Noun) Equal(other *Noun) bool {
	type pair struct {
		a, b *Noun
	}
	var seen map[pair]struct{}
	var processed int

	stack := []pair{{a: n, b: other}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.a == p.b {
			continue
		}
		if p.a == nil || p.b == nil || p.a.hash != p.b.hash {
			return false
		}
		if p.a.head == nil {
			if p.b.head != nil || p.a.small != p.b.small || string(p.a.large) != string(p.b.large) {
				return false
			}
			continue
		}
		if p.b.head == nil {
			return false
		}

		processed++
		if seen != nil {
			if _, exists := seen[p]; exists {
				continue
			}
			seen[p] = struct{}{}
		} else if processed > equalSeenThreshold {
			seen = map[pair]struct{}{}
		}

		stack = append(stack, pair{a: p.a.tail, b: p.b.tail}, pair{a: p.a.head, b: p.b.head})
	}
	return true
}

// maxStringDepth bounds String rendering of deeply nested cells.
const maxStringDepth = 64

// String renders the noun in bracket notation. Atoms up to 64 bits print in
// decimal, wider ones as big-endian hex. Nesting beyond a fixed depth prints
// as "...".
func (n *Noun) String() string {
	var sb strings.Builder
	n.render(&sb, 0)
	return sb.String()
}

func (n *Noun) render(sb *strings.Builder, depth int) {
	if depth > maxStringDepth {
		sb.WriteString("...")
		return
	}
	switch {
	case n.head != nil:
		sb.WriteByte('[')
		n.head.render(sb, depth+1)
		sb.WriteByte(' ')
		n.tail.render(sb, depth+1)
		sb.WriteByte(']')
	case n.large != nil:
		sb.WriteString("0x")
		for _, v := range bits.ReverseBytes(n.large) {
			sb.WriteString(strconv.FormatUint(uint64(v>>4), 16))
			sb.WriteString(strconv.FormatUint(uint64(v&0xf), 16))
		}
	default:
		sb.WriteString(strconv.FormatUint(n.small, 10))
	}
}
