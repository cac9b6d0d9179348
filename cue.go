package noun

import (
	"github.com/pkg/errors"

	"github.com/outofforest/noun/bits"
	"github.com/outofforest/noun/types"
)

// ErrMalformed is returned by Cue when the input does not decode to a noun.
var ErrMalformed = errors.New("malformed noun encoding")

// Cue decodes the envelope octets produced by Jam back into a noun. The
// decoder consumes exactly the significant bits of the input; anything less
// or more fails with ErrMalformed, as does any violation of the bit grammar.
func Cue(b []byte) (*Noun, error) {
	r := bits.NewReader(b)
	if r.Size() == 0 {
		return nil, errors.Wrap(ErrMalformed, "empty input")
	}

	builder := NewBuilder()
	cache := map[types.BitOffset]*Noun{}

	type frame struct {
		offset types.BitOffset
		head   *Noun
	}
	var stack []frame
	var result *Noun

loop:
	for {
		start := r.Offset()

		tag, err := r.ReadBits(1)
		if err != nil {
			return nil, errors.Wrap(ErrMalformed, err.Error())
		}

		var n *Noun
		if tag == 0 {
			if n, err = rubNoun(r, builder); err != nil {
				return nil, err
			}
			cache[start] = n
		} else {
			if tag, err = r.ReadBits(1); err != nil {
				return nil, errors.Wrap(ErrMalformed, err.Error())
			}
			if tag == 0 {
				stack = append(stack, frame{offset: start})
				continue
			}

			// Back-reference sites are not cached; only the referenced
			// subterm's own offset names it.
			k, err := rubOffset(r)
			if err != nil {
				return nil, err
			}
			var exists bool
			if n, exists = cache[k]; !exists {
				return nil, errors.Wrapf(ErrMalformed, "back-reference to unknown offset %d at offset %d", k, start)
			}
		}

		for {
			if len(stack) == 0 {
				result = n
				break loop
			}
			top := &stack[len(stack)-1]
			if top.head == nil {
				top.head = n
				break
			}
			n = builder.Cell(top.head, n)
			cache[top.offset] = n
			stack = stack[:len(stack)-1]
		}
	}

	if r.Remaining() != 0 {
		return nil, errors.Wrapf(ErrMalformed, "%d residual bits", r.Remaining())
	}
	return result, nil
}

// MustCue decodes like Cue but panics on malformed input. For call sites
// that have pre-validated the encoding.
func MustCue(b []byte) *Noun {
	n, err := Cue(b)
	if err != nil {
		panic(err)
	}
	return n
}

// rub decodes an atom payload: unary length-of-length, length with implicit
// high bit, then the value bits.
func rub(r *bits.Reader) (small uint64, large []byte, err error) {
	s, err := r.CountTrailingZeros()
	if err != nil {
		return 0, nil, errors.Wrap(ErrMalformed, err.Error())
	}
	if s == 0 {
		return 0, nil, nil
	}
	if s > 64 {
		return 0, nil, errors.Wrapf(ErrMalformed, "length of %d bits at offset %d", s, r.Offset())
	}

	low, err := r.ReadBits(s - 1)
	if err != nil {
		return 0, nil, errors.Wrap(ErrMalformed, err.Error())
	}
	l := types.BitCount(low | 1<<(s-1))

	if l <= 64 {
		v, err := r.ReadBits(l)
		if err != nil {
			return 0, nil, errors.Wrap(ErrMalformed, err.Error())
		}
		return v, nil, nil
	}
	b, err := r.ReadBytesBits(l)
	if err != nil {
		return 0, nil, errors.Wrap(ErrMalformed, err.Error())
	}
	return 0, b, nil
}

func rubNoun(r *bits.Reader, builder *Builder) (*Noun, error) {
	small, large, err := rub(r)
	if err != nil {
		return nil, err
	}
	if large == nil {
		return builder.Uint64(small), nil
	}
	return builder.AtomBytes(large), nil
}

func rubOffset(r *bits.Reader) (types.BitOffset, error) {
	small, large, err := rub(r)
	if err != nil {
		return 0, err
	}
	if large != nil {
		return 0, errors.Wrapf(ErrMalformed, "back-reference offset wider than 64 bits at offset %d", r.Offset())
	}
	return types.BitOffset(small), nil
}
