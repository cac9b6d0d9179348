package noun

import (
	"github.com/outofforest/mass"
)

const massNounCapacity = 1024

// NewBuilder creates new noun builder.
func NewBuilder() *Builder {
	return &Builder{
		massNoun: mass.New[Noun](massNounCapacity),
	}
}

// Builder constructs nouns backed by a slab allocator, avoiding a heap
// allocation per noun on construction-heavy paths such as decoding. Nouns it
// returns stay valid for as long as the builder is referenced and mix freely
// with plainly constructed ones.
type Builder struct {
	massNoun *mass.Mass[Noun]
}

// Zero returns the atom 0.
func (b *Builder) Zero() *Noun {
	return atom(b.massNoun.New(), 0, nil)
}

// Uint64 returns the atom of value v.
func (b *Builder) Uint64(v uint64) *Noun {
	return atom(b.massNoun.New(), v, nil)
}

// AtomBytes returns the atom whose little-endian representation is bytes.
func (b *Builder) AtomBytes(bytes []byte) *Noun {
	return atomBytes(b.massNoun.New(), bytes)
}

// Cell returns the cell [head tail].
func (b *Builder) Cell(head, tail *Noun) *Noun {
	return cell(b.massNoun.New(), head, tail)
}
