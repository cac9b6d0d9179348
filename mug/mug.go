package mug

import (
	"github.com/zeebo/blake3"

	"github.com/outofforest/noun"
	"github.com/outofforest/noun/types"
)

// Sum returns the content digest of the noun: blake3 over its canonical jam
// encoding. Structurally equal nouns digest equally.
func Sum(n *noun.Noun) types.Mug {
	return types.Mug(blake3.Sum256(noun.Jam(n)))
}

// SumBytes returns the content digest of an already jammed noun.
func SumBytes(jammed []byte) types.Mug {
	return types.Mug(blake3.Sum256(jammed))
}
