package types

const (
	// BitsPerByte is the number of bits in one byte of the envelope.
	BitsPerByte = 8

	// MugLength is the number of bytes taken by a noun digest.
	MugLength = 32
)

type (
	// BitOffset addresses a bit position counted from the low end of the stream.
	BitOffset uint64

	// BitCount is the length of a bit sequence.
	BitCount uint64

	// Mug is the blake3 digest of a noun's canonical encoding.
	Mug [MugLength]byte
)

// Tag constants of the wire format. Values are read low bit first, i.e. bit 0
// of the constant is the first bit emitted into the stream.
const (
	// TagAtom is the single tag bit preceding an atom payload.
	TagAtom uint64 = 0b0

	// TagZero is the full two-bit encoding of the atom 0: the atom tag
	// followed by an empty payload terminator.
	TagZero uint64 = 0b10

	// TagCell is the two-bit tag preceding head and tail encodings.
	TagCell uint64 = 0b01

	// TagBackref is the two-bit tag preceding a back-reference offset.
	TagBackref uint64 = 0b11
)

const (
	// TagAtomBits is the number of tag bits taken by an atom.
	TagAtomBits BitCount = 1

	// TagPairBits is the number of tag bits taken by zero, cell and
	// back-reference codes.
	TagPairBits BitCount = 2
)
