package mug

import (
	"crypto/rand"
	"testing"

	blake3zeebo "github.com/zeebo/blake3"
	blake3luke "lukechampine.com/blake3"
)

func randBlob(size uint) []byte {
	data := make([]byte, size)
	if _, err := rand.Read(data); err != nil {
		panic(err)
	}
	return data
}

var (
	blob1K = randBlob(1024)
	blob4K = randBlob(4096)
)

func BenchmarkMug1KZeebo(b *testing.B) {
	for range b.N {
		blake3zeebo.Sum256(blob1K)
	}
}

func BenchmarkMug1KLuke(b *testing.B) {
	for range b.N {
		blake3luke.Sum256(blob1K)
	}
}

func BenchmarkMug4KZeebo(b *testing.B) {
	for range b.N {
		blake3zeebo.Sum256(blob4K)
	}
}

func BenchmarkMug4KLuke(b *testing.B) {
	for range b.N {
		blake3luke.Sum256(blob4K)
	}
}
