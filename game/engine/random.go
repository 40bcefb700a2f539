package engine

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

// RandomSource is the part of math/rand/v2's Rand the engine needs.
// Tests substitute a scripted source.
type RandomSource interface {
	IntN(n int) int
}

// NewRandomSource returns a ChaCha8 backed source. A zero seed draws the key
// from crypto/rand; any other seed replays the same game.
func NewRandomSource(seed uint64) RandomSource {
	var key [32]byte
	if seed == 0 {
		_, _ = crand.Read(key[:])
	} else {
		for i := 0; i < 4; i++ {
			binary.LittleEndian.PutUint64(key[i*8:], seed+uint64(i))
		}
	}
	return rand.New(rand.NewChaCha8(key))
}
