package services

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"lambolotto/domain/interfaces"
)

// cryptoRandomSource implements RandomSource over crypto/rand. Draw
// selection does not need cryptographic strength, but crypto/rand is
// uniform and has no seeding pitfalls.
type cryptoRandomSource struct{}

// NewCryptoRandomSource returns the production random source.
func NewCryptoRandomSource() interfaces.RandomSource {
	return cryptoRandomSource{}
}

func (cryptoRandomSource) Intn(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// crypto/rand only fails when the OS entropy source is broken
		panic(fmt.Sprintf("random generation failed: %v", err))
	}
	return int(v.Int64())
}

// pickWithoutReplacement selects count elements from pool uniformly at
// random using a partial Fisher-Yates shuffle. The pool is modified.
func pickWithoutReplacement(random interfaces.RandomSource, pool []int, count int) []int {
	for i := 0; i < count; i++ {
		j := i + random.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:count]
}
