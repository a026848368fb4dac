package triecache

import "github.com/cespare/xxhash/v2"

// fanout is the number of children per trie index node. digestSymbols is
// the number of routing symbols produced per key. fanout is a power of two
// and digestSymbols*log2(fanout) >= 64, so a digest's symbols always cover
// a full 64-bit hash with no waste.
const (
	fanout        = 16
	digestSymbols = 16
)

// digest is a fixed-width sequence of routing symbols derived from a key.
// Symbols are 4-bit values (0..fanout-1); the trie consumes one per level.
type digest [digestSymbols]byte

// digestKey computes a deterministic, non-cryptographic digest of key.
// Distinct keys need not produce distinct digests: bucket lists resolve
// collisions with an exact byte comparison, so the digest only needs to be
// well mixed, not collision resistant.
func digestKey(key []byte) digest {
	sum := xxhash.Sum64(key)
	var d digest
	for i := 0; i < digestSymbols; i++ {
		shift := uint(60 - 4*i)
		d[i] = byte(sum>>shift) & 0x0F
	}
	return d
}
