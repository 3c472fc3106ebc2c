// Package hashmix derives bloom filter bit indices from a key.
//
// Four cheap, non-cryptographic rolling hashes (djb2, DEK, an FNV variant and
// JS) are computed in one pass over the key. When more than four values are
// needed, the XOR of the previous four is packed little endian as an 8 byte
// salt, the salt is prepended to the key, and another round is computed over
// salt||key. All arithmetic wraps at 2^64.
//
// The sequence is part of the on-disk contract: two implementations that
// agree on it compute the same bit positions for the same key, and so produce
// byte identical filter files.
package hashmix

import (
	"encoding/binary"
	"errors"
)

const (
	// RoundSize is the number of values produced per round.
	RoundSize = 4

	SaltBytes = 8

	djbSeed  uint64 = 5381
	fnvPrime uint64 = 0x811C9DC5
	jsSeed   uint64 = 1315423911
)

var ErrZeroModulus = errors.New("hashmix: bit space must not be empty")

// Round computes one round of the four hashes over key.
func Round(key []byte) [RoundSize]uint64 {
	a := djbSeed
	b := uint64(len(key))
	c := uint64(0)
	d := jsSeed

	for _, e := range key {
		v := uint64(e)
		a = (a << 5) + a + v
		b = (b << 6) ^ (b >> 27) ^ v
		c *= fnvPrime
		c ^= v
		d ^= (d << 5) + v + (d >> 2)
	}
	return [RoundSize]uint64{a, b, c, d}
}

// Hashes returns exactly k values for key. The caller reduces them into its
// bit space.
func Hashes(key []byte, k int) []uint64 {
	if k <= 0 {
		return nil
	}
	rounds := (k + RoundSize - 1) / RoundSize
	out := make([]uint64, 0, rounds*RoundSize)

	h := Round(key)
	out = append(out, h[:]...)
	if len(out) >= k {
		return out[:k]
	}

	salted := make([]byte, SaltBytes+len(key))
	copy(salted[SaltBytes:], key)
	for len(out) < k {
		binary.LittleEndian.PutUint64(salted[:SaltBytes], h[0]^h[1]^h[2]^h[3])
		h = Round(salted)
		out = append(out, h[:]...)
	}
	return out[:k]
}

// Indices returns Hashes(key, k) reduced modulo m.
func Indices(key []byte, k int, m uint64) ([]uint64, error) {
	if m == 0 {
		return nil, ErrZeroModulus
	}
	hs := Hashes(key, k)
	for i := range hs {
		hs[i] %= m
	}
	return hs, nil
}
