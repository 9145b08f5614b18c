package cmap

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/zeebo/blake3"
	"golang.org/x/exp/constraints"
)

const prime64 = 1099511628211
const initial = uint64(14695981039346656037)

// Fnv64 returns a 64-bit FNV-1 hash of a string.
// This is a convenient hash function for a Map.
func Fnv64(s string) uint64 {
	hash := initial
	for i := 0; i < len(s); i++ {
		hash *= prime64
		hash ^= uint64(s[i])
	}
	return hash
}

// XXHash calculates xxHash for a string, which is a fast high-quality hash function for a Map.
func XXHash(s string) uint64 {
	return xxhash.Sum64String(s)
}

// XXHashes calculates the xxHash for a series of strings.
// This is a convenient hash function for a Map based on a struct containing multiple strings.
func XXHashes(s ...string) uint64 {
	d := xxhash.New()
	for _, x := range s {
		d.WriteString(x)
		d.Write([]byte{0})
	}
	return d.Sum64()
}

// IntHash hashes an integer for a Map. Both halves of the result matter (the low bits pick a
// shard, the high ones a bucket within it) so it mixes with the splitmix64 finaliser.
func IntHash[K constraints.Integer](k K) uint64 {
	h := uint64(k)
	h ^= h >> 30
	h *= 0xbf58476d1ce4e5b9
	h ^= h >> 27
	h *= 0x94d049bb133111eb
	return h ^ (h >> 31)
}

// KeyedHasher returns a string hasher based on keyed BLAKE3. It's much slower than XXHash but
// an outside party who doesn't know the key can't construct colliding keys, so it's suitable
// for maps keyed by untrusted input. The key must be exactly 32 bytes.
func KeyedHasher(key []byte) (func(string) uint64, error) {
	if _, err := blake3.NewKeyed(key); err != nil {
		return nil, fmt.Errorf("invalid hash key: %w", err)
	}
	pool := sync.Pool{
		New: func() any {
			h, _ := blake3.NewKeyed(key)
			return h
		},
	}
	return func(s string) uint64 {
		h := pool.Get().(*blake3.Hasher)
		defer pool.Put(h)
		h.Reset()
		h.Write([]byte(s))
		return binary.LittleEndian.Uint64(h.Sum(nil))
	}, nil
}
