package oamap

import (
	"hash/maphash"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/exp/constraints"
)

// Mix applies a supplemental hash function to a raw hash code.
// Bucket counts are always powers of two, so only the low bits of a hash select a bucket;
// this spreads the entropy of the whole word into them. It's a variant of the single-word
// Wang/Jenkins hash.
func Mix(h uint32) uint32 {
	h += (h << 15) ^ 0xffffcd7d
	h ^= h >> 10
	h += h << 3
	h ^= h >> 6
	h += (h << 2) + (h << 14)
	return h ^ (h >> 16)
}

// StringHasher hashes strings using xxHash.
func StringHasher(s string) uint32 {
	return fold(xxhash.Sum64String(s))
}

// BytesHasher hashes byte slices using xxHash. Byte slices aren't comparable so maps using it
// need to be constructed with NewFunc and bytes.Equal. Slice keys are never treated as the nil
// key, so a nil slice and an empty one are the same key under bytes.Equal.
func BytesHasher(b []byte) uint32 {
	return fold(xxhash.Sum64(b))
}

// IntHasher hashes any integer type by folding the upper half of its bits into the
// lower one; it makes no attempt at distribution since Mix takes care of that.
func IntHasher[K constraints.Integer](k K) uint32 {
	return fold(uint64(k))
}

// ComparableHasher returns a hasher for any comparable type, using a fresh random seed.
// It's the most convenient option for struct keys, but isn't stable across processes.
func ComparableHasher[K comparable]() Hasher[K] {
	seed := maphash.MakeSeed()
	return func(k K) uint32 {
		return fold(maphash.Comparable(seed, k))
	}
}

func fold(h uint64) uint32 {
	return uint32(h ^ (h >> 32))
}
