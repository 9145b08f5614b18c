package bench

import (
	"math/rand"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"github.com/thought-machine/oamap/src/cmap"
	"github.com/thought-machine/oamap/src/oamap"
)

// A keyGen generates random keys of one type and knows how to hash them.
type keyGen[K comparable] struct {
	next      func(r *rand.Rand) K
	hash      oamap.Hasher[K]
	shardHash func(K) uint64
}

func intKeys() keyGen[int64] {
	return keyGen[int64]{
		next:      func(r *rand.Rand) int64 { return r.Int63() },
		hash:      oamap.IntHasher[int64],
		shardHash: cmap.IntHash[int64],
	}
}

func stringKeys() keyGen[string] {
	return keyGen[string]{
		next:      func(r *rand.Rand) string { return strconv.FormatInt(r.Int63(), 36) },
		hash:      oamap.StringHasher,
		shardHash: cmap.XXHash,
	}
}

func uuidKeys() keyGen[uuid.UUID] {
	return keyGen[uuid.UUID]{
		next: func(r *rand.Rand) uuid.UUID {
			// Reading from a math/rand source can't fail.
			return uuid.Must(uuid.NewRandomFromReader(r))
		},
		hash:      func(u uuid.UUID) uint32 { return oamap.BytesHasher(u[:]) },
		shardHash: func(u uuid.UUID) uint64 { return xxhash.Sum64(u[:]) },
	}
}
