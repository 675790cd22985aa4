// Package hash derives reproducible per-user seeds and deterministic shuffles.
package hash

import (
	"encoding/binary"
	rand "math/rand/v2"

	"github.com/zeebo/xxh3"

	"github.com/Debodeep94/SLOG-Eval/types"
)

// Stream identifiers. Each independent shuffle for a user draws from its own
// PCG stream so adding a draw to one never perturbs the other.
const (
	StreamPivots uint64 = 1
	StreamQuant  uint64 = 2
)

// golden is the 64-bit golden ratio constant used to decorrelate PCG state words.
const golden = 0x9e3779b97f4a7c15

// UserSeed returns a SeedFunc hashing the user identity with XXH3.
//
// A non-empty salt is hashed first and used as the XXH3 seed, which lets one
// deployment reshuffle every user without changing user IDs.
//
// Parameters:
//   - salt: Optional deployment salt ("" for none)
//
// Returns:
//   - types.SeedFunc: Pure seed function
//
// Example:
//
//	seed := hash.UserSeed("")
//	s := seed("annotator-7") // same value on every run
func UserSeed(salt string) types.SeedFunc {
	if salt == "" {
		return func(userID string) uint64 {
			return xxh3.HashString(userID)
		}
	}

	saltSeed := xxh3.HashString(salt)

	return func(userID string) uint64 {
		return xxh3.HashStringSeed(userID, saltSeed)
	}
}

// NewRand returns a deterministic generator for (seed, stream).
//
//nolint:gosec // non-crypto shuffling
func NewRand(seed, stream uint64) *rand.Rand {
	var sb [8]byte
	binary.LittleEndian.PutUint64(sb[:], stream)
	s2 := xxh3.HashSeed(sb[:], seed) ^ golden

	return rand.New(rand.NewPCG(seed, s2))
}

// Shuffle permutes s in place, deterministically for (seed, stream).
func Shuffle[T any](s []T, seed, stream uint64) {
	rng := NewRand(seed, stream)
	rng.Shuffle(len(s), func(i, j int) {
		s[i], s[j] = s[j], s[i]
	})
}
