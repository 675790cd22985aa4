package types

// SeedFunc derives the pseudo-random seed for a user.
//
// The same user must always map to the same seed so that pools can be rebuilt
// after a restart without storing them.
type SeedFunc func(userID string) uint64

// Partitioner splits an item set into a user's quantitative and qualitative pools.
//
// Implementations must be pure: the same items (in any order), user and
// configuration always produce identical pools with identical ordering.
type Partitioner interface {
	// Partition derives the user's pools.
	//
	// Parameters:
	//   - items: Full item set
	//   - userID: User identity
	//
	// Returns:
	//   - Pools: Disjoint quantitative and qualitative pools
	//   - error: *InsufficientOverlapError when fewer pivots than requested exist;
	//     the returned Pools are still valid in that case
	Partition(items []Item, userID string) (Pools, error)
}
