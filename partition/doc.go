// Package partition provides the built-in Partitioner implementation.
//
// Paired splits an item set into a per-user qualitative pool of paired cases
// (the same item ID under both provenances) and a shuffled quantitative pool of
// everything else. Selection and ordering are seeded from the user identity so
// that pools never need to be stored: rebuilding them after a restart yields the
// same membership and the same order.
//
// Custom partitioners can be implemented by satisfying types.Partitioner.
package partition
