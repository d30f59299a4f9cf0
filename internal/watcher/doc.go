// Package watcher drives the poll cycle.
//
// Each cycle:
//   - fetches the base, token and secondary counter prices concurrently
//   - fetches completed buys for every configured pair concurrently
//   - records each transaction hash in the seen set, pair by pair in
//     configuration order, queueing the ones not seen before
//   - dispatches the queue in discovery order, one at a time
//   - evicts the oldest hashes beyond the seen-set capacity
//
// The first cycle primes the seen set: hashes are recorded but nothing is
// dispatched. Cycles run on a single goroutine, so a slow cycle delays the
// next tick instead of overlapping it.
package watcher
