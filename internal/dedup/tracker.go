// Package dedup tracks transaction hashes that have already been observed.
//
// The seen set is bounded: EvictOverflow drops the oldest-inserted hashes
// until the set is back under its cap. Insertion order is kept in a ring
// buffer alongside a membership map.
package dedup

import "sync"

// Tracker is an insertion-ordered set of transaction hashes.
// It is safe for concurrent use.
type Tracker struct {
	mu    sync.Mutex
	order *ring
	seen  map[string]struct{}
}

// NewTracker creates an empty tracker sized for capacityHint hashes.
func NewTracker(capacityHint int) *Tracker {
	if capacityHint < 1 {
		capacityHint = 16
	}
	return &Tracker{
		order: newRing(capacityHint),
		seen:  make(map[string]struct{}, capacityHint),
	}
}

// IsNew reports whether hash has not been recorded.
func (t *Tracker) IsNew(hash string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.seen[hash]
	return !ok
}

// Record adds hash to the set. Recording a known hash is a no-op and does
// not change its eviction position.
func (t *Tracker) Record(hash string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.record(hash)
}

// Observe records hash and reports whether it was new, as one step.
func (t *Tracker) Observe(hash string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.record(hash)
}

func (t *Tracker) record(hash string) bool {
	if _, ok := t.seen[hash]; ok {
		return false
	}
	t.seen[hash] = struct{}{}
	t.order.push(hash)
	return true
}

// EvictOverflow removes the oldest hashes until at most max remain and
// returns how many were removed.
func (t *Tracker) EvictOverflow(max int) int {
	if max < 0 {
		max = 0
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	evicted := 0
	for len(t.seen) > max {
		hash, ok := t.order.pop()
		if !ok {
			break
		}
		delete(t.seen, hash)
		evicted++
	}
	return evicted
}

// Len returns the number of hashes in the set.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.seen)
}

// Snapshot returns the hashes in insertion order, oldest first.
func (t *Tracker) Snapshot() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.order.items()
}
