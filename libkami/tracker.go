package libkami

import (
	"fmt"
	"sync"

	"github.com/kami-systems/gokami/gokami"
)

// HashTracker issues full identities for puzzle states.
//
// It buckets previously seen canonical graphs by quick hash; on a quick
// hash collision the authoritative isomorphism check decides whether the
// state was seen before. The issued identity is the quick hash plus the
// state's index within its bucket, so within one tracker two puzzles get
// the same identity exactly when their collapsed forms are isomorphic.
//
// A HashTracker may be shared across puzzles (and across goroutines;
// the bucket map is mutex-guarded).
type HashTracker struct {
	mu      sync.Mutex
	buckets map[gokami.QuickHash][]*canonGraph
}

func NewHashTracker() *HashTracker {
	return &HashTracker{
		buckets: make(map[gokami.QuickHash][]*canonGraph),
	}
}

func mergeHash(quick gokami.QuickHash, index int) gokami.FullHash {
	return gokami.FullHash(fmt.Sprintf("%s_%d", quick, index))
}

// Identity registers cg and returns its full identity.
// Representatives within a bucket are tested in insertion order.
func (t *HashTracker) Identity(cg *canonGraph) gokami.FullHash {
	quick := cg.quickHash()

	t.mu.Lock()
	defer t.mu.Unlock()

	bucket, seen := t.buckets[quick]
	if !seen {
		t.buckets[quick] = []*canonGraph{cg}
		return mergeHash(quick, 0)
	}
	for index, existing := range bucket {
		if cg.isomorphicTo(existing) {
			return mergeHash(quick, index)
		}
	}
	// not isomorphic to any existing graph with this quick hash
	t.buckets[quick] = append(bucket, cg)
	return mergeHash(quick, len(bucket))
}

// NumClasses returns how many distinct isomorphism classes this tracker
// has seen so far.
func (t *HashTracker) NumClasses() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	total := 0
	for _, bucket := range t.buckets {
		total += len(bucket)
	}
	return total
}
