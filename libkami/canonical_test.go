package libkami_test

import (
	"testing"

	"github.com/kami-systems/gokami/gokami"
	"github.com/kami-systems/gokami/libkami"
)

func TestIdentityInvariantUnderRelabeling(t *testing.T) {
	tracker := libkami.NewHashTracker()

	a := fiveCycle(t, tracker)

	// Same cycle with scrambled node IDs and all colors shifted by a
	// consistent permutation (orange->cream, darkblue->turquoise,
	// cream->orange).
	b := libkami.NewSolvableN(tracker, 3)
	b.AddNode(10, gokami.Cream)
	b.AddNode(20, gokami.Cream)
	b.AddNode(30, gokami.Turquoise)
	b.AddNode(80, gokami.Orange)
	b.AddNode(70, gokami.Orange)
	for _, e := range [][2]gokami.NodeID{{10, 20}, {20, 30}, {30, 80}, {80, 70}, {70, 10}} {
		if err := b.AddEdge(e[0], e[1]); err != nil {
			t.Fatal(err)
		}
	}

	if a.QuickIdentity() != b.QuickIdentity() {
		t.Fatalf("quick identities differ: %s vs %s", a.QuickIdentity(), b.QuickIdentity())
	}
	if a.FullIdentity() != b.FullIdentity() {
		t.Fatalf("full identities differ: %s vs %s", a.FullIdentity(), b.FullIdentity())
	}
	if !a.Isomorphic(b) {
		t.Fatal("relabeled puzzles must be isomorphic")
	}
	if tracker.NumClasses() != 1 {
		t.Fatalf("expected 1 identity class, tracker has %d", tracker.NumClasses())
	}
}

func TestIdentityDistinguishesColorArrangement(t *testing.T) {
	tracker := libkami.NewHashTracker()

	a := fiveCycle(t, tracker) // colors around the cycle: O O B C C

	// Same cycle topology, colors rearranged to O B O C C. This one
	// collapses to 4 components instead of 3.
	b := libkami.NewSolvableN(tracker, 3)
	b.AddNode(1, gokami.Orange)
	b.AddNode(2, gokami.DarkBlue)
	b.AddNode(3, gokami.Orange)
	b.AddNode(4, gokami.Cream)
	b.AddNode(5, gokami.Cream)
	for _, e := range [][2]gokami.NodeID{{1, 2}, {2, 3}, {3, 4}, {4, 5}, {5, 1}} {
		if err := b.AddEdge(e[0], e[1]); err != nil {
			t.Fatal(err)
		}
	}

	if a.FullIdentity() == b.FullIdentity() {
		t.Fatal("differently arranged colorings must not share an identity")
	}
	if a.Isomorphic(b) {
		t.Fatal("puzzles with different collapsed shapes must not be isomorphic")
	}
}

func TestEmptyPuzzleIdentity(t *testing.T) {
	tracker := libkami.NewHashTracker()
	a := libkami.NewSolvableN(tracker, 2)
	b := libkami.NewSolvableN(tracker, 2)

	if a.QuickIdentity() != b.QuickIdentity() {
		t.Fatal("empty puzzles must share a quick identity")
	}
	if a.FullIdentity() != b.FullIdentity() {
		t.Fatal("empty puzzles must share a full identity")
	}
}

func TestTrackerSeparatesByClass(t *testing.T) {
	tracker := libkami.NewHashTracker()

	shapes := []*libkami.SolvablePuzzle{
		fiveCycle(t, tracker),
	}

	// path of two colors
	p := libkami.NewSolvableN(tracker, 2)
	p.AddNode(1, gokami.Orange)
	p.AddNode(2, gokami.DarkBlue)
	if err := p.AddEdge(1, 2); err != nil {
		t.Fatal(err)
	}
	shapes = append(shapes, p)

	// copy of the first shape, different object
	shapes = append(shapes, shapes[0].Copy())

	ids := make(map[gokami.FullHash]int)
	for _, s := range shapes {
		ids[s.FullIdentity()]++
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 identity classes, got %d: %v", len(ids), ids)
	}
	if tracker.NumClasses() != 2 {
		t.Fatalf("tracker reports %d classes, expected 2", tracker.NumClasses())
	}
}
