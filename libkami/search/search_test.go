package search_test

import (
	"errors"
	"testing"

	"github.com/kami-systems/gokami/libkami/search"
)

// gridFuncs describes walking on an n x n grid from any cell toward
// (n-1, n-1), one step right or down at a time. The shortest path from
// (0,0) has 2(n-1) moves, and distance-to-corner is an exact (hence
// consistent) heuristic.
type cell struct{ x, y int }

func gridFuncs(n int) search.Funcs[cell, cell, string] {
	return search.Funcs[cell, cell, string]{
		Name:   func(c cell) cell { return c },
		IsGoal: func(c cell) bool { return c.x == n-1 && c.y == n-1 },
		Moves: func(c cell) []string {
			var moves []string
			if c.x < n-1 {
				moves = append(moves, "right")
			}
			if c.y < n-1 {
				moves = append(moves, "down")
			}
			return moves
		},
		Apply: func(c cell, m string) cell {
			if m == "right" {
				return cell{c.x + 1, c.y}
			}
			return cell{c.x, c.y + 1}
		},
	}
}

func gridHeuristic(n int) search.Heuristic[cell] {
	return func(c cell) int { return (n - 1 - c.x) + (n - 1 - c.y) }
}

func TestBFSShortestPath(t *testing.T) {
	s, err := search.NewSearcher(gridFuncs(4), search.BFSOpts{})
	if err != nil {
		t.Fatal(err)
	}
	res := s.Solve(cell{0, 0})
	if !res.Found {
		t.Fatal("goal not found")
	}
	if len(res.Path) != 6 {
		t.Fatalf("expected a 6-move path, got %d: %v", len(res.Path), res.Path)
	}
}

func TestBFSStartIsGoal(t *testing.T) {
	s, err := search.NewSearcher(gridFuncs(4), search.BFSOpts{})
	if err != nil {
		t.Fatal(err)
	}
	res := s.Solve(cell{3, 3})
	if !res.Found {
		t.Fatal("start state is a goal and must be found")
	}
	if res.Path == nil || len(res.Path) != 0 {
		t.Fatalf("expected an empty non-nil path, got %v", res.Path)
	}
}

func TestBFSExhaustsUnreachableGoal(t *testing.T) {
	fn := gridFuncs(4)
	fn.IsGoal = func(cell) bool { return false }
	s, err := search.NewSearcher(fn, search.BFSOpts{})
	if err != nil {
		t.Fatal(err)
	}
	res := s.Solve(cell{0, 0})
	if res.Found {
		t.Fatal("unreachable goal reported found")
	}
	if !res.Exhausted {
		t.Fatal("fully explored space must be reported as exhausted")
	}
	if res.Expanded != 16 {
		t.Fatalf("expected all 16 cells expanded, got %d", res.Expanded)
	}
}

func TestBFSDepthCapIsNotAProof(t *testing.T) {
	s, err := search.NewSearcher(gridFuncs(4), search.BFSOpts{MaxDepth: 3})
	if err != nil {
		t.Fatal(err)
	}
	res := s.Solve(cell{0, 0})
	if res.Found {
		t.Fatal("goal is 6 moves away and must not be found within depth 3")
	}
	if res.Exhausted {
		t.Fatal("a depth-capped miss must not claim exhaustion")
	}
}

func TestAStarMatchesBFS(t *testing.T) {
	fn := gridFuncs(5)
	bfs, err := search.NewSearcher(fn, search.BFSOpts{})
	if err != nil {
		t.Fatal(err)
	}
	astar, err := search.NewAStar(fn, gridHeuristic(5), 0)
	if err != nil {
		t.Fatal(err)
	}

	for _, start := range []cell{{0, 0}, {2, 1}, {4, 4}} {
		a := bfs.Solve(start)
		b := astar.Solve(start)
		if !a.Found || !b.Found {
			t.Fatalf("start %v: found=%v/%v", start, a.Found, b.Found)
		}
		if len(a.Path) != len(b.Path) {
			t.Fatalf("start %v: BFS found %d moves, A* found %d",
				start, len(a.Path), len(b.Path))
		}
	}
}

func TestAStarUnreachableGoal(t *testing.T) {
	fn := gridFuncs(4)
	fn.IsGoal = func(cell) bool { return false }
	astar, err := search.NewAStar(fn, func(cell) int { return 0 }, 0)
	if err != nil {
		t.Fatal(err)
	}
	res := astar.Solve(cell{0, 0})
	if res.Found {
		t.Fatal("unreachable goal reported found")
	}
	if !res.Exhausted {
		t.Fatal("a drained frontier must be reported as exhausted")
	}
}

func TestMaxHeuristic(t *testing.T) {
	h := search.Max(
		func(c cell) int { return c.x },
		func(c cell) int { return c.y },
		func(c cell) int { return 1 },
	)
	if got := h(cell{3, 7}); got != 7 {
		t.Fatalf("expected 7, got %d", got)
	}
	if got := h(cell{0, 0}); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
}

func TestConstructionErrors(t *testing.T) {
	fn := gridFuncs(3)

	bad := fn
	bad.Apply = nil
	if _, err := search.NewSearcher(bad, search.BFSOpts{}); !errors.Is(err, search.ErrMissingFunc) {
		t.Fatalf("expected ErrMissingFunc, got %v", err)
	}
	if _, err := search.NewAStar(bad, gridHeuristic(3), 0); !errors.Is(err, search.ErrMissingFunc) {
		t.Fatalf("expected ErrMissingFunc, got %v", err)
	}
	if _, err := search.NewAStar(fn, nil, 0); !errors.Is(err, search.ErrMissingHeuristic) {
		t.Fatalf("expected ErrMissingHeuristic, got %v", err)
	}
	if _, err := search.NewAStar(fn, gridHeuristic(3), -1); !errors.Is(err, search.ErrBadInitialCost) {
		t.Fatalf("expected ErrBadInitialCost, got %v", err)
	}
}
