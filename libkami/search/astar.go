package search

import (
	"github.com/kami-systems/gokami/libkami/heap"
)

// Heuristic estimates the remaining move count from a state to a goal.
//
// A* requires admissibility (never overestimate) for optimal results,
// and consistency (h(n) <= 1 + h(n') across every move) for the closed
// set to be safe without reopening. All heuristics supplied to AStar
// are assumed consistent; combine several with Max to tighten the bound
// while preserving consistency.
type Heuristic[Info any] func(Info) int

// Max returns the pointwise maximum of the given heuristics.
// The maximum of consistent heuristics is itself consistent.
func Max[Info any](hs ...Heuristic[Info]) Heuristic[Info] {
	return func(info Info) int {
		best := 0
		for _, h := range hs {
			if v := h(info); v > best {
				best = v
			}
		}
		return best
	}
}

// AStar runs best-first search ordered by f = g + h over an indexed
// min-heap keyed by state name, so finding a cheaper path to a state
// already on the frontier is an O(log n) key decrease.
type AStar[Info any, Name comparable, Move any] struct {
	fn          Funcs[Info, Name, Move]
	h           Heuristic[Info]
	initialCost int
}

// NewAStar builds an A* searcher. The cost of the start state must be
// given explicitly (normally 0); a nil heuristic or negative initial
// cost is a construction error.
func NewAStar[Info any, Name comparable, Move any](
	fn Funcs[Info, Name, Move],
	h Heuristic[Info],
	initialCost int) (*AStar[Info, Name, Move], error) {

	if err := fn.validate(); err != nil {
		return nil, err
	}
	if h == nil {
		return nil, ErrMissingHeuristic
	}
	if initialCost < 0 {
		return nil, ErrBadInitialCost
	}
	return &AStar[Info, Name, Move]{fn: fn, h: h, initialCost: initialCost}, nil
}

type parentLink[Name comparable, Move any] struct {
	prev  Name
	move  Move
	start bool // set on the start state, which has no parent
}

// Solve pops frontier states cheapest-f first until a goal is popped.
// With a consistent heuristic the first pop of any name is optimal, so
// each name moves Unvisited -> Frontier -> Done exactly once.
func (a *AStar[Info, Name, Move]) Solve(start Info) Result[Move] {
	res := Result[Move]{Exhausted: true}

	startName := a.fn.Name(start)
	gScore := map[Name]int{startName: a.initialCost}
	parents := map[Name]parentLink[Name, Move]{startName: {start: true}}
	closed := make(map[Name]struct{})

	frontier := heap.NewMin[Name, int, Info]()
	frontier.AddOrUpdate(startName, a.initialCost+a.h(start), start)

	for frontier.Len() > 0 {
		top := frontier.Pop()
		name, info := top.Name, top.Value

		if a.fn.IsGoal(info) {
			res.Found = true
			res.Path = a.reconstruct(parents, name)
			return res
		}

		closed[name] = struct{}{}
		res.Expanded++
		g := gScore[name]

		for _, move := range a.fn.Moves(info) {
			child := a.fn.Apply(info, move)
			childName := a.fn.Name(child)
			if _, done := closed[childName]; done {
				continue
			}
			childG := g + 1
			if old, seen := gScore[childName]; seen && childG >= old {
				continue
			}
			gScore[childName] = childG
			parents[childName] = parentLink[Name, Move]{prev: name, move: move}
			frontier.AddOrUpdate(childName, childG+a.h(child), child)
		}
	}
	return res
}

// reconstruct walks parent back-pointers from the goal to the start.
func (a *AStar[Info, Name, Move]) reconstruct(
	parents map[Name]parentLink[Name, Move], goal Name) []Move {

	var path []Move
	for link := parents[goal]; !link.start; link = parents[link.prev] {
		path = append(path, link.move)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	if path == nil {
		path = []Move{}
	}
	return path
}
