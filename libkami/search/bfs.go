package search

// BFSOpts bounds a breadth-first search.
type BFSOpts struct {
	// MaxDepth caps the path length explored; 0 means unbounded.
	// A failed search under a depth cap is reported as not Exhausted.
	MaxDepth int
}

// Searcher runs breadth-first search: shortest (minimum move count)
// paths over an implicit state graph, deduplicated by name.
type Searcher[Info any, Name comparable, Move any] struct {
	fn   Funcs[Info, Name, Move]
	opts BFSOpts
}

func NewSearcher[Info any, Name comparable, Move any](
	fn Funcs[Info, Name, Move],
	opts BFSOpts) (*Searcher[Info, Name, Move], error) {

	if err := fn.validate(); err != nil {
		return nil, err
	}
	return &Searcher[Info, Name, Move]{fn: fn, opts: opts}, nil
}

type bfsEntry[Info any, Move any] struct {
	info Info
	path []Move
}

// Solve explores states in increasing path length from start.
// If a goal is reachable, the returned path has minimum length; the
// search terminates because name-deduplication makes the reachable
// state space finite.
func (s *Searcher[Info, Name, Move]) Solve(start Info) Result[Move] {
	res := Result[Move]{Exhausted: true}

	if s.fn.IsGoal(start) {
		res.Found = true
		res.Path = []Move{}
		return res
	}

	startName := s.fn.Name(start)
	entries := map[Name]bfsEntry[Info, Move]{
		startName: {info: start},
	}
	queue := []Name{startName}

	for len(queue) > 0 {
		currentName := queue[0]
		queue = queue[1:]
		current := entries[currentName]
		res.Expanded++

		if s.opts.MaxDepth > 0 && len(current.path) >= s.opts.MaxDepth {
			res.Exhausted = false
			continue
		}

		for _, move := range s.fn.Moves(current.info) {
			child := s.fn.Apply(current.info, move)
			childPath := make([]Move, len(current.path), len(current.path)+1)
			copy(childPath, current.path)
			childPath = append(childPath, move)

			if s.fn.IsGoal(child) {
				res.Found = true
				res.Path = childPath
				return res
			}

			childName := s.fn.Name(child)
			if _, seen := entries[childName]; !seen {
				entries[childName] = bfsEntry[Info, Move]{info: child, path: childPath}
				queue = append(queue, childName)
			}
		}
	}
	return res
}
