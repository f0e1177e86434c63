package libkami

import (
	"encoding/binary"
	"sort"

	"github.com/kami-systems/gokami/gokami"
	"github.com/kami-systems/gokami/libkami/search"
)

// SolvablePuzzle pairs a Puzzle with the palette of colors a move may
// recolor to, and binds it to the generic search package.
type SolvablePuzzle struct {
	Puzzle
	palette []gokami.Color
}

var _ gokami.State = (*SolvablePuzzle)(nil)

// NewSolvable returns an empty solvable puzzle over the given palette.
// If tracker is nil, the puzzle gets a private HashTracker.
func NewSolvable(tracker *HashTracker, palette []gokami.Color) *SolvablePuzzle {
	sp := &SolvablePuzzle{
		Puzzle: *NewPuzzle(tracker),
	}
	sp.setPalette(palette)
	return sp
}

// NewSolvableN is NewSolvable over the first numColors colors of the
// canonical ordering.
func NewSolvableN(tracker *HashTracker, numColors int) *SolvablePuzzle {
	return NewSolvable(tracker, gokami.Palette(numColors))
}

func (sp *SolvablePuzzle) setPalette(palette []gokami.Color) {
	sp.palette = make([]gokami.Color, 0, len(palette))
	seen := make(map[gokami.Color]struct{}, len(palette))
	for _, c := range palette {
		if _, dup := seen[c]; !dup {
			seen[c] = struct{}{}
			sp.palette = append(sp.palette, c)
		}
	}
	sort.Slice(sp.palette, func(i, j int) bool { return sp.palette[i] < sp.palette[j] })
}

// Palette returns the colors a move may recolor to, ascending.
func (sp *SolvablePuzzle) Palette() []gokami.Color {
	return sp.palette
}

// Copy returns an independent copy sharing this puzzle's HashTracker.
func (sp *SolvablePuzzle) Copy() *SolvablePuzzle {
	return &SolvablePuzzle{
		Puzzle:  *sp.Puzzle.Copy(),
		palette: sp.palette,
	}
}

func (sp *SolvablePuzzle) MakeCopy() gokami.State {
	return sp.Copy()
}

// Isomorphic reports whether this puzzle and other collapse to
// isomorphic canonical graphs.
func (sp *SolvablePuzzle) Isomorphic(other gokami.State) bool {
	q, ok := other.(*SolvablePuzzle)
	if !ok {
		return false
	}
	return sp.canonical().isomorphicTo(q.canonical())
}

// ValidMoves lists every (node, color) recoloring where the color is in
// the palette and differs from the node's current color. Invalid moves
// are excluded by construction rather than rejected at apply time.
func (sp *SolvablePuzzle) ValidMoves() []gokami.Move {
	moves := make([]gokami.Move, 0, sp.NodeCount()*len(sp.palette))
	for _, id := range sp.Nodes() {
		current := sp.colors[id]
		for _, c := range sp.palette {
			if c != current {
				moves = append(moves, gokami.Move{Node: id, To: c})
			}
		}
	}
	return moves
}

// Apply plays the move on a copy: recolor with one-hop propagation,
// then collapse. The receiver is unchanged.
func (sp *SolvablePuzzle) Apply(move gokami.Move) *SolvablePuzzle {
	next := sp.Copy()
	next.SetColor(move.Node, move.To, true)
	next.Collapse()
	return next
}

func (sp *SolvablePuzzle) searchFuncs() search.Funcs[*SolvablePuzzle, gokami.FullHash, gokami.Move] {
	return search.Funcs[*SolvablePuzzle, gokami.FullHash, gokami.Move]{
		Name:   (*SolvablePuzzle).FullIdentity,
		IsGoal: (*SolvablePuzzle).IsSolved,
		Moves:  (*SolvablePuzzle).ValidMoves,
		Apply:  (*SolvablePuzzle).Apply,
	}
}

// Solve returns a minimum-length solution via breadth-first search, or
// nil if the puzzle cannot be made monochrome with its palette.
func (sp *SolvablePuzzle) Solve() []gokami.Move {
	solver, err := search.NewSearcher(sp.searchFuncs(), search.BFSOpts{})
	if err != nil {
		panic(err) // searchFuncs is fully populated
	}
	start := sp.Copy()
	start.Collapse()
	res := solver.Solve(start)
	if !res.Found {
		return nil
	}
	return res.Path
}

// SolveAStar returns a minimum-length solution via A* search using the
// given heuristics (the pointwise maximum is applied; all provided
// heuristics must be consistent). With no arguments it uses the two
// built-in heuristics, ColorCountHeuristic and EdgeReductionHeuristic.
func (sp *SolvablePuzzle) SolveAStar(hs ...search.Heuristic[*SolvablePuzzle]) ([]gokami.Move, error) {
	if len(hs) == 0 {
		hs = []search.Heuristic[*SolvablePuzzle]{
			ColorCountHeuristic,
			EdgeReductionHeuristic,
		}
	}
	for _, h := range hs {
		if h == nil {
			return nil, search.ErrMissingHeuristic
		}
	}
	astar, err := search.NewAStar(sp.searchFuncs(), search.Max(hs...), 0)
	if err != nil {
		return nil, err
	}
	start := sp.Copy()
	start.Collapse()
	res := astar.Solve(start)
	if !res.Found {
		return nil, nil
	}
	return res.Path, nil
}

// ColorCountHeuristic is the number of distinct colors present minus
// one. Admissible and consistent: one move can eliminate at most one
// color and can never introduce a new one.
func ColorCountHeuristic(sp *SolvablePuzzle) int {
	n := sp.ColorCount()
	if n <= 1 {
		return 0
	}
	return n - 1
}

// EdgeReductionHeuristic is ceil(edge count / max node degree) of the
// collapsed puzzle. A single move removes at most as many edges as the
// degree of the node it merges, the edge count never increases, and the
// per-move bound shrinks with it, so the heuristic stays consistent.
func EdgeReductionHeuristic(sp *SolvablePuzzle) int {
	edges := sp.EdgeCount()
	if edges == 0 {
		return 0
	}
	maxDegree := sp.MaxDegree()
	return (edges + maxDegree - 1) / maxDegree
}

// MarshalOut appends the palette followed by the puzzle encoding.
func (sp *SolvablePuzzle) MarshalOut(in []byte) ([]byte, error) {
	var scrap [binary.MaxVarintLen64]byte
	out := in

	n := binary.PutUvarint(scrap[:], uint64(len(sp.palette)))
	out = append(out, scrap[:n]...)
	for _, c := range sp.palette {
		n = binary.PutVarint(scrap[:], int64(c))
		out = append(out, scrap[:n]...)
	}
	return sp.Puzzle.MarshalOut(out)
}

// NewSolvableFromEncoding decodes an encoding made by MarshalOut.
// If tracker is nil, the puzzle gets a private HashTracker.
func NewSolvableFromEncoding(enc []byte, tracker *HashTracker) (*SolvablePuzzle, error) {
	rd := encReader{buf: enc}
	paletteLen := rd.uvarint()
	palette := make([]gokami.Color, 0, paletteLen)
	for i := uint64(0); i < paletteLen && rd.err == nil; i++ {
		palette = append(palette, gokami.Color(rd.varint()))
	}
	if rd.err != nil {
		return nil, rd.err
	}
	sp := NewSolvable(tracker, palette)
	if err := sp.InitFromEncoding(rd.buf); err != nil {
		return nil, err
	}
	return sp, nil
}
