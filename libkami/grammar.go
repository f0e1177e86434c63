package libkami

import (
	"fmt"

	"github.com/alecthomas/participle/v2"
	"github.com/pkg/errors"

	"github.com/kami-systems/gokami/gokami"
)

// PuzzleExpr is the text form of a puzzle: comma-separated edge runs of
// `id[:color]` nodes, e.g.
//
//	1:orange-2:orange-3:darkblue-4:cream-5:cream-1
//
// Every node's color must be declared exactly once across the whole
// expression; later mentions of the node use the bare id. Colors are
// names ("cream"), bare palette indexes ("2"), or "color_N" for the
// open-ended universe. A run of a single node declares an isolated node.
type PuzzleExpr struct {
	Runs []*EdgeRun `parser:"@@ (',' @@)*"`
}

type EdgeRun struct {
	Start *VtxRef   `parser:"@@"`
	Links []*VtxRef `parser:"('-' @@)*"`
}

type VtxRef struct {
	ID    uint32  `parser:"@Int"`
	Color *string `parser:"(':' @(Ident | Int))?"`
}

var parsePuzzleExpr = participle.MustBuild[PuzzleExpr]()

// ParsePuzzle builds a solvable puzzle from its text form.
// The palette is the set of colors the expression declares; use
// ParsePuzzleWithPalette to allow extra colors.
// If tracker is nil, the puzzle gets a private HashTracker.
func ParsePuzzle(expr string, tracker *HashTracker) (*SolvablePuzzle, error) {
	return ParsePuzzleWithPalette(expr, tracker, nil)
}

// ParsePuzzleWithPalette is ParsePuzzle with an explicit palette, which
// must cover every color the expression declares.
func ParsePuzzleWithPalette(expr string, tracker *HashTracker, palette []gokami.Color) (*SolvablePuzzle, error) {
	ast, err := parsePuzzleExpr.ParseString("", expr)
	if err != nil {
		return nil, errors.Wrap(gokami.ErrBadPuzzleExpr, err.Error())
	}

	// First pass: collect each node's declared color.
	colors := make(map[gokami.NodeID]gokami.Color)
	var order []gokami.NodeID
	tally := func(ref *VtxRef) error {
		id := gokami.NodeID(ref.ID)
		if ref.Color == nil {
			return nil
		}
		c, err := gokami.ParseColor(*ref.Color)
		if err != nil {
			return err
		}
		if _, dup := colors[id]; dup {
			return fmt.Errorf("%w: node %d", gokami.ErrColorRedeclared, id)
		}
		colors[id] = c
		order = append(order, id)
		return nil
	}
	mentioned := make(map[gokami.NodeID]struct{})
	for _, run := range ast.Runs {
		mentioned[gokami.NodeID(run.Start.ID)] = struct{}{}
		if err := tally(run.Start); err != nil {
			return nil, err
		}
		for _, link := range run.Links {
			mentioned[gokami.NodeID(link.ID)] = struct{}{}
			if err := tally(link); err != nil {
				return nil, err
			}
		}
	}
	for id := range mentioned {
		if _, ok := colors[id]; !ok {
			return nil, fmt.Errorf("%w: node %d", gokami.ErrColorMissing, id)
		}
	}

	if palette == nil {
		for _, c := range colors {
			palette = append(palette, c)
		}
	} else {
		allowed := make(map[gokami.Color]struct{}, len(palette))
		for _, c := range palette {
			allowed[c] = struct{}{}
		}
		for id, c := range colors {
			if _, ok := allowed[c]; !ok {
				return nil, errors.Wrapf(gokami.ErrBadColor,
					"node %d declares %v, not in the given palette", id, c)
			}
		}
	}
	if len(palette) == 0 {
		return nil, gokami.ErrEmptyPalette
	}

	// Second pass: build nodes then edges.
	sp := NewSolvable(tracker, palette)
	for _, id := range order {
		sp.AddNode(id, colors[id])
	}
	for _, run := range ast.Runs {
		prev := gokami.NodeID(run.Start.ID)
		for _, link := range run.Links {
			next := gokami.NodeID(link.ID)
			if err := sp.AddEdge(prev, next); err != nil {
				return nil, err
			}
			prev = next
		}
	}
	return sp, nil
}

// MustParsePuzzle is ParsePuzzle for known-good expressions (the sample
// puzzles); it panics on error.
func MustParsePuzzle(expr string, tracker *HashTracker) *SolvablePuzzle {
	sp, err := ParsePuzzle(expr, tracker)
	if err != nil {
		panic(err)
	}
	return sp
}
