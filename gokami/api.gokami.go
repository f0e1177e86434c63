package gokami

import (
	"io"
)

// NodeID identifies a puzzle node (a colored region).
// IDs are stable only within one puzzle instance: collapsing a puzzle
// deletes all but one ID of each merged component.
type NodeID uint32

// Move recolors a node (propagating into same-colored neighbors) and
// then collapses the puzzle.
type Move struct {
	Node NodeID
	To   Color
}

// QuickHash is a short structural signature of a collapsed puzzle.
// Isomorphic puzzles always have the same QuickHash, but the converse
// is not true: one QuickHash may cover multiple isomorphism classes.
type QuickHash string

// FullHash is a QuickHash plus a disambiguating index issued by a
// HashTracker. Within one tracker, two puzzles have the same FullHash
// if and only if their collapsed forms are isomorphic.
type FullHash string

// MoveCountUnknown marks a catalog entry whose solution length has not
// been established.
const MoveCountUnknown = -1

// State is a solvable puzzle state as seen by catalogs and streams.
type State interface {

	// NodeCount returns the number of nodes currently in the puzzle.
	NodeCount() int

	// EdgeCount returns the number of undirected edges currently in the puzzle.
	EdgeCount() int

	// IsSolved returns true if exactly one color remains.
	IsSolved() bool

	// QuickIdentity returns the structural signature of the collapsed puzzle.
	QuickIdentity() QuickHash

	// FullIdentity returns the tracker-issued identity of the collapsed puzzle.
	FullIdentity() FullHash

	// Isomorphic reports whether this state and other collapse to
	// isomorphic canonical graphs.
	Isomorphic(other State) bool

	// MakeCopy returns an independent copy of this state.
	// The copy shares this state's hash tracker.
	MakeCopy() State

	// MarshalOut appends the state's binary encoding to the given buffer.
	MarshalOut(in []byte) ([]byte, error)

	// Solve returns a minimum-length move sequence that makes this state
	// monochrome, or nil if no such sequence exists.
	Solve() []Move

	WriteAsString(out io.Writer)
}

// OnPuzzleHit is a callback channel used to return States meeting a set
// of selection criteria. Ownership of a State travels through the channel.
type OnPuzzleHit chan<- State

// PuzzleAdder accepts puzzle states, deduplicating up to isomorphism.
type PuzzleAdder interface {

	// TryAddPuzzle tries to add the given state to this adder.
	// If true is returned, no isomorphic state was present and X was added.
	// moveCount is the length of a known optimal solution, or MoveCountUnknown.
	TryAddPuzzle(X State, moveCount int) bool
}

// Selector expresses criteria for pulling states out of a Catalog.
// A zero field imposes no bound.
type Selector struct {
	MinNodes int
	MaxNodes int
	MinMoves int // select only puzzles needing at least this many moves
}

// Admits returns whether a catalog entry with the given shape passes
// this selector.
func (sel *Selector) Admits(nodeCount, moveCount int) bool {
	if sel.MinNodes > 0 && nodeCount < sel.MinNodes {
		return false
	}
	if sel.MaxNodes > 0 && nodeCount > sel.MaxNodes {
		return false
	}
	if sel.MinMoves > 0 && (moveCount == MoveCountUnknown || moveCount < sel.MinMoves) {
		return false
	}
	return true
}

// CatalogOpts specifies params for opening a puzzle Catalog.
type CatalogOpts struct {
	DbPathName string // omit for an in-memory db
	ReadOnly   bool   // open in read-only mode
}

// Catalog wraps a database of collapsed puzzle encodings, keyed by
// quick hash and deduplicated by isomorphism.
type Catalog interface {
	PuzzleAdder

	// Returns true if this catalog was opened for read-only access.
	IsReadOnly() bool

	// NumPuzzles returns the number of isomorphism classes stored for a
	// given node count. An out of bounds node count returns 0.
	NumPuzzles(forNodeCount int) int64

	// Select fires the given callback with each stored state that meets
	// the selection criteria.
	Select(sel Selector, onHit OnPuzzleHit)

	Close() error
}

// CatalogContext is a container for open / active Catalog instances.
type CatalogContext interface {

	// Attaches the given Catalog to this context.
	AttachCatalog(cat Catalog)

	// Detaches the given Catalog from this context.
	DetachCatalog(cat Catalog)

	// Signals when Close() has been called.
	Closing() <-chan struct{}

	// Signals all open catalogs to close, then closes.
	Close()

	// Signals when Close() completed and all open Catalogs have been closed.
	Done() <-chan struct{}
}
