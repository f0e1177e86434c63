// Package search finds shortest move sequences over implicit, lazily
// expanded state graphs. A client describes its domain with four
// callbacks (Funcs) and picks breadth-first search or heuristic-guided
// A* search.
package search

import "errors"

// Errors
var (
	ErrMissingFunc      = errors.New("search: missing callback")
	ErrMissingHeuristic = errors.New("search: heuristic must not be nil")
	ErrBadInitialCost   = errors.New("search: initial cost must be >= 0")
)

// Funcs describes a problem as a directed graph with goal nodes.
//
// Info is the client's state representation; equal states need not have
// equal Info values. Name maps Info to a hashable identity: names must
// be equal if and only if the states are equal. Moves lists the legal
// moves out of a state, and Apply returns the state a move leads to
// (without mutating its input).
type Funcs[Info any, Name comparable, Move any] struct {
	Name   func(Info) Name
	IsGoal func(Info) bool
	Moves  func(Info) []Move
	Apply  func(Info, Move) Info
}

func (fn *Funcs[Info, Name, Move]) validate() error {
	if fn.Name == nil || fn.IsGoal == nil || fn.Moves == nil || fn.Apply == nil {
		return ErrMissingFunc
	}
	return nil
}

// Result is the outcome of one search run.
//
// When Found is false, Exhausted distinguishes a proven negative (the
// whole reachable state space was explored) from a depth-bounded
// unknown. Callers must not conflate the two.
type Result[Move any] struct {
	Path      []Move
	Found     bool
	Exhausted bool
	Expanded  int // number of states expanded, for diagnostics
}
