package gokami

import (
	"fmt"
	"io"
	"strings"
)

// PuzzleStream is a pipeline of puzzle states.
// Each stage consumes its upstream Outlet and feeds a new stream,
// so stages compose left to right.
type PuzzleStream struct {
	Outlet chan State
}

func NewPuzzleStream() *PuzzleStream {
	stream := &PuzzleStream{
		Outlet: make(chan State),
	}
	return stream
}

// StreamPuzzle starts a stream that emits a copy of X and closes.
func StreamPuzzle(X State) *PuzzleStream {
	next := NewPuzzleStream()

	go func() {
		next.Outlet <- X.MakeCopy()
		next.Close()
	}()

	return next
}

func (stream *PuzzleStream) Close() {
	if stream.Outlet != nil {
		close(stream.Outlet)
	}
}

func (stream *PuzzleStream) PushPuzzle(X State) {
	stream.Outlet <- X.MakeCopy()
}

func (stream *PuzzleStream) PullPuzzle() State {
	X := <-stream.Outlet
	return X
}

// PullAll drains the stream, returning how many states passed through.
func (stream *PuzzleStream) PullAll() int {
	count := int(0)
	for range stream.Outlet {
		count++
	}
	return count
}

// Filter passes through only states for which keep returns true.
func (stream *PuzzleStream) Filter(keep func(X State) bool) *PuzzleStream {
	next := &PuzzleStream{
		Outlet: make(chan State, 1),
	}

	go func() {
		for X := range stream.Outlet {
			if keep(X) {
				next.Outlet <- X
			}
		}
		next.Close()
	}()

	return next
}

// AddTo offers each state to target, passing through only states that
// were newly added (i.e. not isomorphic to anything target already had).
func (stream *PuzzleStream) AddTo(target PuzzleAdder) *PuzzleStream {
	next := &PuzzleStream{
		Outlet: make(chan State, 1),
	}

	go func() {
		for X := range stream.Outlet {
			wasAdded := target.TryAddPuzzle(X, MoveCountUnknown)
			if wasAdded {
				next.Outlet <- X
			}
		}
		next.Close()
	}()

	return next
}

// Solvable passes through only states that have a solution.
func (stream *PuzzleStream) Solvable() *PuzzleStream {
	return stream.Filter(func(X State) bool {
		return X.Solve() != nil
	})
}

func (stream *PuzzleStream) Print(
	out io.WriteCloser,
	label string) *PuzzleStream {

	next := &PuzzleStream{
		Outlet: make(chan State, 1),
	}

	go func() {
		buf := strings.Builder{}
		buf.Grow(256)

		count := 0
		for X := range stream.Outlet {
			if len(label) > 0 {
				buf.WriteString(label)
			}
			buf.WriteByte(',')

			count++
			fmt.Fprintf(&buf, "%06d,", count)
			X.WriteAsString(&buf)
			buf.WriteByte('\n')
			out.Write([]byte(buf.String()))
			buf.Reset()
			next.Outlet <- X
		}
		out.Close()
		next.Close()
	}()

	return next
}

// SelectFromCatalog streams every catalog entry admitted by sel.
func SelectFromCatalog(cat Catalog, sel Selector) *PuzzleStream {
	next := &PuzzleStream{
		Outlet: make(chan State, 1),
	}

	onHit := make(chan State, 4)

	go func() {
		cat.Select(sel, onHit)
		close(onHit)
	}()

	go func() {
		for X := range onHit {
			next.Outlet <- X
		}
		next.Close()
	}()

	return next
}
