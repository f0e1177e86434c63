package gokami

import "errors"

// Errors
var (
	ErrBadCatalogParam = errors.New("bad catalog param")
	ErrCatalogReadOnly = errors.New("catalog is read-only")
	ErrNodeNotFound    = errors.New("puzzle node not found")
	ErrEdgeToSelf      = errors.New("puzzle edge endpoints are equal")
	ErrBadEncoding     = errors.New("bad puzzle encoding")
	ErrBadColor        = errors.New("bad color")
	ErrBadPuzzleExpr   = errors.New("bad puzzle expression")
	ErrColorRedeclared = errors.New("node color declared more than once")
	ErrColorMissing    = errors.New("node missing a color declaration")
	ErrEmptyPalette    = errors.New("puzzle palette is empty")
)
