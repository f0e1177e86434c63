package libkami

// Hand-authored sample puzzles. Each constructor returns a fresh owned
// puzzle; callers wanting cross-puzzle identity dedup pass one shared
// HashTracker to every constructor.

// PuzzleFiveCycle is a 5-node cycle over three colors. It collapses to
// three components and solves in exactly two moves.
func PuzzleFiveCycle(tracker *HashTracker) *SolvablePuzzle {
	return MustParsePuzzle(
		"1:orange-2:orange-3:darkblue-4:cream-5:cream-1", tracker)
}

// PuzzleKami33 is the 11-region "3-3" board: four colors, a dark blue
// hub touching most of the board.
func PuzzleKami33(tracker *HashTracker) *SolvablePuzzle {
	return MustParsePuzzle(
		"0:cream-1:turquoise-3:darkblue,"+
			" 0-2:orange-3, 0-4:orange-3,"+
			" 2-5:cream-3, 5-7:orange-3,"+
			" 4-6:cream-3, 6-8:orange-3,"+
			" 7-10:cream-8, 9:turquoise-3, 9-10", tracker)
}
