package libkami

import (
	"errors"
	"runtime"
	"sync"

	"github.com/emirpasic/gods/trees/redblacktree"
	"github.com/emirpasic/gods/utils"
	"github.com/plan-systems/klog"
	"golang.org/x/sync/errgroup"

	"github.com/kami-systems/gokami/gokami"
)

// Errors
var (
	ErrBadCreatorParam = errors.New("creator: need 1 <= colors <= nodes")
)

// CreatorOpts specifies params for a hardest-puzzle enumeration.
type CreatorOpts struct {
	NumNodes   int
	NumColors  int            // palette = first NumColors canonical colors
	Fuzzy      bool           // skip quick-hash duplicates (may miss puzzles)
	NumWorkers int            // 0 = GOMAXPROCS
	Catalog    gokami.Catalog // optional: record every solved puzzle
}

// HardestResult is the most move-hungry puzzle an enumeration found.
type HardestResult struct {
	Puzzle   *SolvablePuzzle
	Solution []gokami.Move
}

// HardestPuzzle enumerates every connected planar simple graph on
// NumNodes nodes under every NumColors-coloring, solves each, and
// returns a puzzle needing the most moves (nil if nothing was
// solvable). Non-planar graphs are skipped: they cannot arise from
// color regions of a flat board.
//
// Each worker runs self-contained searches against a private
// HashTracker; only the fuzzy dedup set and the move-count ranking are
// shared, each behind its own mutex.
func HardestPuzzle(opts CreatorOpts) (*HardestResult, error) {
	n, k := opts.NumNodes, opts.NumColors
	if k < 1 || k > n {
		return nil, ErrBadCreatorParam
	}
	workers := opts.NumWorkers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	type nodePair struct{ a, b gokami.NodeID }
	pairs := make([]nodePair, 0, n*(n-1)/2)
	for a := 0; a < n; a++ {
		for b := a + 1; b < n; b++ {
			pairs = append(pairs, nodePair{gokami.NodeID(a), gokami.NodeID(b)})
		}
	}
	numMasks := uint64(1) << len(pairs)
	palette := gokami.Palette(k)

	// one exemplar puzzle per observed solution length
	var rankedMu sync.Mutex
	ranked := redblacktree.NewWith(utils.IntComparator)

	var fuzzyMu sync.Mutex
	fuzzySeen := make(map[gokami.QuickHash]struct{})

	var grp errgroup.Group
	for w := 0; w < workers; w++ {
		w := w
		grp.Go(func() error {
			tracker := NewHashTracker()
			adj := make([][]gokami.NodeID, n)

			for mask := uint64(w); mask < numMasks; mask += uint64(workers) {
				for i := range adj {
					adj[i] = adj[i][:0]
				}
				for i, pair := range pairs {
					if mask&(1<<uint(i)) != 0 {
						adj[pair.a] = append(adj[pair.a], pair.b)
						adj[pair.b] = append(adj[pair.b], pair.a)
					}
				}
				if !connected(adj) {
					continue
				}
				if denseFromAdj(adj).nonPlanar() {
					continue
				}
				if mask%4096 == 0 {
					klog.V(2).Infof("creator: worker %d at mask %d/%d", w, mask, numMasks)
				}

				coloring := make([]gokami.Color, n)
				for {
					sp := NewSolvable(tracker, palette)
					for id, c := range coloring {
						sp.AddNode(gokami.NodeID(id), c)
					}
					for i, pair := range pairs {
						if mask&(1<<uint(i)) != 0 {
							if err := sp.AddEdge(pair.a, pair.b); err != nil {
								return err
							}
						}
					}

					skip := false
					if opts.Fuzzy {
						quick := sp.QuickIdentity()
						fuzzyMu.Lock()
						if _, dup := fuzzySeen[quick]; dup {
							skip = true
						} else {
							fuzzySeen[quick] = struct{}{}
						}
						fuzzyMu.Unlock()
					}

					if !skip {
						if solution := sp.Solve(); solution != nil {
							rankedMu.Lock()
							if _, have := ranked.Get(len(solution)); !have {
								ranked.Put(len(solution), &HardestResult{
									Puzzle:   sp,
									Solution: solution,
								})
							}
							rankedMu.Unlock()
							if opts.Catalog != nil {
								opts.Catalog.TryAddPuzzle(sp, len(solution))
							}
						}
					}

					if !nextColoring(coloring, k) {
						break
					}
				}
			}
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}

	if ranked.Empty() {
		return nil, nil
	}
	return ranked.Right().Value.(*HardestResult), nil
}

// nextColoring advances the coloring odometer in base k.
// Returns false once the odometer wraps back to all zeros.
func nextColoring(coloring []gokami.Color, k int) bool {
	for i := range coloring {
		coloring[i]++
		if int(coloring[i]) < k {
			return true
		}
		coloring[i] = 0
	}
	return false
}

// connected reports whether the adjacency lists form one component.
func connected(adj [][]gokami.NodeID) bool {
	if len(adj) == 0 {
		return true
	}
	visited := make([]bool, len(adj))
	stack := []gokami.NodeID{0}
	visited[0] = true
	count := 1
	for len(stack) > 0 {
		at := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, nbr := range adj[at] {
			if !visited[nbr] {
				visited[nbr] = true
				count++
				stack = append(stack, nbr)
			}
		}
	}
	return count == len(adj)
}
