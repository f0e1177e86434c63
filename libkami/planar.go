package libkami

import (
	"math/bits"

	"github.com/kami-systems/gokami/gokami"
)

// denseGraph is a bitmask adjacency matrix for planarity testing of the
// tiny graphs the creator enumerates. Node slots are 0..n-1.
type denseGraph struct {
	n    int
	rows []uint32
}

func denseFromAdj(adj [][]gokami.NodeID) denseGraph {
	g := denseGraph{
		n:    len(adj),
		rows: make([]uint32, len(adj)),
	}
	for a, nbrs := range adj {
		for _, b := range nbrs {
			g.rows[a] |= 1 << uint(b)
		}
	}
	return g
}

func (g denseGraph) edge(a, b int) bool {
	return g.rows[a]&(1<<uint(b)) != 0
}

func (g denseGraph) edgeCount() int {
	ends := 0
	for _, row := range g.rows {
		ends += bits.OnesCount32(row)
	}
	return ends / 2
}

// contract merges node b into node a, compacting slots above b down by
// one. Parallel edges coalesce; the merged node carries no self loop.
func (g denseGraph) contract(a, b int) denseGraph {
	out := denseGraph{n: g.n - 1, rows: make([]uint32, g.n-1)}
	remap := func(i int) int {
		if i > b {
			return i - 1
		}
		return i
	}
	for i := 0; i < g.n; i++ {
		if i == b {
			continue
		}
		row := g.rows[i]
		if i == a {
			row |= g.rows[b]
		}
		ni := remap(i)
		for j := 0; j < g.n; j++ {
			if row&(1<<uint(j)) == 0 {
				continue
			}
			jj := j
			if jj == b {
				jj = a
			}
			if nj := remap(jj); nj != ni {
				out.rows[ni] |= 1 << uint(nj)
			}
		}
	}
	return out
}

// hasK5 reports whether any 5 nodes are pairwise adjacent.
func (g denseGraph) hasK5() bool {
	var pick func(start, chosen int, nodes []int) bool
	pick = func(start, chosen int, nodes []int) bool {
		if chosen == 5 {
			return true
		}
		for v := start; v < g.n; v++ {
			ok := true
			for _, u := range nodes[:chosen] {
				if !g.edge(u, v) {
					ok = false
					break
				}
			}
			if ok {
				nodes[chosen] = v
				if pick(v+1, chosen+1, nodes) {
					return true
				}
			}
		}
		return false
	}
	return pick(0, 0, make([]int, 5))
}

// hasK33 reports whether some 3+3 node split carries all 9 cross edges.
func (g denseGraph) hasK33() bool {
	if g.n < 6 {
		return false
	}
	var six [6]int
	var pickSix func(start, chosen int) bool
	splitOK := func() bool {
		// fix six[0] on the left side; choose its 2 partners
		for i := 1; i < 5; i++ {
			for j := i + 1; j < 6; j++ {
				left := [3]int{six[0], six[i], six[j]}
				var right [3]int
				r := 0
				for k := 1; k < 6; k++ {
					if k != i && k != j {
						right[r] = six[k]
						r++
					}
				}
				all := true
				for _, l := range left {
					for _, rr := range right {
						if !g.edge(l, rr) {
							all = false
							break
						}
					}
					if !all {
						break
					}
				}
				if all {
					return true
				}
			}
		}
		return false
	}
	pickSix = func(start, chosen int) bool {
		if chosen == 6 {
			return splitOK()
		}
		for v := start; v < g.n; v++ {
			six[chosen] = v
			if pickSix(v+1, chosen+1) {
				return true
			}
		}
		return false
	}
	return pickSix(0, 0)
}

// nonPlanar reports whether the graph has a K5 or K3,3 minor, found by
// subgraph checks plus branching over single edge contractions. At
// creator scale every input is tiny, so the exponential search is fine.
func (g denseGraph) nonPlanar() bool {
	if g.n < 5 {
		return false
	}
	if g.n >= 3 && g.edgeCount() > 3*g.n-6 {
		return true
	}
	if g.hasK5() || g.hasK33() {
		return true
	}
	for a := 0; a < g.n; a++ {
		for b := a + 1; b < g.n; b++ {
			if g.edge(a, b) && g.contract(a, b).nonPlanar() {
				return true
			}
		}
	}
	return false
}
