package libkami

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"sort"

	"github.com/kami-systems/gokami/gokami"
)

// refinementRounds is how many neighborhood-aggregation rounds feed the
// quick hash. Three rounds separate everything a 3-hop neighborhood can.
const refinementRounds = 3

const (
	kindVertex byte = iota // one per surviving puzzle node
	kindColor              // one per distinct color present
)

// canonGraph is the bipartite-augmented directed graph derived from a
// collapsed puzzle: a node per surviving vertex, a node per distinct
// color, an edge color->vertex for each vertex of that color, and a pair
// of opposite directed edges per undirected puzzle edge.
//
// Two puzzles with the same topology-plus-coloring are isomorphic as
// canonGraphs regardless of node-ID labeling or color permutation.
type canonGraph struct {
	kinds  []byte
	outs   [][]int
	ins    [][]int
	labels []uint64 // final refinement labels; computed once on build
}

// newCanonGraph builds the canonical graph of an already-collapsed puzzle.
func newCanonGraph(p *Puzzle) *canonGraph {
	ids := p.Nodes()
	vtxIdx := make(map[gokami.NodeID]int, len(ids))
	for i, id := range ids {
		vtxIdx[id] = i
	}

	colorSet := make(map[gokami.Color]struct{})
	for _, id := range ids {
		colorSet[p.colors[id]] = struct{}{}
	}
	colors := make([]gokami.Color, 0, len(colorSet))
	for c := range colorSet {
		colors = append(colors, c)
	}
	sort.Slice(colors, func(i, j int) bool { return colors[i] < colors[j] })
	colorIdx := make(map[gokami.Color]int, len(colors))
	for i, c := range colors {
		colorIdx[c] = len(ids) + i
	}

	n := len(ids) + len(colors)
	cg := &canonGraph{
		kinds: make([]byte, n),
		outs:  make([][]int, n),
		ins:   make([][]int, n),
	}
	for i := range ids {
		cg.kinds[i] = kindVertex
	}
	for i := len(ids); i < n; i++ {
		cg.kinds[i] = kindColor
	}

	addEdge := func(from, to int) {
		cg.outs[from] = append(cg.outs[from], to)
		cg.ins[to] = append(cg.ins[to], from)
	}
	for _, id := range ids {
		addEdge(colorIdx[p.colors[id]], vtxIdx[id])
	}
	for _, id := range ids {
		for nbr := range p.adj[id] {
			addEdge(vtxIdx[id], vtxIdx[nbr])
		}
	}

	cg.refine()
	return cg
}

func hashWords(words ...uint64) uint64 {
	var buf [8]byte
	h := fnv.New64a()
	for _, w := range words {
		binary.LittleEndian.PutUint64(buf[:], w)
		h.Write(buf[:])
	}
	return h.Sum64()
}

// refine runs multi-round neighborhood label aggregation over the graph.
// After refinement, labels are invariant under isomorphism: relabeling
// the graph permutes the label slice but never changes its multiset.
func (cg *canonGraph) refine() {
	n := len(cg.kinds)
	labels := make([]uint64, n)
	for i := range labels {
		labels[i] = hashWords(uint64(cg.kinds[i]), uint64(len(cg.outs[i])), uint64(len(cg.ins[i])))
	}

	next := make([]uint64, n)
	scratch := make([]uint64, 0, n)
	for round := 0; round < refinementRounds; round++ {
		for i := range labels {
			words := scratch[:0]
			words = append(words, labels[i])
			mark := len(words)
			for _, o := range cg.outs[i] {
				words = append(words, labels[o])
			}
			sortUint64(words[mark:])
			mark = len(words)
			words = append(words, ^uint64(0)) // separator between out and in runs
			for _, in := range cg.ins[i] {
				words = append(words, labels[in])
			}
			sortUint64(words[mark+1:])
			next[i] = hashWords(words...)
			scratch = words
		}
		labels, next = next, labels
	}
	cg.labels = labels
}

func sortUint64(v []uint64) {
	sort.Slice(v, func(i, j int) bool { return v[i] < v[j] })
}

// quickHash digests the multiset of refinement labels into the puzzle's
// structural signature. Equal hashes are necessary but not sufficient
// for isomorphism; unequal hashes guarantee non-isomorphism.
// An empty graph hashes deterministically.
func (cg *canonGraph) quickHash() gokami.QuickHash {
	sorted := make([]uint64, len(cg.labels))
	copy(sorted, cg.labels)
	sortUint64(sorted)
	digest := hashWords(append([]uint64{uint64(len(cg.kinds))}, sorted...)...)
	return gokami.QuickHash(fmt.Sprintf("%016x", digest))
}

// isomorphicTo runs the authoritative check: does a vertex bijection
// exist that respects node kind and edge direction?
//
// Candidates are restricted to equal refinement labels, which both
// prunes the search and guarantees kind and degree agreement.
func (cg *canonGraph) isomorphicTo(other *canonGraph) bool {
	n := len(cg.kinds)
	if n != len(other.kinds) {
		return false
	}
	if n == 0 {
		return true
	}
	if !sameLabelMultiset(cg.labels, other.labels) {
		return false
	}

	m := &isoMatcher{
		a:    cg,
		b:    other,
		aToB: make([]int, n),
		bToA: make([]int, n),
		adjA: adjacencyMatrix(cg),
		adjB: adjacencyMatrix(other),
	}
	for i := range m.aToB {
		m.aToB[i] = -1
		m.bToA[i] = -1
	}
	return m.extend(0)
}

func sameLabelMultiset(a, b []uint64) bool {
	sa := make([]uint64, len(a))
	sb := make([]uint64, len(b))
	copy(sa, a)
	copy(sb, b)
	sortUint64(sa)
	sortUint64(sb)
	for i := range sa {
		if sa[i] != sb[i] {
			return false
		}
	}
	return true
}

func adjacencyMatrix(cg *canonGraph) []bool {
	n := len(cg.kinds)
	adj := make([]bool, n*n)
	for from, outs := range cg.outs {
		for _, to := range outs {
			adj[from*n+to] = true
		}
	}
	return adj
}

type isoMatcher struct {
	a, b       *canonGraph
	aToB, bToA []int
	adjA, adjB []bool
}

// extend tries to map node i of graph a onto each compatible unmapped
// node of graph b, backtracking on failure.
func (m *isoMatcher) extend(i int) bool {
	n := len(m.a.kinds)
	if i == n {
		return true
	}
	for j := 0; j < n; j++ {
		if m.bToA[j] >= 0 {
			continue
		}
		if m.a.kinds[i] != m.b.kinds[j] {
			continue
		}
		if m.a.labels[i] != m.b.labels[j] {
			continue
		}
		if !m.consistent(i, j) {
			continue
		}
		m.aToB[i] = j
		m.bToA[j] = i
		if m.extend(i + 1) {
			return true
		}
		m.aToB[i] = -1
		m.bToA[j] = -1
	}
	return false
}

// consistent checks that mapping i->j preserves every edge (in both
// directions) between i and all previously mapped nodes.
func (m *isoMatcher) consistent(i, j int) bool {
	n := len(m.a.kinds)
	for k := 0; k < n; k++ {
		kb := m.aToB[k]
		if kb < 0 {
			continue
		}
		if m.adjA[i*n+k] != m.adjB[j*n+kb] {
			return false
		}
		if m.adjA[k*n+i] != m.adjB[kb*n+j] {
			return false
		}
	}
	return true
}
