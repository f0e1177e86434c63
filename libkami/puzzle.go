package libkami

import (
	"encoding/binary"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/kami-systems/gokami/gokami"
)

// dirty bits for lazily recomputed derived values
const (
	dirtyCollapse = 1 << iota // puzzle may contain mergeable same-color components
	dirtyQuickHash
	dirtyFullHash
	dirtyAll = dirtyCollapse | dirtyQuickHash | dirtyFullHash
)

// Puzzle is an undirected simple graph whose nodes each carry one color.
//
// A Puzzle is built once with AddNode / AddEdge and then mutated only
// through SetColor and Collapse. Derived values (quick hash, canonical
// graph, full hash) are invalidated on mutation and recomputed lazily.
type Puzzle struct {
	colors  map[gokami.NodeID]gokami.Color
	adj     map[gokami.NodeID]map[gokami.NodeID]struct{}
	tracker *HashTracker

	dirty     uint8
	canon     *canonGraph
	quickHash gokami.QuickHash
	fullHash  gokami.FullHash
}

// NewPuzzle returns an empty puzzle.
// If tracker is nil, the puzzle gets a private HashTracker.
func NewPuzzle(tracker *HashTracker) *Puzzle {
	if tracker == nil {
		tracker = NewHashTracker()
	}
	return &Puzzle{
		colors:  make(map[gokami.NodeID]gokami.Color),
		adj:     make(map[gokami.NodeID]map[gokami.NodeID]struct{}),
		tracker: tracker,
		dirty:   dirtyAll,
	}
}

// SetTracker rebinds this puzzle to the given HashTracker.
// The graph is unchanged but the full identity may change, since full
// identities are only stable within one tracker.
func (p *Puzzle) SetTracker(tracker *HashTracker) {
	p.tracker = tracker
	p.dirty |= dirtyFullHash
}

// Tracker returns the HashTracker this puzzle is bound to.
func (p *Puzzle) Tracker() *HashTracker {
	return p.tracker
}

// AddNode inserts a node with the given color.
// Re-adding an existing node overwrites its color.
func (p *Puzzle) AddNode(id gokami.NodeID, color gokami.Color) {
	p.markDirty()
	p.colors[id] = color
	if p.adj[id] == nil {
		p.adj[id] = make(map[gokami.NodeID]struct{})
	}
}

// AddEdge inserts the undirected edge {a, b}.
// Both endpoints must already exist; self-loops are rejected.
func (p *Puzzle) AddEdge(a, b gokami.NodeID) error {
	if a == b {
		return fmt.Errorf("%w: %d", gokami.ErrEdgeToSelf, a)
	}
	if _, ok := p.colors[a]; !ok {
		return fmt.Errorf("%w: %d", gokami.ErrNodeNotFound, a)
	}
	if _, ok := p.colors[b]; !ok {
		return fmt.Errorf("%w: %d", gokami.ErrNodeNotFound, b)
	}
	p.markDirty()
	p.adj[a][b] = struct{}{}
	p.adj[b][a] = struct{}{}
	return nil
}

func (p *Puzzle) markDirty() {
	p.dirty = dirtyAll
	p.canon = nil
}

// ColorOf returns the color of the given node.
func (p *Puzzle) ColorOf(id gokami.NodeID) (gokami.Color, error) {
	c, ok := p.colors[id]
	if !ok {
		return 0, fmt.Errorf("%w: %d", gokami.ErrNodeNotFound, id)
	}
	return c, nil
}

// HasNode reports whether the puzzle contains the given node.
func (p *Puzzle) HasNode(id gokami.NodeID) bool {
	_, ok := p.colors[id]
	return ok
}

// Nodes returns all node IDs in ascending order.
func (p *Puzzle) Nodes() []gokami.NodeID {
	ids := make([]gokami.NodeID, 0, len(p.colors))
	for id := range p.colors {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Neighbors returns the direct neighbors of the given node in ascending order.
func (p *Puzzle) Neighbors(id gokami.NodeID) []gokami.NodeID {
	nbrs := make([]gokami.NodeID, 0, len(p.adj[id]))
	for n := range p.adj[id] {
		nbrs = append(nbrs, n)
	}
	sort.Slice(nbrs, func(i, j int) bool { return nbrs[i] < nbrs[j] })
	return nbrs
}

// SameColorNeighbors returns the direct neighbors sharing the node's
// current color, the basis of one-hop propagation and component discovery.
func (p *Puzzle) SameColorNeighbors(id gokami.NodeID) []gokami.NodeID {
	color := p.colors[id]
	same := make([]gokami.NodeID, 0, len(p.adj[id]))
	for n := range p.adj[id] {
		if p.colors[n] == color {
			same = append(same, n)
		}
	}
	sort.Slice(same, func(i, j int) bool { return same[i] < same[j] })
	return same
}

// NodeCount returns the number of nodes currently in the puzzle.
func (p *Puzzle) NodeCount() int {
	return len(p.colors)
}

// EdgeCount returns the number of undirected edges currently in the puzzle.
func (p *Puzzle) EdgeCount() int {
	ends := 0
	for _, nbrs := range p.adj {
		ends += len(nbrs)
	}
	return ends / 2
}

// ColorCount returns the number of distinct colors present.
func (p *Puzzle) ColorCount() int {
	seen := make(map[gokami.Color]struct{}, 4)
	for _, c := range p.colors {
		seen[c] = struct{}{}
	}
	return len(seen)
}

// MaxDegree returns the highest node degree in the puzzle.
func (p *Puzzle) MaxDegree() int {
	best := 0
	for _, nbrs := range p.adj {
		if len(nbrs) > best {
			best = len(nbrs)
		}
	}
	return best
}

// IsSolved returns true if exactly one distinct color remains.
func (p *Puzzle) IsSolved() bool {
	return p.ColorCount() == 1
}

// SetColor sets the node's color. If propagate is set, every direct
// neighbor sharing the node's previous color is recolored as well (one
// hop only; the full flood effect comes from a following Collapse).
func (p *Puzzle) SetColor(id gokami.NodeID, color gokami.Color, propagate bool) error {
	if _, ok := p.colors[id]; !ok {
		return fmt.Errorf("%w: %d", gokami.ErrNodeNotFound, id)
	}
	p.markDirty()
	if propagate {
		for _, n := range p.SameColorNeighbors(id) {
			p.colors[n] = color
		}
	}
	p.colors[id] = color
	return nil
}

// component returns the maximal connected same-colored component
// containing start, via a stack traversal with a visited set.
func (p *Puzzle) component(start gokami.NodeID) map[gokami.NodeID]struct{} {
	color := p.colors[start]
	stack := []gokami.NodeID{start}
	comp := make(map[gokami.NodeID]struct{})
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, visited := comp[current]; visited {
			continue
		}
		if p.colors[current] != color {
			continue
		}
		comp[current] = struct{}{}
		for n := range p.adj[current] {
			stack = append(stack, n)
		}
	}
	return comp
}

// collapseComponent merges comp into its single representative rep,
// rewiring edges to every outside neighbor of any member. Edges between
// members are dropped; parallel edges to one neighbor coalesce.
func (p *Puzzle) collapseComponent(rep gokami.NodeID, comp map[gokami.NodeID]struct{}) {
	if len(comp) == 1 {
		return
	}
	color := p.colors[rep]
	outside := make(map[gokami.NodeID]struct{})
	for member := range comp {
		for n := range p.adj[member] {
			if _, in := comp[n]; !in {
				outside[n] = struct{}{}
			}
		}
	}
	for member := range comp {
		for n := range p.adj[member] {
			delete(p.adj[n], member)
		}
		delete(p.adj, member)
		delete(p.colors, member)
	}
	p.colors[rep] = color
	p.adj[rep] = make(map[gokami.NodeID]struct{}, len(outside))
	for n := range outside {
		p.adj[rep][n] = struct{}{}
		p.adj[n][rep] = struct{}{}
	}
}

// CollapseNode merges the same-colored component containing id into a
// single node (keeping id as the representative).
func (p *Puzzle) CollapseNode(id gokami.NodeID) error {
	if _, ok := p.colors[id]; !ok {
		return fmt.Errorf("%w: %d", gokami.ErrNodeNotFound, id)
	}
	p.markDirty()
	p.collapseComponent(id, p.component(id))
	return nil
}

// Collapse merges every maximal connected same-colored component into
// one node, producing the puzzle's reduced shape. Idempotent: collapsing
// an already-collapsed puzzle changes nothing.
func (p *Puzzle) Collapse() {
	if p.dirty&dirtyCollapse == 0 {
		return
	}
	visited := make(map[gokami.NodeID]struct{}, len(p.colors))
	for _, id := range p.Nodes() {
		if _, done := visited[id]; done {
			continue
		}
		if _, alive := p.colors[id]; !alive {
			continue
		}
		comp := p.component(id)
		for member := range comp {
			visited[member] = struct{}{}
		}
		p.collapseComponent(id, comp)
	}
	// hashing is unaffected: it always works on the collapsed form
	p.dirty &^= dirtyCollapse
}

// Copy returns an independent copy of the graph sharing this puzzle's
// HashTracker, so identities of duplicate states still collide.
// Use SetTracker on the copy to give it a private tracker instead.
func (p *Puzzle) Copy() *Puzzle {
	cp := &Puzzle{
		colors:    make(map[gokami.NodeID]gokami.Color, len(p.colors)),
		adj:       make(map[gokami.NodeID]map[gokami.NodeID]struct{}, len(p.adj)),
		tracker:   p.tracker,
		dirty:     p.dirty,
		canon:     p.canon,
		quickHash: p.quickHash,
		fullHash:  p.fullHash,
	}
	for id, c := range p.colors {
		cp.colors[id] = c
	}
	for id, nbrs := range p.adj {
		cpn := make(map[gokami.NodeID]struct{}, len(nbrs))
		for n := range nbrs {
			cpn[n] = struct{}{}
		}
		cp.adj[id] = cpn
	}
	return cp
}

// canonical returns the canonical graph of this puzzle's collapsed form,
// rebuilding it only when the puzzle changed since the last call.
func (p *Puzzle) canonical() *canonGraph {
	if p.canon != nil {
		return p.canon
	}
	src := p
	if p.dirty&dirtyCollapse != 0 {
		src = p.Copy()
		src.Collapse()
	}
	p.canon = newCanonGraph(src)
	return p.canon
}

// QuickIdentity returns the structural signature of the collapsed puzzle.
// Equal signatures are necessary but not sufficient for isomorphism.
func (p *Puzzle) QuickIdentity() gokami.QuickHash {
	if p.dirty&dirtyQuickHash != 0 {
		p.quickHash = p.canonical().quickHash()
		p.dirty &^= dirtyQuickHash
	}
	return p.quickHash
}

// FullIdentity registers the collapsed puzzle with the bound tracker and
// returns its identity. Two puzzles bound to one tracker get the same
// FullIdentity if and only if their collapsed forms are isomorphic.
func (p *Puzzle) FullIdentity() gokami.FullHash {
	if p.dirty&dirtyFullHash != 0 {
		p.fullHash = p.tracker.Identity(p.canonical())
		p.dirty &^= dirtyFullHash
	}
	return p.fullHash
}

// MarshalOut appends a deterministic binary encoding of the puzzle:
// varint node count, then per node (ascending ID) the ID and its color,
// then varint edge count and each edge (a < b, ascending).
func (p *Puzzle) MarshalOut(in []byte) ([]byte, error) {
	var scrap [binary.MaxVarintLen64]byte
	out := in

	putUvarint := func(v uint64) {
		n := binary.PutUvarint(scrap[:], v)
		out = append(out, scrap[:n]...)
	}
	putVarint := func(v int64) {
		n := binary.PutVarint(scrap[:], v)
		out = append(out, scrap[:n]...)
	}

	nodes := p.Nodes()
	putUvarint(uint64(len(nodes)))
	for _, id := range nodes {
		putUvarint(uint64(id))
		putVarint(int64(p.colors[id]))
	}

	type edge struct{ a, b gokami.NodeID }
	edges := make([]edge, 0, p.EdgeCount())
	for _, id := range nodes {
		for n := range p.adj[id] {
			if id < n {
				edges = append(edges, edge{id, n})
			}
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].a != edges[j].a {
			return edges[i].a < edges[j].a
		}
		return edges[i].b < edges[j].b
	})
	putUvarint(uint64(len(edges)))
	for _, e := range edges {
		putUvarint(uint64(e.a))
		putUvarint(uint64(e.b))
	}
	return out, nil
}

// InitFromEncoding resets the puzzle from an encoding produced by MarshalOut.
func (p *Puzzle) InitFromEncoding(enc []byte) error {
	rd := encReader{buf: enc}

	nodeCount := rd.uvarint()
	colors := make(map[gokami.NodeID]gokami.Color, nodeCount)
	adj := make(map[gokami.NodeID]map[gokami.NodeID]struct{}, nodeCount)
	for i := uint64(0); i < nodeCount; i++ {
		id := gokami.NodeID(rd.uvarint())
		colors[id] = gokami.Color(rd.varint())
		adj[id] = make(map[gokami.NodeID]struct{})
	}
	edgeCount := rd.uvarint()
	for i := uint64(0); i < edgeCount; i++ {
		a := gokami.NodeID(rd.uvarint())
		b := gokami.NodeID(rd.uvarint())
		if rd.err == nil {
			if _, ok := adj[a]; !ok {
				return gokami.ErrBadEncoding
			}
			if _, ok := adj[b]; !ok {
				return gokami.ErrBadEncoding
			}
			adj[a][b] = struct{}{}
			adj[b][a] = struct{}{}
		}
	}
	if rd.err != nil {
		return rd.err
	}
	p.colors = colors
	p.adj = adj
	if p.tracker == nil {
		p.tracker = NewHashTracker()
	}
	p.markDirty()
	return nil
}

type encReader struct {
	buf []byte
	err error
}

func (rd *encReader) uvarint() uint64 {
	v, n := binary.Uvarint(rd.buf)
	if n <= 0 {
		rd.err = gokami.ErrBadEncoding
		return 0
	}
	rd.buf = rd.buf[n:]
	return v
}

func (rd *encReader) varint() int64 {
	v, n := binary.Varint(rd.buf)
	if n <= 0 {
		rd.err = gokami.ErrBadEncoding
		return 0
	}
	rd.buf = rd.buf[n:]
	return v
}

// WriteAsString writes a one-line description of the puzzle:
// each node with its color and neighbor list.
func (p *Puzzle) WriteAsString(out io.Writer) {
	for i, id := range p.Nodes() {
		if i > 0 {
			fmt.Fprint(out, "  ")
		}
		fmt.Fprintf(out, "%d:%v->%v", id, p.colors[id], p.Neighbors(id))
	}
}

func (p *Puzzle) String() string {
	var b strings.Builder
	p.WriteAsString(&b)
	return b.String()
}
