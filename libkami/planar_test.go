package libkami

import (
	"testing"

	"github.com/kami-systems/gokami/gokami"
)

func denseFromEdges(n int, edges [][2]int) denseGraph {
	adj := make([][]gokami.NodeID, n)
	for _, e := range edges {
		adj[e[0]] = append(adj[e[0]], gokami.NodeID(e[1]))
		adj[e[1]] = append(adj[e[1]], gokami.NodeID(e[0]))
	}
	return denseFromAdj(adj)
}

func completeGraph(n int) denseGraph {
	var edges [][2]int
	for a := 0; a < n; a++ {
		for b := a + 1; b < n; b++ {
			edges = append(edges, [2]int{a, b})
		}
	}
	return denseFromEdges(n, edges)
}

func TestPlanarity(t *testing.T) {
	k33 := func() [][2]int {
		var edges [][2]int
		for l := 0; l < 3; l++ {
			for r := 3; r < 6; r++ {
				edges = append(edges, [2]int{l, r})
			}
		}
		return edges
	}()

	cases := []struct {
		name      string
		g         denseGraph
		nonPlanar bool
	}{
		{"K4", completeGraph(4), false},
		{"K5", completeGraph(5), true},
		{"K5 minus an edge", denseFromEdges(5, [][2]int{
			{0, 1}, {0, 2}, {0, 3}, {0, 4},
			{1, 2}, {1, 3}, {1, 4},
			{2, 3}, {2, 4},
		}), false},
		{"K3,3", denseFromEdges(6, k33), true},
		{"K3,3 minus an edge", denseFromEdges(6, k33[:8]), false},
		{"5-cycle", denseFromEdges(5, [][2]int{
			{0, 1}, {1, 2}, {2, 3}, {3, 4}, {4, 0},
		}), false},
		{"wheel on 6 nodes", denseFromEdges(6, [][2]int{
			{0, 1}, {1, 2}, {2, 3}, {3, 4}, {4, 0},
			{5, 0}, {5, 1}, {5, 2}, {5, 3}, {5, 4},
		}), false},
		{"K5 hidden by a subdivision", denseFromEdges(6, [][2]int{
			// K5 on 0..4 with edge 0-1 routed through node 5
			{0, 5}, {5, 1},
			{0, 2}, {0, 3}, {0, 4},
			{1, 2}, {1, 3}, {1, 4},
			{2, 3}, {2, 4}, {3, 4},
		}), true},
	}
	for _, tc := range cases {
		if got := tc.g.nonPlanar(); got != tc.nonPlanar {
			t.Fatalf("%s: nonPlanar() = %v, expected %v", tc.name, got, tc.nonPlanar)
		}
	}
}
