package catalog_test

import (
	"os"
	"path"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/kami-systems/gokami/gokami"
	"github.com/kami-systems/gokami/libkami"
	"github.com/kami-systems/gokami/libkami/catalog"
)

var samples = []string{
	"1:orange",
	"1:orange-2:darkblue",
	"1:orange-2:orange-3:darkblue-4:cream-5:cream-1",
	"1:orange-2:darkblue-3:orange-4:darkblue",
}

func selectAll(cat gokami.Catalog, sel gokami.Selector) []gokami.State {
	onHit := make(chan gokami.State)
	go func() {
		cat.Select(sel, onHit)
		close(onHit)
	}()
	var hits []gokami.State
	for X := range onHit {
		hits = append(hits, X)
	}
	return hits
}

func TestCatalogBasics(t *testing.T) {
	dir, err := os.MkdirTemp("", "junk*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	ctx := gokami.NewCatalogContext()
	opts := gokami.CatalogOpts{
		DbPathName: path.Join(dir, "TestCatalogBasics"),
	}
	cat, err := catalog.OpenCatalog(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}

	for _, expr := range samples {
		X := libkami.MustParsePuzzle(expr, nil)
		if added := cat.TryAddPuzzle(X, len(X.Solve())); !added {
			t.Fatalf("%q: first add refused", expr)
		}
		if added := cat.TryAddPuzzle(X, gokami.MoveCountUnknown); added {
			t.Fatalf("%q: duplicate add accepted", expr)
		}
	}

	// A relabeled, color-permuted five-cycle is the same puzzle.
	iso := libkami.MustParsePuzzle(
		"10:cream-20:cream-30:turquoise-80:orange-70:orange-10", nil)
	if added := cat.TryAddPuzzle(iso, gokami.MoveCountUnknown); added {
		t.Fatal("isomorphic puzzle was not recognized as a duplicate")
	}

	if n := cat.NumPuzzles(5); n != 1 {
		t.Fatalf("expected 1 stored 5-node puzzle, got %d", n)
	}
	if n := cat.NumPuzzles(99); n != 0 {
		t.Fatalf("out of bounds node count must report 0, got %d", n)
	}

	if hits := selectAll(cat, gokami.Selector{}); len(hits) != len(samples) {
		t.Fatalf("expected %d hits, got %d", len(samples), len(hits))
	}
	if hits := selectAll(cat, gokami.Selector{MinNodes: 4, MaxNodes: 4}); len(hits) != 1 {
		t.Fatalf("expected 1 four-node hit, got %d", len(hits))
	}
	if hits := selectAll(cat, gokami.Selector{MinMoves: 2}); len(hits) != 2 {
		t.Fatalf("expected 2 hits needing 2+ moves, got %d", len(hits))
	}

	if err := cat.Close(); err != nil {
		t.Fatal(err)
	}

	// Reopen: the dedup state and counts must survive on disk.
	cat, err = catalog.OpenCatalog(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	defer cat.Close()

	if added := cat.TryAddPuzzle(iso, gokami.MoveCountUnknown); added {
		t.Fatal("dedup state was lost across reopen")
	}
	if n := cat.NumPuzzles(5); n != 1 {
		t.Fatalf("puzzle counts were lost across reopen, got %d", n)
	}
}

func TestCatalogInMemory(t *testing.T) {
	ctx := gokami.NewCatalogContext()
	cat, err := catalog.OpenCatalog(ctx, gokami.CatalogOpts{})
	if err != nil {
		t.Fatal(err)
	}
	defer cat.Close()

	X := libkami.PuzzleFiveCycle(nil)
	if !cat.TryAddPuzzle(X, 2) {
		t.Fatal("add to in-memory catalog refused")
	}
	if cat.TryAddPuzzle(X.Copy(), 2) {
		t.Fatal("duplicate accepted by in-memory catalog")
	}
}

func TestCatalogConcurrentAdds(t *testing.T) {
	ctx := gokami.NewCatalogContext()
	cat, err := catalog.OpenCatalog(ctx, gokami.CatalogOpts{})
	if err != nil {
		t.Fatal(err)
	}
	defer cat.Close()

	// Many goroutines race to add relabelings of one puzzle plus a
	// distinct puzzle each; exactly one add per isomorphism class may
	// succeed.
	const workers = 8
	var sameAdded, distinctAdded int64
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		w := w
		wg.Add(1)
		go func() {
			defer wg.Done()

			shift := gokami.NodeID(10 * (w + 1))
			iso := libkami.NewSolvableN(nil, 3)
			iso.AddNode(shift+1, gokami.Orange)
			iso.AddNode(shift+2, gokami.Orange)
			iso.AddNode(shift+3, gokami.DarkBlue)
			iso.AddNode(shift+4, gokami.Cream)
			iso.AddNode(shift+5, gokami.Cream)
			for i := gokami.NodeID(1); i <= 5; i++ {
				next := i%5 + 1
				if err := iso.AddEdge(shift+i, shift+next); err != nil {
					t.Error(err)
					return
				}
			}
			if cat.TryAddPuzzle(iso, 2) {
				atomic.AddInt64(&sameAdded, 1)
			}

			// an alternating path of w+6 nodes: a class no other
			// worker produces
			distinct := libkami.NewSolvableN(nil, 2)
			for i := 0; i < w+6; i++ {
				distinct.AddNode(gokami.NodeID(i), gokami.Color(i%2))
				if i > 0 {
					if err := distinct.AddEdge(gokami.NodeID(i-1), gokami.NodeID(i)); err != nil {
						t.Error(err)
						return
					}
				}
			}
			if cat.TryAddPuzzle(distinct, gokami.MoveCountUnknown) {
				atomic.AddInt64(&distinctAdded, 1)
			}
		}()
	}
	wg.Wait()

	if sameAdded != 1 {
		t.Fatalf("one isomorphism class accepted %d times", sameAdded)
	}
	if distinctAdded != workers {
		t.Fatalf("expected %d distinct adds, got %d", workers, distinctAdded)
	}
	if n := cat.NumPuzzles(5); n != 1 {
		t.Fatalf("expected 1 stored 5-node class, got %d", n)
	}
	for w := 0; w < workers; w++ {
		if n := cat.NumPuzzles(w + 6); n != 1 {
			t.Fatalf("expected 1 stored %d-node class, got %d", w+6, n)
		}
	}
}

func TestCatalogWithCreatorWorkers(t *testing.T) {
	ctx := gokami.NewCatalogContext()
	cat, err := catalog.OpenCatalog(ctx, gokami.CatalogOpts{})
	if err != nil {
		t.Fatal(err)
	}
	defer cat.Close()

	best, err := libkami.HardestPuzzle(libkami.CreatorOpts{
		NumNodes:   4,
		NumColors:  2,
		NumWorkers: 4,
		Catalog:    cat,
	})
	if err != nil {
		t.Fatal(err)
	}
	if best == nil || len(best.Solution) != 2 {
		t.Fatalf("expected a 2-move hardest puzzle, got %+v", best)
	}

	// stored classes and the per-node-count totals must agree
	total := int64(0)
	for n := 0; n <= 4; n++ {
		total += cat.NumPuzzles(n)
	}
	if hits := selectAll(cat, gokami.Selector{}); int64(len(hits)) != total {
		t.Fatalf("%d selectable entries but counts sum to %d", len(hits), total)
	}
}

func TestCatalogReadOnly(t *testing.T) {
	if _, err := catalog.OpenCatalog(
		gokami.NewCatalogContext(),
		gokami.CatalogOpts{ReadOnly: true},
	); err == nil {
		t.Fatal("read-only with no db path must fail")
	}
}
