package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/plan-systems/klog"

	"github.com/kami-systems/gokami/gokami"
	"github.com/kami-systems/gokami/libkami"
	"github.com/kami-systems/gokami/libkami/catalog"
)

func main() {

	flag.Set("logtostderr", "true")
	flag.Set("v", "2")

	fset := flag.NewFlagSet("", flag.ContinueOnError)
	klog.InitFlags(fset)
	fset.Set("logtostderr", "true")
	fset.Set("v", "2")
	klog.SetFormatter(&klog.FmtConstWidth{
		FileNameCharWidth: 16,
		UseColor:          true,
	})

	flag.Parse()

	var err error
	args := flag.Args()
	if len(args) == 0 {
		usage()
	} else {
		switch args[0] {
		case "solve":
			err = runSolve(args[1:])
		case "hardest":
			err = runHardest(args[1:])
		case "select":
			err = runSelect(args[1:])
		default:
			usage()
		}
	}
	if err != nil {
		klog.Errorf("%v", err)
	}

	klog.Flush()
	if err != nil {
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: gokami solve|hardest|select [flags]")
	fmt.Fprintln(os.Stderr, `  solve   -expr "1:orange-2:cream" [-colors N] [-sample 3-3|5-cycle] [-astar]`)
	fmt.Fprintln(os.Stderr, "  hardest -n nodes -k colors [-fuzzy] [-workers N] [-db path]")
	fmt.Fprintln(os.Stderr, "  select  -db path [-minmoves N] [-minnodes N] [-maxnodes N]")
}

func runSolve(args []string) error {
	fset := flag.NewFlagSet("solve", flag.ExitOnError)
	expr := fset.String("expr", "", "puzzle expression")
	sample := fset.String("sample", "", "sample puzzle name (3-3, 5-cycle)")
	colors := fset.Int("colors", 0, "palette size (0 = colors the expression declares)")
	useAStar := fset.Bool("astar", false, "use A* with the built-in heuristics")
	fset.Parse(args)

	var palette []gokami.Color
	if *colors > 0 {
		palette = gokami.Palette(*colors)
	}

	var puzzle *libkami.SolvablePuzzle
	var err error
	switch {
	case *expr != "":
		puzzle, err = libkami.ParsePuzzleWithPalette(*expr, nil, palette)
		if err != nil {
			return err
		}
	case *sample == "3-3":
		puzzle = libkami.PuzzleKami33(nil)
	case *sample == "5-cycle":
		puzzle = libkami.PuzzleFiveCycle(nil)
	default:
		return fmt.Errorf("%w: give -expr or -sample", gokami.ErrBadPuzzleExpr)
	}

	fmt.Println("puzzle:", puzzle)

	started := time.Now()
	var solution []gokami.Move
	if *useAStar {
		solution, err = puzzle.SolveAStar()
		if err != nil {
			return err
		}
	} else {
		solution = puzzle.Solve()
	}
	klog.V(1).Infof("search took %v", time.Since(started))

	if solution == nil {
		fmt.Println("no solution")
		return nil
	}
	for i, move := range solution {
		fmt.Printf("%d. set node %d to %v\n", i+1, move.Node, move.To)
	}
	fmt.Printf("total moves: %d\n", len(solution))
	return nil
}

func runHardest(args []string) error {
	fset := flag.NewFlagSet("hardest", flag.ExitOnError)
	n := fset.Int("n", 4, "number of nodes")
	k := fset.Int("k", 2, "number of colors")
	fuzzy := fset.Bool("fuzzy", false, "dedupe by quick hash (may miss puzzles)")
	workers := fset.Int("workers", 0, "worker count (0 = GOMAXPROCS)")
	dbPath := fset.String("db", "", "record solved puzzles into this catalog")
	fset.Parse(args)

	opts := libkami.CreatorOpts{
		NumNodes:   *n,
		NumColors:  *k,
		Fuzzy:      *fuzzy,
		NumWorkers: *workers,
	}

	if *dbPath != "" {
		ctx := gokami.NewCatalogContext()
		defer func() {
			ctx.Close()
			<-ctx.Done()
		}()
		cat, err := catalog.OpenCatalog(ctx, gokami.CatalogOpts{DbPathName: *dbPath})
		if err != nil {
			return err
		}
		opts.Catalog = cat
	}

	started := time.Now()
	best, err := libkami.HardestPuzzle(opts)
	if err != nil {
		return err
	}
	klog.V(1).Infof("enumeration took %v", time.Since(started))

	if best == nil {
		fmt.Println("no solvable puzzle found")
		return nil
	}
	fmt.Printf("hardest %d-node puzzle with %d colors needs %d moves\n",
		*n, *k, len(best.Solution))
	gokami.StreamPuzzle(best.Puzzle).Print(nopCloser{os.Stdout}, "hardest").PullAll()
	for i, move := range best.Solution {
		fmt.Printf("%d. set node %d to %v\n", i+1, move.Node, move.To)
	}
	return nil
}

func runSelect(args []string) error {
	fset := flag.NewFlagSet("select", flag.ExitOnError)
	dbPath := fset.String("db", "", "catalog path")
	minMoves := fset.Int("minmoves", 0, "minimum solution length")
	minNodes := fset.Int("minnodes", 0, "minimum node count")
	maxNodes := fset.Int("maxnodes", 0, "maximum node count")
	fset.Parse(args)

	if *dbPath == "" {
		return gokami.ErrBadCatalogParam
	}

	ctx := gokami.NewCatalogContext()
	defer func() {
		ctx.Close()
		<-ctx.Done()
	}()
	cat, err := catalog.OpenCatalog(ctx, gokami.CatalogOpts{
		DbPathName: *dbPath,
		ReadOnly:   true,
	})
	if err != nil {
		return err
	}

	sel := gokami.Selector{
		MinNodes: *minNodes,
		MaxNodes: *maxNodes,
		MinMoves: *minMoves,
	}
	count := gokami.SelectFromCatalog(cat, sel).Print(nopCloser{os.Stdout}, "select").PullAll()
	klog.V(1).Infof("selected %d puzzles", count)
	return nil
}

// nopCloser keeps stream Print stages from closing stdout.
type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
