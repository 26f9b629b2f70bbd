// Command tabia-tables generates, verifies and visualizes the sliding
// attack tables. It can search magic multipliers from scratch, keep the
// results in a local cache and render attack sets as SVG diagrams.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/pprof"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/tabia-chess/tabia/internal/board"
	"github.com/tabia-chess/tabia/internal/diagram"
	"github.com/tabia-chess/tabia/internal/storage"
)

var (
	find       = flag.Bool("find", false, "search fresh magic multipliers for both slider types")
	save       = flag.Bool("save", false, "with -find, store the results in the cache")
	verify     = flag.Bool("verify", false, "verify the cached magic multipliers")
	dbDir      = flag.String("db", "", "cache directory (default: platform data dir)")
	svgPath    = flag.String("svg", "", "write an SVG board diagram to this file")
	fenStr     = flag.String("fen", "", "FEN position for -svg")
	squareStr  = flag.String("square", "", "square for the -svg attack overlay, e.g. e4")
	pieceStr   = flag.String("piece", "rook", "piece for the -svg attack overlay")
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
)

func main() {
	flag.Parse()

	// Start CPU profiling if requested (via flag or environment variable)
	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
		log.Printf("CPU profiling enabled, writing to %s", profilePath)
	}

	if !*find && !*verify && *svgPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	if *find {
		runFind()
	}
	if *verify {
		runVerify()
	}
	if *svgPath != "" {
		runSVG()
	}
}

// runFind searches magics for every square of both slider types and logs
// how hard each search was.
func runFind() {
	rooks := findMagics(board.Rook, "rook")
	bishops := findMagics(board.Bishop, "bishop")

	if *save {
		s := openCache()
		defer s.Close()
		for _, set := range []*storage.MagicSet{rooks, bishops} {
			if err := s.SaveMagics(set); err != nil {
				log.Fatalf("saving %s magics: %v", set.Piece, err)
			}
			log.Printf("%s magics cached", set.Piece)
		}
	}
}

func findMagics(pt board.PieceType, piece string) *storage.MagicSet {
	set := &storage.MagicSet{
		Piece: piece,
		Seeds: board.MagicSeeds,
	}

	attempts := make([]float64, 64)
	for sq := board.A1; sq <= board.H8; sq++ {
		magic, n := board.FindMagic(pt, sq, board.MagicSeeds[sq.Rank()])
		set.Magics[sq] = magic
		set.Attempts[sq] = n
		attempts[sq] = float64(n)
	}

	log.Printf("%s: 64 magics found, attempts total=%d mean=%.1f stddev=%.1f min=%.0f max=%.0f",
		piece,
		set.TotalAttempts(),
		stat.Mean(attempts, nil),
		stat.StdDev(attempts, nil),
		floats.Min(attempts),
		floats.Max(attempts))

	return set
}

// runVerify checks every cached multiplier against a fresh trial fill.
func runVerify() {
	s := openCache()
	defer s.Close()

	for _, piece := range []string{"rook", "bishop"} {
		set, err := s.LoadMagics(piece)
		if err != nil {
			log.Fatalf("loading %s magics: %v", piece, err)
		}
		if set == nil {
			log.Printf("%s: no cached magics, run -find -save first", piece)
			continue
		}

		pt := board.Rook
		if piece == "bishop" {
			pt = board.Bishop
		}
		bad := 0
		for sq := board.A1; sq <= board.H8; sq++ {
			if !board.VerifyMagic(pt, sq, set.Magics[sq]) {
				log.Printf("%s: magic for %v fails verification", piece, sq)
				bad++
			}
		}
		if bad == 0 {
			log.Printf("%s: all 64 cached magics verify (found %s)",
				piece, set.FoundAt.Format("2006-01-02 15:04:05"))
		} else {
			log.Fatalf("%s: %d magics failed verification", piece, bad)
		}
	}
}

// runSVG renders a position or an attack overlay to an SVG file.
func runSVG() {
	var pos *board.Position
	occupied := board.Empty
	if *fenStr != "" {
		p, err := board.ParseFEN(*fenStr)
		if err != nil {
			log.Fatalf("parsing FEN: %v", err)
		}
		pos = p
		occupied = p.AllOccupied
	}

	marks := board.Empty
	if *squareStr != "" {
		sq, err := board.ParseSquare(*squareStr)
		if err != nil {
			log.Fatalf("parsing square: %v", err)
		}
		pt, err := parsePieceType(*pieceStr)
		if err != nil {
			log.Fatal(err)
		}
		marks = board.Attacks(pt, sq, occupied)
	}

	f, err := os.Create(*svgPath)
	if err != nil {
		log.Fatalf("creating %s: %v", *svgPath, err)
	}
	defer f.Close()

	if err := diagram.Render(f, pos, marks); err != nil {
		log.Fatalf("rendering diagram: %v", err)
	}
	log.Printf("diagram written to %s", *svgPath)
}

func openCache() *storage.Storage {
	var (
		s   *storage.Storage
		err error
	)
	if *dbDir != "" {
		s, err = storage.OpenStorage(*dbDir)
	} else {
		s, err = storage.NewStorage()
	}
	if err != nil {
		log.Fatalf("opening cache: %v", err)
	}
	return s
}

func parsePieceType(name string) (board.PieceType, error) {
	switch name {
	case "knight":
		return board.Knight, nil
	case "bishop":
		return board.Bishop, nil
	case "rook":
		return board.Rook, nil
	case "queen":
		return board.Queen, nil
	case "king":
		return board.King, nil
	}
	return board.NoPieceType, fmt.Errorf("unknown piece %q (want knight, bishop, rook, queen or king)", name)
}
