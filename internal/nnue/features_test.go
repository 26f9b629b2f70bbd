package nnue

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tabia-chess/tabia/internal/board"
)

func TestFeatureIndexAnchors(t *testing.T) {
	// King on e1 sits in bucket 31, the highest, so every feature index
	// for that king starts at 31*704 = 21824.
	if got := kingBuckets[board.E1]; got != 31*psCount {
		t.Errorf("kingBuckets[e1]: expected %d, got %d", 31*psCount, got)
	}
	if got := kingBuckets[board.A1]; got != 28*psCount {
		t.Errorf("kingBuckets[a1]: expected %d, got %d", 28*psCount, got)
	}
	if got := kingBuckets[board.H8]; got != 0 {
		t.Errorf("kingBuckets[h8]: expected 0, got %d", got)
	}

	tests := []struct {
		name        string
		perspective board.Color
		sq          board.Square
		pc          board.Piece
		ksq         board.Square
		want        int
	}{
		{"white pawn e2, king e1", board.White, board.E2, board.WhitePawn, board.E1, 21836},
		{"white pawn e4, king e1", board.White, board.E4, board.WhitePawn, board.E1, 21852},
		{"black king e8 seen by white, king e1", board.White, board.E8, board.BlackKing, board.E1, 22524},
		{"white rook h1 seen by white, king e1", board.White, board.H1, board.WhiteRook, board.E1, 22215},
		// Black's own pawn on e7 with its king on e8 lands on the same
		// index as White's pawn on e2 with its king on e1.
		{"black pawn e7, king e8", board.Black, board.E7, board.BlackPawn, board.E8, 21836},
		// A king on d1 mirrors onto e1, so d-file features pair up with
		// their e-file twins.
		{"white pawn d2, king d1", board.White, board.D2, board.WhitePawn, board.D1, 21836},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FeatureIndex(tt.perspective, tt.sq, tt.pc, tt.ksq)
			if got != tt.want {
				t.Errorf("Expected index %d, got %d", tt.want, got)
			}
		})
	}
}

func TestFeatureIndexRange(t *testing.T) {
	for ksq := board.A1; ksq <= board.H8; ksq++ {
		for sq := board.A1; sq <= board.H8; sq++ {
			for pc := board.WhitePawn; pc <= board.BlackKing; pc++ {
				for _, perspective := range [2]board.Color{board.White, board.Black} {
					idx := FeatureIndex(perspective, sq, pc, ksq)
					if idx < 0 || idx >= Dimensions {
						t.Fatalf("index out of range for pc=%v sq=%v ksq=%v persp=%v: %d",
							pc, sq, ksq, perspective, idx)
					}
				}
			}
		}
	}
}

func TestFeatureIndexInjectivity(t *testing.T) {
	// For a fixed perspective and king square, every (piece, square) pair
	// must get its own index, except that the two kings share a plane.
	seen := make(map[int]bool)
	for sq := board.A1; sq <= board.H8; sq++ {
		for pc := board.WhitePawn; pc <= board.BlackKing; pc++ {
			seen[FeatureIndex(board.White, sq, pc, board.E1)] = true
		}
	}
	want := 64 * 11
	if len(seen) != want {
		t.Errorf("Expected %d distinct indices, got %d", want, len(seen))
	}

	// The shared plane means the two kings collide square by square.
	for sq := board.A1; sq <= board.H8; sq++ {
		w := FeatureIndex(board.White, sq, board.WhiteKing, board.E1)
		b := FeatureIndex(board.White, sq, board.BlackKing, board.E1)
		if w != b {
			t.Fatalf("king planes differ on %v: %d vs %d", sq, w, b)
		}
	}
}

func TestFeatureIndexMirror(t *testing.T) {
	// Mirroring the whole board horizontally, king included, never
	// changes an index.
	for ksq := board.A1; ksq <= board.H8; ksq++ {
		for sq := board.A1; sq <= board.H8; sq++ {
			for _, pc := range []board.Piece{board.WhitePawn, board.BlackQueen, board.WhiteKing} {
				a := FeatureIndex(board.White, sq, pc, ksq)
				b := FeatureIndex(board.White, sq.FlipFile(), pc, ksq.FlipFile())
				if a != b {
					t.Fatalf("mirror mismatch for pc=%v sq=%v ksq=%v: %d vs %d", pc, sq, ksq, a, b)
				}
			}
		}
	}
}

func TestFeatureIndexPerspectiveFlip(t *testing.T) {
	// Black's view of the board equals White's view of the color-flipped,
	// rank-flipped board.
	for ksq := board.A1; ksq <= board.H8; ksq++ {
		for sq := board.A1; sq <= board.H8; sq++ {
			for pc := board.WhitePawn; pc <= board.BlackKing; pc++ {
				flipped := board.NewPiece(pc.Type(), pc.Color().Other())
				a := FeatureIndex(board.Black, sq, pc, ksq)
				b := FeatureIndex(board.White, sq.Mirror(), flipped, ksq.Mirror())
				if a != b {
					t.Fatalf("perspective mismatch for pc=%v sq=%v ksq=%v: %d vs %d", pc, sq, ksq, a, b)
				}
			}
		}
	}
}

func TestKingBucketSymmetry(t *testing.T) {
	for sq := board.A1; sq <= board.H8; sq++ {
		if kingBuckets[sq] != kingBuckets[sq.FlipFile()] {
			t.Errorf("kingBuckets not mirror symmetric at %v", sq)
		}
		wantOrient := 0
		if sq.File() < 4 {
			wantOrient = 7
		}
		if orientTbl[sq] != wantOrient {
			t.Errorf("orientTbl[%v]: expected %d, got %d", sq, wantOrient, orientTbl[sq])
		}
	}
}

func TestAppendActiveIndices(t *testing.T) {
	// White: Ke1, Rh1. Black: Ke8.
	pos := board.MustParseFEN("4k3/8/8/8/8/8/8/4K2R w K - 0 1")

	var white, black IndexList
	AppendActiveIndices(pos, board.White, &white)
	AppendActiveIndices(pos, board.Black, &black)

	// Pieces come out in ascending square order: e1, h1, e8.
	wantWhite := []int{22468, 22215, 22524}
	if diff := cmp.Diff(wantWhite, white.Slice()); diff != "" {
		t.Errorf("white active indices mismatch (-want +got):\n%s", diff)
	}
	wantBlack := []int{22524, 22335, 22468}
	if diff := cmp.Diff(wantBlack, black.Slice()); diff != "" {
		t.Errorf("black active indices mismatch (-want +got):\n%s", diff)
	}
}

func TestAppendActiveIndicesStartPosition(t *testing.T) {
	pos := board.NewPosition()

	for _, perspective := range [2]board.Color{board.White, board.Black} {
		var list IndexList
		AppendActiveIndices(pos, perspective, &list)
		if list.Size != 32 {
			t.Fatalf("Expected 32 active features for %v, got %d", perspective, list.Size)
		}
		seen := make(map[int]bool)
		for _, idx := range list.Slice() {
			if seen[idx] {
				t.Fatalf("duplicate feature index %d for %v", idx, perspective)
			}
			seen[idx] = true
		}
	}
}

func TestAppendChangedIndices(t *testing.T) {
	tests := []struct {
		name        string
		perspective board.Color
		ksq         board.Square
		dp          board.DirtyPiece
		wantRemoved []int
		wantAdded   []int
	}{
		{
			name:        "pawn push white view",
			perspective: board.White,
			ksq:         board.E1,
			dp:          board.QuietMove(board.WhitePawn, board.E2, board.E4),
			wantRemoved: []int{21836},
			wantAdded:   []int{21852},
		},
		{
			name:        "pawn push black view",
			perspective: board.Black,
			ksq:         board.E8,
			dp:          board.QuietMove(board.WhitePawn, board.E2, board.E4),
			wantRemoved: []int{21940},
			wantAdded:   []int{21924},
		},
		{
			name:        "capture removes victim in place",
			perspective: board.White,
			ksq:         board.E1,
			dp:          board.CaptureMove(board.WhitePawn, board.E4, board.D5, board.BlackPawn),
			wantRemoved: []int{21852, 21923},
			wantAdded:   []int{21859},
		},
		{
			name:        "castling seen by the opponent",
			perspective: board.Black,
			ksq:         board.E8,
			dp:          board.CastleMove(board.White, true),
			wantRemoved: []int{22524, 22335},
			wantAdded:   []int{22526, 22333},
		},
		{
			name:        "promotion swaps the pawn for the new piece",
			perspective: board.White,
			ksq:         board.E1,
			dp:          board.PromotionMove(board.White, board.A7, board.A8, board.Queen),
			wantRemoved: []int{21872},
			wantAdded:   []int{22392},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var removed, added IndexList
			AppendChangedIndices(tt.perspective, tt.ksq, &tt.dp, &removed, &added)
			if diff := cmp.Diff(tt.wantRemoved, removed.Slice()); diff != "" {
				t.Errorf("removed mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantAdded, added.Slice()); diff != "" {
				t.Errorf("added mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestChangedIndicesMatchFullRecompute(t *testing.T) {
	// Replay a short opening without king moves and check that chaining
	// the per-move diffs lands on the same feature set as recomputing
	// from the final position.
	pos := board.NewPosition()

	active := make(map[board.Color]map[int]bool)
	for _, perspective := range [2]board.Color{board.White, board.Black} {
		var list IndexList
		AppendActiveIndices(pos, perspective, &list)
		set := make(map[int]bool)
		for _, idx := range list.Slice() {
			set[idx] = true
		}
		active[perspective] = set
	}

	moves := []board.DirtyPiece{
		board.QuietMove(board.WhitePawn, board.E2, board.E4),
		board.QuietMove(board.BlackPawn, board.D7, board.D5),
		board.CaptureMove(board.WhitePawn, board.E4, board.D5, board.BlackPawn),
		board.CaptureMove(board.BlackQueen, board.D8, board.D5, board.WhitePawn),
		board.QuietMove(board.WhiteKnight, board.G1, board.F3),
	}
	for _, dp := range moves {
		pos.Apply(dp)
		for _, perspective := range [2]board.Color{board.White, board.Black} {
			if RequiresRefresh(&dp, perspective) {
				t.Fatalf("unexpected refresh for %v on %v", perspective, dp)
			}
			var removed, added IndexList
			AppendChangedIndices(perspective, pos.KingSquare[perspective], &dp, &removed, &added)
			for _, idx := range removed.Slice() {
				delete(active[perspective], idx)
			}
			for _, idx := range added.Slice() {
				active[perspective][idx] = true
			}
		}
	}

	for _, perspective := range [2]board.Color{board.White, board.Black} {
		var list IndexList
		AppendActiveIndices(pos, perspective, &list)
		want := append([]int(nil), list.Slice()...)
		sort.Ints(want)

		got := make([]int, 0, len(active[perspective]))
		for idx := range active[perspective] {
			got = append(got, idx)
		}
		sort.Ints(got)

		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("%v feature set diverged (-recompute +chained):\n%s", perspective, diff)
		}
	}
}

func TestRequiresRefresh(t *testing.T) {
	pawn := board.QuietMove(board.WhitePawn, board.E2, board.E4)
	if RequiresRefresh(&pawn, board.White) || RequiresRefresh(&pawn, board.Black) {
		t.Error("pawn move should never force a refresh")
	}

	king := board.QuietMove(board.WhiteKing, board.E1, board.F1)
	if !RequiresRefresh(&king, board.White) {
		t.Error("own king move must force a refresh")
	}
	if RequiresRefresh(&king, board.Black) {
		t.Error("opponent king move must not force a refresh")
	}

	castle := board.CastleMove(board.Black, false)
	if !RequiresRefresh(&castle, board.Black) {
		t.Error("castling must force a refresh for the mover")
	}
	if RequiresRefresh(&castle, board.White) {
		t.Error("castling must not force a refresh for the opponent")
	}
}

func TestUpdateAndRefreshCost(t *testing.T) {
	tests := []struct {
		name string
		dp   board.DirtyPiece
		want int
	}{
		{"quiet", board.QuietMove(board.WhiteKnight, board.G1, board.F3), 1},
		{"capture", board.CaptureMove(board.WhiteBishop, board.B5, board.C6, board.BlackKnight), 2},
		{"en passant", board.EnPassantCapture(board.White, board.E5, board.D6), 2},
		{"castle", board.CastleMove(board.White, true), 2},
		{"promotion", board.PromotionMove(board.Black, board.B2, board.B1, board.Queen), 2},
		{"promotion capture", board.PromotionCapture(board.Black, board.G2, board.H1, board.Queen, board.WhiteRook), 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UpdateCost(&tt.dp); got != tt.want {
				t.Errorf("Expected cost %d, got %d", tt.want, got)
			}
		})
	}

	if got := RefreshCost(board.NewPosition()); got != 32 {
		t.Errorf("Expected refresh cost 32 for the start position, got %d", got)
	}
	if got := RefreshCost(board.MustParseFEN("4k3/8/8/8/8/8/8/4K3 w - - 0 1")); got != 2 {
		t.Errorf("Expected refresh cost 2 for bare kings, got %d", got)
	}
}

func TestIndexListCapacity(t *testing.T) {
	var list IndexList
	for i := 0; i < MaxActiveDimensions+8; i++ {
		list.Push(i)
	}
	if list.Size != MaxActiveDimensions {
		t.Errorf("Expected list capped at %d, got %d", MaxActiveDimensions, list.Size)
	}
	list.Clear()
	if list.Size != 0 || len(list.Slice()) != 0 {
		t.Error("Expected empty list after Clear")
	}
}
