package nnue

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tabia-chess/tabia/internal/board"
)

func TestSeedWeightsDeterministic(t *testing.T) {
	a := NewTransformer(8)
	b := NewTransformer(8)
	a.SeedWeights(1234)
	b.SeedWeights(1234)

	if diff := cmp.Diff(a.Biases, b.Biases); diff != "" {
		t.Errorf("biases differ for equal seeds:\n%s", diff)
	}
	if diff := cmp.Diff(a.Weights, b.Weights); diff != "" {
		t.Errorf("weights differ for equal seeds:\n%s", diff)
	}

	c := NewTransformer(8)
	c.SeedWeights(5678)
	same := true
	for i := range a.Weights {
		if a.Weights[i] != c.Weights[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced identical weights")
	}

	for i, w := range a.Weights {
		if w < -99 || w > 99 {
			t.Fatalf("weight %d out of range: %d", i, w)
		}
	}
}

func TestRefreshSumsActiveRows(t *testing.T) {
	// White: Ke1, Rh1. Black: Ke8. The white-perspective features of this
	// position are exactly indices 22468, 22215 and 22524.
	pos := board.MustParseFEN("4k3/8/8/8/8/8/8/4K2R w K - 0 1")

	tr := NewTransformer(8)
	tr.SeedWeights(42)

	acc := NewAccumulator(8)
	tr.Refresh(acc, pos, board.White)

	if acc.State[board.White] != CachedRefreshed {
		t.Errorf("Expected CachedRefreshed, got %v", acc.State[board.White])
	}
	if acc.KingSq[board.White] != board.E1 {
		t.Errorf("Expected king square e1, got %v", acc.KingSq[board.White])
	}

	want := make([]int16, 8)
	copy(want, tr.Biases)
	for _, idx := range []int{22468, 22215, 22524} {
		for i := 0; i < 8; i++ {
			want[i] += tr.Weights[idx*8+i]
		}
	}
	if diff := cmp.Diff(want, acc.Values[board.White]); diff != "" {
		t.Errorf("refresh values mismatch (-want +got):\n%s", diff)
	}

	// The black half is untouched.
	if acc.Computed(board.Black) {
		t.Error("refresh of one half must not touch the other")
	}
}

func TestUpdateMatchesRefresh(t *testing.T) {
	// A quiet pawn push updated incrementally must agree exactly with a
	// from-scratch refresh of the new position.
	pos := board.NewPosition()

	tr := NewTransformer(16)
	tr.SeedWeights(7)

	prev := NewAccumulator(16)
	tr.Refresh(prev, pos, board.White)
	tr.Refresh(prev, pos, board.Black)

	dp := board.QuietMove(board.WhitePawn, board.E2, board.E4)
	pos.Apply(dp)

	cur := NewAccumulator(16)
	for _, perspective := range [2]board.Color{board.White, board.Black} {
		var removed, added IndexList
		AppendChangedIndices(perspective, pos.KingSquare[perspective], &dp, &removed, &added)
		tr.Update(cur, prev, perspective, &removed, &added)

		if cur.State[perspective] != CachedIncremental {
			t.Errorf("Expected CachedIncremental for %v, got %v", perspective, cur.State[perspective])
		}

		scratch := NewAccumulator(16)
		tr.Refresh(scratch, pos, perspective)
		if diff := cmp.Diff(scratch.Values[perspective], cur.Values[perspective]); diff != "" {
			t.Errorf("%v incremental update diverged from refresh (-refresh +update):\n%s", perspective, diff)
		}
	}
}

func TestUpdaterGameReplay(t *testing.T) {
	// Play out 1.e4 d5 2.exd5 Qxd5 3.Nf3 Nc6 4.Bb5 O-O and check after
	// every move that the updater's accumulator matches a from-scratch
	// refresh, and that the cache states show which path produced it.
	pos := board.NewPosition()

	tr := NewTransformer(8)
	tr.SeedWeights(99)
	u := NewUpdater(tr)
	u.Reset(pos)

	for _, perspective := range [2]board.Color{board.White, board.Black} {
		if u.Stack.Current().State[perspective] != CachedRefreshed {
			t.Fatalf("Expected root %v half refreshed", perspective)
		}
	}

	moves := []struct {
		name      string
		dp        board.DirtyPiece
		wantState [2]CacheState
	}{
		{"e4", board.QuietMove(board.WhitePawn, board.E2, board.E4),
			[2]CacheState{CachedIncremental, CachedIncremental}},
		{"d5", board.QuietMove(board.BlackPawn, board.D7, board.D5),
			[2]CacheState{CachedIncremental, CachedIncremental}},
		{"exd5", board.CaptureMove(board.WhitePawn, board.E4, board.D5, board.BlackPawn),
			[2]CacheState{CachedIncremental, CachedIncremental}},
		{"Qxd5", board.CaptureMove(board.BlackQueen, board.D8, board.D5, board.WhitePawn),
			[2]CacheState{CachedIncremental, CachedIncremental}},
		{"Nf3", board.QuietMove(board.WhiteKnight, board.G1, board.F3),
			[2]CacheState{CachedIncremental, CachedIncremental}},
		{"Nc6", board.QuietMove(board.BlackKnight, board.B8, board.C6),
			[2]CacheState{CachedIncremental, CachedIncremental}},
		{"Bb5", board.QuietMove(board.WhiteBishop, board.F1, board.B5),
			[2]CacheState{CachedIncremental, CachedIncremental}},
		// Castling moves the white king, so the white half must be
		// rebuilt while the black half still updates incrementally.
		{"O-O", board.CastleMove(board.White, true),
			[2]CacheState{CachedRefreshed, CachedIncremental}},
	}

	for _, mv := range moves {
		pos.Apply(mv.dp)
		u.Advance(pos, &mv.dp)

		acc := u.Stack.Current()
		for _, perspective := range [2]board.Color{board.White, board.Black} {
			if acc.State[perspective] != mv.wantState[perspective] {
				t.Errorf("%s: expected %v state %v, got %v",
					mv.name, perspective, mv.wantState[perspective], acc.State[perspective])
			}
			if acc.KingSq[perspective] != pos.KingSquare[perspective] {
				t.Errorf("%s: stale king square for %v", mv.name, perspective)
			}

			scratch := NewAccumulator(8)
			tr.Refresh(scratch, pos, perspective)
			if diff := cmp.Diff(scratch.Values[perspective], acc.Values[perspective]); diff != "" {
				t.Errorf("%s: %v accumulator diverged (-refresh +updater):\n%s",
					mv.name, perspective, diff)
			}
		}
	}

	if u.Stack.Depth() != len(moves)+1 {
		t.Errorf("Expected stack depth %d, got %d", len(moves)+1, u.Stack.Depth())
	}
}

func TestUpdaterRetract(t *testing.T) {
	pos := board.NewPosition()

	tr := NewTransformer(8)
	tr.SeedWeights(3)
	u := NewUpdater(tr)
	u.Reset(pos)

	before := make([]int16, 8)
	copy(before, u.Stack.Current().Values[board.White])

	dp := board.QuietMove(board.WhitePawn, board.D2, board.D4)
	pos.Apply(dp)
	u.Advance(pos, &dp)
	u.Retract()

	if u.Stack.Depth() != 1 {
		t.Fatalf("Expected depth 1 after retract, got %d", u.Stack.Depth())
	}
	if diff := cmp.Diff(before, u.Stack.Current().Values[board.White]); diff != "" {
		t.Errorf("retract did not restore the parent values:\n%s", diff)
	}
}

func TestUpdaterRefreshWhenCheaper(t *testing.T) {
	// Promotion with capture touches three rows. After gxh1=Q only three
	// pieces remain, so a refresh costs no more than the update and wins
	// for both perspectives even though no king moved.
	pos := board.MustParseFEN("8/8/8/8/8/4k3/6p1/4K2R b - - 0 1")

	tr := NewTransformer(8)
	tr.SeedWeights(11)
	u := NewUpdater(tr)
	u.Reset(pos)

	dp := board.PromotionCapture(board.Black, board.G2, board.H1, board.Queen, board.WhiteRook)
	pos.Apply(dp)
	u.Advance(pos, &dp)

	if got := RefreshCost(pos); got != 3 {
		t.Fatalf("Expected refresh cost 3, got %d", got)
	}

	acc := u.Stack.Current()
	for _, perspective := range [2]board.Color{board.White, board.Black} {
		if acc.State[perspective] != CachedRefreshed {
			t.Errorf("Expected %v half refreshed, got %v", perspective, acc.State[perspective])
		}
	}
}

func TestUpdaterEnPassant(t *testing.T) {
	// The en passant victim disappears from d5, not from the capture
	// destination d6.
	pos := board.MustParseFEN("4k3/8/8/3pP3/8/8/8/4K3 w - d6 0 1")

	tr := NewTransformer(8)
	tr.SeedWeights(63)
	u := NewUpdater(tr)
	u.Reset(pos)

	dp := board.EnPassantCapture(board.White, board.E5, board.D6)
	pos.Apply(dp)
	u.Advance(pos, &dp)

	if pos.PieceAt(board.D5) != board.NoPiece {
		t.Fatal("victim pawn still on d5 after en passant")
	}

	acc := u.Stack.Current()
	for _, perspective := range [2]board.Color{board.White, board.Black} {
		scratch := NewAccumulator(8)
		tr.Refresh(scratch, pos, perspective)
		if diff := cmp.Diff(scratch.Values[perspective], acc.Values[perspective]); diff != "" {
			t.Errorf("%v accumulator diverged after en passant (-refresh +updater):\n%s", perspective, diff)
		}
	}
}
