package board

// Magic bitboard implementation for sliding piece attacks.
// Each square owns a window into one shared flat table; the window is
// indexed either by magic multiplication or by software bit extraction,
// chosen at build time (see bitextract.go).

// Magic holds the attack lookup data for a single square.
type Magic struct {
	Mask    Bitboard   // Relevant occupancy mask (excludes edges)
	Magic   uint64     // Magic multiplier
	Shift   uint8      // Bits to shift right
	Attacks []Bitboard // Window into the shared attack table
}

// Index maps an occupancy to the slot inside the square's attack window.
func (m *Magic) Index(occupied Bitboard) uint32 {
	if useBitExtract {
		return uint32(pext(uint64(occupied), uint64(m.Mask)))
	}
	return uint32(((uint64(occupied) & uint64(m.Mask)) * m.Magic) >> m.Shift)
}

// Exact table sizes: the sum of 2^PopCount(mask) over all 64 squares.
const (
	rookTableSize   = 102400
	bishopTableSize = 5248
)

var (
	rookMagics   [64]Magic
	bishopMagics [64]Magic

	rookTable   [rookTableSize]Bitboard
	bishopTable [bishopTableSize]Bitboard
)

func initMagics() {
	buildMagics(Rook, &rookMagics, rookTable[:])
	buildMagics(Bishop, &bishopMagics, bishopTable[:])
}

// relevantMask returns the occupancy mask that can influence the attack set:
// the empty-board sliding attack minus the edge squares, since a blocker on
// the last square of a ray never screens anything beyond it. Edge squares on
// the piece's own rank/file stay relevant for rooks sitting on an edge.
func relevantMask(pt PieceType, sq Square) Bitboard {
	edges := ((Rank1 | Rank8) &^ RankMask[sq.Rank()]) | ((FileA | FileH) &^ FileMask[sq.File()])
	return slidingAttack(pt, sq, 0) &^ edges
}

// slidingAttack computes the attack set by walking each ray one square at a
// time, including the first blocker. Used to seed the tables and as the
// oracle in tests; queries go through the magic lookup instead.
func slidingAttack(pt PieceType, sq Square, occupied Bitboard) Bitboard {
	if pt == Rook {
		return rookSlidingAttack(sq, occupied)
	}
	return bishopSlidingAttack(sq, occupied)
}

// bishopSlidingAttack computes bishop attacks by ray casting.
func bishopSlidingAttack(sq Square, occupied Bitboard) Bitboard {
	var attacks Bitboard
	file, rank := sq.File(), sq.Rank()

	// Northeast
	for f, r := file+1, rank+1; f <= 7 && r <= 7; f, r = f+1, r+1 {
		s := NewSquare(f, r)
		attacks |= SquareBB(s)
		if occupied&SquareBB(s) != 0 {
			break
		}
	}

	// Northwest
	for f, r := file-1, rank+1; f >= 0 && r <= 7; f, r = f-1, r+1 {
		s := NewSquare(f, r)
		attacks |= SquareBB(s)
		if occupied&SquareBB(s) != 0 {
			break
		}
	}

	// Southeast
	for f, r := file+1, rank-1; f <= 7 && r >= 0; f, r = f+1, r-1 {
		s := NewSquare(f, r)
		attacks |= SquareBB(s)
		if occupied&SquareBB(s) != 0 {
			break
		}
	}

	// Southwest
	for f, r := file-1, rank-1; f >= 0 && r >= 0; f, r = f-1, r-1 {
		s := NewSquare(f, r)
		attacks |= SquareBB(s)
		if occupied&SquareBB(s) != 0 {
			break
		}
	}

	return attacks
}

// rookSlidingAttack computes rook attacks by ray casting.
func rookSlidingAttack(sq Square, occupied Bitboard) Bitboard {
	var attacks Bitboard
	file, rank := sq.File(), sq.Rank()

	// North
	for r := rank + 1; r <= 7; r++ {
		s := NewSquare(file, r)
		attacks |= SquareBB(s)
		if occupied&SquareBB(s) != 0 {
			break
		}
	}

	// South
	for r := rank - 1; r >= 0; r-- {
		s := NewSquare(file, r)
		attacks |= SquareBB(s)
		if occupied&SquareBB(s) != 0 {
			break
		}
	}

	// East
	for f := file + 1; f <= 7; f++ {
		s := NewSquare(f, rank)
		attacks |= SquareBB(s)
		if occupied&SquareBB(s) != 0 {
			break
		}
	}

	// West
	for f := file - 1; f >= 0; f-- {
		s := NewSquare(f, rank)
		attacks |= SquareBB(s)
		if occupied&SquareBB(s) != 0 {
			break
		}
	}

	return attacks
}

// lookupBishop returns bishop attacks from the precomputed tables.
func lookupBishop(sq Square, occupied Bitboard) Bitboard {
	m := &bishopMagics[sq]
	return m.Attacks[m.Index(occupied)]
}

// lookupRook returns rook attacks from the precomputed tables.
func lookupRook(sq Square, occupied Bitboard) Bitboard {
	m := &rookMagics[sq]
	return m.Attacks[m.Index(occupied)]
}
