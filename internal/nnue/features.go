// Package nnue implements the HalfKAv2_hm input feature set and the
// incremental accumulator machinery that feeds an efficiently updatable
// neural network.
//
// A feature combines one side's king square with the type, color and
// square of any piece on the board, kings included. Each side (the
// "perspective") has its own feature set: the board is flipped so the
// perspective player always looks from White's side, and mirrored
// horizontally whenever that player's king stands on files a through d,
// so the king always ends up on files e through h. King squares collapse
// into 32 buckets under this mirroring, giving 22528 input dimensions
// per perspective.
package nnue

import "github.com/tabia-chess/tabia/internal/board"

// Piece-square plane offsets. Every piece gets a 64-entry plane; own and
// enemy planes alternate, and both kings share a single plane.
const (
	psUsPawn     = 0
	psThemPawn   = 1 * 64
	psUsKnight   = 2 * 64
	psThemKnight = 3 * 64
	psUsBishop   = 4 * 64
	psThemBishop = 5 * 64
	psUsRook     = 6 * 64
	psThemRook   = 7 * 64
	psUsQueen    = 8 * 64
	psThemQueen  = 9 * 64
	psKing       = 10 * 64
	psCount      = 11 * 64
)

// Dimensions is the number of input features per perspective: 32 king
// buckets times 704 piece-square planes.
const Dimensions = 64 * psCount / 2 // = 22528

// MaxActiveDimensions is the largest number of simultaneously active
// features, one per piece on the board with kings included.
const MaxActiveDimensions = 32

// pieceSquareIndex maps a piece to its plane offset for each perspective.
// The "us" planes hold the perspective side's own pieces.
var pieceSquareIndex = [2][12]int{
	// White perspective
	{psUsPawn, psUsKnight, psUsBishop, psUsRook, psUsQueen, psKing,
		psThemPawn, psThemKnight, psThemBishop, psThemRook, psThemQueen, psKing},
	// Black perspective
	{psThemPawn, psThemKnight, psThemBishop, psThemRook, psThemQueen, psKing,
		psUsPawn, psUsKnight, psUsBishop, psUsRook, psUsQueen, psKing},
}

// kingBuckets maps a king square, after the rank flip for Black, to its
// bucket, pre-multiplied by psCount. Files a through d mirror onto e
// through h, so the table is symmetric about the vertical center line.
var kingBuckets = [64]int{
	28 * psCount, 29 * psCount, 30 * psCount, 31 * psCount, 31 * psCount, 30 * psCount, 29 * psCount, 28 * psCount,
	24 * psCount, 25 * psCount, 26 * psCount, 27 * psCount, 27 * psCount, 26 * psCount, 25 * psCount, 24 * psCount,
	20 * psCount, 21 * psCount, 22 * psCount, 23 * psCount, 23 * psCount, 22 * psCount, 21 * psCount, 20 * psCount,
	16 * psCount, 17 * psCount, 18 * psCount, 19 * psCount, 19 * psCount, 18 * psCount, 17 * psCount, 16 * psCount,
	12 * psCount, 13 * psCount, 14 * psCount, 15 * psCount, 15 * psCount, 14 * psCount, 13 * psCount, 12 * psCount,
	8 * psCount, 9 * psCount, 10 * psCount, 11 * psCount, 11 * psCount, 10 * psCount, 9 * psCount, 8 * psCount,
	4 * psCount, 5 * psCount, 6 * psCount, 7 * psCount, 7 * psCount, 6 * psCount, 5 * psCount, 4 * psCount,
	0 * psCount, 1 * psCount, 2 * psCount, 3 * psCount, 3 * psCount, 2 * psCount, 1 * psCount, 0 * psCount,
}

// orientTbl gives the horizontal mirror mask for each king square: 7 when
// the king is on files a through d, so squares reflect onto files e
// through h, and 0 otherwise. Rank flips never change the file, which is
// why the raw king square can index the table for either perspective.
var orientTbl = [64]int{
	7, 7, 7, 7, 0, 0, 0, 0,
	7, 7, 7, 7, 0, 0, 0, 0,
	7, 7, 7, 7, 0, 0, 0, 0,
	7, 7, 7, 7, 0, 0, 0, 0,
	7, 7, 7, 7, 0, 0, 0, 0,
	7, 7, 7, 7, 0, 0, 0, 0,
	7, 7, 7, 7, 0, 0, 0, 0,
	7, 7, 7, 7, 0, 0, 0, 0,
}

// FeatureIndex returns the input index of piece pc on square sq from the
// given perspective, whose king stands on ksq. The rank flip for Black
// and the horizontal mirror for king files a through d are both applied
// here.
func FeatureIndex(perspective board.Color, sq board.Square, pc board.Piece, ksq board.Square) int {
	flip := 56 * int(perspective)
	return (int(sq) ^ orientTbl[ksq] ^ flip) + pieceSquareIndex[perspective][pc] + kingBuckets[int(ksq)^flip]
}

// IndexList is a fixed-capacity list of active feature indices.
type IndexList struct {
	Values [MaxActiveDimensions]int
	Size   int
}

// Push adds an index to the list.
func (l *IndexList) Push(idx int) {
	if l.Size < MaxActiveDimensions {
		l.Values[l.Size] = idx
		l.Size++
	}
}

// Clear resets the list.
func (l *IndexList) Clear() {
	l.Size = 0
}

// Slice returns the live portion of the list.
func (l *IndexList) Slice() []int {
	return l.Values[:l.Size]
}

// AppendActiveIndices pushes the feature index of every piece on the
// board, kings included, from the given perspective.
func AppendActiveIndices(pos *board.Position, perspective board.Color, active *IndexList) {
	ksq := pos.KingSquare[perspective]
	occ := pos.AllOccupied
	for occ != 0 {
		sq := occ.PopLSB()
		active.Push(FeatureIndex(perspective, sq, pos.PieceAt(sq), ksq))
	}
}

// AppendChangedIndices translates a dirty-piece record into removed and
// added feature indices from the given perspective. ksq is that side's
// king square in the position the record leads to. A slot end set to
// NoSquare contributes nothing: a captured piece has no destination and
// a promoted pawn has no source.
func AppendChangedIndices(perspective board.Color, ksq board.Square, dp *board.DirtyPiece, removed, added *IndexList) {
	for i := 0; i < dp.Num; i++ {
		pc := dp.Piece[i]
		if dp.From[i] != board.NoSquare {
			removed.Push(FeatureIndex(perspective, dp.From[i], pc, ksq))
		}
		if dp.To[i] != board.NoSquare {
			added.Push(FeatureIndex(perspective, dp.To[i], pc, ksq))
		}
	}
}

// RequiresRefresh reports whether the record invalidates the accumulator
// for the given perspective. Moving the perspective side's own king
// changes the orientation or bucket of every active feature, so nothing
// can be reused.
func RequiresRefresh(dp *board.DirtyPiece, perspective board.Color) bool {
	return dp.Piece[0] == board.NewPiece(board.King, perspective)
}

// UpdateCost is the number of feature rows touched when the record is
// applied incrementally for one perspective.
func UpdateCost(dp *board.DirtyPiece) int {
	return dp.Num
}

// RefreshCost is the number of feature rows touched when an accumulator
// is rebuilt from scratch for pos.
func RefreshCost(pos *board.Position) int {
	return pos.PieceCount()
}
