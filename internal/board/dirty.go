package board

import "strings"

// MaxDirtyPieces is the most slots one transition can touch: a promotion
// with capture removes the pawn, removes the victim and adds the promoted
// piece.
const MaxDirtyPieces = 3

// DirtyPiece describes one position transition as up to three piece slots.
// A slot with From == NoSquare is a piece appearing on To; a slot with
// To == NoSquare is a piece leaving From. Slot 0 always holds the moving
// piece, so a king move is visible without scanning.
//
// Slot usage: quiet move 1, capture/castling/promotion 2, promotion with
// capture 3.
type DirtyPiece struct {
	Num   int
	Piece [MaxDirtyPieces]Piece
	From  [MaxDirtyPieces]Square
	To    [MaxDirtyPieces]Square
}

// QuietMove records a piece moving between two squares.
func QuietMove(pc Piece, from, to Square) DirtyPiece {
	var dp DirtyPiece
	dp.Num = 1
	dp.Piece[0], dp.From[0], dp.To[0] = pc, from, to
	return dp
}

// CaptureMove records a piece capturing the victim on its destination.
func CaptureMove(pc Piece, from, to Square, victim Piece) DirtyPiece {
	dp := QuietMove(pc, from, to)
	dp.Piece[1], dp.From[1], dp.To[1] = victim, to, NoSquare
	dp.Num = 2
	return dp
}

// EnPassantCapture records a pawn capturing en passant; the victim pawn sits
// behind the destination square, not on it.
func EnPassantCapture(c Color, from, to Square) DirtyPiece {
	victimSq := to - 8
	if c == Black {
		victimSq = to + 8
	}
	dp := QuietMove(NewPiece(Pawn, c), from, to)
	dp.Piece[1], dp.From[1], dp.To[1] = NewPiece(Pawn, c.Other()), victimSq, NoSquare
	dp.Num = 2
	return dp
}

// CastleMove records castling on the given side: the king slot first, then
// the rook, both with the standard squares.
func CastleMove(c Color, kingSide bool) DirtyPiece {
	kingFrom, kingTo, rookFrom, rookTo := E1, G1, H1, F1
	if !kingSide {
		kingTo, rookFrom, rookTo = C1, A1, D1
	}
	if c == Black {
		kingFrom, kingTo = kingFrom.Mirror(), kingTo.Mirror()
		rookFrom, rookTo = rookFrom.Mirror(), rookTo.Mirror()
	}
	dp := QuietMove(NewPiece(King, c), kingFrom, kingTo)
	dp.Piece[1], dp.From[1], dp.To[1] = NewPiece(Rook, c), rookFrom, rookTo
	dp.Num = 2
	return dp
}

// PromotionMove records a pawn promoting: the pawn leaves the board and the
// promoted piece appears on the destination.
func PromotionMove(c Color, from, to Square, promo PieceType) DirtyPiece {
	var dp DirtyPiece
	dp.Piece[0], dp.From[0], dp.To[0] = NewPiece(Pawn, c), from, NoSquare
	dp.Piece[1], dp.From[1], dp.To[1] = NewPiece(promo, c), NoSquare, to
	dp.Num = 2
	return dp
}

// PromotionCapture records a pawn promoting while capturing: pawn out,
// victim out, promoted piece in.
func PromotionCapture(c Color, from, to Square, promo PieceType, victim Piece) DirtyPiece {
	var dp DirtyPiece
	dp.Piece[0], dp.From[0], dp.To[0] = NewPiece(Pawn, c), from, NoSquare
	dp.Piece[1], dp.From[1], dp.To[1] = victim, to, NoSquare
	dp.Piece[2], dp.From[2], dp.To[2] = NewPiece(promo, c), NoSquare, to
	dp.Num = 3
	return dp
}

// String renders the slots with FEN piece letters, e.g. "Pe2-e4" or
// "Ke1-g1 Rh1-f1".
func (dp DirtyPiece) String() string {
	var sb strings.Builder
	for i := 0; i < dp.Num; i++ {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(dp.Piece[i].String())
		sb.WriteString(dp.From[i].String())
		sb.WriteByte('-')
		sb.WriteString(dp.To[i].String())
	}
	return sb.String()
}

// Apply patches the piece placement with the transition described by dp.
// Removal slots apply first, clearing a capture victim off the destination
// before the mover lands on it. Apply does not check legality and does not
// touch the side to move, castling rights, en passant square or move
// counters; callers tracking full game state maintain those themselves.
func (p *Position) Apply(dp DirtyPiece) {
	for i := 0; i < dp.Num; i++ {
		if dp.From[i] != NoSquare && dp.To[i] == NoSquare {
			p.removePiece(dp.From[i])
		}
	}
	for i := 0; i < dp.Num; i++ {
		switch {
		case dp.From[i] != NoSquare && dp.To[i] != NoSquare:
			p.movePiece(dp.From[i], dp.To[i])
		case dp.From[i] == NoSquare && dp.To[i] != NoSquare:
			p.setPiece(dp.Piece[i], dp.To[i])
		}
	}
}
