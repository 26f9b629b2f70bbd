// Package diagram renders positions and bitboards as SVG board diagrams,
// mainly for eyeballing attack tables and feature updates during development.
package diagram

import (
	"bufio"
	"io"

	svg "github.com/ajstarks/svgo"

	"github.com/tabia-chess/tabia/internal/board"
)

const (
	// SquareSize is the pixel edge of one board square.
	SquareSize = 60

	boardPixels = 8 * SquareSize

	lightStyle = "fill:#f0d9b5"
	darkStyle  = "fill:#b58863"
	markStyle  = "fill:#15781b;fill-opacity:0.55"
	labelStyle = "font-size:14px;font-family:sans-serif;fill:#666666"

	whitePieceStyle = "font-size:40px;font-family:sans-serif;text-anchor:middle;fill:#ffffff;stroke:#000000;stroke-width:1"
	blackPieceStyle = "font-size:40px;font-family:sans-serif;text-anchor:middle;fill:#000000"
)

// Render writes an SVG diagram of pos to w, with every square in marks
// overlaid by a dot. pos may be nil to draw marks on an empty board.
// Rank 8 is at the top, as in printed diagrams.
func Render(w io.Writer, pos *board.Position, marks board.Bitboard) error {
	bw := bufio.NewWriter(w)
	canvas := svg.New(bw)

	canvas.Start(boardPixels, boardPixels+SquareSize/2)

	for sq := board.A1; sq <= board.H8; sq++ {
		x, y := squareOrigin(sq)
		style := darkStyle
		if (sq.File()+sq.Rank())%2 == 1 {
			style = lightStyle
		}
		canvas.Rect(x, y, SquareSize, SquareSize, style)
	}

	marks.ForEach(func(sq board.Square) {
		x, y := squareOrigin(sq)
		canvas.Circle(x+SquareSize/2, y+SquareSize/2, SquareSize/4, markStyle)
	})

	if pos != nil {
		pos.AllOccupied.ForEach(func(sq board.Square) {
			pc := pos.PieceAt(sq)
			style := blackPieceStyle
			if pc.Color() == board.White {
				style = whitePieceStyle
			}
			x, y := squareOrigin(sq)
			canvas.Text(x+SquareSize/2, y+SquareSize*7/10, pc.String(), style)
		})
	}

	// File letters under the bottom rank.
	for file := 0; file < 8; file++ {
		canvas.Text(file*SquareSize+SquareSize/2, boardPixels+SquareSize/3,
			string(rune('a'+file)), labelStyle)
	}

	canvas.End()
	return bw.Flush()
}

// RenderBitboard draws the set squares of bb as dots on an empty board.
func RenderBitboard(w io.Writer, bb board.Bitboard) error {
	return Render(w, nil, bb)
}

func squareOrigin(sq board.Square) (int, int) {
	return sq.File() * SquareSize, (7 - sq.Rank()) * SquareSize
}
