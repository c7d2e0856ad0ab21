package uci

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/hailam/ace/internal/board"
)

// Square colours for the "d" board. color.NoColor (set automatically when
// stdout is not a terminal) turns them into plain text.
var (
	lightSquare = []color.Attribute{color.BgHiWhite, color.FgBlack}
	darkSquare  = []color.Attribute{color.BgGreen, color.FgBlack}
	lastMoveSq  = []color.Attribute{color.BgYellow, color.FgBlack}
)

// writeBoard draws pos from white's side, highlighting the last move's
// squares, followed by the FEN, key and game state.
func writeBoard(w io.Writer, pos *board.Position) {
	last := pos.LastMove()
	var sb strings.Builder
	for r := 7; r >= 0; r-- {
		fmt.Fprintf(&sb, " %d ", r+1)
		for f := 0; f < 8; f++ {
			sq := board.NewSquare(f, r)
			sb.WriteString(squareText(pos, sq, last))
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("    a  b  c  d  e  f  g  h\n\n")
	fmt.Fprintf(&sb, "Fen: %s\nKey: %016x\n", pos.FEN(), pos.Hash)
	if c := pos.Checkers(); c != 0 {
		var sqs []string
		for c != 0 {
			sqs = append(sqs, c.PopLSB().String())
		}
		fmt.Fprintf(&sb, "Checkers: %s\n", strings.Join(sqs, " "))
	}
	if s := gameState(pos); s != "" {
		fmt.Fprintf(&sb, "State: %s\n", s)
	}
	io.WriteString(w, sb.String())
}

func squareText(pos *board.Position, sq board.Square, last board.Move) string {
	pc := pos.PieceAt(sq)
	text := " . "
	if pc.IsValid() {
		text = " " + pc.String() + " "
	}

	bg := darkSquare
	switch {
	case last != board.NoMove && (sq == last.From() || sq == last.To()):
		bg = lastMoveSq
	case board.LightSquares.Has(sq):
		bg = lightSquare
	}
	c := color.New(bg...)
	if pc.IsValid() && pc.Color() == board.White {
		c.Add(color.Bold)
	}
	return c.Sprint(text)
}

// gameState names a finished or drawn position, or returns "".
func gameState(pos *board.Position) string {
	switch {
	case pos.IsCheckmate():
		return "checkmate"
	case pos.IsStalemate():
		return "stalemate"
	case pos.IsInsufficientMaterial():
		return "draw by insufficient material"
	case pos.IsFiftyMoveDraw():
		return "draw by the fifty-move rule"
	case pos.IsThreefold():
		return "draw by threefold repetition"
	}
	return ""
}
