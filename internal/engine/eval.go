// Package engine implements the search: transposition table, move ordering,
// fail-hard negamax with iterative deepening, and the default evaluator.
package engine

import (
	"github.com/hailam/ace/internal/board"
)

// Evaluator scores a position from the side to move's point of view:
// positive is good for the side to move. It must not modify pos.
type Evaluator interface {
	Evaluate(pos *board.Position) int
}

// EvaluatorFunc adapts a plain function to Evaluator.
type EvaluatorFunc func(pos *board.Position) int

func (f EvaluatorFunc) Evaluate(pos *board.Position) int { return f(pos) }

// Piece-Square Tables
// Laid out as seen from White with rank 8 on the first row, so White looks
// squares up flipped and Black looks them up directly.

var pawnPST = [64]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	-6, -4, 1, 1, 1, 1, -4, -6,
	-6, -4, 1, 2, 2, 1, -4, -6,
	-6, -4, 2, 8, 8, 2, -4, -6,
	-6, -4, 5, 10, 10, 5, -4, -6,
	-4, -4, 1, 5, 5, 1, -4, -4,
	-6, -4, 1, -24, -24, 1, -4, -6,
	0, 0, 0, 0, 0, 0, 0, 0,
}

var knightPST = [64]int{
	-8, -8, -8, -8, -8, -8, -8, -8,
	-8, 0, 0, 0, 0, 0, 0, -8,
	-8, 0, 4, 4, 4, 4, 0, -8,
	-8, 0, 4, 8, 8, 4, 0, -8,
	-8, 0, 4, 8, 8, 4, 0, -8,
	-8, 0, 4, 4, 4, 4, 0, -8,
	-8, 0, 1, 2, 2, 1, 0, -8,
	-8, -12, -8, -8, -8, -8, -12, -8,
}

var bishopPST = [64]int{
	-4, -4, -4, -4, -4, -4, -4, -4,
	-4, 0, 0, 0, 0, 0, 0, -4,
	-4, 0, 2, 4, 4, 2, 0, -4,
	-4, 0, 4, 6, 6, 4, 0, -4,
	-4, 0, 4, 6, 6, 4, 0, -4,
	-4, 1, 2, 4, 4, 2, 1, -4,
	-4, 2, 1, 1, 1, 1, 2, -4,
	-4, -4, -12, -4, -4, -12, -4, -4,
}

// Rook PST - rewards the 7th rank
var rookPST = [64]int{
	5, 5, 5, 5, 5, 5, 5, 5,
	20, 20, 20, 20, 20, 20, 20, 20,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	0, 0, 0, 2, 2, 0, 0, 0,
}

var queenPST = [64]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 1, 1, 1, 1, 0, 0,
	0, 0, 1, 2, 2, 1, 0, 0,
	0, 0, 2, 3, 3, 2, 0, 0,
	0, 0, 2, 3, 3, 2, 0, 0,
	0, 0, 1, 2, 2, 1, 0, 0,
	0, 0, 1, 1, 1, 1, 0, 0,
	-5, -5, -5, -5, -5, -5, -5, -5,
}

// King PST (middlegame) - stay home, castled
var kingPST = [64]int{
	-40, -40, -40, -40, -40, -40, -40, -40,
	-40, -40, -40, -40, -40, -40, -40, -40,
	-40, -40, -40, -40, -40, -40, -40, -40,
	-40, -40, -40, -40, -40, -40, -40, -40,
	-40, -40, -40, -40, -40, -40, -40, -40,
	-40, -40, -40, -40, -40, -40, -40, -40,
	-15, -15, -20, -20, -20, -20, -15, -15,
	0, 20, 30, -30, 0, -20, 30, 20,
}

// King PST (endgame) - centralise
var kingEndgamePST = [64]int{
	0, 10, 20, 30, 30, 20, 10, 0,
	10, 20, 30, 40, 40, 30, 20, 10,
	20, 30, 40, 50, 50, 40, 30, 20,
	30, 40, 50, 60, 60, 50, 40, 30,
	30, 40, 50, 60, 60, 50, 40, 30,
	20, 30, 40, 50, 50, 40, 30, 20,
	10, 20, 30, 40, 40, 30, 20, 10,
	0, 10, 20, 30, 30, 20, 10, 0,
}

var psts = [6]*[64]int{&pawnPST, &knightPST, &bishopPST, &rookPST, &queenPST, &kingPST}

// Pawn structure terms, indexed by the pawn's rank as seen from its owner.
const isolatedPawnPenalty = -10

var (
	passedPawnBonus    = [8]int{0, 5, 10, 20, 35, 60, 100, 200}
	doubledPawnPenalty = [8]int{0, -5, -10, -20, -35, -60, 0, 0}
)

var (
	adjacentFiles [8]board.Bitboard
	frontSpan     [2][64]board.Bitboard // squares ahead on the same file
	passedSpan    [2][64]board.Bitboard // frontSpan plus the adjacent files
)

func init() {
	for f := 0; f < 8; f++ {
		if f > 0 {
			adjacentFiles[f] |= board.FileMask(f - 1)
		}
		if f < 7 {
			adjacentFiles[f] |= board.FileMask(f + 1)
		}
	}
	for sq := board.A1; sq <= board.H8; sq++ {
		for r := sq.Rank() + 1; r < 8; r++ {
			frontSpan[board.White][sq] |= board.RankMask(r)
		}
		for r := sq.Rank() - 1; r >= 0; r-- {
			frontSpan[board.Black][sq] |= board.RankMask(r)
		}
		for c := board.White; c <= board.Black; c++ {
			ahead := frontSpan[c][sq]
			frontSpan[c][sq] = ahead & board.FileMask(sq.File())
			passedSpan[c][sq] = ahead & (board.FileMask(sq.File()) | adjacentFiles[sq.File()])
		}
	}
}

// Classical is the default evaluator: material, piece-square tables and a
// few pawn structure terms, with dead material balances scored as draws.
type Classical struct{}

// Evaluate implements Evaluator.
func (Classical) Evaluate(pos *board.Position) int {
	if pos.IsInsufficientMaterial() {
		return 0
	}
	score := pos.Material[board.White] - pos.Material[board.Black]
	score += evaluateSide(pos, board.White) - evaluateSide(pos, board.Black)
	if pos.SideToMove == board.Black {
		return -score
	}
	return score
}

// IsEndgame reports whether the king should use its endgame table: no
// queens left on the board.
func IsEndgame(pos *board.Position) bool {
	return pos.Count[board.WhiteQueen]+pos.Count[board.BlackQueen] == 0
}

func evaluateSide(pos *board.Position, c board.Color) int {
	score := 0
	for pt := board.Pawn; pt < board.King; pt++ {
		for bb := pos.Pieces[c][pt]; bb != 0; {
			score += psts[pt][pstIndex(bb.PopLSB(), c)]
		}
	}
	king := pstIndex(pos.KingSquare[c], c)
	if IsEndgame(pos) {
		score += kingEndgamePST[king]
	} else {
		score += kingPST[king]
	}
	return score + evaluatePawns(pos, c)
}

func pstIndex(sq board.Square, c board.Color) board.Square {
	if c == board.White {
		return sq.Flip()
	}
	return sq
}

// evaluatePawns scores isolated, passed and doubled pawns of colour c.
func evaluatePawns(pos *board.Position, c board.Color) int {
	own := pos.Pieces[c][board.Pawn]
	enemy := pos.Pieces[c.Other()][board.Pawn]
	score := 0
	for bb := own; bb != 0; {
		sq := bb.PopLSB()
		rank := sq.RelativeRank(c)
		if own&adjacentFiles[sq.File()] == 0 {
			score += isolatedPawnPenalty
		}
		if enemy&passedSpan[c][sq] == 0 {
			score += passedPawnBonus[rank]
		}
		if own&frontSpan[c][sq] != 0 {
			score += doubledPawnPenalty[rank]
		}
	}
	return score
}
