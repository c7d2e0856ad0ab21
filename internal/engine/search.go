package engine

import (
	"github.com/hailam/ace/internal/board"
)

// Search constants
const (
	Infinity  = 30000
	MateScore = 29000
	MaxPly    = 128
	MaxDepth  = 64 // iterative deepening limit when none is given

	// MateBound separates mate scores from ordinary evaluations.
	MateBound = MateScore - MaxPly

	nullMoveReduction = 2
)

// searcher is the state of one Think call. It owns a private copy of the
// root position and borrows the engine's table and orderer.
type searcher struct {
	pos      *board.Position
	tt       *TranspositionTable
	orderer  *MoveOrderer
	eval     Evaluator
	nullMove bool

	rootDepth int
	nodes     uint64
	pv        PVTable

	// per-ply move buffers, so the recursion does not grow the stack
	moves  [MaxPly]board.MoveList
	quiets [MaxPly]board.MoveList
}

// search is fail-hard negamax: the result always lies in [alpha, beta].
func (s *searcher) search(alpha, beta, depth, ply int) int {
	pos := s.pos
	s.nodes++
	s.pv.clear(ply)

	if ply > 0 && (pos.IsFiftyMoveDraw() || pos.IsThreefold()) {
		return 0
	}
	if ply >= MaxPly-1 {
		return s.eval.Evaluate(pos)
	}

	inCheck := pos.InCheck()
	// Extend checks, but not past twice the nominal depth, so a chain of
	// checks cannot run away.
	if inCheck && ply < 2*s.rootDepth {
		depth++
	}

	if depth <= 0 {
		return s.eval.Evaluate(pos)
	}

	ttMove, ttScore, ok := s.tt.Probe(pos.Hash, depth, alpha, beta, ply)
	if ok && ply > 0 {
		return ttScore
	}

	if s.nullMove && ply > 0 && !inCheck && depth >= 3 &&
		pos.LastMove() != board.NoMove && pos.HasNonPawnMaterial(pos.SideToMove) {
		pos.ApplyNull()
		score := -s.search(-beta, -beta+1, depth-1-nullMoveReduction, ply+1)
		pos.UnapplyNull()
		if score >= beta {
			return beta
		}
	}

	ml, quiets := &s.moves[ply], &s.quiets[ply]
	pos.GenerateInto(quiets, ml)
	ml.Append(quiets)
	s.orderer.ScoreMoves(ml, ply, ttMove)

	oldAlpha := alpha
	bestMove := board.NoMove
	legal := 0
	for i := 0; i < ml.Len(); i++ {
		m := ml.PickBest(i)
		if !pos.Apply(m) {
			continue
		}
		legal++
		score := -s.search(-beta, -alpha, depth-1, ply+1)
		pos.Unapply()

		if score >= beta {
			s.tt.Store(pos.Hash, m, beta, BoundLower, depth, ply)
			if m.IsQuiet() {
				s.orderer.UpdateKillers(m, ply)
				s.orderer.UpdateHistory(m, depth)
			}
			return beta
		}
		if score > alpha {
			alpha = score
			bestMove = m
			s.pv.update(ply, m)
		}
	}

	if legal == 0 {
		if inCheck {
			return -MateScore + ply
		}
		return 0
	}

	if alpha > oldAlpha {
		s.tt.Store(pos.Hash, bestMove, alpha, BoundExact, depth, ply)
	} else {
		s.tt.Store(pos.Hash, board.NoMove, alpha, BoundUpper, depth, ply)
	}
	return alpha
}

// IsMateScore reports whether score announces a forced mate either way.
func IsMateScore(score int) bool {
	return score > MateBound || score < -MateBound
}

// MateDistance converts a mate score to moves until mate, negative when the
// side to move is getting mated.
func MateDistance(score int) int {
	if score > 0 {
		return (MateScore - score + 1) / 2
	}
	return -(MateScore + score + 1) / 2
}
