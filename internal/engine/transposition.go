package engine

import (
	"errors"
	"fmt"

	"github.com/hailam/ace/internal/board"
)

// Bound says how a stored score relates to the true value of a position.
type Bound uint8

const (
	BoundNone  Bound = iota // empty slot
	BoundUpper              // failed low: true score <= stored
	BoundLower              // failed high: true score >= stored
	BoundExact
)

// Hash size limits in megabytes.
const (
	MinHashMB     = 1
	MaxHashMB     = 1024
	DefaultHashMB = 16
)

// ErrHashSize is returned for table sizes outside MinHashMB..MaxHashMB.
var ErrHashSize = errors.New("transposition table size out of range")

// TTEntry is one slot of the table.
type TTEntry struct {
	Key        uint64     // full Zobrist key, so index collisions are detected
	Move       board.Move // best or refutation move, may be NoMove
	Score      int16      // mate scores stored as distance from this node
	Depth      int8
	Bound      Bound
	Generation uint8
}

const bucketSize = 4

type bucket [bucketSize]TTEntry

// TTStats counts table traffic since the last Clear.
type TTStats struct {
	Probes     uint64
	Hits       uint64
	Stores     uint64
	Overwrites uint64 // stores that evicted a different position
}

// TranspositionTable is a fixed array of 4-slot buckets indexed by the low
// bits of the position key. It is owned by one Engine and is not safe for
// concurrent use.
type TranspositionTable struct {
	buckets    []bucket
	mask       uint64
	generation uint8
	sizeMB     int
	stats      TTStats
}

// NewTranspositionTable allocates a table of at most sizeMB megabytes,
// rounded down to a power-of-two bucket count.
func NewTranspositionTable(sizeMB int) (*TranspositionTable, error) {
	tt := &TranspositionTable{}
	if err := tt.Resize(sizeMB); err != nil {
		return nil, err
	}
	return tt, nil
}

// Resize reallocates the table, dropping every entry.
func (tt *TranspositionTable) Resize(sizeMB int) error {
	if sizeMB < MinHashMB || sizeMB > MaxHashMB {
		return fmt.Errorf("%w: %d MB (want %d..%d)", ErrHashSize, sizeMB, MinHashMB, MaxHashMB)
	}
	const bucketBytes = 16 * bucketSize
	n := roundDownToPowerOf2(uint64(sizeMB) << 20 / bucketBytes)
	tt.buckets = make([]bucket, n)
	tt.mask = n - 1
	tt.sizeMB = sizeMB
	tt.generation = 0
	tt.stats = TTStats{}
	return nil
}

// roundDownToPowerOf2 rounds n down to the nearest power of 2.
func roundDownToPowerOf2(n uint64) uint64 {
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return (n + 1) >> 1
}

// Close releases the backing array. Probe and Store are no-ops afterwards.
func (tt *TranspositionTable) Close() {
	tt.buckets = nil
	tt.mask = 0
}

// Clear empties every slot and resets the statistics.
func (tt *TranspositionTable) Clear() {
	clear(tt.buckets)
	tt.generation = 0
	tt.stats = TTStats{}
}

// NewSearch advances the generation so entries from earlier searches become
// the first candidates for replacement.
func (tt *TranspositionTable) NewSearch() {
	tt.generation++
}

// SizeMB returns the size the table was allocated with.
func (tt *TranspositionTable) SizeMB() int { return tt.sizeMB }

// Stats returns the traffic counters.
func (tt *TranspositionTable) Stats() TTStats { return tt.stats }

// Store records a search result for key. score is relative to the node at
// ply; mate scores are rebased to the node before storing.
//
// Slot choice within the bucket: an empty slot, else the slot already
// holding key, else the slot with the oldest generation (shallowest depth on
// ties). Empty slots and slots left by earlier searches are always written;
// otherwise the write only happens when it is at least as deep as what is
// there or carries an exact bound.
func (tt *TranspositionTable) Store(key uint64, move board.Move, score int, bound Bound, depth, ply int) {
	if tt.buckets == nil {
		return
	}
	b := &tt.buckets[key&tt.mask]

	var slot *TTEntry
	for i := range b {
		e := &b[i]
		if e.Bound == BoundNone {
			slot = e
			break
		}
		if e.Key == key {
			slot = e
			if move == board.NoMove {
				move = e.Move
			}
			break
		}
	}
	if slot == nil {
		slot = &b[0]
		for i := 1; i < bucketSize; i++ {
			if tt.replaceable(&b[i], slot) {
				slot = &b[i]
			}
		}
	}

	fresh := slot.Bound == BoundNone || slot.Generation != tt.generation
	if !fresh && depth < int(slot.Depth) && bound != BoundExact {
		return
	}
	if slot.Bound != BoundNone && slot.Key != key {
		tt.stats.Overwrites++
	}
	tt.stats.Stores++

	*slot = TTEntry{
		Key:        key,
		Move:       move,
		Score:      int16(scoreToTT(score, ply)),
		Depth:      int8(depth),
		Bound:      bound,
		Generation: tt.generation,
	}
}

// replaceable reports whether e is a better eviction victim than cur.
func (tt *TranspositionTable) replaceable(e, cur *TTEntry) bool {
	ageE, ageCur := tt.generation-e.Generation, tt.generation-cur.Generation
	if ageE != ageCur {
		return ageE > ageCur
	}
	return e.Depth < cur.Depth
}

// Probe looks key up. move is the stored move whenever the key is present,
// usable or not. ok is true only when the entry is at least depth deep and
// its bound settles the window: an exact score is returned as is, an upper
// bound at or below alpha returns alpha, a lower bound at or above beta
// returns beta.
func (tt *TranspositionTable) Probe(key uint64, depth, alpha, beta, ply int) (move board.Move, score int, ok bool) {
	if tt.buckets == nil {
		return board.NoMove, 0, false
	}
	tt.stats.Probes++
	b := &tt.buckets[key&tt.mask]
	for i := range b {
		e := &b[i]
		if e.Bound == BoundNone || e.Key != key {
			continue
		}
		tt.stats.Hits++
		if int(e.Depth) < depth {
			return e.Move, 0, false
		}
		s := scoreFromTT(int(e.Score), ply)
		switch e.Bound {
		case BoundExact:
			return e.Move, s, true
		case BoundUpper:
			if s <= alpha {
				return e.Move, alpha, true
			}
		case BoundLower:
			if s >= beta {
				return e.Move, beta, true
			}
		}
		return e.Move, 0, false
	}
	return board.NoMove, 0, false
}

// Lookup returns the raw entry for key, if present.
func (tt *TranspositionTable) Lookup(key uint64) (TTEntry, bool) {
	if tt.buckets == nil {
		return TTEntry{}, false
	}
	b := &tt.buckets[key&tt.mask]
	for i := range b {
		if b[i].Bound != BoundNone && b[i].Key == key {
			return b[i], true
		}
	}
	return TTEntry{}, false
}

// HashFull returns the permille of sampled slots written by the current
// search.
func (tt *TranspositionTable) HashFull() int {
	n := len(tt.buckets)
	if n > 250 {
		n = 250
	}
	if n == 0 {
		return 0
	}
	used := 0
	for i := 0; i < n; i++ {
		for _, e := range tt.buckets[i] {
			if e.Bound != BoundNone && e.Generation == tt.generation {
				used++
			}
		}
	}
	return used * 1000 / (n * bucketSize)
}

// scoreToTT turns a mate score relative to the root into one relative to
// the node at ply.
func scoreToTT(score, ply int) int {
	switch {
	case score > MateBound:
		return score + ply
	case score < -MateBound:
		return score - ply
	}
	return score
}

// scoreFromTT is the inverse of scoreToTT.
func scoreFromTT(score, ply int) int {
	switch {
	case score > MateBound:
		return score - ply
	case score < -MateBound:
		return score + ply
	}
	return score
}
