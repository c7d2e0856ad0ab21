package board

import (
	"context"
	"runtime"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Perft counts the leaf nodes of the legal move tree to the given depth.
func (p *Position) Perft(depth int) uint64 {
	if depth == 0 {
		return 1
	}
	var quiets, captures MoveList
	p.GenerateInto(&quiets, &captures)

	var nodes uint64
	for _, ml := range [2]*MoveList{&captures, &quiets} {
		for i := 0; i < ml.n; i++ {
			if !p.Apply(ml.moves[i]) {
				continue
			}
			if depth == 1 {
				nodes++
			} else {
				nodes += p.Perft(depth - 1)
			}
			p.Unapply()
		}
	}
	return nodes
}

// DivideEntry is the subtree size below one root move.
type DivideEntry struct {
	Move  Move
	Nodes uint64
}

// Divide runs perft below every legal root move, sorted by move text.
func (p *Position) Divide(depth int) []DivideEntry {
	if depth < 1 {
		return nil
	}
	legal := p.GenerateLegal()
	out := make([]DivideEntry, 0, legal.Len())
	for _, m := range legal.Slice() {
		p.Apply(m)
		out = append(out, DivideEntry{Move: m, Nodes: p.Perft(depth - 1)})
		p.Unapply()
	}
	sortDivide(out)
	return out
}

// ParallelDivide is Divide with the root moves spread over workers, each on
// its own copy of the position. workers <= 0 means GOMAXPROCS.
func (p *Position) ParallelDivide(ctx context.Context, depth, workers int) ([]DivideEntry, error) {
	if depth < 1 {
		return nil, nil
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	legal := p.GenerateLegal()

	var mu sync.Mutex
	out := make([]DivideEntry, 0, legal.Len())

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, m := range legal.Slice() {
		m := m
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			c := p.Copy()
			c.Apply(m)
			n := c.Perft(depth - 1)
			mu.Lock()
			out = append(out, DivideEntry{Move: m, Nodes: n})
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sortDivide(out)
	return out, nil
}

func sortDivide(d []DivideEntry) {
	sort.Slice(d, func(i, j int) bool { return d[i].Move.String() < d[j].Move.String() })
}
