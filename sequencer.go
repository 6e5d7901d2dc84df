package lsra

import (
	"sort"

	"github.com/lsra-go/lsra/internal/bitset"
)

// edgeKey identifies a CFG edge by endpoint block IDs.
type edgeKey struct{ from, to int }

// buildBlockOrder produces the traversal order: the entry
// block first, every block exactly once, and an order compatible enough
// with the CFG that the allocator can usually propagate register state
// directly from a predecessor's outgoing map.
//
// It also classifies every edge as critical (source has >1 successor and
// destination has >1 predecessor) — consulted by resolution — as a
// side effect of the single pass over the CFG.
func buildBlockOrder(f Function) (order []Block, critical map[edgeKey]bool) {
	blocks := f.Blocks()
	critical = make(map[edgeKey]bool, len(blocks))
	for _, b := range blocks {
		multiSucc := len(b.Succs()) > 1
		for _, s := range b.Succs() {
			if multiSucc && len(s.Preds()) > 1 {
				critical[edgeKey{b.ID(), s.ID()}] = true
			}
		}
	}

	var visited bitset.Set
	isVisited := func(b Block) bool { return visited.Has(uint(b.ID())) }
	allPredsVisited := func(b Block) bool {
		for _, p := range b.Preds() {
			if !isVisited(p) {
				return false
			}
		}
		return true
	}

	var work []Block
	push := func(b Block) {
		if !isVisited(b) {
			for _, w := range work {
				if w.ID() == b.ID() {
					return
				}
			}
			work = append(work, b)
		}
	}

	entry := f.EntryBlock()
	order = append(order, entry)
	visited.Add(uint(entry.ID()))
	for _, s := range entry.Succs() {
		push(s)
	}

	less := func(b1, b2 Block) bool {
		if b1.RarelyRun() || b2.RarelyRun() || allPredsVisited(b1) || allPredsVisited(b2) {
			if b1.Weight() != b2.Weight() {
				return b1.Weight() > b2.Weight() // higher weight first
			}
			return b1.ID() < b2.ID()
		}
		return b1.ID() < b2.ID()
	}

	for len(work) > 0 {
		sort.SliceStable(work, func(i, j int) bool { return less(work[i], work[j]) })
		next := work[0]
		work = work[1:]
		if isVisited(next) {
			continue
		}
		order = append(order, next)
		visited.Add(uint(next.ID()))
		for _, s := range next.Succs() {
			push(s)
		}
	}

	// Unreached blocks (unreachable or EH-only) are appended in IR layout
	// order.
	for _, b := range blocks {
		if !isVisited(b) {
			order = append(order, b)
			visited.Add(uint(b.ID()))
		}
	}

	return order, critical
}
