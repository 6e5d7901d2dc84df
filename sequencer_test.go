package lsra

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lsra-go/lsra/ir"
	"github.com/lsra-go/lsra/target"
)

func TestBuildBlockOrderEntryFirst(t *testing.T) {
	fn := ir.NewFunction(target.AMD64{})
	b0 := ir.NewBlock(0)
	b1 := ir.NewBlock(1)
	b2 := ir.NewBlock(2)
	b0.LinkTo(b1)
	b1.LinkTo(b2)
	fn.AddBlock(b0)
	fn.AddBlock(b1)
	fn.AddBlock(b2)

	order, _ := buildBlockOrder(fn)
	require.Len(t, order, 3)
	require.Equal(t, 0, order[0].ID())

	seen := map[int]bool{}
	for _, b := range order {
		require.False(t, seen[b.ID()], "block visited twice")
		seen[b.ID()] = true
	}
}

func TestBuildBlockOrderMarksCriticalEdges(t *testing.T) {
	// entry has two successors (left, join); join has two predecessors
	// (entry, left) — the entry->join edge is critical, entry->left is not
	// (left has a single predecessor).
	fn := ir.NewFunction(target.AMD64{})
	entry := ir.NewBlock(0)
	left := ir.NewBlock(1)
	join := ir.NewBlock(2)
	entry.LinkTo(left)
	entry.LinkTo(join)
	left.LinkTo(join)
	fn.AddBlock(entry)
	fn.AddBlock(left)
	fn.AddBlock(join)

	_, critical := buildBlockOrder(fn)
	require.True(t, critical[edgeKey{0, 2}])
	require.False(t, critical[edgeKey{0, 1}])
	require.False(t, critical[edgeKey{1, 2}])
}
