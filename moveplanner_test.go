package lsra

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lsra-go/lsra/ir"
	"github.com/lsra-go/lsra/target"
)

// interpretMoves replays the Copy/Swap/Spill/Reload instructions emitEdgeMoves produced
// against a toy register file seeded with start, returning the final
// var-tag occupying each register. This lets a test assert the resolution
// is semantically correct without caring which intermediate path (atomic
// swap, scratch register, or spill) produced it.
func interpretMoves(instrs []Instr, start map[RealReg]string) map[RealReg]string {
	regs := make(map[RealReg]string, len(start))
	for r, v := range start {
		regs[r] = v
	}
	mem := make(map[int]string)
	for _, instr := range instrs {
		in := instr.(*ir.Instr)
		switch in.Op {
		case ir.OpCopy:
			dst := in.Defs()[0].RealReg()
			src := in.Uses()[0].RealReg()
			regs[dst] = regs[src]
		case ir.OpSwap:
			a := in.Uses()[0].RealReg()
			b := in.Uses()[1].RealReg()
			regs[a], regs[b] = regs[b], regs[a]
		case ir.OpSpill:
			src := in.Uses()[0].RealReg()
			mem[in.Slot] = regs[src]
		case ir.OpReload:
			dst := in.Defs()[0].RealReg()
			regs[dst] = mem[in.Slot]
		}
	}
	return regs
}

func newTestAllocatorForMoves(abi TargetABI, fn *ir.Function, blockID int) *Allocator {
	a := NewAllocator(fn, Options{})
	a.infos = map[int]*blockInfo{blockID: newBlockInfo(1)}
	return a
}

// TestBreakResolutionCycleTwoRegisterSwapWithAtomicSwap covers the true
// 2-cycle fast path: a target with SupportsAtomicSwap should emit exactly
// one SWAP and nothing else.
func TestBreakResolutionCycleTwoRegisterSwapWithAtomicSwap(t *testing.T) {
	abi := &target.AMD64{}
	fn := ir.NewFunction(abi)
	locals := fn.Locals()
	v0 := locals.AddLocal(RegTypeInt, 2, 2)
	v1 := locals.AddLocal(RegTypeInt, 2, 2)
	b := ir.NewBlock(0)
	b.Append(ir.NewInstr(ir.OpNop, nil, nil)) // anchor for bottom-of-block splicing
	fn.AddBlock(b)

	a := newTestAllocatorForMoves(abi, fn, 0)
	regType := map[int]RegType{v0: RegTypeInt, v1: RegTypeInt}
	moves := []move{
		{v: v0, fromLoc: RegLocation(target.RAX), toLoc: RegLocation(target.RCX)},
		{v: v1, fromLoc: RegLocation(target.RCX), toLoc: RegLocation(target.RAX)},
	}

	a.emitEdgeMoves(b, false, moves, regType)

	instrs := b.Instrs()
	require.Len(t, instrs, 2) // the swap, then the Nop anchor
	require.Equal(t, ir.OpSwap, instrs[0].(*ir.Instr).Op)

	final := interpretMoves(instrs, map[RealReg]string{target.RAX: "v0", target.RCX: "v1"})
	require.Equal(t, "v0", final[target.RCX])
	require.Equal(t, "v1", final[target.RAX])
}

// TestBreakResolutionCycleTwoRegisterSwapWithoutAtomicSwap is the exact
// scenario a maintainer review flagged as corrupting the second variable:
// a target with no atomic swap (ARM64/ARM32) resolving a 2-register swap
// must preserve both variables' values via a scratch register.
func TestBreakResolutionCycleTwoRegisterSwapWithoutAtomicSwap(t *testing.T) {
	abi := &target.ARM64{}
	fn := ir.NewFunction(abi)
	locals := fn.Locals()
	v0 := locals.AddLocal(RegTypeInt, 2, 2)
	v1 := locals.AddLocal(RegTypeInt, 2, 2)
	b := ir.NewBlock(0)
	b.Append(ir.NewInstr(ir.OpNop, nil, nil)) // anchor for bottom-of-block splicing
	fn.AddBlock(b)

	a := newTestAllocatorForMoves(abi, fn, 0)
	regType := map[int]RegType{v0: RegTypeInt, v1: RegTypeInt}
	moves := []move{
		{v: v0, fromLoc: RegLocation(target.X0), toLoc: RegLocation(target.X1)},
		{v: v1, fromLoc: RegLocation(target.X1), toLoc: RegLocation(target.X0)},
	}

	a.emitEdgeMoves(b, false, moves, regType)

	instrs := b.Instrs()
	require.NotEmpty(t, instrs)
	for _, instr := range instrs {
		require.NotEqual(t, ir.OpSwap, instr.(*ir.Instr).Op, "ARM64 has no atomic swap")
	}

	final := interpretMoves(instrs, map[RealReg]string{target.X0: "v0", target.X1: "v1"})
	require.Equal(t, "v0", final[target.X1])
	require.Equal(t, "v1", final[target.X0])
}

// TestBreakResolutionCycleThreeRegisterRotation is the case the original
// atomic-swap guard got wrong: a genuine 3-way rotation must not be
// mistaken for a 2-cycle even on a target that supports atomic swap, since
// swapping only two of the three registers would drop the third variable.
func TestBreakResolutionCycleThreeRegisterRotation(t *testing.T) {
	abi := &target.AMD64{}
	fn := ir.NewFunction(abi)
	locals := fn.Locals()
	v0 := locals.AddLocal(RegTypeInt, 2, 2)
	v1 := locals.AddLocal(RegTypeInt, 2, 2)
	v2 := locals.AddLocal(RegTypeInt, 2, 2)
	b := ir.NewBlock(0)
	b.Append(ir.NewInstr(ir.OpNop, nil, nil)) // anchor for bottom-of-block splicing
	fn.AddBlock(b)

	a := newTestAllocatorForMoves(abi, fn, 0)
	regType := map[int]RegType{v0: RegTypeInt, v1: RegTypeInt, v2: RegTypeInt}
	// R1 -> R2 -> R3 -> R1, the loop-back-edge rotation example.
	moves := []move{
		{v: v0, fromLoc: RegLocation(target.RAX), toLoc: RegLocation(target.RCX)},
		{v: v1, fromLoc: RegLocation(target.RCX), toLoc: RegLocation(target.RDX)},
		{v: v2, fromLoc: RegLocation(target.RDX), toLoc: RegLocation(target.RAX)},
	}

	a.emitEdgeMoves(b, false, moves, regType)

	instrs := b.Instrs()
	for _, instr := range instrs {
		require.NotEqual(t, ir.OpSwap, instr.(*ir.Instr).Op,
			"a 3-cycle must not be broken as if it were a 2-cycle")
	}

	final := interpretMoves(instrs, map[RealReg]string{
		target.RAX: "v0", target.RCX: "v1", target.RDX: "v2",
	})
	require.Equal(t, "v0", final[target.RCX])
	require.Equal(t, "v1", final[target.RDX])
	require.Equal(t, "v2", final[target.RAX])
}
