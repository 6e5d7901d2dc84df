package lsra

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lsra-go/lsra/ir"
	"github.com/lsra-go/lsra/target"
)

// straightLineModule builds a single block with three instructions reading
// one local (single local, ref-count 6 — one def and five use operands),
// allocated against the full AMD64 register set.
func straightLineModule(abi *target.AMD64) (*ir.Function, *ir.Locals, int) {
	fn := ir.NewFunction(abi)
	locals := fn.Locals()
	v := locals.AddLocal(RegTypeInt, 6, 6)

	b := ir.NewBlock(0)
	b.SetWeight(1)
	vreg := NewVReg(VRegID(v), RegTypeInt)
	b.Append(ir.NewInstr(ir.OpLoad, []VReg{vreg}, nil))
	b.Append(ir.NewInstr(ir.OpAdd, nil, []VReg{vreg, vreg}))
	b.Append(ir.NewInstr(ir.OpAdd, nil, []VReg{vreg, vreg}))
	b.Append(ir.NewInstr(ir.OpReturn, nil, []VReg{vreg}))
	fn.AddBlock(b)

	return fn, locals, v
}

func TestAllocateStraightLineAssignsSingleRegister(t *testing.T) {
	abi := &target.AMD64{}
	fn, locals, v := straightLineModule(abi)

	a := NewAllocator(fn, Options{})
	a.Allocate()

	require.True(t, locals.IsRegister(v))
	require.NotEqual(t, RealRegInvalid, locals.RegNum(v))
	a.VerifyFinalAllocation()
}

func TestAllocateAcrossBlockBoundary(t *testing.T) {
	abi := &target.AMD64{}
	fn := ir.NewFunction(abi)
	locals := fn.Locals()
	a := locals.AddLocal(RegTypeInt, 2, 2)
	b := locals.AddLocal(RegTypeInt, 2, 2)
	c := locals.AddLocal(RegTypeInt, 1, 1)

	entry := ir.NewBlock(0)
	entry.SetWeight(10)
	vA := NewVReg(VRegID(a), RegTypeInt)
	vB := NewVReg(VRegID(b), RegTypeInt)
	entry.Append(ir.NewInstr(ir.OpLoad, []VReg{vA}, nil))
	entry.Append(ir.NewInstr(ir.OpLoad, []VReg{vB}, nil))

	exit := ir.NewBlock(1)
	exit.SetWeight(10)
	vC := NewVReg(VRegID(c), RegTypeInt)
	exit.Append(ir.NewInstr(ir.OpAdd, []VReg{vC}, []VReg{vA, vB}))
	exit.Append(ir.NewInstr(ir.OpReturn, nil, []VReg{vC}))

	entry.LinkTo(exit)
	fn.AddBlock(entry)
	fn.AddBlock(exit)

	alloc := NewAllocator(fn, Options{})
	alloc.Allocate()

	require.True(t, locals.IsRegister(a))
	require.True(t, locals.IsRegister(b))
	alloc.VerifyFinalAllocation()
}

func TestResolveRegistersTwiceAborts(t *testing.T) {
	abi := &target.AMD64{}
	fn, _, _ := straightLineModule(abi)
	a := NewAllocator(fn, Options{})
	a.Allocate()

	require.Panics(t, func() { a.resolveRegisters() })
}

func TestCandidateRejectsZeroRefCountAndPinned(t *testing.T) {
	abi := &target.AMD64{}
	fn := ir.NewFunction(abi)
	locals := fn.Locals()

	tracked := locals.AddLocal(RegTypeInt, 1, 1)
	pinned := locals.AddLocal(RegTypeInt, 1, 1)
	locals.SetPinned(pinned, true)
	zeroRefs := locals.AddLocal(RegTypeInt, 0, 0)

	b := ir.NewBlock(0)
	b.SetWeight(1)
	fn.AddBlock(b)

	a := NewAllocator(fn, Options{})
	a.identifyCandidates()

	require.NotEqual(t, IntervalIDInvalid, a.localVarIntervals[tracked])
	require.Equal(t, IntervalIDInvalid, a.localVarIntervals[pinned])
	require.Equal(t, IntervalIDInvalid, a.localVarIntervals[zeroRefs])
}
