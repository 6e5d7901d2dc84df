package lsra

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lsra-go/lsra/ir"
	"github.com/lsra-go/lsra/target"
)

// TestFixedRegPinsRequiredPhysicalRegister exercises RefFixedReg: an
// operand pinned to a specific physical register (e.g. a shift count
// forced into CL) must land there even though the interval's own home is
// a different register.
func TestFixedRegPinsRequiredPhysicalRegister(t *testing.T) {
	abi := &target.AMD64{}
	fn := ir.NewFunction(abi)
	locals := fn.Locals()
	v := locals.AddLocal(RegTypeInt, 3, 3)

	b := ir.NewBlock(0)
	b.SetWeight(1)
	vreg := NewVReg(VRegID(v), RegTypeInt)
	loadI := ir.NewInstr(ir.OpLoad, []VReg{vreg}, nil)
	fixedUseI := ir.NewInstr(ir.OpAdd, nil, []VReg{vreg})
	fixedUseI.MarkFixedUse(0, target.RCX)
	b.Append(loadI)
	b.Append(fixedUseI)
	b.Append(ir.NewInstr(ir.OpReturn, nil, []VReg{vreg}))
	fn.AddBlock(b)

	a := NewAllocator(fn, Options{})
	a.Allocate()
	a.VerifyFinalAllocation()

	require.Equal(t, target.RCX, fixedUseI.Uses()[0].RealReg())
}

// TestKillGcRefsSpillsLiveRefAcrossCall exercises RefKillGcRefs: a
// GC-tracked local live across a call must be spilled at the call site
// regardless of the call's explicit caller-saved kill set.
func TestKillGcRefsSpillsLiveRefAcrossCall(t *testing.T) {
	abi := &target.AMD64{}
	fn := ir.NewFunction(abi)
	locals := fn.Locals()
	v := locals.AddLocal(RegTypeRef, 3, 3)

	b := ir.NewBlock(0)
	b.SetWeight(1)
	vreg := NewVReg(VRegID(v), RegTypeRef)
	b.Append(ir.NewInstr(ir.OpLoad, []VReg{vreg}, nil))
	b.Append(ir.NewInstr(ir.OpCall, nil, nil))
	b.Append(ir.NewInstr(ir.OpReturn, nil, []VReg{vreg}))
	fn.AddBlock(b)

	a := NewAllocator(fn, Options{})
	a.Allocate()
	a.VerifyFinalAllocation()

	require.True(t, locals.OnFrame(v))
}

// TestParamDefAndZeroInitReachableAtEntry exercises RefParamDef and
// RefZeroInit: a register-arg parameter and a must-zero-init local both
// get an entry-time ref without upsetting the rest of the sweep.
func TestParamDefAndZeroInitReachableAtEntry(t *testing.T) {
	abi := &target.AMD64{}
	fn := ir.NewFunction(abi)
	locals := fn.Locals()
	p := locals.AddLocal(RegTypeInt, 2, 2)
	locals.SetParam(p, true)
	locals.SetRegArg(p, true)
	z := locals.AddLocal(RegTypeInt, 2, 2)
	locals.SetNeedsZeroInit(z, true)

	b := ir.NewBlock(0)
	b.SetWeight(1)
	vp := NewVReg(VRegID(p), RegTypeInt)
	vz := NewVReg(VRegID(z), RegTypeInt)
	b.Append(ir.NewInstr(ir.OpAdd, nil, []VReg{vp, vp}))
	b.Append(ir.NewInstr(ir.OpReturn, nil, []VReg{vz}))
	fn.AddBlock(b)

	a := NewAllocator(fn, Options{})
	require.NotPanics(t, func() { a.Allocate() })
	a.VerifyFinalAllocation()
}

// TestUpperVectorSaveRestoreAroundCallForPreferredCalleeSaveSIMD exercises
// RefUpperVectorSave/RefUpperVectorRestore: a SIMD local with a high
// enough weighted ref-count to prefer callee-save treatment gets wrapped
// around a call on a target where the callee-saved file only preserves
// the lower vector bits.
func TestUpperVectorSaveRestoreAroundCallForPreferredCalleeSaveSIMD(t *testing.T) {
	abi := &target.AMD64{}
	fn := ir.NewFunction(abi)
	locals := fn.Locals()
	v := locals.AddLocal(RegTypeSIMD, 5, 5) // >= strongWeightThreshold

	b := ir.NewBlock(0)
	b.SetWeight(1)
	vreg := NewVReg(VRegID(v), RegTypeSIMD)
	b.Append(ir.NewInstr(ir.OpLoad, []VReg{vreg}, nil))
	b.Append(ir.NewInstr(ir.OpCall, nil, nil))
	b.Append(ir.NewInstr(ir.OpReturn, nil, []VReg{vreg}))
	fn.AddBlock(b)

	a := NewAllocator(fn, Options{})
	require.NotPanics(t, func() { a.Allocate() })
	a.VerifyFinalAllocation()

	iv := a.interval(a.localVarIntervals[v])
	require.True(t, iv.PreferCalleeSave)
}

// TestConstantDefSetsIntervalConstantFields exercises OpConst: a def that
// materializes a compile-time constant must mark its interval IsConstant
// with the matching value, the data this repo's CONST_AVAILABLE heuristic
// reads.
func TestConstantDefSetsIntervalConstantFields(t *testing.T) {
	abi := &target.AMD64{}
	fn := ir.NewFunction(abi)
	locals := fn.Locals()
	v := locals.AddLocal(RegTypeInt, 2, 2)

	b := ir.NewBlock(0)
	b.SetWeight(1)
	vreg := NewVReg(VRegID(v), RegTypeInt)
	b.Append(ir.NewConstInstr(vreg, 42))
	b.Append(ir.NewInstr(ir.OpReturn, nil, []VReg{vreg}))
	fn.AddBlock(b)

	a := NewAllocator(fn, Options{})
	a.Allocate()
	a.VerifyFinalAllocation()

	iv := a.interval(a.localVarIntervals[v])
	require.True(t, iv.IsConstant)
	require.Equal(t, uint64(42), iv.ConstantValue)
}

// TestConstantMatchRegistersFindsRematerializationCandidate is a focused
// unit test of the CONST_AVAILABLE heuristic's register query: given two
// constant intervals with the same value, the register last holding the
// first must be offered back for the second instead of a cold pick.
func TestConstantMatchRegistersFindsRematerializationCandidate(t *testing.T) {
	abi := &target.AMD64{}
	fn := ir.NewFunction(abi)
	a := NewAllocator(fn, Options{})

	prior := a.newInterval(IntervalConstant, RegTypeInt)
	prior.IsConstant = true
	prior.ConstantValue = 7
	a.regRecordFor(target.RAX).PreviousInterval = prior.id

	candidate := a.newInterval(IntervalConstant, RegTypeInt)
	candidate.IsConstant = true
	candidate.ConstantValue = 7

	mask := a.constantMatchRegisters(candidate)
	require.True(t, mask.Has(target.RAX))
}

// TestDelayFreeUseKeepsChainIntact exercises MarkDelayFreeUse: a
// read-modify-write's source operand must carry DelayRegFree through to
// the RefPosition the allocation pass sees, without derailing the rest of
// the sweep.
func TestDelayFreeUseKeepsChainIntact(t *testing.T) {
	abi := &target.AMD64{}
	fn := ir.NewFunction(abi)
	locals := fn.Locals()
	src := locals.AddLocal(RegTypeInt, 2, 2)
	dst := locals.AddLocal(RegTypeInt, 2, 2)

	b := ir.NewBlock(0)
	b.SetWeight(1)
	vSrc := NewVReg(VRegID(src), RegTypeInt)
	vDst := NewVReg(VRegID(dst), RegTypeInt)
	b.Append(ir.NewInstr(ir.OpLoad, []VReg{vSrc}, nil))
	rmw := ir.NewInstr(ir.OpSub, []VReg{vDst}, []VReg{vSrc})
	rmw.MarkDelayFreeUse(0)
	b.Append(rmw)
	b.Append(ir.NewInstr(ir.OpReturn, nil, []VReg{vDst}))
	fn.AddBlock(b)

	a := NewAllocator(fn, Options{})
	a.Allocate()
	a.VerifyFinalAllocation()

	require.True(t, locals.IsRegister(src))
	require.True(t, locals.IsRegister(dst))
}
