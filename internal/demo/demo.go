// Package demo builds a small worked-example IR module so cmd/lsrac has
// something to allocate without a real compiler frontend attached.
package demo

import (
	"github.com/lsra-go/lsra"
	"github.com/lsra-go/lsra/ir"
)

// Build constructs a two-block function: entry computes two locals and
// branches to an exit block that combines them, enough to exercise a
// live-across-block-boundary local and the resolver's move insertion.
func Build(abi lsra.TargetABI) (*ir.Function, *ir.Locals) {
	fn := ir.NewFunction(abi)
	locals := fn.Locals()

	a := locals.AddLocal(lsra.RegTypeInt, 3, 6)
	b := locals.AddLocal(lsra.RegTypeInt, 2, 4)
	c := locals.AddLocal(lsra.RegTypeInt, 1, 1)

	entry := ir.NewBlock(0)
	entry.SetWeight(10)
	vA := lsra.NewVReg(lsra.VRegID(a), lsra.RegTypeInt)
	vB := lsra.NewVReg(lsra.VRegID(b), lsra.RegTypeInt)
	entry.Append(ir.NewInstr(ir.OpLoad, []lsra.VReg{vA}, nil))
	entry.Append(ir.NewInstr(ir.OpLoad, []lsra.VReg{vB}, nil))
	entry.Append(ir.NewInstr(ir.OpBranch, nil, nil))

	exit := ir.NewBlock(1)
	exit.SetWeight(10)
	vC := lsra.NewVReg(lsra.VRegID(c), lsra.RegTypeInt)
	exit.Append(ir.NewInstr(ir.OpAdd, []lsra.VReg{vC}, []lsra.VReg{vA, vB}))
	exit.Append(ir.NewInstr(ir.OpReturn, nil, []lsra.VReg{vC}))

	entry.LinkTo(exit)
	fn.AddBlock(entry)
	fn.AddBlock(exit)

	return fn, locals
}

// NarrowToOneRegister is a lsra.StressHook that keeps only the
// lowest-numbered candidate register, provoking spills in examples too
// small to otherwise run out of registers.
func NarrowToOneRegister(rp *lsra.RefPosition, candidates lsra.RegMask) lsra.RegMask {
	if r, ok := candidates.LowestReg(); ok {
		return lsra.NewRegMask(r)
	}
	return candidates
}
