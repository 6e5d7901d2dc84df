package lsra

// buildRefPositions walks the block sequence once, assigning two Locations
// per instruction and creating the Use/Def/Kill/BB RefPositions (plus the
// fixed-register, GC-kill, param-entry, and partial-vector-save markers the
// allocation pass dispatches on) that the allocation pass then sweeps. This
// is the construction half of component F: the source allocator builds
// intervals and RefPositions in the same traversal that later drives
// allocation.
//
// VReg IDs below Locals().Count() are local variables (one-to-one with a
// LocalVarTable index); higher IDs are anonymous tree-temps, each getting
// its own IntervalTreeTemp interval on first encounter.
func (a *Allocator) buildRefPositions() {
	tempIntervals := make(map[VRegID]IntervalID)
	localCount := VRegID(a.fn.Locals().Count())

	intervalFor := func(v VReg) *Interval {
		id := v.ID()
		if id < localCount {
			ivID := a.localVarIntervals[id]
			if ivID == IntervalIDInvalid {
				return nil // demoted/rejected local: stack-only, no interval.
			}
			return a.interval(ivID)
		}
		if ivID, ok := tempIntervals[id]; ok {
			return a.interval(ivID)
		}
		iv := a.newInterval(IntervalTreeTemp, v.RegType())
		tempIntervals[id] = iv.id
		return iv
	}

	loc := Location(0)
	for bi, b := range a.order {
		bbLoc := loc
		a.newRefPosition(RefBB, bbLoc, b.ID(), Referent{}, RegMask{}, nil)
		loc++

		if bi == 0 {
			loc = a.buildEntryRefs(loc, b.ID())
		}

		for _, instr := range b.Instrs() {
			useLoc := loc
			defLoc := loc + 1
			loc += locationsPerNode

			for i, u := range instr.Uses() {
				iv := intervalFor(u)
				if iv == nil {
					continue
				}
				mask := NewRegMask(a.abi.AllocatableRegisters(iv.RegisterType)...)
				if r, ok := instr.FixedUse(i); ok {
					if rr, ok := a.regRecordByReal[r]; ok {
						a.newRefPosition(RefFixedReg, useLoc, b.ID(), Referent{IsReg: true, Reg: rr}, NewRegMask(r), instr)
					}
					mask = NewRegMask(r)
				}
				rp := a.newRefPosition(RefUse, useLoc, b.ID(), Referent{Interval: iv.id}, mask, instr)
				rp.DelayRegFree = instr.IsDelayFreeUse(i)
				rp.IsLocalDefUse = iv.IsLocalVar()
				rp.MultiRegIdx = i
			}

			if instr.IsCall() || instr.IsIndirectCall() {
				kill := a.fn.KillSetForNode(instr)
				kill.Range(func(r RealReg) {
					rr, ok := a.regRecordByReal[r]
					if !ok {
						return
					}
					a.newRefPosition(RefKill, useLoc, b.ID(), Referent{IsReg: true, Reg: rr}, NewRegMask(r), instr)
				})

				a.newRefPosition(RefKillGcRefs, useLoc, b.ID(), Referent{}, RegMask{}, instr)
				a.buildUpperVectorSaveRestore(useLoc, defLoc, b.ID(), instr)
			}

			constVal, isConst := instr.ConstantDef()

			for i, d := range instr.Defs() {
				iv := intervalFor(d)
				if iv == nil {
					continue
				}
				if isConst && i == 0 {
					iv.IsConstant = true
					iv.ConstantValue = constVal
				}
				mask := NewRegMask(a.abi.AllocatableRegisters(iv.RegisterType)...)
				if r, ok := instr.FixedDef(i); ok {
					if rr, ok := a.regRecordByReal[r]; ok {
						a.newRefPosition(RefFixedReg, defLoc, b.ID(), Referent{IsReg: true, Reg: rr}, NewRegMask(r), instr)
					}
					mask = NewRegMask(r)
				}
				rp := a.newRefPosition(RefDef, defLoc, b.ID(), Referent{Interval: iv.id}, mask, instr)
				rp.MultiRegIdx = i
			}
		}
	}
}

// buildEntryRefs emits the RefParamDef/RefZeroInit markers for the entry
// block: a register-arg parameter needs its incoming-argument-register
// home recorded before any real use, and a GC-tracked local with no
// explicit initializer needs to be reported as live-but-zeroed from
// procedure entry.
func (a *Allocator) buildEntryRefs(loc Location, bbNum int) Location {
	locals := a.fn.Locals()
	for v, ivID := range a.localVarIntervals {
		if ivID == IntervalIDInvalid {
			continue
		}
		iv := a.interval(ivID)
		mask := NewRegMask(a.abi.AllocatableRegisters(iv.RegisterType)...)
		switch {
		case locals.IsParam(v) && locals.IsRegArg(v):
			a.newRefPosition(RefParamDef, loc, bbNum, Referent{Interval: ivID}, mask, nil)
			loc++
		case locals.NeedsZeroInit(v):
			a.newRefPosition(RefZeroInit, loc, bbNum, Referent{Interval: ivID}, mask, nil)
			loc++
		}
	}
	return loc
}

// buildUpperVectorSaveRestore wraps a call site with a save/restore pair
// for every local-var interval that prefers callee-save treatment on a
// target where the callee-saved register file only preserves the lower
// bits across a call (the AVX upper-128 quirk).
func (a *Allocator) buildUpperVectorSaveRestore(useLoc, defLoc Location, bbNum int, instr Instr) {
	for _, ivID := range a.localVarIntervals {
		if ivID == IntervalIDInvalid {
			continue
		}
		iv := a.interval(ivID)
		if !iv.PreferCalleeSave || !a.abi.PartialVectorCalleeSave(iv.RegisterType) {
			continue
		}
		a.newRefPosition(RefUpperVectorSave, useLoc, bbNum, Referent{Interval: ivID}, RegMask{}, instr)
		a.newRefPosition(RefUpperVectorRestore, defLoc, bbNum, Referent{Interval: ivID}, RegMask{}, instr)
	}
}
