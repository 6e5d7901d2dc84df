package lsra

// resolveRegisters is the second ordered walk of RefPositions: it
// writes the allocator's decisions back onto the IR and, once every
// RefPosition has been visited, plans the block-boundary moves.
//
// Running it twice on the same Allocator is forbidden since it
// mutates the IR in place; a second call aborts.
func (a *Allocator) resolveRegisters() {
	if a.resolved {
		panic("lsra: resolveRegisters called twice on the same allocator")
	}
	a.resolved = true

	neverChanged := make(map[IntervalID]bool)
	firstReg := make(map[IntervalID]RealReg)
	everSpilled := make(map[IntervalID]bool)
	for id := 0; id < a.intervals.Allocated(); id++ {
		neverChanged[IntervalID(id)] = true
	}

	for _, id := range a.refList {
		rp := a.ref(id)
		if !rp.IsActualRef() {
			continue
		}
		iv := a.interval(rp.Referent.Interval)
		if iv == nil {
			continue
		}

		r, hasReg := a.realRegOf(rp.AssignedReg)

		if iv.IsLocalVar() {
			a.resolveLocalRef(iv, rp, r, hasReg)
		} else {
			a.resolveTempRef(iv, rp, r, hasReg)
		}

		if iv.IsSpilled {
			everSpilled[iv.id] = true
		}
		if !hasReg {
			continue
		}
		if prev, ok := firstReg[iv.id]; ok {
			if prev != r {
				neverChanged[iv.id] = false
			}
		} else {
			firstReg[iv.id] = r
		}
	}

	locals := a.fn.Locals()
	for v, ivID := range a.localVarIntervals {
		if ivID == IntervalIDInvalid {
			continue
		}
		iv := a.interval(ivID)
		r, ok := firstReg[ivID]
		if ok && neverChanged[ivID] && !everSpilled[ivID] && !iv.IsSpilled {
			locals.SetRegister(v, true)
			locals.SetRegNum(v, r)
		} else {
			locals.SetRegister(v, false)
			locals.SetOnFrame(v, true)
		}
	}

	for t, n := range a.spillSlotHigh {
		a.fn.PreallocateSpillTemps(t, n)
	}

	a.planAllEdgeMoves()
}

func (a *Allocator) realRegOf(id RegRecordID) (RealReg, bool) {
	if id == RegRecordIDInvalid {
		return RealRegInvalid, false
	}
	return a.regRecords[id].RealReg, true
}

// resolveLocalRef writes back one Use/Def RefPosition of a local-var
// interval.
func (a *Allocator) resolveLocalRef(iv *Interval, rp *RefPosition, r RealReg, hasReg bool) {
	vreg := NewVReg(VRegID(iv.VarIndex), iv.RegisterType)
	if hasReg {
		vreg = FromRealReg(r, iv.RegisterType)
	}

	switch {
	case rp.CopyReg:
		// outOfOrder copy_reg uses are not a mismatch with the interval's
		// permanent home: annotate only, the variable's recorded home is
		// untouched.
		if rp.RefType == RefUse {
			a.assignRefNode(rp, vreg)
			cp := a.fn.NewCopy(vreg, FromRealReg(r, iv.RegisterType))
			a.fn.InsertBefore(rp.TreeNode, cp)
		}
	case rp.MoveReg:
		a.assignRefNode(rp, vreg)
		cp := a.fn.NewCopy(vreg, vreg)
		a.fn.InsertBefore(rp.TreeNode, cp)
	case rp.Reload:
		slot := a.spillSlotFor(iv)
		rl := a.fn.NewReload(vreg, slot)
		a.fn.InsertBefore(rp.TreeNode, rl)
		a.assignRefNode(rp, vreg)
	default:
		a.assignRefNode(rp, vreg)
	}

	if rp.SpillAfter {
		slot := a.spillSlotFor(iv)
		sp := a.fn.NewSpill(slot, vreg)
		a.fn.InsertAfter(rp.TreeNode, sp)
	}
}

// resolveTempRef writes back one Use/Def RefPosition of a tree-temp
// interval: same move insertion, no variable-home update.
func (a *Allocator) resolveTempRef(iv *Interval, rp *RefPosition, r RealReg, hasReg bool) {
	vreg := FromRealReg(r, iv.RegisterType)

	if rp.Reload {
		slot := a.spillSlotFor(iv)
		rl := a.fn.NewReload(vreg, slot)
		a.fn.InsertBefore(rp.TreeNode, rl)
	}
	a.assignRefNode(rp, vreg)
	if rp.SpillAfter {
		slot := a.spillSlotFor(iv)
		sp := a.fn.NewSpill(slot, vreg)
		a.fn.InsertAfter(rp.TreeNode, sp)
	}
}

func (a *Allocator) assignRefNode(rp *RefPosition, vreg VReg) {
	if rp.TreeNode == nil {
		return
	}
	if rp.RefType == RefDef {
		rp.TreeNode.AssignDef(rp.MultiRegIdx, vreg)
	} else {
		rp.TreeNode.AssignUse(rp.MultiRegIdx, vreg)
	}
}

// spillSlotFor returns iv's stack slot, reserving one on first use and
// tracking the high-water mark the resolver preallocates per type.
func (a *Allocator) spillSlotFor(iv *Interval) int {
	if slot, ok := a.spillSlotOf[iv.id]; ok {
		return slot
	}
	slot := a.fn.AllocateSpillSlot(iv.RegisterType)
	a.spillSlotOf[iv.id] = slot
	if n := a.spillSlotHigh[iv.RegisterType] + 1; n > a.spillSlotHigh[iv.RegisterType] {
		a.spillSlotHigh[iv.RegisterType] = n
	}
	return slot
}
