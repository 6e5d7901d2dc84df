package lsra

// allocateRegisters sweeps the RefPosition list in location order.
func (a *Allocator) allocateRegisters() {
	a.prevLocation = MinLocation
	var curBlock Block
	blockByID := make(map[int]Block, len(a.order))
	for _, b := range a.order {
		blockByID[b.ID()] = b
	}

	for _, id := range a.refList {
		rp := a.ref(id)
		a.currentLocation = rp.Location

		if a.currentLocation > a.prevLocation {
			a.advanceLocation()
		}

		switch rp.RefType {
		case RefBB:
			if curBlock != nil {
				a.processBlockEnd(curBlock)
			}
			curBlock = blockByID[rp.BBNum]
			a.processBlockStart(curBlock)
		case RefKillGcRefs:
			a.dispatchKillGcRefs(rp)
		case RefFixedReg:
			a.dispatchFixedReg(rp)
		case RefKill:
			a.dispatchKill(rp)
		case RefExpUse:
			// Informational only.
		case RefParamDef, RefZeroInit:
			a.dispatchParamDefOrZeroInit(rp)
		case RefUpperVectorSave:
			a.dispatchUpperVectorSave(rp)
		case RefUpperVectorRestore:
			a.dispatchUpperVectorRestore(rp)
		case RefUse, RefDef:
			a.dispatchActualRef(rp)
		}

		a.postRefBookkeeping(rp)
		a.prevLocation = a.currentLocation
	}
	if curBlock != nil {
		a.processBlockEnd(curBlock)
	}

	a.forceWriteThruThisPointerToMemory()
}

// advanceLocation promotes regsInUseNextLocation,
// free pending registers, and slide delay-frees into the free set.
func (a *Allocator) advanceLocation() {
	a.regsInUseThisLocation = a.regsInUseNextLocation
	a.regsInUseNextLocation = RegMask{}
	a.freePendingRegisters(a.regsToFree)
	a.regsToFree = a.delayRegsToFree
	a.delayRegsToFree = RegMask{}
	a.makeInactivePending(a.regsToMakeInactive)
	a.regsToMakeInactive = a.delayRegsToMakeInactive
	a.delayRegsToMakeInactive = RegMask{}
	a.freePendingRegisters(a.copyRegsToFree)
	a.copyRegsToFree = RegMask{}
}

func (a *Allocator) freePendingRegisters(m RegMask) {
	m.Range(func(r RealReg) {
		rr := a.regRecordFor(r)
		if iv := a.interval(rr.AssignedInterval); iv != nil {
			iv.IsActive = false
			rr.PreviousInterval = rr.AssignedInterval
		}
		rr.AssignedInterval = IntervalIDInvalid
	})
}

func (a *Allocator) makeInactivePending(m RegMask) {
	m.Range(func(r RealReg) {
		rr := a.regRecordFor(r)
		if iv := a.interval(rr.AssignedInterval); iv != nil {
			iv.IsActive = false
		}
	})
}

func (a *Allocator) processBlockStart(b Block) {
	if b == nil {
		return
	}
	info := a.infos[b.ID()]
	var pred Block
	for _, p := range b.Preds() {
		if !a.critical[edgeKey{p.ID(), b.ID()}] {
			pred = p
			break
		}
	}
	if pred != nil {
		predInfo := a.infos[pred.ID()]
		info.predBBNum = pred.ID()
		for v, loc := range predInfo.outVarToRegMap {
			info.inVarToRegMap[v] = loc
		}
	}
}

func (a *Allocator) processBlockEnd(b Block) {
	info := a.infos[b.ID()]
	for v, ivID := range a.localVarIntervals {
		if ivID == IntervalIDInvalid {
			continue
		}
		iv := a.interval(ivID)
		if r, ok := iv.PhysReg.Single(); ok && iv.IsActive {
			info.outVarToRegMap[v] = RegLocation(r)
		} else {
			info.outVarToRegMap[v] = StackHome
		}
	}
}

func (a *Allocator) dispatchKillGcRefs(rp *RefPosition) {
	for _, r := range a.abi.AllocatableRegisters(RegTypeInt) {
		occ := a.occupantInterval(r)
		if occ != nil && a.isGCTyped(occ) {
			a.spillInterval(occ)
			a.freeRegisterNow(r)
		}
	}
}

func (a *Allocator) isGCTyped(iv *Interval) bool {
	return iv.RegisterType == RegTypeRef
}

func (a *Allocator) dispatchFixedReg(rp *RefPosition) {
	r, ok := rp.RegisterAssignment.Single()
	if !ok {
		return
	}
	rr := a.regRecordFor(r)
	rr.NextFixedRefLocation = rp.Location
	if occ := a.interval(rr.PreviousInterval); occ != nil && occ.IsConstant && !occ.IsActive {
		rr.PreviousInterval = IntervalIDInvalid
	}
}

func (a *Allocator) dispatchKill(rp *RefPosition) {
	r, ok := rp.RegisterAssignment.Single()
	if !ok {
		return
	}
	if occ := a.occupantInterval(r); occ != nil {
		a.spillInterval(occ)
		a.freeRegisterNow(r)
	}
	a.regRecordFor(r).busyUntilKillLocation = rp.Location + 1
}

func (a *Allocator) dispatchParamDefOrZeroInit(rp *RefPosition) {
	iv := a.interval(rp.Referent.Interval)
	if iv == nil {
		return
	}
	if a.nextRefAfter(iv, rp.Location) == MaxLocation {
		rp.LastUse = true
	}
	noReg := (iv.IsWriteThru && a.infos[rp.BBNum] != nil && a.infos[rp.BBNum].hasEHBoundaryIn) ||
		(iv.Kind == IntervalLocalVar && a.fn.Locals().WeightedRefCount(iv.VarIndex) < 1 && a.fn.Locals().IsRegArg(iv.VarIndex))
	if noReg {
		iv.IsSpilled = true
		return
	}
	a.allocateForRef(iv, rp)
}

func (a *Allocator) dispatchUpperVectorSave(rp *RefPosition) {
	iv := a.interval(rp.Referent.Interval)
	if iv == nil || iv.PhysReg.Empty() {
		return
	}
	iv.IsPartiallySpilled = true
}

func (a *Allocator) dispatchUpperVectorRestore(rp *RefPosition) {
	iv := a.interval(rp.Referent.Interval)
	if iv == nil {
		return
	}
	iv.IsPartiallySpilled = false
}

func (a *Allocator) dispatchActualRef(rp *RefPosition) {
	iv := a.interval(rp.Referent.Interval)
	if iv == nil {
		return
	}

	if iv.IsSpecialPutArg && rp.RefType == RefDef {
		if src := a.relatedInterval(iv); src != nil && src.IsActive {
			if r, ok := src.PhysReg.Single(); ok {
				a.regRecordFor(r).busyUntilKillLocation = rp.Location + 1
				rp.AssignedReg, _ = a.regRecordByRealOK(r)
				return
			}
		}
		iv.IsSpecialPutArg = false
	}

	if r, ok := iv.PhysReg.Single(); ok && rp.RegisterAssignment.Has(r) && !a.hasConflictingFixedReg(r, rp.Location) {
		a.recordAssignment(iv, rp, r)
		return
	}

	if r, ok := iv.PhysReg.Single(); ok {
		if rp.RefType == RefUse {
			rp.CopyReg = true
			a.allocateCopyReg(iv, rp, r)
			return
		}
		a.unassignInterval(iv, r)
		rp.MoveReg = true
		a.allocateForRef(iv, rp)
		return
	}

	if rp.RefType == RefUse {
		rp.Reload = true
	}

	if rp.RegOptional && a.shouldSkipAllocation(iv, rp) {
		iv.IsSpilled = true
		return
	}

	a.allocateForRef(iv, rp)
}

func (a *Allocator) regRecordByRealOK(r RealReg) (RegRecordID, bool) {
	id, ok := a.regRecordByReal[r]
	return id, ok
}

func (a *Allocator) hasConflictingFixedReg(r RealReg, loc Location) bool {
	return a.regRecordFor(r).NextFixedRefLocation == loc
}

func (a *Allocator) shouldSkipAllocation(iv *Interval, rp *RefPosition) bool {
	free := a.freeRegisters(iv.RegisterType).Intersect(rp.RegisterAssignment)
	if !free.Empty() {
		return false
	}
	if rp.LastUse && rp.Reload {
		return true
	}
	return a.nextRefAfter(iv, rp.Location) == MaxLocation
}

func (a *Allocator) allocateForRef(iv *Interval, rp *RefPosition) {
	r, ok := a.selectRegister(iv, rp)
	if !ok {
		iv.IsSpilled = true
		return
	}
	if occ := a.occupantInterval(r); occ != nil && occ != iv {
		if occ.IsActive {
			a.spillInterval(occ)
		} else if a.nextRefAfter(occ, a.currentLocation) > a.lastRefLocation(iv) {
			a.regRecordFor(r).PreviousInterval = occ.id
		}
		a.unassignInterval(occ, r)
	}
	a.installInterval(iv, r)
	a.recordAssignment(iv, rp, r)
}

func (a *Allocator) allocateCopyReg(iv *Interval, rp *RefPosition, home RealReg) {
	saved := rp.RegisterAssignment
	rp.RegisterAssignment = saved.Without(home)
	if rp.RegisterAssignment.Empty() {
		rp.RegisterAssignment = saved
	}
	r, ok := a.selectRegister(iv, rp)
	rp.RegisterAssignment = saved
	if !ok {
		iv.IsSpilled = true
		return
	}
	rp.AssignedReg, _ = a.regRecordByRealOK(r)
}

func (a *Allocator) installInterval(iv *Interval, r RealReg) {
	rr := a.regRecordFor(r)
	rr.AssignedInterval = iv.id
	iv.PhysReg = NewRegMask(r)
	iv.AssignedReg = rr.id
	iv.IsActive = true
}

func (a *Allocator) unassignInterval(iv *Interval, r RealReg) {
	iv.PhysReg = RegMask{}
	iv.IsActive = false
}

func (a *Allocator) spillInterval(iv *Interval) {
	iv.IsSpilled = true
	if rp := a.ref(iv.RecentRef); rp != nil {
		rp.SpillAfter = true
	}
}

func (a *Allocator) freeRegisterNow(r RealReg) {
	rr := a.regRecordFor(r)
	rr.AssignedInterval = IntervalIDInvalid
}

func (a *Allocator) recordAssignment(iv *Interval, rp *RefPosition, r RealReg) {
	rp.AssignedReg, _ = a.regRecordByRealOK(r)
	iv.RecentRef = rp.id
}

// postRefBookkeeping implements deferred register release and
// arranging the writeback-time spill for spill_after refs.
func (a *Allocator) postRefBookkeeping(rp *RefPosition) {
	if !rp.IsActualRef() || rp.Referent.IsReg {
		return
	}
	iv := a.interval(rp.Referent.Interval)
	if iv == nil {
		return
	}
	r, ok := iv.PhysReg.Single()
	if !ok {
		return
	}

	isLastUse := rp.LastUse || (rp.RefType == RefUse && a.nextRefAfter(iv, rp.Location) == MaxLocation)
	if isLastUse {
		if rp.DelayRegFree {
			a.delayRegsToFree = a.delayRegsToFree.With(r)
		} else {
			a.regsToFree = a.regsToFree.With(r)
		}
	}
	if rp.SpillAfter || (iv.IsWriteThru && rp.RefType == RefDef && !isLastUse) {
		rp.SpillAfter = true
	}
}

func (a *Allocator) forceWriteThruThisPointerToMemory() {
	// JIT32_GCENCODER's legacy "this"-pointer-to-memory forcing is specific
	// to one legacy target and is intentionally not reproduced here; any
	// target that needs it should special-case it in its TargetABI.
}
