package lsra

// This file answers the register-occupancy questions the selector
// and the allocation pass ask against current RegRecord state.

// occupantInterval returns the interval currently assigned to r, or nil.
func (a *Allocator) occupantInterval(r RealReg) *Interval {
	rr := a.regRecordFor(r)
	if rr == nil {
		return nil
	}
	return a.interval(rr.AssignedInterval)
}

// nextRefAfter returns the location of iv's first RefPosition strictly
// after loc, or MaxLocation if none remains.
func (a *Allocator) nextRefAfter(iv *Interval, loc Location) Location {
	for _, id := range iv.refsInOrder() {
		rp := a.ref(id)
		if rp.Location > loc {
			return rp.Location
		}
	}
	return MaxLocation
}

func (a *Allocator) lastRefLocation(iv *Interval) Location {
	if iv.LastRef == RefPositionIDInvalid {
		return MinLocation
	}
	return a.ref(iv.LastRef).Location
}

// freeRegisters returns the registers of type t holding no active interval
// and not busy-until-kill at the current location.
func (a *Allocator) freeRegisters(t RegType) RegMask {
	var m RegMask
	for _, r := range a.abi.AllocatableRegisters(t) {
		rr := a.regRecordFor(r)
		if rr.busyUntilKillLocation > a.currentLocation {
			continue
		}
		occ := a.interval(rr.AssignedInterval)
		if occ == nil || !occ.IsActive {
			m = m.With(r)
		}
	}
	return m
}

// constantMatchRegisters returns the registers already holding a constant
// identical to iv's (the CONST_AVAILABLE heuristic).
func (a *Allocator) constantMatchRegisters(iv *Interval) RegMask {
	var m RegMask
	if !iv.IsConstant {
		return m
	}
	for _, r := range a.abi.AllocatableRegisters(iv.RegisterType) {
		rr := a.regRecordFor(r)
		occ := a.interval(rr.AssignedInterval)
		if occ == nil {
			occ = a.interval(rr.PreviousInterval)
		}
		if occ == nil || !occ.IsConstant {
			continue
		}
		if occ.ConstantValue == iv.ConstantValue {
			m = m.With(r)
		}
	}
	return m
}

// unassignedRegisters returns registers that never held an interval active
// beyond iv's end (the UNASSIGNED heuristic).
func (a *Allocator) unassignedRegisters(iv *Interval) RegMask {
	var m RegMask
	end := a.lastRefLocation(iv)
	for _, r := range a.abi.AllocatableRegisters(iv.RegisterType) {
		rr := a.regRecordFor(r)
		occ := a.interval(rr.AssignedInterval)
		if occ == nil || a.lastRefLocation(occ) <= end {
			m = m.With(r)
		}
	}
	return m
}

// registersCoveringLifetime returns, among pref, the registers whose
// occupant's next use (if any) is at or beyond iv's last ref — i.e. the
// register would remain free for iv's whole remaining lifetime.
func (a *Allocator) registersCoveringLifetime(iv *Interval, pref RegMask) RegMask {
	var m RegMask
	end := a.lastRefLocation(iv)
	pref.Range(func(r RealReg) {
		occ := a.occupantInterval(r)
		if occ == nil || occ == iv {
			m = m.With(r)
			return
		}
		if a.nextRefAfter(occ, a.currentLocation) >= end {
			m = m.With(r)
		}
	})
	return m
}

func (a *Allocator) relatedInterval(iv *Interval) *Interval {
	return a.interval(iv.RelatedInterval)
}

// callerCalleeMask returns the registers in the class iv prefers: callee
// saved if iv.PreferCalleeSave (or it is a write-through of an
// already-modified callee-save), caller-saved otherwise (the CALLER_CALLEE
// heuristic).
func (a *Allocator) callerCalleeMask(iv *Interval, rp *RefPosition) RegMask {
	var m RegMask
	wantCallee := iv.PreferCalleeSave || (iv.IsWriteThru && rp.RefType == RefDef)
	for _, r := range a.abi.AllocatableRegisters(iv.RegisterType) {
		if wantCallee == a.abi.IsCalleeSaved(r) {
			m = m.With(r)
		}
	}
	return m
}

// nextUseAfter returns the next use location of r's current occupant after
// loc, or MaxLocation.
func (a *Allocator) nextUseAfter(r RealReg, loc Location) Location {
	occ := a.occupantInterval(r)
	if occ == nil {
		return MaxLocation
	}
	return a.nextRefAfter(occ, loc)
}

// lastUseOf returns the location of r's current occupant's last ref, or
// MinLocation if the register is free.
func (a *Allocator) lastUseOf(r RealReg) Location {
	occ := a.occupantInterval(r)
	if occ == nil {
		return MinLocation
	}
	return a.lastRefLocation(occ)
}

// spillableRegisters returns the registers eligible to be spilled to
// satisfy iv/rp: occupant must be active-but-not-at-current-location, have
// no FixedReg for the register at the current location, and have at least
// one prior RefPosition. A FixedReg at the next location is not detected:
// NextFixedRefLocation only records FixedReg refs the sweep has reached.
func (a *Allocator) spillableRegisters(iv *Interval, rp *RefPosition) RegMask {
	var m RegMask
	rp.RegisterAssignment.Range(func(r RealReg) {
		rr := a.regRecordFor(r)
		occ := a.interval(rr.AssignedInterval)
		if occ == nil || occ == iv {
			return
		}
		if occ.FirstRef == RefPositionIDInvalid {
			return
		}
		if rr.NextFixedRefLocation == a.currentLocation {
			return
		}
		if a.ref(occ.RecentRef) != nil && a.ref(occ.RecentRef).Location == a.currentLocation {
			return // occupant is active right now; cannot be evicted.
		}
		m = m.With(r)
	})
	return m
}

func (a *Allocator) spillCostOf(r RealReg) float64 {
	occ := a.occupantInterval(r)
	if occ == nil {
		return 0
	}
	rp := a.ref(occ.RecentRef)
	if rp == nil {
		return 0
	}
	return getWeight(a.fn.Locals(), a.blockWeight, occ, rp)
}

func (a *Allocator) filterFarthestNextUse(set []RealReg) []RealReg {
	if len(set) <= 1 {
		return set
	}
	best := a.nextUseAfter(set[0], a.currentLocation)
	out := []RealReg{set[0]}
	for _, r := range set[1:] {
		n := a.nextUseAfter(r, a.currentLocation)
		switch {
		case n > best:
			best, out = n, []RealReg{r}
		case n == best:
			out = append(out, r)
		}
	}
	return out
}

func (a *Allocator) occupantWasRegOptionalReload(r RealReg) bool {
	occ := a.occupantInterval(r)
	if occ == nil {
		return false
	}
	rp := a.ref(occ.RecentRef)
	return rp != nil && rp.RegOptional && rp.Reload
}
