package lsra

// identifyCandidates classifies every local variable as a register
// candidate or stack-only, building an Interval for each candidate.
// It records the local-var intervals in a.localVarIntervals, indexed by
// tracked var index (IntervalIDInvalid where the local was rejected).
func (a *Allocator) identifyCandidates() {
	locals := a.fn.Locals()
	n := locals.Count()
	a.localVarIntervals = make([]IntervalID, n)
	for i := range a.localVarIntervals {
		a.localVarIntervals[i] = IntervalIDInvalid
	}

	minOptsWithEH := a.minOpts && a.hasEH

	rejected := func(v int) bool {
		switch {
		case !locals.Tracked(v):
			return true
		case locals.RefCount(v) == 0:
			return true
		case locals.AddrExposed(v):
			return true
		case len(a.abi.AllocatableRegisters(locals.RegType(v))) == 0:
			return true
		case locals.IsJmpRegArg(v):
			return true
		case locals.DependentPromoted(v):
			return true
		case locals.Pinned(v):
			return true
		case locals.Is64BitOn32BitTarget(v):
			return true
		case locals.DoNotEnregister(v):
			return true
		}
		return false
	}

	candidates := make([]int, 0, n)
	for v := 0; v < n; v++ {
		if rejected(v) {
			continue
		}
		if minOptsWithEH {
			locals.SetDoNotEnregister(v)
			continue
		}
		iv := a.newInterval(IntervalLocalVar, locals.RegType(v))
		iv.VarIndex = v
		a.localVarIntervals[v] = iv.id
		candidates = append(candidates, v)

		if locals.LiveInOutOfHandler(v) {
			iv.IsWriteThru = true
			iv.IsSpilled = true
		}
	}

	a.demotePromotedFieldGroups(locals, candidates)
	a.classifyFPCalleeSaveCandidates(locals, candidates)
}

// demotePromotedFieldGroups enforces the "all fields or none" rule for
// promoted struct locals: if any field failed candidacy, every sibling
// field is demoted back to stack-only.
func (a *Allocator) demotePromotedFieldGroups(locals LocalVarTable, candidates []int) {
	isCandidate := func(v int) bool {
		return v >= 0 && v < len(a.localVarIntervals) && a.localVarIntervals[v] != IntervalIDInvalid
	}
	for v := 0; v < len(a.localVarIntervals); v++ {
		fields := locals.PromotedFields(v)
		if len(fields) == 0 {
			continue
		}
		allOK := isCandidate(v)
		for _, f := range fields {
			allOK = allOK && isCandidate(f)
		}
		if allOK {
			continue
		}
		a.demote(v)
		for _, f := range fields {
			a.demote(f)
		}
	}
}

func (a *Allocator) demote(v int) {
	if v < 0 || v >= len(a.localVarIntervals) {
		return
	}
	if a.localVarIntervals[v] == IntervalIDInvalid {
		return
	}
	a.localVarIntervals[v] = IntervalIDInvalid
}

// classifyFPCalleeSaveCandidates splits FP-typed candidates into strong and
// weak callee-save preference sets by weighted ref-count, promoting the
// weak set when the routine has loops and more than six FP candidates.
func (a *Allocator) classifyFPCalleeSaveCandidates(locals LocalVarTable, candidates []int) {
	var fp []int
	for _, v := range candidates {
		if a.localVarIntervals[v] == IntervalIDInvalid {
			continue
		}
		switch locals.RegType(v) {
		case RegTypeFloat, RegTypeDouble, RegTypeSIMD:
			fp = append(fp, v)
		}
	}
	if len(fp) == 0 {
		return
	}

	const strongWeightThreshold = 4.0
	var strong, weak []int
	for _, v := range fp {
		if locals.WeightedRefCount(v) >= strongWeightThreshold {
			strong = append(strong, v)
		} else {
			weak = append(weak, v)
		}
	}

	promoteWeak := a.hasLoops && len(fp) > 6
	for _, v := range strong {
		a.intervals.View(int(a.localVarIntervals[v])).PreferCalleeSave = true
	}
	if promoteWeak {
		for _, v := range weak {
			a.intervals.View(int(a.localVarIntervals[v])).PreferCalleeSave = true
		}
	}
}
