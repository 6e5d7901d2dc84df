package lsra

// heuristic is one entry of the register-selection tower, grounded on
// the REG_SEL_DEF table of the source JIT's heuristic list: a filter that
// narrows the current candidate set in place.
type heuristic func(s *selectorState)

// selectorScore records which heuristics fired, in tower order, mirroring
// the source's bitfield score.
type selectorScore uint32

const (
	scoreFree selectorScore = 1 << iota
	scoreConstAvailable
	scoreThisAssigned
	scoreCovers
	scoreOwnPreference
	scoreCoversRelated
	scoreRelatedPreference
	scoreCallerCallee
	scoreUnassigned
	scoreCoversFull
	scoreBestFit
	scoreIsPrevReg
	scoreRegOrder
	scoreSpillCost
	scoreFarNextRef
	scorePrevRegOpt
	scoreRegNum
)

// selectorState is the scratch space threaded through one selector
// invocation: the Interval and RefPosition being placed, the allocator it
// reads register occupancy from, and the narrowing candidate set.
type selectorState struct {
	a *Allocator

	iv *Interval
	rp *RefPosition

	candidates RegMask
	score      selectorScore

	freeCandidates    RegMask
	matchingConstants RegMask
	unassignedSet     RegMask
}

// selectRegister runs the heuristic tower and returns the chosen
// register, or (RealRegInvalid, false) if the ref is reg-optional and
// spilling is not worthwhile.
func (a *Allocator) selectRegister(iv *Interval, rp *RefPosition) (RealReg, bool) {
	initial := rp.RegisterAssignment
	if a.stressHook != nil {
		if narrowed := a.stressHook(rp, initial); !narrowed.Empty() {
			initial = narrowed
		}
	}
	s := &selectorState{a: a, iv: iv, rp: rp, candidates: initial}
	s.freeCandidates = a.freeRegisters(iv.RegisterType)
	s.matchingConstants = a.constantMatchRegisters(iv)
	s.unassignedSet = a.unassignedRegisters(iv)

	if s.candidates.Count() > 1 && s.candidates.Intersect(s.freeCandidates).Empty() {
		return a.selectSpillRegister(s)
	}

	for _, h := range freeTower {
		if s.candidates.Count() <= 1 {
			break
		}
		h(s)
	}

	if r, ok := s.candidates.Single(); ok {
		return r, true
	}
	if s.candidates.Empty() {
		return a.selectSpillRegister(s)
	}
	// More than one candidate survived the tower; REG_ORDER (the final
	// free-tower entry) always narrows to one, so this is unreachable in a
	// well-formed candidate mask. Fall back to the lowest-numbered
	// candidate for determinism.
	r, _ := s.candidates.LowestReg()
	return r, true
}

var freeTower = []heuristic{
	heurFree,
	heurConstAvailable,
	heurThisAssigned,
	heurCovers,
	heurOwnPreference,
	heurCoversRelated,
	heurRelatedPreference,
	heurCallerCallee,
	heurUnassigned,
	heurCoversFull,
	heurBestFit,
	heurIsPrevReg,
	heurRegOrder,
}

func apply(s *selectorState, bit selectorScore, subset RegMask) {
	if narrowed := s.candidates.Intersect(subset); !narrowed.Empty() {
		s.candidates = narrowed
		s.score |= bit
	}
}

func heurFree(s *selectorState) { apply(s, scoreFree, s.freeCandidates) }

func heurConstAvailable(s *selectorState) {
	if !s.iv.IsConstant || s.rp.RefType != RefDef {
		return
	}
	apply(s, scoreConstAvailable, s.matchingConstants)
}

func heurThisAssigned(s *selectorState) {
	if r, ok := s.iv.PhysReg.Single(); ok {
		apply(s, scoreThisAssigned, NewRegMask(r))
	}
}

func heurCovers(s *selectorState) {
	prefs := s.iv.RegisterPreferences.Intersect(s.freeCandidates)
	apply(s, scoreCovers, s.a.registersCoveringLifetime(s.iv, prefs))
}

func heurOwnPreference(s *selectorState) {
	apply(s, scoreOwnPreference, s.iv.RegisterPreferences.Intersect(s.freeCandidates))
}

func heurCoversRelated(s *selectorState) {
	rel := s.a.relatedInterval(s.iv)
	if rel == nil {
		return
	}
	apply(s, scoreCoversRelated, s.a.registersCoveringLifetime(rel, rel.RegisterPreferences))
}

func heurRelatedPreference(s *selectorState) {
	rel := s.a.relatedInterval(s.iv)
	if rel == nil {
		return
	}
	apply(s, scoreRelatedPreference, rel.RegisterPreferences)
}

func heurCallerCallee(s *selectorState) {
	want := s.a.callerCalleeMask(s.iv, s.rp)
	apply(s, scoreCallerCallee, want)
}

func heurUnassigned(s *selectorState) { apply(s, scoreUnassigned, s.unassignedSet) }

func heurCoversFull(s *selectorState) {
	apply(s, scoreCoversFull, s.a.registersCoveringLifetime(s.iv, AllPhysRegs))
}

func heurBestFit(s *selectorState) {
	if s.candidates.Count() <= 1 {
		return
	}
	var best RealReg
	found := false
	bestKey := Location(0)
	s.candidates.Range(func(r RealReg) {
		var key Location
		if s.score&scoreCoversFull != 0 {
			key = s.a.nextUseAfter(r, s.a.currentLocation)
		} else {
			key = -s.a.lastUseOf(r)
		}
		if !found || key < bestKey {
			found, bestKey, best = true, key, r
		}
	})
	if found {
		s.candidates = NewRegMask(best)
		s.score |= scoreBestFit
	}
}

func heurIsPrevReg(s *selectorState) {
	if s.score&scoreCoversFull == 0 {
		return
	}
	if r, ok := s.iv.PhysReg.Single(); ok {
		apply(s, scoreIsPrevReg, NewRegMask(r))
	}
}

func heurRegOrder(s *selectorState) {
	order := s.a.abi.AllocatableRegisters(s.iv.RegisterType)
	for _, r := range order {
		if s.candidates.Has(r) {
			s.candidates = NewRegMask(r)
			s.score |= scoreRegOrder
			return
		}
	}
}

// selectSpillRegister runs the spill-selection half of the tower
// once no free register survived.
func (a *Allocator) selectSpillRegister(s *selectorState) (RealReg, bool) {
	spillable := a.spillableRegisters(s.iv, s.rp)
	if spillable.Empty() {
		return RealRegInvalid, false
	}

	bestCost := 0.0
	var bestSet []RealReg
	spillable.Range(func(r RealReg) {
		cost := a.spillCostOf(r)
		switch {
		case len(bestSet) == 0 || cost < bestCost:
			bestCost, bestSet = cost, []RealReg{r}
		case cost == bestCost:
			bestSet = append(bestSet, r)
		}
	})

	if s.rp.RegOptional && bestCost >= getWeight(a.fn.Locals(), a.blockWeight, s.iv, s.rp) {
		return RealRegInvalid, false
	}

	if len(bestSet) == 1 {
		return bestSet[0], true
	}

	// FAR_NEXT_REF: farthest next use wins.
	bestSet = a.filterFarthestNextUse(bestSet)
	if len(bestSet) == 1 {
		return bestSet[0], true
	}

	// PREV_REG_OPT: weak-hold occupants preferred for eviction.
	weak := bestSet[:0:0]
	for _, r := range bestSet {
		if a.occupantWasRegOptionalReload(r) {
			weak = append(weak, r)
		}
	}
	if len(weak) > 0 {
		bestSet = weak
	}

	// REG_NUM: final tie-break, lowest register number.
	best := bestSet[0]
	for _, r := range bestSet[1:] {
		if r < best {
			best = r
		}
	}
	return best, true
}
