package lsra

// move is one resolution move to emit on an edge.
type move struct {
	v        int // tracked var index
	fromLoc  VarLocation
	toLoc    VarLocation
}

// planAllEdgeMoves walks every CFG edge and emits the moves that reconcile
// the predecessor's outgoing var-to-reg map with the successor's incoming
// one.
func (a *Allocator) planAllEdgeMoves() {
	for _, from := range a.order {
		for _, to := range from.Succs() {
			a.planEdge(from, to)
		}
	}
}

func (a *Allocator) planEdge(from, to Block) {
	fromInfo, toInfo := a.infos[from.ID()], a.infos[to.ID()]
	var moves []move
	for v, toLoc := range toInfo.inVarToRegMap {
		fromLoc, ok := fromInfo.outVarToRegMap[v]
		if !ok || fromLoc == toLoc {
			continue
		}
		moves = append(moves, move{v: v, fromLoc: fromLoc, toLoc: toLoc})
	}
	if len(moves) == 0 {
		return
	}

	split := len(to.Preds()) == 1
	join := len(from.Succs()) == 1
	critical := a.critical[edgeKey{from.ID(), to.ID()}]

	target := to
	insertAtTop := split
	if critical && !split && !join {
		if !a.allSuccessorsWantSameMoves(from, to, moves) {
			target = a.fn.SplitCriticalEdge(from, to)
			insertAtTop = true
		} else {
			target = from
			insertAtTop = false
		}
	} else if join {
		target = from
		insertAtTop = false
	}

	a.emitEdgeMoves(target, insertAtTop, moves, a.localVarRegType(moves))
}

func (a *Allocator) allSuccessorsWantSameMoves(from, to Block, moves []move) bool {
	for _, s := range from.Succs() {
		if s.ID() == to.ID() {
			continue
		}
		sInfo := a.infos[s.ID()]
		for _, m := range moves {
			want, ok := sInfo.inVarToRegMap[m.v]
			if !ok || want != m.toLoc {
				return false
			}
		}
	}
	return true
}

func (a *Allocator) localVarRegType(moves []move) map[int]RegType {
	t := make(map[int]RegType, len(moves))
	for _, m := range moves {
		t[m.v] = a.fn.Locals().RegType(m.v)
	}
	return t
}

// emitEdgeMoves performs the reg<->stack and reg<->reg partition and cycle
// resolution, appending at the top or bottom of block.
func (a *Allocator) emitEdgeMoves(block Block, atTop bool, moves []move, regType map[int]RegType) {
	var regToStack, stackToReg []move
	regToReg := make(map[RealReg]move)

	for _, m := range moves {
		switch {
		case !m.fromLoc.OnStack && m.toLoc.OnStack:
			regToStack = append(regToStack, m)
		case m.fromLoc.OnStack && !m.toLoc.OnStack:
			stackToReg = append(stackToReg, m)
		case !m.fromLoc.OnStack && !m.toLoc.OnStack:
			regToReg[m.fromLoc.Reg] = m
		}
	}

	var emitted []Instr
	emit := func(dst, src VReg) {
		emitted = append(emitted, a.fn.NewCopy(dst, src))
	}

	for _, m := range regToStack {
		slot := a.spillSlotForVar(m.v, regType[m.v])
		emitted = append(emitted, a.fn.NewSpill(slot, FromRealReg(m.fromLoc.Reg, regType[m.v])))
	}

	wantedBy := make(map[RealReg]RealReg, len(regToReg)) // target reg -> source reg
	for src, m := range regToReg {
		wantedBy[m.toLoc.Reg] = src
	}

	inFlight := make(map[RealReg]bool, len(regToReg))
	for src := range regToReg {
		inFlight[src] = true
	}

	ready := func(target RealReg) bool { return !inFlight[target] }

	progressed := true
	for len(regToReg) > 0 && progressed {
		progressed = false
		for target, src := range wantedBy {
			if !inFlight[src] {
				continue
			}
			if !ready(target) {
				continue
			}
			m := regToReg[src]
			emit(FromRealReg(target, regType[m.v]), FromRealReg(src, regType[m.v]))
			delete(regToReg, src)
			delete(wantedBy, target)
			delete(inFlight, src)
			progressed = true
		}
	}

	if len(regToReg) > 0 {
		a.breakResolutionCycle(block, regToReg, regType, &emitted)
	}

	for _, m := range stackToReg {
		slot := a.spillSlotForVar(m.v, regType[m.v])
		emitted = append(emitted, a.fn.NewReload(FromRealReg(m.toLoc.Reg, regType[m.v]), slot))
	}

	a.spliceMoves(block, atTop, emitted)
}

// breakResolutionCycle resolves the remaining reg->reg moves, which must
// form one or more cycles once the ready-set is exhausted.
func (a *Allocator) breakResolutionCycle(block Block, regToReg map[RealReg]move, regType map[int]RegType, emitted *[]Instr) {
	for len(regToReg) > 0 {
		var anySrc RealReg
		for s := range regToReg {
			anySrc = s
			break
		}
		m := regToReg[anySrc]
		t := regType[m.v]

		// A true 2-cycle (anySrc -> m.toLoc.Reg -> anySrc) can be broken
		// with one atomic exchange. Anything longer must not take this
		// path: swapping only the two registers anySrc touches would
		// silently drop every other register in the cycle.
		if a.abi.SupportsAtomicSwap(t) {
			if other, ok := regToReg[m.toLoc.Reg]; ok && other.toLoc.Reg == anySrc {
				*emitted = append(*emitted, a.fn.NewSwap(FromRealReg(anySrc, t), FromRealReg(m.toLoc.Reg, t)))
				delete(regToReg, anySrc)
				delete(regToReg, m.toLoc.Reg)
				continue
			}
		}

		if scratch, ok := a.scratchRegisterForResolution(block, t, regToReg); ok {
			// Save anySrc's value before anything overwrites it, then
			// free anySrc by removing its entry: the rest of the cycle
			// can now drain register-to-register, walking backwards from
			// the register each step needs to vacate, until the chain
			// closes back on anySrc, at which point the saved value
			// lands in its original destination.
			*emitted = append(*emitted, a.fn.NewCopy(FromRealReg(scratch, t), FromRealReg(anySrc, t)))
			delete(regToReg, anySrc)

			cur := anySrc
			for {
				pred, ok := predecessorByDest(regToReg, cur)
				if !ok {
					*emitted = append(*emitted, a.fn.NewCopy(FromRealReg(cur, t), FromRealReg(scratch, t)))
					break
				}
				*emitted = append(*emitted, a.fn.NewCopy(FromRealReg(cur, t), FromRealReg(pred, t)))
				delete(regToReg, pred)
				cur = pred
			}
			continue
		}

		// No scratch register: park anySrc's value on the stack instead and
		// drain the chain the same way, reloading it once the chain closes.
		slot := a.fn.AllocateSpillSlot(t)
		*emitted = append(*emitted, a.fn.NewSpill(slot, FromRealReg(anySrc, t)))
		delete(regToReg, anySrc)

		cur := anySrc
		for {
			pred, ok := predecessorByDest(regToReg, cur)
			if !ok {
				*emitted = append(*emitted, a.fn.NewReload(FromRealReg(cur, t), slot))
				break
			}
			*emitted = append(*emitted, a.fn.NewCopy(FromRealReg(cur, t), FromRealReg(pred, t)))
			delete(regToReg, pred)
			cur = pred
		}
	}
}

// predecessorByDest finds the remaining move whose target is dst, i.e. the
// register currently holding the value dst is waiting for.
func predecessorByDest(regToReg map[RealReg]move, dst RealReg) (RealReg, bool) {
	for src, m := range regToReg {
		if m.toLoc.Reg == dst {
			return src, true
		}
	}
	return RealRegInvalid, false
}

// scratchRegisterForResolution scans block's live-in registers and picks
// one not wanted by any remaining cycle member.
func (a *Allocator) scratchRegisterForResolution(block Block, t RegType, inUse map[RealReg]move) (RealReg, bool) {
	info := a.infos[block.ID()]
	busy := make(map[RealReg]bool)
	for _, loc := range info.inVarToRegMap {
		if !loc.OnStack {
			busy[loc.Reg] = true
		}
	}
	for r := range inUse {
		busy[r] = true
	}
	for _, r := range a.abi.AllocatableRegisters(t) {
		if !busy[r] {
			return r, true
		}
	}
	return RealRegInvalid, false
}

func (a *Allocator) spillSlotForVar(v int, t RegType) int {
	// Stack-resident locals keep a stable home slot for their whole
	// lifetime; reuse the interval's own slot when it has one.
	if id := a.localVarIntervals[v]; id != IntervalIDInvalid {
		return a.spillSlotFor(a.interval(id))
	}
	return a.fn.AllocateSpillSlot(t)
}

func (a *Allocator) spliceMoves(block Block, atTop bool, moves []Instr) {
	if len(moves) == 0 {
		return
	}
	instrs := block.Instrs()
	if atTop {
		if len(instrs) == 0 {
			return
		}
		anchor := instrs[0]
		for i := len(moves) - 1; i >= 0; i-- {
			a.fn.InsertBefore(anchor, moves[i])
		}
		return
	}
	if len(instrs) == 0 {
		return
	}
	anchor := instrs[len(instrs)-1]
	for _, m := range moves {
		a.fn.InsertBefore(anchor, m)
	}
}
