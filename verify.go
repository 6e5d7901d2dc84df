package lsra

import "fmt"

// This file is the "debug-only stress modes and verification" module the
// design notes call for: a verification pass that only reads the
// allocator's final state, and a single hook stress-limiting candidate
// masks at query time. Both are opt-in: selectRegister consults the stress
// hook only once one is installed, and the verification pass runs only when
// a caller invokes it.

// StressHook narrows a RefPosition's legal register set before the
// selector sees it, letting a test harness exercise spill paths that would
// otherwise need a large example to provoke register pressure.
type StressHook func(rp *RefPosition, candidates RegMask) RegMask

// SetStressHook installs h as the candidate-mask filter applied at every
// selectRegister call. Passing nil disables stress limiting. Debug/test use
// only; never call this from allocation-pass code.
func (a *Allocator) SetStressHook(h StressHook) { a.stressHook = h }

// VerifyFinalAllocation re-simulates the RefPosition walk against the
// allocator's committed decisions and confirms every live interval lands
// in its claimed register at every point it claims to. It panics
// on the first mismatch; callers that want a recoverable check should wrap
// the call in a deferred recover.
func (a *Allocator) VerifyFinalAllocation() {
	occupant := make(map[RealReg]IntervalID)
	for _, id := range a.refList {
		rp := a.ref(id)
		if !rp.IsActualRef() || rp.Referent.IsReg {
			continue
		}
		iv := a.interval(rp.Referent.Interval)
		if iv == nil || rp.AssignedReg == RegRecordIDInvalid {
			continue
		}
		r := a.regRecords[rp.AssignedReg].RealReg

		if rp.RefType == RefUse {
			if occ, ok := occupant[r]; ok && occ != iv.id && !rp.CopyReg {
				panic(fmt.Sprintf("lsra: verify failed: register %s holds interval %d at location %d, use expected %d",
					a.abi.RealRegName(r), occ, rp.Location, iv.id))
			}
		}
		if rp.RefType == RefDef {
			occupant[r] = iv.id
		}
		if rp.SpillAfter || rp.LastUse {
			delete(occupant, r)
		}
	}
}
