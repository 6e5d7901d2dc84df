package lsra

import "math/bits"

// RegMask is a bitset over a target's allocatable physical registers.
// It is represented as two uint64 words to cover up to MaxPhysRegs (128)
// registers without heap allocation.
type RegMask [2]uint64

// NewRegMask builds a mask containing exactly the given registers.
func NewRegMask(regs ...RealReg) RegMask {
	var m RegMask
	for _, r := range regs {
		m = m.add(r)
	}
	return m
}

func (m RegMask) add(r RealReg) RegMask {
	m[r/64] |= 1 << (r % 64)
	return m
}

// Has reports whether r is a member of the mask.
func (m RegMask) Has(r RealReg) bool {
	return m[r/64]&(1<<(r%64)) != 0
}

// With returns m with r added.
func (m RegMask) With(r RealReg) RegMask { return m.add(r) }

// Without returns m with r removed.
func (m RegMask) Without(r RealReg) RegMask {
	m[r/64] &^= 1 << (r % 64)
	return m
}

// Union returns m ∪ other.
func (m RegMask) Union(other RegMask) RegMask {
	return RegMask{m[0] | other[0], m[1] | other[1]}
}

// Intersect returns m ∩ other.
func (m RegMask) Intersect(other RegMask) RegMask {
	return RegMask{m[0] & other[0], m[1] & other[1]}
}

// Diff returns m \ other.
func (m RegMask) Diff(other RegMask) RegMask {
	return RegMask{m[0] &^ other[0], m[1] &^ other[1]}
}

// Empty reports whether the mask has no members.
func (m RegMask) Empty() bool { return m[0] == 0 && m[1] == 0 }

// Count returns the population count of the mask.
func (m RegMask) Count() int { return bits.OnesCount64(m[0]) + bits.OnesCount64(m[1]) }

// LowestReg returns the lowest-numbered member of the mask and true, or
// (RealRegInvalid, false) if the mask is empty.
func (m RegMask) LowestReg() (RealReg, bool) {
	if m[0] != 0 {
		return RealReg(bits.TrailingZeros64(m[0])), true
	}
	if m[1] != 0 {
		return RealReg(64 + bits.TrailingZeros64(m[1])), true
	}
	return RealRegInvalid, false
}

// Single reports whether the mask contains exactly one register, returning
// it. This backs the RefPosition invariant that a FixedReg ref's
// register_assignment is always a singleton.
func (m RegMask) Single() (RealReg, bool) {
	if m.Count() != 1 {
		return RealRegInvalid, false
	}
	return m.LowestReg()
}

// Range calls f once for every member register, ascending.
func (m RegMask) Range(f func(RealReg)) {
	for wi, w := range m {
		base := RealReg(wi * 64)
		for w != 0 {
			n := RealReg(bits.TrailingZeros64(w))
			f(base + n)
			w &= w - 1
		}
	}
}

// AllPhysRegs is the full 128-bit mask, used where a heuristic has no
// narrower preference class to intersect against.
var AllPhysRegs = RegMask{^uint64(0), ^uint64(0)}

// constrain returns actual ∩ constraint unless doing so would leave fewer
// than minCount members, in which case it returns actual unchanged.
// This lets a heuristic narrow the candidate set only when the narrowing
// still leaves enough registers to be useful.
func constrain(actual, constraint RegMask, minCount int) RegMask {
	narrowed := actual.Intersect(constraint)
	if narrowed.Count() < minCount {
		return actual
	}
	return narrowed
}
