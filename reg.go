package lsra

import "fmt"

// RegType classifies the register file a value needs. Double and SIMD are
// distinguished from Float because some targets (32-bit ARM) synthesize a
// double out of a pair of float registers; see TargetABI.RegisterPairOf.
type RegType uint8

const (
	RegTypeInvalid RegType = iota
	RegTypeInt
	RegTypeFloat
	RegTypeDouble
	RegTypeSIMD
	// RegTypeRef is a GC-tracked pointer local: it shares the integer
	// register file but is visible to dispatchKillGcRefs as a value that
	// must not survive uncooperatively across a call's GC-reporting point.
	RegTypeRef
	numRegType
)

// String implements fmt.Stringer.
func (t RegType) String() string {
	switch t {
	case RegTypeInt:
		return "int"
	case RegTypeFloat:
		return "float"
	case RegTypeDouble:
		return "double"
	case RegTypeSIMD:
		return "simd"
	case RegTypeRef:
		return "ref"
	default:
		return "invalid"
	}
}

// RealReg is an index into a target's fixed physical register table
// (phys_regs[N] in the data model). RealRegInvalid is the zero value so a
// zeroed VReg or RegRecord reference is never mistaken for register 0.
type RealReg uint8

const RealRegInvalid RealReg = 0

// String implements fmt.Stringer.
func (r RealReg) String() string {
	if r == RealRegInvalid {
		return "invalid"
	}
	return fmt.Sprintf("r%d", r)
}

// MaxPhysRegs bounds the size of the fixed register table and, in turn, the
// width of RegMask ("a bitset over the target's architectural
// registers (≤ 128 bits)").
const MaxPhysRegs = 128

// VRegID identifies a virtual register independent of any physical
// assignment. IDs at or above firstRealRegID are reserved for physical
// registers (see FromRealReg), so a pre-colored physical register can be
// represented as a VReg without colliding with any IR-assigned virtual
// register, whose ID must stay below firstRealRegID.
type VRegID uint32

const firstRealRegID VRegID = 256

const vRegIDInvalid VRegID = 1<<31 - 1

// VReg represents either an IR-level virtual value or (once bound via
// FromRealReg) a specific physical register. The two are unified so that an
// instruction operand keeps the same type before and after the allocator
// writes its chosen register back: only the ID range differs.
//
// Layout (low to high bits): [0:32) id, [32:40) regType, [40:48) realReg.
type VReg uint64

// VRegInvalid is the "no register" sentinel: ID vRegIDInvalid with type
// RegTypeInvalid. It is not the zero value.
var VRegInvalid = VReg(vRegIDInvalid)

// NewVReg constructs a virtual register identifier of the given type.
func NewVReg(id VRegID, t RegType) VReg {
	if id >= firstRealRegID {
		panic(fmt.Sprintf("lsra: virtual register id %d collides with real-register id space", id))
	}
	return VReg(id) | VReg(t)<<32
}

// FromRealReg returns the VReg bound to physical register r, as written back
// onto instruction operands and used by the moves resolution inserts.
func FromRealReg(r RealReg, t RegType) VReg {
	return VReg(firstRealRegID+VRegID(r)) | VReg(t)<<32 | VReg(r)<<40
}

// ID returns the identifying component of the VReg.
func (v VReg) ID() VRegID { return VRegID(v & 0xffffffff) }

// RegType returns the register class of v.
func (v VReg) RegType() RegType { return RegType(v >> 32 & 0xff) }

// IsRealReg reports whether v refers to a physical register.
func (v VReg) IsRealReg() bool { return v.ID() >= firstRealRegID }

// RealReg returns the physical register v is bound to, or RealRegInvalid if
// v is a plain virtual register.
func (v VReg) RealReg() RealReg {
	if !v.IsRealReg() {
		return RealRegInvalid
	}
	return RealReg(v >> 40 & 0xff)
}

// Valid reports whether v is a meaningful register reference.
func (v VReg) Valid() bool { return v.ID() != vRegIDInvalid && v.RegType() != RegTypeInvalid }

// String implements fmt.Stringer.
func (v VReg) String() string {
	if v.IsRealReg() {
		return v.RealReg().String()
	}
	return fmt.Sprintf("v%d:%s", v.ID(), v.RegType())
}
