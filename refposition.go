package lsra

// RefType enumerates the kind of event a RefPosition records.
type RefType uint8

const (
	RefUse RefType = iota
	RefDef
	RefFixedReg
	RefKill
	RefKillGcRefs
	RefExpUse
	RefDummyDef
	RefParamDef
	RefZeroInit
	RefUpperVectorSave
	RefUpperVectorRestore
	RefBB
)

// String implements fmt.Stringer for debug output.
func (t RefType) String() string {
	switch t {
	case RefUse:
		return "Use"
	case RefDef:
		return "Def"
	case RefFixedReg:
		return "FixedReg"
	case RefKill:
		return "Kill"
	case RefKillGcRefs:
		return "KillGcRefs"
	case RefExpUse:
		return "ExpUse"
	case RefDummyDef:
		return "DummyDef"
	case RefParamDef:
		return "ParamDef"
	case RefZeroInit:
		return "ZeroInit"
	case RefUpperVectorSave:
		return "UpperVectorSave"
	case RefUpperVectorRestore:
		return "UpperVectorRestore"
	case RefBB:
		return "BB"
	default:
		return "?"
	}
}

// RefPositionID indexes the allocator's RefPosition arena.
type RefPositionID int32

const RefPositionIDInvalid RefPositionID = -1

// Referent is the tagged union "Interval* or RegRecord*" from the source
// exactly one of Interval/Reg is valid, selected
// by IsReg.
type Referent struct {
	IsReg    bool
	Interval IntervalID
	Reg      RegRecordID
}

// RefPosition is a single event that one interval (or one physical
// register) requires at one location.
type RefPosition struct {
	id RefPositionID

	RefType  RefType
	Location Location
	BBNum    int

	Referent Referent

	// RegisterAssignment starts as the set of legal registers and is
	// narrowed to a singleton once the allocator commits.
	RegisterAssignment RegMask

	TreeNode Instr // nil for dummy/boundary positions.

	// MultiRegIdx is this ref's index within a multi-register-result node.
	MultiRegIdx int

	LastUse       bool
	Reload        bool
	SpillAfter    bool
	CopyReg       bool
	MoveReg       bool
	DelayRegFree  bool
	WriteThru     bool
	RegOptional   bool
	OutOfOrder    bool
	IsLocalDefUse bool

	// AssignedReg is the chosen physical register once the allocator
	// commits; RegRecordIDInvalid until then.
	AssignedReg RegRecordID
}

// IsFixedRegRef reports whether RegisterAssignment is a singleton, i.e. this
// ref pins one specific physical register (invariant: "A FixedReg
// RefPosition always has register_assignment equal to a single bit" — the
// same singleton-ness also shows up on ordinary refs once narrowed).
func (r *RefPosition) IsFixedRegRef() bool {
	_, ok := r.RegisterAssignment.Single()
	return ok
}

// IsActualRef reports whether this is a real use or def (as opposed to a
// boundary marker, kill, or informational ref).
func (r *RefPosition) IsActualRef() bool {
	return r.RefType == RefUse || r.RefType == RefDef
}

// getWeight computes a RefPosition's spill weight. Higher weight
// means "more expensive to spill".
func getWeight(locals LocalVarTable, blockWeight func(bbNum int) float64, iv *Interval, rp *RefPosition) float64 {
	switch iv.Kind {
	case IntervalLocalVar:
		w := locals.WeightedRefCount(iv.VarIndex)
		if iv.IsWriteThru {
			w /= 2
		} else if iv.IsSpilled {
			w -= blockWeight(rp.BBNum)
			if w < 0 {
				w = 0
			}
		}
		return w
	case IntervalTreeTemp:
		return 4 * blockWeight(rp.BBNum)
	default:
		return blockWeight(rp.BBNum)
	}
}
