package lsra

// IntervalKind distinguishes the kind of value an Interval tracks.
type IntervalKind uint8

const (
	IntervalLocalVar IntervalKind = iota
	IntervalTreeTemp
	IntervalInternal
	IntervalUpperVector
	IntervalConstant
)

// IntervalID indexes into Allocator's interval arena. Indices, not pointers,
// are what everything else in the package holds onto, per the "cyclic
// pointer graph -> arena with index cross-references" redesign.
type IntervalID int32

const IntervalIDInvalid IntervalID = -1

// Interval is the lifetime of one value — a source local or an anonymous
// IR-temporary — across the procedure.
type Interval struct {
	id IntervalID

	Kind         IntervalKind
	RegisterType RegType

	// VarIndex is meaningful only when Kind == IntervalLocalVar; it is the
	// LocalVarTable index this interval tracks.
	VarIndex int

	// FirstRef, LastRef, RecentRef index into the allocator's RefPosition
	// arena. RecentRef is "the last RefPosition of this interval whose
	// location <= the pass's current location" and is updated as the
	// allocation pass sweeps forward.
	FirstRef, LastRef, RecentRef RefPositionID

	// refs holds this interval's own RefPositions in location order; it is
	// the "chain" the invariants refer to.
	refs []RefPositionID

	PhysReg RegMask // singleton once assigned; empty means unassigned.

	// AssignedReg is the RegRecord index that currently (or most recently)
	// considered this interval its occupant; RegRecordIDInvalid if none.
	AssignedReg RegRecordID

	RegisterPreferences RegMask
	// RelatedInterval is a weak preferencing link (e.g. the source of a
	// put-arg-reg copy). It is never an ownership edge and must not be
	// used to extend this interval's lifetime.
	RelatedInterval IntervalID

	IsActive          bool
	IsSpilled         bool
	IsSplit           bool
	IsWriteThru       bool
	IsConstant        bool
	IsStructField     bool
	IsSpecialPutArg   bool
	IsUpperVector     bool
	IsPartiallySpilled bool
	PreferCalleeSave  bool

	// ConstantValue is the bit-pattern of the constant this interval holds,
	// meaningful only when IsConstant.
	ConstantValue uint64
}

// IsLocalVar reports whether this is a local-var interval.
func (iv *Interval) IsLocalVar() bool { return iv.Kind == IntervalLocalVar }

// addRefPosition appends rp (already created) to this interval's own chain,
// maintaining First/Last/Recent. Callers must append in increasing location
// order — building intervals is a single forward sweep (invariant:
// "owned RefPositions appear in the global list in the same order they
// appear on the interval's own chain").
func (iv *Interval) addRefPosition(id RefPositionID) {
	if len(iv.refs) == 0 {
		iv.FirstRef = id
		iv.RecentRef = id
	}
	iv.LastRef = id
	iv.refs = append(iv.refs, id)
}

// refsInOrder returns the interval's RefPositions in location order.
func (iv *Interval) refsInOrder() []RefPositionID { return iv.refs }
