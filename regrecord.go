package lsra

// RegRecordID indexes the fixed phys_regs[N] table. Unlike Interval and
// RefPosition, RegRecords are not arena-allocated: there is one per
// physical register, known up front from TargetABI.
type RegRecordID int16

const RegRecordIDInvalid RegRecordID = -1

// RegRecord tracks one physical register's current occupant.
type RegRecord struct {
	id       RegRecordID
	RealReg  RealReg
	RegType  RegType

	// AssignedInterval is the live interval currently occupying this
	// register, or IntervalIDInvalid.
	AssignedInterval IntervalID

	// PreviousInterval is retained so an unspilled-but-inactive interval
	// can be restored into this register without a reload, when nothing
	// else has claimed the register in the meantime ("reuse on unspill").
	PreviousInterval IntervalID

	// NextFixedRefLocation is the location of the FixedReg RefPosition for
	// this register that the allocation pass reached most recently, or
	// MaxLocation before it reaches the first one. It is not advanced to a
	// later FixedReg ahead of time.
	NextFixedRefLocation Location

	// busyUntilKillLocation models a register pinned by a Kill (e.g. a
	// call's clobber) until the next location, so a def at the same
	// instruction cannot reuse it prematurely.
	busyUntilKillLocation Location
}

func newRegRecordTable(abi TargetABI) ([]RegRecord, map[RealReg]RegRecordID) {
	var all []RealReg
	for t := RegType(1); t < numRegType; t++ {
		all = append(all, abi.AllocatableRegisters(t)...)
	}
	byReal := make(map[RealReg]RegRecordID, len(all))
	records := make([]RegRecord, 0, len(all))
	for _, r := range all {
		if _, ok := byReal[r]; ok {
			continue
		}
		id := RegRecordID(len(records))
		byReal[r] = id
		records = append(records, RegRecord{
			id:                   id,
			RealReg:              r,
			AssignedInterval:     IntervalIDInvalid,
			PreviousInterval:     IntervalIDInvalid,
			NextFixedRefLocation: MaxLocation,
		})
	}
	// RegType is per-class, but a RegRecord is shared across classes only
	// on targets where a register services more than one type (not
	// modeled here); set RegType per the first class that claims it.
	for t := RegType(1); t < numRegType; t++ {
		for _, r := range abi.AllocatableRegisters(t) {
			id := byReal[r]
			if records[id].RegType == RegTypeInvalid {
				records[id].RegType = t
			}
		}
	}
	return records, byReal
}
