package lsra

import "github.com/lsra-go/lsra/internal/arena"

// Allocator is the per-procedure linear-scan register allocator.
// One Allocator is built per compiled procedure and discarded after
// resolution; nothing about it is reused across procedures.
type Allocator struct {
	fn  Function
	abi TargetABI

	intervals arena.Pool[Interval]
	refs      arena.Pool[RefPosition]

	regRecords     []RegRecord
	regRecordByReal map[RealReg]RegRecordID

	localVarIntervals []IntervalID

	minOpts  bool
	hasEH    bool
	hasLoops bool

	order    []Block
	critical map[edgeKey]bool
	infos    map[int]*blockInfo

	refList []RefPositionID

	currentLocation Location
	prevLocation    Location

	regsInUseThisLocation RegMask
	regsInUseNextLocation RegMask

	regsToFree             RegMask
	delayRegsToFree         RegMask
	regsToMakeInactive      RegMask
	delayRegsToMakeInactive RegMask
	copyRegsToFree          RegMask

	spillSlotOf   map[IntervalID]int
	spillSlotHigh map[RegType]int

	resolved bool // resolution may run exactly once.

	blockWeightFn func(bbNum int) float64

	stressHook StressHook
}

// Options configures an Allocator beyond what Function/TargetABI expose
// directly; all fields are optional classification hints consulted by
// candidate identification.
type Options struct {
	MinOpts  bool
	HasEH    bool
	HasLoops bool
}

// NewAllocator builds an allocator for one procedure. It does no allocation
// work itself; call Allocate to run the full A-H pipeline.
func NewAllocator(fn Function, opts Options) *Allocator {
	abi := fn.ABI()
	records, byReal := newRegRecordTable(abi)
	a := &Allocator{
		fn:              fn,
		abi:             abi,
		intervals:       arena.NewPool[Interval](),
		refs:            arena.NewPool[RefPosition](),
		regRecords:      records,
		regRecordByReal: byReal,
		minOpts:         opts.MinOpts,
		hasEH:           opts.HasEH,
		hasLoops:        opts.HasLoops,
		spillSlotOf:     make(map[IntervalID]int),
		spillSlotHigh:   make(map[RegType]int),
	}
	weights := make(map[int]float64)
	for _, b := range fn.Blocks() {
		weights[b.ID()] = b.Weight()
	}
	a.blockWeightFn = func(bbNum int) float64 { return weights[bbNum] }
	return a
}

func (a *Allocator) blockWeight(bbNum int) float64 { return a.blockWeightFn(bbNum) }

// newInterval allocates a fresh Interval from the arena and returns a
// pointer into the pool's backing storage (stable for the arena's lifetime,
// per the index-cross-reference redesign.
func (a *Allocator) newInterval(kind IntervalKind, t RegType) *Interval {
	iv := a.intervals.Allocate()
	id := IntervalID(a.intervals.Allocated() - 1)
	*iv = Interval{
		id:              id,
		Kind:            kind,
		RegisterType:    t,
		FirstRef:        RefPositionIDInvalid,
		LastRef:         RefPositionIDInvalid,
		RecentRef:       RefPositionIDInvalid,
		AssignedReg:     RegRecordIDInvalid,
		RelatedInterval: IntervalIDInvalid,
	}
	return iv
}

func (a *Allocator) interval(id IntervalID) *Interval {
	if id == IntervalIDInvalid {
		return nil
	}
	return a.intervals.View(int(id))
}

// newRefPosition allocates a fresh RefPosition from the arena, links it to
// ref's owning interval's chain (if any), and appends it to the global
// ordered list.
func (a *Allocator) newRefPosition(refType RefType, loc Location, bbNum int, referent Referent, mask RegMask, node Instr) *RefPosition {
	rp := a.refs.Allocate()
	id := RefPositionID(a.refs.Allocated() - 1)
	*rp = RefPosition{
		id:                 id,
		RefType:            refType,
		Location:           loc,
		BBNum:              bbNum,
		Referent:           referent,
		RegisterAssignment: mask,
		TreeNode:           node,
		AssignedReg:        RegRecordIDInvalid,
	}
	if referent.IsReg {
		// Register-owned refs (FixedReg/Kill) are not chained onto an
		// interval; they are consulted positionally during the sweep.
	} else if iv := a.interval(referent.Interval); iv != nil {
		iv.addRefPosition(id)
	}
	a.refList = append(a.refList, id)
	return rp
}

func (a *Allocator) ref(id RefPositionID) *RefPosition {
	if id == RefPositionIDInvalid {
		return nil
	}
	return a.refs.View(int(id))
}

func (a *Allocator) regRecord(id RegRecordID) *RegRecord {
	if id == RegRecordIDInvalid {
		return nil
	}
	return &a.regRecords[id]
}

func (a *Allocator) regRecordFor(r RealReg) *RegRecord {
	id, ok := a.regRecordByReal[r]
	if !ok {
		return nil
	}
	return &a.regRecords[id]
}

// Allocate runs the full pipeline: buildOrder -> identifyCandidates ->
// allocateRegisters -> resolveRegisters.
func (a *Allocator) Allocate() {
	a.order, a.critical = buildBlockOrder(a.fn)
	a.infos = make(map[int]*blockInfo, len(a.order))
	for _, b := range a.order {
		info := newBlockInfo(b.Weight())
		info.hasEHPred = b.EHPred()
		info.hasCriticalInEdge = a.blockHasCriticalInEdge(b)
		info.hasCriticalOutEdge = a.blockHasCriticalOutEdge(b)
		a.infos[b.ID()] = info
	}

	a.identifyCandidates()
	a.buildRefPositions()
	a.allocateRegisters()
	a.resolveRegisters()
}

func (a *Allocator) blockHasCriticalInEdge(b Block) bool {
	for _, p := range b.Preds() {
		if a.critical[edgeKey{p.ID(), b.ID()}] {
			return true
		}
	}
	return false
}

func (a *Allocator) blockHasCriticalOutEdge(b Block) bool {
	for _, s := range b.Succs() {
		if a.critical[edgeKey{b.ID(), s.ID()}] {
			return true
		}
	}
	return false
}
