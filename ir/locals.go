package ir

import "github.com/lsra-go/lsra"

// local is one tracked variable's metadata and allocator writeback state.
type local struct {
	regType lsra.RegType

	refCount         int
	weightedRefCount float64
	tracked          bool
	isParam          bool
	addrExposed      bool
	pinned           bool
	isRegArg         bool
	isJmpRegArg      bool
	is64On32         bool
	liveInOutOfEH    bool
	doNotEnregister  bool
	needsZeroInit    bool
	promotedFields   []int
	dependentPromoted bool

	isRegister bool
	regNum     lsra.RealReg
	otherReg   lsra.RealReg
	onFrame    bool
	argInitReg lsra.RealReg
}

// Locals is a concrete lsra.LocalVarTable: a flat, builder-populated slice
// of local metadata indexed by tracked var index.
type Locals struct {
	vars []local
}

func NewLocals() *Locals { return &Locals{} }

// AddLocal appends a new tracked local of type t with the given ref-count
// stats, returning its tracked var index.
func (l *Locals) AddLocal(t lsra.RegType, refCount int, weightedRefCount float64) int {
	l.vars = append(l.vars, local{
		regType:          t,
		refCount:         refCount,
		weightedRefCount: weightedRefCount,
		tracked:          true,
	})
	return len(l.vars) - 1
}

func (l *Locals) Count() int { return len(l.vars) }

func (l *Locals) RefCount(v int) int                { return l.vars[v].refCount }
func (l *Locals) WeightedRefCount(v int) float64     { return l.vars[v].weightedRefCount }
func (l *Locals) RegType(v int) lsra.RegType         { return l.vars[v].regType }
func (l *Locals) Tracked(v int) bool                 { return l.vars[v].tracked }
func (l *Locals) IsParam(v int) bool                 { return l.vars[v].isParam }
func (l *Locals) AddrExposed(v int) bool             { return l.vars[v].addrExposed }
func (l *Locals) Pinned(v int) bool                  { return l.vars[v].pinned }
func (l *Locals) IsRegArg(v int) bool                { return l.vars[v].isRegArg }
func (l *Locals) IsJmpRegArg(v int) bool             { return l.vars[v].isJmpRegArg }
func (l *Locals) Is64BitOn32BitTarget(v int) bool    { return l.vars[v].is64On32 }
func (l *Locals) LiveInOutOfHandler(v int) bool       { return l.vars[v].liveInOutOfEH }
func (l *Locals) DoNotEnregister(v int) bool         { return l.vars[v].doNotEnregister }
func (l *Locals) NeedsZeroInit(v int) bool           { return l.vars[v].needsZeroInit }
func (l *Locals) PromotedFields(v int) []int         { return l.vars[v].promotedFields }
func (l *Locals) DependentPromoted(v int) bool       { return l.vars[v].dependentPromoted }

func (l *Locals) SetDoNotEnregister(v int)                  { l.vars[v].doNotEnregister = true }
func (l *Locals) SetRegNum(v int, r lsra.RealReg)            { l.vars[v].regNum = r }
func (l *Locals) SetOtherReg(v int, r lsra.RealReg)          { l.vars[v].otherReg = r }
func (l *Locals) SetRegister(v int, isRegister bool)         { l.vars[v].isRegister = isRegister }
func (l *Locals) SetOnFrame(v int, onFrame bool)             { l.vars[v].onFrame = onFrame }
func (l *Locals) SetArgInitReg(v int, r lsra.RealReg)        { l.vars[v].argInitReg = r }

// SetAddrExposed, SetPinned, and friends are builder setters for tests.
func (l *Locals) SetAddrExposed(v int, b bool)     { l.vars[v].addrExposed = b }
func (l *Locals) SetPinned(v int, b bool)          { l.vars[v].pinned = b }
func (l *Locals) SetParam(v int, b bool)           { l.vars[v].isParam = b }
func (l *Locals) SetRegArg(v int, b bool)          { l.vars[v].isRegArg = b }
func (l *Locals) SetLiveInOutOfHandler(v int, b bool) { l.vars[v].liveInOutOfEH = b }
func (l *Locals) SetPromotedFields(v int, fields []int) { l.vars[v].promotedFields = fields }
func (l *Locals) SetDependentPromoted(v int, b bool) { l.vars[v].dependentPromoted = b }
func (l *Locals) SetNeedsZeroInit(v int, b bool)     { l.vars[v].needsZeroInit = b }

// IsRegister, RegNum, OnFrame expose the allocator's writeback for a
// generator (or a test) to read after Allocate returns.
func (l *Locals) IsRegister(v int) bool      { return l.vars[v].isRegister }
func (l *Locals) RegNum(v int) lsra.RealReg  { return l.vars[v].regNum }
func (l *Locals) OnFrame(v int) bool         { return l.vars[v].onFrame }
