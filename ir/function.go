package ir

import "github.com/lsra-go/lsra"

// Function is a concrete lsra.Function: a flat CFG plus a local-var table
// and a target ABI, enough to drive the allocator end to end in tests and
// in the cmd/lsrac example tool.
type Function struct {
	blocks []*Block
	entry  *Block
	locals *Locals
	abi    lsra.TargetABI

	killSets map[*Instr]lsra.RegMask

	spillSlots map[lsra.RegType]int
	nextSlot   int
}

// NewFunction builds an empty function over abi with an empty local-var
// table; callers add blocks and locals before running the allocator.
func NewFunction(abi lsra.TargetABI) *Function {
	return &Function{
		locals:     NewLocals(),
		abi:        abi,
		killSets:   make(map[*Instr]lsra.RegMask),
		spillSlots: make(map[lsra.RegType]int),
	}
}

// AddBlock appends b to the function; the first block added becomes the
// entry block unless SetEntryBlock is called explicitly.
func (f *Function) AddBlock(b *Block) {
	f.blocks = append(f.blocks, b)
	if f.entry == nil {
		f.entry = b
		b.entry = true
	}
}

func (f *Function) SetEntryBlock(b *Block) {
	if f.entry != nil {
		f.entry.entry = false
	}
	f.entry = b
	b.entry = true
}

func (f *Function) Locals() *Locals { return f.locals }

// SetKillSet records the registers instr clobbers (e.g. a call's
// caller-saved footprint), consulted by KillSetForNode.
func (f *Function) SetKillSet(instr *Instr, mask lsra.RegMask) { f.killSets[instr] = mask }

func (f *Function) Blocks() []lsra.Block {
	out := make([]lsra.Block, len(f.blocks))
	for i, b := range f.blocks {
		out[i] = b
	}
	return out
}

func (f *Function) EntryBlock() lsra.Block { return f.entry }
func (f *Function) ABI() lsra.TargetABI    { return f.abi }

func (f *Function) KillSetForNode(instr lsra.Instr) lsra.RegMask {
	in, ok := instr.(*Instr)
	if !ok {
		return lsra.RegMask{}
	}
	return f.killSets[in]
}

func (f *Function) PreallocateSpillTemps(t lsra.RegType, maxCount int) {
	if maxCount > f.spillSlots[t] {
		f.spillSlots[t] = maxCount
	}
}

func (f *Function) InsertBefore(existing, newInstr lsra.Instr) {
	for _, b := range f.blocks {
		if b.insertBefore(existing, newInstr) {
			return
		}
	}
}

func (f *Function) InsertAfter(existing, newInstr lsra.Instr) {
	for _, b := range f.blocks {
		if b.insertAfter(existing, newInstr) {
			return
		}
	}
}

func (f *Function) NewCopy(dst, src lsra.VReg) lsra.Instr {
	return NewInstr(OpCopy, []lsra.VReg{dst}, []lsra.VReg{src})
}

func (f *Function) NewReload(dst lsra.VReg, slot int) lsra.Instr {
	return &Instr{Op: OpReload, defs: []lsra.VReg{dst}, Slot: slot}
}

func (f *Function) NewSpill(slot int, src lsra.VReg) lsra.Instr {
	return &Instr{Op: OpSpill, uses: []lsra.VReg{src}, Slot: slot}
}

func (f *Function) NewSwap(a, b lsra.VReg) lsra.Instr {
	return NewInstr(OpSwap, nil, []lsra.VReg{a, b})
}

func (f *Function) AllocateSpillSlot(t lsra.RegType) int {
	slot := f.nextSlot
	f.nextSlot++
	return slot
}

// SplitCriticalEdge inserts a new empty block on the from->to edge and
// rewires predecessor/successor lists to route through it.
func (f *Function) SplitCriticalEdge(from, to lsra.Block) lsra.Block {
	fb, tb := from.(*Block), to.(*Block)
	nb := NewBlock(f.nextBlockID())
	nb.weight = fb.weight

	for i, s := range fb.succs {
		if s == tb {
			fb.succs[i] = nb
			break
		}
	}
	nb.preds = append(nb.preds, fb)
	nb.succs = append(nb.succs, tb)
	for i, p := range tb.preds {
		if p == fb {
			tb.preds[i] = nb
			break
		}
	}

	f.blocks = append(f.blocks, nb)
	return nb
}

func (f *Function) nextBlockID() int {
	max := -1
	for _, b := range f.blocks {
		if b.id > max {
			max = b.id
		}
	}
	return max + 1
}
