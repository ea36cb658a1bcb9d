package riscv

import (
	"sysyc/src/koopa"
	"sysyc/src/util"
)

// immMin and immMax bound the 12-bit signed immediate field used by RISC-V addi/lw/sw.
const immMin = -2048
const immMax = 2047

// raSlotBytes is the size reserved for the saved return address in a non-leaf frame.
const raSlotBytes = 4

// StackFrame tracks a function's spill slot allocation: total bytes reserved (fixed once
// planned, rounded up to 16) and bytes handed out so far.
type StackFrame struct {
	Total  int
	used   int
	IsLeaf bool
}

// PlanStackFrame pre-scans every instruction in fn whose result occupies a 4-byte i32 slot and
// reserves one slot per instruction, rounding the total up to a 16-byte multiple. This
// overestimates usage (every temporary gets a slot regardless of liveness) by design: simplicity
// over density. IsLeaf is always true: package koopa has no call instruction kind, so no frame
// planned here reserves an ra slot.
func PlanStackFrame(fn koopa.Function) StackFrame {
	slots := 0
	leaf := true
	for _, bb := range fn.Blocks {
		for _, v := range bb.Insts {
			switch v.Kind {
			case koopa.KindAlloc, koopa.KindLoad, koopa.KindBinary:
				slots++
			}
		}
	}
	total := slots * 4
	if !leaf {
		total += raSlotBytes
	}
	total = roundUp16(total)
	return StackFrame{Total: total, IsLeaf: leaf}
}

// roundUp16 rounds n up to the next multiple of 16, per the I6 alignment invariant.
func roundUp16(n int) int {
	if n%16 == 0 {
		return n
	}
	return n + (16 - n%16)
}

// Grow allocates a fresh 4-byte slot and returns its offset from sp.
func (f *StackFrame) Grow() int {
	f.used += 4
	return f.Total - f.used
}

// raOffset returns the offset from sp of the reserved ra save slot in a non-leaf frame.
func (f *StackFrame) raOffset() int {
	return f.Total - raSlotBytes
}

// WritePrologue emits the function's label and, if its frame is non-empty, the sp adjustment and
// (for a non-leaf function) the ra spill.
func WritePrologue(w *util.Writer, name string, f StackFrame) {
	w.Write(".text\n.globl %s\n", name)
	w.Label(name)
	if f.Total > 0 {
		emitAddSp(w, -f.Total)
	}
	if !f.IsLeaf && f.Total > 0 {
		storeOffset(w, "sw", "ra", f.raOffset())
	}
}

// WriteEpilogue restores ra (for a non-leaf frame), restores sp, and emits ret. The caller is
// responsible for having already placed the return value in a0.
func WriteEpilogue(w *util.Writer, f StackFrame) {
	if !f.IsLeaf && f.Total > 0 {
		loadOffset(w, "lw", "ra", f.raOffset())
	}
	if f.Total > 0 {
		emitAddSp(w, f.Total)
	}
	w.WriteString("\tret\n")
}

// emitAddSp adjusts sp by delta, expanding through a scratch register when delta falls outside
// the 12-bit immediate range.
func emitAddSp(w *util.Writer, delta int) {
	if inImmRange(delta) {
		w.Ins2imm("addi", "sp", "sp", delta)
		return
	}
	w.Write("\tli\tt0, %d\n", delta)
	w.Ins3("add", "sp", "sp", "t0")
}

// storeOffset emits a store with offset from sp, expanding through a scratch register when the
// offset falls outside the 12-bit immediate range (the same expansion loadOffset uses).
func storeOffset(w *util.Writer, op, reg string, offset int) {
	if inImmRange(offset) {
		w.LoadStore(op, reg, offset, "sp")
		return
	}
	w.Write("\tli\tt0, %d\n", offset)
	w.Ins3("add", "t0", "t0", "sp")
	w.LoadStore(op, reg, 0, "t0")
}

// loadOffset emits a load with offset from sp, using the same out-of-range expansion as
// storeOffset.
func loadOffset(w *util.Writer, op, reg string, offset int) {
	storeOffset(w, op, reg, offset)
}

// inImmRange reports whether imm fits in the 12-bit signed immediate field.
func inImmRange(imm int) bool {
	return imm >= immMin && imm <= immMax
}
