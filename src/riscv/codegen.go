package riscv

import (
	"fmt"

	"sysyc/src/compileerr"
	"sysyc/src/koopa"
	"sysyc/src/util"
)

// CodeGen lowers one function's basic blocks into assembly. It owns the register pool, the
// stack frame, and the location map from every live IR value's symbol name to its InstResultInfo
// — the per-compilation state that replaces the source's process-wide singleton.
type CodeGen struct {
	W       *util.Writer
	Regs    *RegPool
	Frame   *StackFrame
	Globals map[string]koopa.Global
	loc     map[string]InstResultInfo
	Verbose bool
	seq     *util.Sequence // backs the intermediate "mid" labels used by genBranch
}

// NewCodeGen returns a CodeGen ready to lower a function's body into w. w must outlive the CodeGen; it is
// shared, not copied, so writes from every function lowered through this CodeGen land in the
// same Writer the caller eventually flushes and closes. globals is the program's top-level
// declarations, consulted by resolve so a load/store naming a global gets la-based addressing
// instead of a private stack slot.
func NewCodeGen(w *util.Writer, frame *StackFrame, globals []koopa.Global, verbose bool) *CodeGen {
	g := make(map[string]koopa.Global, len(globals))
	for _, gl := range globals {
		g[gl.Name] = gl
	}
	return &CodeGen{
		W:       w,
		Regs:    NewRegPool(),
		Frame:   frame,
		Globals: g,
		loc:     make(map[string]InstResultInfo),
		Verbose: verbose,
		seq:     util.NewSequence(),
	}
}

// Close releases the CodeGen's background sequence goroutine.
func (c *CodeGen) Close() {
	c.seq.Close()
}

// GenFunction lowers every basic block of fn in program order.
func (c *CodeGen) GenFunction(fn koopa.Function) error {
	WritePrologue(c.W, fn.Name, *c.Frame)
	for _, bb := range fn.Blocks {
		if bb.Label != "%entry" {
			c.W.Label(blockLabel(bb.Label, fn.Name))
		}
		for _, v := range bb.Insts {
			if c.Verbose {
				c.W.Write("\t# visiting %s value %s\n", kindName(v.Kind), v.Name)
			}
			if err := c.genValue(v, fn.Name); err != nil {
				return err
			}
		}
	}
	return nil
}

func kindName(k koopa.Kind) string {
	switch k {
	case koopa.KindInteger:
		return "integer"
	case koopa.KindAlloc:
		return "alloc"
	case koopa.KindLoad:
		return "load"
	case koopa.KindStore:
		return "store"
	case koopa.KindBinary:
		return "binary"
	case koopa.KindReturn:
		return "return"
	case koopa.KindJump:
		return "jump"
	case koopa.KindBranch:
		return "branch"
	case koopa.KindGlobalAlloc:
		return "global alloc"
	}
	return "unknown"
}

// genValue dispatches a single instruction to its lowering rule, exactly the kinds enumerated in
// the IR text format: integer operands carry no code of their own, alloc/load are lazy, store
// and binary do the real work, and return closes out the function.
func (c *CodeGen) genValue(v koopa.Value, funcName string) error {
	switch v.Kind {
	case koopa.KindAlloc:
		return nil
	case koopa.KindLoad:
		// A load aliases its descriptor to its source; no code is emitted here.
		loc, err := c.resolve(v.Src)
		if err != nil {
			return err
		}
		c.loc[v.Name] = loc
		return nil
	case koopa.KindStore:
		return c.genStore(v)
	case koopa.KindBinary:
		return c.genBinary(v)
	case koopa.KindReturn:
		return c.genReturn(v)
	case koopa.KindJump:
		c.W.Write("\tj\t%s\n", blockLabel(v.Target, funcName))
		return nil
	case koopa.KindBranch:
		return c.genBranch(v, funcName)
	}
	return compileerr.New(compileerr.IRMalformed, "unsupported value kind in code generator")
}

// resolve returns operand's location. A name matching a top-level global is pinned to LocGlobal;
// otherwise a fresh stack slot is allocated the first time a target name is referenced with no
// prior location (the lazy alloc handling described in the value materialization policy).
func (c *CodeGen) resolve(operand string) (InstResultInfo, error) {
	if imm, ok := koopa.IsImmediate(operand); ok {
		return InstResultInfo{Kind: LocImm, Imm: imm}, nil
	}
	if loc, ok := c.loc[operand]; ok {
		return loc, nil
	}
	if _, ok := c.Globals[operand]; ok {
		loc := InstResultInfo{Kind: LocGlobal, Global: operand}
		c.loc[operand] = loc
		return loc, nil
	}
	offset := c.Frame.Grow()
	loc := InstResultInfo{Kind: LocStack, Addr: offset}
	c.loc[operand] = loc
	return loc, nil
}

// materialize returns a register holding operand's value, loading from stack, addressing a
// global through la/lw, or issuing li for an immediate as needed. The caller owns releasing the
// returned register.
func (c *CodeGen) materialize(operand string) (string, error) {
	loc, err := c.resolve(operand)
	if err != nil {
		return "", err
	}
	switch loc.Kind {
	case LocReg:
		return loc.Reg, nil
	case LocImm:
		r, err := c.Regs.Get()
		if err != nil {
			return "", err
		}
		c.W.Write("\tli\t%s, %d\n", r, loc.Imm)
		return r, nil
	case LocStack:
		r, err := c.Regs.Get()
		if err != nil {
			return "", err
		}
		loadOffset(c.W, "lw", r, loc.Addr)
		return r, nil
	case LocGlobal:
		r, err := c.Regs.Get()
		if err != nil {
			return "", err
		}
		c.W.Ins2("la", r, loc.Global)
		c.W.LoadStore("lw", r, 0, r)
		return r, nil
	}
	return "", compileerr.New(compileerr.IRMalformed, "operand %q has no materializable location", operand)
}

// genStore implements the 2x3 dispatch of WriteStoreInst: {imm,reg,stack} source crossed with
// {reg,stack} destination, plus a global destination addressed through la. Each case is handled
// explicitly with no shared fallthrough, matching the intended six-case behavior rather than the
// fallthrough bug this is grounded on.
func (c *CodeGen) genStore(v koopa.Value) error {
	destLoc, err := c.resolve(v.Dest)
	if err != nil {
		return err
	}
	srcImm, srcIsImm := koopa.IsImmediate(v.Src)

	switch destLoc.Kind {
	case LocReg:
		if srcIsImm {
			c.W.Write("\tli\t%s, %d\n", destLoc.Reg, srcImm)
			return nil
		}
		srcLoc, err := c.resolve(v.Src)
		if err != nil {
			return err
		}
		if srcLoc.Kind == LocReg {
			// reg -> reg: aliasing, no code.
			return nil
		}
		// stack -> reg
		loadOffset(c.W, "lw", destLoc.Reg, srcLoc.Addr)
		return nil
	case LocStack:
		if srcIsImm {
			// imm -> stack: materialize through a scratch register, then spill.
			r, err := c.Regs.Get()
			if err != nil {
				return err
			}
			c.W.Write("\tli\t%s, %d\n", r, srcImm)
			storeOffset(c.W, "sw", r, destLoc.Addr)
			c.Regs.Release(r)
			return nil
		}
		srcLoc, err := c.resolve(v.Src)
		if err != nil {
			return err
		}
		if srcLoc.Kind == LocReg {
			// reg -> stack
			storeOffset(c.W, "sw", srcLoc.Reg, destLoc.Addr)
			c.Regs.Release(srcLoc.Reg)
			return nil
		}
		// stack -> stack (or a value aliasing a global): materialize through a scratch register.
		r, err := c.materialize(v.Src)
		if err != nil {
			return err
		}
		storeOffset(c.W, "sw", r, destLoc.Addr)
		c.Regs.Release(r)
		return nil
	case LocGlobal:
		// Global var store: la addr, @name; ...; sw src, 0(addr), per the documented global
		// addressing shape — always routed through an address register, with no aliasing
		// shortcut since the destination is never already live in a register.
		addr, err := c.Regs.Get()
		if err != nil {
			return err
		}
		c.W.Ins2("la", addr, destLoc.Global)
		if srcIsImm {
			r, err := c.Regs.Get()
			if err != nil {
				return err
			}
			c.W.Write("\tli\t%s, %d\n", r, srcImm)
			c.W.LoadStore("sw", r, 0, addr)
			c.Regs.Release(r)
			c.Regs.Release(addr)
			return nil
		}
		r, err := c.materialize(v.Src)
		if err != nil {
			return err
		}
		c.W.LoadStore("sw", r, 0, addr)
		c.Regs.Release(r)
		c.Regs.Release(addr)
		return nil
	}
	return compileerr.New(compileerr.IRMalformed, "store destination %q has no valid location", v.Dest)
}

// genBinary materializes both operands, emits the operator, spills the result to a fresh stack
// slot (the spill-on-define policy), and releases both source registers.
func (c *CodeGen) genBinary(v koopa.Value) error {
	r1, err := c.materialize(v.Lhs)
	if err != nil {
		return err
	}
	r2, err := c.materialize(v.Rhs)
	if err != nil {
		return err
	}
	if err := emitOp(c.W, v.Op, r1, r1, r2); err != nil {
		return err
	}
	offset := c.Frame.Grow()
	storeOffset(c.W, "sw", r1, offset)
	c.loc[v.Name] = InstResultInfo{Kind: LocStack, Addr: offset}
	c.Regs.Release(r2)
	c.Regs.Release(r1)
	return nil
}

// emitOp encodes a binary IR op as one or more RISC-V instructions into rd (destructive 3-operand
// form rd = r1 op r2), expanding the composite comparisons exactly as documented.
func emitOp(w *util.Writer, op koopa.BinOp, rd, r1, r2 string) error {
	switch op {
	case koopa.Add:
		w.Ins3("add", rd, r1, r2)
	case koopa.Sub:
		w.Ins3("sub", rd, r1, r2)
	case koopa.Mul:
		w.Ins3("mul", rd, r1, r2)
	case koopa.Div:
		w.Ins3("div", rd, r1, r2)
	case koopa.Mod:
		w.Ins3("rem", rd, r1, r2)
	case koopa.And:
		w.Ins3("and", rd, r1, r2)
	case koopa.Or:
		w.Ins3("or", rd, r1, r2)
	case koopa.Lt:
		w.Ins3("slt", rd, r1, r2)
	case koopa.Gt:
		w.Ins3("sgt", rd, r1, r2)
	case koopa.Eq:
		w.Ins3("xor", rd, r1, r2)
		w.Ins2("seqz", rd, rd)
	case koopa.Ne:
		w.Ins3("xor", rd, r1, r2)
		w.Ins2("snez", rd, rd)
	case koopa.Ge:
		w.Ins3("slt", rd, r1, r2)
		w.Ins2imm("xori", rd, rd, 1)
	case koopa.Le:
		w.Ins3("sgt", rd, r1, r2)
		w.Ins2imm("xori", rd, rd, 1)
	default:
		return compileerr.New(compileerr.IRMalformed, "unsupported binary op %q", op)
	}
	return nil
}

// genReturn places the return value in a0 (if any) per its location kind, then emits the
// epilogue.
func (c *CodeGen) genReturn(v koopa.Value) error {
	if v.HasVal {
		loc, err := c.resolve(v.Val)
		if err != nil {
			return err
		}
		switch loc.Kind {
		case LocImm:
			c.W.Write("\tli\ta0, %d\n", loc.Imm)
		case LocReg:
			c.W.Ins2("mv", "a0", loc.Reg)
		case LocStack:
			loadOffset(c.W, "lw", "a0", loc.Addr)
		case LocGlobal:
			c.W.Ins2("la", "a0", loc.Global)
			c.W.LoadStore("lw", "a0", 0, "a0")
		}
	}
	WriteEpilogue(c.W, *c.Frame)
	return nil
}

// genBranch emits the bnez/j/mid-label pattern that insulates the long-branch encoding, per the
// documented branch lowering.
func (c *CodeGen) genBranch(v koopa.Value, funcName string) error {
	r, err := c.materialize(v.Cond)
	if err != nil {
		return err
	}
	mid := fmt.Sprintf("%s_mid_%03d", v.TrueL, c.seq.Next())
	trueLbl := blockLabel(v.TrueL, funcName)
	falseLbl := blockLabel(v.FalseL, funcName)
	c.W.Write("\tbnez\t%s, %s\n", r, mid)
	c.Regs.Release(r)
	c.W.Write("\tj\t%s\n", falseLbl)
	c.W.Label(mid)
	c.W.Write("\tj\t%s\n", trueLbl)
	return nil
}

// blockLabel builds the "<bbname>_<funcname>" label used to keep basic block labels unique
// across functions.
func blockLabel(bb, funcName string) string {
	return fmt.Sprintf("%s_%s", bb, funcName)
}
