// lower.go implements the per-node-kind Lower rules of the AST, each returning the Operand it
// produces directly instead of pushing it onto a shared operand stack.

package frontend

import (
	"sysyc/src/compileerr"
	"sysyc/src/irgen"
)

// Lower emits the function's IR and returns any error encountered while lowering its body.
func (f *FuncDef) Lower(g *irgen.Generator) error {
	g.WriteFuncPrologue(f.Name, "i32")
	g.Sym.PushScope()
	defer g.Sym.PopScope()
	r, err := f.Body.Lower(g)
	if err != nil {
		return err
	}
	g.WriteFuncEpilogue(r.op, r.hasValue)
	return nil
}

// retResult carries a return statement's operand up through nested blocks to the function body
// that must pass it to WriteFuncEpilogue.
type retResult struct {
	op       irgen.Operand
	returned bool // a return statement was lowered anywhere in this block
	hasValue bool // that return statement carried an expression
}

// Lower lowers every item in the block in order and reports the last return statement
// encountered, so a block used as a function body can pass its final ret straight through to
// WriteFuncEpilogue; blocks lowered as nested statements pass the same retResult further up.
func (b *Block) Lower(g *irgen.Generator) (retResult, error) {
	var last retResult
	for _, item := range b.Items {
		switch n := item.(type) {
		case *ConstDecl:
			if err := n.Lower(g); err != nil {
				return retResult{}, err
			}
		case *VarDecl:
			if err := n.Lower(g); err != nil {
				return retResult{}, err
			}
		case Stmt:
			r, err := lowerStmt(n, g)
			if err != nil {
				return retResult{}, err
			}
			if r.returned {
				last = r
			}
		}
	}
	return last, nil
}

// Lower installs each constant name with its folded value. The initializer must fold to an
// immediate; if it does not, that is a NotAConstant error.
func (d *ConstDecl) Lower(g *irgen.Generator) error {
	for _, def := range d.Defs {
		op, err := loweredExp(def.Init, g)
		if err != nil {
			return err
		}
		if !op.IsImm() {
			return compileerr.New(compileerr.NotAConstant, "line %d: initializer for const %q is not a constant expression", def.Line, def.Name)
		}
		if err := g.Sym.Insert(&irgen.Symbol{Name: def.Name, Kind: irgen.SymConst, Value: op.Imm}); err != nil {
			return err
		}
	}
	return nil
}

// Lower allocates storage for each variable and, if present, stores its initializer.
func (d *VarDecl) Lower(g *irgen.Generator) error {
	for _, def := range d.Defs {
		irName := g.WriteAlloc(def.Name)
		if err := g.Sym.Insert(&irgen.Symbol{Name: def.Name, Kind: irgen.SymVar, IRName: irName}); err != nil {
			return err
		}
		if def.Init != nil {
			op, err := loweredExp(def.Init, g)
			if err != nil {
				return err
			}
			g.WriteStore(op, irName)
		}
	}
	return nil
}

// lowerStmt dispatches a Stmt to its Lower rule and reports whether it was, or contained, a
// return statement.
func lowerStmt(s Stmt, g *irgen.Generator) (retResult, error) {
	switch n := s.(type) {
	case *AssignStmt:
		return retResult{}, n.Lower(g)
	case *ExpStmt:
		return retResult{}, n.Lower(g)
	case *BlockStmt:
		g.Sym.PushScope()
		r, err := n.Body.Lower(g)
		g.Sym.PopScope()
		return r, err
	case *ReturnStmt:
		return n.Lower(g)
	}
	return retResult{}, compileerr.New(compileerr.IRMalformed, "unknown statement kind")
}

// Lower resolves the lvalue, lowers the right-hand side, and stores the result.
func (s *AssignStmt) Lower(g *irgen.Generator) error {
	sym, err := g.Sym.Lookup(s.LVal.Name)
	if err != nil {
		return err
	}
	if sym.Kind == irgen.SymConst {
		return compileerr.New(compileerr.TypeMismatch, "line %d: cannot assign to const %q", s.Line, s.LVal.Name)
	}
	op, err := loweredExp(s.Rhs, g)
	if err != nil {
		return err
	}
	target, err := s.LVal.Lower(g, true)
	if err != nil {
		return err
	}
	g.WriteStore(op, target.Sym)
	return nil
}

// Lower evaluates the expression, if any, for its (currently nonexistent) side effects and
// discards the result. Covers both the empty statement ";" and a bare expression statement.
func (s *ExpStmt) Lower(g *irgen.Generator) error {
	if s.Exp == nil {
		return nil
	}
	_, err := loweredExp(s.Exp, g)
	return err
}

// Lower evaluates the return expression if present and reports it to the caller, which is
// responsible for invoking WriteFuncEpilogue.
func (s *ReturnStmt) Lower(g *irgen.Generator) (retResult, error) {
	if s.Exp == nil {
		return retResult{returned: true}, nil
	}
	op, err := loweredExp(s.Exp, g)
	if err != nil {
		return retResult{}, err
	}
	return retResult{op: op, returned: true, hasValue: true}, nil
}

// ----------------------------
// ----- Expression Lower -----
// ----------------------------

// Lower is implemented by every expression node. asLValue is only meaningful for *LVal: when
// true, the caller wants the bare symbol name (e.g. for a store target) rather than a loaded
// value. This replaces the source's assignment-processor sub-state with an explicit parameter.
type lowerable interface {
	Lower(g *irgen.Generator, asLValue bool) (irgen.Operand, error)
}

func (e *BinaryExp) Lower(g *irgen.Generator, asLValue bool) (irgen.Operand, error) {
	l, err := loweredExp(e.L, g)
	if err != nil {
		return irgen.Operand{}, err
	}
	r, err := loweredExp(e.R, g)
	if err != nil {
		return irgen.Operand{}, err
	}
	op, ok := irgen.BinOpFromSymbol(e.Op)
	if !ok {
		return irgen.Operand{}, compileerr.New(compileerr.IRMalformed, "line %d: unknown operator %q", e.Line, e.Op)
	}
	if op == irgen.OpAnd || op == irgen.OpOr {
		return g.WriteLogic(op, l, r)
	}
	return g.WriteBinary(op, l, r)
}

func (e *UnaryExp) Lower(g *irgen.Generator, asLValue bool) (irgen.Operand, error) {
	x, err := loweredExp(e.X, g)
	if err != nil {
		return irgen.Operand{}, err
	}
	return g.WriteUnary(e.Op, x)
}

func (e *LVal) Lower(g *irgen.Generator, asLValue bool) (irgen.Operand, error) {
	sym, err := g.Sym.Lookup(e.Name)
	if err != nil {
		return irgen.Operand{}, err
	}
	if sym.Kind == irgen.SymConst {
		return irgen.Imm(sym.Value), nil
	}
	if asLValue {
		return irgen.Sym(sym.IRName), nil
	}
	return g.WriteLoad(sym.IRName), nil
}

func (e *Number) Lower(g *irgen.Generator, asLValue bool) (irgen.Operand, error) {
	return irgen.Imm(e.Val), nil
}

// loweredExp lowers exp as an r-value. The Exp interface holds lowerable implementations only;
// the assertion panics on a programmer error (a new Exp kind added without a Lower method).
func loweredExp(exp Exp, g *irgen.Generator) (irgen.Operand, error) {
	return exp.(lowerable).Lower(g, false)
}
