package irgen

import (
	"fmt"

	"sysyc/src/compileerr"
	"sysyc/src/util"
)

// BinOp names a binary operator as used by WriteBinary, independent of its Koopa text spelling.
type BinOp int

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpLt
	OpLe
	OpGt
	OpGe
	OpEq
	OpNeq
	OpAnd
	OpOr
)

var koopaOp = map[BinOp]string{
	OpAdd: "add", OpSub: "sub", OpMul: "mul", OpDiv: "div", OpMod: "mod",
	OpLt: "lt", OpLe: "le", OpGt: "gt", OpGe: "ge", OpEq: "eq", OpNeq: "ne",
	OpAnd: "and", OpOr: "or",
}

// BinOpFromSymbol maps the parser's operator spelling to a BinOp.
func BinOpFromSymbol(sym string) (BinOp, bool) {
	switch sym {
	case "+":
		return OpAdd, true
	case "-":
		return OpSub, true
	case "*":
		return OpMul, true
	case "/":
		return OpDiv, true
	case "%":
		return OpMod, true
	case "<":
		return OpLt, true
	case "<=":
		return OpLe, true
	case ">":
		return OpGt, true
	case ">=":
		return OpGe, true
	case "==":
		return OpEq, true
	case "!=":
		return OpNeq, true
	case "&&":
		return OpAnd, true
	case "||":
		return OpOr, true
	}
	return 0, false
}

// Generator lowers AST nodes into textual Koopa IR. One Generator is constructed per function
// being compiled; there is no process-wide singleton (per the Context-object redesign), so
// concurrent compilation of independent functions needs only independent Generators plus
// independent util.Writer sinks.
type Generator struct {
	W       *util.Writer
	Sym     *SymbolTable
	seq     *util.Sequence // backs fresh temporary symbol names, %0, %1, ...
	funcRet bool           // true once the function declares a non-void return type
	enabled bool           // false after the first ret in this function
	Verbose bool
}

// NewGenerator returns a Generator writing through w, ready to lower a single function. w is
// shared, not copied: the caller flushes and closes the same Writer this Generator wrote into.
func NewGenerator(w *util.Writer, verbose bool) *Generator {
	return &Generator{
		W:       w,
		Sym:     NewSymbolTable(),
		seq:     util.NewSequence(),
		enabled: true,
		Verbose: verbose,
	}
}

// Close releases the Generator's background sequence goroutine. Must be called exactly once
// after the function has been fully lowered.
func (g *Generator) Close() {
	g.seq.Close()
}

// freshTemp allocates a new Koopa temporary symbol, "%k".
func (g *Generator) freshTemp() string {
	return fmt.Sprintf("%%%d", g.seq.Next())
}

// WriteFuncPrologue emits the function header and entry block label.
func (g *Generator) WriteFuncPrologue(name, retType string) {
	g.W.Write("fun @%s(): %s {\n", name, retType)
	g.W.WriteString("%entry:\n")
	g.funcRet = retType != ""
}

// WriteFuncEpilogue emits the function's return instruction and closing brace, then disables
// further emission for this function — matching the source's _enable flag, which is correct
// for the single-function-program scope this subset covers.
func (g *Generator) WriteFuncEpilogue(ret Operand, hasRet bool) {
	if !g.enabled {
		return
	}
	if hasRet {
		g.W.Write("\tret %s\n", ret)
	} else {
		g.W.WriteString("\tret\n")
	}
	g.W.WriteString("}\n")
	g.enabled = false
}

// WriteAlloc emits a stack allocation for a newly declared variable and returns its IR name.
func (g *Generator) WriteAlloc(sourceName string) string {
	irName := g.Sym.NextIRName(sourceName)
	if g.enabled {
		g.W.Write("\t%s = alloc i32\n", irName)
	}
	return irName
}

// WriteLoad emits a load from irName into a fresh temporary and returns that temporary as an
// Operand.
func (g *Generator) WriteLoad(irName string) Operand {
	tmp := g.freshTemp()
	if g.enabled {
		g.W.Write("\t%s = load %s\n", tmp, irName)
	}
	return Sym(tmp)
}

// WriteStore emits a store of src into irName.
func (g *Generator) WriteStore(src Operand, irName string) {
	if g.enabled {
		g.W.Write("\tstore %s, %s\n", src, irName)
	}
}

// WriteUnary applies a unary operator to x, rewriting it in terms of WriteBinary exactly as the
// source does: "+x" is a no-op, "-x" becomes "0 - x", "!x" becomes "0 == x".
func (g *Generator) WriteUnary(op string, x Operand) (Operand, error) {
	switch op {
	case "+":
		return x, nil
	case "-":
		return g.WriteBinary(OpSub, Imm(0), x)
	case "!":
		return g.WriteBinary(OpEq, Imm(0), x)
	default:
		return Operand{}, compileerr.New(compileerr.IRMalformed, "unknown unary operator %q", op)
	}
}

// WriteBinary folds l op r when both are immediates (I7), else emits a binary instruction into a
// fresh temporary.
func (g *Generator) WriteBinary(op BinOp, l, r Operand) (Operand, error) {
	if l.IsImm() && r.IsImm() {
		v, err := fold(op, l.Imm, r.Imm)
		if err != nil {
			return Operand{}, err
		}
		return Imm(v), nil
	}
	tmp := g.freshTemp()
	if g.enabled {
		g.W.Write("\t%s = %s %s, %s\n", tmp, koopaOp[op], l, r)
	}
	return Sym(tmp), nil
}

// WriteLogic lowers && and || arithmetically: both operands are first booleanized with a !=0
// comparison, then combined with bitwise and/or. This is not short-circuit evaluation; see the
// design note on logical operators for why that is acceptable for this subset.
func (g *Generator) WriteLogic(op BinOp, l, r Operand) (Operand, error) {
	lb, err := g.WriteBinary(OpNeq, l, Imm(0))
	if err != nil {
		return Operand{}, err
	}
	rb, err := g.WriteBinary(OpNeq, r, Imm(0))
	if err != nil {
		return Operand{}, err
	}
	return g.WriteBinary(op, lb, rb)
}

// fold applies op to two known-constant operands, implementing the constant-folding table.
// Division and modulo by zero are reported as DivByZero rather than passed through as undefined
// behavior; see the design decision on this point.
func fold(op BinOp, l, r int32) (int32, error) {
	switch op {
	case OpAdd:
		return l + r, nil
	case OpSub:
		return l - r, nil
	case OpMul:
		return l * r, nil
	case OpDiv:
		if r == 0 {
			return 0, compileerr.New(compileerr.DivByZero, "division by zero in constant expression")
		}
		return l / r, nil
	case OpMod:
		if r == 0 {
			return 0, compileerr.New(compileerr.DivByZero, "modulo by zero in constant expression")
		}
		return l % r, nil
	case OpLt:
		return boolInt(l < r), nil
	case OpLe:
		return boolInt(l <= r), nil
	case OpGt:
		return boolInt(l > r), nil
	case OpGe:
		return boolInt(l >= r), nil
	case OpEq:
		return boolInt(l == r), nil
	case OpNeq:
		return boolInt(l != r), nil
	case OpAnd:
		return boolInt(l != 0 && r != 0), nil
	case OpOr:
		return boolInt(l != 0 || r != 0), nil
	}
	return 0, compileerr.New(compileerr.IRMalformed, "unknown binary operator %d", op)
}

func boolInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
