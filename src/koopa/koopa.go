// Package koopa holds an in-memory model of the textual Koopa IR this compiler emits and reads
// back. It is not a general Koopa implementation — only the value shapes enumerated by the
// IR text format (function, entry label, alloc, load, store, binary, return, jump, branch,
// global) are represented, matching exactly what src/irgen produces and src/riscv consumes.
package koopa

// Kind differentiates the value/instruction shapes this package understands.
type Kind int

const (
	KindInteger Kind = iota // an immediate operand, never itself a standalone instruction
	KindAlloc
	KindLoad
	KindStore
	KindBinary
	KindReturn
	KindJump
	KindBranch
	KindGlobalAlloc
)

// BinOp names the Koopa-text spelling of a binary operator.
type BinOp string

const (
	Add BinOp = "add"
	Sub BinOp = "sub"
	Mul BinOp = "mul"
	Div BinOp = "div"
	Mod BinOp = "mod"
	Lt  BinOp = "lt"
	Le  BinOp = "le"
	Gt  BinOp = "gt"
	Ge  BinOp = "ge"
	Eq  BinOp = "eq"
	Ne  BinOp = "ne"
	And BinOp = "and"
	Or  BinOp = "or"
)

// Value is one instruction or named reference in a basic block. Its meaning is determined by
// Kind; only the fields relevant to that Kind are populated.
type Value struct {
	Kind Kind

	// Name is the symbol this value defines, if any ("%3", "@x_1"). Empty for Return/Jump/Branch.
	Name string

	// Imm holds the literal value for KindInteger, or for a global's initializer.
	Imm int32

	// Operands reference other values by name ("%3") or are literal text ("5"). Interpretation
	// depends on Kind: Alloc has none; Load has [src]; Store has [src, dest]; Binary has
	// [op, lhs, rhs] encoded via Op/Lhs/Rhs below instead; Return has [val] or none; Jump has
	// [target]; Branch has [cond, trueLabel, falseLabel].
	Src    string
	Dest   string
	Op     BinOp
	Lhs    string
	Rhs    string
	Val    string
	HasVal bool
	Target string
	Cond   string
	TrueL  string
	FalseL string

	// ZeroInit marks a global alloc initialized to zero rather than a literal.
	ZeroInit bool
}

// BasicBlock is a labeled sequence of values ending in exactly one terminator
// (Return/Jump/Branch), per the one-terminator-per-block invariant.
type BasicBlock struct {
	Label string
	Insts []Value
}

// Function is a single Koopa function: its name, declared return type, and basic blocks in
// program order.
type Function struct {
	Name    string
	RetType string
	Blocks  []BasicBlock
}

// Global is a top-level "global @name = alloc i32, ..." declaration.
type Global struct {
	Name     string
	ZeroInit bool
	Imm      int32
}

// Program is the parsed form of an entire Koopa IR text, in declaration order.
type Program struct {
	Globals []Global
	Funcs   []Function
}
