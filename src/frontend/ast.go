// ast.go defines the typed syntax tree produced by the parser. Each node kind has a Lower method
// (in lower.go) that emits Koopa IR text through an irgen.Generator; expression nodes return the
// Operand holding their result, following the explicit-return style used throughout this compiler
// instead of a shared operand stack.

package frontend

// CompUnit is the root of the syntax tree: a single function definition in this subset.
type CompUnit struct {
	Func *FuncDef
}

// FuncDef is a function definition. This subset only has a single "int main()" entry point,
// but the type is kept general so the symbol table and IR generator do not special case it.
type FuncDef struct {
	RetType string // always "int" in this subset
	Name    string
	Body    *Block
	Line    int
}

// Block is a brace-delimited sequence of block items.
type Block struct {
	Items []BlockItem
}

// BlockItem is either a Decl or a Stmt.
type BlockItem interface {
	blockItem()
}

// Decl is either a ConstDecl or a VarDecl.
type Decl interface {
	BlockItem
	decl()
}

// ConstDecl declares one or more named constants of a single type.
type ConstDecl struct {
	BType string
	Defs  []*ConstDef
	Line  int
}

func (*ConstDecl) blockItem() {}
func (*ConstDecl) decl()      {}

// ConstDef binds a name to a constant-expression initializer.
type ConstDef struct {
	Name string
	Init Exp
	Line int
}

// VarDecl declares one or more variables of a single type.
type VarDecl struct {
	BType string
	Defs  []*VarDef
	Line  int
}

func (*VarDecl) blockItem() {}
func (*VarDecl) decl()      {}

// VarDef binds a name to an optional initializer.
type VarDef struct {
	Name string
	Init Exp // nil if uninitialized
	Line int
}

// Stmt is any statement kind.
type Stmt interface {
	BlockItem
	stmt()
}

// AssignStmt assigns the value of Rhs to LVal.
type AssignStmt struct {
	LVal *LVal
	Rhs  Exp
	Line int
}

func (*AssignStmt) blockItem() {}
func (*AssignStmt) stmt()      {}

// ExpStmt evaluates an expression for its side effects and discards the result. The subset's
// only side-effecting expressions are none, so this covers the empty-statement case ";" too
// (Exp is nil).
type ExpStmt struct {
	Exp  Exp // nil for the empty statement
	Line int
}

func (*ExpStmt) blockItem() {}
func (*ExpStmt) stmt()      {}

// BlockStmt nests a block as a statement, opening a new lexical scope.
type BlockStmt struct {
	Body *Block
	Line int
}

func (*BlockStmt) blockItem() {}
func (*BlockStmt) stmt()      {}

// ReturnStmt returns from the enclosing function, optionally with a value.
type ReturnStmt struct {
	Exp  Exp // nil for a bare "return;"
	Line int
}

func (*ReturnStmt) blockItem() {}
func (*ReturnStmt) stmt()      {}

// Exp is any expression node. Every concrete type below corresponds to one level of the grammar's
// precedence hierarchy: LOrExp -> LAndExp -> EqExp -> RelExp -> AddExp -> MulExp -> UnaryExp ->
// PrimaryExp -> (LVal | Number | '(' Exp ')').
type Exp interface {
	exp()
}

// BinaryExp covers every binary operator in the language: +, -, *, /, %, <, >, <=, >=, ==, !=,
// && and ||. Op holds the source spelling of the operator.
type BinaryExp struct {
	Op   string
	L, R Exp
	Line int
}

func (*BinaryExp) exp() {}

// UnaryExp covers the unary +, - and ! operators.
type UnaryExp struct {
	Op   string
	X    Exp
	Line int
}

func (*UnaryExp) exp() {}

// LVal references a named variable or constant, optionally as an assignment target.
type LVal struct {
	Name string
	Line int
}

func (*LVal) exp() {}

// Number is an integer literal, already parsed to its numeric value by the parser.
type Number struct {
	Val  int32
	Line int
}

func (*Number) exp() {}
