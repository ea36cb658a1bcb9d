package irgen

import (
	"strconv"

	"sysyc/src/compileerr"
	"sysyc/src/util"
)

// SymKind differentiates a constant binding from a mutable variable binding.
type SymKind int

const (
	SymConst SymKind = iota
	SymVar
)

// Symbol is one binding in the symbol table: a source-level name mapped to either a folded
// constant value or the Koopa IR symbol holding its storage.
type Symbol struct {
	Name   string
	Kind   SymKind
	Value  int32  // valid when Kind == SymConst
	IRName string // valid when Kind == SymVar: the @name or @name_k alloc symbol
}

// scope is one lexical level of bindings.
type scope map[string]*Symbol

// SymbolTable is a stack of lexical scopes, innermost on top. Lookup walks from innermost to
// outermost so a name in an inner block shadows the same name in an enclosing one. Built on
// util.Stack, the same linked-list stack the source's scope bookkeeping is built on.
type SymbolTable struct {
	scopes *util.Stack
	seq    map[string]int // per-name counter used to build unique IR names across scopes
}

// NewSymbolTable returns an empty SymbolTable with no open scopes.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{scopes: &util.Stack{}, seq: make(map[string]int)}
}

// PushScope opens a new innermost scope.
func (t *SymbolTable) PushScope() {
	t.scopes.Push(make(scope))
}

// PopScope closes the innermost scope. Popping with no open scope is a programmer error and
// panics, matching the fail-fast assertion this mirrors in the original implementation.
func (t *SymbolTable) PopScope() {
	if t.scopes.Size() == 0 {
		panic("irgen: PopScope called with no open scope")
	}
	t.scopes.Pop()
}

// Insert adds a new binding to the innermost scope. It returns a RedeclaredSymbol error if name
// is already bound in that same scope; shadowing an outer scope's binding is allowed.
func (t *SymbolTable) Insert(sym *Symbol) error {
	if t.scopes.Size() == 0 {
		panic("irgen: Insert called with no open scope")
	}
	cur := t.scopes.Peek().(scope)
	if _, ok := cur[sym.Name]; ok {
		return compileerr.New(compileerr.RedeclaredSymbol, "%q redeclared in this scope", sym.Name)
	}
	cur[sym.Name] = sym
	return nil
}

// Lookup searches from the innermost scope outward, returning an UndefinedSymbol error if name
// is not bound anywhere on the stack. Get(i) walks top-down, so i==1 is the innermost scope and
// i==Size() is the outermost.
func (t *SymbolTable) Lookup(name string) (*Symbol, error) {
	for i := 1; i <= t.scopes.Size(); i++ {
		sc := t.scopes.Get(i).(scope)
		if sym, ok := sc[name]; ok {
			return sym, nil
		}
	}
	return nil, compileerr.New(compileerr.UndefinedSymbol, "%q is not declared", name)
}

// NextIRName returns the next scope-disambiguating IR name for base: "@base" for the first
// declaration of that name, then "@base_1", "@base_2", and so on. The per-name counter is shared
// across scopes so two different blocks declaring the same source name still get distinct Koopa
// symbols.
func (t *SymbolTable) NextIRName(base string) string {
	k := t.seq[base]
	t.seq[base] = k + 1
	if k == 0 {
		return "@" + base
	}
	return "@" + base + "_" + strconv.Itoa(k)
}
