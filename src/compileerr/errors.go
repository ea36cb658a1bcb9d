// Package compileerr defines the typed error kinds reported by the compiler's
// frontend, IR generator and RISC-V backend.
package compileerr

import "fmt"

// Kind differentiates the categories of compile-time failure.
type Kind int

// Error kinds. Each corresponds to a named failure mode in the design.
const (
	CLIUsage Kind = iota
	UndefinedSymbol
	RedeclaredSymbol
	NotAConstant
	TypeMismatch
	RegisterStarvation
	IRMalformed
	DivByZero
	ImmediateOverflow
)

// kindNames gives a print friendly label for each Kind.
var kindNames = [...]string{
	"CLI usage",
	"undefined symbol",
	"redeclared symbol",
	"not a constant",
	"type mismatch",
	"register starvation",
	"malformed IR",
	"division by zero",
	"immediate overflow",
}

// String returns the print friendly name of k.
func (k Kind) String() string {
	if int(k) < 0 || int(k) >= len(kindNames) {
		return "unknown error"
	}
	return kindNames[k]
}

// CompileError is returned by any stage of the compiler that fails.
type CompileError struct {
	Kind Kind
	Msg  string
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	if e.Msg == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// New returns a new *CompileError of kind k with a formatted message.
func New(k Kind, format string, args ...interface{}) *CompileError {
	return &CompileError{Kind: k, Msg: fmt.Sprintf(format, args...)}
}
