package koopa

import (
	"bufio"
	"strconv"
	"strings"

	"sysyc/src/compileerr"
)

// Parse reads textual Koopa IR and builds the in-memory Program graph described in koopa.go.
// Dispatch is on line shape exactly as the IR text format specifies it: a function header line,
// an entry label, or one of the instruction shapes inside a block.
func Parse(text string) (*Program, error) {
	p := &Program{}
	sc := bufio.NewScanner(strings.NewReader(text))
	var curFunc *Function
	var curBlock *BasicBlock

	flushBlock := func() {
		if curFunc != nil && curBlock != nil {
			curFunc.Blocks = append(curFunc.Blocks, *curBlock)
			curBlock = nil
		}
	}
	flushFunc := func() {
		flushBlock()
		if curFunc != nil {
			p.Funcs = append(p.Funcs, *curFunc)
			curFunc = nil
		}
	}

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		switch {
		case strings.HasPrefix(line, "global "):
			g, err := parseGlobal(line)
			if err != nil {
				return nil, err
			}
			p.Globals = append(p.Globals, g)
		case strings.HasPrefix(line, "fun "):
			flushFunc()
			fn, err := parseFuncHeader(line)
			if err != nil {
				return nil, err
			}
			curFunc = fn
		case line == "}":
			flushFunc()
		case strings.HasSuffix(line, ":"):
			flushBlock()
			curBlock = &BasicBlock{Label: strings.TrimSuffix(line, ":")}
		default:
			if curBlock == nil {
				return nil, compileerr.New(compileerr.IRMalformed, "instruction outside any basic block: %q", line)
			}
			v, err := parseInst(line)
			if err != nil {
				return nil, err
			}
			curBlock.Insts = append(curBlock.Insts, v)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, compileerr.New(compileerr.IRMalformed, "%s", err)
	}
	flushFunc()
	return p, nil
}

// parseFuncHeader parses "fun @name(): i32 {" (or with no return type before "{").
func parseFuncHeader(line string) (*Function, error) {
	line = strings.TrimSuffix(strings.TrimSpace(line), "{")
	line = strings.TrimSpace(line)
	line = strings.TrimPrefix(line, "fun ")
	open := strings.Index(line, "(")
	shut := strings.Index(line, ")")
	if open < 0 || shut < 0 || shut < open {
		return nil, compileerr.New(compileerr.IRMalformed, "malformed function header: %q", line)
	}
	name := strings.TrimSpace(line[:open])
	rest := strings.TrimSpace(line[shut+1:])
	retType := ""
	if strings.HasPrefix(rest, ":") {
		retType = strings.TrimSpace(strings.TrimPrefix(rest, ":"))
	}
	return &Function{Name: name, RetType: retType}, nil
}

// parseGlobal parses "global @g = alloc i32, zeroinit" or "global @g = alloc i32, <literal>".
func parseGlobal(line string) (Global, error) {
	parts := strings.SplitN(line, "=", 2)
	if len(parts) != 2 {
		return Global{}, compileerr.New(compileerr.IRMalformed, "malformed global: %q", line)
	}
	name := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(parts[0]), "global"))
	rhs := strings.TrimSpace(parts[1])
	comma := strings.LastIndex(rhs, ",")
	if comma < 0 {
		return Global{}, compileerr.New(compileerr.IRMalformed, "malformed global initializer: %q", line)
	}
	init := strings.TrimSpace(rhs[comma+1:])
	if init == "zeroinit" {
		return Global{Name: name, ZeroInit: true}, nil
	}
	v, err := strconv.ParseInt(init, 10, 64)
	if err != nil {
		return Global{}, compileerr.New(compileerr.IRMalformed, "malformed global initializer %q: %s", init, err)
	}
	return Global{Name: name, Imm: int32(v)}, nil
}

// parseInst dispatches a single instruction line to its Value shape, matching the kinds the IR
// text format enumerates: alloc, load, store, binary, return, jump, branch.
func parseInst(line string) (Value, error) {
	if strings.HasPrefix(line, "store ") {
		return parseStore(line)
	}
	if strings.HasPrefix(line, "ret") {
		return parseReturn(line)
	}
	if strings.HasPrefix(line, "jump ") {
		return Value{Kind: KindJump, Target: strings.TrimSpace(strings.TrimPrefix(line, "jump"))}, nil
	}
	if strings.HasPrefix(line, "br ") {
		return parseBranch(line)
	}
	if eq := strings.Index(line, "="); eq >= 0 {
		name := strings.TrimSpace(line[:eq])
		rhs := strings.TrimSpace(line[eq+1:])
		switch {
		case rhs == "alloc i32":
			return Value{Kind: KindAlloc, Name: name}, nil
		case strings.HasPrefix(rhs, "load "):
			return Value{Kind: KindLoad, Name: name, Src: strings.TrimSpace(strings.TrimPrefix(rhs, "load"))}, nil
		default:
			return parseBinary(name, rhs)
		}
	}
	return Value{}, compileerr.New(compileerr.IRMalformed, "unrecognized instruction: %q", line)
}

func parseStore(line string) (Value, error) {
	rest := strings.TrimSpace(strings.TrimPrefix(line, "store"))
	comma := strings.LastIndex(rest, ",")
	if comma < 0 {
		return Value{}, compileerr.New(compileerr.IRMalformed, "malformed store: %q", line)
	}
	src := strings.TrimSpace(rest[:comma])
	dest := strings.TrimSpace(rest[comma+1:])
	return Value{Kind: KindStore, Src: src, Dest: dest}, nil
}

func parseReturn(line string) (Value, error) {
	rest := strings.TrimSpace(strings.TrimPrefix(line, "ret"))
	if rest == "" {
		return Value{Kind: KindReturn}, nil
	}
	return Value{Kind: KindReturn, Val: rest, HasVal: true}, nil
}

func parseBranch(line string) (Value, error) {
	rest := strings.TrimSpace(strings.TrimPrefix(line, "br"))
	fields := splitCommaFields(rest)
	if len(fields) != 3 {
		return Value{}, compileerr.New(compileerr.IRMalformed, "malformed branch: %q", line)
	}
	return Value{Kind: KindBranch, Cond: fields[0], TrueL: fields[1], FalseL: fields[2]}, nil
}

func parseBinary(name, rhs string) (Value, error) {
	fields := strings.Fields(rhs)
	if len(fields) < 2 {
		return Value{}, compileerr.New(compileerr.IRMalformed, "malformed binary instruction: %q", rhs)
	}
	op := BinOp(fields[0])
	operands := splitCommaFields(strings.Join(fields[1:], " "))
	if len(operands) != 2 {
		return Value{}, compileerr.New(compileerr.IRMalformed, "malformed binary operands: %q", rhs)
	}
	return Value{Kind: KindBinary, Name: name, Op: op, Lhs: operands[0], Rhs: operands[1]}, nil
}

// splitCommaFields splits a comma-separated operand list, trimming whitespace around each field.
func splitCommaFields(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}

// IsImmediate reports whether operand text is an integer literal rather than a symbol reference.
func IsImmediate(operand string) (int32, bool) {
	v, err := strconv.ParseInt(operand, 10, 64)
	if err != nil {
		return 0, false
	}
	return int32(v), true
}
