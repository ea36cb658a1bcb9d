package riscv

import (
	"strings"
	"testing"

	"sysyc/src/koopa"
	"sysyc/src/util"
)

func TestPlanStackFrameCountsSlotsAndRoundsUp16(t *testing.T) {
	fn := koopa.Function{
		Blocks: []koopa.BasicBlock{
			{
				Label: "%entry",
				Insts: []koopa.Value{
					{Kind: koopa.KindAlloc, Name: "@a"},
					{Kind: koopa.KindLoad, Name: "%0", Src: "@a"},
					{Kind: koopa.KindBinary, Name: "%1", Op: koopa.Add, Lhs: "%0", Rhs: "3"},
					{Kind: koopa.KindStore, Src: "%1", Dest: "@a"},
					{Kind: koopa.KindReturn, Val: "%1", HasVal: true},
				},
			},
		},
	}
	frame := PlanStackFrame(fn)
	// 3 slot-occupying instructions (alloc, load, binary) * 4 bytes = 12, rounded up to 16.
	if frame.Total != 16 {
		t.Errorf("expected a 16-byte frame, got %d", frame.Total)
	}
	if !frame.IsLeaf {
		t.Errorf("expected this subset's functions to always be leaves")
	}
}

func TestPlanStackFrameEmptyFunction(t *testing.T) {
	fn := koopa.Function{
		Blocks: []koopa.BasicBlock{
			{Label: "%entry", Insts: []koopa.Value{{Kind: koopa.KindReturn, Val: "0", HasVal: true}}},
		},
	}
	frame := PlanStackFrame(fn)
	if frame.Total != 0 {
		t.Errorf("expected an empty frame for a function with no spill-worthy instructions, got %d", frame.Total)
	}
}

func TestStackFrameGrowReturnsDecreasingOffsets(t *testing.T) {
	f := StackFrame{Total: 16}
	o1 := f.Grow()
	o2 := f.Grow()
	if o1 != 12 || o2 != 8 {
		t.Errorf("expected offsets 12 then 8, got %d then %d", o1, o2)
	}
}

func TestWritePrologueEmitsSpAdjustmentWhenFrameNonEmpty(t *testing.T) {
	capture := util.NewCapture()
	w := capture.Writer()
	WritePrologue(&w, "main", StackFrame{Total: 16, IsLeaf: true})
	w.Close()
	out := capture.String()
	if !strings.Contains(out, ".globl main") {
		t.Errorf("expected %q to contain %q", out, ".globl main")
	}
	if !strings.Contains(out, "main:\n") {
		t.Errorf("expected %q to contain the function label", out)
	}
	if !strings.Contains(out, "addi\tsp, sp, -16") {
		t.Errorf("expected %q to contain the sp adjustment", out)
	}
}

func TestWritePrologueSkipsSpAdjustmentWhenFrameEmpty(t *testing.T) {
	capture := util.NewCapture()
	w := capture.Writer()
	WritePrologue(&w, "main", StackFrame{Total: 0, IsLeaf: true})
	w.Close()
	out := capture.String()
	if strings.Contains(out, "addi") {
		t.Errorf("expected no sp adjustment for an empty frame, got %q", out)
	}
}

func TestEmitAddSpExpandsOutOfRangeImmediate(t *testing.T) {
	capture := util.NewCapture()
	w := capture.Writer()
	emitAddSp(&w, -4096)
	w.Close()
	out := capture.String()
	if !strings.Contains(out, "li\tt0, -4096") || !strings.Contains(out, "add\tsp, sp, t0") {
		t.Errorf("expected an li/add expansion for an out-of-range delta, got %q", out)
	}
}

func TestEmitAddSpUsesAddiWithinRange(t *testing.T) {
	capture := util.NewCapture()
	w := capture.Writer()
	emitAddSp(&w, -16)
	w.Close()
	out := capture.String()
	if !strings.Contains(out, "addi\tsp, sp, -16") {
		t.Errorf("expected a direct addi for an in-range delta, got %q", out)
	}
	if strings.Contains(out, "li\t") {
		t.Errorf("expected no li expansion for an in-range delta, got %q", out)
	}
}

func TestInImmRange(t *testing.T) {
	cases := []struct {
		v  int
		ok bool
	}{
		{-2048, true},
		{2047, true},
		{-2049, false},
		{2048, false},
		{0, true},
	}
	for _, c := range cases {
		if got := inImmRange(c.v); got != c.ok {
			t.Errorf("inImmRange(%d) = %v, want %v", c.v, got, c.ok)
		}
	}
}
