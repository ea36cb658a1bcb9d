package util

import "testing"

func TestParseArgsKoopaMode(t *testing.T) {
	opt, err := ParseArgs([]string{"-koopa", "prog.sysy"})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if opt.Mode != ModeKoopa || opt.Src != "prog.sysy" || opt.Threads != 1 {
		t.Fatalf("unexpected options: %+v", opt)
	}
}

func TestParseArgsRiscvModeWithFlags(t *testing.T) {
	opt, err := ParseArgs([]string{"-riscv", "prog.sysy", "-o", "out.s", "-t", "4", "-vb"})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if opt.Mode != ModeRiscv || opt.Out != "out.s" || opt.Threads != 4 || !opt.Verbose {
		t.Fatalf("unexpected options: %+v", opt)
	}
}

func TestParseArgsRejectsUnknownMode(t *testing.T) {
	if _, err := ParseArgs([]string{"-bogus", "prog.sysy"}); err == nil {
		t.Fatal("expected an error for an unrecognized mode flag")
	}
}

func TestParseArgsRejectsMissingSource(t *testing.T) {
	if _, err := ParseArgs([]string{"-koopa"}); err == nil {
		t.Fatal("expected an error when no source path is given")
	}
}

func TestParseArgsRejectsThreadCountOutOfRange(t *testing.T) {
	if _, err := ParseArgs([]string{"-riscv", "prog.sysy", "-t", "0"}); err == nil {
		t.Fatal("expected an error for a thread count below 1")
	}
	if _, err := ParseArgs([]string{"-riscv", "prog.sysy", "-t", "65"}); err == nil {
		t.Fatal("expected an error for a thread count above the maximum")
	}
}

func TestParseArgsRejectsUnknownFlag(t *testing.T) {
	if _, err := ParseArgs([]string{"-koopa", "prog.sysy", "-bogus"}); err == nil {
		t.Fatal("expected an error for an unrecognized flag")
	}
}

func TestParseArgsRejectsDanglingOFlag(t *testing.T) {
	if _, err := ParseArgs([]string{"-koopa", "prog.sysy", "-o"}); err == nil {
		t.Fatal("expected an error when -o has no argument")
	}
}
