package riscv

import "testing"

func TestRegPoolGetIsDeterministic(t *testing.T) {
	p := NewRegPool()
	r, err := p.Get()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if r != "t0" {
		t.Errorf("expected first allocation to be t0, got %s", r)
	}
}

func TestRegPoolReleaseMakesRegisterAvailableAgain(t *testing.T) {
	p := NewRegPool()
	r1, _ := p.Get()
	p.Release(r1)
	r2, _ := p.Get()
	if r1 != r2 {
		t.Errorf("expected released register %s to be reused, got %s", r1, r2)
	}
}

func TestRegPoolStarvation(t *testing.T) {
	p := NewRegPool()
	for range regNames {
		if _, err := p.Get(); err != nil {
			t.Fatalf("unexpected starvation before pool exhausted: %s", err)
		}
	}
	if _, err := p.Get(); err == nil {
		t.Fatal("expected RegisterStarvation once every register is in use")
	}
}

func TestRegPoolReserveSpecificRegister(t *testing.T) {
	p := NewRegPool()
	if !p.Reserve("a0") {
		t.Fatal("expected to reserve a free register")
	}
	if p.Reserve("a0") {
		t.Fatal("expected reserving an already-taken register to fail")
	}
	p.Release("a0")
	if !p.Reserve("a0") {
		t.Fatal("expected a0 to be reservable again after release")
	}
}

func TestRegPoolReleaseOfFreeRegisterIsNoop(t *testing.T) {
	p := NewRegPool()
	p.Release("s5")
	if !p.Reserve("s5") {
		t.Fatal("expected s5 to remain free")
	}
}
