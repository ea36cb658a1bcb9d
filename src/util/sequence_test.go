package util

import "testing"

func TestSequenceStartsAtZeroAndIncrements(t *testing.T) {
	s := NewSequence()
	defer s.Close()
	for i1 := 0; i1 < 5; i1++ {
		if n := s.Next(); n != i1 {
			t.Errorf("expected %d, got %d", i1, n)
		}
	}
}

func TestLabelFormatsWithZeroPaddedID(t *testing.T) {
	if got := Label("mid", 3); got != "mid_003" {
		t.Errorf("expected %q, got %q", "mid_003", got)
	}
	if got := Label("mid", 42); got != "mid_042" {
		t.Errorf("expected %q, got %q", "mid_042", got)
	}
}
