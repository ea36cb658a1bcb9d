package util

import "testing"

func TestStackPushPopOrder(t *testing.T) {
	s := &Stack{}
	s.Push(1)
	s.Push(2)
	s.Push(3)
	if s.Size() != 3 {
		t.Fatalf("expected size 3, got %d", s.Size())
	}
	if v := s.Pop(); v != 3 {
		t.Errorf("expected 3, got %v", v)
	}
	if v := s.Pop(); v != 2 {
		t.Errorf("expected 2, got %v", v)
	}
	if v := s.Pop(); v != 1 {
		t.Errorf("expected 1, got %v", v)
	}
	if v := s.Pop(); v != nil {
		t.Errorf("expected nil from an empty stack, got %v", v)
	}
}

func TestStackPeekDoesNotRemove(t *testing.T) {
	s := &Stack{}
	s.Push("a")
	s.Push("b")
	if v := s.Peek(); v != "b" {
		t.Fatalf("expected to peek the top element %q, got %v", "b", v)
	}
	if s.Size() != 2 {
		t.Fatalf("expected peek to leave the stack untouched, got size %d", s.Size())
	}
}

func TestStackGetIsTopDown(t *testing.T) {
	s := &Stack{}
	s.Push("bottom")
	s.Push("middle")
	s.Push("top")
	if v := s.Get(1); v != "top" {
		t.Errorf("expected Get(1) to return the top element, got %v", v)
	}
	if v := s.Get(2); v != "middle" {
		t.Errorf("expected Get(2) to return the middle element, got %v", v)
	}
	if v := s.Get(3); v != "bottom" {
		t.Errorf("expected Get(3) to return the bottom element, got %v", v)
	}
}

func TestStackGetOutOfRange(t *testing.T) {
	s := &Stack{}
	s.Push("only")
	if v := s.Get(0); v != nil {
		t.Errorf("expected Get(0) to return nil, got %v", v)
	}
	if v := s.Get(2); v != nil {
		t.Errorf("expected Get(2) on a single-element stack to return nil, got %v", v)
	}
	if v := s.Get(1); v != "only" {
		t.Errorf("expected Get(1) on a single-element stack to return the only element, got %v", v)
	}
}

func TestStackIgnoresNilPush(t *testing.T) {
	s := &Stack{}
	s.Push(nil)
	if s.Size() != 0 {
		t.Errorf("expected pushing nil to be a no-op, got size %d", s.Size())
	}
}
