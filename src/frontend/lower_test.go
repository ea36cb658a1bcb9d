package frontend

import (
	"strings"
	"testing"

	"sysyc/src/irgen"
	"sysyc/src/util"
)

// lower parses src, lowers it to Koopa text and returns that text. It mirrors
// compiler.LowerToText without importing the compiler package, to keep this test
// self-contained within the frontend/irgen boundary it is exercising.
func lower(t *testing.T, src string) string {
	t.Helper()
	cu, err := Parse(src)
	if err != nil {
		t.Fatalf("parse error: %s", err)
	}
	capture := util.NewCapture()
	w := capture.Writer()
	g := irgen.NewGenerator(&w, false)
	defer g.Close()
	if err := cu.Func.Lower(g); err != nil {
		t.Fatalf("lower error: %s", err)
	}
	w.Close()
	return capture.String()
}

func TestLowerBareReturn(t *testing.T) {
	ir := lower(t, "int main() { return 0; }")
	if !strings.Contains(ir, "ret 0") {
		t.Errorf("expected %q to contain %q", ir, "ret 0")
	}
	if strings.Contains(ir, "= add") || strings.Contains(ir, "= mul") {
		t.Errorf("expected no binary instructions for a literal return, got %q", ir)
	}
}

func TestLowerConstantFolding(t *testing.T) {
	ir := lower(t, "int main() { return 1 + 2 * 3; }")
	if !strings.Contains(ir, "ret 7") {
		t.Errorf("expected %q to contain %q", ir, "ret 7")
	}
	if strings.Contains(ir, "=") {
		t.Errorf("expected no instructions at all for a fully folded literal expression, got %q", ir)
	}
}

func TestLowerVariableLoadStore(t *testing.T) {
	ir := lower(t, "int main() { int a = 5; a = a + 3; return a; }")
	for _, want := range []string{"alloc i32", "store 5", "load", "add", "ret"} {
		if !strings.Contains(ir, want) {
			t.Errorf("expected %q to contain %q", ir, want)
		}
	}
}

func TestLowerConstSubstitution(t *testing.T) {
	ir := lower(t, "int main() { const int N = 10; return N * 2; }")
	if strings.Contains(ir, "alloc") {
		t.Errorf("expected no alloc for a constant, got %q", ir)
	}
	if !strings.Contains(ir, "ret 20") {
		t.Errorf("expected %q to contain %q", ir, "ret 20")
	}
}

func TestLowerUnaryRewrite(t *testing.T) {
	ir := lower(t, "int main() { return -(!0); }")
	if !strings.Contains(ir, "ret -1") {
		t.Errorf("expected %q to contain %q", ir, "ret -1")
	}
}

func TestLowerScopeShadowing(t *testing.T) {
	ir := lower(t, "int main() { int x = 1; { int x = 2; } return x; }")
	if !strings.Contains(ir, "@x = alloc i32") {
		t.Errorf("expected outer %q in %q", "@x = alloc i32", ir)
	}
	if !strings.Contains(ir, "@x_1 = alloc i32") {
		t.Errorf("expected inner %q in %q", "@x_1 = alloc i32", ir)
	}
	if !strings.Contains(ir, "store 1, @x") || strings.Contains(ir, "store 1, @x_1") {
		t.Errorf("expected outer store to target @x, got %q", ir)
	}
	if !strings.Contains(ir, "load @x\n") {
		t.Errorf("expected the final return to load the outer @x, got %q", ir)
	}
}

func TestLowerDivisionByZeroIsReported(t *testing.T) {
	if _, err := func() (string, error) {
		cu, err := Parse("int main() { return 1 / 0; }")
		if err != nil {
			return "", err
		}
		capture := util.NewCapture()
		w := capture.Writer()
		g := irgen.NewGenerator(&w, false)
		defer g.Close()
		err = cu.Func.Lower(g)
		return "", err
	}(); err == nil {
		t.Fatal("expected a DivByZero error for a constant division by zero")
	}
}

func TestLowerRedeclaredConstIsRejected(t *testing.T) {
	_, err := func() (string, error) {
		cu, err := Parse("int main() { const int a = 1; const int a = 2; return a; }")
		if err != nil {
			return "", err
		}
		capture := util.NewCapture()
		w := capture.Writer()
		g := irgen.NewGenerator(&w, false)
		defer g.Close()
		err = cu.Func.Lower(g)
		return "", err
	}()
	if err == nil {
		t.Fatal("expected a RedeclaredSymbol error")
	}
}

func TestLowerUndefinedSymbolIsRejected(t *testing.T) {
	_, err := func() (string, error) {
		cu, err := Parse("int main() { return y; }")
		if err != nil {
			return "", err
		}
		capture := util.NewCapture()
		w := capture.Writer()
		g := irgen.NewGenerator(&w, false)
		defer g.Close()
		err = cu.Func.Lower(g)
		return "", err
	}()
	if err == nil {
		t.Fatal("expected an UndefinedSymbol error")
	}
}

func TestLowerAssignToConstIsRejected(t *testing.T) {
	_, err := func() (string, error) {
		cu, err := Parse("int main() { const int a = 1; a = 2; return a; }")
		if err != nil {
			return "", err
		}
		capture := util.NewCapture()
		w := capture.Writer()
		g := irgen.NewGenerator(&w, false)
		defer g.Close()
		err = cu.Func.Lower(g)
		return "", err
	}()
	if err == nil {
		t.Fatal("expected a TypeMismatch error for assigning to a const")
	}
}
