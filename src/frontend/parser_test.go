package frontend

import "testing"

func TestParseFuncDef(t *testing.T) {
	cu, err := Parse("int main() { return 0; }")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if cu.Func.Name != "main" || cu.Func.RetType != "int" {
		t.Fatalf("unexpected FuncDef: %+v", cu.Func)
	}
	if len(cu.Func.Body.Items) != 1 {
		t.Fatalf("expected 1 block item, got %d", len(cu.Func.Body.Items))
	}
	ret, ok := cu.Func.Body.Items[0].(*ReturnStmt)
	if !ok {
		t.Fatalf("expected *ReturnStmt, got %T", cu.Func.Body.Items[0])
	}
	n, ok := ret.Exp.(*Number)
	if !ok || n.Val != 0 {
		t.Fatalf("expected Number(0), got %#v", ret.Exp)
	}
}

func TestParseOperatorPrecedence(t *testing.T) {
	cu, err := Parse("int main() { return 1 + 2 * 3; }")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	ret := cu.Func.Body.Items[0].(*ReturnStmt)
	top, ok := ret.Exp.(*BinaryExp)
	if !ok || top.Op != "+" {
		t.Fatalf("expected top-level '+', got %#v", ret.Exp)
	}
	right, ok := top.R.(*BinaryExp)
	if !ok || right.Op != "*" {
		t.Fatalf("expected '*' nested under '+', got %#v", top.R)
	}
}

func TestParseDeclsAndAssignment(t *testing.T) {
	cu, err := Parse(`int main() {
		const int n = 10;
		int a = 1, b;
		b = a + n;
		return b;
	}`)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	items := cu.Func.Body.Items
	if len(items) != 4 {
		t.Fatalf("expected 4 block items, got %d", len(items))
	}
	if _, ok := items[0].(*ConstDecl); !ok {
		t.Fatalf("expected ConstDecl, got %T", items[0])
	}
	vd, ok := items[1].(*VarDecl)
	if !ok || len(vd.Defs) != 2 {
		t.Fatalf("expected VarDecl with 2 defs, got %#v", items[1])
	}
	if vd.Defs[1].Init != nil {
		t.Fatalf("expected second def uninitialized, got %#v", vd.Defs[1].Init)
	}
	if _, ok := items[2].(*AssignStmt); !ok {
		t.Fatalf("expected AssignStmt, got %T", items[2])
	}
}

func TestParseNestedBlockScope(t *testing.T) {
	cu, err := Parse(`int main() {
		int x = 1;
		{ int x = 2; }
		return x;
	}`)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if _, ok := cu.Func.Body.Items[1].(*BlockStmt); !ok {
		t.Fatalf("expected nested BlockStmt, got %T", cu.Func.Body.Items[1])
	}
}

func TestParseIntLiteralForms(t *testing.T) {
	cu, err := Parse("int main() { return 010 + 0x1F; }")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	ret := cu.Func.Body.Items[0].(*ReturnStmt)
	add := ret.Exp.(*BinaryExp)
	if add.L.(*Number).Val != 8 {
		t.Errorf("expected octal 010 == 8, got %d", add.L.(*Number).Val)
	}
	if add.R.(*Number).Val != 31 {
		t.Errorf("expected hex 0x1F == 31, got %d", add.R.(*Number).Val)
	}
}

func TestParseRejectsMissingSemicolon(t *testing.T) {
	if _, err := Parse("int main() { return 0 }"); err == nil {
		t.Fatal("expected a syntax error for missing ';'")
	}
}

func TestParseRejectsUnexpectedTrailingToken(t *testing.T) {
	if _, err := Parse("int main() { return 0; } garbage"); err == nil {
		t.Fatal("expected a syntax error for trailing token after CompUnit")
	}
}

func TestParseEmptyStatement(t *testing.T) {
	cu, err := Parse("int main() { ; return 0; }")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	es, ok := cu.Func.Body.Items[0].(*ExpStmt)
	if !ok || es.Exp != nil {
		t.Fatalf("expected an empty ExpStmt, got %#v", cu.Func.Body.Items[0])
	}
}
