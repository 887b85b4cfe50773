package object

import (
	"errors"
	"math/rand/v2"
	"testing"

	"qi/internal/ast"
)

func arr(vals ...Object) *Cell {
	a := &Array{}
	for _, v := range vals {
		a.Elements = append(a.Elements, NewCell(v))
	}
	return &Cell{Value: a}
}

func n(v float64) Object  { return &Number{Value: v} }
func s(v string) Object   { return &String{Value: v} }
func cell(o Object) *Cell { return NewCell(o) }

func TestInspect(t *testing.T) {
	type testCase struct {
		obj  Object
		want string
	}

	testCases := []testCase{
		{NONE, "none"},
		{TRUE, "true"},
		{n(3), "3"},
		{n(-0.25), "-0.25"},
		{n(1e21), "1000000000000000000000"},
		{s("hi"), "hi"},
		{arr(n(1), s("a"), TRUE).Value, `[1, "a", true]`},
		{&Function{Name: "f", Parameters: []Parameter{{"a", NUMBER_OBJ}}, Return: STRING_OBJ}, "fn f(num a) str"},
	}

	for _, tc := range testCases {
		if got := tc.obj.Inspect(); got != tc.want {
			t.Errorf("expected %q, got %q", tc.want, got)
		}
	}
}

func TestCopyIsDeep(t *testing.T) {
	inner := arr(n(1))
	outer := arr(inner.Value)
	cp := outer.Copy()

	cp.Value.(*Array).Elements[0].Value.(*Array).Elements[0].Value = n(9)
	if got := outer.Inspect(); got != "[[1]]" {
		t.Errorf("copy aliased the original: %s", got)
	}
}

func TestToBool(t *testing.T) {
	testCases := map[*Cell]bool{
		cell(NONE):   false,
		cell(FALSE):  false,
		cell(n(0)):   false,
		cell(n(2)):   true,
		cell(s("")):  false,
		cell(s("x")): true,
		arr():        false,
		arr(n(0)):    true,
	}
	for c, want := range testCases {
		if got := ToBool(c); got != want {
			t.Errorf("ToBool(%s): expected %v, got %v", c.Inspect(), want, got)
		}
	}
}

func TestBinary(t *testing.T) {
	type testCase struct {
		op   ast.Op
		a, b *Cell
		want string
	}

	testCases := []testCase{
		{ast.OpAdd, cell(n(1)), cell(n(2)), "3"},
		{ast.OpAdd, cell(n(1)), cell(s("x")), "1x"},
		{ast.OpAdd, arr(n(1)), arr(n(2)), "[1, 2]"},
		{ast.OpMul, cell(s("-")), cell(n(3)), "---"},
		{ast.OpDiv, cell(n(1)), cell(n(4)), "0.25"},
		{ast.OpTruncDiv, cell(n(-7)), cell(n(2)), "-3"},
		{ast.OpMod, cell(n(-7)), cell(n(3)), "-1"},
		{ast.OpPow, cell(n(3)), cell(n(2)), "9"},
		{ast.OpBitXor, cell(n(6)), cell(n(3)), "5"},
		{ast.OpShiftRight, cell(n(-8)), cell(n(1)), "-4"},
		{ast.OpEqual, arr(n(1), s("a")), arr(n(1), s("a")), "true"},
		{ast.OpEqual, cell(n(1)), cell(s("1")), "false"},
		{ast.OpNotEqual, cell(NONE), cell(NONE), "false"},
		{ast.OpGreaterEqual, cell(s("b")), cell(s("a")), "true"},
		{ast.OpOr, cell(n(0)), cell(s("")), "false"},
	}

	for _, tc := range testCases {
		got, err := Binary(tc.op, tc.a, tc.b)
		if err != nil {
			t.Errorf("%s %s %s: unexpected error: %v", tc.a.Inspect(), tc.op, tc.b.Inspect(), err)
			continue
		}
		if got.Inspect() != tc.want {
			t.Errorf("%s %s %s: expected %q, got %q", tc.a.Inspect(), tc.op, tc.b.Inspect(), tc.want, got.Inspect())
		}
	}
}

func TestBinaryErrors(t *testing.T) {
	type testCase struct {
		op   ast.Op
		a, b *Cell
		msg  string
	}

	testCases := []testCase{
		{ast.OpSub, cell(s("a")), cell(n(1)), "unsupported operand types for -: str and num"},
		{ast.OpLess, cell(n(1)), cell(s("a")), "unsupported operand types for <: num and str"},
		{ast.OpBitAnd, cell(n(1.5)), cell(n(1)), "operands of \"&\" must be integers"},
		{ast.OpShiftLeft, cell(n(1)), cell(n(-1)), "negative shift count -1"},
		{ast.OpMul, cell(s("a")), cell(n(-1)), "string repetition count must be a non-negative integer"},
		{ast.OpAssign, cell(n(1)), cell(s("a")), "cannot assign str to num"},
		{ast.OpAddAssign, cell(n(1)), cell(s("a")), "cannot assign str to num"},
	}

	for _, tc := range testCases {
		_, err := Binary(tc.op, tc.a, tc.b)
		var qe *Error
		if !errors.As(err, &qe) {
			t.Errorf("%s: expected *Error, got %v", tc.op, err)
			continue
		}
		if qe.Message != tc.msg {
			t.Errorf("%s: expected %q, got %q", tc.op, tc.msg, qe.Message)
		}
	}
}

func TestCompoundAssignWritesBack(t *testing.T) {
	x := cell(n(5))
	res, err := Binary(ast.OpModAssign, x, cell(n(3)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res != x || x.Inspect() != "2" {
		t.Errorf("expected %%= to update the target in place, got %s", x.Inspect())
	}

	none := cell(NONE)
	if _, err := Binary(ast.OpAssign, none, cell(s("adopted"))); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if none.Type() != STRING_OBJ {
		t.Errorf("expected none target to adopt str, got %s", none.Type())
	}
}

func TestArrayMethods(t *testing.T) {
	type testCase struct {
		name   string
		method ast.Method
		args   []*Cell
		result string
		after  string
	}

	testCases := []testCase{
		{"push", ast.MethodPush, []*Cell{cell(n(4))}, "[3, 1, 2, 4]", "[3, 1, 2, 4]"},
		{"pop", ast.MethodPop, nil, "2", "[3, 1]"},
		{"len", ast.MethodLen, nil, "3", "[3, 1, 2]"},
		{"empty", ast.MethodEmpty, nil, "false", "[3, 1, 2]"},
		{"find hit", ast.MethodFind, []*Cell{cell(n(1))}, "1", "[3, 1, 2]"},
		{"find miss", ast.MethodFind, []*Cell{cell(n(7))}, "-1", "[3, 1, 2]"},
		{"reverse", ast.MethodReverse, nil, "[2, 1, 3]", "[2, 1, 3]"},
		{"fill extends", ast.MethodFill, []*Cell{cell(n(2)), cell(n(5)), cell(n(0))}, "[3, 1, 0, 0, 0]", "[3, 1, 0, 0, 0]"},
		{"at", ast.MethodAt, []*Cell{cell(n(2))}, "2", "[3, 1, 2]"},
		{"next", ast.MethodNext, nil, "3", "[3, 1, 2]"},
		{"last", ast.MethodLast, nil, "2", "[3, 1, 2]"},
		{"sub all", ast.MethodSub, nil, "[3, 1, 2]", "[3, 1, 2]"},
		{"sub range", ast.MethodSub, []*Cell{cell(n(0)), cell(n(2))}, "[3, 1]", "[3, 1, 2]"},
		{"sub step", ast.MethodSub, []*Cell{cell(n(0)), cell(n(3)), cell(n(2))}, "[3, 2]", "[3, 1, 2]"},
		{"clear", ast.MethodClear, nil, "[]", "[]"},
		{"sort", ast.MethodSort, nil, "[1, 2, 3]", "[1, 2, 3]"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			target := arr(n(3), n(1), n(2))
			res, err := CallMethod(tc.method, target, tc.args)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.Inspect() != tc.result {
				t.Errorf("expected result %s, got %s", tc.result, res.Inspect())
			}
			if target.Inspect() != tc.after {
				t.Errorf("expected target %s, got %s", tc.after, target.Inspect())
			}
		})
	}
}

func TestStringMethods(t *testing.T) {
	type testCase struct {
		name   string
		method ast.Method
		args   []*Cell
		result string
		after  string
	}

	testCases := []testCase{
		{"push", ast.MethodPush, []*Cell{cell(n(1))}, "héllo1", "héllo1"},
		{"pop", ast.MethodPop, nil, "o", "héll"},
		{"len counts runes", ast.MethodLen, nil, "5", "héllo"},
		{"find", ast.MethodFind, []*Cell{cell(s("llo"))}, "2", "héllo"},
		{"reverse", ast.MethodReverse, nil, "olléh", "olléh"},
		{"at", ast.MethodAt, []*Cell{cell(n(1))}, "é", "héllo"},
		{"sub", ast.MethodSub, []*Cell{cell(n(1)), cell(n(3))}, "él", "héllo"},
		{"sort", ast.MethodSort, nil, "hlloé", "hlloé"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			target := cell(s("héllo"))
			res, err := CallMethod(tc.method, target, tc.args)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.Inspect() != tc.result {
				t.Errorf("expected result %q, got %q", tc.result, res.Inspect())
			}
			if target.Inspect() != tc.after {
				t.Errorf("expected target %q, got %q", tc.after, target.Inspect())
			}
		})
	}
}

func TestMethodErrors(t *testing.T) {
	type testCase struct {
		name   string
		target *Cell
		method ast.Method
		args   []*Cell
		msg    string
	}

	testCases := []testCase{
		{"pop empty", arr(), ast.MethodPop, nil, "pop from empty arr"},
		{"index out of range", arr(n(1)), ast.MethodAt, []*Cell{cell(n(1))}, "index 1 out of range [0, 1)"},
		{"fractional index", arr(n(1)), ast.MethodAt, []*Cell{cell(n(0.5))}, "index must be an integer"},
		{"bad sub range", arr(n(1)), ast.MethodSub, []*Cell{cell(n(1)), cell(n(0))}, "invalid range [1, 0)"},
		{"zero sub step", arr(n(1)), ast.MethodSub, []*Cell{cell(n(0)), cell(n(1)), cell(n(0))}, "sub step must be a positive integer"},
		{"mixed sort", arr(n(1), s("a")), ast.MethodSort, nil, "cannot sort arr mixing num and str"},
		{"method on num", cell(n(1)), ast.MethodLen, nil, "method \"len\" is not supported on num"},
		{"fill on str", cell(s("a")), ast.MethodFill, []*Cell{cell(n(0)), cell(n(1)), cell(s("b"))}, "method \"fill\" is not supported on str"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := CallMethod(tc.method, tc.target, tc.args)
			var qe *Error
			if !errors.As(err, &qe) {
				t.Fatalf("expected *Error, got %v", err)
			}
			if qe.Message != tc.msg {
				t.Errorf("expected %q, got %q", tc.msg, qe.Message)
			}
		})
	}
}

func TestMath(t *testing.T) {
	if got, _ := Floor(cell(n(-1.5))); got.Inspect() != "-2" {
		t.Errorf("floor(-1.5): got %s", got.Inspect())
	}
	if got, _ := Ceil(cell(n(-1.5))); got.Inspect() != "-1" {
		t.Errorf("ceil(-1.5): got %s", got.Inspect())
	}
	if got, _ := Round(cell(n(-2.5)), cell(n(0))); got.Inspect() != "-3" {
		t.Errorf("round(-2.5, 0): got %s", got.Inspect())
	}
	if _, err := Floor(cell(s("x"))); err == nil {
		t.Error("floor of str: expected error")
	}
	if _, err := Round(cell(n(1)), cell(n(0.5))); err == nil {
		t.Error("round with fractional places: expected error")
	}

	r := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 100; i++ {
		v := Rand(r).Value.(*Number).Value
		if v < 0 || v >= 1 {
			t.Fatalf("rand out of range: %v", v)
		}
	}
}

func TestEnvironment(t *testing.T) {
	global := NewEnvironment()
	if err := global.Add("x", cell(n(1))); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := global.Add("x", cell(n(2))); err == nil {
		t.Error("expected redeclaration in the same frame to fail")
	}

	local := NewEnclosedEnvironment(global)
	if !local.Has("x") || local.HasLocal("x") {
		t.Error("expected x to be visible but not local")
	}
	if err := local.Add("x", cell(s("shadow"))); err != nil {
		t.Fatalf("shadowing an outer binding: %v", err)
	}
	if c, _ := local.Get("x"); c.Inspect() != "shadow" {
		t.Errorf("expected inner binding to shadow, got %s", c.Inspect())
	}
	if c, _ := global.Get("x"); c.Inspect() != "1" {
		t.Errorf("outer binding changed: %s", c.Inspect())
	}

	local.Remove("x")
	if c, _ := local.Get("x"); c.Inspect() != "1" {
		t.Errorf("expected outer binding after Remove, got %s", c.Inspect())
	}
	if local.ID == global.ID {
		t.Error("expected distinct frame ids")
	}

	global.Add("a", cell(NONE))
	if got := global.Keys(); len(got) != 2 || got[0] != "a" || got[1] != "x" {
		t.Errorf("expected sorted keys [a x], got %v", got)
	}
}

func TestErrorDecoration(t *testing.T) {
	err := Errorf("boom")
	err = WithLine(err, 4)
	err = WithLine(err, 9)
	err = WithFrame(err, "inner", 12)
	err = WithFrame(err, "outer", 20)

	want := "error: boom\n  at line 4\n  in call to inner at line 12\n  in call to outer at line 20"
	var qe *Error
	if !errors.As(err, &qe) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if got := RenderStacktrace(qe); got != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, got)
	}
	if qe.Error() != "boom (line 4)" {
		t.Errorf("unexpected Error(): %q", qe.Error())
	}
}
