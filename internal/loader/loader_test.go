package loader

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"qi/internal/ast"
	"qi/internal/token"
)

func TestDecodeLongForm(t *testing.T) {
	src := `
text: "{}"
category: group
children:
  - text: outl
    category: operator
    line: 1
    children:
      - text: "+"
        category: operator
        line: 1
        children:
          - {text: "1", category: number}
          - {text: "2", category: num}
`
	n, err := Decode(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := ast.Group(
		ast.Operator("outl", 1,
			ast.Operator("+", 1, ast.Number("1", 1), ast.Number("2", 1))))
	if diff := cmp.Diff(want, n, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeShorthand(t *testing.T) {
	src := `
group:
  - fn: add
    line: 1
    returns: num
    params:
      - {decl: num, name: a}
      - {decl: num, name: b}
    body:
      - op: return
        line: 2
        args:
          - {op: "+", args: [{sym: a}, {sym: b}]}
  - op: outl
    line: 4
    args:
      - sym: add
        args: [{num: 2}, {num: 3}]
  - ctrl: if
    line: 5
    args:
      - {op: "==", args: [{str: "x"}, {str: "x"}]}
      - group: []
`
	n, err := Decode(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := ast.Group(
		ast.Function("add", "num", 1,
			[]*ast.Node{ast.Declare("num", "a", 1), ast.Declare("num", "b", 1)},
			ast.Group(
				ast.Operator("return", 2,
					ast.Operator("+", 2, ast.Symbol("a", 2), ast.Symbol("b", 2))))),
		ast.Operator("outl", 4,
			ast.Symbol("add", 4, ast.Number("2", 4), ast.Number("3", 4))),
		ast.Keyword("if", 5,
			ast.Operator("==", 5, ast.String("x", 5), ast.String("x", 5)),
			ast.Group()),
	)
	if diff := cmp.Diff(want, n, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeResolvesKinds(t *testing.T) {
	n, err := Decode(strings.NewReader(`{op: "<<=", args: [{sym: x}, {num: 1}]}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if n.Op != ast.OpShiftLeftAssign {
		t.Errorf("expected <<= to resolve to shift-left assign, got %v", n.Op)
	}
	if n.Token.Ops != 2 {
		t.Errorf("expected default operand count 2, got %d", n.Token.Ops)
	}

	n, err = Decode(strings.NewReader(`{op: "+", ops: 3, args: [{num: 1}, {num: 2}]}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if n.Token.Ops != 3 {
		t.Errorf("expected explicit operand count 3, got %d", n.Token.Ops)
	}

	n, err = Decode(strings.NewReader(`{text: "~~", category: operator, children: [{num: 1}]}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if n.Op != ast.OpUnknown || n.Token.Ops != 1 {
		t.Errorf("unknown operator: got op=%v ops=%d", n.Op, n.Token.Ops)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{`{text: x, category: nonsense, line: 7}`, `line 7: unknown category "nonsense"`},
		{`{text: x}`, "node has no category"},
		{`{decl: num, line: 3}`, "line 3: num declaration requires a name"},
		{`{group: [{text: y, category: bogus}], line: 9}`, `line 9: unknown category "bogus"`},
		{``, "empty program"},
		{`[1, 2`, "decode program"},
	}

	for _, tt := range tests {
		_, err := Decode(strings.NewReader(tt.src))
		if err == nil {
			t.Errorf("Decode(%q): expected error", tt.src)
			continue
		}
		if !strings.Contains(err.Error(), tt.want) {
			t.Errorf("Decode(%q): expected error containing %q, got %q", tt.src, tt.want, err)
		}
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	tree := ast.Group(
		ast.Declare("arr", "xs", 1),
		ast.Keyword("while", 2,
			ast.Operator("<", 2,
				ast.Operator(".", 2, ast.Symbol("xs", 2), ast.Symbol("size", 2)),
				ast.Number("3", 2)),
			ast.Group(
				ast.Operator(".", 3, ast.Symbol("xs", 3), ast.Symbol("push", 3, ast.String("a", 3))))),
	)

	var buf bytes.Buffer
	if err := Encode(&buf, tree); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if diff := cmp.Diff(tree, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	if got.Children[1].Token.Category != token.CONTROL {
		t.Errorf("expected control category, got %s", got.Children[1].Token.Category)
	}
}
