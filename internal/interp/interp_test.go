package interp

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"qi/internal/ast"
	"qi/internal/object"
)

func TestRunHoistsFunctions(t *testing.T) {
	program := ast.Group(
		ast.Operator("outl", 1, ast.Symbol("double", 1, ast.Number("21", 1))),
		ast.Function("double", "num", 2,
			[]*ast.Node{ast.Declare("num", "n", 2)},
			ast.Group(ast.Operator("return", 3,
				ast.Operator("*", 3, ast.Symbol("n", 3), ast.Number("2", 3))))),
	)

	var out bytes.Buffer
	m := New(Options{In: strings.NewReader(""), Out: &out})
	if _, err := m.Run(program); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.String() != "42\n" {
		t.Errorf("expected %q, got %q", "42\n", out.String())
	}
	if !m.Global().HasLocal("double") {
		t.Errorf("expected double to be bound in the global frame")
	}
}

func TestRunResult(t *testing.T) {
	m := New(Options{In: strings.NewReader(""), Out: &bytes.Buffer{}})
	res, err := m.Run(ast.Group(ast.Number("1", 1), ast.String("last", 2)))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Inspect() != "last" {
		t.Errorf("expected last value, got %q", res.Inspect())
	}
}

func TestRunTopLevelReturn(t *testing.T) {
	m := New(Options{In: strings.NewReader(""), Out: &bytes.Buffer{}})
	_, err := m.Run(ast.Group(ast.Operator("return", 4, ast.Number("1", 4))))

	var qe *object.Error
	if !errors.As(err, &qe) {
		t.Fatalf("expected *object.Error, got %v", err)
	}
	if qe.Message != "none function returned non-none object" || qe.Line != 4 {
		t.Errorf("unexpected error: %v", qe)
	}
}

func TestRunDuplicateFunction(t *testing.T) {
	body := ast.Group()
	m := New(Options{In: strings.NewReader(""), Out: &bytes.Buffer{}})
	_, err := m.Run(ast.Group(
		ast.Function("f", "none", 1, nil, body),
		ast.Function("f", "none", 5, nil, body),
	))

	var qe *object.Error
	if !errors.As(err, &qe) {
		t.Fatalf("expected *object.Error, got %v", err)
	}
	if qe.Message != "symbol \"f\" already declared" || qe.Line != 5 {
		t.Errorf("unexpected error: %v", qe)
	}
}

func TestMachinesAreIndependent(t *testing.T) {
	program := ast.Group(ast.Declare("num", "x", 1))

	for i := 0; i < 2; i++ {
		m := New(Options{In: strings.NewReader(""), Out: &bytes.Buffer{}})
		if _, err := m.Run(program); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}
}

func TestSeededRand(t *testing.T) {
	draw := func(seed uint64) string {
		m := New(Options{In: strings.NewReader(""), Out: &bytes.Buffer{}, Seed: seed})
		res, err := m.Run(ast.Group(ast.Symbol("rand", 1)))
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		return res.Inspect()
	}

	if draw(7) != draw(7) {
		t.Errorf("expected the same seed to give the same draw")
	}
}

func TestMachineLogsToItsOwnLogger(t *testing.T) {
	program := ast.Group(
		ast.Function("id", "num", 1,
			[]*ast.Node{ast.Declare("num", "n", 1)},
			ast.Group(ast.Operator("return", 2, ast.Symbol("n", 2)))),
		ast.Symbol("id", 3, ast.Number("1", 3)),
	)

	var logs [2]bytes.Buffer
	for i := range logs {
		logger := slog.New(slog.NewJSONHandler(&logs[i], &slog.HandlerOptions{Level: slog.LevelDebug}))
		m := New(Options{In: strings.NewReader(""), Out: &bytes.Buffer{}, Logger: logger})
		if i == 1 {
			continue
		}
		if _, err := m.Run(program); err != nil {
			t.Fatalf("Run: %v", err)
		}
	}

	for _, msg := range []string{"hoist function", "push scope frame", "binding value", "call function", "return from function"} {
		if !strings.Contains(logs[0].String(), msg) {
			t.Errorf("expected %q in the running machine's log", msg)
		}
	}
	if logs[1].Len() != 0 {
		t.Errorf("expected the idle machine's log to stay empty, got %q", logs[1].String())
	}
}
