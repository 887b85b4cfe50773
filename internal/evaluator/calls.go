package evaluator

import (
	"log/slog"

	"qi/internal/ast"
	"qi/internal/object"
)

// evalSymbol resolves a variable, a user function call or a builtin call.
func (e *Evaluator) evalSymbol(n *ast.Node) (Result, error) {
	name := n.Text()
	if cell, ok := e.env.Get(name); ok {
		fn, isFn := cell.Value.(*object.Function)
		if !isFn {
			return normal(cell), nil
		}
		return e.applyFunction(n, fn)
	}
	if b := ast.LookupBuiltin(name); b != ast.BuiltinNone {
		return e.applyBuiltin(n, b)
	}
	return Result{}, object.ErrorAt(n.Line(), "symbol \"%s\" is undefined", name)
}

// applyFunction evaluates the arguments in the caller's scope, binds copies of
// them in a fresh frame under the function's defining environment and runs a
// new activation over the body.
func (e *Evaluator) applyFunction(n *ast.Node, fn *object.Function) (Result, error) {
	if len(n.Children) != len(fn.Parameters) {
		return Result{}, object.ErrorAt(n.Line(), "incorrect number of children for function \"%s\"", n.Text())
	}

	args, sig, err := e.evalAll(n.Children)
	if err != nil || sig.Signal != Normal {
		return sig, err
	}

	frame := object.NewEnclosedEnvironment(fn.Env)
	for i, p := range fn.Parameters {
		param := args[i].Copy()
		if param.Type() != p.Type {
			return Result{}, object.ErrorAt(n.Children[i].Line(), "parameter types don't match")
		}
		if err := frame.Add(p.Name, param); err != nil {
			return Result{}, object.WithLine(err, n.Line())
		}
	}

	e.rt.Log.Debug("call function",
		slog.String("name", fn.Name),
		slog.Int("args", len(args)),
		slog.Int("line", n.Line()))

	ret, err := New(e.rt, fn.Body, fn, frame).Init()
	if err != nil {
		return Result{}, object.WithFrame(err, fn.Name, n.Line())
	}

	e.rt.Log.Debug("return from function",
		slog.String("name", fn.Name),
		slog.Any("type", ret.Type()))
	return normal(ret), nil
}

func (e *Evaluator) applyBuiltin(n *ast.Node, b ast.Builtin) (Result, error) {
	if len(n.Children) != b.Arity() {
		return Result{}, object.ErrorAt(n.Line(), "%s", arityMessage(n.Text(), b.Arity(), b.Arity()))
	}
	args, sig, err := e.evalAll(n.Children)
	if err != nil || sig.Signal != Normal {
		return sig, err
	}

	var res *object.Cell
	switch b {
	case ast.BuiltinFloor:
		res, err = object.Floor(args[0])
	case ast.BuiltinCeil:
		res, err = object.Ceil(args[0])
	case ast.BuiltinRound:
		res, err = object.Round(args[0], args[1])
	case ast.BuiltinRand:
		res = object.Rand(e.rt.Rand)
	}
	if err != nil {
		return Result{}, object.WithLine(err, n.Line())
	}
	return normal(res), nil
}
