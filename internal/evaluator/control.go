package evaluator

import (
	"qi/internal/ast"
	"qi/internal/object"
	"qi/internal/token"
)

func (e *Evaluator) evalControl(n *ast.Node) (Result, error) {
	switch n.Control {
	case ast.CtrlIf, ast.CtrlElsif:
		if len(n.Children) != 2 {
			return Result{}, object.ErrorAt(n.Line(), "%s requires a condition and a body", n.Text())
		}
		return e.evalConditional(n)
	case ast.CtrlElse:
		if len(n.Children) != 1 {
			return Result{}, object.ErrorAt(n.Line(), "else requires a body")
		}
		res, err := e.Run(n.Children[0])
		if err != nil || res.Signal != Normal {
			return res, err
		}
		return vacant(), nil
	case ast.CtrlWhile:
		if len(n.Children) != 2 {
			return Result{}, object.ErrorAt(n.Line(), "while requires a condition and a body")
		}
		return e.evalWhile(n)
	case ast.CtrlFor:
		return e.evalFor(n)
	}
	return Result{}, object.ErrorAt(n.Line(), "unsupported control structure \"%s\"", n.Text())
}

// evalConditional yields whether the branch fired, unless the body raised a signal.
func (e *Evaluator) evalConditional(n *ast.Node) (Result, error) {
	cond, err := e.Run(n.Children[0])
	if err != nil || cond.Signal != Normal {
		return cond, err
	}
	if !object.ToBool(cond.Value) {
		return normal(object.BoolCell(false)), nil
	}
	body, err := e.Run(n.Children[1])
	if err != nil || body.Signal != Normal {
		return body, err
	}
	return normal(object.BoolCell(true)), nil
}

func (e *Evaluator) evalWhile(n *ast.Node) (Result, error) {
	for {
		cond, err := e.Run(n.Children[0])
		if err != nil || cond.Signal != Normal {
			return cond, err
		}
		if !object.ToBool(cond.Value) {
			return vacant(), nil
		}

		body, err := e.Run(n.Children[1])
		if err != nil {
			return Result{}, err
		}
		switch body.Signal {
		case Breaking:
			return vacant(), nil
		case Returning:
			return body, nil
		}
	}
}

// evalFor runs `for x of range(...)`. The induction variable lives in the
// current frame for the duration of the loop.
func (e *Evaluator) evalFor(n *ast.Node) (Result, error) {
	if len(n.Children) != 2 {
		return Result{}, object.ErrorAt(n.Line(), "invalid for loop structure")
	}
	of := n.Children[0]
	if of.Token.Category != token.OPERATOR || of.Op != ast.OpOf {
		return Result{}, object.ErrorAt(of.Line(), "must have of in for loop expression")
	}
	if len(of.Children) != 2 {
		return Result{}, object.ErrorAt(of.Line(), "of must have 2 children")
	}

	variable := of.Children[0]
	if variable.Token.Category != token.SYMBOL || len(variable.Children) != 0 {
		return Result{}, object.ErrorAt(variable.Line(), "left hand operand must be a symbol")
	}
	name := variable.Text()
	if e.env.Has(name) {
		return Result{}, object.ErrorAt(variable.Line(), "for loop variable already defined")
	}

	rng := of.Children[1]
	if rng.Token.Category != token.SYMBOL || rng.Text() != "range" {
		return Result{}, object.ErrorAt(of.Line(), "right hand operand must be range(...)")
	}
	if len(rng.Children) < 1 || len(rng.Children) > 3 {
		return Result{}, object.ErrorAt(rng.Line(), "range must have 1-3 arguments")
	}

	bounds := make([]float64, 0, 3)
	for _, arg := range rng.Children {
		res, err := e.Run(arg)
		if err != nil || res.Signal != Normal {
			return res, err
		}
		if !object.IsInt(res.Value) {
			return Result{}, object.ErrorAt(arg.Line(), "range arg must be integers")
		}
		bounds = append(bounds, res.Value.Value.(*object.Number).Value)
	}

	start, end, step := 0.0, 0.0, 1.0
	switch len(bounds) {
	case 1:
		end = bounds[0]
	case 2:
		start, end = bounds[0], bounds[1]
	case 3:
		start, end, step = bounds[0], bounds[1], bounds[2]
	}
	if step == 0 {
		return Result{}, object.ErrorAt(rng.Line(), "range step must not be zero")
	}

	it := object.NumberCell(start)
	if err := e.env.Add(name, it); err != nil {
		return Result{}, object.WithLine(err, variable.Line())
	}
	defer e.env.Remove(name)

	for {
		cur, ok := it.Value.(*object.Number)
		if !ok || cur.Value >= end {
			return vacant(), nil
		}

		body, err := e.Run(n.Children[1])
		if err != nil {
			return Result{}, err
		}
		switch body.Signal {
		case Breaking:
			return vacant(), nil
		case Returning:
			return body, nil
		}

		if _, err := object.Binary(ast.OpAddAssign, it, object.NumberCell(step)); err != nil {
			return Result{}, object.WithLine(err, variable.Line())
		}
	}
}
