package evaluator

import (
	"strconv"

	"qi/internal/ast"
	"qi/internal/object"
	"qi/internal/token"
)

func (e *Evaluator) evalNumber(n *ast.Node) (Result, error) {
	v, err := strconv.ParseFloat(n.Text(), 64)
	if err != nil {
		return Result{}, object.ErrorAt(n.Line(), "invalid number")
	}
	return normal(object.NumberCell(v)), nil
}

// evalDeclaration binds a new variable, or a function, in the current frame
// and yields the bound cell.
func (e *Evaluator) evalDeclaration(n *ast.Node) (Result, error) {
	if n.Text() == object.FUNCTION_OBJ && len(n.Children) > 1 {
		return e.evalFunctionDeclaration(n)
	}

	name, err := declaredName(n)
	if err != nil {
		return Result{}, err
	}
	t, ok := object.LookupType(n.Text())
	if !ok || t == object.NONE_OBJ || t == object.FUNCTION_OBJ {
		return Result{}, object.ErrorAt(n.Line(), "unsupported declaration \"%s\"", n.Text())
	}

	cell := object.NewCell(object.Zero(t))
	// reached again, as in a loop body: start over from the zero value
	if e.decls[name] == n && e.env.HasLocal(name) {
		e.env.Set(name, cell)
		return normal(cell), nil
	}
	if err := e.env.Add(name, cell); err != nil {
		return Result{}, object.WithLine(err, n.Line())
	}
	if e.decls == nil {
		e.decls = make(map[string]*ast.Node)
	}
	e.decls[name] = n
	return normal(cell), nil
}

func (e *Evaluator) evalFunctionDeclaration(n *ast.Node) (Result, error) {
	fn, err := DeclareFunction(n, e.env)
	if err != nil {
		return Result{}, err
	}
	// already hoisted into this frame
	if existing, ok := e.env.Bindings[fn.Name]; ok {
		if prev, isFn := existing.Value.(*object.Function); isFn && prev.Body == fn.Body {
			return normal(existing), nil
		}
	}
	cell := object.NewCell(fn)
	if err := e.env.Add(fn.Name, cell); err != nil {
		return Result{}, object.WithLine(err, n.Line())
	}
	return normal(cell), nil
}

// DeclareFunction builds a function value from a declaration node with children
// [name, return type, params, body]. It does not bind it.
func DeclareFunction(n *ast.Node, env *object.Environment) (*object.Function, error) {
	if len(n.Children) != 4 {
		return nil, object.ErrorAt(n.Line(), "function declaration requires name, return type, parameters and body")
	}
	name, err := declaredName(n)
	if err != nil {
		return nil, err
	}
	ret, ok := object.LookupType(n.Children[1].Text())
	if !ok {
		return nil, object.ErrorAt(n.Children[1].Line(), "unknown return type \"%s\"", n.Children[1].Text())
	}

	params := n.Children[2]
	fn := &object.Function{
		Name:       name,
		Return:     ret,
		Body:       n.Children[3],
		Env:        env,
		Parameters: make([]object.Parameter, 0, len(params.Children)),
	}
	for _, p := range params.Children {
		if p.Token.Category != token.DECLARATION {
			return nil, object.ErrorAt(p.Line(), "parameter must be a declaration")
		}
		pname, err := declaredName(p)
		if err != nil {
			return nil, err
		}
		t, ok := object.LookupType(p.Text())
		if !ok || t == object.NONE_OBJ || t == object.FUNCTION_OBJ {
			return nil, object.ErrorAt(p.Line(), "unsupported parameter type \"%s\"", p.Text())
		}
		fn.Parameters = append(fn.Parameters, object.Parameter{Name: pname, Type: t})
	}
	return fn, nil
}

func declaredName(n *ast.Node) (string, error) {
	if len(n.Children) == 0 || n.Children[0].Token.Category != token.SYMBOL {
		return "", object.ErrorAt(n.Line(), "%s declaration requires a symbol name", n.Text())
	}
	return n.Children[0].Text(), nil
}
