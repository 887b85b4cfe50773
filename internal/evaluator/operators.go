package evaluator

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"qi/internal/ast"
	"qi/internal/object"
	"qi/internal/token"
)

func (e *Evaluator) evalOperator(n *ast.Node) (Result, error) {
	if len(n.Children) != n.Token.Ops || (n.Op != ast.OpUnknown && n.Token.Ops != n.Op.Arity()) {
		return Result{}, object.ErrorAt(n.Line(), "incorrect number of children for operation \"%s\"", n.Text())
	}

	switch n.Op {
	case ast.OpUnknown:
		return Result{}, object.ErrorAt(n.Line(), "operator \"%s\" not implemented", n.Text())
	case ast.OpOf:
		return Result{}, object.ErrorAt(n.Line(), "of used outside a for loop")
	case ast.OpDot:
		return e.evalMethodCall(n)
	case ast.OpIn:
		return e.evalInput(n)
	case ast.OpContinue:
		return Result{Signal: Continuing, Value: object.NoneCell(), Line: n.Line()}, nil
	case ast.OpBreak:
		return Result{Signal: Breaking, Value: object.NoneCell(), Line: n.Line()}, nil
	}

	operands, sig, err := e.evalAll(n.Children)
	if err != nil || sig.Signal != Normal {
		return sig, err
	}

	switch n.Op {
	case ast.OpReturn:
		return Result{Signal: Returning, Value: operands[0].Copy(), Line: n.Line()}, nil
	case ast.OpOut:
		return e.write(n, operands[0].Inspect())
	case ast.OpOutl:
		return e.write(n, operands[0].Inspect()+"\n")
	case ast.OpNot:
		return normal(object.Not(operands[0])), nil
	}

	res, err := object.Binary(n.Op, operands[0], operands[1])
	if err != nil {
		return Result{}, object.WithLine(err, n.Line())
	}
	return normal(res), nil
}

func (e *Evaluator) write(n *ast.Node, s string) (Result, error) {
	if _, err := io.WriteString(e.rt.Out, s); err != nil {
		return Result{}, object.ErrorAt(n.Line(), "write failed: %v", err)
	}
	return vacant(), nil
}

// evalMethodCall evaluates the target first, then the method's arguments.
func (e *Evaluator) evalMethodCall(n *ast.Node) (Result, error) {
	target, err := e.Run(n.Children[0])
	if err != nil || target.Signal != Normal {
		return target, err
	}

	call := n.Children[1]
	if call.Token.Category != token.SYMBOL {
		return Result{}, object.ErrorAt(n.Line(), "method call requires a method name")
	}
	method := ast.LookupMethod(call.Text())
	if method == ast.MethodUnknown {
		return Result{}, object.ErrorAt(n.Line(), "unknown method \"%s\"", call.Text())
	}
	if lo, hi := method.Arity(); len(call.Children) < lo || len(call.Children) > hi {
		return Result{}, object.ErrorAt(call.Line(), "%s", arityMessage(method.String(), lo, hi))
	}

	args, sig, err := e.evalAll(call.Children)
	if err != nil || sig.Signal != Normal {
		return sig, err
	}
	res, err := object.CallMethod(method, target.Value, args)
	if err != nil {
		return Result{}, object.WithLine(err, call.Line())
	}
	return normal(res), nil
}

func arityMessage(name string, lo, hi int) string {
	switch {
	case lo != hi:
		return fmt.Sprintf("%s requires %d to %d arguments", name, lo, hi)
	case lo == 0:
		return fmt.Sprintf("%s takes no arguments", name)
	case lo == 1:
		return fmt.Sprintf("%s requires 1 argument", name)
	}
	return fmt.Sprintf("%s requires %d arguments", name, lo)
}

// evalInput reads one line into the target, parsed according to its current type.
func (e *Evaluator) evalInput(n *ast.Node) (Result, error) {
	target, err := e.Run(n.Children[0])
	if err != nil || target.Signal != Normal {
		return target, err
	}

	line, err := e.readLine()
	if err != nil {
		return Result{}, object.ErrorAt(n.Line(), "read failed: %v", err)
	}

	switch target.Value.Value.(type) {
	case *object.Number:
		v, err := strconv.ParseFloat(strings.TrimLeft(line, " \t\n\v\f\r"), 64)
		if err != nil {
			return Result{}, object.ErrorAt(n.Line(), "invalid number in input")
		}
		target.Value.Value = &object.Number{Value: v}
	case *object.String:
		target.Value.Value = &object.String{Value: line}
	default:
		return Result{}, object.ErrorAt(n.Line(), "unsupported input type")
	}
	return vacant(), nil
}

// readLine returns the next input line without its terminator. End of input
// reads as an empty line.
func (e *Evaluator) readLine() (string, error) {
	line, err := e.rt.In.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r"), nil
}
