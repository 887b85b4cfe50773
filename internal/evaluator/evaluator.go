package evaluator

import (
	"bufio"
	"io"
	"log/slog"
	"math/rand/v2"

	"qi/internal/ast"
	"qi/internal/object"
	"qi/internal/token"
)

// Signal is the control state a step of evaluation hands back to its caller.
type Signal int

const (
	Normal Signal = iota
	Returning
	Continuing
	Breaking
)

func (s Signal) String() string {
	switch s {
	case Returning:
		return "return"
	case Continuing:
		return "continue"
	case Breaking:
		return "break"
	}
	return "normal"
}

// Result is the outcome of evaluating one node. For Returning, Value is the
// returned value; Line is the line of the node that raised the signal.
type Result struct {
	Signal Signal
	Value  *object.Cell
	Line   int
}

func normal(c *object.Cell) Result {
	return Result{Signal: Normal, Value: c}
}

func vacant() Result {
	return normal(object.NoneCell())
}

// Runtime holds what every activation of one program run shares: the
// standard streams, the random source and the logger.
type Runtime struct {
	In   *bufio.Reader
	Out  io.Writer
	Rand *rand.Rand
	Log  *slog.Logger
}

func NewRuntime(in io.Reader, out io.Writer, seed uint64) *Runtime {
	return &Runtime{
		In:   bufio.NewReader(in),
		Out:  out,
		Rand: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		Log:  slog.Default(),
	}
}

// Evaluator is one activation: a single run over a function body.
type Evaluator struct {
	rt    *Runtime
	tree  *ast.Node
	fn    *object.Function
	env   *object.Environment
	decls map[string]*ast.Node // declaration node that bound each name in env
}

// New prepares an activation of fn over tree, binding into env.
func New(rt *Runtime, tree *ast.Node, fn *object.Function, env *object.Environment) *Evaluator {
	return &Evaluator{rt: rt, tree: tree, fn: fn, env: env}
}

// Init runs the body once and enforces the return contract of the enclosing
// function. It returns the returned value, or the last value the body produced.
func (e *Evaluator) Init() (*object.Cell, error) {
	res, err := e.Run(e.tree)
	if err != nil {
		return nil, err
	}

	switch res.Signal {
	case Continuing:
		return nil, object.ErrorAt(res.Line, "continue called outside loop")
	case Breaking:
		return nil, object.ErrorAt(res.Line, "break called outside loop")
	case Returning:
		if e.fn.Return == object.NONE_OBJ {
			return nil, object.ErrorAt(res.Line, "none function returned non-none object")
		}
		if res.Value.Type() != e.fn.Return {
			return nil, object.ErrorAt(res.Line, "function return type does not match returned object type")
		}
		return res.Value, nil
	}

	if e.fn.Return != object.NONE_OBJ {
		return nil, object.Errorf("non-none function returned none")
	}
	return res.Value, nil
}

// Run evaluates one node.
func (e *Evaluator) Run(n *ast.Node) (Result, error) {
	switch n.Token.Category {
	case token.GROUP:
		return e.evalGroup(n)
	case token.CONTROL:
		return e.evalControl(n)
	case token.OPERATOR:
		return e.evalOperator(n)
	case token.SYMBOL:
		return e.evalSymbol(n)
	case token.NUMBER:
		return e.evalNumber(n)
	case token.STRING:
		return normal(object.StringCell(n.Text())), nil
	case token.DECLARATION:
		return e.evalDeclaration(n)
	}
	return vacant(), nil
}

// evalGroup runs children in order and stops at the first live signal.
// elsif/else consult the boolean the preceding if/elsif left behind.
func (e *Evaluator) evalGroup(n *ast.Node) (Result, error) {
	last := vacant()
	fired := false

	for i, child := range n.Children {
		if child.Is(ast.CtrlElsif) || child.Is(ast.CtrlElse) {
			if i == 0 || !(n.Children[i-1].Is(ast.CtrlIf) || n.Children[i-1].Is(ast.CtrlElsif)) {
				return Result{}, object.ErrorAt(child.Line(), "%s must follow if or elsif", child.Text())
			}
			if fired {
				if child.Is(ast.CtrlElsif) {
					last = normal(object.BoolCell(true))
				}
				continue
			}
		}

		res, err := e.Run(child)
		if err != nil {
			return Result{}, err
		}
		if res.Signal != Normal {
			return res, nil
		}
		last = res
		fired = false
		if child.Is(ast.CtrlIf) || child.Is(ast.CtrlElsif) {
			b, ok := res.Value.Value.(*object.Boolean)
			fired = ok && b.Value
		}
	}
	return last, nil
}

// evalAll evaluates nodes left to right. A non-Normal Result means a signal
// interrupted evaluation and must be propagated.
func (e *Evaluator) evalAll(nodes []*ast.Node) ([]*object.Cell, Result, error) {
	vals := make([]*object.Cell, 0, len(nodes))
	for _, node := range nodes {
		res, err := e.Run(node)
		if err != nil {
			return nil, Result{}, err
		}
		if res.Signal != Normal {
			return nil, res, nil
		}
		vals = append(vals, res.Value)
	}
	return vals, Result{}, nil
}
