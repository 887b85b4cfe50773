package interp

import (
	"io"
	"log/slog"
	"os"

	"qi/internal/ast"
	"qi/internal/evaluator"
	"qi/internal/object"
	"qi/internal/token"
)

type Options struct {
	In     io.Reader
	Out    io.Writer
	Seed   uint64
	Logger *slog.Logger
}

// Machine owns the global environment and the streams one program run uses.
type Machine struct {
	rt     *evaluator.Runtime
	global *object.Environment
	log    *slog.Logger
}

func New(opts Options) *Machine {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	rt := evaluator.NewRuntime(opts.In, opts.Out, opts.Seed)
	rt.Log = opts.Logger
	global := object.NewEnvironment()
	global.Log = opts.Logger
	return &Machine{rt: rt, global: global, log: opts.Logger}
}

func (m *Machine) Global() *object.Environment { return m.global }

// Run executes program as the body of an implicit `main` function that
// returns none. Function declarations at the top level are bound before
// anything runs, so they may be called ahead of their definition.
func (m *Machine) Run(program *ast.Node) (*object.Cell, error) {
	if err := m.hoist(program); err != nil {
		return nil, err
	}

	main := &object.Function{
		Name:   "main",
		Return: object.NONE_OBJ,
		Body:   program,
		Env:    m.global,
	}
	m.log.Debug("run program", slog.Int("statements", len(program.Children)))
	res, err := evaluator.New(m.rt, program, main, m.global).Init()
	m.log.Debug("program finished",
		slog.Any("globals", m.global.Keys()),
		slog.Bool("failed", err != nil))
	return res, err
}

func (m *Machine) hoist(program *ast.Node) error {
	if program.Token.Category != token.GROUP {
		return nil
	}
	for _, n := range program.Children {
		if n.Token.Category != token.DECLARATION || n.Text() != "fn" {
			continue
		}
		fn, err := evaluator.DeclareFunction(n, m.global)
		if err != nil {
			return err
		}
		if err := m.global.Add(fn.Name, object.NewCell(fn)); err != nil {
			return object.WithLine(err, n.Line())
		}
		m.log.Debug("hoist function", slog.String("name", fn.Name))
	}
	return nil
}
