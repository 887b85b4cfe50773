package loader

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"qi/internal/ast"
	"qi/internal/token"
)

// document is the on-disk shape of one tree node. It accepts the long form
// (text/category/ops/line/children) and the single-key shorthands.
type document struct {
	Text     string      `yaml:"text,omitempty"`
	Category string      `yaml:"category,omitempty"`
	Ops      *int        `yaml:"ops,omitempty"`
	Line     int         `yaml:"line,omitempty"`
	Children []*document `yaml:"children,omitempty"`

	Group   []*document `yaml:"group,omitempty"`
	Op      string      `yaml:"op,omitempty"`
	Ctrl    string      `yaml:"ctrl,omitempty"`
	Sym     string      `yaml:"sym,omitempty"`
	Num     *string     `yaml:"num,omitempty"`
	Str     *string     `yaml:"str,omitempty"`
	Decl    string      `yaml:"decl,omitempty"`
	Name    string      `yaml:"name,omitempty"`
	Fn      string      `yaml:"fn,omitempty"`
	Returns string      `yaml:"returns,omitempty"`
	Params  []*document `yaml:"params,omitempty"`
	Body    []*document `yaml:"body,omitempty"`
	Args    []*document `yaml:"args,omitempty"`
}

// LoadFile reads a program tree from a YAML or JSON file.
func LoadFile(path string) (*ast.Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open program: %w", err)
	}
	defer f.Close()

	n, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return n, nil
}

// Decode reads a single tree document from r.
func Decode(r io.Reader) (*ast.Node, error) {
	var doc document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty program")
		}
		return nil, fmt.Errorf("decode program: %w", err)
	}
	return build(&doc, 0)
}

// DecodeNode builds a tree from an already parsed YAML node, as found
// embedded in a fixture file.
func DecodeNode(node *yaml.Node) (*ast.Node, error) {
	var doc document
	if err := node.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode program: %w", err)
	}
	return build(&doc, node.Line)
}

func build(d *document, parentLine int) (*ast.Node, error) {
	if d == nil {
		return nil, fmt.Errorf("line %d: empty node", parentLine)
	}
	line := d.Line
	if line == 0 {
		line = parentLine
	}

	switch {
	case d.Group != nil:
		children, err := buildAll(d.Group, line)
		if err != nil {
			return nil, err
		}
		return ast.Group(children...), nil
	case d.Op != "":
		children, err := buildAll(d.Args, line)
		if err != nil {
			return nil, err
		}
		if d.Ops != nil {
			return ast.OperatorN(d.Op, *d.Ops, line, children...), nil
		}
		return ast.Operator(d.Op, line, children...), nil
	case d.Ctrl != "":
		children, err := buildAll(d.Args, line)
		if err != nil {
			return nil, err
		}
		return ast.Keyword(d.Ctrl, line, children...), nil
	case d.Sym != "":
		children, err := buildAll(d.Args, line)
		if err != nil {
			return nil, err
		}
		return ast.Symbol(d.Sym, line, children...), nil
	case d.Num != nil:
		return ast.Number(*d.Num, line), nil
	case d.Str != nil:
		return ast.String(*d.Str, line), nil
	case d.Decl != "":
		if d.Name == "" {
			return nil, fmt.Errorf("line %d: %s declaration requires a name", line, d.Decl)
		}
		return ast.Declare(d.Decl, d.Name, line), nil
	case d.Fn != "":
		return buildFunction(d, line)
	}
	return buildLong(d, line)
}

func buildFunction(d *document, line int) (*ast.Node, error) {
	ret := d.Returns
	if ret == "" {
		ret = "none"
	}
	params, err := buildAll(d.Params, line)
	if err != nil {
		return nil, err
	}
	body, err := buildAll(d.Body, line)
	if err != nil {
		return nil, err
	}
	return ast.Function(d.Fn, ret, line, params, ast.Group(body...)), nil
}

func buildLong(d *document, line int) (*ast.Node, error) {
	if d.Category == "" {
		return nil, fmt.Errorf("line %d: node has no category", line)
	}
	cat, ok := token.LookupCategory(d.Category)
	if !ok {
		return nil, fmt.Errorf("line %d: unknown category %q", line, d.Category)
	}
	children, err := buildAll(d.Children, line)
	if err != nil {
		return nil, err
	}

	tok := token.Token{Text: d.Text, Category: cat, Line: line}
	switch cat {
	case token.GROUP:
		// groups have no position of their own; children still inherit
		tok.Line = d.Line
	case token.OPERATOR:
		if d.Ops != nil {
			tok.Ops = *d.Ops
		} else if tok.Ops = ast.LookupOp(d.Text).Arity(); tok.Ops < 0 {
			tok.Ops = len(children)
		}
	}
	return ast.New(tok, children...), nil
}

func buildAll(docs []*document, line int) ([]*ast.Node, error) {
	nodes := make([]*ast.Node, 0, len(docs))
	for _, d := range docs {
		n, err := build(d, line)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}
