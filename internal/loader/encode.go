package loader

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"qi/internal/ast"
	"qi/internal/token"
)

// Encode writes n to w in the long form that Decode reads back.
func Encode(w io.Writer, n *ast.Node) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(toDocument(n)); err != nil {
		return fmt.Errorf("encode program: %w", err)
	}
	return enc.Close()
}

func toDocument(n *ast.Node) *document {
	d := &document{
		Text:     n.Text(),
		Category: string(n.Token.Category),
		Line:     n.Line(),
	}
	if n.Token.Category == token.OPERATOR {
		ops := n.Token.Ops
		d.Ops = &ops
	}
	for _, c := range n.Children {
		d.Children = append(d.Children, toDocument(c))
	}
	return d
}
