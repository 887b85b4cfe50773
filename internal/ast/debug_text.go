package ast

import (
	"fmt"
	"strings"

	"qi/internal/token"
)

// RenderText produces an indented, human-centric view of a tree for -debug-ast.
func RenderText(node *Node, indent int) string {
	if node == nil {
		return "nil"
	}
	var sb strings.Builder
	renderText(&sb, node, indent)
	return strings.TrimSuffix(sb.String(), "\n")
}

func renderText(sb *strings.Builder, n *Node, indent int) {
	sp := strings.Repeat("  ", indent)

	switch n.Token.Category {
	case token.GROUP:
		sb.WriteString(sp + "{\n")
		for _, c := range n.Children {
			renderText(sb, c, indent+1)
		}
		sb.WriteString(sp + "}\n")
		return
	case token.STRING:
		fmt.Fprintf(sb, "%s%q", sp, n.Token.Text)
	case token.OPERATOR:
		fmt.Fprintf(sb, "%s(%s/%d)", sp, n.Token.Text, n.Token.Ops)
	default:
		sb.WriteString(sp + n.Token.Text)
	}
	if n.Token.Line > 0 {
		fmt.Fprintf(sb, "  @%d", n.Token.Line)
	}
	sb.WriteString("\n")
	for _, c := range n.Children {
		renderText(sb, c, indent+1)
	}
}
