package ast

import (
	"qi/internal/token"
)

// Node is one vertex of a program tree. The parser owns it; evaluation only reads it.
type Node struct {
	Token    token.Token
	Children []*Node

	// resolved from Token.Text at construction
	Op      Op
	Control Control
}

// New builds a node and resolves its operator or control kind.
func New(tok token.Token, children ...*Node) *Node {
	n := &Node{Token: tok, Children: children}
	switch tok.Category {
	case token.OPERATOR:
		n.Op = LookupOp(tok.Text)
	case token.CONTROL:
		n.Control = LookupControl(tok.Text)
	}
	return n
}

func (n *Node) Text() string { return n.Token.Text }
func (n *Node) Line() int    { return n.Token.Line }

// Is reports whether the node is a control keyword of the given kind.
func (n *Node) Is(c Control) bool {
	return n.Token.Category == token.CONTROL && n.Control == c
}

// Group builds a sequence node.
func Group(children ...*Node) *Node {
	return New(token.Token{Text: "{}", Category: token.GROUP}, children...)
}

// Operator builds an operator node whose declared operand count comes from the arity table.
func Operator(text string, line int, children ...*Node) *Node {
	ops := LookupOp(text).Arity()
	if ops < 0 {
		ops = len(children)
	}
	return OperatorN(text, ops, line, children...)
}

// OperatorN builds an operator node with an explicit declared operand count.
func OperatorN(text string, ops int, line int, children ...*Node) *Node {
	return New(token.Token{Text: text, Category: token.OPERATOR, Ops: ops, Line: line}, children...)
}

func Keyword(text string, line int, children ...*Node) *Node {
	return New(token.Token{Text: text, Category: token.CONTROL, Line: line}, children...)
}

// Symbol builds a symbol node; children are call arguments.
func Symbol(name string, line int, args ...*Node) *Node {
	return New(token.Token{Text: name, Category: token.SYMBOL, Line: line}, args...)
}

func Number(text string, line int) *Node {
	return New(token.Token{Text: text, Category: token.NUMBER, Line: line})
}

func String(text string, line int) *Node {
	return New(token.Token{Text: text, Category: token.STRING, Line: line})
}

// Declare builds a typed variable declaration such as `num x`.
func Declare(kind, name string, line int) *Node {
	return New(token.Token{Text: kind, Category: token.DECLARATION, Line: line}, Symbol(name, line))
}

// Function builds `fn name(params) -> ret { body }`. Params are declaration nodes.
func Function(name, ret string, line int, params []*Node, body *Node) *Node {
	return New(token.Token{Text: "fn", Category: token.DECLARATION, Line: line},
		Symbol(name, line),
		Symbol(ret, line),
		Group(params...),
		body,
	)
}
