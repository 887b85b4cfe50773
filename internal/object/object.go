package object

import (
	"fmt"
	"strconv"
	"strings"

	"qi/internal/ast"
)

type ObjectType string

const (
	NONE_OBJ     = "none"
	BOOLEAN_OBJ  = "bool"
	NUMBER_OBJ   = "num"
	STRING_OBJ   = "str"
	ARRAY_OBJ    = "arr"
	FUNCTION_OBJ = "fn"
)

var typeNames = map[string]ObjectType{
	NONE_OBJ:     NONE_OBJ,
	BOOLEAN_OBJ:  BOOLEAN_OBJ,
	NUMBER_OBJ:   NUMBER_OBJ,
	STRING_OBJ:   STRING_OBJ,
	ARRAY_OBJ:    ARRAY_OBJ,
	FUNCTION_OBJ: FUNCTION_OBJ,
}

// LookupType resolves a declared type name such as "num" or "none".
func LookupType(name string) (ObjectType, bool) {
	t, ok := typeNames[name]
	return t, ok
}

// Object is one of None, Boolean, Number, String, Array or Function.
type Object interface {
	Type() ObjectType
	Inspect() string
}

var (
	NONE  = &None{}
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
)

type None struct{}

func (n *None) Type() ObjectType { return NONE_OBJ }
func (n *None) Inspect() string  { return "none" }

type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ObjectType { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string  { return strconv.FormatBool(b.Value) }

type Number struct {
	Value float64
}

func (n *Number) Type() ObjectType { return NUMBER_OBJ }
func (n *Number) Inspect() string  { return strconv.FormatFloat(n.Value, 'f', -1, 64) }

type String struct {
	Value string
}

func (s *String) Type() ObjectType { return STRING_OBJ }
func (s *String) Inspect() string  { return s.Value }

// Array elements are cells so `a.at(0) = x` writes through.
type Array struct {
	Elements []*Cell
}

func (a *Array) Type() ObjectType { return ARRAY_OBJ }
func (a *Array) Inspect() string {
	parts := make([]string, len(a.Elements))
	for i, el := range a.Elements {
		if s, ok := el.Value.(*String); ok {
			parts[i] = strconv.Quote(s.Value)
			continue
		}
		parts[i] = el.Inspect()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

type Parameter struct {
	Name string
	Type ObjectType
}

// Function is a user-defined function. Env is the frame it was declared in.
type Function struct {
	Name       string
	Parameters []Parameter
	Return     ObjectType
	Body       *ast.Node
	Env        *Environment
}

func (f *Function) Type() ObjectType { return FUNCTION_OBJ }
func (f *Function) Inspect() string {
	params := make([]string, len(f.Parameters))
	for i, p := range f.Parameters {
		params[i] = fmt.Sprintf("%s %s", p.Type, p.Name)
	}
	return fmt.Sprintf("fn %s(%s) %s", f.Name, strings.Join(params, ", "), f.Return)
}

// Cell is a mutable slot holding one value. Variables, array elements and
// intermediate results are all cells; assignment replaces the held value.
type Cell struct {
	Value Object
}

func NewCell(v Object) *Cell {
	if v == nil {
		v = NONE
	}
	return &Cell{Value: v}
}

func (c *Cell) Type() ObjectType { return c.Value.Type() }
func (c *Cell) Inspect() string  { return c.Value.Inspect() }

// Copy returns an independently owned copy. Arrays are copied element by element.
func (c *Cell) Copy() *Cell {
	return &Cell{Value: copyObject(c.Value)}
}

func copyObject(o Object) Object {
	arr, ok := o.(*Array)
	if !ok {
		// scalars and functions are never mutated in place
		return o
	}
	elements := make([]*Cell, len(arr.Elements))
	for i, el := range arr.Elements {
		elements[i] = el.Copy()
	}
	return &Array{Elements: elements}
}

// Zero returns the initial value of a freshly declared variable of type t.
func Zero(t ObjectType) Object {
	switch t {
	case BOOLEAN_OBJ:
		return FALSE
	case NUMBER_OBJ:
		return &Number{Value: 0}
	case STRING_OBJ:
		return &String{Value: ""}
	case ARRAY_OBJ:
		return &Array{}
	default:
		return NONE
	}
}

func NativeBool(b bool) *Boolean {
	if b {
		return TRUE
	}
	return FALSE
}

func NumberCell(v float64) *Cell { return &Cell{Value: &Number{Value: v}} }
func StringCell(s string) *Cell  { return &Cell{Value: &String{Value: s}} }
func BoolCell(b bool) *Cell      { return &Cell{Value: NativeBool(b)} }
func NoneCell() *Cell            { return &Cell{Value: NONE} }
