package object

import (
	"math"
	"strings"

	"qi/internal/ast"
)

// Assign copies src into dst. A none-typed destination adopts the source type;
// otherwise both sides must already have the same type.
func Assign(dst, src *Cell) (*Cell, error) {
	if dst.Type() != NONE_OBJ && dst.Type() != src.Type() {
		return nil, Errorf("cannot assign %s to %s", src.Type(), dst.Type())
	}
	dst.Value = copyObject(src.Value)
	return dst, nil
}

// ToBool coerces any value to a boolean.
func ToBool(c *Cell) bool {
	switch v := c.Value.(type) {
	case *None:
		return false
	case *Boolean:
		return v.Value
	case *Number:
		return v.Value != 0
	case *String:
		return v.Value != ""
	case *Array:
		return len(v.Elements) > 0
	case *Function:
		return true
	}
	return false
}

// IsInt reports whether c holds a number with no fractional part.
func IsInt(c *Cell) bool {
	n, ok := c.Value.(*Number)
	return ok && !math.IsInf(n.Value, 0) && n.Value == math.Trunc(n.Value)
}

// Equal compares two values structurally. Values of different types are never equal.
func Equal(a, b Object) bool {
	switch x := a.(type) {
	case *None:
		_, ok := b.(*None)
		return ok
	case *Boolean:
		y, ok := b.(*Boolean)
		return ok && x.Value == y.Value
	case *Number:
		y, ok := b.(*Number)
		return ok && x.Value == y.Value
	case *String:
		y, ok := b.(*String)
		return ok && x.Value == y.Value
	case *Array:
		y, ok := b.(*Array)
		if !ok || len(x.Elements) != len(y.Elements) {
			return false
		}
		for i := range x.Elements {
			if !Equal(x.Elements[i].Value, y.Elements[i].Value) {
				return false
			}
		}
		return true
	case *Function:
		return a == b
	}
	return false
}

// Binary applies a non-assigning operator, or a compound assignment which
// writes the result back into a.
func Binary(op ast.Op, a, b *Cell) (*Cell, error) {
	if base, ok := op.Base(); ok {
		res, err := Binary(base, a, b)
		if err != nil {
			return nil, err
		}
		return Assign(a, res)
	}

	switch op {
	case ast.OpAssign:
		return Assign(a, b)
	case ast.OpEqual:
		return BoolCell(Equal(a.Value, b.Value)), nil
	case ast.OpNotEqual:
		return BoolCell(!Equal(a.Value, b.Value)), nil
	case ast.OpAnd:
		return BoolCell(ToBool(a) && ToBool(b)), nil
	case ast.OpOr:
		return BoolCell(ToBool(a) || ToBool(b)), nil
	case ast.OpAdd:
		return add(a, b)
	case ast.OpMul:
		if s, ok := a.Value.(*String); ok {
			return repeat(s, b)
		}
	case ast.OpGreater, ast.OpLess, ast.OpGreaterEqual, ast.OpLessEqual:
		return compare(op, a, b)
	case ast.OpBitXor, ast.OpBitOr, ast.OpBitAnd, ast.OpShiftRight, ast.OpShiftLeft:
		return bitwise(op, a, b)
	}
	return arithmetic(op, a, b)
}

// Not is the logical negation of the coerced operand.
func Not(a *Cell) *Cell {
	return BoolCell(!ToBool(a))
}

func add(a, b *Cell) (*Cell, error) {
	switch x := a.Value.(type) {
	case *Number:
		if y, ok := b.Value.(*Number); ok {
			return NumberCell(x.Value + y.Value), nil
		}
	case *String:
		return StringCell(x.Value + b.Inspect()), nil
	case *Array:
		if y, ok := b.Value.(*Array); ok {
			out := copyObject(x).(*Array)
			for _, el := range y.Elements {
				out.Elements = append(out.Elements, el.Copy())
			}
			return &Cell{Value: out}, nil
		}
	}
	if _, ok := b.Value.(*String); ok {
		return StringCell(a.Inspect() + b.Inspect()), nil
	}
	return nil, unsupported("+", a, b)
}

func repeat(s *String, times *Cell) (*Cell, error) {
	if !IsInt(times) || times.Value.(*Number).Value < 0 {
		return nil, Errorf("string repetition count must be a non-negative integer")
	}
	return StringCell(strings.Repeat(s.Value, int(times.Value.(*Number).Value))), nil
}

func arithmetic(op ast.Op, a, b *Cell) (*Cell, error) {
	x, ok1 := a.Value.(*Number)
	y, ok2 := b.Value.(*Number)
	if !ok1 || !ok2 {
		return nil, unsupported(op.String(), a, b)
	}
	switch op {
	case ast.OpSub:
		return NumberCell(x.Value - y.Value), nil
	case ast.OpMul:
		return NumberCell(x.Value * y.Value), nil
	case ast.OpPow:
		return NumberCell(math.Pow(x.Value, y.Value)), nil
	case ast.OpDiv:
		return NumberCell(x.Value / y.Value), nil
	case ast.OpTruncDiv:
		return NumberCell(math.Trunc(x.Value / y.Value)), nil
	case ast.OpMod:
		return NumberCell(math.Mod(x.Value, y.Value)), nil
	}
	return nil, Errorf("operator \"%s\" not implemented", op)
}

func compare(op ast.Op, a, b *Cell) (*Cell, error) {
	var c int
	switch x := a.Value.(type) {
	case *Number:
		y, ok := b.Value.(*Number)
		if !ok {
			return nil, unsupported(op.String(), a, b)
		}
		switch {
		case x.Value < y.Value:
			c = -1
		case x.Value > y.Value:
			c = 1
		}
	case *String:
		y, ok := b.Value.(*String)
		if !ok {
			return nil, unsupported(op.String(), a, b)
		}
		c = strings.Compare(x.Value, y.Value)
	default:
		return nil, unsupported(op.String(), a, b)
	}
	switch op {
	case ast.OpGreater:
		return BoolCell(c > 0), nil
	case ast.OpLess:
		return BoolCell(c < 0), nil
	case ast.OpGreaterEqual:
		return BoolCell(c >= 0), nil
	default:
		return BoolCell(c <= 0), nil
	}
}

func bitwise(op ast.Op, a, b *Cell) (*Cell, error) {
	if !IsInt(a) || !IsInt(b) {
		return nil, Errorf("operands of \"%s\" must be integers", op)
	}
	x := int64(a.Value.(*Number).Value)
	y := int64(b.Value.(*Number).Value)
	var r int64
	switch op {
	case ast.OpBitXor:
		r = x ^ y
	case ast.OpBitOr:
		r = x | y
	case ast.OpBitAnd:
		r = x & y
	case ast.OpShiftRight, ast.OpShiftLeft:
		if y < 0 {
			return nil, Errorf("negative shift count %d", y)
		}
		if op == ast.OpShiftRight {
			r = x >> uint64(y)
		} else {
			r = x << uint64(y)
		}
	}
	return NumberCell(float64(r)), nil
}

func unsupported(op string, a, b *Cell) error {
	return Errorf("unsupported operand types for %s: %s and %s", op, a.Type(), b.Type())
}
