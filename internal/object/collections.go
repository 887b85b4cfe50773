package object

import (
	"slices"
	"strings"

	"qi/internal/ast"
)

// CallMethod runs a collection method on target. Arity has already been checked
// by the caller. Mutating methods change target in place and return it.
func CallMethod(m ast.Method, target *Cell, args []*Cell) (*Cell, error) {
	switch v := target.Value.(type) {
	case *Array:
		return arrayMethod(m, target, v, args)
	case *String:
		return stringMethod(m, target, v, args)
	}
	return nil, Errorf("method \"%s\" is not supported on %s", m, target.Type())
}

func arrayMethod(m ast.Method, target *Cell, arr *Array, args []*Cell) (*Cell, error) {
	switch m {
	case ast.MethodPush:
		arr.Elements = append(arr.Elements, args[0].Copy())
		return target, nil
	case ast.MethodPop:
		if len(arr.Elements) == 0 {
			return nil, Errorf("pop from empty arr")
		}
		last := arr.Elements[len(arr.Elements)-1]
		arr.Elements = arr.Elements[:len(arr.Elements)-1]
		return last, nil
	case ast.MethodLen:
		return NumberCell(float64(len(arr.Elements))), nil
	case ast.MethodEmpty:
		return BoolCell(len(arr.Elements) == 0), nil
	case ast.MethodFind:
		for i, el := range arr.Elements {
			if Equal(el.Value, args[0].Value) {
				return NumberCell(float64(i)), nil
			}
		}
		return NumberCell(-1), nil
	case ast.MethodReverse:
		slices.Reverse(arr.Elements)
		return target, nil
	case ast.MethodFill:
		start, end, err := span(args[0], args[1], -1)
		if err != nil {
			return nil, err
		}
		for len(arr.Elements) < end {
			arr.Elements = append(arr.Elements, NoneCell())
		}
		for i := start; i < end; i++ {
			arr.Elements[i] = args[2].Copy()
		}
		return target, nil
	case ast.MethodAt:
		i, err := index(args[0], len(arr.Elements))
		if err != nil {
			return nil, err
		}
		return arr.Elements[i], nil
	case ast.MethodNext:
		if len(arr.Elements) == 0 {
			return nil, Errorf("next on empty arr")
		}
		return arr.Elements[0], nil
	case ast.MethodLast:
		if len(arr.Elements) == 0 {
			return nil, Errorf("last on empty arr")
		}
		return arr.Elements[len(arr.Elements)-1], nil
	case ast.MethodSub:
		picked, err := subIndices(args, len(arr.Elements))
		if err != nil {
			return nil, err
		}
		out := &Array{Elements: make([]*Cell, 0, len(picked))}
		for _, i := range picked {
			out.Elements = append(out.Elements, arr.Elements[i].Copy())
		}
		return &Cell{Value: out}, nil
	case ast.MethodClear:
		arr.Elements = nil
		return target, nil
	case ast.MethodSort:
		return target, sortArray(arr)
	}
	return nil, Errorf("unknown method \"%s\"", m)
}

func stringMethod(m ast.Method, target *Cell, s *String, args []*Cell) (*Cell, error) {
	runes := []rune(s.Value)
	switch m {
	case ast.MethodPush:
		target.Value = &String{Value: s.Value + args[0].Inspect()}
		return target, nil
	case ast.MethodPop:
		if len(runes) == 0 {
			return nil, Errorf("pop from empty str")
		}
		target.Value = &String{Value: string(runes[:len(runes)-1])}
		return StringCell(string(runes[len(runes)-1])), nil
	case ast.MethodLen:
		return NumberCell(float64(len(runes))), nil
	case ast.MethodEmpty:
		return BoolCell(len(runes) == 0), nil
	case ast.MethodFind:
		needle, ok := args[0].Value.(*String)
		if !ok {
			return nil, Errorf("find on str requires a str argument, got %s", args[0].Type())
		}
		i := strings.Index(s.Value, needle.Value)
		if i < 0 {
			return NumberCell(-1), nil
		}
		return NumberCell(float64(len([]rune(s.Value[:i])))), nil
	case ast.MethodReverse:
		slices.Reverse(runes)
		target.Value = &String{Value: string(runes)}
		return target, nil
	case ast.MethodAt:
		i, err := index(args[0], len(runes))
		if err != nil {
			return nil, err
		}
		return StringCell(string(runes[i])), nil
	case ast.MethodNext:
		if len(runes) == 0 {
			return nil, Errorf("next on empty str")
		}
		return StringCell(string(runes[0])), nil
	case ast.MethodLast:
		if len(runes) == 0 {
			return nil, Errorf("last on empty str")
		}
		return StringCell(string(runes[len(runes)-1])), nil
	case ast.MethodSub:
		picked, err := subIndices(args, len(runes))
		if err != nil {
			return nil, err
		}
		var sb strings.Builder
		for _, i := range picked {
			sb.WriteRune(runes[i])
		}
		return StringCell(sb.String()), nil
	case ast.MethodClear:
		target.Value = &String{Value: ""}
		return target, nil
	case ast.MethodSort:
		slices.Sort(runes)
		target.Value = &String{Value: string(runes)}
		return target, nil
	}
	return nil, Errorf("method \"%s\" is not supported on str", m)
}

func index(c *Cell, length int) (int, error) {
	if !IsInt(c) {
		return 0, Errorf("index must be an integer")
	}
	i := int(c.Value.(*Number).Value)
	if i < 0 || i >= length {
		return 0, Errorf("index %d out of range [0, %d)", i, length)
	}
	return i, nil
}

// span validates a [start, end) pair. A non-negative limit bounds end.
func span(startCell, endCell *Cell, limit int) (int, int, error) {
	if !IsInt(startCell) || !IsInt(endCell) {
		return 0, 0, Errorf("range bounds must be integers")
	}
	start := int(startCell.Value.(*Number).Value)
	end := int(endCell.Value.(*Number).Value)
	if start < 0 || end < start || (limit >= 0 && end > limit) {
		return 0, 0, Errorf("invalid range [%d, %d)", start, end)
	}
	return start, end, nil
}

// subIndices expands the overloaded sub() arguments: (), (start), (start, end), (start, end, step).
func subIndices(args []*Cell, length int) ([]int, error) {
	start, end, step := 0, length, 1
	switch len(args) {
	case 0:
	case 1:
		var err error
		start, end, err = span(args[0], NumberCell(float64(length)), length)
		if err != nil {
			return nil, err
		}
	default:
		var err error
		start, end, err = span(args[0], args[1], length)
		if err != nil {
			return nil, err
		}
		if len(args) == 3 {
			if !IsInt(args[2]) || args[2].Value.(*Number).Value <= 0 {
				return nil, Errorf("sub step must be a positive integer")
			}
			step = int(args[2].Value.(*Number).Value)
		}
	}
	picked := make([]int, 0, (end-start+step-1)/step)
	for i := start; i < end; i += step {
		picked = append(picked, i)
	}
	return picked, nil
}

func sortArray(arr *Array) error {
	if len(arr.Elements) == 0 {
		return nil
	}
	kind := arr.Elements[0].Type()
	if kind != NUMBER_OBJ && kind != STRING_OBJ {
		return Errorf("cannot sort arr of %s", kind)
	}
	for _, el := range arr.Elements {
		if el.Type() != kind {
			return Errorf("cannot sort arr mixing %s and %s", kind, el.Type())
		}
	}
	slices.SortStableFunc(arr.Elements, func(a, b *Cell) int {
		if kind == STRING_OBJ {
			return strings.Compare(a.Value.(*String).Value, b.Value.(*String).Value)
		}
		x, y := a.Value.(*Number).Value, b.Value.(*Number).Value
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	})
	return nil
}
