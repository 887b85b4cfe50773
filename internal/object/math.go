package object

import (
	"math"
	"math/rand/v2"
)

func Floor(c *Cell) (*Cell, error) {
	n, ok := c.Value.(*Number)
	if !ok {
		return nil, Errorf("floor requires num, got %s", c.Type())
	}
	return NumberCell(math.Floor(n.Value)), nil
}

func Ceil(c *Cell) (*Cell, error) {
	n, ok := c.Value.(*Number)
	if !ok {
		return nil, Errorf("ceil requires num, got %s", c.Type())
	}
	return NumberCell(math.Ceil(n.Value)), nil
}

// Round rounds c to the given number of decimal places, halves away from zero.
func Round(c, places *Cell) (*Cell, error) {
	n, ok := c.Value.(*Number)
	if !ok {
		return nil, Errorf("round requires num, got %s", c.Type())
	}
	if !IsInt(places) {
		return nil, Errorf("round precision must be an integer")
	}
	scale := math.Pow(10, places.Value.(*Number).Value)
	return NumberCell(math.Round(n.Value*scale) / scale), nil
}

// Rand returns a number in [0, 1) drawn from r.
func Rand(r *rand.Rand) *Cell {
	return NumberCell(r.Float64())
}
