package model

import (
	"fmt"
	"math"
	"math/rand"
)

const (
	minPrice = 5.0
	maxPrice = 50.0
)

// Price is an immutable monetary value attached to a task at creation.
// It always holds a value in [5.00, 50.00] with two-decimal precision.
type Price struct {
	value float64
}

// NewPrice generates a random price within the allowed range.
func NewPrice() Price {
	v := minPrice + rand.Float64()*(maxPrice-minPrice)
	return Price{value: roundCents(v)}
}

// PriceFrom reconstructs a price from a persisted value, re-validating the range.
func PriceFrom(v float64) (Price, error) {
	v = roundCents(v)
	if v < minPrice || v > maxPrice {
		return Price{}, fmt.Errorf("%w: price %.2f out of range [%.2f, %.2f]", ErrInvalidArgument, v, minPrice, maxPrice)
	}

	return Price{value: v}, nil
}

// Value returns the numeric value of the price.
func (p Price) Value() float64 {
	return p.value
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
