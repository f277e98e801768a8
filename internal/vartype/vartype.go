// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package vartype provides values that remember whether they have been set. Weather
// backends use them for metrics that are not available for every location and hour.
package vartype

import (
	"fmt"
)

// Placeholder is returned by String for unset values.
const Placeholder = "-"

type (
	VarFloat64 = Variable[float64]
	VarBool    = Variable[bool]
)

// Variable holds a value and tracks whether it has been set.
type Variable[T any] struct {
	value T
	isset bool
}

// NewVariable returns a Variable that is set to value.
func NewVariable[T any](value T) Variable[T] {
	return Variable[T]{
		isset: true,
		value: value,
	}
}

func (v *Variable[T]) Reset() {
	var zero T
	v.value = zero
	v.isset = false
}

func (v *Variable[T]) Set(val T) {
	v.value = val
	v.isset = true
}

func (v Variable[T]) Value() T {
	return v.value
}

func (v Variable[T]) IsSet() bool {
	return v.isset
}

func (v Variable[T]) String() string {
	if !v.isset {
		return Placeholder
	}
	return fmt.Sprint(v.value)
}
