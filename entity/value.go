package entity

import "fmt"

// Value wraps a raw filter or field value and renders it.
type Value struct {
	Raw any
}

// Empty is true for nil and the empty string, which mean "not filtering".
func (v Value) Empty() bool {
	if v.Raw == nil {
		return true
	}
	str, ok := v.Raw.(string)
	return ok && str == ""
}

// String returns the value as a string.
func (v Value) String() string {
	if v.Raw == nil {
		return ""
	}
	return fmt.Sprintf("%v", v.Raw)
}

// Line represents a single result row as an ordered list of values.
type Line []Value

// Applied records a criterion applied for a named filter during one pass.
type Applied struct {
	Name      string // Filter name
	Criterion string // Criterion id
	Value     any    // Raw filter value
}
