package truth

import (
	"fmt"
	"sort"
	"strings"
)

// Value is the result of evaluating an expression.
type Value interface {
	isValue()
	String() string
	Equal(other Value) bool
}

// IntValue represents an integer.
type IntValue struct {
	Val int64
}

func (IntValue) isValue() {}
func (v IntValue) String() string {
	return fmt.Sprintf("%d", v.Val)
}

func (v IntValue) Equal(other Value) bool {
	if o, ok := other.(IntValue); ok {
		return v.Val == o.Val
	}
	return false
}

// BoolValue represents a boolean.
type BoolValue struct {
	Val bool
}

func (BoolValue) isValue() {}
func (v BoolValue) String() string {
	return fmt.Sprintf("%t", v.Val)
}

func (v BoolValue) Equal(other Value) bool {
	if o, ok := other.(BoolValue); ok {
		return v.Val == o.Val
	}
	return false
}

// StringValue represents a string.
type StringValue struct {
	Val string
}

func (StringValue) isValue() {}
func (v StringValue) String() string {
	return fmt.Sprintf("%q", v.Val)
}

func (v StringValue) Equal(other Value) bool {
	if o, ok := other.(StringValue); ok {
		return v.Val == o.Val
	}
	return false
}

// NullValue is the null literal. Declared but uninitialized variables hold
// it as well.
type NullValue struct{}

func (NullValue) isValue() {}
func (NullValue) String() string {
	return "null"
}

func (NullValue) Equal(other Value) bool {
	_, ok := other.(NullValue)
	return ok
}

// OpaqueValue is the result of a call, identified by the call itself.
type OpaqueValue struct {
	Call string
}

func (OpaqueValue) isValue() {}
func (v OpaqueValue) String() string {
	return fmt.Sprintf("<%s>", v.Call)
}

func (v OpaqueValue) Equal(other Value) bool {
	if o, ok := other.(OpaqueValue); ok {
		return v.Call == o.Call
	}
	return false
}

// Env maps variable names to values.
type Env struct {
	vars map[string]Value
}

// NewEnv creates a new empty environment.
func NewEnv() *Env {
	return &Env{vars: make(map[string]Value)}
}

// Get retrieves the value of a variable.
func (e *Env) Get(name string) (Value, bool) {
	v, ok := e.vars[name]
	return v, ok
}

func (e *Env) Set(name string, val Value) {
	e.vars[name] = val
}

func (e *Env) Delete(name string) {
	delete(e.vars, name)
}

// Clone creates a copy of the environment. Values are immutable.
func (e *Env) Clone() *Env {
	c := &Env{vars: make(map[string]Value, len(e.vars))}
	for k, v := range e.vars {
		c.vars[k] = v
	}
	return c
}

// Keys returns the variable names in sorted order.
func (e *Env) Keys() []string {
	keys := make([]string, 0, len(e.vars))
	for k := range e.vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Equal checks if two environments have the same variable bindings.
func (e *Env) Equal(other *Env) bool {
	if e == nil || other == nil {
		return e == other
	}
	if len(e.vars) != len(other.vars) {
		return false
	}
	for k, v := range e.vars {
		o, ok := other.vars[k]
		if !ok || !v.Equal(o) {
			return false
		}
	}
	return true
}

func (e *Env) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, k := range e.Keys() {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s: %s", k, e.vars[k])
	}
	sb.WriteByte('}')
	return sb.String()
}
