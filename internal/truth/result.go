package truth

import (
	"fmt"
	"strings"
)

// ResultKind represents the kind of execution result.
type ResultKind int

const (
	// ResultContinue indicates execution ran off the end of the statement.
	ResultContinue ResultKind = iota
	// ResultReturn indicates a return statement was executed.
	ResultReturn
	// ResultUnknown indicates the result cannot be determined.
	ResultUnknown
)

func (k ResultKind) String() string {
	switch k {
	case ResultContinue:
		return "Continue"
	case ResultReturn:
		return "Return"
	case ResultUnknown:
		return "Unknown"
	default:
		return "?"
	}
}

// Result represents the outcome of evaluating a statement.
type Result struct {
	Kind  ResultKind
	Env   *Env  // valid for Continue
	Value Value // valid for Return, nil for a bare return
	Calls []CallRecord
	Err   error // valid for Unknown
}

// CallRecord represents a function call that was executed.
type CallRecord struct {
	Func string
	Args []Value
}

func (c CallRecord) String() string {
	args := make([]string, len(c.Args))
	for i, arg := range c.Args {
		args[i] = arg.String()
	}
	return c.Func + "(" + strings.Join(args, ", ") + ")"
}

func (r Result) String() string {
	switch r.Kind {
	case ResultContinue:
		return fmt.Sprintf("Continue(%s)", r.Env)
	case ResultReturn:
		if r.Value == nil {
			return "Return()"
		}
		return fmt.Sprintf("Return(%s)", r.Value)
	case ResultUnknown:
		return fmt.Sprintf("Unknown(%v)", r.Err)
	default:
		return "?"
	}
}

func callsEqual(a, b []CallRecord) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].String() != b[i].String() {
			return false
		}
	}
	return true
}
