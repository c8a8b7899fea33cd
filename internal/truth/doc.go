// Package truth checks that two trees behave the same by running both over
// every input environment of a small domain and comparing the outcomes.
//
// Names read by either tree are the inputs. A name used as a condition or
// as an operand of !, && or || ranges over the booleans, any other name over
// a few small integers. Calls are opaque: a call returns a value determined
// only by its callee and arguments, and the sequence of calls made is part
// of the outcome.
//
// Out of scope (returns Unknown):
//   - floating point literals
//   - branching on the value of a call
//   - assignments to anything but a plain name
//   - inputs whose enumeration exceeds the configured limit
package truth
