package truth

import (
	"fmt"
	"sort"

	set "github.com/hashicorp/go-set/v3"

	"github.com/RonGatenio/Spartanizer/internal/tree"
)

// VerificationResult represents the result of equivalence verification.
type VerificationResult int

const (
	_ VerificationResult = iota
	// Equivalent indicates both trees behave the same on every input.
	Equivalent
	// NotEquivalent indicates an input on which the trees differ.
	NotEquivalent
	// Unknown indicates equivalence cannot be determined.
	Unknown
)

func (r VerificationResult) String() string {
	switch r {
	case Equivalent:
		return "Equivalent"
	case NotEquivalent:
		return "NotEquivalent"
	case Unknown:
		return "Unknown"
	default:
		return "?"
	}
}

// ReasonCode provides a reason for the verification result.
type ReasonCode int

const (
	ReasonNone ReasonCode = iota
	ReasonSameResult
	ReasonDifferentKind
	ReasonDifferentEnv
	ReasonDifferentValue
	ReasonDifferentCalls
	ReasonUnsupported
	ReasonTooManyInputs
)

func (r ReasonCode) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonSameResult:
		return "same result for all environments"
	case ReasonDifferentKind:
		return "different result kinds"
	case ReasonDifferentEnv:
		return "different environments"
	case ReasonDifferentValue:
		return "different return values"
	case ReasonDifferentCalls:
		return "different call sequences"
	case ReasonUnsupported:
		return "construct outside the evaluated subset"
	case ReasonTooManyInputs:
		return "too many input environments"
	default:
		return "unknown"
	}
}

// VerificationReport provides detailed information about verification.
type VerificationReport struct {
	Result VerificationResult
	Reason ReasonCode
	Detail string
	// Counterexample is the input on which the trees differ.
	Counterexample *Env
	Environments   int
}

// Config bounds the enumeration.
type Config struct {
	IntDomain       []int64
	MaxEnvironments int
}

// DefaultConfig returns the default verification configuration.
func DefaultConfig() Config {
	return Config{
		IntDomain:       []int64{-1, 0, 1, 2},
		MaxEnvironments: 1 << 14,
	}
}

// Verifier verifies the equivalence of two trees.
type Verifier struct {
	config Config
}

// NewVerifier creates a new verifier with the given configuration.
func NewVerifier(config Config) *Verifier {
	return &Verifier{config: config}
}

// Verify compares the roots of before and after with the default
// configuration.
func Verify(before, after tree.View) VerificationReport {
	return NewVerifier(DefaultConfig()).Verify(before, before.Root(), after, after.Root())
}

// Verify checks whether statement b of before and statement a of after
// produce the same outcome on every input environment.
func (vf *Verifier) Verify(before tree.View, b tree.NodeID, after tree.View, a tree.NodeID) VerificationReport {
	ins := inputs(before, b, after, a)

	total := 1
	for _, in := range ins {
		total *= vf.domainSize(in.boolean)
		if total > vf.config.MaxEnvironments {
			return VerificationReport{
				Result: Unknown,
				Reason: ReasonTooManyInputs,
				Detail: fmt.Sprintf("%d inputs exceed %d environments", len(ins), vf.config.MaxEnvironments),
			}
		}
	}

	report := VerificationReport{Result: Equivalent, Reason: ReasonSameResult, Environments: total}
	for i := 0; i < total; i++ {
		env := vf.environment(ins, i)
		r1 := Evaluate(before, b, env.Clone())
		r2 := Evaluate(after, a, env.Clone())

		if r1.Kind == ResultUnknown || r2.Kind == ResultUnknown {
			err := r1.Err
			if err == nil {
				err = r2.Err
			}
			report = VerificationReport{
				Result:       Unknown,
				Reason:       ReasonUnsupported,
				Detail:       err.Error(),
				Environments: total,
			}
			continue
		}
		if reason, detail := compare(r1, r2); reason != ReasonSameResult {
			return VerificationReport{
				Result:         NotEquivalent,
				Reason:         reason,
				Detail:         detail,
				Counterexample: env,
				Environments:   total,
			}
		}
	}
	return report
}

func compare(r1, r2 Result) (ReasonCode, string) {
	if r1.Kind != r2.Kind {
		return ReasonDifferentKind, "result kinds differ: " + r1.Kind.String() + " vs " + r2.Kind.String()
	}
	switch r1.Kind {
	case ResultContinue:
		if !r1.Env.Equal(r2.Env) {
			return ReasonDifferentEnv, "environments differ: " + r1.Env.String() + " vs " + r2.Env.String()
		}
	case ResultReturn:
		if (r1.Value == nil) != (r2.Value == nil) || (r1.Value != nil && !r1.Value.Equal(r2.Value)) {
			return ReasonDifferentValue, "return values differ: " + r1.String() + " vs " + r2.String()
		}
	}
	if !callsEqual(r1.Calls, r2.Calls) {
		return ReasonDifferentCalls, fmt.Sprintf("call sequences differ: %v vs %v", r1.Calls, r2.Calls)
	}
	return ReasonSameResult, ""
}

func (vf *Verifier) domainSize(boolean bool) int {
	if boolean {
		return 2
	}
	return len(vf.config.IntDomain)
}

// environment decodes the i-th input assignment, most significant input
// first.
func (vf *Verifier) environment(ins []input, i int) *Env {
	env := NewEnv()
	for j := len(ins) - 1; j >= 0; j-- {
		size := vf.domainSize(ins[j].boolean)
		digit := i % size
		i /= size
		if ins[j].boolean {
			env.Set(ins[j].name, BoolValue{Val: digit == 1})
		} else {
			env.Set(ins[j].name, IntValue{Val: vf.config.IntDomain[digit]})
		}
	}
	return env
}

type input struct {
	name    string
	boolean bool
}

// inputs lists the names either tree uses without declaring them.
func inputs(before tree.View, b tree.NodeID, after tree.View, a tree.NodeID) []input {
	names := set.New[string](8)
	declared := set.New[string](8)
	booleans := set.New[string](8)
	scan := func(v tree.View, root tree.NodeID) {
		for name := range tree.Names(v, root).Items() {
			names.Insert(name)
		}
		tree.Walk(v, root, func(id tree.NodeID) bool {
			switch v.Kind(id) {
			case tree.Fragment:
				declared.Insert(tree.FragmentName(v, id))
			case tree.If, tree.Conditional:
				markBoolean(v, booleans, tree.Kid(v, id, 0))
			case tree.Prefix:
				if tree.OpOf(v, id) == tree.Not {
					markBoolean(v, booleans, tree.Kid(v, id, 0))
				}
			case tree.Infix:
				if tree.OpOf(v, id).IsLogical() {
					markBoolean(v, booleans, v.Kids(id)...)
				}
			}
			return true
		})
	}
	scan(before, b)
	scan(after, a)

	var out []input
	for name := range names.Items() {
		if !declared.Contains(name) {
			out = append(out, input{name: name, boolean: booleans.Contains(name)})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

func markBoolean(v tree.View, booleans *set.Set[string], ids ...tree.NodeID) {
	for _, id := range ids {
		if name, ok := tree.SimpleName(v, id); ok {
			booleans.Insert(name)
		}
	}
}
