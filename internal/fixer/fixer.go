package fixer

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pmezard/go-difflib/difflib"
	"go.uber.org/zap"

	"github.com/RonGatenio/Spartanizer/internal"
	"github.com/RonGatenio/Spartanizer/internal/span"
	"github.com/RonGatenio/Spartanizer/internal/tree"
	"github.com/RonGatenio/Spartanizer/internal/treeio"
	"github.com/RonGatenio/Spartanizer/internal/truth"
)

// ErrNotEquivalent is returned when verification finds an input on which
// the rewritten tree behaves differently.
var ErrNotEquivalent = errors.New("rewritten tree is not equivalent")

// Region selects the statements From..To, inclusive and zero-based, of the
// root block.
type Region struct {
	From, To int
}

func (r Region) String() string {
	return fmt.Sprintf("%d:%d", r.From, r.To)
}

type Fixer struct {
	DryRun  bool
	OnePass bool
	// Verify runs the truth-table check before anything is written.
	Verify bool
	// Region restricts rewriting to part of the root block. It implies a
	// single pass, since each pass renumbers the statements.
	Region *Region
	Out    io.Writer

	engine *internal.Engine
	logger *zap.Logger
}

func New(engine *internal.Engine, dryRun bool) *Fixer {
	return &Fixer{
		DryRun: dryRun,
		Out:    os.Stdout,
		engine: engine,
		logger: zap.NewNop(),
	}
}

func (f *Fixer) WithLogger(logger *zap.Logger) *Fixer {
	if logger != nil {
		f.logger = logger
	}
	return f
}

// Result describes what Fix did to one document.
type Result struct {
	Filename string
	Passes   int
	Changed  bool
	Diff     string
	// Verification is set when Verify is on and the tree changed.
	Verification *truth.VerificationReport
}

// Fix simplifies the tree document at filename and writes it back, unless
// DryRun is set, in which case the unified diff is printed instead.
func (f *Fixer) Fix(filename string) (Result, error) {
	res := Result{Filename: filename}

	t, err := treeio.Load(filename)
	if err != nil {
		return res, fmt.Errorf("failed to load tree: %w", err)
	}
	before := t.Clone()

	res.Passes, err = f.rewrite(t)
	if err != nil {
		return res, err
	}
	if res.Passes == 0 {
		return res, nil
	}
	res.Changed = true

	if f.Verify {
		report := truth.Verify(before, t)
		res.Verification = &report
		f.logger.Debug("verified rewrite",
			zap.String("file", filename),
			zap.Stringer("result", report.Result),
			zap.Stringer("reason", report.Reason),
			zap.Int("environments", report.Environments))
		if report.Result == truth.NotEquivalent {
			return res, fmt.Errorf("%s: %w: %s (input %s)", filename, ErrNotEquivalent, report.Detail, report.Counterexample)
		}
	}

	res.Diff, err = Diff(filename, before, t)
	if err != nil {
		return res, err
	}

	if f.DryRun {
		fmt.Fprint(f.Out, res.Diff)
		return res, nil
	}

	if err := treeio.Save(filename, t); err != nil {
		return res, fmt.Errorf("failed to write file: %w", err)
	}
	fmt.Fprintf(f.Out, "Simplified %s in %d pass(es)\n", filename, res.Passes)
	return res, nil
}

// rewrite returns the number of passes that changed t.
func (f *Fixer) rewrite(t *tree.Tree) (int, error) {
	if f.Region == nil && !f.OnePass {
		passes, err := f.engine.ApplyFixpoint(t)
		if err != nil {
			return passes, fmt.Errorf("failed to simplify: %w", err)
		}
		return passes, nil
	}

	var region *span.Span
	if f.Region != nil {
		kids := t.Kids(t.Root())
		if t.Kind(t.Root()) != tree.Block || f.Region.From < 0 || f.Region.From > f.Region.To || f.Region.To >= len(kids) {
			return 0, fmt.Errorf("region %s outside the %d statements of the root block", f.Region, len(kids))
		}
		sp := span.New(tree.NewIndex(t), t.Root(), f.Region.From, f.Region.To)
		region = &sp
	}
	if f.engine.ApplyOnePass(t, region) == 0 {
		return 0, nil
	}
	return 1, nil
}

// Diff renders the change from before to after as a unified diff of their
// tree documents.
func Diff(filename string, before, after tree.View) (string, error) {
	a, err := treeio.Encode(before)
	if err != nil {
		return "", err
	}
	b, err := treeio.Encode(after)
	if err != nil {
		return "", err
	}
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(a)),
		B:        difflib.SplitLines(string(b)),
		FromFile: filename,
		ToFile:   filename + " (simplified)",
		Context:  3,
	})
}
