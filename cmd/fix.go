package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/RonGatenio/Spartanizer/internal"
	"github.com/RonGatenio/Spartanizer/internal/fixer"
	"github.com/RonGatenio/Spartanizer/lint"
)

var (
	dryRun    bool
	onePass   bool
	maxPasses int
	verify    bool
	region    string
)

var fixCmd = &cobra.Command{
	Use:   "fix [paths...]",
	Short: "Simplify tree documents in place",
	Long: `Rewrite every tree document to its fixed point and save it.

With --region FROM:TO only the statements FROM..TO of the root block are
considered, in a single pass.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return fmt.Errorf("please provide file or directory paths")
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		config := lint.DefaultConfig()
		if path := configurationPath(); path != "" {
			var err error
			if config, err = lint.ParseConfigurationFile(path); err != nil {
				return err
			}
		}
		if maxPasses > 0 {
			config.MaxPasses = maxPasses
		}
		engine := lint.NewWithConfig(config, internal.WithLogger(logger))

		fix := fixer.New(engine, dryRun).WithLogger(logger)
		fix.Out = cmd.OutOrStdout()
		fix.OnePass = onePass
		fix.Verify = verify || config.Verify
		if region != "" {
			r, err := parseRegion(region)
			if err != nil {
				return err
			}
			fix.Region = &r
		}

		return runFix(ctx, logger, fix, args, cmd.ErrOrStderr())
	},
}

func init() {
	fixCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the changes as a diff without saving them")
	fixCmd.Flags().BoolVar(&onePass, "one-pass", false, "Apply a single pass instead of iterating to a fixed point")
	fixCmd.Flags().IntVar(&maxPasses, "max-passes", 0, "Give up when the tree still changes after this many passes (0 derives it from the tree size)")
	fixCmd.Flags().BoolVar(&verify, "verify", false, "Refuse results the truth-table check finds not equivalent")
	fixCmd.Flags().StringVar(&region, "region", "", "Only rewrite the root block statements FROM:TO (zero-based, inclusive)")
}

// parseRegion reads a FROM:TO statement range.
func parseRegion(s string) (fixer.Region, error) {
	from, to, ok := strings.Cut(s, ":")
	if !ok {
		return fixer.Region{}, fmt.Errorf("invalid region %q: want FROM:TO", s)
	}
	f, err := strconv.Atoi(strings.TrimSpace(from))
	if err != nil {
		return fixer.Region{}, fmt.Errorf("invalid region start %q: %w", from, err)
	}
	t, err := strconv.Atoi(strings.TrimSpace(to))
	if err != nil {
		return fixer.Region{}, fmt.Errorf("invalid region end %q: %w", to, err)
	}
	if f < 0 || f > t {
		return fixer.Region{}, fmt.Errorf("invalid region %q: want 0 <= FROM <= TO", s)
	}
	return fixer.Region{From: f, To: t}, nil
}

// documents expands a path argument into the tree documents it names.
func documents(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	return lint.Documents(path)
}

func runFix(ctx context.Context, logger *zap.Logger, fix *fixer.Fixer, paths []string, errOut io.Writer) error {
	var errs []error
	for _, path := range paths {
		files, err := documents(path)
		if err != nil {
			logger.Error("error processing path", zap.String("path", path), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		for _, file := range files {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := fix.Fix(file)
			if err != nil {
				logger.Error("error fixing file", zap.String("file", file), zap.Error(err))
				fmt.Fprintf(errOut, "%s: %v\n", file, err)
				errs = append(errs, err)
				continue
			}
			logger.Debug("fixed file",
				zap.String("file", file),
				zap.Int("passes", res.Passes),
				zap.Bool("changed", res.Changed))
		}
	}
	return errors.Join(errs...)
}
