package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/RonGatenio/Spartanizer/formatter"
	"github.com/RonGatenio/Spartanizer/internal"
	tt "github.com/RonGatenio/Spartanizer/internal/types"
	"github.com/RonGatenio/Spartanizer/lint"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dirs...]",
	Short: "Report simplifications whenever a tree document is saved",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			args = []string{"."}
		}

		engine, err := lint.New(configurationPath(), internal.WithLogger(logger))
		if err != nil {
			return fmt.Errorf("failed to initialize engine: %w", err)
		}
		for _, rule := range splitList(ignoreRules) {
			engine.IgnoreRule(rule)
		}

		w, err := internal.NewWatcher(engine, logger, args...)
		if err != nil {
			return err
		}
		w.Match = lint.IsDocument
		w.Report = reportTo(cmd.OutOrStdout(), logger)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Fprintf(cmd.OutOrStdout(), "Watching %v, press Ctrl+C to stop\n", args)
		return w.Watch(ctx)
	},
}

func init() {
	watchCmd.Flags().StringVar(&ignoreRules, "ignore", "", "Comma-separated list of rules to ignore")
}

func reportTo(out io.Writer, logger *zap.Logger) func(string, []tt.Issue) {
	return func(filename string, issues []tt.Issue) {
		if len(issues) == 0 {
			fmt.Fprintf(out, "%s: no simplifications\n", filename)
			return
		}
		source, err := internal.ReadSourceCode(filename)
		if err != nil {
			logger.Error("Error reading source file", zap.String("file", filename), zap.Error(err))
			return
		}
		fmt.Fprintln(out, formatter.GenerateFormattedIssue(issues, source))
	}
}
