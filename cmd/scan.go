package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/RonGatenio/Spartanizer/formatter"
	"github.com/RonGatenio/Spartanizer/internal"
	tt "github.com/RonGatenio/Spartanizer/internal/types"
	"github.com/RonGatenio/Spartanizer/lint"
)

// ErrIssuesFound makes the command exit with status 1 after printing.
var ErrIssuesFound = errors.New("issues found")

var (
	ignoreRules    string
	scanJsonOutput bool
	outPath        string
	showStats      bool
	cacheDir       string
)

var scanCmd = &cobra.Command{
	Use:   "scan [paths...]",
	Short: "Report the simplifications of tree documents",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return fmt.Errorf("please provide file or directory paths")
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		opts := []internal.Option{internal.WithLogger(logger)}
		if cacheDir != "" {
			var deps []string
			if path := configurationPath(); path != "" {
				deps = append(deps, path)
			}
			cache, err := internal.NewCache(cacheDir, deps...)
			if err != nil {
				return err
			}
			opts = append(opts, internal.WithCache(cache))
		}

		engine, err := lint.New(configurationPath(), opts...)
		if err != nil {
			return fmt.Errorf("failed to initialize engine: %w", err)
		}
		for _, rule := range splitList(ignoreRules) {
			engine.IgnoreRule(rule)
		}

		return runScan(ctx, logger, engine, args, cmd.OutOrStdout())
	},
}

func init() {
	scanCmd.Flags().StringVar(&ignoreRules, "ignore", "", "Comma-separated list of rules to ignore")
	scanCmd.Flags().BoolVar(&scanJsonOutput, "json", false, "Output issues in JSON format")
	scanCmd.Flags().StringVarP(&outPath, "output", "o", "", "Output path (when using JSON)")
	scanCmd.Flags().BoolVar(&showStats, "stats", false, "Print the number of issues per rule")
	scanCmd.Flags().StringVar(&cacheDir, "cache", "", "Reuse the results of unchanged documents kept in this directory")
}

func splitList(list string) []string {
	var out []string
	for _, item := range strings.Split(list, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func runScan(ctx context.Context, logger *zap.Logger, engine lint.LintEngine, paths []string, out io.Writer) error {
	issues, err := lint.ProcessFiles(ctx, logger, engine, paths, lint.ProcessFile)
	if err != nil {
		return fmt.Errorf("error processing files: %w", err)
	}

	if err := printIssues(logger, out, issues, scanJsonOutput, outPath); err != nil {
		return err
	}
	if showStats {
		printStats(out, issues)
	}

	if len(issues) > 0 {
		return ErrIssuesFound
	}
	return nil
}

func groupByFile(issues []tt.Issue) (map[string][]tt.Issue, []string) {
	issuesByFile := make(map[string][]tt.Issue)
	for _, issue := range issues {
		issuesByFile[issue.Filename] = append(issuesByFile[issue.Filename], issue)
	}

	sortedFiles := make([]string, 0, len(issuesByFile))
	for filename := range issuesByFile {
		sortedFiles = append(sortedFiles, filename)
	}
	sort.Strings(sortedFiles)
	return issuesByFile, sortedFiles
}

type jsonPosition struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

type jsonIssue struct {
	Rule       string       `json:"rule"`
	Severity   string       `json:"severity"`
	Message    string       `json:"message"`
	Original   string       `json:"original,omitempty"`
	Suggestion string       `json:"suggestion,omitempty"`
	Note       string       `json:"note,omitempty"`
	Start      jsonPosition `json:"start"`
	End        jsonPosition `json:"end"`
}

func toJSON(issue tt.Issue) jsonIssue {
	return jsonIssue{
		Rule:       issue.Rule,
		Severity:   strings.ToLower(issue.Severity.String()),
		Message:    issue.Message,
		Original:   issue.Original,
		Suggestion: issue.Suggestion,
		Note:       issue.Note,
		Start:      jsonPosition{issue.Start.Line, issue.Start.Column},
		End:        jsonPosition{issue.End.Line, issue.End.Column},
	}
}

func printIssues(logger *zap.Logger, out io.Writer, issues []tt.Issue, isJson bool, jsonOutput string) error {
	issuesByFile, sortedFiles := groupByFile(issues)

	if !isJson {
		// text output
		for _, filename := range sortedFiles {
			sourceCode, err := internal.ReadSourceCode(filename)
			if err != nil {
				logger.Error("Error reading source file", zap.String("file", filename), zap.Error(err))
				continue
			}
			fmt.Fprintln(out, formatter.GenerateFormattedIssue(issuesByFile[filename], sourceCode))
		}
		return nil
	}

	// JSON output
	doc := make(map[string][]jsonIssue, len(issuesByFile))
	for filename, fileIssues := range issuesByFile {
		for _, issue := range fileIssues {
			doc[filename] = append(doc[filename], toJSON(issue))
		}
	}
	d, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshalling issues to JSON: %w", err)
	}
	if jsonOutput == "" {
		fmt.Fprintln(out, string(d))
		return nil
	}
	if err := os.WriteFile(jsonOutput, d, 0o644); err != nil {
		return fmt.Errorf("error writing JSON output file: %w", err)
	}
	return nil
}

// printStats prints how many issues each rule reported.
func printStats(out io.Writer, issues []tt.Issue) {
	counts := make(map[string]int)
	for _, issue := range issues {
		counts[issue.Rule]++
	}
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Rule", "Issues"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})
	for _, name := range names {
		table.Append([]string{name, strconv.Itoa(counts[name])})
	}
	table.SetFooter([]string{"Total", strconv.Itoa(len(issues))})
	table.Render()
}
