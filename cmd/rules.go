package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/RonGatenio/Spartanizer/internal"
	"github.com/RonGatenio/Spartanizer/lint"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the rewrite rules in priority order",
	RunE: func(cmd *cobra.Command, _ []string) error {
		engine, err := lint.New(configurationPath())
		if err != nil {
			return fmt.Errorf("failed to initialize engine: %w", err)
		}
		printRules(cmd.OutOrStdout(), engine.Rules())
		return nil
	},
}

func printRules(out io.Writer, rules []internal.RuleStatus) {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Rule", "Severity", "Enabled"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER})
	for _, rule := range rules {
		enabled := "yes"
		if !rule.Enabled {
			enabled = "no"
		}
		table.Append([]string{rule.Name, strings.ToLower(rule.Severity.String()), enabled})
	}
	table.Render()
}
