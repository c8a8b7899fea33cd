package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/RonGatenio/Spartanizer/internal"
	tt "github.com/RonGatenio/Spartanizer/internal/types"
	"github.com/RonGatenio/Spartanizer/lint"
)

// initCmd: spartan init
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := initConfigurationFile(cfgFile); err != nil {
			return fmt.Errorf("error initializing config file: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Configuration file created/updated: %s\n", cfgFile)
		return nil
	},
}

// initConfigurationFile writes the default configuration with every rule
// listed at its default severity.
func initConfigurationFile(configurationPath string) error {
	if configurationPath == "" {
		configurationPath = lint.DefaultConfigFile
	}

	config := lint.DefaultConfig()
	for _, rule := range internal.NewEngine(nil).Rules() {
		config.Rules[rule.Name] = tt.ConfigRule{Severity: rule.Severity}
	}
	d, err := yaml.Marshal(config)
	if err != nil {
		return err
	}

	return os.WriteFile(configurationPath, d, 0o644)
}
