package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/RonGatenio/Spartanizer/lint"
)

var (
	cfgFile string
	timeout time.Duration
	logFile string
	verbose bool

	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "spartan [paths...]",
	Short: "spartan - simplify statement trees to a fixed point",
	Long: `spartan finds and applies the local simplifications of a block of
statements: folding an if/else into a conditional expression, returning a
condition directly, merging a declaration with its first assignment and
more, repeating them until nothing changes.`,
	TraverseChildren: true, // Prioritize subcommands
	SilenceUsage:     true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := readConfig(cfgFile, cmd.Flags().Changed("config")); err != nil {
			return fmt.Errorf("error reading %s: %w", cfgFile, err)
		}
		timeout = viper.GetDuration(timeoutKey)

		l, err := newLogger()
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		_ = logger.Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// no subcommand
		if len(args) == 0 {
			return cmd.Help()
		}
		// Format: spartan [path1 path2 ...] => behaves like the scan subcommand
		return scanCmd.RunE(cmd, args)
	},
}

// Execute runs the command line and exits with status 1 on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", lint.DefaultConfigFile, "Configuration file")
	flags.DurationVar(&timeout, timeoutKey, defaultTimeout, "Give up after this long")
	bindFlagToConfig(flags.Lookup(timeoutKey), timeoutKey)
	flags.StringVar(&logFile, "log-file", "", "Write a rotated JSON log to this file")
	bindFlagToConfig(flags.Lookup("log-file"), logFilenameKey)
	flags.BoolVarP(&verbose, "verbose", "v", false, "Log debug messages")
	bindFlagToConfig(flags.Lookup("verbose"), logVerboseKey)

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(fixCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(rulesCmd)
}

// bindFlagToConfig lets the configuration file and the environment feed a flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}
	cobra.CheckErr(viper.BindPFlag(key, flag))
}
