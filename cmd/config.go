package cmd

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/RonGatenio/Spartanizer/lint"
)

const (
	envPrefix = "SPARTAN"

	timeoutKey       = "timeout"
	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logVerboseKey    = "log.verbose"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultTimeout       = 5 * time.Minute
	defaultLogLevel      = "info"
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

func init() {
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	viper.SetDefault(timeoutKey, defaultTimeout)
	viper.SetDefault(logFilenameKey, "")
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logVerboseKey, false)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)
}

// readConfig loads the configuration file into viper. The default file is
// optional; a file named on the command line must exist.
func readConfig(path string, explicit bool) error {
	viper.SetConfigFile(path)
	err := viper.ReadInConfig()
	if err == nil {
		return nil
	}
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) || (!explicit && errors.Is(err, os.ErrNotExist)) {
		return nil
	}
	return err
}

// configurationPath returns the file the engine is configured from, or ""
// when the default file is absent.
func configurationPath() string {
	if _, err := os.Stat(cfgFile); err != nil && cfgFile == lint.DefaultConfigFile {
		return ""
	}
	return cfgFile
}

// newLogger logs warnings to stderr, or everything with verbose on, and
// every entry at the configured level to the rotated log file when one is set.
func newLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(viper.GetString(logLevelKey))
	if err != nil {
		return nil, err
	}
	verbose := viper.GetBool(logVerboseKey)
	if verbose {
		level = zapcore.DebugLevel
	}

	consoleLevel := zapcore.WarnLevel
	if verbose {
		consoleLevel = zapcore.DebugLevel
	}
	consoleEncoder := zap.NewDevelopmentEncoderConfig()
	consoleEncoder.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cores := []zapcore.Core{
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(consoleEncoder),
			zapcore.Lock(os.Stderr),
			consoleLevel,
		),
	}

	if filename := viper.GetString(logFilenameKey); filename != "" {
		writer := &lumberjack.Logger{
			Filename:   filename,
			MaxSize:    viper.GetInt(logMaxSizeKey),
			MaxBackups: viper.GetInt(logMaxBackupsKey),
			MaxAge:     viper.GetInt(logMaxAgeKey),
			Compress:   viper.GetBool(logCompressKey),
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(writer),
			level,
		))
	}

	return zap.New(zapcore.NewTee(cores...)), nil
}
