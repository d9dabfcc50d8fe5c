// Package log provides the logging flags of the safejson CLI.
// Logs go to standard error by default so that they never mix with the
// encoded document on standard output.
package log

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"ocm.software/open-component-model/bindings/go/safejson/cli/internal/flags/enum"
)

// Log format constants
const (
	FormatFlagName = "logformat" // Flag name for log format configuration

	FormatJSON = "json" // JSON format for structured logging, suitable for machine processing
	FormatText = "text" // Human-readable text format, suitable for console output
)

// Log level constants
const (
	LevelFlagName = "loglevel" // Flag name for log level configuration

	LevelDebug = "debug" // Debug level, includes every replaced circular reference
	LevelInfo  = "info"  // Info level for general operational information
	LevelWarn  = "warn"  // Warn level for warning conditions that don't prevent operation
	LevelError = "error" // Error level for error conditions that affect operation
)

// Log output constants
const (
	OutputFlagName = "logoutput" // Flag name for log output configuration

	OutputStdout = "stdout" // Standard output destination, shared with the encoded document
	OutputStderr = "stderr" // Standard error destination
)

// RegisterLoggingFlags adds the FormatFlagName, LevelFlagName and OutputFlagName flags to flagset.
//
//	--loglevel debug --logformat json   # one JSON record per replaced circular reference
func RegisterLoggingFlags(flagset *pflag.FlagSet) {
	enum.Var(flagset, FormatFlagName, []string{
		FormatText,
		FormatJSON,
	}, `set the log output format
   text: human-readable key=value records
   json: one JSON object per record`)

	enum.Var(flagset, LevelFlagName, []string{
		LevelWarn,
		LevelDebug,
		LevelInfo,
		LevelError,
	}, `set the logging level
   debug: also report every replaced circular reference`)

	enum.Var(flagset, OutputFlagName, []string{
		OutputStderr,
		OutputStdout,
	}, `set the log output destination`)
}

// GetBaseLogger returns a logger configured from the logging flags of cmd.
func GetBaseLogger(cmd *cobra.Command) (*slog.Logger, error) {
	level, err := loggerLevelFromCommand(cmd)
	if err != nil {
		return nil, fmt.Errorf("failed to get log level: %w", err)
	}

	format, err := enum.Get(cmd.Flags(), FormatFlagName)
	if err != nil {
		return nil, fmt.Errorf("failed to get the log format from the command flag: %w", err)
	}

	output, err := enum.Get(cmd.Flags(), OutputFlagName)
	if err != nil {
		return nil, fmt.Errorf("failed to get the log output from the command flag: %w", err)
	}

	var w io.Writer
	switch output {
	case OutputStdout:
		w = cmd.OutOrStdout()
	case OutputStderr:
		w = cmd.ErrOrStderr()
	default:
		return nil, fmt.Errorf("invalid log output: %s", output)
	}

	opts := &slog.HandlerOptions{Level: level}
	switch format {
	case FormatJSON:
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case FormatText:
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}
}

func loggerLevelFromCommand(cmd *cobra.Command) (slog.Level, error) {
	name, err := enum.Get(cmd.Flags(), LevelFlagName)
	if err != nil {
		return slog.LevelWarn, err
	}
	switch name {
	case LevelDebug:
		return slog.LevelDebug, nil
	case LevelInfo:
		return slog.LevelInfo, nil
	case LevelWarn:
		return slog.LevelWarn, nil
	case LevelError:
		return slog.LevelError, nil
	default:
		return slog.LevelWarn, fmt.Errorf("invalid log level: %s", name)
	}
}
