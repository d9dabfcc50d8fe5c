package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterLoggingFlags(t *testing.T) {
	cmd := &cobra.Command{}
	RegisterLoggingFlags(cmd.PersistentFlags())

	for name, def := range map[string]string{
		FormatFlagName: FormatText,
		LevelFlagName:  LevelWarn,
		OutputFlagName: OutputStderr,
	} {
		flag := cmd.PersistentFlags().Lookup(name)
		require.NotNil(t, flag, name)
		assert.Equal(t, def, flag.DefValue, name)
	}
}

func TestGetBaseLogger(t *testing.T) {
	tests := []struct {
		name       string
		format     string
		level      string
		output     string
		wantStdout bool
		wantDebug  bool
	}{
		{
			name:      "json to stderr",
			format:    FormatJSON,
			level:     LevelDebug,
			output:    OutputStderr,
			wantDebug: true,
		},
		{
			name:       "text to stdout",
			format:     FormatText,
			level:      LevelInfo,
			output:     OutputStdout,
			wantStdout: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			cmd := &cobra.Command{}
			cmd.SetOut(&stdout)
			cmd.SetErr(&stderr)
			RegisterLoggingFlags(cmd.Flags())

			require.NoError(t, cmd.Flags().Set(FormatFlagName, tt.format))
			require.NoError(t, cmd.Flags().Set(LevelFlagName, tt.level))
			require.NoError(t, cmd.Flags().Set(OutputFlagName, tt.output))

			logger, err := GetBaseLogger(cmd)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDebug, logger.Enabled(context.Background(), slog.LevelDebug))

			logger.Info("hello")
			written, silent := &stderr, &stdout
			if tt.wantStdout {
				written, silent = &stdout, &stderr
			}
			assert.Contains(t, written.String(), "hello")
			assert.Zero(t, silent.Len())

			if tt.format == FormatJSON {
				var record map[string]any
				require.NoError(t, json.Unmarshal(written.Bytes(), &record))
				assert.Equal(t, "hello", record["msg"])
			}
		})
	}
}

func TestLoggerLevelFromCommand(t *testing.T) {
	tests := []struct {
		level       string
		expectLevel slog.Level
	}{
		{level: LevelDebug, expectLevel: slog.LevelDebug},
		{level: LevelInfo, expectLevel: slog.LevelInfo},
		{level: LevelWarn, expectLevel: slog.LevelWarn},
		{level: LevelError, expectLevel: slog.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cmd := &cobra.Command{}
			RegisterLoggingFlags(cmd.Flags())
			require.NoError(t, cmd.Flags().Set(LevelFlagName, tt.level))

			level, err := loggerLevelFromCommand(cmd)
			assert.NoError(t, err)
			assert.Equal(t, tt.expectLevel, level)
		})
	}

	t.Run("unregistered flags", func(t *testing.T) {
		_, err := loggerLevelFromCommand(&cobra.Command{})
		assert.Error(t, err)
	})
}
