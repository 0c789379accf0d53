package log

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	scierrors "github.com/YuminosukeSato/exhaustive/pkg/errors"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		out = append(out, entry)
	}
	return out
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"verbose", LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				var cfgErr *scierrors.ConfigurationError
				assert.True(t, scierrors.As(err, &cfgErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestZerologProviderWritesStructuredRecords(t *testing.T) {
	var buf bytes.Buffer
	provider := NewZerologProvider(&buf, LevelInfo)

	logger := provider.GetLoggerWithName("search").With(NKey, 10, KKey, 3)
	logger.Debug("hidden")
	logger.Info("Pipeline iteration finished", WorkersKey, 4, SubsetsKey, 120)

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	entry := entries[0]
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "Pipeline iteration finished", entry["message"])
	assert.Equal(t, "search", entry[ComponentKey])
	assert.Equal(t, 10.0, entry[NKey])
	assert.Equal(t, 3.0, entry[KKey])
	assert.Equal(t, 4.0, entry[WorkersKey])
}

func TestZerologProviderLeadingErrorCarriesStack(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologProvider(&buf, LevelDebug).GetLogger()

	logger.Error("Pipeline iteration failed", scierrors.NewSelectionError(8, 5), NKey, 8)

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0][ErrAttrKey], "requested 8 features")
	assert.Equal(t, 8.0, entries[0][NKey])
	assert.NotEmpty(t, entries[0][StacktraceKey])
	detail, ok := entries[0][ErrAttrKey+".detail"].(map[string]interface{})
	require.True(t, ok, "typed errors should be logged as objects")
	assert.Equal(t, "SelectionError", detail["type"])
}

func TestZerologProviderLevels(t *testing.T) {
	var buf bytes.Buffer
	provider := NewZerologProvider(&buf, LevelWarn)
	logger := provider.GetLogger()
	ctx := context.Background()

	assert.False(t, logger.Enabled(ctx, LevelInfo))
	assert.True(t, logger.Enabled(ctx, LevelError))

	provider.SetLevel(LevelDebug)
	assert.True(t, provider.GetLogger().Enabled(ctx, LevelDebug))
}

func TestSetProviderRoutesWarnings(t *testing.T) {
	provider, _ := NewTestLoggerProvider(LevelDebug)
	SetProvider(provider)
	defer SetProvider(NewZerologProvider(&bytes.Buffer{}, LevelInfo))

	scierrors.Warn(scierrors.NewConvergenceWarning("LogisticRegression", 100, ""))

	assert.True(t, provider.Logger().ContainsMessage("failed to converge"))
	assert.True(t, provider.Logger().ContainsField(ComponentKey, "warnings"))
}

func TestTestLogger(t *testing.T) {
	testLogger, buffer := NewTestLogger(LevelInfo)

	testLogger.Debug("not captured")
	child := testLogger.With(NKey, 5, KKey, 2)
	child.Info("cell done", PassedKey, 7)
	child.Error("cell failed", scierrors.NewInsufficientDataError(2, 5))

	assert.NotContains(t, buffer.String(), "not captured")
	assert.True(t, testLogger.ContainsField(PassedKey, 7.0))
	assert.True(t, testLogger.ContainsField(NKey, 5.0))

	entries, err := testLogger.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "ERROR", entries[1]["level"])
	assert.Contains(t, entries[1][ErrAttrKey], "cannot be split into 5 folds")

	testLogger.Clear()
	assert.Empty(t, buffer.String())
}
