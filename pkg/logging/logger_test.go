package logging

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerTextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(LoggerConfig{
		MinLevel: DEBUG,
		Format:   TextFormat,
		Outputs:  []io.Writer{&buf},
	})
	require.NoError(t, err)
	defer logger.Close()

	logger.Info("module loaded")
	logger.Sync()

	assert.Contains(t, buf.String(), "[INFO]")
	assert.Contains(t, buf.String(), "module loaded")
}

func TestLoggerJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(LoggerConfig{
		MinLevel: DEBUG,
		Format:   JSONFormat,
		Outputs:  []io.Writer{&buf},
	})
	require.NoError(t, err)
	defer logger.Close()

	logger.ErrorWithFields("breakpoint set failed", map[string]interface{}{"module": "main", "line": 12})
	logger.Sync()

	var entry LogEntry
	line := strings.TrimSpace(buf.String())
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "ERROR", entry.Level)
	assert.Equal(t, "main", entry.Fields["module"])
}

func TestLoggerRespectsMinLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(LoggerConfig{
		MinLevel: WARN,
		Format:   TextFormat,
		Outputs:  []io.Writer{&buf},
	})
	require.NoError(t, err)
	defer logger.Close()

	logger.Debug("should not appear")
	logger.Info("should not appear either")
	logger.Warn("this one counts")
	logger.Sync()

	out := buf.String()
	assert.NotContains(t, out, "should not appear")
	assert.Contains(t, out, "this one counts")
}

func TestContextLoggerCarriesSessionID(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(LoggerConfig{
		MinLevel: DEBUG,
		Format:   TextFormat,
		Outputs:  []io.Writer{&buf},
	})
	require.NoError(t, err)
	defer logger.Close()

	sid := NewSessionID()
	require.NotEmpty(t, sid)

	ctxLogger := logger.WithSessionID(sid).WithField("module", "main")
	ctxLogger.Info("paused at breakpoint")
	logger.Sync()

	out := buf.String()
	assert.Contains(t, out, sid)
	assert.Contains(t, out, "paused at breakpoint")
}
