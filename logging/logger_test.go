package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newBufferedLogger(level LogLevel) (*FleetLogger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	cfg := DefaultLoggerConfig()
	cfg.Level = level
	cfg.Output = buf
	return NewLogger(cfg), buf
}

func TestLogLevel_String(t *testing.T) {
	assert.Equal(t, "DEBUG", LogLevelDebug.String())
	assert.Equal(t, "INFO", LogLevelInfo.String())
	assert.Equal(t, "WARN", LogLevelWarn.String())
	assert.Equal(t, "ERROR", LogLevelError.String())
}

func TestFleetLogger_LevelGating(t *testing.T) {
	logger, buf := newBufferedLogger(LogLevelWarn)

	logger.Debug("hidden")
	logger.Info("hidden too")
	logger.Warn("visible")
	logger.Error("also visible")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible")
	assert.Contains(t, out, "also visible")
}

func TestFleetLogger_WithComponent(t *testing.T) {
	logger, buf := newBufferedLogger(LogLevelInfo)

	logger.WithComponent("engine").Info("started")

	var entry map[string]any
	assert.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "engine", entry["component"])

	// The original logger is untouched.
	buf.Reset()
	logger.Info("plain")
	assert.NotContains(t, buf.String(), "component")
}

func TestFleetLogger_WithExecution(t *testing.T) {
	logger, buf := newBufferedLogger(LogLevelInfo)

	logger.WithExecution("linkedin", "exec-42").Info("running")

	var entry map[string]any
	assert.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "linkedin", entry["agent_id"])
	assert.Equal(t, "exec-42", entry["execution_id"])
}

func TestFleetLogger_LogExecution(t *testing.T) {
	logger, buf := newBufferedLogger(LogLevelInfo)

	logger.LogExecution("finance", 2*time.Second, true, "")
	assert.Contains(t, buf.String(), "Agent execution completed")

	buf.Reset()
	logger.LogExecution("finance", time.Second, false, "boom")
	out := buf.String()
	assert.Contains(t, out, "Agent execution failed")
	assert.Contains(t, out, "boom")
}

func TestFleetLogger_LogTimeoutAndRejection(t *testing.T) {
	logger, buf := newBufferedLogger(LogLevelInfo)

	logger.LogTimeout("linkedin", time.Minute)
	assert.Contains(t, buf.String(), "timed out")

	buf.Reset()
	logger.LogRejection("linkedin")
	assert.Contains(t, buf.String(), "rejected")
}

func TestFleetLogger_FormatsArgs(t *testing.T) {
	logger, buf := newBufferedLogger(LogLevelInfo)

	logger.Info("hello %s", "world")
	assert.Contains(t, buf.String(), "hello world")
	assert.True(t, strings.Contains(buf.String(), "timestamp"))
}

func TestNoOpLogger(t *testing.T) {
	var l Logger = NoOpLogger{}

	// Must not panic.
	l.Debug("a")
	l.Info("b", "k", "v")
	l.Warn("c")
	l.Error("d")
}
