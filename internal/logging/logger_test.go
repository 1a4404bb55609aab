package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsoleHandlerFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelDebug, Output: &buf})

	logger.Info("device reachable", "host", "192.168.4.1", "port", 80)

	line := buf.String()
	assert.Contains(t, line, "[info]")
	assert.Contains(t, line, "device reachable")
	assert.Contains(t, line, "host=192.168.4.1")
	assert.Contains(t, line, "port=80")
}

func TestWithComponentPromotedToHeader(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelInfo, Output: &buf})

	logger.WithComponent("netbind").Info("bound")

	assert.Contains(t, buf.String(), "netbind: bound")
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelWarn, Output: &buf})

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
}

func TestSetLevelDynamic(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelInfo, Output: &buf})

	logger.Debug("first")
	logger.SetLevel(LevelDebug)
	logger.Debug("second")

	out := buf.String()
	assert.NotContains(t, out, "first")
	assert.Contains(t, out, "second")
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelInfo, Output: &buf, JSON: true})

	logger.Info("hello", "k", "v")

	line := strings.TrimSpace(buf.String())
	assert.True(t, strings.HasPrefix(line, "{"))
	assert.Contains(t, line, `"msg":"hello"`)
	assert.Contains(t, line, `"k":"v"`)
}

func TestQuotedAttrValues(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelInfo, Output: &buf})

	logger.Info("msg", "cause", "connection refused")

	assert.Contains(t, buf.String(), `cause="connection refused"`)
}
