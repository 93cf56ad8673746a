package logging

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/contre95/monkeypress/src/features/config"
	"github.com/stretchr/testify/assert"
)

func TestLevel(t *testing.T) {
	assert.Equal(t, log.DebugLevel, Level("debug"))
	assert.Equal(t, log.WarnLevel, Level("warn"))
	assert.Equal(t, log.ErrorLevel, Level("error"))
	assert.Equal(t, log.InfoLevel, Level("info"))
	assert.Equal(t, log.InfoLevel, Level(""))
}

func TestNewLogger_JSONWithPrefix(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, config.Logger{Enabled: true, Level: "warn", Format: "json"})

	logger.Info("hidden")
	logger.Warn("Dangling link", "link", 7)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "Dangling link")
	assert.Contains(t, out, "Monkeypress")
}

func TestNewLogger_Disabled(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, config.Logger{Enabled: false, Level: "debug"})
	logger.Error("boom")
	assert.Empty(t, buf.String())
}
