package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func capture(t *testing.T, verboseMode bool) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(verboseMode)
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	})
	return &buf
}

func TestSetVerbose(t *testing.T) {
	capture(t, false)
	assert.False(t, IsVerbose())

	SetVerbose(true)
	assert.True(t, IsVerbose())

	SetVerbose(false)
	assert.False(t, IsVerbose())
}

func TestLevels_WhenVerbose(t *testing.T) {
	tests := []struct {
		name string
		log  func(string, ...any)
		want string
	}{
		{"debug", Debug, "[DEBUG] hello world\n"},
		{"info", Info, "[INFO] hello world\n"},
		{"warn", Warn, "[WARN] hello world\n"},
		{"error", Error, "[ERROR] hello world\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := capture(t, true)
			tt.log("hello %s", "world")
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestLevels_WhenNotVerbose(t *testing.T) {
	buf := capture(t, false)

	Debug("debug")
	Info("info")
	Warn("warn")
	Section("section")
	Elapsed("stage", time.Now())

	assert.Empty(t, buf.String())
}

func TestError_AlwaysPrints(t *testing.T) {
	buf := capture(t, false)

	Error("failed: %d", 42)

	assert.Equal(t, "[ERROR] failed: 42\n", buf.String())
}

func TestSection_WhenVerbose(t *testing.T) {
	buf := capture(t, true)

	Section("Ingest")

	assert.Equal(t, "\n=== Ingest ===\n", buf.String())
}

func TestElapsed_WhenVerbose(t *testing.T) {
	buf := capture(t, true)

	Elapsed("embed", time.Now())

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "[DEBUG] embed took "))
}
