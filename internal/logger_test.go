package internal

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"
)

func TestSetLogLevel(t *testing.T) {
	originalLevel := GetLogLevel()
	defer SetLogLevel(originalLevel)

	SetLogLevel(LogLevelDebug)
	if got := GetLogLevel(); got != LogLevelDebug {
		t.Errorf("SetLogLevel() logLevel = %v, want LogLevelDebug", got)
	}

	SetLogLevel(LogLevelError)
	if got := GetLogLevel(); got != LogLevelError {
		t.Errorf("SetLogLevel() logLevel = %v, want LogLevelError", got)
	}
}

func TestSetVerbose(t *testing.T) {
	originalLevel := GetLogLevel()
	defer SetLogLevel(originalLevel)

	SetVerbose(true)
	if got := GetLogLevel(); got != LogLevelDebug {
		t.Errorf("SetVerbose(true) logLevel = %v, want LogLevelDebug", got)
	}

	SetVerbose(false)
	if got := GetLogLevel(); got != LogLevelInfo {
		t.Errorf("SetVerbose(false) logLevel = %v, want LogLevelInfo", got)
	}
}

func TestLogOutputRespectsLevel(t *testing.T) {
	originalLevel := GetLogLevel()
	var buf bytes.Buffer
	SetLogOutput(&buf)
	defer func() {
		SetLogOutput(os.Stderr)
		SetLogLevel(originalLevel)
	}()

	SetLogLevel(LogLevelWarn)
	LogInfo("hidden %d", 1)
	LogWarn("shown %d", 2)
	LogError("shown %d", 3)

	out := buf.String()
	if strings.Contains(out, "hidden 1") {
		t.Errorf("info message logged at warn level: %q", out)
	}
	if !strings.Contains(out, "shown 2") || !strings.Contains(out, "WARN") {
		t.Errorf("warn message missing: %q", out)
	}
	if !strings.Contains(out, "shown 3") || !strings.Contains(out, "ERROR") {
		t.Errorf("error message missing: %q", out)
	}

	buf.Reset()
	SetLogLevel(LogLevelDebug)
	LogDebug("debug %s", "on")
	if !strings.Contains(buf.String(), "debug on") {
		t.Errorf("debug message missing at debug level: %q", buf.String())
	}
}

func TestLogFunctions(t *testing.T) {
	SetLogOutput(io.Discard)
	defer SetLogOutput(os.Stderr)

	LogError("test error message")
	LogWarn("test warning message")
	LogInfo("test info message")
	LogDebug("test debug message")
}

func TestLogLevels(t *testing.T) {
	if LogLevelError >= LogLevelWarn {
		t.Error("LogLevelError should be less than LogLevelWarn")
	}
	if LogLevelWarn >= LogLevelInfo {
		t.Error("LogLevelWarn should be less than LogLevelInfo")
	}
	if LogLevelInfo >= LogLevelDebug {
		t.Error("LogLevelInfo should be less than LogLevelDebug")
	}
}
