package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestInitVerboseEnablesDebug(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Verbose: true, Stderr: &buf})

	Debug("debug message", "key", "value")
	if !strings.Contains(buf.String(), "debug message") {
		t.Errorf("expected debug message in output, got %q", buf.String())
	}
}

func TestInitDefaultSuppressesDebug(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Stderr: &buf})

	Debug("hidden")
	Info("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug message should be suppressed, got %q", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("info message should appear, got %q", out)
	}
}

func TestInitJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{JSONFormat: true, Stderr: &buf})

	Info("structured", "role_arn", "arn:aws:iam::123456789012:role/x")

	out := buf.String()
	if !strings.Contains(out, `"msg":"structured"`) {
		t.Errorf("expected JSON output, got %q", out)
	}
	if !strings.Contains(out, `"role_arn"`) {
		t.Errorf("expected role_arn attr, got %q", out)
	}
}

func TestSetOutput(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)

	Warn("careful")
	if !strings.Contains(buf.String(), "careful") {
		t.Errorf("expected warning in output, got %q", buf.String())
	}
}
