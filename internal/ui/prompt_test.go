package ui

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestPromptsConfirm(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"yes", "yes\n", true},
		{"y", "y\n", true},
		{"uppercase yes", "YES\n", true},
		{"no", "no\n", false},
		{"empty defaults to no", "\n", false},
		{"garbage", "maybe\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := NewPromptsFrom(strings.NewReader(tt.input), &out)
			got, err := p.Confirm("Proceed?")
			if err != nil {
				t.Fatalf("Confirm() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Confirm(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if !strings.Contains(out.String(), "Proceed?") {
				t.Errorf("question not written to output: %q", out.String())
			}
		})
	}
}

func TestPromptsAsk(t *testing.T) {
	var out bytes.Buffer
	p := NewPromptsFrom(strings.NewReader("  my-answer \n"), &out)

	got, err := p.Ask("Name")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if got != "my-answer" {
		t.Errorf("Ask() = %q, want %q", got, "my-answer")
	}
}

func TestAskSecretPipedReader(t *testing.T) {
	var out bytes.Buffer
	p := NewPromptsFrom(strings.NewReader("dapi-secret\n"), &out)

	got, err := p.AskSecret("Databricks workspace token")
	if err != nil {
		t.Fatalf("AskSecret() error = %v", err)
	}
	if got != "dapi-secret" {
		t.Errorf("AskSecret() = %q, want %q", got, "dapi-secret")
	}
	if !strings.Contains(out.String(), "Databricks workspace token") {
		t.Errorf("question not written to output: %q", out.String())
	}
}

func TestAskSecretNonTerminalFile(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	if _, err := w.WriteString("hunter2\n"); err != nil {
		t.Fatal(err)
	}
	w.Close()

	var out bytes.Buffer
	p := NewPromptsFrom(r, &out)

	// A pipe is an *os.File but not a terminal, so input is read as a
	// plain line instead of through the hidden-input path.
	got, err := p.AskSecret("Token")
	if err != nil {
		t.Fatalf("AskSecret() error = %v", err)
	}
	if got != "hunter2" {
		t.Errorf("AskSecret() = %q, want %q", got, "hunter2")
	}
}

func TestMockPromptsMatchesPattern(t *testing.T) {
	m := NewMockPrompts(map[string]string{
		`Above IAM roles will be migrated.*`: "Yes",
	})

	ok, err := m.Confirm("Above IAM roles will be migrated to UC storage credentials, please review and confirm.")
	if err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}
	if !ok {
		t.Error("Confirm() = false, want true")
	}
}

func TestMockPromptsLongestPatternWins(t *testing.T) {
	m := NewMockPrompts(map[string]string{
		`.*`:                 "no",
		`.*review and con.*`: "yes",
	})

	ok, err := m.Confirm("please review and confirm")
	if err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}
	if !ok {
		t.Error("longest matching pattern should win")
	}
}

func TestMockPromptsNoMatch(t *testing.T) {
	m := NewMockPrompts(map[string]string{`^exact$`: "yes"})

	if _, err := m.Ask("something else"); err == nil {
		t.Error("expected error for unmatched question")
	}
}
