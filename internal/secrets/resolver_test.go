package secrets

import (
	"context"
	"errors"
	"testing"
)

type fakeResolver struct {
	scheme string
	value  string
	err    error
}

func (f *fakeResolver) Scheme() string { return f.scheme }

func (f *fakeResolver) Resolve(ctx context.Context, ref string) (string, error) {
	return f.value, f.err
}

func TestResolveDispatchesByScheme(t *testing.T) {
	clearRegistry()
	defer clearRegistry()

	Register(&fakeResolver{scheme: "fake", value: "plaintext"})

	got, err := Resolve(context.Background(), "fake://whatever")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got != "plaintext" {
		t.Errorf("Resolve() = %q, want %q", got, "plaintext")
	}
}

func TestResolveUnsupportedScheme(t *testing.T) {
	clearRegistry()
	defer clearRegistry()

	_, err := Resolve(context.Background(), "vault://foo")

	var unsupported *UnsupportedSchemeError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedSchemeError, got %v", err)
	}
	if unsupported.Scheme != "vault" {
		t.Errorf("Scheme = %q, want vault", unsupported.Scheme)
	}
}

func TestResolvePlainValuePassesThrough(t *testing.T) {
	clearRegistry()
	defer clearRegistry()

	got, err := Resolve(context.Background(), "dapi1234567890")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got != "dapi1234567890" {
		t.Errorf("plain token should pass through unchanged, got %q", got)
	}
}

func TestParseScheme(t *testing.T) {
	tests := []struct {
		ref  string
		want string
	}{
		{"aws-sm://us-east-1/name", "aws-sm"},
		{"env://TOKEN", "env"},
		{"no-scheme-here", ""},
		{"://empty", ""},
	}

	for _, tt := range tests {
		if got := parseScheme(tt.ref); got != tt.want {
			t.Errorf("parseScheme(%q) = %q, want %q", tt.ref, got, tt.want)
		}
	}
}
