package secrets

import (
	"context"
	"errors"
	"testing"
)

func TestEnvResolve(t *testing.T) {
	t.Setenv("UCMIGRATE_TEST_SECRET", "dapi-from-env")

	r := &EnvResolver{}
	got, err := r.Resolve(context.Background(), "env://UCMIGRATE_TEST_SECRET")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got != "dapi-from-env" {
		t.Errorf("Resolve() = %q, want %q", got, "dapi-from-env")
	}
}

func TestEnvResolveUnsetVariable(t *testing.T) {
	t.Setenv("UCMIGRATE_TEST_SECRET", "")

	r := &EnvResolver{}
	_, err := r.Resolve(context.Background(), "env://UCMIGRATE_TEST_SECRET")

	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError for unset variable, got %v", err)
	}
	if notFound.Backend != "environment" {
		t.Errorf("Backend = %q, want environment", notFound.Backend)
	}
}

func TestEnvResolveMalformedReference(t *testing.T) {
	tests := []struct {
		name string
		ref  string
	}{
		{"missing variable name", "env://"},
		{"wrong scheme", "ssm://TOKEN"},
	}

	r := &EnvResolver{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Resolve(context.Background(), tt.ref)

			var invalid *InvalidReferenceError
			if !errors.As(err, &invalid) {
				t.Fatalf("expected InvalidReferenceError, got %v", err)
			}
		})
	}
}
