package secrets

import (
	"context"
	"os"
	"strings"
)

// EnvResolver resolves env://VAR_NAME references from the process environment.
type EnvResolver struct{}

// Scheme returns "env".
func (r *EnvResolver) Scheme() string {
	return "env"
}

// Resolve reads the named environment variable. Unset or empty is an error so
// a missing token fails loudly at startup instead of as a 401 later.
func (r *EnvResolver) Resolve(ctx context.Context, reference string) (string, error) {
	name, ok := strings.CutPrefix(reference, "env://")
	if !ok || name == "" {
		return "", &InvalidReferenceError{Reference: reference, Reason: "expected env://VAR_NAME"}
	}

	value := os.Getenv(name)
	if value == "" {
		return "", &NotFoundError{Reference: reference, Backend: "environment"}
	}
	return value, nil
}

func init() {
	Register(&EnvResolver{})
}
