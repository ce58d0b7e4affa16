package uc

import (
	"context"
	"fmt"
	"os"

	"github.com/databricks/databricks-sdk-go"

	"github.com/databrickslabs/ucmigrate/internal/config"
	"github.com/databrickslabs/ucmigrate/internal/secrets"
)

// TokenPrompter supplies a workspace token interactively when the config
// names a host but no way to authenticate against it. Satisfied by
// ui.Prompts.
type TokenPrompter interface {
	AskSecret(question string) (string, error)
}

// NewWorkspaceClient builds a Databricks workspace client from the tool
// config. Token references (aws-sm://, env://) are resolved first; a host
// with no token, profile, or environment token prompts the operator, and
// with no host at all the SDK's own auth chain applies.
func NewWorkspaceClient(ctx context.Context, cfg *config.Config, prompts TokenPrompter) (*databricks.WorkspaceClient, error) {
	token, err := resolveToken(ctx, cfg, prompts)
	if err != nil {
		return nil, err
	}

	w, err := databricks.NewWorkspaceClient(&databricks.Config{
		Host:    cfg.Databricks.Host,
		Profile: cfg.Databricks.Profile,
		Token:   token,
	})
	if err != nil {
		return nil, fmt.Errorf("creating workspace client: %w", err)
	}
	return w, nil
}

// resolveToken resolves the configured token reference. Prompting is the
// last resort: any configured token, named profile, or DATABRICKS_TOKEN in
// the environment wins, so non-interactive runs never block on a prompt.
func resolveToken(ctx context.Context, cfg *config.Config, prompts TokenPrompter) (string, error) {
	token, err := secrets.Resolve(ctx, cfg.Databricks.Token)
	if err != nil {
		return "", fmt.Errorf("resolving workspace token: %w", err)
	}
	if token != "" || prompts == nil {
		return token, nil
	}
	if cfg.Databricks.Host == "" || cfg.Databricks.Profile != "" || os.Getenv("DATABRICKS_TOKEN") != "" {
		return "", nil
	}

	token, err = prompts.AskSecret("Databricks workspace token for " + cfg.Databricks.Host)
	if err != nil {
		return "", fmt.Errorf("reading workspace token: %w", err)
	}
	return token, nil
}
