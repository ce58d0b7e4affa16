// Package uc wraps the Unity Catalog storage credential API for the
// IAM role migration: list what exists, create what is missing, and
// validate that a created credential can actually reach its location.
package uc

import (
	"context"
	"errors"
	"fmt"

	"github.com/databricks/databricks-sdk-go/apierr"
	"github.com/databricks/databricks-sdk-go/service/catalog"

	"github.com/databrickslabs/ucmigrate/internal/aws"
	"github.com/databrickslabs/ucmigrate/internal/log"
)

// StorageCredentialsAPI is the slice of the workspace API the manager calls.
// Satisfied by databricks.WorkspaceClient.StorageCredentials.
type StorageCredentialsAPI interface {
	ListAll(ctx context.Context, request catalog.ListStorageCredentialsRequest) ([]catalog.StorageCredentialInfo, error)
	Create(ctx context.Context, request catalog.CreateStorageCredential) (*catalog.StorageCredentialInfo, error)
	Validate(ctx context.Context, request catalog.ValidateStorageCredential) (*catalog.ValidateStorageCredentialResponse, error)
}

// ValidationResult records the outcome of validating one migrated credential.
// An empty Failures slice means the credential passed.
type ValidationResult struct {
	Name        string   `json:"name"`
	RoleARN     string   `json:"role_arn"`
	ValidatedOn string   `json:"validated_on"`
	ReadOnly    bool     `json:"read_only"`
	Failures    []string `json:"failures,omitempty"`
}

const overlapFailure = "The validation is skipped because " +
	"an existing external location overlaps with the location used for validation."

// CredentialManager orchestrates storage credential calls for AWS IAM roles.
type CredentialManager struct {
	api StorageCredentialsAPI
}

// NewCredentialManager wraps the given storage credentials API.
func NewCredentialManager(api StorageCredentialsAPI) *CredentialManager {
	return &CredentialManager{api: api}
}

// List returns the role ARNs backing existing storage credentials.
// Credentials backed by Azure identities or service principals are ignored;
// only AWS IAM role credentials matter for duplicate detection.
func (m *CredentialManager) List(ctx context.Context) (map[string]bool, error) {
	infos, err := m.api.ListAll(ctx, catalog.ListStorageCredentialsRequest{})
	if err != nil {
		return nil, fmt.Errorf("listing storage credentials: %w", err)
	}

	arns := make(map[string]bool)
	for _, info := range infos {
		if info.AwsIamRole == nil || info.AwsIamRole.RoleArn == "" {
			continue
		}
		arns[info.AwsIamRole.RoleArn] = true
	}
	log.Info("discovered existing UC storage credentials", "count", len(arns))
	return arns, nil
}

// Create creates a storage credential named after the role, backed by the
// role's ARN. READ_FILES mappings become read-only credentials.
func (m *CredentialManager) Create(ctx context.Context, action aws.RoleAction) (*catalog.StorageCredentialInfo, error) {
	name, err := action.RoleName()
	if err != nil {
		return nil, err
	}

	info, err := m.api.Create(ctx, catalog.CreateStorageCredential{
		Name: name,
		AwsIamRole: &catalog.AwsIamRoleRequest{
			RoleArn: action.RoleARN,
		},
		Comment:  fmt.Sprintf("Created by UCX during migration to UC using AWS IAM Role: %s", name),
		ReadOnly: action.ReadOnly(),
	})
	if err != nil {
		return nil, fmt.Errorf("creating storage credential %s: %w", name, err)
	}
	return info, nil
}

// Validate asks the workspace to exercise the credential against the mapped
// path. Operation failures are recorded, not returned as errors, so one bad
// credential never aborts a migration run.
func (m *CredentialManager) Validate(ctx context.Context, action aws.RoleAction) (*ValidationResult, error) {
	name, err := action.RoleName()
	if err != nil {
		return nil, err
	}

	result := &ValidationResult{
		Name:        name,
		RoleARN:     action.RoleARN,
		ValidatedOn: action.ResourcePath,
		ReadOnly:    action.ReadOnly(),
	}

	resp, err := m.api.Validate(ctx, catalog.ValidateStorageCredential{
		StorageCredentialName: name,
		Url:                   action.ResourcePath,
		ReadOnly:              action.ReadOnly(),
	})
	if err != nil {
		// The workspace refuses to validate against a URL that overlaps an
		// existing external location. Not a credential problem; record and
		// move on.
		var apiErr *apierr.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode == "INVALID_PARAMETER_VALUE" {
			log.Warn("validation skipped, location overlaps an existing external location",
				"credential", name, "url", action.ResourcePath)
			result.Failures = []string{overlapFailure}
			return result, nil
		}
		return nil, fmt.Errorf("validating storage credential %s: %w", name, err)
	}

	if len(resp.Results) == 0 {
		result.Failures = []string{"Validation returned no results."}
		return result, nil
	}

	for _, r := range resp.Results {
		if r.Operation == "" {
			continue
		}
		if r.Result == catalog.ValidationResultResultFail {
			result.Failures = append(result.Failures,
				fmt.Sprintf("%s validation failed with message: %s", r.Operation, r.Message))
		}
	}
	return result, nil
}
