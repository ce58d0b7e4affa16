// Package migrate drives the instance-profile-to-storage-credential
// migration: build the candidate list, show the action plan, and apply it
// only after the operator confirms.
package migrate

import (
	"context"
	"fmt"

	"github.com/databricks/databricks-sdk-go/service/catalog"

	"github.com/databrickslabs/ucmigrate/internal/aws"
	"github.com/databrickslabs/ucmigrate/internal/log"
	"github.com/databrickslabs/ucmigrate/internal/uc"
	"github.com/databrickslabs/ucmigrate/internal/ui"
)

// RolePermissions supplies the UC-compatible role mappings found by discovery.
type RolePermissions interface {
	LoadUCCompatibleRoles(ctx context.Context) ([]aws.RoleAction, error)
}

// CredentialManager is the storage credential surface the migration drives.
type CredentialManager interface {
	List(ctx context.Context) (map[string]bool, error)
	Create(ctx context.Context, action aws.RoleAction) (*catalog.StorageCredentialInfo, error)
	Validate(ctx context.Context, action aws.RoleAction) (*uc.ValidationResult, error)
}

// ResultStore records the outcome of an applied migration.
type ResultStore interface {
	SaveValidationResults(ctx context.Context, results []*uc.ValidationResult) error
}

// ConfirmQuestion is asked after the action plan is logged. Nothing is
// created until it is answered yes.
const ConfirmQuestion = "Above IAM roles will be migrated to UC storage credentials, " +
	"please review and confirm."

// IamRoleMigration migrates IAM role mappings into UC storage credentials.
type IamRoleMigration struct {
	store       ResultStore
	permissions RolePermissions
	creds       CredentialManager
}

// New wires the migration from its collaborators.
func New(store ResultStore, permissions RolePermissions, creds CredentialManager) *IamRoleMigration {
	return &IamRoleMigration{store: store, permissions: permissions, creds: creds}
}

// Run executes the migration. The returned slice is empty (never nil) when
// there is nothing to do or the operator declines.
func (m *IamRoleMigration) Run(ctx context.Context, prompts ui.Prompter) ([]*uc.ValidationResult, error) {
	candidates, err := m.generateMigrationList(ctx)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		log.Info("No IAM roles to migrate, the workspace is unchanged")
		return []*uc.ValidationResult{}, nil
	}

	confirmed, err := prompts.Confirm(ConfirmQuestion)
	if err != nil {
		return nil, fmt.Errorf("reading confirmation: %w", err)
	}
	if !confirmed {
		log.Info("Migration not confirmed, the workspace is unchanged")
		return []*uc.ValidationResult{}, nil
	}

	results := make([]*uc.ValidationResult, 0, len(candidates))
	for _, action := range candidates {
		if _, err := m.creds.Create(ctx, action); err != nil {
			return nil, err
		}
		result, err := m.creds.Validate(ctx, action)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}

	if err := m.store.SaveValidationResults(ctx, results); err != nil {
		return nil, err
	}
	return results, nil
}

// generateMigrationList drops roles that already back a storage credential
// and logs the remaining action plan, one line per candidate.
func (m *IamRoleMigration) generateMigrationList(ctx context.Context) ([]aws.RoleAction, error) {
	roles, err := m.permissions.LoadUCCompatibleRoles(ctx)
	if err != nil {
		return nil, err
	}

	existing, err := m.creds.List(ctx)
	if err != nil {
		return nil, err
	}

	var candidates []aws.RoleAction
	for _, action := range roles {
		if existing[action.RoleARN] {
			log.Info("skipping role, a storage credential already uses it", "role_arn", action.RoleARN)
			continue
		}
		candidates = append(candidates, action)
	}

	m.printActionPlan(candidates)
	return candidates, nil
}

func (m *IamRoleMigration) printActionPlan(candidates []aws.RoleAction) {
	for _, action := range candidates {
		log.Info(fmt.Sprintf("IAM role will be migrated: %s on %s with privilege %s",
			action.RoleARN, action.ResourcePath, action.Privilege))
	}
}
