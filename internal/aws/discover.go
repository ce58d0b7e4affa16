package aws

import (
	"context"
	"fmt"
	"sort"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/databrickslabs/ucmigrate/internal/log"
)

// IAMAPI is the subset of the IAM client the scanner calls.
type IAMAPI interface {
	ListRoles(ctx context.Context, params *iam.ListRolesInput, optFns ...func(*iam.Options)) (*iam.ListRolesOutput, error)
	ListRolePolicies(ctx context.Context, params *iam.ListRolePoliciesInput, optFns ...func(*iam.Options)) (*iam.ListRolePoliciesOutput, error)
	GetRolePolicy(ctx context.Context, params *iam.GetRolePolicyInput, optFns ...func(*iam.Options)) (*iam.GetRolePolicyOutput, error)
	ListAttachedRolePolicies(ctx context.Context, params *iam.ListAttachedRolePoliciesInput, optFns ...func(*iam.Options)) (*iam.ListAttachedRolePoliciesOutput, error)
	GetPolicy(ctx context.Context, params *iam.GetPolicyInput, optFns ...func(*iam.Options)) (*iam.GetPolicyOutput, error)
	GetPolicyVersion(ctx context.Context, params *iam.GetPolicyVersionInput, optFns ...func(*iam.Options)) (*iam.GetPolicyVersionOutput, error)
}

// STSAPI is the subset of the STS client the scanner calls.
type STSAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// ActionStore persists discovered role actions between the discovery and
// migration steps. Implemented by install.Store.
type ActionStore interface {
	SaveRoleActions(ctx context.Context, actions []RoleAction) error
	LoadRoleActions(ctx context.Context) ([]RoleAction, error)
}

// ResourcePermissions discovers IAM roles whose trust policy admits the
// Unity Catalog account and maps them to the S3 paths they can reach.
type ResourcePermissions struct {
	iam   IAMAPI
	sts   STSAPI
	store ActionStore
}

// NewResourcePermissions builds a scanner from explicit clients.
func NewResourcePermissions(iamClient IAMAPI, stsClient STSAPI, store ActionStore) *ResourcePermissions {
	return &ResourcePermissions{iam: iamClient, sts: stsClient, store: store}
}

// NewResourcePermissionsFromConfig builds a scanner from the ambient AWS
// config chain, honoring an optional named profile and region.
func NewResourcePermissionsFromConfig(ctx context.Context, profile, region string, store ActionStore) (*ResourcePermissions, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(profile))
	}
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return NewResourcePermissions(iam.NewFromConfig(cfg), sts.NewFromConfig(cfg), store), nil
}

// CallerAccount returns the AWS account id of the active credentials.
func (p *ResourcePermissions) CallerAccount(ctx context.Context) (string, error) {
	out, err := p.sts.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", fmt.Errorf("getting caller identity: %w", err)
	}
	return awssdk.ToString(out.Account), nil
}

// LoadUCCompatibleRoles returns the persisted role actions, falling back to
// a live scan (which is then persisted) when the store is empty.
func (p *ResourcePermissions) LoadUCCompatibleRoles(ctx context.Context) ([]RoleAction, error) {
	actions, err := p.store.LoadRoleActions(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading role actions: %w", err)
	}
	if len(actions) > 0 {
		return actions, nil
	}

	actions, err = p.ScanRoles(ctx)
	if err != nil {
		return nil, err
	}
	if err := p.store.SaveRoleActions(ctx, actions); err != nil {
		return nil, fmt.Errorf("saving role actions: %w", err)
	}
	return actions, nil
}

// ScanRoles walks all IAM roles and returns S3 mappings for the ones Unity
// Catalog can assume. Roles with unparseable policies are skipped with a
// warning rather than failing the scan.
func (p *ResourcePermissions) ScanRoles(ctx context.Context) ([]RoleAction, error) {
	var actions []RoleAction

	var marker *string
	for {
		out, err := p.iam.ListRoles(ctx, &iam.ListRolesInput{Marker: marker})
		if err != nil {
			return nil, fmt.Errorf("listing roles: %w", err)
		}

		for _, role := range out.Roles {
			roleActions, err := p.scanRole(ctx, awssdk.ToString(role.RoleName), awssdk.ToString(role.Arn), awssdk.ToString(role.AssumeRolePolicyDocument))
			if err != nil {
				log.Warn("skipping role", "role", awssdk.ToString(role.RoleName), "error", err)
				continue
			}
			actions = append(actions, roleActions...)
		}

		if !out.IsTruncated {
			break
		}
		marker = out.Marker
	}

	sort.Slice(actions, func(i, j int) bool {
		if actions[i].RoleARN != actions[j].RoleARN {
			return actions[i].RoleARN < actions[j].RoleARN
		}
		return actions[i].ResourcePath < actions[j].ResourcePath
	})
	return actions, nil
}

func (p *ResourcePermissions) scanRole(ctx context.Context, name, arn, trustPolicy string) ([]RoleAction, error) {
	trust, err := parsePolicyDocument(trustPolicy)
	if err != nil {
		return nil, fmt.Errorf("trust policy: %w", err)
	}
	if !trustsUnityCatalog(trust) {
		return nil, nil
	}

	grants := make(map[string]Privilege)

	if err := p.collectInlinePolicies(ctx, name, grants); err != nil {
		return nil, err
	}
	if err := p.collectAttachedPolicies(ctx, name, grants); err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(grants))
	for path := range grants {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	actions := make([]RoleAction, 0, len(paths))
	for _, path := range paths {
		actions = append(actions, RoleAction{
			RoleARN:      arn,
			ResourceType: ResourceTypeS3,
			Privilege:    grants[path],
			ResourcePath: path,
		})
	}
	return actions, nil
}

func (p *ResourcePermissions) collectInlinePolicies(ctx context.Context, roleName string, grants map[string]Privilege) error {
	var marker *string
	for {
		out, err := p.iam.ListRolePolicies(ctx, &iam.ListRolePoliciesInput{
			RoleName: awssdk.String(roleName),
			Marker:   marker,
		})
		if err != nil {
			return fmt.Errorf("listing inline policies: %w", err)
		}

		for _, policyName := range out.PolicyNames {
			policy, err := p.iam.GetRolePolicy(ctx, &iam.GetRolePolicyInput{
				RoleName:   awssdk.String(roleName),
				PolicyName: awssdk.String(policyName),
			})
			if err != nil {
				return fmt.Errorf("getting inline policy %s: %w", policyName, err)
			}
			doc, err := parsePolicyDocument(awssdk.ToString(policy.PolicyDocument))
			if err != nil {
				return fmt.Errorf("inline policy %s: %w", policyName, err)
			}
			collectS3Access(doc, grants)
		}

		if !out.IsTruncated {
			return nil
		}
		marker = out.Marker
	}
}

func (p *ResourcePermissions) collectAttachedPolicies(ctx context.Context, roleName string, grants map[string]Privilege) error {
	var marker *string
	for {
		out, err := p.iam.ListAttachedRolePolicies(ctx, &iam.ListAttachedRolePoliciesInput{
			RoleName: awssdk.String(roleName),
			Marker:   marker,
		})
		if err != nil {
			return fmt.Errorf("listing attached policies: %w", err)
		}

		for _, attached := range out.AttachedPolicies {
			policy, err := p.iam.GetPolicy(ctx, &iam.GetPolicyInput{PolicyArn: attached.PolicyArn})
			if err != nil {
				return fmt.Errorf("getting policy %s: %w", awssdk.ToString(attached.PolicyArn), err)
			}
			version, err := p.iam.GetPolicyVersion(ctx, &iam.GetPolicyVersionInput{
				PolicyArn: attached.PolicyArn,
				VersionId: policy.Policy.DefaultVersionId,
			})
			if err != nil {
				return fmt.Errorf("getting policy version: %w", err)
			}
			doc, err := parsePolicyDocument(awssdk.ToString(version.PolicyVersion.Document))
			if err != nil {
				return fmt.Errorf("attached policy %s: %w", awssdk.ToString(attached.PolicyName), err)
			}
			collectS3Access(doc, grants)
		}

		if !out.IsTruncated {
			return nil
		}
		marker = out.Marker
	}
}
