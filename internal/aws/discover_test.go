package aws

import (
	"context"
	"net/url"
	"testing"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIAM struct {
	roles          []iamtypes.Role
	inlinePolicies map[string]map[string]string // role -> policy name -> document
	pageSize       int
}

func (f *fakeIAM) ListRoles(ctx context.Context, params *iam.ListRolesInput, optFns ...func(*iam.Options)) (*iam.ListRolesOutput, error) {
	start := 0
	if params.Marker != nil {
		for i, r := range f.roles {
			if awssdk.ToString(r.RoleName) == *params.Marker {
				start = i
				break
			}
		}
	}
	size := f.pageSize
	if size == 0 {
		size = len(f.roles)
	}
	end := start + size
	if end >= len(f.roles) {
		return &iam.ListRolesOutput{Roles: f.roles[start:]}, nil
	}
	return &iam.ListRolesOutput{
		Roles:       f.roles[start:end],
		IsTruncated: true,
		Marker:      f.roles[end].RoleName,
	}, nil
}

func (f *fakeIAM) ListRolePolicies(ctx context.Context, params *iam.ListRolePoliciesInput, optFns ...func(*iam.Options)) (*iam.ListRolePoliciesOutput, error) {
	var names []string
	for name := range f.inlinePolicies[awssdk.ToString(params.RoleName)] {
		names = append(names, name)
	}
	return &iam.ListRolePoliciesOutput{PolicyNames: names}, nil
}

func (f *fakeIAM) GetRolePolicy(ctx context.Context, params *iam.GetRolePolicyInput, optFns ...func(*iam.Options)) (*iam.GetRolePolicyOutput, error) {
	doc := f.inlinePolicies[awssdk.ToString(params.RoleName)][awssdk.ToString(params.PolicyName)]
	return &iam.GetRolePolicyOutput{PolicyDocument: awssdk.String(doc)}, nil
}

func (f *fakeIAM) ListAttachedRolePolicies(ctx context.Context, params *iam.ListAttachedRolePoliciesInput, optFns ...func(*iam.Options)) (*iam.ListAttachedRolePoliciesOutput, error) {
	return &iam.ListAttachedRolePoliciesOutput{}, nil
}

func (f *fakeIAM) GetPolicy(ctx context.Context, params *iam.GetPolicyInput, optFns ...func(*iam.Options)) (*iam.GetPolicyOutput, error) {
	return &iam.GetPolicyOutput{Policy: &iamtypes.Policy{DefaultVersionId: awssdk.String("v1")}}, nil
}

func (f *fakeIAM) GetPolicyVersion(ctx context.Context, params *iam.GetPolicyVersionInput, optFns ...func(*iam.Options)) (*iam.GetPolicyVersionOutput, error) {
	return &iam.GetPolicyVersionOutput{PolicyVersion: &iamtypes.PolicyVersion{Document: awssdk.String(url.QueryEscape(`{"Statement":[]}`))}}, nil
}

type fakeSTS struct {
	account string
}

func (f *fakeSTS) GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	return &sts.GetCallerIdentityOutput{Account: awssdk.String(f.account)}, nil
}

type memoryStore struct {
	actions []RoleAction
	saved   int
}

func (m *memoryStore) SaveRoleActions(ctx context.Context, actions []RoleAction) error {
	m.actions = actions
	m.saved++
	return nil
}

func (m *memoryStore) LoadRoleActions(ctx context.Context) ([]RoleAction, error) {
	return m.actions, nil
}

func ucRole(name string) iamtypes.Role {
	return iamtypes.Role{
		RoleName:                 awssdk.String(name),
		Arn:                      awssdk.String("arn:aws:iam::123456789012:role/" + name),
		AssumeRolePolicyDocument: awssdk.String(url.QueryEscape(trustPolicyUC)),
	}
}

func ec2Role(name string) iamtypes.Role {
	return iamtypes.Role{
		RoleName:                 awssdk.String(name),
		Arn:                      awssdk.String("arn:aws:iam::123456789012:role/" + name),
		AssumeRolePolicyDocument: awssdk.String(url.QueryEscape(trustPolicyEC2)),
	}
}

const writePolicy = `{
	"Statement": [{
		"Effect": "Allow",
		"Action": ["s3:GetObject", "s3:PutObject", "s3:DeleteObject"],
		"Resource": ["arn:aws:s3:::example-bucket/*"]
	}]
}`

const readPolicy = `{
	"Statement": [{
		"Effect": "Allow",
		"Action": "s3:GetObject",
		"Resource": "arn:aws:s3:::readonly-bucket/logs/*"
	}]
}`

func TestScanRolesFindsUCCompatibleRoles(t *testing.T) {
	fake := &fakeIAM{
		roles: []iamtypes.Role{ucRole("writer"), ec2Role("cluster-profile"), ucRole("reader")},
		inlinePolicies: map[string]map[string]string{
			"writer": {"s3-access": url.QueryEscape(writePolicy)},
			"reader": {"s3-read": url.QueryEscape(readPolicy)},
		},
	}
	p := NewResourcePermissions(fake, &fakeSTS{account: "123456789012"}, &memoryStore{})

	actions, err := p.ScanRoles(context.Background())
	require.NoError(t, err)

	require.Len(t, actions, 2)
	assert.Equal(t, RoleAction{
		RoleARN:      "arn:aws:iam::123456789012:role/reader",
		ResourceType: ResourceTypeS3,
		Privilege:    PrivilegeReadFiles,
		ResourcePath: "s3://readonly-bucket/logs",
	}, actions[0])
	assert.Equal(t, RoleAction{
		RoleARN:      "arn:aws:iam::123456789012:role/writer",
		ResourceType: ResourceTypeS3,
		Privilege:    PrivilegeWriteFiles,
		ResourcePath: "s3://example-bucket",
	}, actions[1])
}

func TestScanRolesPaginates(t *testing.T) {
	fake := &fakeIAM{
		roles:    []iamtypes.Role{ucRole("a"), ucRole("b"), ucRole("c")},
		pageSize: 1,
		inlinePolicies: map[string]map[string]string{
			"a": {"p": url.QueryEscape(readPolicy)},
			"b": {"p": url.QueryEscape(readPolicy)},
			"c": {"p": url.QueryEscape(readPolicy)},
		},
	}
	p := NewResourcePermissions(fake, &fakeSTS{}, &memoryStore{})

	actions, err := p.ScanRoles(context.Background())
	require.NoError(t, err)
	assert.Len(t, actions, 3)
}

func TestLoadUCCompatibleRolesPrefersStore(t *testing.T) {
	stored := []RoleAction{{
		RoleARN:      "arn:aws:iam::123456789012:role/cached",
		ResourceType: ResourceTypeS3,
		Privilege:    PrivilegeWriteFiles,
		ResourcePath: "s3://cached-bucket",
	}}
	store := &memoryStore{actions: stored}
	// nil clients: a store hit must not touch AWS
	p := NewResourcePermissions(nil, nil, store)

	actions, err := p.LoadUCCompatibleRoles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, stored, actions)
}

func TestLoadUCCompatibleRolesScansAndPersists(t *testing.T) {
	fake := &fakeIAM{
		roles: []iamtypes.Role{ucRole("writer")},
		inlinePolicies: map[string]map[string]string{
			"writer": {"s3-access": url.QueryEscape(writePolicy)},
		},
	}
	store := &memoryStore{}
	p := NewResourcePermissions(fake, &fakeSTS{}, store)

	actions, err := p.LoadUCCompatibleRoles(context.Background())
	require.NoError(t, err)
	assert.Len(t, actions, 1)
	assert.Equal(t, 1, store.saved)
}

func TestCallerAccount(t *testing.T) {
	p := NewResourcePermissions(nil, &fakeSTS{account: "999999999999"}, nil)

	account, err := p.CallerAccount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "999999999999", account)
}
