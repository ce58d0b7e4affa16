package aws

import (
	"fmt"
	"strings"
)

// ARN is a parsed IAM role or instance profile ARN.
type ARN struct {
	Partition string
	AccountID string
	// Resource is "role" or "instance-profile".
	Resource string
	Name     string
}

// ParseRoleARN validates an IAM role or instance profile ARN.
// ARN format: arn:PARTITION:iam::ACCOUNT_ID:role/ROLE_NAME
// Supported partitions: aws, aws-cn, aws-us-gov
func ParseRoleARN(arn string) (*ARN, error) {
	if arn == "" {
		return nil, fmt.Errorf("role ARN is required")
	}

	parts := strings.Split(arn, ":")
	if len(parts) != 6 {
		return nil, fmt.Errorf("invalid ARN format: expected 6 colon-separated parts, got %d", len(parts))
	}

	prefix, partition, service, _, account, resource := parts[0], parts[1], parts[2], parts[3], parts[4], parts[5]

	if prefix != "arn" {
		return nil, fmt.Errorf("invalid ARN: must start with 'arn:'")
	}

	// Validate partition
	switch partition {
	case "aws", "aws-cn", "aws-us-gov":
		// valid
	default:
		return nil, fmt.Errorf("invalid ARN partition: %s (expected aws, aws-cn, or aws-us-gov)", partition)
	}

	if service != "iam" {
		return nil, fmt.Errorf("invalid ARN: must be an IAM ARN (got %s)", service)
	}

	if account == "" {
		return nil, fmt.Errorf("invalid ARN: account ID is required")
	}

	resourceType, name, ok := strings.Cut(resource, "/")
	if !ok {
		return nil, fmt.Errorf("invalid ARN: must be a role or instance profile ARN (got %s)", resource)
	}
	if resourceType != "role" && resourceType != "instance-profile" {
		return nil, fmt.Errorf("invalid ARN: must be a role or instance profile ARN (got %s)", resourceType)
	}

	// Paths are allowed: role/path/to/Name names the role "Name"
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	if name == "" {
		return nil, fmt.Errorf("invalid ARN: role name is required")
	}

	return &ARN{
		Partition: partition,
		AccountID: account,
		Resource:  resourceType,
		Name:      name,
	}, nil
}
