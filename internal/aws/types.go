// Package aws discovers IAM roles that grant S3 access compatible with
// Unity Catalog and models them as role-to-path mappings.
package aws

// Privilege is the Unity Catalog privilege a role mapping grants on its path.
type Privilege string

const (
	PrivilegeReadFiles  Privilege = "READ_FILES"
	PrivilegeWriteFiles Privilege = "WRITE_FILES"
)

// RoleAction maps an IAM role to one S3 location it can reach and the
// strongest privilege its policies grant there.
type RoleAction struct {
	RoleARN      string    `json:"role_arn"`
	ResourceType string    `json:"resource_type"`
	Privilege    Privilege `json:"privilege"`
	ResourcePath string    `json:"resource_path"`
}

// ResourceTypeS3 is the only resource type the migration handles today.
const ResourceTypeS3 = "s3"

// RoleName returns the role (or instance profile) name component of the ARN.
func (a RoleAction) RoleName() (string, error) {
	parsed, err := ParseRoleARN(a.RoleARN)
	if err != nil {
		return "", err
	}
	return parsed.Name, nil
}

// ReadOnly reports whether the mapping grants read access only.
func (a RoleAction) ReadOnly() bool {
	return a.Privilege == PrivilegeReadFiles
}
