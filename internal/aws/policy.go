package aws

import (
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// databricksAccountID is the AWS account that hosts the Unity Catalog master
// role. A role is migratable only if its trust policy lets this account
// assume it.
const databricksAccountID = "414351767826"

// stringList accepts the IAM policy JSON convention of a bare string or a
// list of strings in Action, Resource and Principal fields.
type stringList []string

func (s *stringList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*s = []string{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("expected string or list of strings: %w", err)
	}
	*s = many
	return nil
}

type policyDocument struct {
	Statement []policyStatement `json:"Statement"`
}

type policyStatement struct {
	Effect    string          `json:"Effect"`
	Action    stringList      `json:"Action"`
	Resource  stringList      `json:"Resource"`
	Principal policyPrincipal `json:"Principal"`
}

type policyPrincipal struct {
	AWS stringList `json:"AWS"`
}

// parsePolicyDocument decodes an IAM policy document as returned by the IAM
// API, which URL-encodes the JSON body.
func parsePolicyDocument(encoded string) (*policyDocument, error) {
	decoded, err := url.QueryUnescape(encoded)
	if err != nil {
		return nil, fmt.Errorf("decoding policy document: %w", err)
	}
	var doc policyDocument
	if err := json.Unmarshal([]byte(decoded), &doc); err != nil {
		return nil, fmt.Errorf("parsing policy document: %w", err)
	}
	return &doc, nil
}

// trustsUnityCatalog reports whether the trust policy allows the Databricks
// Unity Catalog account to assume the role.
func trustsUnityCatalog(doc *policyDocument) bool {
	for _, stmt := range doc.Statement {
		if stmt.Effect != "Allow" {
			continue
		}
		assumes := false
		for _, action := range stmt.Action {
			if action == "sts:AssumeRole" {
				assumes = true
			}
		}
		if !assumes {
			continue
		}
		for _, principal := range stmt.Principal.AWS {
			if strings.Contains(principal, databricksAccountID) {
				return true
			}
		}
	}
	return false
}

var s3ResourcePattern = regexp.MustCompile(`^arn:aws:s3:::([a-zA-Z0-9.\-_]+)(?:/(.*))?$`)

// s3Path converts an S3 resource ARN to an s3:// path, dropping trailing
// wildcards so arn:aws:s3:::bucket/prefix/* becomes s3://bucket/prefix.
// Returns "" for non-S3 resources.
func s3Path(resource string) string {
	m := s3ResourcePattern.FindStringSubmatch(resource)
	if m == nil {
		return ""
	}
	bucket, prefix := m[1], m[2]
	prefix = strings.TrimSuffix(prefix, "*")
	prefix = strings.TrimSuffix(prefix, "/")
	if prefix == "" {
		return "s3://" + bucket
	}
	return "s3://" + bucket + "/" + prefix
}

// s3Privilege classifies an action set. WRITE_FILES needs get, put and
// delete; READ_FILES needs get. Anything weaker is not UC compatible.
func s3Privilege(actions stringList) (Privilege, bool) {
	var get, put, del bool
	for _, action := range actions {
		switch {
		case action == "*" || action == "s3:*":
			get, put, del = true, true, true
		case action == "s3:Get*" || action == "s3:GetObject":
			get = true
		case action == "s3:Put*" || action == "s3:PutObject":
			put = true
		case action == "s3:Delete*" || action == "s3:DeleteObject":
			del = true
		}
	}
	switch {
	case get && put && del:
		return PrivilegeWriteFiles, true
	case get:
		return PrivilegeReadFiles, true
	default:
		return "", false
	}
}

// collectS3Access extracts path-to-privilege grants from one policy
// document, keeping the strongest privilege seen per path.
func collectS3Access(doc *policyDocument, grants map[string]Privilege) {
	for _, stmt := range doc.Statement {
		if stmt.Effect != "Allow" {
			continue
		}
		privilege, ok := s3Privilege(stmt.Action)
		if !ok {
			continue
		}
		for _, resource := range stmt.Resource {
			path := s3Path(resource)
			if path == "" {
				continue
			}
			if existing, seen := grants[path]; !seen || existing == PrivilegeReadFiles {
				grants[path] = privilege
			}
		}
	}
}
