package secrets

import (
	"context"
	"errors"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	smtypes "github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
)

// SecretsManagerAPI is the subset of the Secrets Manager client we call.
type SecretsManagerAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// SecretsManagerResolver resolves secrets from AWS Secrets Manager.
type SecretsManagerResolver struct {
	// newClient builds a client for the given region. Overridable in tests.
	newClient func(ctx context.Context, region string) (SecretsManagerAPI, error)
}

// Scheme returns "aws-sm".
func (r *SecretsManagerResolver) Scheme() string {
	return "aws-sm"
}

// Resolve fetches a secret value.
// aws-sm:///name            -> default region from the AWS config chain
// aws-sm://us-west-2/name   -> explicit region
func (r *SecretsManagerResolver) Resolve(ctx context.Context, reference string) (string, error) {
	region, name, err := parseSecretsManagerReference(reference)
	if err != nil {
		return "", err
	}

	client, err := r.newClient(ctx, region)
	if err != nil {
		return "", &BackendError{
			Backend:   "AWS Secrets Manager",
			Reference: reference,
			Reason:    "loading AWS config: " + err.Error(),
			Fix:       "Configure credentials:\n  aws configure\n  Or set AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY\n  Or run: aws sso login",
		}
	}

	out, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(name),
	})
	if err != nil {
		return "", r.classifyError(err, reference, name)
	}

	if out.SecretString == nil {
		return "", &BackendError{
			Backend:   "AWS Secrets Manager",
			Reference: reference,
			Reason:    "secret has no string value (binary secrets are not supported)",
		}
	}

	return strings.TrimSpace(*out.SecretString), nil
}

// parseSecretsManagerReference extracts region and secret name from an
// aws-sm:// URI. The host component is the region and may be empty.
func parseSecretsManagerReference(ref string) (region, name string, err error) {
	rest, ok := strings.CutPrefix(ref, "aws-sm://")
	if !ok {
		return "", "", &InvalidReferenceError{Reference: ref, Reason: "expected aws-sm:// scheme"}
	}

	region, name, ok = strings.Cut(rest, "/")
	if !ok || name == "" {
		return "", "", &InvalidReferenceError{Reference: ref, Reason: "secret name is required after the region component"}
	}

	return region, name, nil
}

// classifyError converts SDK errors to actionable error types.
func (r *SecretsManagerResolver) classifyError(err error, reference, name string) error {
	var notFound *smtypes.ResourceNotFoundException
	if errors.As(err, &notFound) {
		return &NotFoundError{Reference: reference, Backend: "AWS Secrets Manager"}
	}

	msg := err.Error()
	if strings.Contains(msg, "AccessDenied") {
		return &BackendError{
			Backend:   "AWS Secrets Manager",
			Reference: reference,
			Reason:    "access denied",
			Fix:       "Check IAM permissions for secretsmanager:GetSecretValue on " + name,
		}
	}
	if strings.Contains(msg, "ExpiredToken") {
		return &BackendError{
			Backend:   "AWS Secrets Manager",
			Reference: reference,
			Reason:    "AWS credentials expired",
			Fix:       "Run: aws sso login\nOr refresh your credentials.",
		}
	}

	return &BackendError{
		Backend:   "AWS Secrets Manager",
		Reference: reference,
		Reason:    msg,
	}
}

func defaultSecretsManagerClient(ctx context.Context, region string) (SecretsManagerAPI, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return secretsmanager.NewFromConfig(cfg), nil
}

func init() {
	Register(&SecretsManagerResolver{newClient: defaultSecretsManagerClient})
}
