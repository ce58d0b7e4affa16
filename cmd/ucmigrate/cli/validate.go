package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/databrickslabs/ucmigrate/internal/aws"
	"github.com/databrickslabs/ucmigrate/internal/uc"
	"github.com/databrickslabs/ucmigrate/internal/ui"
)

var validateReadOnly bool

var validateCmd = &cobra.Command{
	Use:   "validate <role-arn> <s3-path>",
	Short: "Validate an existing storage credential against an S3 path",
	Long: `Ask the workspace to exercise the storage credential named after the
role against the given path. Useful for re-checking a credential after its
IAM policies changed.`,
	Example: `  ucmigrate validate arn:aws:iam::123456789012:role/data-reader s3://my-bucket/data --read-only`,
	Args:    cobra.ExactArgs(2),
	RunE:    runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().BoolVar(&validateReadOnly, "read-only", false, "validate read access only")
}

func runValidate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	privilege := aws.PrivilegeWriteFiles
	if validateReadOnly {
		privilege = aws.PrivilegeReadFiles
	}
	action := aws.RoleAction{
		RoleARN:      args[0],
		ResourceType: aws.ResourceTypeS3,
		Privilege:    privilege,
		ResourcePath: args[1],
	}
	if _, err := aws.ParseRoleARN(action.RoleARN); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	w, err := uc.NewWorkspaceClient(ctx, cfg, ui.NewPrompts())
	if err != nil {
		return err
	}

	result, err := uc.NewCredentialManager(w.StorageCredentials).Validate(ctx, action)
	if err != nil {
		return err
	}

	if jsonOut {
		return json.NewEncoder(os.Stdout).Encode(result)
	}

	if len(result.Failures) == 0 {
		fmt.Printf("%s %s can access %s\n", ui.OKTag(), result.Name, result.ValidatedOn)
		return nil
	}
	fmt.Printf("%s %s failed validation on %s\n", ui.FailTag(), result.Name, result.ValidatedOn)
	for _, failure := range result.Failures {
		fmt.Printf("    %s\n", failure)
	}
	return fmt.Errorf("validation failed")
}
