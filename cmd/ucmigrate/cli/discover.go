package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/databrickslabs/ucmigrate/internal/aws"
	"github.com/databrickslabs/ucmigrate/internal/log"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Scan IAM roles for UC-compatible S3 access",
	Long: `Scan the AWS account for IAM roles that the Unity Catalog account is
allowed to assume, and record the S3 paths their policies grant.

The snapshot is stored locally and feeds 'ucmigrate migrate'. Re-running
discover replaces the previous snapshot.`,
	RunE: runDiscover,
}

func init() {
	rootCmd.AddCommand(discoverCmd)
}

func runDiscover(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	permissions, err := aws.NewResourcePermissionsFromConfig(ctx, cfg.AWS.Profile, cfg.AWS.Region, store)
	if err != nil {
		return err
	}

	account, err := permissions.CallerAccount(ctx)
	if err != nil {
		return err
	}
	log.Info("scanning IAM roles", "account", account)

	actions, err := permissions.ScanRoles(ctx)
	if err != nil {
		return err
	}
	if err := store.SaveRoleActions(ctx, actions); err != nil {
		return err
	}

	if jsonOut {
		return json.NewEncoder(os.Stdout).Encode(actions)
	}

	if len(actions) == 0 {
		fmt.Println("No UC-compatible IAM roles found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ROLE ARN\tPRIVILEGE\tRESOURCE PATH")
	for _, action := range actions {
		fmt.Fprintf(w, "%s\t%s\t%s\n", action.RoleARN, action.Privilege, action.ResourcePath)
	}
	return w.Flush()
}
