package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/databrickslabs/ucmigrate/internal/aws"
	"github.com/databrickslabs/ucmigrate/internal/migrate"
	"github.com/databrickslabs/ucmigrate/internal/uc"
	"github.com/databrickslabs/ucmigrate/internal/ui"
)

var migrateYes bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create and validate storage credentials for discovered roles",
	Long: `Create one Unity Catalog storage credential per discovered IAM role
mapping, then validate each credential against its S3 path.

The action plan is printed first and nothing is created until it is
confirmed. Roles already backing a credential are skipped. Validation
failures are recorded, they do not stop the run.`,
	Example: `  ucmigrate discover
  ucmigrate migrate
  ucmigrate migrate --yes   # skip the confirmation prompt`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.Flags().BoolVar(&migrateYes, "yes", false, "apply without asking for confirmation")
}

func runMigrate(cmd *cobra.Command, args []string) error {
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

	var prompts ui.Prompter = ui.NewPrompts()
	if migrateYes {
		prompts = ui.NewMockPrompts(map[string]string{".*": "yes"})
	}

	// Token prompting stays interactive even under --yes; a scripted "yes"
	// is a confirmation answer, not a credential.
	w, err := uc.NewWorkspaceClient(ctx, cfg, ui.NewPrompts())
	if err != nil {
		return err
	}
	permissions, err := aws.NewResourcePermissionsFromConfig(ctx, cfg.AWS.Profile, cfg.AWS.Region, store)
	if err != nil {
		return err
	}

	migration := migrate.New(store, permissions, uc.NewCredentialManager(w.StorageCredentials))

	results, err := migration.Run(ctx, prompts)
	if err != nil {
		return err
	}

	if jsonOut {
		return json.NewEncoder(os.Stdout).Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No storage credentials created")
		return nil
	}

	ui.Section("Migrated storage credentials")
	failed := 0
	for _, result := range results {
		if len(result.Failures) == 0 {
			fmt.Printf("%s %s (%s)\n", ui.OKTag(), result.Name, result.ValidatedOn)
			continue
		}
		failed++
		fmt.Printf("%s %s (%s)\n", ui.FailTag(), result.Name, result.ValidatedOn)
		for _, failure := range result.Failures {
			fmt.Printf("    %s\n", failure)
		}
	}
	if failed > 0 {
		ui.Warnf("%d of %d credentials failed validation", failed, len(results))
	}
	return nil
}
