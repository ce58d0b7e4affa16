package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/databrickslabs/ucmigrate/internal/uc"
	"github.com/databrickslabs/ucmigrate/internal/ui"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List IAM role ARNs backing existing storage credentials",
	Long: `Show the AWS IAM roles that already back a Unity Catalog storage
credential in the workspace. These roles are skipped by 'ucmigrate migrate'.`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	w, err := uc.NewWorkspaceClient(ctx, cfg, ui.NewPrompts())
	if err != nil {
		return err
	}

	arns, err := uc.NewCredentialManager(w.StorageCredentials).List(ctx)
	if err != nil {
		return err
	}

	sorted := make([]string, 0, len(arns))
	for arn := range arns {
		sorted = append(sorted, arn)
	}
	sort.Strings(sorted)

	if jsonOut {
		return json.NewEncoder(os.Stdout).Encode(sorted)
	}

	if len(sorted) == 0 {
		fmt.Println("No AWS storage credentials found")
		return nil
	}
	for _, arn := range sorted {
		fmt.Println(arn)
	}
	return nil
}
