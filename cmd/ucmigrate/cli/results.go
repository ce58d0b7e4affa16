package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/databrickslabs/ucmigrate/internal/ui"
)

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Show validation results from previous migration runs",
	Long: `Show the recorded outcome of every storage credential created by
'ucmigrate migrate', newest run first. Failures carry the validation
messages returned by the workspace.`,
	RunE: runResults,
}

func init() {
	rootCmd.AddCommand(resultsCmd)
}

func runResults(cmd *cobra.Command, args []string) error {
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

	results, err := store.LoadValidationResults(ctx)
	if err != nil {
		return err
	}

	if jsonOut {
		return json.NewEncoder(os.Stdout).Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No migrations recorded")
		return nil
	}

	ui.Section("Recorded migrations")
	for _, result := range results {
		if len(result.Failures) == 0 {
			fmt.Printf("%s %s (%s)\n", ui.OKTag(), result.Name, result.ValidatedOn)
			continue
		}
		fmt.Printf("%s %s (%s)\n", ui.FailTag(), result.Name, result.ValidatedOn)
		for _, failure := range result.Failures {
			fmt.Printf("    %s\n", failure)
		}
	}
	return nil
}
