package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"sheetlog/config"
	"sheetlog/gsheets"
)

var checkMax int64

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify Google credentials and Drive root folder access",
	Long: `Load the configured service-account credentials and list the worklog
spreadsheets in the root folder, to verify that the credentials are valid
and the folder is shared with the service account.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		ctx := context.Background()
		client, err := gsheets.NewGoogleClient(ctx, cfg.Google.Credentials)
		if err != nil {
			return err
		}

		files, err := client.ListFolder(ctx, cfg.Drive.RootFolderID, checkMax)
		if err != nil {
			return err
		}

		fmt.Printf("Root folder %s is reachable. Spreadsheets: %d\n", cfg.Drive.RootFolderID, len(files))
		for _, file := range files {
			fmt.Printf("  %s  %s\n", file.ID, file.Name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().Int64Var(&checkMax, "max", 25, "Maximum number of spreadsheets to list")
}
