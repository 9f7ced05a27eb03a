package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"sheetlog/config"
	"sheetlog/directory"
	"sheetlog/gsheets"
	"sheetlog/output"
	"sheetlog/worklog"
)

var (
	exportUser   string
	exportFormat string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a user's worklog spreadsheet to CSV/Excel",
	Long: `Export the data rows of an existing user worklog spreadsheet to a local
file. The spreadsheet is looked up by name in the root folder and is never
created by this command.

Output format can be selected explicitly via --format or inferred from --output extension.`,
	Example: `
  # Export to CSV
  sheetlog export --user u@x.com --output ./worklog.csv

  # Export to Excel
  sheetlog export --user u@x.com --output ./worklog.xlsx

  # Force Excel format independent of extension
  sheetlog export --user u@x.com --format excel --output ./worklog.out
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		format := exportFormat
		if strings.TrimSpace(format) == "" {
			format = detectExportFormat(exportOutput)
		}
		writer, err := output.WriterForFormat(format)
		if err != nil {
			return err
		}

		ctx := context.Background()
		client, err := gsheets.NewGoogleClient(ctx, cfg.Google.Credentials)
		if err != nil {
			return err
		}

		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		dir := directory.New(client, cfg.Drive.RootFolderID, cfg.Drive.SheetsRange, logger)

		spreadsheetID, err := dir.Resolve(ctx, exportUser)
		if err != nil {
			return err
		}

		rows := dir.ListDataRows(ctx, spreadsheetID)
		entries := make([]worklog.Entry, 0, len(rows))
		for _, row := range rows {
			entries = append(entries, worklog.EntryFromRow(row))
		}

		if err := writer.Write(exportOutput, entries); err != nil {
			return err
		}

		fmt.Printf("Export completed. Rows: %d, Format: %s, File: %s\n", len(entries), format, exportOutput)
		return nil
	},
}

func detectExportFormat(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch ext {
	case "csv":
		return "csv"
	case "xlsx", "xlsm", "xls":
		return "excel"
	default:
		return "csv"
	}
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportUser, "user", "", "User email whose worklog spreadsheet to export")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "Output format: csv|excel (optional, inferred from output extension)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "./worklog.csv", "Output file path")
	_ = exportCmd.MarkFlagRequired("user")
}
