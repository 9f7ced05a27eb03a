package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"sheetlog/config"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sheetlog",
	Short: "HMAC-authenticated webhook receiver that keeps per-user worklogs in Google Sheets.",
	Long: `sheetlog receives signed worklog webhooks and appends or updates rows in a
per-user Google Sheets spreadsheet. Each user email maps to one spreadsheet
("Worklog - {email}") inside a configured Drive folder; appends are
deduplicated by idempotency key and updates patch a row in place.`,
	Example: `
  # Start the webhook receiver
  sheetlog serve

  # Compute the X-Signature header for a request body
  sheetlog sign --body '{"user":"u@x.com","duration_h":2.5}'

  # Verify credentials and Drive access
  sheetlog check

  # Export a user's worklog to CSV or Excel
  sheetlog export --user u@x.com --output ./worklog.csv
`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	config.SetDefaults()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "configFile", "", "Config file override (default discovery: $HOME/.sheetlog.yaml, then ./.sheetlog.yaml)")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".sheetlog" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".sheetlog")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// The full configuration can come from the environment, so a missing
	// file is only worth a note.
	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintln(os.Stderr, "No config file found; relying on environment variables.")
	}
}
