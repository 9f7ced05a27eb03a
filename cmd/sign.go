package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"sheetlog/config"
	"sheetlog/internal/signature"
)

var (
	signBody string
	signFile string
	signCurl bool
)

var signCmd = &cobra.Command{
	Use:   "sign",
	Short: "Compute the X-Signature header for a request body",
	Long: `Compute the hex HMAC-SHA256 signature of a request body under the
configured signing secret, for manually exercising the webhook.`,
	Example: `
  # Sign an inline body
  sheetlog sign --body '{"user":"u@x.com","duration_h":2.5,"idempotency_key":"k1"}'

  # Sign a body from a file and print a curl invocation
  sheetlog sign --file ./payload.json --curl
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}
		if cfg.Auth.SigningSecret == "" {
			return errors.New("auth.signing_secret (or SIGNING_SECRET) is required to sign")
		}

		body, err := resolveSignBody(signBody, signFile)
		if err != nil {
			return err
		}

		digest := signature.Compute([]byte(cfg.Auth.SigningSecret), body)
		if signCurl {
			fmt.Printf("curl -s -X POST http://localhost:%d/worklog/append \\\n", cfg.Server.Port)
			fmt.Printf("  -H 'Content-Type: application/json' \\\n")
			fmt.Printf("  -H 'X-Signature: %s' \\\n", digest)
			fmt.Printf("  -d %s\n", shellQuote(string(body)))
			return nil
		}

		fmt.Println(digest)
		return nil
	},
}

func resolveSignBody(inline, file string) ([]byte, error) {
	switch {
	case inline != "" && file != "":
		return nil, errors.New("use either --body or --file, not both")
	case inline != "":
		return []byte(inline), nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read body file: %w", err)
		}
		return data, nil
	default:
		return nil, errors.New("a request body is required (--body or --file)")
	}
}

func shellQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", `'\''`) + "'"
}

func init() {
	rootCmd.AddCommand(signCmd)

	signCmd.Flags().StringVar(&signBody, "body", "", "Request body to sign")
	signCmd.Flags().StringVar(&signFile, "file", "", "File containing the request body to sign")
	signCmd.Flags().BoolVar(&signCurl, "curl", false, "Print a ready-to-use curl invocation")
}
