package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jswenson/regcal/internal/google"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize access to Gmail and Google Calendar",
		Long: `Run the browser-based OAuth flow and cache the resulting token.

Requires an OAuth client credentials file (credentials.json) from the
Google Cloud console, either at the default config location or pointed
to by the REGCAL_CREDENTIALS environment variable.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if google.HasToken() {
				fmt.Println("Existing token found; re-authorizing will replace it.")
			}

			if _, err := google.Authorize(cmd.Context()); err != nil {
				return fmt.Errorf("authorization failed: %w", err)
			}

			fmt.Println("Authentication successful. Credentials saved for future use.")
			return nil
		},
	}
	return cmd
}
