package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jswenson/regcal/internal/logging"
)

// rootCmd represents the base command for the regcal application
var rootCmd = &cobra.Command{
	Use:   "regcal",
	Short: "Creates calendar events from registration confirmation emails",
	Long: `regcal scans Gmail for registration confirmation emails, extracts the
event name and time from each subject line, and creates a matching
Google Calendar event unless one already exists at that time.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Setup(debugMode)
	},
}

var debugMode bool

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "regcal version %s\n" .Version}}`)

	// A .env in the working directory may supply REGCAL_* path overrides
	_ = godotenv.Load()

	// If no subcommand is provided, run the schedule command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "schedule")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	rootCmd.AddCommand(newScheduleCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newVersionCmd())
}
