// Lightstack shows a stack of Home Assistant lights in the terminal.
//
// Each row of a card shows one entity with its state icon, a name that opens
// details or another view, and ON/OFF buttons. The card is read from a YAML
// or TOML file and reloaded when the file changes.
//
// Usage:
//
//	lightstack [command] [flags]
//
// Running without arguments opens the dashboard. When no Home Assistant URL
// is known, the local network is searched first.
// See 'lightstack --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/activhome/lightstack/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "lightstack",
	Short: "Home Assistant light stack dashboard",
	Long: `A terminal dashboard for Home Assistant lights and switches.

Shows a card with one row per entity. Click or select a row to turn it on or
off, open its details, or move to another view of the card file.

If no command is specified, the dashboard opens.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	Example: `  # Open the dashboard for the default card file
  lightstack

  # Connect to a known server
  lightstack --url http://homeassistant.local:8123

  # Use another card file and start on one of its views
  lightstack --config ~/cards/upstairs.yaml --view /bedrooms`,
	RunE: runDashboard,
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Details())
	},
}
