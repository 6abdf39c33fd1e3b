// Bluescan discovers nearby Bluetooth devices across several scan sources
// and reconciles the sightings into one canonical record per device.
//
// It ships two entry points behind one binary: a CLI scan command with an
// interactive progress screen, and an HTTP API server exposing the same
// pipeline to other tools.
//
// Usage:
//
//	bluescan scan [flags]
//	bluescan serve [flags]
//
// See 'bluescan --help' for available options.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rmercier/bluescan/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "bluescan",
	Short: "Multi-source Bluetooth device discovery",
	Long: `Bluescan scans for nearby Bluetooth devices using every source the host
offers: BLE advertisements, classic inquiries, the system's paired-device
registry, and multicast DNS presence hints.

Sightings of the same device from different sources are merged into one
canonical record, enriched with vendor information from the Bluetooth SIG
company registry and a MAC prefix database.`,
	Version: version.Version,
}

func init() {
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// Version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("bluescan %s\n", version.Full())
	},
}
