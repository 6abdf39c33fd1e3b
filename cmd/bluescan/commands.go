package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/rmercier/bluescan/internal/btdata"
	"github.com/rmercier/bluescan/internal/config"
	"github.com/rmercier/bluescan/internal/enrich"
	"github.com/rmercier/bluescan/internal/logging"
	"github.com/rmercier/bluescan/internal/scan"
	"github.com/rmercier/bluescan/internal/server"
	"github.com/rmercier/bluescan/internal/sources"
	"github.com/rmercier/bluescan/internal/tui"
	"github.com/rmercier/bluescan/internal/ui"
)

// Scan command flags
var (
	scanDuration   float64
	scanFilter     string
	scanSources    []string
	scanSequential bool
	scanFormat     string
	scanPlain      bool
	scanLookups    string
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for nearby Bluetooth devices",
	Long: `Run one scan across the available sources and print the merged device
catalog.

On a terminal the scan shows live per-source progress; with --plain or a
redirected output it prints results once at the end.`,
	Example: `  # Default scan (5 seconds, all sources)
  bluescan scan

  # Long scan filtered to devices whose name contains "freebox"
  bluescan scan --duration 10 --filter freebox

  # Radio sources only, machine-readable output
  bluescan scan --sources ble,classic --format json`,
	RunE: runScan,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start the HTTP API server exposing the scan pipeline.

The server offers parameterized and preset scan endpoints, a WebSocket
progress stream, and session bootstrap for tool-calling clients.`,
	Example: `  # Start with config-file defaults
  bluescan serve

  # Bind locally on a custom port with debug logging
  bluescan serve --host 127.0.0.1 --port 9000 --log-level debug`,
	RunE: runServe,
}

// Serve command flags
var (
	serveHost     string
	servePort     int
	serveLogLevel string
)

func init() {
	scanCmd.Flags().Float64Var(&scanDuration, "duration", 0, "Scan duration in seconds (default from config, 5s)")
	scanCmd.Flags().StringVar(&scanFilter, "filter", "", "Only show devices whose name contains this substring")
	scanCmd.Flags().StringSliceVar(&scanSources, "sources", nil, "Scan sources to use (ble, classic, sysreg, mdns; default all)")
	scanCmd.Flags().BoolVar(&scanSequential, "sequential", false, "Run sources one at a time instead of concurrently")
	scanCmd.Flags().StringVar(&scanFormat, "format", "table", "Output format: table, detailed, or json")
	scanCmd.Flags().BoolVar(&scanPlain, "plain", false, "Disable the interactive progress screen")
	scanCmd.Flags().StringVar(&scanLookups, "lookups", "", "YAML file extending the vendor lookup tables")

	serveCmd.Flags().StringVar(&serveHost, "host", "", "Server host (default from config)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Server port (default from config)")
	serveCmd.Flags().StringVar(&serveLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
}

// buildEnricher assembles the enrichment pass, honoring lookup overrides
// from the flag or the config file.
func buildEnricher(settings *config.Settings) (*enrich.Enricher, error) {
	path := scanLookups
	if path == "" && settings.Lookups != nil {
		path = settings.Lookups.OverridesPath
	}
	if path == "" {
		return enrich.Default(), nil
	}

	tables, err := btdata.LoadOverrides(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load lookup overrides: %w", err)
	}
	return enrich.New(tables), nil
}

func runScan(cmd *cobra.Command, args []string) error {
	settings, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := logging.Initialize(settings.Log.Level); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logging.Sync()

	enricher, err := buildEnricher(settings)
	if err != nil {
		return err
	}

	duration := settings.ScanDuration()
	if cmd.Flags().Changed("duration") {
		duration = time.Duration(scanDuration * float64(time.Second))
	}

	selected := scanSources
	if len(selected) == 0 {
		selected = settings.Scan.Sources
	}

	cfg := scan.Config{
		Duration:    duration,
		FilterName:  scanFilter,
		Sources:     selected,
		Concurrent:  !scanSequential && !settings.Scan.Sequential,
		GracePeriod: settings.GracePeriod(),
	}

	aggregator := scan.NewAggregator(sources.Default()...).WithEnricher(enricher.Apply)

	var result *scan.Result
	if scanFormat != "json" && !scanPlain && ui.IsTerminal() {
		result, err = tui.Run(context.Background(), aggregator, cfg)
	} else {
		result, err = aggregator.Aggregate(context.Background(), cfg)
	}

	return printScanResult(result, err)
}

// printScanResult renders the result in the requested format. Errors are
// rendered too, so a failed scan still produces readable output before
// the non-zero exit.
func printScanResult(result *scan.Result, scanErr error) error {
	// Quitting the progress screen mid-scan yields neither result nor error.
	if result == nil && scanErr == nil {
		fmt.Println("Scan cancelled.")
		return nil
	}

	if scanFormat == "json" {
		return printJSON(result, scanErr)
	}

	if scanErr == nil {
		devices := sortBySignal(result.Devices)
		fmt.Println()
		switch scanFormat {
		case "detailed":
			for _, d := range devices {
				fmt.Println(ui.RenderDeviceDetails(d))
			}
		default:
			fmt.Println(ui.RenderDeviceTable(devices))
		}
	}

	fmt.Println(ui.NewSummary(result, scanErr).Render())
	return scanErr
}

func printJSON(result *scan.Result, scanErr error) error {
	if scanErr != nil {
		payload := map[string]string{"error": scanErr.Error()}
		if err := json.NewEncoder(os.Stdout).Encode(payload); err != nil {
			return err
		}
		return scanErr
	}

	payload := struct {
		Devices         []*scan.CanonicalDevice `json:"devices"`
		SourceErrors    map[string]string       `json:"source_errors,omitempty"`
		TotalDiscovered int                     `json:"total_discovered"`
	}{
		Devices:         sortBySignal(result.Devices),
		SourceErrors:    result.SourceErrors,
		TotalDiscovered: result.TotalDiscovered,
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}

// sortBySignal returns a copy sorted by descending signal strength,
// devices without a reading last.
func sortBySignal(devices []*scan.CanonicalDevice) []*scan.CanonicalDevice {
	sorted := make([]*scan.CanonicalDevice, len(devices))
	copy(sorted, devices)
	sort.SliceStable(sorted, func(i, j int) bool {
		return signalOf(sorted[i]) > signalOf(sorted[j])
	})
	return sorted
}

func signalOf(d *scan.CanonicalDevice) int {
	if d.SignalStrength == nil {
		return -999
	}
	return *d.SignalStrength
}

func runServe(cmd *cobra.Command, args []string) error {
	settings, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	host := settings.Server.Host
	if cmd.Flags().Changed("host") {
		host = serveHost
	}
	port := settings.Server.Port
	if cmd.Flags().Changed("port") {
		port = servePort
	}
	logLevel := settings.Log.Level
	if cmd.Flags().Changed("log-level") {
		logLevel = serveLogLevel
	}

	enricher, err := buildEnricher(settings)
	if err != nil {
		return err
	}

	srv, err := server.New(&server.Config{
		Host:            host,
		Port:            port,
		LogLevel:        logLevel,
		DefaultDuration: settings.ScanDuration(),
		GracePeriod:     settings.GracePeriod(),
		Sequential:      settings.Scan.Sequential,
	}, sources.Default(), enricher.Apply)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
