/*
main.go - Application entry point

PURPOSE:
  CLI for the vendor rotation engine. Subcommands:

    serve      Run the HTTP API server
    holidays   Print the Brazilian national holiday catalog for a year

CONFIGURATION:
  --config points at a YAML or JSON file (see config package). When the
  file is absent, built-in defaults apply. ESCALA_-prefixed environment
  variables override file values (ESCALA_SERVER__ADDR, ESCALA_DATABASE__PATH).

EXAMPLES:
  # Run with defaults (escala.db in the working directory, :8080)
  ./escala serve

  # Run with a config file
  ./escala serve --config ./escala.yaml

  # Show the 2025 national catalog
  ./escala holidays --year 2025

SEE ALSO:
  - api/server.go: Router configuration
  - config/config.go: File format and defaults
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/escala/rotation-engine/config"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "escala",
	Short: "Vendor rotation scheduler for Sundays and holidays",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (yaml or json)")
}

// loadConfig reads the configured file, or defaults when none is given.
func loadConfig() (*config.Config, error) {
	if cfgPath == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
