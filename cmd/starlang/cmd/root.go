// Package cmd implements the starlang CLI: parsing, database, and
// symbol queries from the command line, plus the websocket service.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bates64/vscode-star-rod/pkg/core/config"
	"github.com/bates64/vscode-star-rod/pkg/core/log"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "starlang",
	Short: "Star Rod language engine",
	Long: `starlang parses Star Rod patch and script files, loads the
documentation database, and resolves per-document symbol tables.

Commands:
  parse     - parse a patch/script file into its directives
  lib       - parse and check a documentation-library file
  database  - load the database and report statistics
  symbols   - resolve the symbol list for a document
  enums     - list loaded enums and flag sets
  serve     - run the websocket language service`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./starlang.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig reads the configuration named by --config, the
// environment, or the default locations.
func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.Load(cfgFile)
	}
	return config.LoadFromEnv()
}

// newLogger builds the process logger from the configuration, with
// --verbose forcing debug level.
func newLogger(cfg *config.Config) *log.Logger {
	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = log.DefaultLevel()
	}
	if verbose {
		level = log.LevelDebug
	}
	format, err := log.ParseFormat(cfg.Log.Format)
	if err != nil {
		format = log.FormatText
	}

	logger := log.NewWithConfig(log.Config{
		Level:  level,
		Format: format,
		Output: os.Stderr,
	})
	log.SetDefault(logger)
	return logger
}

func printError(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
}
