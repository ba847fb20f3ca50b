package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bates64/vscode-star-rod/internal/database"
)

var databaseJSON bool

var databaseCmd = &cobra.Command{
	Use:   "database",
	Short: "Load the symbol database and report statistics",
	Args:  cobra.NoArgs,
	RunE:  runDatabase,
}

func init() {
	rootCmd.AddCommand(databaseCmd)
	databaseCmd.Flags().BoolVar(&databaseJSON, "json", false, "emit the statistics as JSON")
}

func runDatabase(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		printError("cannot load config", err)
		return err
	}
	logger := newLogger(cfg)

	loader := database.NewLoader(cfg.DatabaseDir(), database.Options{Logger: logger})
	db, err := loader.Load()
	if err != nil {
		printError("cannot load database", err)
		return err
	}

	stats := db.Stats()
	if databaseJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}

	fmt.Printf("database: %s\n", loader.Root())
	fmt.Printf("  files:   %d\n", stats.Files)
	fmt.Printf("  entries: %d\n", stats.Entries)
	for _, scope := range []string{"common", "world", "battle", "pause", "mainmenu"} {
		fmt.Printf("    %-9s %d\n", scope, stats.EntriesPerScope[scope])
	}
	fmt.Printf("  enums:   %d (%d members)\n", stats.Enums, stats.EnumMembers)
	fmt.Printf("  flags:   %d (%d names)\n", stats.FlagSets, stats.FlagNames)

	if errs := db.Errors(); len(errs) > 0 {
		fmt.Printf("  skipped files:\n")
		for _, le := range errs {
			fmt.Printf("    %s\n", le)
		}
	}
	return nil
}
