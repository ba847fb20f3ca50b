package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bates64/vscode-star-rod/internal/database"
)

var enumsJSON bool

var enumsCmd = &cobra.Command{
	Use:   "enums",
	Short: "List loaded enums and flag sets",
	Args:  cobra.NoArgs,
	RunE:  runEnums,
}

func init() {
	rootCmd.AddCommand(enumsCmd)
	enumsCmd.Flags().BoolVar(&enumsJSON, "json", false, "emit enums and flags as JSON")
}

func runEnums(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		printError("cannot load config", err)
		return err
	}
	logger := newLogger(cfg)

	db, err := database.NewLoader(cfg.DatabaseDir(), database.Options{Logger: logger}).Load()
	if err != nil {
		printError("cannot load database", err)
		return err
	}

	if enumsJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]interface{}{
			"enums": db.Enums(),
			"flags": db.FlagSets(),
		})
	}

	for _, e := range db.Enums() {
		fmt.Printf("enum %s (%s): %d members\n", e.Namespace, e.Origin, len(e.Members))
	}
	for _, f := range db.FlagSets() {
		fmt.Printf("flags %s: %d names\n", f.Namespace, len(f.Names))
	}
	return nil
}
