package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bates64/vscode-star-rod/internal/engine"
)

var (
	symbolsJSON    bool
	symbolsName    string
	symbolsAddress string
)

var symbolsCmd = &cobra.Command{
	Use:   "symbols FILE",
	Short: "Resolve the symbol list applicable to a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runSymbols,
}

func init() {
	rootCmd.AddCommand(symbolsCmd)
	symbolsCmd.Flags().BoolVar(&symbolsJSON, "json", false, "emit the symbol list as JSON")
	symbolsCmd.Flags().StringVar(&symbolsName, "name", "", "look up a single symbol by name")
	symbolsCmd.Flags().StringVar(&symbolsAddress, "address", "", "look up a single symbol by RAM address")
}

func runSymbols(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		printError("cannot load config", err)
		return err
	}
	logger := newLogger(cfg)

	path, err := filepath.Abs(args[0])
	if err != nil {
		printError("cannot resolve path", err)
		return err
	}

	workspaceDir := cfg.ModDir
	if workspaceDir == "" {
		workspaceDir = filepath.Dir(path)
	}

	eng := engine.New(engine.Config{
		DatabaseDir:  cfg.DatabaseDir(),
		WorkspaceDir: workspaceDir,
		Logger:       logger,
	})

	switch {
	case symbolsName != "":
		entry, err := eng.LookupSymbol(path, symbolsName)
		if err != nil {
			printError("lookup failed", err)
			return err
		}
		return printSymbols(entry)

	case symbolsAddress != "":
		entry, err := eng.LookupAddress(path, symbolsAddress)
		if err != nil {
			printError("lookup failed", err)
			return err
		}
		return printSymbols(entry)

	default:
		entries, err := eng.Symbols(path)
		if err != nil {
			printError("resolution failed", err)
			return err
		}
		if symbolsJSON {
			return printSymbols(entries)
		}
		for _, entry := range entries {
			fmt.Printf("%-4s %-10s %s\n", entry.Usage, entry.RAM, entry.Signature())
		}
		fmt.Printf("%d symbols\n", len(entries))
		return nil
	}
}

func printSymbols(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
