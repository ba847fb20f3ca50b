package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bates64/vscode-star-rod/internal/lang/lib"
)

var (
	libJSON   bool
	libStrict bool
)

var libCmd = &cobra.Command{
	Use:   "lib FILE",
	Short: "Parse and check a documentation-library file",
	Args:  cobra.ExactArgs(1),
	RunE:  runLib,
}

func init() {
	rootCmd.AddCommand(libCmd)
	libCmd.Flags().BoolVar(&libJSON, "json", false, "emit the parsed file as JSON")
	libCmd.Flags().BoolVar(&libStrict, "strict", false, "warn on silently discarded lines")
}

func runLib(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		printError("cannot read file", err)
		return err
	}

	parser := lib.New(lib.Options{Strict: libStrict})
	f, err := parser.Parse(string(data), args[0])
	if err != nil {
		printError("parse failed", err)
		return err
	}

	if libJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(f)
	}

	fmt.Printf("scope: %s\n", f.Scope)
	for _, entry := range f.Entries {
		fmt.Printf("  %-4s %-10s %s\n", entry.Usage, entry.RAM, entry.Signature())
	}
	for _, w := range f.Warnings {
		fmt.Printf("warning: %s\n", w)
	}
	fmt.Printf("%d entries, %d warnings\n", len(f.Entries), len(f.Warnings))
	return nil
}
