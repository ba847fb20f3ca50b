package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bates64/vscode-star-rod/internal/lang/directive"
)

var parseJSON bool

var parseCmd = &cobra.Command{
	Use:   "parse FILE",
	Short: "Parse a patch/script file into its directives",
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().BoolVar(&parseJSON, "json", false, "emit the directive list as JSON")
}

func runParse(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		printError("cannot read file", err)
		return err
	}

	directives, err := directive.Parse(string(data))
	if err != nil {
		printError("parse failed", err)
		return err
	}

	if parseJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(directives)
	}

	for _, d := range directives {
		fmt.Printf("%s:%d  %s\n", args[0], d.Range.Start.Line, d)
		if d.Comment != "" {
			fmt.Printf("    %% %s\n", d.Comment)
		}
	}
	fmt.Printf("%d directives\n", len(directives))
	return nil
}
