package main

import (
	"os"

	"github.com/bates64/vscode-star-rod/cmd/starlang/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
