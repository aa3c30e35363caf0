package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ternhq/tern/pkg/cli"
)

func main() {
	rootCmd := cli.NewRootCommand()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, cli.ErrIncompatible) {
			os.Exit(1)
		}
		os.Exit(2)
	}
}
